package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

const (
	rootModule     = "localize"
	localesModule  = "localize.locales"
	unitsModule    = "localize.units"
	resolverModule = "localize.resolver"
	messagesModule = "localize.messages"
	managerModule  = "localize.manager"
	cacheModule    = "localize.cache"
)

const (
	fieldEntity = "entity"
	fieldField  = "field"
	fieldLocale = "locale"
)

// ModuleLogger returns a module-scoped logger, falling back to a no-op logger
// when no provider is configured. The module name is attached as a field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

func LocalesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, localesModule)
}

func UnitsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, unitsModule)
}

func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

func MessagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, messagesModule)
}

func ManagerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, managerModule)
}

func CacheLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cacheModule)
}

// WithFields returns logger carrying a copy of fields. Nil loggers and empty
// field sets pass through unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	return logger.WithFields(maps.Clone(fields))
}

// WithTranslationContext attaches the entity/field/locale triple a log entry
// refers to. Blank values are skipped.
func WithTranslationContext(logger interfaces.Logger, entity, field, locale string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(entity); trimmed != "" {
		fields[fieldEntity] = trimmed
	}
	if trimmed := strings.TrimSpace(field); trimmed != "" {
		fields[fieldField] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

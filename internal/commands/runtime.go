package commands

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// DefaultCommandTimeout bounds a command when no WithTimeout option is given.
const DefaultCommandTimeout = 30 * time.Second

// boundContext substitutes context.Background for a nil ctx and applies
// timeout when it is positive.
func boundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureLogger returns logger, or a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// CommandLogger returns the logger for a group of command handlers, named
// localize.commands.<group> and tagged with the group.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "core"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, "localize.commands."+group),
		map[string]any{"command_group": group},
	)
}

package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-localize/internal/translationconfig"
	"github.com/goliatone/go-localize/pkg/storage"
)

var ErrDefaultLocaleRequired = errors.New("localize config: default locale is required")
var ErrDefaultLocaleNotListed = errors.New("localize config: default locale must be listed in locales")
var ErrLocaleCodeRequired = errors.New("localize config: locale code is required")
var ErrLocaleDuplicate = errors.New("localize config: locale listed twice")
var ErrLocaleFallbackUnknown = errors.New("localize config: locale fallback is not listed")
var ErrCacheProviderUnknown = errors.New("localize config: cache provider is invalid")
var ErrRedisAddrRequired = errors.New("localize config: redis address is required for the redis cache provider")
var ErrCacheTTLInvalid = errors.New("localize config: cache ttl must be zero or positive")
var ErrStorageDriverUnknown = errors.New("localize config: storage driver is invalid")
var ErrLoggingProviderUnknown = errors.New("localize config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("localize config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("localize config: logging format is invalid")

// Cache providers.
const (
	CacheProviderMemory = "memory"
	CacheProviderRedis  = "redis"
	CacheProviderNone   = "none"
)

// Config aggregates the settings needed to assemble a localize module.
type Config struct {
	DefaultLocale string                     `yaml:"default_locale" env:"DEFAULT_LOCALE"`
	Locales       []LocaleConfig             `yaml:"locales"`
	Storage       StorageConfig              `yaml:"storage" envPrefix:"STORAGE_"`
	Cache         CacheConfig                `yaml:"cache" envPrefix:"CACHE_"`
	Logging       LoggingConfig              `yaml:"logging" envPrefix:"LOG_"`
	Translations  translationconfig.Settings `yaml:"translations"`
	Messages      MessagesConfig             `yaml:"messages" envPrefix:"MESSAGES_"`
}

// LocaleConfig seeds one locale at startup.
type LocaleConfig struct {
	Code       string `yaml:"code"`
	Name       string `yaml:"name"`
	NativeName string `yaml:"native_name"`
	Fallback   string `yaml:"fallback"`
	Active     *bool  `yaml:"active"`
	RTL        bool   `yaml:"rtl"`
	SortOrder  int    `yaml:"sort_order"`
}

// StorageConfig selects persistence. Without a DSN the module keeps its
// state in memory.
type StorageConfig struct {
	storage.Config `yaml:",inline"`
	Migrate        bool `yaml:"migrate" env:"MIGRATE"`
}

// Enabled reports whether a database is configured.
func (s StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.DSN) != ""
}

// CacheConfig captures cache behaviour.
type CacheConfig struct {
	Provider       string        `yaml:"provider" env:"PROVIDER"`
	DefaultTTL     time.Duration `yaml:"default_ttl" env:"DEFAULT_TTL"`
	ResolveTTL     time.Duration `yaml:"resolve_ttl" env:"RESOLVE_TTL"`
	Capacity       int           `yaml:"capacity" env:"CAPACITY"`
	RedisAddr      string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword  string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB        int           `yaml:"redis_db" env:"REDIS_DB"`
	RedisNamespace string        `yaml:"redis_namespace" env:"REDIS_NAMESPACE"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" env:"PROVIDER"`
	Level     string   `yaml:"level" env:"LEVEL"`
	Format    string   `yaml:"format" env:"FORMAT"`
	AddSource bool     `yaml:"add_source" env:"ADD_SOURCE"`
	Focus     []string `yaml:"focus" env:"FOCUS" envSeparator:","`
}

// MessagesConfig points at UI message sources loaded at startup.
type MessagesConfig struct {
	FixturePath string   `yaml:"fixture_path" env:"FIXTURE_PATH"`
	Files       []string `yaml:"files" env:"FILES" envSeparator:","`
}

// DefaultConfig returns an in-memory, single-locale configuration.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales: []LocaleConfig{
			{Code: "en", Name: "English"},
		},
		Storage: StorageConfig{
			Config: storage.Config{Name: "default", Driver: storage.DriverSQLite},
		},
		Cache: CacheConfig{
			Provider:   CacheProviderMemory,
			DefaultTTL: 10 * time.Minute,
			ResolveTTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
		Translations: translationconfig.DefaultSettings(),
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	def := strings.TrimSpace(cfg.DefaultLocale)
	if def == "" {
		return ErrDefaultLocaleRequired
	}
	if err := validateLocales(def, cfg.Locales); err != nil {
		return err
	}

	switch normalize(cfg.Cache.Provider) {
	case "", CacheProviderMemory, CacheProviderNone:
	case CacheProviderRedis:
		if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
			return ErrRedisAddrRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrCacheProviderUnknown, cfg.Cache.Provider)
	}
	if cfg.Cache.DefaultTTL < 0 {
		return fmt.Errorf("%w: default", ErrCacheTTLInvalid)
	}
	if cfg.Cache.ResolveTTL < 0 {
		return fmt.Errorf("%w: resolve", ErrCacheTTLInvalid)
	}

	if cfg.Storage.Enabled() {
		switch normalize(cfg.Storage.Driver) {
		case storage.DriverSQLite, "sqlite", storage.DriverPostgres:
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func validateLocales(def string, list []LocaleConfig) error {
	if len(list) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	for _, loc := range list {
		code := normalize(loc.Code)
		if code == "" {
			return ErrLocaleCodeRequired
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("%w: %s", ErrLocaleDuplicate, code)
		}
		seen[code] = struct{}{}
	}
	if _, ok := seen[normalize(def)]; !ok {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleNotListed, def)
	}
	for _, loc := range list {
		fallback := normalize(loc.Fallback)
		if fallback == "" {
			continue
		}
		if _, ok := seen[fallback]; !ok {
			return fmt.Errorf("%w: %s -> %s", ErrLocaleFallbackUnknown, loc.Code, loc.Fallback)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "", "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

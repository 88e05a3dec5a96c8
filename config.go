package localize

import (
	"github.com/goliatone/go-localize/internal/runtimeconfig"
	"github.com/goliatone/go-localize/internal/translationconfig"
)

var (
	ErrDefaultLocaleRequired  = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleNotListed = runtimeconfig.ErrDefaultLocaleNotListed
	ErrLocaleDuplicate        = runtimeconfig.ErrLocaleDuplicate
	ErrLocaleFallbackUnknown  = runtimeconfig.ErrLocaleFallbackUnknown
	ErrCacheProviderUnknown   = runtimeconfig.ErrCacheProviderUnknown
	ErrRedisAddrRequired      = runtimeconfig.ErrRedisAddrRequired
	ErrCacheTTLInvalid        = runtimeconfig.ErrCacheTTLInvalid
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config              = runtimeconfig.Config
	LocaleConfig        = runtimeconfig.LocaleConfig
	StorageConfig       = runtimeconfig.StorageConfig
	CacheConfig         = runtimeconfig.CacheConfig
	LoggingConfig       = runtimeconfig.LoggingConfig
	MessagesConfig      = runtimeconfig.MessagesConfig
	TranslationSettings = translationconfig.Settings
)

const DefaultEnvPrefix = runtimeconfig.DefaultEnvPrefix

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over the defaults, then applies environment
// overrides using prefix (DefaultEnvPrefix when empty).
func LoadConfig(path, prefix string, envFiles ...string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := runtimeconfig.LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	return runtimeconfig.LoadEnv(cfg, prefix, envFiles...)
}

package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes every environment variable read by LoadEnv.
const DefaultEnvPrefix = "LOCALIZE_"

// LoadFile reads a YAML document on top of DefaultConfig.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("localize config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("localize config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// LoadEnv overlays environment variables on cfg. Variables found in envFiles
// are loaded first without overriding the process environment; missing files
// are ignored.
func LoadEnv(cfg Config, prefix string, envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return cfg, err
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultEnvPrefix
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return cfg, fmt.Errorf("localize config: environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func loadEnvFiles(files []string) error {
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("localize config: load %s: %w", file, err)
		}
	}
	return nil
}

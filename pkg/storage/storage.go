package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-localize/internal/validation"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config captures how the localization tables are reached.
type Config struct {
	Name         string         `json:"name" yaml:"name" env:"NAME"`
	Driver       string         `json:"driver" yaml:"driver" env:"DRIVER"`
	DSN          string         `json:"dsn" yaml:"dsn" env:"DSN"`
	ReadOnly     bool           `json:"readOnly,omitempty" yaml:"read_only" env:"READ_ONLY"`
	MaxOpenConns int            `json:"maxOpenConns,omitempty" yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	Options      map[string]any `json:"options,omitempty" yaml:"options"`
}

var configSchema = validation.MustCompile("storage-config.json", []byte(ConfigJSONSchema))

// Validate checks cfg against ConfigJSONSchema.
func (cfg Config) Validate() error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("storage: encode config: %w", err)
	}
	return configSchema.ValidateJSON(raw)
}

// Normalized trims identifiers and lower-cases the driver name.
func (cfg Config) Normalized() Config {
	out := cfg
	out.Name = strings.TrimSpace(cfg.Name)
	out.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	out.DSN = strings.TrimSpace(cfg.DSN)
	if out.Driver == "sqlite" {
		out.Driver = DriverSQLite
	}
	return out
}

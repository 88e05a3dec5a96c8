package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-localize/pkg/interfaces"
	storagecfg "github.com/goliatone/go-localize/pkg/storage"
)

var ErrUnsupportedDriver = errors.New("storage: unsupported driver")

// Open connects to the database described by cfg and verifies it answers.
func Open(ctx context.Context, cfg storagecfg.Config, logger interfaces.Logger) (*bun.DB, error) {
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("storage: invalid config: %w", err)
	}

	driverName, dialect, err := driverFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	db := bun.NewDB(sqlDB, dialect)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", cfg.Driver, err)
	}
	if logger != nil {
		logger.Info("storage.opened", "name", cfg.Name, "driver", cfg.Driver, "read_only", cfg.ReadOnly)
	}
	return db, nil
}

func driverFor(driver string) (string, schema.Dialect, error) {
	switch driver {
	case storagecfg.DriverSQLite:
		return "sqlite3", sqlitedialect.New(), nil
	case storagecfg.DriverPostgres:
		return "pgx", pgdialect.New(), nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-localize/internal/storage"
)

var dbCounter atomic.Uint64

// NewSQLiteMemoryDB opens a named in-memory sqlite database. Each name maps to
// its own database, so tests using distinct names never share tables.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	return sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name))
}

// NewBunDB returns a migrated bun database private to the calling test.
func NewBunDB(tb testing.TB) *bun.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(tb.Name())
	sqlDB, err := NewSQLiteMemoryDB(fmt.Sprintf("%s_%d", name, dbCounter.Add(1)))
	if err != nil {
		tb.Fatalf("new sqlite db: %v", err)
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = db.Close() })

	if err := storage.Migrate(context.Background(), db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

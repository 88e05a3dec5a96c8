package units

import (
	"context"
	"database/sql"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/domain"
)

const unitNamespace = "translation_unit"

// BunUnitRepository implements UnitRepository. Reads use go-repository-bun
// (optionally cached); writes run in a transaction with their history row.
type BunUnitRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Unit]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ UnitRepository = (*BunUnitRepository)(nil)

// NewBunUnitRepository creates a unit repository without caching.
func NewBunUnitRepository(db *bun.DB) *BunUnitRepository {
	return NewBunUnitRepositoryWithCache(db, nil, nil)
}

// NewBunUnitRepositoryWithCache creates a unit repository with cached reads.
func NewBunUnitRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunUnitRepository {
	base := NewUnitRepository(db)
	r := &BunUnitRepository{db: db, repo: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = unitNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*Unit, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, unitNamespace, id.String())
	}
	return record, nil
}

func (r *BunUnitRepository) ListByEntity(ctx context.Context, ref domain.EntityRef) ([]*Unit, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.entity_type = ?", ref.Type).
				Where("?TableAlias.entity_id = ?", ref.ID)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, unitNamespace, ref.String())
	}
	sortUnits(records)
	return records, nil
}

func (r *BunUnitRepository) ListByLocale(ctx context.Context, locale string) ([]*Unit, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.target_locale = ?", locale)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, unitNamespace, locale)
	}
	sortUnits(records)
	return records, nil
}

// Save inserts or compare-and-set updates the unit and appends entry in the
// same transaction, so history is never visible ahead of the unit state.
func (r *BunUnitRepository) Save(ctx context.Context, unit *Unit, entry *HistoryEntry, expectedRevision int) (*Unit, error) {
	record := cloneUnit(unit)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var (
			res sql.Result
			err error
		)
		if expectedRevision == 0 {
			res, err = tx.NewInsert().
				Model(record).
				On("CONFLICT DO NOTHING").
				Exec(ctx)
		} else {
			res, err = tx.NewUpdate().
				Model(record).
				Column("source_locale", "source_text", "target_text", "status", "revision", "updated_by", "updated_at").
				WherePK().
				Where("revision = ?", expectedRevision).
				Exec(ctx)
		}
		if err != nil {
			return fmt.Errorf("write translation unit: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return ErrRevisionConflict
		}
		if entry == nil {
			return nil
		}
		if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
			return fmt.Errorf("write translation history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteByEntity removes every unit of the entity and records each removal in
// the same transaction. Earlier history rows are kept.
func (r *BunUnitRepository) DeleteByEntity(ctx context.Context, ref domain.EntityRef, record DeletionRecorder) (int, error) {
	var deleted int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing []*Unit
		if err := tx.NewSelect().
			Model(&existing).
			Where("entity_type = ?", ref.Type).
			Where("entity_id = ?", ref.ID).
			Scan(ctx); err != nil {
			return fmt.Errorf("list translation units: %w", err)
		}
		if len(existing) == 0 {
			return nil
		}

		if record != nil {
			entries := make([]*HistoryEntry, 0, len(existing))
			for _, unit := range existing {
				if entry := record(unit); entry != nil {
					entries = append(entries, entry)
				}
			}
			if len(entries) > 0 {
				if _, err := tx.NewInsert().Model(&entries).Exec(ctx); err != nil {
					return fmt.Errorf("write translation history: %w", err)
				}
			}
		}

		res, err := tx.NewDelete().
			Model((*Unit)(nil)).
			Where("entity_type = ?", ref.Type).
			Where("entity_id = ?", ref.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete translation units: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s repository error: %w", unitNamespace, err)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return int(deleted), err
	}
	return int(deleted), nil
}

func (r *BunUnitRepository) History(ctx context.Context, unitID uuid.UUID) ([]*HistoryEntry, error) {
	var entries []*HistoryEntry
	if err := r.db.NewSelect().
		Model(&entries).
		Where("unit_id = ?", unitID).
		OrderExpr("revision ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("translation history repository error: %w", err)
	}
	return entries, nil
}

// InvalidateCache drops cached unit reads.
func (r *BunUnitRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &domain.NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

package glossary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/domain"
)

const entryNamespace = "glossary_entry"

// BunGlossaryRepository implements GlossaryRepository with optional read caching.
type BunGlossaryRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Entry]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ GlossaryRepository = (*BunGlossaryRepository)(nil)

// NewBunGlossaryRepository creates a glossary repository without caching.
func NewBunGlossaryRepository(db *bun.DB) *BunGlossaryRepository {
	return NewBunGlossaryRepositoryWithCache(db, nil, nil)
}

// NewBunGlossaryRepositoryWithCache creates a glossary repository with cached reads.
func NewBunGlossaryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunGlossaryRepository {
	base := NewEntryRepository(db)
	r := &BunGlossaryRepository{db: db, repo: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = entryNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunGlossaryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunGlossaryRepository) ListByPair(ctx context.Context, sourceLocale, targetLocale string) ([]*Entry, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.source_locale = ?", sourceLocale).
			Where("?TableAlias.target_locale = ?", targetLocale).
			OrderExpr("?TableAlias.normalized_term ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, sourceLocale+"->"+targetLocale)
	}
	return records, nil
}

func (r *BunGlossaryRepository) Save(ctx context.Context, entry *Entry) (*Entry, error) {
	record := cloneEntry(entry)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing Entry
		err := tx.NewSelect().Model(&existing).Where("id = ?", record.ID).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return fmt.Errorf("insert glossary entry: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load glossary entry: %w", err)
		default:
			record.CreatedAt = existing.CreatedAt
			if _, err := tx.NewUpdate().
				Model(record).
				Column("term", "translation", "notes", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("update glossary entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", entryNamespace, err)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunGlossaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Entry)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%s repository error: %w", entryNamespace, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &domain.NotFoundError{Resource: entryNamespace, Key: id.String()}
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops every cached glossary read.
func (r *BunGlossaryRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &domain.NotFoundError{Resource: entryNamespace, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", entryNamespace, err)
}

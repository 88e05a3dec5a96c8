package locales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/domain"
)

const localeNamespace = "locale"

// BunLocaleRepository implements LocaleRepository with optional read caching.
type BunLocaleRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Locale]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ LocaleRepository = (*BunLocaleRepository)(nil)

// NewBunLocaleRepository creates a locale repository without caching.
func NewBunLocaleRepository(db *bun.DB) *BunLocaleRepository {
	return NewBunLocaleRepositoryWithCache(db, nil, nil)
}

// NewBunLocaleRepositoryWithCache creates a locale repository whose reads go
// through go-repository-cache.
func NewBunLocaleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunLocaleRepository {
	base := NewLocaleRepository(db)
	r := &BunLocaleRepository{db: db, repo: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = localeNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunLocaleRepository) GetByCode(ctx context.Context, code string) (*Locale, error) {
	record, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "locale", code)
	}
	return record, nil
}

func (r *BunLocaleRepository) List(ctx context.Context) ([]*Locale, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.code ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "locale", "")
	}
	return records, nil
}

// Save demotes the previous default and upserts the record in one transaction.
func (r *BunLocaleRepository) Save(ctx context.Context, locale *Locale) (*Locale, error) {
	record := cloneLocale(locale)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if record.IsDefault {
			if _, err := tx.NewUpdate().
				Model((*Locale)(nil)).
				Set("is_default = ?", false).
				Where("code <> ?", record.Code).
				Where("is_default = ?", true).
				Exec(ctx); err != nil {
				return fmt.Errorf("demote default locale: %w", err)
			}
		}
		var existing Locale
		err := tx.NewSelect().Model(&existing).Where("code = ?", record.Code).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return fmt.Errorf("insert locale: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load locale: %w", err)
		default:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			if _, err := tx.NewUpdate().
				Model(record).
				Column("name", "native_name", "is_default", "is_active", "rtl", "sort_order", "fallback_code", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("update locale: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("locale repository error: %w", err)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunLocaleRepository) Delete(ctx context.Context, code string) error {
	res, err := r.db.NewDelete().
		Model((*Locale)(nil)).
		Where("code = ?", code).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("locale repository error: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &domain.NotFoundError{Resource: "locale", Key: code}
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops every cached locale read.
func (r *BunLocaleRepository) InvalidateCache(ctx context.Context) error {
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

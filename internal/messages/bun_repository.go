package messages

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

const (
	messageNamespace     = "message"
	translationNamespace = "message_translation"
)

// BunMessageRepository implements MessageRepository on bun.
type BunMessageRepository struct {
	db           *bun.DB
	messages     repository.Repository[*Message]
	translations repository.Repository[*Translation]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ MessageRepository = (*BunMessageRepository)(nil)

// NewBunMessageRepository creates a message repository without caching.
func NewBunMessageRepository(db *bun.DB) *BunMessageRepository {
	return NewBunMessageRepositoryWithCache(db, nil, nil)
}

// NewBunMessageRepositoryWithCache creates a message repository whose message
// reads go through go-repository-cache.
func NewBunMessageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunMessageRepository {
	base := NewMessageRepository(db)
	r := &BunMessageRepository{
		db:           db,
		messages:     base,
		translations: NewTranslationRepository(db),
	}
	if cacheService != nil && serializer != nil {
		r.messages = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = messageNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunMessageRepository) GetMessage(ctx context.Context, id uuid.UUID) (*Message, error) {
	record, err := r.messages.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, messageNamespace, id.String())
	}
	return record, nil
}

func (r *BunMessageRepository) ListMessages(ctx context.Context) ([]*Message, error) {
	records, _, err := r.messages.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.namespace ASC").OrderExpr("?TableAlias.message_key ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, messageNamespace, "")
	}
	return records, nil
}

func (r *BunMessageRepository) SaveMessage(ctx context.Context, message *Message) (*Message, error) {
	record := cloneMessage(message)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing Message
		err := tx.NewSelect().Model(&existing).Where("id = ?", record.ID).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return fmt.Errorf("insert message: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load message: %w", err)
		default:
			record.CreatedAt = existing.CreatedAt
			if _, err := tx.NewUpdate().
				Model(record).
				Column("default_value", "description", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("update message: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", messageNamespace, err)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteMessage removes translations and the message in one transaction.
func (r *BunMessageRepository) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Translation)(nil)).
			Where("message_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete message translations: %w", err)
		}
		res, err := tx.NewDelete().
			Model((*Message)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete message: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &domain.NotFoundError{Resource: messageNamespace, Key: id.String()}
		}
		return nil
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("%s repository error: %w", messageNamespace, err)
	}
	return r.InvalidateCache(ctx)
}

func (r *BunMessageRepository) GetTranslation(ctx context.Context, id uuid.UUID) (*Translation, error) {
	record, err := r.translations.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, translationNamespace, id.String())
	}
	return record, nil
}

func (r *BunMessageRepository) ListTranslationsByMessage(ctx context.Context, messageID uuid.UUID) ([]*Translation, error) {
	records, _, err := r.translations.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.message_id = ?", messageID).OrderExpr("?TableAlias.locale ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, translationNamespace, messageID.String())
	}
	return records, nil
}

func (r *BunMessageRepository) ListTranslationsByLocale(ctx context.Context, locale string) ([]*Translation, error) {
	records, _, err := r.translations.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.locale = ?", locale).OrderExpr("?TableAlias.message_id ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, translationNamespace, locale)
	}
	return records, nil
}

func (r *BunMessageRepository) SaveTranslation(ctx context.Context, translation *Translation) (*Translation, error) {
	record := cloneTranslation(translation)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Message)(nil)).Where("id = ?", record.MessageID).Exists(ctx)
		if err != nil {
			return fmt.Errorf("load message: %w", err)
		}
		if !exists {
			return &domain.NotFoundError{Resource: messageNamespace, Key: record.MessageID.String()}
		}
		var existing Translation
		err = tx.NewSelect().Model(&existing).Where("id = ?", record.ID).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return fmt.Errorf("insert message translation: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load message translation: %w", err)
		default:
			record.CreatedAt = existing.CreatedAt
			if _, err := tx.NewUpdate().
				Model(record).
				Column("value", "status", "updated_by", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("update message translation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%s repository error: %w", translationNamespace, err)
	}
	return record, nil
}

// InvalidateCache drops every cached message read.
func (r *BunMessageRepository) InvalidateCache(ctx context.Context) error {
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

package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/domain"
)

const itemResource = "queue_item"

// BunQueueRepository implements QueueRepository on bun.
type BunQueueRepository struct {
	db   *bun.DB
	repo repository.Repository[*Item]
}

var _ QueueRepository = (*BunQueueRepository)(nil)

// NewBunQueueRepository creates a bun backed queue repository.
func NewBunQueueRepository(db *bun.DB) *BunQueueRepository {
	return &BunQueueRepository{db: db, repo: NewItemRepository(db)}
}

func (r *BunQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunQueueRepository) FindPendingByUnit(ctx context.Context, unitID uuid.UUID) (*Item, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.unit_id = ?", unitID).
			Where("?TableAlias.status IN (?)", bun.In([]Status{StatusOpen, StatusAssigned})).
			Limit(1)
	}))
	if err != nil {
		return nil, mapRepositoryError(err, unitID.String())
	}
	if len(records) == 0 {
		return nil, &domain.NotFoundError{Resource: itemResource, Key: unitID.String()}
	}
	return records[0], nil
}

func (r *BunQueueRepository) ListPending(ctx context.Context, locale string) ([]*Item, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.status IN (?)", bun.In([]Status{StatusOpen, StatusAssigned}))
		if locale != "" {
			q = q.Where("?TableAlias.locale = ?", locale)
		}
		return q.OrderExpr("?TableAlias.priority DESC").OrderExpr("?TableAlias.created_at ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, locale)
	}
	sortItems(records)
	return records, nil
}

func (r *BunQueueRepository) Save(ctx context.Context, item *Item) (*Item, error) {
	record := cloneItem(item)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing Item
		err := tx.NewSelect().Model(&existing).Where("id = ?", record.ID).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return fmt.Errorf("insert queue item: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load queue item: %w", err)
		default:
			record.CreatedAt = existing.CreatedAt
			if _, err := tx.NewUpdate().
				Model(record).
				Column("priority", "status", "assignee", "updated_at", "completed_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("update queue item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", itemResource, err)
	}
	return record, nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &domain.NotFoundError{Resource: itemResource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", itemResource, err)
}

package queue

import (
	"context"

	"github.com/google/uuid"
)

// QueueRepository persists work items.
type QueueRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindPendingByUnit returns the open or assigned item of a unit.
	FindPendingByUnit(ctx context.Context, unitID uuid.UUID) (*Item, error)
	// ListPending returns open and assigned items, optionally for one locale.
	ListPending(ctx context.Context, locale string) ([]*Item, error)
	Save(ctx context.Context, item *Item) (*Item, error)
}

package queue

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
)

type memoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
}

// NewMemoryRepository constructs an in-memory queue repository.
func NewMemoryRepository() QueueRepository {
	return &memoryRepository{items: make(map[uuid.UUID]*Item)}
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "queue_item", Key: id.String()}
	}
	return cloneItem(item), nil
}

func (m *memoryRepository) FindPendingByUnit(_ context.Context, unitID uuid.UUID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, item := range m.items {
		if item.UnitID == unitID && item.Status.Pending() {
			return cloneItem(item), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "queue_item", Key: unitID.String()}
}

func (m *memoryRepository) ListPending(_ context.Context, locale string) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Item, 0)
	for _, item := range m.items {
		if !item.Status.Pending() {
			continue
		}
		if locale != "" && item.Locale != locale {
			continue
		}
		out = append(out, cloneItem(item))
	}
	sortItems(out)
	return out, nil
}

func (m *memoryRepository) Save(_ context.Context, item *Item) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneItem(item)
	m.items[stored.ID] = stored
	return cloneItem(stored), nil
}

// sortItems orders by priority descending, then oldest first.
func sortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}

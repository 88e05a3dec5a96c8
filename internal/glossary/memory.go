package glossary

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
}

// NewMemoryRepository constructs an in-memory glossary repository.
func NewMemoryRepository() GlossaryRepository {
	return &memoryRepository{entries: make(map[uuid.UUID]*Entry)}
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "glossary_entry", Key: id.String()}
	}
	return cloneEntry(entry), nil
}

func (m *memoryRepository) ListByPair(_ context.Context, sourceLocale, targetLocale string) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Entry, 0)
	for _, entry := range m.entries {
		if entry.SourceLocale == sourceLocale && entry.TargetLocale == targetLocale {
			out = append(out, cloneEntry(entry))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Normalized < out[j].Normalized })
	return out, nil
}

func (m *memoryRepository) Save(_ context.Context, entry *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneEntry(entry)
	if existing, ok := m.entries[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	m.entries[stored.ID] = stored
	return cloneEntry(stored), nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return &domain.NotFoundError{Resource: "glossary_entry", Key: id.String()}
	}
	delete(m.entries, id)
	return nil
}

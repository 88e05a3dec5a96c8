package units

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Unit
	history map[uuid.UUID][]*HistoryEntry
}

// NewMemoryRepository constructs an in-memory unit repository.
func NewMemoryRepository() UnitRepository {
	return &memoryRepository{
		byID:    make(map[uuid.UUID]*Unit),
		history: make(map[uuid.UUID][]*HistoryEntry),
	}
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "translation_unit", Key: id.String()}
	}
	return cloneUnit(record), nil
}

func (m *memoryRepository) ListByEntity(_ context.Context, ref domain.EntityRef) ([]*Unit, error) {
	return m.filter(func(u *Unit) bool {
		return u.EntityType == ref.Type && u.EntityID == ref.ID
	}), nil
}

func (m *memoryRepository) ListByLocale(_ context.Context, locale string) ([]*Unit, error) {
	return m.filter(func(u *Unit) bool {
		return u.TargetLocale == locale
	}), nil
}

func (m *memoryRepository) filter(keep func(*Unit) bool) []*Unit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Unit, 0)
	for _, record := range m.byID {
		if keep(record) {
			out = append(out, cloneUnit(record))
		}
	}
	sortUnits(out)
	return out
}

func (m *memoryRepository) Save(_ context.Context, unit *Unit, entry *HistoryEntry, expectedRevision int) (*Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.byID[unit.ID]
	switch {
	case !exists && expectedRevision != 0:
		return nil, ErrRevisionConflict
	case exists && current.Revision != expectedRevision:
		return nil, ErrRevisionConflict
	}

	stored := cloneUnit(unit)
	m.byID[stored.ID] = stored
	if entry != nil {
		m.history[stored.ID] = append(m.history[stored.ID], cloneEntry(entry))
	}
	return cloneUnit(stored), nil
}

func (m *memoryRepository) DeleteByEntity(_ context.Context, ref domain.EntityRef, record DeletionRecorder) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, unit := range m.byID {
		if unit.EntityType != ref.Type || unit.EntityID != ref.ID {
			continue
		}
		if record != nil {
			if entry := record(cloneUnit(unit)); entry != nil {
				m.history[id] = append(m.history[id], cloneEntry(entry))
			}
		}
		delete(m.byID, id)
		deleted++
	}
	return deleted, nil
}

func (m *memoryRepository) History(_ context.Context, unitID uuid.UUID) ([]*HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.history[unitID]
	out := make([]*HistoryEntry, len(entries))
	for i, entry := range entries {
		out[i] = cloneEntry(entry)
	}
	return out, nil
}

func sortUnits(records []*Unit) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.EntityType != b.EntityType {
			return a.EntityType < b.EntityType
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.TargetLocale < b.TargetLocale
	})
}

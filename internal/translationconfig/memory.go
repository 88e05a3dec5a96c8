package translationconfig

import (
	"context"
	"sync"
)

// MemoryRepository stores translation settings in-memory.
type MemoryRepository struct {
	mu       sync.Mutex
	settings *Settings
	events   *broadcaster
}

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: newBroadcaster()}
}

// Get returns the stored settings or ErrSettingsNotFound.
func (r *MemoryRepository) Get(context.Context) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return Settings{}, ErrSettingsNotFound
	}
	return *r.settings, nil
}

// Upsert stores settings. Writing identical settings emits nothing.
func (r *MemoryRepository) Upsert(_ context.Context, settings Settings) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.settings
	stored := settings
	r.settings = &stored
	switch {
	case previous == nil:
		r.events.Publish(ChangeCreated, stored)
	case *previous != stored:
		r.events.Publish(ChangeUpdated, stored)
	}
	return stored, nil
}

// Delete clears stored settings.
func (r *MemoryRepository) Delete(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return ErrSettingsNotFound
	}
	r.settings = nil
	r.events.Publish(ChangeDeleted, Settings{})
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.events.Subscribe(ctx)
}

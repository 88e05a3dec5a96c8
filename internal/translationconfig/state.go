package translationconfig

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

// State provides a concurrency-safe view of the translation toggles.
type State struct {
	current atomic.Pointer[Settings]
}

// NewState constructs a state seeded with settings.
func NewState(settings Settings) *State {
	st := &State{}
	st.Store(settings)
	return st
}

// Load returns the current settings. A nil state reports the defaults.
func (s *State) Load() Settings {
	if s == nil {
		return DefaultSettings()
	}
	if current := s.current.Load(); current != nil {
		return *current
	}
	return DefaultSettings()
}

// Store replaces the current settings.
func (s *State) Store(settings Settings) {
	if s == nil {
		return
	}
	s.current.Store(&settings)
}

// Enabled reports whether translations are enabled globally.
func (s *State) Enabled() bool {
	return s.Load().TranslationsEnabled
}

// Synthesize reports whether source changes create missing units.
func (s *State) Synthesize() bool {
	settings := s.Load()
	return settings.TranslationsEnabled && settings.SynthesizeOnSourceChange
}

// EnqueueStale reports whether stale units are queued, and with what priority.
func (s *State) EnqueueStale() (bool, int) {
	settings := s.Load()
	return settings.TranslationsEnabled && settings.EnqueueStale, settings.QueuePriority
}

// Sync seeds the state from repo and keeps it current until ctx ends.
// Deleting the settings resets the state to the defaults.
func Sync(ctx context.Context, repo Repository, state *State, logger interfaces.Logger) error {
	events, err := repo.Subscribe(ctx)
	if err != nil {
		return err
	}
	settings, err := repo.Get(ctx)
	switch {
	case err == nil:
		state.Store(settings)
	case errors.Is(err, ErrSettingsNotFound):
		state.Store(DefaultSettings())
	default:
		return err
	}

	go func() {
		for evt := range events {
			if evt.Type == ChangeDeleted {
				state.Store(DefaultSettings())
			} else {
				state.Store(evt.Settings)
			}
			if logger != nil {
				logger.Info("translationconfig.changed", "type", string(evt.Type), "enabled", state.Enabled())
			}
		}
	}()
	return nil
}

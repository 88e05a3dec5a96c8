package translationconfig

import (
	"context"
	"errors"
)

// ErrSettingsNotFound indicates that translation settings have not been configured yet.
var ErrSettingsNotFound = errors.New("translationconfig: settings not found")

// Settings are the runtime toggles consulted when source content changes.
type Settings struct {
	// TranslationsEnabled turns unit synthesis off entirely when false.
	TranslationsEnabled bool `json:"translations_enabled" yaml:"translations_enabled" env:"TRANSLATIONS_ENABLED"`
	// SynthesizeOnSourceChange creates units for every active locale on a
	// source change instead of only refreshing existing ones.
	SynthesizeOnSourceChange bool `json:"synthesize_on_source_change" yaml:"synthesize_on_source_change" env:"SYNTHESIZE_ON_SOURCE_CHANGE"`
	// EnqueueStale queues units that need translator attention.
	EnqueueStale bool `json:"enqueue_stale" yaml:"enqueue_stale" env:"ENQUEUE_STALE"`
	// QueuePriority is the priority given to queued units.
	QueuePriority int `json:"queue_priority" yaml:"queue_priority" env:"QUEUE_PRIORITY"`
}

// DefaultSettings are used until settings are persisted.
func DefaultSettings() Settings {
	return Settings{
		TranslationsEnabled:      true,
		SynthesizeOnSourceChange: true,
		EnqueueStale:             true,
	}
}

// Repository persists translation settings and emits change notifications.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
	Delete(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// ChangeType enumerates settings change events.
type ChangeType string

const (
	// ChangeCreated indicates settings were first persisted.
	ChangeCreated ChangeType = "created"
	// ChangeUpdated indicates settings were updated.
	ChangeUpdated ChangeType = "updated"
	// ChangeDeleted indicates settings were cleared.
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports settings mutations to interested subscribers.
type ChangeEvent struct {
	Type     ChangeType
	Settings Settings
}

package translationconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

const settingsRowID = 1

var errNoDatabase = errors.New("translationconfig: bun repository requires a database")

// SettingsRecord is the single persisted settings row.
type SettingsRecord struct {
	bun.BaseModel `bun:"table:localize_settings"`

	ID                       int       `bun:",pk"`
	TranslationsEnabled      bool      `bun:"translations_enabled,notnull"`
	SynthesizeOnSourceChange bool      `bun:"synthesize_on_source_change,notnull"`
	EnqueueStale             bool      `bun:"enqueue_stale,notnull"`
	QueuePriority            int       `bun:"queue_priority,notnull"`
	UpdatedAt                time.Time `bun:"updated_at,notnull"`
}

func (m *SettingsRecord) settings() Settings {
	return Settings{
		TranslationsEnabled:      m.TranslationsEnabled,
		SynthesizeOnSourceChange: m.SynthesizeOnSourceChange,
		EnqueueStale:             m.EnqueueStale,
		QueuePriority:            m.QueuePriority,
	}
}

// BunRepository persists translation settings with bun.
type BunRepository struct {
	db     *bun.DB
	now    func() time.Time
	events *broadcaster
}

// NewBunRepository constructs a bun backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:     db,
		now:    time.Now,
		events: newBroadcaster(),
	}
}

// Get returns the persisted translation settings.
func (r *BunRepository) Get(ctx context.Context) (Settings, error) {
	if r.db == nil {
		return Settings{}, errNoDatabase
	}
	record, err := r.load(ctx, r.db)
	if err != nil {
		return Settings{}, err
	}
	return record.settings(), nil
}

func (r *BunRepository) load(ctx context.Context, db bun.IDB) (*SettingsRecord, error) {
	var record SettingsRecord
	if err := db.NewSelect().Model(&record).Where("id = ?", settingsRowID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("translationconfig: load settings: %w", err)
	}
	return &record, nil
}

// Upsert creates or updates the persisted settings in one transaction.
func (r *BunRepository) Upsert(ctx context.Context, settings Settings) (Settings, error) {
	if r.db == nil {
		return Settings{}, errNoDatabase
	}

	var change ChangeType
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := r.load(ctx, tx)
		if err != nil && !errors.Is(err, ErrSettingsNotFound) {
			return err
		}
		record := &SettingsRecord{
			ID:                       settingsRowID,
			TranslationsEnabled:      settings.TranslationsEnabled,
			SynthesizeOnSourceChange: settings.SynthesizeOnSourceChange,
			EnqueueStale:             settings.EnqueueStale,
			QueuePriority:            settings.QueuePriority,
			UpdatedAt:                r.now().UTC(),
		}
		if existing == nil {
			change = ChangeCreated
			_, err = tx.NewInsert().Model(record).Exec(ctx)
			return err
		}
		if existing.settings() == settings {
			return nil
		}
		change = ChangeUpdated
		_, err = tx.NewUpdate().
			Model(record).
			Column("translations_enabled", "synthesize_on_source_change", "enqueue_stale", "queue_priority", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
	if err != nil {
		return Settings{}, fmt.Errorf("translationconfig: upsert settings: %w", err)
	}
	if change != "" {
		r.events.Publish(change, settings)
	}
	return settings, nil
}

// Delete clears persisted settings.
func (r *BunRepository) Delete(ctx context.Context) error {
	if r.db == nil {
		return errNoDatabase
	}
	res, err := r.db.NewDelete().Model((*SettingsRecord)(nil)).Where("id = ?", settingsRowID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("translationconfig: delete settings: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSettingsNotFound
	}
	r.events.Publish(ChangeDeleted, Settings{})
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.events.Subscribe(ctx)
}

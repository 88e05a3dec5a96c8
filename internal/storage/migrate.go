package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/glossary"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/messages"
	"github.com/goliatone/go-localize/internal/queue"
	"github.com/goliatone/go-localize/internal/translationconfig"
	"github.com/goliatone/go-localize/internal/units"
)

func models() []any {
	return []any{
		(*locales.Locale)(nil),
		(*units.Unit)(nil),
		(*units.HistoryEntry)(nil),
		(*messages.Message)(nil),
		(*messages.Translation)(nil),
		(*queue.Item)(nil),
		(*glossary.Entry)(nil),
		(*translationconfig.SettingsRecord)(nil),
	}
}

type index struct {
	name    string
	model   any
	columns []string
}

func indexes() []index {
	return []index{
		{"localize_units_entity_idx", (*units.Unit)(nil), []string{"entity_type", "entity_id"}},
		{"localize_units_locale_idx", (*units.Unit)(nil), []string{"target_locale"}},
		{"localize_history_unit_idx", (*units.HistoryEntry)(nil), []string{"unit_id", "revision"}},
		{"localize_msg_translations_locale_idx", (*messages.Translation)(nil), []string{"locale"}},
		{"localize_queue_unit_idx", (*queue.Item)(nil), []string{"unit_id", "status"}},
		{"localize_queue_locale_idx", (*queue.Item)(nil), []string{"locale", "status"}},
		{"localize_glossary_pair_idx", (*glossary.Entry)(nil), []string{"source_locale", "target_locale"}},
	}
}

// Migrate creates the localization tables and their lookup indexes when they
// do not exist yet. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range models() {
			if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("storage: create table for %T: %w", model, err)
			}
		}
		for _, idx := range indexes() {
			if _, err := tx.NewCreateIndex().
				Model(idx.model).
				Index(idx.name).
				Column(idx.columns...).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("storage: create index %s: %w", idx.name, err)
			}
		}
		return nil
	})
}

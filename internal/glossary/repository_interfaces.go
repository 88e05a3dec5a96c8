package glossary

import (
	"context"

	"github.com/google/uuid"
)

// GlossaryRepository persists glossary entries.
type GlossaryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByPair(ctx context.Context, sourceLocale, targetLocale string) ([]*Entry, error)
	Save(ctx context.Context, entry *Entry) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

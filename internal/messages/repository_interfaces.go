package messages

import (
	"context"

	"github.com/google/uuid"
)

// MessageRepository persists messages and their per-locale translations.
type MessageRepository interface {
	GetMessage(ctx context.Context, id uuid.UUID) (*Message, error)
	ListMessages(ctx context.Context) ([]*Message, error)
	SaveMessage(ctx context.Context, message *Message) (*Message, error)
	// DeleteMessage removes the message and every translation of it.
	DeleteMessage(ctx context.Context, id uuid.UUID) error

	GetTranslation(ctx context.Context, id uuid.UUID) (*Translation, error)
	ListTranslationsByMessage(ctx context.Context, messageID uuid.UUID) ([]*Translation, error)
	ListTranslationsByLocale(ctx context.Context, locale string) ([]*Translation, error)
	SaveTranslation(ctx context.Context, translation *Translation) (*Translation, error)
}

package messages

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/domain"
)

// KeySeparator splits a full message key into namespace and key.
const KeySeparator = "."

// Message is a UI string with a code-level default value.
type Message struct {
	bun.BaseModel `bun:"table:localize_messages,alias:msg"`

	ID           uuid.UUID `bun:",pk,type:uuid"                                   json:"id"`
	Namespace    string    `bun:"namespace,notnull,unique:localize_message_key"   json:"namespace"`
	Key          string    `bun:"message_key,notnull,unique:localize_message_key" json:"key"`
	DefaultValue string    `bun:"default_value,notnull"                           json:"default_value"`
	Description  string    `bun:"description"                                     json:"description,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull"                     json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull"                     json:"updated_at"`
}

// FullKey returns namespace.key, or the bare key for un-namespaced messages.
func (m *Message) FullKey() string {
	return JoinKey(m.Namespace, m.Key)
}

// Translation is the value of one message in one locale.
type Translation struct {
	bun.BaseModel `bun:"table:localize_message_translations,alias:mtr"`

	ID        uuid.UUID            `bun:",pk,type:uuid"                                          json:"id"`
	MessageID uuid.UUID            `bun:"message_id,notnull,type:uuid,unique:localize_msg_locale" json:"message_id"`
	Locale    string               `bun:"locale,notnull,unique:localize_msg_locale"               json:"locale"`
	Value     string               `bun:"value,notnull"                                           json:"value"`
	Status    domain.MessageStatus `bun:"status,notnull"                                          json:"status"`
	UpdatedBy string               `bun:"updated_by"                                              json:"updated_by,omitempty"`
	CreatedAt time.Time            `bun:"created_at,nullzero,notnull"                             json:"created_at"`
	UpdatedAt time.Time            `bun:"updated_at,nullzero,notnull"                             json:"updated_at"`
}

// MessageInput defines or redefines a message.
type MessageInput struct {
	Key          string
	DefaultValue string
	Description  string
}

// TranslationInput writes the value of a message in one locale. Status
// defaults to draft.
type TranslationInput struct {
	Key    string
	Locale string
	Value  string
	Status *domain.MessageStatus
	Actor  string
}

// SplitKey splits "namespace.key" at the first separator. Keys may contain
// further dots; namespaces may not. A key without a separator has no
// namespace.
func SplitKey(full string) (namespace, key string, err error) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", "", &domain.ValidationError{Field: "key", Message: "message key is required"}
	}
	namespace, key, ok := strings.Cut(full, KeySeparator)
	if !ok {
		return "", full, nil
	}
	namespace = strings.TrimSpace(namespace)
	key = strings.TrimSpace(key)
	if namespace == "" || key == "" {
		return "", "", &domain.ValidationError{Field: "key", Message: "malformed message key " + full}
	}
	return namespace, key, nil
}

// JoinKey is the inverse of SplitKey.
func JoinKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + KeySeparator + key
}

func cloneMessage(src *Message) *Message {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}

func cloneTranslation(src *Translation) *Translation {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}

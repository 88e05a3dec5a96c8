package messages

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
)

type memoryRepository struct {
	mu           sync.RWMutex
	messages     map[uuid.UUID]*Message
	translations map[uuid.UUID]*Translation
}

// NewMemoryRepository constructs an in-memory message repository.
func NewMemoryRepository() MessageRepository {
	return &memoryRepository{
		messages:     make(map[uuid.UUID]*Message),
		translations: make(map[uuid.UUID]*Translation),
	}
}

func (m *memoryRepository) GetMessage(_ context.Context, id uuid.UUID) (*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.messages[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "message", Key: id.String()}
	}
	return cloneMessage(record), nil
}

func (m *memoryRepository) ListMessages(_ context.Context) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Message, 0, len(m.messages))
	for _, record := range m.messages {
		out = append(out, cloneMessage(record))
	}
	sortMessages(out)
	return out, nil
}

func (m *memoryRepository) SaveMessage(_ context.Context, message *Message) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneMessage(message)
	if existing, ok := m.messages[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	m.messages[stored.ID] = stored
	return cloneMessage(stored), nil
}

func (m *memoryRepository) DeleteMessage(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.messages[id]; !ok {
		return &domain.NotFoundError{Resource: "message", Key: id.String()}
	}
	delete(m.messages, id)
	for tid, tr := range m.translations {
		if tr.MessageID == id {
			delete(m.translations, tid)
		}
	}
	return nil
}

func (m *memoryRepository) GetTranslation(_ context.Context, id uuid.UUID) (*Translation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.translations[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "message_translation", Key: id.String()}
	}
	return cloneTranslation(record), nil
}

func (m *memoryRepository) ListTranslationsByMessage(_ context.Context, messageID uuid.UUID) ([]*Translation, error) {
	return m.filterTranslations(func(tr *Translation) bool { return tr.MessageID == messageID }), nil
}

func (m *memoryRepository) ListTranslationsByLocale(_ context.Context, locale string) ([]*Translation, error) {
	return m.filterTranslations(func(tr *Translation) bool { return tr.Locale == locale }), nil
}

func (m *memoryRepository) filterTranslations(keep func(*Translation) bool) []*Translation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Translation, 0)
	for _, record := range m.translations {
		if keep(record) {
			out = append(out, cloneTranslation(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Locale != out[j].Locale {
			return out[i].Locale < out[j].Locale
		}
		return out[i].MessageID.String() < out[j].MessageID.String()
	})
	return out
}

func (m *memoryRepository) SaveTranslation(_ context.Context, translation *Translation) (*Translation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.messages[translation.MessageID]; !ok {
		return nil, &domain.NotFoundError{Resource: "message", Key: translation.MessageID.String()}
	}
	stored := cloneTranslation(translation)
	if existing, ok := m.translations[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	m.translations[stored.ID] = stored
	return cloneTranslation(stored), nil
}

func sortMessages(records []*Message) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Namespace != records[j].Namespace {
			return records[i].Namespace < records[j].Namespace
		}
		return records[i].Key < records[j].Key
	})
}

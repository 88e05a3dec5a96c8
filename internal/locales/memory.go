package locales

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-localize/internal/domain"
)

type memoryRepository struct {
	mu     sync.RWMutex
	byCode map[string]*Locale
}

// NewMemoryRepository constructs an in-memory locale repository.
func NewMemoryRepository() LocaleRepository {
	return &memoryRepository{
		byCode: make(map[string]*Locale),
	}
}

func (m *memoryRepository) GetByCode(_ context.Context, code string) (*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byCode[code]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "locale", Key: code}
	}
	return cloneLocale(record), nil
}

func (m *memoryRepository) List(_ context.Context) ([]*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Locale, 0, len(m.byCode))
	for _, record := range m.byCode {
		out = append(out, cloneLocale(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memoryRepository) Save(_ context.Context, locale *Locale) (*Locale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if locale.IsDefault {
		for code, record := range m.byCode {
			if code != locale.Code && record.IsDefault {
				demoted := cloneLocale(record)
				demoted.IsDefault = false
				m.byCode[code] = demoted
			}
		}
	}
	stored := cloneLocale(locale)
	m.byCode[stored.Code] = stored
	return cloneLocale(stored), nil
}

func (m *memoryRepository) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byCode[code]; !ok {
		return &domain.NotFoundError{Resource: "locale", Key: code}
	}
	delete(m.byCode, code)
	return nil
}

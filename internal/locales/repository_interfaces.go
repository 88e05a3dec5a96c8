package locales

import "context"

// LocaleRepository persists locale nodes keyed by code.
type LocaleRepository interface {
	GetByCode(ctx context.Context, code string) (*Locale, error)
	List(ctx context.Context) ([]*Locale, error)
	// Save inserts or replaces the locale. When the locale is the default,
	// every other locale is demoted within the same write.
	Save(ctx context.Context, locale *Locale) (*Locale, error)
	Delete(ctx context.Context, code string) error
}

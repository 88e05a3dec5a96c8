package locales

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Locale is one node of the fallback graph. Fallback holds the code of the
// next locale to consult, or nil for a root.
type Locale struct {
	bun.BaseModel `bun:"table:localize_locales,alias:loc"`

	ID         uuid.UUID `bun:",pk,type:uuid"              json:"id"`
	Code       string    `bun:"code,notnull,unique"        json:"code"`
	Name       string    `bun:"name,notnull"               json:"name"`
	NativeName string    `bun:"native_name"                json:"native_name,omitempty"`
	IsDefault  bool      `bun:"is_default,notnull"         json:"is_default"`
	IsActive   bool      `bun:"is_active,notnull"          json:"is_active"`
	RTL        bool      `bun:"rtl,notnull"                json:"rtl"`
	SortOrder  int       `bun:"sort_order,notnull"         json:"sort_order"`
	Fallback   *string   `bun:"fallback_code"              json:"fallback,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull" json:"updated_at"`
}

// FallbackCode returns the fallback code or an empty string.
func (l *Locale) FallbackCode() string {
	if l == nil || l.Fallback == nil {
		return ""
	}
	return *l.Fallback
}

// LocaleInput captures an add-or-update request. IsActive defaults to true for
// new locales and keeps the stored value for existing ones when nil.
type LocaleInput struct {
	Code       string
	Name       string
	NativeName string
	IsDefault  bool
	IsActive   *bool
	RTL        bool
	SortOrder  int
	Fallback   string
}

func cloneLocale(src *Locale) *Locale {
	if src == nil {
		return nil
	}
	cloned := *src
	if src.Fallback != nil {
		fallback := *src.Fallback
		cloned.Fallback = &fallback
	}
	return &cloned
}

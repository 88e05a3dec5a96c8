package glossary

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry is the approved translation of a term between two locales.
type Entry struct {
	bun.BaseModel `bun:"table:localize_glossary,alias:gl"`

	ID           uuid.UUID `bun:",pk,type:uuid"                                       json:"id"`
	Term         string    `bun:"term,notnull"                                        json:"term"`
	Normalized   string    `bun:"normalized_term,notnull,unique:localize_glossary_key" json:"-"`
	SourceLocale string    `bun:"source_locale,notnull,unique:localize_glossary_key"  json:"source_locale"`
	TargetLocale string    `bun:"target_locale,notnull,unique:localize_glossary_key"  json:"target_locale"`
	Translation  string    `bun:"translation,notnull"                                 json:"translation"`
	Notes        string    `bun:"notes"                                               json:"notes,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull"                         json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull"                         json:"updated_at"`
}

// EntryInput writes a glossary entry.
type EntryInput struct {
	Term         string
	SourceLocale string
	TargetLocale string
	Translation  string
	Notes        string
}

// Match is one occurrence of a glossary term inside a text.
type Match struct {
	Entry  *Entry `json:"entry"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// NormalizeTerm folds a term for case-insensitive comparison.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

func cloneEntry(src *Entry) *Entry {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}

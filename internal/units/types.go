package units

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/domain"
)

// Unit is the translation state of one entity field in one target locale.
// Revision increases on every write and backs compare-and-set updates.
type Unit struct {
	bun.BaseModel `bun:"table:localize_translation_units,alias:tu"`

	ID           uuid.UUID         `bun:",pk,type:uuid"                                  json:"id"`
	EntityType   string            `bun:"entity_type,notnull,unique:localize_unit_key"   json:"entity_type"`
	EntityID     string            `bun:"entity_id,notnull,unique:localize_unit_key"     json:"entity_id"`
	Field        string            `bun:"field,notnull,unique:localize_unit_key"         json:"field"`
	TargetLocale string            `bun:"target_locale,notnull,unique:localize_unit_key" json:"target_locale"`
	SourceLocale string            `bun:"source_locale,notnull"                          json:"source_locale"`
	SourceText   string            `bun:"source_text,notnull"                            json:"source_text"`
	TargetText   *string           `bun:"target_text"                                    json:"target_text,omitempty"`
	Status       domain.UnitStatus `bun:"status,notnull"                                 json:"status"`
	Revision     int               `bun:"revision,notnull"                               json:"revision"`
	UpdatedBy    string            `bun:"updated_by"                                     json:"updated_by,omitempty"`
	CreatedAt    time.Time         `bun:"created_at,nullzero,notnull"                    json:"created_at"`
	UpdatedAt    time.Time         `bun:"updated_at,nullzero,notnull"                    json:"updated_at"`
}

// Entity returns the reference the unit belongs to.
func (u *Unit) Entity() domain.EntityRef {
	return domain.EntityRef{Type: u.EntityType, ID: u.EntityID}
}

// HasTarget reports whether a translated text is present.
func (u *Unit) HasTarget() bool {
	return u != nil && u.TargetText != nil
}

// HistoryEntry is an immutable audit row for one unit write. A row with an
// empty NewStatus records the deletion of the unit.
type HistoryEntry struct {
	bun.BaseModel `bun:"table:localize_translation_history,alias:th"`

	ID             uuid.UUID         `bun:",pk,type:uuid"               json:"id"`
	UnitID         uuid.UUID         `bun:"unit_id,notnull,type:uuid"   json:"unit_id"`
	Revision       int               `bun:"revision,notnull"            json:"revision"`
	EntityType     string            `bun:"entity_type,notnull"         json:"entity_type"`
	EntityID       string            `bun:"entity_id,notnull"           json:"entity_id"`
	Field          string            `bun:"field,notnull"               json:"field"`
	TargetLocale   string            `bun:"target_locale,notnull"       json:"target_locale"`
	PreviousStatus domain.UnitStatus `bun:"previous_status"             json:"previous_status,omitempty"`
	NewStatus      domain.UnitStatus `bun:"new_status,notnull"          json:"new_status"`
	PreviousText   *string           `bun:"previous_text"               json:"previous_text,omitempty"`
	NewText        *string           `bun:"new_text"                    json:"new_text,omitempty"`
	SourceChanged  bool              `bun:"source_changed,notnull"      json:"source_changed"`
	Actor          string            `bun:"actor"                       json:"actor,omitempty"`
	CreatedAt      time.Time         `bun:"created_at,nullzero,notnull" json:"created_at"`
}

// Key addresses one unit.
type Key struct {
	Entity domain.EntityRef
	Field  string
	Locale string
}

// UpsertInput is the payload for Store.Upsert. A nil Status lets the store
// derive it from the previous state; a non-nil Status is applied as given.
type UpsertInput struct {
	Entity       domain.EntityRef
	Field        string
	SourceLocale string
	TargetLocale string
	SourceText   string
	TargetText   *string
	Status       *domain.UnitStatus
	Actor        string
}

// TransitionInput moves a unit through the status workflow. TargetText, when
// set, replaces the translated text in the same write.
type TransitionInput struct {
	Key        Key
	To         domain.UnitStatus
	TargetText *string
	Actor      string
}

func cloneUnit(src *Unit) *Unit {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.TargetText = cloneString(src.TargetText)
	return &cloned
}

func cloneEntry(src *HistoryEntry) *HistoryEntry {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.PreviousText = cloneString(src.PreviousText)
	cloned.NewText = cloneString(src.NewText)
	return &cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

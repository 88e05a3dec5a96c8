package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/domain"
)

// Status tracks a work item through the queue.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
)

// Pending reports whether the item still awaits work.
func (s Status) Pending() bool {
	return s == StatusOpen || s == StatusAssigned
}

// Item is a request for a translator to work on one translation unit.
type Item struct {
	bun.BaseModel `bun:"table:localize_translation_queue,alias:tq"`

	ID          uuid.UUID  `bun:",pk,type:uuid"               json:"id"`
	UnitID      uuid.UUID  `bun:"unit_id,notnull,type:uuid"   json:"unit_id"`
	EntityType  string     `bun:"entity_type,notnull"         json:"entity_type"`
	EntityID    string     `bun:"entity_id,notnull"           json:"entity_id"`
	Field       string     `bun:"field,notnull"               json:"field"`
	Locale      string     `bun:"locale,notnull"              json:"locale"`
	Priority    int        `bun:"priority,notnull"            json:"priority"`
	Status      Status     `bun:"status,notnull"              json:"status"`
	Assignee    string     `bun:"assignee"                    json:"assignee,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull" json:"updated_at"`
	CompletedAt *time.Time `bun:"completed_at,nullzero"       json:"completed_at,omitempty"`
}

// Entity returns the reference of the entity the item belongs to.
func (i *Item) Entity() domain.EntityRef {
	return domain.NewEntityRef(i.EntityType, i.EntityID)
}

// EnqueueInput describes the unit to queue.
type EnqueueInput struct {
	UnitID   uuid.UUID
	Entity   domain.EntityRef
	Field    string
	Locale   string
	Priority int
}

func cloneItem(src *Item) *Item {
	if src == nil {
		return nil
	}
	cloned := *src
	if src.CompletedAt != nil {
		at := *src.CompletedAt
		cloned.CompletedAt = &at
	}
	return &cloned
}

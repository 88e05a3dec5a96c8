package domain

import (
	"fmt"
	"strings"
)

// EntityRef identifies a content entity owned by an external collaborator.
// The translation layer never loads the entity itself, it only keys records by
// the type tag and opaque id.
type EntityRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NewEntityRef builds a trimmed reference.
func NewEntityRef(entityType, id string) EntityRef {
	return EntityRef{
		Type: strings.TrimSpace(entityType),
		ID:   strings.TrimSpace(id),
	}
}

// IsZero reports whether the reference is missing either component.
func (r EntityRef) IsZero() bool {
	return strings.TrimSpace(r.Type) == "" || strings.TrimSpace(r.ID) == ""
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.ID)
}

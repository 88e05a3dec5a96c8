package manager

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// Registry records which fields of each entity type are translatable. It is
// append-only: fields are never removed once registered.
type Registry struct {
	mu     sync.RWMutex
	fields map[string][]string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{fields: make(map[string][]string)}
}

// Register adds fields to entityType, keeping first registration order.
func (r *Registry) Register(entityType string, fields ...string) error {
	entityType = strings.TrimSpace(entityType)
	if entityType == "" {
		return &domain.ValidationError{Field: "entity_type", Message: "entity type is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.fields[entityType]
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" || slices.Contains(current, field) {
			continue
		}
		current = append(current, field)
	}
	r.fields[entityType] = current
	return nil
}

// RegisterTranslatable registers the fields an entity type declares.
func (r *Registry) RegisterTranslatable(t interfaces.Translatable) error {
	if t == nil {
		return &domain.ValidationError{Field: "translatable", Message: "translatable is required"}
	}
	return r.Register(t.EntityType(), t.TranslatableFields()...)
}

// Fields returns a copy of the fields registered for entityType.
func (r *Registry) Fields(entityType string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fields, ok := r.fields[strings.TrimSpace(entityType)]
	if !ok {
		return nil, false
	}
	return slices.Clone(fields), true
}

// Types lists registered entity types in order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.fields))
	for entityType := range r.fields {
		out = append(out, entityType)
	}
	sort.Strings(out)
	return out
}

// Check validates that field is registered for entityType.
func (r *Registry) Check(entityType, field string) error {
	fields, ok := r.Fields(entityType)
	if !ok {
		return &domain.NotFoundError{Resource: "translatable entity type", Key: entityType}
	}
	if !slices.Contains(fields, strings.TrimSpace(field)) {
		return &domain.NotFoundError{Resource: "translatable field", Key: entityType + "." + field}
	}
	return nil
}

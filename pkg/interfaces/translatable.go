package interfaces

// Translatable is implemented by entity-owning collaborators that opt their
// fields into translation tracking. Implementations are registered with the
// translation manager at process start.
type Translatable interface {
	EntityType() string
	TranslatableFields() []string
}

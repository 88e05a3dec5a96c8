package units

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewUnitRepository creates the generic repository for translation units.
// Unit IDs derive from the composite key, so lookups go through the ID.
func NewUnitRepository(db *bun.DB) repository.Repository[*Unit] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Unit]{
		NewRecord: func() *Unit { return &Unit{} },
		GetID: func(u *Unit) uuid.UUID {
			return u.ID
		},
		SetID: func(u *Unit, id uuid.UUID) {
			u.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(u *Unit) string {
			return u.ID.String()
		},
	})
}

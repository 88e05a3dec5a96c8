package units

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
)

// ErrRevisionConflict reports that a unit changed between read and write.
var ErrRevisionConflict = errors.New("units: revision conflict")

// DeletionRecorder builds the history row written for a unit removed by
// DeleteByEntity.
type DeletionRecorder func(unit *Unit) *HistoryEntry

// UnitRepository persists units together with their history.
type UnitRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	ListByEntity(ctx context.Context, ref domain.EntityRef) ([]*Unit, error)
	ListByLocale(ctx context.Context, locale string) ([]*Unit, error)
	// Save writes unit and entry atomically. expectedRevision is the revision
	// the caller read (0 for a new unit); a mismatch yields ErrRevisionConflict.
	Save(ctx context.Context, unit *Unit, entry *HistoryEntry, expectedRevision int) (*Unit, error)
	// DeleteByEntity removes every unit of ref and writes the row built by
	// record for each of them in the same write.
	DeleteByEntity(ctx context.Context, ref domain.EntityRef, record DeletionRecorder) (int, error)
	History(ctx context.Context, unitID uuid.UUID) ([]*HistoryEntry, error)
}

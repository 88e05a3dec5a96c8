package units

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/identity"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// ErrRepositoryRequired is raised when NewStore receives no repository.
var ErrRepositoryRequired = errors.New("units: repository required")

const maxWriteAttempts = 3

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger overrides the store logger.
func WithLogger(logger interfaces.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// ChangeHook runs after a committed unit write. Field is empty when every
// unit of the entity changed.
type ChangeHook func(ctx context.Context, entity domain.EntityRef, field string)

// Store keeps one unit per entity, field and target locale and records every
// change in the history log.
type Store struct {
	repo   UnitRepository
	logger interfaces.Logger
	now    func() time.Time

	hooksMu sync.RWMutex
	hooks   []ChangeHook
}

// NewStore constructs a Store backed by repo.
func NewStore(repo UnitRepository, opts ...StoreOption) *Store {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &Store{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OnChange registers a hook fired after each committed write.
func (s *Store) OnChange(hook ChangeHook) {
	if hook == nil {
		return
	}
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, hook)
}

func (s *Store) changed(ctx context.Context, entity domain.EntityRef, field string) {
	s.hooksMu.RLock()
	hooks := append([]ChangeHook(nil), s.hooks...)
	s.hooksMu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, entity, field)
	}
}

// UnitID returns the identifier of the unit addressed by key.
func UnitID(key Key) uuid.UUID {
	return identity.UnitUUID(key.Entity.Type, key.Entity.ID, key.Field, key.Locale)
}

func normalizeKey(key Key) (Key, error) {
	ref := domain.NewEntityRef(key.Entity.Type, key.Entity.ID)
	if ref.IsZero() {
		return Key{}, &domain.ValidationError{Field: "entity", Message: "entity type and id are required"}
	}
	field := strings.TrimSpace(key.Field)
	if field == "" {
		return Key{}, &domain.ValidationError{Field: "field", Message: "field is required"}
	}
	locale, err := locales.NormalizeCode(key.Locale)
	if err != nil {
		return Key{}, err
	}
	return Key{Entity: ref, Field: field, Locale: locale}, nil
}

// Upsert creates the unit or applies a new source snapshot and optional
// target text to it. Repeating a call with identical arguments is a no-op.
func (s *Store) Upsert(ctx context.Context, input UpsertInput) (*Unit, error) {
	key, err := normalizeKey(Key{Entity: input.Entity, Field: input.Field, Locale: input.TargetLocale})
	if err != nil {
		return nil, err
	}
	sourceLocale, err := locales.NormalizeCode(input.SourceLocale)
	if err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", *input.Status)}
	}

	for attempt := 1; ; attempt++ {
		unit, err := s.upsertOnce(ctx, key, sourceLocale, input)
		if !errors.Is(err, ErrRevisionConflict) || attempt >= maxWriteAttempts {
			return unit, err
		}
		s.logger.Debug("units.upsert.retry", "unit", key.Entity.String(), "field", key.Field, "locale", key.Locale, "attempt", attempt)
	}
}

func (s *Store) upsertOnce(ctx context.Context, key Key, sourceLocale string, input UpsertInput) (*Unit, error) {
	id := UnitID(key)
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	now := s.now().UTC()

	if existing == nil {
		status := domain.InitialUnitStatus(input.TargetText != nil)
		if input.Status != nil {
			status = *input.Status
		}
		unit := &Unit{
			ID:           id,
			EntityType:   key.Entity.Type,
			EntityID:     key.Entity.ID,
			Field:        key.Field,
			TargetLocale: key.Locale,
			SourceLocale: sourceLocale,
			SourceText:   input.SourceText,
			TargetText:   cloneString(input.TargetText),
			Status:       status,
			Revision:     1,
			UpdatedBy:    input.Actor,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		entry := s.historyFor(unit, "", nil, false, input.Actor, now)
		saved, err := s.repo.Save(ctx, unit, entry, 0)
		if err != nil {
			return nil, err
		}
		s.logger.Info("units.created", "unit", id, "field", key.Field, "locale", key.Locale, "status", status)
		s.changed(ctx, key.Entity, key.Field)
		return saved, nil
	}

	sourceChanged := existing.SourceText != input.SourceText
	targetChanged := input.TargetText != nil && !sameText(existing.TargetText, input.TargetText)
	targetText := existing.TargetText
	if input.TargetText != nil {
		targetText = input.TargetText
	}
	status := domain.StatusAfterWrite(existing.Status, sourceChanged, targetChanged, targetText != nil)
	if input.Status != nil {
		status = *input.Status
	}

	if !sourceChanged && !targetChanged && status == existing.Status && sourceLocale == existing.SourceLocale {
		return existing, nil
	}

	updated := cloneUnit(existing)
	updated.SourceLocale = sourceLocale
	updated.SourceText = input.SourceText
	updated.TargetText = cloneString(targetText)
	updated.Status = status
	updated.Revision = existing.Revision + 1
	updated.UpdatedBy = input.Actor
	updated.UpdatedAt = now

	entry := s.historyFor(updated, existing.Status, existing.TargetText, sourceChanged, input.Actor, now)
	saved, err := s.repo.Save(ctx, updated, entry, existing.Revision)
	if err != nil {
		return nil, err
	}
	if existing.Status != status {
		s.logger.Info("units.status.changed", "unit", id, "from", existing.Status, "to", status, "source_changed", sourceChanged)
	}
	s.changed(ctx, key.Entity, key.Field)
	return saved, nil
}

// Transition moves a unit through the operator workflow.
func (s *Store) Transition(ctx context.Context, input TransitionInput) (*Unit, error) {
	key, err := normalizeKey(input.Key)
	if err != nil {
		return nil, err
	}
	if !input.To.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", input.To)}
	}

	for attempt := 1; ; attempt++ {
		unit, err := s.transitionOnce(ctx, key, input)
		if !errors.Is(err, ErrRevisionConflict) || attempt >= maxWriteAttempts {
			return unit, err
		}
	}
}

func (s *Store) transitionOnce(ctx context.Context, key Key, input TransitionInput) (*Unit, error) {
	existing, err := s.repo.GetByID(ctx, UnitID(key))
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(existing.Status, input.To) {
		return nil, &domain.TransitionError{From: existing.Status, To: input.To}
	}

	targetText := existing.TargetText
	if input.TargetText != nil {
		targetText = input.TargetText
	}
	if input.To == domain.UnitStatusApproved && targetText == nil {
		return nil, &domain.ValidationError{Field: "target_text", Message: "approval requires a translated text"}
	}

	now := s.now().UTC()
	updated := cloneUnit(existing)
	updated.TargetText = cloneString(targetText)
	updated.Status = input.To
	updated.Revision = existing.Revision + 1
	updated.UpdatedBy = input.Actor
	updated.UpdatedAt = now

	entry := s.historyFor(updated, existing.Status, existing.TargetText, false, input.Actor, now)
	saved, err := s.repo.Save(ctx, updated, entry, existing.Revision)
	if err != nil {
		return nil, err
	}
	s.logger.Info("units.status.changed", "unit", saved.ID, "from", existing.Status, "to", input.To)
	s.changed(ctx, key.Entity, key.Field)
	return saved, nil
}

func (s *Store) historyFor(unit *Unit, previous domain.UnitStatus, previousText *string, sourceChanged bool, actor string, at time.Time) *HistoryEntry {
	return &HistoryEntry{
		ID:             uuid.New(),
		UnitID:         unit.ID,
		Revision:       unit.Revision,
		EntityType:     unit.EntityType,
		EntityID:       unit.EntityID,
		Field:          unit.Field,
		TargetLocale:   unit.TargetLocale,
		PreviousStatus: previous,
		NewStatus:      unit.Status,
		PreviousText:   cloneString(previousText),
		NewText:        cloneString(unit.TargetText),
		SourceChanged:  sourceChanged,
		Actor:          actor,
		CreatedAt:      at,
	}
}

// deletionFor records the removal of unit: the previous state is kept and the
// new status and text are empty.
func (s *Store) deletionFor(unit *Unit, at time.Time) *HistoryEntry {
	entry := s.historyFor(unit, unit.Status, unit.TargetText, false, "", at)
	entry.Revision = unit.Revision + 1
	entry.NewStatus = ""
	entry.NewText = nil
	return entry
}

// Get returns the unit, or nil without error when none exists.
func (s *Store) Get(ctx context.Context, ref domain.EntityRef, field, locale string) (*Unit, error) {
	key, err := normalizeKey(Key{Entity: ref, Field: field, Locale: locale})
	if err != nil {
		return nil, err
	}
	unit, err := s.repo.GetByID(ctx, UnitID(key))
	if domain.IsNotFound(err) {
		return nil, nil
	}
	return unit, err
}

// ListForEntity returns every unit of the entity, ordered by field then locale.
func (s *Store) ListForEntity(ctx context.Context, ref domain.EntityRef) ([]*Unit, error) {
	ref = domain.NewEntityRef(ref.Type, ref.ID)
	if ref.IsZero() {
		return nil, &domain.ValidationError{Field: "entity", Message: "entity type and id are required"}
	}
	return s.repo.ListByEntity(ctx, ref)
}

// ListForLocale returns every unit targeting locale.
func (s *Store) ListForLocale(ctx context.Context, locale string) ([]*Unit, error) {
	code, err := locales.NormalizeCode(locale)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByLocale(ctx, code)
}

// BulkDeleteForEntity removes every unit of the entity and reports how many
// were deleted. Each removal writes a history row; earlier rows survive as
// audit records.
func (s *Store) BulkDeleteForEntity(ctx context.Context, ref domain.EntityRef) (int, error) {
	ref = domain.NewEntityRef(ref.Type, ref.ID)
	if ref.IsZero() {
		return 0, &domain.ValidationError{Field: "entity", Message: "entity type and id are required"}
	}
	now := s.now().UTC()
	deleted, err := s.repo.DeleteByEntity(ctx, ref, func(unit *Unit) *HistoryEntry {
		return s.deletionFor(unit, now)
	})
	if err != nil {
		return deleted, err
	}
	s.changed(ctx, ref, "")
	s.logger.Info("units.deleted", "entity", ref.String(), "count", deleted)
	return deleted, nil
}

// History returns the audit log of a unit, oldest first.
func (s *Store) History(ctx context.Context, unitID uuid.UUID) ([]*HistoryEntry, error) {
	return s.repo.History(ctx, unitID)
}

package manager

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/glossary"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/internal/messages"
	"github.com/goliatone/go-localize/internal/queue"
	"github.com/goliatone/go-localize/internal/resolver"
	"github.com/goliatone/go-localize/internal/translationconfig"
	"github.com/goliatone/go-localize/internal/units"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var ErrDependencyMissing = errors.New("manager: locale graph, unit store and resolver are required")

// Dependencies lists the services the manager coordinates. Catalog,
// Messages, Queue, Glossary and Settings are optional.
type Dependencies struct {
	Graph    *locales.Graph
	Units    *units.Store
	Resolver *resolver.Resolver
	Catalog  *messages.Catalog
	Messages *messages.Resolver
	Queue    *queue.Queue
	Glossary *glossary.Glossary
	Settings *translationconfig.State
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger overrides the manager logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRegistry shares a translatable field registry between managers.
func WithRegistry(registry *Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager is the entry point used by content owning collaborators.
type Manager struct {
	deps     Dependencies
	registry *Registry
	logger   interfaces.Logger
}

// New constructs a Manager.
func New(deps Dependencies, opts ...Option) *Manager {
	if deps.Graph == nil || deps.Units == nil || deps.Resolver == nil {
		panic(ErrDependencyMissing)
	}
	m := &Manager{
		deps:     deps,
		registry: NewRegistry(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// RegisterTranslatable registers the translatable fields declared by t.
func (m *Manager) RegisterTranslatable(t interfaces.Translatable) error {
	return m.registry.RegisterTranslatable(t)
}

// RegisterTranslatableFields adds fields to entityType.
func (m *Manager) RegisterTranslatableFields(entityType string, fields ...string) error {
	return m.registry.Register(entityType, fields...)
}

// TranslatableFields returns the fields registered for entityType.
func (m *Manager) TranslatableFields(entityType string) []string {
	fields, _ := m.registry.Fields(entityType)
	return fields
}

// SourceChange describes an edit of a source field.
type SourceChange struct {
	Entity       domain.EntityRef
	Field        string
	SourceLocale string
	SourceText   string
	Actor        string
}

// OnSourceChanged pushes a new source text to the units of every active
// locale other than the source locale. Approved units whose source moved are
// demoted to needs_review by the store. Returns the units written.
func (m *Manager) OnSourceChanged(ctx context.Context, change SourceChange) ([]*units.Unit, error) {
	ref := domain.NewEntityRef(change.Entity.Type, change.Entity.ID)
	if ref.IsZero() {
		return nil, &domain.ValidationError{Field: "entity", Message: "entity type and id are required"}
	}
	if err := m.registry.Check(ref.Type, change.Field); err != nil {
		return nil, err
	}
	sourceLocale, err := locales.NormalizeCode(change.SourceLocale)
	if err != nil {
		return nil, err
	}
	settings := m.deps.Settings
	if !settings.Enabled() {
		m.logger.Debug("manager.source_changed.skipped", "entity", ref.String(), "field", change.Field)
		return nil, nil
	}

	targets, err := m.deps.Graph.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	written := make([]*units.Unit, 0, len(targets))
	for _, target := range targets {
		if target.Code == sourceLocale {
			continue
		}
		if err := domain.Cancelled(ctx); err != nil {
			return written, err
		}
		if !settings.Synthesize() {
			existing, err := m.deps.Units.Get(ctx, ref, change.Field, target.Code)
			if err != nil {
				return written, err
			}
			if existing == nil {
				continue
			}
		}
		unit, err := m.deps.Units.Upsert(ctx, units.UpsertInput{
			Entity:       ref,
			Field:        change.Field,
			SourceLocale: sourceLocale,
			TargetLocale: target.Code,
			SourceText:   change.SourceText,
			Actor:        change.Actor,
		})
		if err != nil {
			return written, err
		}
		written = append(written, unit)
		if err := m.enqueueIfStale(ctx, unit); err != nil {
			return written, err
		}
	}
	m.deps.Resolver.Invalidate(ctx, ref, change.Field)
	logging.WithTranslationContext(m.logger, ref.String(), change.Field, sourceLocale).
		Info("manager.source_changed", "units", len(written))
	return written, nil
}

func (m *Manager) enqueueIfStale(ctx context.Context, unit *units.Unit) error {
	if m.deps.Queue == nil {
		return nil
	}
	enqueue, priority := m.deps.Settings.EnqueueStale()
	if !enqueue {
		return nil
	}
	switch unit.Status {
	case domain.UnitStatusMissing, domain.UnitStatusNeedsReview:
	default:
		return nil
	}
	_, err := m.deps.Queue.Enqueue(ctx, queue.EnqueueInput{
		UnitID:   unit.ID,
		Entity:   unit.Entity(),
		Field:    unit.Field,
		Locale:   unit.TargetLocale,
		Priority: priority,
	})
	return err
}

// TranslationInput writes the translated text of one field in one locale.
type TranslationInput struct {
	Entity       domain.EntityRef
	Field        string
	SourceLocale string
	SourceText   string
	Locale       string
	TargetText   string
	Status       *domain.UnitStatus
	Actor        string
}

// CreateTranslation writes a unit together with its source snapshot.
func (m *Manager) CreateTranslation(ctx context.Context, input TranslationInput) (*units.Unit, error) {
	if err := m.registry.Check(input.Entity.Type, input.Field); err != nil {
		return nil, err
	}
	target := input.TargetText
	unit, err := m.deps.Units.Upsert(ctx, units.UpsertInput{
		Entity:       input.Entity,
		Field:        input.Field,
		SourceLocale: input.SourceLocale,
		TargetLocale: input.Locale,
		SourceText:   input.SourceText,
		TargetText:   &target,
		Status:       input.Status,
		Actor:        input.Actor,
	})
	if err != nil {
		return nil, err
	}
	return unit, m.afterUnitWrite(ctx, unit)
}

// UpdateTranslation replaces the translated text of an existing unit and
// keeps its stored source snapshot.
func (m *Manager) UpdateTranslation(ctx context.Context, input TranslationInput) (*units.Unit, error) {
	existing, err := m.deps.Units.Get(ctx, input.Entity, input.Field, input.Locale)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &domain.NotFoundError{
			Resource: "translation unit",
			Key:      input.Entity.String() + "/" + input.Field + "/" + input.Locale,
		}
	}
	target := input.TargetText
	unit, err := m.deps.Units.Upsert(ctx, units.UpsertInput{
		Entity:       existing.Entity(),
		Field:        existing.Field,
		SourceLocale: existing.SourceLocale,
		TargetLocale: existing.TargetLocale,
		SourceText:   existing.SourceText,
		TargetText:   &target,
		Status:       input.Status,
		Actor:        input.Actor,
	})
	if err != nil {
		return nil, err
	}
	return unit, m.afterUnitWrite(ctx, unit)
}

// TransitionTranslation moves a unit through the review workflow.
func (m *Manager) TransitionTranslation(ctx context.Context, input units.TransitionInput) (*units.Unit, error) {
	unit, err := m.deps.Units.Transition(ctx, input)
	if err != nil {
		return nil, err
	}
	return unit, m.afterUnitWrite(ctx, unit)
}

func (m *Manager) afterUnitWrite(ctx context.Context, unit *units.Unit) error {
	m.deps.Resolver.Invalidate(ctx, unit.Entity(), unit.Field)
	if m.deps.Queue == nil {
		return nil
	}
	if unit.Status == domain.UnitStatusApproved {
		_, err := m.deps.Queue.CompleteForUnit(ctx, unit.ID)
		return err
	}
	return m.enqueueIfStale(ctx, unit)
}

// DeleteEntity removes every unit of an entity.
func (m *Manager) DeleteEntity(ctx context.Context, ref domain.EntityRef) (int, error) {
	removed, err := m.deps.Units.BulkDeleteForEntity(ctx, ref)
	if err != nil {
		return 0, err
	}
	m.deps.Resolver.InvalidateEntity(ctx, ref)
	m.logger.Info("manager.entity.deleted", "entity", ref.String(), "units", removed)
	return removed, nil
}

// Resolve resolves one field of an entity.
func (m *Manager) Resolve(ctx context.Context, ref domain.EntityRef, field, locale string, defaultValue *string) (resolver.Result, error) {
	return m.deps.Resolver.Resolve(ctx, ref, field, locale, defaultValue)
}

// GetTranslationStatus reports every registered field of ref for locale.
func (m *Manager) GetTranslationStatus(ctx context.Context, ref domain.EntityRef, locale string) (map[string]resolver.FieldStatus, error) {
	fields, ok := m.registry.Fields(ref.Type)
	if !ok {
		return nil, &domain.NotFoundError{Resource: "translatable entity type", Key: ref.Type}
	}
	return m.deps.Resolver.GetTranslationStatus(ctx, ref, locale, fields)
}

// CompletionPercentage reports the approved share of registered fields.
func (m *Manager) CompletionPercentage(ctx context.Context, ref domain.EntityRef, locale string) (float64, error) {
	fields, ok := m.registry.Fields(ref.Type)
	if !ok {
		return 0, &domain.NotFoundError{Resource: "translatable entity type", Key: ref.Type}
	}
	return m.deps.Resolver.CompletionPercentage(ctx, ref, locale, fields)
}

// Progress counts unit statuses of registered fields per active locale other
// than the default. Fields without a unit count as missing.
func (m *Manager) Progress(ctx context.Context, ref domain.EntityRef) (map[string]map[domain.UnitStatus]int, error) {
	fields, ok := m.registry.Fields(ref.Type)
	if !ok {
		return nil, &domain.NotFoundError{Resource: "translatable entity type", Key: ref.Type}
	}
	active, err := m.deps.Graph.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	def, err := m.deps.Graph.DefaultLocale(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := m.deps.Units.ListForEntity(ctx, ref)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]domain.UnitStatus, len(stored))
	for _, unit := range stored {
		byKey[unit.Field+"\x00"+unit.TargetLocale] = unit.Status
	}

	out := make(map[string]map[domain.UnitStatus]int, len(active))
	for _, loc := range active {
		if loc.Code == def.Code {
			continue
		}
		counts := make(map[domain.UnitStatus]int)
		for _, field := range fields {
			status, ok := byKey[field+"\x00"+loc.Code]
			if !ok {
				status = domain.UnitStatusMissing
			}
			counts[status]++
		}
		out[loc.Code] = counts
	}
	return out, nil
}

// UpsertMessageTranslation writes a UI message translation. The catalog
// drops the affected resolutions and bundles.
func (m *Manager) UpsertMessageTranslation(ctx context.Context, input messages.TranslationInput) (*messages.Translation, error) {
	if m.deps.Catalog == nil {
		return nil, &domain.NotFoundError{Resource: "message catalog"}
	}
	return m.deps.Catalog.UpsertTranslation(ctx, input)
}

// ResolveMessage resolves a UI message and substitutes params.
func (m *Manager) ResolveMessage(ctx context.Context, key string, params map[string]any, locale string) (string, error) {
	if m.deps.Messages == nil {
		return "", &domain.NotFoundError{Resource: "message resolver"}
	}
	return m.deps.Messages.Resolve(ctx, key, params, locale)
}

// MessageBundle returns the resolved UI message bundle of locale.
func (m *Manager) MessageBundle(ctx context.Context, locale string) (map[string]string, error) {
	if m.deps.Messages == nil {
		return nil, &domain.NotFoundError{Resource: "message resolver"}
	}
	return m.deps.Messages.GetMessageBundle(ctx, locale)
}

// GlossaryHints lists glossary terms found in text for a locale pair.
func (m *Manager) GlossaryHints(ctx context.Context, text, sourceLocale, targetLocale string) ([]glossary.Match, error) {
	if m.deps.Glossary == nil || strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return m.deps.Glossary.Match(ctx, text, sourceLocale, targetLocale)
}

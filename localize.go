package localize

import (
	"context"
	"errors"

	"github.com/goliatone/go-localize/internal/di"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/glossary"
	"github.com/goliatone/go-localize/internal/manager"
	"github.com/goliatone/go-localize/internal/messages"
	"github.com/goliatone/go-localize/internal/queue"
	"github.com/goliatone/go-localize/internal/resolver"
	"github.com/goliatone/go-localize/internal/units"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var errNilModule = errors.New("localize: module not initialised")

var (
	ErrNotFound          = domain.ErrNotFound
	ErrValidation        = domain.ErrValidation
	ErrInvalidTransition = domain.ErrInvalidTransition
	ErrInterpolation     = domain.ErrInterpolation
	ErrResolutionMiss    = domain.ErrResolutionMiss
	ErrConfiguration     = domain.ErrConfiguration
	ErrCancelled         = domain.ErrCancelled
)

type (
	// EntityRef identifies a translatable entity by type and id.
	EntityRef = domain.EntityRef
	// UnitStatus is the workflow state of a translation unit.
	UnitStatus = domain.UnitStatus

	Translatable      = interfaces.Translatable
	SourceChange      = manager.SourceChange
	TranslationInput  = manager.TranslationInput
	TransitionInput   = units.TransitionInput
	Unit              = units.Unit
	Resolution        = resolver.Result
	FieldStatus       = resolver.FieldStatus
	MessageInput      = messages.TranslationInput
	MessageImport     = messages.ImportResult
	QueueItem         = queue.Item
	GlossaryMatch     = glossary.Match
	TranslationEngine = manager.Manager
)

const (
	StatusMissing     = domain.UnitStatusMissing
	StatusDraft       = domain.UnitStatusDraft
	StatusPending     = domain.UnitStatusPending
	StatusInProgress  = domain.UnitStatusInProgress
	StatusNeedsReview = domain.UnitStatusNeedsReview
	StatusApproved    = domain.UnitStatusApproved
	StatusRejected    = domain.UnitStatusRejected
)

// NewEntityRef builds a trimmed entity reference.
func NewEntityRef(entityType, id string) EntityRef {
	return domain.NewEntityRef(entityType, id)
}

// Module represents the top level localisation runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI
// overrides. Call Bootstrap before serving requests and Close when done.
func New(ctx context.Context, cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Bootstrap seeds configured locales, settings and message sources.
func (m *Module) Bootstrap(ctx context.Context) error {
	if m == nil || m.container == nil {
		return errNilModule
	}
	return m.container.Bootstrap(ctx)
}

// Close stops background work and releases owned connections.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Translations returns the translation manager that owns units, resolution
// and the message catalog.
func (m *Module) Translations() *TranslationEngine {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Manager()
}

// Translator returns the UI message translator for template helpers.
func (m *Module) Translator() interfaces.Translator {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Messages()
}

// Locales returns the public locale lookup service.
func (m *Module) Locales() LocaleService {
	return newLocaleService(m)
}

// Queue returns the translator work queue.
func (m *Module) Queue() *queue.Queue {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Queue()
}

// Glossary returns the terminology glossary.
func (m *Module) Glossary() *glossary.Glossary {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Glossary()
}

// Importer returns the bulk message importer.
func (m *Module) Importer() *messages.Importer {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Importer()
}

// TranslationsEnabled reports whether unit synthesis is currently enabled.
func (m *Module) TranslationsEnabled() bool {
	if m == nil || m.container == nil {
		return false
	}
	return m.container.Settings().Enabled()
}

// Settings returns the current translation settings.
func (m *Module) Settings() TranslationSettings {
	if m == nil || m.container == nil {
		return TranslationSettings{}
	}
	return m.container.Settings().Load()
}

// UpdateSettings persists settings. Running modules pick the change up
// through the settings subscription.
func (m *Module) UpdateSettings(ctx context.Context, settings TranslationSettings) (TranslationSettings, error) {
	if m == nil || m.container == nil {
		return TranslationSettings{}, errNilModule
	}
	return m.container.SettingsRepository().Upsert(ctx, settings)
}

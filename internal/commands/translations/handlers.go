package translationscmd

import (
	"context"
	"strings"

	"github.com/goliatone/go-localize/internal/commands"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/manager"
	"github.com/goliatone/go-localize/internal/messages"
	"github.com/goliatone/go-localize/internal/units"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// TranslationService is the slice of manager.Manager the handlers drive.
type TranslationService interface {
	OnSourceChanged(ctx context.Context, change manager.SourceChange) ([]*units.Unit, error)
	CreateTranslation(ctx context.Context, input manager.TranslationInput) (*units.Unit, error)
	UpdateTranslation(ctx context.Context, input manager.TranslationInput) (*units.Unit, error)
	TransitionTranslation(ctx context.Context, input units.TransitionInput) (*units.Unit, error)
	DeleteEntity(ctx context.Context, ref domain.EntityRef) (int, error)
	UpsertMessageTranslation(ctx context.Context, input messages.TranslationInput) (*messages.Translation, error)
}

// MessageImporter loads message files into the catalog.
type MessageImporter interface {
	ImportFile(ctx context.Context, path string) (messages.ImportResult, error)
}

// SourceChangedHandler propagates source edits to translation units.
type SourceChangedHandler struct {
	inner *commands.Handler[SourceChangedCommand]
}

// NewSourceChangedHandler constructs a handler wired to service.
func NewSourceChangedHandler(service TranslationService, logger interfaces.Logger, opts ...commands.HandlerOption[SourceChangedCommand]) *SourceChangedHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg SourceChangedCommand) error {
		written, err := service.OnSourceChanged(ctx, manager.SourceChange{
			Entity:       domain.NewEntityRef(msg.EntityType, msg.EntityID),
			Field:        msg.Field,
			SourceLocale: msg.SourceLocale,
			SourceText:   msg.SourceText,
			Actor:        msg.Actor,
		})
		if err != nil {
			return err
		}
		logger.Debug("translations.source_changed.units", "count", len(written))
		return nil
	}

	handlerOpts := []commands.HandlerOption[SourceChangedCommand]{
		commands.WithLogger[SourceChangedCommand](logger),
		commands.WithOperation[SourceChangedCommand]("translations.source_changed"),
	}
	return &SourceChangedHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[SourceChangedCommand].Execute.
func (h *SourceChangedHandler) Execute(ctx context.Context, msg SourceChangedCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpsertTranslationHandler writes unit translations.
type UpsertTranslationHandler struct {
	inner *commands.Handler[UpsertTranslationCommand]
}

// NewUpsertTranslationHandler constructs a handler wired to service.
func NewUpsertTranslationHandler(service TranslationService, logger interfaces.Logger, opts ...commands.HandlerOption[UpsertTranslationCommand]) *UpsertTranslationHandler {
	exec := func(ctx context.Context, msg UpsertTranslationCommand) error {
		input := manager.TranslationInput{
			Entity:       domain.NewEntityRef(msg.EntityType, msg.EntityID),
			Field:        msg.Field,
			SourceLocale: msg.SourceLocale,
			SourceText:   msg.SourceText,
			Locale:       msg.Locale,
			TargetText:   msg.TargetText,
			Actor:        msg.Actor,
		}
		if msg.Status != "" {
			status, _ := domain.ParseUnitStatus(msg.Status)
			input.Status = &status
		}
		if strings.TrimSpace(msg.SourceText) == "" {
			_, err := service.UpdateTranslation(ctx, input)
			return err
		}
		_, err := service.CreateTranslation(ctx, input)
		return err
	}

	handlerOpts := []commands.HandlerOption[UpsertTranslationCommand]{
		commands.WithLogger[UpsertTranslationCommand](logger),
		commands.WithOperation[UpsertTranslationCommand]("translations.upsert"),
	}
	return &UpsertTranslationHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[UpsertTranslationCommand].Execute.
func (h *UpsertTranslationHandler) Execute(ctx context.Context, msg UpsertTranslationCommand) error {
	return h.inner.Execute(ctx, msg)
}

// TransitionTranslationHandler applies review workflow transitions.
type TransitionTranslationHandler struct {
	inner *commands.Handler[TransitionTranslationCommand]
}

// NewTransitionTranslationHandler constructs a handler wired to service.
func NewTransitionTranslationHandler(service TranslationService, logger interfaces.Logger, opts ...commands.HandlerOption[TransitionTranslationCommand]) *TransitionTranslationHandler {
	exec := func(ctx context.Context, msg TransitionTranslationCommand) error {
		to, _ := domain.ParseUnitStatus(msg.To)
		_, err := service.TransitionTranslation(ctx, units.TransitionInput{
			Key: units.Key{
				Entity: domain.NewEntityRef(msg.EntityType, msg.EntityID),
				Field:  msg.Field,
				Locale: msg.Locale,
			},
			To:         to,
			TargetText: msg.TargetText,
			Actor:      msg.Actor,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[TransitionTranslationCommand]{
		commands.WithLogger[TransitionTranslationCommand](logger),
		commands.WithOperation[TransitionTranslationCommand]("translations.transition"),
	}
	return &TransitionTranslationHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[TransitionTranslationCommand].Execute.
func (h *TransitionTranslationHandler) Execute(ctx context.Context, msg TransitionTranslationCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteEntityTranslationsHandler drops the units of a deleted entity.
type DeleteEntityTranslationsHandler struct {
	inner *commands.Handler[DeleteEntityTranslationsCommand]
}

// NewDeleteEntityTranslationsHandler constructs a handler wired to service.
func NewDeleteEntityTranslationsHandler(service TranslationService, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteEntityTranslationsCommand]) *DeleteEntityTranslationsHandler {
	exec := func(ctx context.Context, msg DeleteEntityTranslationsCommand) error {
		_, err := service.DeleteEntity(ctx, domain.NewEntityRef(msg.EntityType, msg.EntityID))
		return err
	}

	handlerOpts := []commands.HandlerOption[DeleteEntityTranslationsCommand]{
		commands.WithLogger[DeleteEntityTranslationsCommand](logger),
		commands.WithOperation[DeleteEntityTranslationsCommand]("translations.delete_entity"),
	}
	return &DeleteEntityTranslationsHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[DeleteEntityTranslationsCommand].Execute.
func (h *DeleteEntityTranslationsHandler) Execute(ctx context.Context, msg DeleteEntityTranslationsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpsertMessageTranslationHandler writes UI message translations.
type UpsertMessageTranslationHandler struct {
	inner *commands.Handler[UpsertMessageTranslationCommand]
}

// NewUpsertMessageTranslationHandler constructs a handler wired to service.
func NewUpsertMessageTranslationHandler(service TranslationService, logger interfaces.Logger, opts ...commands.HandlerOption[UpsertMessageTranslationCommand]) *UpsertMessageTranslationHandler {
	exec := func(ctx context.Context, msg UpsertMessageTranslationCommand) error {
		input := messages.TranslationInput{
			Key:    msg.Key,
			Locale: msg.Locale,
			Value:  msg.Value,
			Actor:  msg.Actor,
		}
		if msg.Status != "" {
			status, _ := domain.ParseMessageStatus(msg.Status)
			input.Status = &status
		}
		_, err := service.UpsertMessageTranslation(ctx, input)
		return err
	}

	handlerOpts := []commands.HandlerOption[UpsertMessageTranslationCommand]{
		commands.WithLogger[UpsertMessageTranslationCommand](logger),
		commands.WithOperation[UpsertMessageTranslationCommand]("messages.upsert_translation"),
	}
	return &UpsertMessageTranslationHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[UpsertMessageTranslationCommand].Execute.
func (h *UpsertMessageTranslationHandler) Execute(ctx context.Context, msg UpsertMessageTranslationCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ImportMessagesHandler imports go-i18n message files in order.
type ImportMessagesHandler struct {
	inner *commands.Handler[ImportMessagesCommand]
}

// NewImportMessagesHandler constructs a handler wired to importer.
func NewImportMessagesHandler(importer MessageImporter, logger interfaces.Logger, opts ...commands.HandlerOption[ImportMessagesCommand]) *ImportMessagesHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg ImportMessagesCommand) error {
		for _, path := range msg.Paths {
			result, err := importer.ImportFile(ctx, path)
			if err != nil {
				return err
			}
			logger.Info("messages.import.file",
				"path", path,
				"locale", result.Locale,
				"defined", result.Defined,
				"translated", result.Translated,
				"skipped", len(result.Skipped),
			)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportMessagesCommand]{
		commands.WithLogger[ImportMessagesCommand](logger),
		commands.WithOperation[ImportMessagesCommand]("messages.import"),
	}
	return &ImportMessagesHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[ImportMessagesCommand].Execute.
func (h *ImportMessagesHandler) Execute(ctx context.Context, msg ImportMessagesCommand) error {
	return h.inner.Execute(ctx, msg)
}

package translationscmd

import (
	"errors"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-localize/internal/commands"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers built by RegisterTranslationCommands.
type HandlerSet struct {
	SourceChanged            *SourceChangedHandler
	UpsertTranslation        *UpsertTranslationHandler
	TransitionTranslation    *TransitionTranslationHandler
	DeleteEntityTranslations *DeleteEntityTranslationsHandler
	UpsertMessageTranslation *UpsertMessageTranslationHandler
	ImportMessages           *ImportMessagesHandler
}

// RegisterTranslationCommands builds the translation handlers and registers
// them with reg when given. The import handler is built only with an importer.
func RegisterTranslationCommands(reg CommandRegistry, service TranslationService, importer MessageImporter, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("translation command registration: service is nil")
	}
	logger := commands.CommandLogger(provider, "translations")

	set := &HandlerSet{
		SourceChanged:            NewSourceChangedHandler(service, logger),
		UpsertTranslation:        NewUpsertTranslationHandler(service, logger),
		TransitionTranslation:    NewTransitionTranslationHandler(service, logger),
		DeleteEntityTranslations: NewDeleteEntityTranslationsHandler(service, logger),
		UpsertMessageTranslation: NewUpsertMessageTranslationHandler(service, logger),
	}
	if importer != nil {
		set.ImportMessages = NewImportMessagesHandler(importer, logger)
	}

	if reg != nil {
		for _, handler := range set.handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func (s *HandlerSet) handlers() []any {
	out := []any{
		s.SourceChanged,
		s.UpsertTranslation,
		s.TransitionTranslation,
		s.DeleteEntityTranslations,
		s.UpsertMessageTranslation,
	}
	if s.ImportMessages != nil {
		out = append(out, s.ImportMessages)
	}
	return out
}

// Subscribe attaches every handler to the go-command dispatcher and returns a
// function that detaches them.
func (s *HandlerSet) Subscribe() func() {
	subs := []interface{ Unsubscribe() }{
		dispatcher.SubscribeCommand(s.SourceChanged),
		dispatcher.SubscribeCommand(s.UpsertTranslation),
		dispatcher.SubscribeCommand(s.TransitionTranslation),
		dispatcher.SubscribeCommand(s.DeleteEntityTranslations),
		dispatcher.SubscribeCommand(s.UpsertMessageTranslation),
	}
	if s.ImportMessages != nil {
		subs = append(subs, dispatcher.SubscribeCommand(s.ImportMessages))
	}
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}

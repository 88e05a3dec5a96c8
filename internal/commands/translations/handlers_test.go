package translationscmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-localize/internal/commands"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/manager"
	"github.com/goliatone/go-localize/internal/messages"
	"github.com/goliatone/go-localize/internal/units"
)

type stubService struct {
	sourceChanges []manager.SourceChange
	created       []manager.TranslationInput
	updated       []manager.TranslationInput
	transitions   []units.TransitionInput
	deleted       []domain.EntityRef
	messages      []messages.TranslationInput
	err           error
}

func (s *stubService) OnSourceChanged(_ context.Context, change manager.SourceChange) ([]*units.Unit, error) {
	s.sourceChanges = append(s.sourceChanges, change)
	return nil, s.err
}

func (s *stubService) CreateTranslation(_ context.Context, input manager.TranslationInput) (*units.Unit, error) {
	s.created = append(s.created, input)
	return &units.Unit{}, s.err
}

func (s *stubService) UpdateTranslation(_ context.Context, input manager.TranslationInput) (*units.Unit, error) {
	s.updated = append(s.updated, input)
	return &units.Unit{}, s.err
}

func (s *stubService) TransitionTranslation(_ context.Context, input units.TransitionInput) (*units.Unit, error) {
	s.transitions = append(s.transitions, input)
	return &units.Unit{}, s.err
}

func (s *stubService) DeleteEntity(_ context.Context, ref domain.EntityRef) (int, error) {
	s.deleted = append(s.deleted, ref)
	return 1, s.err
}

func (s *stubService) UpsertMessageTranslation(_ context.Context, input messages.TranslationInput) (*messages.Translation, error) {
	s.messages = append(s.messages, input)
	return &messages.Translation{}, s.err
}

type stubImporter struct {
	paths []string
}

func (s *stubImporter) ImportFile(_ context.Context, path string) (messages.ImportResult, error) {
	s.paths = append(s.paths, path)
	return messages.ImportResult{Locale: "en", Defined: 2}, nil
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestSourceChangedHandlerForwardsChange(t *testing.T) {
	service := &stubService{}
	handler := NewSourceChangedHandler(service, commands.CommandLogger(nil, "translations"))

	err := handler.Execute(context.Background(), SourceChangedCommand{
		EntityType:   "article",
		EntityID:     "42",
		Field:        "title",
		SourceLocale: "en",
		SourceText:   "New Title",
		Actor:        "editor",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(service.sourceChanges) != 1 {
		t.Fatalf("expected one change, got %d", len(service.sourceChanges))
	}
	got := service.sourceChanges[0]
	if got.Entity != domain.NewEntityRef("article", "42") || got.SourceText != "New Title" {
		t.Fatalf("unexpected change %+v", got)
	}
}

func TestSourceChangedHandlerValidates(t *testing.T) {
	service := &stubService{}
	handler := NewSourceChangedHandler(service, nil)

	err := handler.Execute(context.Background(), SourceChangedCommand{EntityType: "article"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(service.sourceChanges) != 0 {
		t.Fatalf("expected service not to be called")
	}
}

func TestUpsertTranslationHandlerChoosesCreateOrUpdate(t *testing.T) {
	service := &stubService{}
	handler := NewUpsertTranslationHandler(service, nil)
	ctx := context.Background()

	create := UpsertTranslationCommand{
		EntityType: "article", EntityID: "42", Field: "title", Locale: "es",
		TargetText: "Título", SourceLocale: "en", SourceText: "Title", Status: "approved",
	}
	if err := handler.Execute(ctx, create); err != nil {
		t.Fatalf("create: %v", err)
	}
	update := UpsertTranslationCommand{
		EntityType: "article", EntityID: "42", Field: "title", Locale: "es", TargetText: "Titular",
	}
	if err := handler.Execute(ctx, update); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(service.created) != 1 || len(service.updated) != 1 {
		t.Fatalf("expected one create and one update, got %d/%d", len(service.created), len(service.updated))
	}
	if service.created[0].Status == nil || *service.created[0].Status != domain.UnitStatusApproved {
		t.Fatalf("expected approved status, got %+v", service.created[0].Status)
	}
	if service.updated[0].Status != nil {
		t.Fatalf("expected no status override on update")
	}
}

func TestUpsertTranslationCommandValidation(t *testing.T) {
	cases := []struct {
		name string
		msg  UpsertTranslationCommand
	}{
		{"missing entity", UpsertTranslationCommand{Field: "title", Locale: "es"}},
		{"missing locale", UpsertTranslationCommand{EntityType: "article", EntityID: "1", Field: "title"}},
		{"source without locale", UpsertTranslationCommand{EntityType: "article", EntityID: "1", Field: "title", Locale: "es", SourceText: "x"}},
		{"unknown status", UpsertTranslationCommand{EntityType: "article", EntityID: "1", Field: "title", Locale: "es", Status: "published"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.msg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestTransitionHandlerMapsInput(t *testing.T) {
	service := &stubService{}
	handler := NewTransitionTranslationHandler(service, nil)

	text := "Título"
	err := handler.Execute(context.Background(), TransitionTranslationCommand{
		EntityType: "article", EntityID: "42", Field: "title", Locale: "es",
		To: "needs_review", TargetText: &text, Actor: "translator",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	got := service.transitions[0]
	if got.To != domain.UnitStatusNeedsReview || got.Key.Locale != "es" || got.TargetText == nil {
		t.Fatalf("unexpected transition %+v", got)
	}

	if err := handler.Execute(context.Background(), TransitionTranslationCommand{
		EntityType: "article", EntityID: "42", Field: "title", Locale: "es", To: "published",
	}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category for unknown status, got %v", err)
	}
}

func TestTransitionHandlerCategorisesDeniedTransition(t *testing.T) {
	service := &stubService{err: &domain.TransitionError{From: domain.UnitStatusMissing, To: domain.UnitStatusApproved}}
	handler := NewTransitionTranslationHandler(service, nil)

	err := handler.Execute(context.Background(), TransitionTranslationCommand{
		EntityType: "article", EntityID: "42", Field: "title", Locale: "es", To: "approved",
	})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected transition error to stay reachable, got %v", err)
	}
}

func TestMessageHandlers(t *testing.T) {
	service := &stubService{}
	importer := &stubImporter{}
	ctx := context.Background()

	upsert := NewUpsertMessageTranslationHandler(service, nil)
	if err := upsert.Execute(ctx, UpsertMessageTranslationCommand{Key: "auth.login", Locale: "es", Value: "Entrar", Status: "approved"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got := service.messages[0]; got.Status == nil || *got.Status != domain.MessageStatusApproved {
		t.Fatalf("unexpected message input %+v", got)
	}
	if err := upsert.Execute(ctx, UpsertMessageTranslationCommand{Key: "auth.login", Locale: "es", Status: "final"}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	imp := NewImportMessagesHandler(importer, nil)
	if err := imp.Execute(ctx, ImportMessagesCommand{Paths: []string{"en.toml", "es.yaml"}}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(importer.paths) != 2 {
		t.Fatalf("expected two files imported, got %v", importer.paths)
	}
	if err := imp.Execute(ctx, ImportMessagesCommand{}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestRegisterTranslationCommands(t *testing.T) {
	if _, err := RegisterTranslationCommands(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error without service")
	}

	reg := &recordingRegistry{}
	service := &stubService{}
	set, err := RegisterTranslationCommands(reg, service, nil, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.ImportMessages != nil {
		t.Fatal("expected no import handler without importer")
	}
	if len(reg.handlers) != 5 {
		t.Fatalf("expected five handlers registered, got %d", len(reg.handlers))
	}

	unsubscribe := set.Subscribe()
	t.Cleanup(unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), DeleteEntityTranslationsCommand{EntityType: "article", EntityID: "42"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(service.deleted) != 1 || service.deleted[0].ID != "42" {
		t.Fatalf("unexpected deletes %+v", service.deleted)
	}
}

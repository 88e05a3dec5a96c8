package di_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"

	translationscmd "github.com/goliatone/go-localize/internal/commands/translations"
	"github.com/goliatone/go-localize/internal/di"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/manager"
	"github.com/goliatone/go-localize/internal/resolver"
	"github.com/goliatone/go-localize/internal/runtimeconfig"
	"github.com/goliatone/go-localize/internal/units"
	"github.com/goliatone/go-localize/pkg/testsupport"
)

const fixturePath = "../messages/testdata/messages_fixture.json"

func boolPtr(v bool) *bool { return &v }

func testConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"
	cfg.Locales = []runtimeconfig.LocaleConfig{
		{Code: "fr", Name: "French", Fallback: "es", SortOrder: 2},
		{Code: "es", Name: "Spanish", Fallback: "en", SortOrder: 1},
		{Code: "en", Name: "English", Active: boolPtr(true)},
	}
	return cfg
}

func newBootstrapped(t *testing.T, cfg runtimeconfig.Config, opts ...di.Option) *di.Container {
	t.Helper()
	ctx := context.Background()
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	if err := container.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := container.Manager().RegisterTranslatableFields("article", "title", "body"); err != nil {
		t.Fatalf("register fields: %v", err)
	}
	return container
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func exerciseTranslations(t *testing.T, container *di.Container) {
	t.Helper()
	ctx := context.Background()
	ref := domain.NewEntityRef("article", "42")
	mgr := container.Manager()

	if _, err := mgr.OnSourceChanged(ctx, manager.SourceChange{
		Entity:       ref,
		Field:        "title",
		SourceLocale: "en",
		SourceText:   "Hello",
	}); err != nil {
		t.Fatalf("source changed: %v", err)
	}

	res, err := mgr.Resolve(ctx, ref, "title", "fr", nil)
	if err != nil {
		t.Fatalf("resolve before translation: %v", err)
	}
	if res.Value != "Hello" || res.Origin != resolver.OriginSource || res.ResolvedLocale != "en" {
		t.Fatalf("unexpected source fallback %+v", res)
	}

	approved := domain.UnitStatusApproved
	if _, err := mgr.CreateTranslation(ctx, manager.TranslationInput{
		Entity:       ref,
		Field:        "title",
		SourceLocale: "en",
		SourceText:   "Hello",
		Locale:       "es",
		TargetText:   "Hola",
		Status:       &approved,
	}); err != nil {
		t.Fatalf("create translation: %v", err)
	}

	res, err = mgr.Resolve(ctx, ref, "title", "fr", nil)
	if err != nil {
		t.Fatalf("resolve after translation: %v", err)
	}
	if res.Value != "Hola" || res.ResolvedLocale != "es" || res.Origin != resolver.OriginTranslation {
		t.Fatalf("expected fallback to es, got %+v", res)
	}

	items, err := container.Queue().ListOpen(ctx, "fr")
	if err != nil {
		t.Fatalf("list queue: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one queued fr unit, got %d", len(items))
	}

	msg, err := mgr.ResolveMessage(ctx, "auth.welcome", map[string]any{"name": "Ana"}, "fr")
	if err != nil {
		t.Fatalf("resolve message: %v", err)
	}
	if msg != "Bienvenido de nuevo, Ana" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestContainerMemoryRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.Messages.FixturePath = fixturePath
	container := newBootstrapped(t, cfg)

	if container.DB() != nil {
		t.Fatal("expected memory container without database")
	}
	def, err := container.Locales().DefaultLocale(context.Background())
	if err != nil {
		t.Fatalf("default locale: %v", err)
	}
	if def.Code != "en" {
		t.Fatalf("expected en as default, got %s", def.Code)
	}
	exerciseTranslations(t, container)
}

func TestContainerBunRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.Messages.FixturePath = fixturePath
	container := newBootstrapped(t, cfg, di.WithBunDB(testsupport.NewBunDB(t)))

	if container.DB() == nil {
		t.Fatal("expected bun database")
	}
	exerciseTranslations(t, container)

	var count int
	if err := container.DB().NewSelect().Model((*units.Unit)(nil)).ColumnExpr("COUNT(*)").Scan(context.Background(), &count); err != nil {
		t.Fatalf("count units: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two persisted units, got %d", count)
	}
}

func TestContainerOpensConfiguredStorage(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.DSN = "file:di_container_storage?mode=memory&cache=shared"
	cfg.Storage.MaxOpenConns = 1
	cfg.Storage.Migrate = true

	container, err := di.NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.DB() == nil {
		t.Fatal("expected container to open the configured database")
	}
	if err := container.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := container.DB().PingContext(context.Background()); err == nil {
		t.Fatal("expected owned database to be closed")
	}
}

func TestContainerRejectsUnsupportedDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = "oracle"
	cfg.Storage.DSN = "whatever"

	if _, err := di.NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("expected unsupported driver to fail")
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLocale = ""

	_, err := di.NewContainer(context.Background(), cfg)
	if !errors.Is(err, runtimeconfig.ErrDefaultLocaleRequired) {
		t.Fatalf("expected default locale error, got %v", err)
	}
}

func TestContainerSeedsAndSyncsSettings(t *testing.T) {
	cfg := testConfig()
	cfg.Translations.TranslationsEnabled = false
	container := newBootstrapped(t, cfg, di.WithBunDB(testsupport.NewBunDB(t)))
	ctx := context.Background()

	stored, err := container.SettingsRepository().Get(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if stored.TranslationsEnabled {
		t.Fatal("expected configured settings to be persisted")
	}
	if container.Settings().Enabled() {
		t.Fatal("expected state to start disabled")
	}

	created, err := container.Manager().OnSourceChanged(ctx, manager.SourceChange{
		Entity:       domain.NewEntityRef("article", "7"),
		Field:        "title",
		SourceLocale: "en",
		SourceText:   "Ignored",
	})
	if err != nil {
		t.Fatalf("source changed while disabled: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected no units while disabled, got %d", len(created))
	}

	stored.TranslationsEnabled = true
	if _, err := container.SettingsRepository().Upsert(ctx, stored); err != nil {
		t.Fatalf("upsert settings: %v", err)
	}
	waitFor(t, container.Settings().Enabled)
}

func TestContainerDispatchesTranslationCommands(t *testing.T) {
	container := newBootstrapped(t, testConfig())
	ctx := context.Background()

	unsubscribe := container.Commands().Subscribe()
	t.Cleanup(unsubscribe)

	if err := dispatcher.Dispatch(ctx, translationscmd.SourceChangedCommand{
		EntityType:   "article",
		EntityID:     "9",
		Field:        "body",
		SourceLocale: "en",
		SourceText:   "Body",
	}); err != nil {
		t.Fatalf("dispatch source changed: %v", err)
	}
	if err := dispatcher.Dispatch(ctx, translationscmd.UpsertTranslationCommand{
		EntityType: "article",
		EntityID:   "9",
		Field:      "body",
		Locale:     "es",
		TargetText: "Cuerpo",
	}); err != nil {
		t.Fatalf("dispatch upsert: %v", err)
	}

	res, err := container.Manager().Resolve(ctx, domain.NewEntityRef("article", "9"), "body", "es", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Value != "Body" || res.Origin != resolver.OriginSource || res.Status != domain.UnitStatusDraft {
		t.Fatalf("unexpected resolution %+v", res)
	}

	if err := dispatcher.Dispatch(ctx, translationscmd.DeleteEntityTranslationsCommand{
		EntityType: "article",
		EntityID:   "9",
	}); err != nil {
		t.Fatalf("dispatch delete: %v", err)
	}
	unit, err := container.Units().Get(ctx, domain.NewEntityRef("article", "9"), "body", "es")
	if err != nil {
		t.Fatalf("get unit: %v", err)
	}
	if unit != nil {
		t.Fatalf("expected units removed, got %+v", unit)
	}
}

package messages_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/cache"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/messages"
)

func TestResolveMessageFallsBackToDefaultValue(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")

	got, err := f.resolver.ResolveMessage(context.Background(), "greeting", "fr", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Value != "Hello" || got.Origin != messages.OriginDefault || got.Status != domain.MessageStatusMissing {
		t.Fatalf("unexpected resolution %+v", got)
	}
}

func TestResolveMessageUsesApprovedChainTranslation(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")
	f.translate(t, "greeting", "es", "Hola", domain.MessageStatusApproved)

	got, err := f.resolver.ResolveMessage(context.Background(), "greeting", "fr", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Value != "Hola" || got.ResolvedLocale != "es" || got.Origin != messages.OriginTranslation {
		t.Fatalf("unexpected resolution %+v", got)
	}
}

func TestResolveMessageIgnoresUnapprovedValues(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")
	f.translate(t, "greeting", "fr", "Bonjour", domain.MessageStatusDraft)
	f.translate(t, "greeting", "es", "Hola", domain.MessageStatusRejected)

	got, err := f.resolver.ResolveMessage(context.Background(), "greeting", "fr", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Value != "Hello" || got.Status != domain.MessageStatusDraft {
		t.Fatalf("expected default value with draft status, got %+v", got)
	}
}

func TestResolveMessageUnknownKey(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.resolver.ResolveMessage(ctx, "missing.key", "en", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, err := f.resolver.ResolveMessage(ctx, "missing.key", "en", strPtr("fallback"))
	if err != nil {
		t.Fatalf("resolve with default: %v", err)
	}
	if got.Value != "fallback" || got.Origin != messages.OriginCaller {
		t.Fatalf("unexpected resolution %+v", got)
	}
}

func TestResolveInterpolates(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello {name}")
	f.translate(t, "greeting", "es", "Hola {name}", domain.MessageStatusApproved)
	ctx := context.Background()

	got, err := f.resolver.Resolve(ctx, "greeting", map[string]any{"name": "Ana"}, "es")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "Hola Ana" {
		t.Fatalf("expected Hola Ana, got %q", got)
	}

	_, err = f.resolver.Resolve(ctx, "greeting", map[string]any{}, "es")
	var interpErr *domain.InterpolationError
	if !errors.As(err, &interpErr) || interpErr.Parameter != "name" {
		t.Fatalf("expected interpolation error for name, got %v", err)
	}
}

func TestTranslatePairsArguments(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello {name}")
	f.translate(t, "greeting", "es", "Hola {name}", domain.MessageStatusApproved)

	got, err := f.resolver.Translate("fr", "greeting", "name", "Ana", "dangling")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Hola Ana" {
		t.Fatalf("expected Hola Ana, got %q", got)
	}

	if _, err := f.resolver.Translate("es", "greeting", 1, "Ana"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for non-string name, got %v", err)
	}
}

func TestResolveMessageSeesTranslationWrites(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")
	ctx := context.Background()

	if got, _ := f.resolver.ResolveMessage(ctx, "greeting", "fr", nil); got.Value != "Hello" {
		t.Fatalf("expected default before write, got %+v", got)
	}
	f.translate(t, "greeting", "es", "Hola", domain.MessageStatusApproved)
	if got, _ := f.resolver.ResolveMessage(ctx, "greeting", "fr", nil); got.Value != "Hola" {
		t.Fatalf("expected cached resolution to be dropped, got %+v", got)
	}
	f.translate(t, "greeting", "es", "Hola", domain.MessageStatusRejected)
	if got, _ := f.resolver.ResolveMessage(ctx, "greeting", "fr", nil); got.Value != "Hello" {
		t.Fatalf("expected rejection to hide value, got %+v", got)
	}
}

func TestBundleCompleteness(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")
	f.define(t, "auth.login", "Sign in")
	f.define(t, "auth.logout", "Sign out")
	f.translate(t, "auth.login", "es", "Entrar", domain.MessageStatusApproved)
	f.translate(t, "auth.logout", "fr", "Déconnexion", domain.MessageStatusDraft)

	bundle, err := f.resolver.GetMessageBundle(context.Background(), "fr")
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	want := map[string]string{
		"greeting":    "Hello",
		"auth.login":  "Entrar",
		"auth.logout": "Sign out",
	}
	if len(bundle) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), bundle)
	}
	for key, value := range want {
		if bundle[key] != value {
			t.Fatalf("bundle[%s] = %q, want %q", key, bundle[key], value)
		}
	}

	grouped, err := f.resolver.GetNamespacedBundle(context.Background(), "fr")
	if err != nil {
		t.Fatalf("namespaced bundle: %v", err)
	}
	if grouped["auth"]["login"] != "Entrar" || grouped[""]["greeting"] != "Hello" {
		t.Fatalf("unexpected grouping %v", grouped)
	}
}

func TestBundleInvalidationIsScopedToDependentLocales(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")
	ctx := context.Background()

	for _, code := range []string{"en", "es", "fr"} {
		if _, err := f.resolver.GetMessageBundle(ctx, code); err != nil {
			t.Fatalf("bundle %s: %v", code, err)
		}
	}
	version := f.catalog.Version()

	f.translate(t, "greeting", "es", "Hola", domain.MessageStatusApproved)

	if _, ok := f.layer.Get(ctx, cache.BundleKey(version, "en")); !ok {
		t.Fatalf("expected en bundle to stay cached")
	}
	for _, code := range []string{"es", "fr"} {
		if _, ok := f.layer.Get(ctx, cache.BundleKey(version, code)); ok {
			t.Fatalf("expected %s bundle to be invalidated", code)
		}
	}
	bundle, err := f.resolver.GetMessageBundle(ctx, "fr")
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if bundle["greeting"] != "Hola" {
		t.Fatalf("expected fresh bundle, got %v", bundle)
	}
}

func TestBundleReturnsCopies(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")
	ctx := context.Background()

	bundle, err := f.resolver.GetMessageBundle(ctx, "en")
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	bundle["greeting"] = "mutated"
	again, _ := f.resolver.GetMessageBundle(ctx, "en")
	if again["greeting"] != "Hello" {
		t.Fatalf("cached bundle was mutated: %v", again)
	}
}

func TestDefinitionWritesBumpVersion(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.define(t, "greeting", "Hello")
	before := f.catalog.Version()

	if _, err := f.resolver.GetMessageBundle(ctx, "es"); err != nil {
		t.Fatalf("bundle: %v", err)
	}
	f.define(t, "nav.home", "Home")
	if f.catalog.Version() <= before {
		t.Fatalf("expected version bump")
	}
	bundle, _ := f.resolver.GetMessageBundle(ctx, "es")
	if bundle["nav.home"] != "Home" {
		t.Fatalf("expected new message in bundle, got %v", bundle)
	}

	same := f.catalog.Version()
	f.define(t, "nav.home", "Home")
	if f.catalog.Version() != same {
		t.Fatalf("identical redefinition should not bump version")
	}
}

func TestLocaleRewiringRefreshesResolutions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.define(t, "greeting", "Hello")
	f.translate(t, "greeting", "es", "Hola", domain.MessageStatusApproved)

	if got, _ := f.resolver.ResolveMessage(ctx, "greeting", "fr", nil); got.Value != "Hola" {
		t.Fatalf("expected Hola via es, got %+v", got)
	}
	if _, err := f.graph.AddOrUpdate(ctx, locales.LocaleInput{Code: "fr", Fallback: "en"}); err != nil {
		t.Fatalf("rewire fr: %v", err)
	}
	if got, _ := f.resolver.ResolveMessage(ctx, "greeting", "fr", nil); got.Value != "Hello" {
		t.Fatalf("expected default after rewiring, got %+v", got)
	}
}

func TestResolveMessageHonoursCancellation(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.resolver.ResolveMessage(ctx, "greeting", "fr", nil); !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
}

func TestMissingTranslations(t *testing.T) {
	f := newFixture(t, nil)
	f.define(t, "greeting", "Hello")
	f.define(t, "nav.home", "Home")
	f.translate(t, "nav.home", "es", "Inicio", domain.MessageStatusApproved)

	missing, err := f.resolver.MissingTranslations(context.Background(), "fr")
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	if len(missing) != 1 || missing[0] != "greeting" {
		t.Fatalf("unexpected missing keys %v", missing)
	}
}

// interleavingRepository commits write right after the next translation read,
// before the resolver gets to cache what it read.
type interleavingRepository struct {
	messages.MessageRepository
	write func()
}

func (r *interleavingRepository) GetTranslation(ctx context.Context, id uuid.UUID) (*messages.Translation, error) {
	tr, err := r.MessageRepository.GetTranslation(ctx, id)
	if write := r.write; write != nil {
		r.write = nil
		write()
	}
	return tr, err
}

func TestResolveMessageDoesNotCacheValueReadBeforeWrite(t *testing.T) {
	repo := &interleavingRepository{MessageRepository: messages.NewMemoryRepository()}
	f := newFixture(t, repo)
	ctx := context.Background()
	f.define(t, "greeting", "Hello")
	f.translate(t, "greeting", "es", "Hola", domain.MessageStatusApproved)

	repo.write = func() { f.translate(t, "greeting", "es", "Hola", domain.MessageStatusRejected) }
	got, err := f.resolver.ResolveMessage(ctx, "greeting", "es", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Value != "Hola" {
		t.Fatalf("expected value read before the write, got %+v", got)
	}

	got, err = f.resolver.ResolveMessage(ctx, "greeting", "es", nil)
	if err != nil {
		t.Fatalf("resolve after write: %v", err)
	}
	if got.Value != "Hello" || got.Origin != messages.OriginDefault {
		t.Fatalf("expected default value once the translation is rejected, got %+v", got)
	}
}

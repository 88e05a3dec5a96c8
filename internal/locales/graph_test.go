package locales_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-localize/internal/cache"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/locales"
)

func newGraph(t *testing.T) *locales.Graph {
	t.Helper()
	layer := cache.NewLayer(cache.NewMemoryProvider(cache.MemoryConfig{}))
	return locales.NewGraph(locales.NewMemoryRepository(),
		locales.WithCache(layer),
		locales.WithNow(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }),
	)
}

func seedEnEsFr(t *testing.T, g *locales.Graph) {
	t.Helper()
	ctx := context.Background()
	inputs := []locales.LocaleInput{
		{Code: "en", Name: "English", IsDefault: true},
		{Code: "es", Name: "Spanish", Fallback: "en", SortOrder: 1},
		{Code: "fr", Name: "French", Fallback: "es", SortOrder: 2},
	}
	for _, input := range inputs {
		if _, err := g.AddOrUpdate(ctx, input); err != nil {
			t.Fatalf("add %s: %v", input.Code, err)
		}
	}
}

func chainCodes(t *testing.T, g *locales.Graph, code string) []string {
	t.Helper()
	codes, err := g.FallbackCodes(context.Background(), code)
	if err != nil {
		t.Fatalf("fallback codes %s: %v", code, err)
	}
	return codes
}

func TestGraphFallbackChain(t *testing.T) {
	g := newGraph(t)
	seedEnEsFr(t, g)

	if got := chainCodes(t, g, "fr"); !reflect.DeepEqual(got, []string{"fr", "es", "en"}) {
		t.Fatalf("unexpected chain %v", got)
	}
	if got := chainCodes(t, g, "EN"); !reflect.DeepEqual(got, []string{"en"}) {
		t.Fatalf("unexpected chain %v", got)
	}

	again := chainCodes(t, g, "fr")
	if !reflect.DeepEqual(again, []string{"fr", "es", "en"}) {
		t.Fatalf("expected deterministic chain, got %v", again)
	}
}

func TestGraphRejectsCycles(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		input locales.LocaleInput
	}{
		{name: "self reference", input: locales.LocaleInput{Code: "es", Fallback: "es"}},
		{name: "transitive", input: locales.LocaleInput{Code: "en", Fallback: "fr", IsDefault: true}},
		{name: "two hop", input: locales.LocaleInput{Code: "es", Fallback: "fr"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGraph(t)
			seedEnEsFr(t, g)
			before, err := g.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}

			_, err = g.AddOrUpdate(ctx, tc.input)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			var cfgErr *domain.ConfigurationError
			if !errors.As(err, &cfgErr) || cfgErr.Reason != "fallback cycle" {
				t.Fatalf("expected fallback cycle reason, got %v", err)
			}

			after, err := g.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !reflect.DeepEqual(before, after) {
				t.Fatalf("expected graph unchanged after rejected write")
			}
		})
	}
}

func TestGraphRejectsUnknownFallback(t *testing.T) {
	g := newGraph(t)
	_, err := g.AddOrUpdate(context.Background(), locales.LocaleInput{Code: "es", Fallback: "pt"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestGraphRejectsInvalidCode(t *testing.T) {
	g := newGraph(t)
	_, err := g.AddOrUpdate(context.Background(), locales.LocaleInput{Code: "not a locale!"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGraphSingleDefault(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	seedEnEsFr(t, g)

	if _, err := g.AddOrUpdate(ctx, locales.LocaleInput{Code: "es", Name: "Spanish", Fallback: "en", IsDefault: true}); err != nil {
		t.Fatalf("promote es: %v", err)
	}

	all, err := g.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defaults := 0
	for _, l := range all {
		if l.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}

	def, err := g.DefaultLocale(ctx)
	if err != nil {
		t.Fatalf("default locale: %v", err)
	}
	if def.Code != "es" {
		t.Fatalf("expected es as default, got %s", def.Code)
	}
}

func TestGraphDefaultLocaleNotConfigured(t *testing.T) {
	g := newGraph(t)
	if _, err := g.AddOrUpdate(context.Background(), locales.LocaleInput{Code: "en"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := g.DefaultLocale(context.Background()); !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestGraphChainCacheInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	seedEnEsFr(t, g)

	_ = chainCodes(t, g, "fr")

	if _, err := g.AddOrUpdate(ctx, locales.LocaleInput{Code: "fr", Name: "French", Fallback: "en"}); err != nil {
		t.Fatalf("rewire fr: %v", err)
	}
	if got := chainCodes(t, g, "fr"); !reflect.DeepEqual(got, []string{"fr", "en"}) {
		t.Fatalf("expected rewired chain, got %v", got)
	}
}

// interleavingRepository commits write right after the next List snapshot
// is taken, before the caller gets to use it.
type interleavingRepository struct {
	locales.LocaleRepository
	write func()
}

func (r *interleavingRepository) List(ctx context.Context) ([]*locales.Locale, error) {
	all, err := r.LocaleRepository.List(ctx)
	if write := r.write; write != nil {
		r.write = nil
		write()
	}
	return all, err
}

func TestGraphChainReadBeforeWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	repo := &interleavingRepository{LocaleRepository: locales.NewMemoryRepository()}
	layer := cache.NewLayer(cache.NewMemoryProvider(cache.MemoryConfig{}))
	g := locales.NewGraph(repo, locales.WithCache(layer))
	seedEnEsFr(t, g)

	repo.write = func() {
		if _, err := g.AddOrUpdate(ctx, locales.LocaleInput{Code: "fr", Name: "French", Fallback: "en"}); err != nil {
			t.Fatalf("rewire fr: %v", err)
		}
	}
	_ = chainCodes(t, g, "fr")

	if got := chainCodes(t, g, "fr"); !reflect.DeepEqual(got, []string{"fr", "en"}) {
		t.Fatalf("expected chain after rewiring, got %v", got)
	}
}

func TestGraphUnknownChain(t *testing.T) {
	g := newGraph(t)
	seedEnEsFr(t, g)
	if _, err := g.FallbackChain(context.Background(), "de"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGraphRemove(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	seedEnEsFr(t, g)

	var changes []locales.Change
	g.OnChange(func(_ context.Context, change locales.Change) {
		changes = append(changes, change)
	})

	if err := g.Remove(ctx, "es"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected removal of referenced locale to fail, got %v", err)
	}
	if err := g.Remove(ctx, "fr"); err != nil {
		t.Fatalf("remove fr: %v", err)
	}
	if len(changes) != 1 || !changes[0].Removed || changes[0].Code != "fr" {
		t.Fatalf("unexpected change events %v", changes)
	}
	if _, err := g.Get(ctx, "fr"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected fr to be gone, got %v", err)
	}
}

func TestGraphListActiveKeepsOrder(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	seedEnEsFr(t, g)

	inactive := false
	if _, err := g.AddOrUpdate(ctx, locales.LocaleInput{Code: "es", Name: "Spanish", Fallback: "en", SortOrder: 1, IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate es: %v", err)
	}

	active, err := g.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	var codes []string
	for _, l := range active {
		codes = append(codes, l.Code)
	}
	if !reflect.DeepEqual(codes, []string{"en", "fr"}) {
		t.Fatalf("unexpected active locales %v", codes)
	}

	if got := chainCodes(t, g, "fr"); !reflect.DeepEqual(got, []string{"fr", "es", "en"}) {
		t.Fatalf("inactive locales still belong to chains, got %v", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	got, err := locales.NormalizeCode(" es_MX ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "es-mx" {
		t.Fatalf("expected es-mx, got %s", got)
	}
}

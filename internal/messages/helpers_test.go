package messages_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-localize/internal/cache"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/messages"
)

type fixture struct {
	graph    *locales.Graph
	catalog  *messages.Catalog
	resolver *messages.Resolver
	layer    *cache.Layer
}

func newFixture(t *testing.T, repo messages.MessageRepository) *fixture {
	t.Helper()
	ctx := context.Background()
	layer := cache.NewLayer(cache.NewMemoryProvider(cache.MemoryConfig{}))

	graph := locales.NewGraph(locales.NewMemoryRepository(), locales.WithCache(layer))
	for _, input := range []locales.LocaleInput{
		{Code: "en", IsDefault: true},
		{Code: "es", Fallback: "en"},
		{Code: "fr", Fallback: "es"},
	} {
		if _, err := graph.AddOrUpdate(ctx, input); err != nil {
			t.Fatalf("add locale %s: %v", input.Code, err)
		}
	}

	if repo == nil {
		repo = messages.NewMemoryRepository()
	}
	catalog := messages.NewCatalog(repo, graph, messages.WithCache(layer))
	graph.OnChange(catalog.HandleLocaleChange)

	return &fixture{
		graph:    graph,
		catalog:  catalog,
		resolver: messages.NewResolver(catalog),
		layer:    layer,
	}
}

func (f *fixture) define(t *testing.T, key, value string) {
	t.Helper()
	if _, err := f.catalog.DefineMessage(context.Background(), messages.MessageInput{Key: key, DefaultValue: value}); err != nil {
		t.Fatalf("define %s: %v", key, err)
	}
}

func (f *fixture) translate(t *testing.T, key, locale, value string, status domain.MessageStatus) {
	t.Helper()
	_, err := f.catalog.UpsertTranslation(context.Background(), messages.TranslationInput{
		Key:    key,
		Locale: locale,
		Value:  value,
		Status: &status,
		Actor:  "tester",
	})
	if err != nil {
		t.Fatalf("translate %s/%s: %v", key, locale, err)
	}
}

func strPtr(v string) *string { return &v }

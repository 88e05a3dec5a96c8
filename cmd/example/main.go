package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	localize "github.com/goliatone/go-localize"
	"github.com/goliatone/go-localize/internal/glossary"
)

type article struct{}

func (article) EntityType() string           { return "article" }
func (article) TranslatableFields() []string { return []string{"title", "summary"} }

func main() {
	ctx := context.Background()

	cfg, err := localize.LoadConfig(os.Getenv("LOCALIZE_CONFIG"), "", ".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.Locales) <= 1 {
		cfg.Locales = []localize.LocaleConfig{
			{Code: "en", Name: "English", NativeName: "English"},
			{Code: "es", Name: "Spanish", NativeName: "Español", Fallback: "en", SortOrder: 1},
			{Code: "es-mx", Name: "Mexican Spanish", NativeName: "Español (México)", Fallback: "es", SortOrder: 2},
		}
	}

	module, err := localize.New(ctx, cfg)
	if err != nil {
		log.Fatalf("new module: %v", err)
	}
	defer module.Close()

	if err := module.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	engine := module.Translations()
	if err := engine.RegisterTranslatable(article{}); err != nil {
		log.Fatalf("register article: %v", err)
	}

	if _, err := module.Glossary().Upsert(ctx, glossary.EntryInput{
		SourceLocale: "en",
		TargetLocale: "es",
		Term:         "release notes",
		Translation:  "notas de la versión",
	}); err != nil {
		log.Fatalf("glossary: %v", err)
	}

	ref := localize.NewEntityRef("article", "release-1.0")
	if _, err := engine.OnSourceChanged(ctx, localize.SourceChange{
		Entity:       ref,
		Field:        "title",
		SourceLocale: "en",
		SourceText:   "Release notes for 1.0",
		Actor:        "editor",
	}); err != nil {
		log.Fatalf("source changed: %v", err)
	}

	hints, err := engine.GlossaryHints(ctx, "Release notes for 1.0", "en", "es")
	if err != nil {
		log.Fatalf("glossary hints: %v", err)
	}

	approved := localize.StatusApproved
	if _, err := engine.UpdateTranslation(ctx, localize.TranslationInput{
		Entity:     ref,
		Field:      "title",
		Locale:     "es",
		TargetText: "Notas de la versión 1.0",
		Status:     &approved,
		Actor:      "translator",
	}); err != nil {
		log.Fatalf("translate: %v", err)
	}

	resolved, err := engine.Resolve(ctx, ref, "title", "es-mx", nil)
	if err != nil {
		log.Fatalf("resolve: %v", err)
	}
	progress, err := engine.Progress(ctx, ref)
	if err != nil {
		log.Fatalf("progress: %v", err)
	}
	queued, err := module.Queue().ListOpen(ctx, "")
	if err != nil {
		log.Fatalf("queue: %v", err)
	}

	out := map[string]any{
		"resolved": resolved,
		"progress": progress,
		"queued":   len(queued),
		"hints":    len(hints),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

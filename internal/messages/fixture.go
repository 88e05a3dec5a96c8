package messages

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/validation"
)

//go:embed fixture.schema.json
var fixtureSchemaDocument []byte

var fixtureSchema = validation.MustCompile("messages-fixture.json", fixtureSchemaDocument)

// Fixture is a serialised set of locales, messages and translations.
type Fixture struct {
	Locales      []FixtureLocale              `json:"locales"`
	Messages     []FixtureMessage             `json:"messages"`
	Translations map[string]map[string]string `json:"translations"`
	// TranslationStatus applies to every fixture translation; defaults to approved.
	TranslationStatus domain.MessageStatus `json:"translation_status"`
}

type FixtureLocale struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Default    bool   `json:"default"`
	Active     *bool  `json:"active"`
	RTL        bool   `json:"rtl"`
	SortOrder  int    `json:"sort_order"`
	Fallback   string `json:"fallback"`
}

type FixtureMessage struct {
	Key          string `json:"key"`
	DefaultValue string `json:"default_value"`
	Description  string `json:"description"`
}

// LocaleWriter is the slice of locales.Graph used when seeding a fixture.
type LocaleWriter interface {
	AddOrUpdate(ctx context.Context, input locales.LocaleInput) (*locales.Locale, error)
}

// FixtureLoader reads fixtures from disk.
type FixtureLoader struct {
	path string
}

// NewFixtureLoader constructs a loader that reads the provided file path.
func NewFixtureLoader(path string) *FixtureLoader {
	return &FixtureLoader{path: path}
}

// Load parses and validates the configured fixture file.
func (l *FixtureLoader) Load(ctx context.Context) (*Fixture, error) {
	if l == nil || l.path == "" {
		return nil, errors.New("messages: fixture path cannot be empty")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("messages: open fixture %q: %w", l.path, err)
	}
	defer file.Close()

	return DecodeFixture(file)
}

// DecodeFixture validates raw fixture JSON against the fixture schema and
// decodes it.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("messages: read fixture: %w", err)
	}
	if err := fixtureSchema.ValidateJSON(raw); err != nil {
		return nil, fmt.Errorf("messages: invalid fixture: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	var fx Fixture
	if err := decoder.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if fx.Translations == nil {
		fx.Translations = map[string]map[string]string{}
	}
	if fx.TranslationStatus == "" {
		fx.TranslationStatus = domain.MessageStatusApproved
	}
	return &fx, nil
}

// SeedResult counts what a fixture wrote.
type SeedResult struct {
	Locales      int
	Messages     int
	Translations int
}

// Seed writes the fixture through the graph and catalog. Locales are added in
// dependency order so every fallback exists before it is referenced.
func Seed(ctx context.Context, graph LocaleWriter, catalog *Catalog, fx *Fixture) (SeedResult, error) {
	var result SeedResult
	if fx == nil {
		return result, nil
	}

	for _, loc := range orderLocales(fx.Locales) {
		if _, err := graph.AddOrUpdate(ctx, locales.LocaleInput{
			Code:       loc.Code,
			Name:       loc.Name,
			NativeName: loc.NativeName,
			IsDefault:  loc.Default,
			IsActive:   loc.Active,
			RTL:        loc.RTL,
			SortOrder:  loc.SortOrder,
			Fallback:   loc.Fallback,
		}); err != nil {
			return result, fmt.Errorf("seed locale %s: %w", loc.Code, err)
		}
		result.Locales++
	}

	for _, msg := range fx.Messages {
		if _, err := catalog.DefineMessage(ctx, MessageInput{
			Key:          msg.Key,
			DefaultValue: msg.DefaultValue,
			Description:  msg.Description,
		}); err != nil {
			return result, fmt.Errorf("seed message %s: %w", msg.Key, err)
		}
		result.Messages++
	}

	codes := make([]string, 0, len(fx.Translations))
	for code := range fx.Translations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	status := fx.TranslationStatus
	for _, code := range codes {
		keys := make([]string, 0, len(fx.Translations[code]))
		for key := range fx.Translations[code] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, err := catalog.UpsertTranslation(ctx, TranslationInput{
				Key:    key,
				Locale: code,
				Value:  fx.Translations[code][key],
				Status: &status,
				Actor:  "fixture",
			}); err != nil {
				return result, fmt.Errorf("seed translation %s/%s: %w", code, key, err)
			}
			result.Translations++
		}
	}
	return result, nil
}

func orderLocales(input []FixtureLocale) []FixtureLocale {
	pending := append([]FixtureLocale(nil), input...)
	placed := make(map[string]bool, len(pending))
	ordered := make([]FixtureLocale, 0, len(pending))
	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, loc := range pending {
			if loc.Fallback == "" || placed[loc.Fallback] {
				ordered = append(ordered, loc)
				placed[loc.Code] = true
				progressed = true
				continue
			}
			rest = append(rest, loc)
		}
		pending = rest
		if !progressed {
			// remaining fallbacks are unknown or cyclic; let the graph reject them
			return append(ordered, pending...)
		}
	}
	return ordered
}

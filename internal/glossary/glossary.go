package glossary

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/identity"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var ErrRepositoryRequired = errors.New("glossary: repository required")

// Option configures a Glossary.
type Option func(*Glossary)

// WithLogger overrides the glossary logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(g *Glossary) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithNow overrides the clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(g *Glossary) {
		if now != nil {
			g.now = now
		}
	}
}

// Glossary keeps per locale pair term translations for translators.
type Glossary struct {
	repo   GlossaryRepository
	logger interfaces.Logger
	now    func() time.Time
}

// New constructs a Glossary.
func New(repo GlossaryRepository, opts ...Option) *Glossary {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	g := &Glossary{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Upsert writes the translation of a term for a locale pair.
func (g *Glossary) Upsert(ctx context.Context, input EntryInput) (*Entry, error) {
	term := strings.Join(strings.Fields(input.Term), " ")
	if term == "" {
		return nil, &domain.ValidationError{Field: "term", Message: "term is required"}
	}
	translation := strings.TrimSpace(input.Translation)
	if translation == "" {
		return nil, &domain.ValidationError{Field: "translation", Message: "translation is required"}
	}
	source, target, err := normalizePair(input.SourceLocale, input.TargetLocale)
	if err != nil {
		return nil, err
	}

	now := g.now().UTC()
	normalized := NormalizeTerm(term)
	saved, err := g.repo.Save(ctx, &Entry{
		ID:           identity.GlossaryUUID(normalized, source, target),
		Term:         term,
		Normalized:   normalized,
		SourceLocale: source,
		TargetLocale: target,
		Translation:  translation,
		Notes:        strings.TrimSpace(input.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	g.logger.Debug("glossary.upsert", "term", normalized, "source", source, "target", target)
	return saved, nil
}

// Lookup returns the entry for term, matched case-insensitively.
func (g *Glossary) Lookup(ctx context.Context, term, sourceLocale, targetLocale string) (*Entry, error) {
	source, target, err := normalizePair(sourceLocale, targetLocale)
	if err != nil {
		return nil, err
	}
	normalized := NormalizeTerm(term)
	entry, err := g.repo.GetByID(ctx, identity.GlossaryUUID(normalized, source, target))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.NotFoundError{Resource: "glossary_entry", Key: normalized}
		}
		return nil, err
	}
	return entry, nil
}

// Remove deletes the entry for term.
func (g *Glossary) Remove(ctx context.Context, term, sourceLocale, targetLocale string) error {
	entry, err := g.Lookup(ctx, term, sourceLocale, targetLocale)
	if err != nil {
		return err
	}
	return g.repo.Delete(ctx, entry.ID)
}

// List returns every entry of a locale pair.
func (g *Glossary) List(ctx context.Context, sourceLocale, targetLocale string) ([]*Entry, error) {
	source, target, err := normalizePair(sourceLocale, targetLocale)
	if err != nil {
		return nil, err
	}
	return g.repo.ListByPair(ctx, source, target)
}

// Match finds whole-word, case-insensitive occurrences of the pair's terms
// in text. Offsets are byte offsets into text.
func (g *Glossary) Match(ctx context.Context, text, sourceLocale, targetLocale string) ([]Match, error) {
	entries, err := g.List(ctx, sourceLocale, targetLocale)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	folded, offsets := foldText(text)
	var matches []Match
	for _, entry := range entries {
		needle := []rune(entry.Normalized)
		for start := 0; start+len(needle) <= len(folded); start++ {
			if !hasPrefix(folded[start:], needle) {
				continue
			}
			end := start + len(needle)
			if !boundary(folded, start-1) || !boundary(folded, end) {
				continue
			}
			matches = append(matches, Match{
				Entry:  entry,
				Offset: offsets[start],
				Text:   text[offsets[start]:offsets[end]],
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Offset != matches[j].Offset {
			return matches[i].Offset < matches[j].Offset
		}
		return len(matches[i].Text) > len(matches[j].Text)
	})
	return matches, nil
}

// foldText lowercases text rune by rune. offsets maps rune index to byte
// offset and carries one extra entry for len(text).
func foldText(text string) ([]rune, []int) {
	runes := make([]rune, 0, utf8.RuneCountInString(text))
	offsets := make([]int, 0, cap(runes)+1)
	for i, r := range text {
		if unicode.IsSpace(r) {
			r = ' '
		}
		runes = append(runes, unicode.ToLower(r))
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return runes, offsets
}

func hasPrefix(haystack, needle []rune) bool {
	for i, r := range needle {
		if haystack[i] != r {
			return false
		}
	}
	return true
}

func boundary(runes []rune, idx int) bool {
	if idx < 0 || idx >= len(runes) {
		return true
	}
	r := runes[idx]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func normalizePair(sourceLocale, targetLocale string) (string, string, error) {
	source, err := locales.NormalizeCode(sourceLocale)
	if err != nil {
		return "", "", err
	}
	target, err := locales.NormalizeCode(targetLocale)
	if err != nil {
		return "", "", err
	}
	if source == target {
		return "", "", &domain.ValidationError{Field: "target_locale", Message: "source and target locales must differ"}
	}
	return source, target, nil
}

package locales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/goliatone/go-localize/internal/cache"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/identity"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// ErrRepositoryRequired is raised when NewGraph receives no repository.
var ErrRepositoryRequired = errors.New("locales: repository required")

// Change describes a committed locale write.
type Change struct {
	Code    string
	Removed bool
}

// ChangeHook runs after every committed locale write. Resolvers register hooks
// to drop entries derived from fallback chains.
type ChangeHook func(ctx context.Context, change Change)

// IDDeriver produces locale IDs from codes.
type IDDeriver func(code string) uuid.UUID

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithCache memoises fallback chains in the given layer.
func WithCache(layer *cache.Layer) GraphOption {
	return func(g *Graph) {
		g.cache = layer
	}
}

// WithLogger overrides the graph logger.
func WithLogger(logger interfaces.Logger) GraphOption {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) GraphOption {
	return func(g *Graph) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIDDeriver overrides locale ID derivation.
func WithIDDeriver(deriver IDDeriver) GraphOption {
	return func(g *Graph) {
		if deriver != nil {
			g.id = deriver
		}
	}
}

// WithChainTTL sets how long fallback chains stay cached.
func WithChainTTL(ttl time.Duration) GraphOption {
	return func(g *Graph) {
		if ttl > 0 {
			g.chainTTL = ttl
		}
	}
}

// Graph holds the locale set and its fallback edges. Writes are serialised so
// that validation and persistence observe the same snapshot.
type Graph struct {
	repo     LocaleRepository
	cache    *cache.Layer
	logger   interfaces.Logger
	now      func() time.Time
	id       IDDeriver
	chainTTL time.Duration

	writeMu sync.Mutex
	gen     cache.Generation

	hooksMu sync.RWMutex
	hooks   []ChangeHook
}

// NewGraph constructs a Graph backed by repo.
func NewGraph(repo LocaleRepository, opts ...GraphOption) *Graph {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	g := &Graph{
		repo:     repo,
		logger:   logging.NoOp(),
		now:      time.Now,
		id:       identity.LocaleUUID,
		chainTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// OnChange registers a hook fired after each committed locale write.
func (g *Graph) OnChange(hook ChangeHook) {
	if hook == nil {
		return
	}
	g.hooksMu.Lock()
	defer g.hooksMu.Unlock()
	g.hooks = append(g.hooks, hook)
}

// NormalizeCode lowercases a locale code, converts underscores to hyphens and
// checks that the result is a well-formed BCP 47 tag.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	code = strings.ReplaceAll(code, "_", "-")
	if code == "" {
		return "", &domain.ValidationError{Field: "code", Message: "locale code is required"}
	}
	if _, err := language.Parse(code); err != nil {
		return "", &domain.ValidationError{Field: "code", Message: fmt.Sprintf("invalid locale code %q", raw)}
	}
	return code, nil
}

// AddOrUpdate validates and persists a locale. A fallback that points at the
// locale itself, at an unknown locale, or back into its own chain is rejected
// with a ConfigurationError and nothing is written.
func (g *Graph) AddOrUpdate(ctx context.Context, input LocaleInput) (*Locale, error) {
	if err := domain.Cancelled(ctx); err != nil {
		return nil, err
	}
	code, err := NormalizeCode(input.Code)
	if err != nil {
		return nil, err
	}
	fallback := ""
	if strings.TrimSpace(input.Fallback) != "" {
		if fallback, err = NormalizeCode(input.Fallback); err != nil {
			return nil, err
		}
	}

	g.writeMu.Lock()
	saved, err := g.addOrUpdateLocked(ctx, code, fallback, input)
	g.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	g.changed(ctx, Change{Code: code})
	return saved, nil
}

func (g *Graph) addOrUpdateLocked(ctx context.Context, code, fallback string, input LocaleInput) (*Locale, error) {
	all, err := g.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	edges := make(map[string]string, len(all)+1)
	var existing *Locale
	for _, record := range all {
		edges[record.Code] = record.FallbackCode()
		if record.Code == code {
			existing = record
		}
	}

	if fallback != "" {
		if _, ok := edges[fallback]; !ok && fallback != code {
			g.logger.Warn("locales.upsert.rejected", "code", code, "fallback", fallback, "reason", "unknown fallback")
			return nil, &domain.ConfigurationError{Reason: "unknown fallback locale " + fallback, Locale: code}
		}
	}
	edges[code] = fallback
	if path := findCycle(edges, code); path != nil {
		g.logger.Warn("locales.upsert.rejected", "code", code, "fallback", fallback, "path", strings.Join(path, ">"))
		return nil, &domain.ConfigurationError{Reason: "fallback cycle", Locale: code, Path: path}
	}

	now := g.now().UTC()
	record := &Locale{
		ID:         g.id(code),
		Code:       code,
		Name:       strings.TrimSpace(input.Name),
		NativeName: strings.TrimSpace(input.NativeName),
		IsDefault:  input.IsDefault,
		IsActive:   true,
		RTL:        input.RTL,
		SortOrder:  input.SortOrder,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if record.Name == "" {
		record.Name = code
	}
	if fallback != "" {
		record.Fallback = &fallback
	}
	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.IsActive = existing.IsActive
	}
	if input.IsActive != nil {
		record.IsActive = *input.IsActive
	}

	saved, err := g.repo.Save(ctx, record)
	if err != nil {
		return nil, err
	}
	g.logger.Info("locales.upsert", "code", code, "fallback", fallback, "default", record.IsDefault)
	return cloneLocale(saved), nil
}

// findCycle walks fallback edges from start and returns the offending path
// when a code repeats. The walk is capped at the node count.
func findCycle(edges map[string]string, start string) []string {
	visited := make(map[string]struct{}, len(edges))
	path := make([]string, 0, len(edges)+1)
	current := start
	for steps := 0; current != "" && steps <= len(edges); steps++ {
		path = append(path, current)
		if _, seen := visited[current]; seen {
			return path
		}
		visited[current] = struct{}{}
		current = edges[current]
	}
	return nil
}

// Remove deletes a locale unless another locale falls back to it.
func (g *Graph) Remove(ctx context.Context, rawCode string) error {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return err
	}

	g.writeMu.Lock()
	err = g.removeLocked(ctx, code)
	g.writeMu.Unlock()
	if err != nil {
		return err
	}

	g.changed(ctx, Change{Code: code, Removed: true})
	return nil
}

func (g *Graph) removeLocked(ctx context.Context, code string) error {
	all, err := g.repo.List(ctx)
	if err != nil {
		return err
	}
	var dependents []string
	for _, record := range all {
		if record.Code != code && record.FallbackCode() == code {
			dependents = append(dependents, record.Code)
		}
	}
	if len(dependents) > 0 {
		sort.Strings(dependents)
		return &domain.ConfigurationError{Reason: "locale is a fallback target", Locale: code, Path: dependents}
	}
	if err := g.repo.Delete(ctx, code); err != nil {
		return err
	}
	g.logger.Info("locales.removed", "code", code)
	return nil
}

// Get returns one locale.
func (g *Graph) Get(ctx context.Context, rawCode string) (*Locale, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	return g.repo.GetByCode(ctx, code)
}

// List returns every locale ordered by sort order, then code.
func (g *Graph) List(ctx context.Context) ([]*Locale, error) {
	all, err := g.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].SortOrder != all[j].SortOrder {
			return all[i].SortOrder < all[j].SortOrder
		}
		return all[i].Code < all[j].Code
	})
	return all, nil
}

// ListActive returns the active locales in List order.
func (g *Graph) ListActive(ctx context.Context) ([]*Locale, error) {
	all, err := g.List(ctx)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, record := range all {
		if record.IsActive {
			active = append(active, record)
		}
	}
	return active, nil
}

// DefaultLocale returns the single default locale.
func (g *Graph) DefaultLocale(ctx context.Context) (*Locale, error) {
	all, err := g.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, record := range all {
		if record.IsDefault {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: no default locale", domain.ErrNotConfigured)
}

// FallbackChain returns the locales to consult for code, starting with code
// itself. The result is memoised until the next locale write.
func (g *Graph) FallbackChain(ctx context.Context, rawCode string) ([]Locale, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	if err := domain.Cancelled(ctx); err != nil {
		return nil, err
	}

	key := cache.ChainKey(code)
	if chain, ok := cache.Fetch[[]Locale](ctx, g.cache, key); ok && len(chain) > 0 {
		return cloneChain(chain), nil
	}

	mark := g.gen.Mark()
	all, err := g.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	chain, err := buildChain(all, code)
	if err != nil {
		return nil, err
	}
	g.cache.SetGuarded(ctx, &g.gen, mark, key, chain, g.chainTTL)
	return cloneChain(chain), nil
}

// FallbackCodes is FallbackChain reduced to locale codes.
func (g *Graph) FallbackCodes(ctx context.Context, code string) ([]string, error) {
	chain, err := g.FallbackChain(ctx, code)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(chain))
	for i := range chain {
		codes[i] = chain[i].Code
	}
	return codes, nil
}

func buildChain(all []*Locale, code string) ([]Locale, error) {
	byCode := make(map[string]*Locale, len(all))
	for _, record := range all {
		byCode[record.Code] = record
	}
	current, ok := byCode[code]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "locale", Key: code}
	}

	chain := make([]Locale, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for current != nil && len(chain) < len(all) {
		if _, dup := seen[current.Code]; dup {
			break
		}
		seen[current.Code] = struct{}{}
		chain = append(chain, *cloneLocale(current))
		current = byCode[current.FallbackCode()]
	}
	return chain, nil
}

func cloneChain(chain []Locale) []Locale {
	out := make([]Locale, len(chain))
	for i := range chain {
		out[i] = *cloneLocale(&chain[i])
	}
	return out
}

func (g *Graph) changed(ctx context.Context, change Change) {
	g.gen.Advance()
	g.cache.DeletePrefix(ctx, cache.ChainPrefix())

	g.hooksMu.RLock()
	hooks := append([]ChangeHook(nil), g.hooks...)
	g.hooksMu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, change)
	}
}

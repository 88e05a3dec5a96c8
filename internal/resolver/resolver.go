package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-localize/internal/cache"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/internal/units"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var (
	ErrGraphRequired = errors.New("resolver: locale graph required")
	ErrUnitsRequired = errors.New("resolver: unit source required")
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache memoises resolutions in the given layer.
func WithCache(layer *cache.Layer) Option {
	return func(r *Resolver) {
		r.cache = layer
	}
}

// WithLogger overrides the resolver logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTTL sets how long resolutions stay cached.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// Resolver picks the best available value of an entity field for a locale by
// walking the fallback chain. Only approved translations are ever returned.
type Resolver struct {
	graph  LocaleGraph
	units  UnitSource
	cache  *cache.Layer
	logger interfaces.Logger
	ttl    time.Duration

	gen cache.Generation
}

// New constructs a Resolver.
func New(graph LocaleGraph, source UnitSource, opts ...Option) *Resolver {
	if graph == nil {
		panic(ErrGraphRequired)
	}
	if source == nil {
		panic(ErrUnitsRequired)
	}
	r := &Resolver{
		graph:  graph,
		units:  source,
		logger: logging.NoOp(),
		ttl:    5 * time.Minute,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the value of field for locale. When nothing in the chain
// yields a value, defaultValue is used; without one the call fails with
// domain.ErrResolutionMiss.
func (r *Resolver) Resolve(ctx context.Context, ref domain.EntityRef, field, locale string, defaultValue *string) (Result, error) {
	ref = domain.NewEntityRef(ref.Type, ref.ID)
	if ref.IsZero() {
		return Result{}, &domain.ValidationError{Field: "entity", Message: "entity type and id are required"}
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return Result{}, &domain.ValidationError{Field: "field", Message: "field is required"}
	}
	code, err := locales.NormalizeCode(locale)
	if err != nil {
		return Result{}, err
	}

	key := cache.UnitResolveKey(ref.Type, ref.ID, field, code)
	out, ok := cache.Fetch[outcome](ctx, r.cache, key)
	if !ok {
		mark := r.gen.Mark()
		out, err = r.lookup(ctx, ref, field, code)
		if err != nil {
			return Result{}, err
		}
		r.cache.SetGuarded(ctx, &r.gen, mark, key, out, r.ttl)
	}

	if out.Found {
		return Result{Value: out.Value, ResolvedLocale: out.ResolvedLocale, Status: out.Status, Origin: out.Origin}, nil
	}
	if defaultValue != nil {
		return Result{Value: *defaultValue, Status: out.Status, Origin: OriginDefault}, nil
	}
	r.logger.Debug("resolver.miss", "entity", ref.String(), "field", field, "locale", code)
	return Result{}, fmt.Errorf("%w: %s %s in %s", domain.ErrResolutionMiss, ref, field, code)
}

func (r *Resolver) lookup(ctx context.Context, ref domain.EntityRef, field, code string) (outcome, error) {
	chain, err := r.graph.FallbackCodes(ctx, code)
	if err != nil {
		return outcome{}, err
	}

	requested := domain.UnitStatusMissing
	visited := make([]*units.Unit, 0, len(chain))
	for i, hop := range chain {
		if err := domain.Cancelled(ctx); err != nil {
			return outcome{}, err
		}
		unit, err := r.units.Get(ctx, ref, field, hop)
		if err != nil {
			return outcome{}, err
		}
		if unit == nil {
			continue
		}
		if i == 0 {
			requested = unit.Status
		}
		if unit.Status == domain.UnitStatusApproved && unit.TargetText != nil {
			return outcome{
				Found:          true,
				Value:          *unit.TargetText,
				ResolvedLocale: hop,
				Status:         unit.Status,
				Origin:         OriginTranslation,
			}, nil
		}
		visited = append(visited, unit)
	}
	if err := domain.Cancelled(ctx); err != nil {
		return outcome{}, err
	}

	roots := map[string]struct{}{chain[len(chain)-1]: {}}
	if def, err := r.graph.DefaultLocale(ctx); err == nil {
		roots[def.Code] = struct{}{}
	} else if !errors.Is(err, domain.ErrNotConfigured) {
		return outcome{}, err
	}

	source := sourceUnit(visited, roots)
	if source == nil {
		all, err := r.units.ListForEntity(ctx, ref)
		if err != nil {
			return outcome{}, err
		}
		fieldUnits := all[:0]
		for _, unit := range all {
			if unit.Field == field {
				fieldUnits = append(fieldUnits, unit)
			}
		}
		source = sourceUnit(fieldUnits, roots)
	}
	if source == nil {
		return outcome{Status: requested}, nil
	}
	return outcome{
		Found:          true,
		Value:          source.SourceText,
		ResolvedLocale: source.SourceLocale,
		Status:         requested,
		Origin:         OriginSource,
	}, nil
}

func sourceUnit(candidates []*units.Unit, roots map[string]struct{}) *units.Unit {
	for _, unit := range candidates {
		if _, ok := roots[unit.SourceLocale]; ok {
			return unit
		}
	}
	return nil
}

// GetTranslationStatus reports, per field, the unit state in locale and
// whether the field currently resolves. Resolution misses are reported in
// Resolvable rather than returned as errors.
func (r *Resolver) GetTranslationStatus(ctx context.Context, ref domain.EntityRef, locale string, fields []string) (map[string]FieldStatus, error) {
	code, err := locales.NormalizeCode(locale)
	if err != nil {
		return nil, err
	}
	out := make(map[string]FieldStatus, len(fields))
	for _, field := range fields {
		unit, err := r.units.Get(ctx, ref, field, code)
		if err != nil {
			return nil, err
		}
		status := FieldStatus{TargetLocale: code, Status: domain.UnitStatusMissing}
		if unit != nil {
			status.Status = unit.Status
			status.HasTranslation = unit.HasTarget()
			status.Stale = unit.Status == domain.UnitStatusNeedsReview
		}

		_, err = r.Resolve(ctx, ref, field, code, nil)
		switch {
		case err == nil:
			status.Resolvable = true
		case errors.Is(err, domain.ErrResolutionMiss):
		default:
			return nil, err
		}
		out[strings.TrimSpace(field)] = status
	}
	return out, nil
}

// CompletionPercentage is the share of fields approved in locale, from 0 to
// 100. An empty field list counts as complete.
func (r *Resolver) CompletionPercentage(ctx context.Context, ref domain.EntityRef, locale string, fields []string) (float64, error) {
	if len(fields) == 0 {
		return 100, nil
	}
	code, err := locales.NormalizeCode(locale)
	if err != nil {
		return 0, err
	}
	approved := 0
	for _, field := range fields {
		unit, err := r.units.Get(ctx, ref, field, code)
		if err != nil {
			return 0, err
		}
		if unit != nil && unit.Status == domain.UnitStatusApproved {
			approved++
		}
	}
	return float64(approved) * 100 / float64(len(fields)), nil
}

// Invalidate drops every cached resolution of one entity field.
func (r *Resolver) Invalidate(ctx context.Context, ref domain.EntityRef, field string) {
	if strings.TrimSpace(field) == "" {
		r.InvalidateEntity(ctx, ref)
		return
	}
	r.gen.Advance()
	r.cache.DeletePrefix(ctx, cache.UnitFieldPrefix(ref.Type, ref.ID, strings.TrimSpace(field)))
}

// InvalidateEntity drops every cached resolution of the entity.
func (r *Resolver) InvalidateEntity(ctx context.Context, ref domain.EntityRef) {
	r.gen.Advance()
	r.cache.DeletePrefix(ctx, cache.UnitEntityPrefix(ref.Type, ref.ID))
}

// InvalidateAll drops every cached unit resolution.
func (r *Resolver) InvalidateAll(ctx context.Context) {
	r.gen.Advance()
	r.cache.DeletePrefix(ctx, cache.UnitResolvePrefix())
}

// HandleUnitChange matches units.ChangeHook.
func (r *Resolver) HandleUnitChange(ctx context.Context, ref domain.EntityRef, field string) {
	r.Invalidate(ctx, ref, field)
}

// HandleLocaleChange matches locales.ChangeHook. Every resolution depends on
// a fallback chain, so all of them are dropped.
func (r *Resolver) HandleLocaleChange(ctx context.Context, _ locales.Change) {
	r.InvalidateAll(ctx)
}

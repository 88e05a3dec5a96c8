package resolver

import (
	"context"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/units"
)

// Origin tells where a resolved value came from.
type Origin string

const (
	OriginTranslation Origin = "translation"
	OriginSource      Origin = "source"
	OriginDefault     Origin = "default"
)

// Result is the outcome of resolving one field. For translations Status is
// the status of the unit that supplied the value, which is always approved.
// For source and default values it is the status of the requested locale's
// unit (missing when there is none).
type Result struct {
	Value          string            `json:"value"`
	ResolvedLocale string            `json:"resolved_locale"`
	Status         domain.UnitStatus `json:"status"`
	Origin         Origin            `json:"origin"`
}

// FieldStatus is the editor-facing state of one field in one locale.
type FieldStatus struct {
	TargetLocale   string            `json:"target_locale"`
	HasTranslation bool              `json:"has_translation"`
	Status         domain.UnitStatus `json:"status"`
	Stale          bool              `json:"stale"`
	Resolvable     bool              `json:"resolvable"`
}

// LocaleGraph is the slice of locales.Graph the resolver needs.
type LocaleGraph interface {
	FallbackCodes(ctx context.Context, code string) ([]string, error)
	DefaultLocale(ctx context.Context) (*locales.Locale, error)
}

// UnitSource is the slice of units.Store the resolver needs.
type UnitSource interface {
	Get(ctx context.Context, ref domain.EntityRef, field, locale string) (*units.Unit, error)
	ListForEntity(ctx context.Context, ref domain.EntityRef) ([]*units.Unit, error)
}

// outcome is the cached, store-derived part of a resolution. Default values
// supplied by callers are applied after the cache.
type outcome struct {
	Found          bool              `json:"found"`
	Value          string            `json:"value"`
	ResolvedLocale string            `json:"resolved_locale"`
	Status         domain.UnitStatus `json:"status"`
	Origin         Origin            `json:"origin"`
}

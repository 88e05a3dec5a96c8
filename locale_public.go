package localize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/locales"
)

var (
	// ErrLocaleCodeRequired indicates locale lookups require a non-empty locale code.
	ErrLocaleCodeRequired = errors.New("localize: locale code is required")
	// ErrUnknownLocale indicates the locale code is not registered.
	ErrUnknownLocale = errors.New("localize: unknown locale")
)

// LocaleNotFoundError describes unknown locale-code lookups and unwraps to ErrUnknownLocale.
type LocaleNotFoundError struct {
	Code string
}

func (e *LocaleNotFoundError) Error() string {
	code := strings.TrimSpace(e.Code)
	if code == "" {
		return "localize: locale not found"
	}
	return fmt.Sprintf("localize: locale %q not found", code)
}

func (e *LocaleNotFoundError) Unwrap() error {
	return ErrUnknownLocale
}

// LocaleInfo is the stable public locale view.
type LocaleInfo struct {
	ID         uuid.UUID
	Code       string
	Name       string
	NativeName string
	Fallback   string
	IsActive   bool
	IsDefault  bool
	RTL        bool
	SortOrder  int
	// Chain is the fallback chain starting at Code.
	Chain []string
}

// LocaleService resolves locale records through the public contract.
type LocaleService interface {
	ResolveByCode(ctx context.Context, code string) (LocaleInfo, error)
	List(ctx context.Context, activeOnly bool) ([]LocaleInfo, error)
}

type localeService struct {
	module *Module
}

func newLocaleService(m *Module) LocaleService {
	return &localeService{module: m}
}

func (s *localeService) graph() (*locales.Graph, error) {
	if s == nil || s.module == nil || s.module.container == nil {
		return nil, errNilModule
	}
	graph := s.module.container.Locales()
	if graph == nil {
		return nil, errNilModule
	}
	return graph, nil
}

func (s *localeService) ResolveByCode(ctx context.Context, code string) (LocaleInfo, error) {
	graph, err := s.graph()
	if err != nil {
		return LocaleInfo{}, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return LocaleInfo{}, ErrLocaleCodeRequired
	}

	locale, err := graph.Get(ctx, code)
	if err != nil {
		if domain.IsNotFound(err) {
			return LocaleInfo{}, &LocaleNotFoundError{Code: code}
		}
		return LocaleInfo{}, err
	}
	if locale == nil {
		return LocaleInfo{}, &LocaleNotFoundError{Code: code}
	}

	chain, err := graph.FallbackCodes(ctx, locale.Code)
	if err != nil {
		return LocaleInfo{}, err
	}
	info := toLocaleInfo(locale)
	info.Chain = chain
	return info, nil
}

func (s *localeService) List(ctx context.Context, activeOnly bool) ([]LocaleInfo, error) {
	graph, err := s.graph()
	if err != nil {
		return nil, err
	}

	var records []*locales.Locale
	if activeOnly {
		records, err = graph.ListActive(ctx)
	} else {
		records, err = graph.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]LocaleInfo, 0, len(records))
	for _, record := range records {
		out = append(out, toLocaleInfo(record))
	}
	return out, nil
}

func toLocaleInfo(locale *locales.Locale) LocaleInfo {
	return LocaleInfo{
		ID:         locale.ID,
		Code:       locale.Code,
		Name:       locale.Name,
		NativeName: locale.NativeName,
		Fallback:   locale.FallbackCode(),
		IsActive:   locale.IsActive,
		IsDefault:  locale.IsDefault,
		RTL:        locale.RTL,
		SortOrder:  locale.SortOrder,
	}
}

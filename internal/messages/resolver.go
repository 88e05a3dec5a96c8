package messages

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-localize/internal/cache"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/identity"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var ErrCatalogRequired = errors.New("messages: catalog required")

var _ interfaces.Translator = (*Resolver)(nil)

// Origin values reported by resolutions.
const (
	OriginTranslation = "translation"
	OriginDefault     = "default"
	OriginCaller      = "caller"
)

// Resolution is the outcome of resolving one message for one locale.
type Resolution struct {
	Value          string               `json:"value"`
	ResolvedLocale string               `json:"resolved_locale,omitempty"`
	Status         domain.MessageStatus `json:"status"`
	Origin         string               `json:"origin"`
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTTL sets how long resolutions and bundles stay cached.
func WithTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// Resolver resolves UI messages against the catalog using fallback chains.
// Only approved translations are returned; the message default value is the
// final fallback.
type Resolver struct {
	catalog *Catalog
	ttl     time.Duration
}

// NewResolver constructs a Resolver reading from catalog.
func NewResolver(catalog *Catalog, opts ...ResolverOption) *Resolver {
	if catalog == nil {
		panic(ErrCatalogRequired)
	}
	r := &Resolver{catalog: catalog, ttl: 10 * time.Minute}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ResolveMessage resolves key for locale. Unknown keys fall back to
// defaultValue when given, otherwise fail with *domain.NotFoundError.
func (r *Resolver) ResolveMessage(ctx context.Context, key, locale string, defaultValue *string) (Resolution, error) {
	c := r.catalog
	code, err := locales.NormalizeCode(locale)
	if err != nil {
		return Resolution{}, err
	}
	namespace, name, err := SplitKey(key)
	if err != nil {
		return Resolution{}, err
	}
	fullKey := JoinKey(namespace, name)

	cacheKey := cache.MessageResolveKey(fullKey, code)
	if res, ok := cache.Fetch[Resolution](ctx, c.cache, cacheKey); ok {
		return res, nil
	}

	mark := c.writeMark()
	message, err := c.repo.GetMessage(ctx, identity.MessageUUID(namespace, name))
	if err != nil {
		if !domain.IsNotFound(err) {
			return Resolution{}, err
		}
		if defaultValue != nil {
			return Resolution{Value: *defaultValue, Status: domain.MessageStatusMissing, Origin: OriginCaller}, nil
		}
		return Resolution{}, &domain.NotFoundError{Resource: "message", Key: fullKey}
	}

	chain, err := c.graph.FallbackCodes(ctx, code)
	if err != nil {
		return Resolution{}, err
	}
	res, err := r.walk(ctx, message, chain)
	if err != nil {
		return Resolution{}, err
	}
	c.setIfUnchanged(ctx, mark, cacheKey, res, r.ttl)
	return res, nil
}

func (r *Resolver) walk(ctx context.Context, message *Message, chain []string) (Resolution, error) {
	res := Resolution{
		Value:          message.DefaultValue,
		ResolvedLocale: chain[len(chain)-1],
		Status:         domain.MessageStatusMissing,
		Origin:         OriginDefault,
	}
	for i, code := range chain {
		if err := domain.Cancelled(ctx); err != nil {
			return Resolution{}, err
		}
		tr, err := r.catalog.repo.GetTranslation(ctx, identity.MessageTranslationUUID(message.ID, code))
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return Resolution{}, err
		}
		if i == 0 {
			res.Status = tr.Status
		}
		if tr.Status == domain.MessageStatusApproved {
			res.Value = tr.Value
			res.ResolvedLocale = code
			res.Origin = OriginTranslation
			return res, nil
		}
	}
	return res, nil
}

// Resolve resolves key for locale and substitutes {name} placeholders from
// params.
func (r *Resolver) Resolve(ctx context.Context, key string, params map[string]any, locale string) (string, error) {
	res, err := r.ResolveMessage(ctx, key, locale, nil)
	if err != nil {
		return "", err
	}
	return Interpolate(key, res.Value, params)
}

// Translate implements interfaces.Translator. args are name/value pairs;
// a trailing name without a value is ignored.
func (r *Resolver) Translate(locale, key string, args ...any) (string, error) {
	params := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		name, ok := args[i].(string)
		if !ok {
			return "", &domain.ValidationError{Field: "args", Message: fmt.Sprintf("placeholder name at %d is %T, want string", i, args[i])}
		}
		params[name] = args[i+1]
	}
	return r.Resolve(context.Background(), key, params, locale)
}

// GetMessageBundle returns every message resolved for locale, keyed by full
// message key. The bundle is cached whole per catalog version.
func (r *Resolver) GetMessageBundle(ctx context.Context, locale string) (map[string]string, error) {
	c := r.catalog
	code, err := locales.NormalizeCode(locale)
	if err != nil {
		return nil, err
	}
	version := c.Version()
	cacheKey := cache.BundleKey(version, code)
	if bundle, ok := cache.Fetch[map[string]string](ctx, c.cache, cacheKey); ok {
		return maps.Clone(bundle), nil
	}

	mark := c.writeMark()
	bundle, err := r.buildBundle(ctx, code)
	if err != nil {
		return nil, err
	}
	if c.Version() == version {
		c.setIfUnchanged(ctx, mark, cacheKey, bundle, r.ttl)
	}
	c.logger.Debug("messages.bundle.built", "locale", code, "version", version, "size", len(bundle))
	return maps.Clone(bundle), nil
}

// GetNamespacedBundle groups the bundle of locale by namespace. Messages
// without a namespace are grouped under the empty string.
func (r *Resolver) GetNamespacedBundle(ctx context.Context, locale string) (map[string]map[string]string, error) {
	bundle, err := r.GetMessageBundle(ctx, locale)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]string)
	for fullKey, value := range bundle {
		namespace, key, err := SplitKey(fullKey)
		if err != nil {
			continue
		}
		group, ok := out[namespace]
		if !ok {
			group = make(map[string]string)
			out[namespace] = group
		}
		group[key] = value
	}
	return out, nil
}

// buildBundle loads the translations of every chain locale concurrently, then
// picks the first approved value per message in chain order.
func (r *Resolver) buildBundle(ctx context.Context, code string) (map[string]string, error) {
	c := r.catalog
	chain, err := c.graph.FallbackCodes(ctx, code)
	if err != nil {
		return nil, err
	}
	messages, err := c.repo.ListMessages(ctx)
	if err != nil {
		return nil, err
	}

	approved := make([]map[string]string, len(chain))
	group, gctx := errgroup.WithContext(ctx)
	for i, loc := range chain {
		group.Go(func() error {
			if err := domain.Cancelled(gctx); err != nil {
				return err
			}
			rows, err := c.repo.ListTranslationsByLocale(gctx, loc)
			if err != nil {
				return err
			}
			values := make(map[string]string, len(rows))
			for _, row := range rows {
				if row.Status == domain.MessageStatusApproved {
					values[row.MessageID.String()] = row.Value
				}
			}
			approved[i] = values
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := domain.Cancelled(ctx); err != nil {
		return nil, err
	}

	bundle := make(map[string]string, len(messages))
	for _, message := range messages {
		value := message.DefaultValue
		id := message.ID.String()
		for _, values := range approved {
			if v, ok := values[id]; ok {
				value = v
				break
			}
		}
		bundle[message.FullKey()] = value
	}
	return bundle, nil
}

// MissingTranslations lists the keys of locale that have no approved value
// anywhere in its chain and therefore render their default value.
func (r *Resolver) MissingTranslations(ctx context.Context, locale string) ([]string, error) {
	c := r.catalog
	code, err := locales.NormalizeCode(locale)
	if err != nil {
		return nil, err
	}
	messages, err := c.repo.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	chain, err := c.graph.FallbackCodes(ctx, code)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, message := range messages {
		res, err := r.walk(ctx, message, chain)
		if err != nil {
			return nil, err
		}
		if res.Origin == OriginDefault {
			missing = append(missing, message.FullKey())
		}
	}
	return missing, nil
}

package messages

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-localize/internal/cache"
	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/identity"
	"github.com/goliatone/go-localize/internal/locales"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var (
	ErrRepositoryRequired = errors.New("messages: repository required")
	ErrGraphRequired      = errors.New("messages: locale graph required")
)

// LocaleGraph is the slice of locales.Graph the catalog depends on.
type LocaleGraph interface {
	FallbackCodes(ctx context.Context, code string) ([]string, error)
	List(ctx context.Context) ([]*locales.Locale, error)
}

var _ LocaleGraph = (*locales.Graph)(nil)

// Option configures a Catalog.
type Option func(*Catalog)

// WithCache sets the layer shared by the catalog and its resolvers.
func WithCache(layer *cache.Layer) Option {
	return func(c *Catalog) {
		c.cache = layer
	}
}

// WithLogger overrides the catalog logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNow overrides the clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// Catalog stores UI messages and their translations. Every definition write
// advances the catalog version, which scopes cached bundles.
type Catalog struct {
	repo   MessageRepository
	graph  LocaleGraph
	cache  *cache.Layer
	logger interfaces.Logger
	now    func() time.Time

	version atomic.Uint64
	writes  cache.Generation
}

// NewCatalog constructs a Catalog.
func NewCatalog(repo MessageRepository, graph LocaleGraph, opts ...Option) *Catalog {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	if graph == nil {
		panic(ErrGraphRequired)
	}
	c := &Catalog{
		repo:   repo,
		graph:  graph,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.version.Store(1)
	return c
}

// Version returns the current catalog version.
func (c *Catalog) Version() uint64 {
	return c.version.Load()
}

// DefineMessage creates or redefines a message. Redefining with identical
// values is a no-op.
func (c *Catalog) DefineMessage(ctx context.Context, input MessageInput) (*Message, error) {
	namespace, key, err := SplitKey(input.Key)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.DefaultValue) == "" {
		return nil, &domain.ValidationError{Field: "default_value", Message: "default value is required"}
	}
	id := identity.MessageUUID(namespace, key)

	existing, err := c.repo.GetMessage(ctx, id)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && existing.DefaultValue == input.DefaultValue && existing.Description == input.Description {
		return existing, nil
	}

	now := c.now().UTC()
	record := &Message{
		ID:           id,
		Namespace:    namespace,
		Key:          key,
		DefaultValue: input.DefaultValue,
		Description:  strings.TrimSpace(input.Description),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing != nil {
		record.CreatedAt = existing.CreatedAt
	}
	saved, err := c.repo.SaveMessage(ctx, record)
	if err != nil {
		return nil, err
	}
	c.definitionChanged(ctx, saved.FullKey())
	c.logger.Debug("messages.define", "key", saved.FullKey(), "version", c.Version())
	return saved, nil
}

// GetMessage returns the message stored under key.
func (c *Catalog) GetMessage(ctx context.Context, key string) (*Message, error) {
	namespace, name, err := SplitKey(key)
	if err != nil {
		return nil, err
	}
	record, err := c.repo.GetMessage(ctx, identity.MessageUUID(namespace, name))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.NotFoundError{Resource: "message", Key: JoinKey(namespace, name)}
		}
		return nil, err
	}
	return record, nil
}

// ListMessages returns every message, or those of one namespace.
func (c *Catalog) ListMessages(ctx context.Context, namespace string) ([]*Message, error) {
	records, err := c.repo.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return records, nil
	}
	return slices.DeleteFunc(records, func(m *Message) bool { return m.Namespace != namespace }), nil
}

// DeleteMessage removes a message with all of its translations.
func (c *Catalog) DeleteMessage(ctx context.Context, key string) error {
	record, err := c.GetMessage(ctx, key)
	if err != nil {
		return err
	}
	if err := c.repo.DeleteMessage(ctx, record.ID); err != nil {
		return err
	}
	c.definitionChanged(ctx, record.FullKey())
	c.logger.Debug("messages.delete", "key", record.FullKey(), "version", c.Version())
	return nil
}

// UpsertTranslation writes the value of a message in one locale. The status
// defaults to draft; only approved values are ever resolved.
func (c *Catalog) UpsertTranslation(ctx context.Context, input TranslationInput) (*Translation, error) {
	message, err := c.GetMessage(ctx, input.Key)
	if err != nil {
		return nil, err
	}
	code, err := locales.NormalizeCode(input.Locale)
	if err != nil {
		return nil, err
	}
	if _, err := c.graph.FallbackCodes(ctx, code); err != nil {
		return nil, err
	}
	status := domain.MessageStatusDraft
	if input.Status != nil {
		parsed, ok := domain.ParseMessageStatus(string(*input.Status))
		if !ok {
			return nil, &domain.ValidationError{Field: "status", Message: "unknown message status " + string(*input.Status)}
		}
		status = parsed
	}

	id := identity.MessageTranslationUUID(message.ID, code)
	now := c.now().UTC()
	record := &Translation{
		ID:        id,
		MessageID: message.ID,
		Locale:    code,
		Value:     input.Value,
		Status:    status,
		UpdatedBy: strings.TrimSpace(input.Actor),
		CreatedAt: now,
		UpdatedAt: now,
	}
	existing, err := c.repo.GetTranslation(ctx, id)
	switch {
	case err == nil:
		if existing.Value == record.Value && existing.Status == record.Status {
			return existing, nil
		}
		record.CreatedAt = existing.CreatedAt
	case !domain.IsNotFound(err):
		return nil, err
	}

	saved, err := c.repo.SaveTranslation(ctx, record)
	if err != nil {
		return nil, err
	}
	c.translationChanged(ctx, message.FullKey(), code)
	c.logger.Debug("messages.translation.upsert", "key", message.FullKey(), "locale", code, "status", string(status))
	return saved, nil
}

// ListTranslations returns every translation of a message.
func (c *Catalog) ListTranslations(ctx context.Context, key string) ([]*Translation, error) {
	message, err := c.GetMessage(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.repo.ListTranslationsByMessage(ctx, message.ID)
}

// HandleLocaleChange drops cached message data after any locale write since
// every resolution depends on fallback chains.
func (c *Catalog) HandleLocaleChange(ctx context.Context, _ locales.Change) {
	c.writes.Advance()
	c.cache.DeletePrefix(ctx, cache.MessageResolvePrefix(""))
	c.cache.DeletePrefix(ctx, cache.BundlePrefix())
}

func (c *Catalog) definitionChanged(ctx context.Context, fullKey string) {
	c.writes.Advance()
	c.version.Add(1)
	c.cache.DeletePrefix(ctx, cache.MessageResolvePrefix(fullKey))
	// bundles of older versions are unreachable; drop them to free space
	c.cache.DeletePrefix(ctx, cache.BundlePrefix())
}

// translationChanged drops the message's own resolutions and the bundles of
// every locale whose chain passes through the written locale.
func (c *Catalog) translationChanged(ctx context.Context, fullKey, locale string) {
	c.writes.Advance()
	c.cache.DeletePrefix(ctx, cache.MessageResolvePrefix(fullKey))
	if !c.cache.Enabled() {
		return
	}
	affected, err := c.dependentLocales(ctx, locale)
	if err != nil {
		c.logger.Warn("messages.invalidate.fallback", "locale", locale, "error", err)
		c.cache.DeletePrefix(ctx, cache.BundlePrefix())
		return
	}
	version := c.Version()
	for _, code := range affected {
		c.cache.Delete(ctx, cache.BundleKey(version, code))
	}
}

func (c *Catalog) dependentLocales(ctx context.Context, locale string) ([]string, error) {
	all, err := c.graph.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for _, loc := range all {
		chain, err := c.graph.FallbackCodes(ctx, loc.Code)
		if err != nil {
			return nil, err
		}
		if slices.Contains(chain, locale) {
			out = append(out, loc.Code)
		}
	}
	return out, nil
}

func (c *Catalog) writeMark() uint64 {
	return c.writes.Mark()
}

// setIfUnchanged caches value unless a write happened after mark was taken.
func (c *Catalog) setIfUnchanged(ctx context.Context, mark uint64, key string, value any, ttl time.Duration) {
	c.cache.SetGuarded(ctx, &c.writes, mark, key, value, ttl)
}

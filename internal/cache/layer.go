package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// Layer guards a CacheProvider for the resolvers. Provider failures never
// reach callers: reads degrade to misses and failed invalidations are kept
// and retried. While an invalidation is outstanding the layer bypasses the
// provider entirely so it can never serve a value that should have been
// dropped.
//
// A nil *Layer is valid and behaves as a disabled cache.
type Layer struct {
	provider   interfaces.CacheProvider
	logger     interfaces.Logger
	defaultTTL time.Duration

	mu      sync.Mutex
	pending map[string]invalidation
}

type invalidationKind int

const (
	invalidateKey invalidationKind = iota
	invalidatePrefix
	invalidateAll
)

type invalidation struct {
	kind  invalidationKind
	value string
}

// LayerOption customises a Layer.
type LayerOption func(*Layer)

// WithLogger sets the logger used to report provider failures.
func WithLogger(logger interfaces.Logger) LayerOption {
	return func(l *Layer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithDefaultTTL applies to Set calls that pass a zero TTL.
func WithDefaultTTL(ttl time.Duration) LayerOption {
	return func(l *Layer) {
		if ttl >= 0 {
			l.defaultTTL = ttl
		}
	}
}

// NewLayer wraps provider. A nil provider yields a nil, disabled layer.
func NewLayer(provider interfaces.CacheProvider, opts ...LayerOption) *Layer {
	if provider == nil {
		return nil
	}
	l := &Layer{
		provider:   provider,
		logger:     logging.NoOp(),
		defaultTTL: 5 * time.Minute,
		pending:    map[string]invalidation{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Enabled reports whether the layer is backed by a provider.
func (l *Layer) Enabled() bool {
	return l != nil && l.provider != nil
}

// Get returns the cached value. Any provider error counts as a miss.
func (l *Layer) Get(ctx context.Context, key string) (any, bool) {
	if !l.Enabled() || !l.settle(ctx) {
		return nil, false
	}
	value, err := l.provider.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			l.logger.Warn("cache.get.failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

// Set stores value, skipping the write while invalidations are outstanding.
func (l *Layer) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !l.Enabled() || ctx.Err() != nil || !l.settle(ctx) {
		return
	}
	if ttl <= 0 {
		ttl = l.defaultTTL
	}
	if err := l.provider.Set(ctx, key, value, ttl); err != nil {
		l.logger.Warn("cache.set.failed", "key", key, "error", err)
	}
}

// Delete drops one key.
func (l *Layer) Delete(ctx context.Context, key string) {
	l.invalidate(ctx, invalidation{kind: invalidateKey, value: key})
}

// DeletePrefix drops every key starting with prefix.
func (l *Layer) DeletePrefix(ctx context.Context, prefix string) {
	l.invalidate(ctx, invalidation{kind: invalidatePrefix, value: prefix})
}

// Clear drops everything the provider holds.
func (l *Layer) Clear(ctx context.Context) {
	l.invalidate(ctx, invalidation{kind: invalidateAll})
}

// Degraded reports whether invalidations are waiting to be retried.
func (l *Layer) Degraded() bool {
	if !l.Enabled() {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending) > 0
}

func (l *Layer) invalidate(ctx context.Context, inv invalidation) {
	if !l.Enabled() {
		return
	}
	if err := l.apply(context.WithoutCancel(ctx), inv); err != nil {
		l.logger.Warn("cache.invalidate.failed", "target", inv.value, "error", err)
		l.mu.Lock()
		l.pending[inv.id()] = inv
		l.mu.Unlock()
	}
}

// settle retries outstanding invalidations and reports whether the provider
// may be used.
func (l *Layer) settle(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return true
	}
	for id, inv := range l.pending {
		if err := l.apply(ctx, inv); err != nil {
			l.logger.Debug("cache.invalidate.retry_failed", "target", inv.value, "error", err)
			continue
		}
		delete(l.pending, id)
	}
	return len(l.pending) == 0
}

func (l *Layer) apply(ctx context.Context, inv invalidation) error {
	switch inv.kind {
	case invalidateKey:
		return l.provider.Delete(ctx, inv.value)
	case invalidatePrefix:
		return l.provider.DeletePrefix(ctx, inv.value)
	default:
		return l.provider.Clear(ctx)
	}
}

func (inv invalidation) id() string {
	switch inv.kind {
	case invalidateKey:
		return "key|" + inv.value
	case invalidatePrefix:
		return "prefix|" + inv.value
	default:
		return "all"
	}
}

// Fetch reads key and converts the cached value to T. Values stored by a
// serialising provider are decoded from JSON; anything that does not fit T
// is treated as a miss.
func Fetch[T any](ctx context.Context, l *Layer, key string) (T, bool) {
	var zero T
	raw, ok := l.Get(ctx, key)
	if !ok {
		return zero, false
	}
	switch value := raw.(type) {
	case T:
		return value, true
	case []byte:
		var out T
		if err := json.Unmarshal(value, &out); err != nil {
			l.logger.Warn("cache.decode.failed", "key", key, "error", err)
			return zero, false
		}
		return out, true
	default:
		return zero, false
	}
}

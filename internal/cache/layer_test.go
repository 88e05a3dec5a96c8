package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

type flakyProvider struct {
	mu      sync.Mutex
	inner   *MemoryProvider
	failGet bool
	failDel bool
	sets    int
}

func newFlakyProvider() *flakyProvider {
	return &flakyProvider{inner: NewMemoryProvider(MemoryConfig{})}
}

var errUnavailable = errors.New("provider unavailable")

func (f *flakyProvider) Get(ctx context.Context, key string) (any, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, errUnavailable
	}
	return f.inner.Get(ctx, key)
}

func (f *flakyProvider) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	f.sets++
	f.mu.Unlock()
	return f.inner.Set(ctx, key, value, ttl)
}

func (f *flakyProvider) Delete(ctx context.Context, key string) error {
	if f.deleteFails() {
		return errUnavailable
	}
	return f.inner.Delete(ctx, key)
}

func (f *flakyProvider) DeletePrefix(ctx context.Context, prefix string) error {
	if f.deleteFails() {
		return errUnavailable
	}
	return f.inner.DeletePrefix(ctx, prefix)
}

func (f *flakyProvider) Clear(ctx context.Context) error {
	if f.deleteFails() {
		return errUnavailable
	}
	return f.inner.Clear(ctx)
}

func (f *flakyProvider) deleteFails() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failDel
}

func (f *flakyProvider) setFailures(get, del bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = get
	f.failDel = del
}

var _ interfaces.CacheProvider = (*flakyProvider)(nil)

func TestLayerTreatsProviderErrorsAsMiss(t *testing.T) {
	ctx := context.Background()
	provider := newFlakyProvider()
	layer := NewLayer(provider)

	layer.Set(ctx, "k", "v", 0)
	provider.setFailures(true, false)

	if _, ok := layer.Get(ctx, "k"); ok {
		t.Fatal("expected miss while provider fails")
	}

	provider.setFailures(false, false)
	if got, ok := layer.Get(ctx, "k"); !ok || got != "v" {
		t.Fatalf("expected hit after recovery, got %v %v", got, ok)
	}
}

func TestLayerBypassesCacheUntilInvalidationSucceeds(t *testing.T) {
	ctx := context.Background()
	provider := newFlakyProvider()
	layer := NewLayer(provider)

	layer.Set(ctx, "k", "stale", 0)
	provider.setFailures(false, true)

	layer.Delete(ctx, "k")
	if !layer.Degraded() {
		t.Fatal("expected layer to be degraded after failed invalidation")
	}
	if _, ok := layer.Get(ctx, "k"); ok {
		t.Fatal("expected stale value to be bypassed while invalidation is pending")
	}

	setsBefore := provider.sets
	layer.Set(ctx, "other", "value", 0)
	if provider.sets != setsBefore {
		t.Fatal("expected writes to be skipped while degraded")
	}

	provider.setFailures(false, false)
	if _, ok := layer.Get(ctx, "k"); ok {
		t.Fatal("expected retried invalidation to remove the stale value")
	}
	if layer.Degraded() {
		t.Fatal("expected layer to recover once invalidation succeeds")
	}
}

func TestLayerNilIsDisabled(t *testing.T) {
	var layer *Layer
	ctx := context.Background()

	layer.Set(ctx, "k", "v", 0)
	layer.DeletePrefix(ctx, "k")
	if _, ok := layer.Get(ctx, "k"); ok {
		t.Fatal("expected nil layer to miss")
	}
	if NewLayer(nil).Enabled() {
		t.Fatal("expected nil provider to produce a disabled layer")
	}
}

func TestLayerSkipsSetOnCancelledContext(t *testing.T) {
	provider := newFlakyProvider()
	layer := NewLayer(provider)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	layer.Set(ctx, "k", "v", 0)
	if provider.sets != 0 {
		t.Fatalf("expected no writes on cancelled context, got %d", provider.sets)
	}
}

func TestFetchDecodesSerialisedValues(t *testing.T) {
	ctx := context.Background()
	provider := newFlakyProvider()
	layer := NewLayer(provider)

	payload, err := json.Marshal(map[string]string{"greeting": "Hola"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	layer.Set(ctx, "bundle", payload, 0)

	bundle, ok := Fetch[map[string]string](ctx, layer, "bundle")
	if !ok {
		t.Fatal("expected decoded bundle")
	}
	if bundle["greeting"] != "Hola" {
		t.Fatalf("unexpected bundle %v", bundle)
	}

	layer.Set(ctx, "direct", []string{"en", "es"}, 0)
	chain, ok := Fetch[[]string](ctx, layer, "direct")
	if !ok || len(chain) != 2 {
		t.Fatalf("expected typed value, got %v %v", chain, ok)
	}

	if _, ok := Fetch[int](ctx, layer, "direct"); ok {
		t.Fatal("expected mismatched type to miss")
	}
}

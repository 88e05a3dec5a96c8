package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

func TestRedisProviderRoundTrip(t *testing.T) {
	url := os.Getenv("LOCALIZE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LOCALIZE_TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := ConnectRedis(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	provider := NewRedisProvider(client, WithNamespace("localize-test-"+time.Now().Format("150405.000000")))
	defer provider.Close()
	defer provider.Clear(context.Background())

	layer := NewLayer(provider)
	layer.Set(ctx, ChainKey("es"), []string{"es", "en"}, time.Minute)

	chain, ok := Fetch[[]string](ctx, layer, ChainKey("es"))
	if !ok || len(chain) != 2 || chain[1] != "en" {
		t.Fatalf("unexpected chain %v %v", chain, ok)
	}

	if err := provider.DeletePrefix(ctx, ChainPrefix()); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	if _, err := provider.Get(ctx, ChainKey("es")); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Fatalf("expected miss after prefix delete, got %v", err)
	}
}

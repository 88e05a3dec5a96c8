package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

const defaultScanBatch = 500

// RedisProvider shares cached values across processes. Values are stored as
// JSON and come back from Get as []byte; decode them with Fetch.
type RedisProvider struct {
	client    redis.UniversalClient
	namespace string
	scanBatch int64
}

var _ interfaces.CacheProvider = (*RedisProvider)(nil)

// RedisOption customises a RedisProvider.
type RedisOption func(*RedisProvider)

// WithNamespace prefixes every key so several deployments can share one database.
func WithNamespace(namespace string) RedisOption {
	return func(p *RedisProvider) {
		p.namespace = strings.TrimSpace(namespace)
	}
}

// WithScanBatch sets the SCAN count hint used by prefix deletes.
func WithScanBatch(n int64) RedisOption {
	return func(p *RedisProvider) {
		if n > 0 {
			p.scanBatch = n
		}
	}
}

// NewRedisProvider wraps an existing client.
func NewRedisProvider(client redis.UniversalClient, opts ...RedisOption) *RedisProvider {
	p := &RedisProvider{
		client:    client,
		namespace: "localize",
		scanBatch: defaultScanBatch,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// ConnectRedis parses a redis:// URL and pings the server before returning a client.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis not ready: %w", err)
	}
	return client, nil
}

func (p *RedisProvider) key(key string) string {
	if p.namespace == "" {
		return key
	}
	return p.namespace + Separator + key
}

func (p *RedisProvider) Get(ctx context.Context, key string) (any, error) {
	raw, err := p.client.Get(ctx, p.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (p *RedisProvider) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return p.client.Set(ctx, p.key(key), payload, ttl).Err()
}

func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	return p.client.Del(ctx, p.key(key)).Err()
}

// DeletePrefix walks the keyspace with SCAN so large databases are never blocked.
func (p *RedisProvider) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := p.key(prefix) + "*"
	var cursor uint64
	for {
		batch, next, err := p.client.Scan(ctx, cursor, pattern, p.scanBatch).Result()
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			if err := p.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Clear removes every key under the provider namespace.
func (p *RedisProvider) Clear(ctx context.Context) error {
	return p.DeletePrefix(ctx, "")
}

// Close releases the underlying client.
func (p *RedisProvider) Close() error {
	return p.client.Close()
}

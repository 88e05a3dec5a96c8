package cache

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

// MemoryConfig sizes the in-process sturdyc client. MaxTTL bounds every
// entry; shorter per-key TTLs are tracked on the entry itself.
type MemoryConfig struct {
	Capacity           int
	Shards             int
	MaxTTL             time.Duration
	EvictionPercentage int
}

// DefaultMemoryConfig returns sizing suitable for a single process.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		Shards:             10,
		MaxTTL:             time.Hour,
		EvictionPercentage: 10,
	}
}

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// MemoryProvider keeps values in process memory. Values are stored as given,
// so callers must not mutate what they cache.
type MemoryProvider struct {
	client *sturdyc.Client[memoryEntry]
	now    func() time.Time
}

var _ interfaces.CacheProvider = (*MemoryProvider)(nil)

// NewMemoryProvider builds a provider, filling zero fields from DefaultMemoryConfig.
func NewMemoryProvider(cfg MemoryConfig) *MemoryProvider {
	defaults := DefaultMemoryConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaults.Capacity
	}
	if cfg.Shards <= 0 {
		cfg.Shards = defaults.Shards
	}
	if cfg.MaxTTL <= 0 {
		cfg.MaxTTL = defaults.MaxTTL
	}
	if cfg.EvictionPercentage <= 0 || cfg.EvictionPercentage > 100 {
		cfg.EvictionPercentage = defaults.EvictionPercentage
	}
	return &MemoryProvider{
		client: sturdyc.New[memoryEntry](cfg.Capacity, cfg.Shards, cfg.MaxTTL, cfg.EvictionPercentage),
		now:    time.Now,
	}
}

func (p *MemoryProvider) Get(_ context.Context, key string) (any, error) {
	entry, ok := p.client.Get(key)
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !p.now().Before(entry.expiresAt) {
		p.client.Delete(key)
		return nil, interfaces.ErrCacheMiss
	}
	return entry.value, nil
}

func (p *MemoryProvider) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = p.now().Add(ttl)
	}
	p.client.Set(key, entry)
	return nil
}

func (p *MemoryProvider) Delete(_ context.Context, key string) error {
	p.client.Delete(key)
	return nil
}

func (p *MemoryProvider) DeletePrefix(_ context.Context, prefix string) error {
	for _, key := range p.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			p.client.Delete(key)
		}
	}
	return nil
}

func (p *MemoryProvider) Clear(ctx context.Context) error {
	return p.DeletePrefix(ctx, "")
}

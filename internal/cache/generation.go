package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Generation counts invalidations of a family of keys. Readers take a Mark
// before loading from storage and store the result with SetGuarded; writers
// call Advance before deleting keys. A value loaded before a write is then
// never left in the cache after that write's invalidation.
//
// The zero value is ready to use.
type Generation struct {
	n atomic.Uint64
}

// Mark returns the current generation.
func (g *Generation) Mark() uint64 {
	return g.n.Load()
}

// Advance starts a new generation. Call it after the write commits and
// before the matching invalidation.
func (g *Generation) Advance() {
	g.n.Add(1)
}

// Unchanged reports whether no Advance happened since mark was taken.
func (g *Generation) Unchanged(mark uint64) bool {
	return g.n.Load() == mark
}

// SetGuarded stores value only while gen still equals mark. When an
// invalidation races with the write the key is dropped again, so the entry
// either predates the invalidation's delete or is removed by this call.
func (l *Layer) SetGuarded(ctx context.Context, gen *Generation, mark uint64, key string, value any, ttl time.Duration) bool {
	if !l.Enabled() || !gen.Unchanged(mark) {
		return false
	}
	l.Set(ctx, key, value, ttl)
	if !gen.Unchanged(mark) {
		l.Delete(ctx, key)
		return false
	}
	return true
}

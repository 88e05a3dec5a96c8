package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

// NoopProvider never stores anything; every Get is a miss.
type NoopProvider struct{}

var _ interfaces.CacheProvider = NoopProvider{}

func (NoopProvider) Get(context.Context, string) (any, error) {
	return nil, interfaces.ErrCacheMiss
}

func (NoopProvider) Set(context.Context, string, any, time.Duration) error { return nil }
func (NoopProvider) Delete(context.Context, string) error                  { return nil }
func (NoopProvider) DeletePrefix(context.Context, string) error            { return nil }
func (NoopProvider) Clear(context.Context) error                           { return nil }

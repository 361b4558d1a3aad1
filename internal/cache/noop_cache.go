package cache

import (
	"context"
	"time"
)

// noopCache is used when no redis is configured; every lookup misses.
type noopCache struct{}

func NewNoopCache() CacheService {
	return noopCache{}
}

func (noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (noopCache) Get(context.Context, string, interface{}) error                { return ErrCacheMiss }
func (noopCache) Delete(context.Context, string) error                          { return nil }
func (noopCache) DeletePattern(context.Context, string) error                   { return nil }

package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs --no-cache and cache.disabled, and
// clients built without a cache: every Get is a miss, so each catalog request
// goes to the API and each export is rendered afresh.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() NullCache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}

package cache

import (
	"context"
	"time"
)

// NullCache backs `--no-cache` and `cache.backend = "none"`: every read
// misses and writes are dropped, so the pipeline always renders fresh.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                              { return nil }

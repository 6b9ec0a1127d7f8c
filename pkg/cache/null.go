package cache

import (
	"context"
	"time"
)

// nullCache misses on every lookup and drops every write. It backs
// --no-cache and the "none" backend. Operations still fail once ctx is done
// so that callers see cancellation the same way as with a real backend.
type nullCache struct{}

// NewNullCache returns a Cache that stores nothing.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

func (nullCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return ctx.Err()
}

func (nullCache) Delete(ctx context.Context, _ string) error { return ctx.Err() }

func (nullCache) Close() error { return nil }

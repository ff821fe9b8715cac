package cache

import "context"

// Cache is a best-effort byte cache with a fixed TTL. Implementations must
// never let a backend failure surface to the caller: a failed read is a
// miss, a failed write is dropped. This keeps the analysis path free of
// any "is the cache up" branching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Noop is the null-object Cache used when no backend is configured.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (Noop) Set(ctx context.Context, key string, value []byte) {}

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TTL is the single time-box applied to every entry. Callers never pick
// a per-call TTL; anything whose staleness could cause a double-spend
// (redemption validation) bypasses the cache entirely.
const TTL = 5 * time.Minute

// Store is a time-boxed byte cache keyed by operation+identifier.
type Store interface {
	// Get returns ErrCacheMiss both when the key is absent and when the
	// entry has expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, key string) error
	InvalidateAll(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// Key builds the canonical "<op>:<id>" cache key.
func Key(op, id string) string {
	return fmt.Sprintf("%s:%s", op, id)
}

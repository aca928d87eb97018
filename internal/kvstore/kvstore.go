// Package kvstore provides the L2 key-value backing store for
// internal/cache, best-effort and optional: callers must keep working
// correctly when no store is reachable.
package kvstore

import (
	"context"
	"time"
)

// Store is the minimal key-value contract internal/cache's L2 tier needs.
type Store interface {
	// Get returns the stored value and true on a hit, false on a miss.
	// Any transport error is also reported as a miss (ok=false) with err
	// set, so callers can log-and-continue rather than fail the request.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// SetEX stores value under key with an expiration.
	SetEX(ctx context.Context, key string, value string, ttl time.Duration) error
	// Delete removes key, a no-op if it doesn't exist.
	Delete(ctx context.Context, key string) error
	// Keys returns all keys matching a glob-style pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Available reports whether the store is currently reachable, checked
	// once at construction time via a connectivity probe.
	Available() bool
}

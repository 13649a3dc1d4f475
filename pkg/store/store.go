package store

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable reports that the shared counter store could not be
// reached. Callers treat it as a signal to switch to their local fallback,
// not as a hard failure.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// ErrNotFound reports that a key does not exist or has expired.
var ErrNotFound = errors.New("key not found")

// Store is a shared keyspace of TTL-bounded int64 counters. Implementations
// must make IncrMax atomic: it is the single serialization point that keeps
// nonce sequences strictly increasing across processes.
type Store interface {
	// IncrMax advances the counter at key to max(stored+1, candidate) in one
	// atomic step and returns the new value. A missing or expired key counts
	// as zero. The key TTL is refreshed on every call.
	IncrMax(ctx context.Context, key string, candidate int64, ttl time.Duration) (int64, error)

	// Get reads the current value without modifying it. Returns ErrNotFound
	// for a missing or expired key.
	Get(ctx context.Context, key string) (int64, error)

	// Set overwrites the value at key, last write wins. Only advisory values
	// like the cached clock offset go through Set.
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error

	Del(ctx context.Context, key string) error
}

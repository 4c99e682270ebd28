package db

import (
	"context"
	"time"
)

// Store is the key-value database facade used by the history repository.
type Store interface {
	Pinger
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListStore provides list operations over string keys.
type ListStore interface {
	// RPush appends values to the list at key and, when ttl > 0, refreshes its expiry
	// in the same round-trip.
	RPush(ctx context.Context, key string, ttl time.Duration, values ...[]byte) error
	// LRange returns list elements between start and stop, inclusive. Negative indexes
	// count from the tail.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

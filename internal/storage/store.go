// Package storage provides the cache used to remember suggestion responses.
//
// Nothing about a splitting session is stored here; the cache only holds
// responses from the text-suggestion backend keyed by normalized input.
package storage

import (
	"context"
	"time"
)

// SuggestionCache defines the cache operations used by the suggester.
// This abstraction allows swapping backends (SQLite, Redis) without changing
// the suggestion code.
type SuggestionCache interface {
	// Get returns the cached entries for key. The boolean is false on a miss
	// or when the entry has expired.
	Get(ctx context.Context, key string) ([]string, bool, error)

	// Put stores entries under key for ttl.
	Put(ctx context.Context, key string, entries []string, ttl time.Duration) error

	// Close releases any resources held by the cache.
	Close() error
}

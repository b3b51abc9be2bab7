package cache

import (
	"context"
	"time"

	"github.com/IvanBrykalov/evictcache/notify"
)

// Cache is a capacity-bounded in-memory key/value cache with a pluggable
// eviction policy, lazy TTL expiration, hit/miss accounting and event
// notifications. All methods are safe for concurrent use.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a presence flag. A hit is reported to
	// the policy (e.g. promoted for LRU). An expired entry is purged and
	// reported as a miss.
	Get(k K) (V, bool)

	// Set inserts or overwrites k→v using the cache's DefaultTTL (if any).
	// Inserting a new key into a full cache evicts the policy's victim first;
	// overwriting never evicts.
	Set(k K, v V)

	// SetWithTTL is Set with a per-key TTL (relative duration).
	// A non-positive ttl means the entry never expires.
	SetWithTTL(k K, v V, ttl time.Duration)

	// Add inserts k→v only if no live entry exists for k.
	// Returns false if the key is already present (no update is performed).
	Add(k K, v V) bool

	// Remove deletes k if present and returns true on success.
	// Caller-initiated removals publish no event.
	Remove(k K) bool

	// Stats returns a snapshot of the hit/miss counters.
	Stats() Stats

	// Len returns the number of stored entries, including expired entries
	// that have not been looked up yet.
	Len() int

	// Notifier returns the bus events are published on.
	Notifier() *notify.Bus[Event[K]]

	// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
	// Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Close marks the cache closed: later writes are ignored and reads miss.
	// Such misses are counted in Stats and published with Reason "closed".
	// Current implementation is a soft close and returns nil.
	Close() error
}

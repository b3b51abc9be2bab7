// Package policy defines the eviction strategy contract used by the cache.
//
// A Policy tracks keys only. It never sees values and never inspects the
// cache store; the cache is responsible for mirroring every store insertion
// and removal into the policy so that both always hold the same key set.
package policy

// Policy decides which key is reclaimed next when the cache is full.
//
// Concurrency: implementations are not safe for concurrent use. The cache
// calls every method under its own lock.
type Policy[K comparable] interface {
	// Access records a successful read of k. Unknown keys are ignored.
	Access(k K)
	// Add starts tracking k as the newest key.
	Add(k K)
	// CanEvict reports whether the tracked key count has reached capacity.
	CanEvict() bool
	// Victim returns the key the policy would reclaim next, or false if
	// nothing is tracked. It does not remove the key.
	Victim() (K, bool)
	// Remove stops tracking k wherever it sits in the order.
	Remove(k K)
	// Len returns the number of tracked keys.
	Len() int
	// Cap returns the capacity fixed at construction time.
	Cap() int
}

// Name identifies a built-in policy in configuration.
type Name string

const (
	LRU  Name = "lru"
	FIFO Name = "fifo"
	TwoQ Name = "2q"
)

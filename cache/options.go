package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/notify"
	"github.com/IvanBrykalov/evictcache/policy"
)

// EvictReason explains why the cache dropped an entry on its own.
type EvictReason int

const (
	// EvictCapacity: removed by the policy to make room for a new key.
	EvictCapacity EvictReason = iota
	// EvictTTL: expired entry discovered lazily on access.
	EvictTTL
)

// String returns the reason as carried in event payloads.
func (r EvictReason) String() string {
	if r == EvictTTL {
		return ReasonTTLExpired
	}
	return ReasonCapacity
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache. Zero values are safe; defaults are applied
// in New():
//   - Capacity == 0 => Policy.Cap()
//   - nil Policy    => LRU with Capacity
//   - nil Notifier  => a private bus (see Cache.Notifier)
//   - nil Metrics   => NoopMetrics
//   - nil Logger    => zap.NewNop()
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of stored entries. It must agree with
	// the capacity the Policy was built with.
	Capacity int

	// Policy decides which key is evicted when the cache is full.
	Policy policy.Policy[K]

	// Notifier receives cache events. Sharing one bus between several
	// caches is allowed; events carry no cache identity.
	Notifier *notify.Bus[Event[K]]

	// DefaultTTL applies to Set/Add (0 = never expires).
	DefaultTTL time.Duration

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	Metrics Metrics
	Logger  *zap.Logger

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}

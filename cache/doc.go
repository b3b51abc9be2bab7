// Package cache provides a generic, capacity-bounded in-memory cache with a
// pluggable eviction policy, per-entry TTL, hit/miss statistics and
// synchronous event notifications.
//
// Design
//
//   - Storage: a map[K]*entry guarded by a single mutex per instance. Every
//     mutating call runs to completion under that lock, so store, policy
//     and stats change together.
//
//   - Policies: the policy package defines a key-only contract
//     (Access/Add/CanEvict/Victim/Remove). LRU is the default; FIFO and 2Q
//     are provided. The cache mirrors every store removal into the policy.
//
//   - TTL: entries carry an absolute deadline (UnixNano, 0 = never).
//     Expiration is lazy: an expired entry stays resident (and counts in
//     Len) until a Get or Add touches it, or the policy evicts it.
//
//   - Events: every operation collects its events while holding the lock and
//     publishes them after releasing it, on the calling goroutine and in
//     order. Handlers therefore observe post-mutation state and may call back
//     into the cache. Handler failures are contained by the notify bus.
//
//     cache:hit          successful, non-expired Get
//     cache:miss         Get on an absent or expired key (Reason "expired"),
//                        or any Get after Close (Reason "closed")
//     cache:eviction     a new key forced a capacity eviction
//     cache:invalidated  an expired entry was discovered and purged
//
//   - GetOrLoad: coalesces concurrent loads for the same key using
//     golang.org/x/sync/singleflight. If Loader is nil, returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; plug metrics/prom to export them.
//
// Basic usage
//
//	c := cache.New[string, int](cache.Options[string, int]{Capacity: 3})
//	c.Notifier().Subscribe(cache.EventEviction, func(e cache.Event[string]) error {
//	    log.Printf("evicted %s", e.EvictedKey)
//	    return nil
//	})
//	c.Set("a", 1)
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//
// With TTL
//
//	c.SetWithTTL("tmp", 5, 200*time.Millisecond)
//	time.Sleep(300 * time.Millisecond)
//	_, ok := c.Get("tmp") // ok == false, cache:invalidated + cache:miss fired
//
// Using FIFO
//
//	c := cache.New[string, int](cache.Options[string, int]{
//	    Policy: fifo.New[string](1024),
//	})
package cache

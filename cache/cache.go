package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/singleflight"

	"github.com/IvanBrykalov/evictcache/notify"
	"github.com/IvanBrykalov/evictcache/policy/lru"
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
var ErrNoLoader = errors.New("cache: no Loader provided")

// cache is an in-memory KV store with a pluggable eviction policy.
//
// Locking: mu guards store, pol and stats. Events produced by an operation
// are collected under mu and published after it is released, so handlers
// may call back into the same cache.
type cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	store map[K]*entry[V]
	stats Stats

	opt    Options[K, V]
	bus    *notify.Bus[Event[K]]
	log    *zap.Logger
	closed atomic.Bool

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	// flights maps a key to the group key of its in-flight load; ids come
	// from nextFlight and are never reused. Both guarded by mu.
	sf         singleflight.Group
	flights    map[K]string
	nextFlight uint64
}

// New constructs a cache with the provided Options.
// It panics if no positive capacity can be determined or if Capacity
// disagrees with the policy's own capacity.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Policy == nil {
		if opt.Capacity <= 0 {
			panic("cache: Capacity must be > 0")
		}
		opt.Policy = lru.New[K](opt.Capacity)
	}
	if opt.Capacity == 0 {
		opt.Capacity = opt.Policy.Cap()
	}
	if opt.Capacity != opt.Policy.Cap() {
		panic(fmt.Sprintf("cache: Capacity %d does not match policy capacity %d",
			opt.Capacity, opt.Policy.Cap()))
	}
	if opt.Policy.Len() != 0 {
		panic("cache: policy must be empty")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Notifier == nil {
		opt.Notifier = notify.New[Event[K]](notify.Options{Logger: opt.Logger})
	}

	return &cache[K, V]{
		store:   make(map[K]*entry[V], opt.Capacity),
		flights: make(map[K]string),
		opt:     opt,
		bus:   opt.Notifier,
		log:   opt.Logger,
	}
}

// ---- Cache[K,V] implementation ----

// Get returns the value for k and a presence flag.
func (c *cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	var (
		v      V
		ok     bool
		events []Event[K]
	)
	if c.closed.Load() {
		events = c.missLocked(k, ReasonClosed, nil)
	} else {
		v, ok, events = c.getLocked(k)
	}
	c.mu.Unlock()

	c.publish(events)
	return v, ok
}

// Set inserts or overwrites k→v, using DefaultTTL if set.
func (c *cache[K, V]) Set(k K, v V) {
	c.SetWithTTL(k, v, c.opt.DefaultTTL)
}

// SetWithTTL inserts or overwrites k→v with a per-key TTL.
func (c *cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	if c.closed.Load() {
		return
	}
	exp := c.deadline(ttl)

	c.mu.Lock()
	events := c.setLocked(k, v, exp, nil)
	c.mu.Unlock()

	c.publish(events)
}

// Add inserts k→v only if absent, using DefaultTTL if set. An expired entry
// under k counts as absent and is invalidated first.
func (c *cache[K, V]) Add(k K, v V) bool {
	if c.closed.Load() {
		return false
	}
	exp := c.deadline(c.opt.DefaultTTL)

	c.mu.Lock()
	var events []Event[K]
	if e, ok := c.store[k]; ok {
		if !e.expired(c.now()) {
			c.mu.Unlock()
			return false
		}
		events = c.invalidateLocked(k, events)
	}
	events = c.setLocked(k, v, exp, events)
	c.mu.Unlock()

	c.publish(events)
	return true
}

// Remove deletes k if present and returns true on success.
func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store[k]; !ok {
		return false
	}
	c.deleteLocked(k)
	c.opt.Metrics.Size(len(c.store))
	return true
}

// Stats returns a copy of the counters.
func (c *cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the number of stored entries.
func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

func (c *cache[K, V]) Notifier() *notify.Bus[Event[K]] { return c.bus }

// Close marks the cache as closed. Later writes are ignored; reads miss and
// are still counted.
func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight).
//
// The load runs with the ctx of the caller that started it. Cancelling ctx
// in a waiting caller unblocks only that caller.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	var zero V
	if c.opt.Loader == nil {
		return zero, ErrNoLoader
	}

	id := c.acquireFlight(k)
	ch := c.sf.DoChan(id, func() (any, error) {
		defer c.releaseFlight(k, id)
		// double-check after flight join; peek does not count as a lookup
		if v, ok := c.peek(k); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err != nil {
			return nil, err
		}
		c.Set(k, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// -------------------- internals (mu held) --------------------

func (c *cache[K, V]) getLocked(k K) (V, bool, []Event[K]) {
	var zero V

	e, ok := c.store[k]
	if !ok {
		return zero, false, c.missLocked(k, "", nil)
	}

	if e.expired(c.now()) {
		events := c.invalidateLocked(k, make([]Event[K], 0, 2))
		return zero, false, c.missLocked(k, ReasonExpired, events)
	}

	c.stats.Hits++
	c.opt.Policy.Access(k)
	c.opt.Metrics.Hit()
	return e.val, true, []Event[K]{{Name: EventHit, Key: k, Stats: c.stats}}
}

// missLocked counts a miss and records its event.
func (c *cache[K, V]) missLocked(k K, reason string, events []Event[K]) []Event[K] {
	c.stats.Misses++
	c.opt.Metrics.Miss()
	return append(events, Event[K]{Name: EventMiss, Key: k, Stats: c.stats, Reason: reason})
}

// setLocked stores k→v. An overwrite only drops the old policy tracking;
// a genuinely new key in a full cache evicts the policy's victim first.
func (c *cache[K, V]) setLocked(k K, v V, exp int64, events []Event[K]) []Event[K] {
	_, exists := c.store[k]
	if exists {
		c.opt.Policy.Remove(k)
	}

	if !exists && c.opt.Policy.CanEvict() {
		if victim, ok := c.opt.Policy.Victim(); ok {
			c.deleteLocked(victim)
			c.opt.Metrics.Evict(EvictCapacity)
			events = append(events, Event[K]{Name: EventEviction, EvictedKey: victim, Reason: ReasonCapacity})
		}
	}

	c.store[k] = &entry[V]{val: v, exp: exp}
	c.opt.Policy.Add(k)
	c.opt.Metrics.Size(len(c.store))
	return events
}

// invalidateLocked drops an expired entry and records the event.
func (c *cache[K, V]) invalidateLocked(k K, events []Event[K]) []Event[K] {
	c.deleteLocked(k)
	c.opt.Metrics.Evict(EvictTTL)
	c.opt.Metrics.Size(len(c.store))
	return append(events, Event[K]{Name: EventInvalidated, Key: k, Reason: ReasonTTLExpired})
}

// deleteLocked removes k from the store and mirrors it into the policy.
func (c *cache[K, V]) deleteLocked(k K) {
	delete(c.store, k)
	c.opt.Policy.Remove(k)
}

// -------------------- helpers --------------------

// peek returns a live value without touching stats, policy or events.
func (c *cache[K, V]) peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.store[k]; ok && !e.expired(c.now()) {
		return e.val, true
	}
	var zero V
	return zero, false
}

// publish delivers events in order. Must be called without mu held.
func (c *cache[K, V]) publish(events []Event[K]) {
	for _, ev := range events {
		if ce := c.log.Check(zapcore.DebugLevel, "cache event"); ce != nil {
			ce.Write(zap.String("event", ev.Name), zap.Any("key", ev.Key),
				zap.Any("evictedKey", ev.EvictedKey), zap.String("reason", ev.Reason))
		}
		if err := c.bus.Publish(ev.Name, ev); err != nil {
			c.log.Warn("publish cache event", zap.String("event", ev.Name), zap.Error(err))
		}
	}
}

func (c *cache[K, V]) now() int64 {
	if c.opt.Clock != nil {
		return c.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// deadline converts a relative TTL into an absolute UnixNano deadline.
// A non-positive ttl returns 0 (no expiration).
func (c *cache[K, V]) deadline(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return c.now() + int64(ttl)
}

// acquireFlight returns the group key of the load in flight for k,
// allocating a fresh one if there is none. Keys are matched with ==, so
// distinct pointers or differently typed interface values never share a load.
func (c *cache[K, V]) acquireFlight(k K) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.flights[k]; ok {
		return id
	}
	c.nextFlight++
	id := strconv.FormatUint(c.nextFlight, 10)
	c.flights[k] = id
	return id
}

// releaseFlight forgets id once its load has finished.
func (c *cache[K, V]) releaseFlight(k K, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.flights[k] == id {
		delete(c.flights, k)
	}
}

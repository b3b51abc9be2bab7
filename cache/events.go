package cache

// Event names published on the cache notifier.
const (
	EventHit         = "cache:hit"
	EventMiss        = "cache:miss"
	EventEviction    = "cache:eviction"
	EventInvalidated = "cache:invalidated"
)

// Reason values carried by events.
const (
	ReasonCapacity   = "capacity"
	ReasonTTLExpired = "ttl_expired"
	ReasonExpired    = "expired"
	ReasonClosed     = "closed"
)

// Stats is a snapshot of the hit/miss counters of one cache instance.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// HitRatio returns Hits/(Hits+Misses), or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Event is the payload of every cache notification. Fields not relevant to
// a given event are left zero:
//
//	cache:hit          Key, Stats
//	cache:miss         Key, Stats, Reason ("", "expired" or "closed")
//	cache:eviction     EvictedKey, Reason ("capacity")
//	cache:invalidated  Key, Reason ("ttl_expired")
type Event[K comparable] struct {
	Name       string
	Key        K
	EvictedKey K
	Stats      Stats
	Reason     string
}

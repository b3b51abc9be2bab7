// Package twoq implements the 2Q eviction policy over keys.
package twoq

import (
	"github.com/IvanBrykalov/evictcache/internal/keylist"
	"github.com/IvanBrykalov/evictcache/policy"
)

// twoQ implements the 2Q eviction policy.
//
// Resident queues:
//   - A1in (younger queue): FIFO, admits first-time keys
//   - Am   (mature queue):  LRU, keys read at least once while resident
//
// Ghost A1out: keys only, remembers keys that left A1in so that a quick
// re-admission bypasses A1in and lands in Am directly.
type twoQ[K comparable] struct {
	cap      int // total resident keys (A1in + Am)
	capIn    int // A1in share; above it, A1in supplies the victim
	capGhost int // A1out size

	in    *keylist.List[K]
	am    *keylist.List[K]
	ghost *keylist.List[K]
}

// New constructs a 2Q policy with the given total capacity.
// Common choices: capIn ≈ 25% of capacity; capGhost ≈ 50–100% of capacity.
// Non-positive capIn/capGhost pick those defaults.
func New[K comparable](capacity, capIn, capGhost int) policy.Policy[K] {
	if capacity <= 0 {
		panic("twoq: capacity must be > 0")
	}
	if capIn <= 0 {
		capIn = max(1, capacity/4)
	}
	if capGhost <= 0 {
		capGhost = max(1, capacity/2)
	}
	return &twoQ[K]{
		cap:      capacity,
		capIn:    capIn,
		capGhost: capGhost,
		in:       keylist.New[K](capIn),
		am:       keylist.New[K](capacity),
		ghost:    keylist.New[K](capGhost),
	}
}

// Access promotes an A1in key into Am, or refreshes an Am key.
func (q *twoQ[K]) Access(k K) {
	if q.in.Remove(k) {
		q.am.PushFront(k)
		return
	}
	q.am.MoveToFront(k)
}

// Add admission rules:
//   - a key found in ghosts skips A1in and is admitted to Am (MRU)
//   - otherwise the key enters A1in
//
// Adding a key that is already resident leaves it where it is (Am keys are
// refreshed).
func (q *twoQ[K]) Add(k K) {
	if q.in.Contains(k) {
		return
	}
	if q.am.MoveToFront(k) {
		return
	}
	if q.ghost.Remove(k) {
		q.am.PushFront(k)
		return
	}
	q.in.PushFront(k)
}

func (q *twoQ[K]) CanEvict() bool { return q.Len() >= q.cap }

// Victim prefers the oldest A1in key once A1in exceeds its share, so a scan
// of one-off keys cannot flush Am.
func (q *twoQ[K]) Victim() (K, bool) {
	if q.in.Len() > q.capIn || q.am.Len() == 0 {
		if k, ok := q.in.Back(); ok {
			return k, true
		}
	}
	return q.am.Back()
}

// Remove drops k. Keys leaving A1in are remembered as ghosts; removals from
// Am do not populate ghosts.
func (q *twoQ[K]) Remove(k K) {
	if !q.in.Remove(k) {
		q.am.Remove(k)
		return
	}
	q.ghost.PushFront(k)
	for q.ghost.Len() > q.capGhost {
		old, ok := q.ghost.Back()
		if !ok {
			break
		}
		q.ghost.Remove(old)
	}
}

func (q *twoQ[K]) Len() int { return q.in.Len() + q.am.Len() }
func (q *twoQ[K]) Cap() int { return q.cap }

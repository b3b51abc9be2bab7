// Package fifo implements the insertion-order (FIFO) eviction policy.
package fifo

import (
	"github.com/IvanBrykalov/evictcache/internal/keylist"
	"github.com/IvanBrykalov/evictcache/policy"
)

// fifo reclaims keys in the order they were inserted. Reads never change
// the order. Arbitrary removal is O(1) through the keylist index.
type fifo[K comparable] struct {
	cap   int
	queue *keylist.List[K]
}

// New returns a FIFO policy tracking at most capacity keys.
// It panics if capacity is not positive.
func New[K comparable](capacity int) policy.Policy[K] {
	if capacity <= 0 {
		panic("fifo: capacity must be > 0")
	}
	return &fifo[K]{cap: capacity, queue: keylist.New[K](capacity)}
}

// Access is a no-op: FIFO is indifferent to reads.
func (p *fifo[K]) Access(K) {}

// Add enqueues k at the tail. A key that is already queued keeps its
// original position.
func (p *fifo[K]) Add(k K) {
	if p.queue.Contains(k) {
		return
	}
	p.queue.PushFront(k)
}

func (p *fifo[K]) CanEvict() bool { return p.queue.Len() >= p.cap }

// Victim returns the earliest inserted key still queued.
func (p *fifo[K]) Victim() (K, bool) { return p.queue.Back() }

func (p *fifo[K]) Remove(k K) { p.queue.Remove(k) }

func (p *fifo[K]) Len() int { return p.queue.Len() }
func (p *fifo[K]) Cap() int { return p.cap }

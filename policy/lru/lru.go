// Package lru implements the LRU eviction policy.
package lru

import (
	"github.com/IvanBrykalov/evictcache/internal/keylist"
	"github.com/IvanBrykalov/evictcache/policy"
)

// lru is a classic "move-to-front" Least-Recently-Used policy.
// Front of the order is MRU, back is the victim.
type lru[K comparable] struct {
	cap   int
	order *keylist.List[K]
}

// New returns an LRU policy tracking at most capacity keys.
// It panics if capacity is not positive.
func New[K comparable](capacity int) policy.Policy[K] {
	if capacity <= 0 {
		panic("lru: capacity must be > 0")
	}
	return &lru[K]{cap: capacity, order: keylist.New[K](capacity)}
}

// Access promotes k to MRU if tracked.
func (p *lru[K]) Access(k K) { p.order.MoveToFront(k) }

// Add places k at MRU (moving it if already tracked).
func (p *lru[K]) Add(k K) { p.order.PushFront(k) }

func (p *lru[K]) CanEvict() bool { return p.order.Len() >= p.cap }

// Victim returns the least recently used key.
func (p *lru[K]) Victim() (K, bool) { return p.order.Back() }

func (p *lru[K]) Remove(k K) { p.order.Remove(k) }

func (p *lru[K]) Len() int { return p.order.Len() }
func (p *lru[K]) Cap() int { return p.cap }

// Package keylist provides an ordered set of keys backed by an intrusive
// doubly linked list and a key->node index.
//
// Orientation follows the cache convention: the front is the newest (MRU)
// key and the back is the next reclamation candidate (LRU / oldest).
// All operations are O(1) expected. Not safe for concurrent use; callers
// (eviction policies) are driven under the cache lock.
package keylist

type node[K comparable] struct {
	key  K
	prev *node[K]
	next *node[K]
}

// List is an ordered, duplicate-free set of keys.
type List[K comparable] struct {
	idx  map[K]*node[K]
	head *node[K] // front (newest)
	tail *node[K] // back (oldest)
}

// New returns an empty list sized for roughly capacity keys.
func New[K comparable](capacity int) *List[K] {
	if capacity < 0 {
		capacity = 0
	}
	return &List[K]{idx: make(map[K]*node[K], capacity)}
}

// Len returns the number of tracked keys.
func (l *List[K]) Len() int { return len(l.idx) }

// Contains reports whether k is tracked.
func (l *List[K]) Contains(k K) bool {
	_, ok := l.idx[k]
	return ok
}

// PushFront inserts k at the front. If k is already tracked it is moved
// there instead; the list never holds duplicates.
func (l *List[K]) PushFront(k K) {
	if n, ok := l.idx[k]; ok {
		l.moveToFront(n)
		return
	}
	n := &node[K]{key: k}
	l.idx[k] = n
	l.insertFront(n)
}

// MoveToFront promotes k to the front. Unknown keys are ignored.
func (l *List[K]) MoveToFront(k K) bool {
	n, ok := l.idx[k]
	if !ok {
		return false
	}
	l.moveToFront(n)
	return true
}

// Remove drops k wherever it sits. Returns false if k was not tracked.
func (l *List[K]) Remove(k K) bool {
	n, ok := l.idx[k]
	if !ok {
		return false
	}
	l.unlink(n)
	delete(l.idx, k)
	return true
}

// Back returns the oldest key.
func (l *List[K]) Back() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	return l.tail.key, true
}

// Front returns the newest key.
func (l *List[K]) Front() (K, bool) {
	if l.head == nil {
		var zero K
		return zero, false
	}
	return l.head.key, true
}

// Keys returns the tracked keys from front (newest) to back (oldest).
func (l *List[K]) Keys() []K {
	out := make([]K, 0, len(l.idx))
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.key)
	}
	return out
}

// insertFront links a detached node at the front.
func (l *List[K]) insertFront(n *node[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *List[K]) moveToFront(n *node[K]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.insertFront(n)
}

// unlink detaches n and fixes head/tail.
func (l *List[K]) unlink(n *node[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if l.head == n {
		l.head = n.next
	}
	if l.tail == n {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

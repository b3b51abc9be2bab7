package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Set/Get/Add/Remove semantics under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
func FuzzCache_SetGetRemove(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "")
	f.Add("a", "1")
	f.Add("b", "2")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		// Cap lengths to keep memory bounded during fuzzing.
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New[string, string](Options[string, string]{Capacity: 2})
		t.Cleanup(func() { _ = c.Close() })

		// Set -> Get must return the same value.
		c.Set(k, v)
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// Add duplicate must not overwrite and must return false.
		if ok := c.Add(k, "other"); ok {
			t.Fatalf("Add duplicate returned true")
		}
		if got2, ok := c.Get(k); !ok || got2 != v {
			t.Fatalf("after duplicate Add: want %q, got %q ok=%v", v, got2, ok)
		}

		// Filling the cache with other keys keeps Len bounded.
		c.Set(k+"#1", v)
		c.Set(k+"#2", v)
		if c.Len() > 2 {
			t.Fatalf("Len %d exceeds capacity", c.Len())
		}

		// Remove then Add again.
		c.Remove(k)
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Remove")
		}
		if ok := c.Add(k, v); !ok {
			t.Fatalf("Add after Remove must return true")
		}

		st := c.Stats()
		if st.Hits != 2 || st.Misses != 1 {
			t.Fatalf("stats want 2 hits/1 miss, got %+v", st)
		}
	})
}

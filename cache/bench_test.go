package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/fifo"
	"github.com/IvanBrykalov/evictcache/policy/lru"
	"github.com/IvanBrykalov/evictcache/policy/twoq"
)

const benchCap = 100_000

// benchmarkMix exercises a read/write mix against a warm cache.
// It uses parallel workers (RunParallel spawns GOMAXPROCS goroutines); all
// of them contend on the single instance lock.
func benchmarkMix(b *testing.B, pol policy.Policy[string], readsPct int) {
	c := New[string, string](Options[string, string]{Policy: pol})
	b.Cleanup(func() { _ = c.Close() })

	// Preload half the capacity to get a realistic hit-rate.
	for i := 0; i < benchCap/2; i++ {
		c.Set("k:"+strconv.Itoa(i), "v")
	}
	// One listener so that event publication is part of the measured path.
	_, _ = c.Notifier().Subscribe(EventEviction, func(Event[string]) error { return nil })

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 17) - 1 // keyspace larger than capacity forces evictions

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else {
				c.Set(k, "v")
			}
			i++
		}
	})
}

func BenchmarkCache_LRU_90r10w(b *testing.B)  { benchmarkMix(b, lru.New[string](benchCap), 90) }
func BenchmarkCache_LRU_50r50w(b *testing.B)  { benchmarkMix(b, lru.New[string](benchCap), 50) }
func BenchmarkCache_FIFO_90r10w(b *testing.B) { benchmarkMix(b, fifo.New[string](benchCap), 90) }
func BenchmarkCache_2Q_90r10w(b *testing.B)   { benchmarkMix(b, twoq.New[string](benchCap, 0, 0), 90) }

// benchmarkMixInt is the same workload but with int keys.
// This removes strconv/alloc noise and better exposes the cache hot path.
func benchmarkMixInt(b *testing.B, readsPct int) {
	c := New[int, int](Options[int, int]{Capacity: benchCap})
	b.Cleanup(func() { _ = c.Close() })

	for i := 0; i < benchCap/2; i++ {
		c.Set(i, 1)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := i & keyMask
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else {
				c.Set(k, 1)
			}
			i++
		}
	})
}

func BenchmarkCache_IntKeys_90r10w(b *testing.B) { benchmarkMixInt(b, 90) }
func BenchmarkCache_IntKeys_50r50w(b *testing.B) { benchmarkMixInt(b, 50) }

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/policy"
)

func TestLoad_File(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "cached.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Cache.Capacity)
	assert.Equal(t, policy.TwoQ, cfg.Cache.Policy)
	assert.Equal(t, 90*time.Second, cfg.Cache.DefaultTTL)
	assert.Equal(t, TwoQConfig{In: 64, Ghost: 256}, cfg.Cache.TwoQ)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, MetricsConfig{Enabled: true, Namespace: "demo", Subsystem: "sessions"}, cfg.Metrics)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1024, cfg.Cache.Capacity)
	assert.Equal(t, policy.LRU, cfg.Cache.Policy)
	assert.Zero(t, cfg.Cache.DefaultTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"NegativeCapacity", "cache:\n  capacity: -1\n"},
		{"UnknownPolicy", "cache:\n  policy: lfu\n"},
		{"NegativeTTL", "cache:\n  default_ttl: -5s\n"},
		{"TwoQInTooLarge", "cache:\n  capacity: 4\n  policy: 2q\n  twoq:\n    in: 8\n"},
		{"BadLogLevel", "log:\n  level: chatty\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_DecodeErrors(t *testing.T) {
	_, err := Parse([]byte("cache:\n  capacity: lots\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)

	_, err = Parse([]byte("cache:\n  capacty: 3\n"))
	require.Error(t, err, "unknown keys are rejected")
}

func TestNewPolicy(t *testing.T) {
	for _, name := range []policy.Name{policy.LRU, policy.FIFO, policy.TwoQ} {
		p, err := NewPolicy[string](CacheConfig{Capacity: 8, Policy: name})
		require.NoError(t, err, name)
		assert.Equal(t, 8, p.Cap(), name)
		assert.Zero(t, p.Len(), name)
	}

	_, err := NewPolicy[string](CacheConfig{Capacity: 8, Policy: "random"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewPolicy[string](CacheConfig{Policy: policy.LRU})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuild_ProducesWorkingCache(t *testing.T) {
	cfg, err := Parse([]byte("cache:\n  capacity: 3\n  policy: fifo\n  default_ttl: 1m\n"))
	require.NoError(t, err)

	opt, err := Build[string, int](cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, opt.Capacity)
	assert.Equal(t, time.Minute, opt.DefaultTTL)

	c := cache.New[string, int](opt)
	c.Set("A", 1)
	c.Set("B", 2)
	c.Set("C", 3)
	c.Get("A")
	c.Set("D", 4)

	_, ok := c.Get("A")
	assert.False(t, ok, "insertion order evicts A even after access")
	assert.Equal(t, 3, c.Len())
}

func TestBuild_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Cache.Policy = "mru"
	_, err := Build[string, string](cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

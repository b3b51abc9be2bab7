// Package config loads the YAML configuration of a cache host.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/internal/log"
	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/fifo"
	"github.com/IvanBrykalov/evictcache/policy/lru"
	"github.com/IvanBrykalov/evictcache/policy/twoq"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid config")

// TwoQConfig sizes the 2Q queues. Zero values pick the policy defaults.
type TwoQConfig struct {
	In    int `yaml:"in"`
	Ghost int `yaml:"ghost"`
}

// CacheConfig holds the cache section.
type CacheConfig struct {
	Capacity   int           `yaml:"capacity"`
	Policy     policy.Name   `yaml:"policy"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
	TwoQ       TwoQConfig    `yaml:"twoq"`
}

// LogConfig holds the log section.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig holds the Prometheus naming section.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// HTTPConfig holds the HTTP host section.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Config is the root configuration of cmd/cached.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads, decodes and validates the YAML file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.Capacity == 0 {
		c.Cache.Capacity = 1024
	}
	if c.Cache.Policy == "" {
		c.Cache.Policy = policy.LRU
	}
	c.Cache.Policy = policy.Name(strings.ToLower(string(c.Cache.Policy)))
	if c.Log.Level == "" {
		c.Log.Level = log.DefaultLevel
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "evictcache"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 5 * time.Second
	}
}

// Validate reports the first invalid setting, wrapped around ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("%w: cache.capacity must be > 0, got %d", ErrInvalidConfig, c.Cache.Capacity)
	}
	switch c.Cache.Policy {
	case policy.LRU, policy.FIFO, policy.TwoQ:
	default:
		return fmt.Errorf("%w: unknown cache.policy %q (use lru, fifo or 2q)", ErrInvalidConfig, c.Cache.Policy)
	}
	if c.Cache.DefaultTTL < 0 {
		return fmt.Errorf("%w: cache.default_ttl must not be negative", ErrInvalidConfig)
	}
	if c.Cache.TwoQ.In < 0 || c.Cache.TwoQ.Ghost < 0 {
		return fmt.Errorf("%w: cache.twoq sizes must not be negative", ErrInvalidConfig)
	}
	if c.Cache.TwoQ.In > c.Cache.Capacity {
		return fmt.Errorf("%w: cache.twoq.in %d exceeds capacity %d", ErrInvalidConfig, c.Cache.TwoQ.In, c.Cache.Capacity)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.HTTP.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: http.shutdown_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// NewPolicy builds the configured eviction policy for key type K.
func NewPolicy[K comparable](c CacheConfig) (policy.Policy[K], error) {
	if c.Capacity <= 0 {
		return nil, fmt.Errorf("%w: cache.capacity must be > 0, got %d", ErrInvalidConfig, c.Capacity)
	}
	switch c.Policy {
	case policy.LRU, "":
		return lru.New[K](c.Capacity), nil
	case policy.FIFO:
		return fifo.New[K](c.Capacity), nil
	case policy.TwoQ:
		return twoq.New[K](c.Capacity, c.TwoQ.In, c.TwoQ.Ghost), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache.policy %q", ErrInvalidConfig, c.Policy)
	}
}

// Build validates cfg and turns its cache section into cache.Options.
// Metrics and Notifier are left for the caller to attach.
func Build[K comparable, V any](cfg *Config, logger *zap.Logger) (cache.Options[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return cache.Options[K, V]{}, err
	}
	pol, err := NewPolicy[K](cfg.Cache)
	if err != nil {
		return cache.Options[K, V]{}, err
	}
	return cache.Options[K, V]{
		Capacity:   cfg.Cache.Capacity,
		Policy:     pol,
		DefaultTTL: cfg.Cache.DefaultTTL,
		Logger:     logger,
	}, nil
}

// Command cached serves an in-memory string cache over HTTP.
//
// Usage:
//
//	cached -config cached.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/config"
	"github.com/IvanBrykalov/evictcache/internal/log"
	"github.com/IvanBrykalov/evictcache/internal/server"
	pmet "github.com/IvanBrykalov/evictcache/metrics/prom"
	"github.com/IvanBrykalov/evictcache/notify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cached:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config (empty = defaults)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	logger, err := log.New(cfg.Log.Level, os.Stdout)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opt, err := config.Build[string, string](cfg, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		opt.Metrics = pmet.New(reg, cfg.Metrics.Namespace, cfg.Metrics.Subsystem, nil)
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Metrics.Namespace,
		Subsystem: cfg.Metrics.Subsystem,
		Name:      "listener_failures_total",
		Help:      "Event listeners that returned an error or panicked",
	}, []string{"event"})
	reg.MustRegister(failures)

	opt.Notifier = notify.New[cache.Event[string]](notify.Options{
		Logger: logger.Named("notify"),
		OnFailure: func(event string, _ error) {
			failures.WithLabelValues(event).Inc()
		},
	})
	if err := subscribeAudit(opt.Notifier, logger.Named("events")); err != nil {
		return err
	}

	c := cache.New[string, string](opt)
	defer func() { _ = c.Close() }()

	logger.Info("cache ready",
		zap.Int("capacity", cfg.Cache.Capacity),
		zap.String("policy", string(cfg.Cache.Policy)),
		zap.Duration("defaultTTL", cfg.Cache.DefaultTTL),
	)

	gin.SetMode(gin.ReleaseMode)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(c, server.Options{
		Addr:            cfg.HTTP.Addr,
		Gatherer:        reg,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		Logger:          logger.Named("http"),
	})
	return srv.Run(ctx)
}

// subscribeAudit logs evictions and expirations at info level.
func subscribeAudit(bus *notify.Bus[cache.Event[string]], logger *zap.Logger) error {
	if _, err := bus.Subscribe(cache.EventEviction, func(e cache.Event[string]) error {
		logger.Info("evicted", zap.String("key", e.EvictedKey), zap.String("reason", e.Reason))
		return nil
	}); err != nil {
		return err
	}
	_, err := bus.Subscribe(cache.EventInvalidated, func(e cache.Event[string]) error {
		logger.Info("invalidated", zap.String("key", e.Key), zap.String("reason", e.Reason))
		return nil
	})
	return err
}

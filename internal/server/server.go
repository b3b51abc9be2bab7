// Package server exposes a string cache over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/cache"
)

// Options configures the HTTP host. Zero values are safe.
type Options struct {
	// Addr is the listen address used by Run.
	Addr string
	// Gatherer backs GET /metrics. Nil => prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// ShutdownTimeout bounds graceful shutdown in Run. 0 => 5s.
	ShutdownTimeout time.Duration
	Logger          *zap.Logger
}

// Server serves a cache.Cache[string, string].
type Server struct {
	c   cache.Cache[string, string]
	opt Options
	log *zap.Logger
	r   *gin.Engine
}

type statsResponse struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
	Size     int     `json:"size"`
}

// New builds the router for c. The gin mode is left to the caller.
func New(c cache.Cache[string, string], opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Gatherer == nil {
		opt.Gatherer = prometheus.DefaultGatherer
	}
	if opt.ShutdownTimeout <= 0 {
		opt.ShutdownTimeout = 5 * time.Second
	}

	r := gin.New()
	s := &Server{c: c, opt: opt, log: opt.Logger, r: r}
	r.Use(s.accessLog, gin.Recovery())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opt.Gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/v1")
	{
		api.GET("/keys/:key", s.getKey)
		api.PUT("/keys/:key", s.setKey)
		api.POST("/keys/:key", s.addKey)
		api.DELETE("/keys/:key", s.deleteKey)
		api.GET("/stats", s.stats)
	}
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Run serves on Options.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opt.Addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http: serving", zap.String("addr", s.opt.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opt.ShutdownTimeout)
	defer cancel()
	s.log.Info("http: shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handlers

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getKey(c *gin.Context) {
	v, ok := s.c.Get(c.Param("key"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.String(http.StatusOK, v)
}

// setKey stores the request body. An optional ?ttl=<duration> overrides the
// default TTL; ttl=0 stores an entry that never expires.
func (s *Server) setKey(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key := c.Param("key")

	raw, hasTTL := c.GetQuery("ttl")
	if !hasTTL {
		s.c.Set(key, string(body))
		c.Status(http.StatusNoContent)
		return
	}
	ttl, err := parseTTL(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.c.SetWithTTL(key, string(body), ttl)
	c.Status(http.StatusNoContent)
}

// addKey stores the body only when the key has no live entry.
func (s *Server) addKey(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.c.Add(c.Param("key"), string(body)) {
		c.JSON(http.StatusConflict, gin.H{"error": "key exists"})
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) deleteKey(c *gin.Context) {
	if !s.c.Remove(c.Param("key")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) stats(c *gin.Context) {
	st := s.c.Stats()
	c.JSON(http.StatusOK, statsResponse{
		Hits:     st.Hits,
		Misses:   st.Misses,
		HitRatio: st.HitRatio(),
		Size:     s.c.Len(),
	})
}

// accessLog logs every request through zap.
func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Info("api request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
		zap.String("client", c.ClientIP()),
	)
}

func parseTTL(raw string) (time.Duration, error) {
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, errors.New("ttl must not be negative")
	}
	return ttl, nil
}

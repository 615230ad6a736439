package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/audiograph/internal/layout"
	"github.com/vk/audiograph/internal/projection"
	"github.com/vk/audiograph/internal/reconciler"
)

const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLayouter replaces the default layered layouter.
func WithLayouter(l layout.Layouter) Option {
	return func(s *Server) { s.layouter = l }
}

// WithIngest enables the /ingest endpoint.
func WithIngest(i *Ingest) Option {
	return func(s *Server) { s.ingest = i }
}

// WithLogger sets the request and connection logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server is the HTTP face of the registry and the projection. Graph reads
// go through the reconciler so they never interleave with an Apply.
type Server struct {
	rec      *reconciler.Reconciler
	proj     *projection.Projection
	layouter layout.Layouter
	ingest   *Ingest
	logger   *slog.Logger
	engine   *gin.Engine

	// closing is closed when Serve starts shutting down, which ends the
	// hijacked websocket connections http.Server.Shutdown does not track.
	closing   chan struct{}
	closeOnce sync.Once
}

// New creates a server. Routes are fixed at construction.
func New(rec *reconciler.Reconciler, proj *projection.Projection, opts ...Option) *Server {
	s := &Server{
		rec:      rec,
		proj:     proj,
		layouter: layout.NewLayered(),
		logger:   slog.Default(),
		closing:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	graphs := r.Group("/graphs")
	{
		graphs.GET("", s.listGraphs)
		graphs.GET("/:id", s.getGraph)
		graphs.GET("/:id/layout", s.getLayout)
	}

	r.GET("/subscribe", s.subscribe)
	r.GET("/ingest", s.ingestSocket)
	return r
}

// Handler returns the routed handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler { return s.engine }

// Serve listens on addr until ctx is done, then shuts down gracefully and
// closes every open websocket.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting.", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.shutdownSockets()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	s.shutdownSockets()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	s.logger.Debug("HTTP server shut down gracefully.")
	return nil
}

func (s *Server) shutdownSockets() {
	s.closeOnce.Do(func() { close(s.closing) })
}

type healthResponse struct {
	Status        string `json:"status"`
	Graphs        int    `json:"graphs"`
	Subscriptions int    `json:"subscriptions"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		Graphs:        s.rec.Registry().Len(),
		Subscriptions: s.proj.Len(),
	})
}

// observe logs each request at debug level and records its metrics.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		requestsTotal.WithLabelValues(route, fmt.Sprint(status)).Inc()
		requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.logger.Debug("HTTP request served.",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
		)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

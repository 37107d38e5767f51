package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Options configure the router
type Options struct {
	// RateLimit is requests per second per client IP, 0 disables limiting
	RateLimit float64
	// Metrics is served on /metrics when set
	Metrics http.Handler
}

// NewRouter wires the handler's endpoints
func NewRouter(h *Handler, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	// Health check
	router.GET("/healthz", h.Health)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := router.Group("")
	if opts.RateLimit > 0 {
		api.Use(NewRateLimiter(opts.RateLimit, int(opts.RateLimit)+1).Middleware())
	}
	api.GET("/table", h.Table)
	api.GET("/schema", h.Schema)
	api.GET("/sections", h.Sections)
	api.GET("/rows/:key", h.Row)
	api.POST("/query", h.Query)

	return router
}

// ListenAndServe serves handler on addr until ctx is cancelled
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("Shutting down HTTP API...")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs each request through slog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func formatCount(kept, total int) string {
	return fmt.Sprintf("%d of %d rows", kept, total)
}

package httpstats

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cachelabs/unicache/internal/logger"
	"github.com/cachelabs/unicache/internal/unicache"
)

// requestTimeout bounds how long any introspection request may run. Every
// handler here is a fast, local read, so this is generous headroom rather
// than a tuned budget.
const requestTimeout = 10 * time.Second

// NewRouter builds the read-only introspection HTTP handler for cache,
// rooted at dir (the cache's directory, used for the healthz reachability
// check). If metrics is nil, a fresh one is created.
//
// Routes:
//   - GET /healthz - liveness plus cache/block-file/index reachability
//   - GET /stats   - JSON Stats snapshot
//   - GET /metrics - Prometheus exposition
func NewRouter(cache *unicache.Cache, dir string, metrics *Metrics) http.Handler {
	if metrics == nil {
		metrics = NewMetrics()
	}

	h := &handler{cache: cache, dir: dir, metrics: metrics}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.healthz)
	r.Get("/stats", h.stats)
	promHandler := promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})
	r.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		stats := cache.Stats()
		metrics.SetFromStats(stats.BlockCount, stats.FileCount, stats.PhysicalBytes, stats.LogicalBytes)
		promHandler.ServeHTTP(w, req)
	}))

	return r
}

// requestLogger logs each introspection request, in the manner of
// dittofs's pkg/api.requestLogger, but against this package's smaller
// field vocabulary.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("introspection request completed",
			logger.HTTPMethod(r.Method),
			logger.HTTPPath(r.URL.Path),
			logger.HTTPStatus(ww.Status()),
			logger.RemoteAddr(r.RemoteAddr),
			logger.DurationMs(float64(time.Since(start).Microseconds())/1000),
		)
	})
}

// Serve starts an HTTP server on addr using NewRouter's handler and blocks
// until ctx is canceled, then shuts the server down gracefully within
// shutdownTimeout.
func Serve(ctx context.Context, addr string, cache *unicache.Cache, dir string, metrics *Metrics, readTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     NewRouter(cache, dir, metrics),
		ReadTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("introspection server listening", logger.KeyCacheDir, dir, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"financas/internal/cache"
	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/records"
	"financas/internal/services"
	appweb "financas/web"
)

// Store is the storage surface the handlers work against.
type Store interface {
	records.TransactionLister
	records.TransactionWriter
	records.BankStore
	records.CategoryStore
}

// Options tune the server beyond its listen address.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	store     Store
	loader    *services.SnapshotLoader
	logger    *applog.Logger

	rateLimiter *rateLimiter

	// One cached snapshot feeds every read; mutations drop it.
	snapshotCache *cache.LRUCache[services.Snapshot]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

const snapshotCacheKey = "snapshot"

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, store Store, opts Options) *Server {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 5
	}
	if opts.RateLimitBurst < 1 {
		opts.RateLimitBurst = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		store:         store,
		loader:        services.NewSnapshotLoader(store, store, store),
		logger:        logger,
		rateLimiter:   newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		snapshotCache: cache.NewLRUCache[services.Snapshot](8, 30*time.Second),
		cacheManager:  cache.NewManager(),
	}
	s.cacheManager.Register(s.snapshotCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/report", s.withSecurityHeaders(s.handleReportPage))
	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("/transactions/update", s.withSecurityHeaders(s.handleUpdateTransaction))
	mux.HandleFunc("/transactions/delete", s.withSecurityHeaders(s.handleDeleteTransaction))
	mux.HandleFunc("/banks", s.withSecurityHeaders(s.handleBanks))
	mux.HandleFunc("/banks/delete", s.withSecurityHeaders(s.handleDeleteBank))
	// UI partials
	mux.HandleFunc("/ui/dashboard", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/ui/report", s.withSecurityHeaders(s.handleReport))

	requestID := func(r *http.Request) string {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			return id
		}
		return generateRequestID()
	}
	s.Server.Handler = applog.Middleware(logger)(applog.RequestIDMiddleware(requestID)(mux))

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging. Only mutating requests hit the rate limiter.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)
		logger := applog.FromContext(r.Context())

		fields := applog.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path).
			WithClientIP(ip)
		logger.InfoContext(r.Context(), "Request started", fields.ToSlice()...)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(ip) {
			logger.WarnContext(r.Context(), "Rate limit exceeded", fields.ToSlice()...)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(r.Context(), "Request completed",
			fields.WithHTTPResponse(rw.statusCode, duration.Milliseconds()).ToSlice()...)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the store answers a cheap read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if _, err := s.store.ListCategories(ctx); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// getSnapshot returns the cached snapshot, loading a fresh one on miss.
func (s *Server) getSnapshot(ctx context.Context) (services.Snapshot, error) {
	if snap, found := s.snapshotCache.Get(snapshotCacheKey); found {
		applog.FromContext(ctx).DebugContext(ctx, "Snapshot cache hit")
		return snap, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	snap, err := s.loader.Load(cctx)
	if err != nil {
		return services.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	s.snapshotCache.Set(snapshotCacheKey, snap)
	applog.FromContext(ctx).DebugContext(ctx, "Snapshot cached",
		"transactions", len(snap.Transactions),
		"banks", len(snap.Banks))
	return snap, nil
}

// invalidateSnapshot drops the cached snapshot after any mutation.
func (s *Server) invalidateSnapshot() {
	s.snapshotCache.Delete(snapshotCacheKey)
}

// rollup recomputes the per-bank balances from a snapshot.
func rollup(snap services.Snapshot) core.Rollup {
	return core.RollupBalances(snap.Banks, snap.Transactions)
}

// Package http exposes the ledger over a JSON API plus PNG chart and CSV
// interchange endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"lumina/internal/cache"
	"lumina/internal/charts"
	"lumina/internal/log"
	"lumina/internal/services"
	"lumina/internal/store"
)

type Server struct {
	http.Server

	store      *store.Store
	expenses   *services.ExpenseService
	reconciler *services.Reconciler
	generator  *charts.Generator
	logger     *log.Logger
	structured *log.StructuredLogger

	rateLimiter *rateLimiter

	// Rendered chart PNGs, flushed on every ledger mutation.
	chartCache cache.Cache[[]byte]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Options tunes server construction; zero values get defaults.
type Options struct {
	ChartCacheSize int
	ChartCacheTTL  time.Duration
	Logger         *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, st *store.Store, svc *services.ExpenseService, rec *services.Reconciler, opts Options) *Server {
	if opts.ChartCacheSize <= 0 {
		opts.ChartCacheSize = 32
	}
	if opts.ChartCacheTTL <= 0 {
		opts.ChartCacheTTL = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:            st,
		expenses:         svc,
		reconciler:       rec,
		generator:        charts.NewGenerator(),
		logger:           logger,
		structured:       log.NewStructuredLogger(logger),
		rateLimiter:      newRateLimiter(),
		chartCache:       cache.NewLRU[[]byte](opts.ChartCacheSize, opts.ChartCacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withMiddleware(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/timeseries", s.withMiddleware(s.handleTimeseries))
	mux.HandleFunc("GET /api/calendar", s.withMiddleware(s.handleCalendar))

	mux.HandleFunc("PUT /api/mode", s.withMiddleware(s.handleSetMode))
	mux.HandleFunc("PUT /api/budget", s.withMiddleware(s.handleSetBudget))

	mux.HandleFunc("GET /api/export", s.withMiddleware(s.handleExportCSV))
	mux.HandleFunc("POST /api/import", s.withMiddleware(s.handleImportCSV))

	mux.HandleFunc("GET /api/notices/rollover", s.withMiddleware(s.handleRolloverNotice))
	mux.HandleFunc("POST /api/reconcile", s.withMiddleware(s.handleReconcile))

	mux.HandleFunc("GET /charts/categories.png", s.withMiddleware(s.handleCategoryChart))
	mux.HandleFunc("GET /charts/daily.png", s.withMiddleware(s.handleDailyChart))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.chartCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("Chart cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// FlushCharts drops every cached render. Callers mutating the ledger
// outside the HTTP handlers use it to keep served charts current.
func (s *Server) FlushCharts() {
	s.chartCache.Flush()
}

// Shutdown stops the cleanup routines before draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds request IDs, a context logger, rate limiting on
// writes, security headers, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	observed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()

		s.structured.LogHTTPStart(ctx, r, clientIP)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})

	chain := log.Middleware(s.logger)(log.RequestIDMiddleware(requestIDFromHeader)(observed))

	return func(w http.ResponseWriter, r *http.Request) {
		// Honor an inbound X-Request-ID so ids survive proxies; mint one
		// otherwise. The header doubles as the extractor's source.
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		chain.ServeHTTP(w, r)
	}
}

func requestIDFromHeader(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter keyed by client IP.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Up to 60 mutating requests per minute per client.
	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}

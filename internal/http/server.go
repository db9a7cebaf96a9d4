package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fondo/internal/core"
	"fondo/internal/ledger"
	"fondo/internal/log"
	"fondo/internal/metrics"
	"fondo/internal/snapshot"
)

// LedgerReader serves derived views of the current snapshot.
type LedgerReader interface {
	Summary(f ledger.Filter) ledger.Summary
	Breakdown(f ledger.Filter) ledger.Breakdown
	Hierarchy(opts ledger.ResolveOptions) []ledger.Group
	Trend(g ledger.Granularity, f ledger.Filter, windowEnd time.Time) []ledger.Bucket
	BudgetProgress(currentUserID string) []ledger.Progress
	Snapshot() snapshot.Snapshot
}

// TransactionWriter records, amends and removes ledger entries.
type TransactionWriter interface {
	Create(ctx context.Context, tx core.Transaction) (string, error)
	Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (core.Transaction, error)
}

type Server struct {
	http.Server
	ledger       LedgerReader
	transactions TransactionWriter

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. A nil logger falls back to the process default.
func NewServer(addr string, logger *log.Logger, lr LedgerReader, tw TransactionWriter) *Server {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP})
	}

	mux := http.NewServeMux()

	// Every request carries a logger with its request ID; handlers pull
	// it back out through log.FromContext.
	chain := log.Middleware(logger)(
		log.RequestIDMiddleware(func(*http.Request) string { return generateRequestID() })(mux))

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: chain,
		},
		ledger:       lr,
		transactions: tw,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("GET /api/summary", s.withAPIDefaults(s.handleSummary))
	mux.HandleFunc("GET /api/balances", s.withAPIDefaults(s.handleBalances))
	mux.HandleFunc("GET /api/projects/stats", s.withAPIDefaults(s.handleProjectStats))
	mux.HandleFunc("GET /api/categories", s.withAPIDefaults(s.handleCategories))
	mux.HandleFunc("GET /api/reports/categories", s.withAPIDefaults(s.handleCategoryReport))
	mux.HandleFunc("GET /api/reports/trend", s.withAPIDefaults(s.handleTrend))
	mux.HandleFunc("GET /api/budget/progress", s.withAPIDefaults(s.handleBudgetProgress))

	mux.HandleFunc("GET /api/transactions", s.withAPIDefaults(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withAPIDefaults(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withAPIDefaults(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withAPIDefaults(s.handleUpdateTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.withAPIDefaults(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withAPIDefaults(s.handleDeleteTransaction))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withAPIDefaults adds security headers, rate limiting, request logging
// and metrics to API handlers.
func (s *Server) withAPIDefaults(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := r.Context()
		clientIP := extractClientIP(r)
		sl := log.NewStructuredLogger(log.FromContext(ctx))

		sl.LogHTTPStart(ctx, r, clientIP)

		if reason := suspicionReason(r); reason != "" {
			slog.WarnContext(ctx, "Suspicious request",
				"client_ip", clientIP, "reason", reason, "url", r.URL.String())
		}

		// Writes are rate limited; reads are served from the snapshot
		// and are cheap enough not to bother.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			apiError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, statusLabel(rw.statusCode)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())

		sl.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
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

// handleReady reports ready once a snapshot has been loaded, so load
// balancers don't route to an instance still serving empty ledgers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil || s.ledger.Snapshot().Version == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("snapshot not loaded"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

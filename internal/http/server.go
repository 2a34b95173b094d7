package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pft/internal/log"
	"pft/internal/storage"
)

// Server is the JSON presentation boundary over the storage layer. It
// holds no state of its own: every request reads or writes through the
// store.
type Server struct {
	http.Server
	store   *storage.SQLiteStore
	limiter *rateLimiter
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, store *storage.SQLiteStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:   store,
		limiter: newRateLimiter(),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("GET /accounts", s.withRequestContext(s.handleListAccounts))
	mux.HandleFunc("POST /accounts", s.withRequestContext(s.handleCreateAccount))
	mux.HandleFunc("GET /accounts/{id}", s.withRequestContext(s.handleGetAccount))
	mux.HandleFunc("GET /accounts/{id}/ledger", s.withRequestContext(s.handleLedger))
	mux.HandleFunc("GET /payees", s.withRequestContext(s.handleListPayees))
	mux.HandleFunc("POST /transactions", s.withRequestContext(s.handleCreateTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.withRequestContext(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withRequestContext(s.handleDeleteTransaction))
	mux.HandleFunc("GET /scheduled-transactions", s.withRequestContext(s.handleListScheduled))
	mux.HandleFunc("POST /scheduled-transactions", s.withRequestContext(s.handleCreateScheduled))
	mux.HandleFunc("POST /scheduled-transactions/{id}/enter", s.withRequestContext(s.handleEnterScheduled))
	mux.HandleFunc("GET /budgets", s.withRequestContext(s.handleListBudgets))
	mux.HandleFunc("POST /budgets", s.withRequestContext(s.handleCreateBudget))
	mux.HandleFunc("GET /budgets/{id}", s.withRequestContext(s.handleGetBudget))
	mux.HandleFunc("GET /budgets/{id}/report", s.withRequestContext(s.handleBudgetReport))

	return s
}

// withRequestContext adds security headers, a request id, and start/end
// logging around every handler.
func (s *Server) withRequestContext(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := clientIP(r)
		if !s.limiter.allow(ip) {
			slog.Warn("rate limit exceeded", log.FieldClientIP, ip, log.FieldURL, r.URL.Path)
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldURL, r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldURL, r.URL.Path,
			log.FieldStatus, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

// Shutdown stops the rate limiter sweep before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.close()
	return s.Server.Shutdown(ctx)
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/chatline/internal/backend"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8787"

	// MaxRequestBodySize is the maximum size for request body (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxMessageLength is the maximum message length in bytes.
	MaxMessageLength = 100000

	// DefaultMaxThreads bounds the thread table. The least recently used
	// thread is forgotten first; its next turn counts from 1 again.
	DefaultMaxThreads = 10000

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats is a snapshot of server usage.
type Stats struct {
	TotalRequests int64
	FailedReplies int64
	StartTime     time.Time
}

// Uptime returns the server uptime duration.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the development chat backend.
type Server struct {
	addr   string
	router *http.ServeMux
	server *http.Server

	responder Responder
	cors      *CORSConfig
	limiter   *RateLimiter
	logger    *log.Logger

	// threads maps thread IDs to their turn counts
	threads    map[string]*threadState
	maxThreads int
	useClock   uint64

	totalRequests atomic.Int64
	failedReplies atomic.Int64
	startTime     time.Time

	mu sync.RWMutex
}

// NewServer creates a Server listening on addr.
// If addr is empty, DefaultAddr is used.
func NewServer(addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	s := &Server{
		addr:       addr,
		router:     http.NewServeMux(),
		responder:  EchoResponder{},
		cors:       DefaultCORSConfig(),
		logger:     log.Default(),
		threads:    make(map[string]*threadState),
		maxThreads: DefaultMaxThreads,
		startTime:  time.Now(),
	}

	s.setupRoutes()
	return s
}

// WithResponder sets the reply generator.
func (s *Server) WithResponder(r Responder) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responder = r
	return s
}

// WithCORS replaces the allowed CORS origins. Nil keeps the localhost defaults.
func (s *Server) WithCORS(origins []string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if origins != nil {
		s.cors.AllowedOrigins = origins
	}
	return s
}

// WithRateLimit enables per-client rate limiting. A non-positive rate disables it.
func (s *Server) WithRateLimit(perSec float64, burst int) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limiter != nil {
		s.limiter.Close()
		s.limiter = nil
	}
	if perSec > 0 {
		s.limiter = NewRateLimiter(perSec, burst)
	}
	return s
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(logger *log.Logger) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithMaxThreads bounds how many threads keep a turn count. Non-positive
// values keep the current bound.
func (s *Server) WithMaxThreads(n int) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.maxThreads = n
	}
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// GetStats returns a copy of the current stats.
func (s *Server) GetStats() Stats {
	return Stats{
		TotalRequests: s.totalRequests.Load(),
		FailedReplies: s.failedReplies.Load(),
		StartTime:     s.startTime,
	}
}

// ThreadCount returns the number of threads seen.
func (s *Server) ThreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads)
}

// ============================================================================
// ROUTES
// ============================================================================

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST "+backend.ChatPath, s.handleChat)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	middlewares := []func(http.Handler) http.Handler{
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
		CORSMiddleware(s.cors),
	}
	if s.limiter != nil {
		middlewares = append(middlewares, RateLimitMiddleware(s.limiter, s.logger))
	}
	return Chain(middlewares...)(s.router)
}

// ============================================================================
// CHAT HANDLER
// ============================================================================

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.totalRequests.Add(1)

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req backend.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", MaxRequestBodySize))
			return
		}
		s.log().Printf("CHAT_BAD_REQUEST | err=%v", err)
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if len(req.Message) > MaxMessageLength {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Message exceeds maximum length of %d", MaxMessageLength))
		return
	}

	threadID := ""
	if req.ThreadID != nil {
		threadID = strings.TrimSpace(*req.ThreadID)
	}
	if threadID == "" {
		threadID = uuid.NewString()
	}

	s.mu.RLock()
	responder, logger := s.responder, s.logger
	s.mu.RUnlock()

	turn := Turn{ThreadID: threadID, Message: req.Message, Number: s.nextTurn(threadID)}
	text, err := responder.Respond(r.Context(), turn)
	if err != nil {
		s.failedReplies.Add(1)
		logger.Printf("CHAT_RESPOND_FAILED | thread=%s turn=%d err=%v", threadID, turn.Number, err)
		s.writeError(w, http.StatusBadGateway, "Failed to generate a reply")
		return
	}

	s.writeJSON(w, http.StatusOK, backend.Reply{Response: text, ThreadID: threadID})
}

// threadState is the per-thread bookkeeping of the dev backend.
type threadState struct {
	turns    int
	lastUsed uint64
}

// nextTurn records a turn for threadID and returns its 1-based number.
// A new thread that would exceed maxThreads evicts the least recently used.
func (s *Server) nextTurn(threadID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.threads[threadID]
	if !ok {
		if len(s.threads) >= s.maxThreads {
			s.evictOldestLocked()
		}
		st = &threadState{}
		s.threads[threadID] = st
	}
	s.useClock++
	st.turns++
	st.lastUsed = s.useClock
	return st.turns
}

// evictOldestLocked drops the least recently used thread. s.mu must be held.
func (s *Server) evictOldestLocked() {
	var (
		oldestID string
		oldest   uint64
	)
	for id, st := range s.threads {
		if oldestID == "" || st.lastUsed < oldest {
			oldestID, oldest = id, st.lastUsed
		}
	}
	delete(s.threads, oldestID)
}

// log returns the configured logger.
func (s *Server) log() *log.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Threads       int    `json:"threads"`
	TotalRequests int64  `json:"total_requests"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.GetStats()
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		Threads:       s.ThreadCount(),
		TotalRequests: stats.TotalRequests,
		UptimeSeconds: int64(stats.Uptime().Seconds()),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve serves requests on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.log().Printf("SERVER_START | addr=%s version=%s", ln.Addr(), Version)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	limiter := s.limiter
	logger := s.logger
	s.mu.Unlock()

	if limiter != nil {
		limiter.Close()
	}
	if srv == nil {
		return nil
	}

	logger.Printf("SERVER_SHUTDOWN | threads=%d requests=%d", s.ThreadCount(), s.GetStats().TotalRequests)
	return srv.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    status,
		},
	})
}

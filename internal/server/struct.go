package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/srinivastls/AADIS/internal/history"
	"github.com/srinivastls/AADIS/internal/orchestrator"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Registry receives the server's Prometheus metrics. If nil, the default
	// registry is used. Tests inject a fresh registry to stay hermetic.
	Registry *prometheus.Registry
}

// asker is the interface the handlers call to answer questions and manage
// conversation history. *orchestrator.Orchestrator satisfies it; tests
// inject a fake.
type asker interface {
	Ask(ctx context.Context, question, sessionID string) orchestrator.UserResponse
	History(ctx context.Context, sessionID string) ([]history.Entry, error)
	Clear(ctx context.Context, sessionID string) error
}

// Server is the HTTP server that exposes the QA core via a REST API.
type Server struct {
	// qa answers questions and manages history.
	qa asker
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the server's Prometheus instruments.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// Question is the user's natural language question.
	Question string `json:"question"`
	// SessionID groups questions into a conversation. A fresh session id is
	// generated and returned when omitted.
	SessionID string `json:"session_id,omitempty"`
}

// askResponse is the JSON response for POST /api/ask: the user-facing answer
// plus the session the exchange was recorded under.
type askResponse struct {
	orchestrator.UserResponse
	// SessionID is the session the exchange was recorded under.
	SessionID string `json:"session_id"`
}

// historyResponse is the JSON response for GET /api/history.
type historyResponse struct {
	// SessionID is the session that was queried.
	SessionID string `json:"session_id"`
	// Entries are the session's exchanges in insertion order.
	Entries []history.Entry `json:"entries"`
}

// clearRequest is the JSON body for POST /api/clear.
type clearRequest struct {
	// SessionID is the session whose history to remove.
	SessionID string `json:"session_id"`
}

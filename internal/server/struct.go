package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
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
	// Registry is the Prometheus registry metrics are registered against.
	// If nil, a fresh registry is created.
	Registry *prometheus.Registry
	// MaxUploadBytes caps the accepted size of document uploads.
	// Defaults to 20 MiB if zero.
	MaxUploadBytes int64
}

// chatEngine is the interface the handlers call to run conversation turns.
// *chat.Engine satisfies it; tests inject a fake.
type chatEngine interface {
	// Chat runs one turn and returns the reply and the resolved session ID.
	Chat(ctx context.Context, sessionID, message string) (response, resolvedSession string, err error)
	// Upload attaches extracted document text to a session and returns the
	// resolved session ID.
	Upload(sessionID, text string) string
}

// Server is the HTTP server that wraps the chat engine.
type Server struct {
	// engine handles all conversation turns and uploads.
	engine chatEngine
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus metrics owned by this server instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// Message is the user's question.
	Message string `json:"message"`
	// SessionID continues an existing conversation; empty starts a new one.
	SessionID string `json:"sessionId,omitempty"`
}

// chatResponse is the JSON response for POST /api/chat.
type chatResponse struct {
	// Response is the assistant's reply.
	Response string `json:"response"`
	// SessionID identifies the conversation for follow-up turns.
	SessionID string `json:"sessionId"`
}

// uploadResponse is the JSON response for POST /api/upload.
type uploadResponse struct {
	// SessionID identifies the conversation the document was attached to.
	SessionID string `json:"sessionId"`
	// Characters is the length of the extracted document text.
	Characters int `json:"characters"`
}

// Package server implements the HTTP server that exposes the medical chatbot
// via a REST API and serves the embedded web UI.
// The server is started by the `doctorai serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caresense/doctorai/internal/chat"
	"github.com/caresense/doctorai/internal/logging"
)

// New constructs a Server from the provided engine and config.
func New(engine chatEngine, cfg *Config) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("server: engine must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover a full generation round-trip.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		engine:  engine,
		cfg:     cfg,
		log:     log,
		pingers: cfg.Pingers,
		metrics: newServerMetrics(reg),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	s.stopRL = stopRL

	if cfg.APIKey == "" {
		log.Warn("server: DOCTORAI_API_KEY not set — API authentication disabled")
	}

	// protect wraps an API handler with auth and rate limiting; health and
	// metrics endpoints stay open for probes and scrapers.
	protect := func(name string, h http.HandlerFunc) http.Handler {
		return s.instrument(name, authMiddleware(cfg.APIKey, rl.middleware(h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", protect("chat", s.handleChat))
	mux.Handle("POST /get", protect("chat_form", s.handleChatForm))
	mux.Handle("POST /api/upload", protect("upload", s.handleUpload))
	mux.Handle("GET /api/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.instrument("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", http.FileServer(http.Dir("ui/static")))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("doctorai server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleChat handles POST /api/chat requests: one JSON-encoded conversation
// turn in, one JSON-encoded reply out.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	reply, sessionID, err := s.runTurn(r, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "chat failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(chatResponse{Response: reply, SessionID: sessionID}); err != nil {
		logging.FromContext(r.Context()).Error("chat encode error", slog.Any("error", err))
	}
}

// handleChatForm handles POST /get, the form-based endpoint the bundled web
// UI submits to. It takes the message from the "msg" form field and returns
// the reply as plain text. The session is identified by the optional
// "sessionId" field.
func (s *Server) handleChatForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	msg := r.FormValue("msg")
	if msg == "" {
		http.Error(w, "msg is required", http.StatusBadRequest)
		return
	}

	reply, _, err := s.runTurn(r, r.FormValue("sessionId"), msg)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			http.Error(w, "msg is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "chat failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, reply)
}

// runTurn executes one engine turn with metrics around it.
func (s *Server) runTurn(r *http.Request, sessionID, message string) (string, string, error) {
	s.metrics.chatActiveTurns.Inc()
	defer s.metrics.chatActiveTurns.Dec()

	start := time.Now()
	reply, resolvedSession, err := s.engine.Chat(r.Context(), sessionID, message)
	elapsed := time.Since(start)

	outcome := "ok"
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		outcome = "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	s.metrics.chatRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.chatDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if err != nil && !errors.Is(err, chat.ErrEmptyMessage) {
		logging.FromContext(r.Context()).Error("chat turn failed",
			slog.String("session_id", resolvedSession),
			slog.Any("error", err),
		)
	}
	return reply, resolvedSession, err
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

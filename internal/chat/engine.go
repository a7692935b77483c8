// Package chat implements the conversational core of the medical assistant:
// per-session memory, prompt assembly, and the turn engine that ties
// retrieval, generation, and transcript persistence together.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/caresense/doctorai/internal/budget"
	"github.com/caresense/doctorai/internal/logging"
	"github.com/caresense/doctorai/internal/rag"
)

// ErrEmptyMessage is returned when a turn is attempted with a blank user
// message. The check runs before any external call, so an empty message
// never costs an embedding or LLM request.
var ErrEmptyMessage = errors.New("chat: message must not be empty")

// Context selection modes. upload-first answers from an uploaded document
// when one exists for the session, falling back to vector retrieval
// otherwise. retrieval-always runs vector retrieval on every turn and
// appends any uploaded document after the retrieved passages.
const (
	ContextModeUploadFirst     = "upload-first"
	ContextModeRetrievalAlways = "retrieval-always"
)

// Generator produces one chat completion. The eino chat models satisfy this
// interface directly.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// TranscriptWriter persists completed exchanges durably. Implementations
// must be safe for concurrent use.
type TranscriptWriter interface {
	Append(ctx context.Context, sessionID, userInput, botResponse string) error
}

// Config holds the turn engine's tunables.
type Config struct {
	// TopK is the number of passages to retrieve per turn. Defaults to 3.
	TopK int

	// ContextMode selects how uploaded documents interact with vector
	// retrieval. Defaults to upload-first.
	ContextMode string

	// MaxTurns caps per-session memory; 0 means unbounded.
	MaxTurns int

	// MaxContextTokens is the estimated token budget for the assembled
	// prompt. History is trimmed oldest-first to fit. Defaults to
	// budget.DefaultMaxContextTokens.
	MaxContextTokens int

	// MaxRetries is the number of additional generation attempts after a
	// failed LLM call. Defaults to 2.
	MaxRetries int

	// RetrievalTimeout bounds each embed-and-search call. Defaults to 15s.
	RetrievalTimeout time.Duration

	// GenerateTimeout bounds each LLM call. Defaults to 60s.
	GenerateTimeout time.Duration
}

// retryDelay is the pause between generation attempts.
const retryDelay = 500 * time.Millisecond

// session is the engine's per-session state. The mutex serializes whole
// turns, so two concurrent requests for the same session cannot interleave
// their retrieval, generation, and memory commit.
type session struct {
	mu sync.Mutex

	memory *Memory

	// uploadedDoc is the extracted text of the session's uploaded document,
	// empty when nothing has been uploaded.
	uploadedDoc string
}

// Engine runs conversation turns. Each turn moves through a fixed sequence:
// validate input, select context, assemble the prompt, generate, commit the
// exchange to memory, persist the transcript. A failure at any stage leaves
// session memory exactly as it was before the turn started.
type Engine struct {
	retriever   rag.Retriever
	generator   Generator
	transcripts TranscriptWriter
	cfg         Config

	mu       sync.Mutex
	sessions map[string]*session
}

// NewEngine constructs an Engine. transcripts may be nil, in which case
// exchanges are kept in memory only.
func NewEngine(retriever rag.Retriever, generator Generator, transcripts TranscriptWriter, cfg Config) (*Engine, error) {
	if retriever == nil {
		return nil, fmt.Errorf("chat: retriever must not be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("chat: generator must not be nil")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.ContextMode == "" {
		cfg.ContextMode = ContextModeUploadFirst
	}
	if cfg.ContextMode != ContextModeUploadFirst && cfg.ContextMode != ContextModeRetrievalAlways {
		return nil, fmt.Errorf("chat: unknown context mode %q — valid values: %s, %s",
			cfg.ContextMode, ContextModeUploadFirst, ContextModeRetrievalAlways)
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = budget.DefaultMaxContextTokens
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetrievalTimeout <= 0 {
		cfg.RetrievalTimeout = 15 * time.Second
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 60 * time.Second
	}

	return &Engine{
		retriever:   retriever,
		generator:   generator,
		transcripts: transcripts,
		cfg:         cfg,
		sessions:    make(map[string]*session),
	}, nil
}

// Chat runs one conversation turn. An empty sessionID starts a new session;
// the resolved session ID is always returned so clients can continue the
// conversation. The returned error wraps ErrEmptyMessage for blank input.
func (e *Engine) Chat(ctx context.Context, sessionID, message string) (response, resolvedSession string, err error) {
	log := logging.FromContext(ctx)

	message = strings.TrimSpace(message)
	if message == "" {
		return "", sessionID, ErrEmptyMessage
	}

	sessionID, sess := e.getOrCreateSession(sessionID)

	// One turn at a time per session. Concurrent requests for the same
	// session queue here and each observes the memory state the previous
	// turn committed.
	sess.mu.Lock()
	defer sess.mu.Unlock()

	contextText, err := e.selectContext(ctx, sess, message)
	if err != nil {
		return "", sessionID, err
	}

	history := e.trimmedHistory(sess, message, contextText)
	payload := Assemble(message, contextText, history)

	reply, err := e.generate(ctx, payload)
	if err != nil {
		return "", sessionID, err
	}

	// Commit the whole exchange only after generation succeeded. A failed
	// turn leaves memory untouched.
	sess.memory.AppendTurn(message, reply)

	if e.transcripts != nil {
		if err := e.transcripts.Append(ctx, sessionID, message, reply); err != nil {
			log.Error("chat: transcript write failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
			return "", sessionID, fmt.Errorf("chat: persisting transcript: %w", err)
		}
	}

	return reply, sessionID, nil
}

// Upload attaches extracted document text to a session, creating the session
// when sessionID is empty. Subsequent turns in the session answer from this
// text according to the configured context mode. The resolved session ID is
// returned.
func (e *Engine) Upload(sessionID, text string) string {
	sessionID, sess := e.getOrCreateSession(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.uploadedDoc = text

	return sessionID
}

// History returns a copy of the session's committed exchanges. Unknown
// sessions return an empty history.
func (e *Engine) History(sessionID string) []Turn {
	e.mu.Lock()
	sess, ok := e.sessions[sessionID]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.memory.History()
}

// ClearSession discards a session's memory and uploaded document.
func (e *Engine) ClearSession(sessionID string) {
	e.mu.Lock()
	sess, ok := e.sessions[sessionID]
	e.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.memory.Clear()
	sess.uploadedDoc = ""
}

// getOrCreateSession resolves sessionID to its state, minting a fresh UUID
// when the ID is empty.
func (e *Engine) getOrCreateSession(sessionID string) (string, *session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sess, ok := e.sessions[sessionID]
	if !ok {
		sess = &session{memory: NewMemory(e.cfg.MaxTurns)}
		e.sessions[sessionID] = sess
	}
	return sessionID, sess
}

// selectContext picks the context text for this turn per the configured
// mode. The caller holds the session lock.
func (e *Engine) selectContext(ctx context.Context, sess *session, message string) (string, error) {
	if e.cfg.ContextMode == ContextModeUploadFirst && sess.uploadedDoc != "" {
		return sess.uploadedDoc, nil
	}

	rctx, cancel := context.WithTimeout(ctx, e.cfg.RetrievalTimeout)
	defer cancel()

	docs, err := e.retriever.Retrieve(rctx, message, e.cfg.TopK)
	if err != nil {
		return "", fmt.Errorf("chat: retrieving context: %w", err)
	}

	parts := make([]string, 0, len(docs)+1)
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	if e.cfg.ContextMode == ContextModeRetrievalAlways && sess.uploadedDoc != "" {
		parts = append(parts, sess.uploadedDoc)
	}
	return strings.Join(parts, "\n"), nil
}

// trimmedHistory returns the session history reduced oldest-first until the
// assembled prompt fits the token budget. The caller holds the session lock.
func (e *Engine) trimmedHistory(sess *session, message, contextText string) []Turn {
	history := sess.memory.History()
	if len(history) == 0 {
		return history
	}

	fixed := budget.Estimate(systemTemplate) + budget.Estimate(contextText) + budget.Estimate(message)
	costs := make([]int, len(history))
	for i, t := range history {
		costs[i] = budget.EstimateExchange(t.User, t.Assistant)
	}
	drop := budget.TrimOldest(costs, fixed, e.cfg.MaxContextTokens)
	return history[drop:]
}

// generate calls the LLM with the assembled prompt, retrying transient
// failures up to MaxRetries additional times.
func (e *Engine) generate(ctx context.Context, payload PromptPayload) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(payload.System),
		schema.UserMessage(payload.UserInput),
	}

	var lastErr error
	attempts := e.cfg.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		gctx, cancel := context.WithTimeout(ctx, e.cfg.GenerateTimeout)
		out, err := e.generator.Generate(gctx, msgs)
		cancel()
		if err == nil {
			return out.Content, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return "", fmt.Errorf("chat: generation failed after %d attempts: %w", attempts, lastErr)
}

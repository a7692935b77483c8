package embedder

import (
	"context"
	"fmt"
	"time"

	"github.com/caresense/doctorai/internal/rag"
)

// defaultRetryDelay is the pause between embedding attempts. Kept short —
// transient inference-host failures (model warm-up, brief 5xx) usually clear
// within a second.
const defaultRetryDelay = 500 * time.Millisecond

// RetryingEmbedder wraps another rag.Embedder and retries transient failures
// a fixed number of times. Context cancellation stops the retry loop
// immediately.
type RetryingEmbedder struct {
	// inner is the wrapped embedder.
	inner rag.Embedder
	// attempts is the total number of tries (first call + retries).
	attempts int
	// delay is the pause between attempts.
	delay time.Duration
}

// WithRetry wraps e so that Embed is attempted up to attempts times.
// attempts < 1 is treated as 1 (no retries).
func WithRetry(e rag.Embedder, attempts int) *RetryingEmbedder {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingEmbedder{inner: e, attempts: attempts, delay: defaultRetryDelay}
}

// Embed delegates to the wrapped embedder, retrying on error until the
// attempt budget is exhausted. The last error is returned wrapped with the
// attempt count.
func (r *RetryingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		embeddings, err := r.inner.Embed(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.delay):
		}
	}
	return nil, fmt.Errorf("embedder: all %d attempts failed: %w", r.attempts, lastErr)
}

package embedder

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

// flakyEmbedder fails a configurable number of times before succeeding.
type flakyEmbedder struct {
	failures int
	calls    int
}

func (f *flakyEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("transient failure %d", f.calls)
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	inner := &flakyEmbedder{failures: 2}
	r := WithRetry(inner, 3)
	r.delay = time.Millisecond

	vecs, err := r.Embed(t.Context(), []string{"a"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 1 {
		t.Errorf("want 1 embedding, got %d", len(vecs))
	}
	if inner.calls != 3 {
		t.Errorf("want 3 calls, got %d", inner.calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	inner := &flakyEmbedder{failures: 10}
	r := WithRetry(inner, 3)
	r.delay = time.Millisecond

	_, err := r.Embed(t.Context(), []string{"a"})
	if err == nil {
		t.Fatal("want error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "all 3 attempts failed") {
		t.Errorf("want attempt count in error, got %q", err)
	}
	if inner.calls != 3 {
		t.Errorf("want exactly 3 calls, got %d", inner.calls)
	}
}

func TestWithRetry_ContextCancellationStopsRetries(t *testing.T) {
	t.Parallel()

	inner := &flakyEmbedder{failures: 10}
	r := WithRetry(inner, 5)
	r.delay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Embed(ctx, []string{"a"})
	if err != context.Canceled {
		t.Errorf("want context.Canceled, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("want 1 call before cancellation, got %d", inner.calls)
	}
}

func TestWithRetry_MinimumOneAttempt(t *testing.T) {
	t.Parallel()

	inner := &flakyEmbedder{failures: 0}
	r := WithRetry(inner, 0)

	if _, err := r.Embed(t.Context(), []string{"a"}); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("want 1 call, got %d", inner.calls)
	}
}

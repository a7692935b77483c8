package rag

import (
	"context"
	"fmt"
	"testing"
)

// stubEmbedder returns a fixed vector for any input.
type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func Test_Retriever_SelfQueryReturnsNearestDocument(t *testing.T) {
	t.Parallel()

	store := newTestStore(t,
		[]Document{{ID: "near", Content: "diabetes overview"}, {ID: "far", Content: "unrelated"}},
		[][]float32{{1, 0, 0}, {0, 0, 1}},
	)
	r, err := NewRetriever(&stubEmbedder{vec: []float32{1, 0, 0}}, store, 3)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	docs, err := r.Retrieve(context.Background(), "diabetes", 1)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "near" {
		t.Errorf("want [near], got %+v", docs)
	}
}

func Test_Retriever_DefaultTopKApplied(t *testing.T) {
	t.Parallel()

	store := newTestStore(t,
		[]Document{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	)
	r, err := NewRetriever(&stubEmbedder{vec: []float32{1, 1, 1}}, store, 2)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	docs, err := r.Retrieve(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("want defaultTopK=2 results, got %d", len(docs))
	}
}

func Test_Retriever_EmbedderErrorPropagates(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(3)
	r, err := NewRetriever(&stubEmbedder{err: fmt.Errorf("host down")}, store, 3)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	if _, err := r.Retrieve(context.Background(), "q", 1); err == nil {
		t.Fatal("want error when embedder fails")
	}
}

func Test_Retriever_NilDependenciesRejected(t *testing.T) {
	t.Parallel()

	if _, err := NewRetriever(nil, NewMemoryStore(3), 1); err == nil {
		t.Error("want error for nil embedder")
	}
	if _, err := NewRetriever(&stubEmbedder{}, nil, 1); err == nil {
		t.Error("want error for nil store")
	}
}

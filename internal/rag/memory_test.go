package rag

import (
	"context"
	"testing"
)

func newTestStore(t *testing.T, docs []Document, embeddings [][]float32) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(3)
	if err := s.Upsert(context.Background(), docs, embeddings); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	return s
}

func Test_MemoryStore_SearchOrdersByDescendingScore(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		[]Document{{ID: "a", Content: "aligned"}, {ID: "b", Content: "orthogonal"}, {ID: "c", Content: "opposite"}},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {-1, 0, 0}},
	)

	docs, err := s.Search(context.Background(), []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("want 3 results, got %d", len(docs))
	}
	if docs[0].ID != "a" || docs[2].ID != "c" {
		t.Errorf("wrong order: %q, %q, %q", docs[0].ID, docs[1].ID, docs[2].ID)
	}
	if docs[0].Score <= docs[1].Score || docs[1].Score <= docs[2].Score {
		t.Errorf("scores not descending: %v %v %v", docs[0].Score, docs[1].Score, docs[2].Score)
	}
}

func Test_MemoryStore_TopKLargerThanCorpus(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		[]Document{{ID: "a"}, {ID: "b"}},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
	)

	docs, err := s.Search(context.Background(), []float32{1, 1, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("want all 2 stored docs, got %d", len(docs))
	}
}

func Test_MemoryStore_DimensionMismatchRejected(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(3)
	err := s.Upsert(context.Background(),
		[]Document{{ID: "a"}},
		[][]float32{{1, 0}},
	)
	if err == nil {
		t.Fatal("want error for wrong vector dimension")
	}
}

func Test_MemoryStore_UpsertOverwritesByID(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		[]Document{{ID: "a", Content: "old"}},
		[][]float32{{1, 0, 0}},
	)
	if err := s.Upsert(context.Background(),
		[]Document{{ID: "a", Content: "new"}},
		[][]float32{{1, 0, 0}},
	); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("want 1 record after overwrite, got %d", s.Len())
	}
	docs, err := s.Search(context.Background(), []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if docs[0].Content != "new" {
		t.Errorf("want overwritten content, got %q", docs[0].Content)
	}
}

func Test_MemoryStore_Delete(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		[]Document{{ID: "a"}, {ID: "b"}},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
	)
	if err := s.Delete(context.Background(), []string{"a", "unknown"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("want 1 record after delete, got %d", s.Len())
	}
}

func Test_CosineSimilarity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := cosineSimilarity(tc.a, tc.b)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("want %v, got %v", tc.want, got)
			}
		})
	}
}

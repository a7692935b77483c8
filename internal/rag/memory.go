package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory VectorStore using brute-force
// cosine similarity. It backs local mode (no Qdrant configured) and tests.
type MemoryStore struct {
	// mu guards records.
	mu sync.RWMutex

	// records maps document ID to its stored document and embedding.
	records map[string]memoryRecord

	// dimension is the fixed vector size enforced on every upsert.
	dimension int
}

// memoryRecord pairs a stored document with its embedding.
type memoryRecord struct {
	doc       Document
	embedding []float32
}

// NewMemoryStore constructs an empty MemoryStore that accepts vectors of the
// given dimension.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		records:   make(map[string]memoryRecord),
		dimension: dimension,
	}
}

// Upsert stores or overwrites documents keyed by ID.
func (s *MemoryStore) Upsert(_ context.Context, docs []Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("memorystore: %d documents but %d embeddings", len(docs), len(embeddings))
	}
	for i := range docs {
		if len(embeddings[i]) != s.dimension {
			return fmt.Errorf("memorystore: vector for %q has dimension %d, index expects %d",
				docs[i].ID, len(embeddings[i]), s.dimension)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range docs {
		vec := make([]float32, len(embeddings[i]))
		copy(vec, embeddings[i])
		s.records[doc.ID] = memoryRecord{doc: doc, embedding: vec}
	}
	return nil
}

// Search returns up to topK documents ordered by descending cosine similarity.
// Fewer stored records than topK returns all of them.
func (s *MemoryStore) Search(_ context.Context, queryEmbedding []float32, topK int) ([]Document, error) {
	if topK < 1 {
		return nil, fmt.Errorf("memorystore: topK must be >= 1, got %d", topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]Document, 0, len(s.records))
	for _, rec := range s.records {
		doc := rec.doc
		doc.Score = float32(cosineSimilarity(queryEmbedding, rec.embedding))
		scored = append(scored, doc)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID // stable order for equal scores
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// Delete removes the given IDs. Unknown IDs are ignored.
func (s *MemoryStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

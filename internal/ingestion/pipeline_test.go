package ingestion

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/caresense/doctorai/internal/rag"
)

// countingEmbedder returns a fixed-dimension vector per text and counts calls.
type countingEmbedder struct {
	dim   int
	calls int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, c.dim)
		vec[0] = 1
		out[i] = vec
	}
	return out, nil
}

func Test_Pipeline_IngestDirStoresAllChunks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", strings.Repeat("medical text ", 100))

	store := rag.NewMemoryStore(3)
	p, err := NewPipeline(&countingEmbedder{dim: 3}, store, &Config{ChunkSize: 200, ChunkOverlap: 50})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	res, err := p.IngestDir(context.Background(), dir, "", nil)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Documents != 1 {
		t.Errorf("want 1 document, got %d", res.Documents)
	}
	if res.Chunks == 0 || store.Len() != res.Chunks {
		t.Errorf("chunks stored (%d) != chunks reported (%d)", store.Len(), res.Chunks)
	}
}

func Test_Pipeline_ReingestIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", strings.Repeat("stable corpus ", 80))

	store := rag.NewMemoryStore(3)
	p, err := NewPipeline(&countingEmbedder{dim: 3}, store, &Config{ChunkSize: 200, ChunkOverlap: 50})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if _, err := p.IngestDir(context.Background(), dir, "", nil); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	first := store.Len()

	if _, err := p.IngestDir(context.Background(), dir, "", nil); err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if store.Len() != first {
		t.Errorf("re-ingestion duplicated points: %d -> %d", first, store.Len())
	}
}

func Test_Pipeline_EmbedderErrorAborts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "content")

	store := rag.NewMemoryStore(3)
	p, err := NewPipeline(&countingEmbedder{dim: 3, err: fmt.Errorf("quota exceeded")}, store, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if _, err := p.IngestDir(context.Background(), dir, "", nil); err == nil {
		t.Fatal("want error when embedding fails")
	}
	if store.Len() != 0 {
		t.Errorf("failed ingest left %d points in store", store.Len())
	}
}

func Test_Pipeline_EmptyDirectoryRejected(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline(&countingEmbedder{dim: 3}, rag.NewMemoryStore(3), nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	if _, err := p.IngestDir(context.Background(), t.TempDir(), "", nil); err == nil {
		t.Fatal("want error for directory with no supported documents")
	}
}

func Test_ChunkID_DeterministicAndDistinct(t *testing.T) {
	t.Parallel()

	if chunkID("a.txt", 0) != chunkID("a.txt", 0) {
		t.Error("same source and ordinal produced different IDs")
	}
	if chunkID("a.txt", 0) == chunkID("a.txt", 1) {
		t.Error("different ordinals produced the same ID")
	}
	if chunkID("a.txt", 0) == chunkID("b.txt", 0) {
		t.Error("different sources produced the same ID")
	}
}

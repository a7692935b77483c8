// Package ingestion implements the document ingestion pipeline.
// It loads medical reference documents from disk, splits each one into
// overlapping text chunks, embeds the chunks, and upserts the results into
// the vector store. This pipeline is invoked by the `doctorai ingest` CLI
// command.
package ingestion

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresense/doctorai/internal/rag"
)

// Default chunking parameters. 500 characters with a 100-character overlap
// keeps individual chunks well under typical embedding model input limits
// while preserving continuity across chunk boundaries.
const (
	defaultChunkSize    = 500
	defaultChunkOverlap = 100
)

// embedBatchSize caps how many chunks are sent to the embedder per request.
// Hosted inference endpoints reject very large batches.
const embedBatchSize = 64

// chunkNamespace is the UUIDv5 namespace for chunk IDs. Deriving IDs from
// document path and chunk ordinal makes re-ingestion idempotent: the same
// chunk always maps to the same vector store point.
var chunkNamespace = uuid.MustParse("7f9be3a4-5c1d-4f6e-9b2a-8d0c4e1f6a73")

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per document chunk.
	// Defaults to 500 if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters to overlap between consecutive
	// chunks. Defaults to 100 if zero.
	ChunkOverlap int
}

// Pipeline orchestrates the load, split, embed, upsert flow for a directory
// of source documents.
type Pipeline struct {
	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks.
	store rag.VectorStore

	// cfg holds the resolved pipeline configuration.
	cfg *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
	}, nil
}

// Result summarizes one ingestion run.
type Result struct {
	// Documents is the number of source files processed.
	Documents int

	// Chunks is the total number of chunks embedded and stored.
	Chunks int
}

// IngestDir loads every supported file under dir matching pattern, splits,
// embeds, and stores the chunks. Documents are processed sequentially and the
// first error is returned. Progress is reported via the optional progress
// callback.
func (p *Pipeline) IngestDir(ctx context.Context, dir, pattern string, progress func(msg string)) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}

	docs, err := LoadDir(ctx, dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("ingestion: no supported documents found in %s", dir)
	}

	res := &Result{}
	for _, doc := range docs {
		chunks := Split(doc.Text, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
		progress(fmt.Sprintf("split %s into %d chunks", doc.Path, len(chunks)))

		if err := p.ingestChunks(ctx, doc.Path, chunks); err != nil {
			return nil, err
		}

		res.Documents++
		res.Chunks += len(chunks)
		progress(fmt.Sprintf("ingested %d chunks from %s", len(chunks), doc.Path))
	}

	return res, nil
}

// ingestChunks embeds and upserts one document's chunks in batches.
func (p *Pipeline) ingestChunks(ctx context.Context, source string, chunks []string) error {
	for batchStart := 0; batchStart < len(chunks); batchStart += embedBatchSize {
		batchEnd := batchStart + embedBatchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		batch := chunks[batchStart:batchEnd]

		embeddings, err := p.embedder.Embed(ctx, batch)
		if err != nil {
			return fmt.Errorf("ingestion: embedding failed for %s: %w", source, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("ingestion: embedder returned %d vectors for %d chunks", len(embeddings), len(batch))
		}

		docs := make([]rag.Document, 0, len(batch))
		for i, chunk := range batch {
			ordinal := batchStart + i
			docs = append(docs, rag.Document{
				ID:      chunkID(source, ordinal),
				Content: chunk,
				Source:  source,
				Ordinal: ordinal,
			})
		}

		if err := p.store.Upsert(ctx, docs, embeddings); err != nil {
			return fmt.Errorf("ingestion: upsert failed for %s: %w", source, err)
		}
	}
	return nil
}

// chunkID generates a deterministic UUID for a chunk from its source path and
// ordinal. UUID form is required by the vector store's point ID format.
func chunkID(source string, ordinal int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s#%d", source, ordinal))).String()
}

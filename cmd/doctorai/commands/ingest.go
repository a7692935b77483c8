package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/caresense/doctorai/internal/embedder"
	"github.com/caresense/doctorai/internal/ingestion"
	"github.com/caresense/doctorai/internal/logging"
)

// NewIngestCmd constructs the `doctorai ingest` command, which runs the
// document ingestion pipeline to populate the vector store.
func NewIngestCmd() *cobra.Command {
	var dir string
	var glob string
	var chunkSize int
	var chunkOverlap int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest medical reference documents into the vector store",
		Long: `Load, chunk, embed, and index medical reference documents into the
Qdrant vector store.

Supported formats: PDF, CSV, TXT, Markdown. Each document is split into
overlapping chunks; chunk IDs are deterministic, so re-running ingestion over
the same corpus updates existing points instead of duplicating them.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: medical-chatbot)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  EMBEDDING_PROVIDER   Embedding backend: huggingface, ollama, openai
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  doctorai ingest --dir ./data
  doctorai ingest --dir ./data --glob "*.pdf"
  doctorai ingest --dir ./data --chunk-size 800 --chunk-overlap 200`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			if dir == "" {
				return fmt.Errorf("ingest: --dir is required")
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}
			log.Info("embedder initialised", slog.String("provider", getEnvOrDefault("EMBEDDING_PROVIDER", "huggingface")))

			store := buildVectorStore(ctx, log)
			defer store.Close()

			pipeline, err := ingestion.NewPipeline(emb, store, &ingestion.Config{
				ChunkSize:    chunkSize,
				ChunkOverlap: chunkOverlap,
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			log.Info("starting ingestion", slog.String("dir", dir), slog.String("glob", glob))

			res, err := pipeline.IngestDir(ctx, dir, glob, func(msg string) {
				log.Info(msg)
			})
			if err != nil {
				return fmt.Errorf("ingest: pipeline failed: %w", err)
			}

			log.Info("ingestion complete",
				slog.Int("documents", res.Documents),
				slog.Int("chunks", res.Chunks),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of documents to ingest")
	cmd.Flags().StringVarP(&glob, "glob", "g", "", "Glob pattern applied to file names (e.g. \"*.pdf\")")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", getEnvInt("CHUNK_SIZE", 500), "Maximum characters per chunk")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", getEnvInt("CHUNK_OVERLAP", 100), "Characters of overlap between consecutive chunks")

	return cmd
}

package commands

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/caresense/doctorai/internal/chat"
	"github.com/caresense/doctorai/internal/embedder"
	"github.com/caresense/doctorai/internal/rag"
)

// defaultCollection is the vector index holding the ingested medical corpus.
const defaultCollection = "medical-chatbot"

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// buildVectorStore connects to Qdrant using the QDRANT_* environment
// variables. When Qdrant is unreachable it falls back to an in-memory cosine
// store so the chatbot stays usable in development, at the cost of an empty
// corpus that lives only as long as the process.
func buildVectorStore(ctx context.Context, log *slog.Logger) rag.VectorStore {
	embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", "huggingface")
	vectorSize := embedder.DefaultDimensions(embBackend)

	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", defaultCollection)

	store, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: uint64(vectorSize), //nolint:gosec // dimensions are bounded
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		log.Warn("qdrant unreachable — falling back to in-memory vector store",
			slog.String("host", host),
			slog.Int("port", port),
			slog.Any("error", err),
		)
		return rag.NewMemoryStore(vectorSize)
	}

	log.Info("qdrant store ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)
	return store
}

// engineConfigFromEnv resolves the chat engine tunables from the environment.
func engineConfigFromEnv() chat.Config {
	return chat.Config{
		TopK:             getEnvInt("RETRIEVAL_TOP_K", 3),
		ContextMode:      getEnvOrDefault("CONTEXT_MODE", chat.ContextModeUploadFirst),
		MaxTurns:         getEnvInt("MEMORY_MAX_TURNS", 0),
		MaxContextTokens: getEnvInt("MEMORY_MAX_CONTEXT_TOKENS", 0),
		MaxRetries:       getEnvInt("MODEL_MAX_RETRIES", 2),
	}
}

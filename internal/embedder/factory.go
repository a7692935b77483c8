package embedder

import (
	"fmt"
	"os"
	"strconv"

	"github.com/caresense/doctorai/internal/rag"
)

// Default embedding models per backend.
const (
	defaultHFModel     = "sentence-transformers/all-MiniLM-L6-v2"
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-small"

	// defaultHFDimensions is the output dimension of all-MiniLM-L6-v2.
	defaultHFDimensions = 384
	// defaultOllamaDimensions is the output dimension of nomic-embed-text.
	// Other Ollama models may differ — override with EMBEDDING_DIMENSIONS.
	defaultOllamaDimensions = 768
	// defaultOpenAIDimensions is the output dimension of text-embedding-3-small.
	defaultOpenAIDimensions = 1536
)

// defaultRetryAttempts is the total embed attempt budget applied by NewFromEnv.
const defaultRetryAttempts = 3

// DefaultDimensions returns the correct default embedding vector size for the
// given backend name. Callers that need to pre-configure a vector index (e.g.
// Qdrant collection creation) should use this rather than hardcoding a value.
// EMBEDDING_DIMENSIONS always takes precedence when set.
func DefaultDimensions(backend string) int {
	if v := getEnvInt("EMBEDDING_DIMENSIONS", 0); v > 0 {
		return v
	}
	switch backend {
	case "ollama":
		return defaultOllamaDimensions
	case "openai":
		return defaultOpenAIDimensions
	default:
		return defaultHFDimensions
	}
}

// NewFromEnv constructs a rag.Embedder from environment variables and wraps
// it in a transient-failure retry layer.
//
// Environment variables:
//
//	EMBEDDING_PROVIDER   = huggingface | ollama | openai (default: huggingface)
//	EMBEDDING_MODEL      — overrides the backend's default model
//	EMBEDDING_API_KEY    — overrides the backend's inherited API key
//	EMBEDDING_ENDPOINT   — overrides the backend's default endpoint
//	EMBEDDING_DIMENSIONS — overrides the default dimensions
func NewFromEnv() (rag.Embedder, error) {
	backend := getEnvOrDefault("EMBEDDING_PROVIDER", "huggingface")

	var inner rag.Embedder
	switch backend {
	case "huggingface":
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("HF_API_KEY")
		}
		inner = NewHFEmbedder(&HFConfig{
			BaseURL: getEnv("EMBEDDING_ENDPOINT"),
			APIKey:  apiKey,
			Model:   getEnvOrDefault("EMBEDDING_MODEL", defaultHFModel),
		})

	case "ollama":
		host := getEnv("EMBEDDING_ENDPOINT")
		if host == "" {
			host = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		}
		inner = NewOllamaEmbedder(&OllamaConfig{
			Host:  host,
			Model: getEnvOrDefault("EMBEDDING_MODEL", defaultOllamaModel),
		})

	case "openai":
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("embedder: openai requires OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		baseURL := getEnv("EMBEDDING_ENDPOINT")
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		inner = NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", defaultOpenAIDimensions),
		})

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q — valid values: huggingface, ollama, openai", backend)
	}

	return WithRetry(inner, defaultRetryAttempts), nil
}

// getEnv returns the value of the named environment variable, or empty string.
func getEnv(key string) string {
	return os.Getenv(key)
}

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

// Package embedder provides implementations of the rag.Embedder interface for
// converting text into dense vector embeddings. Each implementation talks to a
// different backend (HuggingFace Inference API, Ollama, OpenAI) via plain
// HTTP — no additional SDK dependencies are required.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HFEmbedder implements rag.Embedder using the HuggingFace Inference API
// feature-extraction pipeline. It is safe for concurrent use.
type HFEmbedder struct {
	// baseURL is the inference API base (default: https://api-inference.huggingface.co).
	baseURL string
	// apiKey is the HuggingFace access token. May be empty for public models,
	// at the mercy of anonymous rate limits.
	apiKey string
	// model is the embedding model repo (e.g. "sentence-transformers/all-MiniLM-L6-v2").
	model string
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// HFConfig holds the settings for constructing an HFEmbedder.
type HFConfig struct {
	// BaseURL is the inference API base URL. Empty selects the public API.
	BaseURL string
	// APIKey is the HuggingFace access token.
	APIKey string
	// Model is the embedding model repo name.
	Model string
}

// NewHFEmbedder constructs an HFEmbedder from the given config.
func NewHFEmbedder(cfg *HFConfig) *HFEmbedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	return &HFEmbedder{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// hfEmbedRequest is the JSON body sent to the feature-extraction pipeline.
type hfEmbedRequest struct {
	Inputs []string `json:"inputs"`
	// Options asks the API to block until the model is loaded instead of
	// returning a 503 while it warms up.
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

// hfErrorResponse is the JSON error envelope returned on failure.
type hfErrorResponse struct {
	Error string `json:"error"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice.
func (e *HFEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := hfEmbedRequest{Inputs: texts}
	body.Options.WaitForModel = true

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("hf embedder: marshal request: %w", err)
	}

	url := e.baseURL + "/pipeline/feature-extraction/" + e.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("hf embedder: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hf embedder: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hf embedder: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var errResp hfErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return nil, fmt.Errorf("hf embedder: %s", msg)
	}

	var embeddings [][]float32
	if err := json.Unmarshal(raw, &embeddings); err != nil {
		return nil, fmt.Errorf("hf embedder: decode response: %w", err)
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("hf embedder: expected %d embeddings, got %d", len(texts), len(embeddings))
	}

	return embeddings, nil
}

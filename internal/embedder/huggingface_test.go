package embedder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHFEmbedder_RequestShape(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody hfEmbedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode([][]float32{{0.1, 0.2}, {0.3, 0.4}})
	}))
	t.Cleanup(srv.Close)

	e := NewHFEmbedder(&HFConfig{
		BaseURL: srv.URL,
		APIKey:  "hf_test_token",
		Model:   "sentence-transformers/all-MiniLM-L6-v2",
	})

	vecs, err := e.Embed(t.Context(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	if gotPath != "/pipeline/feature-extraction/sentence-transformers/all-MiniLM-L6-v2" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer hf_test_token" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if len(gotBody.Inputs) != 2 || gotBody.Inputs[0] != "hello" {
		t.Errorf("unexpected inputs %v", gotBody.Inputs)
	}
	if !gotBody.Options.WaitForModel {
		t.Error("wait_for_model should be set")
	}
	if len(vecs) != 2 || len(vecs[0]) != 2 || vecs[1][1] != 0.4 {
		t.Errorf("unexpected embeddings %v", vecs)
	}
}

func TestHFEmbedder_NoAuthHeaderWithoutKey(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([][]float32{{1}})
	}))
	t.Cleanup(srv.Close)

	e := NewHFEmbedder(&HFConfig{BaseURL: srv.URL, Model: "m"})
	if _, err := e.Embed(t.Context(), []string{"x"}); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no auth header, got %q", gotAuth)
	}
}

func TestHFEmbedder_APIErrorSurfaced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(hfErrorResponse{Error: "model is overloaded"})
	}))
	t.Cleanup(srv.Close)

	e := NewHFEmbedder(&HFConfig{BaseURL: srv.URL, Model: "m"})
	_, err := e.Embed(t.Context(), []string{"x"})
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "model is overloaded") {
		t.Errorf("want API error message surfaced, got %q", err)
	}
}

func TestHFEmbedder_CountMismatchRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{{1, 2}})
	}))
	t.Cleanup(srv.Close)

	e := NewHFEmbedder(&HFConfig{BaseURL: srv.URL, Model: "m"})
	_, err := e.Embed(t.Context(), []string{"one", "two"})
	if err == nil {
		t.Fatal("want error on embedding count mismatch")
	}
}

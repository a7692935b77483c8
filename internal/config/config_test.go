package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a YAML config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doctorai.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// These tests mutate process env via t.Setenv, so they must not run in
// parallel.

func TestLoad_YAMLAppliedToEnv(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "")
	os.Unsetenv("MODEL_PROVIDER")
	t.Setenv("RETRIEVAL_TOP_K", "")
	os.Unsetenv("RETRIEVAL_TOP_K")

	path := writeConfig(t, `
model:
  provider: ollama
retrieval:
  top_k: 7
`)

	loaded, err := Load(path, slog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != path {
		t.Errorf("want loaded path %q, got %q", path, loaded)
	}
	if got := os.Getenv("MODEL_PROVIDER"); got != "ollama" {
		t.Errorf("want MODEL_PROVIDER=ollama, got %q", got)
	}
	if got := os.Getenv("RETRIEVAL_TOP_K"); got != "7" {
		t.Errorf("want RETRIEVAL_TOP_K=7, got %q", got)
	}
}

func TestLoad_EnvWinsOverYAML(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "groq")

	path := writeConfig(t, `
model:
  provider: ollama
`)

	if _, err := Load(path, slog.Default()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("MODEL_PROVIDER"); got != "groq" {
		t.Errorf("existing env var must win, got %q", got)
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), slog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != "" {
		t.Errorf("want empty path for missing file, got %q", loaded)
	}
}

func TestLoad_MalformedYAMLRejected(t *testing.T) {
	path := writeConfig(t, "model: [not: valid")

	if _, err := Load(path, slog.Default()); err == nil {
		t.Error("want error for malformed YAML")
	}
}

func TestLoad_ZeroValuesNotApplied(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	os.Unsetenv("CHUNK_SIZE")

	path := writeConfig(t, `
ingestion:
  chunk_size: 0
`)

	if _, err := Load(path, slog.Default()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, ok := os.LookupEnv("CHUNK_SIZE"); ok && got != "" {
		t.Errorf("zero YAML value must not be exported, got %q", got)
	}
}

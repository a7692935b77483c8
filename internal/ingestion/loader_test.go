package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func Test_LoadDir_TextAndMarkdown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "plain text content")
	writeFile(t, dir, "b.md", "# heading\nbody")

	docs, err := LoadDir(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("want 2 documents, got %d", len(docs))
	}
}

func Test_LoadDir_CSVFlattened(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "drugs.csv", "name,dose\naspirin,100mg\nibuprofen,200mg\n")

	docs, err := LoadDir(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("want 1 document, got %d", len(docs))
	}
	want := "name, dose\naspirin, 100mg\nibuprofen, 200mg\n"
	if docs[0].Text != want {
		t.Errorf("want %q, got %q", want, docs[0].Text)
	}
}

func Test_LoadDir_GlobFilters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "kept")
	writeFile(t, dir, "skip.md", "skipped")

	docs, err := LoadDir(context.Background(), dir, "*.txt")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || docs[0].Path != "keep.txt" {
		t.Errorf("glob not applied: %+v", docs)
	}
}

func Test_LoadDir_UnsupportedAndEmptySkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "image.png", "\x89PNG")
	writeFile(t, dir, "empty.txt", "   \n")
	writeFile(t, dir, "good.txt", "content")

	docs, err := LoadDir(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || docs[0].Path != "good.txt" {
		t.Errorf("want only good.txt, got %+v", docs)
	}
}

func Test_LoadDir_RelativePathsInSubdirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, sub, "deep.txt", "nested content")

	docs, err := LoadDir(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || docs[0].Path != "nested/deep.txt" {
		t.Errorf("want nested/deep.txt, got %+v", docs)
	}
}

func Test_LoadDir_MissingDirectory(t *testing.T) {
	t.Parallel()

	if _, err := LoadDir(context.Background(), "/does/not/exist", ""); err == nil {
		t.Fatal("want error for missing directory")
	}
}

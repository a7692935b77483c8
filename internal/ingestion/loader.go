package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/caresense/doctorai/internal/logging"
)

// LoadedDocument is one source file's extracted plain text, ready for
// splitting. Path is relative to the ingestion root so chunk IDs stay stable
// when the corpus directory moves between machines.
type LoadedDocument struct {
	// Path is the slash-separated path of the file relative to the root dir.
	Path string

	// Text is the extracted plain text content.
	Text string
}

// LoadDir walks dir and extracts text from every file matching pattern
// (a filepath.Match glob applied to the base name; empty means all files).
// Supported formats: .pdf, .csv, .txt, .md. Unsupported or unreadable files
// are skipped with a logged warning rather than failing the run, so one
// corrupt file cannot block a whole corpus.
func LoadDir(ctx context.Context, dir, pattern string) ([]LoadedDocument, error) {
	log := logging.FromContext(ctx)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("ingestion: cannot read directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ingestion: %s is not a directory", dir)
	}

	var docs []LoadedDocument
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("ingestion: skipping unreadable entry",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if pattern != "" {
			matched, matchErr := filepath.Match(pattern, d.Name())
			if matchErr != nil {
				return fmt.Errorf("ingestion: invalid glob pattern %q: %w", pattern, matchErr)
			}
			if !matched {
				return nil
			}
		}

		text, err := extractText(path)
		if err != nil {
			log.Warn("ingestion: skipping file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		if strings.TrimSpace(text) == "" {
			log.Warn("ingestion: skipping empty file", slog.String("path", path))
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, LoadedDocument{
			Path: filepath.ToSlash(rel),
			Text: text,
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return docs, nil
}

// extractText dispatches on file extension to the right extractor.
func extractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".csv":
		return extractCSV(path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file format %q", filepath.Ext(path))
	}
}

// extractPDF reads a PDF and concatenates the plain text of every page,
// separated by blank lines.
func extractPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// extractCSV flattens a CSV file into one line per record with fields joined
// by ", ". Ragged rows are tolerated.
func extractCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing csv: %w", err)
	}

	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(strings.Join(record, ", "))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

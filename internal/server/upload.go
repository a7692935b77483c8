package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/caresense/doctorai/internal/logging"
)

// defaultMaxUploadBytes caps document uploads at 20 MiB. Medical reference
// PDFs are rarely larger; anything bigger is likely a mistake.
const defaultMaxUploadBytes = 20 << 20

// handleUpload handles POST /api/upload. It accepts a multipart form with a
// "file" part (PDF) and an optional "sessionId" field, extracts the document
// text, and attaches it to the session so subsequent turns can answer from it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		http.Error(w, "invalid or oversized upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		http.Error(w, "only PDF uploads are supported", http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read upload", http.StatusBadRequest)
		return
	}

	text, err := extractPDFText(data)
	if err != nil {
		log.Warn("upload: pdf extraction failed",
			slog.String("filename", header.Filename),
			slog.Any("error", err),
		)
		http.Error(w, "could not extract text from PDF", http.StatusUnprocessableEntity)
		return
	}
	if strings.TrimSpace(text) == "" {
		http.Error(w, "PDF contains no extractable text", http.StatusUnprocessableEntity)
		return
	}

	sessionID := s.engine.Upload(r.FormValue("sessionId"), text)

	log.Info("upload: document attached",
		slog.String("session_id", sessionID),
		slog.String("filename", header.Filename),
		slog.Int("characters", len(text)),
	)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(uploadResponse{SessionID: sessionID, Characters: len(text)}); err != nil {
		log.Error("upload encode error", slog.Any("error", err))
	}
}

// extractPDFText concatenates the plain text of every page of an in-memory
// PDF, separated by blank lines.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
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

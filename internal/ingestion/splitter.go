package ingestion

import "strings"

// Split cuts text into overlapping chunks of at most size characters using a
// fixed sliding window with stride size-overlap. The split is deterministic:
// the same text and parameters always yield the same chunks, which keeps
// chunk IDs stable across re-ingestion runs. Chunks never span documents;
// callers split each document independently.
func Split(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if len(text) == 0 || size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 10
	}

	var chunks []string
	for start := 0; start < len(text); start += size - overlap {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

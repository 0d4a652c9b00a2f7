// Package retrieval builds and queries the in-memory FAQ document index the
// FAQ specialist answers from.
package retrieval

import "strings"

// Splitter parameters for the FAQ document.
const (
	DefaultChunkSize    = 700
	DefaultChunkOverlap = 150
)

// ChunkText splits a document into overlapping chunks, preferring to break on
// paragraph and sentence boundaries near the target size.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}

	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakNear(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// breakNear walks back from end looking for a natural boundary, but never
// shrinks the chunk below half the window.
func breakNear(runes []rune, start, end int) int {
	min := start + (end-start)/2
	for i := end; i > min; i-- {
		switch runes[i-1] {
		case '\n', '.', '!', '?':
			return i
		}
	}
	return end
}

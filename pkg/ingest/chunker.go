// Package ingest turns a raw day transcript into archived, embedded and
// tier-merged memory.
package ingest

import "strings"

// Chunking defaults, in words. Overlap keeps context that straddles a
// chunk boundary findable from both sides.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 80
)

// ChunkWords splits text into word-count chunks with the given overlap.
// Words are whitespace-delimited. Overlap must be smaller than size.
func ChunkWords(text string, size, overlap int) []string {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= size {
		return []string{strings.Join(words, " ")}
	}

	step := size - overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

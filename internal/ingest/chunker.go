package ingest

import (
	"fmt"
	"strings"

	"nexlify-ingest/internal/service"
)

// Default chunking parameters: 512-word windows overlapping by 64 words.
const (
	DefaultChunkSize = 512
	DefaultOverlap   = 64
)

// Chunk splits text into overlapping word windows. The text is split on
// whitespace; each window holds chunkSize words rejoined with single
// spaces, and consecutive windows share the last overlap words of the
// previous one. Original whitespace structure inside a chunk is not
// preserved.
//
// Empty or whitespace-only text yields an empty slice and no error;
// callers decide whether that is an error in their context. Output is
// deterministic for fixed inputs.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", service.ErrInvalidInput, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, chunk size), got %d with chunk size %d",
			service.ErrInvalidInput, overlap, chunkSize)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks, nil
}

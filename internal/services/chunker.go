package services

import "strings"

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits extracted text into overlapping windows sized for the
// embedding model's context.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Size and overlap fall back to the defaults
// when zero or inconsistent (overlap must be smaller than size).
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap <= 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}
	return &Chunker{size: size, overlap: overlap}
}

// SplitText splits text into chunks of at most size runes with the
// configured overlap between consecutive chunks. When a window contains a
// newline past the overlap region, the chunk ends after that newline so
// splits prefer line boundaries over mid-sentence cuts. Runs entirely on
// runes so multi-byte text never splits inside a character.
func (c *Chunker) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// Backtrack to the last newline that still leaves more than the
		// overlap in this chunk, so the next window starts on fresh text.
		cut := end
		for i := end - 1; i > start+c.overlap; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}

		chunks = append(chunks, string(runes[start:cut]))
		start = cut - c.overlap
	}

	return chunks
}

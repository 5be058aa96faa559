package chunking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/lexcorpus/core"
)

// DefaultMaxChars is the window width used for embedding chunks.
const DefaultMaxChars = 4000

// Split partitions text into contiguous windows of exactly maxChars code points,
// the last window possibly shorter. Whitespace-only text yields no chunks.
func Split(docID, text string, maxChars int) ([]core.Chunk, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxChars, maxChars)
	}
	if strings.TrimSpace(text) == "" {
		return []core.Chunk{}, nil
	}

	chunks := make([]core.Chunk, 0, utf8.RuneCountInString(text)/maxChars+1)
	start, count := 0, 0
	for pos := range text {
		if count == maxChars {
			chunks = append(chunks, core.Chunk{DocID: docID, Index: len(chunks), Text: text[start:pos]})
			start, count = pos, 0
		}
		count++
	}
	chunks = append(chunks, core.Chunk{DocID: docID, Index: len(chunks), Text: text[start:]})
	return chunks, nil
}

// Truncate returns the first maxChars code points of text.
// Text within the limit, or a non-positive limit, is returned unchanged.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	count := 0
	for pos := range text {
		if count == maxChars {
			return text[:pos]
		}
		count++
	}
	return text
}

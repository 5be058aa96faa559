package core

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint returns a stable content hash for text using 128-bit BLAKE2b.
// Identical text always produces the identical fingerprint.
func Fingerprint(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// CountWords returns the number of whitespace separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Document is a single extracted source document.
// The ID is the join key across every downstream stage and never changes once assigned.
type Document struct {
	ID          string `json:"id"`
	Path        string `json:"path,omitempty"`
	Words       int    `json:"words"`
	Text        string `json:"text"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// UnmarshalJSON accepts "document_id" as an alias for "id", which older
// extraction outputs used.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var aux struct {
		plain
		DocumentID string `json:"document_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Document(aux.plain)
	if d.ID == "" {
		d.ID = aux.DocumentID
	}
	return nil
}

// Chunk is a bounded slice of a document's text.
// Chunks of one document are numbered from 0 in text order.
type Chunk struct {
	DocID string
	Index int
	Text  string
}

// ID returns the item identity used for the chunk in record logs.
func (c Chunk) ID() string {
	return ChunkID(c.DocID, c.Index)
}

// ChunkID builds the identity of the chunk at index within document docID.
func ChunkID(docID string, index int) string {
	return docID + "#" + strconv.Itoa(index)
}

// EmbeddingRow is the tuple shape handed to row-store sinks and the local index.
type EmbeddingRow struct {
	DocID      string    `json:"doc_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding"`
}

// ID returns the chunk identity of the row.
func (r *EmbeddingRow) ID() string {
	return ChunkID(r.DocID, r.ChunkIndex)
}

// SearchResult is a chunk matched by similarity search.
type SearchResult struct {
	Row      *EmbeddingRow
	Score    float32
	Verbatim bool // every query term appears in the chunk content
}

// Submission records one bulk job submission made for a request file.
type Submission struct {
	Fingerprint string    `json:"fingerprint"`
	JobID       string    `json:"job_id"`
	InputFileID string    `json:"input_file_id"`
	Requests    int       `json:"requests"`
	SubmittedAt time.Time `json:"submitted_at"`
}

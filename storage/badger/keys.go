package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for different data types
const (
	chunkPrefix      = "chunk"
	chunkDimsKey     = "chunkmeta:dims"
	submissionPrefix = "batchsub"
)

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:docID\x00index, index in BigEndian so a document's chunks sort in order.
func makeChunkKey(docID string, index int) []byte {
	prefix := makePartialChunkDocKey(docID)
	buf := make([]byte, len(prefix)+4)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(index))
	return buf
}

// makePartialChunkDocKey generates the key prefix shared by all chunks of a document.
func makePartialChunkDocKey(docID string) []byte {
	return []byte(chunkPrefix + ":" + docID + "\x00")
}

// makeSubmissionKey generates a key for a bulk submission by request-set fingerprint.
func makeSubmissionKey(fingerprint string) []byte {
	return []byte(fmt.Sprintf("%s:%s", submissionPrefix, fingerprint))
}

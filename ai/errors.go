package ai

import "errors"

var (
	// ErrEmptyReply indicates the model returned no content at all.
	ErrEmptyReply = errors.New("empty model reply")

	// ErrNotObject indicates the reply parsed as JSON but is not an object.
	ErrNotObject = errors.New("reply is not a JSON object")

	// ErrSchemaViolation indicates the reply object breaks the classification schema.
	ErrSchemaViolation = errors.New("reply violates classification schema")

	// ErrRejected marks a provider failure that repeating the same request
	// cannot fix: bad credentials, unknown model, malformed or oversized input.
	ErrRejected = errors.New("request rejected by provider")

	// ErrEmptyEmbedding indicates the embedding service returned no vector, or
	// an empty one, for a text.
	ErrEmptyEmbedding = errors.New("empty embedding")
)

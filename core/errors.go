package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrEmptyID indicates an identity field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyContent indicates the text of a document is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrMissingIdentity indicates a record line carries no resolvable identity.
	ErrMissingIdentity = errors.New("record has no identity field")

	// ErrMissingEmbedding indicates an embedding record carries no vector.
	ErrMissingEmbedding = errors.New("record has no embedding")

	// ErrInvalidStatus indicates an unknown record status.
	ErrInvalidStatus = errors.New("invalid record status")
)

package extraction

import "errors"

var (
	// ErrNoDocuments indicates that a walk found no usable documents
	ErrNoDocuments = errors.New("no documents found")

	// ErrNotDOCX indicates a file that is not a Word document archive
	ErrNotDOCX = errors.New("not a docx file")

	// ErrInvalidRange indicates a filter whose bounds are inverted or negative
	ErrInvalidRange = errors.New("invalid word range")
)

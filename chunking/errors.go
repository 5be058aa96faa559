package chunking

import "errors"

// ErrInvalidMaxChars indicates a non-positive window width.
var ErrInvalidMaxChars = errors.New("maxChars must be positive")

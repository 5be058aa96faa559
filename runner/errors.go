package runner

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRetriesExhausted is returned when an item still fails after the last attempt.
	// The final call error is wrapped alongside it.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrInvalidConfig indicates a runner configuration value out of range.
	ErrInvalidConfig = errors.New("invalid runner config")

	// ErrNoRecord is returned when a processor reports success without a record.
	ErrNoRecord = errors.New("processor returned no record")
)

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Text must not be empty
//   - Words must not be negative
//
// NOT validated:
//   - Fingerprint (absent for documents produced by older extractors)
//   - Path
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}
	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	if doc.Words < 0 {
		return fmt.Errorf("%w: negative word count %d", ErrInvalidDocument, doc.Words)
	}
	return nil
}

// ValidateRecord validates a Record before it is committed to a log.
func ValidateRecord(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyID)
	}
	if err := ValidateStatus(rec.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// ValidateStatus validates that a RecordStatus has a known value.
func ValidateStatus(status RecordStatus) error {
	if status != StatusOK && status != StatusParseError {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

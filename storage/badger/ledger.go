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


package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

// SubmissionLedger implements storage.SubmissionLedger for BadgerDB.
type SubmissionLedger struct {
	backend *Backend
}

var _ storage.SubmissionLedger = (*SubmissionLedger)(nil)

// NewSubmissionLedger creates a new SubmissionLedger.
func NewSubmissionLedger(backend *Backend) *SubmissionLedger {
	return &SubmissionLedger{
		backend: backend,
	}
}

// RecordSubmission persists a submission under its fingerprint, replacing any earlier one.
func (r *SubmissionLedger) RecordSubmission(ctx context.Context, sub *core.Submission) error {
	if sub == nil || sub.Fingerprint == "" {
		return fmt.Errorf("%w: submission fingerprint is required", storage.ErrInvalidQuery)
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if sub.SubmittedAt.IsZero() {
			sub.SubmittedAt = time.Now().UTC()
		}
		value, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		if err := tx.Set(makeSubmissionKey(sub.Fingerprint), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindSubmission retrieves the submission for a fingerprint.
// Returns nil, nil if none was recorded.
func (r *SubmissionLedger) FindSubmission(ctx context.Context, fingerprint string) (*core.Submission, error) {
	var sub *core.Submission
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSubmissionKey(fingerprint))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			sub = &core.Submission{}
			return json.Unmarshal(val, sub)
		})
	}, false)

	return sub, err
}

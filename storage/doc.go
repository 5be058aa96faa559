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


// Package storage defines the persistence contracts of lexcorpus.
//
// Three kinds of storage back the pipeline:
//
//   - RecordLog: the append-only JSONL log that the runner writes and resumes
//     from (package storage/jsonl). Membership of an id in the log is the
//     resume checkpoint.
//   - RowSink: the Postgres table that embedding rows are imported into
//     (package storage/postgres).
//   - ChunkIndex and SubmissionLedger: local BadgerDB state for similarity
//     search and for remembering bulk submissions (package storage/badger).
//
// # Usage
//
//	log, err := jsonl.OpenRecordLog("classification_results.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer log.Close()
//
//	done, err := log.ProcessedIDs(ctx)
//
// Use in tests with in-memory storage:
//
//	index, ledger, backend, err := badger.NewMemoryStores()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage

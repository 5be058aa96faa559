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


// Package runner drives a collection of items through a per-item external call and
// commits one record per item to an append-only log, so an interrupted run can be
// restarted and will only do the remaining work.
//
// The log is the checkpoint. On start the runner reads every id already present,
// skips those items, and processes the rest. A record is appended and synced
// before the item counts as done; an item interrupted before that point is simply
// processed again on the next run.
//
// Call failures are retried with a fixed delay up to a configurable attempt
// ceiling. Replies that cannot be parsed are not retried: processors turn them into
// parse_error records that keep the raw reply.
//
// By default items are processed one at a time. With Concurrency > 1 calls run on
// an ants worker pool while appends stay serialized.
package runner

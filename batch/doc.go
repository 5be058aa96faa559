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


// Package batch submits many classification requests as one asynchronous job on
// the provider side and brings the results back into a record log.
//
// A Manager uploads a JSONL request file, creates a job over it and then only
// observes: the provider moves the job through its states and the manager polls.
// Submitting is not idempotent. Each Submit creates a new job, so callers that
// must not pay for the same request set twice check PreviousSubmission first.
package batch

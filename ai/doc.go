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


// Package ai provides abstractions for the external model services used by lexcorpus.
//
// The rest of the module depends only on the interfaces declared here, never on a
// concrete client, so the runner and batch manager can be driven by test doubles.
//
// # Interfaces
//
//   - Classifier: sends one document to a chat model and returns the raw reply
//   - Embedder: generates vector embeddings from text
//   - BatchService: uploads request files and tracks bulk asynchronous jobs
//   - AIProvider: aggregates the services behind one configuration
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible implementations (langchaingo and go-openai)
//   - ai/mock: deterministic test doubles
//
// Parsing model replies is not a transport concern and lives here:
// ParseClassification turns a raw classifier reply into a core.Record, degrading to a
// parse_error record instead of failing.
package ai

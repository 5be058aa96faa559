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


// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let the runner, batch manager and searcher be tested without an external
// service, with deterministic and controllable behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	raw, err := provider.Classifier().Classify(ctx, "doc-1", "texto")
//
//	// Custom behavior injection
//	classifier := mock.NewMockClassifier()
//	classifier.ClassifyFunc = func(ctx context.Context, id, text string) (string, error) {
//	    return "", errors.New("503 service unavailable")
//	}
//
//	// Check call counts
//	count := classifier.CallCount()
//
// # Default Behavior
//
//   - MockClassifier: returns a fixed, schema-valid classification echoing the id
//   - MockEmbedder: returns deterministic vectors based on text hash
//   - MockBatchService: keeps uploaded files and jobs in memory; jobs advance only
//     when a test calls Complete or SetStatus
//   - MockProvider: aggregates the three mocks
package mock

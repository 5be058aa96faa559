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


package mock

import "github.com/poiesic/lexcorpus/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock classifier, embedder and batch service instances.
type MockProvider struct {
	classifier *MockClassifier
	embedder   *MockEmbedder
	batches    *MockBatchService
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use the GetMock accessors to reach the concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		classifier: NewMockClassifier(),
		embedder:   NewMockEmbedder(),
		batches:    NewMockBatchService(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(classifier *MockClassifier, embedder *MockEmbedder, batches *MockBatchService) ai.AIProvider {
	return &MockProvider{
		classifier: classifier,
		embedder:   embedder,
		batches:    batches,
	}
}

// Classifier returns the mock classifier.
func (p *MockProvider) Classifier() ai.Classifier {
	return p.classifier
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Batches returns the mock batch service.
func (p *MockProvider) Batches() ai.BatchService {
	return p.batches
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockClassifier returns the underlying mock classifier for test assertions.
func (p *MockProvider) GetMockClassifier() *MockClassifier {
	return p.classifier
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockBatches returns the underlying mock batch service for test assertions.
func (p *MockProvider) GetMockBatches() *MockBatchService {
	return p.batches
}

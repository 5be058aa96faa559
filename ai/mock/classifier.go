package mock

import (
	"context"
	"fmt"
	"sync"
)

// MockClassifier is a test double for ai.Classifier.
// It allows custom behavior injection via function fields.
type MockClassifier struct {
	// ClassifyFunc is called by Classify if set.
	// If nil, returns DefaultReply for the id.
	ClassifyFunc func(ctx context.Context, id, text string) (string, error)

	mu        sync.Mutex
	callCount int
	calls     []string
}

// NewMockClassifier creates a mock classifier with default deterministic behavior.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// DefaultReply is the reply the mock classifier gives when no func is injected.
func DefaultReply(id string) string {
	return fmt.Sprintf(`{"id":%q,"tipo_documento":"outro","area_direito":"civil","modelo_ou_peca_real":"modelo","qualidade_clareza":7,"qualidade_estrutura":6,"risco":2,"resumo":"documento de teste"}`, id)
}

// Classify records the call and returns the injected or default reply.
func (m *MockClassifier) Classify(ctx context.Context, id, text string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, id)
	fn := m.ClassifyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, id, text)
	}
	return DefaultReply(id), nil
}

// CallCount returns the number of times Classify was called.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns the ids passed to Classify in call order.
func (m *MockClassifier) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Reset clears the call history and any injected behavior.
func (m *MockClassifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.calls = nil
	m.ClassifyFunc = nil
}

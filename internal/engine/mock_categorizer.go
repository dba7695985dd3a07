package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

// MockCategorizer is a test implementation of the Categorizer interface.
// Results are looked up by description; unknown descriptions fall back.
type MockCategorizer struct {
	Results map[string]model.Categorization
	calls   []string
	mu      sync.Mutex
}

// NewMockCategorizer creates a mock with the given canned results.
func NewMockCategorizer(results map[string]model.Categorization) *MockCategorizer {
	if results == nil {
		results = make(map[string]model.Categorization)
	}
	return &MockCategorizer{Results: results}
}

// Categorize records the call and returns the canned result.
func (m *MockCategorizer) Categorize(_ context.Context, description string, _ float64, _ model.TransactionType) model.Categorization {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, description)
	if result, ok := m.Results[description]; ok {
		return result
	}
	return model.FallbackCategorization()
}

// Calls returns the descriptions categorized so far, in order.
func (m *MockCategorizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

package llm

import (
	"context"
	"sync"
)

// mockClient is a function-field Client for tests.
type mockClient struct {
	generateFn func(ctx context.Context, req Request) (string, error)
	requests   []Request
	mu         sync.Mutex
}

func (m *mockClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.generateFn(ctx, req)
}

func (m *mockClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func replyWith(text string) *mockClient {
	return &mockClient{
		generateFn: func(context.Context, Request) (string, error) { return text, nil },
	}
}

func failWith(err error) *mockClient {
	return &mockClient{
		generateFn: func(context.Context, Request) (string, error) { return "", err },
	}
}

package analysis

import (
	"context"

	"github.com/Veraticus/spice-dashboard/internal/llm"
)

type mockClient struct {
	generateFn func(ctx context.Context, req llm.Request) (string, error)
	requests   []llm.Request
}

func (m *mockClient) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	m.requests = append(m.requests, req)
	return m.generateFn(ctx, req)
}

func replyWith(text string) *mockClient {
	return &mockClient{generateFn: func(context.Context, llm.Request) (string, error) {
		return text, nil
	}}
}

func failWith(err error) *mockClient {
	return &mockClient{generateFn: func(context.Context, llm.Request) (string, error) {
		return "", err
	}}
}

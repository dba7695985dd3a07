package llm

import (
	"context"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/service"
)

type retryingClient struct {
	next Client
	opts service.RetryOptions
}

// WithRetry decorates a client so failed calls are retried with backoff.
// The categorizer does not use it; it makes exactly one call per transaction.
func WithRetry(client Client, opts service.RetryOptions) Client {
	if client == nil {
		return nil
	}
	return &retryingClient{next: client, opts: opts}
}

func (c *retryingClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	var text string
	err := common.WithRetry(ctx, func() error {
		var err error
		text, err = c.next.GenerateJSON(ctx, req)
		return err
	}, c.opts)
	return text, err
}

package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Pacer spaces successive calls at least interval apart. The first call
// never waits. A Pacer is meant to live for one batch.
type Pacer struct {
	last     time.Time
	interval time.Duration
	mu       sync.Mutex
}

// NewPacer creates a pacer. A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until the interval since the previous call has elapsed or the
// context is canceled.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interval > 0 && !p.last.IsZero() {
		if remaining := p.interval - time.Since(p.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return fmt.Errorf("pacer canceled: %w", ctx.Err())
			case <-timer.C:
			}
		}
	}

	p.last = time.Now()
	return nil
}

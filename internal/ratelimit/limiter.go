// Package ratelimit provides the token bucket shared by the outbound clients
// (language model and dataset catalogs).
package ratelimit

import (
	"context"
	"time"
)

// Limiter blocks until one request may proceed.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// Bucket throttles to at most rps events per second with a burst capacity.
// A nil *Bucket is valid and never blocks.
type Bucket struct {
	tokens chan struct{}
	stopCh chan struct{}
}

// New returns nil when rps <= 0, which disables limiting.
func New(rps float64, burst int) *Bucket {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	b := &Bucket{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		b.tokens <- struct{}{}
	}

	// Fractional rates give sub-second periods (1.5 rps ≈ 666ms).
	period := time.Duration(float64(time.Second) / rps)
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case b.tokens <- struct{}{}:
				default:
					// bucket full
				}
			case <-b.stopCh:
				return
			}
		}
	}()
	return b
}

// Acquire blocks until a token is available or ctx is done.
func (b *Bucket) Acquire(ctx context.Context) error {
	if b == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopCh:
		return context.Canceled
	case <-b.tokens:
		return nil
	}
}

// Stop terminates the refill goroutine. Pending and later Acquire calls fail.
func (b *Bucket) Stop() {
	if b == nil {
		return
	}
	close(b.stopCh)
}

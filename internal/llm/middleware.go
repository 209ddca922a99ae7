package llm

import (
	"context"
	"log"

	"datascout/internal/ratelimit"
	"datascout/internal/retry"
)

// Middleware decorates a Client to inject cross-cutting concerns.
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate limiting --------

// RateLimit limits request rate. If rps <= 0, the limiter is disabled.
// Close stops the limiter and closes the wrapped client.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		b := ratelimit.New(rps, burst)
		if b == nil {
			return next
		}
		return &rateLimited{next: next, rl: b}
	}
}

type rateLimited struct {
	next Client
	rl   *ratelimit.Bucket
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}
func (c *rateLimited) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.GenerateText(ctx, prompt)
}

// -------- Retry --------

// Retry retries GenerateText with exponential backoff. Permanent errors and
// context cancellation stop immediately.
func Retry(p retry.Policy) Middleware {
	return func(next Client) Client {
		return &retrying{next: next, policy: p}
	}
}

type retrying struct {
	next   Client
	policy retry.Policy
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }
func (r *retrying) GenerateText(ctx context.Context, prompt string) (string, error) {
	var out string
	err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
		txt, err := r.next.GenerateText(ctx, prompt)
		if err != nil {
			return err
		}
		out = txt
		return nil
	})
	return out, err
}

// -------- Logging --------

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateText(ctx context.Context, prompt string) (string, error) {
	l.log.Printf("LLM request (%s, %s): %d bytes", l.next.Name(), PhaseFrom(ctx), len(prompt))
	out, err := l.next.GenerateText(ctx, prompt)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", PhaseFrom(ctx), err)
		return out, err
	}
	l.log.Printf("LLM response (%s): %d bytes", PhaseFrom(ctx), len(out))
	return out, nil
}

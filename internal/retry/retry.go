// Package retry holds the bounded exponential backoff loop used by the
// outbound client middlewares.
package retry

import (
	"context"
	"errors"
	"time"
)

// PermanentError marks an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// Policy is attempts with a delay of base * 2^attempt between them.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 300 * time.Millisecond
	}
	return p
}

// Do runs fn until it succeeds, returns a permanent error, the attempts are
// exhausted, or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	p = p.normalized()
	var last error
	for i := 0; i < p.MaxAttempts; i++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		last = err
		if i == p.MaxAttempts-1 {
			break
		}
		timer := time.NewTimer(p.BaseDelay * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return last
}

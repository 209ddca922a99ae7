package search

import (
	"context"
	"log"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"datascout/internal/ratelimit"
	"datascout/internal/retry"
	"datascout/internal/types"
)

// -------- Retry --------

// Retry retries failed searches with exponential backoff. Permanent errors
// (bad credentials, malformed responses) are returned immediately.
func Retry(p retry.Policy) Middleware {
	return func(next Searcher) Searcher {
		return &retrying{next: next, policy: p}
	}
}

type retrying struct {
	next   Searcher
	policy retry.Policy
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Search(ctx context.Context, query string) ([]types.Resource, error) {
	var out []types.Resource
	err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
		res, err := r.next.Search(ctx, query)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// -------- Rate limiting --------

// RateLimit makes every call, including retries, take a token from l.
func RateLimit(l ratelimit.Limiter) Middleware {
	return func(next Searcher) Searcher {
		if l == nil {
			return next
		}
		return &rateLimited{next: next, l: l}
	}
}

type rateLimited struct {
	next Searcher
	l    ratelimit.Limiter
}

func (r *rateLimited) Name() string { return r.next.Name() }
func (r *rateLimited) Search(ctx context.Context, query string) ([]types.Resource, error) {
	if err := r.l.Acquire(ctx); err != nil {
		return nil, err
	}
	return r.next.Search(ctx, query)
}

// -------- Caching --------

// Cache memoises successful results per normalised query. Concurrent lookups
// of the same query share one upstream call. size <= 0 disables caching.
func Cache(size int) Middleware {
	return CacheWithTimeout(size, 0)
}

// CacheWithTimeout is Cache whose shared upstream call runs detached from any
// single caller and is bounded by timeout instead (0 means unbounded). Each
// caller still stops waiting when its own ctx is done.
func CacheWithTimeout(size int, timeout time.Duration) Middleware {
	return func(next Searcher) Searcher {
		if size <= 0 {
			return next
		}
		c, err := lru.New[string, []types.Resource](size)
		if err != nil {
			return next
		}
		return &cached{next: next, lru: c, timeout: timeout}
	}
}

type cached struct {
	next    Searcher
	lru     *lru.Cache[string, []types.Resource]
	group   singleflight.Group
	timeout time.Duration
}

func (c *cached) Name() string { return c.next.Name() }

func (c *cached) Search(ctx context.Context, query string) ([]types.Resource, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if res, ok := c.lru.Get(key); ok {
		return cloneResources(res), nil
	}
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		callCtx := shared
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(shared, c.timeout)
			defer cancel()
		}
		res, err := c.next.Search(callCtx, query)
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, res)
		return res, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return cloneResources(r.Val.([]types.Resource)), nil
	}
}

func cloneResources(in []types.Resource) []types.Resource {
	return append([]types.Resource(nil), in...)
}

// -------- Logging --------

// WithLogging logs every search and its outcome. nil uses log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Searcher) Searcher {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Searcher
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Search(ctx context.Context, query string) ([]types.Resource, error) {
	res, err := l.next.Search(ctx, query)
	if err != nil {
		l.log.Printf("search error (%s) %q: %v", l.next.Name(), query, err)
		return res, err
	}
	l.log.Printf("search (%s) %q: %d results", l.next.Name(), query, len(res))
	return res, nil
}

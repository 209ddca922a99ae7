// Package search fronts the external dataset catalogs. Catalog clients only
// perform the HTTP call; retries, rate limiting, caching and logging are
// layered on with Middleware.
package search

import (
	"context"
	"errors"

	"datascout/internal/types"
)

var (
	ErrUnauthorized = errors.New("search: catalog rejected credentials")
	ErrRateLimited  = errors.New("search: catalog rate limit exceeded")
)

// Searcher returns candidate resources for a free-text query. Results are
// ordered best first; the caller decides how many to keep.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]types.Resource, error)
}

// Middleware decorates a Searcher with a cross-cutting concern.
type Middleware func(Searcher) Searcher

// Wrap applies middlewares in left-to-right order: Wrap(s, A, B) => A(B(s)).
func Wrap(inner Searcher, mws ...Middleware) Searcher {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// Func adapts a plain function, mostly for tests and stubs.
type Func func(ctx context.Context, query string) ([]types.Resource, error)

func (f Func) Name() string { return "func" }
func (f Func) Search(ctx context.Context, query string) ([]types.Resource, error) {
	return f(ctx, query)
}

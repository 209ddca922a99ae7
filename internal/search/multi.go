package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"datascout/internal/types"
)

// Multi queries every catalog concurrently and interleaves their results
// round-robin: first hit of each catalog, then the second, and so on. With a
// per-keyword cap of 1 only the first catalog contributes; raise the cap to
// pull from the others.
//
// Multi fails only when every catalog fails; partial failures are dropped.
func Multi(searchers ...Searcher) Searcher {
	if len(searchers) == 1 {
		return searchers[0]
	}
	return &multi{searchers: searchers}
}

type multi struct {
	searchers []Searcher
}

func (m *multi) Name() string {
	names := make([]string, 0, len(m.searchers))
	for _, s := range m.searchers {
		names = append(names, s.Name())
	}
	return strings.Join(names, "+")
}

func (m *multi) Search(ctx context.Context, query string) ([]types.Resource, error) {
	results := make([][]types.Resource, len(m.searchers))
	errs := make([]error, len(m.searchers))
	var wg sync.WaitGroup
	for i, s := range m.searchers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Search(ctx, query)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.Name(), err)
				return
			}
			results[i] = res
		}()
	}
	wg.Wait()

	// lists keep catalog order so interleaving does not depend on timing
	lists := make([][]types.Resource, 0, len(m.searchers))
	var failed []error
	for i := range m.searchers {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		lists = append(lists, results[i])
	}
	if len(failed) == len(m.searchers) && len(failed) > 0 {
		return nil, errors.Join(failed...)
	}
	return interleave(lists), nil
}

func interleave(lists [][]types.Resource) []types.Resource {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]types.Resource, 0, total)
	for i := 0; len(out) < total; i++ {
		for _, l := range lists {
			if i < len(l) {
				out = append(out, l[i])
			}
		}
	}
	return out
}

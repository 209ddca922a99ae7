// Package aggregate drives one catalog search per use-case keyword and folds
// the hits into one de-duplicated report row per (title, description) group.
package aggregate

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"datascout/internal/types"
)

const DefaultMaxResultsPerKeyword = 1

// Searcher is the catalog capability the engine depends on.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.Resource, error)
}

type Config struct {
	// MaxResultsPerKeyword caps how many hits of each search are kept. <= 0 means 1.
	MaxResultsPerKeyword int
	// Workers bounds concurrent searches. <= 1 searches sequentially.
	Workers int
	// SearchTimeout bounds one keyword search including any retries the
	// searcher performs. 0 disables it.
	SearchTimeout time.Duration
}

type Engine struct {
	search Searcher
	cfg    Config
	log    *log.Logger
}

func NewEngine(search Searcher, cfg Config, logger *log.Logger) *Engine {
	if cfg.MaxResultsPerKeyword <= 0 {
		cfg.MaxResultsPerKeyword = DefaultMaxResultsPerKeyword
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{search: search, cfg: cfg, log: logger}
}

// Stats summarises one Aggregate call for operators.
type Stats struct {
	UseCases         int
	KeywordsSearched int
	SearchFailures   int
	ResourcesFound   int // hits kept after capping, before de-duplication
	Rows             int
}

// Hit is one accumulated (use case, keyword, resource) tuple.
type Hit struct {
	Key      types.GroupKey
	Keyword  string
	Resource types.Resource
}

// Aggregate searches every keyword of every use case and groups the hits.
// A failed search counts as zero results. Rows come out in order of first
// appearance of their key among useCases; groups without hits are dropped.
// The only error is ctx cancellation.
func (e *Engine) Aggregate(ctx context.Context, useCases []types.UseCase) ([]types.AggregatedRow, Stats, error) {
	stats := Stats{UseCases: len(useCases)}

	// slots[i][j] holds the capped hits of keyword j of use case i, so the
	// fold below never depends on search completion order.
	slots := make([][][]types.Resource, len(useCases))
	var failures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, uc := range useCases {
		slots[i] = make([][]types.Resource, len(uc.Keywords))
		for j, kw := range uc.Keywords {
			stats.KeywordsSearched++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, ok := e.searchKeyword(gctx, uc.Title, kw)
				if !ok {
					failures.Add(1)
				}
				slots[i][j] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	stats.SearchFailures = int(failures.Load())

	var hits []Hit
	for i, uc := range useCases {
		for j, kw := range uc.Keywords {
			for _, r := range slots[i][j] {
				hits = append(hits, Hit{Key: uc.Key(), Keyword: kw, Resource: r})
			}
		}
	}
	stats.ResourcesFound = len(hits)

	rows := Group(useCases, hits)
	stats.Rows = len(rows)
	return rows, stats, nil
}

// searchKeyword is the failure boundary: any search error becomes an empty
// result so one bad keyword never aborts the rest.
func (e *Engine) searchKeyword(ctx context.Context, title, keyword string) ([]types.Resource, bool) {
	if e.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.SearchTimeout)
		defer cancel()
	}
	res, err := e.search.Search(ctx, keyword)
	if err != nil {
		e.log.Printf("aggregate: search %q for %q failed, treating as no results: %v", keyword, title, err)
		return nil, false
	}
	if len(res) > e.cfg.MaxResultsPerKeyword {
		res = res[:e.cfg.MaxResultsPerKeyword]
	}
	return res, true
}

type group struct {
	key       types.GroupKey
	keywords  map[string]struct{}
	names     map[string]struct{}
	links     map[string]struct{}
	sources   map[string]struct{}
	resources int
}

func newGroup(key types.GroupKey) *group {
	return &group{
		key:      key,
		keywords: map[string]struct{}{},
		names:    map[string]struct{}{},
		links:    map[string]struct{}{},
		sources:  map[string]struct{}{},
	}
}

// Group folds hits into rows. Group order and the keyword sets come from
// useCases; the resource sets come from hits. Each field is an independent
// sorted set, so the output does not depend on the order of hits.
func Group(useCases []types.UseCase, hits []Hit) []types.AggregatedRow {
	var order []*group
	byKey := map[types.GroupKey]*group{}
	for _, uc := range useCases {
		g, ok := byKey[uc.Key()]
		if !ok {
			g = newGroup(uc.Key())
			byKey[uc.Key()] = g
			order = append(order, g)
		}
		for _, kw := range uc.Keywords {
			g.keywords[kw] = struct{}{}
		}
	}
	for _, h := range hits {
		g, ok := byKey[h.Key]
		if !ok {
			// Hits for keys outside useCases still form a group, after the known ones.
			g = newGroup(h.Key)
			byKey[h.Key] = g
			order = append(order, g)
		}
		g.keywords[h.Keyword] = struct{}{}
		g.names[h.Resource.Name] = struct{}{}
		g.links[h.Resource.URL] = struct{}{}
		g.sources[h.Resource.Source] = struct{}{}
		g.resources++
	}

	rows := make([]types.AggregatedRow, 0, len(order))
	for _, g := range order {
		if g.resources == 0 {
			continue
		}
		rows = append(rows, types.AggregatedRow{
			Title:        g.key.Title,
			Description:  g.key.Description,
			Keywords:     joinSorted(g.keywords),
			DatasetNames: joinSorted(g.names),
			DatasetLinks: joinSorted(g.links),
			Sources:      joinSorted(g.sources),
		})
	}
	return rows
}

func joinSorted(set map[string]struct{}) string {
	vals := make([]string, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return strings.Join(vals, ", ")
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"datascout/internal/aggregate"
	"datascout/internal/artifact"
	"datascout/internal/report"
	"datascout/internal/usecase"
)

// Collect parses keywords.txt, searches the catalogs and saves resource_links.csv.
type Collect struct {
	Store       artifact.Store
	Engine      *aggregate.Engine
	MaxKeywords int
	Log         *log.Logger
}

type CollectResult struct {
	Parse     usecase.Stats
	Aggregate aggregate.Stats
	// Empty is set when no resource was found; the report then holds only the header.
	Empty bool
}

func (r CollectResult) String() string {
	return fmt.Sprintf("%d use cases (%d blocks skipped), %d keywords searched, %d search failures, %d resources, %d rows",
		r.Parse.UseCases, r.Parse.SkippedBlocks, r.Aggregate.KeywordsSearched,
		r.Aggregate.SearchFailures, r.Aggregate.ResourcesFound, r.Aggregate.Rows)
}

func (c *Collect) Run(ctx context.Context, runID string) (CollectResult, error) {
	lg := logger(c.Log)
	raw, err := c.Store.Get(ctx, runID, artifact.Keywords)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return CollectResult{}, fmt.Errorf("collect: %s not found for run %s, run generate first", artifact.Keywords, runID)
		}
		return CollectResult{}, fmt.Errorf("collect: read %s: %w", artifact.Keywords, err)
	}

	var res CollectResult
	useCases, ps := usecase.Parse(string(raw), usecase.Options{MaxKeywords: c.MaxKeywords})
	res.Parse = ps
	lg.Printf("collect: parsed %d use cases from %d blocks (%d skipped)", ps.UseCases, ps.Blocks, ps.SkippedBlocks)
	if len(useCases) == 0 {
		lg.Printf("collect: no use cases found in %s", artifact.Keywords)
	}

	rows, as, err := c.Engine.Aggregate(ctx, useCases)
	res.Aggregate = as
	if err != nil {
		return res, fmt.Errorf("collect: %w", err)
	}
	if len(rows) == 0 {
		res.Empty = true
		lg.Printf("collect: no resources found, writing header-only report")
	}
	if err := report.Save(ctx, c.Store, runID, rows); err != nil {
		return res, fmt.Errorf("collect: save report: %w", err)
	}
	lg.Printf("collect: %s", res)
	return res, nil
}

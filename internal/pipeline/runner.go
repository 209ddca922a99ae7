package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

const (
	StageScrape   = "scrape"
	StageGenerate = "generate"
	StageCollect  = "collect"
)

type StageResult struct {
	Stage  string
	OK     bool
	Err    error
	Detail string
}

type RunReport struct {
	URL    string
	RunID  string
	Stages []StageResult
}

// OK reports whether every stage that ran succeeded.
func (r RunReport) OK() bool {
	for _, s := range r.Stages {
		if !s.OK {
			return false
		}
	}
	return len(r.Stages) > 0
}

// Runner chains scrape, generate and collect for each URL.
type Runner struct {
	Scrape   *Scrape
	Generate *Generate
	Collect  *Collect
	Log      *log.Logger
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string { return uuid.NewString() }

// RunIDFor derives the run ID of the i-th of n URLs. A supplied base is used
// as-is for a single URL and suffixed with the 1-based index otherwise.
func RunIDFor(base string, i, n int) string {
	base = strings.TrimSpace(base)
	switch {
	case base == "":
		return NewRunID()
	case n <= 1:
		return base
	default:
		return fmt.Sprintf("%s-%d", base, i+1)
	}
}

// Run processes urls in order. A failing stage skips the remaining stages of
// that URL only. Cancellation stops before the next URL.
func (r *Runner) Run(ctx context.Context, urls []string, runID string) []RunReport {
	lg := logger(r.Log)
	reports := make([]RunReport, 0, len(urls))
	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}
		rep := RunReport{URL: u, RunID: RunIDFor(runID, i, len(urls))}
		lg.Printf("run %s: %s", rep.RunID, u)
		r.runOne(ctx, &rep)
		reports = append(reports, rep)
	}
	return reports
}

func (r *Runner) runOne(ctx context.Context, rep *RunReport) {
	steps := []struct {
		stage string
		fn    func() (string, error)
	}{
		{StageScrape, func() (string, error) {
			n, err := r.Scrape.Run(ctx, rep.RunID, rep.URL)
			return fmt.Sprintf("%d bytes extracted", n), err
		}},
		{StageGenerate, func() (string, error) {
			res, err := r.Generate.Run(ctx, rep.RunID)
			return fmt.Sprintf("company %q", res.CompanyName), err
		}},
		{StageCollect, func() (string, error) {
			res, err := r.Collect.Run(ctx, rep.RunID)
			detail := res.String()
			if res.Empty {
				detail = "no resources found; " + detail
			}
			return detail, err
		}},
	}
	for _, st := range steps {
		detail, err := st.fn()
		if err != nil {
			rep.Stages = append(rep.Stages, StageResult{Stage: st.stage, Err: err})
			logger(r.Log).Printf("run %s: %s failed: %v", rep.RunID, st.stage, err)
			return
		}
		rep.Stages = append(rep.Stages, StageResult{Stage: st.stage, OK: true, Detail: detail})
	}
}

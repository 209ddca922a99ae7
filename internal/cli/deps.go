package cli

import (
	"context"
	"fmt"
	"net/http"

	"datascout/internal/aggregate"
	"datascout/internal/artifact"
	"datascout/internal/config"
	"datascout/internal/llm"
	"datascout/internal/pipeline"
	"datascout/internal/ratelimit"
	"datascout/internal/retry"
	"datascout/internal/scrape"
	"datascout/internal/search"
)

// deps are the long-lived collaborators of one command invocation.
type deps struct {
	store    artifact.Store
	closers  []func() error
	runner   *pipeline.Runner
	llm      llm.Client
	limiters []*ratelimit.Bucket
}

func (d *deps) Close() error {
	for _, b := range d.limiters {
		b.Stop()
	}
	var first error
	if d.llm != nil {
		first = d.llm.Close()
	}
	for _, c := range d.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type stages struct {
	scrape, generate, collect bool
}

// build opens the artifact store and the clients needed by the requested stages.
func (o *options) build(ctx context.Context, need stages) (*deps, error) {
	cfg := o.cfg
	store, closeStore, err := artifact.Open(cfg.ArtifactStore())
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	d := &deps{store: store, closers: []func() error{closeStore}}
	d.runner = &pipeline.Runner{Log: o.log}

	if need.scrape {
		d.runner.Scrape = &pipeline.Scrape{Fetcher: newFetcher(cfg), Store: store, Log: o.log}
	}
	if need.generate {
		cli, err := newLLM(ctx, cfg, o)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		d.llm = cli
		d.runner.Generate = &pipeline.Generate{LLM: cli, Store: store, Log: o.log}
	}
	if need.collect {
		s, err := d.newSearcher(cfg, o)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		engine := aggregate.NewEngine(s, aggregate.Config{
			MaxResultsPerKeyword: cfg.Search.MaxResultsPerKeyword,
			Workers:              cfg.Search.Workers,
			SearchTimeout:        cfg.Search.KeywordDeadline(),
		}, o.log)
		d.runner.Collect = &pipeline.Collect{
			Store:       store,
			Engine:      engine,
			MaxKeywords: cfg.Search.MaxKeywordsPerUseCase,
			Log:         o.log,
		}
	}
	return d, nil
}

func newFetcher(cfg *config.Config) scrape.Fetcher {
	hc := &http.Client{Timeout: cfg.Scrape.Timeout}
	if cfg.Scrape.Reader == config.ReaderDirect {
		return &scrape.DirectFetcher{HTTPClient: hc}
	}
	return &scrape.JinaReader{BaseURL: cfg.Scrape.JinaBaseURL, APIKey: cfg.Scrape.JinaAPIKey, HTTPClient: hc}
}

func newLLM(ctx context.Context, cfg *config.Config, o *options) (llm.Client, error) {
	var inner llm.Client
	switch cfg.LLM.Provider {
	case config.ProviderFake:
		inner = llm.NewFakeClient()
	default:
		g, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature)
		if err != nil {
			return nil, fmt.Errorf("llm: %w (set GEMINI_API_KEY or use --fake-llm)", err)
		}
		inner = g
	}
	return llm.Wrap(inner,
		llm.WithLogging(o.log),
		llm.Retry(retry.Policy{MaxAttempts: cfg.LLM.MaxAttempts}),
		llm.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
	), nil
}

// newSearcher gives every catalog its own retry and rate limit, then fans out
// through Multi behind a shared cache. search.timeout bounds one HTTP attempt;
// the engine and cache use the longer keyword deadline so retries can run.
func (d *deps) newSearcher(cfg *config.Config, o *options) (search.Searcher, error) {
	hc := &http.Client{Timeout: cfg.Search.Timeout}
	policy := retry.Policy{MaxAttempts: cfg.Search.MaxAttempts, BaseDelay: cfg.Search.BaseDelay}

	var sources []search.Searcher
	for _, name := range cfg.Search.Sources {
		var src search.Searcher
		switch name {
		case config.SourceKaggle:
			k, err := search.NewKaggleClient(search.KaggleConfig{
				BaseURL:    cfg.Kaggle.BaseURL,
				Username:   cfg.Kaggle.Username,
				Key:        cfg.Kaggle.Key,
				HTTPClient: hc,
			})
			if err != nil {
				return nil, fmt.Errorf("%w (set KAGGLE_USERNAME/KAGGLE_KEY or ~/.kaggle/kaggle.json)", err)
			}
			src = k
		case config.SourceHuggingFace:
			src = search.NewHuggingFaceClient(search.HuggingFaceConfig{
				BaseURL:    cfg.HuggingFace.BaseURL,
				Token:      cfg.HuggingFace.Token,
				HTTPClient: hc,
			})
		default:
			return nil, fmt.Errorf("unknown search source %q", name)
		}
		mws := []search.Middleware{search.Retry(policy)}
		if b := ratelimit.New(cfg.Search.RPS, cfg.Search.Burst); b != nil {
			d.limiters = append(d.limiters, b)
			mws = append(mws, search.RateLimit(b))
		}
		sources = append(sources, search.Wrap(src, mws...))
	}
	return search.Wrap(search.Multi(sources...),
		search.WithLogging(o.log),
		search.CacheWithTimeout(cfg.Search.CacheSize, cfg.Search.KeywordDeadline()),
	), nil
}

package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"datascout/internal/artifact"
	"datascout/internal/scrape"
)

// Scrape fetches a page and stores its readable text as extracted_text.txt.
type Scrape struct {
	Fetcher scrape.Fetcher
	Store   artifact.Store
	Log     *log.Logger
}

// Run returns the number of bytes written. On failure nothing is stored.
func (s *Scrape) Run(ctx context.Context, runID, pageURL string) (int, error) {
	text, err := s.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return 0, fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	text = strings.TrimSpace(text)
	if err := s.Store.Put(ctx, runID, artifact.ExtractedText, []byte(text)); err != nil {
		return 0, fmt.Errorf("scrape: write %s: %w", artifact.ExtractedText, err)
	}
	logger(s.Log).Printf("scrape: %s -> %s (%d bytes)", pageURL, artifact.ExtractedText, len(text))
	return len(text), nil
}

func logger(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

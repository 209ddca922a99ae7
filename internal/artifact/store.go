// Package artifact persists the hand-off files exchanged between pipeline
// stages, keyed by run ID and artifact name.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Artifact names exchanged by the stages.
const (
	ExtractedText = "extracted_text.txt"
	UseCases      = "use_cases.txt"
	Keywords      = "keywords.txt"
	ResearchBrief = "research_brief.txt"
	ResourceLinks = "resource_links.csv"
)

// Store defines operations for persisting run artifacts.
type Store interface {
	Put(ctx context.Context, runID, name string, content []byte) error
	Get(ctx context.Context, runID, name string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}

var ErrNotFound = errors.New("artifact not found")

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend     string
	Dir         string
	S3          S3Config
	PostgresDSN string
}

// Open builds the store selected by cfg.Backend. The returned close func
// releases backend resources and is never nil.
func Open(cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		s, err := NewFileStore(cfg.Dir)
		return s, noop, err
	case BackendMemory:
		return NewMemoryStore(), noop, nil
	case BackendS3:
		s, err := NewS3Store(cfg.S3)
		return s, noop, err
	case BackendPostgres:
		s, err := OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
}

func normalizeKey(runID, name string) (string, string, error) {
	runID = strings.TrimSpace(runID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if runID == "" {
		return "", "", fmt.Errorf("run_id is required")
	}
	if name == "" {
		return "", "", fmt.Errorf("artifact name is required")
	}
	if strings.Contains(runID, "..") || strings.Contains(name, "..") || strings.ContainsAny(runID, `/\`) {
		return "", "", fmt.Errorf("invalid artifact key: %s/%s", runID, name)
	}
	return runID, name, nil
}

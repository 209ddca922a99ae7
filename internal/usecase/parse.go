// Package usecase turns the keywords artifact produced by the generate stage
// into structured use-case records.
//
// Parsing is lenient: the model output is not guaranteed to be well formed, so
// malformed blocks degrade to missing fields or are skipped, never to errors.
package usecase

import (
	"strings"

	"datascout/internal/types"
)

const (
	MarkerTitle       = "**Use Case Title:**"
	MarkerDescription = "**Description:**"
	MarkerKeywords    = "**Keywords:**"

	DefaultMaxKeywords = 4
)

type Options struct {
	// MaxKeywords caps the keywords kept per use case. <= 0 means DefaultMaxKeywords.
	MaxKeywords int
}

// Stats describes one Parse call.
type Stats struct {
	Blocks        int // non-empty blocks seen
	UseCases      int
	SkippedBlocks int // non-empty blocks without any recognised marker
}

// Parse splits text into blank-line separated blocks and emits one UseCase for
// every block in which at least one marker line was found.
func Parse(text string, opts Options) ([]types.UseCase, Stats) {
	limit := opts.MaxKeywords
	if limit <= 0 {
		limit = DefaultMaxKeywords
	}
	var (
		out   []types.UseCase
		stats Stats
	)
	for _, block := range splitBlocks(text) {
		stats.Blocks++
		uc, ok := parseBlock(block, limit)
		if !ok {
			stats.SkippedBlocks++
			continue
		}
		out = append(out, uc)
	}
	stats.UseCases = len(out)
	return out, stats
}

// splitBlocks groups consecutive non-blank lines. Runs of whitespace-only
// lines collapse, so empty blocks never surface. Only the first line of a
// block loses its leading whitespace; markers on later lines must start the line.
func splitBlocks(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		blocks [][]string
		cur    []string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if len(cur) == 0 {
			line = strings.TrimLeft(line, " \t")
		}
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

func parseBlock(lines []string, maxKeywords int) (types.UseCase, bool) {
	var (
		uc      types.UseCase
		matched bool
	)
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, MarkerTitle):
			uc.Title = value(line, MarkerTitle)
			matched = true
		case strings.HasPrefix(line, MarkerDescription):
			uc.Description = value(line, MarkerDescription)
			matched = true
		case strings.HasPrefix(line, MarkerKeywords):
			uc.Keywords = SplitKeywords(value(line, MarkerKeywords), maxKeywords)
			matched = true
		}
	}
	if matched && uc.Keywords == nil {
		uc.Keywords = []string{}
	}
	return uc, matched
}

func value(line, marker string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, marker))
}

// SplitKeywords splits a comma separated list, trims every fragment, drops
// empty ones and keeps at most limit entries in their original order.
// Empty fragments are dropped before the cap so "a,,b" keeps both keywords
// instead of spending a slot on an empty search; a plain first-n slice would
// keep the blank.
func SplitKeywords(raw string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxKeywords
	}
	out := make([]string, 0, limit)
	for _, frag := range strings.Split(raw, ",") {
		if len(out) >= limit {
			break
		}
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		out = append(out, frag)
	}
	return out
}

package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"datascout/internal/artifact"
	"datascout/internal/llm"
)

// Generate turns extracted_text.txt into use cases, keywords and a research brief.
type Generate struct {
	LLM   llm.Client
	Store artifact.Store
	Log   *log.Logger
}

type GenerateResult struct {
	CompanyName string
	UseCases    int // bytes written to use_cases.txt
	Keywords    int // bytes written to keywords.txt
}

func (g *Generate) Run(ctx context.Context, runID string) (GenerateResult, error) {
	raw, err := g.Store.Get(ctx, runID, artifact.ExtractedText)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("generate: read %s: %w", artifact.ExtractedText, err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return GenerateResult{}, fmt.Errorf("generate: %s is empty", artifact.ExtractedText)
	}
	company := CompanyName(text)

	intro, err := g.ask(ctx, llm.PhaseIntro, fmt.Sprintf(promptIntro, company))
	if err != nil {
		return GenerateResult{}, err
	}
	brief, err := g.ask(ctx, llm.PhaseBrief, fmt.Sprintf(promptBrief, text))
	if err != nil {
		return GenerateResult{}, err
	}
	useCases, err := g.ask(ctx, llm.PhaseUseCases, fmt.Sprintf(promptUseCases, text))
	if err != nil {
		return GenerateResult{}, err
	}
	keywords, err := g.ask(ctx, llm.PhaseKeywords, fmt.Sprintf(promptKeywords, useCases))
	if err != nil {
		return GenerateResult{}, err
	}

	full := intro + "\n\n" + useCases
	writes := []struct {
		name string
		body string
	}{
		{artifact.UseCases, full},
		{artifact.Keywords, keywords},
		{artifact.ResearchBrief, brief},
	}
	for _, w := range writes {
		if err := g.Store.Put(ctx, runID, w.name, []byte(w.body)); err != nil {
			return GenerateResult{}, fmt.Errorf("generate: write %s: %w", w.name, err)
		}
	}
	logger(g.Log).Printf("generate: %q use cases %d bytes, keywords %d bytes", company, len(full), len(keywords))
	return GenerateResult{CompanyName: company, UseCases: len(full), Keywords: len(keywords)}, nil
}

func (g *Generate) ask(ctx context.Context, phase, prompt string) (string, error) {
	out, err := g.LLM.GenerateText(llm.WithPhase(ctx, phase), prompt)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", phase, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("generate %s: %w", phase, llm.ErrEmptyResponse)
	}
	return out, nil
}

// CompanyName is the first sentence of the page text: everything before the
// first period, or the first line when the text has none.
func CompanyName(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "."); i >= 0 {
		text = text[:i]
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

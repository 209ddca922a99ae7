package llm

import (
	"context"
	"sync"
)

// Generation phases understood by FakeClient.
const (
	PhaseIntro    = "intro"
	PhaseBrief    = "brief"
	PhaseUseCases = "use_cases"
	PhaseKeywords = "keywords"
)

// FakeClient returns deterministic text per phase for offline runs and tests.
type FakeClient struct {
	mu      sync.Mutex
	prompts map[string]string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{prompts: map[string]string{}}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// LastPrompt returns the most recent prompt seen for phase.
func (f *FakeClient) LastPrompt(phase string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[phase]
}

func (f *FakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	phase := PhaseFrom(ctx)
	f.mu.Lock()
	f.prompts[phase] = prompt
	f.mu.Unlock()

	switch phase {
	case PhaseIntro:
		return "GenAI & ML Use Cases\n\nAs one of the leading players in its sector, the company can leverage " +
			"Generative AI, Large Language Models, and Machine Learning to improve operations.", nil
	case PhaseBrief:
		return "1. Reports: McKinsey, Deloitte and Nexocode digital transformation insights.\n" +
			"2. Industry trends: demand forecasting and personalised recommendations.\n" +
			"3. Company use cases: see generated use cases.", nil
	case PhaseUseCases:
		return "Use Case Title: Demand Forecasting\n" +
			"Objective/Use Case: Predict product demand\n" +
			"AI Application: Time-series forecasting\n" +
			"Cross-Functional Benefit: Lower inventory cost\n\n" +
			"Use Case Title: Customer Support Assistant\n" +
			"Objective/Use Case: Answer customer questions\n" +
			"AI Application: Retrieval augmented LLM\n" +
			"Cross-Functional Benefit: Faster resolution", nil
	case PhaseKeywords:
		return "**Use Case Title:** Demand Forecasting\n" +
			"**Description:** Predict product demand\n" +
			"**Keywords:** retail sales, inventory, forecasting, demand\n\n" +
			"**Use Case Title:** Customer Support Assistant\n" +
			"**Description:** Answer customer questions with an LLM\n" +
			"**Keywords:** customer support, chatbot, faq, intent classification, sentiment", nil
	default:
		return "", nil
	}
}

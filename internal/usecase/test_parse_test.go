package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datascout/internal/types"
)

func TestParseSingleBlock(t *testing.T) {
	text := "**Use Case Title:** Demand Forecasting\n" +
		"**Description:** Predict product demand\n" +
		"**Keywords:** retail sales, inventory, forecasting, demand\n"

	got, stats := Parse(text, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, types.UseCase{
		Title:       "Demand Forecasting",
		Description: "Predict product demand",
		Keywords:    []string{"retail sales", "inventory", "forecasting", "demand"},
	}, got[0])
	assert.Equal(t, Stats{Blocks: 1, UseCases: 1}, stats)
}

func TestParseKeywordCap(t *testing.T) {
	text := "**Use Case Title:** A\n**Keywords:** k1, k2, k3, k4, k5, k6, k7"

	got, _ := Parse(text, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, []string{"k1", "k2", "k3", "k4"}, got[0].Keywords)
}

func TestParseKeywordCapIsConfigurable(t *testing.T) {
	text := "**Keywords:** k1, k2, k3, k4, k5"

	got, _ := Parse(text, Options{MaxKeywords: 2})

	require.Len(t, got, 1)
	assert.Equal(t, []string{"k1", "k2"}, got[0].Keywords)
}

func TestParseMissingKeywordsLine(t *testing.T) {
	text := "**Use Case Title:** Churn\n**Description:** Find leaving customers"

	got, stats := Parse(text, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, "Churn", got[0].Title)
	assert.NotNil(t, got[0].Keywords)
	assert.Empty(t, got[0].Keywords)
	assert.Zero(t, stats.SkippedBlocks)
}

func TestParseEmptyBlocksProduceNothing(t *testing.T) {
	text := "**Use Case Title:** A\n\n\n\n   \n\n**Use Case Title:** B\n\n\n"

	got, stats := Parse(text, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "B", got[1].Title)
	assert.Equal(t, 2, stats.Blocks)
}

func TestParseSkipsUnrecognisedBlocks(t *testing.T) {
	text := "GenAI & ML Use Cases for Acme\n\n" +
		"Use Case Title: no bold markers here\n\n" +
		"**Use Case Title:** Real one\nsome chatter\n**Description:** ok"

	got, stats := Parse(text, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, "Real one", got[0].Title)
	assert.Equal(t, "ok", got[0].Description)
	assert.Equal(t, Stats{Blocks: 3, UseCases: 1, SkippedBlocks: 2}, stats)
}

func TestParseEmptyInput(t *testing.T) {
	got, stats := Parse("", Options{})
	assert.Empty(t, got)
	assert.Equal(t, Stats{}, stats)
}

func TestParseCRLFAndIndentedFirstLine(t *testing.T) {
	text := "  **Use Case Title:** Fraud\r\n**Keywords:** fraud, , payments  \r\n\r\n"

	got, _ := Parse(text, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, "Fraud", got[0].Title)
	assert.Equal(t, []string{"fraud", "payments"}, got[0].Keywords)
}

func TestParseIndentedInnerMarkerIsIgnored(t *testing.T) {
	text := "**Use Case Title:** Fraud\n  **Keywords:** fraud, payments\n\t**Description:** nested"

	got, _ := Parse(text, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, "Fraud", got[0].Title)
	assert.Empty(t, got[0].Description)
	assert.Equal(t, []string{}, got[0].Keywords)
}

func TestParseIndentedBlockAfterSeparator(t *testing.T) {
	text := "**Use Case Title:** A\n \t \n   **Use Case Title:** B\n**Keywords:** b"

	got, stats := Parse(text, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, "B", got[1].Title)
	assert.Equal(t, []string{"b"}, got[1].Keywords)
	assert.Equal(t, 2, stats.Blocks)
}

func TestParseRepeatedMarkerKeepsLast(t *testing.T) {
	text := "**Use Case Title:** first\n**Use Case Title:** second"

	got, _ := Parse(text, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Title)
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{}, SplitKeywords("", 4))
	assert.Equal(t, []string{"a"}, SplitKeywords(" a ,", 4))
	assert.Equal(t, []string{"a", "b"}, SplitKeywords("a,b,c", 2))
	assert.Equal(t, []string{"a", "b"}, SplitKeywords("a, ,b,c", 2))
}

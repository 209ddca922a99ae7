package aggregate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datascout/internal/types"
	"datascout/internal/usecase"
)

// stubSearch answers from a fixed table and records the queries it saw.
type stubSearch struct {
	mu      sync.Mutex
	results map[string][]types.Resource
	fail    map[string]bool
	delay   map[string]time.Duration
	seen    []string
}

func (s *stubSearch) Search(ctx context.Context, q string) ([]types.Resource, error) {
	s.mu.Lock()
	s.seen = append(s.seen, q)
	d := s.delay[q]
	s.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fail[q] {
		return nil, errors.New("catalog unavailable")
	}
	return s.results[q], nil
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

var inventoryDS = types.Resource{
	Name:   "Store Inventory",
	URL:    "https://www.kaggle.com/acme/store-inventory",
	Source: "Kaggle",
}

func TestAggregateEndToEndExample(t *testing.T) {
	text := "**Use Case Title:** Demand Forecasting\n" +
		"**Description:** Predict product demand\n" +
		"**Keywords:** retail sales, inventory, forecasting, demand\n"
	useCases, _ := usecase.Parse(text, usecase.Options{})
	stub := &stubSearch{results: map[string][]types.Resource{"inventory": {inventoryDS}}}

	rows, stats, err := NewEngine(stub, Config{}, quietLogger()).Aggregate(context.Background(), useCases)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.AggregatedRow{
		Title:        "Demand Forecasting",
		Description:  "Predict product demand",
		Keywords:     "demand, forecasting, inventory, retail sales",
		DatasetNames: "Store Inventory",
		DatasetLinks: "https://www.kaggle.com/acme/store-inventory",
		Sources:      "Kaggle",
	}, rows[0])
	assert.Equal(t, Stats{UseCases: 1, KeywordsSearched: 4, ResourcesFound: 1, Rows: 1}, stats)
	assert.Equal(t, []string{"retail sales", "inventory", "forecasting", "demand"}, stub.seen)
}

func TestAggregateCapsResultsPerKeyword(t *testing.T) {
	stub := &stubSearch{results: map[string][]types.Resource{
		"k": {{Name: "a", URL: "u/a", Source: "S"}, {Name: "b", URL: "u/b", Source: "S"}, {Name: "c", URL: "u/c", Source: "S"}},
	}}
	uc := []types.UseCase{{Title: "T", Keywords: []string{"k"}}}

	rows, stats, err := NewEngine(stub, Config{}, quietLogger()).Aggregate(context.Background(), uc)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].DatasetNames)
	assert.Equal(t, 1, stats.ResourcesFound)

	rows, _, err = NewEngine(stub, Config{MaxResultsPerKeyword: 2}, quietLogger()).Aggregate(context.Background(), uc)
	require.NoError(t, err)
	assert.Equal(t, "a, b", rows[0].DatasetNames)
	assert.Equal(t, "u/a, u/b", rows[0].DatasetLinks)
	assert.Equal(t, "S", rows[0].Sources)
}

func TestAggregateDedupAcrossKeywords(t *testing.T) {
	stub := &stubSearch{results: map[string][]types.Resource{
		"sales":     {inventoryDS},
		"inventory": {inventoryDS},
	}}
	uc := []types.UseCase{{Title: "T", Description: "D", Keywords: []string{"sales", "inventory"}}}

	rows, stats, err := NewEngine(stub, Config{}, quietLogger()).Aggregate(context.Background(), uc)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Store Inventory", rows[0].DatasetNames)
	assert.Equal(t, inventoryDS.URL, rows[0].DatasetLinks)
	assert.Equal(t, "inventory, sales", rows[0].Keywords)
	assert.Equal(t, 2, stats.ResourcesFound)
}

func TestAggregateGroupKeyCollision(t *testing.T) {
	other := types.Resource{Name: "Churn", URL: "https://www.kaggle.com/x/churn", Source: "Kaggle"}
	stub := &stubSearch{results: map[string][]types.Resource{
		"a": {inventoryDS},
		"c": {other},
	}}
	uc := []types.UseCase{
		{Title: "Same", Description: "Same desc", Keywords: []string{"a", "b"}},
		{Title: "Same", Description: "Same desc", Keywords: []string{"c", "a"}},
	}

	rows, _, err := NewEngine(stub, Config{}, quietLogger()).Aggregate(context.Background(), uc)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a, b, c", rows[0].Keywords)
	assert.Equal(t, "Churn, Store Inventory", rows[0].DatasetNames)
	assert.Equal(t, "https://www.kaggle.com/acme/store-inventory, https://www.kaggle.com/x/churn", rows[0].DatasetLinks)
}

func TestAggregateFirstAppearanceOrder(t *testing.T) {
	stub := &stubSearch{results: map[string][]types.Resource{
		"z": {{Name: "z", URL: "u/z", Source: "S"}},
		"a": {{Name: "a", URL: "u/a", Source: "S"}},
		"m": {{Name: "m", URL: "u/m", Source: "S"}},
	}}
	uc := []types.UseCase{
		{Title: "Zulu", Keywords: []string{"z"}},
		{Title: "Alpha", Keywords: []string{"a"}},
		{Title: "Nothing", Keywords: []string{"none"}},
		{Title: "Mike", Keywords: []string{"m"}},
		{Title: "Zulu", Keywords: []string{"m"}},
	}

	rows, stats, err := NewEngine(stub, Config{}, quietLogger()).Aggregate(context.Background(), uc)

	require.NoError(t, err)
	titles := make([]string, 0, len(rows))
	for _, r := range rows {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Zulu", "Alpha", "Mike"}, titles)
	assert.Equal(t, "m, z", rows[0].DatasetNames)
	assert.Equal(t, 3, stats.Rows)
}

func TestAggregateEmptyOutcomes(t *testing.T) {
	stub := &stubSearch{}

	rows, stats, err := NewEngine(stub, Config{}, quietLogger()).Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, Stats{}, stats)

	uc := []types.UseCase{{Title: "A", Keywords: []string{"x", "y"}}, {Title: "B", Keywords: []string{}}}
	rows, stats, err = NewEngine(stub, Config{}, quietLogger()).Aggregate(context.Background(), uc)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, Stats{UseCases: 2, KeywordsSearched: 2}, stats)
}

func TestAggregateSearchFailureIsIsolated(t *testing.T) {
	var buf bytes.Buffer
	stub := &stubSearch{
		results: map[string][]types.Resource{"good": {inventoryDS}},
		fail:    map[string]bool{"bad": true},
	}
	uc := []types.UseCase{{Title: "T", Keywords: []string{"bad", "good"}}}

	rows, stats, err := NewEngine(stub, Config{}, log.New(&buf, "", 0)).Aggregate(context.Background(), uc)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bad, good", rows[0].Keywords)
	assert.Equal(t, 1, stats.SearchFailures)
	assert.Contains(t, buf.String(), `search "bad" for "T" failed`)
}

func TestAggregateSearchTimeoutDegrades(t *testing.T) {
	stub := &stubSearch{
		results: map[string][]types.Resource{"slow": {inventoryDS}, "fast": {inventoryDS}},
		delay:   map[string]time.Duration{"slow": time.Second},
	}
	uc := []types.UseCase{{Title: "T", Keywords: []string{"slow", "fast"}}}

	rows, stats, err := NewEngine(stub, Config{SearchTimeout: 20 * time.Millisecond, Workers: 2}, quietLogger()).
		Aggregate(context.Background(), uc)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, stats.SearchFailures)
	assert.Equal(t, 1, stats.ResourcesFound)
}

func TestAggregateParallelMatchesSequential(t *testing.T) {
	results := map[string][]types.Resource{}
	delay := map[string]time.Duration{}
	var uc []types.UseCase
	for i := 0; i < 6; i++ {
		var kws []string
		for j := 0; j < 4; j++ {
			kw := string(rune('a'+i)) + string(rune('0'+j))
			kws = append(kws, kw)
			results[kw] = []types.Resource{{Name: "ds-" + kw, URL: "u/" + kw, Source: "S"}}
			delay[kw] = time.Duration((6-i)*(4-j)) * time.Millisecond
		}
		uc = append(uc, types.UseCase{Title: string(rune('F' - i)), Keywords: kws})
	}

	seq, _, err := NewEngine(&stubSearch{results: results}, Config{Workers: 1}, quietLogger()).
		Aggregate(context.Background(), uc)
	require.NoError(t, err)
	par, _, err := NewEngine(&stubSearch{results: results, delay: delay}, Config{Workers: 8}, quietLogger()).
		Aggregate(context.Background(), uc)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	assert.Equal(t, "F", par[0].Title)
}

func TestAggregateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uc := []types.UseCase{{Title: "T", Keywords: []string{"x"}}}

	_, _, err := NewEngine(&stubSearch{}, Config{}, quietLogger()).Aggregate(ctx, uc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGroupIsOrderIndependent(t *testing.T) {
	uc := []types.UseCase{
		{Title: "A", Description: "d", Keywords: []string{"k1", "k2"}},
		{Title: "B", Description: "d", Keywords: []string{"k3"}},
	}
	hits := []Hit{
		{Key: uc[0].Key(), Keyword: "k1", Resource: types.Resource{Name: "n2", URL: "l2", Source: "Kaggle"}},
		{Key: uc[0].Key(), Keyword: "k2", Resource: types.Resource{Name: "n1", URL: "l1", Source: "Hugging Face"}},
		{Key: uc[0].Key(), Keyword: "k2", Resource: types.Resource{Name: "n2", URL: "l2", Source: "Kaggle"}},
		{Key: uc[1].Key(), Keyword: "k3", Resource: types.Resource{Name: "n3", URL: "l3", Source: "Kaggle"}},
	}
	want := Group(uc, hits)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Hit(nil), hits...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Group(uc, shuffled))
	}
	assert.Equal(t, "n1, n2", want[0].DatasetNames)
	assert.Equal(t, "Hugging Face, Kaggle", want[0].Sources)
}

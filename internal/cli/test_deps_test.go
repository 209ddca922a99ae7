package cli

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datascout/internal/config"
	"datascout/internal/types"
)

func TestCollectRetriesAfterAttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(300 * time.Millisecond):
			}
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"ref": "owner/fraud", "title": "Fraud Dataset"},
		})
	}))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "datascout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`artifact:
  backend: memory
search:
  rps: 0
  timeout: 100ms
  max_attempts: 3
  base_delay: 1ms
kaggle:
  base_url: `+srv.URL+`
  username: tester
  key: secret
`), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	o := &options{cfg: cfg, log: log.New(io.Discard, "", 0)}
	d, err := o.build(context.Background(), stages{collect: true})
	require.NoError(t, err)
	defer d.Close()

	rows, stats, err := d.runner.Collect.Engine.Aggregate(context.Background(), []types.UseCase{
		{Title: "Fraud", Description: "Detect fraud", Keywords: []string{"fraud"}},
	})
	require.NoError(t, err)
	assert.Zero(t, stats.SearchFailures)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(2), calls.Load())
}

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datascout/internal/retry"
	"datascout/internal/types"
)

func TestKaggleSearchDecodesDatasets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/datasets/list", r.URL.Path)
		assert.Equal(t, "retail sales", r.URL.Query().Get("search"))
		user, key, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "s3cret", key)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"ref":"owner/retail-sales","title":"Retail Sales 2020"},
			{"ref":"","title":"broken"},
			{"ref":"other/no-title","title":""}
		]`))
	}))
	defer srv.Close()

	k, err := NewKaggleClient(KaggleConfig{BaseURL: srv.URL, Username: "alice", Key: "s3cret"})
	require.NoError(t, err)

	got, err := k.Search(context.Background(), "retail sales")
	require.NoError(t, err)
	assert.Equal(t, []types.Resource{
		{Name: "Retail Sales 2020", URL: "https://www.kaggle.com/owner/retail-sales", Source: KaggleSource},
		{Name: "other/no-title", URL: "https://www.kaggle.com/other/no-title", Source: KaggleSource},
	}, got)
}

func TestKaggleRequiresCredentials(t *testing.T) {
	_, err := NewKaggleClient(KaggleConfig{Username: "alice"})
	assert.Error(t, err)
}

func TestKaggleStatusClassification(t *testing.T) {
	cases := []struct {
		status    int
		permanent bool
		target    error
	}{
		{http.StatusUnauthorized, true, ErrUnauthorized},
		{http.StatusForbidden, true, ErrUnauthorized},
		{http.StatusTooManyRequests, false, ErrRateLimited},
		{http.StatusBadGateway, false, nil},
		{http.StatusBadRequest, true, nil},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		k, err := NewKaggleClient(KaggleConfig{BaseURL: srv.URL, Username: "u", Key: "k"})
		require.NoError(t, err)

		_, err = k.Search(context.Background(), "x")
		srv.Close()

		require.Error(t, err, "status %d", tc.status)
		assert.Equal(t, tc.permanent, retry.IsPermanent(err), "status %d", tc.status)
		if tc.target != nil {
			assert.ErrorIs(t, err, tc.target)
		}
	}
}

func TestKaggleMalformedBodyIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()
	k, err := NewKaggleClient(KaggleConfig{BaseURL: srv.URL, Username: "u", Key: "k"})
	require.NoError(t, err)

	_, err = k.Search(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, retry.IsPermanent(err))
}

func TestLoadKaggleCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaggle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"username":" bob ","key":"abc"}`), 0o600))

	user, key, err := LoadKaggleCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
	assert.Equal(t, "abc", key)

	_, _, err = LoadKaggleCredentials(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

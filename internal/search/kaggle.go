package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"datascout/internal/types"
)

const (
	KaggleSource         = "Kaggle"
	DefaultKaggleBaseURL = "https://www.kaggle.com"
)

type KaggleConfig struct {
	BaseURL  string
	Username string
	Key      string
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

// KaggleClient queries the public Kaggle dataset listing endpoint.
type KaggleClient struct {
	base     string
	username string
	key      string
	http     *http.Client
}

func NewKaggleClient(cfg KaggleConfig) (*KaggleClient, error) {
	username := strings.TrimSpace(cfg.Username)
	key := strings.TrimSpace(cfg.Key)
	if username == "" || key == "" {
		return nil, fmt.Errorf("kaggle username and key are required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultKaggleBaseURL
	}
	return &KaggleClient{
		base:     base,
		username: username,
		key:      key,
		http:     defaultHTTPClient(cfg.HTTPClient),
	}, nil
}

func (k *KaggleClient) Name() string { return KaggleSource }

type kaggleDataset struct {
	Ref   string `json:"ref"`
	Title string `json:"title"`
}

func (k *KaggleClient) Search(ctx context.Context, query string) ([]types.Resource, error) {
	u := k.base + "/api/v1/datasets/list?" + url.Values{"search": {query}}.Encode()
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(k.username, k.key)

	var datasets []kaggleDataset
	if err := getJSON(ctx, k.http, req, &datasets); err != nil {
		return nil, err
	}
	out := make([]types.Resource, 0, len(datasets))
	for _, d := range datasets {
		ref := strings.Trim(strings.TrimSpace(d.Ref), "/")
		if ref == "" {
			continue
		}
		name := strings.TrimSpace(d.Title)
		if name == "" {
			name = ref
		}
		out = append(out, types.Resource{
			Name:   name,
			URL:    "https://www.kaggle.com/" + ref,
			Source: KaggleSource,
		})
	}
	return out, nil
}

// LoadKaggleCredentials reads the kaggle.json file written by the Kaggle CLI.
func LoadKaggleCredentials(path string) (username, key string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	var creds struct {
		Username string `json:"username"`
		Key      string `json:"key"`
	}
	if err := json.Unmarshal(raw, &creds); err != nil {
		return "", "", fmt.Errorf("parse %s: %w", path, err)
	}
	return strings.TrimSpace(creds.Username), strings.TrimSpace(creds.Key), nil
}

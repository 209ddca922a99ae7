package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"datascout/internal/types"
)

const (
	HuggingFaceSource         = "Hugging Face"
	DefaultHuggingFaceBaseURL = "https://huggingface.co"
)

type HuggingFaceConfig struct {
	BaseURL string
	// Token is optional; anonymous search works with lower limits.
	Token string
	// PageSize is forwarded as the limit query parameter. <= 0 means 10.
	PageSize   int
	HTTPClient *http.Client
}

type HuggingFaceClient struct {
	base     string
	token    string
	pageSize int
	http     *http.Client
}

func NewHuggingFaceClient(cfg HuggingFaceConfig) *HuggingFaceClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultHuggingFaceBaseURL
	}
	size := cfg.PageSize
	if size <= 0 {
		size = 10
	}
	return &HuggingFaceClient{
		base:     base,
		token:    strings.TrimSpace(cfg.Token),
		pageSize: size,
		http:     defaultHTTPClient(cfg.HTTPClient),
	}
}

func (h *HuggingFaceClient) Name() string { return HuggingFaceSource }

func (h *HuggingFaceClient) Search(ctx context.Context, query string) ([]types.Resource, error) {
	q := url.Values{"search": {query}, "limit": {strconv.Itoa(h.pageSize)}}
	req, err := http.NewRequest(http.MethodGet, h.base+"/api/datasets?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	var datasets []struct {
		ID string `json:"id"`
	}
	if err := getJSON(ctx, h.http, req, &datasets); err != nil {
		return nil, err
	}
	out := make([]types.Resource, 0, len(datasets))
	for _, d := range datasets {
		id := strings.Trim(strings.TrimSpace(d.ID), "/")
		if id == "" {
			continue
		}
		out = append(out, types.Resource{
			Name:   id,
			URL:    "https://huggingface.co/datasets/" + id,
			Source: HuggingFaceSource,
		})
	}
	return out, nil
}

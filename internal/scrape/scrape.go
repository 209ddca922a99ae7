// Package scrape fetches a company web page and returns its readable text.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

var ErrEmptyPage = errors.New("scrape: page has no readable text")

const (
	DefaultJinaBaseURL = "https://r.jina.ai"
	defaultTimeout     = 60 * time.Second
	maxBodyBytes       = 10 << 20
)

// Fetcher returns the readable text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// JinaReader delegates extraction to the Jina reader service, which returns
// the page already converted to text.
type JinaReader struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func (j *JinaReader) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := validateURL(pageURL); err != nil {
		return "", err
	}
	base := strings.TrimRight(strings.TrimSpace(j.BaseURL), "/")
	if base == "" {
		base = DefaultJinaBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+pageURL, nil)
	if err != nil {
		return "", err
	}
	if key := strings.TrimSpace(j.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	body, _, err := get(httpClient(j.HTTPClient), req)
	if err != nil {
		return "", err
	}
	text := cleanMarkdown(string(body))
	if text == "" {
		return "", ErrEmptyPage
	}
	return text, nil
}

// DirectFetcher downloads the page itself and extracts its text locally.
type DirectFetcher struct {
	UserAgent  string
	HTTPClient *http.Client
}

func (d *DirectFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := validateURL(pageURL); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	ua := strings.TrimSpace(d.UserAgent)
	if ua == "" {
		ua = "datascout/1.0"
	}
	req.Header.Set("User-Agent", ua)
	body, contentType, err := get(httpClient(d.HTTPClient), req)
	if err != nil {
		return "", err
	}
	decoded, err := decode(body, contentType)
	if err != nil {
		return "", err
	}
	u, _ := url.Parse(pageURL)
	text := Extract(decoded, u)
	if text == "" {
		return "", ErrEmptyPage
	}
	return text, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("scrape: invalid url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("scrape: url must be absolute http(s): %q", raw)
	}
	return nil
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}

func get(client *http.Client, req *http.Request) ([]byte, string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("scrape: %s returned %d", req.URL.Host, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// decode converts body to UTF-8 using the declared or sniffed charset.
func decode(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(strings.NewReader(string(body)), contentType)
	if err != nil {
		return "", fmt.Errorf("scrape: decode charset: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

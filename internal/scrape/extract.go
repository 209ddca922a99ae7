package scrape

import (
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// minReadableLen below which readability output is considered a miss
// (usually only the title was picked up).
const minReadableLen = 200

// Extract converts raw HTML to plain text. go-readability is tried first on a
// copy stripped of navigation and scripts; short results fall back to
// collecting headings, paragraphs and list items.
func Extract(raw string, pageURL *url.URL) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "<") {
		return normalizeWhitespace(trimmed)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed)); err == nil {
		doc.Find("script, style, noscript, iframe, svg, nav, footer, aside").Remove()
		if cleaned, err := doc.Html(); err == nil && cleaned != "" {
			trimmed = cleaned
		}
	}

	if article, err := readability.FromReader(strings.NewReader(trimmed), pageURL); err == nil {
		var buf strings.Builder
		if err := article.RenderText(&buf); err == nil {
			text := strings.TrimSpace(buf.String())
			if len(text) >= minReadableLen {
				return text
			}
		}
	}
	return extractParagraphs(trimmed)
}

// extractParagraphs keeps block text in document order, one block per paragraph.
func extractParagraphs(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTags(html)
	}
	var paragraphs []string
	doc.Find("title, h1, h2, h3, h4, p, li").Each(func(_ int, s *goquery.Selection) {
		if text := normalizeWhitespace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return stripTags(html)
	}
	return strings.Join(paragraphs, "\n\n")
}

func stripTags(raw string) string {
	return normalizeWhitespace(bluemonday.StrictPolicy().Sanitize(raw))
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package scrape

import (
	"regexp"
	"strings"
)

var (
	reImageMD           = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reImageHTML         = regexp.MustCompile(`(?is)<img[^>]*>`)
	reLinkMD            = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reComment           = regexp.MustCompile(`(?s)<!--.*?-->`)
	reExcessiveNewlines = regexp.MustCompile(`\n{3,}`)
)

// cleanMarkdown drops images, link targets and comments from reader output and
// keeps at most one blank line between paragraphs.
func cleanMarkdown(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = reImageMD.ReplaceAllString(text, "")
	text = reImageHTML.ReplaceAllString(text, "")
	text = reLinkMD.ReplaceAllString(text, "$1")
	text = reComment.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	text = reExcessiveNewlines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

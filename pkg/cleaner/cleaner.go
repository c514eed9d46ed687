package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	blankRuns     = regexp.MustCompile(`\n\s*\n`)
	quotedHeader  = regexp.MustCompile(`^On .* wrote:`)
	forwardHeader = regexp.MustCompile(`^From: .*`)
)

// Elements that end a visual block; a newline is emitted after their text.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "blockquote": true, "pre": true,
	"table": true, "section": true, "article": true,
}

// Skipped entirely, including their text content.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true, "title": true,
}

// Clean strips markup from an email body, collapses blank lines, drops
// quoted lines and truncates at the first quoted-reply or forwarded-header
// boundary. This is a heuristic, not a parser: a legitimate body line that
// starts with "On ... wrote:" or "From: " truncates the rest of the text.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := extractText(raw)

	// Collapse runs of blank lines to a single blank line.
	text = blankRuns.ReplaceAllString(text, "\n\n")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		if quotedHeader.MatchString(trimmed) || forwardHeader.MatchString(trimmed) {
			// Everything below is quoted history or a forwarded block.
			break
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// extractText concatenates visible text nodes, inserting one newline per
// block-level boundary. Plain text passes through unchanged apart from the
// implicit wrapping the HTML parser applies.
func extractText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			b.WriteString("\n")
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return b.String()
}

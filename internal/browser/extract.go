// internal/browser/extract.go
package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements are subtrees that never contribute visible text.
var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"head":     {},
}

// blockElements get a line break between their text and the next sibling's.
var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "section": {}, "article": {}, "header": {}, "footer": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"li": {}, "tr": {}, "br": {}, "ul": {}, "ol": {}, "table": {}, "blockquote": {},
}

// ExtractText renders the visible text of an HTML document: script/style
// subtrees are dropped, inline text is joined with spaces, and block elements
// introduce line breaks. Consecutive blank lines are collapsed.
func ExtractText(rawHTML string) (string, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse page HTML: %w", err)
	}

	var b strings.Builder
	walkText(root, &b)
	return collapseBlankLines(b.String()), nil
}

func walkText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		if _, skip := skippedElements[n.Data]; skip {
			return
		}
	case html.TextNode:
		if fields := strings.Fields(n.Data); len(fields) > 0 {
			b.WriteString(strings.Join(fields, " "))
			b.WriteByte(' ')
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walkText(child, b)
	}

	if n.Type == html.ElementNode {
		if _, block := blockElements[n.Data]; block {
			b.WriteByte('\n')
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

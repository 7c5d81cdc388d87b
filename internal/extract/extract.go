package extract

import (
	"strings"

	"golang.org/x/net/html"
)

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil {
		return ""
	}
	return TextContent(t)
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

// collectText writes rendered text, separating block-level elements with
// newlines so digit runs in adjacent cells never merge.
func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		if isHidden(n) {
			return
		}
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template", "head":
			return
		case "br", "hr":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString("\t")
		}
		if isBlock(n) {
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := strings.ReplaceAll(n.Data, "\r", " ")
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}

	if n.Type == html.ElementNode && isBlock(n) {
		b.WriteString("\n")
	}
}

func isBlock(n *html.Node) bool {
	switch strings.ToLower(n.Data) {
	case "p", "div", "section", "article", "main", "header", "footer", "nav", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "tr", "table",
		"form", "fieldset", "pre", "blockquote", "dl", "dt", "dd":
		return true
	}
	return false
}

// isHidden reports elements a browser would not render: the hidden attribute
// and inline display:none.
func isHidden(n *html.Node) bool {
	if hasAttr(n, "hidden") {
		return true
	}
	style := strings.ToLower(strings.ReplaceAll(attr(n, "style"), " ", ""))
	return strings.Contains(style, "display:none")
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}

package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed page with every element numbered in document order
// (depth-first, pre-order, the <html> element is 0).
type Document struct {
	Title string

	root    *html.Node
	query   *goquery.Document
	index   map[*html.Node]int
	anchors []Anchor
}

// Anchor is a hyperlink-like element together with its name value.
type Anchor struct {
	Node  *html.Node
	Index int
	Value string
}

// Parse builds a Document from raw HTML bytes.
func Parse(input []byte) (*Document, error) {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	return NewDocument(node), nil
}

// NewDocument indexes an already parsed tree.
func NewDocument(root *html.Node) *Document {
	d := &Document{
		root:  root,
		query: goquery.NewDocumentFromNode(root),
		index: make(map[*html.Node]int),
	}
	next := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			d.index[n] = next
			if strings.EqualFold(n.Data, "a") {
				d.anchors = append(d.anchors, Anchor{Node: n, Index: next, Value: NameValue(n)})
			}
			next++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	d.Title = collapseSpaces(strings.TrimSpace(findTitle(root)))
	return d
}

// IndexOf returns the document-order index of n.
func (d *Document) IndexOf(n *html.Node) (int, bool) {
	i, ok := d.index[n]
	return i, ok
}

// Anchors returns hyperlink-like elements in document order.
func (d *Document) Anchors() []Anchor {
	return d.anchors
}

// Select returns the first element matching a CSS selector.
func (d *Document) Select(selector string) (*html.Node, bool) {
	sel := d.query.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return sel.Get(0), true
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) (*html.Node, bool) {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && attr(cur, "id") == id {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(d.root)
	return res, res != nil
}

// VisibleText approximates what a browser reports as the body's inner text.
func (d *Document) VisibleText() string {
	content := findFirst(d.root, "body")
	if content == nil {
		content = d.root
	}
	var b strings.Builder
	collectText(&b, content)
	return normalizeWhitespace(b.String())
}

// TextContent concatenates every descendant text node of n, like the DOM
// textContent property.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

// NameValue is the title attribute when non-empty, else the text content,
// trimmed.
func NameValue(n *html.Node) string {
	if t := attr(n, "title"); t != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(TextContent(n))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

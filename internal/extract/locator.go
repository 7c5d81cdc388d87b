package extract

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Match is an element resolved by a Locator.
type Match struct {
	Node  *html.Node
	Index int
	// Value is the element's name value (title attribute, else text), trimmed.
	Value string
}

// Locator finds a single element in a Document. A false second result means
// "not found" and is an expected outcome, never an error.
type Locator interface {
	Resolve(doc *Document) (Match, bool)
}

func matchOf(doc *Document, n *html.Node) Match {
	idx, _ := doc.IndexOf(n)
	return Match{Node: n, Index: idx, Value: NameValue(n)}
}

// SelectorLocator resolves the first element matching a CSS selector.
type SelectorLocator struct {
	Selector string
}

func (l SelectorLocator) Resolve(doc *Document) (Match, bool) {
	if l.Selector == "" {
		return Match{}, false
	}
	n, ok := doc.Select(l.Selector)
	if !ok {
		return Match{}, false
	}
	return matchOf(doc, n), true
}

// IDLocator resolves an element by its id attribute.
type IDLocator struct {
	ID string
}

func (l IDLocator) Resolve(doc *Document) (Match, bool) {
	if l.ID == "" {
		return Match{}, false
	}
	n, ok := doc.ElementByID(l.ID)
	if !ok {
		return Match{}, false
	}
	return matchOf(doc, n), true
}

// NonEmpty rejects matches whose name value is empty.
type NonEmpty struct {
	Locator Locator
}

func (l NonEmpty) Resolve(doc *Document) (Match, bool) {
	m, ok := l.Locator.Resolve(doc)
	if !ok || m.Value == "" {
		return Match{}, false
	}
	return m, true
}

// FirstOf tries locators in order and returns the first hit.
type FirstOf []Locator

func (ls FirstOf) Resolve(doc *Document) (Match, bool) {
	for _, l := range ls {
		if m, ok := safeResolve(l, doc); ok {
			return m, true
		}
	}
	return Match{}, false
}

// NearestAnchorLocator picks the accepted anchor structurally closest to
// Origin. Without an origin it picks the first accepted anchor. Ties go to
// the anchor seen first.
type NearestAnchorLocator struct {
	Origin *Match
	Accept func(string) bool
}

func (l NearestAnchorLocator) Resolve(doc *Document) (Match, bool) {
	var best Match
	found := false
	bestDist := 0
	for _, a := range doc.Anchors() {
		if !l.Accept(a.Value) {
			continue
		}
		if l.Origin == nil {
			return Match{Node: a.Node, Index: a.Index, Value: a.Value}, true
		}
		d := a.Index - l.Origin.Index
		if d < 0 {
			d = -d
		}
		if !found || d < bestDist {
			best = Match{Node: a.Node, Index: a.Index, Value: a.Value}
			bestDist = d
			found = true
		}
	}
	return best, found
}

// LastDistinctAnchorLocator scans anchors from the end of the document and
// picks the first accepted value different from Exclude.
type LastDistinctAnchorLocator struct {
	Exclude string
	Accept  func(string) bool
}

func (l LastDistinctAnchorLocator) Resolve(doc *Document) (Match, bool) {
	anchors := doc.Anchors()
	for i := len(anchors) - 1; i >= 0; i-- {
		a := anchors[i]
		if !l.Accept(a.Value) {
			continue
		}
		if l.Exclude != "" && a.Value == l.Exclude {
			continue
		}
		return Match{Node: a.Node, Index: a.Index, Value: a.Value}, true
	}
	return Match{}, false
}

// safeResolve turns a panic inside a locator into "not found".
func safeResolve(l Locator, doc *Document) (m Match, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Msg("locator failed; treating as not found")
			m, ok = Match{}, false
		}
	}()
	return l.Resolve(doc)
}

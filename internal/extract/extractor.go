package extract

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ticketcapture/internal/capture"
)

var (
	ticketPattern = regexp.MustCompile(`\b(\d{7})\b`)
	// phoneSpace also admits the Unicode spaces CRM pages put inside numbers,
	// such as no-break and narrow no-break space.
	phoneSpace   = `\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`
	phonePattern = regexp.MustCompile(`^\+[\d` + phoneSpace + `\-()+]{4,}$`)
)

const maxNameLen = 100

// Page is a snapshot of a browsing context.
type Page struct {
	HTML []byte
	// URL comes from the browsing context, not from page content.
	URL string
}

// Stats describes how the record was assembled. It is logged, not stored.
type Stats struct {
	PhonesFound    int
	NamesFound     int
	HeaderFound    bool
	ConsumerSource string
	CreatorSource  string
}

// Result is the extractor output.
type Result struct {
	Record capture.Record
	Stats  Stats
}

// Extractor maps a page snapshot to a best-effort record. Implementations
// never fail: anything not found is left nil.
type Extractor interface {
	Extract(page Page) Result
}

// Selectors names the deterministic locators of the vendor page.
type Selectors struct {
	// Header selectors are tried in order before HeaderID.
	Header   []string `yaml:"header" json:"header"`
	HeaderID string   `yaml:"headerId" json:"headerId"`
	Consumer string   `yaml:"consumer" json:"consumer"`
	Creator  string   `yaml:"creator" json:"creator"`
}

// DefaultSelectors returns the locators of the ticket detail page.
func DefaultSelectors() Selectors {
	return Selectors{
		Header: []string{
			`[data-sap-automation-id="objectDetail-Header-Name"]`,
			`[data-help-id="objectDetail-Header-Name"]`,
		},
		HeaderID: "__text3740",
		Consumer: `a[data-sap-automation-id="zCYjUwbe2qA6LriQDB4Aa0"]`,
		Creator:  `a[data-sap-automation-id="RJZFlvx$74UQTT4$yKE1Dm"]`,
	}
}

// HeuristicExtractor tries deterministic locators first and falls back to
// positional heuristics over the page's anchors.
type HeuristicExtractor struct {
	Selectors Selectors
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewHeuristicExtractor returns an extractor using the default selectors.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{Selectors: DefaultSelectors(), Now: time.Now}
}

func (e *HeuristicExtractor) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *HeuristicExtractor) headerLocator() Locator {
	ls := make(FirstOf, 0, len(e.Selectors.Header)+1)
	for _, s := range e.Selectors.Header {
		ls = append(ls, SelectorLocator{Selector: s})
	}
	return append(ls, IDLocator{ID: e.Selectors.HeaderID})
}

func (e *HeuristicExtractor) Extract(page Page) Result {
	rec := capture.Record{PageURL: page.URL, Timestamp: capture.Stamp(e.now())}
	doc, err := Parse(page.HTML)
	if err != nil {
		log.Debug().Err(err).Str("url", page.URL).Msg("parse failed; returning empty record")
		return Result{Record: rec}
	}
	rec.Title = capture.Opt(doc.Title)

	var st Stats
	ticket, header := e.ticketID(doc)
	rec.TicketID = ticket
	st.HeaderFound = header != nil

	phones := collectPhones(doc, 2)
	st.PhonesFound = len(phones)
	if len(phones) > 0 {
		rec.PrimaryPhone = &phones[0]
	}
	if len(phones) > 1 {
		rec.SecondaryPhone = &phones[1]
	}

	consumer, src := e.consumerName(doc, header)
	st.ConsumerSource = src
	rec.ConsumerName = capture.Opt(consumer)

	creator, src := e.creatorName(doc, consumer)
	st.CreatorSource = src
	rec.CreatorName = capture.Opt(creator)

	for _, a := range doc.Anchors() {
		if IsNameLike(a.Value) {
			st.NamesFound++
		}
	}

	log.Debug().
		Str("url", page.URL).
		Bool("header", st.HeaderFound).
		Int("phones", st.PhonesFound).
		Int("names", st.NamesFound).
		Str("consumerSource", st.ConsumerSource).
		Str("creatorSource", st.CreatorSource).
		Msg("extracted")
	return Result{Record: rec, Stats: st}
}

// ticketID returns the ticket id and, when the id was read from the header,
// the header match used to anchor the consumer search.
func (e *HeuristicExtractor) ticketID(doc *Document) (*string, *Match) {
	if m, ok := e.headerLocator().Resolve(doc); ok {
		if id, ok := FindTicketID(TextContent(m.Node)); ok {
			return &id, &m
		}
	}
	if id, ok := FindTicketID(doc.VisibleText()); ok {
		return &id, nil
	}
	return nil, nil
}

func (e *HeuristicExtractor) consumerName(doc *Document, header *Match) (string, string) {
	if m, ok := safeResolve(NonEmpty{SelectorLocator{Selector: e.Selectors.Consumer}}, doc); ok {
		return m.Value, "selector"
	}
	m, ok := safeResolve(NearestAnchorLocator{Origin: header, Accept: IsNameLike}, doc)
	if !ok {
		return "", ""
	}
	if header == nil {
		return m.Value, "first"
	}
	return m.Value, "nearest"
}

func (e *HeuristicExtractor) creatorName(doc *Document, consumer string) (string, string) {
	if m, ok := safeResolve(NonEmpty{SelectorLocator{Selector: e.Selectors.Creator}}, doc); ok {
		return m.Value, "selector"
	}
	if m, ok := safeResolve(LastDistinctAnchorLocator{Exclude: consumer, Accept: IsNameLike}, doc); ok {
		return m.Value, "last-distinct"
	}
	if consumer != "" {
		return consumer, "consumer"
	}
	return "", ""
}

func collectPhones(doc *Document, limit int) []string {
	var phones []string
	for _, a := range doc.Anchors() {
		if a.Value == "" || !IsPhone(a.Value) {
			continue
		}
		phones = append(phones, a.Value)
		if len(phones) >= limit {
			break
		}
	}
	return phones
}

// FindTicketID returns the first standalone run of exactly seven digits.
func FindTicketID(text string) (string, bool) {
	m := ticketPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsPhone reports whether s looks like an international phone number.
func IsPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// IsNameLike reports whether s could be a person's name: 1..100 characters,
// at least one ASCII letter, and not a phone number.
func IsNameLike(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > maxNameLen {
		return false
	}
	if IsPhone(s) {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
}

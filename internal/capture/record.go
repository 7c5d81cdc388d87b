package capture

import (
	"strings"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision, the same
// shape browsers produce for Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Columns lists the record fields in export order.
var Columns = []string{
	"ticketId",
	"consumerName",
	"primaryPhone",
	"secondaryPhone",
	"creatorName",
	"pageUrl",
	"title",
	"timestamp",
}

// Record is one captured ticket. Nil pointers mean the field was not found.
// PageURL and Timestamp always come from the browsing context, never from
// page content.
type Record struct {
	TicketID       *string `json:"ticketId"`
	ConsumerName   *string `json:"consumerName"`
	PrimaryPhone   *string `json:"primaryPhone"`
	SecondaryPhone *string `json:"secondaryPhone"`
	CreatorName    *string `json:"creatorName"`
	PageURL        string  `json:"pageUrl"`
	Title          *string `json:"title"`
	Timestamp      string  `json:"timestamp"`
}

// Material reports whether the record carries anything worth keeping.
// Secondary phone alone does not count.
func (r Record) Material() bool {
	return r.TicketID != nil || r.ConsumerName != nil || r.PrimaryPhone != nil || r.CreatorName != nil
}

// Field returns the value of the named column, or "" when absent or unknown.
func (r Record) Field(column string) string {
	switch column {
	case "ticketId":
		return Deref(r.TicketID)
	case "consumerName":
		return Deref(r.ConsumerName)
	case "primaryPhone":
		return Deref(r.PrimaryPhone)
	case "secondaryPhone":
		return Deref(r.SecondaryPhone)
	case "creatorName":
		return Deref(r.CreatorName)
	case "pageUrl":
		return r.PageURL
	case "title":
		return Deref(r.Title)
	case "timestamp":
		return r.Timestamp
	}
	return ""
}

// CapturedAt parses Timestamp. The zero time is returned for malformed values.
func (r Record) CapturedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Stamp formats t as a record timestamp.
func Stamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Opt returns a pointer to the trimmed s, or nil when s is blank.
func Opt(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *p or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hyperifyio/ticketcapture/internal/capture"
)

// Placeholder stands in for absent values.
const Placeholder = "—"

// EmptyState is shown when nothing has been captured yet.
const EmptyState = "No captures yet"

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func orPlaceholder(p *string) string {
	if p == nil || *p == "" {
		return Placeholder
	}
	return *p
}

// RenderRecord writes the labeled fields of rec, or the empty state for nil.
func RenderRecord(out io.Writer, rec *capture.Record) {
	if rec == nil {
		fmt.Fprintln(out, EmptyState)
		return
	}
	t := newTable(out)
	t.AppendRows([]table.Row{
		{"Ticket", orPlaceholder(rec.TicketID)},
		{"Consumer", orPlaceholder(rec.ConsumerName)},
		{"Primary phone", orPlaceholder(rec.PrimaryPhone)},
		{"Secondary phone", orPlaceholder(rec.SecondaryPhone)},
		{"Creator", orPlaceholder(rec.CreatorName)},
		{"URL", orPlaceholder(capture.Opt(rec.PageURL))},
		{"Captured", orPlaceholder(capture.Opt(rec.Timestamp))},
	})
	t.Render()
}

// RenderList writes every record as one table row, newest last.
func RenderList(out io.Writer, records []capture.Record, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(out, EmptyState)
		return
	}
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Ticket", "Consumer", "Primary phone", "Creator", "Captured"})
	for i, r := range records {
		captured := r.Timestamp
		if at := r.CapturedAt(); !at.IsZero() {
			captured = humanize.RelTime(at, now, "ago", "from now")
		}
		t.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			orPlaceholder(r.TicketID),
			orPlaceholder(r.ConsumerName),
			orPlaceholder(r.PrimaryPhone),
			orPlaceholder(r.CreatorName),
			orPlaceholder(capture.Opt(captured)),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(records)})
	t.Render()
}

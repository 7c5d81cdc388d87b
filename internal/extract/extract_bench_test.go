package extract

import (
	"fmt"
	"strings"
	"testing"
)

// Benchmark extraction on ticket pages with growing numbers of anchors, the
// dimension the positional fallbacks scale with.
func BenchmarkExtract(b *testing.B) {
	e := NewHeuristicExtractor()
	small := makeTicketPage(10)
	medium := makeTicketPage(200)
	large := makeTicketPage(2000)

	b.Run("small", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = e.Extract(Page{HTML: small, URL: "https://example.test/t"})
		}
	})
	b.Run("medium", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = e.Extract(Page{HTML: medium, URL: "https://example.test/t"})
		}
	})
	b.Run("large", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = e.Extract(Page{HTML: large, URL: "https://example.test/t"})
		}
	})
}

func makeTicketPage(anchors int) []byte {
	builder := new(strings.Builder)
	builder.WriteString(`<html><head><title>Ticket</title></head><body>`)
	builder.WriteString(`<span data-help-id="objectDetail-Header-Name">Case 7654321</span>`)
	for i := 0; i < anchors; i++ {
		fmt.Fprintf(builder, `<div><a title="Person %d">Person %d</a></div>`, i, i)
	}
	builder.WriteString(`<a title="+1 555-0100">call</a></body></html>`)
	return []byte(builder.String())
}

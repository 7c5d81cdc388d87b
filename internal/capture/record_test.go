package capture

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestMaterial_IgnoresSecondaryPhoneAlone(t *testing.T) {
	r := Record{SecondaryPhone: Opt("+1 555-0100"), PageURL: "https://x", Timestamp: "t"}
	if r.Material() {
		t.Fatalf("secondary phone alone must not make a record material")
	}
	r.CreatorName = Opt("Bob")
	if !r.Material() {
		t.Fatalf("creator name should make the record material")
	}
}

func TestOpt_BlankIsNil(t *testing.T) {
	if Opt("   ") != nil {
		t.Fatalf("expected nil for blank input")
	}
	if got := Deref(Opt("  Jane Doe ")); got != "Jane Doe" {
		t.Fatalf("Opt should trim, got %q", got)
	}
}

func TestJSON_NullsAndKeys(t *testing.T) {
	r := Record{TicketID: Opt("1234567"), PageURL: "https://example.com/t", Timestamp: "2024-01-02T03:04:05.000Z"}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"ticketId":"1234567"`, `"consumerName":null`, `"title":null`, `"pageUrl":"https://example.com/t"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("json %s missing %s", s, want)
		}
	}
}

func TestField_CoversAllColumns(t *testing.T) {
	r := Record{
		TicketID:       Opt("1"),
		ConsumerName:   Opt("2"),
		PrimaryPhone:   Opt("3"),
		SecondaryPhone: Opt("4"),
		CreatorName:    Opt("5"),
		PageURL:        "6",
		Title:          Opt("7"),
		Timestamp:      "8",
	}
	for i, c := range Columns {
		want := string(rune('1' + i))
		if got := r.Field(c); got != want {
			t.Fatalf("Field(%q)=%q, want %q", c, got, want)
		}
	}
	if r.Field("nope") != "" {
		t.Fatalf("unknown column should be empty")
	}
}

func TestStamp_RoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 5, 7, 8, 9, 120_000_000, time.FixedZone("X", 3600))
	s := Stamp(at)
	if s != "2024-03-05T06:08:09.120Z" {
		t.Fatalf("Stamp=%q", s)
	}
	r := Record{Timestamp: s}
	if !r.CapturedAt().Equal(at) {
		t.Fatalf("CapturedAt=%v, want %v", r.CapturedAt(), at)
	}
}

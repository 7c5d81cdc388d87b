package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return p
}

func TestFileSource_UsesGivenURL(t *testing.T) {
	p := writeSnapshot(t, "<html></html>")
	page, err := (&FileSource{Path: p, URL: "https://crm.example.test/t/1"}).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if page.URL != "https://crm.example.test/t/1" || string(page.HTML) != "<html></html>" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestFileSource_DefaultsToFileURL(t *testing.T) {
	p := writeSnapshot(t, "x")
	page, err := (&FileSource{Path: p}).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !strings.HasPrefix(page.URL, "file://") || !strings.HasSuffix(page.URL, "page.html") {
		t.Fatalf("URL=%q", page.URL)
	}
}

func TestFileSource_MissingFileIsNoActivePage(t *testing.T) {
	_, err := (&FileSource{Path: filepath.Join(t.TempDir(), "nope.html")}).Snapshot(context.Background())
	if !errors.Is(err, ErrNoActivePage) {
		t.Fatalf("err=%v, want ErrNoActivePage", err)
	}
	_, err = (&FileSource{}).Snapshot(context.Background())
	if !errors.Is(err, ErrNoActivePage) {
		t.Fatalf("err=%v, want ErrNoActivePage", err)
	}
}

func TestAllowlist(t *testing.T) {
	a, err := NewAllowlist([]string{"https://*.crm.example.test/*", " "})
	if err != nil {
		t.Fatalf("NewAllowlist: %v", err)
	}
	if !a.Allows("https://my500.crm.example.test/ui#Ticket/1") {
		t.Fatalf("expected match")
	}
	if a.Allows("https://evil.test/") {
		t.Fatalf("unexpected match")
	}
	empty, _ := NewAllowlist(nil)
	if !empty.Allows("anything") {
		t.Fatalf("empty allowlist must allow everything")
	}
	if _, err := NewAllowlist([]string{"[unterminated"}); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestRestrict(t *testing.T) {
	p := writeSnapshot(t, "<html></html>")
	a, _ := NewAllowlist([]string{"https://crm.example.test/*"})

	ok := Restrict(&FileSource{Path: p, URL: "https://crm.example.test/t"}, a)
	if _, err := ok.Snapshot(context.Background()); err != nil {
		t.Fatalf("allowed page rejected: %v", err)
	}
	blocked := Restrict(&FileSource{Path: p, URL: "https://other.test/"}, a)
	if _, err := blocked.Snapshot(context.Background()); !errors.Is(err, ErrNoActivePage) {
		t.Fatalf("err=%v, want ErrNoActivePage", err)
	}
}

func TestProbeScore(t *testing.T) {
	if probeScore(2) != 2 || probeScore(float64(1)) != 1 || probeScore("x") != 0 || probeScore(nil) != 0 {
		t.Fatalf("probeScore conversions broken")
	}
}

func TestCDPSource_SnapshotAfterCloseDoesNotConnect(t *testing.T) {
	s := &CDPSource{Endpoint: "http://127.0.0.1:1"}
	if err := s.Close(); err != nil {
		t.Fatalf("Close on unconnected source: %v", err)
	}
	if _, err := s.Snapshot(context.Background()); !errors.Is(err, ErrSourceClosed) {
		t.Fatalf("err=%v, want ErrSourceClosed", err)
	}
	if s.pw != nil || s.browser != nil {
		t.Fatalf("closed source must not start playwright")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCDPSource_ConcurrentCloseAndSnapshot(t *testing.T) {
	s := &CDPSource{Endpoint: "http://127.0.0.1:1"}
	_ = s.Close()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Snapshot(context.Background())
		}()
		go func() {
			defer wg.Done()
			_ = s.Close()
		}()
	}
	wg.Wait()
}

package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ticketcapture/internal/extract"
)

// focusProbe runs inside each tab; the focused tab reports 2, a visible one 1.
const focusProbe = `() => (document.hasFocus() ? 2 : (document.visibilityState === 'visible' ? 1 : 0))`

// CDPSource attaches to a running Chromium over the DevTools protocol and
// snapshots its focused tab.
type CDPSource struct {
	Endpoint string
	// Install downloads the Playwright driver (not the browsers) before the
	// first connection.
	Install bool

	// mu guards the connection against a Close that runs while a timed-out
	// snapshot is still in flight.
	mu      sync.Mutex
	closed  bool
	pw      *playwright.Playwright
	browser playwright.Browser
}

// ErrSourceClosed is returned by Snapshot after Close.
var ErrSourceClosed = errors.New("browser source closed")

// connect returns the attached browser, starting Playwright on first use.
func (s *CDPSource) connect() (playwright.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}
	if s.browser != nil {
		return s.browser, nil
	}
	opts := &playwright.RunOptions{
		Verbose:             false,
		Stdout:              io.Discard,
		Stderr:              io.Discard,
		SkipInstallBrowsers: true,
	}
	if s.Install {
		if err := playwright.Install(opts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	b, err := pw.Chromium.ConnectOverCDP(s.Endpoint)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: connect %s: %v", ErrNoActivePage, s.Endpoint, err)
	}
	s.pw = pw
	s.browser = b
	return b, nil
}

// Snapshot returns the content of the focused tab, falling back to the last
// visible one.
func (s *CDPSource) Snapshot(ctx context.Context) (extract.Page, error) {
	type result struct {
		page extract.Page
		err  error
	}
	done := make(chan result, 1)
	go func() {
		p, err := s.snapshot()
		done <- result{p, err}
	}()
	select {
	case <-ctx.Done():
		return extract.Page{}, fmt.Errorf("snapshot: %w", ctx.Err())
	case r := <-done:
		return r.page, r.err
	}
}

func (s *CDPSource) snapshot() (extract.Page, error) {
	browser, err := s.connect()
	if err != nil {
		return extract.Page{}, err
	}
	var best playwright.Page
	bestScore := 0
	for _, bc := range browser.Contexts() {
		for _, p := range bc.Pages() {
			v, err := p.Evaluate(focusProbe)
			if err != nil {
				log.Debug().Err(err).Str("url", p.URL()).Msg("focus probe failed")
				continue
			}
			score := probeScore(v)
			if score > 0 && score >= bestScore {
				best, bestScore = p, score
			}
		}
	}
	if best == nil {
		return extract.Page{}, ErrNoActivePage
	}
	html, err := best.Content()
	if err != nil {
		return extract.Page{}, fmt.Errorf("read page content: %w", err)
	}
	return extract.Page{HTML: []byte(html), URL: best.URL()}, nil
}

func probeScore(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// Close detaches from the browser and stops Playwright. It waits for a
// connection attempt in progress, so a driver started by a late connect is
// still stopped. Snapshots after Close fail with ErrSourceClosed.
func (s *CDPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
	if s.pw != nil {
		err := s.pw.Stop()
		s.pw = nil
		return err
	}
	return nil
}

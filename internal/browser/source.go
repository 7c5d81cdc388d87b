// Package browser provides snapshots of the browsing context a capture runs
// against.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperifyio/ticketcapture/internal/extract"
)

// ErrNoActivePage is returned when there is no focused page to capture.
var ErrNoActivePage = errors.New("no active page")

// Source produces a snapshot of the currently focused page.
type Source interface {
	Snapshot(ctx context.Context) (extract.Page, error)
	Close() error
}

// FileSource reads a saved HTML snapshot. URL stands in for the page
// location; when empty the file URL is used.
type FileSource struct {
	Path string
	URL  string
}

func (s *FileSource) Snapshot(_ context.Context) (extract.Page, error) {
	if s == nil || s.Path == "" {
		return extract.Page{}, ErrNoActivePage
	}
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return extract.Page{}, fmt.Errorf("%w: %s", ErrNoActivePage, s.Path)
	}
	if err != nil {
		return extract.Page{}, fmt.Errorf("read snapshot: %w", err)
	}
	u := s.URL
	if u == "" {
		abs, err := filepath.Abs(s.Path)
		if err != nil {
			abs = s.Path
		}
		u = "file://" + filepath.ToSlash(abs)
	}
	return extract.Page{HTML: b, URL: u}, nil
}

func (s *FileSource) Close() error { return nil }

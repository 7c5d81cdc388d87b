package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/hyperifyio/ticketcapture/internal/extract"
)

// Allowlist matches page URLs against glob patterns. An empty list allows
// every URL.
type Allowlist struct {
	patterns []string
	globs    []glob.Glob
}

// NewAllowlist compiles patterns such as "https://*.crm.ondemand.com/*".
func NewAllowlist(patterns []string) (*Allowlist, error) {
	a := &Allowlist{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid page pattern %q: %w", p, err)
		}
		a.patterns = append(a.patterns, p)
		a.globs = append(a.globs, g)
	}
	return a, nil
}

// Allows reports whether url matches any pattern.
func (a *Allowlist) Allows(url string) bool {
	if a == nil || len(a.globs) == 0 {
		return true
	}
	for _, g := range a.globs {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// Restrict wraps src so snapshots of pages outside the allowlist are
// reported as ErrNoActivePage.
func Restrict(src Source, a *Allowlist) Source {
	if a == nil || len(a.globs) == 0 {
		return src
	}
	return &restricted{Source: src, allow: a}
}

type restricted struct {
	Source
	allow *Allowlist
}

func (r *restricted) Snapshot(ctx context.Context) (extract.Page, error) {
	p, err := r.Source.Snapshot(ctx)
	if err != nil {
		return p, err
	}
	if !r.allow.Allows(p.URL) {
		return extract.Page{}, fmt.Errorf("%w: %s is not an allowed page", ErrNoActivePage, p.URL)
	}
	return p, nil
}

// Package store persists the ordered list of captured records under the
// single key "captures".
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hyperifyio/ticketcapture/internal/capture"
)

// Key is the only key the capture list is stored under.
const Key = "captures"

// Store is the capture list contract: read everything, replace everything.
type Store interface {
	// Get returns the stored records, or an empty slice when nothing was
	// ever written.
	Get(ctx context.Context) ([]capture.Record, error)
	Set(ctx context.Context, records []capture.Record) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver      string
	Dir         string
	StrictPerms bool
}

// Drivers lists the accepted Options.Driver values.
var Drivers = []string{"file", "sqlite", "memory"}

// Open returns the backend named by opts.Driver. An empty driver means "file".
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case "", "file":
		return &File{Path: filepath.Join(opts.Dir, "captures.json"), StrictPerms: opts.StrictPerms}, nil
	case "sqlite":
		return OpenSQLite(filepath.Join(opts.Dir, "captures.db"), opts.StrictPerms)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}

// Append adds rec to the end of the list.
func Append(ctx context.Context, s Store, rec capture.Record) ([]capture.Record, error) {
	records, err := s.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read captures: %w", err)
	}
	records = append(records, rec)
	if err := s.Set(ctx, records); err != nil {
		return nil, fmt.Errorf("write captures: %w", err)
	}
	return records, nil
}

// Memory keeps records in process memory.
type Memory struct {
	mu      sync.Mutex
	records []capture.Record
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get(_ context.Context) ([]capture.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]capture.Record{}, m.records...), nil
}

func (m *Memory) Set(_ context.Context, records []capture.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]capture.Record{}, records...)
	return nil
}

func (m *Memory) Close() error { return nil }

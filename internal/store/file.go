package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperifyio/ticketcapture/internal/capture"
)

// document is the on-disk shape: {"captures": [...]}.
type document struct {
	Captures []capture.Record `json:"captures"`
}

// File stores the capture list as one JSON document, replaced atomically on
// every write.
type File struct {
	Path string
	// StrictPerms, when true, enforces 0700 on the directory and 0600 on the
	// file.
	StrictPerms bool
}

func (f *File) ensureDir() error {
	if f == nil || f.Path == "" {
		return errors.New("store path not configured")
	}
	dir := filepath.Dir(f.Path)
	perm := os.FileMode(0o755)
	if f.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	// If directory already existed and StrictPerms is on, tighten perms
	if f.StrictPerms {
		if info, err := os.Stat(dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(dir, 0o700)
		}
	}
	return nil
}

func (f *File) Get(_ context.Context) ([]capture.Record, error) {
	if err := f.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []capture.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	if doc.Captures == nil {
		doc.Captures = []capture.Record{}
	}
	return doc.Captures, nil
}

func (f *File) Set(_ context.Context, records []capture.Record) error {
	if err := f.ensureDir(); err != nil {
		return err
	}
	if records == nil {
		records = []capture.Record{}
	}
	mode := os.FileMode(0o644)
	if f.StrictPerms {
		mode = 0o600
	}
	tmp := f.Path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Captures: records}); err != nil {
		out.Close()
		return fmt.Errorf("encode captures: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if f.StrictPerms {
		_ = os.Chmod(tmp, 0o600)
	}
	return os.Rename(tmp, f.Path)
}

func (f *File) Close() error { return nil }

// Package export serializes captured records for spreadsheet applications.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hyperifyio/ticketcapture/internal/capture"
)

// FilenameLayout is ISO-8601 at second precision with ':' and 'T' replaced by '_'.
const FilenameLayout = "2006-01-02_15_04_05"

// Filename returns the export file name for a capture run at t.
func Filename(t time.Time) string {
	return "ticket_captures_" + t.UTC().Format(FilenameLayout) + ".csv"
}

// Options controls CSV output.
type Options struct {
	// BOM prefixes the output with a UTF-8 byte order mark so spreadsheet
	// apps detect the encoding.
	BOM bool
}

// CSV renders records with a header row. Every data field is double-quoted
// with embedded quotes doubled; rows are joined by '\n' with no trailing
// newline.
func CSV(records []capture.Record) []byte {
	var b bytes.Buffer
	b.WriteString(strings.Join(capture.Columns, ","))
	for _, r := range records {
		b.WriteByte('\n')
		for i, c := range capture.Columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(r.Field(c)))
		}
	}
	return b.Bytes()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Write encodes records to w.
func Write(w io.Writer, records []capture.Record, opts Options) error {
	if !opts.BOM {
		_, err := w.Write(CSV(records))
		return err
	}
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	if _, err := tw.Write(CSV(records)); err != nil {
		return err
	}
	// Close flushes the encoder; it does not close w.
	return tw.Close()
}

// WriteFile writes records into dir under Filename(at) and returns the path.
func WriteFile(dir string, at time.Time, records []capture.Record, opts Options) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir export dir: %w", err)
	}
	path := filepath.Join(dir, Filename(at))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := Write(f, records, opts); err != nil {
		f.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

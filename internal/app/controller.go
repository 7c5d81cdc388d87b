package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ticketcapture/internal/browser"
	"github.com/hyperifyio/ticketcapture/internal/capture"
	"github.com/hyperifyio/ticketcapture/internal/export"
	"github.com/hyperifyio/ticketcapture/internal/extract"
	"github.com/hyperifyio/ticketcapture/internal/store"
)

var (
	// ErrNoActiveTarget means there was no page to capture from.
	ErrNoActiveTarget = errors.New("no active page found")
	// ErrNothingFound means extraction ran but found no material field.
	ErrNothingFound = errors.New("extractor ran but did not find values; open the ticket detail page and try again")
	// ErrNothingToExport is returned by Export on an empty store.
	ErrNothingToExport = errors.New("no captures to export")
	// ErrClearDeclined is returned when the user does not confirm Clear.
	ErrClearDeclined = errors.New("clear cancelled")
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Controller runs the user-triggered actions: show, capture, export, clear.
type Controller struct {
	Store     store.Store
	Source    browser.Source
	Extractor extract.Extractor
	Confirm   Confirmer
	Out       io.Writer

	ExportDir     string
	ExportOptions export.Options
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c *Controller) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Last returns the most recently captured record, or nil.
func (c *Controller) Last(ctx context.Context) (*capture.Record, error) {
	records, err := c.Store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read captures: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	last := records[len(records)-1]
	return &last, nil
}

// Show renders the latest record or the empty state.
func (c *Controller) Show(ctx context.Context) error {
	last, err := c.Last(ctx)
	if err != nil {
		return err
	}
	RenderRecord(c.Out, last)
	return nil
}

// List renders every stored record.
func (c *Controller) List(ctx context.Context) error {
	records, err := c.Store.Get(ctx)
	if err != nil {
		return fmt.Errorf("read captures: %w", err)
	}
	RenderList(c.Out, records, c.now())
	return nil
}

// Capture extracts a record from the focused page and appends it to the
// store. Records with no material field are logged and dropped.
func (c *Controller) Capture(ctx context.Context) (capture.Record, error) {
	if c.Source == nil {
		return capture.Record{}, ErrNoActiveTarget
	}
	page, err := c.Source.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, browser.ErrNoActivePage) {
			return capture.Record{}, fmt.Errorf("%w: %v", ErrNoActiveTarget, err)
		}
		return capture.Record{}, fmt.Errorf("snapshot page: %w", err)
	}
	res := c.Extractor.Extract(page)
	rec := res.Record
	if !rec.Material() {
		log.Warn().
			Str("url", rec.PageURL).
			Interface("record", rec).
			Int("phones", res.Stats.PhonesFound).
			Int("names", res.Stats.NamesFound).
			Msg("extraction result had no material fields")
		return rec, ErrNothingFound
	}
	records, err := store.Append(ctx, c.Store, rec)
	if err != nil {
		return rec, err
	}
	log.Info().
		Str("ticket", capture.Deref(rec.TicketID)).
		Int("total", len(records)).
		Msg("captured")
	RenderRecord(c.Out, &rec)
	return rec, nil
}

// Export writes every record to a timestamped CSV file and returns its path.
func (c *Controller) Export(ctx context.Context) (string, error) {
	records, err := c.Store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read captures: %w", err)
	}
	if len(records) == 0 {
		return "", ErrNothingToExport
	}
	path, err := export.WriteFile(c.ExportDir, c.now(), records, c.ExportOptions)
	if err != nil {
		return "", err
	}
	log.Info().Str("out", path).Int("records", len(records)).Msg("wrote export")
	return path, nil
}

// Clear empties the store after the user confirms.
func (c *Controller) Clear(ctx context.Context) error {
	if c.Confirm == nil {
		return ErrClearDeclined
	}
	ok, err := c.Confirm.Confirm("Clear all saved captures?")
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return ErrClearDeclined
	}
	if err := c.Store.Set(ctx, []capture.Record{}); err != nil {
		return fmt.Errorf("clear captures: %w", err)
	}
	RenderRecord(c.Out, nil)
	return nil
}

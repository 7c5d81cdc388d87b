package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ticketcapture/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps command errors to the process exit status. Expected user
// notices exit 0, a missing capture target exits 2, anything else 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoActiveTarget):
		log.Error().Err(err).Msg("capture failed")
		return 2
	case isNotice(err):
		fmt.Fprintln(os.Stderr, err)
		return 0
	default:
		log.Error().Err(err).Msg("run failed")
		return 1
	}
}

// isNotice reports errors that describe an expected outcome rather than a
// failure.
func isNotice(err error) bool {
	return errors.Is(err, app.ErrNothingFound) ||
		errors.Is(err, app.ErrNothingToExport) ||
		errors.Is(err, app.ErrClearDeclined)
}

package app

import (
	"time"

	"github.com/hyperifyio/ticketcapture/internal/extract"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Store
	DataDir     string
	StoreDriver string
	StrictPerms bool

	// Browsing context
	CDPURL         string
	InstallDriver  bool
	CaptureTimeout time.Duration
	PagesAllow     []string

	// Export
	ExportDir string
	ExportBOM bool

	Selectors extract.Selectors
	Verbose   bool
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		DataDir:        defaultDataDir(),
		StoreDriver:    "file",
		CDPURL:         "http://127.0.0.1:9222",
		CaptureTimeout: 30 * time.Second,
		ExportDir:      ".",
		Selectors:      extract.DefaultSelectors(),
	}
}

package app

import (
	"os"
	"path/filepath"
	"runtime"
)

// defaultDataDir returns the platform-specific application data directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ticketcapture"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "TicketCapture")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "TicketCapture")
	default: // linux and others
		return filepath.Join(home, ".local", "share", "ticketcapture")
	}
}

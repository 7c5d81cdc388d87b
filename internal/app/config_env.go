package app

import (
	"os"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when they
// are set. Env takes precedence over the config file; flags are applied
// afterwards and win over both.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv("TICKETCAPTURE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TICKETCAPTURE_STORE"); v != "" {
		cfg.StoreDriver = v
	}
	if v := os.Getenv("TICKETCAPTURE_CDP_URL"); v != "" {
		cfg.CDPURL = v
	}
	if v := os.Getenv("TICKETCAPTURE_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TICKETCAPTURE_PAGES_ALLOW")); v != "" {
		cfg.PagesAllow = splitList(v)
	}
	if s := os.Getenv("TICKETCAPTURE_CAPTURE_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.CaptureTimeout = d
		}
	}

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, envKey string) {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			switch s {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	setBool(&cfg.StrictPerms, "TICKETCAPTURE_STRICT_PERMS")
	setBool(&cfg.ExportBOM, "TICKETCAPTURE_EXPORT_BOM")
	setBool(&cfg.InstallDriver, "TICKETCAPTURE_INSTALL_DRIVER")
	setBool(&cfg.Verbose, "VERBOSE")
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			list = append(list, v)
		}
	}
	return list
}

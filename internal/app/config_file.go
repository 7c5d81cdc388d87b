package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/ticketcapture/internal/browser"
	"github.com/hyperifyio/ticketcapture/internal/store"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Store struct {
		Driver      string `yaml:"driver" json:"driver"`
		Dir         string `yaml:"dir" json:"dir"`
		StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"store" json:"store"`

	Browser struct {
		CDP     string `yaml:"cdp" json:"cdp"`
		Install bool   `yaml:"install" json:"install"`
	} `yaml:"browser" json:"browser"`

	Capture struct {
		Timeout Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"capture" json:"capture"`

	Pages struct {
		Allow []string `yaml:"allow" json:"allow"`
	} `yaml:"pages" json:"pages"`

	Export struct {
		Dir string `yaml:"dir" json:"dir"`
		BOM bool   `yaml:"bom" json:"bom"`
	} `yaml:"export" json:"export"`

	Selectors struct {
		Header   []string `yaml:"header" json:"header"`
		HeaderID string   `yaml:"headerId" json:"headerId"`
		Consumer string   `yaml:"consumer" json:"consumer"`
		Creator  string   `yaml:"creator" json:"creator"`
	} `yaml:"selectors" json:"selectors"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Duration accepts "45s"-style strings in both YAML and JSON config files.
// Plain numbers are read as nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	return d.set(s)
}

func (d *Duration) set(v interface{}) error {
	switch x := v.(type) {
	case float64:
		*d = Duration(x)
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(x))
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", x, err)
		}
		*d = Duration(parsed)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. Call it on the
// defaults before env and flags are applied.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Store.Driver != "" {
		cfg.StoreDriver = fc.Store.Driver
	}
	if fc.Store.Dir != "" {
		cfg.DataDir = fc.Store.Dir
	}
	if fc.Store.StrictPerms {
		cfg.StrictPerms = true
	}
	if fc.Browser.CDP != "" {
		cfg.CDPURL = fc.Browser.CDP
	}
	if fc.Browser.Install {
		cfg.InstallDriver = true
	}
	if fc.Capture.Timeout > 0 {
		cfg.CaptureTimeout = time.Duration(fc.Capture.Timeout)
	}
	if len(fc.Pages.Allow) > 0 {
		cfg.PagesAllow = append([]string{}, fc.Pages.Allow...)
	}
	if fc.Export.Dir != "" {
		cfg.ExportDir = fc.Export.Dir
	}
	if fc.Export.BOM {
		cfg.ExportBOM = true
	}
	if len(fc.Selectors.Header) > 0 {
		cfg.Selectors.Header = append([]string{}, fc.Selectors.Header...)
	}
	if fc.Selectors.HeaderID != "" {
		cfg.Selectors.HeaderID = fc.Selectors.HeaderID
	}
	if fc.Selectors.Consumer != "" {
		cfg.Selectors.Consumer = fc.Selectors.Consumer
	}
	if fc.Selectors.Creator != "" {
		cfg.Selectors.Creator = fc.Selectors.Creator
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig rejects settings that would only fail later.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("config: store.dir is required")
	}
	if cfg.StoreDriver != "" && !slices.Contains(store.Drivers, cfg.StoreDriver) {
		return fmt.Errorf("config: unknown store.driver %q (want one of %s)", cfg.StoreDriver, strings.Join(store.Drivers, ", "))
	}
	if cfg.CaptureTimeout < 0 {
		return errors.New("config: capture.timeout must not be negative")
	}
	selectors := append([]string{cfg.Selectors.Consumer, cfg.Selectors.Creator}, cfg.Selectors.Header...)
	for _, s := range selectors {
		if s == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(s); err != nil {
			return fmt.Errorf("config: invalid selector %q: %w", s, err)
		}
	}
	if _, err := browser.NewAllowlist(cfg.PagesAllow); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/ticketcapture/internal/app"
	"github.com/hyperifyio/ticketcapture/internal/browser"
	"github.com/hyperifyio/ticketcapture/internal/export"
	"github.com/hyperifyio/ticketcapture/internal/extract"
	"github.com/hyperifyio/ticketcapture/internal/store"
)

// cli carries flag values and the resolved configuration between the root
// command and its subcommands.
type cli struct {
	configPath  string
	dataDir     string
	storeDriver string
	strictPerms bool
	verbose     bool

	cfg app.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "ticketcapture",
		Short:         "ticketcapture extracts ticket details from the focused CRM page and keeps a local capture log.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withController(cmd, nil, func(ctl *app.Controller) error {
				return ctl.Show(cmd.Context())
			})
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "Path to a YAML or JSON config file")
	pf.StringVar(&c.dataDir, "data.dir", "", "Directory holding the capture store")
	pf.StringVar(&c.storeDriver, "store.driver", "", "Capture store backend: "+strings.Join(store.Drivers, ", "))
	pf.BoolVar(&c.strictPerms, "strict-perms", false, "Restrict store permissions (0700 dirs, 0600 files)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(
		c.showCmd(),
		c.captureCmd(),
		c.exportCmd(),
		c.clearCmd(),
		c.listCmd(),
		versionCmd(),
	)
	return root
}

// resolve builds the configuration: defaults, dotenv files, config file,
// environment, then explicitly set flags.
func (c *cli) resolve(cmd *cobra.Command) error {
	if err := app.LoadEnvFiles(".env", ".env.local"); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	cfg := app.DefaultConfig()
	if c.configPath != "" {
		fc, err := app.LoadConfigFile(c.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	flags := cmd.Flags()
	if flags.Changed("data.dir") {
		cfg.DataDir = c.dataDir
	}
	if flags.Changed("store.driver") {
		cfg.StoreDriver = c.storeDriver
	}
	if flags.Changed("strict-perms") {
		cfg.StrictPerms = c.strictPerms
	}
	if flags.Changed("verbose") {
		cfg.Verbose = c.verbose
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// withController opens the store, assembles a Controller and runs fn.
func (c *cli) withController(cmd *cobra.Command, src browser.Source, fn func(*app.Controller) error) error {
	st, err := store.Open(store.Options{
		Driver:      c.cfg.StoreDriver,
		Dir:         c.cfg.DataDir,
		StrictPerms: c.cfg.StrictPerms,
	})
	if err != nil {
		return err
	}
	defer st.Close()
	if src != nil {
		defer src.Close()
	}
	ctl := &app.Controller{
		Store:         st,
		Source:        src,
		Extractor:     &extract.HeuristicExtractor{Selectors: c.cfg.Selectors},
		Out:           cmd.OutOrStdout(),
		ExportDir:     c.cfg.ExportDir,
		ExportOptions: export.Options{BOM: c.cfg.ExportBOM},
	}
	return fn(ctl)
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Shows the most recent capture.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withController(cmd, nil, func(ctl *app.Controller) error {
				return ctl.Show(cmd.Context())
			})
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists every stored capture.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withController(cmd, nil, func(ctl *app.Controller) error {
				return ctl.List(cmd.Context())
			})
		},
	}
}

func (c *cli) captureCmd() *cobra.Command {
	var (
		file    string
		pageURL string
		cdp     string
		install bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Extracts a record from the focused page and appends it to the store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("cdp") {
				c.cfg.CDPURL = cdp
			}
			if flags.Changed("install") {
				c.cfg.InstallDriver = install
			}
			if flags.Changed("timeout") {
				c.cfg.CaptureTimeout = timeout
			}
			allow, err := browser.NewAllowlist(c.cfg.PagesAllow)
			if err != nil {
				return err
			}
			var src browser.Source
			if file != "" {
				src = &browser.FileSource{Path: file, URL: pageURL}
			} else {
				src = &browser.CDPSource{Endpoint: c.cfg.CDPURL, Install: c.cfg.InstallDriver}
			}
			src = browser.Restrict(src, allow)

			ctx := cmd.Context()
			if c.cfg.CaptureTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, c.cfg.CaptureTimeout)
				defer cancel()
			}
			return c.withController(cmd, src, func(ctl *app.Controller) error {
				_, err := ctl.Capture(ctx)
				return err
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&file, "file", "", "Capture from a saved HTML snapshot instead of the browser")
	f.StringVar(&pageURL, "url", "", "Page URL to record with --file (defaults to the file URL)")
	f.StringVar(&cdp, "cdp", "", "Chromium DevTools endpoint (default from config)")
	f.BoolVar(&install, "install", false, "Install the Playwright driver before connecting")
	f.DurationVar(&timeout, "timeout", 0, "Abort the capture after this long (0 disables)")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		out string
		bom bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Writes all captures to a timestamped CSV file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("out") {
				c.cfg.ExportDir = out
			}
			if cmd.Flags().Changed("bom") {
				c.cfg.ExportBOM = bom
			}
			return c.withController(cmd, nil, func(ctl *app.Controller) error {
				path, err := ctl.Export(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Directory to write the CSV file into")
	cmd.Flags().BoolVar(&bom, "bom", false, "Prefix the file with a UTF-8 byte order mark")
	return cmd
}

func (c *cli) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Deletes every stored capture after confirmation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withController(cmd, nil, func(ctl *app.Controller) error {
				if yes {
					ctl.Confirm = app.ConfirmFunc(func(string) (bool, error) { return true, nil })
				} else {
					ctl.Confirm = promptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
				}
				return ctl.Clear(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// promptConfirmer asks on out and accepts "y" or "yes" from in.
func promptConfirmer(in io.Reader, out io.Writer) app.Confirmer {
	return app.ConfirmFunc(func(prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints build information.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ticketcapture %s (commit %s, built %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		},
	}
}

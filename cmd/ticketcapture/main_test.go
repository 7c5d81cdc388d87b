package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/ticketcapture/internal/app"
)

const snapshot = `<html><head><title>Case 7654321</title></head><body>
<div data-sap-automation-id="objectDetail-Header-Name">Case 7654321</div>
<a title="Maria Example">Maria</a>
<a>+358 40 123 4567</a>
</body></html>`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// Smoke test: capture from a snapshot, show it, export it and clear.
func TestCLI_CaptureShowExportClear(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte(snapshot), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	data := filepath.Join(dir, "data")
	exports := filepath.Join(dir, "exports")
	if err := os.Mkdir(exports, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	global := []string{"--data.dir", data}

	out, err := execute(t, "", append([]string{"capture", "--file", page, "--url", "https://crm.example.test/case"}, global...)...)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !strings.Contains(out, "7654321") || !strings.Contains(out, "Maria Example") {
		t.Fatalf("capture output missing fields:\n%s", out)
	}

	out, err = execute(t, "", append([]string{"show"}, global...)...)
	if err != nil || !strings.Contains(out, "+358 40 123 4567") {
		t.Fatalf("show: err=%v\n%s", err, out)
	}

	out, err = execute(t, "", append([]string{"export", "--out", exports}, global...)...)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	path := strings.TrimSpace(out)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export %q: %v", path, err)
	}
	if !strings.HasPrefix(string(b), "ticketId,consumerName,") || !strings.Contains(string(b), `"7654321"`) {
		t.Fatalf("unexpected csv:\n%s", b)
	}

	_, err = execute(t, "n\n", append([]string{"clear"}, global...)...)
	if !errors.Is(err, app.ErrClearDeclined) {
		t.Fatalf("declined clear: err=%v", err)
	}
	out, err = execute(t, "y\n", append([]string{"clear"}, global...)...)
	if err != nil || strings.TrimSpace(out) != app.EmptyState {
		t.Fatalf("clear: err=%v out=%q", err, out)
	}

	_, err = execute(t, "", append([]string{"export", "--out", exports}, global...)...)
	if !errors.Is(err, app.ErrNothingToExport) {
		t.Fatalf("export after clear: err=%v", err)
	}
}

func TestCLI_MissingSnapshotIsNoActiveTarget(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "capture", "--file", filepath.Join(dir, "missing.html"), "--data.dir", dir)
	if !errors.Is(err, app.ErrNoActiveTarget) {
		t.Fatalf("err=%v, want ErrNoActiveTarget", err)
	}
	if code := exitCode(err); code != 2 {
		t.Fatalf("exit code=%d, want 2", code)
	}
}

func TestCLI_RejectsUnknownDriver(t *testing.T) {
	_, err := execute(t, "", "show", "--data.dir", t.TempDir(), "--store.driver", "redis")
	if err == nil {
		t.Fatalf("expected config error")
	}
}

func TestCLI_FlagsBeatEnvironment(t *testing.T) {
	t.Setenv("TICKETCAPTURE_STORE", "redis")
	if _, err := execute(t, "", "show", "--data.dir", t.TempDir()); err == nil {
		t.Fatalf("env driver should apply when no flag is given")
	}
	out, err := execute(t, "", "show", "--data.dir", t.TempDir(), "--store.driver", "memory")
	if err != nil {
		t.Fatalf("flag should override env driver: %v", err)
	}
	if strings.TrimSpace(out) != app.EmptyState {
		t.Fatalf("show output=%q", out)
	}
}

func TestCLI_DataDirFlagBeatsEnvironment(t *testing.T) {
	envDir := t.TempDir()
	flagDir := t.TempDir()
	t.Setenv("TICKETCAPTURE_DATA_DIR", envDir)
	page := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(page, []byte(snapshot), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	if _, err := execute(t, "", "capture", "--file", page, "--data.dir", flagDir); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if _, err := os.Stat(filepath.Join(flagDir, "captures.json")); err != nil {
		t.Fatalf("store should be written under the flag dir: %v", err)
	}
	if entries, _ := os.ReadDir(envDir); len(entries) != 0 {
		t.Fatalf("env dir should stay untouched, found %d entries", len(entries))
	}
}

func TestExitCode(t *testing.T) {
	cases := map[error]int{
		nil:                    0,
		app.ErrNothingFound:    0,
		app.ErrNothingToExport: 0,
		app.ErrClearDeclined:   0,
		fmt.Errorf("x: %w", app.ErrNoActiveTarget): 2,
		errors.New("disk full"):                    1,
	}
	for err, want := range cases {
		if got := exitCode(err); got != want {
			t.Errorf("exitCode(%v)=%d, want %d", err, got, want)
		}
	}
}

func TestPromptConfirmer(t *testing.T) {
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false, "maybe\n": false} {
		ok, err := promptConfirmer(strings.NewReader(in), &bytes.Buffer{}).Confirm("Clear?")
		if err != nil || ok != want {
			t.Errorf("input %q: got %v err=%v, want %v", in, ok, err, want)
		}
	}
}

func TestCLI_VersionPrintsBuildInfo(t *testing.T) {
	prev := app.BuildVersion
	app.BuildVersion = "v9.9.9-test"
	t.Cleanup(func() { app.BuildVersion = prev })
	out, err := execute(t, "", "version", "--data.dir", t.TempDir())
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "ticketcapture v9.9.9-test (commit ") {
		t.Fatalf("version output=%q", out)
	}
}

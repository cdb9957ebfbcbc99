package cli

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

// writeSnapshot stores a two-branch history with one merge and returns its path.
func writeSnapshot(t *testing.T) string {
	t.Helper()
	base := time.Date(2025, 1, 29, 9, 0, 0, 0, time.UTC)
	commit := func(n int, oid, msg string, parents ...string) history.Commit {
		sig := history.Signature{Name: "Ada", Email: "ada@example.com", When: base.Add(time.Duration(n) * time.Minute)}
		return history.Commit{OID: oid, Parents: parents, Message: msg, Author: sig, Committer: sig}
	}
	snap := &history.Snapshot{
		HeadRef: history.Head{OID: "m", Name: "main", Kind: history.HeadBranch},
		Commits: []history.Commit{
			commit(0, "c0", "root"),
			commit(1, "p1", "feature work", "c0"),
			commit(2, "p2", "main work", "c0"),
			commit(3, "m", "Merge branch 'feature' into main", "p2", "p1"),
		},
		Branches: []history.BranchRef{{Name: "main", Target: "m"}},
	}

	path := filepath.Join(t.TempDir(), "snap.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := history.WriteSnapshot(snap, f); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns what it wrote to Out.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", xdg)
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join(xdg, appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"text"}},
		{"svg", []string{"svg"}},
		{"json, svg,dot", []string{"json", "svg", "dot"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGraphFlagsPrecedence(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "lanes.toml")
	data := "model = \"simple\"\nbranch_order = \"longest-first\"\nmax_count = 50\n"
	if err := os.WriteFile(cfg, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	var flags graphFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", cfg, "--order", "shortest-first"}); err != nil {
		t.Fatal(err)
	}

	def, err := flags.settings()
	if err != nil {
		t.Fatal(err)
	}
	if def.Model != settings.ModelSimple {
		t.Errorf("Model = %q, want config value %q", def.Model, settings.ModelSimple)
	}
	if def.MaxCount != 50 {
		t.Errorf("MaxCount = %d, want config value 50", def.MaxCount)
	}
	if def.BranchOrder != settings.OrderShortestFirst {
		t.Errorf("BranchOrder = %q, want flag value %q", def.BranchOrder, settings.OrderShortestFirst)
	}
	if !def.IncludeRemote {
		t.Error("IncludeRemote should keep its default when neither config nor flag set it")
	}
}

func TestGraphFlagsDefaults(t *testing.T) {
	var flags graphFlags
	def, err := flags.settings()
	if err != nil {
		t.Fatal(err)
	}
	want := settings.DefaultDef()
	if def.Model != want.Model || def.BranchOrder != want.BranchOrder || def.Forward != want.Forward {
		t.Errorf("settings() = %+v, want defaults %+v", def, want)
	}
}

func TestLayoutCommandText(t *testing.T) {
	snap := writeSnapshot(t)
	out, err := run(t, "layout", "--snapshot", snap, "--no-cache")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	want := []string{
		"○─╮  m (main) Merge branch 'feature' into main",
		"● │  p2 main work",
		"│ ●  p1 feature work",
		"●─╯  c0 root",
	}
	got := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("layout printed %d lines, want %d:\n%s", len(got), len(want), out)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLayoutCommandWritesFiles(t *testing.T) {
	snap := writeSnapshot(t)
	base := filepath.Join(t.TempDir(), "graph")
	if _, err := run(t, "layout", "--snapshot", snap, "--no-cache", "-f", "json,dot", "-o", base); err != nil {
		t.Fatalf("layout: %v", err)
	}
	for _, ext := range []string{"json", "dot"} {
		data, err := os.ReadFile(base + "." + ext)
		if err != nil {
			t.Fatalf("read %s output: %v", ext, err)
		}
		if len(data) == 0 {
			t.Errorf("%s output is empty", ext)
		}
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	snap := writeSnapshot(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"layout", "--snapshot", snap, "--no-cache", "-f", "gif"}},
		{"unknown model", []string{"layout", "--snapshot", snap, "--no-cache", "-m", "trunk"}},
		{"missing snapshot", []string{"layout", "--snapshot", filepath.Join(t.TempDir(), "nope.json"), "--no-cache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLogCommand(t *testing.T) {
	snap := writeSnapshot(t)
	out, err := run(t, "log", "--snapshot", snap, "--no-cache", "--no-color")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(out, "feature work") || !strings.Contains(out, "(main)") {
		t.Errorf("log output missing commits or refs:\n%s", out)
	}
}

func TestConfigShow(t *testing.T) {
	out, err := run(t, "config", "show", "--as", "yaml", "-m", settings.ModelSimple)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "model: "+settings.ModelSimple) {
		t.Errorf("config show output missing model:\n%s", out)
	}
	if !strings.Contains(out, "persistence:") {
		t.Errorf("config show should expand the branch model:\n%s", out)
	}

	if _, err := run(t, "config", "show", "--as", "xml"); err == nil {
		t.Error("config show --as xml: expected error")
	}
}

func TestConfigPresets(t *testing.T) {
	out, err := run(t, "config", "presets")
	if err != nil {
		t.Fatalf("config presets: %v", err)
	}
	for _, name := range settings.Models() {
		if !strings.Contains(out, name) {
			t.Errorf("presets output missing %q:\n%s", name, out)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(good, []byte("model: simple\nbranch_order: longest-first\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("branch_order = \"sideways\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "config", "validate", good); err != nil {
		t.Errorf("validate good config: %v", err)
	}
	if _, err := run(t, "config", "validate", bad); err == nil {
		t.Error("validate bad config: expected error")
	}
}

func TestCacheCommands(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	t.Setenv(envRedisURL, "")
	t.Setenv(envMongoURI, "")

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	dir := filepath.Join(xdg, appName)
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}

	snap := writeSnapshot(t)
	if _, err := run(t, "layout", "--snapshot", snap); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if n := countEntries(t, dir); n == 0 {
		t.Fatal("layout should populate the file cache")
	}

	out, err = run(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	if !strings.Contains(out, "1 layouts") {
		t.Errorf("cache list output:\n%s", out)
	}

	if _, err := run(t, "layout", "--snapshot", snap, "-m", "none"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := fc.Entries()
	if err != nil || len(entries) != 2 {
		t.Fatalf("Entries = %d, %v", len(entries), err)
	}
	if entries[0].Fingerprint == "" || entries[0].Fingerprint != entries[1].Fingerprint {
		t.Errorf("layouts of one snapshot should share a fingerprint: %q %q",
			entries[0].Fingerprint, entries[1].Fingerprint)
	}
	if _, err := run(t, "cache", "clear", entries[0].Fingerprint[:8]); err != nil {
		t.Fatalf("cache clear <fingerprint>: %v", err)
	}
	if n := countEntries(t, dir); n != 0 {
		t.Errorf("cache clear <fingerprint> left %d entries", n)
	}

	if _, err := run(t, "layout", "--snapshot", snap); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n := countEntries(t, dir); n != 0 {
		t.Errorf("cache clear left %d entries", n)
	}
}

func countEntries(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".json" {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
}

func TestFormatError(t *testing.T) {
	coded := errors.Wrap(errors.ErrCodeNotFound, fmt.Errorf("no such file"), "snapshot %s not found", "x.json")
	got := FormatError(coded)
	for _, want := range []string{"snapshot x.json not found", "no such file", "NOT_FOUND"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatError() = %q, missing %q", got, want)
		}
	}

	plain := FormatError(fmt.Errorf("boom"))
	if !strings.Contains(plain, "boom") {
		t.Errorf("FormatError() = %q, missing message", plain)
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/taskboard/internal/config"
)

func TestInitCommandCreatesStateDir(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"init", "--dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, config.Dir, "config.yaml")); err != nil {
		t.Fatalf("config.yaml missing: %v", err)
	}
	if !strings.Contains(out.String(), "Initialized") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"tui", "serve", "init"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing subcommand %s", name)
		}
	}
	if root.Flags().Lookup("project") == nil {
		t.Fatalf("root should accept --project")
	}
	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Fatalf("root should accept --verbose")
	}
}

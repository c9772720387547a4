package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/dhamidi/normls/config"
)

func TestParseCmdLineFormat(t *testing.T) {
	color.NoColor = true
	cmd := newParseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("a.c: Error!\nError: TOO_MANY_ARGS (line: 4, col: 0): too many arguments\n"))
	cmd.SetArgs([]string{"--format", "line"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "a.c:4:1:") || !strings.Contains(out.String(), "too many arguments") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestParseCmdRejectsMalformedReport(t *testing.T) {
	cmd := newParseCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("a.c: OK!\nError: X (line: 1, col: 1): y\n"))
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for trailing content after OK")
	}
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"main.c", "lib/ft.h", "lib/notes.md", "vendor/x.c"} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Files.Exclude = []string{"vendor/**"}

	files, err := collectFiles([]string{filepath.Join(root, "lib"), filepath.Join(root, "main.c")}, cfg, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{filepath.Join(root, "lib", "ft.h"), filepath.Join(root, "main.c")}
	if len(files) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, files)
	}
	for i := range expected {
		if files[i] != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], files[i])
		}
	}

	files, err = collectFiles([]string{root}, cfg, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range files {
		if strings.Contains(f, "vendor") {
			t.Errorf("excluded file %s was collected", f)
		}
	}

	if _, err := collectFiles([]string{filepath.Join(root, "missing")}, cfg, root); err == nil {
		t.Error("expected an error for a missing path")
	}
}

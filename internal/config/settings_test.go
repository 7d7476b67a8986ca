package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config", "shell.jsonc"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s != Defaults() {
		t.Fatalf("expected defaults, got %+v", s)
	}
	if s.Width != 1400 || s.Height != 820 || s.EntryURL != "app://local/play.htm" || s.LogLevel != "off" {
		t.Fatalf("unexpected defaults %+v", s)
	}
}

func TestLoadJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.jsonc")
	content := `{
		// larger window for the classroom projector
		"width": 1920,
		"height": 1080,
		"log_level": "debug", /* inline */
		"devtools": true,
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Width != 1920 || s.Height != 1080 || s.LogLevel != "debug" || !s.DevTools {
		t.Fatalf("unexpected settings %+v", s)
	}
	if s.Title != Defaults().Title || s.EntryURL != Defaults().EntryURL {
		t.Fatalf("zero fields should take defaults, got %+v", s)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.yaml")
	content := "title: Fables\nentry_url: app://local/index.htm\nlog_file: /tmp/fables.log\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Title != "Fables" || s.EntryURL != "app://local/index.htm" || s.LogFile != "/tmp/fables.log" {
		t.Fatalf("unexpected settings %+v", s)
	}
	if s.Width != 1400 {
		t.Fatalf("expected default width, got %d", s.Width)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.json")
	if err := os.WriteFile(path, []byte(`{"width": "wide"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shell.json")
	want := Defaults()
	want.Title = "Saved"
	want.Assets = "bundle.sqlar"

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	base := Defaults()
	base.LogLevel = "warn"
	base.LogFile = "from-config.log"

	f, err := ParseFlags("fables", nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if f.LogLevel != "off" || f.ConfigPath != DefaultPath {
		t.Fatalf("unexpected flag defaults %+v", f)
	}
	if got := f.Apply(base); got != base {
		t.Fatalf("unset flags must not override settings, got %+v", got)
	}

	f, err = ParseFlags("fables", []string{"-v", "TRACE", "--log-file", "run.log", "-a", "b.sqlar"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	got := f.Apply(base)
	if got.LogLevel != "TRACE" || got.LogFile != "run.log" || got.Assets != "b.sqlar" {
		t.Fatalf("flags should override settings, got %+v", got)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	if _, err := ParseFlags("fables", []string{"--nope"}, io.Discard); err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if _, err := ParseFlags("fables", []string{"extra"}, io.Discard); err == nil {
		t.Fatal("expected error for positional argument")
	}
	f, err := ParseFlags("fables", []string{"-h"}, io.Discard)
	if err != nil || !f.Help {
		t.Fatalf("expected help, got %+v, %v", f, err)
	}
}

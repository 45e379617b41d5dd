package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFindsManifest(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, `
[defaults]
format = "json"
color = "off"

[schema]
paths = ["schemas", "shared/schemas"]
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Defaults.Format != "json" || cfg.Defaults.Color != "off" {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if len(cfg.Schema.Paths) != 2 || cfg.Schema.Paths[0] != "schemas" {
		t.Errorf("schema paths = %v", cfg.Schema.Paths)
	}
	if cfg.Dir != dir {
		t.Errorf("dir = %q, want %q", cfg.Dir, dir)
	}
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	write(t, root, "[defaults]\nformat = \"beast\"\n")
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Defaults.Format != "beast" {
		t.Errorf("format = %q, manifest in an ancestor dir was not found", cfg.Defaults.Format)
	}
}

func TestLoadAbsentIsZero(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dir != "" || cfg.Defaults.Format != "" {
		t.Errorf("cfg = %+v, want zero", cfg)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "[defaults]\nformat = \"xml\"\n")
	if _, err := Load(dir); !errors.Is(err, ErrBadFormat) {
		t.Errorf("err = %v, want ErrBadFormat", err)
	}
}

func TestLoadBadTOML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "not [valid")
	if _, err := Load(dir); err == nil {
		t.Error("malformed manifest loaded without error")
	}
}

// Package config loads per-project east.toml settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest the loader walks up looking for.
const FileName = "east.toml"

// Config mirrors east.toml. A missing file yields the zero Config.
type Config struct {
	Defaults Defaults `toml:"defaults"`
	Schema   Schema   `toml:"schema"`

	// Dir is where the manifest was found, empty when none was.
	Dir string `toml:"-"`
}

// Defaults is the [defaults] section.
type Defaults struct {
	Format string `toml:"format"` // beast2, beast, json, csv, text
	Color  string `toml:"color"`  // auto, on, off
}

// Schema is the [schema] section.
type Schema struct {
	Paths []string `toml:"paths"`
}

// ErrBadFormat reports an unknown [defaults].format value.
var ErrBadFormat = errors.New("config: unknown format")

var formats = map[string]bool{
	"": true, "beast2": true, "beast": true, "json": true, "csv": true, "text": true,
}

// Load walks from dir toward the filesystem root looking for east.toml.
// No manifest found is not an error.
func Load(dir string) (Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return Config{}, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return loadFile(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Config{}, nil
		}
		dir = parent
	}
}

func loadFile(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Defaults.Format = strings.TrimSpace(cfg.Defaults.Format)
	if !formats[cfg.Defaults.Format] {
		return Config{}, fmt.Errorf("%s: %w %q", path, ErrBadFormat, cfg.Defaults.Format)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

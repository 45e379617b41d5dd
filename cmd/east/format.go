package main

import (
	"fmt"
	"io"
	"os"

	"east/internal/beast"
	"east/internal/beast2"
	"east/internal/config"
	"east/internal/east"
	"east/internal/ecsv"
	"east/internal/ejson"
	"east/internal/etext"
	"east/internal/schemacache"
)

// resolveFormat picks the wire format: the -f flag wins, then the
// east.toml default, then beast2.
func resolveFormat(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return "", err
	}
	if cfg.Defaults.Format != "" {
		return cfg.Defaults.Format, nil
	}
	return "beast2", nil
}

// loadSchema reads a schema file and parses the type, going through the
// disk cache when possible.
func loadSchema(path string) (*east.Type, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key := schemacache.Key(contents)

	cache, cacheErr := schemacache.Open("east")
	if cacheErr == nil {
		if p, ok, _ := cache.Load(key); ok {
			if t, err := etext.ParseType(p.TypeText); err == nil {
				return t, nil
			}
			// A stale or corrupt entry falls through to a fresh parse.
		}
	}

	t, err := etext.ParseType(string(contents))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cacheErr == nil {
		_ = cache.Store(key, &schemacache.Payload{
			Source:   path,
			TypeText: etext.EmitType(t),
		})
	}
	return t, nil
}

// encodeAs serializes a value in the named format.
func encodeAs(format string, v *east.Value, t *east.Type, full bool) ([]byte, error) {
	switch format {
	case "beast2":
		if full {
			return beast2.EncodeFull(v, t)
		}
		return beast2.Encode(v, t)
	case "beast":
		return beast.Encode(v, t)
	case "json":
		return ejson.Encode(v, t)
	case "csv":
		return ecsv.Encode(v, t)
	case "text":
		s, err := etext.Emit(v)
		if err != nil {
			return nil, err
		}
		return []byte(s + "\n"), nil
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

// decodeAs parses data in the named format against t.
func decodeAs(format string, data []byte, t *east.Type, full bool) (*east.Value, error) {
	switch format {
	case "beast2":
		if full {
			return beast2.DecodeFull(data, t)
		}
		return beast2.Decode(data, t)
	case "beast":
		return beast.Decode(data, t)
	case "json":
		return ejson.Decode(data, t)
	case "csv":
		return ecsv.Decode(data, t)
	case "text":
		return etext.Parse(string(data))
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

// readInput reads a file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes to a file, or stdout for "" and "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

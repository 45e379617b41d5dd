package schemacache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestStoreLoadRoundTrip(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key([]byte("Array<Integer>"))
	in := &Payload{Source: "a.east", TypeText: "Array<Integer>"}
	if err := c.Store(key, in); err != nil {
		t.Fatalf("store: %v", err)
	}

	out, ok, err := c.Load(key)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if out.TypeText != "Array<Integer>" || out.Source != "a.east" {
		t.Errorf("payload = %+v", out)
	}
	if out.Schema != schemaVersion {
		t.Errorf("schema = %d, want %d", out.Schema, schemaVersion)
	}
}

func TestLoadMissingIsMiss(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok, err := c.Load(Key([]byte("never stored"))); ok || err != nil {
		t.Errorf("ok=%v err=%v, want miss with no error", ok, err)
	}
}

func TestVersionMismatchIsMiss(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key([]byte("x"))

	// Write an entry with a future layout version directly, bypassing
	// Store's version stamp.
	forged, err := msgpack.Marshal(&Payload{Schema: schemaVersion + 1, TypeText: "Integer"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(c.pathFor(key), forged, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, _ := c.Load(key); ok {
		t.Error("future-version entry should read as a miss")
	}
}

func TestKeyIsContentHash(t *testing.T) {
	a := Key([]byte("Integer"))
	b := Key([]byte("Integer"))
	if a != b {
		t.Error("same contents should hash to the same key")
	}
	if a == Key([]byte("Float")) {
		t.Error("different contents should hash differently")
	}
}

func TestDropAll(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key([]byte("y"))
	if err := c.Store(key, &Payload{TypeText: "Float"}); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok, _ := c.Load(key); ok {
		t.Error("entry survived DropAll")
	}
	// The directory is usable again right away.
	if err := c.Store(key, &Payload{TypeText: "Float"}); err != nil {
		t.Errorf("store after drop: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(c.pathFor(key)))
	if err != nil || len(entries) != 1 {
		t.Errorf("cache dir entries = %d err=%v, want 1", len(entries), err)
	}
}

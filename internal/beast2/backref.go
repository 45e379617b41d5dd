package beast2

import "east/internal/east"

// Backreference contexts. Arrays, Sets, Dicts and Refs are the mutable
// container kinds: aliasing them is observable, so each is encoded inline
// exactly once and every later occurrence is a varint distance pointing back
// at the first. Distinct-but-equal containers are never merged; the encode
// context is keyed on pointer identity, not structure.
//
// Both contexts live for a single top-level encode or decode call.

// encContext maps a container's identity to the byte offset its contents
// were first encoded at.
type encContext struct {
	offsets map[*east.Value]int
}

func newEncContext() *encContext {
	return &encContext{offsets: make(map[*east.Value]int)}
}

func (c *encContext) lookup(v *east.Value) (int, bool) {
	off, ok := c.offsets[v]
	return off, ok
}

func (c *encContext) register(v *east.Value, off int) {
	c.offsets[v] = off
}

// decContext maps a byte offset to the container reconstructed at it.
// Containers are registered before their children decode, which is what
// lets a cycle resolve against a container that is still being filled in.
type decContext struct {
	values map[int]*east.Value
}

func newDecContext() *decContext {
	return &decContext{values: make(map[int]*east.Value)}
}

func (c *decContext) lookup(off int) (*east.Value, bool) {
	v, ok := c.values[off]
	return v, ok
}

func (c *decContext) register(off int, v *east.Value) {
	c.values[off] = v
}

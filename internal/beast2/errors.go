// Package beast2 implements the Beast2 binary codec: a headerless,
// type-driven varint format with backreference-based structural sharing of
// mutable containers, plus the self-describing "full" wrapper.
//
// All encoding is driven by the type tree the caller supplies; no type tags
// appear in the wire data. Encode and decode walk the type tree in the same
// order, so the byte stream and the type stay in lock step.
package beast2

import "errors"

var (
	// ErrTruncated reports a buffer that ended before the type tree did.
	ErrTruncated = errors.New("beast2: truncated input")

	// ErrBadMagic reports a full-format stream without the Beast2 magic.
	ErrBadMagic = errors.New("beast2: bad magic")

	// ErrBadBackref reports a backreference distance that does not point at
	// a previously decoded container.
	ErrBadBackref = errors.New("beast2: backreference to unknown offset")

	// ErrBadVariant reports a variant case index outside the type's case
	// list.
	ErrBadVariant = errors.New("beast2: variant case out of range")

	// ErrCaptureMismatch reports a closure whose encoded capture count does
	// not match the capture list in its own IR. The two are produced by the
	// same encoder; disagreement means the stream is corrupt.
	ErrCaptureMismatch = errors.New("beast2: capture count mismatch")

	// ErrBadValue reports a decoded payload that cannot inhabit the
	// requested type.
	ErrBadValue = errors.New("beast2: malformed value")
)

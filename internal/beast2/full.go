package beast2

import (
	"bytes"
	"fmt"

	"east/internal/east"
)

// Magic identifies a self-describing Beast2 stream. The CR/LF tail catches
// line-ending translation the way PNG's magic does.
var Magic = [8]byte{'E', 'A', 'S', 'T', 'B', '2', '\r', '\n'}

// EncodeFull encodes the magic, then the type itself as a value of the
// type-of-type descriptor, then the payload. The result decodes without the
// type being supplied out-of-band.
func EncodeFull(v *east.Value, t *east.Type) ([]byte, error) {
	e := encoder{buf: newEncbuf(), refs: newEncContext()}
	e.buf.Write(Magic[:])
	if err := e.encode(east.TypeToValue(t), east.TypeType()); err != nil {
		return nil, err
	}
	// The payload gets its own backreference context: schema and payload
	// are independent object graphs and must not alias across the boundary.
	e.refs = newEncContext()
	if err := e.encode(v, t); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// DecodeFull verifies the magic, decodes and discards the embedded schema,
// and decodes the payload against the caller-supplied type. The embedded
// schema exists for self-description and inspection; the payload is always
// interpreted the way the caller asked for.
func DecodeFull(data []byte, t *east.Type) (*east.Value, error) {
	d, err := openFull(data)
	if err != nil {
		return nil, err
	}
	if _, err := d.decode(east.TypeType()); err != nil {
		return nil, fmt.Errorf("beast2: schema: %w", err)
	}
	d.refs = newDecContext()
	return d.decode(t)
}

// DecodeSchema decodes only the embedded type schema of a full-format
// stream, returning the described type and the offset at which the payload
// begins.
func DecodeSchema(data []byte) (*east.Type, int, error) {
	d, err := openFull(data)
	if err != nil {
		return nil, 0, err
	}
	schema, err := d.decode(east.TypeType())
	if err != nil {
		return nil, 0, fmt.Errorf("beast2: schema: %w", err)
	}
	t, err := east.ValueToType(schema)
	if err != nil {
		return nil, 0, err
	}
	return t, d.buf.Pos(), nil
}

func openFull(data []byte) (*decoder, error) {
	if len(data) < len(Magic) || !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return nil, ErrBadMagic
	}
	d := &decoder{buf: newDecbuf(data), refs: newDecContext()}
	d.buf.pos = len(Magic)
	return d, nil
}

// Package beast implements the legacy Beast v1 binary codec: fixed-width
// scalars, 32-bit little-endian lengths, no varints and no backreferences.
// It predates structural sharing, so aliased containers are re-encoded at
// every occurrence and cyclic values cannot be represented at all.
package beast

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"

	"east/internal/east"
)

var (
	// ErrTruncated reports a buffer that ended before the type tree did.
	ErrTruncated = errors.New("beast: truncated input")

	// ErrUnsupported reports a kind the v1 format has no encoding for.
	ErrUnsupported = errors.New("beast: unsupported kind")

	// ErrCyclic reports a value graph too deep to be a tree; v1 has no
	// backreferences, so a cycle would encode forever.
	ErrCyclic = errors.New("beast: cyclic value")

	// ErrBadValue reports a payload that cannot inhabit the requested type.
	ErrBadValue = errors.New("beast: malformed value")
)

// maxDepth bounds the encode recursion. Legitimate trees of this depth do
// not occur; hitting the bound means the value graph cycles.
const maxDepth = 10000

// Encode encodes v as the Beast v1 form of type t.
func Encode(v *east.Value, t *east.Type) ([]byte, error) {
	e := v1encoder{}
	if err := e.encode(v, t, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type v1encoder struct {
	buf []byte
}

func (e *v1encoder) u32(n int) error {
	u, err := safecast.Conv[uint32](n)
	if err != nil {
		return fmt.Errorf("%w: length %d", ErrBadValue, n)
	}
	e.buf = binary.LittleEndian.AppendUint32(e.buf, u)
	return nil
}

func (e *v1encoder) u64(u uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, u)
}

func (e *v1encoder) encode(v *east.Value, t *east.Type, depth int) error {
	if depth > maxDepth {
		return ErrCyclic
	}
	switch t.Kind() {
	case east.Never, east.Null:
		return nil
	case east.Boolean:
		if v.Bool() {
			e.buf = append(e.buf, 1)
		} else {
			e.buf = append(e.buf, 0)
		}
		return nil
	case east.Integer, east.DateTime:
		e.u64(uint64(v.Int()))
		return nil
	case east.Float:
		e.u64(math.Float64bits(v.Float()))
		return nil
	case east.String:
		if err := e.u32(len(v.Str())); err != nil {
			return err
		}
		e.buf = append(e.buf, v.Str()...)
		return nil
	case east.Blob:
		if err := e.u32(len(v.Blob())); err != nil {
			return err
		}
		e.buf = append(e.buf, v.Blob()...)
		return nil
	case east.Array, east.Set:
		if err := e.u32(v.Len()); err != nil {
			return err
		}
		for i := 0; i < v.Len(); i++ {
			if err := e.encode(v.Index(i), t.Elem(), depth+1); err != nil {
				return err
			}
		}
		return nil
	case east.Dict:
		keys, vals := v.DictKeys(), v.DictValues()
		if err := e.u32(len(keys)); err != nil {
			return err
		}
		for i := range keys {
			if err := e.encode(keys[i], t.Key(), depth+1); err != nil {
				return err
			}
			if err := e.encode(vals[i], t.Elem(), depth+1); err != nil {
				return err
			}
		}
		return nil
	case east.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			fv := v.FieldByName(f.Name)
			if fv == nil {
				return fmt.Errorf("%w: missing field %q", ErrBadValue, f.Name)
			}
			if err := e.encode(fv, f.Type, depth+1); err != nil {
				return err
			}
		}
		return nil
	case east.Variant:
		idx := t.FieldIndex(v.CaseName())
		if idx < 0 {
			return fmt.Errorf("%w: case %q", ErrBadValue, v.CaseName())
		}
		if err := e.u32(idx); err != nil {
			return err
		}
		return e.encode(v.Payload(), t.Field(idx).Type, depth+1)
	case east.Ref:
		return e.encode(v.Deref(), t.Elem(), depth+1)
	case east.Vector:
		if err := e.u32(v.Len()); err != nil {
			return err
		}
		e.packed(v)
		return nil
	case east.Matrix:
		if err := e.u32(v.Rows()); err != nil {
			return err
		}
		if err := e.u32(v.Cols()); err != nil {
			return err
		}
		e.packed(v)
		return nil
	case east.Recursive:
		return e.encode(v, t.Node(), depth+1)
	}
	return fmt.Errorf("%w: %v", ErrUnsupported, t.Kind())
}

func (e *v1encoder) packed(v *east.Value) {
	switch v.ElemKind() {
	case east.Boolean:
		for _, x := range v.Bools() {
			if x {
				e.buf = append(e.buf, 1)
			} else {
				e.buf = append(e.buf, 0)
			}
		}
	case east.Integer:
		for _, x := range v.Ints() {
			e.u64(uint64(x))
		}
	default:
		for _, x := range v.Floats() {
			e.u64(math.Float64bits(x))
		}
	}
}

// Decode reconstructs the value encoded by Encode with the same type tree.
func Decode(data []byte, t *east.Type) (*east.Value, error) {
	d := v1decoder{data: data}
	v, err := d.decode(t, 0)
	if err != nil {
		return nil, err
	}
	return v, nil
}

type v1decoder struct {
	data []byte
	pos  int
}

func (d *v1decoder) bytes(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, ErrTruncated
	}
	p := d.data[d.pos : d.pos+n]
	d.pos += n
	return p, nil
}

func (d *v1decoder) u32() (int, error) {
	p, err := d.bytes(4)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(p)), nil
}

func (d *v1decoder) u64() (uint64, error) {
	p, err := d.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

func (d *v1decoder) decode(t *east.Type, depth int) (*east.Value, error) {
	if depth > maxDepth {
		return nil, ErrCyclic
	}
	switch t.Kind() {
	case east.Never, east.Null:
		return east.NullValue, nil
	case east.Boolean:
		p, err := d.bytes(1)
		if err != nil {
			return nil, err
		}
		return east.BooleanValue(p[0] != 0), nil
	case east.Integer:
		u, err := d.u64()
		if err != nil {
			return nil, err
		}
		return east.IntegerValue(int64(u)), nil
	case east.DateTime:
		u, err := d.u64()
		if err != nil {
			return nil, err
		}
		return east.DateTimeValue(int64(u)), nil
	case east.Float:
		u, err := d.u64()
		if err != nil {
			return nil, err
		}
		return east.FloatValue(math.Float64frombits(u)), nil
	case east.String:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		p, err := d.bytes(n)
		if err != nil {
			return nil, err
		}
		return east.StringValue(string(p)), nil
	case east.Blob:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		p, err := d.bytes(n)
		if err != nil {
			return nil, err
		}
		return east.BlobValue(append([]byte(nil), p...)), nil
	case east.Array, east.Set:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		out := east.ArrayValue()
		if t.Kind() == east.Set {
			out = east.SetValue()
		}
		for i := 0; i < n; i++ {
			elem, err := d.decode(t.Elem(), depth+1)
			if err != nil {
				return nil, err
			}
			if t.Kind() == east.Set {
				out.SetAdd(elem)
			} else {
				out.Append(elem)
			}
		}
		return out, nil
	case east.Dict:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		out := east.DictValue()
		for i := 0; i < n; i++ {
			key, err := d.decode(t.Key(), depth+1)
			if err != nil {
				return nil, err
			}
			val, err := d.decode(t.Elem(), depth+1)
			if err != nil {
				return nil, err
			}
			out.DictSet(key, val)
		}
		return out, nil
	case east.Struct:
		n := t.NumField()
		names := make([]string, n)
		fields := make([]*east.Value, n)
		for i := 0; i < n; i++ {
			f := t.Field(i)
			fv, err := d.decode(f.Type, depth+1)
			if err != nil {
				return nil, err
			}
			names[i], fields[i] = f.Name, fv
		}
		return east.StructValue(names, fields), nil
	case east.Variant:
		idx, err := d.u32()
		if err != nil {
			return nil, err
		}
		if idx >= t.NumField() {
			return nil, fmt.Errorf("%w: case %d of %d", ErrBadValue, idx, t.NumField())
		}
		f := t.Field(idx)
		payload, err := d.decode(f.Type, depth+1)
		if err != nil {
			return nil, err
		}
		return east.VariantValue(f.Name, payload), nil
	case east.Ref:
		inner, err := d.decode(t.Elem(), depth+1)
		if err != nil {
			return nil, err
		}
		return east.RefValue(inner), nil
	case east.Vector:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		return d.packed(t.Elem().Kind(), n, 0, 0, false)
	case east.Matrix:
		rows, err := d.u32()
		if err != nil {
			return nil, err
		}
		cols, err := d.u32()
		if err != nil {
			return nil, err
		}
		if cols != 0 && rows > int(^uint(0)>>1)/cols {
			return nil, fmt.Errorf("%w: matrix %dx%d", ErrBadValue, rows, cols)
		}
		return d.packed(t.Elem().Kind(), rows*cols, rows, cols, true)
	case east.Recursive:
		return d.decode(t.Node(), depth+1)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupported, t.Kind())
}

func (d *v1decoder) packed(elem east.Kind, n, rows, cols int, matrix bool) (*east.Value, error) {
	// Bound the count by the remaining input before allocating anything;
	// a forged u32 count must not drive a multi-gigabyte make.
	width := 8
	if elem == east.Boolean {
		width = 1
	}
	if n > (len(d.data)-d.pos)/width {
		return nil, ErrTruncated
	}
	switch elem {
	case east.Boolean:
		p, err := d.bytes(n)
		if err != nil {
			return nil, err
		}
		xs := make([]bool, n)
		for i, c := range p {
			xs[i] = c != 0
		}
		if matrix {
			return east.MatrixBoolean(rows, cols, xs), nil
		}
		return east.VectorBoolean(xs), nil
	case east.Integer:
		xs := make([]int64, n)
		for i := range xs {
			u, err := d.u64()
			if err != nil {
				return nil, err
			}
			xs[i] = int64(u)
		}
		if matrix {
			return east.MatrixInteger(rows, cols, xs), nil
		}
		return east.VectorInteger(xs), nil
	default:
		xs := make([]float64, n)
		for i := range xs {
			u, err := d.u64()
			if err != nil {
				return nil, err
			}
			xs[i] = math.Float64frombits(u)
		}
		if matrix {
			return east.MatrixFloat(rows, cols, xs), nil
		}
		return east.VectorFloat(xs), nil
	}
}

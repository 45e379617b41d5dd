package beast2

import (
	"fmt"
	"math"

	"fortio.org/safecast"

	"east/internal/east"
)

// Decode reconstructs the value encoded by Encode with the same type tree.
// Decoding fails as a whole: any format error surfaces as a non-nil error
// and no partial value is returned.
func Decode(data []byte, t *east.Type) (*east.Value, error) {
	d := decoder{buf: newDecbuf(data), refs: newDecContext()}
	return d.decode(t)
}

type decoder struct {
	buf  *decbuf
	refs *decContext
}

func (d *decoder) decode(t *east.Type) (*east.Value, error) {
	switch t.Kind() {
	case east.Never, east.Null:
		return east.NullValue, nil

	case east.Boolean:
		c, err := d.buf.ReadByte()
		if err != nil {
			return nil, err
		}
		return east.BooleanValue(c != 0), nil

	case east.Integer:
		x, err := d.buf.ReadSvarint()
		if err != nil {
			return nil, err
		}
		return east.IntegerValue(x), nil

	case east.DateTime:
		x, err := d.buf.ReadSvarint()
		if err != nil {
			return nil, err
		}
		return east.DateTimeValue(x), nil

	case east.Float:
		x, err := d.buf.ReadFloat64()
		if err != nil {
			return nil, err
		}
		return east.FloatValue(x), nil

	case east.String:
		p, err := d.counted()
		if err != nil {
			return nil, err
		}
		return east.StringValue(string(p)), nil

	case east.Blob:
		p, err := d.counted()
		if err != nil {
			return nil, err
		}
		return east.BlobValue(append([]byte(nil), p...)), nil

	case east.Array:
		return d.container(east.ArrayValue(), func(v *east.Value) error {
			elem, err := d.decode(t.Elem())
			if err != nil {
				return err
			}
			v.Append(elem)
			return nil
		})

	case east.Set:
		return d.container(east.SetValue(), func(v *east.Value) error {
			elem, err := d.decode(t.Elem())
			if err != nil {
				return err
			}
			v.SetAdd(elem)
			return nil
		})

	case east.Dict:
		return d.container(east.DictValue(), func(v *east.Value) error {
			key, err := d.decode(t.Key())
			if err != nil {
				return err
			}
			val, err := d.decode(t.Elem())
			if err != nil {
				return err
			}
			v.DictSet(key, val)
			return nil
		})

	case east.Struct:
		n := t.NumField()
		names := make([]string, n)
		fields := make([]*east.Value, n)
		for i := 0; i < n; i++ {
			f := t.Field(i)
			fv, err := d.decode(f.Type)
			if err != nil {
				return nil, err
			}
			names[i], fields[i] = f.Name, fv
		}
		return east.StructValue(names, fields), nil

	case east.Variant:
		idx, err := d.buf.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if idx >= uint64(t.NumField()) {
			return nil, fmt.Errorf("%w: case %d of %d", ErrBadVariant, idx, t.NumField())
		}
		f := t.Field(int(idx))
		payload, err := d.decode(f.Type)
		if err != nil {
			return nil, err
		}
		return east.VariantValue(f.Name, payload), nil

	case east.Ref:
		resolved, cell, err := d.backref(east.RefValue(east.NullValue))
		if err != nil || resolved != nil {
			return resolved, err
		}
		inner, err := d.decode(t.Elem())
		if err != nil {
			return nil, err
		}
		cell.SetDeref(inner)
		return cell, nil

	case east.Vector:
		n, err := d.count()
		if err != nil {
			return nil, err
		}
		return d.packed(t.Elem().Kind(), n, 0, 0)

	case east.Matrix:
		rows, err := d.count()
		if err != nil {
			return nil, err
		}
		cols, err := d.count()
		if err != nil {
			return nil, err
		}
		if cols != 0 && rows > int(^uint(0)>>1)/cols {
			return nil, fmt.Errorf("%w: matrix %dx%d", ErrBadValue, rows, cols)
		}
		return d.packed(t.Elem().Kind(), rows*cols, rows, cols)

	case east.Recursive:
		return d.decode(t.Node())

	case east.Function, east.AsyncFunction:
		return d.decodeFunction()
	}
	return nil, fmt.Errorf("beast2: decode of %v type", t.Kind())
}

// backref runs the decode side of the sharing protocol. A non-zero distance
// resolves to an already reconstructed container; otherwise fresh is
// registered at the content-start offset before any of its children decode,
// so cycles through this container resolve mid-decode.
func (d *decoder) backref(fresh *east.Value) (resolved, registered *east.Value, err error) {
	p := d.buf.Pos()
	dist, err := d.buf.ReadUvarint()
	if err != nil {
		return nil, nil, err
	}
	if dist > 0 {
		delta, err := safecast.Conv[int](dist)
		if err != nil || delta > p {
			return nil, nil, fmt.Errorf("%w: distance %d at offset %d", ErrBadBackref, dist, p)
		}
		v, ok := d.refs.lookup(p - delta)
		if !ok {
			return nil, nil, fmt.Errorf("%w: distance %d at offset %d", ErrBadBackref, dist, p)
		}
		return v, nil, nil
	}
	d.refs.register(d.buf.Pos(), fresh)
	return nil, fresh, nil
}

// container decodes a counted Array, Set or Dict behind the backreference
// protocol, calling one for each element.
func (d *decoder) container(fresh *east.Value, one func(*east.Value) error) (*east.Value, error) {
	resolved, v, err := d.backref(fresh)
	if err != nil || resolved != nil {
		return resolved, err
	}
	n, err := d.count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := one(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (d *decoder) count() (int, error) {
	u, err := d.buf.ReadUvarint()
	if err != nil {
		return 0, err
	}
	n, err := safecast.Conv[int](u)
	if err != nil {
		return 0, fmt.Errorf("%w: count %d", ErrBadValue, u)
	}
	return n, nil
}

func (d *decoder) counted() ([]byte, error) {
	n, err := d.count()
	if err != nil {
		return nil, err
	}
	return d.buf.ReadBytes(n)
}

// packed reads n packed elements of the given kind. rows/cols of 0,0 means
// a Vector; anything else builds a Matrix. The count is bounded by the
// remaining input before anything is allocated, so a forged count cannot
// drive a huge or overflowing make.
func (d *decoder) packed(elem east.Kind, n, rows, cols int) (*east.Value, error) {
	width := 8
	if elem == east.Boolean {
		width = 1
	}
	if n > d.buf.Remaining()/width {
		return nil, ErrTruncated
	}
	switch elem {
	case east.Boolean:
		p, err := d.buf.ReadBytes(n)
		if err != nil {
			return nil, err
		}
		xs := make([]bool, n)
		for i, c := range p {
			xs[i] = c != 0
		}
		if rows == 0 && cols == 0 {
			return east.VectorBoolean(xs), nil
		}
		return east.MatrixBoolean(rows, cols, xs), nil
	case east.Integer:
		p, err := d.buf.ReadBytes(n * 8)
		if err != nil {
			return nil, err
		}
		xs := make([]int64, n)
		for i := range xs {
			var u uint64
			for j := 0; j < 8; j++ {
				u |= uint64(p[i*8+j]) << (8 * j)
			}
			xs[i] = int64(u)
		}
		if rows == 0 && cols == 0 {
			return east.VectorInteger(xs), nil
		}
		return east.MatrixInteger(rows, cols, xs), nil
	default:
		p, err := d.buf.ReadBytes(n * 8)
		if err != nil {
			return nil, err
		}
		xs := make([]float64, n)
		for i := range xs {
			var u uint64
			for j := 0; j < 8; j++ {
				u |= uint64(p[i*8+j]) << (8 * j)
			}
			xs[i] = math.Float64frombits(u)
		}
		if rows == 0 && cols == 0 {
			return east.VectorFloat(xs), nil
		}
		return east.MatrixFloat(rows, cols, xs), nil
	}
}

// decodeFunction mirrors encodeFunction: the IR value comes first and is
// itself the source of truth for how many captures follow and at what
// types. The encoded count is a consistency cross-check against the IR, not
// a negotiation.
func (d *decoder) decodeFunction() (*east.Value, error) {
	ir, err := d.decode(east.IRType())
	if err != nil {
		return nil, err
	}
	caps, err := east.FunctionCaptures(ir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	n, err := d.buf.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n != uint64(len(caps)) {
		return nil, fmt.Errorf("%w: stream has %d, IR lists %d", ErrCaptureMismatch, n, len(caps))
	}
	captures := make(map[string]*east.Value, len(caps))
	for _, c := range caps {
		val, err := d.decode(c.Type)
		if err != nil {
			return nil, err
		}
		if c.Mutable {
			val = east.RefValue(val)
		}
		captures[c.Name] = val
	}
	return east.FunctionValue(ir, captures), nil
}

package beast2

import (
	"fmt"

	"east/internal/east"
)

// Encode encodes v as the headerless Beast2 form of type t. The type tree
// drives every byte written; the caller must supply the same tree to Decode.
//
// Encoding is total over well-typed input. A node whose value does not
// inhabit its type contributes zero bytes (lenient by contract, not a
// crash), except a Struct value missing a declared field, which is encoded
// as the field type's null placeholder so additively evolved schemas keep
// round-tripping.
func Encode(v *east.Value, t *east.Type) ([]byte, error) {
	e := encoder{buf: newEncbuf(), refs: newEncContext()}
	if err := e.encode(v, t); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf  *encbuf
	refs *encContext
}

func (e *encoder) encode(v *east.Value, t *east.Type) error {
	switch t.Kind() {
	case east.Never, east.Null:
		return nil

	case east.Boolean:
		if v.Kind() != east.Boolean {
			return nil
		}
		if v.Bool() {
			e.buf.WriteByte(1)
		} else {
			e.buf.WriteByte(0)
		}
		return nil

	case east.Integer, east.DateTime:
		if v.Kind() != east.Integer && v.Kind() != east.DateTime {
			return nil
		}
		e.buf.Svarint(v.Int())
		return nil

	case east.Float:
		if v.Kind() != east.Float {
			return nil
		}
		e.buf.Float64(v.Float())
		return nil

	case east.String:
		if v.Kind() != east.String {
			return nil
		}
		s := v.Str()
		e.buf.Uvarint(uint64(len(s)))
		e.buf.WriteString(s)
		return nil

	case east.Blob:
		if v.Kind() != east.Blob {
			return nil
		}
		p := v.Blob()
		e.buf.Uvarint(uint64(len(p)))
		e.buf.Write(p)
		return nil

	case east.Array, east.Set:
		if v.Kind() != east.Array && v.Kind() != east.Set {
			return nil
		}
		if e.backref(v) {
			return nil
		}
		n := v.Len()
		e.buf.Uvarint(uint64(n))
		for i := 0; i < n; i++ {
			if err := e.encode(v.Index(i), t.Elem()); err != nil {
				return err
			}
		}
		return nil

	case east.Dict:
		if v.Kind() != east.Dict {
			return nil
		}
		if e.backref(v) {
			return nil
		}
		keys, vals := v.DictKeys(), v.DictValues()
		e.buf.Uvarint(uint64(len(keys)))
		for i := range keys {
			if err := e.encode(keys[i], t.Key()); err != nil {
				return err
			}
			if err := e.encode(vals[i], t.Elem()); err != nil {
				return err
			}
		}
		return nil

	case east.Struct:
		// Structs are encoded by value, field after field in the type's
		// declared order, with no backreference: aliasing a struct is not
		// observable because struct values are never mutated in place.
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			var fv *east.Value
			if v.Kind() == east.Struct {
				fv = v.FieldByName(f.Name)
			}
			if fv == nil {
				if err := e.encodeZero(f.Type, 0); err != nil {
					return err
				}
				continue
			}
			if err := e.encode(fv, f.Type); err != nil {
				return err
			}
		}
		return nil

	case east.Variant:
		if v.Kind() != east.Variant {
			return nil
		}
		idx := t.FieldIndex(v.CaseName())
		if idx < 0 {
			return nil
		}
		e.buf.Uvarint(uint64(idx))
		return e.encode(v.Payload(), t.Field(idx).Type)

	case east.Ref:
		if v.Kind() != east.Ref {
			return nil
		}
		if e.backref(v) {
			return nil
		}
		return e.encode(v.Deref(), t.Elem())

	case east.Vector:
		if v.Kind() != east.Vector || v.ElemKind() != t.Elem().Kind() {
			return nil
		}
		e.buf.Uvarint(uint64(v.Len()))
		e.packed(v)
		return nil

	case east.Matrix:
		if v.Kind() != east.Matrix || v.ElemKind() != t.Elem().Kind() {
			return nil
		}
		e.buf.Uvarint(uint64(v.Rows()))
		e.buf.Uvarint(uint64(v.Cols()))
		e.packed(v)
		return nil

	case east.Recursive:
		return e.encode(v, t.Node())

	case east.Function, east.AsyncFunction:
		if v.Kind() != east.Function {
			return nil
		}
		return e.encodeFunction(v.Func())
	}
	return fmt.Errorf("beast2: encode of %v type", t.Kind())
}

// backref runs the sharing protocol for a container about to be encoded.
// It returns true when a backreference was written and the contents must
// not be re-encoded.
func (e *encoder) backref(v *east.Value) bool {
	if off, ok := e.refs.lookup(v); ok {
		e.buf.Uvarint(uint64(e.buf.Len() - off))
		return true
	}
	e.buf.Uvarint(0)
	e.refs.register(v, e.buf.Len())
	return false
}

// packed writes a Vector or Matrix payload at the element's native width:
// one byte per bool, 8 little-endian bytes per int64 or float64.
func (e *encoder) packed(v *east.Value) {
	switch v.ElemKind() {
	case east.Boolean:
		for _, x := range v.Bools() {
			if x {
				e.buf.WriteByte(1)
			} else {
				e.buf.WriteByte(0)
			}
		}
	case east.Integer:
		for _, x := range v.Ints() {
			var p [8]byte
			for i := range p {
				p[i] = byte(uint64(x) >> (8 * i))
			}
			e.buf.Write(p[:])
		}
	default:
		for _, x := range v.Floats() {
			e.buf.Float64(x)
		}
	}
}

// encodeFunction serializes a closure: first its defining IR node as an
// ordinary value of the IR descriptor, then the current value of each
// capture. The capture list is read back out of the IR value itself so that
// the order here is exactly the order the decoder will derive.
func (e *encoder) encodeFunction(fn *east.FuncValue) error {
	if err := e.encode(fn.IR, east.IRType()); err != nil {
		return err
	}
	caps, err := east.FunctionCaptures(fn.IR)
	if err != nil {
		return err
	}
	e.buf.Uvarint(uint64(len(caps)))
	for _, c := range caps {
		val := fn.Captures[c.Name]
		if c.Mutable && val != nil && val.Kind() == east.Ref {
			val = val.Deref()
		}
		if val == nil {
			if err := e.encodeZero(c.Type, 0); err != nil {
				return err
			}
			continue
		}
		if err := e.encode(val, c.Type); err != nil {
			return err
		}
	}
	return nil
}

// maxZeroDepth bounds null-placeholder synthesis; a placeholder for a type
// that recurses without a terminating case cannot be written finitely.
const maxZeroDepth = 1000

// encodeZero writes the null placeholder of type t: the encoding of t's
// zero value, emitted directly without materializing the value.
func (e *encoder) encodeZero(t *east.Type, depth int) error {
	if depth > maxZeroDepth {
		return fmt.Errorf("%w: unbounded null placeholder for %v", ErrBadValue, t.Kind())
	}
	switch t.Kind() {
	case east.Never, east.Null:
		return nil
	case east.Boolean:
		e.buf.WriteByte(0)
	case east.Integer, east.DateTime:
		e.buf.Svarint(0)
	case east.Float:
		e.buf.Float64(0)
	case east.String, east.Blob:
		e.buf.Uvarint(0)
	case east.Array, east.Set, east.Dict:
		// A fresh empty container: inline marker, zero count.
		e.buf.Uvarint(0)
		e.buf.Uvarint(0)
	case east.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := e.encodeZero(t.Field(i).Type, depth+1); err != nil {
				return err
			}
		}
	case east.Variant:
		e.buf.Uvarint(0)
		return e.encodeZero(t.Field(0).Type, depth+1)
	case east.Ref:
		e.buf.Uvarint(0)
		return e.encodeZero(t.Elem(), depth+1)
	case east.Vector:
		e.buf.Uvarint(0)
	case east.Matrix:
		e.buf.Uvarint(0)
		e.buf.Uvarint(0)
	case east.Recursive:
		return e.encodeZero(t.Node(), depth+1)
	case east.Function, east.AsyncFunction:
		return fmt.Errorf("%w: no null placeholder for %v", ErrBadValue, t.Kind())
	}
	return nil
}

// Package ejson implements the type-driven JSON codec. Like every East
// codec, the type tree dictates the shape of the output; JSON has no
// identity, so sharing collapses to copies and cyclic values are rejected.
package ejson

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"east/internal/east"
)

var (
	// ErrUnsupported reports a kind or payload JSON cannot carry.
	ErrUnsupported = errors.New("ejson: unsupported")

	// ErrCyclic reports a value graph too deep to be a tree.
	ErrCyclic = errors.New("ejson: cyclic value")

	// ErrParse reports JSON that does not match the type.
	ErrParse = errors.New("ejson: parse error")
)

const maxDepth = 10000

// Encode renders v as the JSON form of type t. Struct fields keep the
// type's declared order, which is why the emitter is hand-built instead of
// going through a map.
func Encode(v *east.Value, t *east.Type) ([]byte, error) {
	var sb strings.Builder
	if err := emit(&sb, v, t, 0); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func emit(sb *strings.Builder, v *east.Value, t *east.Type, depth int) error {
	if depth > maxDepth {
		return ErrCyclic
	}
	switch t.Kind() {
	case east.Never, east.Null:
		sb.WriteString("null")
		return nil
	case east.Boolean:
		sb.WriteString(strconv.FormatBool(v.Bool()))
		return nil
	case east.Integer, east.DateTime:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))
		return nil
	case east.Float:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite float", ErrUnsupported)
		}
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		return nil
	case east.String:
		return quote(sb, v.Str())
	case east.Blob:
		return quote(sb, base64.StdEncoding.EncodeToString(v.Blob()))
	case east.Array, east.Set:
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := emit(sb, v.Index(i), t.Elem(), depth+1); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
		return nil
	case east.Dict:
		keys, vals := v.DictKeys(), v.DictValues()
		if t.Key().Unwrap().Kind() == east.String {
			sb.WriteByte('{')
			for i := range keys {
				if i > 0 {
					sb.WriteByte(',')
				}
				if err := quote(sb, keys[i].Str()); err != nil {
					return err
				}
				sb.WriteByte(':')
				if err := emit(sb, vals[i], t.Elem(), depth+1); err != nil {
					return err
				}
			}
			sb.WriteByte('}')
			return nil
		}
		sb.WriteByte('[')
		for i := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('[')
			if err := emit(sb, keys[i], t.Key(), depth+1); err != nil {
				return err
			}
			sb.WriteByte(',')
			if err := emit(sb, vals[i], t.Elem(), depth+1); err != nil {
				return err
			}
			sb.WriteByte(']')
		}
		sb.WriteByte(']')
		return nil
	case east.Struct:
		sb.WriteByte('{')
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := quote(sb, f.Name); err != nil {
				return err
			}
			sb.WriteByte(':')
			fv := v.FieldByName(f.Name)
			if fv == nil {
				sb.WriteString("null")
				continue
			}
			if err := emit(sb, fv, f.Type, depth+1); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
		return nil
	case east.Variant:
		idx := t.FieldIndex(v.CaseName())
		if idx < 0 {
			return fmt.Errorf("%w: case %q", ErrUnsupported, v.CaseName())
		}
		sb.WriteByte('{')
		if err := quote(sb, v.CaseName()); err != nil {
			return err
		}
		sb.WriteByte(':')
		if err := emit(sb, v.Payload(), t.Field(idx).Type, depth+1); err != nil {
			return err
		}
		sb.WriteByte('}')
		return nil
	case east.Ref:
		// JSON has no identity: the cell is transparent and sharing is lost.
		return emit(sb, v.Deref(), t.Elem(), depth+1)
	case east.Vector:
		return emitPacked(sb, v, 0, v.Len())
	case east.Matrix:
		sb.WriteByte('[')
		for r := 0; r < v.Rows(); r++ {
			if r > 0 {
				sb.WriteByte(',')
			}
			if err := emitPacked(sb, v, r*v.Cols(), v.Cols()); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
		return nil
	case east.Recursive:
		return emit(sb, v, t.Node(), depth+1)
	}
	return fmt.Errorf("%w: %v", ErrUnsupported, t.Kind())
}

func emitPacked(sb *strings.Builder, v *east.Value, start, n int) error {
	sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		switch v.ElemKind() {
		case east.Boolean:
			sb.WriteString(strconv.FormatBool(v.Bools()[start+i]))
		case east.Integer:
			sb.WriteString(strconv.FormatInt(v.Ints()[start+i], 10))
		default:
			f := v.Floats()[start+i]
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%w: non-finite float", ErrUnsupported)
			}
			sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	sb.WriteByte(']')
	return nil
}

func quote(sb *strings.Builder, s string) error {
	q, err := json.Marshal(s)
	if err != nil {
		return err
	}
	sb.Write(q)
	return nil
}

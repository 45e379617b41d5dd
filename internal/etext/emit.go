package etext

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"east/internal/east"
)

// Sharing is not representable in text, so a cyclic value would render
// forever. The guard turns runaway depth into ErrCyclic.
const maxDepth = 10000

// Emit renders a value in East text syntax. Functions are not
// representable and cyclic values are rejected.
func Emit(v *east.Value) (string, error) {
	var sb strings.Builder
	if err := emit(&sb, v, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// EmitType renders a type in schema syntax.
func EmitType(t *east.Type) string { return t.String() }

func emit(sb *strings.Builder, v *east.Value, depth int) error {
	if depth > maxDepth {
		return ErrCyclic
	}
	switch v.Kind() {
	case east.Null:
		sb.WriteString("null")
	case east.Boolean:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case east.Integer:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case east.Float:
		sb.WriteString(formatFloat(v.Float()))
	case east.String:
		sb.WriteString(strconv.Quote(v.Str()))
	case east.DateTime:
		sb.WriteString("datetime")
		sb.WriteString(strconv.Quote(time.UnixMilli(v.Int()).UTC().Format(time.RFC3339Nano)))
	case east.Blob:
		sb.WriteString("blob")
		sb.WriteString(strconv.Quote(base64.StdEncoding.EncodeToString(v.Blob())))

	case east.Array, east.Set:
		if v.Kind() == east.Set {
			sb.WriteString("set")
		}
		sb.WriteString("[")
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := emit(sb, v.Index(i), depth+1); err != nil {
				return err
			}
		}
		sb.WriteString("]")

	case east.Dict:
		sb.WriteString("dict{")
		keys, vals := v.DictKeys(), v.DictValues()
		for i := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := emit(sb, keys[i], depth+1); err != nil {
				return err
			}
			sb.WriteString(": ")
			if err := emit(sb, vals[i], depth+1); err != nil {
				return err
			}
		}
		sb.WriteString("}")

	case east.Struct:
		sb.WriteString("{")
		for i, name := range v.FieldNames() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(name)
			sb.WriteString(": ")
			if err := emit(sb, v.FieldByName(name), depth+1); err != nil {
				return err
			}
		}
		sb.WriteString("}")

	case east.Variant:
		sb.WriteString(v.CaseName())
		sb.WriteString("(")
		if err := emit(sb, v.Payload(), depth+1); err != nil {
			return err
		}
		sb.WriteString(")")

	case east.Ref:
		sb.WriteString("ref(")
		if err := emit(sb, v.Deref(), depth+1); err != nil {
			return err
		}
		sb.WriteString(")")

	case east.Vector:
		sb.WriteString("vector[")
		emitPacked(sb, v)
		sb.WriteString("]")

	case east.Matrix:
		fmt.Fprintf(sb, "matrix[%d x %d][", v.Rows(), v.Cols())
		emitPacked(sb, v)
		sb.WriteString("]")

	case east.Function, east.AsyncFunction:
		return fmt.Errorf("%w: function values have no text form", ErrUnsupported)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupported, v.Kind())
	}
	return nil
}

func emitPacked(sb *strings.Builder, v *east.Value) {
	switch v.ElemKind() {
	case east.Boolean:
		for i, b := range v.Bools() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatBool(b))
		}
	case east.Integer:
		for i, n := range v.Ints() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatInt(n, 10))
		}
	default:
		for i, f := range v.Floats() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatFloat(f))
		}
	}
}

// formatFloat keeps the output parseable as a float: whole numbers get a
// trailing ".0" so they do not read back as integers.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

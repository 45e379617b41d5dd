package ejson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"east/internal/east"
)

// Decode parses JSON produced by Encode (or by anything shape-compatible
// with type t) back into a value.
func Decode(data []byte, t *east.Type) (*east.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parse(dec, t)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func parse(dec *json.Decoder, t *east.Type) (*east.Value, error) {
	switch t.Kind() {
	case east.Never, east.Null:
		tok, err := dec.Token()
		if err != nil {
			return nil, wrap(err)
		}
		if tok != nil {
			return nil, fmt.Errorf("%w: expected null, got %v", ErrParse, tok)
		}
		return east.NullValue, nil

	case east.Boolean:
		tok, err := dec.Token()
		if err != nil {
			return nil, wrap(err)
		}
		b, ok := tok.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected boolean, got %v", ErrParse, tok)
		}
		return east.BooleanValue(b), nil

	case east.Integer, east.DateTime:
		n, err := number(dec)
		if err != nil {
			return nil, err
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if t.Kind() == east.DateTime {
			return east.DateTimeValue(i), nil
		}
		return east.IntegerValue(i), nil

	case east.Float:
		n, err := number(dec)
		if err != nil {
			return nil, err
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return east.FloatValue(f), nil

	case east.String:
		s, err := str(dec)
		if err != nil {
			return nil, err
		}
		return east.StringValue(s), nil

	case east.Blob:
		s, err := str(dec)
		if err != nil {
			return nil, err
		}
		p, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return east.BlobValue(p), nil

	case east.Array, east.Set:
		if err := delim(dec, '['); err != nil {
			return nil, err
		}
		out := east.ArrayValue()
		if t.Kind() == east.Set {
			out = east.SetValue()
		}
		for dec.More() {
			elem, err := parse(dec, t.Elem())
			if err != nil {
				return nil, err
			}
			if t.Kind() == east.Set {
				out.SetAdd(elem)
			} else {
				out.Append(elem)
			}
		}
		if err := delim(dec, ']'); err != nil {
			return nil, err
		}
		return out, nil

	case east.Dict:
		out := east.DictValue()
		if t.Key().Unwrap().Kind() == east.String {
			if err := delim(dec, '{'); err != nil {
				return nil, err
			}
			for dec.More() {
				k, err := str(dec)
				if err != nil {
					return nil, err
				}
				v, err := parse(dec, t.Elem())
				if err != nil {
					return nil, err
				}
				out.DictSet(east.StringValue(k), v)
			}
			return out, delim(dec, '}')
		}
		if err := delim(dec, '['); err != nil {
			return nil, err
		}
		for dec.More() {
			if err := delim(dec, '['); err != nil {
				return nil, err
			}
			k, err := parse(dec, t.Key())
			if err != nil {
				return nil, err
			}
			v, err := parse(dec, t.Elem())
			if err != nil {
				return nil, err
			}
			if err := delim(dec, ']'); err != nil {
				return nil, err
			}
			out.DictSet(k, v)
		}
		return out, delim(dec, ']')

	case east.Struct:
		if err := delim(dec, '{'); err != nil {
			return nil, err
		}
		byName := map[string]*east.Value{}
		for dec.More() {
			name, err := str(dec)
			if err != nil {
				return nil, err
			}
			idx := t.FieldIndex(name)
			if idx < 0 {
				// Unknown fields are skipped, the open-world reading the
				// rest of the codecs share.
				var skip any
				if err := dec.Decode(&skip); err != nil {
					return nil, wrap(err)
				}
				continue
			}
			v, err := parse(dec, t.Field(idx).Type)
			if err != nil {
				return nil, err
			}
			byName[name] = v
		}
		if err := delim(dec, '}'); err != nil {
			return nil, err
		}
		names := make([]string, t.NumField())
		fields := make([]*east.Value, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			names[i] = t.Field(i).Name
			if v, ok := byName[names[i]]; ok {
				fields[i] = v
			} else {
				fields[i] = east.NullValue
			}
		}
		return east.StructValue(names, fields), nil

	case east.Variant:
		if err := delim(dec, '{'); err != nil {
			return nil, err
		}
		name, err := str(dec)
		if err != nil {
			return nil, err
		}
		idx := t.FieldIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: unknown case %q", ErrParse, name)
		}
		payload, err := parse(dec, t.Field(idx).Type)
		if err != nil {
			return nil, err
		}
		if err := delim(dec, '}'); err != nil {
			return nil, err
		}
		return east.VariantValue(name, payload), nil

	case east.Ref:
		inner, err := parse(dec, t.Elem())
		if err != nil {
			return nil, err
		}
		return east.RefValue(inner), nil

	case east.Vector:
		return parseRow(dec, t.Elem().Kind(), false, 0, 0)

	case east.Matrix:
		if err := delim(dec, '['); err != nil {
			return nil, err
		}
		var rows []*east.Value
		for dec.More() {
			row, err := parseRow(dec, t.Elem().Kind(), false, 0, 0)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		if err := delim(dec, ']'); err != nil {
			return nil, err
		}
		return joinRows(rows, t.Elem().Kind())

	case east.Recursive:
		return parse(dec, t.Node())
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupported, t.Kind())
}

func parseRow(dec *json.Decoder, elem east.Kind, _ bool, _, _ int) (*east.Value, error) {
	if err := delim(dec, '['); err != nil {
		return nil, err
	}
	var bs []bool
	var is []int64
	var fs []float64
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, wrap(err)
		}
		switch elem {
		case east.Boolean:
			b, ok := tok.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: expected boolean, got %v", ErrParse, tok)
			}
			bs = append(bs, b)
		case east.Integer:
			n, ok := tok.(json.Number)
			if !ok {
				return nil, fmt.Errorf("%w: expected number, got %v", ErrParse, tok)
			}
			i, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			is = append(is, i)
		default:
			n, ok := tok.(json.Number)
			if !ok {
				return nil, fmt.Errorf("%w: expected number, got %v", ErrParse, tok)
			}
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			fs = append(fs, f)
		}
	}
	if err := delim(dec, ']'); err != nil {
		return nil, err
	}
	switch elem {
	case east.Boolean:
		return east.VectorBoolean(bs), nil
	case east.Integer:
		return east.VectorInteger(is), nil
	default:
		return east.VectorFloat(fs), nil
	}
}

func joinRows(rows []*east.Value, elem east.Kind) (*east.Value, error) {
	cols := 0
	if len(rows) > 0 {
		cols = rows[0].Len()
	}
	for _, r := range rows {
		if r.Len() != cols {
			return nil, fmt.Errorf("%w: ragged matrix rows", ErrParse)
		}
	}
	switch elem {
	case east.Boolean:
		var xs []bool
		for _, r := range rows {
			xs = append(xs, r.Bools()...)
		}
		return east.MatrixBoolean(len(rows), cols, xs), nil
	case east.Integer:
		var xs []int64
		for _, r := range rows {
			xs = append(xs, r.Ints()...)
		}
		return east.MatrixInteger(len(rows), cols, xs), nil
	default:
		var xs []float64
		for _, r := range rows {
			xs = append(xs, r.Floats()...)
		}
		return east.MatrixFloat(len(rows), cols, xs), nil
	}
}

func number(dec *json.Decoder) (json.Number, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", wrap(err)
	}
	n, ok := tok.(json.Number)
	if !ok {
		return "", fmt.Errorf("%w: expected number, got %v", ErrParse, tok)
	}
	return n, nil
}

func str(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", wrap(err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %v", ErrParse, tok)
	}
	return s, nil
}

func delim(dec *json.Decoder, want rune) error {
	tok, err := dec.Token()
	if err != nil {
		return wrap(err)
	}
	d, ok := tok.(json.Delim)
	if !ok || rune(d) != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrParse, want, tok)
	}
	return nil
}

func wrap(err error) error {
	return fmt.Errorf("%w: %v", ErrParse, err)
}

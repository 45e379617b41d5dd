// Package ecsv reads and writes arrays of flat structs as CSV tables.
// The first record is the header and carries the struct field names in
// declaration order. Only scalar field types are representable.
package ecsv

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"east/internal/east"
)

var (
	ErrUnsupported = errors.New("ecsv: unsupported type")
	ErrParse       = errors.New("ecsv: parse error")
)

const timeLayout = time.RFC3339Nano

// Encode renders v, which must be an Array of Structs with scalar
// fields, as a CSV table with a header row.
func Encode(v *east.Value, t *east.Type) ([]byte, error) {
	row, err := rowType(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, row.NumField())
	for i := range header {
		header[i] = row.Field(i).Name
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	record := make([]string, row.NumField())
	for i := 0; i < v.Len(); i++ {
		rec := v.Index(i)
		for j := 0; j < row.NumField(); j++ {
			f := row.Field(j)
			cell, err := formatCell(rec.FieldByName(f.Name), f.Type)
			if err != nil {
				return nil, err
			}
			record[j] = cell
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a CSV table with a header row into an Array of Structs.
// Header columns are matched to struct fields by name; columns with no
// matching field are ignored and fields with no matching column are
// filled with null.
func Decode(data []byte, t *east.Type) (*east.Value, error) {
	row, err := rowType(t)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrParse)
	}
	header := records[0]
	colFor := make([]int, row.NumField())
	for i := range colFor {
		colFor[i] = -1
	}
	for col, name := range header {
		if idx := row.FieldIndex(name); idx >= 0 {
			colFor[idx] = col
		}
	}
	names := make([]string, row.NumField())
	for i := range names {
		names[i] = row.Field(i).Name
	}
	out := east.ArrayValue()
	for _, record := range records[1:] {
		fields := make([]*east.Value, row.NumField())
		for i := 0; i < row.NumField(); i++ {
			col := colFor[i]
			if col < 0 || col >= len(record) {
				fields[i] = east.NullValue
				continue
			}
			v, err := parseCell(record[col], row.Field(i).Type)
			if err != nil {
				return nil, err
			}
			fields[i] = v
		}
		out.Append(east.StructValue(names, fields))
	}
	return out, nil
}

// rowType validates that t describes a CSV-shaped table and returns the
// struct type of a single row.
func rowType(t *east.Type) (*east.Type, error) {
	t = t.Unwrap()
	if t.Kind() != east.Array {
		return nil, fmt.Errorf("%w: want Array of Struct, got %v", ErrUnsupported, t.Kind())
	}
	row := t.Elem().Unwrap()
	if row.Kind() != east.Struct {
		return nil, fmt.Errorf("%w: want Array of Struct, got Array of %v", ErrUnsupported, row.Kind())
	}
	for i := 0; i < row.NumField(); i++ {
		f := row.Field(i)
		switch f.Type.Unwrap().Kind() {
		case east.Null, east.Boolean, east.Integer, east.Float, east.String, east.DateTime, east.Blob:
		default:
			return nil, fmt.Errorf("%w: field %q has non-scalar type %v", ErrUnsupported, f.Name, f.Type.Unwrap().Kind())
		}
	}
	return row, nil
}

func formatCell(v *east.Value, t *east.Type) (string, error) {
	if v == nil || v.Kind() == east.Null {
		return "", nil
	}
	switch t.Unwrap().Kind() {
	case east.Boolean:
		return strconv.FormatBool(v.Bool()), nil
	case east.Integer:
		return strconv.FormatInt(v.Int(), 10), nil
	case east.Float:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case east.String:
		return v.Str(), nil
	case east.DateTime:
		return time.UnixMilli(v.Int()).UTC().Format(timeLayout), nil
	case east.Blob:
		return base64.StdEncoding.EncodeToString(v.Blob()), nil
	}
	return "", nil
}

func parseCell(cell string, t *east.Type) (*east.Value, error) {
	kind := t.Unwrap().Kind()
	if cell == "" && kind != east.String {
		return east.NullValue, nil
	}
	switch kind {
	case east.Null:
		return east.NullValue, nil
	case east.Boolean:
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return east.BooleanValue(b), nil
	case east.Integer:
		i, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return east.IntegerValue(i), nil
	case east.Float:
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return east.FloatValue(f), nil
	case east.String:
		return east.StringValue(cell), nil
	case east.DateTime:
		ts, err := time.Parse(timeLayout, cell)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return east.DateTimeValue(ts.UnixMilli()), nil
	case east.Blob:
		p, err := base64.StdEncoding.DecodeString(cell)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return east.BlobValue(p), nil
	}
	return east.NullValue, nil
}

package ecsv

import (
	"errors"
	"strings"
	"testing"

	"east/internal/east"
)

func tableType() *east.Type {
	return east.ArrayType(east.StructType(
		east.Field{Name: "name", Type: east.StringType},
		east.Field{Name: "score", Type: east.IntegerType},
		east.Field{Name: "ratio", Type: east.FloatType},
		east.Field{Name: "active", Type: east.BooleanType},
	))
}

func row(name string, score int64, ratio float64, active bool) *east.Value {
	return east.StructValue(
		[]string{"name", "score", "ratio", "active"},
		[]*east.Value{
			east.StringValue(name),
			east.IntegerValue(score),
			east.FloatValue(ratio),
			east.BooleanValue(active),
		},
	)
}

func TestRoundTrip(t *testing.T) {
	typ := tableType()
	v := east.ArrayValue(
		row("ada", 10, 0.5, true),
		row("grace, h", -3, 2.25, false), // comma forces quoting
	)
	data, err := Encode(v, typ)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, typ)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !east.Equal(got, v) {
		t.Fatalf("round trip mismatch:\n%s", data)
	}
}

func TestHeaderIsFieldNames(t *testing.T) {
	data, err := Encode(east.ArrayValue(), tableType())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "name,score,ratio,active" {
		t.Errorf("header = %q", got)
	}
}

func TestColumnsMatchedByName(t *testing.T) {
	// Reordered columns and an extra one the type does not know.
	csv := "extra,score,name,ratio,active\nx,7,ada,0.5,true\n"
	got, err := Decode([]byte(csv), tableType())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r := got.Index(0)
	if r.FieldByName("name").Str() != "ada" || r.FieldByName("score").Int() != 7 {
		t.Error("columns were not matched by header name")
	}
}

func TestMissingColumnReadsNull(t *testing.T) {
	csv := "name\nada\n"
	got, err := Decode([]byte(csv), tableType())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Index(0).FieldByName("score").Kind() != east.Null {
		t.Error("missing column should fill with null")
	}
}

func TestEmptyCellIsNull(t *testing.T) {
	csv := "name,score,ratio,active\nada,,0.5,true\n"
	got, err := Decode([]byte(csv), tableType())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Index(0).FieldByName("score").Kind() != east.Null {
		t.Error("empty integer cell should read as null")
	}
	// An empty string cell stays an empty string.
	csv = "name,score,ratio,active\n,1,0.5,true\n"
	got, err = Decode([]byte(csv), tableType())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Index(0).FieldByName("name").Str() != "" {
		t.Error("empty string cell should stay a string")
	}
}

func TestDateTimeAndBlobCells(t *testing.T) {
	typ := east.ArrayType(east.StructType(
		east.Field{Name: "at", Type: east.DateTimeType},
		east.Field{Name: "raw", Type: east.BlobType},
	))
	v := east.ArrayValue(east.StructValue(
		[]string{"at", "raw"},
		[]*east.Value{
			east.DateTimeValue(1704067200000),
			east.BlobValue([]byte{0xde, 0xad}),
		},
	))
	data, err := Encode(v, typ)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, typ)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !east.Equal(got, v) {
		t.Fatalf("round trip mismatch:\n%s", data)
	}
}

func TestNonTabularTypesRejected(t *testing.T) {
	if _, err := Encode(east.IntegerValue(1), east.IntegerType); !errors.Is(err, ErrUnsupported) {
		t.Errorf("scalar: err = %v, want ErrUnsupported", err)
	}
	nested := east.ArrayType(east.StructType(
		east.Field{Name: "kids", Type: east.ArrayType(east.IntegerType)},
	))
	if _, err := Encode(east.ArrayValue(), nested); !errors.Is(err, ErrUnsupported) {
		t.Errorf("nested: err = %v, want ErrUnsupported", err)
	}
}

func TestBadCell(t *testing.T) {
	csv := "name,score,ratio,active\nada,notanumber,0.5,true\n"
	if _, err := Decode([]byte(csv), tableType()); !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

package ejson

import (
	"errors"
	"math"
	"testing"

	"east/internal/east"
)

func roundTrip(t *testing.T, v *east.Value, typ *east.Type) *east.Value {
	t.Helper()
	data, err := Encode(v, typ)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, typ)
	if err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if !east.Equal(got, v) {
		t.Fatalf("round trip mismatch via %s", data)
	}
	return got
}

func TestRoundTripScalars(t *testing.T) {
	roundTrip(t, east.NullValue, east.NullType)
	roundTrip(t, east.TrueValue, east.BooleanType)
	roundTrip(t, east.IntegerValue(-12), east.IntegerType)
	roundTrip(t, east.FloatValue(2.25), east.FloatType)
	roundTrip(t, east.StringValue("with \"quotes\""), east.StringType)
	roundTrip(t, east.DateTimeValue(1704067200000), east.DateTimeType)
	roundTrip(t, east.BlobValue([]byte{1, 2, 3}), east.BlobType)
}

func TestRoundTripContainers(t *testing.T) {
	roundTrip(t,
		east.ArrayValue(east.IntegerValue(1), east.IntegerValue(2)),
		east.ArrayType(east.IntegerType))

	person := east.StructValue(
		[]string{"name", "age"},
		[]*east.Value{east.StringValue("ada"), east.IntegerValue(36)},
	)
	personType := east.StructType(
		east.Field{Name: "name", Type: east.StringType},
		east.Field{Name: "age", Type: east.IntegerType},
	)
	roundTrip(t, person, personType)

	roundTrip(t,
		east.VariantValue("ok", east.IntegerValue(200)),
		east.VariantType(
			east.Field{Name: "err", Type: east.StringType},
			east.Field{Name: "ok", Type: east.IntegerType},
		))

	roundTrip(t, east.RefValue(east.StringValue("inner")), east.RefType(east.StringType))
	roundTrip(t, east.VectorFloat([]float64{0.5, 1.5}), east.VectorType(east.FloatType))
	roundTrip(t,
		east.MatrixInteger(2, 2, []int64{1, 2, 3, 4}),
		east.MatrixType(east.IntegerType))
}

func TestDictObjectVsPairs(t *testing.T) {
	// String keys render as a JSON object.
	byName := east.DictValue()
	byName.DictSet(east.StringValue("a"), east.IntegerValue(1))
	data, err := Encode(byName, east.DictType(east.StringType, east.IntegerType))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("string-keyed dict = %s", data)
	}
	roundTrip(t, byName, east.DictType(east.StringType, east.IntegerType))

	// Anything else renders as an array of pairs.
	byNum := east.DictValue()
	byNum.DictSet(east.IntegerValue(7), east.StringValue("seven"))
	data, err = Encode(byNum, east.DictType(east.IntegerType, east.StringType))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(data) != `[[7,"seven"]]` {
		t.Errorf("integer-keyed dict = %s", data)
	}
	roundTrip(t, byNum, east.DictType(east.IntegerType, east.StringType))
}

func TestNonFiniteFloatsRejected(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if _, err := Encode(east.FloatValue(f), east.FloatType); !errors.Is(err, ErrUnsupported) {
			t.Errorf("Encode(%v): err = %v, want ErrUnsupported", f, err)
		}
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	typ := east.StructType(east.Field{Name: "a", Type: east.IntegerType})
	got, err := Decode([]byte(`{"extra": [1, {"x": 2}], "a": 5}`), typ)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FieldByName("a").Int() != 5 {
		t.Errorf("a = %d, want 5", got.FieldByName("a").Int())
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
		typ  *east.Type
	}{
		{"type mismatch", `"text"`, east.IntegerType},
		{"truncated", `[1, 2`, east.ArrayType(east.IntegerType)},
		{"unknown case", `{"nope": 1}`, east.VariantType(east.Field{Name: "ok", Type: east.IntegerType})},
		{"ragged matrix", `[[1, 2], [3]]`, east.MatrixType(east.IntegerType)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode([]byte(tc.data), tc.typ); !errors.Is(err, ErrParse) {
				t.Errorf("err = %v, want ErrParse", err)
			}
		})
	}
}

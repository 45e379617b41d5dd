package beast2

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
		t.Fatalf("decode: %v", err)
	}
	if !east.Equal(got, v) {
		t.Fatalf("round trip mismatch: got %v kind, want equal value", got.Kind())
	}
	return got
}

func TestRoundTripScalars(t *testing.T) {
	cases := []struct {
		name string
		v    *east.Value
		t    *east.Type
	}{
		{"null", east.NullValue, east.NullType},
		{"true", east.TrueValue, east.BooleanType},
		{"false", east.FalseValue, east.BooleanType},
		{"int zero", east.IntegerValue(0), east.IntegerType},
		{"int neg", east.IntegerValue(-42), east.IntegerType},
		{"int max", east.IntegerValue(math.MaxInt64), east.IntegerType},
		{"int min", east.IntegerValue(math.MinInt64), east.IntegerType},
		{"float", east.FloatValue(3.5), east.FloatType},
		{"float neg zero", east.FloatValue(math.Copysign(0, -1)), east.FloatType},
		{"string", east.StringValue("héllo"), east.StringType},
		{"string empty", east.StringValue(""), east.StringType},
		{"datetime", east.DateTimeValue(1704067200000), east.DateTimeType},
		{"blob", east.BlobValue([]byte{0, 1, 2, 255}), east.BlobType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			roundTrip(t, tc.v, tc.t)
		})
	}
}

func TestRoundTripNaN(t *testing.T) {
	data, err := Encode(east.FloatValue(math.NaN()), east.FloatType)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, east.FloatType)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !math.IsNaN(got.Float()) {
		t.Fatalf("got %v, want NaN", got.Float())
	}
}

func TestRoundTripContainers(t *testing.T) {
	arr := east.ArrayValue(east.IntegerValue(1), east.IntegerValue(2), east.IntegerValue(3))
	roundTrip(t, arr, east.ArrayType(east.IntegerType))

	set := east.SetValue(east.StringValue("b"), east.StringValue("a"))
	roundTrip(t, set, east.SetType(east.StringType))

	dict := east.DictValue()
	dict.DictSet(east.StringValue("x"), east.IntegerValue(10))
	dict.DictSet(east.StringValue("y"), east.IntegerValue(20))
	roundTrip(t, dict, east.DictType(east.StringType, east.IntegerType))

	person := east.StructValue(
		[]string{"name", "age"},
		[]*east.Value{east.StringValue("ada"), east.IntegerValue(36)},
	)
	personType := east.StructType(
		east.Field{Name: "name", Type: east.StringType},
		east.Field{Name: "age", Type: east.IntegerType},
	)
	roundTrip(t, person, personType)

	shape := east.VariantValue("circle", east.FloatValue(2.0))
	shapeType := east.VariantType(
		east.Field{Name: "circle", Type: east.FloatType},
		east.Field{Name: "square", Type: east.FloatType},
	)
	roundTrip(t, shape, shapeType)

	roundTrip(t, east.RefValue(east.IntegerValue(7)), east.RefType(east.IntegerType))
}

func TestRoundTripPacked(t *testing.T) {
	roundTrip(t, east.VectorFloat([]float64{1.5, -2.5}), east.VectorType(east.FloatType))
	roundTrip(t, east.VectorInteger([]int64{1, -2, 3}), east.VectorType(east.IntegerType))
	roundTrip(t, east.VectorBoolean([]bool{true, false, true}), east.VectorType(east.BooleanType))
	roundTrip(t,
		east.MatrixFloat(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		east.MatrixType(east.FloatType))
	roundTrip(t, east.VectorInteger(nil), east.VectorType(east.IntegerType))
}

func TestStructuralSharing(t *testing.T) {
	shared := east.ArrayValue(east.IntegerValue(1), east.IntegerValue(2))
	pair := east.StructValue([]string{"a", "b"}, []*east.Value{shared, shared})
	pairType := east.StructType(
		east.Field{Name: "a", Type: east.ArrayType(east.IntegerType)},
		east.Field{Name: "b", Type: east.ArrayType(east.IntegerType)},
	)

	data, err := Encode(pair, pairType)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// The second occurrence is a backreference: distance varint plus
	// nothing else, so the whole payload must be well under twice the
	// inline encoding of the array.
	solo, err := Encode(shared, east.ArrayType(east.IntegerType))
	if err != nil {
		t.Fatalf("encode solo: %v", err)
	}
	if len(data) >= 2*len(solo)+2 {
		t.Errorf("shared array encoded twice: %d bytes total, %d solo", len(data), len(solo))
	}

	got, err := Decode(data, pairType)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FieldByName("a") != got.FieldByName("b") {
		t.Error("decoded fields are distinct pointers, sharing was lost")
	}
}

func TestCyclicRef(t *testing.T) {
	// cell = ref(array containing cell)
	cellType := east.NewRecursive()
	cellType.AssignNode(east.RefType(east.ArrayType(cellType)))

	arr := east.ArrayValue()
	cell := east.RefValue(arr)
	arr.Append(cell)

	data, err := Encode(cell, cellType)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, cellType)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind() != east.Ref {
		t.Fatalf("got %v, want Ref", got.Kind())
	}
	inner := got.Deref()
	if inner.Len() != 1 || inner.Index(0) != got {
		t.Error("decoded cycle does not close back on the outer ref")
	}
}

func TestLenientKindMismatch(t *testing.T) {
	// A string where an integer is expected writes nothing and decodes
	// against the real type as whatever the bytes say.
	data, err := Encode(east.StringValue("oops"), east.IntegerType)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("mismatched encode produced %d bytes, want 0", len(data))
	}
}

func TestMissingStructField(t *testing.T) {
	// The value is missing "b"; a zero placeholder keeps the stream
	// aligned with the type.
	v := east.StructValue([]string{"a"}, []*east.Value{east.IntegerValue(5)})
	typ := east.StructType(
		east.Field{Name: "a", Type: east.IntegerType},
		east.Field{Name: "b", Type: east.StringType},
	)
	data, err := Encode(v, typ)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, typ)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FieldByName("a").Int() != 5 {
		t.Errorf("field a = %d, want 5", got.FieldByName("a").Int())
	}
	if got.FieldByName("b").Str() != "" {
		t.Errorf("field b = %q, want empty placeholder", got.FieldByName("b").Str())
	}
}

func TestDecodeTruncated(t *testing.T) {
	data, err := Encode(east.StringValue("hello"), east.StringType)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(data[:len(data)-1], east.StringType); err == nil {
		t.Error("truncated stream decoded without error")
	}
}

func TestDecodeBadBackref(t *testing.T) {
	// Distance 5 with no registered offset behind it.
	data := AppendUvarint(nil, 5)
	if _, err := Decode(data, east.ArrayType(east.IntegerType)); err == nil {
		t.Error("dangling backreference decoded without error")
	}
}

func TestForgedPackedCount(t *testing.T) {
	// A count claiming more elements than there are bytes left must fail
	// before anything is allocated, including counts whose byte size wraps
	// int when multiplied by the element width.
	for _, n := range []uint64{3, 1 << 40, 1 << 61} {
		data := AppendUvarint(nil, n)
		if _, err := Decode(data, east.VectorType(east.IntegerType)); !errors.Is(err, ErrTruncated) {
			t.Errorf("vector count %d: err = %v, want ErrTruncated", n, err)
		}
	}
	data := AppendUvarint(AppendUvarint(nil, 1<<20), 1<<20)
	if _, err := Decode(data, east.MatrixType(east.FloatType)); !errors.Is(err, ErrTruncated) {
		t.Errorf("forged matrix shape: err = %v, want ErrTruncated", err)
	}
}

func TestBadVariantCase(t *testing.T) {
	typ := east.VariantType(east.Field{Name: "only", Type: east.NullType})
	data := AppendUvarint(nil, 9)
	if _, err := Decode(data, typ); err == nil {
		t.Error("out of range case index decoded without error")
	}
}

package beast

import (
	"encoding/binary"
	"errors"
	"testing"

	"east/internal/east"
)

func roundTrip(t *testing.T, v *east.Value, typ *east.Type) {
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
		t.Fatal("round trip mismatch")
	}
}

func TestRoundTrip(t *testing.T) {
	roundTrip(t, east.IntegerValue(-7), east.IntegerType)
	roundTrip(t, east.StringValue("legacy"), east.StringType)
	roundTrip(t,
		east.ArrayValue(east.FloatValue(1.5), east.FloatValue(2.5)),
		east.ArrayType(east.FloatType))

	d := east.DictValue()
	d.DictSet(east.IntegerValue(1), east.StringValue("one"))
	roundTrip(t, d, east.DictType(east.IntegerType, east.StringType))
}

func TestFixedWidthScalars(t *testing.T) {
	// The legacy format spends 8 bytes on every integer, no varints.
	data, err := Encode(east.IntegerValue(1), east.IntegerType)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != 8 {
		t.Errorf("integer encoded in %d bytes, want 8", len(data))
	}
}

func TestSharingIsLost(t *testing.T) {
	// No backreferences: aliasing encodes the array twice and decodes to
	// distinct pointers.
	shared := east.ArrayValue(east.IntegerValue(1))
	pair := east.StructValue([]string{"a", "b"}, []*east.Value{shared, shared})
	typ := east.StructType(
		east.Field{Name: "a", Type: east.ArrayType(east.IntegerType)},
		east.Field{Name: "b", Type: east.ArrayType(east.IntegerType)},
	)
	data, err := Encode(pair, typ)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, typ)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FieldByName("a") == got.FieldByName("b") {
		t.Error("legacy format should not preserve sharing")
	}
	if !east.Equal(got.FieldByName("a"), got.FieldByName("b")) {
		t.Error("copies should still be structurally equal")
	}
}

func TestCyclicValueRejected(t *testing.T) {
	cellType := east.NewRecursive()
	cellType.AssignNode(east.RefType(east.ArrayType(cellType)))

	arr := east.ArrayValue()
	cell := east.RefValue(arr)
	arr.Append(cell)

	if _, err := Encode(cell, cellType); !errors.Is(err, ErrCyclic) {
		t.Errorf("err = %v, want ErrCyclic", err)
	}
}

func TestFunctionRejected(t *testing.T) {
	ir := east.IRFunction(nil, east.IntegerType, nil, east.IRInt(1))
	fn := east.FunctionValue(ir, nil)
	typ := east.FunctionType(nil, east.IntegerType)
	if _, err := Encode(fn, typ); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestForgedPackedCount(t *testing.T) {
	// A u32 count claiming billions of elements in a few-byte stream must
	// fail before anything is allocated.
	data := binary.LittleEndian.AppendUint32(nil, 1<<32-1)
	data = append(data, 0xff)
	if _, err := Decode(data, east.VectorType(east.IntegerType)); !errors.Is(err, ErrTruncated) {
		t.Errorf("vector: err = %v, want ErrTruncated", err)
	}

	shape := binary.LittleEndian.AppendUint32(nil, 1<<16)
	shape = binary.LittleEndian.AppendUint32(shape, 1<<16)
	if _, err := Decode(shape, east.MatrixType(east.FloatType)); !errors.Is(err, ErrTruncated) {
		t.Errorf("matrix: err = %v, want ErrTruncated", err)
	}
}

func TestMissingStructFieldIsError(t *testing.T) {
	// Unlike the current format, the legacy codec is strict.
	v := east.StructValue([]string{"a"}, []*east.Value{east.IntegerValue(1)})
	typ := east.StructType(
		east.Field{Name: "a", Type: east.IntegerType},
		east.Field{Name: "b", Type: east.IntegerType},
	)
	if _, err := Encode(v, typ); err == nil {
		t.Error("missing field encoded without error")
	}
}

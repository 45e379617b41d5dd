package beast2

import (
	"errors"
	"testing"

	"east/internal/east"
	"east/internal/interp"
)

func TestFullFormatRoundTrip(t *testing.T) {
	typ := east.StructType(
		east.Field{Name: "name", Type: east.StringType},
		east.Field{Name: "scores", Type: east.ArrayType(east.IntegerType)},
	)
	v := east.StructValue(
		[]string{"name", "scores"},
		[]*east.Value{
			east.StringValue("run-7"),
			east.ArrayValue(east.IntegerValue(3), east.IntegerValue(9)),
		},
	)

	data, err := EncodeFull(v, typ)
	if err != nil {
		t.Fatalf("encode full: %v", err)
	}
	if string(data[:8]) != string(Magic[:]) {
		t.Fatalf("stream does not start with magic: % x", data[:8])
	}

	schema, payloadOff, err := DecodeSchema(data)
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if !east.TypeEqual(schema, typ) {
		t.Errorf("embedded schema %v differs from original %v", schema, typ)
	}
	if payloadOff <= len(Magic) || payloadOff >= len(data) {
		t.Errorf("payload offset %d out of range", payloadOff)
	}

	got, err := DecodeFull(data, typ)
	if err != nil {
		t.Fatalf("decode full: %v", err)
	}
	if !east.Equal(got, v) {
		t.Error("full round trip mismatch")
	}
}

func TestFullFormatRecursiveSchema(t *testing.T) {
	tree := east.NewRecursive()
	tree.AssignNode(east.StructType(
		east.Field{Name: "label", Type: east.StringType},
		east.Field{Name: "kids", Type: east.ArrayType(tree)},
	))

	leaf := east.StructValue(
		[]string{"label", "kids"},
		[]*east.Value{east.StringValue("leaf"), east.ArrayValue()},
	)
	root := east.StructValue(
		[]string{"label", "kids"},
		[]*east.Value{east.StringValue("root"), east.ArrayValue(leaf)},
	)

	data, err := EncodeFull(root, tree)
	if err != nil {
		t.Fatalf("encode full: %v", err)
	}
	schema, _, err := DecodeSchema(data)
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if !east.TypeEqual(schema, tree) {
		t.Error("recursive schema did not survive the trip")
	}
	got, err := DecodeFull(data, tree)
	if err != nil {
		t.Fatalf("decode full: %v", err)
	}
	if !east.Equal(got, root) {
		t.Error("recursive value mismatch")
	}
}

func TestFullFormatCallerTypeWins(t *testing.T) {
	// The embedded schema is informational; the payload is always read
	// against the type the caller hands in.
	data, err := EncodeFull(east.IntegerValue(41), east.IntegerType)
	if err != nil {
		t.Fatalf("encode full: %v", err)
	}
	got, err := DecodeFull(data, east.DateTimeType)
	if err != nil {
		t.Fatalf("decode full: %v", err)
	}
	if got.Kind() != east.DateTime || got.Int() != 41 {
		t.Errorf("got %v %d, want DateTime 41", got.Kind(), got.Int())
	}
}

func TestBadMagic(t *testing.T) {
	if _, err := DecodeFull([]byte("NOTEAST\n payload"), east.NullType); !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
	if _, _, err := DecodeSchema(nil); !errors.Is(err, ErrBadMagic) {
		t.Errorf("empty input: err = %v, want ErrBadMagic", err)
	}
}

func TestClosureRoundTrip(t *testing.T) {
	// fn(x) = x + base + count.get(), base immutable, count a mutable cell.
	body := east.IRBinop("+",
		east.IRBinop("+", east.IRVar("x"), east.IRVar("base")),
		east.IRRefGet(east.IRVar("count")),
	)
	ir := east.IRFunction(
		[]east.Param{{Name: "x", Type: east.IntegerType}},
		east.IntegerType,
		[]east.Capture{
			{Name: "base", Type: east.IntegerType},
			{Name: "count", Type: east.IntegerType, Mutable: true},
		},
		body,
	)

	env := interp.NewEnv(nil)
	env.Define("base", east.IntegerValue(10))
	env.Define("count", east.RefValue(east.IntegerValue(1)))
	fn, err := interp.Close(ir, env)
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	fnType := east.FunctionType([]*east.Type{east.IntegerType}, east.IntegerType)
	data, err := Encode(fn, fnType)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, fnType)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind() != east.Function {
		t.Fatalf("got %v, want Function", got.Kind())
	}

	// The decoded closure must carry both captures, the mutable one
	// re-wrapped in a fresh cell.
	if got.Func().Captures["count"].Kind() != east.Ref {
		t.Error("mutable capture did not come back as a ref cell")
	}

	out, err := interp.Call(got, []*east.Value{east.IntegerValue(5)})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.Int() != 16 {
		t.Errorf("fn(5) = %d, want 16", out.Int())
	}
}

func TestClosureCaptureMismatch(t *testing.T) {
	ir := east.IRFunction(
		[]east.Param{},
		east.IntegerType,
		[]east.Capture{{Name: "a", Type: east.IntegerType}},
		east.IRVar("a"),
	)
	fn := east.FunctionValue(ir, map[string]*east.Value{"a": east.IntegerValue(1)})
	fnType := east.FunctionType(nil, east.IntegerType)

	data, err := Encode(fn, fnType)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Chop the capture section: the count no longer matches the list the
	// decoder derives from the IR.
	if _, err := Decode(data[:len(data)-2], fnType); err == nil {
		t.Error("mangled capture section decoded without error")
	}
}

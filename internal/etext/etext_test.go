package etext

import (
	"errors"
	"testing"

	"east/internal/east"
)

func reparse(t *testing.T, v *east.Value) {
	t.Helper()
	text, err := Emit(v)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	if !east.Equal(got, v) {
		t.Fatalf("round trip mismatch via %q", text)
	}
}

func TestEmitParseRoundTrip(t *testing.T) {
	reparse(t, east.NullValue)
	reparse(t, east.TrueValue)
	reparse(t, east.IntegerValue(-42))
	reparse(t, east.FloatValue(3.5))
	reparse(t, east.FloatValue(2)) // whole float must stay a float
	reparse(t, east.StringValue("line\nbreak \"q\""))
	reparse(t, east.DateTimeValue(1704067200000))
	reparse(t, east.BlobValue([]byte{1, 2, 255}))
	reparse(t, east.ArrayValue(east.IntegerValue(1), east.StringValue("two")))
	reparse(t, east.SetValue(east.IntegerValue(2), east.IntegerValue(1)))
	reparse(t, east.RefValue(east.IntegerValue(5)))
	reparse(t, east.VariantValue("some", east.IntegerValue(3)))
	reparse(t, east.VectorFloat([]float64{1.5, -0.25}))
	reparse(t, east.VectorBoolean([]bool{true, false}))
	reparse(t, east.MatrixInteger(2, 2, []int64{1, 2, 3, 4}))

	d := east.DictValue()
	d.DictSet(east.IntegerValue(1), east.StringValue("one"))
	d.DictSet(east.IntegerValue(2), east.StringValue("two"))
	reparse(t, d)

	reparse(t, east.StructValue(
		[]string{"name", "tags"},
		[]*east.Value{
			east.StringValue("x"),
			east.SetValue(east.StringValue("a")),
		},
	))
}

func TestEmitStableSyntax(t *testing.T) {
	v := east.StructValue(
		[]string{"id", "tags"},
		[]*east.Value{
			east.IntegerValue(7),
			east.ArrayValue(east.StringValue("a"), east.StringValue("b")),
		},
	)
	text, err := Emit(v)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	want := `{id: 7, tags: ["a", "b"]}`
	if text != want {
		t.Errorf("Emit = %q, want %q", text, want)
	}
}

func TestEmitMatrixSyntax(t *testing.T) {
	text, err := Emit(east.MatrixInteger(2, 3, []int64{1, 2, 3, 4, 5, 6}))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if text != "matrix[2 x 3][1, 2, 3, 4, 5, 6]" {
		t.Errorf("Emit = %q", text)
	}
}

func TestFunctionHasNoTextForm(t *testing.T) {
	ir := east.IRFunction(nil, east.IntegerType, nil, east.IRInt(1))
	fn := east.FunctionValue(ir, nil)
	if _, err := Emit(fn); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestEmitCyclicValueRejected(t *testing.T) {
	arr := east.ArrayValue()
	cell := east.RefValue(arr)
	arr.Append(cell)
	if _, err := Emit(cell); !errors.Is(err, ErrCyclic) {
		t.Errorf("err = %v, want ErrCyclic", err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"[1, 2",
		"{name}",
		`datetime 42`,
		`blob"not base64!"`,
		"matrix[2 x 2][1, 2, 3]",
		"vector[1, true]",
		"1 2",
		`"unterminated`,
	}
	for _, src := range cases {
		if _, err := Parse(src); !errors.Is(err, ErrParse) {
			t.Errorf("Parse(%q): err = %v, want ErrParse", src, err)
		}
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	types := []*east.Type{
		east.IntegerType,
		east.ArrayType(east.StringType),
		east.DictType(east.StringType, east.ArrayType(east.FloatType)),
		east.StructType(
			east.Field{Name: "name", Type: east.StringType},
			east.Field{Name: "age", Type: east.IntegerType},
		),
		east.VariantType(
			east.Field{Name: "none", Type: east.NullType},
			east.Field{Name: "some", Type: east.IntegerType},
		),
		east.VectorType(east.FloatType),
		east.MatrixType(east.BooleanType),
		east.RefType(east.BlobType),
		east.FunctionType([]*east.Type{east.IntegerType}, east.BooleanType),
	}
	for _, typ := range types {
		got, err := ParseType(EmitType(typ))
		if err != nil {
			t.Errorf("ParseType(%q): %v", EmitType(typ), err)
			continue
		}
		if !east.TypeEqual(got, typ) {
			t.Errorf("type round trip mismatch for %q", EmitType(typ))
		}
	}
}

func TestParseTypeRecursive(t *testing.T) {
	list := east.NewRecursive()
	list.AssignNode(east.VariantType(
		east.Field{Name: "nil", Type: east.NullType},
		east.Field{Name: "cons", Type: east.StructType(
			east.Field{Name: "head", Type: east.IntegerType},
			east.Field{Name: "tail", Type: list},
		)},
	))
	text := EmitType(list)
	got, err := ParseType(text)
	if err != nil {
		t.Fatalf("ParseType(%q): %v", text, err)
	}
	if !east.TypeEqual(got, list) {
		t.Errorf("recursive type round trip mismatch for %q", text)
	}

	// The schema syntax form from the docs parses too.
	got, err = ParseType("Recursive<r, Array<r>>")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	want := east.NewRecursive()
	want.AssignNode(east.ArrayType(want))
	if !east.TypeEqual(got, want) {
		t.Error("Recursive<r, Array<r>> parsed to the wrong shape")
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"Array<",
		"Array<Integer",
		"NoSuchType",
		"Struct{name}",
		"Recursive<r>",
		"Function(Integer) Integer",
		"Vector<String>",
		"Matrix<Array<Integer>>",
	} {
		if _, err := ParseType(src); !errors.Is(err, ErrParse) {
			t.Errorf("ParseType(%q): err = %v, want ErrParse", src, err)
		}
	}
}

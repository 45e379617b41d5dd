package east

import (
	"errors"
	"testing"
)

func typeTrip(t *testing.T, typ *Type) *Type {
	t.Helper()
	got, err := ValueToType(TypeToValue(typ))
	if err != nil {
		t.Fatalf("ValueToType: %v", err)
	}
	if !TypeEqual(got, typ) {
		t.Fatalf("type round trip mismatch: %v vs %v", got, typ)
	}
	return got
}

func TestTypeValueRoundTripScalars(t *testing.T) {
	for _, typ := range []*Type{
		NeverType, NullType, BooleanType, IntegerType, FloatType,
		StringType, DateTimeType, BlobType,
	} {
		typeTrip(t, typ)
	}
}

func TestTypeValueRoundTripCompound(t *testing.T) {
	typeTrip(t, ArrayType(IntegerType))
	typeTrip(t, SetType(StringType))
	typeTrip(t, DictType(StringType, ArrayType(FloatType)))
	typeTrip(t, RefType(BooleanType))
	typeTrip(t, VectorType(FloatType))
	typeTrip(t, MatrixType(IntegerType))
	typeTrip(t, StructType(
		Field{Name: "id", Type: IntegerType},
		Field{Name: "tags", Type: SetType(StringType)},
	))
	typeTrip(t, VariantType(
		Field{Name: "none", Type: NullType},
		Field{Name: "some", Type: IntegerType},
	))
	typeTrip(t, FunctionType([]*Type{IntegerType, StringType}, BooleanType))
	typeTrip(t, AsyncFunctionType(nil, NullType))
}

func TestTypeValueRoundTripRecursive(t *testing.T) {
	list := NewRecursive()
	list.AssignNode(VariantType(
		Field{Name: "nil", Type: NullType},
		Field{Name: "cons", Type: StructType(
			Field{Name: "head", Type: IntegerType},
			Field{Name: "tail", Type: list},
		)},
	))
	typeTrip(t, list)

	// Mutual recursion through a shared wrapper nested two deep.
	outer := NewRecursive()
	outer.AssignNode(ArrayType(DictType(StringType, outer)))
	typeTrip(t, outer)
}

func TestValueToTypeBadDepth(t *testing.T) {
	// Recursive(3) with no enclosing compounds points at nothing.
	v := VariantValue("Recursive", IntegerValue(3))
	if _, err := ValueToType(v); !errors.Is(err, ErrBadTypeValue) {
		t.Errorf("err = %v, want ErrBadTypeValue", err)
	}

	// Depth 0 is never a valid reference either.
	inner := VariantValue("Array", VariantValue("Recursive", IntegerValue(0)))
	if _, err := ValueToType(inner); !errors.Is(err, ErrBadTypeValue) {
		t.Errorf("depth 0: err = %v, want ErrBadTypeValue", err)
	}
}

func TestValueToTypeBadCase(t *testing.T) {
	if _, err := ValueToType(VariantValue("NoSuchKind", NullValue)); !errors.Is(err, ErrBadTypeValue) {
		t.Errorf("err = %v, want ErrBadTypeValue", err)
	}
	if _, err := ValueToType(IntegerValue(7)); !errors.Is(err, ErrBadTypeValue) {
		t.Errorf("non-variant: err = %v, want ErrBadTypeValue", err)
	}
}

func TestTypeEqualDistinguishes(t *testing.T) {
	if TypeEqual(ArrayType(IntegerType), ArrayType(FloatType)) {
		t.Error("Array<Integer> equals Array<Float>")
	}
	if TypeEqual(
		StructType(Field{Name: "a", Type: IntegerType}),
		StructType(Field{Name: "b", Type: IntegerType}),
	) {
		t.Error("field names ignored")
	}

	// Two recursions with the same unrolling are equal.
	a := NewRecursive()
	a.AssignNode(ArrayType(a))
	b := NewRecursive()
	b.AssignNode(ArrayType(b))
	if !TypeEqual(a, b) {
		t.Error("identical recursive shapes compare unequal")
	}
}

func TestTypeStringRecursive(t *testing.T) {
	r := NewRecursive()
	r.AssignNode(ArrayType(r))
	if got := r.String(); got != "Recursive<r1, Array<r1>>" {
		t.Errorf("String() = %q", got)
	}
}

func TestDescriptorsAreRecursive(t *testing.T) {
	tt := TypeType()
	if tt.Kind() != Recursive {
		t.Fatalf("TypeType kind = %v, want Recursive", tt.Kind())
	}
	if tt.Node().Kind() != Variant || tt.Node().NumField() != 19 {
		t.Errorf("TypeType node: %v with %d cases, want Variant with 19", tt.Node().Kind(), tt.Node().NumField())
	}

	ir := IRType()
	if ir.Kind() != Recursive || ir.Node().NumField() != 34 {
		t.Errorf("IRType: %v with %d cases, want Recursive variant with 34", ir.Kind(), ir.Node().NumField())
	}

	lit := LiteralType()
	if lit.Kind() != Variant || lit.NumField() != 7 {
		t.Errorf("LiteralType: %v with %d cases, want Variant with 7", lit.Kind(), lit.NumField())
	}

	// The descriptors are singletons.
	if TypeType() != tt || IRType() != ir {
		t.Error("descriptor singletons are not stable")
	}
}

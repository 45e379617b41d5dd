package east

import (
	"fmt"
	"sort"
)

// Value is the runtime representation of any East value. It is a tagged
// union: Kind selects which payload fields are meaningful. Containers hold
// child *Value pointers; sharing and cycles are expressed through ordinary
// pointer aliasing and the garbage collector owns all lifetimes.
//
// Accessors panic when called on the wrong kind; codecs dispatch on the type
// tree, so a panic here means the value diverged from its declared type in a
// way the lenient encoding rules do not cover.
type Value struct {
	kind Kind

	b    bool
	i    int64   // Integer, DateTime (millis)
	f    float64 // Float
	s    string  // String, Variant case name
	blob []byte

	elems []*Value // Array/Set elements, Dict values, Struct fields
	keys  []*Value // Dict keys, parallel to elems, sorted
	names []string // Struct field names, parallel to elems

	inner *Value // Ref cell, Variant payload

	vkind Kind // Vector/Matrix element kind: Boolean, Integer or Float
	vecB  []bool
	vecI  []int64
	vecF  []float64
	rows  int
	cols  int

	fn *FuncValue
}

// FuncValue is the payload of a Function value: the IR node that defined the
// closure (an ordinary Value of IRType) and the captured lexical bindings.
// Mutable captures hold a Ref cell so that writes through the closure are
// visible to every holder of the cell.
type FuncValue struct {
	IR       *Value
	Captures map[string]*Value
}

// NullValue is the unique Null value.
var NullValue = &Value{kind: Null}

// TrueValue and FalseValue are the two Boolean values.
var (
	TrueValue  = &Value{kind: Boolean, b: true}
	FalseValue = &Value{kind: Boolean}
)

// BooleanValue returns the Boolean value for x.
func BooleanValue(x bool) *Value {
	if x {
		return TrueValue
	}
	return FalseValue
}

// IntegerValue returns a new Integer value.
func IntegerValue(x int64) *Value { return &Value{kind: Integer, i: x} }

// FloatValue returns a new Float value.
func FloatValue(x float64) *Value { return &Value{kind: Float, f: x} }

// StringValue returns a new String value.
func StringValue(x string) *Value { return &Value{kind: String, s: x} }

// DateTimeValue returns a new DateTime value from UTC milliseconds.
func DateTimeValue(millis int64) *Value { return &Value{kind: DateTime, i: millis} }

// BlobValue returns a new Blob value. The slice is not copied.
func BlobValue(x []byte) *Value { return &Value{kind: Blob, blob: x} }

// ArrayValue returns a new Array holding elems. The slice is not copied.
func ArrayValue(elems ...*Value) *Value { return &Value{kind: Array, elems: elems} }

// SetValue returns a new Set containing elems, sorted and deduplicated.
func SetValue(elems ...*Value) *Value {
	s := &Value{kind: Set}
	for _, e := range elems {
		s.SetAdd(e)
	}
	return s
}

// DictValue returns a new empty Dict.
func DictValue() *Value { return &Value{kind: Dict} }

// StructValue returns a new Struct with the given field names and values,
// which must be parallel slices in the owning type's field order.
func StructValue(names []string, fields []*Value) *Value {
	if len(names) != len(fields) {
		panic(fmt.Sprintf("east: struct with %d names but %d fields", len(names), len(fields)))
	}
	return &Value{kind: Struct, names: names, elems: fields}
}

// VariantValue returns a new Variant with the given case name and payload.
func VariantValue(caseName string, payload *Value) *Value {
	return &Value{kind: Variant, s: caseName, inner: payload}
}

// RefValue returns a new Ref cell holding inner.
func RefValue(inner *Value) *Value { return &Value{kind: Ref, inner: inner} }

// VectorBoolean, VectorInteger and VectorFloat return packed Vector values.
// The slices are not copied.
func VectorBoolean(x []bool) *Value  { return &Value{kind: Vector, vkind: Boolean, vecB: x} }
func VectorInteger(x []int64) *Value { return &Value{kind: Vector, vkind: Integer, vecI: x} }
func VectorFloat(x []float64) *Value { return &Value{kind: Vector, vkind: Float, vecF: x} }

// MatrixInteger and MatrixFloat return packed row-major Matrix values.
func MatrixInteger(rows, cols int, x []int64) *Value {
	checkMatrixLen(rows, cols, len(x))
	return &Value{kind: Matrix, vkind: Integer, vecI: x, rows: rows, cols: cols}
}

func MatrixFloat(rows, cols int, x []float64) *Value {
	checkMatrixLen(rows, cols, len(x))
	return &Value{kind: Matrix, vkind: Float, vecF: x, rows: rows, cols: cols}
}

// MatrixBoolean returns a packed row-major Boolean Matrix value.
func MatrixBoolean(rows, cols int, x []bool) *Value {
	checkMatrixLen(rows, cols, len(x))
	return &Value{kind: Matrix, vkind: Boolean, vecB: x, rows: rows, cols: cols}
}

func checkMatrixLen(rows, cols, n int) {
	if rows < 0 || cols < 0 || rows*cols != n {
		panic(fmt.Sprintf("east: matrix %dx%d with %d elements", rows, cols, n))
	}
}

// FunctionValue returns a new Function value from its defining IR node and
// captured bindings.
func FunctionValue(ir *Value, captures map[string]*Value) *Value {
	return &Value{kind: Function, fn: &FuncValue{IR: ir, Captures: captures}}
}

// Kind returns the value's kind.
func (v *Value) Kind() Kind { return v.kind }

func (v *Value) check(method string, kinds ...Kind) {
	for _, k := range kinds {
		if v.kind == k {
			return
		}
	}
	panic(fmt.Sprintf("east: %s called on %v value", method, v.kind))
}

// Bool returns the Boolean payload.
func (v *Value) Bool() bool {
	v.check("Bool", Boolean)
	return v.b
}

// Int returns the Integer or DateTime payload.
func (v *Value) Int() int64 {
	v.check("Int", Integer, DateTime)
	return v.i
}

// Float returns the Float payload.
func (v *Value) Float() float64 {
	v.check("Float", Float)
	return v.f
}

// Str returns the String payload.
func (v *Value) Str() string {
	v.check("Str", String)
	return v.s
}

// Blob returns the Blob payload. The slice is shared, not copied.
func (v *Value) Blob() []byte {
	v.check("Blob", Blob)
	return v.blob
}

// Len returns the element count of an Array, Set, Dict, Struct, Vector or
// the total element count (rows*cols) of a Matrix.
func (v *Value) Len() int {
	switch v.kind {
	case Array, Set, Struct:
		return len(v.elems)
	case Dict:
		return len(v.keys)
	case Vector, Matrix:
		switch v.vkind {
		case Boolean:
			return len(v.vecB)
		case Integer:
			return len(v.vecI)
		default:
			return len(v.vecF)
		}
	}
	panic(fmt.Sprintf("east: Len called on %v value", v.kind))
}

// Index returns the i'th element of an Array, Set or Struct.
func (v *Value) Index(i int) *Value {
	v.check("Index", Array, Set, Struct)
	return v.elems[i]
}

// Append appends an element to an Array.
func (v *Value) Append(x *Value) {
	v.check("Append", Array)
	v.elems = append(v.elems, x)
}

// SetIndex replaces the i'th element of an Array or Struct.
func (v *Value) SetIndex(i int, x *Value) {
	v.check("SetIndex", Array, Struct)
	v.elems[i] = x
}

// SetAdd inserts x into a Set, keeping the value order and dropping
// structural duplicates.
func (v *Value) SetAdd(x *Value) {
	v.check("SetAdd", Set)
	i := sort.Search(len(v.elems), func(i int) bool { return Compare(v.elems[i], x) >= 0 })
	if i < len(v.elems) && Compare(v.elems[i], x) == 0 {
		return
	}
	v.elems = append(v.elems, nil)
	copy(v.elems[i+1:], v.elems[i:])
	v.elems[i] = x
}

// DictKeys returns the sorted key slice of a Dict. Shared, not copied.
func (v *Value) DictKeys() []*Value {
	v.check("DictKeys", Dict)
	return v.keys
}

// DictValues returns the value slice of a Dict, parallel to DictKeys.
func (v *Value) DictValues() []*Value {
	v.check("DictValues", Dict)
	return v.elems
}

// DictSet inserts or replaces the entry for key.
func (v *Value) DictSet(key, val *Value) {
	v.check("DictSet", Dict)
	i := sort.Search(len(v.keys), func(i int) bool { return Compare(v.keys[i], key) >= 0 })
	if i < len(v.keys) && Compare(v.keys[i], key) == 0 {
		v.elems[i] = val
		return
	}
	v.keys = append(v.keys, nil)
	copy(v.keys[i+1:], v.keys[i:])
	v.keys[i] = key
	v.elems = append(v.elems, nil)
	copy(v.elems[i+1:], v.elems[i:])
	v.elems[i] = val
}

// DictGet returns the value for key, or nil if absent.
func (v *Value) DictGet(key *Value) *Value {
	v.check("DictGet", Dict)
	i := sort.Search(len(v.keys), func(i int) bool { return Compare(v.keys[i], key) >= 0 })
	if i < len(v.keys) && Compare(v.keys[i], key) == 0 {
		return v.elems[i]
	}
	return nil
}

// FieldNames returns a Struct's field names in order. Shared, not copied.
func (v *Value) FieldNames() []string {
	v.check("FieldNames", Struct)
	return v.names
}

// FieldByName returns the named Struct field, or nil if the value has no
// such field.
func (v *Value) FieldByName(name string) *Value {
	v.check("FieldByName", Struct)
	for i, n := range v.names {
		if n == name {
			return v.elems[i]
		}
	}
	return nil
}

// CaseName returns a Variant's case name.
func (v *Value) CaseName() string {
	v.check("CaseName", Variant)
	return v.s
}

// Payload returns a Variant's case payload.
func (v *Value) Payload() *Value {
	v.check("Payload", Variant)
	return v.inner
}

// Deref returns the value inside a Ref cell.
func (v *Value) Deref() *Value {
	v.check("Deref", Ref)
	return v.inner
}

// SetDeref stores x into a Ref cell.
func (v *Value) SetDeref(x *Value) {
	v.check("SetDeref", Ref)
	v.inner = x
}

// ElemKind returns the packed element kind of a Vector or Matrix.
func (v *Value) ElemKind() Kind {
	v.check("ElemKind", Vector, Matrix)
	return v.vkind
}

// Bools, Ints and Floats return the packed payload of a Vector or Matrix.
// The slices are shared, not copied.
func (v *Value) Bools() []bool {
	v.check("Bools", Vector, Matrix)
	return v.vecB
}

func (v *Value) Ints() []int64 {
	v.check("Ints", Vector, Matrix)
	return v.vecI
}

func (v *Value) Floats() []float64 {
	v.check("Floats", Vector, Matrix)
	return v.vecF
}

// Rows and Cols return a Matrix's shape.
func (v *Value) Rows() int {
	v.check("Rows", Matrix)
	return v.rows
}

func (v *Value) Cols() int {
	v.check("Cols", Matrix)
	return v.cols
}

// Func returns a Function value's payload.
func (v *Value) Func() *FuncValue {
	v.check("Func", Function)
	return v.fn
}

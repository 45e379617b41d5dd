package east

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the representation of an East type. Types form trees; the only
// kind allowed to close a cycle back to an ancestor is Recursive, whose Node
// is assigned in a second construction phase (see NewRecursive). Everything
// else is immutable after construction.
type Type struct {
	kind   Kind
	elem   *Type   // Array/Set/Ref/Vector/Matrix elem, Dict value, Function output
	key    *Type   // Dict key
	fields []Field // Struct fields (declared order), Variant cases (sorted by name)
	inputs []*Type // Function/AsyncFunction inputs
	node   *Type   // Recursive
}

// Field is a named component of a Struct or Variant type.
type Field struct {
	Name string
	Type *Type
}

// Singleton primitive types.
var (
	NeverType    = &Type{kind: Never}
	NullType     = &Type{kind: Null}
	BooleanType  = &Type{kind: Boolean}
	IntegerType  = &Type{kind: Integer}
	FloatType    = &Type{kind: Float}
	StringType   = &Type{kind: String}
	DateTimeType = &Type{kind: DateTime}
	BlobType     = &Type{kind: Blob}
)

// ArrayType returns the type of arrays with the given element type.
func ArrayType(elem *Type) *Type { return &Type{kind: Array, elem: elem} }

// SetType returns the type of sets with the given element type.
func SetType(elem *Type) *Type { return &Type{kind: Set, elem: elem} }

// DictType returns the type of dicts with the given key and value types.
func DictType(key, val *Type) *Type { return &Type{kind: Dict, key: key, elem: val} }

// StructType returns a struct type with the given fields, order preserved.
func StructType(fields ...Field) *Type {
	return &Type{kind: Struct, fields: fields}
}

// VariantType returns a variant type with the given cases, sorted by name.
func VariantType(cases ...Field) *Type {
	sorted := make([]Field, len(cases))
	copy(sorted, cases)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Type{kind: Variant, fields: sorted}
}

// RefType returns the type of mutable cells holding elem.
func RefType(elem *Type) *Type { return &Type{kind: Ref, elem: elem} }

// VectorType returns the type of packed vectors of elem, which must be
// Boolean, Integer or Float.
func VectorType(elem *Type) *Type {
	checkPacked("VectorType", elem)
	return &Type{kind: Vector, elem: elem}
}

// MatrixType returns the type of packed matrices of elem.
func MatrixType(elem *Type) *Type {
	checkPacked("MatrixType", elem)
	return &Type{kind: Matrix, elem: elem}
}

func checkPacked(method string, elem *Type) {
	switch elem.kind {
	case Boolean, Integer, Float:
	default:
		panic(fmt.Sprintf("east: %s with %v element", method, elem.kind))
	}
}

// FunctionType returns the type of functions from inputs to output.
func FunctionType(inputs []*Type, output *Type) *Type {
	return &Type{kind: Function, inputs: inputs, elem: output}
}

// AsyncFunctionType returns the async variant of FunctionType.
func AsyncFunctionType(inputs []*Type, output *Type) *Type {
	return &Type{kind: AsyncFunction, inputs: inputs, elem: output}
}

// NewRecursive allocates a Recursive wrapper with no node yet. Build the
// inner tree using the wrapper wherever the type refers to itself, then
// close the cycle with AssignNode.
func NewRecursive() *Type { return &Type{kind: Recursive} }

// AssignNode closes a Recursive wrapper's cycle. It may be called once.
func (t *Type) AssignNode(node *Type) {
	if t.kind != Recursive {
		panic(fmt.Sprintf("east: AssignNode called on %v type", t.kind))
	}
	if t.node != nil {
		panic("east: AssignNode called twice")
	}
	if node == nil {
		panic("east: AssignNode with nil node")
	}
	t.node = node
}

// Kind returns the type's kind.
func (t *Type) Kind() Kind { return t.kind }

func (t *Type) check(method string, kinds ...Kind) {
	for _, k := range kinds {
		if t.kind == k {
			return
		}
	}
	panic(fmt.Sprintf("east: %s called on %v type", method, t.kind))
}

// Elem returns the element type of an Array, Set, Ref, Vector or Matrix,
// or the value type of a Dict.
func (t *Type) Elem() *Type {
	t.check("Elem", Array, Set, Dict, Ref, Vector, Matrix)
	return t.elem
}

// Key returns a Dict's key type.
func (t *Type) Key() *Type {
	t.check("Key", Dict)
	return t.key
}

// NumField returns the field count of a Struct or case count of a Variant.
func (t *Type) NumField() int {
	t.check("NumField", Struct, Variant)
	return len(t.fields)
}

// Field returns the i'th field of a Struct, or i'th case of a Variant.
func (t *Type) Field(i int) Field {
	t.check("Field", Struct, Variant)
	return t.fields[i]
}

// FieldIndex returns the index of the named field or case, or -1.
func (t *Type) FieldIndex(name string) int {
	t.check("FieldIndex", Struct, Variant)
	for i, f := range t.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// NumInput returns a Function or AsyncFunction's input count.
func (t *Type) NumInput() int {
	t.check("NumInput", Function, AsyncFunction)
	return len(t.inputs)
}

// Input returns the i'th input type of a Function or AsyncFunction.
func (t *Type) Input(i int) *Type {
	t.check("Input", Function, AsyncFunction)
	return t.inputs[i]
}

// Output returns a Function or AsyncFunction's output type.
func (t *Type) Output() *Type {
	t.check("Output", Function, AsyncFunction)
	return t.elem
}

// Node returns a Recursive wrapper's inner type.
func (t *Type) Node() *Type {
	t.check("Node", Recursive)
	if t.node == nil {
		panic("east: Recursive type used before AssignNode")
	}
	return t.node
}

// Unwrap peels Recursive wrappers off until a concrete kind is reached.
func (t *Type) Unwrap() *Type {
	for t.kind == Recursive {
		t = t.Node()
	}
	return t
}

// TypeEqual reports structural equivalence of two types, treating Recursive
// wrappers as transparent and cycles as equal when they unfold identically.
func TypeEqual(a, b *Type) bool {
	return typeEqual(a, b, map[[2]*Type]bool{})
}

func typeEqual(a, b *Type, seen map[[2]*Type]bool) bool {
	a, b = a.Unwrap(), b.Unwrap()
	if a == b {
		return true
	}
	pair := [2]*Type{a, b}
	if seen[pair] {
		// Already comparing this pair further up the unfold; assuming
		// equality here is what makes the comparison terminate on cycles.
		return true
	}
	seen[pair] = true
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Array, Set, Ref, Vector, Matrix:
		return typeEqual(a.elem, b.elem, seen)
	case Dict:
		return typeEqual(a.key, b.key, seen) && typeEqual(a.elem, b.elem, seen)
	case Struct, Variant:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name {
				return false
			}
			if !typeEqual(a.fields[i].Type, b.fields[i].Type, seen) {
				return false
			}
		}
		return true
	case Function, AsyncFunction:
		if len(a.inputs) != len(b.inputs) {
			return false
		}
		for i := range a.inputs {
			if !typeEqual(a.inputs[i], b.inputs[i], seen) {
				return false
			}
		}
		return typeEqual(a.elem, b.elem, seen)
	}
	return true
}

// String renders the type in schema syntax. Each Recursive wrapper is
// rendered once as Recursive<rN, ...> with rN standing for the wrapper in
// its own body, keeping the output finite.
func (t *Type) String() string {
	var sb strings.Builder
	writeType(&sb, t, map[*Type]string{})
	return sb.String()
}

func writeType(sb *strings.Builder, t *Type, names map[*Type]string) {
	if t.kind == Recursive {
		if name, ok := names[t]; ok {
			sb.WriteString(name)
			return
		}
		name := fmt.Sprintf("r%d", len(names)+1)
		names[t] = name
		fmt.Fprintf(sb, "Recursive<%s, ", name)
		writeType(sb, t.Node(), names)
		sb.WriteString(">")
		delete(names, t)
		return
	}
	switch t.kind {
	case Array, Set, Ref, Vector, Matrix:
		sb.WriteString(t.kind.String())
		sb.WriteString("<")
		writeType(sb, t.elem, names)
		sb.WriteString(">")
	case Dict:
		sb.WriteString("Dict<")
		writeType(sb, t.key, names)
		sb.WriteString(", ")
		writeType(sb, t.elem, names)
		sb.WriteString(">")
	case Struct:
		sb.WriteString("Struct{")
		for i, f := range t.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			writeType(sb, f.Type, names)
		}
		sb.WriteString("}")
	case Variant:
		sb.WriteString("Variant<")
		for i, f := range t.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			writeType(sb, f.Type, names)
		}
		sb.WriteString(">")
	case Function, AsyncFunction:
		sb.WriteString(t.kind.String())
		sb.WriteString("(")
		for i, in := range t.inputs {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeType(sb, in, names)
		}
		sb.WriteString(") -> ")
		writeType(sb, t.elem, names)
	default:
		sb.WriteString(t.kind.String())
	}
}

// Package east implements the East value and type substrate: a tagged-union
// value model, a tagged-union type model with true recursive types, and the
// homoiconic descriptors that let types and IR be handled as ordinary values.
package east

import "fmt"

// Kind identifies the shape of a Type, and of the Value that inhabits it.
// Never, Recursive and AsyncFunction are type-only kinds: no Value carries
// them (a value built from an AsyncFunction node is an ordinary Function).
type Kind uint8

const (
	// Never is the uninhabited type.
	Never Kind = iota
	// Null has exactly one value.
	Null
	// Boolean is true or false.
	Boolean
	// Integer is a signed 64-bit integer.
	Integer
	// Float is an IEEE-754 binary64.
	Float
	// String is a UTF-8 string.
	String
	// DateTime is a millisecond UTC timestamp in a signed 64-bit integer.
	DateTime
	// Blob is an opaque byte sequence.
	Blob
	// Array is an ordered mutable sequence.
	Array
	// Set is a value-ordered, deduplicated sequence.
	Set
	// Dict is an association with sorted keys.
	Dict
	// Struct is a sequence of named fields in declaration order.
	Struct
	// Variant is one case out of a name-sorted case list.
	Variant
	// Ref is a single mutable cell.
	Ref
	// Vector is a packed homogeneous numeric sequence.
	Vector
	// Matrix is a packed homogeneous numeric sequence with row/col shape.
	Matrix
	// Function is a compiled closure.
	Function
	// AsyncFunction is a closure whose call is notionally suspendable.
	AsyncFunction
	// Recursive wraps the type currently being defined, closing a cycle.
	Recursive
)

// String returns the canonical kind name, as spelled in schemas.
func (k Kind) String() string {
	switch k {
	case Never:
		return "Never"
	case Null:
		return "Null"
	case Boolean:
		return "Boolean"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	case DateTime:
		return "DateTime"
	case Blob:
		return "Blob"
	case Array:
		return "Array"
	case Set:
		return "Set"
	case Dict:
		return "Dict"
	case Struct:
		return "Struct"
	case Variant:
		return "Variant"
	case Ref:
		return "Ref"
	case Vector:
		return "Vector"
	case Matrix:
		return "Matrix"
	case Function:
		return "Function"
	case AsyncFunction:
		return "AsyncFunction"
	case Recursive:
		return "Recursive"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

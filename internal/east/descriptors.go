package east

import "sync"

// The three homoiconic descriptors are built once on first use. They are
// what lets a Type or an IR tree travel through the same codecs as user
// data: a Type converts to a Value of TypeType (see TypeToValue), and IR
// trees are plain Values of IRType from the start.

var (
	literalOnce sync.Once
	literalType *Type

	typeTypeOnce sync.Once
	typeType     *Type

	irTypeOnce sync.Once
	irType     *Type
)

// LiteralType returns the 7-case variant describing literal East values:
// one case per primitive kind, each carrying a payload of that kind.
func LiteralType() *Type {
	literalOnce.Do(func() {
		literalType = VariantType(
			Field{"Null", NullType},
			Field{"Boolean", BooleanType},
			Field{"Integer", IntegerType},
			Field{"Float", FloatType},
			Field{"String", StringType},
			Field{"DateTime", DateTimeType},
			Field{"Blob", BlobType},
		)
	})
	return literalType
}

// TypeType returns the 19-case recursive variant describing every Type
// shape. Scalar kinds carry Null; the compound kinds carry the descriptor
// itself where the type would carry a subtype; the Recursive case carries
// an Integer relative depth (see TypeToValue).
func TypeType() *Type {
	typeTypeOnce.Do(func() {
		self := NewRecursive()
		namedType := StructType(
			Field{"name", StringType},
			Field{"type", self},
		)
		signature := StructType(
			Field{"inputs", ArrayType(self)},
			Field{"output", self},
		)
		self.AssignNode(VariantType(
			Field{"Never", NullType},
			Field{"Null", NullType},
			Field{"Boolean", NullType},
			Field{"Integer", NullType},
			Field{"Float", NullType},
			Field{"String", NullType},
			Field{"DateTime", NullType},
			Field{"Blob", NullType},
			Field{"Array", self},
			Field{"Set", self},
			Field{"Dict", StructType(
				Field{"key", self},
				Field{"value", self},
			)},
			Field{"Struct", ArrayType(namedType)},
			Field{"Variant", ArrayType(namedType)},
			Field{"Ref", self},
			Field{"Vector", self},
			Field{"Matrix", self},
			Field{"Function", signature},
			Field{"AsyncFunction", signature},
			Field{"Recursive", IntegerType},
		))
		typeType = self
	})
	return typeType
}

// IRType returns the 34-case recursive variant describing every IR node
// shape. IR trees are ordinary Values of this type; the interpreter walks
// them directly and the codecs serialize them like any other value.
func IRType() *Type {
	irTypeOnce.Do(func() {
		self := NewRecursive()
		tt := TypeType()
		param := StructType(
			Field{"name", StringType},
			Field{"type", tt},
		)
		capture := StructType(
			Field{"name", StringType},
			Field{"type", tt},
			Field{"mutable", BooleanType},
		)
		fnNode := StructType(
			Field{"params", ArrayType(param)},
			Field{"output", tt},
			Field{"captures", ArrayType(capture)},
			Field{"body", self},
		)
		self.AssignNode(VariantType(
			Field{"NullLit", NullType},
			Field{"BoolLit", BooleanType},
			Field{"IntLit", IntegerType},
			Field{"FloatLit", FloatType},
			Field{"StrLit", StringType},
			Field{"DateTimeLit", DateTimeType},
			Field{"BlobLit", BlobType},
			Field{"Variable", StringType},
			Field{"ArrayLit", ArrayType(self)},
			Field{"SetLit", ArrayType(self)},
			Field{"DictLit", ArrayType(StructType(
				Field{"key", self},
				Field{"value", self},
			))},
			Field{"StructLit", ArrayType(StructType(
				Field{"name", StringType},
				Field{"value", self},
			))},
			Field{"VariantLit", StructType(
				Field{"case", StringType},
				Field{"value", self},
			)},
			Field{"VectorLit", StructType(
				Field{"elem", tt},
				Field{"values", ArrayType(self)},
			)},
			Field{"MatrixLit", StructType(
				Field{"elem", tt},
				Field{"rows", IntegerType},
				Field{"cols", IntegerType},
				Field{"values", ArrayType(self)},
			)},
			Field{"Let", StructType(
				Field{"name", StringType},
				Field{"value", self},
			)},
			Field{"Assign", StructType(
				Field{"name", StringType},
				Field{"value", self},
			)},
			Field{"Block", ArrayType(self)},
			Field{"If", StructType(
				Field{"cond", self},
				Field{"then", self},
				Field{"else", self},
			)},
			Field{"Match", StructType(
				Field{"subject", self},
				Field{"cases", ArrayType(StructType(
					Field{"case", StringType},
					Field{"binding", StringType},
					Field{"body", self},
				))},
				Field{"default", self},
			)},
			Field{"While", StructType(
				Field{"cond", self},
				Field{"body", self},
			)},
			Field{"For", StructType(
				Field{"name", StringType},
				Field{"iterable", self},
				Field{"body", self},
			)},
			Field{"Return", self},
			Field{"FieldGet", StructType(
				Field{"subject", self},
				Field{"field", StringType},
			)},
			Field{"IndexGet", StructType(
				Field{"subject", self},
				Field{"index", self},
			)},
			Field{"NewRef", self},
			Field{"RefGet", self},
			Field{"RefSet", StructType(
				Field{"ref", self},
				Field{"value", self},
			)},
			Field{"Function", fnNode},
			Field{"AsyncFunction", fnNode},
			Field{"Call", StructType(
				Field{"callee", self},
				Field{"args", ArrayType(self)},
			)},
			Field{"Builtin", StructType(
				Field{"name", StringType},
				Field{"args", ArrayType(self)},
			)},
			Field{"Unop", StructType(
				Field{"op", StringType},
				Field{"value", self},
			)},
			Field{"Binop", StructType(
				Field{"op", StringType},
				Field{"left", self},
				Field{"right", self},
			)},
		))
		irType = self
	})
	return irType
}

package east

import (
	"errors"
	"fmt"
)

// IR construction helpers. IR trees are ordinary Values of IRType; these
// constructors just spell the variant cases so callers don't hand-assemble
// them. The interpreter consumes these trees directly and the Beast2 codec
// serializes them with the ordinary value codec.

// Param is a named, typed function parameter.
type Param struct {
	Name string
	Type *Type
}

// Capture is a lexical binding a closure takes from its defining scope.
// Mutable captures are shared Ref cells; immutable ones are plain values.
type Capture struct {
	Name    string
	Type    *Type
	Mutable bool
}

func IRNull() *Value            { return VariantValue("NullLit", NullValue) }
func IRBool(x bool) *Value      { return VariantValue("BoolLit", BooleanValue(x)) }
func IRInt(x int64) *Value      { return VariantValue("IntLit", IntegerValue(x)) }
func IRFloat(x float64) *Value  { return VariantValue("FloatLit", FloatValue(x)) }
func IRStr(x string) *Value     { return VariantValue("StrLit", StringValue(x)) }
func IRDateTime(ms int64) *Value { return VariantValue("DateTimeLit", DateTimeValue(ms)) }
func IRBlob(x []byte) *Value    { return VariantValue("BlobLit", BlobValue(x)) }
func IRVar(name string) *Value  { return VariantValue("Variable", StringValue(name)) }

func IRArray(elems ...*Value) *Value { return VariantValue("ArrayLit", ArrayValue(elems...)) }
func IRSet(elems ...*Value) *Value   { return VariantValue("SetLit", ArrayValue(elems...)) }

func IRStructLit(names []string, values []*Value) *Value {
	entries := make([]*Value, len(names))
	for i := range names {
		entries[i] = StructValue([]string{"name", "value"}, []*Value{StringValue(names[i]), values[i]})
	}
	return VariantValue("StructLit", ArrayValue(entries...))
}

func IRVariantLit(caseName string, value *Value) *Value {
	return VariantValue("VariantLit", StructValue(
		[]string{"case", "value"},
		[]*Value{StringValue(caseName), value},
	))
}

func IRLet(name string, value *Value) *Value {
	return VariantValue("Let", StructValue(
		[]string{"name", "value"},
		[]*Value{StringValue(name), value},
	))
}

func IRAssign(name string, value *Value) *Value {
	return VariantValue("Assign", StructValue(
		[]string{"name", "value"},
		[]*Value{StringValue(name), value},
	))
}

func IRBlock(stmts ...*Value) *Value { return VariantValue("Block", ArrayValue(stmts...)) }

func IRIf(cond, then, els *Value) *Value {
	return VariantValue("If", StructValue(
		[]string{"cond", "then", "else"},
		[]*Value{cond, then, els},
	))
}

func IRWhile(cond, body *Value) *Value {
	return VariantValue("While", StructValue(
		[]string{"cond", "body"},
		[]*Value{cond, body},
	))
}

func IRFor(name string, iterable, body *Value) *Value {
	return VariantValue("For", StructValue(
		[]string{"name", "iterable", "body"},
		[]*Value{StringValue(name), iterable, body},
	))
}

func IRReturn(value *Value) *Value { return VariantValue("Return", value) }

func IRFieldGet(subject *Value, field string) *Value {
	return VariantValue("FieldGet", StructValue(
		[]string{"subject", "field"},
		[]*Value{subject, StringValue(field)},
	))
}

func IRIndexGet(subject, index *Value) *Value {
	return VariantValue("IndexGet", StructValue(
		[]string{"subject", "index"},
		[]*Value{subject, index},
	))
}

func IRNewRef(value *Value) *Value { return VariantValue("NewRef", value) }
func IRRefGet(ref *Value) *Value   { return VariantValue("RefGet", ref) }

func IRRefSet(ref, value *Value) *Value {
	return VariantValue("RefSet", StructValue(
		[]string{"ref", "value"},
		[]*Value{ref, value},
	))
}

// IRFunction builds a Function IR node. The captures list is authoritative:
// it is what the codec reads back to serialize a closure's environment.
func IRFunction(params []Param, output *Type, captures []Capture, body *Value) *Value {
	return irFunction("Function", params, output, captures, body)
}

// IRAsyncFunction is IRFunction for the async case.
func IRAsyncFunction(params []Param, output *Type, captures []Capture, body *Value) *Value {
	return irFunction("AsyncFunction", params, output, captures, body)
}

func irFunction(caseName string, params []Param, output *Type, captures []Capture, body *Value) *Value {
	ps := make([]*Value, len(params))
	for i, p := range params {
		ps[i] = StructValue(
			[]string{"name", "type"},
			[]*Value{StringValue(p.Name), TypeToValue(p.Type)},
		)
	}
	cs := make([]*Value, len(captures))
	for i, c := range captures {
		cs[i] = StructValue(
			[]string{"name", "type", "mutable"},
			[]*Value{StringValue(c.Name), TypeToValue(c.Type), BooleanValue(c.Mutable)},
		)
	}
	return VariantValue(caseName, StructValue(
		[]string{"params", "output", "captures", "body"},
		[]*Value{ArrayValue(ps...), TypeToValue(output), ArrayValue(cs...), body},
	))
}

func IRCall(callee *Value, args ...*Value) *Value {
	return VariantValue("Call", StructValue(
		[]string{"callee", "args"},
		[]*Value{callee, ArrayValue(args...)},
	))
}

func IRBuiltin(name string, args ...*Value) *Value {
	return VariantValue("Builtin", StructValue(
		[]string{"name", "args"},
		[]*Value{StringValue(name), ArrayValue(args...)},
	))
}

func IRUnop(op string, value *Value) *Value {
	return VariantValue("Unop", StructValue(
		[]string{"op", "value"},
		[]*Value{StringValue(op), value},
	))
}

func IRBinop(op string, left, right *Value) *Value {
	return VariantValue("Binop", StructValue(
		[]string{"op", "left", "right"},
		[]*Value{StringValue(op), left, right},
	))
}

// ErrBadIR reports an IR value whose shape does not match IRType.
var ErrBadIR = errors.New("east: malformed IR value")

// FunctionParams reads the parameter list out of a Function or AsyncFunction
// IR node.
func FunctionParams(ir *Value) ([]Param, error) {
	payload, err := functionPayload(ir)
	if err != nil {
		return nil, err
	}
	ps := payload.FieldByName("params")
	if ps == nil || ps.Kind() != Array {
		return nil, fmt.Errorf("%w: function node has no params", ErrBadIR)
	}
	params := make([]Param, ps.Len())
	for i := range params {
		entry := ps.Index(i)
		name, t, err := namedTypeEntry(entry)
		if err != nil {
			return nil, err
		}
		params[i] = Param{Name: name, Type: t}
	}
	return params, nil
}

// FunctionCaptures reads the capture list out of a Function or AsyncFunction
// IR node, in the exact order a decoder will expect capture values.
func FunctionCaptures(ir *Value) ([]Capture, error) {
	payload, err := functionPayload(ir)
	if err != nil {
		return nil, err
	}
	cs := payload.FieldByName("captures")
	if cs == nil || cs.Kind() != Array {
		return nil, fmt.Errorf("%w: function node has no captures", ErrBadIR)
	}
	captures := make([]Capture, cs.Len())
	for i := range captures {
		entry := cs.Index(i)
		name, t, err := namedTypeEntry(entry)
		if err != nil {
			return nil, err
		}
		mut := entry.FieldByName("mutable")
		if mut == nil || mut.Kind() != Boolean {
			return nil, fmt.Errorf("%w: capture %q has no mutability flag", ErrBadIR, name)
		}
		captures[i] = Capture{Name: name, Type: t, Mutable: mut.Bool()}
	}
	return captures, nil
}

// FunctionBody reads the body out of a Function or AsyncFunction IR node.
func FunctionBody(ir *Value) (*Value, error) {
	payload, err := functionPayload(ir)
	if err != nil {
		return nil, err
	}
	body := payload.FieldByName("body")
	if body == nil {
		return nil, fmt.Errorf("%w: function node has no body", ErrBadIR)
	}
	return body, nil
}

func functionPayload(ir *Value) (*Value, error) {
	if ir == nil || ir.Kind() != Variant {
		return nil, fmt.Errorf("%w: not a variant", ErrBadIR)
	}
	if c := ir.CaseName(); c != "Function" && c != "AsyncFunction" {
		return nil, fmt.Errorf("%w: %s is not a function node", ErrBadIR, ir.CaseName())
	}
	payload := ir.Payload()
	if payload.Kind() != Struct {
		return nil, fmt.Errorf("%w: function payload is %v", ErrBadIR, payload.Kind())
	}
	return payload, nil
}

func namedTypeEntry(entry *Value) (string, *Type, error) {
	if entry.Kind() != Struct {
		return "", nil, fmt.Errorf("%w: entry is %v", ErrBadIR, entry.Kind())
	}
	name := entry.FieldByName("name")
	if name == nil || name.Kind() != String {
		return "", nil, fmt.Errorf("%w: entry has no name", ErrBadIR)
	}
	tv := entry.FieldByName("type")
	if tv == nil {
		return "", nil, fmt.Errorf("%w: entry %q has no type", ErrBadIR, name.Str())
	}
	t, err := ValueToType(tv)
	if err != nil {
		return "", nil, err
	}
	return name.Str(), t, nil
}

package east

import (
	"errors"
	"fmt"
)

// ErrBadTypeValue reports a value that does not describe a type.
var ErrBadTypeValue = errors.New("east: value is not a valid type description")

// TypeToValue converts a type to a value of TypeType. The wire format has no
// pointers, so a Recursive wrapper is represented by a relative depth: the
// number of compound-type nesting levels between the point of reference and
// the wrapper being referenced. Depth 1 is the innermost enclosing compound.
func TypeToValue(t *Type) *Value {
	c := typeConv{index: map[*Type]int{}}
	return c.convert(t)
}

type typeConv struct {
	depth int          // compound nesting levels entered so far
	index map[*Type]int // Recursive wrapper -> depth its node converts at
}

func (c *typeConv) convert(t *Type) *Value {
	switch t.kind {
	case Never, Null, Boolean, Integer, Float, String, DateTime, Blob:
		return VariantValue(t.kind.String(), NullValue)
	case Recursive:
		if at, ok := c.index[t]; ok {
			return VariantValue("Recursive", IntegerValue(int64(c.depth-at)))
		}
		c.index[t] = c.depth
		v := c.convert(t.Node())
		delete(c.index, t)
		return v
	case Array, Set, Ref, Vector, Matrix:
		c.depth++
		elem := c.convert(t.elem)
		c.depth--
		return VariantValue(t.kind.String(), elem)
	case Dict:
		c.depth++
		key := c.convert(t.key)
		val := c.convert(t.elem)
		c.depth--
		return VariantValue("Dict", StructValue(
			[]string{"key", "value"},
			[]*Value{key, val},
		))
	case Struct, Variant:
		c.depth++
		fields := make([]*Value, len(t.fields))
		for i, f := range t.fields {
			fields[i] = StructValue(
				[]string{"name", "type"},
				[]*Value{StringValue(f.Name), c.convert(f.Type)},
			)
		}
		c.depth--
		return VariantValue(t.kind.String(), ArrayValue(fields...))
	case Function, AsyncFunction:
		c.depth++
		inputs := make([]*Value, len(t.inputs))
		for i, in := range t.inputs {
			inputs[i] = c.convert(in)
		}
		output := c.convert(t.elem)
		c.depth--
		return VariantValue(t.kind.String(), StructValue(
			[]string{"inputs", "output"},
			[]*Value{ArrayValue(inputs...), output},
		))
	}
	panic(fmt.Sprintf("east: TypeToValue of %v", t.kind))
}

// ValueToType converts a value of TypeType back to a type. Inverse of
// TypeToValue: every compound case opens a nesting level, and a Recursive
// case resolves to the level its depth names, rebuilding the wrapper cycle.
func ValueToType(v *Value) (*Type, error) {
	b := typeBuild{}
	return b.convert(v)
}

type pendingRec struct {
	wrapper *Type
	used    bool
}

type typeBuild struct {
	stack []*pendingRec
}

func (b *typeBuild) convert(v *Value) (*Type, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: missing subtype", ErrBadTypeValue)
	}
	if v.Kind() != Variant {
		return nil, fmt.Errorf("%w: %v value", ErrBadTypeValue, v.Kind())
	}
	switch name := v.CaseName(); name {
	case "Never":
		return NeverType, nil
	case "Null":
		return NullType, nil
	case "Boolean":
		return BooleanType, nil
	case "Integer":
		return IntegerType, nil
	case "Float":
		return FloatType, nil
	case "String":
		return StringType, nil
	case "DateTime":
		return DateTimeType, nil
	case "Blob":
		return BlobType, nil
	case "Recursive":
		if v.Payload().Kind() != Integer {
			return nil, fmt.Errorf("%w: Recursive depth is %v", ErrBadTypeValue, v.Payload().Kind())
		}
		d := v.Payload().Int()
		if d < 1 || d > int64(len(b.stack)) {
			return nil, fmt.Errorf("%w: Recursive depth %d with %d levels open", ErrBadTypeValue, d, len(b.stack))
		}
		p := b.stack[int64(len(b.stack))-d]
		p.used = true
		return p.wrapper, nil
	case "Array", "Set", "Ref", "Vector", "Matrix":
		return b.compound(func() (*Type, error) {
			elem, err := b.convert(v.Payload())
			if err != nil {
				return nil, err
			}
			switch name {
			case "Array":
				return ArrayType(elem), nil
			case "Set":
				return SetType(elem), nil
			case "Ref":
				return RefType(elem), nil
			}
			switch elem.Kind() {
			case Boolean, Integer, Float:
			default:
				return nil, fmt.Errorf("%w: %s of %v", ErrBadTypeValue, name, elem.Kind())
			}
			if name == "Vector" {
				return VectorType(elem), nil
			}
			return MatrixType(elem), nil
		})
	case "Dict":
		return b.compound(func() (*Type, error) {
			p := v.Payload()
			if p.Kind() != Struct {
				return nil, fmt.Errorf("%w: Dict payload is %v", ErrBadTypeValue, p.Kind())
			}
			key, err := b.convert(p.FieldByName("key"))
			if err != nil {
				return nil, err
			}
			val, err := b.convert(p.FieldByName("value"))
			if err != nil {
				return nil, err
			}
			return DictType(key, val), nil
		})
	case "Struct", "Variant":
		return b.compound(func() (*Type, error) {
			p := v.Payload()
			if p.Kind() != Array {
				return nil, fmt.Errorf("%w: %s payload is %v", ErrBadTypeValue, name, p.Kind())
			}
			fields := make([]Field, p.Len())
			for i := range fields {
				entry := p.Index(i)
				if entry.Kind() != Struct {
					return nil, fmt.Errorf("%w: %s field %d is %v", ErrBadTypeValue, name, i, entry.Kind())
				}
				fieldName := entry.FieldByName("name")
				if fieldName == nil || fieldName.Kind() != String {
					return nil, fmt.Errorf("%w: %s field %d has no name", ErrBadTypeValue, name, i)
				}
				ft, err := b.convert(entry.FieldByName("type"))
				if err != nil {
					return nil, err
				}
				fields[i] = Field{fieldName.Str(), ft}
			}
			if name == "Struct" {
				return StructType(fields...), nil
			}
			return VariantType(fields...), nil
		})
	case "Function", "AsyncFunction":
		return b.compound(func() (*Type, error) {
			p := v.Payload()
			if p.Kind() != Struct {
				return nil, fmt.Errorf("%w: %s payload is %v", ErrBadTypeValue, name, p.Kind())
			}
			ins := p.FieldByName("inputs")
			if ins == nil || ins.Kind() != Array {
				return nil, fmt.Errorf("%w: %s has no inputs", ErrBadTypeValue, name)
			}
			inputs := make([]*Type, ins.Len())
			for i := range inputs {
				var err error
				if inputs[i], err = b.convert(ins.Index(i)); err != nil {
					return nil, err
				}
			}
			output, err := b.convert(p.FieldByName("output"))
			if err != nil {
				return nil, err
			}
			if name == "Function" {
				return FunctionType(inputs, output), nil
			}
			return AsyncFunctionType(inputs, output), nil
		})
	default:
		return nil, fmt.Errorf("%w: unknown case %q", ErrBadTypeValue, name)
	}
}

// compound opens a nesting level around build. The Recursive wrapper for the
// level is materialized only when something inside referenced it.
func (b *typeBuild) compound(build func() (*Type, error)) (*Type, error) {
	p := &pendingRec{wrapper: NewRecursive()}
	b.stack = append(b.stack, p)
	inner, err := build()
	b.stack = b.stack[:len(b.stack)-1]
	if err != nil {
		return nil, err
	}
	if !p.used {
		return inner, nil
	}
	p.wrapper.AssignNode(inner)
	return p.wrapper, nil
}

package etext

import (
	"east/internal/east"
)

// ParseType reads a type in schema syntax, the same syntax Type.String
// renders: Integer, Array<Integer>, Struct{name: String},
// Variant<a: Integer>, Dict<String, Integer>,
// Function(Integer, Integer) -> Integer, Recursive<r, Array<r>>.
func ParseType(src string) (*east.Type, error) {
	p := &typeParser{lx: newLexer(src), bound: map[string]*east.Type{}}
	t, err := p.typ()
	if err != nil {
		return nil, err
	}
	if tok := p.lx.next(); tok.kind != tokEOF {
		return nil, p.lx.errf(tok.off, "trailing input %q", tok.text)
	}
	return t, nil
}

type typeParser struct {
	lx    *lexer
	bound map[string]*east.Type // recursion names in scope
}

var primTypes = map[string]*east.Type{
	"Never":    east.NeverType,
	"Null":     east.NullType,
	"Boolean":  east.BooleanType,
	"Integer":  east.IntegerType,
	"Float":    east.FloatType,
	"String":   east.StringType,
	"DateTime": east.DateTimeType,
	"Blob":     east.BlobType,
}

func (p *typeParser) typ() (*east.Type, error) {
	tok := p.lx.next()
	if tok.kind != tokIdent {
		return nil, p.lx.errf(tok.off, "expected type name, got %q", tok.text)
	}
	if t, ok := primTypes[tok.text]; ok {
		return t, nil
	}
	if t, ok := p.bound[tok.text]; ok {
		return t, nil
	}

	switch tok.text {
	case "Array", "Set", "Ref", "Vector", "Matrix":
		elem, err := p.angled1()
		if err != nil {
			return nil, err
		}
		switch tok.text {
		case "Array":
			return east.ArrayType(elem), nil
		case "Set":
			return east.SetType(elem), nil
		case "Ref":
			return east.RefType(elem), nil
		case "Vector":
			if err := packedElem(p, tok, elem); err != nil {
				return nil, err
			}
			return east.VectorType(elem), nil
		default:
			if err := packedElem(p, tok, elem); err != nil {
				return nil, err
			}
			return east.MatrixType(elem), nil
		}

	case "Dict":
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		key, err := p.typ()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		val, err := p.typ()
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return east.DictType(key, val), nil

	case "Struct":
		fields, err := p.fieldList("{", "}")
		if err != nil {
			return nil, err
		}
		return east.StructType(fields...), nil

	case "Variant":
		fields, err := p.fieldList("<", ">")
		if err != nil {
			return nil, err
		}
		return east.VariantType(fields...), nil

	case "Function", "AsyncFunction":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		var inputs []*east.Type
		for !p.at(")") {
			in, err := p.typ()
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
			if !p.at(")") {
				if err := p.expect(","); err != nil {
					return nil, err
				}
			}
		}
		p.lx.next() // ")"
		if arrow := p.lx.next(); arrow.kind != tokArrow {
			return nil, p.lx.errf(arrow.off, "expected ->, got %q", arrow.text)
		}
		out, err := p.typ()
		if err != nil {
			return nil, err
		}
		if tok.text == "Function" {
			return east.FunctionType(inputs, out), nil
		}
		return east.AsyncFunctionType(inputs, out), nil

	case "Recursive":
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		name := p.lx.next()
		if name.kind != tokIdent {
			return nil, p.lx.errf(name.off, "expected recursion name")
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		rec := east.NewRecursive()
		prev, shadowed := p.bound[name.text]
		p.bound[name.text] = rec
		node, err := p.typ()
		if shadowed {
			p.bound[name.text] = prev
		} else {
			delete(p.bound, name.text)
		}
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		rec.AssignNode(node)
		return rec, nil
	}
	return nil, p.lx.errf(tok.off, "unknown type %q", tok.text)
}

// packedElem rejects element types the packed containers cannot hold, so a
// schema like Vector<String> is a parse error rather than a constructor
// panic downstream.
func packedElem(p *typeParser, tok token, elem *east.Type) error {
	switch elem.Kind() {
	case east.Boolean, east.Integer, east.Float:
		return nil
	}
	return p.lx.errf(tok.off, "%s element must be Boolean, Integer or Float, got %v", tok.text, elem.Kind())
}

func (p *typeParser) angled1() (*east.Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	elem, err := p.typ()
	if err != nil {
		return nil, err
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return elem, nil
}

func (p *typeParser) fieldList(open, close string) ([]east.Field, error) {
	if err := p.expect(open); err != nil {
		return nil, err
	}
	var fields []east.Field
	for !p.at(close) {
		name := p.lx.next()
		if name.kind != tokIdent && name.kind != tokString {
			return nil, p.lx.errf(name.off, "expected field name, got %q", name.text)
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		t, err := p.typ()
		if err != nil {
			return nil, err
		}
		fields = append(fields, east.Field{Name: name.text, Type: t})
		if !p.at(close) {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.lx.next()
	return fields, nil
}

func (p *typeParser) at(punct string) bool {
	tok := p.lx.peek()
	return tok.kind == tokPunct && tok.text == punct
}

func (p *typeParser) expect(punct string) error {
	tok := p.lx.next()
	if tok.kind != tokPunct || tok.text != punct {
		return p.lx.errf(tok.off, "expected %q, got %q", punct, tok.text)
	}
	return nil
}

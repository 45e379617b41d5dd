package etext

import (
	"encoding/base64"
	"math"
	"strconv"
	"time"

	"east/internal/east"
)

// Parse reads a single value in East text syntax. The syntax is
// self-describing for values, no type is needed.
func Parse(src string) (*east.Value, error) {
	p := &parser{lx: newLexer(src)}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if tok := p.lx.next(); tok.kind != tokEOF {
		return nil, p.lx.errf(tok.off, "trailing input %q", tok.text)
	}
	return v, nil
}

type parser struct {
	lx *lexer
}

func (p *parser) value() (*east.Value, error) {
	tok := p.lx.next()
	switch tok.kind {
	case tokInt:
		i, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.lx.errf(tok.off, "bad integer %q", tok.text)
		}
		return east.IntegerValue(i), nil

	case tokFloat:
		switch tok.text {
		case "inf":
			return east.FloatValue(math.Inf(1)), nil
		case "-inf":
			return east.FloatValue(math.Inf(-1)), nil
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.lx.errf(tok.off, "bad float %q", tok.text)
		}
		return east.FloatValue(f), nil

	case tokString:
		return east.StringValue(tok.text), nil

	case tokPunct:
		switch tok.text {
		case "[":
			return p.seq(east.ArrayValue(), "]")
		case "{":
			return p.structLit()
		}
		return nil, p.lx.errf(tok.off, "unexpected %q", tok.text)

	case tokIdent:
		return p.identValue(tok)

	case tokEOF:
		return nil, p.lx.errf(tok.off, "unexpected end of input")
	}
	return nil, p.lx.errf(tok.off, "unexpected token %q", tok.text)
}

func (p *parser) identValue(tok token) (*east.Value, error) {
	switch tok.text {
	case "null":
		return east.NullValue, nil
	case "true":
		return east.TrueValue, nil
	case "false":
		return east.FalseValue, nil
	case "inf":
		return east.FloatValue(math.Inf(1)), nil
	case "nan":
		return east.FloatValue(math.NaN()), nil

	case "datetime":
		s := p.lx.next()
		if s.kind != tokString {
			return nil, p.lx.errf(s.off, "datetime needs a quoted timestamp")
		}
		ts, err := time.Parse(time.RFC3339Nano, s.text)
		if err != nil {
			return nil, p.lx.errf(s.off, "bad timestamp %q", s.text)
		}
		return east.DateTimeValue(ts.UnixMilli()), nil

	case "blob":
		s := p.lx.next()
		if s.kind != tokString {
			return nil, p.lx.errf(s.off, "blob needs a quoted base64 payload")
		}
		b, err := base64.StdEncoding.DecodeString(s.text)
		if err != nil {
			return nil, p.lx.errf(s.off, "bad base64: %v", err)
		}
		return east.BlobValue(b), nil

	case "set":
		if err := p.expect("["); err != nil {
			return nil, err
		}
		return p.seq(east.SetValue(), "]")

	case "dict":
		if err := p.expect("{"); err != nil {
			return nil, err
		}
		out := east.DictValue()
		for !p.at("}") {
			k, err := p.value()
			if err != nil {
				return nil, err
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			out.DictSet(k, v)
			if !p.at("}") {
				if err := p.expect(","); err != nil {
					return nil, err
				}
			}
		}
		p.lx.next() // "}"
		return out, nil

	case "ref":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		inner, err := p.value()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return east.RefValue(inner), nil

	case "vector":
		if err := p.expect("["); err != nil {
			return nil, err
		}
		return p.packed(-1, -1)

	case "matrix":
		if err := p.expect("["); err != nil {
			return nil, err
		}
		rows, cols, err := p.shape()
		if err != nil {
			return nil, err
		}
		if err := p.expect("["); err != nil {
			return nil, err
		}
		return p.packed(rows, cols)
	}

	// Any other identifier starts a variant literal, case(payload).
	if err := p.expect("("); err != nil {
		return nil, err
	}
	payload, err := p.value()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return east.VariantValue(tok.text, payload), nil
}

func (p *parser) seq(out *east.Value, close string) (*east.Value, error) {
	set := out.Kind() == east.Set
	for !p.at(close) {
		elem, err := p.value()
		if err != nil {
			return nil, err
		}
		if set {
			out.SetAdd(elem)
		} else {
			out.Append(elem)
		}
		if !p.at(close) {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.lx.next()
	return out, nil
}

func (p *parser) structLit() (*east.Value, error) {
	var names []string
	var fields []*east.Value
	for !p.at("}") {
		name := p.lx.next()
		if name.kind != tokIdent && name.kind != tokString {
			return nil, p.lx.errf(name.off, "expected field name, got %q", name.text)
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		names = append(names, name.text)
		fields = append(fields, v)
		if !p.at("}") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.lx.next()
	return east.StructValue(names, fields), nil
}

// shape parses "R x C]" after "matrix[".
func (p *parser) shape() (rows, cols int, err error) {
	r := p.lx.next()
	if r.kind != tokInt {
		return 0, 0, p.lx.errf(r.off, "expected row count")
	}
	x := p.lx.next()
	if x.kind != tokIdent || x.text != "x" {
		return 0, 0, p.lx.errf(x.off, "expected 'x' in matrix shape")
	}
	c := p.lx.next()
	if c.kind != tokInt {
		return 0, 0, p.lx.errf(c.off, "expected column count")
	}
	if err := p.expect("]"); err != nil {
		return 0, 0, err
	}
	rows, _ = strconv.Atoi(r.text)
	cols, _ = strconv.Atoi(c.text)
	return rows, cols, nil
}

// packed parses a bracketed scalar list into a Vector, or a Matrix when
// rows >= 0. The element kind is inferred: any float promotes the whole
// list to float, booleans must be homogeneous.
func (p *parser) packed(rows, cols int) (*east.Value, error) {
	var bs []bool
	var is []int64
	var fs []float64
	nBool, nNum := 0, 0
	isFloat := false
	for !p.at("]") {
		tok := p.lx.next()
		switch {
		case tok.kind == tokIdent && (tok.text == "true" || tok.text == "false"):
			bs = append(bs, tok.text == "true")
			nBool++
		case tok.kind == tokInt:
			i, err := strconv.ParseInt(tok.text, 10, 64)
			if err != nil {
				return nil, p.lx.errf(tok.off, "bad integer %q", tok.text)
			}
			is = append(is, i)
			fs = append(fs, float64(i))
			nNum++
		case tok.kind == tokFloat || (tok.kind == tokIdent && (tok.text == "inf" || tok.text == "nan")):
			f, err := parsePackedFloat(tok.text)
			if err != nil {
				return nil, p.lx.errf(tok.off, "bad float %q", tok.text)
			}
			fs = append(fs, f)
			isFloat = true
			nNum++
		default:
			return nil, p.lx.errf(tok.off, "expected scalar, got %q", tok.text)
		}
		if !p.at("]") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	closeTok := p.lx.next()
	if nBool > 0 && nNum > 0 {
		return nil, p.lx.errf(closeTok.off, "mixed boolean and numeric elements")
	}
	if rows >= 0 {
		if want := rows * cols; want != nBool+nNum {
			return nil, p.lx.errf(closeTok.off, "matrix shape %dx%d wants %d elements, got %d", rows, cols, rows*cols, nBool+nNum)
		}
		switch {
		case nBool > 0:
			return east.MatrixBoolean(rows, cols, bs), nil
		case isFloat:
			return east.MatrixFloat(rows, cols, fs), nil
		default:
			return east.MatrixInteger(rows, cols, is), nil
		}
	}
	switch {
	case nBool > 0:
		return east.VectorBoolean(bs), nil
	case isFloat:
		return east.VectorFloat(fs), nil
	default:
		return east.VectorInteger(is), nil
	}
}

func parsePackedFloat(text string) (float64, error) {
	switch text {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(text, 64)
}

func (p *parser) at(punct string) bool {
	tok := p.lx.peek()
	return tok.kind == tokPunct && tok.text == punct
}

func (p *parser) expect(punct string) error {
	tok := p.lx.next()
	if tok.kind != tokPunct || tok.text != punct {
		return p.lx.errf(tok.off, "expected %q, got %q", punct, tok.text)
	}
	return nil
}

package interp

import (
	"fmt"

	"east/internal/east"
)

func evalUnop(p *east.Value, env *Env) (*east.Value, error) {
	op := p.FieldByName("op").Str()
	v, err := eval(p.FieldByName("value"), env)
	if err != nil {
		return nil, err
	}
	switch op {
	case "-":
		switch v.Kind() {
		case east.Integer:
			return east.IntegerValue(-v.Int()), nil
		case east.Float:
			return east.FloatValue(-v.Float()), nil
		}
	case "not":
		if v.Kind() == east.Boolean {
			return east.BooleanValue(!v.Bool()), nil
		}
	}
	return nil, fmt.Errorf("%w: %s of %v", ErrEval, op, v.Kind())
}

func evalBinop(p *east.Value, env *Env) (*east.Value, error) {
	op := p.FieldByName("op").Str()
	left, err := eval(p.FieldByName("left"), env)
	if err != nil {
		return nil, err
	}

	// Short-circuiting forms evaluate the right side lazily.
	if op == "and" || op == "or" {
		if left.Kind() != east.Boolean {
			return nil, fmt.Errorf("%w: %s of %v", ErrEval, op, left.Kind())
		}
		if op == "and" && !left.Bool() {
			return east.FalseValue, nil
		}
		if op == "or" && left.Bool() {
			return east.TrueValue, nil
		}
		return evalBool2(p.FieldByName("right"), env)
	}

	right, err := eval(p.FieldByName("right"), env)
	if err != nil {
		return nil, err
	}

	switch op {
	case "==":
		return east.BooleanValue(east.Equal(left, right)), nil
	case "!=":
		return east.BooleanValue(!east.Equal(left, right)), nil
	case "<":
		return east.BooleanValue(east.Compare(left, right) < 0), nil
	case "<=":
		return east.BooleanValue(east.Compare(left, right) <= 0), nil
	case ">":
		return east.BooleanValue(east.Compare(left, right) > 0), nil
	case ">=":
		return east.BooleanValue(east.Compare(left, right) >= 0), nil
	}

	if left.Kind() == east.Integer && right.Kind() == east.Integer {
		a, b := left.Int(), right.Int()
		switch op {
		case "+":
			return east.IntegerValue(a + b), nil
		case "-":
			return east.IntegerValue(a - b), nil
		case "*":
			return east.IntegerValue(a * b), nil
		case "/":
			if b == 0 {
				return nil, fmt.Errorf("%w: integer division by zero", ErrEval)
			}
			return east.IntegerValue(a / b), nil
		case "%":
			if b == 0 {
				return nil, fmt.Errorf("%w: integer modulo by zero", ErrEval)
			}
			return east.IntegerValue(a % b), nil
		}
	}
	if left.Kind() == east.Float && right.Kind() == east.Float {
		a, b := left.Float(), right.Float()
		switch op {
		case "+":
			return east.FloatValue(a + b), nil
		case "-":
			return east.FloatValue(a - b), nil
		case "*":
			return east.FloatValue(a * b), nil
		case "/":
			return east.FloatValue(a / b), nil
		}
	}
	if left.Kind() == east.String && right.Kind() == east.String && op == "+" {
		return east.StringValue(left.Str() + right.Str()), nil
	}
	if left.Kind() == east.Array && right.Kind() == east.Array && op == "+" {
		elems := make([]*east.Value, 0, left.Len()+right.Len())
		for i := 0; i < left.Len(); i++ {
			elems = append(elems, left.Index(i))
		}
		for i := 0; i < right.Len(); i++ {
			elems = append(elems, right.Index(i))
		}
		return east.ArrayValue(elems...), nil
	}
	return nil, fmt.Errorf("%w: %v %s %v", ErrEval, left.Kind(), op, right.Kind())
}

func evalBool2(ir *east.Value, env *Env) (*east.Value, error) {
	b, err := evalBool(ir, env)
	if err != nil {
		return nil, err
	}
	return east.BooleanValue(b), nil
}

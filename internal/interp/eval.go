package interp

import (
	"errors"
	"fmt"

	"east/internal/east"
)

// ErrEval reports an IR tree the evaluator cannot run.
var ErrEval = errors.New("interp: evaluation error")

// returnSignal unwinds a Return node to the nearest function call.
type returnSignal struct {
	value *east.Value
}

func (returnSignal) Error() string { return "interp: return outside function" }

// Eval evaluates an IR value in env and returns the result.
func Eval(ir *east.Value, env *Env) (*east.Value, error) {
	v, err := eval(ir, env)
	if err != nil {
		var ret returnSignal
		if errors.As(err, &ret) {
			return nil, fmt.Errorf("%w: return outside function", ErrEval)
		}
		return nil, err
	}
	return v, nil
}

func eval(ir *east.Value, env *Env) (*east.Value, error) {
	if ir == nil || ir.Kind() != east.Variant {
		return nil, fmt.Errorf("%w: not an IR node", ErrEval)
	}
	p := ir.Payload()
	switch ir.CaseName() {
	case "NullLit":
		return east.NullValue, nil
	case "BoolLit":
		return east.BooleanValue(p.Bool()), nil
	case "IntLit":
		return east.IntegerValue(p.Int()), nil
	case "FloatLit":
		return east.FloatValue(p.Float()), nil
	case "StrLit":
		return east.StringValue(p.Str()), nil
	case "DateTimeLit":
		return east.DateTimeValue(p.Int()), nil
	case "BlobLit":
		return east.BlobValue(p.Blob()), nil

	case "Variable":
		v, ok := env.Lookup(p.Str())
		if !ok {
			return nil, fmt.Errorf("%w: unbound variable %q", ErrEval, p.Str())
		}
		return v, nil

	case "ArrayLit", "SetLit":
		elems, err := evalAll(p, env)
		if err != nil {
			return nil, err
		}
		if ir.CaseName() == "ArrayLit" {
			return east.ArrayValue(elems...), nil
		}
		return east.SetValue(elems...), nil

	case "DictLit":
		d := east.DictValue()
		for i := 0; i < p.Len(); i++ {
			entry := p.Index(i)
			key, err := eval(entry.FieldByName("key"), env)
			if err != nil {
				return nil, err
			}
			val, err := eval(entry.FieldByName("value"), env)
			if err != nil {
				return nil, err
			}
			d.DictSet(key, val)
		}
		return d, nil

	case "StructLit":
		names := make([]string, p.Len())
		fields := make([]*east.Value, p.Len())
		for i := 0; i < p.Len(); i++ {
			entry := p.Index(i)
			names[i] = entry.FieldByName("name").Str()
			v, err := eval(entry.FieldByName("value"), env)
			if err != nil {
				return nil, err
			}
			fields[i] = v
		}
		return east.StructValue(names, fields), nil

	case "VariantLit":
		v, err := eval(p.FieldByName("value"), env)
		if err != nil {
			return nil, err
		}
		return east.VariantValue(p.FieldByName("case").Str(), v), nil

	case "VectorLit":
		return evalPacked(p, env, false)
	case "MatrixLit":
		return evalPacked(p, env, true)

	case "Let":
		v, err := eval(p.FieldByName("value"), env)
		if err != nil {
			return nil, err
		}
		env.Define(p.FieldByName("name").Str(), v)
		return east.NullValue, nil

	case "Assign":
		v, err := eval(p.FieldByName("value"), env)
		if err != nil {
			return nil, err
		}
		name := p.FieldByName("name").Str()
		if !env.Assign(name, v) {
			return nil, fmt.Errorf("%w: assignment to unbound %q", ErrEval, name)
		}
		return east.NullValue, nil

	case "Block":
		result := east.NullValue
		scope := NewEnv(env)
		for i := 0; i < p.Len(); i++ {
			v, err := eval(p.Index(i), scope)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil

	case "If":
		cond, err := evalBool(p.FieldByName("cond"), env)
		if err != nil {
			return nil, err
		}
		if cond {
			return eval(p.FieldByName("then"), env)
		}
		return eval(p.FieldByName("else"), env)

	case "Match":
		subject, err := eval(p.FieldByName("subject"), env)
		if err != nil {
			return nil, err
		}
		if subject.Kind() != east.Variant {
			return nil, fmt.Errorf("%w: match on %v", ErrEval, subject.Kind())
		}
		cases := p.FieldByName("cases")
		for i := 0; i < cases.Len(); i++ {
			c := cases.Index(i)
			if c.FieldByName("case").Str() != subject.CaseName() {
				continue
			}
			scope := NewEnv(env)
			if b := c.FieldByName("binding").Str(); b != "" {
				scope.Define(b, subject.Payload())
			}
			return eval(c.FieldByName("body"), scope)
		}
		return eval(p.FieldByName("default"), env)

	case "While":
		for {
			cond, err := evalBool(p.FieldByName("cond"), env)
			if err != nil {
				return nil, err
			}
			if !cond {
				return east.NullValue, nil
			}
			if _, err := eval(p.FieldByName("body"), env); err != nil {
				return nil, err
			}
		}

	case "For":
		iterable, err := eval(p.FieldByName("iterable"), env)
		if err != nil {
			return nil, err
		}
		switch iterable.Kind() {
		case east.Array, east.Set:
		default:
			return nil, fmt.Errorf("%w: for over %v", ErrEval, iterable.Kind())
		}
		name := p.FieldByName("name").Str()
		for i := 0; i < iterable.Len(); i++ {
			scope := NewEnv(env)
			scope.Define(name, iterable.Index(i))
			if _, err := eval(p.FieldByName("body"), scope); err != nil {
				return nil, err
			}
		}
		return east.NullValue, nil

	case "Return":
		v, err := eval(p, env)
		if err != nil {
			return nil, err
		}
		return nil, returnSignal{value: v}

	case "FieldGet":
		subject, err := eval(p.FieldByName("subject"), env)
		if err != nil {
			return nil, err
		}
		if subject.Kind() != east.Struct {
			return nil, fmt.Errorf("%w: field access on %v", ErrEval, subject.Kind())
		}
		name := p.FieldByName("field").Str()
		f := subject.FieldByName(name)
		if f == nil {
			return nil, fmt.Errorf("%w: no field %q", ErrEval, name)
		}
		return f, nil

	case "IndexGet":
		subject, err := eval(p.FieldByName("subject"), env)
		if err != nil {
			return nil, err
		}
		index, err := eval(p.FieldByName("index"), env)
		if err != nil {
			return nil, err
		}
		switch subject.Kind() {
		case east.Array, east.Set:
			if index.Kind() != east.Integer {
				return nil, fmt.Errorf("%w: index of %v kind", ErrEval, index.Kind())
			}
			i := index.Int()
			if i < 0 || i >= int64(subject.Len()) {
				return nil, fmt.Errorf("%w: index %d out of range", ErrEval, i)
			}
			return subject.Index(int(i)), nil
		case east.Dict:
			v := subject.DictGet(index)
			if v == nil {
				return nil, fmt.Errorf("%w: missing dict key", ErrEval)
			}
			return v, nil
		}
		return nil, fmt.Errorf("%w: index into %v", ErrEval, subject.Kind())

	case "NewRef":
		v, err := eval(p, env)
		if err != nil {
			return nil, err
		}
		return east.RefValue(v), nil

	case "RefGet":
		v, err := eval(p, env)
		if err != nil {
			return nil, err
		}
		if v.Kind() != east.Ref {
			return nil, fmt.Errorf("%w: deref of %v", ErrEval, v.Kind())
		}
		return v.Deref(), nil

	case "RefSet":
		ref, err := eval(p.FieldByName("ref"), env)
		if err != nil {
			return nil, err
		}
		if ref.Kind() != east.Ref {
			return nil, fmt.Errorf("%w: store into %v", ErrEval, ref.Kind())
		}
		v, err := eval(p.FieldByName("value"), env)
		if err != nil {
			return nil, err
		}
		ref.SetDeref(v)
		return east.NullValue, nil

	case "Function", "AsyncFunction":
		return Close(ir, env)

	case "Call":
		callee, err := eval(p.FieldByName("callee"), env)
		if err != nil {
			return nil, err
		}
		args, err := evalAll(p.FieldByName("args"), env)
		if err != nil {
			return nil, err
		}
		return Call(callee, args)

	case "Builtin":
		args, err := evalAll(p.FieldByName("args"), env)
		if err != nil {
			return nil, err
		}
		return callBuiltin(p.FieldByName("name").Str(), args)

	case "Unop":
		return evalUnop(p, env)
	case "Binop":
		return evalBinop(p, env)
	}
	return nil, fmt.Errorf("%w: unknown IR case %q", ErrEval, ir.CaseName())
}

// Close builds a Function value from its IR node by snapshotting the
// captures out of the defining environment. Mutable captures are expected
// to be bound to Ref cells already; the cell itself is captured, not its
// contents.
func Close(ir *east.Value, env *Env) (*east.Value, error) {
	caps, err := east.FunctionCaptures(ir)
	if err != nil {
		return nil, err
	}
	captured := make(map[string]*east.Value, len(caps))
	for _, c := range caps {
		v, ok := env.Lookup(c.Name)
		if !ok {
			return nil, fmt.Errorf("%w: capture %q unbound at closure creation", ErrEval, c.Name)
		}
		if c.Mutable && v.Kind() != east.Ref {
			return nil, fmt.Errorf("%w: mutable capture %q is not a ref", ErrEval, c.Name)
		}
		captured[c.Name] = v
	}
	return east.FunctionValue(ir, captured), nil
}

// Call applies a Function value to args. The call environment is built from
// scratch: captures first, then parameters, so a parameter may shadow a
// capture of the same name.
func Call(fn *east.Value, args []*east.Value) (*east.Value, error) {
	if fn.Kind() != east.Function {
		return nil, fmt.Errorf("%w: call of %v", ErrEval, fn.Kind())
	}
	fv := fn.Func()
	params, err := east.FunctionParams(fv.IR)
	if err != nil {
		return nil, err
	}
	if len(args) != len(params) {
		return nil, fmt.Errorf("%w: %d args for %d params", ErrEval, len(args), len(params))
	}
	env := NewEnv(nil)
	for name, v := range fv.Captures {
		env.Define(name, v)
	}
	for i, p := range params {
		env.Define(p.Name, args[i])
	}
	body, err := east.FunctionBody(fv.IR)
	if err != nil {
		return nil, err
	}
	v, err := eval(body, env)
	if err != nil {
		var ret returnSignal
		if errors.As(err, &ret) {
			return ret.value, nil
		}
		return nil, err
	}
	return v, nil
}

func evalAll(list *east.Value, env *Env) ([]*east.Value, error) {
	out := make([]*east.Value, list.Len())
	for i := range out {
		v, err := eval(list.Index(i), env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalBool(ir *east.Value, env *Env) (bool, error) {
	v, err := eval(ir, env)
	if err != nil {
		return false, err
	}
	if v.Kind() != east.Boolean {
		return false, fmt.Errorf("%w: condition is %v", ErrEval, v.Kind())
	}
	return v.Bool(), nil
}

func evalPacked(p *east.Value, env *Env, matrix bool) (*east.Value, error) {
	elemType, err := east.ValueToType(p.FieldByName("elem"))
	if err != nil {
		return nil, err
	}
	values, err := evalAll(p.FieldByName("values"), env)
	if err != nil {
		return nil, err
	}
	rows, cols := 0, 0
	if matrix {
		rows = int(p.FieldByName("rows").Int())
		cols = int(p.FieldByName("cols").Int())
		if rows*cols != len(values) {
			return nil, fmt.Errorf("%w: matrix %dx%d with %d elements", ErrEval, rows, cols, len(values))
		}
	}
	switch elemType.Kind() {
	case east.Boolean:
		xs := make([]bool, len(values))
		for i, v := range values {
			xs[i] = v.Bool()
		}
		if matrix {
			return east.MatrixBoolean(rows, cols, xs), nil
		}
		return east.VectorBoolean(xs), nil
	case east.Integer:
		xs := make([]int64, len(values))
		for i, v := range values {
			xs[i] = v.Int()
		}
		if matrix {
			return east.MatrixInteger(rows, cols, xs), nil
		}
		return east.VectorInteger(xs), nil
	case east.Float:
		xs := make([]float64, len(values))
		for i, v := range values {
			xs[i] = v.Float()
		}
		if matrix {
			return east.MatrixFloat(rows, cols, xs), nil
		}
		return east.VectorFloat(xs), nil
	}
	return nil, fmt.Errorf("%w: packed literal of %v", ErrEval, elemType.Kind())
}

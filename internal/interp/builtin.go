package interp

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"east/internal/east"
)

// builtins is the platform registry: the operations the IR can reach
// without a closure. Keyed by name, dispatched by the Builtin node.
var builtins = map[string]func(args []*east.Value) (*east.Value, error){
	"len":       builtinLen,
	"str_lower": builtinStrLower,
	"str_upper": builtinStrUpper,
	"str_norm":  builtinStrNorm,
	"abs":       builtinAbs,
}

// Builtin invokes a platform builtin by name. The REPL goes through
// here directly, without building an IR node.
func Builtin(name string, args []*east.Value) (*east.Value, error) {
	return callBuiltin(name, args)
}

// BuiltinNames lists the registered builtins, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func callBuiltin(name string, args []*east.Value) (*east.Value, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown builtin %q", ErrEval, name)
	}
	return fn(args)
}

func one(args []*east.Value, name string) (*east.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s takes 1 argument, got %d", ErrEval, name, len(args))
	}
	return args[0], nil
}

func builtinLen(args []*east.Value) (*east.Value, error) {
	v, err := one(args, "len")
	if err != nil {
		return nil, err
	}
	switch v.Kind() {
	case east.String:
		return east.IntegerValue(int64(len(v.Str()))), nil
	case east.Blob:
		return east.IntegerValue(int64(len(v.Blob()))), nil
	case east.Array, east.Set, east.Dict, east.Vector, east.Matrix:
		return east.IntegerValue(int64(v.Len())), nil
	}
	return nil, fmt.Errorf("%w: len of %v", ErrEval, v.Kind())
}

func stringArg(args []*east.Value, name string) (string, error) {
	v, err := one(args, name)
	if err != nil {
		return "", err
	}
	if v.Kind() != east.String {
		return "", fmt.Errorf("%w: %s of %v", ErrEval, name, v.Kind())
	}
	return v.Str(), nil
}

func builtinStrLower(args []*east.Value) (*east.Value, error) {
	s, err := stringArg(args, "str_lower")
	if err != nil {
		return nil, err
	}
	return east.StringValue(strings.ToLower(s)), nil
}

func builtinStrUpper(args []*east.Value) (*east.Value, error) {
	s, err := stringArg(args, "str_upper")
	if err != nil {
		return nil, err
	}
	return east.StringValue(strings.ToUpper(s)), nil
}

// builtinStrNorm canonicalizes a string to NFC so that visually identical
// strings compare and hash identically regardless of how they were typed.
func builtinStrNorm(args []*east.Value) (*east.Value, error) {
	s, err := stringArg(args, "str_norm")
	if err != nil {
		return nil, err
	}
	return east.StringValue(norm.NFC.String(s)), nil
}

func builtinAbs(args []*east.Value) (*east.Value, error) {
	v, err := one(args, "abs")
	if err != nil {
		return nil, err
	}
	switch v.Kind() {
	case east.Integer:
		if x := v.Int(); x < 0 {
			return east.IntegerValue(-x), nil
		}
		return v, nil
	case east.Float:
		if x := v.Float(); x < 0 {
			return east.FloatValue(-x), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: abs of %v", ErrEval, v.Kind())
}

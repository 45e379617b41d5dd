// Package interp evaluates East IR trees. IR is homoiconic: a program is an
// ordinary east.Value of east.IRType, so the evaluator is a switch over
// variant cases and the codecs serialize programs like any other data.
package interp

import "east/internal/east"

// Env is a lexical scope: a name table chained to the enclosing scope.
// Mutable captured variables are bound to Ref cells so that closures and
// their defining scope observe each other's writes through the shared cell.
type Env struct {
	parent *Env
	vars   map[string]*east.Value
}

// NewEnv returns a scope chained to parent, which may be nil.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]*east.Value)}
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Env) Define(name string, v *east.Value) {
	e.vars[name] = v
}

// Lookup resolves name through the scope chain.
func (e *Env) Lookup(name string) (*east.Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign rebinds name in its defining scope. It reports whether the name
// was bound anywhere on the chain.
func (e *Env) Assign(name string, v *east.Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}

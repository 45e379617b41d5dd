package east

import (
	"bytes"
	"strings"
)

// Equal reports structural equality. Function values are compared by
// identity: two closures are equal only when they are the same closure.
func Equal(a, b *Value) bool {
	return Compare(a, b) == 0
}

// Compare is the total order Sets and Dicts sort by: values of different
// kinds order by kind, values of the same kind by payload, containers
// lexicographically. Function values have no payload order; distinct
// closures compare by nothing beyond identity and should not be used as Set
// elements or Dict keys.
func Compare(a, b *Value) int {
	return compare(a, b, nil)
}

func compare(a, b *Value, seen map[[2]*Value]bool) int {
	if a == b {
		return 0
	}
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	switch a.kind {
	case Array, Set, Dict, Struct, Variant, Ref:
		pair := [2]*Value{a, b}
		if seen[pair] {
			// Already comparing this pair further up the walk; ordering
			// the back-edge as equal is what makes distinct cyclic
			// values terminate, same as typeEqual.
			return 0
		}
		if seen == nil {
			seen = map[[2]*Value]bool{}
		}
		seen[pair] = true
	}
	switch a.kind {
	case Null:
		return 0
	case Boolean:
		return cmpBool(a.b, b.b)
	case Integer, DateTime:
		return cmpInt64(a.i, b.i)
	case Float:
		switch {
		case a.f < b.f:
			return -1
		case a.f > b.f:
			return 1
		}
		return 0
	case String:
		return strings.Compare(a.s, b.s)
	case Blob:
		return bytes.Compare(a.blob, b.blob)
	case Array, Set:
		return cmpValues(a.elems, b.elems, seen)
	case Dict:
		if c := cmpValues(a.keys, b.keys, seen); c != 0 {
			return c
		}
		return cmpValues(a.elems, b.elems, seen)
	case Struct:
		if c := cmpInt64(int64(len(a.elems)), int64(len(b.elems))); c != 0 {
			return c
		}
		for i := range a.elems {
			if c := strings.Compare(a.names[i], b.names[i]); c != 0 {
				return c
			}
		}
		return cmpValues(a.elems, b.elems, seen)
	case Variant:
		if c := strings.Compare(a.s, b.s); c != 0 {
			return c
		}
		return compare(a.inner, b.inner, seen)
	case Ref:
		return compare(a.inner, b.inner, seen)
	case Vector, Matrix:
		if a.kind == Matrix {
			if c := cmpInt64(int64(a.rows), int64(b.rows)); c != 0 {
				return c
			}
			if c := cmpInt64(int64(a.cols), int64(b.cols)); c != 0 {
				return c
			}
		}
		if a.vkind != b.vkind {
			return int(a.vkind) - int(b.vkind)
		}
		switch a.vkind {
		case Boolean:
			if c := cmpInt64(int64(len(a.vecB)), int64(len(b.vecB))); c != 0 {
				return c
			}
			for i := range a.vecB {
				if c := cmpBool(a.vecB[i], b.vecB[i]); c != 0 {
					return c
				}
			}
		case Integer:
			if c := cmpInt64(int64(len(a.vecI)), int64(len(b.vecI))); c != 0 {
				return c
			}
			for i := range a.vecI {
				if c := cmpInt64(a.vecI[i], b.vecI[i]); c != 0 {
					return c
				}
			}
		default:
			if c := cmpInt64(int64(len(a.vecF)), int64(len(b.vecF))); c != 0 {
				return c
			}
			for i := range a.vecF {
				switch {
				case a.vecF[i] < b.vecF[i]:
					return -1
				case a.vecF[i] > b.vecF[i]:
					return 1
				}
			}
		}
		return 0
	case Function:
		// Identity only; a != b was checked above but the payloads may
		// still be shared.
		if a.fn == b.fn {
			return 0
		}
		return 1
	}
	return 0
}

func cmpValues(a, b []*Value, seen map[[2]*Value]bool) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compare(a[i], b[i], seen); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Package eval implements row evaluation and dependency-driven column
// filling over a compiled corset.Program's expression trees (§4.5).
package eval

import (
	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
)

// Getter reads the value of handle at logical row i, honouring wrap when
// the row falls outside what has been computed. It returns false for an
// out-of-range read with wrap disabled — the "None" of §4.5.1.
type Getter func(handle corset.Handle, i int, wrap bool) (field.Element, bool)

// InverseCache memoises field inversions within the scope of a single
// computation; it is never shared across computations (§5, "per-evaluation
// not shared").
type InverseCache struct {
	entries map[field.Element]field.Element
}

// NewInverseCache constructs an empty cache.
func NewInverseCache() *InverseCache {
	return &InverseCache{entries: make(map[field.Element]field.Element)}
}

func (c *InverseCache) get(x field.Element) field.Element {
	if c == nil {
		return x.Inverse()
	}

	if v, ok := c.entries[x]; ok {
		return v
	}

	v := x.Inverse()
	c.entries[x] = v

	return v
}

// EvalRow evaluates node at row i under get, wrap and an optional
// InverseCache, implementing §4.5.1. The boolean result is false when the
// node reads out of range with wrap disabled, reads a column get reports
// as unavailable, or has no row value (a Const without a field element,
// an ArrayColumnRef, Void, or an unhandled builtin).
func EvalRow(node *corset.Node, i int, wrap bool, get Getter, cache *InverseCache) (field.Element, bool) {
	switch e := node.Expr.(type) {
	case *corset.Const:
		if e.Field == nil {
			return field.Element{}, false
		}

		return *e.Field, true
	case *corset.ColumnRef:
		return get(e.Handle, i, wrap)
	case *corset.ArrayColumnRef:
		// Unreachable post-reduction: nth always lowers an ArrayColumnRef
		// access to a ColumnRef before a Node survives into a constraint or
		// computation body.
		return field.Element{}, false
	case *corset.ListExpr:
		return evalList(e, i, wrap, get, cache)
	case *corset.Funcall:
		return evalFuncall(e, i, wrap, get, cache)
	case *corset.VoidExpr:
		return field.Element{}, false
	default:
		return field.Element{}, false
	}
}

// evalList implements "first non-zero of the xs evaluations, else 0".
func evalList(l *corset.ListExpr, i int, wrap bool, get Getter, cache *InverseCache) (field.Element, bool) {
	for _, n := range l.Nodes {
		v, ok := EvalRow(n, i, wrap, get, cache)
		if !ok {
			return field.Element{}, false
		}

		if !v.IsZero() {
			return v, true
		}
	}

	return field.Zero(), true
}

func evalFuncall(f *corset.Funcall, i int, wrap bool, get Getter, cache *InverseCache) (field.Element, bool) {
	switch f.Builtin {
	case corset.Add:
		return foldArgs(f.Args, i, wrap, get, cache, field.Element.Add)
	case corset.Sub:
		return foldArgs(f.Args, i, wrap, get, cache, field.Element.Sub)
	case corset.Mul:
		return foldArgs(f.Args, i, wrap, get, cache, field.Element.Mul)
	case corset.Neg:
		x, ok := EvalRow(f.Args[0], i, wrap, get, cache)
		if !ok {
			return field.Element{}, false
		}

		return x.Neg(), true
	case corset.Inv:
		x, ok := EvalRow(f.Args[0], i, wrap, get, cache)
		if !ok {
			return field.Element{}, false
		}

		if x.IsZero() {
			return field.Zero(), true
		}

		return cache.get(x), true
	case corset.Pow:
		return evalPow(f, i, wrap, get, cache)
	case corset.Shift:
		return evalShift(f, i, get, cache)
	case corset.BoolMul:
		return foldArgs(f.Args, i, wrap, get, cache, field.Element.Mul)
	case corset.IfZero:
		return evalIf(f, i, wrap, get, cache, true)
	case corset.IfNotZero:
		return evalIf(f, i, wrap, get, cache, false)
	default:
		return field.Element{}, false
	}
}

func foldArgs(
	args []*corset.Node, i int, wrap bool, get Getter, cache *InverseCache, op func(x, y field.Element) field.Element,
) (field.Element, bool) {
	acc, ok := EvalRow(args[0], i, wrap, get, cache)
	if !ok {
		return field.Element{}, false
	}

	for _, arg := range args[1:] {
		v, ok := EvalRow(arg, i, wrap, get, cache)
		if !ok {
			return field.Element{}, false
		}

		acc = op(acc, v)
	}

	return acc, true
}

// evalPow computes args[0]^k via repeated multiplication, k being the
// compile-time constant literal already checked by the reducer.
func evalPow(f *corset.Funcall, i int, wrap bool, get Getter, cache *InverseCache) (field.Element, bool) {
	base, ok := EvalRow(f.Args[0], i, wrap, get, cache)
	if !ok {
		return field.Element{}, false
	}

	k, ok := f.Args[1].Expr.(*corset.Const)
	if !ok {
		return field.Element{}, false
	}

	return base.Exp(k.Integer.Int().Uint64()), true
}

// evalShift reads args[0] at row i+k with wrap forced off, per §4.5.1.
func evalShift(f *corset.Funcall, i int, get Getter, cache *InverseCache) (field.Element, bool) {
	k, ok := f.Args[1].Expr.(*corset.Const)
	if !ok {
		return field.Element{}, false
	}

	offset := int(k.Integer.Int().Int64())

	return EvalRow(f.Args[0], i+offset, false, get, cache)
}

// evalIf implements if-zero (zeroTakesThen=true) and if-not-zero
// (zeroTakesThen=false): the 2-arg form falls back to 0 for the missing
// branch.
func evalIf(
	f *corset.Funcall, i int, wrap bool, get Getter, cache *InverseCache, zeroTakesThen bool,
) (field.Element, bool) {
	cond, ok := EvalRow(f.Args[0], i, wrap, get, cache)
	if !ok {
		return field.Element{}, false
	}

	takeThen := cond.IsZero() == zeroTakesThen

	if takeThen {
		return EvalRow(f.Args[1], i, wrap, get, cache)
	}

	if len(f.Args) == 3 {
		return EvalRow(f.Args[2], i, wrap, get, cache)
	}

	return field.Zero(), true
}

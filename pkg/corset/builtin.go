package corset

// Builtin identifies one of the irreducible primitive operations which
// survive reduction into a Funcall node.  "not", "eq", "nth" and "begin"
// are surface-level sugar rewritten during reduction (see reducer.go) and
// so, with the exception of the boolean form of "eq", never themselves
// appear inside a Funcall.
type Builtin uint8

const (
	// Add is n-ary addition, n>=2.
	Add Builtin = iota
	// Sub is n-ary subtraction, n>=2.
	Sub
	// Mul is n-ary multiplication, n>=2.
	Mul
	// Neg is unary negation.
	Neg
	// Inv is unary field inversion.
	Inv
	// Pow raises a value to a compile-time constant power.
	Pow
	// Shift reads a column at a row offset by a compile-time constant.
	Shift
	// IfZero is a three-way conditional on a zero test.
	IfZero
	// IfNotZero is the zero-test conditional with branches swapped.
	IfNotZero
	// BoolMul is the multiplicative form "eq" lowers to when both operands
	// are Boolean: (x-y)*(x-y).
	BoolMul
)

// Name returns the builtin's surface-syntax name, as it would be written in
// source (used for error messages).
func (b Builtin) Name() string {
	switch b {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Neg:
		return "neg"
	case Inv:
		return "inv"
	case Pow:
		return "^"
	case Shift:
		return "shift"
	case IfZero:
		return "if-zero"
	case IfNotZero:
		return "if-not-zero"
	case BoolMul:
		return "*"
	default:
		return "?"
	}
}

// arityRange returns the inclusive [min,max] arity accepted by a builtin;
// max of zero denotes unbounded ("any number >= min").
func (b Builtin) arityRange() (min uint, max uint) {
	switch b {
	case Add, Sub, Mul:
		return 2, 0
	case Neg, Inv:
		return 1, 1
	case Pow, Shift:
		return 2, 2
	case IfZero, IfNotZero:
		return 2, 3
	case BoolMul:
		return 2, 2
	default:
		return 0, 0
	}
}

// HasArity checks whether n arguments is acceptable for this builtin.
func (b Builtin) HasArity(n uint) bool {
	min, max := b.arityRange()
	return n >= min && (max == 0 || n <= max)
}

// Typing computes the result type of applying this builtin to the given
// (already reduced) argument nodes, implementing the promotion rule of
// §3.2: arithmetic operators (+, -, neg, inv) applied to Boolean operands
// promote to Integer, because {0,1} is not closed under them.  All other
// builtins preserve the join of their arguments' magmas.
func (b Builtin) Typing(args []*Node) Type {
	result := args[0].Type()
	for _, a := range args[1:] {
		result = result.Join(a.Type())
	}

	switch b {
	case Add, Sub, Neg, Inv:
		return result.Promote()
	case BoolMul:
		return Type{result.Scale, Boolean}
	case Shift:
		// Shift's result has the scale/magma of the column being shifted;
		// the second argument (the offset) is scalar and does not
		// participate in the join.
		return args[0].Type()
	case Pow:
		return args[0].Type()
	case IfZero, IfNotZero:
		if len(args) == 3 {
			return args[1].Type().Join(args[2].Type())
		}

		return args[1].Type()
	default:
		return result
	}
}

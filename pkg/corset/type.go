package corset

// Scale classifies the shape of a value: whether it is a single scalar, an
// indexed sequence over trace rows (a column), a sequence of independent
// values (e.g. the arguments collected by a for-loop), or no value at all.
type Scale uint8

const (
	// ScalarScale denotes a single field element independent of any row.
	ScalarScale Scale = iota
	// ColumnScale denotes a value which varies per trace row.
	ColumnScale
	// ListScale denotes a sequence of values, as produced by "for" and
	// "begin".
	ListScale
	// VoidScale denotes the absence of a value, e.g. a declaration form.
	VoidScale
)

// Magma classifies the algebraic range of a value: Boolean is the
// sub-magma of Integer containing only values provably restricted to
// {0,1}.
type Magma uint8

const (
	// Boolean denotes a value provably in {0,1}.
	Boolean Magma = iota
	// Integer denotes an arbitrary field element.
	Integer
)

// Join returns the least magma which contains both m and o, i.e. their
// supremum in the lattice Boolean ⊂ Integer.
func (m Magma) Join(o Magma) Magma {
	if m == Integer || o == Integer {
		return Integer
	}

	return Boolean
}

func (m Magma) String() string {
	if m == Boolean {
		return "bool"
	}

	return "int"
}

// Type is a pair (scale, magma) describing the shape and algebraic range of
// an expression.  The lattice order is induced componentwise; ScalarBool is
// its infimum.
type Type struct {
	Scale Scale
	Magma Magma
}

// ScalarBool is the infimum of the type lattice: Scalar(Boolean).
var ScalarBool = Type{ScalarScale, Boolean}

// ScalarInt is Scalar(Integer), the type of an unconstrained compile-time
// constant or scalar expression.
var ScalarInt = Type{ScalarScale, Integer}

// ColumnBool is Column(Boolean), the type of a column known to hold only
// {0,1}.
var ColumnBool = Type{ColumnScale, Boolean}

// ColumnInt is Column(Integer), the type of an arbitrary column.
var ColumnInt = Type{ColumnScale, Integer}

// VoidType is the type of a declaration form, which yields no value.
var VoidType = Type{VoidScale, Integer}

// NewScalarType constructs Scalar(Boolean) if v is 0 or 1, else
// Scalar(Integer) — the classification rule applied uniformly to integer
// literals and named constants.
func NewScalarType(isBoolLiteral bool) Type {
	if isBoolLiteral {
		return ScalarBool
	}

	return ScalarInt
}

// Join computes the pointwise supremum of two types: the join of their
// scales (the greater in declaration order, so Column dominates Scalar,
// List dominates both, and Void dominates everything) and the join of their
// magmas.
func (t Type) Join(o Type) Type {
	scale := t.Scale
	if o.Scale == ColumnScale && t.Scale == ScalarScale {
		scale = ColumnScale
	} else if t.Scale == ColumnScale && o.Scale == ScalarScale {
		scale = ColumnScale
	} else if o.Scale > t.Scale {
		scale = o.Scale
	}

	return Type{scale, t.Magma.Join(o.Magma)}
}

// IsValue checks whether this type denotes an actual value, i.e. is Scalar
// or Column (as opposed to List or Void).
func (t Type) IsValue() bool {
	return t.Scale == ScalarScale || t.Scale == ColumnScale
}

// IsScalar checks whether this type is exactly Scalar.
func (t Type) IsScalar() bool {
	return t.Scale == ScalarScale
}

// IsColumn checks whether this type is exactly Column.
func (t Type) IsColumn() bool {
	return t.Scale == ColumnScale
}

// IsBool checks whether this type's magma is Boolean.
func (t Type) IsBool() bool {
	return t.Magma == Boolean
}

// AsColumn returns a copy of this type promoted to Column scale, modelling
// the rule that Column dominates Scalar when the two are paired (e.g. a
// scalar constant used alongside a column operand).
func (t Type) AsColumn() Type {
	if t.Scale == ScalarScale {
		return Type{ColumnScale, t.Magma}
	}

	return t
}

// Promote applies the arithmetic promotion rule: Boolean operands passed
// through +, -, neg or inv yield Integer, because {0,1} is not closed under
// these operations.
func (t Type) Promote() Type {
	return Type{t.Scale, Integer}
}

func (t Type) String() string {
	var scale string

	switch t.Scale {
	case ScalarScale:
		scale = "scalar"
	case ColumnScale:
		scale = "column"
	case ListScale:
		scale = "list"
	default:
		scale = "void"
	}

	return scale + "<" + t.Magma.String() + ">"
}

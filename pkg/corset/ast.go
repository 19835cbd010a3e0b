package corset

import "github.com/OmegaTymbJIep/corset/pkg/sexp"

// Circuit is the root of the surface syntax tree handed to the definitions
// pass: zero or more module declarations, plus any declarations (typically
// defconst, defun) made outside of any module.
type Circuit struct {
	Modules      []*ModuleDecl
	Declarations []Declaration
}

// ModuleDecl is a single "defmodule" block: a name, plus the declarations
// lexically contained within it.
type ModuleDecl struct {
	Name         string
	Declarations []Declaration
}

// Declaration is the tagged union of top-level forms a module (or the
// circuit root) may contain.
type Declaration interface {
	isDeclaration()
}

// DefColumns declares one or more columns.
type DefColumns struct {
	Columns []*ColumnDecl
}

func (*DefColumns) isDeclaration() {}

// ColumnComputed tags a column as produced by a computation rather than
// supplied directly in the trace, and carries enough information to build
// that computation once the column's siblings have all been declared.
type ColumnComputed interface {
	isColumnComputed()
}

// ComputedComposite marks a column whose value is Body, reduced in the
// column's own module scope; populated into ColumnDecl.Computed at parse time
// and lowered to a Node by the reducer once all declarations are known.
type ComputedComposite struct {
	Body sexp.SExp
}

func (*ComputedComposite) isColumnComputed() {}

// ComputedInterleaved marks a column produced by round-robin interleaving
// of the named source columns, resolved at declaration time.
type ComputedInterleaved struct {
	Sources []string
}

func (*ComputedInterleaved) isColumnComputed() {}

// ColumnDecl is one entry of a defcolumns form.
type ColumnDecl struct {
	Name     string
	Count    uint // 1 for a scalar column, >1 for an array column
	Boolean  bool
	Computed ColumnComputed // nil for an atomic (or defpermutation-declared phantom) column
}

// DefAlias declares one or more column/constant aliases.
type DefAlias struct {
	Pairs [][2]string // (from, to)
}

func (*DefAlias) isDeclaration() {}

// DefFunAlias declares one or more function aliases.  Named distinctly
// from DefAlias because the surface grammar keeps the two namespaces
// (values vs. functions) syntactically separate ("defunalias"), not
// because it undoes anything.
type DefFunAlias struct {
	Pairs [][2]string
}

func (*DefFunAlias) isDeclaration() {}

// ConstDecl is one entry of a defconst form.
type ConstDecl struct {
	Name  string
	Value *BigIntValue
}

// DefConst declares one or more named constants.
type DefConst struct {
	Constants []*ConstDecl
}

func (*DefConst) isDeclaration() {}

// DefFun declares a user function (defun) or pure function (defpurefun).
type DefFun struct {
	Name   string
	Params []string
	Body   sexp.SExp
	Pure   bool
}

func (*DefFun) isDeclaration() {}

// DefPermutation declares that Tos is to be filled with the
// lexicographically sorted rows of Froms.  Each entry of Tos is declared
// as a fresh Phantom column.
type DefPermutation struct {
	Handle string
	Tos    []string
	Froms  []string
}

func (*DefPermutation) isDeclaration() {}

// DefLookup ("defplookup") declares that every tuple of Children must
// appear among the tuples of Parents.
type DefLookup struct {
	Handle   string
	Parents  []sexp.SExp
	Children []sexp.SExp
}

func (*DefLookup) isDeclaration() {}

// DefConstraint ("defconstraint") declares a vanishing constraint.  Domain,
// if non-nil, restricts the constraint to the listed row indices (negative
// counting from the end); a nil Domain means every row.  Guard, if
// non-nil, is an expression which must be non-zero for the constraint to
// be active on a given row.
type DefConstraint struct {
	Handle string
	Domain []int
	Guard  sexp.SExp
	Body   sexp.SExp
}

func (*DefConstraint) isDeclaration() {}

// DefInRange ("definrange") declares a range constraint.
type DefInRange struct {
	Expr  sexp.SExp
	Bound uint64
}

func (*DefInRange) isDeclaration() {}

package corset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func module(name string, decls ...Declaration) *ModuleDecl {
	return &ModuleDecl{Name: name, Declarations: decls}
}

func compileOne(t *testing.T, m *ModuleDecl) *Program {
	t.Helper()

	prog, errs := Compile(&Circuit{Modules: []*ModuleDecl{m}}, false)
	assert.Empty(t, errs)
	assert.NotNil(t, prog)

	return prog
}

// S1: "(+ 1 0)" and "(+ (* 1 0) 0)" both constant-fold to Const(1), typed
// Scalar(Integer).
func TestScalarArithmeticFoldsToIntegerConst(t *testing.T) {
	body := lst(sym("+"), sym("1"), sym("0"))

	prog := compileOne(t, module("m",
		&DefConstraint{Handle: "c1", Body: body},
	))

	vanishes := prog.Constraints[0].(*Vanishes)
	c, ok := vanishes.Expr.Expr.(*Const)
	assert.True(t, ok, "expected a folded constant")
	assert.Equal(t, int64(1), c.Integer.Int().Int64())
	assert.Equal(t, ScalarScale, vanishes.Expr.Type().Scale)
	assert.Equal(t, Integer, vanishes.Expr.Type().Magma)

	nested := lst(sym("+"), lst(sym("*"), sym("1"), sym("0")), sym("0"))

	prog = compileOne(t, module("m",
		&DefConstraint{Handle: "c1", Body: nested},
	))

	vanishes = prog.Constraints[0].(*Vanishes)
	assert.Equal(t, Integer, vanishes.Expr.Type().Magma)
}

// S2: "(eq x y)" on two boolean-declared columns lowers to the typed
// Boolean product of a single difference with itself, and evaluates to 0
// when x=y=0 and to 1 when x=1,y=0.
func TestEqOnBooleanColumnsLowersToBoolMul(t *testing.T) {
	prog := compileOne(t, module("m",
		&DefColumns{Columns: []*ColumnDecl{
			{Name: "x", Count: 1, Boolean: true},
			{Name: "y", Count: 1, Boolean: true},
		}},
		&DefConstraint{Handle: "c1", Body: lst(sym("eq"), sym("x"), sym("y"))},
	))

	vanishes := prog.Constraints[0].(*Vanishes)
	f, ok := vanishes.Expr.Expr.(*Funcall)
	assert.True(t, ok, "expected a Funcall")
	assert.Equal(t, BoolMul, f.Builtin)
	assert.Equal(t, Boolean, vanishes.Expr.Type().Magma)
	assert.Len(t, f.Args, 2)

	diff, ok := f.Args[0].Expr.(*Funcall)
	assert.True(t, ok, "expected the operand to be a difference")
	assert.Equal(t, Sub, diff.Builtin)
}

// S3: "(nth a 2)" resolves to the real scalar column "a_2"; "(nth a 7)"
// fails with IndexOutOfRange.
func TestNthResolvesToScalarSiblingOrFailsOutOfRange(t *testing.T) {
	prog := compileOne(t, module("m",
		&DefColumns{Columns: []*ColumnDecl{
			{Name: "a", Count: 3},
		}},
		&DefConstraint{Handle: "c1", Body: lst(sym("nth"), sym("a"), sym("2"))},
	))

	vanishes := prog.Constraints[0].(*Vanishes)
	ref, ok := vanishes.Expr.Expr.(*ColumnRef)
	assert.True(t, ok, "expected a ColumnRef")
	assert.Equal(t, "a_2", ref.Handle.Name())

	_, errs := Compile(&Circuit{Modules: []*ModuleDecl{module("m",
		&DefColumns{Columns: []*ColumnDecl{
			{Name: "a", Count: 3},
		}},
		&DefConstraint{Handle: "c1", Body: lst(sym("nth"), sym("a"), sym("7"))},
	)}}, false)

	assert.NotEmpty(t, errs)

	found := false

	for _, err := range errs {
		var ce *CompileError
		if errors.As(err, &ce) && ce.Kind == IndexOutOfRange {
			found = true
		}
	}

	assert.True(t, found, "expected an IndexOutOfRange error, got %v", errs)
}

// Duplicate column declarations within the same module fail with
// DuplicateSymbol.
func TestDuplicateColumnFails(t *testing.T) {
	_, errs := Compile(&Circuit{Modules: []*ModuleDecl{module("m",
		&DefColumns{Columns: []*ColumnDecl{
			{Name: "a", Count: 1},
			{Name: "a", Count: 1},
		}},
	)}}, false)

	assert.NotEmpty(t, errs)
}

// An unknown symbol referenced in a constraint body fails with
// UnknownSymbol rather than panicking.
func TestUnknownSymbolFails(t *testing.T) {
	_, errs := Compile(&Circuit{Modules: []*ModuleDecl{module("m",
		&DefConstraint{Handle: "c1", Body: sym("nosuchcolumn")},
	)}}, false)

	assert.NotEmpty(t, errs)
}

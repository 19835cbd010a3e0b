package corset

import (
	"fmt"
	"math/big"

	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/sexp"
)

// reducer lowers the surface sexp.SExp tree into the typed Node tree,
// dispatching special forms, rewriting syntactic sugar (not/eq/begin/nth/
// len) to their primitive equivalents, folding constant subexpressions, and
// deriving the circuit's Constraint set.  Debug controls whether "debug"
// forms are reduced (true) or erased to Void (false), matching a release
// build's treatment of debug-only assertions.
type reducer struct {
	scopes *Scopes
	naming *NamingSource
	debug  bool
	errors []error
}

func newReducer(scopes *Scopes, debug bool) *reducer {
	return &reducer{scopes: scopes, naming: NewNamingSource(), debug: debug}
}

func (r *reducer) fail(err error) {
	r.errors = append(r.errors, err)
}

// Run backfills every pending Composite column's body and reduces every
// constraint-producing declaration in the circuit, returning the derived
// constraints.  Errors encountered along the way are recorded in r.errors
// rather than aborting, so that a single malformed declaration does not
// suppress diagnostics for the rest of the circuit.
func (r *reducer) Run(c *Circuit, pending []pendingComposite) []Constraint {
	r.backfillComposites(pending)

	var constraints []Constraint

	constraints = append(constraints, r.reduceDeclarations(r.scopes.Root(), c.Declarations)...)

	for _, m := range c.Modules {
		scope, ok := r.scopes.Child(r.scopes.Root(), m.Name)
		if !ok {
			r.fail(fmt.Errorf("module %q vanished between definitions and reduction", m.Name))
			continue
		}

		constraints = append(constraints, r.reduceDeclarations(scope, m.Declarations)...)
	}

	return constraints
}

func (r *reducer) backfillComposites(pending []pendingComposite) {
	for _, pc := range pending {
		body, err := r.reduceExpr(pc.scope, pc.body, false)
		if err != nil {
			r.fail(err)
			continue
		}

		r.scopes.EditSymbol(pc.scope, pc.name, func(old *Node) *Node {
			old.Expr.(*ColumnRef).Kind = &CompositeColumn{Expr: body}
			return old
		})

		if err := r.scopes.Comps.Add(&Composite{Target: pc.spec.Handle, Expr: body}); err != nil {
			r.fail(err)
		}
	}
}

// ============================================================================
// Constraint-producing declarations
// ============================================================================

func (r *reducer) reduceDeclarations(scope int, decls []Declaration) []Constraint {
	var out []Constraint

	for _, d := range decls {
		switch decl := d.(type) {
		case *DefConstraint:
			if c, err := r.reduceConstraint(scope, decl); err != nil {
				r.fail(err)
			} else {
				out = append(out, c)
			}
		case *DefLookup:
			if c, err := r.reduceLookup(scope, decl); err != nil {
				r.fail(err)
			} else {
				out = append(out, c)
			}
		case *DefInRange:
			if c, err := r.reduceInRange(scope, decl); err != nil {
				r.fail(err)
			} else {
				out = append(out, c)
			}
		case *DefPermutation:
			if c, err := r.reducePermutation(scope, decl); err != nil {
				r.fail(err)
			} else {
				out = append(out, c)
			}
		default:
			// DefColumns, DefAlias, DefFunAlias, DefConst and DefFun carry no
			// constraint of their own; they were fully handled by the
			// definitions pass.
		}
	}

	return out
}

func (r *reducer) reduceConstraint(scope int, decl *DefConstraint) (Constraint, error) {
	module := r.scopes.Name(scope)
	handle := NewHandle(module, decl.Handle)

	var domain *Domain
	if len(decl.Domain) > 0 {
		domain = &Domain{Rows: decl.Domain}
	}

	var guard *Node

	if decl.Guard != nil {
		g, err := r.reduceExpr(scope, decl.Guard, false)
		if err != nil {
			return nil, fmt.Errorf("constraint %q guard: %w", decl.Handle, err)
		}

		guard = g
	}

	expr, err := r.reduceExpr(scope, decl.Body, false)
	if err != nil {
		return nil, fmt.Errorf("constraint %q: %w", decl.Handle, err)
	}

	return &Vanishes{Handle: handle, Domain: domain, Guard: guard, Expr: expr}, nil
}

func (r *reducer) reduceLookup(scope int, decl *DefLookup) (Constraint, error) {
	module := r.scopes.Name(scope)
	handle := NewHandle(module, decl.Handle)

	if len(decl.Parents) != len(decl.Children) {
		return nil, NewScopedCompileError(ArityMismatch,
			fmt.Sprintf("defplookup %q requires |parents| = |children|", decl.Handle), r.scopes.nodes[scope].pretty)
	}

	parents, err := r.reduceAll(scope, decl.Parents)
	if err != nil {
		return nil, fmt.Errorf("lookup %q parents: %w", decl.Handle, err)
	}

	children, err := r.reduceAll(scope, decl.Children)
	if err != nil {
		return nil, fmt.Errorf("lookup %q children: %w", decl.Handle, err)
	}

	return &Plookup{Handle: handle, Parents: parents, Children: children}, nil
}

func (r *reducer) reduceInRange(scope int, decl *DefInRange) (Constraint, error) {
	module := r.scopes.Name(scope)
	handle := NewHandle(module, fmt.Sprintf("in-range-%d", r.naming.Next()))

	expr, err := r.reduceExpr(scope, decl.Expr, false)
	if err != nil {
		return nil, fmt.Errorf("definrange: %w", err)
	}

	return &InRange{Handle: handle, Expr: expr, Bound: decl.Bound}, nil
}

func (r *reducer) reducePermutation(scope int, decl *DefPermutation) (Constraint, error) {
	module := r.scopes.Name(scope)
	handle := NewHandle(module, decl.Handle)

	froms := make([]Handle, len(decl.Froms))
	for i, f := range decl.Froms {
		froms[i] = NewHandle(module, f)
	}

	tos := make([]Handle, len(decl.Tos))
	for i, t := range decl.Tos {
		tos[i] = NewHandle(module, t)
	}

	return &Permutation{Handle: handle, Froms: froms, Tos: tos}, nil
}

func (r *reducer) reduceAll(scope int, exprs []sexp.SExp) ([]*Node, error) {
	nodes := make([]*Node, len(exprs))

	for i, e := range exprs {
		n, err := r.reduceExpr(scope, e, false)
		if err != nil {
			return nil, err
		}

		nodes[i] = n
	}

	return nodes, nil
}

// ============================================================================
// Expression reduction
// ============================================================================

func (r *reducer) reduceExpr(scope int, s sexp.SExp, pure bool) (*Node, error) {
	if sym, ok := s.(*sexp.Symbol); ok {
		return r.reduceSymbol(scope, sym.Value, pure)
	}

	list, ok := s.(*sexp.List)
	if !ok {
		return nil, fmt.Errorf("unrecognised s-expression %T", s)
	}

	if list.Len() == 0 {
		return TheVoid, nil
	}

	head, ok := list.Head()
	if !ok {
		// A list not headed by a symbol is a literal sequence of values,
		// e.g. the domain-free body of a nested list constant.
		return r.reduceListLiteral(scope, list, pure)
	}

	binding, err := r.scopes.ResolveFunction(scope, head)
	if err != nil {
		return nil, err
	}

	switch b := binding.(type) {
	case *SpecialForm:
		return r.reduceSpecialForm(scope, b.Kind, list, pure)
	case *NativeFunction:
		return r.reduceNativeCall(scope, b.Op, list, pure)
	case *StructuralFunction:
		return r.reduceStructural(scope, b.Name, list, pure)
	case *UserDefined:
		return r.reduceUserCall(scope, b, list, pure)
	default:
		return nil, fmt.Errorf("unsupported function binding for %q", head)
	}
}

func (r *reducer) reduceListLiteral(scope int, list *sexp.List, pure bool) (*Node, error) {
	nodes := make([]*Node, list.Len())

	for i := 0; i < list.Len(); i++ {
		n, err := r.reduceExpr(scope, list.Get(i), pure)
		if err != nil {
			return nil, err
		}

		nodes[i] = n
	}

	return NewList(nodes), nil
}

func (r *reducer) reduceSymbol(scope int, name string, pure bool) (*Node, error) {
	if v, ok := parseDecimal(name); ok {
		// A negative literal is wrapped into its canonical field
		// representative (p+v) rather than rejected outright, so that
		// e.g. "-1" denotes the field's additive inverse of one.  The
		// Const's Integer keeps the literal as written (e.g. -1), which
		// is what a shift offset is read from.
		norm := v
		if v.Sign() < 0 {
			norm = new(big.Int).Add(v, field.Modulus())
		}

		f, ok := field.FromBigInt(norm)
		if !ok {
			return nil, NewScopedCompileError(ValueNotInField, name, r.scopes.nodes[scope].pretty)
		}

		return NewConst(NewBigIntValue(v), f), nil
	}

	return r.scopes.resolveLocal(scope, name, pure)
}

func parseDecimal(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}

	i := 0
	if s[0] == '-' || s[0] == '+' {
		i = 1
	}

	if i == len(s) {
		return nil, false
	}

	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, false
		}
	}

	v, ok := new(big.Int).SetString(s, 10)

	return v, ok
}

// ============================================================================
// Special forms (for/let/debug)
// ============================================================================

func (r *reducer) reduceSpecialForm(scope int, kind SpecialFormKind, list *sexp.List, pure bool) (*Node, error) {
	switch kind {
	case ForForm:
		return r.reduceFor(scope, list, pure)
	case LetForm:
		return r.reduceLet(scope, list, pure)
	case DebugForm:
		return r.reduceDebug(scope, list, pure)
	default:
		return nil, fmt.Errorf("unrecognised special form")
	}
}

// reduceFor unrolls "(for <var> (<start> <end>) <body>)" into a List of
// the body reduced once per integer in [start,end], with <var> bound to
// each successive value in a fresh derived scope.
func (r *reducer) reduceFor(scope int, list *sexp.List, pure bool) (*Node, error) {
	if list.Len() != 4 {
		return nil, NewScopedCompileError(ArityMismatch, "for requires (for var (start end) body)", r.scopes.nodes[scope].pretty)
	}

	varSym, ok := list.Get(1).(*sexp.Symbol)
	if !ok {
		return nil, NewScopedCompileError(TypeMismatch, "for: binder must be a symbol", r.scopes.nodes[scope].pretty)
	}

	rangeList, ok := list.Get(2).(*sexp.List)
	if !ok || rangeList.Len() != 2 {
		return nil, NewScopedCompileError(TypeMismatch, "for: range must be (start end)", r.scopes.nodes[scope].pretty)
	}

	startSym, sok := rangeList.Get(0).(*sexp.Symbol)
	endSym, eok := rangeList.Get(1).(*sexp.Symbol)

	if !sok || !eok {
		return nil, NewScopedCompileError(TypeMismatch, "for: range bounds must be literals", r.scopes.nodes[scope].pretty)
	}

	start, sok := parseDecimal(startSym.Value)
	end, eok := parseDecimal(endSym.Value)

	if !sok || !eok {
		return nil, NewScopedCompileError(TypeMismatch, "for: range bounds must be integer literals", r.scopes.nodes[scope].pretty)
	}

	body := list.Get(3)

	var results []*Node

	i := new(big.Int).Set(start)
	one := big.NewInt(1)

	for i.Cmp(end) <= 0 {
		iterScope := r.scopes.Derived(scope, ForScopeName(r.naming.Next()),
			fmt.Sprintf("for %s=%s", varSym.Value, i.String()), false)

		norm := i
		if i.Sign() < 0 {
			norm = new(big.Int).Add(i, field.Modulus())
		}

		f, ok := field.FromBigInt(norm)
		if !ok {
			return nil, NewScopedCompileError(ValueNotInField, i.String(), r.scopes.nodes[scope].pretty)
		}

		if err := r.scopes.InsertSymbol(iterScope, varSym.Value, NewConst(NewBigIntValue(new(big.Int).Set(i)), f)); err != nil {
			return nil, err
		}

		n, err := r.reduceExpr(iterScope, body, pure)
		if err != nil {
			return nil, err
		}

		results = append(results, n)

		i.Add(i, one)
	}

	return NewList(results), nil
}

// reduceLet reduces "(let ((name val) ...) body)" by binding each name to
// its reduced value in a fresh derived scope, then reducing body in that
// scope.  The bound values are reduced in the *enclosing* scope, matching
// ordinary lexical let semantics (no self- or forward-reference between
// bindings).
func (r *reducer) reduceLet(scope int, list *sexp.List, pure bool) (*Node, error) {
	if list.Len() != 3 {
		return nil, NewScopedCompileError(ArityMismatch, "let requires (let (bindings...) body)", r.scopes.nodes[scope].pretty)
	}

	bindings, ok := list.Get(1).(*sexp.List)
	if !ok {
		return nil, NewScopedCompileError(TypeMismatch, "let: bindings must be a list", r.scopes.nodes[scope].pretty)
	}

	letScope := r.scopes.Derived(scope, fmt.Sprintf("let-%d", r.naming.Next()), "<let>", false)

	for i := 0; i < bindings.Len(); i++ {
		pair, ok := bindings.Get(i).(*sexp.List)
		if !ok || pair.Len() != 2 {
			return nil, NewScopedCompileError(TypeMismatch, "let: binding must be (name value)", r.scopes.nodes[scope].pretty)
		}

		nameSym, ok := pair.Get(0).(*sexp.Symbol)
		if !ok {
			return nil, NewScopedCompileError(TypeMismatch, "let: binding name must be a symbol", r.scopes.nodes[scope].pretty)
		}

		val, err := r.reduceExpr(scope, pair.Get(1), pure)
		if err != nil {
			return nil, err
		}

		if err := r.scopes.InsertSymbol(letScope, nameSym.Value, val); err != nil {
			return nil, err
		}
	}

	return r.reduceExpr(letScope, list.Get(2), pure)
}

// reduceDebug reduces "(debug args...)" only when debug mode is enabled;
// otherwise it erases to Void, matching a release build's elision of
// debug-only assertions.
func (r *reducer) reduceDebug(scope int, list *sexp.List, pure bool) (*Node, error) {
	if !r.debug {
		return TheVoid, nil
	}

	args := make([]*Node, 0, list.Len()-1)

	for i := 1; i < list.Len(); i++ {
		n, err := r.reduceExpr(scope, list.Get(i), pure)
		if err != nil {
			return nil, err
		}

		args = append(args, n)
	}

	return NewList(args), nil
}

// ============================================================================
// Native (primitive) calls
// ============================================================================

func (r *reducer) reduceNativeCall(scope int, op Builtin, list *sexp.List, pure bool) (*Node, error) {
	args, err := r.reduceArgs(scope, list, pure)
	if err != nil {
		return nil, err
	}

	if !op.HasArity(uint(len(args))) {
		return nil, NewScopedCompileError(ArityMismatch,
			fmt.Sprintf("%s: wrong number of arguments (%d)", op.Name(), len(args)), r.scopes.nodes[scope].pretty)
	}

	if op == Shift || op == Pow {
		if _, ok := args[1].Expr.(*Const); !ok {
			return nil, NewScopedCompileError(TypeMismatch,
				fmt.Sprintf("%s: second argument must be a compile-time constant", op.Name()), r.scopes.nodes[scope].pretty)
		}
	}

	if err := checkNativeArgTypes(op, args, r.scopes.nodes[scope].pretty); err != nil {
		return nil, err
	}

	if folded, ok := foldConst(op, args); ok {
		return folded, nil
	}

	return NewFuncall(op, args), nil
}

// checkNativeArgTypes enforces the per-builtin argument type predicates of
// §4.3.1: +, -, *, neg and inv require value-typed (Scalar or Column)
// operands; shift requires a column first argument and a scalar offset; ^
// requires a value-typed base and a scalar exponent; if-zero/if-not-zero
// reject a List-typed condition.  Arity has already been checked by the
// caller.
func checkNativeArgTypes(op Builtin, args []*Node, scopePath string) error {
	switch op {
	case Add, Sub, Mul, Neg, Inv:
		for _, a := range args {
			if !a.Type().IsValue() {
				return NewScopedCompileError(TypeMismatch,
					fmt.Sprintf("%s: arguments must be values, found %s", op.Name(), a.Type()), scopePath)
			}
		}
	case Shift:
		if !args[0].Type().IsColumn() {
			return NewScopedCompileError(TypeMismatch,
				fmt.Sprintf("%s: first argument must be a column, found %s", op.Name(), args[0].Type()), scopePath)
		}

		if !args[1].Type().IsScalar() {
			return NewScopedCompileError(TypeMismatch,
				fmt.Sprintf("%s: second argument must be a scalar, found %s", op.Name(), args[1].Type()), scopePath)
		}
	case Pow:
		if !args[0].Type().IsValue() {
			return NewScopedCompileError(TypeMismatch,
				fmt.Sprintf("%s: base must be a value, found %s", op.Name(), args[0].Type()), scopePath)
		}

		if !args[1].Type().IsScalar() {
			return NewScopedCompileError(TypeMismatch,
				fmt.Sprintf("%s: exponent must be a scalar, found %s", op.Name(), args[1].Type()), scopePath)
		}
	case IfZero, IfNotZero:
		if args[0].Type().Scale == ListScale {
			return NewScopedCompileError(TypeMismatch,
				fmt.Sprintf("%s: condition must not be a list", op.Name()), scopePath)
		}
	}

	return nil
}

func (r *reducer) reduceArgs(scope int, list *sexp.List, pure bool) ([]*Node, error) {
	args := make([]*Node, list.Len()-1)

	for i := 1; i < list.Len(); i++ {
		n, err := r.reduceExpr(scope, list.Get(i), pure)
		if err != nil {
			return nil, err
		}

		args[i-1] = n
	}

	return args, nil
}

// foldConst evaluates an arithmetic builtin whose arguments are all
// already-reduced constants, mirroring the source's pure_eval constant
// folding.  Only Add/Sub/Mul/Neg fold; Inv is deliberately excluded since
// folding a field inverse at compile time would hide an eventual
// division-by-zero from the evaluator's own (runtime) handling of it.
func foldConst(op Builtin, args []*Node) (*Node, bool) {
	values := make([]*big.Int, len(args))

	for i, a := range args {
		c, ok := a.Expr.(*Const)
		if !ok {
			return nil, false
		}

		values[i] = c.Integer.Int()
	}

	var result *big.Int

	switch op {
	case Add:
		result = new(big.Int).Set(values[0])
		for _, v := range values[1:] {
			result.Add(result, v)
		}
	case Sub:
		result = new(big.Int).Set(values[0])
		for _, v := range values[1:] {
			result.Sub(result, v)
		}
	case Mul:
		result = new(big.Int).Set(values[0])
		for _, v := range values[1:] {
			result.Mul(result, v)
		}
	case Neg:
		result = new(big.Int).Neg(values[0])
	default:
		return nil, false
	}

	if result.Sign() < 0 {
		result = new(big.Int).Add(result, field.Modulus())
	}

	f, ok := field.FromBigInt(result)
	if !ok {
		// A folded result which still exceeds the field (e.g. overflow
		// on a pathologically large literal) is left unfolded; the
		// evaluator reduces it modulo p at evaluation time instead.
		return nil, false
	}

	n := NewConst(NewBigIntValue(result), f)
	// A folded constant keeps the type the unfolded Funcall would have
	// (§3.2 promotion), not the 0/1 literal classification.
	n.typ = typePtr(op.Typing(args))

	return n, true
}

// ============================================================================
// Structural pseudo-builtins (not/eq/begin/nth/len)
// ============================================================================

func (r *reducer) reduceStructural(scope int, name string, list *sexp.List, pure bool) (*Node, error) {
	switch name {
	case "not":
		return r.reduceNot(scope, list, pure)
	case "eq":
		return r.reduceEq(scope, list, pure)
	case "begin":
		return r.reduceBegin(scope, list, pure)
	case "nth":
		return r.reduceNth(scope, list, pure)
	case "len":
		return r.reduceLen(scope, list, pure)
	default:
		return nil, fmt.Errorf("unrecognised structural function %q", name)
	}
}

// reduceNot rewrites "(not x)" to "1 - x".
func (r *reducer) reduceNot(scope int, list *sexp.List, pure bool) (*Node, error) {
	if list.Len() != 2 {
		return nil, NewScopedCompileError(ArityMismatch, "not takes exactly one argument", r.scopes.nodes[scope].pretty)
	}

	x, err := r.reduceExpr(scope, list.Get(1), pure)
	if err != nil {
		return nil, err
	}

	if !x.Type().IsBool() {
		return nil, NewScopedCompileError(TypeMismatch,
			fmt.Sprintf("not: argument must be boolean, found %s", x.Type()), r.scopes.nodes[scope].pretty)
	}

	one, _ := field.FromBigInt(big.NewInt(1))
	args := []*Node{NewConst(NewBigIntValue(big.NewInt(1)), one), x}

	if folded, ok := foldConst(Sub, args); ok {
		return folded, nil
	}

	return NewFuncall(Sub, args), nil
}

// reduceEq rewrites "(eq x y)" to the typed Boolean "(x-y)*(x-y)" when both
// operands are Boolean, else to the plain difference "x-y" (used where eq
// appears directly as a vanishing constraint's body: the constraint holds
// exactly when the difference is zero).
func (r *reducer) reduceEq(scope int, list *sexp.List, pure bool) (*Node, error) {
	if list.Len() != 3 {
		return nil, NewScopedCompileError(ArityMismatch, "eq takes exactly two arguments", r.scopes.nodes[scope].pretty)
	}

	x, err := r.reduceExpr(scope, list.Get(1), pure)
	if err != nil {
		return nil, err
	}

	y, err := r.reduceExpr(scope, list.Get(2), pure)
	if err != nil {
		return nil, err
	}

	if !x.Type().IsValue() || !y.Type().IsValue() {
		return nil, NewScopedCompileError(TypeMismatch,
			fmt.Sprintf("eq: arguments must be values, found %s and %s", x.Type(), y.Type()), r.scopes.nodes[scope].pretty)
	}

	diff := NewFuncall(Sub, []*Node{x, y})
	if folded, ok := foldConst(Sub, []*Node{x, y}); ok {
		diff = folded
	}

	if x.Type().IsBool() && y.Type().IsBool() {
		return NewFuncall(BoolMul, []*Node{diff, diff}), nil
	}

	return diff, nil
}

// reduceBegin flattens nested Lists one level into a single List.
func (r *reducer) reduceBegin(scope int, list *sexp.List, pure bool) (*Node, error) {
	var nodes []*Node

	for i := 1; i < list.Len(); i++ {
		n, err := r.reduceExpr(scope, list.Get(i), pure)
		if err != nil {
			return nil, err
		}

		if inner, ok := n.Expr.(*ListExpr); ok {
			nodes = append(nodes, inner.Nodes...)
		} else {
			nodes = append(nodes, n)
		}
	}

	return NewList(nodes), nil
}

// reduceNth rewrites "(nth arr k)", k a compile-time constant, to a
// reference to the real scalar column "arr_k" declared alongside the array
// column by the definitions pass.
func (r *reducer) reduceNth(scope int, list *sexp.List, pure bool) (*Node, error) {
	if list.Len() != 3 {
		return nil, NewScopedCompileError(ArityMismatch, "nth takes exactly two arguments", r.scopes.nodes[scope].pretty)
	}

	arr, err := r.reduceExpr(scope, list.Get(1), pure)
	if err != nil {
		return nil, err
	}

	ref, ok := arr.Expr.(*ArrayColumnRef)
	if !ok {
		return nil, NewScopedCompileError(TypeMismatch, "nth: first argument must be an array column", r.scopes.nodes[scope].pretty)
	}

	idxNode, err := r.reduceExpr(scope, list.Get(2), pure)
	if err != nil {
		return nil, err
	}

	idxConst, ok := idxNode.Expr.(*Const)
	if !ok {
		return nil, NewScopedCompileError(TypeMismatch, "nth: index must be a compile-time constant", r.scopes.nodes[scope].pretty)
	}

	idx := idxConst.Integer.Int()
	if !idx.IsUint64() || idx.Uint64() >= uint64(ref.Count) {
		return nil, NewScopedCompileError(IndexOutOfRange,
			fmt.Sprintf("nth: index %s out of range [0,%d)", idx.String(), ref.Count), r.scopes.nodes[scope].pretty)
	}

	elemName := fmt.Sprintf("%s_%d", ref.Handle.Name(), idx.Uint64())

	return r.scopes.ResolveSymbol(scope, elemName)
}

// reduceLen rewrites "(len arr)" to the array column's declared element
// count, as a Const.  The source implementation leaves len's semantics
// largely unspecified beyond type-checking its argument as an array
// column; this is the natural reading adopted here.
func (r *reducer) reduceLen(scope int, list *sexp.List, pure bool) (*Node, error) {
	if list.Len() != 2 {
		return nil, NewScopedCompileError(ArityMismatch, "len takes exactly one argument", r.scopes.nodes[scope].pretty)
	}

	arr, err := r.reduceExpr(scope, list.Get(1), pure)
	if err != nil {
		return nil, err
	}

	ref, ok := arr.Expr.(*ArrayColumnRef)
	if !ok {
		return nil, NewScopedCompileError(TypeMismatch, "len: argument must be an array column", r.scopes.nodes[scope].pretty)
	}

	f, _ := field.FromBigInt(new(big.Int).SetUint64(uint64(ref.Count)))

	return NewConst(NewBigIntValue(new(big.Int).SetUint64(uint64(ref.Count))), f), nil
}

// ============================================================================
// User-defined function calls
// ============================================================================

func (r *reducer) reduceUserCall(scope int, fn *UserDefined, list *sexp.List, pure bool) (*Node, error) {
	args, err := r.reduceArgs(scope, list, pure)
	if err != nil {
		return nil, err
	}

	if len(args) != len(fn.Params) {
		return nil, NewScopedCompileError(ArityMismatch,
			fmt.Sprintf("%s: expects %d arguments, got %d", fn.Handle.Name(), len(fn.Params), len(args)),
			r.scopes.nodes[scope].pretty)
	}

	// A pure function's body is reduced in a closed scope: only constants
	// may be inherited from the calling context, matching the "impure use
	// in pure context" rule of §4.1.
	callScope := r.scopes.Derived(scope, FunScopeName(fn.Handle.String(), r.naming.Next()),
		fmt.Sprintf("%s()", fn.Handle.Name()), fn.Pure)

	for i, param := range fn.Params {
		if err := r.scopes.InsertSymbol(callScope, param, args[i]); err != nil {
			return nil, err
		}
	}

	// Purity starts false at each new call, same as the root: a lookup
	// that stays local to callScope (e.g. one of the formals just bound
	// above) must resolve without tripping the closed-scope gate.
	// resolveLocal re-derives escalation itself once a lookup ascends
	// past callScope's own closed boundary into an ancestor.
	return r.reduceExpr(callScope, fn.Body, false)
}

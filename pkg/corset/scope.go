package corset

import (
	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/sexp"
)

// SpecialFormKind identifies one of the three forms which receive their
// arguments unevaluated, because they each need to interpret at least one
// argument specially (a binder, a range, or debug-mode gating) rather than
// simply reducing it.
type SpecialFormKind uint8

const (
	// ForForm unrolls its body once per value in a literal range.
	ForForm SpecialFormKind = iota
	// LetForm binds one or more (symbol, value) pairs in a fresh scope.
	LetForm
	// DebugForm reduces its arguments only when the reducer is running in
	// debug mode.
	DebugForm
)

// FunctionBinding is whatever a function name in a scope resolves to: a
// special form, a primitive builtin, a pseudo-builtin handled structurally
// by the reducer (nth, len), or a user-defined function.
type FunctionBinding interface {
	isFunctionBinding()
}

// SpecialForm binds a name to one of for/let/debug.
type SpecialForm struct{ Kind SpecialFormKind }

func (*SpecialForm) isFunctionBinding() {}

// NativeFunction binds a name to a primitive which lowers directly to a
// Funcall node.
type NativeFunction struct{ Op Builtin }

func (*NativeFunction) isFunctionBinding() {}

// StructuralFunction binds a name to a pseudo-builtin which is resolved
// entirely at reduction time and never itself appears in a Funcall (nth,
// len; also not/eq/begin, which rewrite to other expressions).
type StructuralFunction struct{ Name string }

func (*StructuralFunction) isFunctionBinding() {}

// UserDefined binds a name to a defun/defpurefun body, reduced afresh
// (with formals bound to the call's actual arguments) at every call site.
type UserDefined struct {
	Handle Handle
	Params []string
	Body   sexp.SExp
	Pure   bool
}

func (*UserDefined) isFunctionBinding() {}

// ============================================================================
// Symbol table entries
// ============================================================================

// symEntry is either an alias redirecting to another local name, or a
// final binding of a name to a reduced Node.
type symEntry struct {
	isAlias bool
	alias   string
	node    *Node
	used    bool
}

// funEntry mirrors symEntry for the function namespace.
type funEntry struct {
	isAlias bool
	alias   string
	binding FunctionBinding
}

// scopeNode is one node of the scope arena.  Per Design Notes §9, scopes
// reference their parent by index into Scopes.nodes rather than by pointer,
// so the tree needs no back-link reference counting.
type scopeNode struct {
	name            string
	pretty          string
	closed          bool
	parent          int // -1 for the root
	children        map[string]int
	constraintNames map[string]bool
	functions       map[string]*funEntry
	symbols         map[string]*symEntry
}

func newScopeNode(name, pretty string, parent int, closed bool) *scopeNode {
	return &scopeNode{
		name:            name,
		pretty:          pretty,
		closed:          closed,
		parent:          parent,
		children:        make(map[string]int),
		constraintNames: make(map[string]bool),
		functions:       make(map[string]*funEntry),
		symbols:         make(map[string]*symEntry),
	}
}

// Scopes is the arena-backed tree of lexical scopes described in §4.1.
// Index 0 is always the root.  A single ComputationTable is shared by every
// scope, since composite columns declared anywhere may be referenced from
// anywhere else in the same compilation.
type Scopes struct {
	nodes []*scopeNode
	Comps *ComputationTable
}

// NewRoot constructs a fresh root scope, pre-populated with the built-in
// special forms and primitive/structural functions.
func NewRoot() *Scopes {
	s := &Scopes{
		nodes: []*scopeNode{newScopeNode("", "<root>", -1, true)},
		Comps: NewComputationTable(),
	}
	s.installBuiltins()

	return s
}

func (s *Scopes) installBuiltins() {
	forms := map[string]SpecialFormKind{"for": ForForm, "let": LetForm, "debug": DebugForm}
	for name, kind := range forms {
		s.nodes[0].functions[name] = &funEntry{binding: &SpecialForm{kind}}
	}

	natives := map[string]Builtin{
		"+": Add, "-": Sub, "*": Mul, "neg": Neg, "inv": Inv, "^": Pow,
		"shift": Shift, "if-zero": IfZero, "if-not-zero": IfNotZero,
	}
	for name, op := range natives {
		s.nodes[0].functions[name] = &funEntry{binding: &NativeFunction{op}}
	}

	structural := []string{"nth", "len", "not", "eq", "begin"}
	for _, name := range structural {
		s.nodes[0].functions[name] = &funEntry{binding: &StructuralFunction{name}}
	}
}

// Root returns the id of the root scope.
func (s *Scopes) Root() int { return 0 }

// Name returns the (local) name of a scope.
func (s *Scopes) Name(id int) string { return s.nodes[id].name }

// Path returns the local name of the given scope, e.g. "m1" for a
// top-level module, or "" for the root itself.  It does not join the names
// of enclosing scopes, and a derived scope (for-loop unrolling, function
// call) yields its own generated name.
func (s *Scopes) Path(id int) string {
	if id == s.Root() {
		return ""
	}

	return s.nodes[id].name
}

// Derived returns the existing child of parent with the given name if one
// exists, else inserts and returns a new one.  New scopes always share the
// parent's computation table.
func (s *Scopes) Derived(parent int, name, pretty string, closed bool) int {
	if id, ok := s.nodes[parent].children[name]; ok {
		return id
	}

	id := len(s.nodes)
	s.nodes = append(s.nodes, newScopeNode(name, pretty, parent, closed))
	s.nodes[parent].children[name] = id

	return id
}

// Child looks up an existing child scope by name, e.g. to descend into an
// already-declared module when resolving a dotted path.
func (s *Scopes) Child(parent int, name string) (int, bool) {
	id, ok := s.nodes[parent].children[name]
	return id, ok
}

// InsertSymbol binds name to node in the given scope.  Fails with
// DuplicateSymbol if name is already locally bound.
func (s *Scopes) InsertSymbol(scope int, name string, node *Node) error {
	sc := s.nodes[scope]
	if _, ok := sc.symbols[name]; ok {
		return NewScopedCompileError(DuplicateSymbol, name, s.nodes[scope].pretty)
	}

	sc.symbols[name] = &symEntry{node: node}

	return nil
}

// InsertAlias binds `from` as an alias for the existing local symbol `to`.
// Fails if `from` is already bound locally.
func (s *Scopes) InsertAlias(scope int, from, to string) error {
	sc := s.nodes[scope]
	if _, ok := sc.symbols[from]; ok {
		return NewScopedCompileError(DuplicateSymbol, from, sc.pretty)
	}

	sc.symbols[from] = &symEntry{isAlias: true, alias: to}

	return nil
}

// InsertFunAlias binds `from` as an alias for the existing local function
// `to`. Fails if `from` is already bound locally.
func (s *Scopes) InsertFunAlias(scope int, from, to string) error {
	sc := s.nodes[scope]
	if _, ok := sc.functions[from]; ok {
		return NewScopedCompileError(DuplicateFunction, from, sc.pretty)
	}

	sc.functions[from] = &funEntry{isAlias: true, alias: to}

	return nil
}

// InsertFunction binds name to f in the given scope. Fails on duplicate.
func (s *Scopes) InsertFunction(scope int, name string, f FunctionBinding) error {
	sc := s.nodes[scope]
	if _, ok := sc.functions[name]; ok {
		return NewScopedCompileError(DuplicateFunction, name, sc.pretty)
	}

	sc.functions[name] = &funEntry{binding: f}

	return nil
}

// InsertConstant declares a named constant, classifying its type as
// Scalar(Boolean) when the value is 0 or 1, else Scalar(Integer).  Fails if
// the value does not fit within the field, or the name is already bound.
func (s *Scopes) InsertConstant(scope int, name string, v *BigIntValue) error {
	f, ok := field.FromBigInt(v.Int())
	if !ok {
		return NewScopedCompileError(ValueNotInField, name, s.nodes[scope].pretty)
	}

	return s.InsertSymbol(scope, name, NewConst(v, f))
}

// ReserveConstraintName records that name has been used as a constraint
// name in scope, failing with DuplicateConstraint if already reserved.
func (s *Scopes) ReserveConstraintName(scope int, name string) error {
	sc := s.nodes[scope]
	if sc.constraintNames[name] {
		return NewScopedCompileError(DuplicateConstraint, name, sc.pretty)
	}

	sc.constraintNames[name] = true

	return nil
}

// EditSymbol applies f to the Node currently bound to name in scope,
// in-place. Used only to backfill a Composite column's Kind once its
// defining expression has been reduced, after the column itself was
// already declared. Panics if name is not a locally-final symbol, since
// this operation should never be attempted against an unresolved alias.
func (s *Scopes) EditSymbol(scope int, name string, f func(*Node) *Node) {
	entry, ok := s.nodes[scope].symbols[name]
	if !ok || entry.isAlias {
		panic("edit_symbol: not a final local symbol: " + name)
	}

	entry.node = f(entry.node)
}

// ResolveSymbol resolves name against scope, following aliases and local
// lexical ascent (or, if name contains a ".", restarting at the root and
// descending the module path), applying the purity rule of §4.1 when
// crossing a closed scope boundary.
func (s *Scopes) ResolveSymbol(scope int, name string) (*Node, error) {
	if dot := indexByte(name, '.'); dot >= 0 {
		return s.resolveQualified(name[:dot], name[dot+1:])
	}

	return s.resolveLocal(scope, name, false)
}

// resolveQualified restarts resolution at the root and descends the named
// module path, then performs one final (impure, since cross-module access
// is always to a finished definition) local lookup in that module's scope.
func (s *Scopes) resolveQualified(module, name string) (*Node, error) {
	id, ok := s.Child(s.Root(), module)
	if !ok {
		return nil, NewCompileError(UnknownModule, module)
	}

	return s.resolveLocal(id, name, false)
}

func (s *Scopes) resolveLocal(scope int, name string, pure bool) (*Node, error) {
	sc := s.nodes[scope]

	if entry, ok := sc.symbols[name]; ok {
		node, err := s.followSymbolAlias(scope, entry, make(map[string]bool))
		if err != nil {
			return nil, err
		}

		if pure {
			if _, isConst := node.Expr.(*Const); !isConst {
				return nil, NewScopedCompileError(ImpureInPureContext, name, sc.pretty)
			}
		}

		return node, nil
	}

	if sc.parent < 0 {
		return nil, NewScopedCompileError(UnknownSymbol, name, sc.pretty)
	}
	// Crossing a closed boundary switches the remainder of the search into
	// pure mode: only constants may be inherited into a pure function body.
	return s.resolveLocal(sc.parent, name, pure || sc.closed)
}

// followSymbolAlias chases a chain of local aliases to its Final binding.
// visited is keyed by name (not scope), since an alias chain never leaves
// the scope it started in; this lets legitimate multi-hop chains resolve
// while still catching a name that refers back to itself.
func (s *Scopes) followSymbolAlias(scope int, entry *symEntry, visited map[string]bool) (*Node, error) {
	if !entry.isAlias {
		entry.used = true
		return entry.node, nil
	}

	if visited[entry.alias] {
		return nil, NewScopedCompileError(CircularDefinition, entry.alias, s.nodes[scope].pretty)
	}

	visited[entry.alias] = true

	next, ok := s.nodes[scope].symbols[entry.alias]
	if !ok {
		return nil, NewScopedCompileError(UnknownSymbol, entry.alias, s.nodes[scope].pretty)
	}

	return s.followSymbolAlias(scope, next, visited)
}

// ResolveFunction resolves a function name against scope, following
// function aliases and local lexical ascent.
func (s *Scopes) ResolveFunction(scope int, name string) (FunctionBinding, error) {
	sc := s.nodes[scope]

	if entry, ok := sc.functions[name]; ok {
		return s.followFunctionAlias(scope, entry, make(map[string]bool))
	}

	if sc.parent < 0 {
		return nil, NewScopedCompileError(UnknownFunction, name, sc.pretty)
	}

	return s.ResolveFunction(sc.parent, name)
}

func (s *Scopes) followFunctionAlias(scope int, entry *funEntry, visited map[string]bool) (FunctionBinding, error) {
	if !entry.isAlias {
		return entry.binding, nil
	}

	if visited[entry.alias] {
		return nil, NewScopedCompileError(CircularDefinition, entry.alias, s.nodes[scope].pretty)
	}

	visited[entry.alias] = true

	next, ok := s.nodes[scope].functions[entry.alias]
	if !ok {
		return nil, NewScopedCompileError(UnknownFunction, entry.alias, s.nodes[scope].pretty)
	}

	return s.followFunctionAlias(scope, next, visited)
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}

	return -1
}

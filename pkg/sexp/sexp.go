// Package sexp defines the tagged tree produced by parsing a Corset source
// file.  The concrete grammar and tokenizer are outside this module's scope
// (they live upstream, in the PEG-based surface parser); this package only
// fixes the shape of the tree that parser hands to the definitions pass and
// reducer, and keeps it immutable thereafter.
package sexp

import "strings"

// SExp is either a List of zero or more SExp, or a terminating Symbol.
type SExp interface {
	// IsList checks whether this S-Expression is a list.
	IsList() bool
	// IsSymbol checks whether this S-Expression is a symbol.
	IsSymbol() bool
	// Span returns the source span from which this node was parsed.
	Span() Span
	// String renders this node for debugging / error messages.
	String() string
}

// ============================================================================
// List
// ============================================================================

// List represents a sequence of zero or more S-Expressions, e.g. a function
// call, a special form, or a top-level declaration.
type List struct {
	Elements []SExp
	span     Span
}

// NewList constructs a new list spanning the given source range.
func NewList(elements []SExp, span Span) *List {
	return &List{elements, span}
}

// IsList always returns true for a List.
func (*List) IsList() bool { return true }

// IsSymbol always returns false for a List.
func (*List) IsSymbol() bool { return false }

// Span returns the source span of this list.
func (l *List) Span() Span { return l.span }

// Len returns the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

// Get returns the ith element of this list.
func (l *List) Get(i int) SExp { return l.Elements[i] }

// MatchSymbols checks whether this list begins with at least n elements, the
// first len(symbols) of which are symbols matching the given strings in
// order.
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}

	for i, want := range symbols {
		sym, ok := l.Elements[i].(*Symbol)
		if !ok || sym.Value != want {
			return false
		}
	}

	return true
}

// Head returns the first element of this list as a symbol name, or the
// empty string if the list is empty or does not begin with a symbol.
func (l *List) Head() (string, bool) {
	if len(l.Elements) == 0 {
		return "", false
	}

	sym, ok := l.Elements[0].(*Symbol)
	if !ok {
		return "", false
	}

	return sym.Value, true
}

// String renders this list in lisp notation.
func (l *List) String() string {
	var b strings.Builder

	b.WriteByte('(')

	for i, e := range l.Elements {
		if i != 0 {
			b.WriteByte(' ')
		}

		b.WriteString(e.String())
	}

	b.WriteByte(')')

	return b.String()
}

// ============================================================================
// Symbol
// ============================================================================

// Symbol is a terminating leaf of the tree: an identifier, keyword, or
// literal numeral, exactly as written in the source text.
type Symbol struct {
	Value string
	span  Span
}

// NewSymbol constructs a new symbol spanning the given source range.
func NewSymbol(value string, span Span) *Symbol {
	return &Symbol{value, span}
}

// IsList always returns false for a Symbol.
func (*Symbol) IsList() bool { return false }

// IsSymbol always returns true for a Symbol.
func (*Symbol) IsSymbol() bool { return true }

// Span returns the source span of this symbol.
func (s *Symbol) Span() Span { return s.span }

// String returns the literal text of this symbol.
func (s *Symbol) String() string { return s.Value }

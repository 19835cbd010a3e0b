package corset

import "fmt"

// ErrorKind classifies a compile-time failure, per §7 of the error handling
// design.  Kept distinct from the error message so a caller can react
// programmatically (e.g. a test harness asserting on the exact failure
// mode) without parsing text.
type ErrorKind uint8

const (
	// DuplicateSymbol covers duplicate columns, constants and aliases.
	DuplicateSymbol ErrorKind = iota
	// DuplicateConstraint covers a constraint name reused within a scope.
	DuplicateConstraint
	// DuplicateFunction covers a function name reused within a scope.
	DuplicateFunction
	// UnknownSymbol covers a reference to an undeclared column, constant or
	// alias.
	UnknownSymbol
	// UnknownModule covers a qualified reference into a module which was
	// never declared.
	UnknownModule
	// UnknownFunction covers a call to an undeclared function.
	UnknownFunction
	// CircularDefinition covers an alias chain, or function alias chain,
	// which refers back to itself.
	CircularDefinition
	// ArityMismatch covers a builtin or user function applied to the
	// wrong number of arguments.
	ArityMismatch
	// TypeMismatch covers an argument whose type does not satisfy a
	// builtin's or special form's requirement.
	TypeMismatch
	// IndexOutOfRange covers "nth" applied with an index outside an array
	// column's declared range.
	IndexOutOfRange
	// ImpureInPureContext covers resolving a non-constant symbol across a
	// closed scope boundary.
	ImpureInPureContext
	// ValueNotInField covers an integer literal which does not fit the
	// prime field.
	ValueNotInField
	// ComputationMissing covers a phantom or composite column with no
	// producing computation once evaluation is attempted.
	ComputationMissing
	// IncoherentLengths covers interleaving or sorting columns whose
	// lengths disagree.
	IncoherentLengths
)

func (k ErrorKind) String() string {
	switch k {
	case DuplicateSymbol:
		return "duplicate symbol"
	case DuplicateConstraint:
		return "duplicate constraint"
	case DuplicateFunction:
		return "duplicate function"
	case UnknownSymbol:
		return "unknown symbol"
	case UnknownModule:
		return "unknown module"
	case UnknownFunction:
		return "unknown function"
	case CircularDefinition:
		return "circular definition"
	case ArityMismatch:
		return "arity mismatch"
	case TypeMismatch:
		return "type mismatch"
	case IndexOutOfRange:
		return "index out of range"
	case ImpureInPureContext:
		return "impure use in pure context"
	case ValueNotInField:
		return "value not in field"
	case ComputationMissing:
		return "no computation"
	case IncoherentLengths:
		return "incoherent lengths"
	default:
		return "error"
	}
}

// CompileError is a tagged compile-time error, optionally naming the scope
// in which it arose (e.g. for UnknownSymbol, the current module/function
// context, as required by §7).
type CompileError struct {
	Kind    ErrorKind
	Message string
	Scope   string
}

// NewCompileError constructs a compile error with no scope context.
func NewCompileError(kind ErrorKind, message string) *CompileError {
	return &CompileError{kind, message, ""}
}

// NewScopedCompileError constructs a compile error annotated with the
// scope in which it arose.
func NewScopedCompileError(kind ErrorKind, message, scope string) *CompileError {
	return &CompileError{kind, message, scope}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	return fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.Scope)
}

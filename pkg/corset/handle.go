package corset

import "strings"

// Handle identifies a named symbol by its module-qualified name.  Two
// handles are equal iff their (module, name) pair is equal; the id is a
// late-bound optimisation assigned once the column set has been finalised
// (see assignColumnIDs in compiler.go), allowing subsequent passes to index columns by
// a dense integer rather than by string.
type Handle struct {
	module string
	name   string
	id     uint
	hasID  bool
}

// NewHandle constructs a fresh, unassigned handle for a symbol in the given
// module.
func NewHandle(module, name string) Handle {
	return Handle{module: module, name: name}
}

// Module returns the module qualifier of this handle.
func (h Handle) Module() string { return h.module }

// Name returns the (unqualified) name of this handle.
func (h Handle) Name() string { return h.name }

// Equals checks whether two handles identify the same symbol.  The id, if
// any, does not participate in equality.
func (h Handle) Equals(other Handle) bool {
	return h.module == other.module && h.name == other.name
}

// HasID checks whether this handle has been assigned a dense id yet.
func (h Handle) HasID() bool { return h.hasID }

// ID returns the dense id assigned to this handle.  Panics if unassigned.
func (h Handle) ID() uint {
	if !h.hasID {
		panic("handle has no assigned id")
	}

	return h.id
}

// WithID returns a copy of this handle carrying the given dense id.
func (h Handle) WithID(id uint) Handle {
	h.id = id
	h.hasID = true

	return h
}

// QualifiedName renders "module.name".
func (h Handle) QualifiedName() string {
	return h.module + "." + h.name
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return h.QualifiedName()
}

// operatorWords substitutes operator glyphs embedded in handle names (e.g.
// from array-index or interleaving desugaring) with identifier-safe words,
// so that mangled handles are legal identifiers for every downstream
// emitter.
var operatorWords = map[rune]string{
	'-': "sub",
	'+': "add",
	'*': "mul",
	'/': "div",
}

// Mangle computes a deterministic, identifier-safe rendering of this
// handle, used when emitting artefacts for back-ends that cannot cope with
// Corset's native identifier syntax.  Non-identifier characters are
// replaced with '_'; the glyphs in operatorWords are instead substituted with their
// word form so that e.g. a generated column "X-1" does not collapse to the
// same mangled name as "X1".
func (h Handle) Mangle() string {
	var b strings.Builder

	b.WriteString(mangleComponent(h.module))
	b.WriteString("__")
	b.WriteString(mangleComponent(h.name))

	return b.String()
}

func mangleComponent(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case operatorWords[r] != "":
			b.WriteString(operatorWords[r])
		default:
			b.WriteString("_")
		}
	}

	return b.String()
}

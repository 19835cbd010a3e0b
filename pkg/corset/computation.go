package corset

import "fmt"

// Computation is the tagged union of ways a derived column's values can be
// produced.  Each variant mirrors the Kind a declared column may carry
// (Composite, Interleaved or the Sorted-produced Phantom columns of a
// permutation).
type Computation interface {
	// Targets returns the handles this computation is responsible for
	// producing, in the order their values are written.
	Targets() []Handle
	isComputation()
}

// Composite computes Target's value, row by row, as Expr evaluated over
// already-computed dependency columns.
type Composite struct {
	Target Handle
	Expr   *Node
}

func (c *Composite) Targets() []Handle { return []Handle{c.Target} }
func (*Composite) isComputation()      {}

// Interleaved computes Target by round-robin interleaving the rows of
// Froms: row k = i*len(Froms)+j copies row i of Froms[j].
type Interleaved struct {
	Target Handle
	Froms  []Handle
}

func (c *Interleaved) Targets() []Handle { return []Handle{c.Target} }
func (*Interleaved) isComputation()      {}

// Sorted computes a stable lexicographic sort of Froms (compared left to
// right) and writes the induced permutation of each Froms[k] into Tos[k].
// It is the sole computation to write more than one target, matching the
// single-sort semantics a defpermutation declaration produces.
type Sorted struct {
	Froms []Handle
	Tos   []Handle
}

func (c *Sorted) Targets() []Handle { return c.Tos }
func (*Sorted) isComputation()      {}

// ComputationTable maps each target handle to the index, within its own
// slice, of the Computation responsible for producing it.  It is shared by
// reference across every scope in a module's scope tree (see Scopes),
// since a composite column declared in one scope may be referenced by an
// expression reduced in another.
type ComputationTable struct {
	computations []Computation
	byTarget     map[handleKey]int
}

// handleKey strips the optional id from a Handle so computations can be
// looked up consistently whether or not id assignment has run yet.
type handleKey struct {
	module string
	name   string
}

func keyOf(h Handle) handleKey {
	return handleKey{h.module, h.name}
}

// NewComputationTable constructs an empty computation table.
func NewComputationTable() *ComputationTable {
	return &ComputationTable{nil, make(map[handleKey]int)}
}

// Add records a new computation, failing if any of its targets already has
// a producing computation.
func (t *ComputationTable) Add(c Computation) error {
	for _, h := range c.Targets() {
		if _, ok := t.byTarget[keyOf(h)]; ok {
			return fmt.Errorf("column %s already has a computation", h.QualifiedName())
		}
	}

	idx := len(t.computations)
	t.computations = append(t.computations, c)

	for _, h := range c.Targets() {
		t.byTarget[keyOf(h)] = idx
	}

	return nil
}

// Lookup returns the computation producing the given target, if any.
func (t *ComputationTable) Lookup(target Handle) (Computation, bool) {
	idx, ok := t.byTarget[keyOf(target)]
	if !ok {
		return nil, false
	}

	return t.computations[idx], true
}

// All returns every computation in declaration order, used by
// compute_all to iterate the whole table.
func (t *ComputationTable) All() []Computation {
	return t.computations
}

package eval

import (
	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/schema"
)

// Strategy selects between the two padding schemes of §4.6.
type Strategy int

const (
	// Full pads every column up to its module's raw length plus one,
	// rounded up to the next power of two.
	Full Strategy = iota
	// OneLine prepends exactly one padding row per column.
	OneLine
)

// Pad records, for every column in the set, the row count it will have
// once strategy's padding rows are prepended ahead of serialisation.
// Padding rows are never materialised into a column's stored Values: the
// serialised trace carries only the genuinely computed rows plus a
// padding value (§4.7), leaving the row count a downstream concern for
// whatever consumes that value. PaddedLen is therefore the only state Pad
// mutates.
func Pad(columns *schema.ColumnSet, strategy Strategy) {
	switch strategy {
	case Full:
		padFull(columns)
	case OneLine:
		padOneLine(columns)
	}
}

func padFull(columns *schema.ColumnSet) {
	for _, module := range columns.Modules() {
		target := nextPowerOfTwo(columns.RawLength(module) + 1)

		for _, col := range columns.Columns() {
			if col.Handle.Module() != module {
				continue
			}

			if target > col.PaddedLen {
				col.PaddedLen = target
			}
		}
	}
}

// padOneLine grows every column's recorded length by exactly one row,
// building on whatever padding (if any) a prior call already recorded —
// applying it twice yields the same padding value both times, differing
// only in the resulting length.
func padOneLine(columns *schema.ColumnSet) {
	for _, col := range columns.Columns() {
		base := col.PaddedLen
		if base < uint(col.Len()) {
			base = uint(col.Len())
		}

		col.PaddedLen = base + 1
	}
}

// PaddingValue computes the padding value of col: zero for an
// atomic/phantom/interleaved column (the binary/NOT exception aside), or
// the value its defining expression takes when every dependency reads as
// zero, for a composite column (§4.6).
func PaddingValue(col *schema.Column, columns *schema.ColumnSet) field.Element {
	composite, ok := col.Kind.(*corset.CompositeColumn)
	if !ok {
		return col.PaddingValue()
	}

	zeroGet := func(handle corset.Handle, i int, wrap bool) (field.Element, bool) {
		if dep, ok := columns.Lookup(handle.Module(), handle.Name()); ok {
			return PaddingValue(dep, columns), true
		}

		return field.Zero(), true
	}

	v, ok := EvalRow(composite.Expr, 0, true, zeroGet, nil)
	if !ok {
		return field.Zero()
	}

	return v
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n uint) uint {
	if n == 0 {
		return 1
	}

	p := uint(1)
	for p < n {
		p <<= 1
	}

	return p
}

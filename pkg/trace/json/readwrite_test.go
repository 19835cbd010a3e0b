package json

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/field"
	"github.com/OmegaTymbJIep/corset/pkg/schema"
)

func buildOneColumnSet(module, name string) *schema.ColumnSet {
	h := corset.NewHandle(module, name).WithID(0)

	spec := &corset.ColumnSpec{
		Handle: h,
		Type:   corset.ColumnInt,
		Node:   corset.NewColumnRef(h, false, &corset.AtomicColumn{}),
	}

	return schema.Build(&corset.Program{Columns: []*corset.ColumnSpec{spec}, Comps: corset.NewComputationTable()})
}

func TestWriteProducesExpectedShape(t *testing.T) {
	cs := buildOneColumnSet("m", "a")

	col, _ := cs.Lookup("m", "a")
	col.SetRaw([]field.Element{field.FromUint64(0), field.FromUint64(1), field.FromUint64(16)}, 0)

	out, err := Write(cs)
	assert.NoError(t, err)
	assert.Contains(t, string(out), `"0x0"`)
	assert.Contains(t, string(out), `"0x01"`)
	assert.Contains(t, string(out), `"0x010"`)
	assert.Contains(t, string(out), `"padding_strategy"`)
	assert.Contains(t, string(out), `"action":"prepend"`)
}

func TestReadInstallsValuesAndWarnsOnUnknownPaths(t *testing.T) {
	cs := buildOneColumnSet("m", "a")

	doc := []byte(`{"m": {"a": ["1", "0x10", 3], "nope": [1,2]}, "othermodule": {"x": [1]}}`)

	warnings, err := Read(doc, cs)
	assert.NoError(t, err)
	assert.Len(t, warnings, 2)

	col, _ := cs.Lookup("m", "a")
	assert.True(t, col.Computed())
	assert.Equal(t, 3, col.Len())

	v0, _ := col.Get(0)
	assert.True(t, v0.Equals(field.FromUint64(1)))

	v1, _ := col.Get(1)
	assert.True(t, v1.Equals(field.FromUint64(16)))

	v2, _ := col.Get(2)
	assert.True(t, v2.Equals(field.FromUint64(3)))
}

func TestReadWriteRoundTrip(t *testing.T) {
	cs := buildOneColumnSet("m", "a")

	col, _ := cs.Lookup("m", "a")
	col.SetRaw([]field.Element{field.FromUint64(7), field.FromUint64(8)}, 0)

	out, err := Write(cs)
	assert.NoError(t, err)

	cs2 := buildOneColumnSet("m", "a")
	warnings, err := Read(out, cs2)
	assert.NoError(t, err)
	assert.Empty(t, warnings)

	col2, _ := cs2.Lookup("m", "a")

	for i := 0; i < col.Len(); i++ {
		v1, _ := col.Get(i)
		v2, _ := col2.Get(i)
		assert.True(t, v1.Equals(v2), "row %d", i)
	}
}

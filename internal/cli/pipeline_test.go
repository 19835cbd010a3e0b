package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OmegaTymbJIep/corset/internal/config"
	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/eval"
	"github.com/OmegaTymbJIep/corset/pkg/sexp"
)

func sym(s string) sexp.SExp { return sexp.NewSymbol(s, sexp.NewSpan(0, len(s))) }

func lst(elems ...sexp.SExp) sexp.SExp { return sexp.NewList(elems, sexp.NewSpan(0, 0)) }

// a one-module circuit with a single atomic column "a" and a constraint
// that a vanishes everywhere.
func vanishingCircuit() *corset.Circuit {
	return &corset.Circuit{Modules: []*corset.ModuleDecl{{
		Name: "m",
		Declarations: []corset.Declaration{
			&corset.DefColumns{Columns: []*corset.ColumnDecl{{Name: "a", Count: 1}}},
			&corset.DefConstraint{Handle: "c1", Body: sym("a")},
		},
	}}}
}

func TestPipelineCheckReportsNoViolationsOnSatisfiedTrace(t *testing.T) {
	p := &Pipeline{Config: config.Config{Padding: eval.Full, Mode: config.Check}}

	trace := []byte(`{"m": {"a": [0, 0, 0]}}`)

	result, err := p.Run(vanishingCircuit(), trace)
	assert.NoError(t, err)
	assert.Empty(t, result.Violations)
}

func TestPipelineCheckReportsViolationOnUnsatisfiedTrace(t *testing.T) {
	p := &Pipeline{Config: config.Config{Padding: eval.Full, Mode: config.Check}}

	trace := []byte(`{"m": {"a": [0, 1, 0]}}`)

	result, err := p.Run(vanishingCircuit(), trace)
	assert.NoError(t, err)
	assert.Len(t, result.Violations, 1)
	assert.Equal(t, 1, result.Violations[0].Row)
}

func TestPipelineSerialiseProducesTraceJSON(t *testing.T) {
	p := &Pipeline{Config: config.Config{Padding: eval.OneLine, Mode: config.Serialise}}

	trace := []byte(`{"m": {"a": [5, 6]}}`)

	result, err := p.Run(vanishingCircuit(), trace)
	assert.NoError(t, err)
	assert.Contains(t, string(result.Serialised), `"columns"`)
	assert.Contains(t, string(result.Serialised), `"padding_strategy"`)
}

func TestPipelineFailsOnCompileError(t *testing.T) {
	p := &Pipeline{Config: config.Config{Mode: config.Serialise}}

	badCircuit := &corset.Circuit{Modules: []*corset.ModuleDecl{{
		Name: "m",
		Declarations: []corset.Declaration{
			&corset.DefConstraint{Handle: "c1", Body: sym("nosuchcolumn")},
		},
	}}}

	_, err := p.Run(badCircuit, []byte(`{}`))
	assert.Error(t, err)
}

func TestPipelineWarnsButDoesNotFailOnUnknownTracePath(t *testing.T) {
	p := &Pipeline{Config: config.Config{Padding: eval.Full, Mode: config.Serialise}}

	trace := []byte(`{"m": {"a": [0], "nope": [1]}}`)

	_, err := p.Run(vanishingCircuit(), trace)
	assert.NoError(t, err)
}

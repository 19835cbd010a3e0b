// Package cli wires the compiler, column set, evaluator, and serialiser
// into the two terminal operations a host exposes over a constraint set and
// a trace: serialise the filled trace, or check it against its own
// constraints. It mirrors the shape of the teacher's pkg/cmd/compile.go and
// pkg/cmd/check.go commands, minus the argument parsing and the tokenizer
// call that turns source text into a Circuit — that parser is not part of
// this module.
package cli

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/OmegaTymbJIep/corset/internal/config"
	"github.com/OmegaTymbJIep/corset/pkg/corset"
	"github.com/OmegaTymbJIep/corset/pkg/eval"
	"github.com/OmegaTymbJIep/corset/pkg/schema"
	tjson "github.com/OmegaTymbJIep/corset/pkg/trace/json"
)

// Pipeline runs one circuit through compilation, trace filling, and its
// configured terminal operation.
type Pipeline struct {
	Config config.Config
}

// Result carries whichever terminal operation's output is relevant:
// Serialised is set in Serialise mode, Violations in Check mode.
type Result struct {
	Serialised []byte
	Violations []eval.Violation
}

// Run compiles circuit, fills trace's atomic columns from traceJSON,
// computes every derived column, pads, and performs the configured
// terminal operation. Compile errors abort the run; unknown trace paths
// are logged as warnings but do not (§7, §9).
func (p *Pipeline) Run(circuit *corset.Circuit, traceJSON []byte) (Result, error) {
	program, errs := corset.Compile(circuit, p.Config.Debug)
	if len(errs) > 0 {
		return Result{}, fmt.Errorf("compilation failed: %v", errs[0])
	}

	columns := schema.Build(program)

	warnings, err := tjson.Read(traceJSON, columns)
	if err != nil {
		return Result{}, fmt.Errorf("reading trace: %w", err)
	}

	for _, w := range warnings {
		log.WithField("path", w).Warn("trace path matched no declared column")
	}

	evaluator := eval.NewEvaluator(columns, program.Comps)

	for _, err := range evaluator.ComputeAll() {
		log.WithError(err).Warn("computation failed")
	}

	eval.Pad(columns, p.Config.Padding)

	switch p.Config.Mode {
	case config.Check:
		return Result{Violations: evaluator.Check(program.Constraints)}, nil
	default:
		out, err := tjson.Write(columns)
		if err != nil {
			return Result{}, fmt.Errorf("serialising trace: %w", err)
		}

		return Result{Serialised: out}, nil
	}
}

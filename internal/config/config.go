// Package config binds the small set of flags a host needs to drive the
// compile-fill-check/serialise pipeline, the way the teacher's pkg/cmd
// package binds flags onto each cobra.Command (see GetFlag/GetString there).
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OmegaTymbJIep/corset/pkg/eval"
)

// Mode selects the terminal operation a Pipeline run performs once every
// derived column has been filled.
type Mode int

const (
	// Serialise writes the filled trace as JSON (§4.7).
	Serialise Mode = iota
	// Check runs every constraint against the filled trace and reports
	// violations instead of emitting a trace.
	Check
)

// Config is the flag-bound configuration for one pipeline run.
type Config struct {
	// Debug enables debug(...) forms during reduction.
	Debug bool
	// Padding selects the padding strategy applied before serialisation.
	Padding eval.Strategy
	// Mode selects Serialise or Check.
	Mode Mode
}

// BindFlags registers this package's flags on cmd, mirroring the naming the
// teacher's own compile/check commands use ("--debug", "--padding").
func BindFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("debug", false, "enable debug(...) forms")
	cmd.Flags().String("padding", "full", "padding strategy: full or one-line")
}

// FromFlags reads a Config back out of cmd's flags, failing on an
// unrecognised --padding value rather than silently defaulting.
func FromFlags(cmd *cobra.Command, mode Mode) (Config, error) {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return Config{}, err
	}

	raw, err := cmd.Flags().GetString("padding")
	if err != nil {
		return Config{}, err
	}

	var strategy eval.Strategy

	switch raw {
	case "full":
		strategy = eval.Full
	case "one-line":
		strategy = eval.OneLine
	default:
		return Config{}, fmt.Errorf("unrecognised padding strategy %q", raw)
	}

	return Config{Debug: debug, Padding: strategy, Mode: mode}, nil
}

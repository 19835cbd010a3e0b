package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/OmegaTymbJIep/corset/internal/config"
	"github.com/OmegaTymbJIep/corset/pkg/corset"
)

// CircuitLoader produces the Circuit a Command runs against. A real binary
// would implement this over the tokenizer this module does not provide;
// tests and embedders can supply one built directly in Go.
type CircuitLoader func(args []string) (*corset.Circuit, error)

// NewCommand builds a cobra.Command running Pipeline over a Circuit
// produced by load and a trace document read from tracePath, the same
// division of labour as the teacher's compileCmd/checkCmd: cobra owns flag
// parsing, Pipeline owns the compile-fill-terminal-operation sequence.
func NewCommand(use, short string, mode config.Mode, load CircuitLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.FromFlags(cmd, mode)
			if err != nil {
				log.WithError(err).Error("invalid flags")
				os.Exit(2)
			}

			tracePath, err := cmd.Flags().GetString("trace")
			if err != nil || tracePath == "" {
				log.Error("missing required --trace flag")
				os.Exit(2)
			}

			traceJSON, err := os.ReadFile(tracePath)
			if err != nil {
				log.WithError(err).Error("reading trace file")
				os.Exit(1)
			}

			circuit, err := load(args)
			if err != nil {
				log.WithError(err).Error("loading circuit")
				os.Exit(1)
			}

			pipeline := &Pipeline{Config: cfg}

			result, err := pipeline.Run(circuit, traceJSON)
			if err != nil {
				log.WithError(err).Error("pipeline failed")
				os.Exit(1)
			}

			switch cfg.Mode {
			case config.Check:
				for _, v := range result.Violations {
					fmt.Println(v.String())
				}

				if len(result.Violations) > 0 {
					os.Exit(1)
				}
			default:
				fmt.Println(string(result.Serialised))
			}
		},
	}

	config.BindFlags(cmd)
	cmd.Flags().String("trace", "", "path to the input trace JSON document")

	return cmd
}

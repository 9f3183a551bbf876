package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/explain"
	"github.com/wbrown/janus-graph/graph/optimizer"
	"github.com/wbrown/janus-graph/graph/parser"
)

// NewExplainCommand creates the explain command
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	var verify, computer bool

	cmd := &cobra.Command{
		Use:   "explain <traversal>",
		Short: "Show how the optimizer rewrites a traversal",
		Long: `Parse a traversal, optimize it against the effective configuration and
print the plan before and after together with every folding, tagging and
inlining decision.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.config(cmd)
			if err != nil {
				return err
			}
			plan, err := parser.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse traversal: %w", err)
			}
			handle := graph.NewHandle("cli", cfg)
			if computer {
				handle.Mode = graph.ModeComputer
			}
			plan.Bind(handle)

			report, err := explain.Explain(plan, rootOpts.handler(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report.Write(out, rootOpts.useColor(out))

			if verify {
				if err := optimizer.CheckInvariants(report.Plan); err != nil {
					return err
				}
				fmt.Fprintln(out, "\ninvariants: ok")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check structural invariants of the optimized plan")
	cmd.Flags().BoolVar(&computer, "computer", false, "bind the plan to a graph-parallel handle")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/executor"
	"github.com/wbrown/janus-graph/graph/explain"
	"github.com/wbrown/janus-graph/graph/optimizer"
	"github.com/wbrown/janus-graph/graph/parser"
	"github.com/wbrown/janus-graph/graph/storage"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// RunOptions holds flags for the run command
type RunOptions struct {
	DBPath      string
	FixturePath string
	Start       uint64
	BatchSize   int
	Compare     bool
	Stats       bool
	Repeat      int
}

// NewRunCommand creates the run command
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <traversal>",
		Short: "Optimize and execute a traversal",
		Long: `Optimize a traversal and execute it against a graph: a badger store
(--db), a YAML fixture (--fixture), or a generated in-memory social graph.

Anonymous traversals start from --start. With --compare the unoptimized
plan runs as well and the command fails if the results differ.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraversal(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "badger graph directory")
	cmd.Flags().StringVar(&opts.FixturePath, "fixture", "", "YAML graph fixture")
	cmd.Flags().Uint64Var(&opts.Start, "start", 1, "start vertex for anonymous traversals")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", executor.DefaultBatchSize, "keys per batched backend read")
	cmd.Flags().BoolVar(&opts.Compare, "compare", false, "also run the unoptimized plan and diff the results")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print backend call counts")
	cmd.Flags().IntVar(&opts.Repeat, "repeat", 1, "run the traversal this many times through the plan cache")
	cmd.MarkFlagsMutuallyExclusive("db", "fixture")

	return cmd
}

func runTraversal(cmd *cobra.Command, rootOpts *RootOptions, opts *RunOptions, input string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := rootOpts.config(cmd)
	if err != nil {
		return err
	}
	plan, err := parser.Parse(input)
	if err != nil {
		return fmt.Errorf("parse traversal: %w", err)
	}
	plan.Bind(graph.NewHandle("cli", cfg))

	backend, closeBackend, err := openBackend(opts)
	if err != nil {
		return err
	}
	defer closeBackend()

	handler := rootOpts.handler(cmd)
	report, err := explain.Explain(plan, handler)
	if err != nil {
		return err
	}

	var start graph.Element
	if report.Plan.Anonymous() {
		vs, err := backend.Vertices(ctx, []graph.ElementID{graph.ElementID(opts.Start)})
		if err != nil {
			return err
		}
		if len(vs) == 0 {
			return fmt.Errorf("start vertex %d: %w", opts.Start, graph.ErrVertexNotFound)
		}
		start = vs[0]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "plan: %s\n\n", report.After)

	got, counts, err := executePlan(ctx, backend, report.Plan, start, opts.BatchSize, handler)
	if err != nil {
		return err
	}
	fmt.Fprint(out, explain.ResultTable(got))
	if opts.Stats {
		printCounts(out, "optimized", counts)
	}
	if opts.Repeat > 1 {
		if err := repeat(ctx, out, backend, plan, start, opts, got); err != nil {
			return err
		}
	}

	if !opts.Compare {
		return nil
	}
	want, plainCounts, err := executePlan(ctx, backend, plan, start, opts.BatchSize, handler)
	if err != nil {
		return fmt.Errorf("unoptimized run: %w", err)
	}
	if opts.Stats {
		printCounts(out, "unoptimized", plainCounts)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		return fmt.Errorf("optimized results differ (-unoptimized +optimized):\n%s", diff)
	}
	fmt.Fprintln(out, "\ncompare: results match")
	return nil
}

// repeat re-runs plan through a plan cache. Every run after the first is
// served a cached rewrite and must reproduce want.
func repeat(ctx context.Context, out io.Writer, b executor.Backend, plan *traversal.Plan,
	start graph.Element, opts *RunOptions, want []graph.Element) error {
	cache := optimizer.NewPlanCache(0, 0)
	for i := 0; i < opts.Repeat; i++ {
		got, _, err := executePlan(ctx, b, cache.Optimize(plan), start, opts.BatchSize, nil)
		if err != nil {
			return fmt.Errorf("repeat %d: %w", i+1, err)
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			return fmt.Errorf("repeat %d differs (-first +repeat):\n%s", i+1, diff)
		}
	}
	hits, misses, _ := cache.Stats()
	fmt.Fprintf(out, "\nplan cache: %d runs, %d hits, %d misses\n", opts.Repeat, hits, misses)
	return nil
}

func executePlan(ctx context.Context, b executor.Backend, plan *traversal.Plan, start graph.Element,
	batchSize int, handler annotations.Handler) ([]graph.Element, *executor.MethodCounts, error) {
	counting, counts := executor.NewCountingBackend(b)
	var collector *annotations.Collector
	if handler != nil {
		collector = annotations.NewCollector(handler)
	}
	x := executor.NewExecutor(counting, executor.Options{BatchSize: batchSize, Collector: collector})
	got, err := x.Execute(ctx, plan, start)
	return got, counts, err
}

func printCounts(w io.Writer, name string, c *executor.MethodCounts) {
	fmt.Fprintf(w, "\n%s backend calls: %d (vertices %d, adjacent %d, multi-adjacent %d, properties %d, multi-properties %d)\n",
		name, c.Total(), c.Vertices(), c.Adjacent(), c.MultiAdjacent(), c.Properties(), c.MultiProperties())
}

// openBackend opens the graph selected by the flags. The returned func
// releases it.
func openBackend(opts *RunOptions) (executor.Backend, func(), error) {
	switch {
	case opts.DBPath != "":
		store, err := storage.OpenTestStore(opts.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case opts.FixturePath != "":
		f, err := storage.LoadFixture(opts.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		m := executor.NewMemoryBackend()
		if err := f.Populate(m); err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil

	default:
		m := executor.NewMemoryBackend()
		if err := storage.PopulateTestGraph(m, storage.DefaultTestGraphConfig()); err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	}
}

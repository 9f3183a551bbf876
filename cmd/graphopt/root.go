package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	ConfigPath string
	MultiKey   bool
	Prefetch   bool
	CacheSize  uint
	Verbose    bool
	NoColor    bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "graphopt",
		Short:         "Local traversal optimizer",
		Long:          "Explain and run graph traversals rewritten by the local query optimizer.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "YAML optimizer config file")
	flags.BoolVar(&opts.MultiKey, "multi-key", false, "enable multi-key fetch (overrides config)")
	flags.BoolVar(&opts.Prefetch, "prefetch", false, "enable eager property prefetch (overrides config)")
	flags.UintVar(&opts.CacheSize, "cache-size", 0, "vertex cache size hint (overrides config)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log optimizer and executor events to stderr")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// config resolves the effective configuration: defaults, then the config
// file, then any flag the user set explicitly
func (o *RootOptions) config(cmd *cobra.Command) (graph.Config, error) {
	cfg := graph.DefaultConfig()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = graph.LoadConfig(o.ConfigPath); err != nil {
			return graph.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("multi-key") {
		cfg.MultiKeyFetchEnabled = o.MultiKey
	}
	if flags.Changed("prefetch") {
		cfg.EagerPropertyPrefetchEnabled = o.Prefetch
	}
	if flags.Changed("cache-size") {
		cfg.VertexCacheSizeHint = o.CacheSize
	}
	return cfg, nil
}

// handler returns the event handler for --verbose, or nil
func (o *RootOptions) handler(cmd *cobra.Command) annotations.Handler {
	if !o.Verbose {
		return nil
	}
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:     cmd.ErrOrStderr(),
		NoColor: !o.useColor(cmd.ErrOrStderr()),
	}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return annotations.ZerologHandler(logger)
}

func (o *RootOptions) useColor(w io.Writer) bool {
	if o.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mini-lang/minic/internal/config"
	"github.com/mini-lang/minic/internal/inline"
	"github.com/mini-lang/minic/internal/trace"
)

var (
	configPath string
	traceFlag  bool
)

var rootCmd = &cobra.Command{
	Use:     "minic",
	Short:   "mini language front-end: module loading, type checking, flow analysis, inlining",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mini.yaml", "path to the project's mini.yaml")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "force codegen-print tracing on regardless of mini.yaml")
	rootCmd.SetVersionTemplate("minic {{.Version}}\n")
}

// Execute runs the CLI, returning the first error any subcommand
// produced so main can set an exit code.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads mini.yaml, folding in --trace.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if traceFlag {
		cfg.Trace = true
	}
	return cfg, nil
}

// heuristicFor converts mini.yaml's string-typed heuristic into the
// inliner's own enum. The two packages are deliberately decoupled
// (internal/config never imports internal/inline), so the conversion
// lives here, at the point where both meet.
func heuristicFor(cfg *config.Config) inline.Heuristic {
	if cfg.Inline == config.HeuristicNone {
		return inline.HeuristicNone
	}
	return inline.HeuristicAll
}

// tracerFor returns a tracer writing to stderr when tracing is on,
// nil otherwise (every internal/trace.Tracer method is a safe no-op
// on a nil receiver).
func tracerFor(cfg *config.Config) *trace.Tracer {
	if !cfg.Trace {
		return nil
	}
	return trace.New(os.Stderr)
}

func exitWithError(err error) error {
	fmt.Fprintln(os.Stderr, "minic:", err)
	return err
}

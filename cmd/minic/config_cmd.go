package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective mini.yaml configuration",
	Long:  "config loads mini.yaml (or the built-in defaults if absent) and prints the resolved settings every other subcommand runs with.",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return exitWithError(err)
	}
	fmt.Printf("roots.stdlib:  %s\n", orDefault(cfg.Roots.Stdlib, "<root>/../stdlib"))
	fmt.Printf("roots.builtin: %s\n", orDefault(cfg.Roots.Builtin, "<root>/../builtin"))
	fmt.Printf("search_paths:  %v\n", cfg.SearchPaths)
	fmt.Printf("inline:        %s\n", cfg.Inline)
	fmt.Printf("trace:         %t\n", cfg.Trace)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

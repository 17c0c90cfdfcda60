// Package config loads a project's `mini.yaml`: the file-layout root
// overrides §6's module resolution takes (`std::`/`core::`), the global
// inlining heuristic §4.6 leaves as a compiler-wide choice, and a
// list of extra search paths, which module resolution does not
// consult. It follows the teacher's YAML-config idiom (struct tags,
// one `Load` entry point over `gopkg.in/yaml.v3`) rather than inventing
// a bespoke format.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Heuristic mirrors internal/inline.Heuristic as a YAML-friendly string
// so mini.yaml can name it without importing the inliner's own type.
type Heuristic string

const (
	HeuristicAll  Heuristic = "all"
	HeuristicNone Heuristic = "none"
)

// Config is the parsed shape of mini.yaml.
type Config struct {
	// Roots overrides §6's file-layout resolution; empty fields fall
	// back to module.Resolver's own <root>/../{stdlib,builtin} defaults.
	Roots struct {
		Stdlib  string `yaml:"stdlib"`
		Builtin string `yaml:"builtin"`
	} `yaml:"roots"`

	// SearchPaths lists additional directories. Load parses them and
	// `minic config` prints them; module.Resolver does not consult
	// them, so a plain import always resolves to <root>/<name>.mini.
	SearchPaths []string `yaml:"search_paths"`

	// Inline selects the inliner's heuristic (§4.6) for call sites left
	// at Auto by both the site and the callee. Defaults to "all" when
	// absent, matching the original's own default heuristic.
	Inline Heuristic `yaml:"inline"`

	// Trace enables the code-gen-trace tracer (§9's codegen_print
	// attribute) independently of any per-node attribute, so a whole
	// build can be traced without editing source.
	Trace bool `yaml:"trace"`
}

// Default returns the configuration a project with no mini.yaml gets:
// no root overrides, no extra search paths, the "all" inlining
// heuristic, tracing off.
func Default() *Config {
	return &Config{Inline: HeuristicAll}
}

// Load reads and parses the mini.yaml at path. A missing file is not
// an error — callers get Default() back, since mini.yaml itself is
// optional (§6's resolution rules and §4.6's heuristic both have
// sensible defaults without one).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Inline != HeuristicAll && cfg.Inline != HeuristicNone {
		return nil, fmt.Errorf("%s: inline must be %q or %q, got %q", path, HeuristicAll, HeuristicNone, cfg.Inline)
	}
	return cfg, nil
}

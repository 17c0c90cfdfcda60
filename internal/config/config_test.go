package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "mini.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadParsesRootsAndSearchPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.yaml")
	body := "roots:\n  stdlib: /opt/mini/stdlib\n  builtin: /opt/mini/builtin\nsearch_paths:\n  - vendor\n  - third_party\ninline: none\ntrace: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/opt/mini/stdlib", cfg.Roots.Stdlib)
	require.Equal(t, "/opt/mini/builtin", cfg.Roots.Builtin)
	require.Equal(t, []string{"vendor", "third_party"}, cfg.SearchPaths)
	require.Equal(t, HeuristicNone, cfg.Inline)
	require.True(t, cfg.Trace)
}

func TestLoadDefaultsInlineHeuristicWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trace: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, HeuristicAll, cfg.Inline)
}

func TestLoadRejectsUnknownHeuristic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inline: sometimes\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

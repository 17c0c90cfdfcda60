package trace

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/mini-lang/minic/internal/ast"
)

func withoutColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestTracerEmitsOneLinePerCall(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	tr := New(&buf)

	tr.ModuleLoaded("geometry")
	tr.FuncEntry("area")
	tr.InlineRewrite("double", ast.Pos{File: "f.mini", Line: 7})

	out := buf.String()
	require.Contains(t, out, "loaded geometry")
	require.Contains(t, out, "entering area")
	require.Contains(t, out, "double at f.mini:7")
}

func TestNilTracerIsANoOp(t *testing.T) {
	var tr *Tracer
	require.NotPanics(t, func() {
		tr.ModuleLoaded("geometry")
		tr.FuncEntry("area")
		tr.InlineRewrite("double", ast.Pos{})
		tr.Warn("unused %s", "x")
	})
}

func TestTracerWithNilWriterIsANoOp(t *testing.T) {
	tr := New(nil)
	require.NotPanics(t, func() { tr.ModuleLoaded("geometry") })
}

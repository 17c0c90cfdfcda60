package module

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/intern"
)

func fakeProvider(modules map[string]*ast.Module) SourceProvider {
	return func(path string) (*ast.Module, error) {
		if m, ok := modules[path]; ok {
			return m, nil
		}
		return nil, fmt.Errorf("no such file: %s", path)
	}
}

// touch creates an empty placeholder file so Resolver's existence check
// succeeds; the actual ast.Module content for that path comes from the
// fakeProvider map, not from parsing the file.
func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTreeResolvesTransitiveImports(t *testing.T) {
	root := t.TempDir()
	mainPath := filepath.Join(root, "main.mini")
	aPath := filepath.Join(root, "a.mini")
	touch(t, mainPath)
	touch(t, aPath)

	leaf := &ast.Module{Path: "a", Funcs: []*ast.FuncDecl{{Name: "f", Public: true}}}
	entry := &ast.Module{
		Path:    "main",
		Imports: []*ast.UseDecl{{Path: "a", Name: "f"}},
	}
	resolver := NewResolver(root, "", "")
	provider := fakeProvider(map[string]*ast.Module{mainPath: entry, aPath: leaf})
	loader := NewLoader(resolver, provider, intern.NewRegistry())

	tree, err := loader.LoadTree(mainPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tree.Modules["main"]; !ok {
		t.Fatal("expected entry module in tree")
	}
	if _, ok := tree.Modules["a"]; !ok {
		t.Fatal("expected dependency module in tree")
	}
}

func TestLoadTreeRejectsUnexportedImport(t *testing.T) {
	root := t.TempDir()
	mainPath := filepath.Join(root, "main.mini")
	aPath := filepath.Join(root, "a.mini")
	touch(t, mainPath)
	touch(t, aPath)

	leaf := &ast.Module{Path: "a", Funcs: []*ast.FuncDecl{{Name: "f", Public: false}}}
	entry := &ast.Module{
		Path:    "main",
		Imports: []*ast.UseDecl{{Path: "a", Name: "f"}},
	}
	resolver := NewResolver(root, "", "")
	provider := fakeProvider(map[string]*ast.Module{mainPath: entry, aPath: leaf})
	loader := NewLoader(resolver, provider, intern.NewRegistry())

	if _, err := loader.LoadTree(mainPath); err == nil {
		t.Fatal("expected error importing a non-public symbol")
	}
}

func TestLoadTreeDetectsCycle(t *testing.T) {
	root := t.TempDir()
	aPath := filepath.Join(root, "a.mini")
	bPath := filepath.Join(root, "b.mini")
	touch(t, aPath)
	touch(t, bPath)

	a := &ast.Module{
		Path:    "a",
		Imports: []*ast.UseDecl{{Path: "b", Name: "g"}},
		Funcs:   []*ast.FuncDecl{{Name: "f", Public: true}},
	}
	b := &ast.Module{
		Path:    "b",
		Imports: []*ast.UseDecl{{Path: "a", Name: "f"}},
		Funcs:   []*ast.FuncDecl{{Name: "g", Public: true}},
	}
	resolver := NewResolver(root, "", "")
	provider := fakeProvider(map[string]*ast.Module{aPath: a, bPath: b})
	loader := NewLoader(resolver, provider, intern.NewRegistry())

	if _, err := loader.LoadTree(aPath); err == nil {
		t.Fatal("expected cycle detection error")
	}
}

package module

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/types"
)

func uintTypeExpr() ast.TypeExpr { return &ast.NamedTypeExpr{Name: "uint"} }

// TestCheckTreeWiresImportedFuncSignature builds a two-module tree
// where main calls a's exported function across the `use` edge, and
// confirms main's call site type-checks against a's signature without
// main ever declaring "double" itself.
func TestCheckTreeWiresImportedFuncSignature(t *testing.T) {
	root := t.TempDir()
	mainPath := filepath.Join(root, "main.mini")
	aPath := filepath.Join(root, "a.mini")
	touch(t, mainPath)
	touch(t, aPath)

	a := &ast.Module{
		Path: "a",
		Funcs: []*ast.FuncDecl{{
			Name: "double", Public: true,
			Args:       []*ast.Param{{Name: "x", Type: uintTypeExpr()}},
			ReturnType: uintTypeExpr(),
			Body: []ast.Stmt{&ast.ReturnStmt{Value: &ast.BinExpr{
				Op: ast.OpAdd, Left: &ast.IdentExpr{Name: "x"}, Right: &ast.IdentExpr{Name: "x"},
			}}},
		}},
	}
	main := &ast.Module{
		Path:    "main",
		Imports: []*ast.UseDecl{{Path: "a", Name: "double", Alias: "double"}},
		Funcs: []*ast.FuncDecl{{
			Name: "run", Public: true,
			ReturnType: uintTypeExpr(),
			Body: []ast.Stmt{&ast.ReturnStmt{Value: &ast.CallExpr{
				Callee: &ast.IdentExpr{Name: "double"},
				Args:   []ast.Expr{&ast.ConstExpr{Kind: ast.ConstUint, Value: big.NewInt(3)}},
			}}},
		}},
	}

	resolver := NewResolver(root, "", "")
	provider := fakeProvider(map[string]*ast.Module{mainPath: main, aPath: a})
	names := intern.NewRegistry()
	loader := NewLoader(resolver, provider, names)

	tree, err := loader.LoadTree(mainPath)
	require.NoError(t, err)

	checkers, sink := CheckTree(tree, names, types.NewTree())
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.Errors())
	require.Contains(t, checkers, "main")

	mainChecker := checkers["main"]
	_, ok := mainChecker.ExportedFunc("run")
	require.True(t, ok)
}

// TestCheckTreeRejectsMismatchedImportedCall confirms the wired
// signature is actually enforced: calling the imported function with
// the wrong argument type fails typecheck in the importing module.
func TestCheckTreeRejectsMismatchedImportedCall(t *testing.T) {
	root := t.TempDir()
	mainPath := filepath.Join(root, "main.mini")
	aPath := filepath.Join(root, "a.mini")
	touch(t, mainPath)
	touch(t, aPath)

	a := &ast.Module{
		Path: "a",
		Funcs: []*ast.FuncDecl{{
			Name: "takesUint", Public: true,
			Args:       []*ast.Param{{Name: "x", Type: uintTypeExpr()}},
			ReturnType: uintTypeExpr(),
			Body:       []ast.Stmt{&ast.ReturnStmt{Value: &ast.IdentExpr{Name: "x"}}},
		}},
	}
	main := &ast.Module{
		Path:    "main",
		Imports: []*ast.UseDecl{{Path: "a", Name: "takesUint", Alias: "takesUint"}},
		Funcs: []*ast.FuncDecl{{
			Name: "run", Public: true,
			ReturnType: uintTypeExpr(),
			Body: []ast.Stmt{&ast.ReturnStmt{Value: &ast.CallExpr{
				Callee: &ast.IdentExpr{Name: "takesUint"},
				Args:   []ast.Expr{&ast.ConstExpr{Kind: ast.ConstBool, Value: true}},
			}}},
		}},
	}

	resolver := NewResolver(root, "", "")
	provider := fakeProvider(map[string]*ast.Module{mainPath: main, aPath: a})
	names := intern.NewRegistry()
	loader := NewLoader(resolver, provider, names)

	tree, err := loader.LoadTree(mainPath)
	require.NoError(t, err)

	_, sink := CheckTree(tree, names, types.NewTree())
	require.True(t, sink.HasErrors())
}

// TestCheckTreeWiresImportedType confirms a type imported across
// modules resolves to the exporting module's NameID rather than being
// reported as unresolved.
func TestCheckTreeWiresImportedType(t *testing.T) {
	root := t.TempDir()
	mainPath := filepath.Join(root, "main.mini")
	aPath := filepath.Join(root, "a.mini")
	touch(t, mainPath)
	touch(t, aPath)

	a := &ast.Module{
		Path: "a",
		Types: []*ast.TypeDecl{{
			Name: "Point",
			Def: &ast.StructTypeExpr{Fields: []*ast.StructFieldExpr{
				{Name: "x", Type: uintTypeExpr()},
			}},
		}},
	}
	main := &ast.Module{
		Path:    "main",
		Imports: []*ast.UseDecl{{Path: "a", Name: "Point", Alias: "Point"}},
		Funcs: []*ast.FuncDecl{{
			Name: "run", Public: true,
			Args:       []*ast.Param{{Name: "p", Type: &ast.NamedTypeExpr{Name: "Point"}}},
			ReturnType: &ast.NamedTypeExpr{Name: "Point"},
			Body:       []ast.Stmt{&ast.ReturnStmt{Value: &ast.IdentExpr{Name: "p"}}},
		}},
	}

	resolver := NewResolver(root, "", "")
	provider := fakeProvider(map[string]*ast.Module{mainPath: main, aPath: a})
	names := intern.NewRegistry()
	loader := NewLoader(resolver, provider, names)

	tree, err := loader.LoadTree(mainPath)
	require.NoError(t, err)

	_, sink := CheckTree(tree, names, types.NewTree())
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.Errors())
}

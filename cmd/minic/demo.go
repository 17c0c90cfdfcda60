package main

import (
	"math/big"

	"github.com/mini-lang/minic/internal/ast"
)

// demoModule builds a small in-memory module by hand, the way the
// checker's own tests do. There is no `.mini` parser in this repo
// (spec.md §1 treats one as an external dependency), so the CLI's
// check/inline subcommands run against a fixed example module rather
// than reading source files from disk; a production driver would
// plug a real SourceProvider into internal/module.NewLoader instead.
func demoModule() *ast.Module {
	intType := func() ast.TypeExpr { return &ast.NamedTypeExpr{Name: "int"} }

	double := &ast.FuncDecl{
		Name:       "double",
		Args:       []*ast.Param{{Name: "x", Type: intType()}},
		ReturnType: intType(),
		Public:     true,
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.BinExpr{
				Op:    ast.OpAdd,
				Left:  &ast.IdentExpr{Name: "x"},
				Right: &ast.IdentExpr{Name: "x"},
			}},
		},
	}

	quadruple := &ast.FuncDecl{
		Name:       "quadruple",
		Args:       []*ast.Param{{Name: "x", Type: intType()}},
		ReturnType: intType(),
		Public:     true,
		Body: []ast.Stmt{
			&ast.ReturnStmt{
				Value: &ast.CallExpr{
					Callee: &ast.IdentExpr{Name: "double"},
					Args: []ast.Expr{
						&ast.CallExpr{
							Callee: &ast.IdentExpr{Name: "double"},
							Args:   []ast.Expr{&ast.IdentExpr{Name: "x"}},
						},
					},
				},
				// Forces inlining at this call site regardless of the
				// configured heuristic, so `minic inline` always has
				// something to rewrite.
				Debug: ast.DebugInfo{Attributes: ast.Attributes{Inline: ast.InlineAlways, CodegenPrint: true}},
			},
		},
	}

	// noisy exists purely to give `minic check` something to warn
	// about: y is an unused parameter and z an unused local.
	noisy := &ast.FuncDecl{
		Name:       "noisy",
		Args:       []*ast.Param{{Name: "x", Type: intType()}, {Name: "y", Type: intType()}},
		ReturnType: intType(),
		Public:     true,
		Body: []ast.Stmt{
			&ast.LetStmt{
				Pattern: &ast.NamePattern{Name: "z"},
				Value: &ast.BinExpr{
					Op:    ast.OpAdd,
					Left:  &ast.IdentExpr{Name: "x"},
					Right: &ast.ConstExpr{Kind: ast.ConstInt, Value: big.NewInt(1)},
				},
			},
			&ast.ReturnStmt{Value: &ast.IdentExpr{Name: "x"}},
		},
	}

	return &ast.Module{
		Path:  "main",
		Funcs: []*ast.FuncDecl{double, quadruple, noisy},
	}
}

package check

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

func newModuleChecker(modulePath string) *Checker {
	names := intern.NewTable(modulePath)
	tree := types.NewTree()
	return NewChecker(names, tree)
}

func uintType() ast.TypeExpr { return &ast.NamedTypeExpr{Name: "uint"} }
func intType() ast.TypeExpr  { return &ast.NamedTypeExpr{Name: "int"} }

func TestCheckModuleSimpleFunction(t *testing.T) {
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name: "add",
				Args: []*ast.Param{
					{Name: "a", Type: intType()},
					{Name: "b", Type: intType()},
				},
				ReturnType: intType(),
				Body: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.BinExpr{
						Op:   ast.OpAdd,
						Left: &ast.IdentExpr{Name: "a"},
						Right: &ast.IdentExpr{Name: "b"},
					}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	prog := c.CheckModule(mod)
	require.False(t, c.Sink().HasErrors(), "unexpected errors: %v", c.Sink().Errors())
	require.Len(t, prog.Funcs, 1)
	fn := prog.Funcs[0]
	require.Equal(t, "add", fn.Name)
	require.True(t, fn.ReturnType.Equal(types.Int))
	require.Len(t, fn.Body, 1)
	require.NotNil(t, fn.Body[0].Return)
	bin := fn.Body[0].Return.Value.Bin
	require.NotNil(t, bin, "expected a specialized binary op node")
	require.Equal(t, typedast.BinAddS, bin.Op)
}

func TestCheckModuleNominalCycle(t *testing.T) {
	// type A = struct { next: B };  type B = struct { next: A };
	mod := &ast.Module{
		Path: "main",
		Types: []*ast.TypeDecl{
			{Name: "A", Def: &ast.StructTypeExpr{Fields: []*ast.StructFieldExpr{
				{Name: "next", Type: &ast.NamedTypeExpr{Name: "B"}},
			}}},
			{Name: "B", Def: &ast.StructTypeExpr{Fields: []*ast.StructFieldExpr{
				{Name: "next", Type: &ast.NamedTypeExpr{Name: "A"}},
			}}},
		},
		Funcs: []*ast.FuncDecl{
			{
				Name:       "identity",
				Args:       []*ast.Param{{Name: "x", Type: &ast.NamedTypeExpr{Name: "A"}}},
				ReturnType: &ast.NamedTypeExpr{Name: "A"},
				Body: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.IdentExpr{Name: "x"}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	prog := c.CheckModule(mod)
	require.False(t, c.Sink().HasErrors(), "unexpected errors: %v", c.Sink().Errors())
	require.Len(t, prog.Funcs, 1)
}

func TestCheckModuleLetTuplePattern(t *testing.T) {
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name:       "swap",
				ReturnType: uintType(),
				Body: []ast.Stmt{
					&ast.LetStmt{
						Pattern: &ast.TuplePattern{Elems: []ast.Pattern{
							&ast.NamePattern{Name: "x"},
							&ast.NamePattern{Name: "y"},
						}},
						Value: &ast.TupleExpr{Elems: []ast.Expr{
							&ast.ConstExpr{Kind: ast.ConstUint, Value: intBig(1)},
							&ast.ConstExpr{Kind: ast.ConstUint, Value: intBig(2)},
						}},
					},
					&ast.ReturnStmt{Value: &ast.IdentExpr{Name: "y"}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	prog := c.CheckModule(mod)
	require.False(t, c.Sink().HasErrors(), "unexpected errors: %v", c.Sink().Errors())
	require.Len(t, prog.Funcs, 1)
	let := prog.Funcs[0].Body[0].Let
	require.NotNil(t, let)
	require.Equal(t, []string{"x", "y"}, let.Names)
	require.Equal(t, []int{0, 1}, let.Slots)
}

func TestCheckModuleAssignUndeclaredName(t *testing.T) {
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name: "bad",
				Body: []ast.Stmt{
					&ast.AssignStmt{Name: "nope", Value: &ast.ConstExpr{Kind: ast.ConstUint, Value: intBig(1)}},
					&ast.ReturnVoidStmt{},
				},
			},
		},
	}

	c := newModuleChecker("main")
	c.CheckModule(mod)
	require.True(t, c.Sink().HasErrors())
	errs := c.Sink().Errors()
	require.Len(t, errs, 1)
	require.Equal(t, errors.TCUnresolvedName, errs[0].Code)
}

func TestCheckModuleBreakOutsideLoop(t *testing.T) {
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name: "bad",
				Body: []ast.Stmt{
					&ast.BreakStmt{},
					&ast.ReturnVoidStmt{},
				},
			},
		},
	}

	c := newModuleChecker("main")
	c.CheckModule(mod)
	require.True(t, c.Sink().HasErrors())
	errs := c.Sink().Errors()
	require.Len(t, errs, 1)
	require.Equal(t, errors.TCAmbiguousBreak, errs[0].Code)
}

func TestCheckModuleMissingReturn(t *testing.T) {
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name:       "bad",
				ReturnType: uintType(),
				Body: []ast.Stmt{
					&ast.ExprStmt{Value: &ast.ConstExpr{Kind: ast.ConstUint, Value: intBig(1)}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	c.CheckModule(mod)
	require.True(t, c.Sink().HasErrors())
	errs := c.Sink().Errors()
	require.Len(t, errs, 1)
	require.Equal(t, errors.TCMissingReturn, errs[0].Code)
}

func TestCheckModuleLoopWithBreakValue(t *testing.T) {
	breakVal := ast.Expr(&ast.ConstExpr{Kind: ast.ConstUint, Value: intBig(5)})
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name:       "loopy",
				ReturnType: &ast.NamedTypeExpr{Name: "every"},
				Body: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.LoopExpr{Body: []ast.Stmt{
						&ast.BreakStmt{Value: &breakVal},
					}}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	prog := c.CheckModule(mod)
	require.False(t, c.Sink().HasErrors(), "unexpected errors: %v", c.Sink().Errors())
	require.Len(t, prog.Funcs, 1)
	ret := prog.Funcs[0].Body[0].Return
	require.NotNil(t, ret)
	require.NotNil(t, ret.Value.Loop)
	require.True(t, ret.Value.ResultType().Equal(types.Every))
}

func TestCheckModuleLetShadowsImport(t *testing.T) {
	mod := &ast.Module{
		Path:    "main",
		Imports: []*ast.UseDecl{{Path: "std::list", Name: "push", Alias: "push"}},
		Funcs: []*ast.FuncDecl{
			{
				Name: "bad",
				Body: []ast.Stmt{
					&ast.LetStmt{
						Pattern: &ast.NamePattern{Name: "push"},
						Value:   &ast.ConstExpr{Kind: ast.ConstUint, Value: intBig(1)},
					},
					&ast.ReturnVoidStmt{},
				},
			},
		},
	}

	c := newModuleChecker("main")
	c.CheckModule(mod)
	require.True(t, c.Sink().HasErrors())
	errs := c.Sink().Errors()
	require.Len(t, errs, 1)
	require.Equal(t, errors.ModShadowsImport, errs[0].Code)
}

func TestCheckModuleLetDoesNotShadowUnrelatedName(t *testing.T) {
	mod := &ast.Module{
		Path:    "main",
		Imports: []*ast.UseDecl{{Path: "std::list", Name: "push", Alias: "push"}},
		Funcs: []*ast.FuncDecl{
			{
				Name:       "fine",
				ReturnType: uintType(),
				Body: []ast.Stmt{
					&ast.LetStmt{
						Pattern: &ast.NamePattern{Name: "x"},
						Value:   &ast.ConstExpr{Kind: ast.ConstUint, Value: intBig(1)},
					},
					&ast.ReturnStmt{Value: &ast.IdentExpr{Name: "x"}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	c.CheckModule(mod)
	require.False(t, c.Sink().HasErrors(), "unexpected errors: %v", c.Sink().Errors())
}

func intBig(v int64) interface{} {
	return big.NewInt(v)
}

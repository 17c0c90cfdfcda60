package check

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

func bufferType() ast.TypeExpr { return &ast.NamedTypeExpr{Name: "buffer"} }

func TestCheckBufferGetSpecializesToBinBufferGet(t *testing.T) {
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name: "readAt",
				Args: []*ast.Param{
					{Name: "off", Type: uintType()},
					{Name: "buf", Type: bufferType()},
				},
				ReturnType: uintType(),
				Body: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.BinExpr{
						Op:    ast.OpBufferGet,
						Left:  &ast.IdentExpr{Name: "off"},
						Right: &ast.IdentExpr{Name: "buf"},
					}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	prog := c.CheckModule(mod)
	require.False(t, c.Sink().HasErrors(), "unexpected errors: %v", c.Sink().Errors())
	bin := prog.Funcs[0].Body[0].Return.Value.Bin
	require.NotNil(t, bin, "expected a specialized binary op node")
	require.Equal(t, typedast.BinBufferGet, bin.Op)
}

func TestCheckBufferSetSpecializesToTrinaryNode(t *testing.T) {
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name: "writeAt",
				Args: []*ast.Param{
					{Name: "off", Type: uintType()},
					{Name: "val", Type: uintType()},
					{Name: "buf", Type: bufferType()},
				},
				ReturnType: bufferType(),
				Body: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.TrinaryExpr{
						Op:   ast.OpSetBuffer,
						Arg1: &ast.IdentExpr{Name: "off"},
						Arg2: &ast.IdentExpr{Name: "val"},
						Arg3: &ast.IdentExpr{Name: "buf"},
					}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	prog := c.CheckModule(mod)
	require.False(t, c.Sink().HasErrors(), "unexpected errors: %v", c.Sink().Errors())
	tri := prog.Funcs[0].Body[0].Return.Value.Trinary
	require.NotNil(t, tri, "expected a specialized trinary op node")
	require.Equal(t, typedast.TernSetBuffer, tri.Op)
	require.True(t, tri.Type.Equal(types.Buffer))
}

func TestCheckBufferSetRejectsNonUintValue(t *testing.T) {
	mod := &ast.Module{
		Path: "main",
		Funcs: []*ast.FuncDecl{
			{
				Name: "writeAt",
				Args: []*ast.Param{
					{Name: "off", Type: uintType()},
					{Name: "val", Type: intType()},
					{Name: "buf", Type: bufferType()},
				},
				ReturnType: bufferType(),
				Body: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.TrinaryExpr{
						Op:   ast.OpSetBuffer,
						Arg1: &ast.IdentExpr{Name: "off"},
						Arg2: &ast.IdentExpr{Name: "val"},
						Arg3: &ast.IdentExpr{Name: "buf"},
					}},
				},
			},
		},
	}

	c := newModuleChecker("main")
	c.CheckModule(mod)
	require.True(t, c.Sink().HasErrors())
}

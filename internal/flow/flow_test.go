package flow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

func intConst(v int64, pos ast.Pos) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Const: &typedast.TypedConst{
		TypedExpr: typedast.TypedExpr{Type: types.Int, Pos: pos},
		Kind:      ast.ConstInt,
		Value:     v,
	}}
}

func localRead(slot int, name string, pos ast.Pos) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Var: &typedast.TypedVar{
		TypedExpr: typedast.TypedExpr{Type: types.Int, Pos: pos},
		Name:      name,
		Kind:      typedast.VarLocal,
		Slot:      slot,
	}}
}

func findCode(reports []*errors.Report, code string) bool {
	for _, r := range reports {
		if r.Code == code {
			return true
		}
	}
	return false
}

func TestReachabilityFlagsCodeAfterReturn(t *testing.T) {
	body := []typedast.TypedStmtNode{
		{Return: &typedast.TypedReturn{Value: intConst(1, ast.Pos{File: "f", Line: 1}), Pos: ast.Pos{File: "f", Line: 1}}},
		{DebugPrint: intConst(2, ast.Pos{File: "f", Line: 2})},
	}
	warnings := Reachability(body)
	require.Len(t, warnings, 1)
	require.Equal(t, errors.FLWUnreachable, warnings[0].Code)
	require.Equal(t, ast.Pos{File: "f", Line: 2}, warnings[0].Pos)
}

func TestReachabilityAllowsCodeAfterIf(t *testing.T) {
	body := []typedast.TypedStmtNode{
		{Expr: &typedast.TypedExprNode{If: &typedast.TypedIf{
			TypedExpr: typedast.TypedExpr{Type: types.Void},
			Cond:      &typedast.TypedExprNode{Const: &typedast.TypedConst{TypedExpr: typedast.TypedExpr{Type: types.Bool}, Kind: ast.ConstBool, Value: true}},
			Then:      []typedast.TypedStmtNode{{ReturnVoid: &ast.Pos{File: "f", Line: 2}}},
			Else:      nil,
		}}},
		{ReturnVoid: &ast.Pos{File: "f", Line: 3}},
	}
	warnings := Reachability(body)
	require.Empty(t, warnings)
}

func TestLivenessFlagsUnusedLocal(t *testing.T) {
	fn := &typedast.TypedFunc{
		Name:       "f",
		ReturnType: types.Void,
		Body: []typedast.TypedStmtNode{
			{Let: &typedast.TypedLet{Names: []string{"x"}, Slots: []int{0}, Value: intConst(5, ast.Pos{File: "f", Line: 1}), Pos: ast.Pos{File: "f", Line: 1}}},
			{ReturnVoid: &ast.Pos{File: "f", Line: 2}},
		},
	}
	warnings := Liveness(fn)
	require.True(t, findCode(warnings, errors.FLWUnusedAssignment))
}

func TestLivenessAllowsUsedLocal(t *testing.T) {
	fn := &typedast.TypedFunc{
		Name:       "f",
		ReturnType: types.Int,
		Body: []typedast.TypedStmtNode{
			{Let: &typedast.TypedLet{Names: []string{"x"}, Slots: []int{0}, Value: intConst(5, ast.Pos{File: "f", Line: 1}), Pos: ast.Pos{File: "f", Line: 1}}},
			{Return: &typedast.TypedReturn{Value: localRead(0, "x", ast.Pos{File: "f", Line: 2}), Pos: ast.Pos{File: "f", Line: 2}}},
		},
	}
	warnings := Liveness(fn)
	require.False(t, findCode(warnings, errors.FLWUnusedAssignment))
}

func TestLivenessFlagsUnusedParameter(t *testing.T) {
	fn := &typedast.TypedFunc{
		Name:       "f",
		Args:       []string{"a"},
		ArgTypes:   []*types.Type{types.Int},
		ReturnType: types.Void,
		Body: []typedast.TypedStmtNode{
			{ReturnVoid: &ast.Pos{File: "f", Line: 1}},
		},
	}
	warnings := Liveness(fn)
	require.True(t, findCode(warnings, errors.FLWUnusedParameter))
}

func TestLivenessSkipsUnderscoreParameter(t *testing.T) {
	fn := &typedast.TypedFunc{
		Name:       "f",
		Args:       []string{"_a"},
		ArgTypes:   []*types.Type{types.Int},
		ReturnType: types.Void,
		Body: []typedast.TypedStmtNode{
			{ReturnVoid: &ast.Pos{File: "f", Line: 1}},
		},
	}
	warnings := Liveness(fn)
	require.False(t, findCode(warnings, errors.FLWUnusedParameter))
}

func TestLivenessAllowsUsedParameter(t *testing.T) {
	fn := &typedast.TypedFunc{
		Name:       "f",
		Args:       []string{"a"},
		ArgTypes:   []*types.Type{types.Int},
		ReturnType: types.Int,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: localRead(0, "a", ast.Pos{File: "f", Line: 1}), Pos: ast.Pos{File: "f", Line: 1}}},
		},
	}
	warnings := Liveness(fn)
	require.False(t, findCode(warnings, errors.FLWUnusedParameter))
}

func TestImportUsageRemovesReferencedNominal(t *testing.T) {
	used := intern.NameID{Module: "geometry", Ordinal: 0}
	unused := intern.NameID{Module: "geometry", Ordinal: 1}
	nominal := types.NewNominal([]string{"geometry"}, used)

	fn := &typedast.TypedFunc{
		Name:       "area",
		Args:       []string{"shape"},
		ArgTypes:   []*types.Type{nominal},
		ReturnType: types.Int,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: intConst(0, ast.Pos{})}},
		},
	}
	prog := &typedast.TypedProgram{ModulePath: "main", Funcs: []*typedast.TypedFunc{fn}}

	remaining := map[intern.NameID]bool{used: true, unused: true}
	ImportUsage(prog, remaining)

	require.False(t, remaining[used])
	require.True(t, remaining[unused])
}

package inline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

func intConst(v int64) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Const: &typedast.TypedConst{
		TypedExpr: typedast.TypedExpr{Type: types.Int},
		Kind:      ast.ConstInt,
		Value:     v,
	}}
}

func localRead(slot int, name string, t *types.Type) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Var: &typedast.TypedVar{
		TypedExpr: typedast.TypedExpr{Type: t},
		Name:      name,
		Kind:      typedast.VarLocal,
		Slot:      slot,
	}}
}

func funcRef(fn *typedast.TypedFunc) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Var: &typedast.TypedVar{
		TypedExpr: typedast.TypedExpr{Type: types.NewFunc(types.FuncProperties{}, fn.ArgTypes, fn.ReturnType)},
		Name:      fn.Name,
		Kind:      typedast.VarFunc,
	}}
}

func callOf(fn *typedast.TypedFunc, site ast.InlineMode, args ...*typedast.TypedExprNode) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr:  typedast.TypedExpr{Type: fn.ReturnType},
		Callee:     funcRef(fn),
		Args:       args,
		SiteInline: site,
	}}
}

func TestEffectiveModeSiteWinsOverCallee(t *testing.T) {
	require.Equal(t, ast.InlineNever, EffectiveMode(ast.InlineNever, ast.InlineAlways))
	require.Equal(t, ast.InlineAlways, EffectiveMode(ast.InlineAlways, ast.InlineNever))
	require.Equal(t, ast.InlineAlways, EffectiveMode(ast.InlineAuto, ast.InlineAlways))
	require.Equal(t, ast.InlineAuto, EffectiveMode(ast.InlineAuto, ast.InlineAuto))
}

func TestHeuristicAllSkipsOnlyNever(t *testing.T) {
	require.False(t, shouldSkip(HeuristicAll, ast.InlineAuto))
	require.False(t, shouldSkip(HeuristicAll, ast.InlineAlways))
	require.True(t, shouldSkip(HeuristicAll, ast.InlineNever))
}

func TestHeuristicNoneInlinesOnlyAlways(t *testing.T) {
	require.True(t, shouldSkip(HeuristicNone, ast.InlineAuto))
	require.False(t, shouldSkip(HeuristicNone, ast.InlineAlways))
	require.True(t, shouldSkip(HeuristicNone, ast.InlineNever))
}

// double(x) { return x + x; } inlined at a call site always marked
// inline, under HeuristicNone (which would otherwise skip it).
func TestInlinerSplicesSimpleReturn(t *testing.T) {
	double := &typedast.TypedFunc{
		Name: "double", Args: []string{"x"}, ArgTypes: []*types.Type{types.Int}, ReturnType: types.Int,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: &typedast.TypedExprNode{Bin: &typedast.TypedBin{
				TypedExpr: typedast.TypedExpr{Type: types.Int}, Op: typedast.BinAddS,
				Left:  localRead(0, "x", types.Int),
				Right: localRead(0, "x", types.Int),
			}}}},
		},
	}
	caller := &typedast.TypedFunc{
		Name: "triple_call", ReturnType: types.Int,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: callOf(double, ast.InlineAlways, intConst(21))}},
		},
	}

	in := New(NewTable([]*typedast.TypedFunc{double, caller}), HeuristicNone)
	in.Func(caller)

	ret := caller.Body[0].Return
	require.NotNil(t, ret)
	block := ret.Value.CodeBlock
	require.NotNil(t, block, "call should have been rewritten into a CodeBlock")
	require.Equal(t, "_inline", block.Label)
	require.Len(t, block.Body, 1, "the argument prelude let")
	require.NotNil(t, block.Body[0].Let)
	require.NotNil(t, block.Result, "trailing return becomes the block's result")
	require.NotNil(t, block.Result.Bin)
}

// HeuristicAll refuses to inline a callee explicitly marked Never even
// when the call site itself says nothing.
func TestInlinerRespectsCalleeNever(t *testing.T) {
	noInline := &typedast.TypedFunc{
		Name: "noinline", ReturnType: types.Int, Inline: ast.InlineNever,
		Body: []typedast.TypedStmtNode{{Return: &typedast.TypedReturn{Value: intConst(1)}}},
	}
	caller := &typedast.TypedFunc{
		Name: "caller", ReturnType: types.Int,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: callOf(noInline, ast.InlineAuto)}},
		},
	}

	in := New(NewTable([]*typedast.TypedFunc{noInline, caller}), HeuristicAll)
	in.Func(caller)

	require.NotNil(t, caller.Body[0].Return.Value.Call, "call left untouched")
}

// A self-recursive function marked Always must not be spliced into a
// copy of itself.
func TestInlinerGuardsAgainstSelfRecursion(t *testing.T) {
	loop := &typedast.TypedFunc{
		Name: "loopy", Args: []string{"n"}, ArgTypes: []*types.Type{types.Int}, ReturnType: types.Int, Inline: ast.InlineAlways,
	}
	loop.Body = []typedast.TypedStmtNode{
		{Return: &typedast.TypedReturn{Value: callOf(loop, ast.InlineAuto, localRead(0, "n", types.Int))}},
	}
	caller := &typedast.TypedFunc{
		Name: "entry", ReturnType: types.Int,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: callOf(loop, ast.InlineAuto, intConst(3))}},
		},
	}

	in := New(NewTable([]*typedast.TypedFunc{loop, caller}), HeuristicAll)
	in.Func(caller)

	block := caller.Body[0].Return.Value.CodeBlock
	require.NotNil(t, block)
	// loopy's own body is a single "return loopy(n);" with no trailing
	// non-Return statement, so it becomes the block's Result directly;
	// the inner recursive call must remain a plain Call, not another
	// CodeBlock, because loopy is already on the recursion stack.
	require.NotNil(t, block.Result)
	require.NotNil(t, block.Result.Call, "recursive call left unexpanded")
}

// An early `return e;` inside the callee becomes `break e "_inline";`.
func TestStripReturnsRewritesEarlyReturn(t *testing.T) {
	fn := &typedast.TypedFunc{
		Name: "abs", Args: []string{"x"}, ArgTypes: []*types.Type{types.Int}, ReturnType: types.Int, Inline: ast.InlineAlways,
		Body: []typedast.TypedStmtNode{
			{Expr: &typedast.TypedExprNode{If: &typedast.TypedIf{
				TypedExpr: typedast.TypedExpr{Type: types.Void},
				Cond: &typedast.TypedExprNode{Bin: &typedast.TypedBin{
					TypedExpr: typedast.TypedExpr{Type: types.Bool}, Op: typedast.BinLessS,
					Left: localRead(0, "x", types.Int), Right: intConst(0),
				}},
				Then: []typedast.TypedStmtNode{
					{Return: &typedast.TypedReturn{Value: &typedast.TypedExprNode{Un: &typedast.TypedUn{
						TypedExpr: typedast.TypedExpr{Type: types.Int}, Op: ast.OpMinus, Operand: localRead(0, "x", types.Int),
					}}}},
				},
			}}},
			{Return: &typedast.TypedReturn{Value: localRead(0, "x", types.Int)}},
		},
	}
	caller := &typedast.TypedFunc{
		Name: "caller", ReturnType: types.Int,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: callOf(fn, ast.InlineAuto, intConst(-5))}},
		},
	}

	in := New(NewTable([]*typedast.TypedFunc{fn, caller}), HeuristicAll)
	in.Func(caller)

	block := caller.Body[0].Return.Value.CodeBlock
	require.NotNil(t, block)
	// body: [0]=arg let, [1]=the if (its interior Return became a Break)
	require.Len(t, block.Body, 2)
	ifStmt := block.Body[1].Expr.If
	require.NotNil(t, ifStmt)
	brk := ifStmt.Then[0].Break
	require.NotNil(t, brk, "interior return became a break")
	require.Equal(t, "_inline", brk.Label)
	require.NotNil(t, block.Result, "trailing return became the block result")
}

// `e?` inside an inlined callee becomes an if-let that breaks
// "_inline" with a fresh None on the None branch.
func TestStripReturnsLowersTry(t *testing.T) {
	optInt := types.NewOption(types.Int)
	fn := &typedast.TypedFunc{
		Name: "first", Args: []string{"o"}, ArgTypes: []*types.Type{optInt}, ReturnType: optInt, Inline: ast.InlineAlways,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: &typedast.TypedExprNode{Try: &typedast.TypedTry{
				TypedExpr: typedast.TypedExpr{Type: types.Int},
				Value:     localRead(0, "o", optInt),
			}}}},
		},
	}
	caller := &typedast.TypedFunc{
		Name: "caller", ReturnType: optInt,
		Body: []typedast.TypedStmtNode{
			{Return: &typedast.TypedReturn{Value: callOf(fn, ast.InlineAuto, localRead(0, "maybe", optInt))}},
		},
	}

	in := New(NewTable([]*typedast.TypedFunc{fn, caller}), HeuristicAll)
	in.Func(caller)

	block := caller.Body[0].Return.Value.CodeBlock
	require.NotNil(t, block)
	require.NotNil(t, block.Result)
	ifLet := block.Result.IfLet
	require.NotNil(t, ifLet, "try became an if-let")
	require.Equal(t, "_try", ifLet.Name)
	require.NotNil(t, ifLet.Then[0].Expr.Var, "some branch yields the bound payload")
	brk := ifLet.Else[0].Break
	require.NotNil(t, brk)
	require.Equal(t, "_inline", brk.Label)
	require.NotNil(t, brk.Value.Const)
	require.Equal(t, ast.ConstNull, brk.Value.Const.Kind)
}

func TestCloneStmtsIsIndependentOfSource(t *testing.T) {
	original := []typedast.TypedStmtNode{
		{Let: &typedast.TypedLet{Names: []string{"x"}, Slots: []int{0}, Value: intConst(1)}},
	}
	cloned := cloneStmts(original)
	cloned[0].Let.Value.Const.Value = int64(99)
	require.Equal(t, int64(1), original[0].Let.Value.Const.Value, "mutating the clone must not affect the source")
}

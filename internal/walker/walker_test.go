package walker

import (
	"testing"

	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

func constExpr(v int64) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Const: &typedast.TypedConst{
		TypedExpr: typedast.TypedExpr{Type: types.Uint},
		Kind:      0,
		Value:     v,
	}}
}

func TestChildrenVisitsBinaryOperands(t *testing.T) {
	left, right := constExpr(1), constExpr(2)
	bin := &typedast.TypedExprNode{Bin: &typedast.TypedBin{
		TypedExpr: typedast.TypedExpr{Type: types.Uint},
		Left:      left,
		Right:     right,
	}}
	n := Node{Kind: KindExpression, Expr: bin}
	children := n.Children()
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
}

func TestRecursiveApplyClonesMutStatePerSibling(t *testing.T) {
	left, right := constExpr(1), constExpr(2)
	bin := &typedast.TypedExprNode{Bin: &typedast.TypedBin{
		TypedExpr: typedast.TypedExpr{Type: types.Uint},
		Left:      left,
		Right:     right,
	}}
	n := Node{Kind: KindExpression, Expr: bin}

	var visited int
	visit := func(node *Node, state struct{}, mutState *int) bool {
		*mutState++
		visited += *mutState
		return false
	}
	RecursiveApply(n, visit, struct{}{}, 0, func(m int) int { return m })

	// Each sibling clones from the same starting mutState (0), so both
	// increments land independently at 1, not accumulating to 1 then 2.
	if visited != 2 {
		t.Fatalf("expected sibling mutations isolated (sum=2), got %d", visited)
	}
}

func TestIsPureFalseWhenCalleeIsWrite(t *testing.T) {
	writeFunc := types.NewFunc(types.FuncProperties{Write: true}, nil, types.Void)
	callee := &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedast.TypedExpr{Type: writeFunc}}}
	call := &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedast.TypedExpr{Type: types.Void},
		Callee:    callee,
	}}
	n := Node{Kind: KindExpression, Expr: call}
	if n.IsPure() {
		t.Fatal("expected call to a write function to be impure")
	}
}

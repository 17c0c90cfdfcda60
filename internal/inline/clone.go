package inline

import "github.com/mini-lang/minic/internal/typedast"

// cloneStmts deep-copies a callee's body so each call site splices in
// its own independent tree — StripReturns and the slot renumbering it
// does for Try-lowering must never mutate the function being inlined,
// since it can be inlined again at another call site afterward.
func cloneStmts(stmts []typedast.TypedStmtNode) []typedast.TypedStmtNode {
	if stmts == nil {
		return nil
	}
	out := make([]typedast.TypedStmtNode, len(stmts))
	for i, s := range stmts {
		out[i] = cloneStmt(s)
	}
	return out
}

func cloneStmt(s typedast.TypedStmtNode) typedast.TypedStmtNode {
	switch {
	case s.Return != nil:
		return typedast.TypedStmtNode{Return: &typedast.TypedReturn{
			Value: cloneExpr(s.Return.Value), Pos: s.Return.Pos,
		}}
	case s.ReturnVoid != nil:
		pos := *s.ReturnVoid
		return typedast.TypedStmtNode{ReturnVoid: &pos}
	case s.Let != nil:
		return typedast.TypedStmtNode{Let: &typedast.TypedLet{
			Names: append([]string{}, s.Let.Names...),
			Slots: append([]int{}, s.Let.Slots...),
			Value: cloneExpr(s.Let.Value),
			Pos:   s.Let.Pos,
		}}
	case s.Assign != nil:
		return typedast.TypedStmtNode{Assign: &typedast.TypedAssign{
			Name: s.Assign.Name, Slot: s.Assign.Slot, Kind: s.Assign.Kind,
			Value: cloneExpr(s.Assign.Value), Pos: s.Assign.Pos,
		}}
	case s.While != nil:
		return typedast.TypedStmtNode{While: &typedast.TypedWhile{
			Cond: cloneExpr(s.While.Cond), Body: cloneStmts(s.While.Body), Pos: s.While.Pos,
		}}
	case s.Break != nil:
		return typedast.TypedStmtNode{Break: &typedast.TypedBreak{
			Value: cloneExpr(s.Break.Value), Label: s.Break.Label, Pos: s.Break.Pos,
		}}
	case s.DebugPrint != nil:
		return typedast.TypedStmtNode{DebugPrint: cloneExpr(s.DebugPrint)}
	case s.Assert != nil:
		return typedast.TypedStmtNode{Assert: cloneExpr(s.Assert)}
	case s.Expr != nil:
		return typedast.TypedStmtNode{Expr: cloneExpr(s.Expr)}
	}
	return typedast.TypedStmtNode{}
}

func cloneExprs(exprs []*typedast.TypedExprNode) []*typedast.TypedExprNode {
	if exprs == nil {
		return nil
	}
	out := make([]*typedast.TypedExprNode, len(exprs))
	for i, e := range exprs {
		out[i] = cloneExpr(e)
	}
	return out
}

func cloneExpr(e *typedast.TypedExprNode) *typedast.TypedExprNode {
	if e == nil {
		return nil
	}
	switch {
	case e.Const != nil:
		c := *e.Const
		return &typedast.TypedExprNode{Const: &c}
	case e.Var != nil:
		v := *e.Var
		return &typedast.TypedExprNode{Var: &v}
	case e.TupleRef != nil:
		return &typedast.TypedExprNode{TupleRef: &typedast.TypedTupleRef{
			TypedExpr: e.TupleRef.TypedExpr, Tuple: cloneExpr(e.TupleRef.Tuple), Index: e.TupleRef.Index,
		}}
	case e.DotRef != nil:
		return &typedast.TypedExprNode{DotRef: &typedast.TypedDotRef{
			TypedExpr: e.DotRef.TypedExpr, Struct: cloneExpr(e.DotRef.Struct),
			Field: e.DotRef.Field, Slot: e.DotRef.Slot, Arity: e.DotRef.Arity,
		}}
	case e.Call != nil:
		return &typedast.TypedExprNode{Call: &typedast.TypedCall{
			TypedExpr: e.Call.TypedExpr, Callee: cloneExpr(e.Call.Callee),
			Args: cloneExprs(e.Call.Args), SiteInline: e.Call.SiteInline, Trace: e.Call.Trace,
		}}
	case e.ArrayMapRef != nil:
		return &typedast.TypedExprNode{ArrayMapRef: &typedast.TypedArrayOrMapRef{
			TypedExpr: e.ArrayMapRef.TypedExpr, Container: cloneExpr(e.ArrayMapRef.Container), Key: cloneExpr(e.ArrayMapRef.Key),
		}}
	case e.ArrayMapMod != nil:
		return &typedast.TypedExprNode{ArrayMapMod: &typedast.TypedArrayOrMapMod{
			TypedExpr: e.ArrayMapMod.TypedExpr, Container: cloneExpr(e.ArrayMapMod.Container),
			Key: cloneExpr(e.ArrayMapMod.Key), Value: cloneExpr(e.ArrayMapMod.Value),
		}}
	case e.StructInit != nil:
		fields := make([]typedast.TypedStructFieldInit, len(e.StructInit.Fields))
		for i, f := range e.StructInit.Fields {
			fields[i] = typedast.TypedStructFieldInit{Name: f.Name, Slot: f.Slot, Value: cloneExpr(f.Value)}
		}
		return &typedast.TypedExprNode{StructInit: &typedast.TypedStructInit{TypedExpr: e.StructInit.TypedExpr, Fields: fields}}
	case e.Tuple != nil:
		return &typedast.TypedExprNode{Tuple: &typedast.TypedTuple{TypedExpr: e.Tuple.TypedExpr, Elems: cloneExprs(e.Tuple.Elems)}}
	case e.Cast != nil:
		return &typedast.TypedExprNode{Cast: &typedast.TypedCast{TypedExpr: e.Cast.TypedExpr, Kind: e.Cast.Kind, Value: cloneExpr(e.Cast.Value)}}
	case e.Try != nil:
		return &typedast.TypedExprNode{Try: &typedast.TypedTry{TypedExpr: e.Try.TypedExpr, Value: cloneExpr(e.Try.Value)}}
	case e.If != nil:
		return &typedast.TypedExprNode{If: &typedast.TypedIf{
			TypedExpr: e.If.TypedExpr, Cond: cloneExpr(e.If.Cond), Then: cloneStmts(e.If.Then), Else: cloneStmts(e.If.Else),
		}}
	case e.IfLet != nil:
		return &typedast.TypedExprNode{IfLet: &typedast.TypedIfLet{
			TypedExpr: e.IfLet.TypedExpr, Name: e.IfLet.Name, Slot: e.IfLet.Slot,
			Option: cloneExpr(e.IfLet.Option), Then: cloneStmts(e.IfLet.Then), Else: cloneStmts(e.IfLet.Else),
		}}
	case e.Loop != nil:
		return &typedast.TypedExprNode{Loop: &typedast.TypedLoop{TypedExpr: e.Loop.TypedExpr, Body: cloneStmts(e.Loop.Body)}}
	case e.Bin != nil:
		var constVal *typedast.TypedConst
		if e.Bin.Const != nil {
			c := *e.Bin.Const
			constVal = &c
		}
		return &typedast.TypedExprNode{Bin: &typedast.TypedBin{
			TypedExpr: e.Bin.TypedExpr, Op: e.Bin.Op, Left: cloneExpr(e.Bin.Left), Right: cloneExpr(e.Bin.Right), Const: constVal,
		}}
	case e.Un != nil:
		return &typedast.TypedExprNode{Un: &typedast.TypedUn{TypedExpr: e.Un.TypedExpr, Op: e.Un.Op, Operand: cloneExpr(e.Un.Operand)}}
	case e.Logical != nil:
		return &typedast.TypedExprNode{Logical: &typedast.TypedLogical{
			TypedExpr: e.Logical.TypedExpr, Op: e.Logical.Op, Left: cloneExpr(e.Logical.Left), Right: cloneExpr(e.Logical.Right),
		}}
	case e.Ternary != nil:
		return &typedast.TypedExprNode{Ternary: &typedast.TypedTernary{
			TypedExpr: e.Ternary.TypedExpr, Cond: cloneExpr(e.Ternary.Cond), Then: cloneExpr(e.Ternary.Then), Else: cloneExpr(e.Ternary.Else),
		}}
	case e.Trinary != nil:
		return &typedast.TypedExprNode{Trinary: &typedast.TypedTrinary{
			TypedExpr: e.Trinary.TypedExpr, Op: e.Trinary.Op,
			Arg1: cloneExpr(e.Trinary.Arg1), Arg2: cloneExpr(e.Trinary.Arg2), Arg3: cloneExpr(e.Trinary.Arg3),
		}}
	case e.CodeBlock != nil:
		return &typedast.TypedExprNode{CodeBlock: &typedast.TypedCodeBlock{
			TypedExpr: e.CodeBlock.TypedExpr, Label: e.CodeBlock.Label,
			Body: cloneStmts(e.CodeBlock.Body), Result: cloneExpr(e.CodeBlock.Result),
		}}
	}
	return &typedast.TypedExprNode{}
}

package inline

import (
	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

// StripReturns rewrites block.Body and block.Result in place, turning
// every Return/ReturnVoid/Try a callee's body contains into a
// Break/IfLet targeting block.Label (§4.6 step 5), mirroring the
// original's `strip_returns`: `Return e` becomes `Break e "_inline"`,
// `ReturnVoid` becomes a bare `Break "_inline"`, and `Try e` becomes an
// `if let` that extracts e's Some payload or breaks "_inline" with a
// freshly constructed None of the callee's return type.
//
// Try is lowered to an if-let rather than to the original's literal
// tag-peeking Asm opcodes: emitting VM instructions is a code
// generator's job, out of scope for this front-end, and if-let already
// expresses "extract Some's payload or run the None branch" without
// assuming anything about how Option values are laid out at runtime.
func StripReturns(block *typedast.TypedCodeBlock) {
	s := &stripper{
		label:     block.Label,
		blockType: block.Type,
		nextSlot:  maxSlot(append(append([]typedast.TypedStmtNode{}, block.Body...), typedast.TypedStmtNode{Expr: block.Result})) + 1,
	}
	block.Body = s.stmts(block.Body)
	block.Result = s.expr(block.Result)
}

type stripper struct {
	label     string
	blockType *types.Type
	nextSlot  int
}

func (s *stripper) freshSlot() int {
	slot := s.nextSlot
	s.nextSlot++
	return slot
}

func (s *stripper) stmts(in []typedast.TypedStmtNode) []typedast.TypedStmtNode {
	if in == nil {
		return nil
	}
	out := make([]typedast.TypedStmtNode, len(in))
	for i, stmt := range in {
		out[i] = s.stmt(stmt)
	}
	return out
}

func (s *stripper) stmt(stmt typedast.TypedStmtNode) typedast.TypedStmtNode {
	switch {
	case stmt.Return != nil:
		return typedast.TypedStmtNode{Break: &typedast.TypedBreak{
			Value: s.expr(stmt.Return.Value), Label: s.label, Pos: stmt.Return.Pos,
		}}
	case stmt.ReturnVoid != nil:
		return typedast.TypedStmtNode{Break: &typedast.TypedBreak{Label: s.label, Pos: *stmt.ReturnVoid}}
	case stmt.Let != nil:
		stmt.Let.Value = s.expr(stmt.Let.Value)
	case stmt.Assign != nil:
		stmt.Assign.Value = s.expr(stmt.Assign.Value)
	case stmt.While != nil:
		stmt.While.Cond = s.expr(stmt.While.Cond)
		stmt.While.Body = s.stmts(stmt.While.Body)
	case stmt.Break != nil:
		stmt.Break.Value = s.expr(stmt.Break.Value)
	case stmt.DebugPrint != nil:
		stmt.DebugPrint = s.expr(stmt.DebugPrint)
	case stmt.Assert != nil:
		stmt.Assert = s.expr(stmt.Assert)
	case stmt.Expr != nil:
		stmt.Expr = s.expr(stmt.Expr)
	}
	return stmt
}

func (s *stripper) expr(e *typedast.TypedExprNode) *typedast.TypedExprNode {
	if e == nil {
		return nil
	}
	switch {
	case e.Try != nil:
		return s.stripTry(e.Try)
	case e.TupleRef != nil:
		e.TupleRef.Tuple = s.expr(e.TupleRef.Tuple)
	case e.DotRef != nil:
		e.DotRef.Struct = s.expr(e.DotRef.Struct)
	case e.Call != nil:
		e.Call.Callee = s.expr(e.Call.Callee)
		for i, a := range e.Call.Args {
			e.Call.Args[i] = s.expr(a)
		}
	case e.ArrayMapRef != nil:
		e.ArrayMapRef.Container = s.expr(e.ArrayMapRef.Container)
		e.ArrayMapRef.Key = s.expr(e.ArrayMapRef.Key)
	case e.ArrayMapMod != nil:
		e.ArrayMapMod.Container = s.expr(e.ArrayMapMod.Container)
		e.ArrayMapMod.Key = s.expr(e.ArrayMapMod.Key)
		e.ArrayMapMod.Value = s.expr(e.ArrayMapMod.Value)
	case e.StructInit != nil:
		for i := range e.StructInit.Fields {
			e.StructInit.Fields[i].Value = s.expr(e.StructInit.Fields[i].Value)
		}
	case e.Tuple != nil:
		for i, el := range e.Tuple.Elems {
			e.Tuple.Elems[i] = s.expr(el)
		}
	case e.Cast != nil:
		e.Cast.Value = s.expr(e.Cast.Value)
	case e.If != nil:
		e.If.Cond = s.expr(e.If.Cond)
		e.If.Then = s.stmts(e.If.Then)
		e.If.Else = s.stmts(e.If.Else)
	case e.IfLet != nil:
		e.IfLet.Option = s.expr(e.IfLet.Option)
		e.IfLet.Then = s.stmts(e.IfLet.Then)
		e.IfLet.Else = s.stmts(e.IfLet.Else)
	case e.Loop != nil:
		e.Loop.Body = s.stmts(e.Loop.Body)
	case e.Bin != nil:
		e.Bin.Left = s.expr(e.Bin.Left)
		e.Bin.Right = s.expr(e.Bin.Right)
	case e.Un != nil:
		e.Un.Operand = s.expr(e.Un.Operand)
	case e.Logical != nil:
		e.Logical.Left = s.expr(e.Logical.Left)
		e.Logical.Right = s.expr(e.Logical.Right)
	case e.Ternary != nil:
		e.Ternary.Cond = s.expr(e.Ternary.Cond)
		e.Ternary.Then = s.expr(e.Ternary.Then)
		e.Ternary.Else = s.expr(e.Ternary.Else)
	case e.Trinary != nil:
		e.Trinary.Arg1 = s.expr(e.Trinary.Arg1)
		e.Trinary.Arg2 = s.expr(e.Trinary.Arg2)
		e.Trinary.Arg3 = s.expr(e.Trinary.Arg3)
	case e.CodeBlock != nil:
		e.CodeBlock.Body = s.stmts(e.CodeBlock.Body)
		e.CodeBlock.Result = s.expr(e.CodeBlock.Result)
	}
	return e
}

// stripTry rewrites `e?` into an if-let that extracts e's Some payload
// into a fresh local or breaks the enclosing inline block with a fresh
// None of the block's own type, recursing into e.Value first so
// `f()?.g()?` lowers inside-out.
func (s *stripper) stripTry(try *typedast.TypedTry) *typedast.TypedExprNode {
	val := s.expr(try.Value)
	slot := s.freshSlot()
	payload := &typedast.TypedExprNode{Var: &typedast.TypedVar{
		TypedExpr: typedast.TypedExpr{Type: try.Type, Pos: try.Pos},
		Name:      "_try", Kind: typedast.VarLocal, Slot: slot,
	}}
	return &typedast.TypedExprNode{IfLet: &typedast.TypedIfLet{
		TypedExpr: typedast.TypedExpr{Type: try.Type, Pos: try.Pos},
		Name:      "_try", Slot: slot, Option: val,
		Then: []typedast.TypedStmtNode{{Expr: payload}},
		Else: []typedast.TypedStmtNode{{Break: &typedast.TypedBreak{
			Value: freshNone(s.blockType, try.Pos), Label: s.label, Pos: try.Pos,
		}}},
	}}
}

func freshNone(optType *types.Type, pos ast.Pos) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Const: &typedast.TypedConst{
		TypedExpr: typedast.TypedExpr{Type: optType, Pos: pos}, Kind: ast.ConstNull,
	}}
}

// maxSlot finds the highest local slot number bound anywhere in stmts,
// so fresh slots synthesized for Try-lowering never collide with the
// callee's own Let/IfLet bindings.
func maxSlot(stmts []typedast.TypedStmtNode) int {
	max := -1
	bump := func(n int) {
		if n > max {
			max = n
		}
	}
	var walkStmts func([]typedast.TypedStmtNode)
	var walkExpr func(*typedast.TypedExprNode)
	walkExpr = func(e *typedast.TypedExprNode) {
		if e == nil {
			return
		}
		switch {
		case e.TupleRef != nil:
			walkExpr(e.TupleRef.Tuple)
		case e.DotRef != nil:
			walkExpr(e.DotRef.Struct)
		case e.Call != nil:
			walkExpr(e.Call.Callee)
			for _, a := range e.Call.Args {
				walkExpr(a)
			}
		case e.ArrayMapRef != nil:
			walkExpr(e.ArrayMapRef.Container)
			walkExpr(e.ArrayMapRef.Key)
		case e.ArrayMapMod != nil:
			walkExpr(e.ArrayMapMod.Container)
			walkExpr(e.ArrayMapMod.Key)
			walkExpr(e.ArrayMapMod.Value)
		case e.StructInit != nil:
			for _, f := range e.StructInit.Fields {
				walkExpr(f.Value)
			}
		case e.Tuple != nil:
			for _, el := range e.Tuple.Elems {
				walkExpr(el)
			}
		case e.Cast != nil:
			walkExpr(e.Cast.Value)
		case e.Try != nil:
			walkExpr(e.Try.Value)
		case e.If != nil:
			walkExpr(e.If.Cond)
			walkStmts(e.If.Then)
			walkStmts(e.If.Else)
		case e.IfLet != nil:
			bump(e.IfLet.Slot)
			walkExpr(e.IfLet.Option)
			walkStmts(e.IfLet.Then)
			walkStmts(e.IfLet.Else)
		case e.Loop != nil:
			walkStmts(e.Loop.Body)
		case e.Bin != nil:
			walkExpr(e.Bin.Left)
			walkExpr(e.Bin.Right)
		case e.Un != nil:
			walkExpr(e.Un.Operand)
		case e.Logical != nil:
			walkExpr(e.Logical.Left)
			walkExpr(e.Logical.Right)
		case e.Ternary != nil:
			walkExpr(e.Ternary.Cond)
			walkExpr(e.Ternary.Then)
			walkExpr(e.Ternary.Else)
		case e.Trinary != nil:
			walkExpr(e.Trinary.Arg1)
			walkExpr(e.Trinary.Arg2)
			walkExpr(e.Trinary.Arg3)
		case e.CodeBlock != nil:
			walkStmts(e.CodeBlock.Body)
			walkExpr(e.CodeBlock.Result)
		}
	}
	walkStmts = func(ss []typedast.TypedStmtNode) {
		for _, s := range ss {
			switch {
			case s.Return != nil:
				walkExpr(s.Return.Value)
			case s.Let != nil:
				for _, slot := range s.Let.Slots {
					bump(slot)
				}
				walkExpr(s.Let.Value)
			case s.Assign != nil:
				walkExpr(s.Assign.Value)
			case s.While != nil:
				walkExpr(s.While.Cond)
				walkStmts(s.While.Body)
			case s.Break != nil:
				walkExpr(s.Break.Value)
			case s.DebugPrint != nil:
				walkExpr(s.DebugPrint)
			case s.Assert != nil:
				walkExpr(s.Assert)
			case s.Expr != nil:
				walkExpr(s.Expr)
			}
		}
	}
	walkStmts(stmts)
	return max
}

package flow

import (
	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/typedast"
)

// UsedNominals collects every nominal type id that fn's body actually
// mentions: through a cast's target type, a constant's declared type,
// or a function reference's resolved signature. ImportUsage
// (below) subtracts this set from "every name a module imports" to
// find the ones that were imported but never touched.
func UsedNominals(fn *typedast.TypedFunc) map[intern.NameID]bool {
	used := map[intern.NameID]bool{}
	mark := func(ids []intern.NameID) {
		for _, id := range ids {
			used[id] = true
		}
	}
	for _, t := range fn.ArgTypes {
		mark(t.FindNominals())
	}
	mark(fn.ReturnType.FindNominals())

	var walkExpr func(e *typedast.TypedExprNode)
	var walkStmts func(stmts []typedast.TypedStmtNode)

	walkExpr = func(e *typedast.TypedExprNode) {
		if e == nil {
			return
		}
		if t := e.ResultType(); t != nil {
			mark(t.FindNominals())
		}
		switch {
		case e.Const != nil:
		case e.Cast != nil:
			walkExpr(e.Cast.Value)
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
		case e.Try != nil:
			walkExpr(e.Try.Value)
		case e.If != nil:
			walkExpr(e.If.Cond)
			walkStmts(e.If.Then)
			walkStmts(e.If.Else)
		case e.IfLet != nil:
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
		}
	}

	walkStmts = func(stmts []typedast.TypedStmtNode) {
		for i := range stmts {
			s := &stmts[i]
			switch {
			case s.Return != nil:
				walkExpr(s.Return.Value)
			case s.Let != nil:
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

	walkStmts(fn.Body)
	return used
}

// ImportUsage removes every nominal id a module's functions actually
// reference from remaining, in place, so whatever ids are left once
// every function has been walked are the unused imports (FLW001).
func ImportUsage(prog *typedast.TypedProgram, remaining map[intern.NameID]bool) {
	for _, fn := range prog.Funcs {
		for id := range UsedNominals(fn) {
			delete(remaining, id)
		}
	}
}

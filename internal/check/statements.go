package check

import (
	"fmt"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

// checkStmts type-checks a statement sequence, threading the growing
// local scope from one statement to the next (§4.4: "bindings produced
// by a statement are visible to all statements at a higher index").
func (fc *funcChecker) checkStmts(stmts []ast.Stmt) ([]typedast.TypedStmtNode, error) {
	out := make([]typedast.TypedStmtNode, 0, len(stmts))
	for _, s := range stmts {
		ts, err := fc.checkStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, nil
}

func (fc *funcChecker) checkStmt(stmt ast.Stmt) (typedast.TypedStmtNode, error) {
	outerInline := fc.currentInline
	fc.currentInline = stmtInlineMode(stmt)
	defer func() { fc.currentInline = outerInline }()

	outerTrace := fc.currentTrace
	fc.currentTrace = outerTrace || stmtCodegenPrint(stmt)
	defer func() { fc.currentTrace = outerTrace }()

	switch s := stmt.(type) {
	case *ast.ReturnVoidStmt:
		if !fc.c.assignable(fc.returnType, types.Void) {
			return typedast.TypedStmtNode{}, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
				Message: fmt.Sprintf("return without value in function returning %s", fc.returnType), Pos: s.Pos,
			})
		}
		pos := s.Pos
		return typedast.TypedStmtNode{ReturnVoid: &pos}, nil

	case *ast.ReturnStmt:
		te, err := fc.checkExpr(s.Value)
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		if !fc.c.assignable(fc.returnType, te.ResultType()) {
			return typedast.TypedStmtNode{}, fc.mismatchErr(errors.TCTypeMismatch, fc.returnType, te.ResultType(), s.Pos,
				"return statement has wrong type")
		}
		return typedast.TypedStmtNode{Return: &typedast.TypedReturn{Value: te, Pos: s.Pos}}, nil

	case *ast.LetStmt:
		te, err := fc.checkExpr(s.Value)
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		if te.ResultType().Equal(types.Void) {
			return typedast.TypedStmtNode{}, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
				Message: "cannot bind a void-typed expression", Pos: s.Pos,
			})
		}
		names, slots, err := fc.bindPattern(s.Pattern, te.ResultType())
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		return typedast.TypedStmtNode{Let: &typedast.TypedLet{Names: names, Slots: slots, Value: te, Pos: s.Pos}}, nil

	case *ast.AssignStmt:
		te, err := fc.checkExpr(s.Value)
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		if lb, ok := fc.locals.Lookup(s.Name); ok {
			if !fc.c.assignable(lb.Type, te.ResultType()) {
				return typedast.TypedStmtNode{}, fc.mismatchErr(errors.TCTypeMismatch, lb.Type, te.ResultType(), s.Pos,
					fmt.Sprintf("assignment to %q has wrong type", s.Name))
			}
			return typedast.TypedStmtNode{Assign: &typedast.TypedAssign{
				Name: s.Name, Slot: lb.Slot, Kind: typedast.VarLocal, Value: te, Pos: s.Pos,
			}}, nil
		}
		if gt, ok := fc.c.globals[s.Name]; ok {
			if !fc.c.assignable(gt, te.ResultType()) {
				return typedast.TypedStmtNode{}, fc.mismatchErr(errors.TCTypeMismatch, gt, te.ResultType(), s.Pos,
					fmt.Sprintf("assignment to %q has wrong type", s.Name))
			}
			return typedast.TypedStmtNode{Assign: &typedast.TypedAssign{
				Name: s.Name, Kind: typedast.VarGlobal, Value: te, Pos: s.Pos,
			}}, nil
		}
		return typedast.TypedStmtNode{}, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedName, Phase: "typecheck",
			Message: fmt.Sprintf("%q does not resolve to a local or global variable", s.Name), Pos: s.Pos,
		})

	case *ast.WhileStmt:
		cond, err := fc.checkExpr(s.Cond)
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		if !cond.ResultType().Equal(types.Bool) {
			return typedast.TypedStmtNode{}, fc.mismatchErr(errors.TCTypeMismatch, types.Bool, cond.ResultType(), s.Pos,
				"while condition must be bool")
		}
		savedLocals := fc.locals
		fc.loops.Push("")
		fc.breakType = append(fc.breakType, nil)
		body, err := fc.checkStmts(s.Body)
		fc.breakType = fc.breakType[:len(fc.breakType)-1]
		fc.loops.Pop()
		fc.locals = savedLocals
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		return typedast.TypedStmtNode{While: &typedast.TypedWhile{Cond: cond, Body: body, Pos: s.Pos}}, nil

	case *ast.BreakStmt:
		if !fc.loops.Resolve(s.Label) {
			return typedast.TypedStmtNode{}, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCAmbiguousBreak, Phase: "typecheck",
				Message: fmt.Sprintf("break label %q does not resolve to an enclosing loop", s.Label), Pos: s.Pos,
			})
		}
		var val *typedast.TypedExprNode
		var valType *types.Type = types.Void
		if s.Value != nil {
			te, err := fc.checkExpr(*s.Value)
			if err != nil {
				return typedast.TypedStmtNode{}, err
			}
			val = te
			valType = te.ResultType()
		}
		depth := len(fc.breakType) - 1
		if depth >= 0 {
			if fc.breakType[depth] == nil {
				fc.breakType[depth] = valType
			} else if !fc.breakType[depth].Equal(valType) && !fc.c.assignable(fc.breakType[depth], valType) {
				return typedast.TypedStmtNode{}, fc.mismatchErr(errors.TCTypeMismatch, fc.breakType[depth], valType, s.Pos,
					"break value does not match the enclosing loop's break type")
			}
		}
		return typedast.TypedStmtNode{Break: &typedast.TypedBreak{Value: val, Label: s.Label, Pos: s.Pos}}, nil

	case *ast.AsmStmt:
		args := make([]*typedast.TypedExprNode, len(s.Args))
		for i, a := range s.Args {
			te, err := fc.checkExpr(a)
			if err != nil {
				return typedast.TypedStmtNode{}, err
			}
			args[i] = te
		}
		// The args are type-checked, then the statement yields an empty
		// TypedStmtNode: neither its instructions nor its checked args
		// are carried into the typed AST.
		return typedast.TypedStmtNode{}, nil

	case *ast.DebugPrintStmt:
		te, err := fc.checkExpr(s.Value)
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		if te.ResultType().Equal(types.Void) {
			return typedast.TypedStmtNode{}, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
				Message: "cannot debug-print a void-typed expression", Pos: s.Pos,
			})
		}
		return typedast.TypedStmtNode{DebugPrint: te}, nil

	case *ast.AssertStmt:
		te, err := fc.checkExpr(s.Value)
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		if !te.ResultType().Equal(types.Bool) {
			return typedast.TypedStmtNode{}, fc.mismatchErr(errors.TCTypeMismatch, types.Bool, te.ResultType(), s.Pos,
				"assert expression must be bool")
		}
		return typedast.TypedStmtNode{Assert: te}, nil

	case *ast.ExprStmt:
		te, err := fc.checkExpr(s.Value)
		if err != nil {
			return typedast.TypedStmtNode{}, err
		}
		return typedast.TypedStmtNode{Expr: te}, nil
	}
	return typedast.TypedStmtNode{}, fmt.Errorf("unsupported statement %T", stmt)
}

// stmtInlineMode reads a statement's own declared inlining attribute,
// defaulting to Auto for statement kinds that can't sensibly carry one
// (there is no such kind today, but the fallback keeps this exhaustive
// over ast.Stmt without needing to revisit it if one is added).
func stmtInlineMode(stmt ast.Stmt) ast.InlineMode {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return s.Debug.Attributes.Inline
	case *ast.ReturnVoidStmt:
		return s.Debug.Attributes.Inline
	case *ast.LetStmt:
		return s.Debug.Attributes.Inline
	case *ast.AssignStmt:
		return s.Debug.Attributes.Inline
	case *ast.WhileStmt:
		return s.Debug.Attributes.Inline
	case *ast.BreakStmt:
		return s.Debug.Attributes.Inline
	case *ast.AsmStmt:
		return s.Debug.Attributes.Inline
	case *ast.DebugPrintStmt:
		return s.Debug.Attributes.Inline
	case *ast.AssertStmt:
		return s.Debug.Attributes.Inline
	case *ast.ExprStmt:
		return s.Debug.Attributes.Inline
	}
	return ast.InlineAuto
}

// stmtCodegenPrint reports stmt's own codegen_print attribute, before
// OR-ing with whatever the enclosing statement already propagated.
func stmtCodegenPrint(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.ReturnVoidStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.LetStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.AssignStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.WhileStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.BreakStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.AsmStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.DebugPrintStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.AssertStmt:
		return s.Debug.Attributes.CodegenPrint
	case *ast.ExprStmt:
		return s.Debug.Attributes.CodegenPrint
	}
	return false
}

// bindPattern introduces the bindings a Let pattern declares into the
// local scope, returning the bound names in declaration order and
// their assigned slots.
func (fc *funcChecker) bindPattern(pat ast.Pattern, t *types.Type) ([]string, []int, error) {
	switch p := pat.(type) {
	case *ast.NamePattern:
		if fc.c.importedNames[p.Name] {
			return nil, nil, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.ModShadowsImport, Phase: "module",
				Message: fmt.Sprintf("let binding %q shadows an imported name", p.Name), Pos: p.Pos,
			})
		}
		slot := fc.nextSlot
		fc.nextSlot++
		fc.locals = fc.locals.PushOne(p.Name, localBinding{Type: t, Slot: slot})
		return []string{p.Name}, []int{slot}, nil
	case *ast.TuplePattern:
		rep, ok := fc.c.tree.Representation(t)
		if !ok || rep.Kind != types.KTuple {
			return nil, nil, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
				Message: fmt.Sprintf("tuple pattern requires a tuple value, got %s", t), Pos: p.Pos,
			})
		}
		if len(rep.Elems) != len(p.Elems) {
			return nil, nil, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCArityMismatch, Phase: "typecheck",
				Message: fmt.Sprintf("tuple pattern has %d elements, value has %d", len(p.Elems), len(rep.Elems)), Pos: p.Pos,
			})
		}
		var names []string
		var slots []int
		for i, sub := range p.Elems {
			ns, ss, err := fc.bindPattern(sub, rep.Elems[i])
			if err != nil {
				return nil, nil, err
			}
			names = append(names, ns...)
			slots = append(slots, ss...)
		}
		return names, slots, nil
	}
	return nil, nil, fmt.Errorf("unsupported pattern %T", pat)
}

// mismatchErr builds a TCTypeMismatch report, enriching its message
// with the structured first_mismatch detail when one is available.
func (fc *funcChecker) mismatchErr(code string, want, got *types.Type, pos ast.Pos, summary string) error {
	msg := fmt.Sprintf("%s: expected %s, got %s", summary, want, got)
	if m := types.FirstMismatch(fc.c.tree, want, got, nil); m != nil {
		msg = fmt.Sprintf("%s (%s)", msg, m.Kind)
	}
	return errors.WrapReport(&errors.Report{
		Schema: "mini.diagnostic/v1", Code: code, Phase: "typecheck", Message: msg, Pos: pos,
	})
}

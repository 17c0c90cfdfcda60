package flow

import (
	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/typedast"
)

// reachability walks one statement sequence looking for a terminal
// Return/ReturnVoid followed by more statements. If/IfLet branches are
// recursed into regardless (either arm can be the function's real exit
// point), everything else is recursed into via its own child statement
// lists so unreachable code nested inside a while/loop body is still
// caught.
func reachability(body []typedast.TypedStmtNode) []*errors.Report {
	var warnings []*errors.Report
	var terminal, firstUnreached, lastUnreached ast.Pos
	hasUnreached := false

	for i := range body {
		s := &body[i]
		if s.Return != nil || s.ReturnVoid != nil {
			if s.Return != nil {
				terminal = s.Return.Pos
			} else {
				terminal = *s.ReturnVoid
			}
			if i+1 < len(body) {
				hasUnreached = true
				firstUnreached = stmtPos(&body[i+1])
				lastUnreached = stmtPos(&body[len(body)-1])
			}
			break
		}
		if s.Expr != nil && s.Expr.If != nil {
			warnings = append(warnings, reachability(s.Expr.If.Then)...)
			warnings = append(warnings, reachability(s.Expr.If.Else)...)
			continue
		}
		if s.Expr != nil && s.Expr.IfLet != nil {
			warnings = append(warnings, reachability(s.Expr.IfLet.Then)...)
			warnings = append(warnings, reachability(s.Expr.IfLet.Else)...)
			continue
		}
		for _, child := range childBodies(s) {
			warnings = append(warnings, reachability(child)...)
		}
	}

	if !hasUnreached {
		return warnings
	}

	msg := "found unreachable statement"
	if firstUnreached != lastUnreached {
		msg = "found unreachable statements"
	}
	warnings = append(warnings, &errors.Report{
		Schema:  "mini.diagnostic/v1",
		Code:    errors.FLWUnreachable,
		Phase:   "flow",
		Message: msg,
		Pos:     firstUnreached,
		Data: map[string]any{
			"terminal_statement": terminal.String(),
			"first_unreachable":  firstUnreached.String(),
			"last_unreachable":   lastUnreached.String(),
		},
	})
	return warnings
}

// childBodies returns the nested statement lists a single statement may
// carry (a while loop's body, or an expression statement wrapping a
// loop), so reachability can be checked within them too.
func childBodies(s *typedast.TypedStmtNode) [][]typedast.TypedStmtNode {
	switch {
	case s.While != nil:
		return [][]typedast.TypedStmtNode{s.While.Body}
	case s.Expr != nil && s.Expr.Loop != nil:
		return [][]typedast.TypedStmtNode{s.Expr.Loop.Body}
	}
	return nil
}

func stmtPos(s *typedast.TypedStmtNode) ast.Pos {
	switch {
	case s.Return != nil:
		return s.Return.Pos
	case s.ReturnVoid != nil:
		return *s.ReturnVoid
	case s.Let != nil:
		return s.Let.Pos
	case s.Assign != nil:
		return s.Assign.Pos
	case s.While != nil:
		return s.While.Pos
	case s.Break != nil:
		return s.Break.Pos
	case s.DebugPrint != nil:
		return s.DebugPrint.Position()
	case s.Assert != nil:
		return s.Assert.Position()
	case s.Expr != nil:
		return s.Expr.Position()
	}
	return ast.Pos{}
}

// Reachability reports every span of statements that can never execute
// because an earlier Return/ReturnVoid in the same block always fires
// first.
func Reachability(body []typedast.TypedStmtNode) []*errors.Report {
	return reachability(body)
}

package flow

import (
	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/walker"
)

// varKey identifies one local-variable slot for liveness purposes.
// Only locals participate: globals have no single lexical owner scope
// to report "declared but unused" against.
type varKey struct{ slot int }

// unused is one flagged assignment: a value written to a local that is
// never read before either another write overwrites it or the
// enclosing scope ends.
type unused struct {
	slot int
	pos  ast.Pos
}

// liveSet is the mutable state threaded through one call to liveliness:
// the variables alive (written, not yet read) in the current scope, the
// ones reborn (written again before being read), the ones born (first
// declared) here, the ones this scope has killed (read) at least once,
// and the ones rescued from killed-propagation because they belong to
// an enclosing scope observed for the first time here.
type liveSet struct {
	alive  map[varKey]ast.Pos
	reborn map[varKey]ast.Pos
	born   map[varKey]bool
	killed map[varKey]bool
	rescue map[varKey]bool
}

func newLiveSet() *liveSet {
	return &liveSet{
		alive:  map[varKey]ast.Pos{},
		reborn: map[varKey]ast.Pos{},
		born:   map[varKey]bool{},
		killed: map[varKey]bool{},
		rescue: map[varKey]bool{},
	}
}

// merge folds a child scope's (killed, reborn) result into ls, the way
// the original's `process!` macro does: anything the child killed stops
// being alive/reborn here; anything reborn there becomes alive here if
// it was born in this scope, otherwise it's reborn here too.
func (ls *liveSet) merge(childKilled map[varKey]bool, childReborn map[varKey]ast.Pos) {
	for id := range childKilled {
		delete(ls.alive, id)
		delete(ls.reborn, id)
	}
	for id, loc := range childReborn {
		if ls.born[id] {
			ls.alive[id] = loc
		} else {
			ls.reborn[id] = loc
		}
	}
	for id := range childKilled {
		ls.killed[id] = true
	}
}

func cloneReborn(m map[varKey]ast.Pos) map[varKey]ast.Pos {
	out := make(map[varKey]ast.Pos, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneKilled(m map[varKey]bool) map[varKey]bool {
	out := make(map[varKey]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// liveliness walks one sibling list (a statement block, or a synthetic
// list of expression children) and returns the set of locals it read
// (killed) and the set it wrote without a following read (reborn),
// collecting every "assigned but never subsequently read" problem along
// the way. loopPass requests the original's one-shot re-walk of a
// while/loop body so an assignment near the end of one iteration gets
// credit for being read at the top of the next.
func liveliness(nodes []walker.Node, problems *[]unused, loopPass bool) (map[varKey]bool, map[varKey]ast.Pos) {
	ls := newLiveSet()

	for i := range nodes {
		n := &nodes[i]
		repeat := false
		handled := false

		switch {
		case n.Kind == walker.KindStatement && n.Stmt != nil && n.Stmt.Let != nil:
			handled = true
			let := n.Stmt.Let
			ck, cr := liveliness(exprNodes(let.Value), problems, false)
			ls.merge(ck, cr)
			for _, slot := range let.Slots {
				id := varKey{slot}
				if ls.born[id] {
					if loc, ok := ls.alive[id]; ok {
						*problems = append(*problems, unused{id.slot, loc})
					}
				}
				if !has(ls.alive, id) && !ls.born[id] && !ls.killed[id] {
					ls.rescue[id] = true
				}
				ls.born[id] = true
				ls.alive[id] = let.Pos
			}

		case n.Kind == walker.KindStatement && n.Stmt != nil && n.Stmt.Assign != nil && n.Stmt.Assign.Kind == typedast.VarLocal:
			handled = true
			asg := n.Stmt.Assign
			ck, cr := liveliness(exprNodes(asg.Value), problems, false)
			ls.merge(ck, cr)
			id := varKey{asg.Slot}
			if loc, ok := ls.alive[id]; ok {
				*problems = append(*problems, unused{id.slot, loc})
			}
			if !ls.born[id] {
				ls.reborn[id] = asg.Pos
			}
			if !has(ls.alive, id) && !ls.born[id] && !ls.killed[id] {
				ls.rescue[id] = true
			}
			ls.alive[id] = asg.Pos

		case n.Kind == walker.KindStatement && n.Stmt != nil && n.Stmt.While != nil:
			repeat = true

		case n.Kind == walker.KindStatement && n.Stmt != nil && n.Stmt.Break != nil:
			handled = true
			ck, cr := liveliness(exprNodes(n.Stmt.Break.Value), problems, false)
			ls.merge(ck, cr)

		case n.Kind == walker.KindExpression && n.Expr != nil && n.Expr.Var != nil && n.Expr.Var.Kind == typedast.VarLocal:
			id := varKey{n.Expr.Var.Slot}
			ls.killed[id] = true
			delete(ls.alive, id)
			delete(ls.reborn, id)

		case n.Kind == walker.KindExpression && n.Expr != nil && n.Expr.IfLet != nil:
			handled = true
			iflet := n.Expr.IfLet
			ifKilled, ifReborn := map[varKey]bool{}, map[varKey]ast.Pos{}
			extend(&ifKilled, &ifReborn, exprNodes(iflet.Option), problems, false)

			bodyNodes := append([]walker.Node{{Kind: walker.KindStatement, Stmt: &typedast.TypedStmtNode{
				Let: &typedast.TypedLet{Names: []string{iflet.Name}, Slots: []int{iflet.Slot}, Value: &typedast.TypedExprNode{}, Pos: iflet.Pos},
			}}}, stmtNodes(iflet.Then)...)
			extend(&ifKilled, &ifReborn, bodyNodes, problems, false)
			extend(&ifKilled, &ifReborn, stmtNodes(iflet.Else), problems, false)
			ls.merge(ifKilled, ifReborn)

		case n.Kind == walker.KindExpression && n.Expr != nil && n.Expr.If != nil:
			handled = true
			ifExpr := n.Expr.If
			ifKilled, ifReborn := map[varKey]bool{}, map[varKey]ast.Pos{}
			extend(&ifKilled, &ifReborn, exprNodes(ifExpr.Cond), problems, false)
			extend(&ifKilled, &ifReborn, stmtNodes(ifExpr.Then), problems, false)
			extend(&ifKilled, &ifReborn, stmtNodes(ifExpr.Else), problems, false)
			ls.merge(ifKilled, ifReborn)

		case n.Kind == walker.KindExpression && n.Expr != nil && n.Expr.Loop != nil:
			repeat = true
		}

		if handled {
			continue
		}
		ck, cr := liveliness(n.Children(), problems, repeat)
		ls.merge(ck, cr)
	}

	if loopPass {
		for i := range nodes {
			n := &nodes[i]
			repeat := (n.Kind == walker.KindStatement && n.Stmt != nil && n.Stmt.While != nil) ||
				(n.Kind == walker.KindExpression && n.Expr != nil && n.Expr.Loop != nil)

			if n.Kind == walker.KindExpression && n.Expr != nil && n.Expr.Var != nil && n.Expr.Var.Kind == typedast.VarLocal {
				id := varKey{n.Expr.Var.Slot}
				if !ls.born[id] {
					delete(ls.alive, id)
					delete(ls.reborn, id)
				}
			}

			var discard []unused
			childKilled, _ := liveliness(n.Children(), &discard, repeat)
			for id := range childKilled {
				if !ls.born[id] {
					delete(ls.alive, id)
					delete(ls.reborn, id)
				}
			}
		}
	}

	for id, loc := range ls.alive {
		if ls.born[id] {
			*problems = append(*problems, unused{id.slot, loc})
		}
	}
	for id := range ls.rescue {
		delete(ls.killed, id)
	}

	return ls.killed, ls.reborn
}

func extend(killed *map[varKey]bool, reborn *map[varKey]ast.Pos, nodes []walker.Node, problems *[]unused, loopPass bool) {
	ck, cr := liveliness(nodes, problems, loopPass)
	for id := range ck {
		(*killed)[id] = true
	}
	for id, loc := range cr {
		(*reborn)[id] = loc
	}
}

func has(m map[varKey]ast.Pos, id varKey) bool {
	_, ok := m[id]
	return ok
}

func exprNodes(exprs ...*typedast.TypedExprNode) []walker.Node {
	var out []walker.Node
	for _, e := range exprs {
		if e != nil {
			out = append(out, walker.Node{Kind: walker.KindExpression, Expr: e})
		}
	}
	return out
}

func stmtNodes(stmts []typedast.TypedStmtNode) []walker.Node {
	out := make([]walker.Node, len(stmts))
	for i := range stmts {
		out[i] = walker.Node{Kind: walker.KindStatement, Stmt: &stmts[i]}
	}
	return out
}

// Liveness runs the liveness analysis over fn's body, returning the
// FLW003/FLW004 warnings for values assigned but never read: unused
// local assignments within the body, plus unused or write-only
// parameters (skipped when the parameter's name starts with "_", the
// intentional-non-use convention).
func Liveness(fn *typedast.TypedFunc) []*errors.Report {
	var problems []unused
	killed, reborn := liveliness(stmtNodes(fn.Body), &problems, false)

	var warnings []*errors.Report
	for i, name := range fn.Args {
		if name == "" || name[0] == '_' {
			continue
		}
		id := varKey{i}
		if !killed[id] {
			warnings = append(warnings, &errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.FLWUnusedParameter, Phase: "flow",
				Message: "function " + fn.Name + "'s argument " + name + " is declared but never used",
				Pos:     fn.Pos,
			})
		}
		if loc, ok := reborn[id]; ok {
			warnings = append(warnings, &errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.FLWUnusedAssignment, Phase: "flow",
				Message: "function " + fn.Name + "'s argument " + name + " is assigned but never used",
				Pos:     loc,
			})
		}
	}

	for _, p := range problems {
		name := slotName(fn, p.slot)
		if name != "" && name[0] == '_' {
			continue
		}
		warnings = append(warnings, &errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.FLWUnusedAssignment, Phase: "flow",
			Message: "value " + name + " is assigned but never used",
			Pos:     p.pos,
		})
	}
	return warnings
}

// slotName resolves a slot back to the source name it was declared
// with, for diagnostics; parameters are slots 0..len(Args)-1 and every
// Let binding introduces a fresh slot beyond that range, so this walks
// the body looking for the matching Let.
func slotName(fn *typedast.TypedFunc, slot int) string {
	if slot < len(fn.Args) {
		return fn.Args[slot]
	}
	var found string
	var walk func(stmts []typedast.TypedStmtNode)
	walk = func(stmts []typedast.TypedStmtNode) {
		for i := range stmts {
			s := &stmts[i]
			if s.Let != nil {
				for j, sl := range s.Let.Slots {
					if sl == slot {
						found = s.Let.Names[j]
					}
				}
			}
			for _, child := range childBodies(s) {
				walk(child)
			}
			if s.Expr != nil && s.Expr.If != nil {
				walk(s.Expr.If.Then)
				walk(s.Expr.If.Else)
			}
			if s.Expr != nil && s.Expr.IfLet != nil {
				walk(s.Expr.IfLet.Then)
				walk(s.Expr.IfLet.Else)
			}
		}
	}
	walk(fn.Body)
	return found
}

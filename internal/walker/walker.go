// Package walker implements the uniform AST-walking framework the
// checker, flow analyses, and inliner all share: every typed node is
// wrapped as a walker.Node, exposes its direct Children and an IsPure
// flag, and RecursiveApply performs the same pre-order, clone-per-child
// traversal as the original compiler's `recursive_apply` (see
// _examples/original_source/src/compile/typecheck.rs).
package walker

import (
	"github.com/mini-lang/minic/internal/typedast"
)

// Kind discriminates which payload a Node carries.
type Kind int

const (
	KindStatement Kind = iota
	KindExpression
	KindStructField
	KindNone // a node with no further structure (leaf placeholder)
)

// Node is a mutable reference to any node in a typed AST, mirroring the
// original's four-way TypeCheckedNode sum (Statement|Expression|
// StructField|Type — Type is folded into KindNone here since this
// front-end's type nodes carry no further walkable structure once
// resolved).
type Node struct {
	Kind  Kind
	Stmt  *typedast.TypedStmtNode
	Expr  *typedast.TypedExprNode
	Field *typedast.TypedStructFieldInit
}

// Children returns n's direct child nodes in the same order the
// original's child_nodes() would visit them.
func (n Node) Children() []Node {
	switch n.Kind {
	case KindStatement:
		return stmtChildren(n.Stmt)
	case KindExpression:
		return exprChildren(n.Expr)
	case KindStructField:
		if n.Field == nil || n.Field.Value == nil {
			return nil
		}
		return []Node{{Kind: KindExpression, Expr: n.Field.Value}}
	}
	return nil
}

func stmtChildren(s *typedast.TypedStmtNode) []Node {
	if s == nil {
		return nil
	}
	var out []Node
	expr := func(e *typedast.TypedExprNode) {
		if e != nil {
			out = append(out, Node{Kind: KindExpression, Expr: e})
		}
	}
	body := func(stmts []typedast.TypedStmtNode) {
		for i := range stmts {
			out = append(out, Node{Kind: KindStatement, Stmt: &stmts[i]})
		}
	}
	switch {
	case s.Return != nil:
		expr(s.Return.Value)
	case s.Let != nil:
		expr(s.Let.Value)
	case s.Assign != nil:
		expr(s.Assign.Value)
	case s.While != nil:
		expr(s.While.Cond)
		body(s.While.Body)
	case s.Break != nil:
		expr(s.Break.Value)
	case s.DebugPrint != nil:
		expr(s.DebugPrint)
	case s.Assert != nil:
		expr(s.Assert)
	case s.Expr != nil:
		expr(s.Expr)
	}
	return out
}

func exprChildren(e *typedast.TypedExprNode) []Node {
	if e == nil {
		return nil
	}
	var out []Node
	expr := func(c *typedast.TypedExprNode) {
		if c != nil {
			out = append(out, Node{Kind: KindExpression, Expr: c})
		}
	}
	body := func(stmts []typedast.TypedStmtNode) {
		for i := range stmts {
			out = append(out, Node{Kind: KindStatement, Stmt: &stmts[i]})
		}
	}
	switch {
	case e.TupleRef != nil:
		expr(e.TupleRef.Tuple)
	case e.DotRef != nil:
		expr(e.DotRef.Struct)
	case e.Call != nil:
		expr(e.Call.Callee)
		for _, a := range e.Call.Args {
			expr(a)
		}
	case e.ArrayMapRef != nil:
		expr(e.ArrayMapRef.Container)
		expr(e.ArrayMapRef.Key)
	case e.ArrayMapMod != nil:
		expr(e.ArrayMapMod.Container)
		expr(e.ArrayMapMod.Key)
		expr(e.ArrayMapMod.Value)
	case e.StructInit != nil:
		for _, f := range e.StructInit.Fields {
			expr(f.Value)
		}
	case e.Tuple != nil:
		for _, el := range e.Tuple.Elems {
			expr(el)
		}
	case e.Cast != nil:
		expr(e.Cast.Value)
	case e.Try != nil:
		expr(e.Try.Value)
	case e.If != nil:
		expr(e.If.Cond)
		body(e.If.Then)
		body(e.If.Else)
	case e.IfLet != nil:
		expr(e.IfLet.Option)
		body(e.IfLet.Then)
		body(e.IfLet.Else)
	case e.Loop != nil:
		body(e.Loop.Body)
	case e.Bin != nil:
		expr(e.Bin.Left)
		expr(e.Bin.Right)
	case e.Un != nil:
		expr(e.Un.Operand)
	case e.Logical != nil:
		expr(e.Logical.Left)
		expr(e.Logical.Right)
	case e.Ternary != nil:
		expr(e.Ternary.Cond)
		expr(e.Ternary.Then)
		expr(e.Ternary.Else)
	case e.Trinary != nil:
		expr(e.Trinary.Arg1)
		expr(e.Trinary.Arg2)
		expr(e.Trinary.Arg3)
	case e.CodeBlock != nil:
		body(e.CodeBlock.Body)
		expr(e.CodeBlock.Result)
	}
	return out
}

// IsPure reports whether n has no write/view side effects — a call to
// a function whose declared attributes include write or view is
// impure; every other node defers to whether its children are pure.
// Statement/Expression kinds that embed a call check the callee's
// resolved Func type purity.
func (n Node) IsPure() bool {
	if n.Kind == KindExpression && n.Expr != nil && n.Expr.Call != nil {
		callee := n.Expr.Call.Callee.ResultType()
		if callee != nil && (callee.FuncProps.View || callee.FuncProps.Write) {
			return false
		}
	}
	for _, c := range n.Children() {
		if !c.IsPure() {
			return false
		}
	}
	return true
}

// Visitor is the function signature RecursiveApply threads through the
// tree: it receives the current node along with read-only state and a
// clone of the mutable state visible to this node's siblings, and
// returns whether to recurse into the node's children.
type Visitor[S any, MS any] func(node *Node, state S, mutState *MS) bool

// Cloner produces an independent copy of a mutable-state value so that
// sibling subtrees cannot observe each other's mutations — mirroring
// the original's `(*mut_state).clone()` before each child visit.
type Cloner[MS any] func(MS) MS

// RecursiveApply walks the nodes below n pre-order, calling visit at
// each of them (n itself is not visited). Before
// descending into a child, mutState is cloned via clone so mutations
// made while visiting one child are invisible to its siblings (but
// visible to that child's own descendants).
func RecursiveApply[S any, MS any](n Node, visit Visitor[S, MS], state S, mutState MS, clone Cloner[MS]) {
	for _, child := range n.Children() {
		childState := clone(mutState)
		if visit(&child, state, &childState) {
			RecursiveApply(child, visit, state, childState, clone)
		}
	}
}

// Package inline implements the inliner (spec.md §4.6): it rewrites
// direct calls to known functions into synthesized code blocks
// according to a per-call-site/per-callee inlining attribute and a
// selectable global heuristic, following the original compiler's
// `fn inline`/`fn strip_returns` (see
// _examples/original_source/src/compile/typecheck.rs).
package inline

import (
	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/trace"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
	"github.com/mini-lang/minic/internal/walker"
)

// Heuristic selects which inlining modes are inlined by default when a
// call site/callee pair leaves the decision at Auto (§4.6).
type Heuristic int

const (
	// HeuristicAll inlines every call unless explicitly marked Never.
	HeuristicAll Heuristic = iota
	// HeuristicNone inlines only calls explicitly marked Always.
	HeuristicNone
)

// EffectiveMode combines a call site's own inlining attribute with its
// callee's declared attribute (§4.6: "site.mode ∧ callee.mode"). Auto
// is the identity element; an explicit mode on either side wins, with
// the site's mode checked first, matching the original's
// `InliningMode::and`.
func EffectiveMode(site, callee ast.InlineMode) ast.InlineMode {
	if site == ast.InlineAuto {
		return callee
	}
	return site
}

// shouldSkip reports whether heuristic refuses to inline a call whose
// effective mode is mode.
func shouldSkip(heuristic Heuristic, mode ast.InlineMode) bool {
	switch heuristic {
	case HeuristicAll:
		return mode == ast.InlineNever
	case HeuristicNone:
		return mode != ast.InlineAlways
	}
	return true
}

// Table maps a function name to its checked, typed definition, so the
// inliner can look up a call's callee body by the name its TypedVar
// carries.
type Table map[string]*typedast.TypedFunc

// NewTable builds a lookup table from a checked program's functions.
func NewTable(funcs []*typedast.TypedFunc) Table {
	t := make(Table, len(funcs))
	for _, f := range funcs {
		t[f.Name] = f
	}
	return t
}

// recursionStack is the mutable state `recursive_apply` threads down
// the tree (§4.6, §9): the names of callees currently being inlined on
// the current path, so a recursive function is never spliced into its
// own body.
type recursionStack []string

func cloneStack(s recursionStack) recursionStack {
	out := make(recursionStack, len(s))
	copy(out, s)
	return out
}

func (s recursionStack) has(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// Inliner rewrites calls in place over a Table of checked functions.
type Inliner struct {
	table     Table
	heuristic Heuristic
	tracer    *trace.Tracer
}

// New creates an Inliner that resolves callees against table using
// heuristic to decide undecided (Auto) call sites.
func New(table Table, heuristic Heuristic) *Inliner {
	return &Inliner{table: table, heuristic: heuristic}
}

// SetTracer attaches a code-gen-trace tracer; nil (the default)
// disables the "inline rewrite" trace line (§9).
func (in *Inliner) SetTracer(t *trace.Tracer) {
	in.tracer = t
}

// Program rewrites every function's body in place.
func (in *Inliner) Program(prog *typedast.TypedProgram) {
	for _, fn := range prog.Funcs {
		in.Func(fn)
	}
}

// Func rewrites one function's body in place. Every top-level
// statement is walked as its own RecursiveApply root so a call
// appearing directly at the top level is reachable the same way a
// nested one is (RecursiveApply only visits a root's children, never
// the root itself).
func (in *Inliner) Func(fn *typedast.TypedFunc) {
	for i := range fn.Body {
		root := walker.Node{Kind: walker.KindStatement, Stmt: &fn.Body[i]}
		walker.RecursiveApply(root, in.visit, struct{}{}, recursionStack(nil), cloneStack)
	}
}

func (in *Inliner) visit(node *walker.Node, _ struct{}, stack *recursionStack) bool {
	if node.Kind != walker.KindExpression || node.Expr == nil || node.Expr.Call == nil {
		return true
	}
	call := node.Expr.Call
	callee, ok := calleeOf(call)
	if !ok {
		return true
	}
	fn, ok := in.table[callee]
	if !ok {
		return true
	}
	mode := EffectiveMode(call.SiteInline, fn.Inline)
	if shouldSkip(in.heuristic, mode) {
		return true
	}
	if stack.has(callee) {
		return true
	}
	*stack = append(*stack, callee)
	if call.Trace {
		in.tracer.InlineRewrite(callee, call.Pos)
	}
	*node.Expr = *buildInlineBlock(fn, call.Args)
	return true
}

func calleeOf(call *typedast.TypedCall) (string, bool) {
	if call.Callee == nil || call.Callee.Var == nil || call.Callee.Var.Kind != typedast.VarFunc {
		return "", false
	}
	return call.Callee.Var.Name, true
}

// buildInlineBlock constructs the CodeBlock that replaces a call to fn
// with args (§4.6 step 4): a prelude binding the call's arguments to
// fn's parameter names as a single tuple-destructuring let, followed
// by fn's body with its trailing Return peeled off as the block's
// result expression and every remaining Return/Try rewritten (via
// StripReturns) into a Break/IfLet targeting the new block's "_inline"
// label.
func buildInlineBlock(fn *typedast.TypedFunc, args []*typedast.TypedExprNode) *typedast.TypedExprNode {
	body := make([]typedast.TypedStmtNode, 0, len(fn.Body)+1)
	if len(fn.Args) > 0 {
		slots := make([]int, len(fn.Args))
		for i := range fn.Args {
			slots[i] = i
		}
		body = append(body, typedast.TypedStmtNode{Let: &typedast.TypedLet{
			Names: append([]string{}, fn.Args...),
			Slots: slots,
			Value: &typedast.TypedExprNode{Tuple: &typedast.TypedTuple{
				TypedExpr: typedast.TypedExpr{Type: types.NewTuple(fn.ArgTypes...)},
				Elems:     cloneExprs(args),
			}},
		}})
	}

	cloned := cloneStmts(fn.Body)
	var result *typedast.TypedExprNode
	if n := len(cloned); n > 0 && cloned[n-1].Return != nil {
		result = cloned[n-1].Return.Value
		cloned = cloned[:n-1]
	}
	body = append(body, cloned...)

	block := &typedast.TypedCodeBlock{
		TypedExpr: typedast.TypedExpr{Type: fn.ReturnType},
		Label:     "_inline",
		Body:      body,
		Result:    result,
	}
	StripReturns(block)
	return &typedast.TypedExprNode{CodeBlock: block}
}

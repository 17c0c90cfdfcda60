// Package typedast mirrors internal/ast one node at a time, adding the
// information the checker resolves: every expression carries its
// types.Type result, DotRef additionally carries the resolved struct
// slot, and binary/unary operators are specialized to the signed or
// unsigned variant the operand types require (§4.4).
package typedast

import (
	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/types"
)

// TypedNode is implemented by every typed AST node.
type TypedNode interface {
	Position() ast.Pos
}

// TypedExpr is the base embedded by every typed expression variant. It
// carries the expression's checked result type and its source span, so
// a caller holding any TypedExpr can ask "what type is this" without a
// type switch.
type TypedExpr struct {
	Type *types.Type
	Pos  ast.Pos
}

func (e TypedExpr) Position() ast.Pos { return e.Pos }
func (e TypedExpr) ResultType() *types.Type { return e.Type }

// TypedConst is a checked literal.
type TypedConst struct {
	TypedExpr
	Kind  ast.ConstKind
	Value interface{}
}

// TypedVarKind distinguishes the three things a bare identifier can
// resolve to, matching the §4.4/§9 lookup order (functions, then
// locals, then globals).
type TypedVarKind int

const (
	VarLocal TypedVarKind = iota
	VarGlobal
	VarFunc
)

// TypedVar is a resolved variable/function reference.
type TypedVar struct {
	TypedExpr
	Name string
	Kind TypedVarKind
	Slot int // local slot index, meaningful when Kind == VarLocal
}

// TypedTupleRef is a checked "e.N" tuple access.
type TypedTupleRef struct {
	TypedExpr
	Tuple *TypedExprNode
	Index int
}

// TypedDotRef is a checked "e.field" struct access. Slot is the
// resolved field index in the struct's declared field order and Arity
// is the struct's total field count — both needed by a future code
// generator to emit a fixed-offset access instead of a name lookup.
type TypedDotRef struct {
	TypedExpr
	Struct *TypedExprNode
	Field  string
	Slot   int
	Arity  int
}

// TypedCall is a checked function call. SiteInline is the inlining
// mode declared on the statement the call appears in (§3's per-node
// inline attribute, defaulting to Auto), captured here so the inliner
// doesn't need to re-walk the raw AST to find it. Trace carries the
// same statement's propagated codegen_print attribute (§9), so the
// inliner can emit a trace line when it rewrites this call without a
// second raw-AST pass.
type TypedCall struct {
	TypedExpr
	Callee     *TypedExprNode
	Args       []*TypedExprNode
	SiteInline ast.InlineMode
	Trace      bool
}

// TypedArrayOrMapRef is a checked "c[k]".
type TypedArrayOrMapRef struct {
	TypedExpr
	Container *TypedExprNode
	Key       *TypedExprNode
}

// TypedArrayOrMapMod is a checked "c[k] = v" expression form.
type TypedArrayOrMapMod struct {
	TypedExpr
	Container *TypedExprNode
	Key       *TypedExprNode
	Value     *TypedExprNode
}

// TypedStructFieldInit is one checked field of a struct literal.
type TypedStructFieldInit struct {
	Name  string
	Slot  int
	Value *TypedExprNode
}

// TypedStructInit is a checked struct literal.
type TypedStructInit struct {
	TypedExpr
	Fields []TypedStructFieldInit
}

// TypedTuple is a checked tuple literal.
type TypedTuple struct {
	TypedExpr
	Elems []*TypedExprNode
}

// TypedCastKind mirrors ast.CastKind.
type TypedCastKind = ast.CastKind

// TypedCast is a checked explicit cast of any of the four kinds.
type TypedCast struct {
	TypedExpr
	Kind  TypedCastKind
	Value *TypedExprNode
}

// TypedTry is a checked "e?" (§4.4: only legal in a function returning
// Option).
type TypedTry struct {
	TypedExpr
	Value *TypedExprNode
}

// TypedIf is a checked "if/else" expression.
type TypedIf struct {
	TypedExpr
	Cond *TypedExprNode
	Then []TypedStmtNode
	Else []TypedStmtNode
}

// TypedIfLet is a checked "if let" expression.
type TypedIfLet struct {
	TypedExpr
	Name   string
	Slot   int
	Option *TypedExprNode
	Then   []TypedStmtNode
	Else   []TypedStmtNode
}

// TypedLoop is a checked "loop { ... }" (result type is always Every).
type TypedLoop struct {
	TypedExpr
	Body []TypedStmtNode
}

// BinOpKind is the specialized (post-checking) operator set: the raw
// ast.BinOp is resolved to one of these once operand types are known
// (e.g. signed vs. unsigned comparison), per §4.4/§8.
type BinOpKind int

const (
	BinAddU BinOpKind = iota
	BinAddS
	BinSubU
	BinSubS
	BinMulU
	BinMulS
	BinDivU
	BinDivS
	BinModU
	BinModS
	BinLessU
	BinLessS
	BinGreaterU
	BinGreaterS
	BinLessEqU
	BinLessEqS
	BinGreaterEqU
	BinGreaterEqS
	BinEqual
	BinNotEqual
	BinBitAnd
	BinBitOr
	BinBitXor
	BinBufferGet
)

// TypedBin is a checked, specialized binary operator application. The
// checker leaves Const nil: when both operands are constants and the
// fold succeeds, checkBin returns a TypedConst node instead of a
// TypedBin. Cloning a TypedBin copies Const along with it.
type TypedBin struct {
	TypedExpr
	Op          BinOpKind
	Left, Right *TypedExprNode
	Const       *TypedConst
}

// TypedUn is a checked unary operator application.
type TypedUn struct {
	TypedExpr
	Op      ast.UnOp
	Operand *TypedExprNode
}

// TypedLogical is a checked short-circuit "||"/"&&".
type TypedLogical struct {
	TypedExpr
	Op          ast.LogicalOp
	Left, Right *TypedExprNode
}

// TypedTernary is a checked "c ? then : else".
type TypedTernary struct {
	TypedExpr
	Cond, Then, Else *TypedExprNode
}

// TrinaryOpKind is the specialized (post-checking) three-operand
// operator set, mirrored from ast.TrinaryOp the way BinOpKind mirrors
// ast.BinOp.
type TrinaryOpKind int

const (
	TernSetBuffer TrinaryOpKind = iota
)

// TypedTrinary is a checked, specialized three-operand operator
// application (currently only buffer-set, whose value operand has no
// slot in TypedBin).
type TypedTrinary struct {
	TypedExpr
	Op               TrinaryOpKind
	Arg1, Arg2, Arg3 *TypedExprNode
}

// TypedCodeBlock is a labeled sequence of statements producing an
// optional result value — the inliner's synthesized unit (§4.6): a
// call site's arguments become a prelude `let`, the callee's body
// follows, and Result carries the callee's trailing Return expression
// (nil when the callee returns Void). Break statements inside Body
// targeting Label unwind the block early with their own value, which
// is how strip_returns turns a callee's Return/Try into a local jump
// instead of a real function return.
type TypedCodeBlock struct {
	TypedExpr
	Label  string
	Body   []TypedStmtNode
	Result *TypedExprNode
}

// TypedExprNode is a closed sum over every typed expression variant,
// used wherever the raw AST held a plain ast.Expr. Exactly one field is
// non-nil.
type TypedExprNode struct {
	Const        *TypedConst
	Var          *TypedVar
	TupleRef     *TypedTupleRef
	DotRef       *TypedDotRef
	Call         *TypedCall
	ArrayMapRef  *TypedArrayOrMapRef
	ArrayMapMod  *TypedArrayOrMapMod
	StructInit   *TypedStructInit
	Tuple        *TypedTuple
	Cast         *TypedCast
	Try          *TypedTry
	If           *TypedIf
	IfLet        *TypedIfLet
	Loop         *TypedLoop
	Bin          *TypedBin
	Un           *TypedUn
	Logical      *TypedLogical
	Ternary      *TypedTernary
	Trinary      *TypedTrinary
	CodeBlock    *TypedCodeBlock
}

// ResultType returns the node's checked type regardless of which
// variant is populated.
func (n *TypedExprNode) ResultType() *types.Type {
	switch {
	case n.Const != nil:
		return n.Const.Type
	case n.Var != nil:
		return n.Var.Type
	case n.TupleRef != nil:
		return n.TupleRef.Type
	case n.DotRef != nil:
		return n.DotRef.Type
	case n.Call != nil:
		return n.Call.Type
	case n.ArrayMapRef != nil:
		return n.ArrayMapRef.Type
	case n.ArrayMapMod != nil:
		return n.ArrayMapMod.Type
	case n.StructInit != nil:
		return n.StructInit.Type
	case n.Tuple != nil:
		return n.Tuple.Type
	case n.Cast != nil:
		return n.Cast.Type
	case n.Try != nil:
		return n.Try.Type
	case n.If != nil:
		return n.If.Type
	case n.IfLet != nil:
		return n.IfLet.Type
	case n.Loop != nil:
		return n.Loop.Type
	case n.Bin != nil:
		return n.Bin.Type
	case n.Un != nil:
		return n.Un.Type
	case n.Logical != nil:
		return n.Logical.Type
	case n.Ternary != nil:
		return n.Ternary.Type
	case n.Trinary != nil:
		return n.Trinary.Type
	case n.CodeBlock != nil:
		return n.CodeBlock.Type
	}
	return nil
}

// Position returns the node's source span regardless of which variant
// is populated.
func (n *TypedExprNode) Position() ast.Pos {
	switch {
	case n.Const != nil:
		return n.Const.Pos
	case n.Var != nil:
		return n.Var.Pos
	case n.TupleRef != nil:
		return n.TupleRef.Pos
	case n.DotRef != nil:
		return n.DotRef.Pos
	case n.Call != nil:
		return n.Call.Pos
	case n.ArrayMapRef != nil:
		return n.ArrayMapRef.Pos
	case n.ArrayMapMod != nil:
		return n.ArrayMapMod.Pos
	case n.StructInit != nil:
		return n.StructInit.Pos
	case n.Tuple != nil:
		return n.Tuple.Pos
	case n.Cast != nil:
		return n.Cast.Pos
	case n.Try != nil:
		return n.Try.Pos
	case n.If != nil:
		return n.If.Pos
	case n.IfLet != nil:
		return n.IfLet.Pos
	case n.Loop != nil:
		return n.Loop.Pos
	case n.Bin != nil:
		return n.Bin.Pos
	case n.Un != nil:
		return n.Un.Pos
	case n.Logical != nil:
		return n.Logical.Pos
	case n.Ternary != nil:
		return n.Ternary.Pos
	case n.Trinary != nil:
		return n.Trinary.Pos
	case n.CodeBlock != nil:
		return n.CodeBlock.Pos
	}
	return ast.Pos{}
}

// TypedStmtNode mirrors ast's statement sum post-checking.
type TypedStmtNode struct {
	Return       *TypedReturn
	ReturnVoid   *ast.Pos
	Let          *TypedLet
	Assign       *TypedAssign
	While        *TypedWhile
	Break        *TypedBreak
	DebugPrint   *TypedExprNode
	Assert       *TypedExprNode
	Expr         *TypedExprNode
}

// TypedReturn is a checked "return e;".
type TypedReturn struct {
	Value *TypedExprNode
	Pos   ast.Pos
}

// TypedLet is a checked "let pat = e;". Slots gives the local slot
// assigned to each name the pattern binds, in pattern-declaration order
// (a single slot for a NamePattern, one per element for a TuplePattern).
type TypedLet struct {
	Names []string
	Slots []int
	Value *TypedExprNode
	Pos   ast.Pos
}

// TypedAssign is a checked "name = e;".
type TypedAssign struct {
	Name string
	Slot int
	Kind TypedVarKind
	Value *TypedExprNode
	Pos   ast.Pos
}

// TypedWhile is a checked "while c { ... }".
type TypedWhile struct {
	Cond *TypedExprNode
	Body []TypedStmtNode
	Pos  ast.Pos
}

// TypedBreak is a checked "break e? label?;".
type TypedBreak struct {
	Value *TypedExprNode // nil means Unit
	Label string
	Pos   ast.Pos
}

// TypedFunc is a fully checked function: its typed body plus the
// resolved parameter slots. Inline is the function's own declared
// inlining attribute (§3), consulted by the inliner alongside each
// call site's SiteInline.
type TypedFunc struct {
	Name       string
	Args       []string
	ArgTypes   []*types.Type
	ReturnType *types.Type
	View       bool
	Write      bool
	Inline     ast.InlineMode
	Body       []TypedStmtNode
	Pos        ast.Pos
}

// TypedProgram is the output of checking one module: every function's
// typed body, ready for flow analysis and inlining.
type TypedProgram struct {
	ModulePath string
	Funcs      []*TypedFunc
}

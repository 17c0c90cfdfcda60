package check

import (
	"fmt"
	"math/big"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

// wordBits is the machine word size constants are folded against,
// matching the VM's 256-bit integer representation.
const wordBits = 256

var wordModulus = new(big.Int).Lsh(big.NewInt(1), wordBits)
var wordHalf = new(big.Int).Lsh(big.NewInt(1), wordBits-1)

func wrapUint(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, wordModulus)
}

// wrapInt normalizes v into the word's two's-complement signed range
// [-2^255, 2^255).
func wrapInt(v *big.Int) *big.Int {
	m := new(big.Int).Mod(v, wordModulus)
	if m.Cmp(wordHalf) >= 0 {
		m.Sub(m, wordModulus)
	}
	return m
}

// isCommutativeFoldOp reports whether op benefits from having its
// constant operand swapped to the right when only one side folds,
// mirroring the code generator's immediate-operand convention.
func isCommutativeFoldOp(op ast.BinOp) bool {
	switch op {
	case ast.OpAdd, ast.OpMul, ast.OpEqual, ast.OpNotEqual, ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		return true
	}
	return false
}

// flippedComparison returns the operator obtained by swapping operand
// order (a < b  <=>  b > a), and whether op is such a comparison.
func flippedComparison(op ast.BinOp) (ast.BinOp, bool) {
	switch op {
	case ast.OpLess:
		return ast.OpGreater, true
	case ast.OpGreater:
		return ast.OpLess, true
	case ast.OpLessEq:
		return ast.OpGreaterEq, true
	case ast.OpGreaterEq:
		return ast.OpLessEq, true
	}
	return op, false
}

// checkBin type-checks a raw binary operator application: it folds
// constant operands, otherwise reorders a lone constant operand onto
// the right (flipping a comparison operator accordingly) before
// specializing the operator into its signed/unsigned BinOpKind (§4.4,
// §8).
func (fc *funcChecker) checkBin(e *ast.BinExpr) (*typedast.TypedExprNode, error) {
	left, err := fc.checkExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := fc.checkExpr(e.Right)
	if err != nil {
		return nil, err
	}
	op := e.Op

	lv, lt, lIsConst := bigIntConst(left)
	rv, rt, rIsConst := bigIntConst(right)

	if lIsConst && rIsConst {
		folded, err := foldBinaryConst(op, lv, lt, rv, rt, e.Pos)
		if err != nil {
			return nil, err
		}
		if folded != nil {
			return &typedast.TypedExprNode{Const: folded}, nil
		}
	} else if lIsConst && !rIsConst {
		if isCommutativeFoldOp(op) {
			left, right = right, left
		} else if flipped, ok := flippedComparison(op); ok {
			op = flipped
			left, right = right, left
		}
	}

	lrep, ok1 := fc.c.tree.Representation(left.ResultType())
	rrep, ok2 := fc.c.tree.Representation(right.ResultType())
	if !ok1 || !ok2 {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck",
			Message: "could not resolve operand type", Pos: e.Pos,
		})
	}

	kind, resultType, ok := specializeBinOp(op, lrep, rrep)
	if !ok {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCInvalidOperator, Phase: "typecheck",
			Message: fmt.Sprintf("invalid argument types to binary operator: %s and %s", lrep, rrep), Pos: e.Pos,
		})
	}
	return &typedast.TypedExprNode{Bin: &typedast.TypedBin{
		TypedExpr: typedExprOf(resultType, e.Pos), Op: kind, Left: left, Right: right,
	}}, nil
}

// specializeBinOp maps a raw operator plus its (already-resolved)
// operand representations onto a BinOpKind and result type, exactly
// matching typecheck_binary_op's per-op table.
func specializeBinOp(op ast.BinOp, l, r *types.Type) (typedast.BinOpKind, *types.Type, bool) {
	switch op {
	case ast.OpAdd:
		return pickArith(l, r, typedast.BinAddU, typedast.BinAddS)
	case ast.OpSub:
		return pickArith(l, r, typedast.BinSubU, typedast.BinSubS)
	case ast.OpMul:
		return pickArith(l, r, typedast.BinMulU, typedast.BinMulS)
	case ast.OpDiv:
		return pickArith(l, r, typedast.BinDivU, typedast.BinDivS)
	case ast.OpMod:
		return pickArith(l, r, typedast.BinModU, typedast.BinModS)
	case ast.OpLess:
		return pickCompare(l, r, typedast.BinLessU, typedast.BinLessS)
	case ast.OpGreater:
		return pickCompare(l, r, typedast.BinGreaterU, typedast.BinGreaterS)
	case ast.OpLessEq:
		return pickCompare(l, r, typedast.BinLessEqU, typedast.BinLessEqS)
	case ast.OpGreaterEq:
		return pickCompare(l, r, typedast.BinGreaterEqU, typedast.BinGreaterEqS)
	case ast.OpEqual, ast.OpNotEqual:
		if l.Kind == types.KVoid || r.Kind == types.KVoid {
			return 0, nil, false
		}
		if l.Kind != types.KAny && r.Kind != types.KAny && !l.Equal(r) {
			return 0, nil, false
		}
		if op == ast.OpEqual {
			return typedast.BinEqual, types.Bool, true
		}
		return typedast.BinNotEqual, types.Bool, true
	case ast.OpBitAnd:
		return pickBitwise(l, r, typedast.BinBitAnd)
	case ast.OpBitOr:
		return pickBitwise(l, r, typedast.BinBitOr)
	case ast.OpBitXor:
		return pickBitwise(l, r, typedast.BinBitXor)
	case ast.OpBufferGet:
		if l.Kind == types.KUint && r.Kind == types.KBuffer {
			return typedast.BinBufferGet, types.Uint, true
		}
		return 0, nil, false
	}
	return 0, nil, false
}

// checkTrinary type-checks a raw three-operand operator application.
// BufferSet's value operand has no slot in BinExpr, so unlike the other
// operators it gets its own node and its own typecheck path, mirroring
// typecheck_trinary_op's separation from typecheck_binary_op.
func (fc *funcChecker) checkTrinary(e *ast.TrinaryExpr) (*typedast.TypedExprNode, error) {
	arg1, err := fc.checkExpr(e.Arg1)
	if err != nil {
		return nil, err
	}
	arg2, err := fc.checkExpr(e.Arg2)
	if err != nil {
		return nil, err
	}
	arg3, err := fc.checkExpr(e.Arg3)
	if err != nil {
		return nil, err
	}

	rep1, ok1 := fc.c.tree.Representation(arg1.ResultType())
	rep2, ok2 := fc.c.tree.Representation(arg2.ResultType())
	rep3, ok3 := fc.c.tree.Representation(arg3.ResultType())
	if !ok1 || !ok2 || !ok3 {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck",
			Message: "could not resolve operand type", Pos: e.Pos,
		})
	}

	kind, resultType, ok := specializeTrinaryOp(e.Op, rep1, rep2, rep3)
	if !ok {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCInvalidOperator, Phase: "typecheck",
			Message: fmt.Sprintf("invalid argument types to trinary operator: %s, %s and %s", rep1, rep2, rep3), Pos: e.Pos,
		})
	}
	return &typedast.TypedExprNode{Trinary: &typedast.TypedTrinary{
		TypedExpr: typedExprOf(resultType, e.Pos), Op: kind, Arg1: arg1, Arg2: arg2, Arg3: arg3,
	}}, nil
}

// specializeTrinaryOp maps a raw trinary operator plus its resolved
// operand representations onto a TrinaryOpKind and result type.
func specializeTrinaryOp(op ast.TrinaryOp, offset, value, buf *types.Type) (typedast.TrinaryOpKind, *types.Type, bool) {
	switch op {
	case ast.OpSetBuffer:
		if offset.Kind == types.KUint && value.Kind == types.KUint && buf.Kind == types.KBuffer {
			return typedast.TernSetBuffer, types.Buffer, true
		}
		return 0, nil, false
	}
	return 0, nil, false
}

func pickArith(l, r *types.Type, unsigned, signed typedast.BinOpKind) (typedast.BinOpKind, *types.Type, bool) {
	switch {
	case l.Kind == types.KUint && r.Kind == types.KUint:
		return unsigned, types.Uint, true
	case l.Kind == types.KInt && r.Kind == types.KInt:
		return signed, types.Int, true
	}
	return 0, nil, false
}

func pickCompare(l, r *types.Type, unsigned, signed typedast.BinOpKind) (typedast.BinOpKind, *types.Type, bool) {
	switch {
	case l.Kind == types.KUint && r.Kind == types.KUint:
		return unsigned, types.Bool, true
	case l.Kind == types.KInt && r.Kind == types.KInt:
		return signed, types.Bool, true
	}
	return 0, nil, false
}

func pickBitwise(l, r *types.Type, kind typedast.BinOpKind) (typedast.BinOpKind, *types.Type, bool) {
	switch {
	case l.Kind == types.KUint && r.Kind == types.KUint:
		return kind, types.Uint, true
	case l.Kind == types.KInt && r.Kind == types.KInt:
		return kind, types.Int, true
	case l.Kind == types.KBytes32 && r.Kind == types.KBytes32:
		return kind, types.Bytes32, true
	}
	return 0, nil, false
}

// foldBinaryConst evaluates op over two constant integer operands at
// compile time, returning nil (no fold) for operators that aren't
// arithmetic, comparison or bitwise over matching scalar kinds — those fall
// through to the ordinary specialization path, which will reject them
// with a proper diagnostic if they're otherwise invalid.
func foldBinaryConst(op ast.BinOp, lv *big.Int, lt *types.Type, rv *big.Int, rt *types.Type, pos ast.Pos) (*typedast.TypedConst, error) {
	matchU := lt.Kind == types.KUint && rt.Kind == types.KUint
	matchI := lt.Kind == types.KInt && rt.Kind == types.KInt
	if !matchU && !matchI {
		return nil, nil
	}
	constKind := ast.ConstUint
	if matchI {
		constKind = ast.ConstInt
	}
	wrap := wrapUint
	if matchI {
		wrap = wrapInt
	}

	switch op {
	case ast.OpAdd:
		return &typedast.TypedConst{TypedExpr: typedExprOf(lt, pos), Kind: constKind, Value: wrap(new(big.Int).Add(lv, rv))}, nil
	case ast.OpSub:
		diff := new(big.Int).Sub(lv, rv)
		if matchU && diff.Sign() < 0 {
			return nil, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCConstantArith, Phase: "typecheck",
				Message: "underflow on constant subtraction", Pos: pos,
			})
		}
		return &typedast.TypedConst{TypedExpr: typedExprOf(lt, pos), Kind: constKind, Value: wrap(diff)}, nil
	case ast.OpMul:
		return &typedast.TypedConst{TypedExpr: typedExprOf(lt, pos), Kind: constKind, Value: wrap(new(big.Int).Mul(lv, rv))}, nil
	case ast.OpDiv:
		if rv.Sign() == 0 {
			return nil, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCConstantArith, Phase: "typecheck",
				Message: "divide by constant zero", Pos: pos,
			})
		}
		var q *big.Int
		if matchI {
			q = new(big.Int).Quo(lv, rv)
		} else {
			q = new(big.Int).Div(lv, rv)
		}
		return &typedast.TypedConst{TypedExpr: typedExprOf(lt, pos), Kind: constKind, Value: wrap(q)}, nil
	case ast.OpMod:
		if rv.Sign() == 0 {
			return nil, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCConstantArith, Phase: "typecheck",
				Message: "divide by constant zero", Pos: pos,
			})
		}
		var m *big.Int
		if matchI {
			m = new(big.Int).Rem(lv, rv)
		} else {
			m = new(big.Int).Mod(lv, rv)
		}
		return &typedast.TypedConst{TypedExpr: typedExprOf(lt, pos), Kind: constKind, Value: wrap(m)}, nil
	case ast.OpLess:
		return &typedast.TypedConst{TypedExpr: typedExprOf(types.Bool, pos), Kind: ast.ConstBool, Value: lv.Cmp(rv) < 0}, nil
	case ast.OpGreater:
		return &typedast.TypedConst{TypedExpr: typedExprOf(types.Bool, pos), Kind: ast.ConstBool, Value: lv.Cmp(rv) > 0}, nil
	case ast.OpLessEq:
		return &typedast.TypedConst{TypedExpr: typedExprOf(types.Bool, pos), Kind: ast.ConstBool, Value: lv.Cmp(rv) <= 0}, nil
	case ast.OpGreaterEq:
		return &typedast.TypedConst{TypedExpr: typedExprOf(types.Bool, pos), Kind: ast.ConstBool, Value: lv.Cmp(rv) >= 0}, nil
	case ast.OpEqual:
		return &typedast.TypedConst{TypedExpr: typedExprOf(types.Bool, pos), Kind: ast.ConstBool, Value: lv.Cmp(rv) == 0}, nil
	case ast.OpNotEqual:
		return &typedast.TypedConst{TypedExpr: typedExprOf(types.Bool, pos), Kind: ast.ConstBool, Value: lv.Cmp(rv) != 0}, nil
	case ast.OpBitAnd:
		return &typedast.TypedConst{TypedExpr: typedExprOf(lt, pos), Kind: constKind, Value: wrap(new(big.Int).And(lv, rv))}, nil
	case ast.OpBitOr:
		return &typedast.TypedConst{TypedExpr: typedExprOf(lt, pos), Kind: constKind, Value: wrap(new(big.Int).Or(lv, rv))}, nil
	case ast.OpBitXor:
		return &typedast.TypedConst{TypedExpr: typedExprOf(lt, pos), Kind: constKind, Value: wrap(new(big.Int).Xor(lv, rv))}, nil
	}
	return nil, nil
}

// checkUn type-checks a raw unary operator application, folding
// constant operands where possible (§4.4, grounded on
// typecheck_unary_op).
func (fc *funcChecker) checkUn(e *ast.UnExpr) (*typedast.TypedExprNode, error) {
	operand, err := fc.checkExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(operand.ResultType())
	if !ok {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck",
			Message: "could not resolve operand type", Pos: e.Pos,
		})
	}
	cv, _, isConst := bigIntConst(operand)

	switch e.Op {
	case ast.OpMinus:
		if rep.Kind != types.KInt {
			return nil, invalidUnary(e.Pos, "unary minus", rep)
		}
		if isConst {
			return constNode(ast.ConstInt, types.Int, wrapInt(new(big.Int).Neg(cv)), e.Pos), nil
		}
		return unNode(types.Int, ast.OpMinus, operand, e.Pos), nil

	case ast.OpBitwiseNeg:
		if rep.Kind != types.KUint && rep.Kind != types.KInt && rep.Kind != types.KBytes32 {
			return nil, invalidUnary(e.Pos, "bitwise negation", rep)
		}
		if isConst {
			neg := new(big.Int).Not(cv)
			if rep.Kind == types.KInt {
				neg = wrapInt(neg)
			} else {
				neg = wrapUint(neg)
			}
			return constNode(operand.Const.Kind, rep, neg, e.Pos), nil
		}
		return unNode(rep, ast.OpBitwiseNeg, operand, e.Pos), nil

	case ast.OpNot:
		if rep.Kind != types.KBool {
			return nil, invalidUnary(e.Pos, "logical negation", rep)
		}
		if operand.Const != nil {
			b, _ := operand.Const.Value.(bool)
			return constNode(ast.ConstBool, types.Bool, !b, e.Pos), nil
		}
		return unNode(types.Bool, ast.OpNot, operand, e.Pos), nil

	case ast.OpHash:
		if isConst {
			return constNode(ast.ConstBytes32, types.Bytes32, cv, e.Pos), nil
		}
		return unNode(types.Bytes32, ast.OpHash, operand, e.Pos), nil

	case ast.OpLen:
		switch rep.Kind {
		case types.KTuple:
			return constNode(ast.ConstUint, types.Uint, big.NewInt(int64(len(rep.Elems))), e.Pos), nil
		case types.KFixedArray:
			return constNode(ast.ConstUint, types.Uint, big.NewInt(int64(rep.Size)), e.Pos), nil
		case types.KArray:
			return unNode(types.Uint, ast.OpLen, operand, e.Pos), nil
		}
		return nil, invalidUnary(e.Pos, "len", rep)

	case ast.OpToUint:
		return convertScalar(rep, operand, ast.ConstUint, types.Uint, ast.OpToUint, e.Pos)
	case ast.OpToInt:
		return convertScalar(rep, operand, ast.ConstInt, types.Int, ast.OpToInt, e.Pos)
	case ast.OpToBytes32:
		return convertScalar(rep, operand, ast.ConstBytes32, types.Bytes32, ast.OpToBytes32, e.Pos)
	case ast.OpToAddress:
		if isConst {
			addrMod := new(big.Int).Lsh(big.NewInt(1), 160)
			return constNode(ast.ConstUint, types.EthAddress, new(big.Int).Mod(cv, addrMod), e.Pos), nil
		}
		if !convertibleScalar(rep) {
			return nil, invalidUnary(e.Pos, "address cast", rep)
		}
		return unNode(types.EthAddress, ast.OpToAddress, operand, e.Pos), nil
	}
	return nil, fmt.Errorf("unsupported unary operator %v", e.Op)
}

func convertibleScalar(t *types.Type) bool {
	switch t.Kind {
	case types.KUint, types.KInt, types.KBytes32, types.KEthAddress, types.KBool:
		return true
	}
	return false
}

func convertScalar(rep *types.Type, operand *typedast.TypedExprNode, constKind ast.ConstKind, target *types.Type, op ast.UnOp, pos ast.Pos) (*typedast.TypedExprNode, error) {
	if v, _, isConst := bigIntConst(operand); isConst {
		return constNode(constKind, target, v, pos), nil
	}
	if !convertibleScalar(rep) {
		return nil, invalidUnary(pos, target.String()+"()", rep)
	}
	return unNode(target, op, operand, pos), nil
}

func invalidUnary(pos ast.Pos, what string, t *types.Type) error {
	return errors.WrapReport(&errors.Report{
		Schema: "mini.diagnostic/v1", Code: errors.TCInvalidOperator, Phase: "typecheck",
		Message: fmt.Sprintf("invalid operand type %s for %s", t, what), Pos: pos,
	})
}

func constNode(kind ast.ConstKind, t *types.Type, value interface{}, pos ast.Pos) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Const: &typedast.TypedConst{TypedExpr: typedExprOf(t, pos), Kind: kind, Value: value}}
}

func unNode(t *types.Type, op ast.UnOp, operand *typedast.TypedExprNode, pos ast.Pos) *typedast.TypedExprNode {
	return &typedast.TypedExprNode{Un: &typedast.TypedUn{TypedExpr: typedExprOf(t, pos), Op: op, Operand: operand}}
}

package check

import (
	"fmt"
	"math/big"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

func typedExprOf(t *types.Type, pos ast.Pos) typedast.TypedExpr {
	return typedast.TypedExpr{Type: t, Pos: pos}
}

// checkExpr dispatches on the raw expression's concrete kind, producing
// the matching typed variant wrapped in a TypedExprNode (§4.4).
func (fc *funcChecker) checkExpr(expr ast.Expr) (*typedast.TypedExprNode, error) {
	switch e := expr.(type) {
	case *ast.ConstExpr:
		return fc.checkConst(e)
	case *ast.IdentExpr:
		return fc.checkIdent(e)
	case *ast.TupleRefExpr:
		return fc.checkTupleRef(e)
	case *ast.DotRefExpr:
		return fc.checkDotRef(e)
	case *ast.CallExpr:
		return fc.checkCall(e)
	case *ast.ArrayOrMapRefExpr:
		return fc.checkArrayOrMapRef(e)
	case *ast.ArrayOrMapModExpr:
		return fc.checkArrayOrMapMod(e)
	case *ast.StructInitExpr:
		return fc.checkStructInit(e)
	case *ast.TupleExpr:
		return fc.checkTuple(e)
	case *ast.NewArrayExpr:
		return fc.checkNewArray(e)
	case *ast.NewFixedArrayExpr:
		return fc.checkNewFixedArray(e)
	case *ast.NewMapExpr:
		return fc.checkNewMap(e)
	case *ast.NewUnionExpr:
		return fc.checkNewUnion(e)
	case *ast.CastExpr:
		return fc.checkCast(e)
	case *ast.AsmExpr:
		return fc.checkAsmExpr(e)
	case *ast.TryExpr:
		return fc.checkTry(e)
	case *ast.IfExpr:
		return fc.checkIf(e)
	case *ast.IfLetExpr:
		return fc.checkIfLet(e)
	case *ast.LoopExpr:
		return fc.checkLoop(e)
	case *ast.MapDeleteExpr:
		return fc.checkMapDelete(e)
	case *ast.MapApplyExpr:
		return fc.checkMapApply(e)
	case *ast.ArrayResizeExpr:
		return fc.checkArrayResize(e)
	case *ast.GetGasExpr:
		return &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedExprOf(types.Uint, e.Pos), Name: "getgas", Kind: typedast.VarFunc}}, nil
	case *ast.SetGasExpr:
		return fc.checkSetGas(e)
	case *ast.LogicalExpr:
		return fc.checkLogical(e)
	case *ast.BinExpr:
		return fc.checkBin(e)
	case *ast.UnExpr:
		return fc.checkUn(e)
	case *ast.TernaryExpr:
		return fc.checkTernary(e)
	case *ast.TrinaryExpr:
		return fc.checkTrinary(e)
	}
	return nil, fmt.Errorf("unsupported expression %T", expr)
}

func (fc *funcChecker) checkConst(e *ast.ConstExpr) (*typedast.TypedExprNode, error) {
	var t *types.Type
	switch e.Kind {
	case ast.ConstUint:
		t = types.Uint
	case ast.ConstInt:
		t = types.Int
	case ast.ConstBool:
		t = types.Bool
	case ast.ConstBytes32:
		t = types.Bytes32
	case ast.ConstNull:
		t = types.NewOption(types.Any)
	default:
		return nil, fmt.Errorf("unknown const kind %v", e.Kind)
	}
	return &typedast.TypedExprNode{Const: &typedast.TypedConst{TypedExpr: typedExprOf(t, e.Pos), Kind: e.Kind, Value: e.Value}}, nil
}

// checkIdent resolves a bare name in function-table -> locals ->
// globals order (§4.4, §9).
func (fc *funcChecker) checkIdent(e *ast.IdentExpr) (*typedast.TypedExprNode, error) {
	if sig, ok := fc.c.funcs[e.Name]; ok {
		return &typedast.TypedExprNode{Var: &typedast.TypedVar{
			TypedExpr: typedExprOf(sig, e.Pos), Name: e.Name, Kind: typedast.VarFunc,
		}}, nil
	}
	if lb, ok := fc.locals.Lookup(e.Name); ok {
		return &typedast.TypedExprNode{Var: &typedast.TypedVar{
			TypedExpr: typedExprOf(lb.Type, e.Pos), Name: e.Name, Kind: typedast.VarLocal, Slot: lb.Slot,
		}}, nil
	}
	if gt, ok := fc.c.globals[e.Name]; ok {
		return &typedast.TypedExprNode{Var: &typedast.TypedVar{
			TypedExpr: typedExprOf(gt, e.Pos), Name: e.Name, Kind: typedast.VarGlobal,
		}}, nil
	}
	return nil, errors.WrapReport(&errors.Report{
		Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedName, Phase: "typecheck",
		Message: fmt.Sprintf("%q does not resolve to a function, local, or global", e.Name), Pos: e.Pos,
	})
}

func (fc *funcChecker) checkTupleRef(e *ast.TupleRefExpr) (*typedast.TypedExprNode, error) {
	tup, err := fc.checkExpr(e.Tuple)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(tup.ResultType())
	if !ok || rep.Kind != types.KTuple {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.NewTuple(), tup.ResultType(), e.Pos, "tuple reference requires a tuple value")
	}
	if e.Index < 0 || e.Index >= len(rep.Elems) {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCArityMismatch, Phase: "typecheck",
			Message: fmt.Sprintf("tuple index %d out of range for arity %d", e.Index, len(rep.Elems)), Pos: e.Pos,
		})
	}
	return &typedast.TypedExprNode{TupleRef: &typedast.TypedTupleRef{
		TypedExpr: typedExprOf(rep.Elems[e.Index], e.Pos), Tuple: tup, Index: e.Index,
	}}, nil
}

func (fc *funcChecker) checkDotRef(e *ast.DotRefExpr) (*typedast.TypedExprNode, error) {
	st, err := fc.checkExpr(e.Struct)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(st.ResultType())
	if !ok || rep.Kind != types.KStruct {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.NewStruct(), st.ResultType(), e.Pos, "field access requires a struct value")
	}
	slot := rep.StructSlot(e.Field)
	if slot < 0 {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedName, Phase: "typecheck",
			Message: fmt.Sprintf("struct has no field %q", e.Field), Pos: e.Pos,
		})
	}
	return &typedast.TypedExprNode{DotRef: &typedast.TypedDotRef{
		TypedExpr: typedExprOf(rep.Fields[slot].Type, e.Pos), Struct: st, Field: e.Field, Slot: slot, Arity: len(rep.Fields),
	}}, nil
}

func (fc *funcChecker) checkCall(e *ast.CallExpr) (*typedast.TypedExprNode, error) {
	callee, err := fc.checkExpr(e.Callee)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(callee.ResultType())
	if !ok || rep.Kind != types.KFunc {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCNotCallable, Phase: "typecheck",
			Message: fmt.Sprintf("callee of type %s is not callable", callee.ResultType()), Pos: e.Pos,
		})
	}
	if len(rep.Args) != len(e.Args) {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCArityMismatch, Phase: "typecheck",
			Message: fmt.Sprintf("call has %d arguments, callee expects %d", len(e.Args), len(rep.Args)), Pos: e.Pos,
		})
	}
	args := make([]*typedast.TypedExprNode, len(e.Args))
	for i, a := range e.Args {
		ta, err := fc.checkExpr(a)
		if err != nil {
			return nil, err
		}
		if !fc.c.assignable(rep.Args[i], ta.ResultType()) {
			return nil, fc.mismatchErr(errors.TCTypeMismatch, rep.Args[i], ta.ResultType(), a.Position(),
				fmt.Sprintf("argument %d has the wrong type", i))
		}
		args[i] = ta
	}
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(rep.Return, e.Pos), Callee: callee, Args: args,
		SiteInline: fc.currentInline, Trace: fc.currentTrace,
	}}, nil
}

func (fc *funcChecker) checkArrayOrMapRef(e *ast.ArrayOrMapRefExpr) (*typedast.TypedExprNode, error) {
	c, err := fc.checkExpr(e.Container)
	if err != nil {
		return nil, err
	}
	k, err := fc.checkExpr(e.Key)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(c.ResultType())
	if !ok {
		return nil, fc.mismatchErr(errors.TCUnresolvedType, c.ResultType(), c.ResultType(), e.Pos, "could not resolve container type")
	}
	var resultType *types.Type
	switch rep.Kind {
	case types.KArray, types.KFixedArray:
		if !k.ResultType().Equal(types.Uint) {
			return nil, fc.mismatchErr(errors.TCTypeMismatch, types.Uint, k.ResultType(), e.Key.Position(), "array index must be uint")
		}
		resultType = rep.Elem
	case types.KMap:
		if !fc.c.assignable(rep.Key, k.ResultType()) {
			return nil, fc.mismatchErr(errors.TCTypeMismatch, rep.Key, k.ResultType(), e.Key.Position(), "map key has the wrong type")
		}
		resultType = types.NewOption(rep.Value)
	default:
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
			Message: fmt.Sprintf("%s is not indexable", c.ResultType()), Pos: e.Pos,
		})
	}
	return &typedast.TypedExprNode{ArrayMapRef: &typedast.TypedArrayOrMapRef{
		TypedExpr: typedExprOf(resultType, e.Pos), Container: c, Key: k,
	}}, nil
}

func (fc *funcChecker) checkArrayOrMapMod(e *ast.ArrayOrMapModExpr) (*typedast.TypedExprNode, error) {
	c, err := fc.checkExpr(e.Container)
	if err != nil {
		return nil, err
	}
	k, err := fc.checkExpr(e.Key)
	if err != nil {
		return nil, err
	}
	v, err := fc.checkExpr(e.Value)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(c.ResultType())
	if !ok {
		return nil, fc.mismatchErr(errors.TCUnresolvedType, c.ResultType(), c.ResultType(), e.Pos, "could not resolve container type")
	}
	switch rep.Kind {
	case types.KArray, types.KFixedArray:
		if !k.ResultType().Equal(types.Uint) {
			return nil, fc.mismatchErr(errors.TCTypeMismatch, types.Uint, k.ResultType(), e.Key.Position(), "array index must be uint")
		}
		if !fc.c.assignable(rep.Elem, v.ResultType()) {
			return nil, fc.mismatchErr(errors.TCTypeMismatch, rep.Elem, v.ResultType(), e.Value.Position(), "array element has the wrong type")
		}
	case types.KMap:
		if !fc.c.assignable(rep.Key, k.ResultType()) {
			return nil, fc.mismatchErr(errors.TCTypeMismatch, rep.Key, k.ResultType(), e.Key.Position(), "map key has the wrong type")
		}
		if !fc.c.assignable(rep.Value, v.ResultType()) {
			return nil, fc.mismatchErr(errors.TCTypeMismatch, rep.Value, v.ResultType(), e.Value.Position(), "map value has the wrong type")
		}
	default:
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
			Message: fmt.Sprintf("%s is not indexable", c.ResultType()), Pos: e.Pos,
		})
	}
	return &typedast.TypedExprNode{ArrayMapMod: &typedast.TypedArrayOrMapMod{
		TypedExpr: typedExprOf(c.ResultType(), e.Pos), Container: c, Key: k, Value: v,
	}}, nil
}

func (fc *funcChecker) checkStructInit(e *ast.StructInitExpr) (*typedast.TypedExprNode, error) {
	fields := make([]typedast.TypedStructFieldInit, len(e.Fields))
	structFields := make([]types.StructField, len(e.Fields))
	for i, f := range e.Fields {
		tv, err := fc.checkExpr(f.Value)
		if err != nil {
			return nil, err
		}
		fields[i] = typedast.TypedStructFieldInit{Name: f.Name, Slot: i, Value: tv}
		structFields[i] = types.StructField{Name: f.Name, Type: tv.ResultType()}
	}
	t := types.NewStruct(structFields...)
	return &typedast.TypedExprNode{StructInit: &typedast.TypedStructInit{TypedExpr: typedExprOf(t, e.Pos), Fields: fields}}, nil
}

func (fc *funcChecker) checkTuple(e *ast.TupleExpr) (*typedast.TypedExprNode, error) {
	elems := make([]*typedast.TypedExprNode, len(e.Elems))
	types_ := make([]*types.Type, len(e.Elems))
	for i, el := range e.Elems {
		te, err := fc.checkExpr(el)
		if err != nil {
			return nil, err
		}
		elems[i] = te
		types_[i] = te.ResultType()
	}
	return &typedast.TypedExprNode{Tuple: &typedast.TypedTuple{TypedExpr: typedExprOf(types.NewTuple(types_...), e.Pos), Elems: elems}}, nil
}

func (fc *funcChecker) checkNewArray(e *ast.NewArrayExpr) (*typedast.TypedExprNode, error) {
	size, err := fc.checkExpr(e.Size)
	if err != nil {
		return nil, err
	}
	if !size.ResultType().Equal(types.Uint) {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.Uint, size.ResultType(), e.Size.Position(), "array size must be uint")
	}
	elem, err := fc.c.resolveTypeExpr(e.Elem)
	if err != nil {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck", Message: err.Error(), Pos: e.Pos,
		})
	}
	t := types.NewArray(elem)
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(t, e.Pos),
		Callee:    &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedExprOf(types.NewFunc(types.FuncProperties{}, []*types.Type{types.Uint}, t), e.Pos), Name: "new_array", Kind: typedast.VarFunc}},
		Args:      []*typedast.TypedExprNode{size},
	}}, nil
}

func (fc *funcChecker) checkNewFixedArray(e *ast.NewFixedArrayExpr) (*typedast.TypedExprNode, error) {
	elem := types.Any
	var init *typedast.TypedExprNode
	if e.Init != nil {
		te, err := fc.checkExpr(e.Init)
		if err != nil {
			return nil, err
		}
		init = te
		elem = te.ResultType()
	}
	t := types.NewFixedArray(elem, e.Size)
	args := []*typedast.TypedExprNode{}
	if init != nil {
		args = append(args, init)
	}
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(t, e.Pos),
		Callee:    &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedExprOf(types.NewFunc(types.FuncProperties{}, nil, t), e.Pos), Name: "new_fixed_array", Kind: typedast.VarFunc}},
		Args:      args,
	}}, nil
}

func (fc *funcChecker) checkNewMap(e *ast.NewMapExpr) (*typedast.TypedExprNode, error) {
	k, err := fc.c.resolveTypeExpr(e.Key)
	if err != nil {
		return nil, errors.WrapReport(&errors.Report{Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck", Message: err.Error(), Pos: e.Pos})
	}
	v, err := fc.c.resolveTypeExpr(e.Value)
	if err != nil {
		return nil, errors.WrapReport(&errors.Report{Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck", Message: err.Error(), Pos: e.Pos})
	}
	t := types.NewMap(k, v)
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(t, e.Pos),
		Callee:    &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedExprOf(types.NewFunc(types.FuncProperties{}, nil, t), e.Pos), Name: "new_map", Kind: typedast.VarFunc}},
	}}, nil
}

func (fc *funcChecker) checkNewUnion(e *ast.NewUnionExpr) (*typedast.TypedExprNode, error) {
	val, err := fc.checkExpr(e.Value)
	if err != nil {
		return nil, err
	}
	members := make([]*types.Type, len(e.Members))
	found := false
	for i, m := range e.Members {
		mt, err := fc.c.resolveTypeExpr(m)
		if err != nil {
			return nil, errors.WrapReport(&errors.Report{Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck", Message: err.Error(), Pos: e.Pos})
		}
		members[i] = mt
		if fc.c.assignable(mt, val.ResultType()) {
			found = true
		}
	}
	if !found {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
			Message: fmt.Sprintf("%s is not assignable to any member of the target union", val.ResultType()), Pos: e.Pos,
		})
	}
	t := types.NewUnion(members...)
	return &typedast.TypedExprNode{Cast: &typedast.TypedCast{TypedExpr: typedExprOf(t, e.Pos), Kind: ast.CastNormal, Value: val}}, nil
}

func (fc *funcChecker) checkCast(e *ast.CastExpr) (*typedast.TypedExprNode, error) {
	val, err := fc.checkExpr(e.Value)
	if err != nil {
		return nil, err
	}
	target, err := fc.c.resolveTypeExpr(e.Type)
	if err != nil {
		return nil, errors.WrapReport(&errors.Report{Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck", Message: err.Error(), Pos: e.Pos})
	}
	ok := false
	switch e.Kind {
	case ast.CastUnsafe:
		ok = true
	case ast.CastWeak:
		ok = types.Assignable(fc.c.tree, target, val.ResultType(), nil) || types.Castable(fc.c.tree, target, val.ResultType(), nil)
	case ast.CastNormal:
		ok = types.Castable(fc.c.tree, target, val.ResultType(), nil)
	case ast.CastCovariant:
		ok = types.CovariantCastable(fc.c.tree, target, val.ResultType(), nil)
	}
	if !ok {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, target, val.ResultType(), e.Pos, "cast is not permitted between these types")
	}
	return &typedast.TypedExprNode{Cast: &typedast.TypedCast{TypedExpr: typedExprOf(target, e.Pos), Kind: e.Kind, Value: val}}, nil
}

func (fc *funcChecker) checkAsmExpr(e *ast.AsmExpr) (*typedast.TypedExprNode, error) {
	t, err := fc.c.resolveTypeExpr(e.Type)
	if err != nil {
		return nil, errors.WrapReport(&errors.Report{Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck", Message: err.Error(), Pos: e.Pos})
	}
	if t.Equal(types.Void) {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
			Message: "asm expression must declare a non-void result type", Pos: e.Pos,
		})
	}
	args := make([]*typedast.TypedExprNode, len(e.Args))
	for i, a := range e.Args {
		ta, err := fc.checkExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = ta
	}
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(t, e.Pos),
		Callee:    &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedExprOf(types.NewFunc(types.FuncProperties{}, nil, t), e.Pos), Name: "asm", Kind: typedast.VarFunc}},
		Args:      args,
	}}, nil
}

func (fc *funcChecker) checkTry(e *ast.TryExpr) (*typedast.TypedExprNode, error) {
	retRep, ok := fc.c.tree.Representation(fc.returnType)
	if !ok || (retRep.Kind != types.KOption && retRep.Kind != types.KAny) {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCIllegalTry, Phase: "typecheck",
			Message: "try (?) operator used outside a function returning an option", Pos: e.Pos,
		})
	}
	val, err := fc.checkExpr(e.Value)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(val.ResultType())
	if !ok || rep.Kind != types.KOption {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.NewOption(types.Any), val.ResultType(), e.Pos, "try (?) requires an option-typed operand")
	}
	return &typedast.TypedExprNode{Try: &typedast.TypedTry{TypedExpr: typedExprOf(rep.Elem, e.Pos), Value: val}}, nil
}

func (fc *funcChecker) checkIf(e *ast.IfExpr) (*typedast.TypedExprNode, error) {
	cond, err := fc.checkExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	if !cond.ResultType().Equal(types.Bool) {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.Bool, cond.ResultType(), e.Cond.Position(), "if condition must be bool")
	}
	savedLocals := fc.locals
	then, err := fc.checkStmts(e.Then)
	fc.locals = savedLocals
	if err != nil {
		return nil, err
	}
	var els []typedast.TypedStmtNode
	elseType := types.Void
	if e.Else != nil {
		els, err = fc.checkStmts(e.Else)
		fc.locals = savedLocals
		if err != nil {
			return nil, err
		}
		elseType = lastExprType(els)
	}
	thenType := lastExprType(then)
	result, err := fc.unifyBranches(thenType, elseType, e.Pos)
	if err != nil {
		return nil, err
	}
	return &typedast.TypedExprNode{If: &typedast.TypedIf{TypedExpr: typedExprOf(result, e.Pos), Cond: cond, Then: then, Else: els}}, nil
}

func (fc *funcChecker) checkIfLet(e *ast.IfLetExpr) (*typedast.TypedExprNode, error) {
	opt, err := fc.checkExpr(e.Option)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(opt.ResultType())
	if !ok || rep.Kind != types.KOption {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.NewOption(types.Any), opt.ResultType(), e.Pos, "if let requires an option-typed expression")
	}
	savedLocals := fc.locals
	slot := fc.nextSlot
	fc.nextSlot++
	fc.locals = fc.locals.PushOne(e.Name, localBinding{Type: rep.Elem, Slot: slot})
	then, err := fc.checkStmts(e.Then)
	fc.locals = savedLocals
	if err != nil {
		return nil, err
	}
	var els []typedast.TypedStmtNode
	elseType := types.Void
	if e.Else != nil {
		els, err = fc.checkStmts(e.Else)
		fc.locals = savedLocals
		if err != nil {
			return nil, err
		}
		elseType = lastExprType(els)
	}
	result, err := fc.unifyBranches(lastExprType(then), elseType, e.Pos)
	if err != nil {
		return nil, err
	}
	return &typedast.TypedExprNode{IfLet: &typedast.TypedIfLet{
		TypedExpr: typedExprOf(result, e.Pos), Name: e.Name, Slot: slot, Option: opt, Then: then, Else: els,
	}}, nil
}

// lastExprType reports the result type of a branch's final expression
// statement, or Void when the branch doesn't end in one.
func lastExprType(stmts []typedast.TypedStmtNode) *types.Type {
	if len(stmts) == 0 {
		return types.Void
	}
	last := stmts[len(stmts)-1]
	if last.Expr != nil {
		return last.Expr.ResultType()
	}
	return types.Void
}

// unifyBranches implements §4.4's If/IfLet result-type rule: the
// result is whichever branch's type the other is assignable from,
// tried symmetrically.
func (fc *funcChecker) unifyBranches(a, b *types.Type, pos ast.Pos) (*types.Type, error) {
	if fc.c.assignable(a, b) {
		return a, nil
	}
	if fc.c.assignable(b, a) {
		return b, nil
	}
	return nil, fc.mismatchErr(errors.TCTypeMismatch, a, b, pos, "branches do not produce a common type")
}

func (fc *funcChecker) checkLoop(e *ast.LoopExpr) (*typedast.TypedExprNode, error) {
	savedLocals := fc.locals
	fc.loops.Push("")
	fc.breakType = append(fc.breakType, nil)
	body, err := fc.checkStmts(e.Body)
	fc.breakType = fc.breakType[:len(fc.breakType)-1]
	fc.loops.Pop()
	fc.locals = savedLocals
	if err != nil {
		return nil, err
	}
	return &typedast.TypedExprNode{Loop: &typedast.TypedLoop{TypedExpr: typedExprOf(types.Every, e.Pos), Body: body}}, nil
}

func (fc *funcChecker) checkMapDelete(e *ast.MapDeleteExpr) (*typedast.TypedExprNode, error) {
	m, err := fc.checkExpr(e.Map)
	if err != nil {
		return nil, err
	}
	k, err := fc.checkExpr(e.Key)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(m.ResultType())
	if !ok || rep.Kind != types.KMap {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.NewMap(types.Any, types.Any), m.ResultType(), e.Pos, "delete requires a map")
	}
	if !fc.c.assignable(rep.Key, k.ResultType()) {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, rep.Key, k.ResultType(), e.Key.Position(), "delete key has the wrong type")
	}
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(m.ResultType(), e.Pos),
		Callee:    &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedExprOf(types.NewFunc(types.FuncProperties{}, []*types.Type{m.ResultType(), rep.Key}, m.ResultType()), e.Pos), Name: "delete", Kind: typedast.VarFunc}},
		Args:      []*typedast.TypedExprNode{m, k},
	}}, nil
}

func (fc *funcChecker) checkMapApply(e *ast.MapApplyExpr) (*typedast.TypedExprNode, error) {
	m, err := fc.checkExpr(e.Map)
	if err != nil {
		return nil, err
	}
	f, err := fc.checkExpr(e.Func)
	if err != nil {
		return nil, err
	}
	s, err := fc.checkExpr(e.Seed)
	if err != nil {
		return nil, err
	}
	mrep, ok := fc.c.tree.Representation(m.ResultType())
	if !ok || mrep.Kind != types.KMap {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.NewMap(types.Any, types.Any), m.ResultType(), e.Pos, "apply requires a map")
	}
	frep, ok := fc.c.tree.Representation(f.ResultType())
	if !ok || frep.Kind != types.KFunc || len(frep.Args) != 3 {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCNotCallable, Phase: "typecheck",
			Message: "apply's function argument must take (key, value, seed)", Pos: e.Func.Position(),
		})
	}
	if !fc.c.assignable(frep.Args[0], mrep.Key) || !fc.c.assignable(frep.Args[1], mrep.Value) || !fc.c.assignable(frep.Args[2], s.ResultType()) {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
			Message: "apply's function signature does not match (key, value, seed)", Pos: e.Pos,
		})
	}
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(frep.Return, e.Pos),
		Callee:    f,
		Args:      []*typedast.TypedExprNode{m, s},
	}}, nil
}

func (fc *funcChecker) checkArrayResize(e *ast.ArrayResizeExpr) (*typedast.TypedExprNode, error) {
	arr, err := fc.checkExpr(e.Array)
	if err != nil {
		return nil, err
	}
	size, err := fc.checkExpr(e.Size)
	if err != nil {
		return nil, err
	}
	fill, err := fc.checkExpr(e.Fill)
	if err != nil {
		return nil, err
	}
	rep, ok := fc.c.tree.Representation(arr.ResultType())
	if !ok || rep.Kind != types.KArray {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.NewArray(types.Any), arr.ResultType(), e.Pos, "resize requires an array")
	}
	if !size.ResultType().Equal(types.Uint) {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.Uint, size.ResultType(), e.Size.Position(), "resize size must be uint")
	}
	if !fc.c.assignable(rep.Elem, fill.ResultType()) {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, rep.Elem, fill.ResultType(), e.Fill.Position(), "resize fill has the wrong type")
	}
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(arr.ResultType(), e.Pos),
		Callee:    &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedExprOf(types.NewFunc(types.FuncProperties{}, []*types.Type{arr.ResultType(), types.Uint, rep.Elem}, arr.ResultType()), e.Pos), Name: "resize", Kind: typedast.VarFunc}},
		Args:      []*typedast.TypedExprNode{arr, size, fill},
	}}, nil
}

func (fc *funcChecker) checkSetGas(e *ast.SetGasExpr) (*typedast.TypedExprNode, error) {
	v, err := fc.checkExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if !v.ResultType().Equal(types.Uint) {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.Uint, v.ResultType(), e.Value.Position(), "setgas requires a uint")
	}
	return &typedast.TypedExprNode{Call: &typedast.TypedCall{
		TypedExpr: typedExprOf(types.Void, e.Pos),
		Callee:    &typedast.TypedExprNode{Var: &typedast.TypedVar{TypedExpr: typedExprOf(types.NewFunc(types.FuncProperties{}, []*types.Type{types.Uint}, types.Void), e.Pos), Name: "setgas", Kind: typedast.VarFunc}},
		Args:      []*typedast.TypedExprNode{v},
	}}, nil
}

func (fc *funcChecker) checkLogical(e *ast.LogicalExpr) (*typedast.TypedExprNode, error) {
	l, err := fc.checkExpr(e.Left)
	if err != nil {
		return nil, err
	}
	r, err := fc.checkExpr(e.Right)
	if err != nil {
		return nil, err
	}
	if !l.ResultType().Equal(types.Bool) || !r.ResultType().Equal(types.Bool) {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mini.diagnostic/v1", Code: errors.TCInvalidOperator, Phase: "typecheck",
			Message: fmt.Sprintf("invalid argument types to logical operator: %s and %s", l.ResultType(), r.ResultType()), Pos: e.Pos,
		})
	}
	return &typedast.TypedExprNode{Logical: &typedast.TypedLogical{TypedExpr: typedExprOf(types.Bool, e.Pos), Op: e.Op, Left: l, Right: r}}, nil
}

func (fc *funcChecker) checkTernary(e *ast.TernaryExpr) (*typedast.TypedExprNode, error) {
	cond, err := fc.checkExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	if !cond.ResultType().Equal(types.Bool) {
		return nil, fc.mismatchErr(errors.TCTypeMismatch, types.Bool, cond.ResultType(), e.Cond.Position(), "ternary condition must be bool")
	}
	then, err := fc.checkExpr(e.Then)
	if err != nil {
		return nil, err
	}
	els, err := fc.checkExpr(e.Else)
	if err != nil {
		return nil, err
	}
	result, err := fc.unifyBranches(then.ResultType(), els.ResultType(), e.Pos)
	if err != nil {
		return nil, err
	}
	return &typedast.TypedExprNode{Ternary: &typedast.TypedTernary{TypedExpr: typedExprOf(result, e.Pos), Cond: cond, Then: then, Else: els}}, nil
}

// bigIntConst extracts the *big.Int of a typed integer constant, if e
// is one (used by constant folding in operators.go).
func bigIntConst(e *typedast.TypedExprNode) (*big.Int, *types.Type, bool) {
	if e.Const == nil {
		return nil, nil, false
	}
	switch e.Const.Kind {
	case ast.ConstUint, ast.ConstInt, ast.ConstBytes32:
		if v, ok := e.Const.Value.(*big.Int); ok {
			return v, e.Const.Type, true
		}
	}
	return nil, nil, false
}

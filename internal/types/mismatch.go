package types

import "fmt"

// MismatchKind discriminates the shape of a Mismatch, mirroring the
// original compiler's TypeMismatch enum field-for-field.
type MismatchKind int

const (
	MismatchLeaf MismatchKind = iota
	MismatchFieldName
	MismatchFieldType
	MismatchUnresolvedLeft
	MismatchUnresolvedRight
	MismatchUnresolvedBoth
	MismatchTuple
	MismatchTupleLength
	MismatchArray
	MismatchArrayLength
	MismatchGenericName
	MismatchGenericLength
	MismatchGenericVar
	MismatchFuncArg
	MismatchFuncArgLength
	MismatchFuncReturn
	MismatchView
	MismatchWrite
	MismatchMap
	MismatchOption
	MismatchUnion
	MismatchUnionLength
)

var mismatchKindNames = map[MismatchKind]string{
	MismatchLeaf:            "leaf",
	MismatchFieldName:       "field name",
	MismatchFieldType:       "field type",
	MismatchUnresolvedLeft:  "unresolved left",
	MismatchUnresolvedRight: "unresolved right",
	MismatchUnresolvedBoth:  "unresolved both",
	MismatchTuple:           "tuple element",
	MismatchTupleLength:     "tuple length",
	MismatchArray:           "array element",
	MismatchArrayLength:     "fixed array length",
	MismatchGenericName:     "generic name",
	MismatchGenericLength:   "generic arity",
	MismatchGenericVar:      "generic argument",
	MismatchFuncArg:         "function argument",
	MismatchFuncArgLength:   "function arity",
	MismatchFuncReturn:      "function return type",
	MismatchView:            "view purity",
	MismatchWrite:           "write purity",
	MismatchMap:             "map key/value",
	MismatchOption:          "option element",
	MismatchUnion:           "union member",
	MismatchUnionLength:     "union arity",
}

func (k MismatchKind) String() string {
	if s, ok := mismatchKindNames[k]; ok {
		return s
	}
	return "mismatch"
}

// Mismatch is a structured, diagnostic-only description of where two
// types first diverge under Assignable. It never feeds back into a
// semantic decision — only into error messages.
type Mismatch struct {
	Kind MismatchKind

	// MismatchLeaf, MismatchUnresolvedLeft/Right/Both
	Left, Right *Type
	// MismatchFieldName, MismatchFieldType
	FieldName string
	// MismatchTuple, MismatchGenericVar, MismatchFuncArg, MismatchUnion
	Index int
	Inner *Mismatch
	// MismatchTupleLength, MismatchArrayLength, MismatchGenericLength,
	// MismatchFuncArgLength, MismatchUnionLength
	WantLen, GotLen int
	// MismatchGenericName
	WantID, GotID fmt.Stringer
	// MismatchMap
	IsKey bool
}

// FirstMismatch walks self and rhs in lockstep the same way Assignable
// does, returning the first structural divergence. The check order for
// Func mirrors the original exactly: args, then return, then view, then
// write — so diagnostics are reproducible against a fixed scenario
// ordering (§8's purity-demotion property).
func FirstMismatch(tree *Tree, self, rhs *Type, seen seenPairs) *Mismatch {
	if seen == nil {
		seen = newSeenPairs()
	}
	if rhs.Kind == KEvery {
		return nil
	}
	switch self.Kind {
	case KAny:
		if rhs.Kind != KVoid {
			return nil
		}
		return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
	case KVoid, KUint, KInt, KBool, KBytes32, KEthAddress, KBuffer, KEvery, KVariable:
		if self.Equal(rhs) {
			return nil
		}
		return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
	case KTuple:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KTuple {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		n := min(len(self.Elems), len(rep.Elems))
		for i := 0; i < n; i++ {
			if inner := FirstMismatch(tree, self.Elems[i], rep.Elems[i], seen.clone()); inner != nil {
				return &Mismatch{Kind: MismatchTuple, Index: i, Inner: inner}
			}
		}
		if len(self.Elems) != len(rep.Elems) {
			return &Mismatch{Kind: MismatchTupleLength, WantLen: len(self.Elems), GotLen: len(rep.Elems)}
		}
		return nil
	case KGeneric:
		if rhs.Kind != KGeneric {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		if self.ID != rhs.ID {
			return &Mismatch{Kind: MismatchGenericName}
		}
		if len(self.GenericArgs) != len(rhs.GenericArgs) {
			return &Mismatch{Kind: MismatchGenericLength, WantLen: len(self.GenericArgs), GotLen: len(rhs.GenericArgs)}
		}
		for i := range self.GenericArgs {
			l, r := self.GenericArgs[i], rhs.GenericArgs[i]
			inner := FirstMismatch(tree, l, r, seen.clone())
			if inner == nil {
				inner = FirstMismatch(tree, r, l, seen.clone())
			}
			if inner != nil {
				return &Mismatch{Kind: MismatchGenericVar, Index: i, Inner: inner}
			}
		}
		return nil
	case KArray:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KArray {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		if inner := FirstMismatch(tree, self.Elem, rep.Elem, seen); inner != nil {
			return &Mismatch{Kind: MismatchArray, Inner: inner}
		}
		return nil
	case KFixedArray:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KFixedArray {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		if inner := FirstMismatch(tree, self.Elem, rep.Elem, seen); inner != nil {
			return &Mismatch{Kind: MismatchArray, Inner: inner}
		}
		if self.Size != rep.Size {
			return &Mismatch{Kind: MismatchArrayLength, WantLen: self.Size, GotLen: rep.Size}
		}
		return nil
	case KStruct:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KStruct {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		return fieldVectorsMismatch(tree, self.Fields, rep.Fields, seen)
	case KNominal:
		left, lok := tree.Representation(self)
		right, rok := tree.Representation(rhs)
		switch {
		case lok && rok:
			if !seen.insert(self, rhs) {
				return nil
			}
			return FirstMismatch(tree, left, right, seen)
		case lok && !rok:
			return &Mismatch{Kind: MismatchUnresolvedRight, Right: self}
		case !lok && rok:
			return &Mismatch{Kind: MismatchUnresolvedLeft, Left: rhs}
		default:
			return &Mismatch{Kind: MismatchUnresolvedBoth, Left: self, Right: rhs}
		}
	case KFunc:
		if rhs.Kind != KFunc {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		view1, write1 := self.FuncProps.Purity()
		view2, write2 := rhs.FuncProps.Purity()
		n := min(len(self.Args), len(rhs.Args))
		for i := 0; i < n; i++ {
			// contravariant in argument position, as in Assignable
			if inner := FirstMismatch(tree, rhs.Args[i], self.Args[i], seen.clone()); inner != nil {
				return &Mismatch{Kind: MismatchFuncArg, Index: i, Inner: inner}
			}
		}
		if len(self.Args) != len(rhs.Args) {
			return &Mismatch{Kind: MismatchFuncArgLength, WantLen: len(self.Args), GotLen: len(rhs.Args)}
		}
		if inner := FirstMismatch(tree, self.Return, rhs.Return, seen); inner != nil {
			return &Mismatch{Kind: MismatchFuncReturn, Inner: inner}
		}
		if !view1 && view2 {
			return &Mismatch{Kind: MismatchView}
		}
		if !write1 && write2 {
			return &Mismatch{Kind: MismatchWrite}
		}
		return nil
	case KMap:
		if rhs.Kind != KMap {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		valRep, ok := tree.Representation(rhs.Value)
		if !ok {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		if inner := FirstMismatch(tree, self.Key, rhs.Key, seen.clone()); inner != nil {
			return &Mismatch{Kind: MismatchMap, IsKey: true, Inner: inner}
		}
		if inner := FirstMismatch(tree, self.Value, valRep, seen); inner != nil {
			return &Mismatch{Kind: MismatchMap, IsKey: false, Inner: inner}
		}
		return nil
	case KOption:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KOption {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		if inner := FirstMismatch(tree, self.Elem, rep.Elem, seen); inner != nil {
			return &Mismatch{Kind: MismatchOption, Inner: inner}
		}
		return nil
	case KUnion:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KUnion {
			return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
		}
		n := min(len(self.Elems), len(rep.Elems))
		for i := 0; i < n; i++ {
			if inner := FirstMismatch(tree, self.Elems[i], rep.Elems[i], seen.clone()); inner != nil {
				return &Mismatch{Kind: MismatchUnion, Index: i, Inner: inner}
			}
		}
		if len(self.Elems) != len(rep.Elems) {
			return &Mismatch{Kind: MismatchUnionLength, WantLen: len(self.Elems), GotLen: len(rep.Elems)}
		}
		return nil
	}
	return &Mismatch{Kind: MismatchLeaf, Left: self, Right: rhs}
}

func fieldVectorsMismatch(tree *Tree, a, b []StructField, seen seenPairs) *Mismatch {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i].Name != b[i].Name {
			return &Mismatch{Kind: MismatchFieldName, FieldName: a[i].Name, Index: i}
		}
		if inner := FirstMismatch(tree, a[i].Type, b[i].Type, seen.clone()); inner != nil {
			return &Mismatch{Kind: MismatchFieldType, FieldName: a[i].Name, Index: i, Inner: inner}
		}
	}
	if len(a) != len(b) {
		return &Mismatch{Kind: MismatchTupleLength, WantLen: len(a), GotLen: len(b)}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package types

// seenPairs is the coinductive "already assumed true" set threaded
// through the three relations below so that cyclic nominal type graphs
// (a struct that nominally refers to itself) terminate instead of
// recursing forever: the first time a (left, right) nominal pair is
// visited it's optimistically assumed to hold, and the recursive check
// either confirms it or a deeper mismatch is found elsewhere in the
// graph.
type seenPairs map[string]bool

func newSeenPairs() seenPairs { return make(seenPairs) }

func pairKey(a, b *Type) string { return a.String() + "~~" + b.String() }

// insert records the pair as seen and reports whether it was already
// present (mirrors Rust's HashSet::insert return value).
func (s seenPairs) insert(a, b *Type) bool {
	k := pairKey(a, b)
	if s[k] {
		return false
	}
	s[k] = true
	return true
}

func (s seenPairs) clone() seenPairs {
	out := make(seenPairs, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Assignable reports whether rhs is a subtype of self — i.e. whether a
// value of type rhs may be assigned where self is expected.
func Assignable(tree *Tree, self, rhs *Type, seen seenPairs) bool {
	if seen == nil {
		seen = newSeenPairs()
	}
	if rhs.Kind == KEvery {
		return true
	}
	switch self.Kind {
	case KAny:
		return rhs.Kind != KVoid
	case KVoid, KUint, KInt, KBool, KBytes32, KEthAddress, KBuffer, KEvery, KVariable:
		return self.Equal(rhs)
	case KTuple:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KTuple {
			return false
		}
		return typeVectorsAssignable(tree, self.Elems, rep.Elems, seen)
	case KArray:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KArray {
			return false
		}
		return Assignable(tree, self.Elem, rep.Elem, seen)
	case KFixedArray:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KFixedArray || self.Size != rep.Size {
			return false
		}
		return Assignable(tree, self.Elem, rep.Elem, seen)
	case KStruct:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KStruct {
			return false
		}
		return fieldVectorsAssignable(tree, self.Fields, rep.Fields, seen)
	case KNominal:
		left, lok := tree.Representation(self)
		right, rok := tree.Representation(rhs)
		if !lok || !rok {
			return false
		}
		if !seen.insert(left, right) {
			return true
		}
		return Assignable(tree, left, right, seen)
	case KGeneric:
		if rhs.Kind != KGeneric || self.ID != rhs.ID || len(self.GenericArgs) != len(rhs.GenericArgs) {
			return false
		}
		for i := range self.GenericArgs {
			l, r := self.GenericArgs[i], rhs.GenericArgs[i]
			if !Assignable(tree, l, r, seen.clone()) || !Assignable(tree, r, l, seen.clone()) {
				return false
			}
		}
		return true
	case KFunc:
		if rhs.Kind != KFunc {
			return false
		}
		view1, write1 := self.FuncProps.Purity()
		view2, write2 := rhs.FuncProps.Purity()
		if !((view1 || !view2) && (write1 || !write2)) {
			return false
		}
		// contravariant in argument position: rhs's args must accept self's args
		if !typeVectorsAssignable(tree, rhs.Args, self.Args, seen.clone()) {
			return false
		}
		return Assignable(tree, self.Return, rhs.Return, seen)
	case KMap:
		if rhs.Kind != KMap {
			return false
		}
		valRep, ok := tree.Representation(rhs.Value)
		if !ok {
			return false
		}
		return Assignable(tree, self.Key, rhs.Key, seen.clone()) && Assignable(tree, self.Value, valRep, seen)
	case KOption:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KOption {
			return false
		}
		return Assignable(tree, self.Elem, rep.Elem, seen)
	case KUnion:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KUnion {
			return false
		}
		return typeVectorsAssignable(tree, self.Elems, rep.Elems, seen)
	}
	return false
}

// Castable reports whether a value of type rhs may be explicitly cast
// to self with an ordinary (non-unsafe) cast (§4.1/§4.4). Unlike
// Assignable, scalars inter-cast: a uint, int or bytes32 self accepts
// any of those three, an address self also accepts an address, and a
// bool self accepts all five scalar kinds.
func Castable(tree *Tree, self, rhs *Type, seen seenPairs) bool {
	if seen == nil {
		seen = newSeenPairs()
	}
	if rhs.Kind == KEvery {
		return true
	}
	switch self.Kind {
	case KAny:
		return rhs.Kind != KVoid
	case KUint, KInt, KBytes32:
		switch rhs.Kind {
		case KUint, KInt, KBytes32:
			return true
		}
		return false
	case KEthAddress:
		switch rhs.Kind {
		case KUint, KInt, KBytes32, KEthAddress:
			return true
		}
		return false
	case KBool:
		switch rhs.Kind {
		case KUint, KInt, KBool, KBytes32, KEthAddress:
			return true
		}
		return false
	case KBuffer, KVoid, KEvery, KVariable:
		return self.Equal(rhs)
	case KTuple:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KTuple {
			return false
		}
		return typeVectorsCastable(tree, self.Elems, rep.Elems, seen)
	case KArray:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KArray {
			return false
		}
		return Castable(tree, self.Elem, rep.Elem, seen)
	case KFixedArray:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KFixedArray || self.Size != rep.Size {
			return false
		}
		return Castable(tree, self.Elem, rep.Elem, seen)
	case KStruct:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KStruct {
			return false
		}
		return fieldVectorsCastable(tree, self.Fields, rep.Fields, seen)
	case KNominal:
		left, lok := tree.Representation(self)
		right, rok := tree.Representation(rhs)
		if !lok || !rok {
			return false
		}
		if !seen.insert(left, right) {
			return true
		}
		return Castable(tree, left, right, seen)
	case KGeneric:
		if rhs.Kind != KGeneric || self.ID != rhs.ID || len(self.GenericArgs) != len(rhs.GenericArgs) {
			return false
		}
		for i := range self.GenericArgs {
			l, r := self.GenericArgs[i], rhs.GenericArgs[i]
			if !Assignable(tree, l, r, seen.clone()) || !Assignable(tree, r, l, seen.clone()) {
				return false
			}
		}
		return true
	case KFunc:
		if rhs.Kind != KFunc {
			return false
		}
		view1, write1 := self.FuncProps.Purity()
		view2, write2 := rhs.FuncProps.Purity()
		if !((view1 || !view2) && (write1 || !write2)) {
			return false
		}
		if !typeVectorsCastable(tree, rhs.Args, self.Args, seen.clone()) {
			return false
		}
		return Castable(tree, self.Return, rhs.Return, seen)
	case KMap:
		if rhs.Kind != KMap {
			return false
		}
		valRep, ok := tree.Representation(rhs.Value)
		if !ok {
			return false
		}
		return Castable(tree, self.Key, rhs.Key, seen.clone()) && Castable(tree, self.Value, valRep, seen)
	case KOption:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KOption {
			return false
		}
		return Castable(tree, self.Elem, rep.Elem, seen)
	case KUnion:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KUnion {
			return false
		}
		return typeVectorsCastable(tree, self.Elems, rep.Elems, seen)
	}
	return false
}

// CovariantCastable reports whether a value of type rhs may be
// covariant-cast to self (§4.1). Uint, int, bytes32 and address
// inter-cast; bool casts only to and from bool. Func requires equal
// view/write attributes, with arguments contravariant and the return
// covariant. Option only checks that rhs is also an Option. Union
// compares members by position, each of self's members against rhs's
// member in the reverse direction.
func CovariantCastable(tree *Tree, self, rhs *Type, seen seenPairs) bool {
	if seen == nil {
		seen = newSeenPairs()
	}
	if rhs.Kind == KEvery {
		return true
	}
	switch self.Kind {
	case KAny:
		return rhs.Kind != KVoid
	case KUint, KInt, KBytes32, KEthAddress:
		switch rhs.Kind {
		case KUint, KInt, KBytes32, KEthAddress:
			return true
		}
		return false
	case KBool:
		return rhs.Kind == KBool
	case KBuffer, KVoid, KEvery, KVariable:
		return self.Equal(rhs)
	case KTuple:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KTuple {
			return false
		}
		return typeVectorsCovariantCastable(tree, self.Elems, rep.Elems, seen)
	case KArray:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KArray {
			return false
		}
		return CovariantCastable(tree, self.Elem, rep.Elem, seen)
	case KFixedArray:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KFixedArray || self.Size != rep.Size {
			return false
		}
		return CovariantCastable(tree, self.Elem, rep.Elem, seen)
	case KStruct:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KStruct {
			return false
		}
		return fieldVectorsCovariantCastable(tree, self.Fields, rep.Fields, seen)
	case KNominal:
		left, lok := tree.Representation(self)
		right, rok := tree.Representation(rhs)
		if !lok || !rok {
			return false
		}
		if !seen.insert(left, right) {
			return true
		}
		return CovariantCastable(tree, left, right, seen)
	case KGeneric:
		if rhs.Kind != KGeneric || self.ID != rhs.ID || len(self.GenericArgs) != len(rhs.GenericArgs) {
			return false
		}
		for i := range self.GenericArgs {
			l, r := self.GenericArgs[i], rhs.GenericArgs[i]
			if !Assignable(tree, l, r, seen.clone()) || !Assignable(tree, r, l, seen.clone()) {
				return false
			}
		}
		return true
	case KFunc:
		if rhs.Kind != KFunc {
			return false
		}
		if self.FuncProps != rhs.FuncProps {
			return false
		}
		if !typeVectorsCovariantCastable(tree, rhs.Args, self.Args, seen.clone()) {
			return false
		}
		return CovariantCastable(tree, self.Return, rhs.Return, seen)
	case KMap:
		if rhs.Kind != KMap {
			return false
		}
		valRep, ok := tree.Representation(rhs.Value)
		if !ok {
			return false
		}
		return CovariantCastable(tree, self.Key, rhs.Key, seen.clone()) && CovariantCastable(tree, self.Value, valRep, seen)
	case KOption:
		rep, ok := tree.Representation(rhs)
		return ok && rep.Kind == KOption
	case KUnion:
		rep, ok := tree.Representation(rhs)
		if !ok || rep.Kind != KUnion {
			return false
		}
		return typeVectorsCovariantCastable(tree, rep.Elems, self.Elems, seen)
	}
	return false
}

func typeVectorsAssignable(tree *Tree, a, b []*Type, seen seenPairs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Assignable(tree, a[i], b[i], seen.clone()) {
			return false
		}
	}
	return true
}

func typeVectorsCastable(tree *Tree, a, b []*Type, seen seenPairs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Castable(tree, a[i], b[i], seen.clone()) {
			return false
		}
	}
	return true
}

func typeVectorsCovariantCastable(tree *Tree, a, b []*Type, seen seenPairs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !CovariantCastable(tree, a[i], b[i], seen.clone()) {
			return false
		}
	}
	return true
}

func fieldVectorsAssignable(tree *Tree, a, b []StructField, seen seenPairs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !Assignable(tree, a[i].Type, b[i].Type, seen.clone()) {
			return false
		}
	}
	return true
}

func fieldVectorsCastable(tree *Tree, a, b []StructField, seen seenPairs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !Castable(tree, a[i].Type, b[i].Type, seen.clone()) {
			return false
		}
	}
	return true
}

func fieldVectorsCovariantCastable(tree *Tree, a, b []StructField, seen seenPairs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !CovariantCastable(tree, a[i].Type, b[i].Type, seen.clone()) {
			return false
		}
	}
	return true
}

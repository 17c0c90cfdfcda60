// Package types implements the mini language's type system: the Type
// sum, the module-keyed type tree that resolves nominal references, and
// the three subtyping-like relations (assignable, castable,
// covariant_castable) plus their shared diagnostic and utility
// operations (first mismatch, substitution resolution, default values).
package types

import (
	"fmt"

	"github.com/mini-lang/minic/internal/intern"
)

// Kind discriminates the variants of Type.
type Kind int

const (
	KVoid Kind = iota
	KUint
	KInt
	KBool
	KBytes32
	KEthAddress
	KBuffer
	KTuple
	KArray
	KFixedArray
	KStruct
	KVariable
	KNominal
	KGeneric
	KFunc
	KMap
	KAny
	KEvery
	KOption
	KUnion
)

// StructField is one field of a Struct type.
type StructField struct {
	Name string
	Type *Type
}

// FuncProperties carries a function type's purity attributes (§4.4's
// view/write demotion rules).
type FuncProperties struct {
	View  bool
	Write bool
}

// Purity returns (view, write) for convenience at call sites that read
// the original's tuple-returning accessor.
func (p FuncProperties) Purity() (bool, bool) { return p.View, p.Write }

// Type is the recursive sum type every type-checked value, field, and
// signature is expressed in. Composite variants are built with the
// New* constructors below; scalar variants are the package-level Void,
// Uint, etc. singletons.
type Type struct {
	Kind Kind

	// KTuple, KUnion
	Elems []*Type
	// KArray, KFixedArray, KOption
	Elem *Type
	// KFixedArray
	Size int
	// KStruct
	Fields []StructField
	// KVariable, KNominal
	Path []string
	ID   intern.NameID
	// KGeneric
	GenericArgs []*Type
	// KFunc
	FuncProps FuncProperties
	Args      []*Type
	Return    *Type
	// KMap
	Key, Value *Type
}

// Scalar singletons. These are safe to compare with Equal but not with
// Go's == operator once composite types are involved.
var (
	Void       = &Type{Kind: KVoid}
	Uint       = &Type{Kind: KUint}
	Int        = &Type{Kind: KInt}
	Bool       = &Type{Kind: KBool}
	Bytes32    = &Type{Kind: KBytes32}
	EthAddress = &Type{Kind: KEthAddress}
	Buffer     = &Type{Kind: KBuffer}
	Any        = &Type{Kind: KAny}
	Every      = &Type{Kind: KEvery}
)

func NewTuple(elems ...*Type) *Type            { return &Type{Kind: KTuple, Elems: elems} }
func NewArray(elem *Type) *Type                { return &Type{Kind: KArray, Elem: elem} }
func NewFixedArray(elem *Type, size int) *Type { return &Type{Kind: KFixedArray, Elem: elem, Size: size} }
func NewStruct(fields ...StructField) *Type    { return &Type{Kind: KStruct, Fields: fields} }
func NewVariable(path []string, id intern.NameID) *Type {
	return &Type{Kind: KVariable, Path: path, ID: id}
}
func NewNominal(path []string, id intern.NameID) *Type {
	return &Type{Kind: KNominal, Path: path, ID: id}
}
func NewGeneric(id intern.NameID, args ...*Type) *Type {
	return &Type{Kind: KGeneric, ID: id, GenericArgs: args}
}
func NewFunc(props FuncProperties, args []*Type, ret *Type) *Type {
	return &Type{Kind: KFunc, FuncProps: props, Args: args, Return: ret}
}
func NewMap(key, value *Type) *Type   { return &Type{Kind: KMap, Key: key, Value: value} }
func NewOption(inner *Type) *Type     { return &Type{Kind: KOption, Elem: inner} }
func NewUnion(members ...*Type) *Type { return &Type{Kind: KUnion, Elems: members} }

// Equal performs pure structural equality, no type-tree resolution.
// Nominal/Variable types compare by (path, id); everything else
// compares by shape.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KVariable, KNominal:
		return t.ID == other.ID
	case KTuple, KUnion:
		if len(t.Elems) != len(other.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	case KArray, KOption:
		return t.Elem.Equal(other.Elem)
	case KFixedArray:
		return t.Size == other.Size && t.Elem.Equal(other.Elem)
	case KStruct:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != other.Fields[i].Name || !t.Fields[i].Type.Equal(other.Fields[i].Type) {
				return false
			}
		}
		return true
	case KGeneric:
		if t.ID != other.ID || len(t.GenericArgs) != len(other.GenericArgs) {
			return false
		}
		for i := range t.GenericArgs {
			if !t.GenericArgs[i].Equal(other.GenericArgs[i]) {
				return false
			}
		}
		return true
	case KFunc:
		if t.FuncProps != other.FuncProps || len(t.Args) != len(other.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equal(other.Args[i]) {
				return false
			}
		}
		return t.Return.Equal(other.Return)
	case KMap:
		return t.Key.Equal(other.Key) && t.Value.Equal(other.Value)
	default:
		return true // scalars, Any, Void, Every — Kind equality suffices
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	switch t.Kind {
	case KVoid:
		return "void"
	case KUint:
		return "uint"
	case KInt:
		return "int"
	case KBool:
		return "bool"
	case KBytes32:
		return "bytes32"
	case KEthAddress:
		return "address"
	case KBuffer:
		return "buffer"
	case KAny:
		return "any"
	case KEvery:
		return "every"
	case KTuple:
		return fmt.Sprintf("(%s)", joinTypes(t.Elems))
	case KArray:
		return t.Elem.String() + "[]"
	case KFixedArray:
		return fmt.Sprintf("%s[%d]", t.Elem, t.Size)
	case KStruct:
		s := "struct {"
		for i, f := range t.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.Name + ": " + f.Type.String()
		}
		return s + "}"
	case KVariable:
		return "var " + t.ID.String()
	case KNominal:
		return "nominal " + t.ID.String()
	case KGeneric:
		return fmt.Sprintf("%s<%s>", t.ID, joinTypes(t.GenericArgs))
	case KFunc:
		return fmt.Sprintf("func(%s) -> %s", joinTypes(t.Args), t.Return)
	case KMap:
		return fmt.Sprintf("map<%s, %s>", t.Key, t.Value)
	case KOption:
		return "option<" + t.Elem.String() + ">"
	case KUnion:
		return fmt.Sprintf("union<%s>", joinTypes(t.Elems))
	}
	return "<invalid type>"
}

func joinTypes(ts []*Type) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}

// FindNominals returns every Nominal type id reachable inside t, used by
// import-usage flow analysis (§4.5) to mark a nominal type's defining
// module as "used".
func (t *Type) FindNominals() []intern.NameID {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KNominal:
		return []intern.NameID{t.ID}
	case KArray, KFixedArray, KOption:
		return t.Elem.FindNominals()
	case KTuple, KUnion:
		var out []intern.NameID
		for _, e := range t.Elems {
			out = append(out, e.FindNominals()...)
		}
		return out
	case KFunc:
		out := t.Return.FindNominals()
		for _, a := range t.Args {
			out = append(out, a.FindNominals()...)
		}
		return out
	case KStruct:
		var out []intern.NameID
		for _, f := range t.Fields {
			out = append(out, f.Type.FindNominals()...)
		}
		return out
	case KGeneric:
		var out []intern.NameID
		for _, a := range t.GenericArgs {
			out = append(out, a.FindNominals()...)
		}
		return out
	case KMap:
		return append(t.Key.FindNominals(), t.Value.FindNominals()...)
	}
	return nil
}

// StructSlot returns the field index of name in a Struct type, or -1.
func (t *Type) StructSlot(name string) int {
	if t.Kind != KStruct {
		return -1
	}
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

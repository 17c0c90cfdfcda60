package types

import (
	"fmt"

	"github.com/mini-lang/minic/internal/intern"
)

// Resolve substitutes every Variable occurrence in t using typeArgs,
// returning an error if some Variable has no entry (used when
// instantiating a generic type/function declaration's body against a
// concrete argument list).
func Resolve(t *Type, typeArgs map[intern.NameID]*Type) (*Type, error) {
	if t.Kind == KVariable {
		sub, ok := typeArgs[t.ID]
		if !ok {
			return nil, fmt.Errorf("failed to resolve type variable %s", t.ID)
		}
		return sub, nil
	}
	clone := *t
	var err error
	switch t.Kind {
	case KTuple, KUnion:
		clone.Elems = make([]*Type, len(t.Elems))
		for i, e := range t.Elems {
			if clone.Elems[i], err = Resolve(e, typeArgs); err != nil {
				return nil, err
			}
		}
	case KArray, KFixedArray, KOption:
		if clone.Elem, err = Resolve(t.Elem, typeArgs); err != nil {
			return nil, err
		}
	case KStruct:
		clone.Fields = make([]StructField, len(t.Fields))
		for i, f := range t.Fields {
			rt, e := Resolve(f.Type, typeArgs)
			if e != nil {
				return nil, e
			}
			clone.Fields[i] = StructField{Name: f.Name, Type: rt}
		}
	case KGeneric:
		clone.GenericArgs = make([]*Type, len(t.GenericArgs))
		for i, a := range t.GenericArgs {
			if clone.GenericArgs[i], err = Resolve(a, typeArgs); err != nil {
				return nil, err
			}
		}
	case KFunc:
		clone.Args = make([]*Type, len(t.Args))
		for i, a := range t.Args {
			if clone.Args[i], err = Resolve(a, typeArgs); err != nil {
				return nil, err
			}
		}
		if clone.Return, err = Resolve(t.Return, typeArgs); err != nil {
			return nil, err
		}
	case KMap:
		if clone.Key, err = Resolve(t.Key, typeArgs); err != nil {
			return nil, err
		}
		if clone.Value, err = Resolve(t.Value, typeArgs); err != nil {
			return nil, err
		}
	}
	return &clone, nil
}

// ConsistentOverArgs reports an error if t contains a Variable whose id
// is not in typeArgs — i.e. the generic declaration references a type
// parameter it never declared.
func ConsistentOverArgs(t *Type, typeArgs map[intern.NameID]bool) error {
	if t.Kind == KVariable {
		if !typeArgs[t.ID] {
			return fmt.Errorf("type variable %s is not one of the declared generic parameters", t.ID)
		}
		return nil
	}
	switch t.Kind {
	case KTuple, KUnion:
		for _, e := range t.Elems {
			if err := ConsistentOverArgs(e, typeArgs); err != nil {
				return err
			}
		}
	case KArray, KFixedArray, KOption:
		return ConsistentOverArgs(t.Elem, typeArgs)
	case KStruct:
		for _, f := range t.Fields {
			if err := ConsistentOverArgs(f.Type, typeArgs); err != nil {
				return err
			}
		}
	case KGeneric:
		for _, a := range t.GenericArgs {
			if err := ConsistentOverArgs(a, typeArgs); err != nil {
				return err
			}
		}
	case KFunc:
		for _, a := range t.Args {
			if err := ConsistentOverArgs(a, typeArgs); err != nil {
				return err
			}
		}
		return ConsistentOverArgs(t.Return, typeArgs)
	case KMap:
		if err := ConsistentOverArgs(t.Key, typeArgs); err != nil {
			return err
		}
		return ConsistentOverArgs(t.Value, typeArgs)
	}
	return nil
}

package types

import "github.com/mini-lang/minic/internal/intern"

// Tree is the global type tree: it maps a nominal type's defining
// (module path, NameID) to the Type it was declared as. Every relation
// in this package takes a *Tree so that Nominal references can be
// resolved one layer at a time without the whole module graph being
// loaded up front.
type Tree struct {
	entries map[intern.NameID]*Type
}

// NewTree creates an empty type tree.
func NewTree() *Tree {
	return &Tree{entries: make(map[intern.NameID]*Type)}
}

// Define records the declared type for a nominal id. Re-defining an id
// is a programmer error — module loading assigns each declared type
// name exactly one NameID.
func (t *Tree) Define(id intern.NameID, def *Type) {
	t.entries[id] = def
}

// Lookup returns the declared type for a nominal id, if known.
func (t *Tree) Lookup(id intern.NameID) (*Type, bool) {
	def, ok := t.entries[id]
	return def, ok
}

// Representation follows Nominal references until it reaches a
// non-Nominal type, or reports false if any link in the chain is
// unresolved.
func (t *Tree) Representation(typ *Type) (*Type, bool) {
	cur := typ
	for cur.Kind == KNominal {
		def, ok := t.Lookup(cur.ID)
		if !ok {
			return nil, false
		}
		cur = def
	}
	return cur, true
}

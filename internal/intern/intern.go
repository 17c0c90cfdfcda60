// Package intern provides the string-interning contract the rest of the
// compiler relies on: stable integer IDs for names, scoped to the module
// that defines them.
package intern

import "fmt"

// NameID is an interned name: a module-local integer paired with the path
// of the module that defines it. Equality is by (Module, Ordinal) — two
// NameIDs from different modules are never equal even if their ordinals
// coincide.
type NameID struct {
	Module  string
	Ordinal int
}

func (n NameID) String() string {
	return fmt.Sprintf("%s#%d", n.Module, n.Ordinal)
}

// Zero reports whether n is the unset NameID.
func (n NameID) Zero() bool {
	return n.Module == "" && n.Ordinal == 0
}

// Table is a single module's append-only name table. It assigns fresh
// ordinals to names as they are first seen and never reuses or renumbers
// an ordinal once assigned.
type Table struct {
	module string
	byName map[string]NameID
	names  []string
}

// NewTable creates an empty interning table for the given module path.
func NewTable(module string) *Table {
	return &Table{
		module: module,
		byName: make(map[string]NameID),
	}
}

// Intern returns the NameID for name, assigning a fresh ordinal the first
// time name is seen in this table.
func (t *Table) Intern(name string) NameID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := NameID{Module: t.module, Ordinal: len(t.names)}
	t.byName[name] = id
	t.names = append(t.names, name)
	return id
}

// Lookup returns the NameID already assigned to name, if any.
func (t *Table) Lookup(name string) (NameID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the source name for a previously interned ID. Panics if id
// was not produced by this table — interning is append-only and local to
// a module, so cross-table lookups are a programmer error.
func (t *Table) Name(id NameID) string {
	if id.Module != t.module || id.Ordinal < 0 || id.Ordinal >= len(t.names) {
		panic(fmt.Sprintf("intern: %s does not belong to table for module %q", id, t.module))
	}
	return t.names[id.Ordinal]
}

// Len returns the number of distinct names interned so far.
func (t *Table) Len() int { return len(t.names) }

// Module returns the module path this table is scoped to.
func (t *Table) Module() string { return t.module }

// Registry keeps one Table per module, keyed by module path, so the
// pipeline can look up or create tables as modules are discovered.
type Registry struct {
	tables map[string]*Table
}

// NewRegistry creates an empty module-keyed interning registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// TableFor returns the Table for a module path, creating it on first use.
func (r *Registry) TableFor(module string) *Table {
	if t, ok := r.tables[module]; ok {
		return t
	}
	t := NewTable(module)
	r.tables[module] = t
	return t
}

package module

import (
	"fmt"
	"sync"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/trace"
)

// SourceProvider parses the `.mini` file at path into a raw ast.Module.
// The grammar/parser itself is outside this repo's scope (spec.md §1
// assumes a parser that hands the checker this shape already built);
// production wiring supplies a real parser, tests supply a provider
// backed by a map of path -> *ast.Module.
type SourceProvider func(path string) (*ast.Module, error)

// Tree is a fully loaded module graph: every module transitively
// reachable from the entry module, keyed by its `::`-separated module
// path, with cycle detection and the import-wiring decisions spec.md
// §6 calls for (a resolution failure is fatal for the importing
// module, never silently skipped).
type Tree struct {
	Modules map[string]*ast.Module
	Order   []string // load order, entry module last visited first becomes first completed (dependency order)

	// Imports maps an importing module's path to each of its UseDecls
	// paired with the already-resolved exporting *ast.Module, captured
	// here during loading so the checking pass doesn't need to re-run
	// import-path resolution to find each edge's target.
	Imports map[string][]ResolvedImport
}

// ResolvedImport pairs a `use path::name` edge with the module it
// resolved to.
type ResolvedImport struct {
	Use    *ast.UseDecl
	Target *ast.Module
}

// Loader recursively builds a Tree starting from the entry module,
// resolving every UseDecl through a Resolver and loading each
// transitively imported module exactly once.
type Loader struct {
	resolver *Resolver
	provider SourceProvider
	names    *intern.Registry

	mu        sync.Mutex
	cache     map[string]*ast.Module
	loadStack []string

	tracer *trace.Tracer
}

// SetTracer attaches a code-gen-trace tracer; nil (the default)
// disables the "module loaded" trace line (§9).
func (l *Loader) SetTracer(t *trace.Tracer) {
	l.tracer = t
}

// NewLoader creates a Loader that resolves imports via resolver and
// reads module sources via provider.
func NewLoader(resolver *Resolver, provider SourceProvider, names *intern.Registry) *Loader {
	return &Loader{
		resolver: resolver,
		provider: provider,
		names:    names,
		cache:    make(map[string]*ast.Module),
	}
}

// LoadTree builds the full transitive module tree reachable from
// entryPath, returning a fatal *errors.Report the first time an import
// fails to resolve or a cycle is detected (§6: unresolved imports are a
// hard failure, not a warning).
func (l *Loader) LoadTree(entryPath string) (*Tree, error) {
	tree := &Tree{Modules: make(map[string]*ast.Module), Imports: make(map[string][]ResolvedImport)}
	if _, err := l.load(entryPath, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (l *Loader) load(path string, tree *Tree) (*ast.Module, error) {
	l.mu.Lock()
	if mod, ok := l.cache[path]; ok {
		l.mu.Unlock()
		return mod, nil
	}
	for _, onStack := range l.loadStack {
		if onStack == path {
			cycle := append(append([]string{}, l.loadStack...), path)
			l.mu.Unlock()
			return nil, errors.WrapReport(&errors.Report{
				Schema:  "mini.diagnostic/v1",
				Code:    errors.ModCycle,
				Phase:   "module",
				Message: fmt.Sprintf("import cycle detected: %v", cycle),
			})
		}
	}
	l.loadStack = append(l.loadStack, path)
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.loadStack = l.loadStack[:len(l.loadStack)-1]
		l.mu.Unlock()
	}()

	mod, err := l.provider(path)
	if err != nil {
		return nil, errors.WrapReport(&errors.Report{
			Schema:  "mini.diagnostic/v1",
			Code:    errors.ModUnresolvedImport,
			Phase:   "module",
			Message: fmt.Sprintf("failed to load module at %s: %v", path, err),
		})
	}

	// Make sure this module's interning table exists before recursing.
	// No names are interned here; the Registry hands the same table to
	// every later lookup of this module path.
	l.names.TableFor(mod.Path)

	for _, use := range mod.Imports {
		depPath, rerr := l.resolver.ResolveImport(use.Path)
		if rerr != nil {
			return nil, errors.WrapReport(&errors.Report{
				Schema:  "mini.diagnostic/v1",
				Code:    errors.ModUnresolvedImport,
				Phase:   "module",
				Message: rerr.Error(),
				Pos:     use.Pos,
			})
		}
		depMod, derr := l.load(depPath, tree)
		if derr != nil {
			return nil, derr
		}
		if !exports(depMod, use.Name) {
			return nil, errors.WrapReport(&errors.Report{
				Schema:  "mini.diagnostic/v1",
				Code:    errors.ModUnresolvedImport,
				Phase:   "module",
				Message: fmt.Sprintf("module %q does not export %q", depMod.Path, use.Name),
				Pos:     use.Pos,
			})
		}
		tree.Imports[mod.Path] = append(tree.Imports[mod.Path], ResolvedImport{Use: use, Target: depMod})
	}

	l.mu.Lock()
	l.cache[path] = mod
	l.mu.Unlock()
	tree.Modules[mod.Path] = mod
	tree.Order = append(tree.Order, mod.Path)
	l.tracer.ModuleLoaded(mod.Path)
	return mod, nil
}

// exports reports whether mod declares a public top-level symbol named
// name (a function, type, global, or const).
func exports(mod *ast.Module, name string) bool {
	for _, f := range mod.Funcs {
		if f.Name == name && f.Public {
			return true
		}
	}
	for _, t := range mod.Types {
		if t.Name == name {
			return true
		}
	}
	for _, t := range mod.GenericTypes {
		if t.Name == name {
			return true
		}
	}
	for _, g := range mod.Globals {
		if g.Name == name {
			return true
		}
	}
	for _, c := range mod.Consts {
		if c.Name == name {
			return true
		}
	}
	return false
}

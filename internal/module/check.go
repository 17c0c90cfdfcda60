package module

import (
	"fmt"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/check"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/types"
)

// CheckTree type-checks every module in tree in dependency order,
// wiring each `use path::name` edge into the importing module's
// Checker before that module's own functions are checked (§2 step 2:
// resolve the target in the exporting module and install a
// corresponding symbol into the importing module's tables).
//
// Dependencies are always checked before the modules that import them
// (tree.Order's invariant), so by the time an importer's Checker is
// built, every module it imports from already has a populated Checker
// available to read exported signatures from.
func CheckTree(tree *Tree, names *intern.Registry, typeTree *types.Tree) (map[string]*check.Checker, *errors.Sink) {
	sink := errors.NewSink()
	checkers := make(map[string]*check.Checker, len(tree.Order))

	for _, path := range tree.Order {
		mod := tree.Modules[path]
		c := check.NewChecker(names.TableFor(path), typeTree)

		for _, ri := range tree.Imports[path] {
			depChecker, ok := checkers[ri.Target.Path]
			if !ok {
				continue // dependency failed to build a checker; already reported
			}
			if err := wireImport(c, depChecker, ri.Use); err != nil {
				sink.Add(err)
			}
		}

		c.CheckModule(mod)
		for _, r := range c.Sink().Sorted() {
			sink.Add(r)
		}
		checkers[path] = c
	}
	return checkers, sink
}

// wireImport resolves use.Name against the exporting module's already-
// checked Checker and installs the matching symbol into importer,
// trying each of the three possible kinds in turn since a UseDecl
// carries no static kind tag.
func wireImport(importer, exporter *check.Checker, use *ast.UseDecl) *errors.Report {
	local := use.Alias
	if local == "" {
		local = use.Name
	}

	if sig, ok := exporter.ExportedFunc(use.Name); ok {
		importer.DeclareImportedFunc(local, sig)
		return nil
	}
	if id, ok := exporter.ExportedTypeID(use.Name); ok {
		importer.DeclareImportedType(local, id)
		return nil
	}
	if t, ok := exporter.ExportedGlobal(use.Name); ok {
		importer.DeclareImportedGlobal(local, t)
		return nil
	}
	return &errors.Report{
		Schema: "mini.diagnostic/v1", Code: errors.ModUnresolvedImport, Phase: "module",
		Message: fmt.Sprintf("import %q does not resolve to an exported type, function, or global", use.Name), Pos: use.Pos,
	}
}

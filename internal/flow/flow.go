// Package flow implements the three post-typecheck analyses spec.md
// §4.5 describes: reachability (dead code after an early return),
// liveness (values written but never read), and import usage (names
// pulled in by a use declaration but never referenced). None of these
// produce type errors — every finding here is a warning, collected
// into the same errors.Report shape the checker uses so a caller can
// merge and sort them together.
package flow

import (
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/typedast"
)

// CheckFunc runs reachability and liveness over one checked function
// and returns every warning they produce, in the order the original
// compiler emits them: reachability first, then unused parameters,
// then unused local assignments.
func CheckFunc(fn *typedast.TypedFunc) []*errors.Report {
	var warnings []*errors.Report
	warnings = append(warnings, Reachability(fn.Body)...)
	warnings = append(warnings, Liveness(fn)...)
	return warnings
}

// CheckProgram runs CheckFunc over every function in prog. Import
// usage is a separate step (ImportUsage) because, unlike reachability
// and liveness, it needs the module's use-declaration table to turn a
// leftover NameID back into a source position and alias to warn about.
func CheckProgram(prog *typedast.TypedProgram) []*errors.Report {
	var warnings []*errors.Report
	for _, fn := range prog.Funcs {
		warnings = append(warnings, CheckFunc(fn)...)
	}
	return warnings
}

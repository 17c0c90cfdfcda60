package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mini-lang/minic/internal/check"
	"github.com/mini-lang/minic/internal/inline"
	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
	"github.com/mini-lang/minic/internal/walker"
)

var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "type-check then inline-rewrite the demo module",
	Long: "inline runs the checker over the demo module, builds the " +
		"call table, and rewrites every call site the configured " +
		"heuristic (mini.yaml's `inline:` key, overridable per call " +
		"site) decides to expand, then reports the call sites left in " +
		"each function and the total before and after.",
	RunE: runInline,
}

func init() {
	rootCmd.AddCommand(inlineCmd)
}

func runInline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return exitWithError(err)
	}
	tracer := tracerFor(cfg)

	mod := demoModule()
	names := intern.NewRegistry().TableFor(mod.Path)
	tree := types.NewTree()
	checker := check.NewChecker(names, tree)
	checker.SetTracer(tracer)

	prog := checker.CheckModule(mod)
	if checker.Sink().HasErrors() {
		for _, r := range checker.Sink().Sorted() {
			printReport(r)
		}
		return fmt.Errorf("demo module failed to check, not inlining")
	}

	table := inline.NewTable(prog.Funcs)
	inliner := inline.New(table, heuristicFor(cfg))
	inliner.SetTracer(tracer)

	before := 0
	for _, fn := range prog.Funcs {
		before += countCallsInFunc(fn)
	}
	inliner.Program(prog)
	after := 0
	for _, fn := range prog.Funcs {
		n := countCallsInFunc(fn)
		after += n
		fmt.Printf("%s: %d call site(s) remaining\n", fn.Name, n)
	}
	fmt.Printf("total call sites: %d -> %d\n", before, after)
	return nil
}

// countCallsInFunc walks fn's body the same way the inliner does
// (one walker.RecursiveApply root per top-level statement) and counts
// expression nodes that are calls.
func countCallsInFunc(fn *typedast.TypedFunc) int {
	count := 0
	visit := func(node *walker.Node, _ struct{}, _ *struct{}) bool {
		if node.Kind == walker.KindExpression && node.Expr != nil && node.Expr.Call != nil {
			count++
		}
		return true
	}
	for i := range fn.Body {
		root := walker.Node{Kind: walker.KindStatement, Stmt: &fn.Body[i]}
		walker.RecursiveApply(root, visit, struct{}{}, struct{}{}, func(s struct{}) struct{} { return s })
	}
	return count
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/types"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "interactively query §-relations (assignable/castable/covariant) between a fixed set of prelude types",
	Long: "repl starts a liner-backed session over a small, fixed set " +
		"of named types (there is no `.mini` parser in this repo to " +
		"read arbitrary type syntax from) and lets you query the " +
		"structural relations internal/types implements between any " +
		"two of them.",
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

var (
	replGreen  = color.New(color.FgGreen).SprintFunc()
	replRed    = color.New(color.FgRed).SprintFunc()
	replDim    = color.New(color.Faint).SprintFunc()
	replBold   = color.New(color.Bold).SprintFunc()
)

// preludeSession is the fixed set of named types the repl exposes, and
// the tree they're resolved against.
type preludeSession struct {
	tree  *types.Tree
	order []string
	ids   map[string]intern.NameID
}

func newPreludeSession() *preludeSession {
	names := intern.NewTable("repl")
	tree := types.NewTree()
	s := &preludeSession{tree: tree, ids: map[string]intern.NameID{}}

	def := func(name string, t *types.Type) {
		id := names.Intern(name)
		tree.Define(id, t)
		s.ids[name] = id
		s.order = append(s.order, name)
	}

	point := types.NewStruct(
		types.StructField{Name: "x", Type: types.Int},
		types.StructField{Name: "y", Type: types.Int},
	)
	def("Point", point)
	def("IntOption", types.NewOption(types.Int))
	def("UintOption", types.NewOption(types.Uint))
	def("IntOrBool", types.NewUnion(types.Int, types.Bool))
	def("IntArray", types.NewArray(types.Int))
	def("IntPair", types.NewTuple(types.Int, types.Int))

	return s
}

func (s *preludeSession) resolve(name string) (*types.Type, bool) {
	switch name {
	case "int":
		return types.Int, true
	case "uint":
		return types.Uint, true
	case "bool":
		return types.Bool, true
	case "any":
		return types.Any, true
	case "every":
		return types.Every, true
	}
	id, ok := s.ids[name]
	if !ok {
		return nil, false
	}
	t, ok := s.tree.Lookup(id)
	return t, ok
}

func runRepl(cmd *cobra.Command, args []string) error {
	session := newPreludeSession()

	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".minic_repl_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(false)
	line.SetCompleter(func(input string) (c []string) {
		for _, cmd := range []string{":help", ":quit", ":list", ":assignable", ":castable", ":covariant"} {
			if strings.HasPrefix(cmd, input) {
				c = append(c, cmd)
			}
		}
		return
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", replBold("minic repl"))
	fmt.Fprintln(out, replDim("Type :help for commands, :quit to exit."))

	for {
		input, err := line.Prompt("mini> ")
		if err == io.EOF {
			fmt.Fprintln(out, replGreen("goodbye"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", replRed("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if !replDispatch(out, session, input) {
			break
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	return nil
}

// replDispatch handles one line of input, returning false when the
// session should end.
func replDispatch(out io.Writer, s *preludeSession, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":quit", ":q":
		fmt.Fprintln(out, replGreen("goodbye"))
		return false
	case ":help", ":h":
		fmt.Fprintln(out, ":list                    list the prelude's named types")
		fmt.Fprintln(out, ":assignable A B          is a value of type B assignable to a var of type A?")
		fmt.Fprintln(out, ":castable A B            is B castable to A?")
		fmt.Fprintln(out, ":covariant A B           is B covariant-castable to A?")
		fmt.Fprintln(out, ":quit                    exit")
	case ":list":
		fmt.Fprintln(out, "scalars: int, uint, bool, any, every")
		for _, name := range s.order {
			t, _ := s.resolve(name)
			fmt.Fprintf(out, "%s = %s\n", name, t.String())
		}
	case ":assignable":
		self, rhs, ok := resolvePair(out, s, fields)
		if ok {
			report(out, "assignable", fields, types.Assignable(s.tree, self, rhs, nil))
		}
	case ":castable":
		self, rhs, ok := resolvePair(out, s, fields)
		if ok {
			report(out, "castable", fields, types.Castable(s.tree, self, rhs, nil))
		}
	case ":covariant":
		self, rhs, ok := resolvePair(out, s, fields)
		if ok {
			report(out, "covariant-castable", fields, types.CovariantCastable(s.tree, self, rhs, nil))
		}
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", replRed("error"), fields[0])
	}
	return true
}

// resolvePair looks up the two type names a relation command names in
// fields[1] and fields[2].
func resolvePair(out io.Writer, s *preludeSession, fields []string) (self, rhs *types.Type, ok bool) {
	if len(fields) != 3 {
		fmt.Fprintf(out, "%s: usage: %s A B\n", replRed("error"), fields[0])
		return nil, nil, false
	}
	self, ok = s.resolve(fields[1])
	if !ok {
		fmt.Fprintf(out, "%s: unknown type %q (try :list)\n", replRed("error"), fields[1])
		return nil, nil, false
	}
	rhs, ok = s.resolve(fields[2])
	if !ok {
		fmt.Fprintf(out, "%s: unknown type %q (try :list)\n", replRed("error"), fields[2])
		return nil, nil, false
	}
	return self, rhs, true
}

func report(out io.Writer, label string, fields []string, holds bool) {
	if holds {
		fmt.Fprintf(out, "%s: %s is %s to %s\n", replGreen("yes"), fields[2], label, fields[1])
	} else {
		fmt.Fprintf(out, "%s: %s is not %s to %s\n", replRed("no"), fields[2], label, fields[1])
	}
}

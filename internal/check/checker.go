// Package check implements the bi-directional type checker (spec §4.4):
// for each function it type-checks statements and expressions against
// the module's function/global/type tables and produces a parallel
// typed AST in which every expression carries its resolved
// types.Type. Operator specialization (signed vs. unsigned), constant
// folding, and the commutative-operand swap all happen here.
package check

import (
	"fmt"

	"github.com/mini-lang/minic/internal/ast"
	"github.com/mini-lang/minic/internal/errors"
	"github.com/mini-lang/minic/internal/intern"
	"github.com/mini-lang/minic/internal/scope"
	"github.com/mini-lang/minic/internal/trace"
	"github.com/mini-lang/minic/internal/typedast"
	"github.com/mini-lang/minic/internal/types"
)

// localBinding is one entry in a function's local scope: its checked
// type and the slot a (future) code generator would assign it.
type localBinding struct {
	Type *types.Type
	Slot int
}

// Checker type-checks a single module's declarations against a shared
// type tree. Imported symbols (types, functions, globals) are
// registered with the Declare* methods before CheckModule runs; own
// declarations are added to the same tables as they're processed, so
// a module's top-level functions may call each other in any order.
type Checker struct {
	names *intern.Table
	tree  *types.Tree

	typeNames     map[string]intern.NameID
	funcs         map[string]*types.Type
	globals       map[string]*types.Type
	publicFuncs   map[string]bool
	importedNames map[string]bool

	sink   *errors.Sink
	tracer *trace.Tracer
}

// SetTracer attaches a code-gen-trace tracer; nil (the default)
// disables tracing entirely. Set per §3's codegen_print attribute
// driving in-band trace output, not an external diagnostics format.
func (c *Checker) SetTracer(t *trace.Tracer) {
	c.tracer = t
}

// NewChecker creates a Checker for one module. names is that module's
// own interning table (used to assign NameIDs to its type
// declarations); tree is the shared type tree every module's nominal
// definitions are Define'd into.
func NewChecker(names *intern.Table, tree *types.Tree) *Checker {
	return &Checker{
		names:         names,
		tree:          tree,
		typeNames:     make(map[string]intern.NameID),
		funcs:         make(map[string]*types.Type),
		globals:       make(map[string]*types.Type),
		publicFuncs:   make(map[string]bool),
		importedNames: make(map[string]bool),
		sink:          errors.NewSink(),
	}
}

// DeclareImportedType registers a type name resolved from another
// module so local type-expression resolution can see it.
func (c *Checker) DeclareImportedType(name string, id intern.NameID) {
	c.typeNames[name] = id
}

// DeclareImportedFunc registers an imported function's signature.
func (c *Checker) DeclareImportedFunc(name string, sig *types.Type) {
	c.funcs[name] = sig
}

// DeclareImportedGlobal registers an imported global variable's type.
func (c *Checker) DeclareImportedGlobal(name string, t *types.Type) {
	c.globals[name] = t
}

// Sink returns the diagnostic sink accumulated across CheckModule.
func (c *Checker) Sink() *errors.Sink { return c.sink }

// ExportedFunc returns name's checked signature if this module
// declares it as a public function, for an importer to install via
// DeclareImportedFunc.
func (c *Checker) ExportedFunc(name string) (*types.Type, bool) {
	if !c.publicFuncs[name] {
		return nil, false
	}
	t, ok := c.funcs[name]
	return t, ok
}

// ExportedGlobal returns name's checked type if this module declares
// it as a global, for an importer to install via DeclareImportedGlobal.
func (c *Checker) ExportedGlobal(name string) (*types.Type, bool) {
	t, ok := c.globals[name]
	return t, ok
}

// ExportedTypeID returns the NameID name was interned under in this
// module, for an importer to install via DeclareImportedType.
func (c *Checker) ExportedTypeID(name string) (intern.NameID, bool) {
	id, ok := c.typeNames[name]
	return id, ok
}

// CheckModule type-checks every function declared in mod, returning
// the typed program. Per §5's failure-isolation rule, one function's
// errors don't prevent the others from being checked — a function that
// fails to check is simply omitted from the returned program.
func (c *Checker) CheckModule(mod *ast.Module) *typedast.TypedProgram {
	// Step 0: record every locally-bound import name (§116: `Let pat =
	// e` rejects a bound name that shadows an import) before checking
	// anything that could bind a name.
	for _, use := range mod.Imports {
		local := use.Alias
		if local == "" {
			local = use.Name
		}
		c.importedNames[local] = true
	}

	// Step 1: intern and register every declared type name so forward
	// references (including mutually recursive nominal structs) resolve.
	for _, td := range mod.Types {
		c.typeNames[td.Name] = c.names.Intern(td.Name)
	}
	for _, gtd := range mod.GenericTypes {
		c.typeNames[gtd.Name] = c.names.Intern(gtd.Name)
	}

	// Step 2: resolve each declared type's definition into the shared
	// type tree, now that every name in this module has an id.
	for _, td := range mod.Types {
		id := c.typeNames[td.Name]
		def, err := c.resolveTypeExpr(td.Def)
		if err != nil {
			c.sink.Add(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck",
				Message: fmt.Sprintf("type %q: %v", td.Name, err), Pos: td.Pos,
			})
			continue
		}
		c.tree.Define(id, def)
	}
	for _, gtd := range mod.GenericTypes {
		id := c.typeNames[gtd.Name]
		def, err := c.resolveTypeExpr(gtd.Def)
		if err != nil {
			c.sink.Add(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck",
				Message: fmt.Sprintf("generic type %q: %v", gtd.Name, err), Pos: gtd.Pos,
			})
			continue
		}
		c.tree.Define(id, def)
	}

	// Step 3: register global variable types before checking any
	// function body, so a function may read a global declared after it.
	for _, g := range mod.Globals {
		t, err := c.resolveTypeExpr(g.Type)
		if err != nil {
			c.sink.Add(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck",
				Message: fmt.Sprintf("global %q: %v", g.Name, err), Pos: g.Pos,
			})
			continue
		}
		c.globals[g.Name] = t
	}

	// Step 4: register every function's signature before checking any
	// body, so mutually recursive calls resolve regardless of order.
	for _, fd := range mod.Funcs {
		sig, err := c.funcSignature(fd)
		if err != nil {
			c.sink.Add(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCUnresolvedType, Phase: "typecheck",
				Message: fmt.Sprintf("function %q: %v", fd.Name, err), Pos: fd.Pos,
			})
			continue
		}
		c.funcs[fd.Name] = sig
		if fd.Public {
			c.publicFuncs[fd.Name] = true
		}
	}

	// Step 5: check constants (their value expressions may reference
	// only other constants and literals, but this pass doesn't enforce
	// that beyond the ordinary expression-checking rules).
	for _, cd := range mod.Consts {
		fc := c.newFuncChecker(types.Void, false, false)
		if _, err := fc.checkExpr(cd.Value); err != nil {
			c.sink.Add(fc.reportFor(err, cd.Pos))
		}
	}

	prog := &typedast.TypedProgram{ModulePath: mod.Path}
	for _, fd := range mod.Funcs {
		sig, ok := c.funcs[fd.Name]
		if !ok {
			continue // signature failed to resolve; already reported
		}
		tf, err := c.checkFunc(fd, sig)
		if err != nil {
			if r, ok := errors.AsReport(err); ok {
				c.sink.Add(r)
			} else {
				c.sink.Add(errors.NewGeneric("typecheck", err))
			}
			continue
		}
		prog.Funcs = append(prog.Funcs, tf)
	}
	return prog
}

// funcSignature builds the Func type a FuncDecl's header describes,
// without checking its body.
func (c *Checker) funcSignature(fd *ast.FuncDecl) (*types.Type, error) {
	args := make([]*types.Type, len(fd.Args))
	for i, p := range fd.Args {
		t, err := c.resolveTypeExpr(p.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", p.Name, err)
		}
		args[i] = t
	}
	ret := types.Void
	if fd.ReturnType != nil {
		t, err := c.resolveTypeExpr(fd.ReturnType)
		if err != nil {
			return nil, fmt.Errorf("return type: %w", err)
		}
		ret = t
	}
	return types.NewFunc(types.FuncProperties{View: fd.View, Write: fd.Write}, args, ret), nil
}

// resolveTypeExpr converts a syntactic type annotation into its
// resolved types.Type, interning nominal names against this module's
// table (imported names must already have been registered via
// DeclareImportedType).
func (c *Checker) resolveTypeExpr(te ast.TypeExpr) (*types.Type, error) {
	switch t := te.(type) {
	case nil:
		return types.Void, nil
	case *ast.NamedTypeExpr:
		switch t.Name {
		case "void":
			return types.Void, nil
		case "uint":
			return types.Uint, nil
		case "int":
			return types.Int, nil
		case "bool":
			return types.Bool, nil
		case "bytes32":
			return types.Bytes32, nil
		case "address":
			return types.EthAddress, nil
		case "buffer":
			return types.Buffer, nil
		case "any":
			return types.Any, nil
		case "every":
			return types.Every, nil
		}
		id, ok := c.typeNames[t.Name]
		if !ok {
			return nil, fmt.Errorf("unresolved type name %q", t.Name)
		}
		if len(t.Args) == 0 {
			return types.NewNominal([]string{id.Module}, id), nil
		}
		args := make([]*types.Type, len(t.Args))
		for i, a := range t.Args {
			at, err := c.resolveTypeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		return types.NewGeneric(id, args...), nil
	case *ast.TupleTypeExpr:
		elems := make([]*types.Type, len(t.Elems))
		for i, e := range t.Elems {
			et, err := c.resolveTypeExpr(e)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		return types.NewTuple(elems...), nil
	case *ast.ArrayTypeExpr:
		elem, err := c.resolveTypeExpr(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem), nil
	case *ast.FixedArrayTypeExpr:
		elem, err := c.resolveTypeExpr(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewFixedArray(elem, t.Size), nil
	case *ast.StructTypeExpr:
		fields := make([]types.StructField, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := c.resolveTypeExpr(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = types.StructField{Name: f.Name, Type: ft}
		}
		return types.NewStruct(fields...), nil
	case *ast.MapTypeExpr:
		k, err := c.resolveTypeExpr(t.Key)
		if err != nil {
			return nil, err
		}
		v, err := c.resolveTypeExpr(t.Value)
		if err != nil {
			return nil, err
		}
		return types.NewMap(k, v), nil
	case *ast.OptionTypeExpr:
		inner, err := c.resolveTypeExpr(t.Inner)
		if err != nil {
			return nil, err
		}
		return types.NewOption(inner), nil
	case *ast.UnionTypeExpr:
		members := make([]*types.Type, len(t.Members))
		for i, m := range t.Members {
			mt, err := c.resolveTypeExpr(m)
			if err != nil {
				return nil, err
			}
			members[i] = mt
		}
		return types.NewUnion(members...), nil
	case *ast.FuncTypeExpr:
		args := make([]*types.Type, len(t.Args))
		for i, a := range t.Args {
			at, err := c.resolveTypeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		ret, err := c.resolveTypeExpr(t.Return)
		if err != nil {
			return nil, err
		}
		return types.NewFunc(types.FuncProperties{View: t.View, Write: t.Write}, args, ret), nil
	}
	return nil, fmt.Errorf("unsupported type expression %T", te)
}

// funcChecker holds the mutable state threaded through the checking of
// one function body: its local scope, slot allocator, loop nesting,
// and return type.
type funcChecker struct {
	c *Checker

	locals    scope.Stack[localBinding]
	nextSlot  int
	loops     scope.LoopStack
	breakType []*types.Type // parallel to loops' depth

	// currentInline is the inlining mode declared on the statement
	// currently being checked, reset on entry to each checkStmt call
	// and stamped onto any TypedCall produced while checking it (§4.6's
	// call-site mode, consulted later by the inliner).
	currentInline ast.InlineMode

	// currentTrace mirrors currentInline for the codegen_print
	// attribute: it's the OR of every enclosing statement's (and the
	// function's own) attribute down to the node currently being
	// checked, per §9's "ORs codegen_print down the tree", and is
	// stamped onto any TypedCall produced while it's set.
	currentTrace bool

	returnType *types.Type
	view       bool
	write      bool
}

func (c *Checker) newFuncChecker(returnType *types.Type, view, write bool) *funcChecker {
	return &funcChecker{c: c, locals: scope.NewStack[localBinding](), returnType: returnType, view: view, write: write}
}

func (fc *funcChecker) reportFor(err error, pos ast.Pos) *errors.Report {
	if r, ok := errors.AsReport(err); ok {
		if r.Pos == (ast.Pos{}) {
			r.Pos = pos
		}
		return r
	}
	return &errors.Report{
		Schema: "mini.diagnostic/v1", Code: errors.TCTypeMismatch, Phase: "typecheck",
		Message: err.Error(), Pos: pos,
	}
}

// checkFunc type-checks fd's body against its already-resolved
// signature sig, enforcing §4.4's entry-point rules: non-void-
// returning functions must have a non-empty body whose last statement
// is Return.
func (c *Checker) checkFunc(fd *ast.FuncDecl, sig *types.Type) (*typedast.TypedFunc, error) {
	if !sig.Return.Equal(types.Void) {
		if len(fd.Body) == 0 {
			return nil, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCMissingReturn, Phase: "typecheck",
				Message: fmt.Sprintf("function %q never returns", fd.Name), Pos: fd.Pos,
			})
		}
		last := fd.Body[len(fd.Body)-1]
		if _, ok := last.(*ast.ReturnStmt); !ok {
			return nil, errors.WrapReport(&errors.Report{
				Schema: "mini.diagnostic/v1", Code: errors.TCMissingReturn, Phase: "typecheck",
				Message: fmt.Sprintf("function %q's last statement is not a return", fd.Name), Pos: last.Position(),
			})
		}
	}

	fc := c.newFuncChecker(sig.Return, fd.View, fd.Write)
	fc.currentTrace = fd.Debug.Attributes.CodegenPrint
	if fc.currentTrace {
		c.tracer.FuncEntry(fd.Name)
	}
	argTypes := make([]*types.Type, len(fd.Args))
	argNames := make([]string, len(fd.Args))
	for i, p := range fd.Args {
		argTypes[i] = sig.Args[i]
		argNames[i] = p.Name
		fc.locals = fc.locals.PushOne(p.Name, localBinding{Type: sig.Args[i], Slot: fc.nextSlot})
		fc.nextSlot++
	}

	body, err := fc.checkStmts(fd.Body)
	if err != nil {
		return nil, err
	}

	return &typedast.TypedFunc{
		Name:       fd.Name,
		Args:       argNames,
		ArgTypes:   argTypes,
		ReturnType: sig.Return,
		View:       fd.View,
		Write:      fd.Write,
		Inline:     fd.Debug.Attributes.Inline,
		Body:       body,
		Pos:        fd.Pos,
	}, nil
}

// assignable is a thin wrapper kept local to this package so call
// sites read like the spec's prose ("return-type.assignable(type(e))")
// without repeating the tree argument everywhere.
func (c *Checker) assignable(self, rhs *types.Type) bool {
	return types.Assignable(c.tree, self, rhs, nil)
}

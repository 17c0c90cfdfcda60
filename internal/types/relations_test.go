package types

import (
	"testing"
	"time"

	"github.com/mini-lang/minic/internal/intern"
	"github.com/stretchr/testify/require"
)

func TestAssignableEveryIsBottom(t *testing.T) {
	tree := NewTree()
	require.True(t, Assignable(tree, Uint, Every, nil))
	require.True(t, Assignable(tree, NewTuple(Uint, Bool), Every, nil))
}

func TestAssignableAnyAcceptsEverythingButVoid(t *testing.T) {
	tree := NewTree()
	require.True(t, Assignable(tree, Any, Uint, nil))
	require.True(t, Assignable(tree, Any, NewTuple(Uint, Bool), nil))
	require.False(t, Assignable(tree, Any, Void, nil))
}

func TestAssignableReflexive(t *testing.T) {
	tree := NewTree()
	for _, typ := range []*Type{Uint, Int, Bool, Bytes32, EthAddress, Buffer, Void} {
		require.True(t, Assignable(tree, typ, typ, nil), "type %s should be assignable to itself", typ)
	}
}

func TestAssignableCyclicNominalTerminates(t *testing.T) {
	tree := NewTree()
	reg := intern.NewRegistry()
	tbl := reg.TableFor("main")
	id := tbl.Intern("Node")
	nominal := NewNominal([]string{"main"}, id)
	// struct Node { next: Node }
	tree.Define(id, NewStruct(StructField{Name: "next", Type: nominal}))

	done := make(chan bool, 1)
	go func() {
		done <- Assignable(tree, nominal, nominal, nil)
	}()
	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Assignable did not terminate on a self-referential nominal type")
	}
}

func TestFirstMismatchAgreesWithAssignable(t *testing.T) {
	tree := NewTree()
	cases := []struct{ a, b *Type }{
		{Uint, Uint},
		{Uint, Bool},
		{NewTuple(Uint, Bool), NewTuple(Uint, Bool)},
		{NewTuple(Uint, Bool), NewTuple(Uint, Uint)},
	}
	for _, c := range cases {
		assignable := Assignable(tree, c.a, c.b, nil)
		mismatch := FirstMismatch(tree, c.a, c.b, nil)
		require.Equal(t, assignable, mismatch == nil, "assignable(%s,%s)=%v but mismatch=%v", c.a, c.b, assignable, mismatch)
	}
}

func TestFuncPurityDemotionMismatchOrder(t *testing.T) {
	tree := NewTree()
	// args/return identical; only write differs — must surface MismatchWrite,
	// not a spurious arg/return mismatch, confirming check-order args -> return -> view -> write.
	pure := NewFunc(FuncProperties{View: true, Write: false}, []*Type{Uint}, Bool)
	writer := NewFunc(FuncProperties{View: true, Write: true}, []*Type{Uint}, Bool)
	mismatch := FirstMismatch(tree, pure, writer, nil)
	require.NotNil(t, mismatch)
	require.Equal(t, MismatchWrite, mismatch.Kind)
}

func TestDefaultValueOptionIsTaggedTuple(t *testing.T) {
	def, safe := Default(NewOption(Uint))
	require.True(t, safe)
	require.Equal(t, DVTuple, def.Kind)
	require.Equal(t, 0, def.Tag)
}

func TestDefaultValueVoidUnsafe(t *testing.T) {
	_, safe := Default(Void)
	require.False(t, safe)
}

func TestGenericComparisonIsSyntactic(t *testing.T) {
	tree := NewTree()
	reg := intern.NewRegistry()
	tbl := reg.TableFor("main")
	id := tbl.Intern("Box")
	a := NewGeneric(id, Uint)
	b := NewGeneric(id, Uint)
	c := NewGeneric(id, Int)
	require.True(t, Assignable(tree, a, b, nil))
	require.False(t, Assignable(tree, a, c, nil))
}

package eval

import (
	"testing"

	"github.com/cvm-lang/cvm/internal/ast"
	"github.com/cvm-lang/cvm/internal/token"
	"github.com/cvm-lang/cvm/internal/value"
	"github.com/google/go-cmp/cmp"
)

// ignoreStoreLocation compares *value.Integer by its Value field only —
// Location() is exactly what compaction is expected to change, so the
// store-compaction invariant (spec §8 property 5) is asserted on cell
// contents and relocated bindings, not on an untouched Location().
var ignoreStoreLocation = cmp.Comparer(func(a, b *value.Integer) bool {
	return a.Value == b.Value
})

func TestGCReclaimsUnreachableCells(t *testing.T) {
	st := newState(&ast.IntegerNode{Pos: token.Position{Line: 1, Column: 1}}, Options{})

	st.Store.New(value.NewInteger(2)) // never referenced by anything reachable, occupies slot 0
	live := st.Store.New(value.NewInteger(1))
	st.Reg = value.NewVoid()
	env := value.Environment{{Name: "x", Loc: live}}
	st.Stack = value.Stack{
		{Env: &env, Frame: true},
	}

	collected := st.gc()
	if collected != 1 {
		t.Fatalf("gc collected %d cells, want 1", collected)
	}
	if st.Store.Len() != 1 {
		t.Fatalf("store has %d live cells after gc, want 1", st.Store.Len())
	}

	wantEnv := value.Environment{{Name: "x", Loc: 0}}
	if diff := cmp.Diff(wantEnv, *st.Stack[0].Env); diff != "" {
		t.Fatalf("surviving binding was not relocated to the compacted slot (-want +got):\n%s", diff)
	}

	loc, _ := st.Stack[0].Env.Lookup("x")
	if diff := cmp.Diff(value.NewInteger(1), st.Store.Get(loc), ignoreStoreLocation); diff != "" {
		t.Fatalf("relocated cell contents changed (-want +got):\n%s", diff)
	}
}

func TestGCKeepsClosureEnvironmentReachable(t *testing.T) {
	st := newState(&ast.IntegerNode{Pos: token.Position{Line: 1, Column: 1}}, Options{})

	captured := st.Store.New(value.NewInteger(42))
	st.Store.New(value.NewInteger(0)) // dead

	closure := value.NewClosure(value.Environment{{Name: "x", Loc: captured}}, &ast.LambdaNode{})
	st.Reg = closure
	st.Stack = nil

	collected := st.gc()
	if collected != 1 {
		t.Fatalf("gc collected %d cells, want 1", collected)
	}
	loc := closure.Env[0].Loc
	got, ok := st.Store.Get(loc).(*value.Integer)
	if !ok || got.Value != 42 {
		t.Fatalf("closure's captured binding was not preserved through relocation: got %v", st.Store.Get(loc))
	}
}

func TestGCDoesNotCollectCyclicClosureTwice(t *testing.T) {
	// A letrec-bound closure whose environment contains its own binding
	// location is a self-cycle; marking must terminate instead of
	// recursing forever.
	st := newState(&ast.IntegerNode{Pos: token.Position{Line: 1, Column: 1}}, Options{})

	loc := st.Store.New(value.NewVoid())
	closure := value.NewClosure(value.Environment{{Name: "self", Loc: loc}}, &ast.LambdaNode{})
	st.Store.Set(loc, closure)
	st.Reg = closure
	st.Stack = nil

	collected := st.gc()
	if collected != 0 {
		t.Fatalf("gc collected %d cells, want 0 (the cycle is reachable from Reg)", collected)
	}
}

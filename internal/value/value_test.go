package value_test

import (
	"testing"

	"github.com/cvm-lang/cvm/internal/ast"
	"github.com/cvm-lang/cvm/internal/token"
	"github.com/cvm-lang/cvm/internal/value"
)

// Stack.Clone is what lets .callcc capture multiple independent
// resumptions of the same point in a computation (spec §8 property 6):
// mutating a cloned stack's control state must never affect the
// original, only its shared store locations.
func TestStackCloneIndependence(t *testing.T) {
	expr := &ast.IntegerNode{Pos: token.Position{Line: 1, Column: 1}, Value: 1}
	env := value.Environment{{Name: "x", Loc: 0}}
	original := value.Stack{
		{Env: &env, Expr: expr, PC: 2, Frame: true, Local: map[string]any{"args": []value.Value{value.NewInteger(1)}}},
	}

	clone := original.Clone()

	clone[0].PC = 99
	*clone[0].Env = append(*clone[0].Env, value.Binding{Name: "y", Loc: 1})
	clone[0].Local["args"] = []value.Value{value.NewInteger(2)}

	if original[0].PC != 2 {
		t.Fatalf("cloning leaked PC mutation back into the original: got %d, want 2", original[0].PC)
	}
	if len(*original[0].Env) != 1 {
		t.Fatalf("cloning leaked an environment append back into the original: got %d bindings, want 1", len(*original[0].Env))
	}
	if args, _ := original[0].Local["args"].([]value.Value); len(args) != 1 {
		t.Fatalf("cloning leaked a Local mutation back into the original")
	}
}

func TestStackCloneSharesStoreLocations(t *testing.T) {
	env := value.Environment{{Name: "x", Loc: 5}}
	original := value.Stack{
		{Env: &env, Frame: true},
	}
	clone := original.Clone()
	if (*clone[0].Env)[0].Loc != 5 {
		t.Fatalf("clone did not preserve the shared store location: got %d, want 5", (*clone[0].Env)[0].Loc)
	}
}

// TestStackCloneSharesMutableEnvWithinOneFrame is the scenario a plain
// Environment value (instead of *Environment) would get wrong: a nested
// letrec's binding and the frame layer that owns it must still see the
// same, live-mutable environment after the stack is cloned — which is
// exactly what .callcc resuming a captured continuation depends on.
func TestStackCloneSharesMutableEnvWithinOneFrame(t *testing.T) {
	shared := value.Environment{{Name: "f", Loc: 0}}
	frame := &value.Layer{Env: &shared, Frame: true}
	nested := &value.Layer{Env: &shared, Frame: false}
	original := value.Stack{frame, nested}

	clone := original.Clone()
	*clone[1].Env = append(*clone[1].Env, value.Binding{Name: "X", Loc: 7})

	loc, ok := clone[0].Env.Lookup("X")
	if !ok || loc != 7 {
		t.Fatalf("a binding appended through one cloned layer's Env must be visible through every other cloned layer that shared it, got (%d, %v)", loc, ok)
	}
	if _, ok := original[0].Env.Lookup("X"); ok {
		t.Fatal("mutating the clone's shared environment leaked into the original's")
	}
}

func TestEnvironmentLookupRightToLeft(t *testing.T) {
	env := value.Environment{{Name: "x", Loc: 0}, {Name: "x", Loc: 1}}
	loc, ok := env.Lookup("x")
	if !ok || loc != 1 {
		t.Fatalf("Lookup did not return the most recent binding: got (%d, %v), want (1, true)", loc, ok)
	}
}

func TestFilterLexicalDropsDynamicNames(t *testing.T) {
	env := value.Environment{{Name: "x", Loc: 0}, {Name: "X", Loc: 1}, {Name: "y", Loc: 2}}
	got := value.FilterLexical(env)
	if len(got) != 2 || got[0].Name != "x" || got[1].Name != "y" {
		t.Fatalf("FilterLexical kept a dynamic binding: got %+v", got)
	}
}

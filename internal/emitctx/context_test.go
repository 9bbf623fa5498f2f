package emitctx

import (
	"testing"

	"github.com/hiibolt/rosyc/internal/types"
)

func TestDeclareAndLookupLocal(t *testing.T) {
	ctx := New()
	if err := ctx.Declare("x", types.RERank0()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scoped, ok := ctx.Lookup("x")
	if !ok {
		t.Fatalf("expected 'x' to resolve")
	}
	if scoped.Scope != Local {
		t.Errorf("scope = %s, want Local", scoped.Scope)
	}
	if scoped.Data.Type != types.RERank0() {
		t.Errorf("type = %v, want RE", scoped.Data.Type)
	}
}

func TestDeclareRedeclarationFails(t *testing.T) {
	ctx := New()
	if err := ctx.Declare("x", types.RERank0()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctx.Declare("x", types.STRank0()); err == nil {
		t.Fatalf("expected redeclaration of 'x' to fail")
	}
}

func TestLookupUndeclaredFails(t *testing.T) {
	ctx := New()
	if _, ok := ctx.Lookup("missing"); ok {
		t.Fatalf("expected lookup of undeclared variable to fail")
	}
}

func TestChildCapturesOuterVariable(t *testing.T) {
	root := New()
	if err := root.Declare("outer", types.RERank0()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child := NewChild(root, []VariableData{{Name: "n", Type: types.RERank0()}})
	scoped, ok := child.Lookup("outer")
	if !ok {
		t.Fatalf("expected child to resolve 'outer' via its parent")
	}
	if scoped.Scope != Captured {
		t.Errorf("scope = %s, want Captured", scoped.Scope)
	}

	requested := child.RequestedVariables()
	if len(requested) != 1 || requested[0].Name != "outer" || requested[0].Type != types.RERank0() {
		t.Errorf("RequestedVariables() = %v, want [{outer RE}]", requested)
	}
}

func TestChildArgIsNotCaptured(t *testing.T) {
	root := New()
	child := NewChild(root, []VariableData{{Name: "n", Type: types.RERank0()}})
	scoped, ok := child.Lookup("n")
	if !ok || scoped.Scope != Arg {
		t.Fatalf("expected 'n' to resolve as an Arg, got %v, %v", scoped, ok)
	}
	if requested := child.RequestedVariables(); len(requested) != 0 {
		t.Errorf("RequestedVariables() = %v, want empty", requested)
	}
}

func TestRequestedVariablesAreSorted(t *testing.T) {
	root := New()
	for _, name := range []string{"zeta", "alpha", "mu"} {
		if err := root.Declare(name, types.RERank0()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	child := NewChild(root, nil)
	for _, name := range []string{"zeta", "alpha", "mu"} {
		if _, ok := child.Lookup(name); !ok {
			t.Fatalf("expected child to resolve %q", name)
		}
	}
	got := child.RequestedVariables()
	want := []string{"alpha", "mu", "zeta"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("RequestedVariables() = %v, want %v", got, want)
		}
	}
}

func TestFunctionsAndProceduresSharedWithChild(t *testing.T) {
	root := New()
	root.Functions["f"] = FunctionSig{ReturnType: types.RERank0()}
	child := NewChild(root, nil)
	if _, ok := child.Functions["f"]; !ok {
		t.Fatalf("expected child to see parent's Functions map by reference")
	}
	child.Procedures["p"] = ProcedureSig{}
	if _, ok := root.Procedures["p"]; !ok {
		t.Fatalf("expected a procedure registered via the child to be visible from root")
	}
}

package runtime

import (
	"errors"
	"testing"
)

func TestEnvironmentDefineShadowsOuter(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", NumberValue{Val: 1})
	inner := global.Extend()
	inner.Define("x", NumberValue{Val: 2})

	if got := inner.Lookup("x"); !Equal(got, NumberValue{Val: 2}) {
		t.Fatalf("expected inner x=2, got %#v", got)
	}
	if got := global.Lookup("x"); !Equal(got, NumberValue{Val: 1}) {
		t.Fatalf("expected outer x=1, got %#v", got)
	}
}

func TestEnvironmentAssignMutatesNearestBinding(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("total", NumberValue{Val: 0})
	inner := global.Extend().Extend()

	if err := inner.Assign("total", NumberValue{Val: 5}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if got := global.Lookup("total"); !Equal(got, NumberValue{Val: 5}) {
		t.Fatalf("expected global total=5, got %#v", got)
	}
	if len(inner.Keys()) != 0 {
		t.Fatalf("assignment must not create an inner binding, got %v", inner.Keys())
	}
}

func TestEnvironmentAssignUndeclaredFails(t *testing.T) {
	env := NewEnvironment(nil).Extend()
	err := env.Assign("missing", Null)
	var undeclared *UndeclaredVariableError
	if !errors.As(err, &undeclared) || undeclared.Name != "missing" {
		t.Fatalf("expected UndeclaredVariableError, got %v", err)
	}
}

func TestEnvironmentLookupIsPermissive(t *testing.T) {
	env := NewEnvironment(nil)
	if got := env.Lookup("nope"); got.Kind() != KindNull {
		t.Fatalf("expected null for unknown name, got %#v", got)
	}
	if _, ok := env.Get("nope"); ok {
		t.Fatalf("Get should report missing binding")
	}
}

func TestEnvironmentRuntimeDataInherited(t *testing.T) {
	root := NewEnvironment(nil)
	root.SetRuntimeData("state")
	child := root.Extend().Extend()
	if got := child.RuntimeData(); got != "state" {
		t.Fatalf("expected inherited runtime data, got %#v", got)
	}
	if child.Root() != root {
		t.Fatalf("Root should return outermost frame")
	}
}

func TestEnvironmentFromCopiesBindings(t *testing.T) {
	seed := map[string]Value{"rate": NumberValue{Val: 0.8}}
	env := NewEnvironmentFrom(seed)
	if err := env.Assign("rate", NumberValue{Val: 1}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !Equal(seed["rate"], NumberValue{Val: 0.8}) {
		t.Fatalf("seed map was mutated")
	}
}

package runtime

import (
	"fmt"
	"sort"
)

// UndeclaredVariableError reports an assignment to a name that has no binding
// anywhere in the scope chain.
type UndeclaredVariableError struct {
	Name string
}

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("assignment to undeclared variable '%s'", e.Name)
}

// Environment is one frame of lexical bindings plus a link to its parent.
type Environment struct {
	values map[string]Value
	parent *Environment
	data   any
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// NewEnvironmentFrom creates a root frame seeded with a copy of bindings.
func NewEnvironmentFrom(bindings map[string]Value) *Environment {
	env := &Environment{values: make(map[string]Value, len(bindings))}
	for k, v := range bindings {
		env.values[k] = v
	}
	return env
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Root walks to the outermost frame.
func (e *Environment) Root() *Environment {
	env := e
	for env.parent != nil {
		env = env.parent
	}
	return env
}

// SetRuntimeData attaches per-evaluation state to this frame; child frames
// inherit it through RuntimeData.
func (e *Environment) SetRuntimeData(data any) {
	e.data = data
}

// RuntimeData returns the state attached to the nearest frame that has one.
func (e *Environment) RuntimeData() any {
	for env := e; env != nil; env = env.parent {
		if env.data != nil {
			return env.data
		}
	}
	return nil
}

// Snapshot returns a copy of the current frame's bindings.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	if value == nil {
		value = Null
	}
	e.values[name] = value
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	if value == nil {
		value = Null
	}
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return &UndeclaredVariableError{Name: name}
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup is the permissive read used by identifier evaluation: unknown names
// read as Null.
func (e *Environment) Lookup(name string) Value {
	if v, ok := e.Get(name); ok {
		return v
	}
	return Null
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates a child scope of the current environment.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

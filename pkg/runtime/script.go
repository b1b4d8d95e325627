package runtime

import (
	"sort"
	"time"

	"bizdsl/interpreter-go/pkg/ast"
)

// Script is a parsed, initialised script. It is immutable once built and is
// shared read-only by every evaluation that runs against it.
type Script struct {
	ID        string
	Name      string
	Source    string
	ParsedAt  time.Time
	UpdatedAt time.Time
	Enabled   bool
	Program   *ast.Program

	functions map[string]*ast.FunctionDecl
	globals   map[string]Value
}

// NewScript assembles a script from its parts. The maps are owned by the
// script afterwards.
func NewScript(id, source string, program *ast.Program, functions map[string]*ast.FunctionDecl, globals map[string]Value) *Script {
	now := time.Now()
	if functions == nil {
		functions = map[string]*ast.FunctionDecl{}
	}
	if globals == nil {
		globals = map[string]Value{}
	}
	return &Script{
		ID:        id,
		Name:      id,
		Source:    source,
		ParsedAt:  now,
		UpdatedAt: now,
		Enabled:   true,
		Program:   program,
		functions: functions,
		globals:   globals,
	}
}

// Function looks up a declared function by name.
func (s *Script) Function(name string) (*ast.FunctionDecl, bool) {
	if s == nil {
		return nil, false
	}
	fn, ok := s.functions[name]
	return fn, ok
}

// FunctionNames lists declared functions in sorted order.
func (s *Script) FunctionNames() []string {
	names := make([]string, 0, len(s.functions))
	for name := range s.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Globals returns a copy of the global bindings captured after initialisation.
func (s *Script) Globals() map[string]Value {
	out := make(map[string]Value, len(s.globals))
	for k, v := range s.globals {
		out[k] = v
	}
	return out
}

// NewGlobalEnvironment builds a fresh root frame for one evaluation. Writes to
// it never reach the script or other evaluations.
func (s *Script) NewGlobalEnvironment() *Environment {
	return NewEnvironmentFrom(s.globals)
}

// WithEnabled returns a copy of the script with the enabled flag replaced.
func (s *Script) WithEnabled(enabled bool) *Script {
	clone := *s
	clone.Enabled = enabled
	clone.UpdatedAt = time.Now()
	return &clone
}

package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"bizdsl/interpreter-go/pkg/ast"
	"bizdsl/interpreter-go/pkg/parser"
	"bizdsl/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested user function calls when Options leaves
// MaxCallDepth unset.
const DefaultMaxCallDepth = 512

// Options configures an Interpreter.
type Options struct {
	// Builtins replaces the default table, CoreBuiltins, when non-nil.
	// Builtins take precedence over script functions of the same name, so
	// adding StandardBuiltins hides script functions named abs, max, min,
	// round, substring, toUpperCase, toLowerCase, log, logError or keys.
	Builtins Builtins
	Logger   *slog.Logger
	// MaxCallDepth limits user function nesting; negative disables the guard.
	MaxCallDepth int
}

// Interpreter evaluates compiled scripts. It holds no per-call state and is
// safe for concurrent use.
type Interpreter struct {
	builtins Builtins
	logger   *slog.Logger
	maxDepth int
}

// New returns an interpreter configured by opts.
func New(opts Options) *Interpreter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	builtins := opts.Builtins
	if builtins == nil {
		builtins = CoreBuiltins()
	}
	depth := opts.MaxCallDepth
	if depth == 0 {
		depth = DefaultMaxCallDepth
	}
	return &Interpreter{builtins: builtins, logger: logger, maxDepth: depth}
}

// Builtins exposes the builtin table.
func (i *Interpreter) Builtins() Builtins {
	return i.builtins
}

// evalState is the per-evaluation state hung off the root environment.
type evalState struct {
	ctx      context.Context
	scriptID string
	script   *runtime.Script
	// functions holds the top-level declarations of the program being
	// compiled or of an interactive session.
	functions map[string]*ast.FunctionDecl
	// nested holds declarations made inside function bodies. They stay
	// visible for the rest of the evaluation and never reach functions.
	nested map[string]*ast.FunctionDecl
	global *runtime.Environment
	depth  int
}

func (s *evalState) lookupFunction(name string) (*ast.FunctionDecl, bool) {
	if fn, ok := s.nested[name]; ok {
		return fn, true
	}
	if fn, ok := s.functions[name]; ok {
		return fn, true
	}
	return s.script.Function(name)
}

func (s *evalState) declare(decl *ast.FunctionDecl) {
	target := &s.functions
	if s.depth > 0 {
		target = &s.nested
	}
	if *target == nil {
		*target = make(map[string]*ast.FunctionDecl)
	}
	(*target)[decl.Name()] = decl
}

func (i *Interpreter) state(env *runtime.Environment) *evalState {
	st, _ := env.RuntimeData().(*evalState)
	return st
}

// Compile parses source and runs its top-level statements, producing an
// immutable script. Function declarations register in source order; other
// top-level statements run once against the global frame, whose bindings are
// snapshotted into the script.
func (i *Interpreter) Compile(ctx context.Context, id, source string) (*runtime.Script, error) {
	program, err := parser.ParseProgram(source)
	if err != nil {
		return nil, err
	}
	return i.CompileProgram(ctx, id, source, program)
}

// CompileProgram initialises an already parsed program.
func (i *Interpreter) CompileProgram(ctx context.Context, id, source string, program *ast.Program) (*runtime.Script, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	global := runtime.NewEnvironment(nil)
	st := &evalState{
		ctx:       ctx,
		scriptID:  id,
		functions: make(map[string]*ast.FunctionDecl),
		global:    global,
	}
	global.SetRuntimeData(st)
	if _, err := i.EvaluateProgram(program, global); err != nil {
		return nil, fmt.Errorf("initialise %s: %w", id, err)
	}
	return runtime.NewScript(id, source, program, st.functions, global.Snapshot()), nil
}

// EvaluateProgram executes a program's statements against env and returns the
// last produced value.
func (i *Interpreter) EvaluateProgram(program *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.Null
	for _, stmt := range program.Body {
		val, err := i.evaluateStatement(stmt, env)
		if err != nil {
			var rs returnSignal
			if errors.As(err, &rs) {
				return nil, fmt.Errorf("return outside function")
			}
			return nil, err
		}
		last = val
	}
	return last, nil
}

// CallFunction invokes a script function by name with positional arguments.
// Each call runs against a fresh copy of the script's globals, so writes to
// globals never leak between calls.
func (i *Interpreter) CallFunction(ctx context.Context, script *runtime.Script, name string, args []runtime.Value) (runtime.Value, error) {
	if script == nil {
		return nil, fmt.Errorf("call %s: nil script", name)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	fn, ok := script.Function(name)
	if !ok {
		return nil, &UndefinedFunctionError{Name: name}
	}
	global := script.NewGlobalEnvironment()
	st := &evalState{
		ctx:      ctx,
		scriptID: script.ID,
		script:   script,
		global:   global,
	}
	global.SetRuntimeData(st)
	return i.invokeFunction(fn, args, nil, global)
}

// Eval runs source statements against env, which must come from a previous
// Eval or NewSession. Used by interactive hosts.
func (i *Interpreter) Eval(source string, env *runtime.Environment) (runtime.Value, error) {
	program, err := parser.ParseProgram(source)
	if err != nil {
		return nil, err
	}
	return i.EvaluateProgram(program, env)
}

// NewSession returns a root environment for Eval. Functions declared in the
// session stay visible to later Eval calls against the same environment.
func (i *Interpreter) NewSession(ctx context.Context, id string) *runtime.Environment {
	if ctx == nil {
		ctx = context.Background()
	}
	global := runtime.NewEnvironment(nil)
	global.SetRuntimeData(&evalState{
		ctx:       ctx,
		scriptID:  id,
		functions: make(map[string]*ast.FunctionDecl),
		global:    global,
	})
	return global
}

func (i *Interpreter) invokeFunction(fn *ast.FunctionDecl, args []runtime.Value, call *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	st := i.state(env)
	if i.maxDepth > 0 && st.depth >= i.maxDepth {
		return nil, &RecursionLimitError{Function: fn.Name(), Limit: i.maxDepth}
	}
	st.depth++
	defer func() { st.depth-- }()

	frame := st.global.Extend()
	for idx, param := range fn.Params {
		var val runtime.Value = runtime.Null
		if idx < len(args) && args[idx] != nil {
			val = args[idx]
		}
		frame.Define(param.Name, val)
	}

	result, err := i.evaluateStatements(fn.Body.Body, frame)
	if err != nil {
		var rs returnSignal
		if errors.As(err, &rs) {
			return rs.value, nil
		}
		return nil, annotate(err, fn, call)
	}
	return result, nil
}

// annotate records the failing function on the error's stack trace.
func annotate(err error, fn *ast.FunctionDecl, call *ast.FunctionCall) error {
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		rtErr = &RuntimeError{Err: err}
		err = rtErr
	}
	pos := fn.Span().Start
	if call != nil {
		pos = call.Span().Start
	}
	rtErr.Stack = append(rtErr.Stack, StackFrame{Function: fn.Name(), Pos: pos})
	return err
}

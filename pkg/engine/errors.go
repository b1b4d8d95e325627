package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bizdsl/interpreter-go/pkg/interpreter"
)

// ErrScriptDisabled is returned when executing a script that was switched off
// with SetEnabled.
var ErrScriptDisabled = errors.New("script is disabled")

// ExecutionError is the structured failure returned by ExecuteFunction. Err
// is the typed cause; Stack lists the user function frames active when it
// was raised, innermost first.
type ExecutionError struct {
	ScriptID string
	Function string
	Message  string
	Stack    []string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %s:%s: %s", e.ScriptID, e.Function, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func newExecutionError(scriptID, function string, err error) *ExecutionError {
	out := &ExecutionError{ScriptID: scriptID, Function: function, Message: err.Error(), Err: err}
	var rt *interpreter.RuntimeError
	if errors.As(err, &rt) {
		out.Stack = rt.StackTrace()
	}
	return out
}

// LoadError reports the scripts LoadAll could not register. The others were
// loaded normally.
type LoadError struct {
	Failures map[string]error
}

func (e *LoadError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var b strings.Builder
	fmt.Fprintf(&b, "engine: %d script(s) failed to load:", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, "\n- %s: %v", id, e.Failures[id])
	}
	return b.String()
}

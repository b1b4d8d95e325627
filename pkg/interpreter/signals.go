package interpreter

import "bizdsl/interpreter-go/pkg/runtime"

// returnSignal unwinds blocks, branches and loops up to the enclosing call.
type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string { return "return" }

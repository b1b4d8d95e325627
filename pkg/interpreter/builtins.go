package interpreter

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"bizdsl/interpreter-go/pkg/runtime"
)

// Builtins maps a function name to its native implementation. A table is
// read-only once handed to New.
type Builtins map[string]runtime.NativeFunction

// Merge returns a new table holding b's entries overlaid with other's.
func (b Builtins) Merge(other Builtins) Builtins {
	out := make(Builtins, len(b)+len(other))
	for name, fn := range b {
		out[name] = fn
	}
	for name, fn := range other {
		out[name] = fn
	}
	return out
}

// With returns a copy of the table with fn registered under name.
func (b Builtins) With(name string, impl runtime.NativeFunc) Builtins {
	return b.Merge(Builtins{name: {Name: name, Impl: impl}})
}

// Names lists the registered builtins in sorted order.
func (b Builtins) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CoreBuiltins returns print, sum and length.
func CoreBuiltins() Builtins {
	return Builtins{
		"print":  {Name: "print", Impl: builtinPrint},
		"sum":    {Name: "sum", Impl: builtinSum},
		"length": {Name: "length", Impl: builtinLength},
	}
}

// builtinPrint writes its arguments to the evaluation logger, never stdout.
func builtinPrint(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	logLine(ctx, slog.LevelInfo, "print", args)
	return runtime.Null, nil
}

func builtinSum(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	total := 0.0
	for _, arg := range args {
		if num, ok := arg.(runtime.NumberValue); ok {
			total += num.Val
		}
	}
	return runtime.NumberValue{Val: total}, nil
}

func builtinLength(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NumberValue{Val: 0}, nil
	}
	switch v := args[0].(type) {
	case runtime.StringValue:
		return runtime.NumberValue{Val: float64(utf8.RuneCountInString(v.Val))}, nil
	case *runtime.ListValue:
		return runtime.NumberValue{Val: float64(v.Len())}, nil
	default:
		return runtime.NumberValue{Val: 0}, nil
	}
}

func logLine(ctx *runtime.NativeCallContext, level slog.Level, msg string, args []runtime.Value) {
	if ctx == nil || ctx.Logger == nil {
		return
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, runtime.ToText(arg))
	}
	logger := ctx.Logger
	if ctx.ScriptID != "" {
		logger = logger.With(slog.String("script", ctx.ScriptID))
	}
	goCtx := ctx.Context
	if goCtx == nil {
		goCtx = context.Background()
	}
	logger.Log(goCtx, level, msg, slog.String("value", strings.Join(parts, " ")))
}

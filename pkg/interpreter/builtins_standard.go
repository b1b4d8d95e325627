package interpreter

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"bizdsl/interpreter-go/pkg/runtime"
)

// StandardBuiltins returns the optional math, text and logging helpers.
func StandardBuiltins() Builtins {
	return Builtins{
		"abs":         {Name: "abs", Impl: builtinAbs},
		"max":         {Name: "max", Impl: numericFold("max", math.Max)},
		"min":         {Name: "min", Impl: numericFold("min", math.Min)},
		"round":       {Name: "round", Impl: builtinRound},
		"substring":   {Name: "substring", Impl: builtinSubstring},
		"toUpperCase": {Name: "toUpperCase", Impl: textMap("toUpperCase", strings.ToUpper)},
		"toLowerCase": {Name: "toLowerCase", Impl: textMap("toLowerCase", strings.ToLower)},
		"keys":        {Name: "keys", Impl: builtinKeys},
		"log": {Name: "log", Impl: func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			logLine(ctx, slog.LevelInfo, "log", args)
			return runtime.Null, nil
		}},
		"logError": {Name: "logError", Impl: func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			logLine(ctx, slog.LevelError, "logError", args)
			return runtime.Null, nil
		}},
	}
}

func argError(fn string, format string, args ...any) error {
	return &TypeError{Message: fmt.Sprintf("%s: %s", fn, fmt.Sprintf(format, args...))}
}

func numberArg(fn string, args []runtime.Value, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, argError(fn, "missing argument %d", idx+1)
	}
	num, ok := args[idx].(runtime.NumberValue)
	if !ok {
		return 0, argError(fn, "argument %d must be a number, got %s", idx+1, args[idx].Kind())
	}
	return num.Val, nil
}

func textArg(fn string, args []runtime.Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", argError(fn, "missing argument %d", idx+1)
	}
	str, ok := args[idx].(runtime.StringValue)
	if !ok {
		return "", argError(fn, "argument %d must be text, got %s", idx+1, args[idx].Kind())
	}
	return str.Val, nil
}

func builtinAbs(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	n, err := numberArg("abs", args, 0)
	if err != nil {
		return nil, err
	}
	return runtime.NumberValue{Val: math.Abs(n)}, nil
}

// builtinRound rounds half up, so round(-2.5) is -2.
func builtinRound(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	n, err := numberArg("round", args, 0)
	if err != nil {
		return nil, err
	}
	return runtime.NumberValue{Val: math.Floor(n + 0.5)}, nil
}

func numericFold(name string, fold func(a, b float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		acc, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		for idx := 1; idx < len(args); idx++ {
			n, err := numberArg(name, args, idx)
			if err != nil {
				return nil, err
			}
			acc = fold(acc, n)
		}
		return runtime.NumberValue{Val: acc}, nil
	}
}

func textMap(name string, fn func(string) string) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		s, err := textArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: fn(s)}, nil
	}
}

// builtinSubstring slices by character: substring(text, start[, end]).
func builtinSubstring(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	s, err := textArg("substring", args, 0)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	start, err := numberArg("substring", args, 1)
	if err != nil {
		return nil, err
	}
	end := float64(len(runes))
	if len(args) > 2 {
		if end, err = numberArg("substring", args, 2); err != nil {
			return nil, err
		}
	}
	from, to := int(math.Trunc(start)), int(math.Trunc(end))
	if from < 0 || to > len(runes) || from > to {
		return nil, &IndexOutOfRangeError{Index: start, Length: len(runes)}
	}
	return runtime.StringValue{Val: string(runes[from:to])}, nil
}

func builtinKeys(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewList(), nil
	}
	switch v := args[0].(type) {
	case *runtime.RecordValue:
		keys := v.Keys()
		out := make([]runtime.Value, 0, len(keys))
		for _, key := range keys {
			out = append(out, runtime.StringValue{Val: key})
		}
		return runtime.NewList(out...), nil
	case runtime.NullValue:
		return runtime.NewList(), nil
	default:
		return nil, argError("keys", "argument must be a record, got %s", v.Kind())
	}
}

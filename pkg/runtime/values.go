package runtime

import (
	"context"
	"fmt"
	"log/slog"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "text"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. Values are never
// mutated after construction; operations that change a collection build a new
// one.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// Null is the shared null value.
var Null Value = NullValue{}

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

type ListValue struct {
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }

// NewList wraps elements without copying; callers hand over ownership.
func NewList(elements ...Value) *ListValue {
	if elements == nil {
		elements = []Value{}
	}
	return &ListValue{Elements: elements}
}

// Len returns the element count, tolerating a nil receiver.
func (v *ListValue) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Elements)
}

// RecordValue maps text keys to values. Keys remember insertion order so that
// iteration is deterministic; order plays no part in equality.
type RecordValue struct {
	keys   []string
	fields map[string]Value
}

func (v *RecordValue) Kind() Kind { return KindRecord }

// NewRecord builds a record from parallel key/value slices. A repeated key
// keeps its first position and its last value.
func NewRecord(keys []string, values []Value) *RecordValue {
	rec := &RecordValue{
		keys:   make([]string, 0, len(keys)),
		fields: make(map[string]Value, len(keys)),
	}
	for idx, key := range keys {
		var val Value = Null
		if idx < len(values) && values[idx] != nil {
			val = values[idx]
		}
		if _, exists := rec.fields[key]; !exists {
			rec.keys = append(rec.keys, key)
		}
		rec.fields[key] = val
	}
	return rec
}

// Get returns the value stored under key.
func (v *RecordValue) Get(key string) (Value, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v.fields[key]
	return val, ok
}

// Keys returns a copy of the keys in insertion order.
func (v *RecordValue) Keys() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Len returns the number of fields.
func (v *RecordValue) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// With returns a new record with key bound to val; the receiver is untouched.
func (v *RecordValue) With(key string, val Value) *RecordValue {
	keys := v.Keys()
	values := make([]Value, 0, len(keys)+1)
	for _, k := range keys {
		values = append(values, v.fields[k])
	}
	keys = append(keys, key)
	values = append(values, val)
	return NewRecord(keys, values)
}

//-----------------------------------------------------------------------------
// Native functions
//-----------------------------------------------------------------------------

// NativeCallContext describes the call site of a builtin.
type NativeCallContext struct {
	Context  context.Context
	ScriptID string
	Function string
	Logger   *slog.Logger
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeFunction is a builtin implemented in Go. Builtins are not values: the
// language has no first-class functions, so they are only reachable by name.
type NativeFunction struct {
	Name string
	Impl NativeFunc
}

package runtime

import (
	"fmt"
	"reflect"
	"sort"
)

// FromGo converts a host value into a runtime value. Numbers of every Go
// numeric kind become NumberValue; maps must be keyed by strings. Unordered Go
// maps are converted with sorted keys so record order is deterministic.
func FromGo(in any) (Value, error) {
	switch v := in.(type) {
	case nil:
		return Null, nil
	case Value:
		return v, nil
	case bool:
		return BoolValue{Val: v}, nil
	case string:
		return StringValue{Val: v}, nil
	case float64:
		return NumberValue{Val: v}, nil
	case float32:
		return NumberValue{Val: float64(v)}, nil
	case int:
		return NumberValue{Val: float64(v)}, nil
	case int64:
		return NumberValue{Val: float64(v)}, nil
	case int32:
		return NumberValue{Val: float64(v)}, nil
	case uint64:
		return NumberValue{Val: float64(v)}, nil
	case []any:
		elements := make([]Value, 0, len(v))
		for idx, el := range v {
			conv, err := FromGo(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			elements = append(elements, conv)
		}
		return NewList(elements...), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]Value, 0, len(keys))
		for _, k := range keys {
			conv, err := FromGo(v[k])
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			values = append(values, conv)
		}
		return NewRecord(keys, values), nil
	}
	return fromReflect(reflect.ValueOf(in))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return BoolValue{Val: rv.Bool()}, nil
	case reflect.String:
		return StringValue{Val: rv.String()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue{Val: float64(rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumberValue{Val: float64(rv.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return NumberValue{Val: rv.Float()}, nil
	case reflect.Slice, reflect.Array:
		elements := make([]Value, 0, rv.Len())
		for idx := 0; idx < rv.Len(); idx++ {
			conv, err := FromGo(rv.Index(idx).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			elements = append(elements, conv)
		}
		return NewList(elements...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		generic := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			generic[iter.Key().String()] = iter.Value().Interface()
		}
		return FromGo(generic)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null, nil
		}
		return FromGo(rv.Elem().Interface())
	default:
		return nil, fmt.Errorf("unsupported host value of type %s", rv.Type())
	}
}

// ToGo converts a runtime value into plain Go data: nil, bool, float64,
// string, []any, or map[string]any.
func ToGo(val Value) any {
	switch v := val.(type) {
	case nil, NullValue:
		return nil
	case BoolValue:
		return v.Val
	case NumberValue:
		return v.Val
	case StringValue:
		return v.Val
	case *ListValue:
		out := make([]any, 0, v.Len())
		for _, el := range v.Elements {
			out = append(out, ToGo(el))
		}
		return out
	case *RecordValue:
		out := make(map[string]any, v.Len())
		for _, key := range v.keys {
			out[key] = ToGo(v.fields[key])
		}
		return out
	default:
		return nil
	}
}

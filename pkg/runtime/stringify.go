package runtime

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a number the way string concatenation and print show
// it: integral values drop the fraction, everyday magnitudes use plain
// decimals, and the extremes fall back to exponent form.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs < 1e21 && (f == math.Trunc(f) || abs >= 1e-6) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToText converts a value to the text used by concatenation. Text values are
// returned verbatim.
func ToText(val Value) string {
	if s, ok := val.(StringValue); ok {
		return s.Val
	}
	return Inspect(val)
}

// Inspect renders a value for display. Text nested inside collections is
// quoted so that ["1"] and [1] stay distinguishable.
func Inspect(val Value) string {
	var b strings.Builder
	writeValue(&b, val, false)
	return b.String()
}

func writeValue(b *strings.Builder, val Value, nested bool) {
	switch v := val.(type) {
	case nil, NullValue:
		b.WriteString("null")
	case BoolValue:
		b.WriteString(strconv.FormatBool(v.Val))
	case NumberValue:
		b.WriteString(FormatNumber(v.Val))
	case StringValue:
		if nested {
			b.WriteString(strconv.Quote(v.Val))
		} else {
			b.WriteString(v.Val)
		}
	case *ListValue:
		b.WriteByte('[')
		for idx, el := range v.Elements {
			if idx > 0 {
				b.WriteString(", ")
			}
			writeValue(b, el, true)
		}
		b.WriteByte(']')
	case *RecordValue:
		b.WriteByte('{')
		for idx, key := range v.keys {
			if idx > 0 {
				b.WriteString(", ")
			}
			b.WriteString(key)
			b.WriteString(": ")
			writeValue(b, v.fields[key], true)
		}
		b.WriteByte('}')
	default:
		b.WriteString("[" + val.Kind().String() + "]")
	}
}

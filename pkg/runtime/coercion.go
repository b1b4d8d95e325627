package runtime

// ToBoolean maps any value onto the language's notion of truth.
func ToBoolean(val Value) bool {
	switch v := val.(type) {
	case nil, NullValue:
		return false
	case BoolValue:
		return v.Val
	case NumberValue:
		return v.Val != 0
	case StringValue:
		return v.Val != ""
	case *ListValue:
		return v.Len() > 0
	case *RecordValue:
		return v.Len() > 0
	default:
		return true
	}
}

// Equal reports structural equality. Null equals only Null; otherwise both
// values must carry the same tag. Numbers compare by IEEE value, so NaN is
// never equal to itself.
func Equal(left, right Value) bool {
	if left == nil {
		left = Null
	}
	if right == nil {
		right = Null
	}
	switch l := left.(type) {
	case NullValue:
		_, ok := right.(NullValue)
		return ok
	case BoolValue:
		r, ok := right.(BoolValue)
		return ok && l.Val == r.Val
	case NumberValue:
		r, ok := right.(NumberValue)
		return ok && l.Val == r.Val
	case StringValue:
		r, ok := right.(StringValue)
		return ok && l.Val == r.Val
	case *ListValue:
		r, ok := right.(*ListValue)
		if !ok || l.Len() != r.Len() {
			return false
		}
		for idx := range l.Elements {
			if !Equal(l.Elements[idx], r.Elements[idx]) {
				return false
			}
		}
		return true
	case *RecordValue:
		r, ok := right.(*RecordValue)
		if !ok || l.Len() != r.Len() {
			return false
		}
		for _, key := range l.keys {
			rv, ok := r.fields[key]
			if !ok || !Equal(l.fields[key], rv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare applies one of < > <= >= to two numbers or two texts. ok is false
// for any other pairing. Text compares by bytes, which matches code-point
// order for UTF-8. NaN is unordered, so every comparison with it is false.
func Compare(op string, left, right Value) (result bool, ok bool) {
	switch l := left.(type) {
	case NumberValue:
		r, isNum := right.(NumberValue)
		if !isNum {
			return false, false
		}
		return compareOrdered(op, l.Val, r.Val)
	case StringValue:
		r, isText := right.(StringValue)
		if !isText {
			return false, false
		}
		return compareOrdered(op, l.Val, r.Val)
	}
	return false, false
}

func compareOrdered[T float64 | string](op string, l, r T) (bool, bool) {
	switch op {
	case "<":
		return l < r, true
	case ">":
		return l > r, true
	case "<=":
		return l <= r, true
	case ">=":
		return l >= r, true
	}
	return false, false
}

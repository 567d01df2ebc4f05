package query

import (
	"reflect"
	"strconv"
	"strings"
)

// BuildRaw builds a filter from one loosely typed client value, the way
// every adapter receives it: a scalar, a list, or a "start~end" string.
//
// The Range-or-Scalar decision comes first: a list of two or more items or
// a string holding PairSeparator becomes a Range, anything else the first
// scalar. The comparison then shapes the operands as Build requires. ok is
// false when the value is blank and the filter should be skipped.
func BuildRaw(property string, c Comparison, raw any) (f Filter, ok bool, err error) {
	values, skip := NormalizeValues(c, raw)
	if skip {
		return Filter{}, false, nil
	}
	f, err = Build(property, c, values...)
	if err != nil {
		return Filter{}, false, err
	}
	return f, true, nil
}

// NormalizeValues turns raw into the operands for c. skip reports a blank
// value that carries no filter.
func NormalizeValues(c Comparison, raw any) (values []Value, skip bool) {
	switch {
	case c.IsNullCheck():
		return nil, false

	case c.IsSet():
		for _, item := range flatten(raw) {
			if s, ok := item.(string); ok && strings.Contains(s, ",") {
				for _, part := range strings.Split(s, ",") {
					if part = strings.TrimSpace(part); part != "" {
						values = append(values, Scalar{part})
					}
				}
				continue
			}
			if !blank(item) {
				values = append(values, Scalar{item})
			}
		}
		return values, len(values) == 0
	}

	if r, ok := PairValue(raw); ok {
		return []Value{r}, false
	}
	first, ok := firstItem(raw)
	if !ok || blank(first) {
		return nil, true
	}
	if s, isStr := first.(string); isStr {
		first = strings.TrimSpace(s)
	}
	return []Value{Scalar{first}}, false
}

// PairValue reads a Range from a list of two or more items or from a string
// holding PairSeparator.
func PairValue(raw any) (Range, bool) {
	if v, ok := raw.(Range); ok {
		return v, true
	}
	if s, ok := raw.(string); ok {
		lo, hi, found := strings.Cut(s, PairSeparator)
		if !found {
			return Range{}, false
		}
		hi, _, _ = strings.Cut(hi, PairSeparator)
		return Range{Start: strings.TrimSpace(lo), End: strings.TrimSpace(hi)}, true
	}
	if list, ok := asList(raw); ok && len(list) > 1 {
		return Range{Start: Stringify(list[0]), End: Stringify(list[1])}, true
	}
	return Range{}, false
}

// StringValue renders raw as text, taking the first item of a list.
func StringValue(raw any) string {
	first, ok := firstItem(raw)
	if !ok {
		return ""
	}
	return Stringify(first)
}

// IntValue reads raw as an int. Non numeric values are 0.
func IntValue(raw any) int {
	first, ok := firstItem(raw)
	if !ok || first == nil {
		return 0
	}
	if s, isStr := first.(string); isStr {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0
		}
		return n
	}
	if f, ok := ToFloat(first); ok {
		return int(f)
	}
	return 0
}

func firstItem(raw any) (any, bool) {
	if list, ok := asList(raw); ok {
		if len(list) == 0 {
			return nil, false
		}
		return list[0], true
	}
	return raw, raw != nil
}

func flatten(raw any) []any {
	if list, ok := asList(raw); ok {
		return list
	}
	if raw == nil {
		return nil
	}
	return []any{raw}
}

// asList unpacks any slice or array except []byte.
func asList(raw any) ([]any, bool) {
	switch t := raw.(type) {
	case nil, []byte, string:
		return nil, false
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

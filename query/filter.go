package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Filter is an immutable leaf of a FilterSet: the property (column) being
// filtered, how it is compared, and the operands the user entered.
//
// The property may use dot notation to reach nested values, for example
// "name.firstName".
type Filter struct {
	property   string
	comparison Comparison
	values     []Value
}

// Build is the only way to make a Filter, so the operand rules hold for
// every filter in a tree:
//
//   - IS_NULL / IS_NOT_NULL drop their operands;
//   - a single Range given to BETWEEN / NOT_BETWEEN stands for its two bounds;
//   - EXISTS / NOT_EXISTS are rejected.
//
// Any other operand list is kept as given, short lists included; a BETWEEN
// with one bound is valid and never matches.
func Build(property string, c Comparison, values ...Value) (Filter, error) {
	if strings.TrimSpace(property) == "" {
		return Filter{}, errors.Wrap(ErrInvalidFilter, "filter property is empty")
	}

	switch c {
	case IsNull, IsNotNull:
		return Filter{property: property, comparison: c}, nil

	case Between, NotBetween:
		if len(values) == 1 {
			if r, ok := values[0].(Range); ok {
				values = []Value{Scalar{r.Start}, Scalar{r.End}}
			}
		}

	case In, NotIn, Is, IsNot, Gt, Gte, Lt, Lte, Contain, StartWith:

	case Exists, NotExists:
		return Filter{}, errors.Wrapf(ErrUnsupportedComparison, "%s on %s", c, property)

	default:
		return Filter{}, &UnknownComparisonError{Name: string(c)}
	}

	return Filter{property: property, comparison: c, values: append([]Value(nil), values...)}, nil
}

// MustBuild is Build for literals known to be valid.
func MustBuild(property string, c Comparison, values ...Value) Filter {
	f, err := Build(property, c, values...)
	if err != nil {
		panic(err)
	}
	return f
}

// Scalars wraps raw operands as Scalar values.
func Scalars(vs ...any) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Scalar{v}
	}
	return out
}

func (f Filter) Property() string { return f.property }

func (f Filter) Comparison() Comparison { return f.comparison }

// Values returns a copy of the operands.
func (f Filter) Values() []Value { return append([]Value(nil), f.values...) }

// Value joins the operands with ",".
func (f Filter) Value() string { return strings.Join(valueStrings(f.values), ",") }

// Range returns the [start, end) pair of a BETWEEN-style filter, or the
// operand itself when it is a Range.
func (f Filter) Range() (Range, bool) {
	if len(f.values) == 1 {
		r, ok := f.values[0].(Range)
		return r, ok
	}
	if len(f.values) >= 2 && f.comparison.IsRange() {
		return Range{Start: f.values[0].String(), End: f.values[1].String()}, true
	}
	return Range{}, false
}

// Equal compares the (property, comparison, values) triple.
func (f Filter) Equal(o Filter) bool {
	if f.property != o.property || f.comparison != o.comparison || len(f.values) != len(o.values) {
		return false
	}
	for i := range f.values {
		if !valueEqual(f.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func (f Filter) String() string {
	return fmt.Sprintf("{property='%s', value=[%s], comparison=%s}", f.property, strings.Join(valueStrings(f.values), ", "), f.comparison)
}

func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case Range:
		bv, ok := b.(Range)
		return ok && av == bv
	case Scalar:
		bv, ok := b.(Scalar)
		if !ok {
			return false
		}
		if reflect.DeepEqual(av.V, bv.V) || av.String() == bv.String() {
			return true
		}
		// 5 from a typed request and 5.0 from JSON are the same operand.
		af, aok := ToFloat(av.V)
		bf, bok := ToFloat(bv.V)
		return aok && bok && isNumeric(av.V) && isNumeric(bv.V) && af == bf
	}
	return false
}

func valueStrings(vs []Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

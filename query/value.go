package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// PairSeparator splits "start~end" strings into a Range.
const PairSeparator = "~"

// Value is one filter operand: either a Scalar or a Range.
type Value interface {
	// String renders the operand the way it is matched as text.
	String() string
	isValue()
}

// Scalar wraps a plain operand as received from the client.
type Scalar struct {
	V any
}

func (Scalar) isValue() {}

func (s Scalar) String() string { return Stringify(s.V) }

// Range is a half-open [Start, End) pair.
type Range struct {
	Start string // inclusive
	End   string // exclusive
}

func (Range) isValue() {}

func (r Range) String() string { return r.Start + PairSeparator + r.End }

// Layouts accepted for range bounds tested against time values, tried in
// order. Layouts without a zone are read in the item's location.
var RangeTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

var rangeLog = log.WithField("component", "query.range")

// InRange tests item against [Start, End). The test is chosen by the item's
// type: numbers compare as float64, times compare as instants. Any other
// item type, strings included, is never in range.
func (r Range) InRange(item any) bool {
	if isNumeric(item) {
		v, _ := ToFloat(item)
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(r.Start), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(r.End), 64)
		if err1 != nil || err2 != nil {
			r.warn(item, errors.Wrapf(ErrMalformedRange, "numeric bounds %q, %q", r.Start, r.End))
			return false
		}
		return v >= lo && v < hi
	}

	var t time.Time
	switch tv := item.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv == nil {
			return false
		}
		t = *tv
	default:
		return false
	}

	lo, err := ParseTime(r.Start, t.Location())
	if err != nil {
		r.warn(item, err)
		return false
	}
	hi, err := ParseTime(r.End, t.Location())
	if err != nil {
		r.warn(item, err)
		return false
	}
	return !t.Before(lo) && t.Before(hi)
}

func (r Range) warn(item any, err error) {
	rangeLog.WithError(err).WithField("item", item).Warn("range test skipped")
}

// ParseTime reads s with the first matching RangeTimeLayouts entry.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range RangeTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrMalformedRange, "unknown date format %q", s)
}

// Stringify renders a raw operand or item value as text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// ToFloat converts numeric values and numeric strings to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func isNumeric(v any) bool {
	switch v.(type) {
	case string:
		return false
	}
	_, ok := ToFloat(v)
	return ok
}

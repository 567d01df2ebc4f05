package match

import (
	"strings"
	"sync"
	"time"

	"github.com/manojoshi/tablelimit/query"
)

// DateMatcher matches time values through a date pattern such as
// "MM/dd/yyyy" or "yyyy-MM-dd HH:mm".
//
//   - BETWEEN / NOT_BETWEEN, or a Range operand, test the raw time against
//     the range.
//   - every other comparison formats the item in the request location and
//     matches when the text contains any operand.
//
// Text items are read with the pattern first, then the ISO layouts.
// Without a pattern the matcher never matches and logs one warning.
type DateMatcher struct {
	pattern string
	layout  string
	instant bool
	warn    sync.Once
}

// NewDateMatcher matches dates.
func NewDateMatcher(pattern string) *DateMatcher {
	return &DateMatcher{pattern: pattern, layout: GoLayout(pattern)}
}

// NewDateTimeMatcher matches timestamps. It behaves like the date matcher
// and only reports itself differently in logs.
func NewDateTimeMatcher(pattern string) *DateMatcher {
	return &DateMatcher{pattern: pattern, layout: GoLayout(pattern), instant: true}
}

func (m *DateMatcher) Pattern() string { return m.pattern }

func (m *DateMatcher) Evaluate(rctx RequestContext, item any, c query.Comparison, values []query.Value) bool {
	if res, done := nullContract(item, c, values); done {
		return res
	}
	if m.pattern == "" {
		m.warn.Do(func() {
			matchLog.WithError(ErrMissingPattern).WithField("instant", m.instant).Warn("date column needs a registered pattern")
		})
		return false
	}
	t, ok := m.toTime(rctx, item)
	if !ok {
		return false
	}

	if c.IsRange() || hasRange(values) {
		r, ok := rangeOf(values)
		return ok && r.InRange(t) != (c == query.NotBetween)
	}

	formatted := t.In(rctx.location()).Format(m.layout)
	return containsAny(formatted, values, strings.Contains)
}

// parse reads an operand with the pattern, then with the ISO layouts.
func (m *DateMatcher) parse(rctx RequestContext, s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(m.layout, s, rctx.location()); err == nil {
		return t, true
	}
	t, err := query.ParseTime(s, rctx.location())
	if err != nil {
		matchLog.WithError(err).WithField("operand", s).Debug("date operand not parsed")
		return time.Time{}, false
	}
	return t, true
}

// toTime accepts time values and text in the pattern or an ISO layout.
func (m *DateMatcher) toTime(rctx RequestContext, item any) (time.Time, bool) {
	switch t := item.(type) {
	case time.Time:
		return t, true
	case string:
		return m.parse(rctx, t)
	}
	return time.Time{}, false
}

// ------------------------------------------------------------------
// Pattern translation
// ------------------------------------------------------------------

// patternFields maps date pattern letter runs to Go reference layout parts.
// Longer runs are looked up first.
var patternFields = map[string]string{
	"yyyy": "2006", "yy": "06", "y": "2006",
	"MMMM": "January", "MMM": "Jan", "MM": "01", "M": "1",
	"dd": "02", "d": "2",
	"EEEE": "Monday", "EEE": "Mon",
	"HH": "15", "H": "15",
	"hh": "03", "h": "3",
	"mm": "04", "m": "4",
	"ss": "05", "s": "5",
	"SSS": "000", "SS": "00", "S": "0",
	"a": "PM", "z": "MST", "Z": "-0700",
	"XXX": "Z07:00", "XX": "Z0700", "X": "Z07",
}

// GoLayout translates a date pattern ("MM/dd/yyyy HH:mm") to a Go time
// layout ("01/02/2006 15:04"). Text in single quotes is literal and "''"
// is a quote.
func GoLayout(pattern string) string {
	var sb strings.Builder
	rs := []rune(pattern)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '\'':
			j := i + 1
			if j < len(rs) && rs[j] == '\'' {
				sb.WriteRune('\'')
				i += 2
				continue
			}
			for j < len(rs) {
				if rs[j] == '\'' {
					if j+1 < len(rs) && rs[j+1] == '\'' {
						sb.WriteRune('\'')
						j += 2
						continue
					}
					break
				}
				sb.WriteRune(rs[j])
				j++
			}
			i = j + 1

		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			j := i
			for j < len(rs) && rs[j] == r {
				j++
			}
			sb.WriteString(field(string(rs[i:j])))
			i = j

		default:
			sb.WriteRune(r)
			i++
		}
	}
	return sb.String()
}

// field maps one run, splitting it when no exact entry exists.
func field(run string) string {
	for n := len(run); n > 0; n-- {
		if v, ok := patternFields[run[:n]]; ok {
			return v + field(run[n:])
		}
	}
	if run == "" {
		return ""
	}
	return run
}

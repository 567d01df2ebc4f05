package match

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/manojoshi/tablelimit/query"
)

// NumberFormat is a parsed decimal pattern such as "0.00", "#,##0.###" or
// "$#,##0.00". Only the positive sub-pattern is used.
type NumberFormat struct {
	Prefix, Suffix string
	Grouping       bool
	MinInteger     int
	MinFraction    int
	MaxFraction    int
	Percent        bool
}

// ParseNumberFormat reads a decimal pattern. An empty pattern is an error.
func ParseNumberFormat(pattern string) (NumberFormat, error) {
	var nf NumberFormat
	pattern, _, _ = strings.Cut(pattern, ";")
	if strings.TrimSpace(pattern) == "" {
		return nf, ErrMissingPattern
	}

	lo := strings.IndexAny(pattern, "#0,.")
	hi := strings.LastIndexAny(pattern, "#0,.")
	if lo < 0 {
		return nf, ErrMissingPattern
	}
	nf.Prefix, nf.Suffix = pattern[:lo], pattern[hi+1:]
	nf.Percent = strings.Contains(nf.Prefix+nf.Suffix, "%")

	intPart, fracPart, _ := strings.Cut(pattern[lo:hi+1], ".")
	nf.Grouping = strings.Contains(intPart, ",")
	nf.MinInteger = strings.Count(intPart, "0")
	nf.MinFraction = strings.Count(fracPart, "0")
	nf.MaxFraction = strings.Count(fracPart, "0") + strings.Count(fracPart, "#")
	return nf, nil
}

// Format rounds v half-to-even at MaxFraction digits and renders it with
// the separators of the request locale.
func (nf NumberFormat) Format(rctx RequestContext, v float64) string {
	if nf.Percent {
		v *= 100
	}
	rounded := decimal.NewFromFloat(v).RoundBank(int32(nf.MaxFraction)).InexactFloat64()

	opts := []number.Option{
		number.MinIntegerDigits(nf.MinInteger),
		number.MinFractionDigits(nf.MinFraction),
		number.MaxFractionDigits(nf.MaxFraction),
	}
	if !nf.Grouping {
		opts = append(opts, number.NoSeparator())
	}
	p := message.NewPrinter(rctx.Locale)
	return nf.Prefix + p.Sprint(number.Decimal(rounded, opts...)) + nf.Suffix
}

// NumberMatcher formats numeric items through a decimal pattern and
// matches when the formatted text contains any operand. BETWEEN and
// NOT_BETWEEN test the numeric value against the range.
//
// A Range operand on any other comparison is tested against the formatted
// text, which is never in range.
type NumberMatcher struct {
	pattern string
	format  NumberFormat
	err     error
	warn    sync.Once
}

func NewNumberMatcher(pattern string) *NumberMatcher {
	m := &NumberMatcher{pattern: pattern}
	m.format, m.err = ParseNumberFormat(pattern)
	return m
}

func (m *NumberMatcher) Pattern() string { return m.pattern }

func (m *NumberMatcher) Evaluate(rctx RequestContext, item any, c query.Comparison, values []query.Value) bool {
	if res, done := nullContract(item, c, values); done {
		return res
	}
	if m.err != nil {
		m.warn.Do(func() {
			matchLog.WithError(m.err).WithField("pattern", m.pattern).Warn("number column needs a registered pattern")
		})
		return false
	}
	v, ok := query.ToFloat(item)
	if !ok {
		return false
	}

	if c.IsRange() {
		r, ok := rangeOf(values)
		return ok && r.InRange(v) != (c == query.NotBetween)
	}

	formatted := m.format.Format(rctx, v)
	if hasRange(values) {
		r, _ := rangeOf(values)
		return r.InRange(formatted)
	}
	return containsAny(formatted, values, strings.Contains)
}

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/manojoshi/tablelimit/query"
)

func TestParseNumberFormat(t *testing.T) {
	nf, err := ParseNumberFormat("$#,##0.0#;($#,##0.0#)")
	require.NoError(t, err)
	assert.Equal(t, NumberFormat{Prefix: "$", Grouping: true, MinInteger: 1, MinFraction: 1, MaxFraction: 2}, nf)

	nf, err = ParseNumberFormat("0%")
	require.NoError(t, err)
	assert.True(t, nf.Percent)
	assert.Equal(t, "%", nf.Suffix)

	_, err = ParseNumberFormat("")
	assert.ErrorIs(t, err, ErrMissingPattern)
}

func TestNumberFormatLocaleAndRounding(t *testing.T) {
	en := DefaultContext()
	de := RequestContext{Locale: language.German}

	nf, _ := ParseNumberFormat("#,##0.00")
	assert.Equal(t, "1,234.50", nf.Format(en, 1234.5))
	assert.Equal(t, "1.234,50", nf.Format(de, 1234.5))

	nf, _ = ParseNumberFormat("0.00")
	assert.Equal(t, "1234.50", nf.Format(en, 1234.5))

	nf, _ = ParseNumberFormat("0")
	assert.Equal(t, "2", nf.Format(en, 2.5))
	assert.Equal(t, "4", nf.Format(en, 3.5))
}

func TestNumberMatcher(t *testing.T) {
	m, rctx := NewNumberMatcher("0.00"), DefaultContext()

	assert.True(t, m.Evaluate(rctx, 12.5, query.Contain, one("12.50")))
	assert.True(t, m.Evaluate(rctx, 12.5, query.Contain, one("2.5")))
	assert.False(t, m.Evaluate(rctx, 12.5, query.Contain, one("12.5 ")))
	assert.True(t, m.Evaluate(rctx, 12.5, query.StartWith, one("12")))
	assert.True(t, m.Evaluate(rctx, 12.5, query.Is, one("12")))
	assert.False(t, m.Evaluate(rctx, 12, query.Gt, one("11.9")))
	assert.True(t, m.Evaluate(rctx, 12, query.NotIn, query.Scalars(7, 2)))
	assert.False(t, m.Evaluate(rctx, 12, query.In, query.Scalars(7, 3)))
	assert.False(t, m.Evaluate(rctx, 12, query.Is, one(nil)))
	assert.True(t, m.Evaluate(rctx, 25, query.Between, query.Scalars("20", "35")))
	assert.False(t, m.Evaluate(rctx, 35, query.Between, query.Scalars("20", "35")))
	assert.True(t, m.Evaluate(rctx, 35, query.NotBetween, query.Scalars("20", "35")))
	assert.False(t, m.Evaluate(rctx, 25, query.Between, one("20")))
	assert.False(t, m.Evaluate(rctx, 25, query.NotBetween, one("20")))
	assert.False(t, m.Evaluate(rctx, "abc", query.Contain, one("a")))
	assert.False(t, m.Evaluate(rctx, nil, query.Contain, one("1")))
	assert.True(t, m.Evaluate(rctx, nil, query.IsNull, nil))
}

// A Range operand on a non-BETWEEN leaf is tested against the formatted
// text, and text is never inside a range.
func TestNumberMatcherRangeOperandNeverMatches(t *testing.T) {
	m, rctx := NewNumberMatcher("0"), DefaultContext()
	r := []query.Value{query.Range{Start: "20", End: "35"}}
	assert.False(t, m.Evaluate(rctx, 30, query.Contain, r))
	assert.False(t, m.Evaluate(rctx, 30, query.Gte, r))
}

func TestNumberMatcherWithoutPattern(t *testing.T) {
	m, rctx := NewNumberMatcher(""), DefaultContext()
	assert.False(t, m.Evaluate(rctx, 12, query.Contain, one("12")))
	assert.False(t, m.Evaluate(rctx, 12, query.Contain, one("12")))
	assert.True(t, m.Evaluate(rctx, 12, query.IsNotNull, nil))
}

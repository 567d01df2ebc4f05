package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojoshi/tablelimit/query"
)

func TestGoLayout(t *testing.T) {
	cases := map[string]string{
		"MM/dd/yyyy":               "01/02/2006",
		"yyyy-MM-dd HH:mm:ss":      "2006-01-02 15:04:05",
		"d MMM yy":                 "2 Jan 06",
		"EEEE, MMMM d, yyyy":       "Monday, January 2, 2006",
		"hh:mm a":                  "03:04 PM",
		"yyyy-MM-dd'T'HH:mm:ssXXX": "2006-01-02T15:04:05Z07:00",
		"'at' h 'o''clock'":        "at 3 o'clock",
		"HH:mm:ss.SSS Z":           "15:04:05.000 -0700",
	}
	for in, want := range cases {
		assert.Equal(t, want, GoLayout(in), in)
	}
}

func TestDateMatcher(t *testing.T) {
	m, rctx := NewDateMatcher("MM/dd/yyyy"), DefaultContext()
	born := time.Date(1732, time.February, 22, 10, 30, 0, 0, time.UTC)

	assert.True(t, m.Evaluate(rctx, born, query.Contain, one("02/22")))
	assert.True(t, m.Evaluate(rctx, born, query.Contain, query.Scalars("1800", "1732")))
	assert.False(t, m.Evaluate(rctx, born, query.Contain, one("1800")))
	assert.True(t, m.Evaluate(rctx, born, query.StartWith, one("22/")))
	assert.True(t, m.Evaluate(rctx, born, query.Is, one("02/22")))
	assert.False(t, m.Evaluate(rctx, born, query.Is, one("1732-02-22")))
	assert.True(t, m.Evaluate(rctx, born, query.Gt, one("1732")))
	assert.False(t, m.Evaluate(rctx, born, query.Lt, one("1733")))
	assert.True(t, m.Evaluate(rctx, born, query.Between, query.Scalars("1732-02-22", "1732-02-23")))
	assert.False(t, m.Evaluate(rctx, born, query.Between, query.Scalars("1732-02-23", "1732-03-01")))
	assert.True(t, m.Evaluate(rctx, born, query.NotBetween, query.Scalars("1732-02-23", "1732-03-01")))
	assert.False(t, m.Evaluate(rctx, born, query.Between, one("1732-02-22")))
	assert.True(t, m.Evaluate(rctx, "1732-02-22", query.Is, one("02/22/1732")))
	assert.False(t, m.Evaluate(rctx, nil, query.Contain, one("1732")))
	assert.False(t, m.Evaluate(rctx, 1732, query.Contain, one("1732")))
}

func TestDateTimeMatcherFormatsTime(t *testing.T) {
	m, rctx := NewDateTimeMatcher("yyyy-MM-dd HH:mm"), DefaultContext()
	item := time.Date(1789, time.April, 30, 12, 0, 0, 0, time.UTC)

	assert.True(t, m.Evaluate(rctx, item, query.Is, one("1789-04-30 12:00")))
	assert.True(t, m.Evaluate(rctx, item, query.Contain, one("12:00")))
	assert.False(t, m.Evaluate(rctx, item, query.Is, one("09:00")))
}

func TestDateMatcherFormatsInRequestLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	m := NewDateMatcher("yyyy-MM-dd")
	item := time.Date(2001, time.January, 20, 20, 0, 0, 0, time.UTC)

	assert.True(t, m.Evaluate(RequestContext{Location: tokyo}, item, query.Contain, one("2001-01-21")))
	assert.True(t, m.Evaluate(DefaultContext(), item, query.Contain, one("2001-01-20")))
}

func TestDateMatcherWithoutPattern(t *testing.T) {
	m := NewDateTimeMatcher("")
	now := time.Now()
	assert.False(t, m.Evaluate(DefaultContext(), now, query.Contain, one("2")))
	assert.True(t, m.Evaluate(DefaultContext(), now, query.IsNotNull, nil))
}

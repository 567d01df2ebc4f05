package query

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeIsHalfOpen(t *testing.T) {
	r := Range{Start: "20", End: "35"}
	assert.True(t, r.InRange(20))
	assert.True(t, r.InRange(30))
	assert.False(t, r.InRange(35))
	assert.False(t, r.InRange(19.99))
	assert.True(t, r.InRange(int64(34)))
	assert.True(t, r.InRange(json.Number("21.5")))
}

func TestRangeIgnoresStringItems(t *testing.T) {
	assert.False(t, Range{Start: "20", End: "35"}.InRange("30"))
	assert.False(t, Range{Start: "a", End: "z"}.InRange("m"))
	assert.False(t, Range{Start: "20", End: "35"}.InRange(nil))
}

func TestRangeMalformedBoundsAreFalse(t *testing.T) {
	assert.False(t, Range{Start: "twenty", End: "35"}.InRange(30))
	assert.False(t, Range{Start: "yesterday", End: "2020-01-01"}.InRange(time.Now()))
}

func TestRangeTimes(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	item := time.Date(1797, time.March, 4, 12, 0, 0, 0, loc)

	assert.True(t, Range{Start: "1797-03-04", End: "1797-03-05"}.InRange(item))
	assert.False(t, Range{Start: "1797-03-05", End: "1801-03-04"}.InRange(item))
	assert.True(t, Range{Start: "1797-03-04T12:00:00", End: "1797-03-04 12:00:01"}.InRange(item))
	assert.False(t, Range{Start: "1797-03-04T00:00:00", End: "1797-03-04T12:00:00"}.InRange(item))
	assert.True(t, Range{Start: "1797-03-04T16:00:00Z", End: "1797-03-04T18:00:00Z"}.InRange(item))
	assert.True(t, Range{Start: "1797-03-04", End: "1797-03-05"}.InRange(&item))

	var nilTime *time.Time
	assert.False(t, Range{Start: "1797-03-04", End: "1797-03-05"}.InRange(nilTime))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "2.5", Stringify(2.5))
	assert.Equal(t, "3", Stringify(3.0))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "12", Stringify(json.Number("12")))
	assert.Equal(t, "20~35", Range{Start: "20", End: "35"}.String())
}

func TestToFloat(t *testing.T) {
	f, ok := ToFloat(" 3.5 ")
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)
	_, ok = ToFloat("abc")
	assert.False(t, ok)
	_, ok = ToFloat(struct{}{})
	assert.False(t, ok)
}

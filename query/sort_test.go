package query

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortSetIteratesByPosition(t *testing.T) {
	ss := NewSortSet()
	ss.AddSort(Sort{Position: 2, Property: "term", Order: Desc})
	ss.AddSort(Sort{Position: 0, Property: "name.lastName", Order: Asc})
	ss.AddSort(Sort{Position: 1, Property: "party", Order: Asc})

	props := []string{}
	for _, s := range ss.Sorts() {
		props = append(props, s.Property)
	}
	assert.Equal(t, []string{"name.lastName", "party", "term"}, props)
	assert.Equal(t, "name.lastName ASC, party ASC, term DESC", ss.String())

	s, ok := ss.Sort("term")
	require.True(t, ok)
	assert.Equal(t, Desc, s.Order)
}

func TestSortSetReaddMovesProperty(t *testing.T) {
	ss := NewSortSet()
	ss.Add("name", Asc)
	ss.Add("term", Asc)
	ss.Add("name", Desc)

	require.Equal(t, 2, ss.Len())
	sorts := ss.Sorts()
	assert.Equal(t, "term", sorts[0].Property)
	assert.Equal(t, Sort{Position: 2, Property: "name", Order: Desc}, sorts[1])

	ss.Remove("term")
	assert.Equal(t, 1, ss.Len())
	assert.True(t, ss.IsSorted())
}

func TestSortSetJSON(t *testing.T) {
	ss := NewSortSet()
	ss.Add("name", Asc)
	ss.Add("term", Desc)

	b, err := json.Marshal(ss)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"position":0,"property":"name","order":"asc"},{"position":1,"property":"term","order":"desc"}]`, string(b))

	back := NewSortSet()
	require.NoError(t, json.Unmarshal(b, back))
	assert.True(t, ss.Equal(back))
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, Desc, o)

	_, err = ParseOrder("sideways")
	var unknown *UnknownOrderError
	assert.True(t, errors.As(err, &unknown))
}

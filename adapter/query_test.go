package adapter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojoshi/tablelimit/query"
)

func TestQueryFactory(t *testing.T) {
	base := query.NewFilterSet()
	base.SetOperator(query.Or)
	base.AddFilter(query.MustBuild("party", query.Is, query.Scalar{V: "Whig"}))

	rows, pg := 10, 0
	f := NewQueryFactory("pres", Query{
		MaxRows:    &rows,
		Page:       &pg,
		ExportType: "excel",
		Sort:       []SortField{{Field: "term", Order: "DESC"}, {Field: "born"}, {Field: "name", Order: "asc"}},
		Filter: []FilterField{
			{Key: "name", Comparison: "contain", Value: []any{"geo"}},
			{Key: "age", Comparison: "BETWEEN", Value: []any{20, 35}},
			{Key: "blank", Comparison: "IS", Value: []any{""}},
		},
		FilterSet: base,
	})

	assert.Equal(t, 10, f.MaxRows())
	assert.Equal(t, 1, f.Page())
	assert.Equal(t, "excel", f.ExportKind())

	fs, err := f.FilterSet()
	require.NoError(t, err)
	assert.Equal(t, query.And, fs.Operator())
	assert.Equal(t, 2, fs.Len())
	assert.Equal(t, "geo", fs.FilterValue("name"))
	require.Len(t, fs.Children(), 1)
	assert.True(t, fs.Children()[0].Equal(base))

	ss, err := f.SortSet()
	require.NoError(t, err)
	assert.Equal(t, []query.Sort{
		{Position: 0, Property: "term", Order: query.Desc},
		{Position: 1, Property: "name", Order: query.Asc},
	}, ss.Sorts())
}

func TestQueryFactoryDecodesJSON(t *testing.T) {
	var q Query
	require.NoError(t, json.Unmarshal([]byte(`{
		"maxRows": 5,
		"sort": [{"field": "name", "order": "asc"}],
		"filter": [{"key": "term", "comparison": "START_WITH", "value": ["18"]}],
		"filterSet": {"operator": "NOT", "filters": [{"key": "party", "comparison": "IS", "value": ["Whig"]}]}
	}`), &q))

	f := NewQueryFactory("pres", q)
	assert.Equal(t, 5, f.MaxRows())
	fs, err := f.FilterSet()
	require.NoError(t, err)
	assert.Equal(t, query.Not, fs.Children()[0].Operator())
}

func TestQueryFactoryErrors(t *testing.T) {
	_, err := NewQueryFactory("pres", Query{Filter: []FilterField{{Key: "a", Comparison: "LIKE", Value: []any{"x"}}}}).FilterSet()
	assert.ErrorIs(t, err, query.ErrInvalidFilter)

	_, err = NewQueryFactory("pres", Query{Filter: []FilterField{{Key: "a", Comparison: "EXISTS", Value: []any{"x"}}}}).FilterSet()
	assert.ErrorIs(t, err, query.ErrUnsupportedComparison)

	_, err = NewQueryFactory("pres", Query{Sort: []SortField{{Field: "a", Order: "up"}}}).SortSet()
	assert.Error(t, err)

	f := NewQueryFactory("pres", Query{})
	assert.Equal(t, 0, f.MaxRows())
	assert.Equal(t, 1, f.Page())
}

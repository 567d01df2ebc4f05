package limit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojoshi/tablelimit/adapter"
	"github.com/manojoshi/tablelimit/query"
	"github.com/manojoshi/tablelimit/state"
)

func jsonFactory(t *testing.T, body string) *adapter.JSONFactory {
	t.Helper()
	af, err := adapter.NewJSONFactory("", []byte(body))
	require.NoError(t, err)
	return af
}

func memoryStore(t *testing.T) *state.MemoryStore {
	t.Helper()
	s, err := state.NewMemoryStore(0)
	require.NoError(t, err)
	return s
}

func TestCreateLimitFresh(t *testing.T) {
	af := jsonFactory(t, `{"id":"presidents","filter":{"name":"geo"},"sort":{"term":"desc"},"maxRows":2,"page":5}`)
	l, err := NewFactory(af).CreateLimit(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "presidents", l.ID())
	assert.False(t, l.Restored())
	assert.True(t, l.IsFiltered())
	assert.True(t, l.IsSorted())
	assert.Equal(t, "geo", l.FilterSet().FilterValue("name"))

	rs, ok := l.RowSelect()
	require.True(t, ok)
	assert.Equal(t, window{3, 2, 5, 3, 4, 4}, windowOf(rs))
}

func TestCreateLimitDefaultMaxRows(t *testing.T) {
	af := adapter.NewParamsFactory("presidents", map[string][]string{})
	f := NewFactory(af)

	l, err := f.CreateLimit(context.Background(), 45)
	require.NoError(t, err)
	rs, _ := l.RowSelect()
	assert.Equal(t, DefaultMaxRows, rs.MaxRows())

	l, err = NewFactory(af, WithMaxRows(15)).CreateLimitAndRowSelect(context.Background(), 0, 45)
	require.NoError(t, err)
	rs, _ = l.RowSelect()
	assert.Equal(t, 15, rs.MaxRows())

	l, err = f.CreateLimitAndRowSelect(context.Background(), 9, 45)
	require.NoError(t, err)
	rs, _ = l.RowSelect()
	assert.Equal(t, 9, rs.MaxRows())
}

func TestCreateRowSelectRequestWins(t *testing.T) {
	af := adapter.NewParamsFactory("presidents", map[string][]string{
		"presidents_mr_": {"4"},
		"presidents_p_":  {"2"},
	})
	rs := NewFactory(af).CreateRowSelect(9, 45)
	assert.Equal(t, window{2, 4, 45, 12, 4, 7}, windowOf(rs))
}

func TestStoredLimitWinsUntilCleared(t *testing.T) {
	ctx := context.Background()
	store := memoryStore(t)

	first := NewFactory(jsonFactory(t, `{"id":"presidents","filter":{"name":"geo"},"page":2,"maxRows":10}`), WithStore(store))
	l1, err := first.CreateLimit(ctx, 45)
	require.NoError(t, err)
	assert.False(t, l1.Restored())
	assert.Equal(t, 1, store.Len())

	second := NewFactory(jsonFactory(t, `{"id":"presidents","filter":{"party":"Whig"},"sort":{"name":"asc"}}`), WithStore(store))
	l2, err := second.CreateLimit(ctx, 3)
	require.NoError(t, err)
	assert.True(t, l2.Restored())
	assert.True(t, l1.FilterSet().Equal(l2.FilterSet()))
	assert.False(t, l2.IsSorted())
	rs, _ := l2.RowSelect()
	assert.Equal(t, window{2, 10, 45, 5, 10, 19}, windowOf(rs))

	require.NoError(t, second.Clear(ctx))
	l3, err := second.CreateLimit(ctx, 3)
	require.NoError(t, err)
	assert.False(t, l3.Restored())
	assert.Equal(t, "Whig", l3.FilterSet().FilterValue("party"))
	assert.True(t, l3.IsSorted())
}

func TestExportIsNotStored(t *testing.T) {
	store := memoryStore(t)
	af := jsonFactory(t, `{"id":"presidents","exportType":"CSV","maxRows":5,"page":3}`)
	l, err := NewFactory(af, WithStore(store)).CreateLimit(context.Background(), 45)
	require.NoError(t, err)

	assert.True(t, l.HasExport())
	assert.Equal(t, ExportCSV, l.ExportKind())
	rs, _ := l.RowSelect()
	assert.Equal(t, window{1, 45, 45, 1, 0, 44}, windowOf(rs))
	assert.Zero(t, store.Len())
}

func TestUndecodableStateIsDropped(t *testing.T) {
	ctx := context.Background()
	store := memoryStore(t)
	require.NoError(t, store.Put(ctx, KeyPrefix+"presidents", []byte("{not json")))

	f := NewFactory(jsonFactory(t, `{"id":"presidents","filter":{"name":"geo"}}`), WithStore(store))
	l, err := f.CreateLimit(ctx, 10)
	require.NoError(t, err)
	assert.False(t, l.Restored())

	blob, ok, err := store.Get(ctx, KeyPrefix+"presidents")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(blob), "geo")
}

func TestCreateLimitRejectsBadFilters(t *testing.T) {
	af := jsonFactory(t, `{"id":"presidents","filter":[{"key":"name","comparison":"LIKE","value":["x"]}]}`)
	_, err := NewFactory(af).CreateLimit(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidFilter)
}

func TestLimitJSON(t *testing.T) {
	fs := query.NewFilterSet()
	fs.AddFilter(query.MustBuild("term", query.Between, query.Range{Start: "1797", End: "1801"}))
	ss := query.NewSortSet()
	ss.Add("name", query.Asc)

	l := New("presidents", fs, ss)
	l.SetRowSelect(NewRowSelect(1, 10, 45))
	l.restored = true

	b, err := json.Marshal(l)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "restored")

	var got Limit
	require.NoError(t, json.Unmarshal(b, &got))
	assert.False(t, got.Restored())
	assert.True(t, fs.Equal(got.FilterSet()))
	assert.True(t, ss.Equal(got.SortSet()))
	rs, ok := got.RowSelect()
	require.True(t, ok)
	assert.Equal(t, 45, rs.TotalRows())
	assert.Equal(t, "presidents: (term BETWEEN '1797' '1801') ORDER BY name ASC page 1/5 rows 0-9 of 45", got.String())
}

func TestIsFilteredIgnoresNestedSets(t *testing.T) {
	child := query.NewFilterSet()
	child.AddFilter(query.MustBuild("party", query.Is, query.Scalars("Whig")...))
	root := query.NewFilterSet()
	root.AddChild(child)

	assert.False(t, root.IsFiltered())
	assert.False(t, New("presidents", root, nil).IsFiltered())
	assert.False(t, New("presidents", nil, nil).IsFiltered())

	root.AddFilter(query.MustBuild("term", query.Contain, query.Scalars("18")...))
	assert.True(t, New("presidents", root, nil).IsFiltered())
}

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFilterReplacesByProperty(t *testing.T) {
	fs := NewFilterSet()
	fs.AddFilter(MustBuild("name", Contain, Scalar{"geo"}))
	fs.AddFilter(MustBuild("term", StartWith, Scalar{"17"}))
	fs.AddFilter(MustBuild("name", Is, Scalar{"john"}))

	require.Equal(t, 2, fs.Len())
	got, ok := fs.Filter("name")
	require.True(t, ok)
	assert.Equal(t, Is, got.Comparison())
	assert.Equal(t, "john", got.Value())

	props := []string{}
	for _, f := range fs.Filters() {
		props = append(props, f.Property())
	}
	assert.Equal(t, []string{"term", "name"}, props)
}

func TestFilterValueJoinsValues(t *testing.T) {
	fs := NewFilterSet()
	fs.AddFilter(MustBuild("party", In, Scalars("Whig", "Democratic")...))
	assert.Equal(t, "Whig,Democratic", fs.FilterValue("party"))
	assert.Equal(t, "", fs.FilterValue("missing"))
}

// Only direct filters count; a tree whose filters all sit in children is
// not filtered.
func TestIsFilteredIgnoresChildren(t *testing.T) {
	child := NewFilterSet()
	child.AddFilter(MustBuild("name", Contain, Scalar{"geo"}))

	root := NewFilterSet()
	root.AddChild(child)
	assert.False(t, root.IsFiltered())
	assert.False(t, root.Empty())
	assert.True(t, child.IsFiltered())

	root.AddFilter(MustBuild("term", Contain, Scalar{"18"}))
	assert.True(t, root.IsFiltered())
}

func TestFilterSetEqualAndClone(t *testing.T) {
	build := func() *FilterSet {
		fs := NewFilterSet()
		fs.SetOperator(Or)
		fs.AddFilter(MustBuild("name", Contain, Scalar{"geo"}))
		child := NewFilterSet()
		child.AddFilter(MustBuild("age", Between, Range{Start: "20", End: "35"}))
		fs.AddChild(child)
		return fs
	}
	a, b := build(), build()
	assert.True(t, a.Equal(b))

	c := a.Clone()
	assert.True(t, a.Equal(c))
	c.Children()[0].AddFilter(MustBuild("term", IsNull))
	assert.False(t, a.Equal(c))
	assert.Equal(t, 1, a.Children()[0].Len())

	b.SetOperator(And)
	assert.False(t, a.Equal(b))
}

func TestRemoveFilterAndWalk(t *testing.T) {
	fs := NewFilterSet()
	fs.AddFilter(MustBuild("name", Contain, Scalar{"geo"}))
	child := NewFilterSet()
	fs.AddChild(child)
	fs.AddChild(nil)

	seen := 0
	fs.Walk(func(*FilterSet) { seen++ })
	assert.Equal(t, 2, seen)

	fs.RemoveFilter("name")
	assert.False(t, fs.IsFiltered())
}

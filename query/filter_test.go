package query

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNullChecksDropValues(t *testing.T) {
	for _, c := range []Comparison{IsNull, IsNotNull} {
		f, err := Build("name", c, Scalars("george", 1, nil)...)
		require.NoError(t, err)
		assert.Empty(t, f.Values(), c)
		assert.Equal(t, c, f.Comparison())
	}
}

func TestBuildSingleValueComparisons(t *testing.T) {
	for _, c := range []Comparison{Is, IsNot, Gt, Gte, Lt, Lte, Contain, StartWith} {
		f, err := Build("name", c, Scalar{"george"})
		require.NoError(t, err)
		assert.Equal(t, "george", f.Value())

		f, err = Build("name", c)
		require.NoError(t, err, c)
		assert.Empty(t, f.Values())
	}
}

func TestBuildKeepsShortSetAndRangeLists(t *testing.T) {
	f, err := Build("party", In, Scalars("Whig", "Federalist")...)
	require.NoError(t, err)
	assert.Equal(t, "Whig,Federalist", f.Value())

	f, err = Build("party", NotIn, Scalar{"Whig"})
	require.NoError(t, err)
	assert.Equal(t, "Whig", f.Value())

	f, err = Build("age", Between, Scalar{"2"})
	require.NoError(t, err)
	assert.Len(t, f.Values(), 1)
	_, ok := f.Range()
	assert.False(t, ok)

	f, err = Build("age", Between, Range{Start: "20", End: "35"})
	require.NoError(t, err)
	assert.Len(t, f.Values(), 2)
	r, ok := f.Range()
	require.True(t, ok)
	assert.Equal(t, Range{Start: "20", End: "35"}, r)
}

func TestBuildRejectsExists(t *testing.T) {
	for _, c := range []Comparison{Exists, NotExists} {
		_, err := Build("name", c, Scalar{"x"})
		assert.True(t, errors.Is(err, ErrUnsupportedComparison), c)
	}
}

func TestBuildRejectsEmptyPropertyAndUnknownComparison(t *testing.T) {
	_, err := Build(" ", Is, Scalar{"x"})
	assert.True(t, errors.Is(err, ErrInvalidFilter))

	_, err = Build("name", Comparison("LIKE"), Scalar{"x"})
	var unknown *UnknownComparisonError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "LIKE", unknown.Name)
}

func TestFilterEqualUsesTriple(t *testing.T) {
	a := MustBuild("age", Is, Scalar{5})
	assert.True(t, a.Equal(MustBuild("age", Is, Scalar{5.0})))
	assert.True(t, a.Equal(MustBuild("age", Is, Scalar{"5"})))
	assert.False(t, a.Equal(MustBuild("age", IsNot, Scalar{5})))
	assert.False(t, a.Equal(MustBuild("age", Is, Scalar{6})))
	assert.False(t, a.Equal(MustBuild("term", Is, Scalar{5})))
}

func TestFilterString(t *testing.T) {
	f := MustBuild("name", In, Scalars("a", "b")...)
	assert.Equal(t, "{property='name', value=[a, b], comparison=IN}", f.String())
}

func TestValuesIsACopy(t *testing.T) {
	f := MustBuild("name", Is, Scalar{"a"})
	vs := f.Values()
	vs[0] = Scalar{"b"}
	assert.Equal(t, "a", f.Value())
}

func TestParseComparisonIgnoresCase(t *testing.T) {
	c, err := ParseComparison(" not_between ")
	require.NoError(t, err)
	assert.Equal(t, NotBetween, c)

	var got Comparison
	require.NoError(t, got.UnmarshalText([]byte("start_with")))
	assert.Equal(t, StartWith, got)
	assert.Error(t, got.UnmarshalText([]byte("like")))
}

func TestParseOperator(t *testing.T) {
	for in, want := range map[string]Operator{"": And, "and": And, "Or": Or, "NOT": Not} {
		got, err := ParseOperator(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOperator("xor")
	var unknown *UnknownOperatorError
	assert.True(t, errors.As(err, &unknown))
}

package schema

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojoshi/tablelimit/internal/fixture"
	"github.com/manojoshi/tablelimit/match"
	"github.com/manojoshi/tablelimit/query"
)

func TestColumnsOfPresident(t *testing.T) {
	cols, err := Columns(&fixture.President{})
	require.NoError(t, err)

	want := []Column{
		{Property: "name.firstName"},
		{Property: "name.lastName"},
		{Property: "nickname"},
		{Property: "term"},
		{Property: "born", Matcher: match.KeyDate, Pattern: "MM/dd/yyyy"},
		{Property: "party"},
		{Property: "terms", Matcher: match.KeyNumber, Pattern: "#,##0"},
	}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
}

type ledger struct {
	ID      string
	Opened  time.Time
	Balance float64 `limit:"balance,matcher=NUMBER,pattern=$#,##0.00"`
	Secret  string  `limit:"-"`
	Owner   *struct {
		Email string `limit:"email,matcher=wildcard"`
	}
	internal string
}

func TestColumnsDefaultsAndPrefix(t *testing.T) {
	cols, err := Columns(ledger{}, WithPrefix("row"))
	require.NoError(t, err)

	want := []Column{
		{Property: "row.id"},
		{Property: "row.opened", Matcher: match.KeyDateTime},
		{Property: "row.balance", Matcher: match.KeyNumber, Pattern: "$#,##0.00"},
		{Property: "row.owner.email", Matcher: match.KeyWildcard},
	}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}

	cols, err = Columns(ledger{}, WithDepth(0))
	require.NoError(t, err)
	assert.Equal(t, "owner", cols[len(cols)-1].Property)
}

func TestBind(t *testing.T) {
	reg := match.NewRegistry()
	require.NoError(t, Bind(reg, fixture.President{}))

	born, ok := reg.Matcher("born").(*match.DateMatcher)
	require.True(t, ok)
	assert.Equal(t, "MM/dd/yyyy", born.Pattern())
	assert.IsType(t, &match.NumberMatcher{}, reg.Matcher("terms"))
	assert.IsType(t, match.StringMatcher{}, reg.Matcher("name.lastName"))
}

func TestFieldNames(t *testing.T) {
	for name, want := range map[string]string{"ID": "id", "URLPath": "urlPath", "Opened": "opened", "x": "x"} {
		assert.Equal(t, want, lowerInitials(name), name)
	}
}

// A date column tagged without a pattern never matches.
func TestBindDateWithoutPattern(t *testing.T) {
	type row struct {
		Born time.Time `limit:"born,matcher=date"`
	}
	cols, err := Columns(row{})
	require.NoError(t, err)
	assert.Equal(t, []Column{{Property: "born", Matcher: match.KeyDate}}, cols)

	reg := match.NewRegistry()
	require.NoError(t, Bind(reg, row{}))
	born := time.Date(1767, time.March, 15, 0, 0, 0, 0, time.UTC)
	m := reg.Matcher("born")
	assert.False(t, m.Evaluate(match.DefaultContext(), born, query.Contain, query.Scalars("1767")))
	assert.True(t, m.Evaluate(match.DefaultContext(), born, query.IsNotNull, nil))
}

func TestBindRejectsBadTags(t *testing.T) {
	type unknownOption struct {
		X int `limit:"x,sortable"`
	}
	type unknownMatcher struct {
		X int `limit:"x,matcher=roman"`
	}
	_, err := Columns(unknownOption{})
	assert.Error(t, err)
	assert.ErrorIs(t, Bind(match.NewRegistry(), unknownMatcher{}), match.ErrUnknownMatcher)

	_, err = Columns(42)
	assert.Error(t, err)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "president", TableName(&fixture.President{}))
	assert.Equal(t, "ledger", TableName(ledger{}))
}

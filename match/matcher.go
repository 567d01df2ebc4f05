// Package match decides whether one row value satisfies one filter leaf.
//
// Matchers are stateless once built and are shared by every request and
// every evaluation shard; everything request specific arrives in the
// RequestContext argument.
package match

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/manojoshi/tablelimit/query"
)

// ErrMissingPattern marks a number or date matcher built without a pattern.
// Such a matcher never matches.
var ErrMissingPattern = errors.New("matcher has no pattern")

// RequestContext carries the per-request settings a matcher may need.
type RequestContext struct {
	Locale   language.Tag
	Location *time.Location
}

// DefaultContext is English in UTC.
func DefaultContext() RequestContext {
	return RequestContext{Locale: language.English, Location: time.UTC}
}

func (r RequestContext) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// Matcher evaluates one item value against a filter comparison and its
// operands. Implementations must be safe for concurrent use.
type Matcher interface {
	Evaluate(rctx RequestContext, item any, c query.Comparison, values []query.Value) bool
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(rctx RequestContext, item any, c query.Comparison, values []query.Value) bool

func (f MatcherFunc) Evaluate(rctx RequestContext, item any, c query.Comparison, values []query.Value) bool {
	return f(rctx, item, c, values)
}

var matchLog = log.WithField("component", "match")

// nullContract settles the cases every matcher shares:
//
//   - IS_NULL holds for a nil item, IS_NOT_NULL for any other;
//   - a nil item fails every other comparison;
//   - so does an empty operand list.
//
// done is false when the matcher has to look at the item itself.
func nullContract(item any, c query.Comparison, values []query.Value) (result, done bool) {
	switch {
	case c == query.IsNull:
		return item == nil, true
	case c == query.IsNotNull:
		return item != nil, true
	case item == nil, len(values) == 0:
		return false, true
	}
	return false, false
}

// fold lower-cases NFC-normalised text for case-insensitive comparison.
func fold(s string) string { return strings.ToLower(norm.NFC.String(s)) }

// operand returns the text of a filter value; a nil scalar has none.
func operand(v query.Value) (string, bool) {
	if s, ok := v.(query.Scalar); ok && s.V == nil {
		return "", false
	}
	return v.String(), true
}

// containsAny reports whether text contains the text of any operand.
func containsAny(text string, values []query.Value, contain func(text, operand string) bool) bool {
	for _, v := range values {
		if o, ok := operand(v); ok && contain(text, o) {
			return true
		}
	}
	return false
}

// rangeOf returns the [start, end) pair a filter leaf carries: a Range
// operand, or the first two operands of a BETWEEN leaf.
func rangeOf(values []query.Value) (query.Range, bool) {
	if len(values) == 0 {
		return query.Range{}, false
	}
	if r, ok := values[0].(query.Range); ok {
		return r, true
	}
	if len(values) >= 2 {
		return query.Range{Start: values[0].String(), End: values[1].String()}, true
	}
	return query.Range{}, false
}

func hasRange(values []query.Value) bool {
	for _, v := range values {
		if _, ok := v.(query.Range); ok {
			return true
		}
	}
	return false
}

package match

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/manojoshi/tablelimit/query"
)

// StringMatcher is a case-insensitive contains of the first operand,
// whatever the comparison. It is the default for columns with no
// registered matcher.
type StringMatcher struct{}

func (StringMatcher) Evaluate(_ RequestContext, item any, c query.Comparison, values []query.Value) bool {
	if res, done := nullContract(item, c, values); done {
		return res
	}
	return containsFirst(item, values, strings.Contains)
}

// containsFirst folds the item and the first operand before handing them to
// contain. Later operands are ignored.
func containsFirst(item any, values []query.Value, contain func(text, operand string) bool) bool {
	o, ok := operand(values[0])
	if !ok {
		return false
	}
	return contain(fold(query.Stringify(item)), fold(o))
}

// ------------------------------------------------------------------
// Wildcards
// ------------------------------------------------------------------

const wildcardCacheSize = 512

var wildcardCache = mustCache(wildcardCacheSize)

func mustCache(size int) *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		panic(err)
	}
	return c
}

// WildcardMatcher is StringMatcher with the operand read as a pattern
// anchored at the start of the text: "*" matches any run and "?"
// any single character. Every other character, regexp syntax included, is
// literal. A pattern that starts and ends with "*" is a plain contains.
type WildcardMatcher struct{}

func (WildcardMatcher) Evaluate(_ RequestContext, item any, c query.Comparison, values []query.Value) bool {
	if res, done := nullContract(item, c, values); done {
		return res
	}
	return containsFirst(item, values, func(text, pattern string) bool {
		return wildcardRegexp(pattern).MatchString(text)
	})
}

// wildcardRegexp compiles a folded pattern, caching the result.
func wildcardRegexp(pattern string) *regexp.Regexp {
	if re, ok := wildcardCache.Get(pattern); ok {
		return re
	}
	var sb strings.Builder
	sb.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re := regexp.MustCompile(sb.String())
	wildcardCache.Add(pattern, re)
	return re
}

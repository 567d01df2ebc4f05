package query

import (
	"strings"
)

// Comparison is the operator attached to a filter leaf. It marshals to its
// upper-case name.
type Comparison string

const (
	Is         Comparison = "IS"
	IsNot      Comparison = "IS_NOT"
	Gt         Comparison = "GT"
	Gte        Comparison = "GTE"
	Lt         Comparison = "LT"
	Lte        Comparison = "LTE"
	In         Comparison = "IN"
	NotIn      Comparison = "NOT_IN"
	IsNull     Comparison = "IS_NULL"
	IsNotNull  Comparison = "IS_NOT_NULL"
	Exists     Comparison = "EXISTS"     // needs a sub query, never built
	NotExists  Comparison = "NOT_EXISTS" // needs a sub query, never built
	Between    Comparison = "BETWEEN"
	NotBetween Comparison = "NOT_BETWEEN"
	Contain    Comparison = "CONTAIN"
	StartWith  Comparison = "START_WITH"
)

var comparisons = []Comparison{
	Is, IsNot, Gt, Gte, Lt, Lte, In, NotIn, IsNull, IsNotNull,
	Exists, NotExists, Between, NotBetween, Contain, StartWith,
}

// Comparisons lists every operator in declaration order.
func Comparisons() []Comparison { return append([]Comparison(nil), comparisons...) }

// ParseComparison matches s case-insensitively against the operator names.
func ParseComparison(s string) (Comparison, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range comparisons {
		if string(c) == name {
			return c, nil
		}
	}
	return "", &UnknownComparisonError{Name: s}
}

func (c Comparison) String() string { return string(c) }

// IsNullCheck reports IS_NULL / IS_NOT_NULL, which carry no values.
func (c Comparison) IsNullCheck() bool { return c == IsNull || c == IsNotNull }

// IsRange reports BETWEEN / NOT_BETWEEN.
func (c Comparison) IsRange() bool { return c == Between || c == NotBetween }

// IsSet reports IN / NOT_IN.
func (c Comparison) IsSet() bool { return c == In || c == NotIn }

// Negated reports the operators that invert their positive form.
func (c Comparison) Negated() bool {
	switch c {
	case IsNot, NotIn, IsNotNull, NotExists, NotBetween:
		return true
	}
	return false
}

func (c Comparison) MarshalText() ([]byte, error) { return []byte(c), nil }

func (c *Comparison) UnmarshalText(b []byte) error {
	parsed, err := ParseComparison(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Operator joins the members of a FilterSet.
type Operator string

const (
	And Operator = "AND"
	Or  Operator = "OR"
	Not Operator = "NOT" // negates the conjunction of the members
)

// ParseOperator matches s case-insensitively; the empty string is AND.
func ParseOperator(s string) (Operator, error) {
	switch Operator(strings.ToUpper(strings.TrimSpace(s))) {
	case And, "":
		return And, nil
	case Or:
		return Or, nil
	case Not:
		return Not, nil
	}
	return "", &UnknownOperatorError{Name: s}
}

func (o Operator) String() string { return string(o) }

func (o Operator) MarshalText() ([]byte, error) { return []byte(o), nil }

func (o *Operator) UnmarshalText(b []byte) error {
	parsed, err := ParseOperator(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

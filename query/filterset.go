package query

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// FilterSet is one node of a filter tree: its own filters plus nested
// child sets, joined by Operator. Filters are keyed by property, so adding
// a filter for a property that is already present replaces it and moves it
// to the end.
type FilterSet struct {
	filters  *linkedhashmap.Map // property → Filter
	children []*FilterSet
	operator Operator
}

// NewFilterSet returns an empty AND set.
func NewFilterSet() *FilterSet {
	return &FilterSet{filters: linkedhashmap.New(), operator: And}
}

// AddFilter stores f, replacing any filter on the same property. The last
// write for a property wins.
func (s *FilterSet) AddFilter(f Filter) {
	s.filters.Remove(f.property)
	s.filters.Put(f.property, f)
}

// Filters lists the direct filters in insertion order.
func (s *FilterSet) Filters() []Filter {
	vals := s.filters.Values()
	out := make([]Filter, len(vals))
	for i, v := range vals {
		out[i] = v.(Filter)
	}
	return out
}

// Filter returns the direct filter on property.
func (s *FilterSet) Filter(property string) (Filter, bool) {
	v, ok := s.filters.Get(property)
	if !ok {
		return Filter{}, false
	}
	return v.(Filter), true
}

// FilterValue returns the operands of the filter on property joined by ",",
// or "" when the property is not filtered.
func (s *FilterSet) FilterValue(property string) string {
	f, ok := s.Filter(property)
	if !ok {
		return ""
	}
	return f.Value()
}

// RemoveFilter drops the direct filter on property.
func (s *FilterSet) RemoveFilter(property string) { s.filters.Remove(property) }

// IsFiltered reports whether this set has direct filters. Filters held only
// by child sets do not count.
func (s *FilterSet) IsFiltered() bool { return !s.filters.Empty() }

// Len is the number of direct filters.
func (s *FilterSet) Len() int { return s.filters.Size() }

// Empty reports a set with neither filters nor children.
func (s *FilterSet) Empty() bool { return s.filters.Empty() && len(s.children) == 0 }

func (s *FilterSet) Children() []*FilterSet { return append([]*FilterSet(nil), s.children...) }

// AddChild appends a nested set. A nil child is ignored.
func (s *FilterSet) AddChild(c *FilterSet) {
	if c != nil {
		s.children = append(s.children, c)
	}
}

func (s *FilterSet) Operator() Operator { return s.operator }

func (s *FilterSet) SetOperator(o Operator) { s.operator = o }

// Clone deep-copies the tree. Filters are immutable and shared.
func (s *FilterSet) Clone() *FilterSet {
	out := NewFilterSet()
	out.operator = s.operator
	for _, f := range s.Filters() {
		out.filters.Put(f.property, f)
	}
	for _, c := range s.children {
		out.children = append(out.children, c.Clone())
	}
	return out
}

// Equal compares operator, filters (by triple, in order) and children.
func (s *FilterSet) Equal(o *FilterSet) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.operator != o.operator || s.filters.Size() != o.filters.Size() || len(s.children) != len(o.children) {
		return false
	}
	a, b := s.Filters(), o.Filters()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	for i := range s.children {
		if !s.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// Walk visits the set and every descendant depth first.
func (s *FilterSet) Walk(fn func(*FilterSet)) {
	fn(s)
	for _, c := range s.children {
		c.Walk(fn)
	}
}

func (s *FilterSet) String() string { return Compile(s) }

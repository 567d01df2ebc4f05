package query

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
)

// Order is a sort direction. It marshals to lower case, as clients send it.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts asc/desc in any case.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", &UnknownOrderError{Name: s}
}

func (o Order) String() string { return string(o) }

func (o Order) MarshalText() ([]byte, error) { return []byte(o), nil }

func (o *Order) UnmarshalText(b []byte) error {
	parsed, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Sort is one sort key. Position orders the keys: the lowest position is the
// primary key.
type Sort struct {
	Position int    `json:"position"`
	Property string `json:"property"`
	Order    Order  `json:"order"`
}

func (s Sort) String() string {
	return fmt.Sprintf("{position=%d, property='%s', order=%s}", s.Position, s.Property, s.Order)
}

// SortSet holds the sort keys of a table keyed by position. A property
// appears at most once; re-adding it moves it to the new position.
type SortSet struct {
	sorts *treemap.Map // position → Sort
}

func NewSortSet() *SortSet {
	return &SortSet{sorts: treemap.NewWithIntComparator()}
}

// AddSort stores s at s.Position, replacing whatever was there and dropping
// any earlier key on the same property.
func (ss *SortSet) AddSort(s Sort) {
	if old, ok := ss.Sort(s.Property); ok {
		ss.sorts.Remove(old.Position)
	}
	ss.sorts.Put(s.Position, s)
}

// Add appends a key after the current last position.
func (ss *SortSet) Add(property string, o Order) {
	pos := 0
	if k, _ := ss.sorts.Max(); k != nil {
		pos = k.(int) + 1
	}
	if old, ok := ss.Sort(property); ok {
		ss.sorts.Remove(old.Position)
	}
	ss.sorts.Put(pos, Sort{Position: pos, Property: property, Order: o})
}

// Sort looks a key up by property.
func (ss *SortSet) Sort(property string) (Sort, bool) {
	it := ss.sorts.Iterator()
	for it.Next() {
		if s := it.Value().(Sort); s.Property == property {
			return s, true
		}
	}
	return Sort{}, false
}

// Remove drops the key on property.
func (ss *SortSet) Remove(property string) {
	if s, ok := ss.Sort(property); ok {
		ss.sorts.Remove(s.Position)
	}
}

// Sorts lists the keys in position order.
func (ss *SortSet) Sorts() []Sort {
	out := make([]Sort, 0, ss.sorts.Size())
	it := ss.sorts.Iterator()
	for it.Next() {
		out = append(out, it.Value().(Sort))
	}
	return out
}

func (ss *SortSet) IsSorted() bool { return !ss.sorts.Empty() }

func (ss *SortSet) Len() int { return ss.sorts.Size() }

func (ss *SortSet) Clone() *SortSet {
	out := NewSortSet()
	for _, s := range ss.Sorts() {
		out.sorts.Put(s.Position, s)
	}
	return out
}

func (ss *SortSet) Equal(o *SortSet) bool {
	if ss == nil || o == nil {
		return ss == o
	}
	a, b := ss.Sorts(), o.Sorts()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (ss *SortSet) String() string {
	parts := make([]string, 0, ss.sorts.Size())
	for _, s := range ss.Sorts() {
		parts = append(parts, s.Property+" "+strings.ToUpper(string(s.Order)))
	}
	return strings.Join(parts, ", ")
}

package query

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Wire keys of the filter tree document.
const (
	KeyOperator   = "operator"
	KeyFilters    = "filters"
	KeyFilterSets = "filterSets"
	KeyKey        = "key"
	KeyComparison = "comparison"
	KeyValue      = "value"
)

type filterDoc struct {
	Key        string     `json:"key"`
	Comparison Comparison `json:"comparison"`
	Value      []any      `json:"value"`
}

type filterSetDoc struct {
	Operator   Operator     `json:"operator"`
	Filters    []Filter     `json:"filters"`
	FilterSets []*FilterSet `json:"filterSets,omitempty"`
}

// MarshalJSON writes {"key","comparison","value":[...]}. A Range operand is
// written as "start~end".
func (f Filter) MarshalJSON() ([]byte, error) {
	doc := filterDoc{Key: f.property, Comparison: f.comparison, Value: make([]any, len(f.values))}
	for i, v := range f.values {
		switch t := v.(type) {
		case Range:
			doc.Value[i] = t.String()
		case Scalar:
			doc.Value[i] = t.V
		}
	}
	return json.Marshal(doc)
}

func (f *Filter) UnmarshalJSON(b []byte) error {
	m, err := decodeObject(b)
	if err != nil {
		return err
	}
	parsed, ok, err := ParseFilter(m)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrInvalidFilter, "blank value for %v", m[KeyKey])
	}
	*f = parsed
	return nil
}

func (s *FilterSet) MarshalJSON() ([]byte, error) {
	filters := s.Filters()
	if filters == nil {
		filters = []Filter{}
	}
	return json.Marshal(filterSetDoc{Operator: s.operator, Filters: filters, FilterSets: s.children})
}

func (s *FilterSet) UnmarshalJSON(b []byte) error {
	m, err := decodeObject(b)
	if err != nil {
		return err
	}
	parsed, err := FilterSetFrom(m)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

func (ss *SortSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ss.Sorts())
}

func (ss *SortSet) UnmarshalJSON(b []byte) error {
	var sorts []Sort
	if err := json.Unmarshal(b, &sorts); err != nil {
		return errors.Wrap(err, "decode sort set")
	}
	*ss = *NewSortSet()
	for _, s := range sorts {
		ss.AddSort(s)
	}
	return nil
}

// FilterSetFrom builds a tree from a decoded JSON value:
//
//   - an object with "operator", "filters" (a list of leaves or one leaf) and
//     "filterSets" fills one node;
//   - a list makes each element a child node.
func FilterSetFrom(v any) (*FilterSet, error) {
	fs := NewFilterSet()
	if err := fillSet(fs, v); err != nil {
		return nil, err
	}
	return fs, nil
}

func fillSet(fs *FilterSet, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		for _, e := range t {
			child, err := FilterSetFrom(e)
			if err != nil {
				return err
			}
			fs.AddChild(child)
		}
		return nil
	case map[string]any:
		if op, ok := t[KeyOperator]; ok && op != nil {
			parsed, err := ParseOperator(StringValue(op))
			if err != nil {
				return err
			}
			fs.operator = parsed
		}
		if raw, ok := t[KeyFilters]; ok && raw != nil {
			leaves, isList := raw.([]any)
			if !isList {
				leaves = []any{raw}
			}
			for _, leaf := range leaves {
				m, isMap := leaf.(map[string]any)
				if !isMap {
					return errors.Wrapf(ErrInvalidFilter, "filter leaf must be an object, got %T", leaf)
				}
				f, ok, err := ParseFilter(m)
				if err != nil {
					return err
				}
				if ok {
					fs.AddFilter(f)
				}
			}
		}
		switch sets := t[KeyFilterSets].(type) {
		case nil:
		case map[string]any:
			child, err := FilterSetFrom(sets)
			if err != nil {
				return err
			}
			fs.AddChild(child)
		default:
			if err := fillSet(fs, sets); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Wrapf(ErrInvalidFilter, "filter set must be an object or a list, got %T", v)
}

// ParseFilter reads one {"key","comparison","value"} leaf. ok is false when
// the value is blank.
func ParseFilter(m map[string]any) (f Filter, ok bool, err error) {
	property, _ := m[KeyKey].(string)
	if property == "" {
		return Filter{}, false, errors.Wrap(ErrInvalidFilter, "filter leaf has no key")
	}
	c, err := ParseComparison(StringValue(m[KeyComparison]))
	if err != nil {
		return Filter{}, false, errors.Wrapf(err, "filter on %s", property)
	}
	return BuildRaw(property, c, m[KeyValue])
}

// decodeObject keeps numbers as json.Number so integers survive intact.
func decodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode filter document")
	}
	return m, nil
}

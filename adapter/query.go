package adapter

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/manojoshi/tablelimit/query"
)

// Query is the typed request object.
type Query struct {
	MaxRows    *int             `json:"maxRows,omitempty"`
	Page       *int             `json:"page,omitempty"`
	ExportType string           `json:"exportType,omitempty"`
	Sort       []SortField      `json:"sort,omitempty"`
	Filter     []FilterField    `json:"filter,omitempty"`
	FilterSet  *query.FilterSet `json:"filterSet,omitempty"`
}

type SortField struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type FilterField struct {
	Key        string `json:"key"`
	Comparison string `json:"comparison"`
	Value      []any  `json:"value"`
}

// QueryFactory reads a Query. The root of its tree is always AND; a
// caller-supplied FilterSet becomes the root's only child.
type QueryFactory struct {
	id  string
	q   Query
	log *log.Entry
}

func NewQueryFactory(id string, q Query) *QueryFactory {
	return &QueryFactory{
		id:  id,
		q:   q,
		log: adapterLog.WithFields(log.Fields{"table": id, "encoding": "query"}),
	}
}

func (f *QueryFactory) ID() string { return f.id }

func (f *QueryFactory) MaxRows() int {
	n := 0
	if f.q.MaxRows != nil {
		n = maxRows(*f.q.MaxRows)
	}
	f.log.WithField("maxRows", n).Debug("max rows")
	return n
}

func (f *QueryFactory) Page() int {
	n := 1
	if f.q.Page != nil {
		n = page(*f.q.Page)
	}
	f.log.WithField("page", n).Debug("page")
	return n
}

func (f *QueryFactory) ExportKind() string { return strings.TrimSpace(f.q.ExportType) }

func (f *QueryFactory) FilterSet() (*query.FilterSet, error) {
	fs := query.NewFilterSet()
	for _, field := range f.q.Filter {
		c, err := query.ParseComparison(field.Comparison)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %s", field.Key)
		}
		var raw any = field.Value
		if len(field.Value) == 1 {
			raw = field.Value[0]
		}
		flt, ok, err := query.BuildRaw(field.Key, c, raw)
		if err != nil {
			return nil, err
		}
		if ok {
			fs.AddFilter(flt)
		}
	}
	fs.SetOperator(query.And)
	if f.q.FilterSet != nil {
		fs.AddChild(f.q.FilterSet.Clone())
	}
	return fs, nil
}

// SortSet numbers the sort fields in list order, skipping entries with no
// order.
func (f *QueryFactory) SortSet() (*query.SortSet, error) {
	ss := query.NewSortSet()
	pos := 0
	for _, s := range f.q.Sort {
		if strings.TrimSpace(s.Order) == "" || s.Field == "" {
			continue
		}
		order, err := query.ParseOrder(s.Order)
		if err != nil {
			return nil, errors.Wrapf(err, "sort %s", s.Field)
		}
		ss.AddSort(query.Sort{Position: pos, Property: s.Field, Order: order})
		pos++
	}
	return ss, nil
}

package adapter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/manojoshi/tablelimit/query"
)

// Parameter action codes. A key is "{id}_{code}" followed by the code's
// arguments, for example "presidents_s_0_name.lastName".
const (
	CodeFilter  = "f_"
	CodeSort    = "s_"
	CodeMaxRows = "mr_"
	CodePage    = "p_"
	CodeClear   = "c_"
	CodeExport  = "e_"
)

// ParamsFactory reads a flat request parameter map. Filters carry no
// comparison in this encoding and are always CONTAIN. Keys are read in
// sorted order.
type ParamsFactory struct {
	id     string
	prefix string
	params map[string][]string
	log    *log.Entry
}

func NewParamsFactory(id string, params map[string][]string) *ParamsFactory {
	return &ParamsFactory{
		id:     id,
		prefix: id + "_",
		params: params,
		log:    adapterLog.WithFields(log.Fields{"table": id, "encoding": "params"}),
	}
}

func (p *ParamsFactory) ID() string { return p.id }

func (p *ParamsFactory) value(code string) string {
	return query.StringValue(p.params[p.prefix+code])
}

func (p *ParamsFactory) MaxRows() int {
	n := maxRows(p.value(CodeMaxRows))
	p.log.WithField("maxRows", n).Debug("max rows")
	return n
}

func (p *ParamsFactory) Page() int {
	n := page(p.value(CodePage))
	p.log.WithField("page", n).Debug("page")
	return n
}

func (p *ParamsFactory) ExportKind() string {
	kind := p.value(CodeExport)
	p.log.WithField("export", kind).Debug("export kind")
	return kind
}

// FilterSet builds an AND tree of CONTAIN filters. A clear parameter
// empties it. Two values for one key form a range.
func (p *ParamsFactory) FilterSet() (*query.FilterSet, error) {
	fs := query.NewFilterSet()
	if p.value(CodeClear) != "" {
		p.log.Debug("cleared out the filters")
		return fs, nil
	}

	filterPrefix := p.prefix + CodeFilter
	for _, key := range p.keys() {
		if !strings.HasPrefix(key, filterPrefix) {
			continue
		}
		property := strings.TrimPrefix(key, filterPrefix)
		f, ok, err := query.BuildRaw(property, query.Contain, p.params[key])
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", key)
		}
		if ok {
			fs.AddFilter(f)
		}
	}
	return fs, nil
}

// SortSet reads "{id}_s_{position}_{property}" = asc|desc.
func (p *ParamsFactory) SortSet() (*query.SortSet, error) {
	ss := query.NewSortSet()
	sortPrefix := p.prefix + CodeSort
	for _, key := range p.keys() {
		if !strings.HasPrefix(key, sortPrefix) {
			continue
		}
		value := strings.TrimSpace(query.StringValue(p.params[key]))
		if value == "" {
			continue
		}
		pos, property, found := strings.Cut(strings.TrimPrefix(key, sortPrefix), "_")
		if !found || property == "" {
			return nil, errors.Wrapf(query.ErrInvalidFilter, "sort parameter %s has no property", key)
		}
		n, err := strconv.Atoi(pos)
		if err != nil {
			return nil, errors.Wrapf(query.ErrInvalidFilter, "sort parameter %s: position %q", key, pos)
		}
		order, err := query.ParseOrder(value)
		if err != nil {
			return nil, errors.Wrapf(err, "sort parameter %s", key)
		}
		ss.AddSort(query.Sort{Position: n, Property: property, Order: order})
	}
	return ss, nil
}

func (p *ParamsFactory) keys() []string {
	out := make([]string, 0, len(p.params))
	for k := range p.params {
		if strings.HasPrefix(k, p.prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

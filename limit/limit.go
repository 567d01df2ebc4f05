// Package limit assembles the query descriptor of one table render: the
// filter tree, the sort set, the page window and the export kind.
//
//	f := limit.NewFactory(adapter.NewParamsFactory("presidents", params),
//	    limit.WithStore(state.Scoped(store, session)))
//	l, err := f.CreateLimit(ctx, len(rows))
package limit

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/manojoshi/tablelimit/query"
)

// ExportKind names an export rendering. Empty means a normal page.
type ExportKind string

const (
	ExportJSON  ExportKind = "json"
	ExportCSV   ExportKind = "csv"
	ExportExcel ExportKind = "excel"
	ExportPDF   ExportKind = "pdf"
)

// Known reports whether k is one of the built-in export kinds.
func (k ExportKind) Known() bool {
	switch k {
	case ExportJSON, ExportCSV, ExportExcel, ExportPDF:
		return true
	}
	return false
}

// Limit is the query descriptor. It is mutable until handed to the
// repository; Restored reports whether it came out of the state store.
type Limit struct {
	id         string
	filterSet  *query.FilterSet
	sortSet    *query.SortSet
	rowSelect  *RowSelect
	exportKind ExportKind
	restored   bool
}

// New returns a descriptor with no page window. Nil sets become empty ones.
func New(id string, fs *query.FilterSet, ss *query.SortSet) *Limit {
	if fs == nil {
		fs = query.NewFilterSet()
	}
	if ss == nil {
		ss = query.NewSortSet()
	}
	return &Limit{id: id, filterSet: fs, sortSet: ss}
}

func (l *Limit) ID() string                  { return l.id }
func (l *Limit) FilterSet() *query.FilterSet { return l.filterSet }
func (l *Limit) SortSet() *query.SortSet     { return l.sortSet }
func (l *Limit) Restored() bool              { return l.restored }
func (l *Limit) ExportKind() ExportKind      { return l.exportKind }

func (l *Limit) SetExportKind(k ExportKind) {
	l.exportKind = ExportKind(strings.ToLower(strings.TrimSpace(string(k))))
}

// HasExport reports whether this render is an export.
func (l *Limit) HasExport() bool { return l.exportKind != "" }

// RowSelect returns the page window; ok is false until one is attached.
func (l *Limit) RowSelect() (RowSelect, bool) {
	if l.rowSelect == nil {
		return RowSelect{}, false
	}
	return *l.rowSelect, true
}

func (l *Limit) SetRowSelect(rs RowSelect) { l.rowSelect = &rs }

// IsFiltered reports whether the root set holds a filter. Filters that
// only live in child sets do not count.
func (l *Limit) IsFiltered() bool { return l.filterSet.IsFiltered() }

func (l *Limit) IsSorted() bool { return l.sortSet.IsSorted() }

func (l *Limit) String() string {
	var sb strings.Builder
	sb.WriteString(l.id)
	sb.WriteString(": ")
	sb.WriteString(query.Compile(l.filterSet))
	if l.IsSorted() {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(l.sortSet.String())
	}
	if rs, ok := l.RowSelect(); ok {
		sb.WriteString(" ")
		sb.WriteString(rs.String())
	}
	if l.HasExport() {
		sb.WriteString(" EXPORT ")
		sb.WriteString(string(l.exportKind))
	}
	return sb.String()
}

// ------------------------------------------------------------------
// persisted form
// ------------------------------------------------------------------

type limitDoc struct {
	ID         string           `json:"id"`
	FilterSet  *query.FilterSet `json:"filterSet"`
	SortSet    *query.SortSet   `json:"sortSet"`
	RowSelect  *RowSelect       `json:"rowSelect,omitempty"`
	ExportKind ExportKind       `json:"exportKind,omitempty"`
}

// MarshalJSON writes the stored form. The restored flag is per request and
// is not written.
func (l *Limit) MarshalJSON() ([]byte, error) {
	return json.Marshal(limitDoc{
		ID:         l.id,
		FilterSet:  l.filterSet,
		SortSet:    l.sortSet,
		RowSelect:  l.rowSelect,
		ExportKind: l.exportKind,
	})
}

func (l *Limit) UnmarshalJSON(b []byte) error {
	var doc limitDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return errors.Wrap(err, "decode limit")
	}
	*l = *New(doc.ID, doc.FilterSet, doc.SortSet)
	l.rowSelect = doc.RowSelect
	l.exportKind = doc.ExportKind
	return nil
}

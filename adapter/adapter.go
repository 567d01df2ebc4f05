// Package adapter normalizes the three client encodings of table state into
// the inputs of a query descriptor: a filter tree, a sort set, the page
// window and the export kind.
//
//	af := adapter.NewParamsFactory("presidents", r.URL.Query())
//	fs, err := af.FilterSet()
package adapter

import (
	log "github.com/sirupsen/logrus"

	"github.com/manojoshi/tablelimit/query"
)

// ActionFactory reads one request's raw table state.
//
// MaxRows is 0 when the request does not carry a positive row count, which
// means the caller's default applies. Page is at least 1.
type ActionFactory interface {
	ID() string
	MaxRows() int
	Page() int
	FilterSet() (*query.FilterSet, error)
	SortSet() (*query.SortSet, error)
	ExportKind() string
}

var adapterLog = log.WithField("component", "adapter")

func maxRows(raw any) int {
	if n := query.IntValue(raw); n > 0 {
		return n
	}
	return 0
}

func page(raw any) int {
	if n := query.IntValue(raw); n > 0 {
		return n
	}
	return 1
}

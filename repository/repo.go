// Package repository evaluates a query descriptor against in-memory rows:
// it filters with the matcher registry, sorts with the sort set and cuts
// the page window.
//
//	repo := repository.New(repository.WithRegistry(reg), repository.WithWorkers(4))
//	l, err := limit.NewFactory(af).CreateLimit(ctx, len(rows))
//	res, err := repository.Search(ctx, repo, rctx, rows, l)
package repository

import (
	"context"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/manojoshi/tablelimit/limit"
	"github.com/manojoshi/tablelimit/match"
)

// DefaultShardSize is the number of rows one goroutine evaluates.
const DefaultShardSize = 1024

var repoLog = log.WithField("component", "repository")

// Repository holds the evaluation settings shared by every search.
type Repository struct {
	registry  *match.Registry
	workers   int
	shardSize int
}

// New returns a repository with the built-in matchers, GOMAXPROCS workers
// and DefaultShardSize shards.
func New(opts ...Opt) *Repository {
	r := &Repository{
		registry:  match.NewRegistry(),
		workers:   runtime.GOMAXPROCS(0),
		shardSize: DefaultShardSize,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Registry returns the matcher registry in use.
func (r *Repository) Registry() *match.Registry { return r.registry }

// Result is one page of a search.
type Result[T any] struct {
	Rows      []T
	TotalRows int
	RowSelect limit.RowSelect
}

// -------------------------------------------------------------------
// SEARCH
// -------------------------------------------------------------------

// Search filters, sorts and pages rows by l. The page window is
// recomputed for the filtered row count and stored back on l; a
// descriptor without a window gets a single page.
func Search[T any](
	ctx context.Context,
	r *Repository,
	rctx match.RequestContext,
	rows []T,
	l *limit.Limit,
) (*Result[T], error) {
	ctx, span := otel.Tracer("tablelimit.repository").Start(ctx, "repository.search")
	defer span.End()

	start := time.Now()
	defer func() {
		searchSeconds.WithLabelValues(l.ID()).Observe(time.Since(start).Seconds())
	}()

	filtered, err := Filter(ctx, r, rctx, l.ID(), rows, l.FilterSet())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	sorted := Sort(filtered, l.SortSet())

	rs, ok := l.RowSelect()
	if ok {
		rs = rs.WithTotalRows(len(sorted))
	} else {
		rs = limit.NewRowSelect(1, 0, len(sorted))
	}
	l.SetRowSelect(rs)

	span.SetAttributes(
		attribute.String("limit.id", l.ID()),
		attribute.Int("rows.in", len(rows)),
		attribute.Int("rows.matched", len(sorted)),
		attribute.Int("page", rs.Page()),
	)
	repoLog.WithFields(log.Fields{
		"table":   l.ID(),
		"filter":  l.FilterSet().String(),
		"matched": len(sorted),
		"page":    rs.Page(),
	}).Debug("search")

	return &Result[T]{Rows: Page(sorted, rs), TotalRows: len(sorted), RowSelect: rs}, nil
}

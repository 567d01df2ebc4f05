package repository

import (
	"context"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/manojoshi/tablelimit/internal"
	"github.com/manojoshi/tablelimit/limit"
	"github.com/manojoshi/tablelimit/match"
	"github.com/manojoshi/tablelimit/query"
	"github.com/manojoshi/tablelimit/scan"
)

/*───────────────────────────────────────────────────────────────
|  Filtering                                                     |
└───────────────────────────────────────────────────────────────*/

// evaluator walks one row through a filter tree.
type evaluator struct {
	registry *match.Registry
	rctx     match.RequestContext
	table    string
}

// set evaluates a node. A node with no filters and no non-empty children
// matches every row; NOT negates the conjunction of its members.
func (e evaluator) set(row any, fs *query.FilterSet) bool {
	members, all, some := 0, true, false
	visit := func(ok bool) {
		members++
		all = all && ok
		some = some || ok
	}
	for _, f := range fs.Filters() {
		visit(e.filter(row, f))
	}
	for _, c := range fs.Children() {
		if c.Empty() {
			continue
		}
		visit(e.set(row, c))
	}
	if members == 0 {
		return true
	}
	switch fs.Operator() {
	case query.Or:
		return some
	case query.Not:
		return !all
	}
	return all
}

// filter runs one leaf. A matcher that panics counts as a non-match.
func (e evaluator) filter(row any, f query.Filter) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			matcherFailures.WithLabelValues(e.table, f.Property()).Inc()
			repoLog.WithFields(log.Fields{
				"table":    e.table,
				"property": f.Property(),
			}).Warnf("matcher failed: %v", p)
			ok = false
		}
	}()
	item := scan.Resolve(row, f.Property())
	return e.registry.Matcher(f.Property()).Evaluate(e.rctx, item, f.Comparison(), f.Values())
}

// Filter keeps the rows that satisfy fs, in input order. Collections
// larger than one shard are evaluated concurrently.
func Filter[T any](
	ctx context.Context,
	r *Repository,
	rctx match.RequestContext,
	table string,
	rows []T,
	fs *query.FilterSet,
) ([]T, error) {
	if fs == nil || fs.Empty() {
		return append([]T(nil), rows...), nil
	}

	e := evaluator{registry: r.registry, rctx: rctx, table: table}
	keep := make([]bool, len(rows))
	spans := internal.Chunk(len(rows), r.shardSize)

	if len(spans) <= 1 {
		for i, row := range rows {
			keep[i] = e.set(row, fs)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for _, sp := range spans {
			sp := sp
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := sp.Lo; i < sp.Hi; i++ {
					keep[i] = e.set(rows[i], fs)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := internal.Mask(rows, keep)
	rowsEvaluated.WithLabelValues(table).Add(float64(len(rows)))
	rowsMatched.WithLabelValues(table).Add(float64(len(out)))
	return out, nil
}

/*───────────────────────────────────────────────────────────────
|  Sorting                                                       |
└───────────────────────────────────────────────────────────────*/

// Sort returns a stably sorted copy of rows. Sorts apply in position
// order. A nil or missing value sorts highest: such rows trail an
// ascending sort and lead a descending one, the order existing table
// clients rely on. An empty string sorts before every other string.
func Sort[T any](rows []T, ss *query.SortSet) []T {
	out := append([]T(nil), rows...)
	if ss == nil || !ss.IsSorted() {
		return out
	}
	sorts := ss.Sorts()

	ks := internal.Map(out, func(row T) keyed[T] {
		keys := make([]any, len(sorts))
		for i, s := range sorts {
			keys[i] = scan.Resolve(row, s.Property)
		}
		return keyed[T]{row: row, keys: keys}
	})

	slices.SortStableFunc(ks, func(a, b keyed[T]) int {
		for i, s := range sorts {
			c := compareValues(a.keys[i], b.keys[i])
			if s.Order == query.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return internal.Map(ks, func(k keyed[T]) T { return k.row })
}

// keyed is a row with its sort keys resolved once.
type keyed[T any] struct {
	row  T
	keys []any
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return internal.Compare(boolRank(ba), boolRank(bb))
		}
	}
	if fa, ok := query.ToFloat(a); ok {
		if fb, ok := query.ToFloat(b); ok {
			return internal.Compare(fa, fb)
		}
	}
	return strings.Compare(query.Stringify(a), query.Stringify(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

/*───────────────────────────────────────────────────────────────
|  Paging                                                        |
└───────────────────────────────────────────────────────────────*/

// Page returns a copy of the rows inside the window.
func Page[T any](rows []T, rs limit.RowSelect) []T {
	lo, hi := rs.Bounds()
	hi = min(hi, len(rows))
	lo = min(lo, hi)
	return append([]T(nil), rows[lo:hi]...)
}

package repository

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	promNamespace = "tablelimit"
	promSubsystem = "repository"
)

var (
	tableLabels = []string{"table"}

	rowsEvaluated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "rows_evaluated_total",
		Help:      "rows walked through a filter tree",
	}, tableLabels)
	rowsMatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "rows_matched_total",
		Help:      "rows that satisfied a filter tree",
	}, tableLabels)
	matcherFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "matcher_failures_total",
		Help:      "filter evaluations that failed and counted as a non-match",
	}, []string{"table", "property"})
	searchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "search_seconds",
		Help:      "duration of a filter, sort and page pass",
		Buckets:   prometheus.DefBuckets,
	}, tableLabels)
)

// RegisterMetrics registers the repository collectors with r.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{rowsEvaluated, rowsMatched, matcherFailures, searchSeconds} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

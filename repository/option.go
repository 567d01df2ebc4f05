package repository

import (
	"github.com/manojoshi/tablelimit/match"
)

// Opt configures a Repository.
type Opt func(*Repository)

// WithRegistry sets the matchers used per property. The default is
// match.NewRegistry().
func WithRegistry(r *match.Registry) Opt {
	return func(repo *Repository) {
		if r != nil {
			repo.registry = r
		}
	}
}

// WithWorkers caps the goroutines evaluating one search.
func WithWorkers(n int) Opt {
	return func(repo *Repository) {
		if n > 0 {
			repo.workers = n
		}
	}
}

// WithShardSize sets the rows per evaluation shard. Collections no larger
// than one shard are evaluated inline.
func WithShardSize(n int) Opt {
	return func(repo *Repository) {
		if n > 0 {
			repo.shardSize = n
		}
	}
}

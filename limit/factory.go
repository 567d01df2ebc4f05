package limit

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/manojoshi/tablelimit/adapter"
	"github.com/manojoshi/tablelimit/state"
)

// DefaultMaxRows is the page size used when neither the request nor the
// caller names one.
const DefaultMaxRows = 20

// KeyPrefix prefixes the state store key of every descriptor.
const KeyPrefix = "limit:"

var limitLog = log.WithField("component", "limit")

// ------------------------------------------------------------------
// Options
// ------------------------------------------------------------------

type Opt func(*Factory)

// WithStore persists descriptors between requests. Without a store every
// request builds a fresh descriptor.
func WithStore(s state.Store) Opt { return func(f *Factory) { f.store = s } }

// WithMaxRows sets the fallback page size.
func WithMaxRows(n int) Opt {
	return func(f *Factory) {
		if n > 0 {
			f.maxRows = n
		}
	}
}

// Factory creates the descriptor of one request, restoring the previous
// one from the store when it exists.
type Factory struct {
	af      adapter.ActionFactory
	store   state.Store
	maxRows int
	log     *log.Entry
}

func NewFactory(af adapter.ActionFactory, opts ...Opt) *Factory {
	f := &Factory{af: af, maxRows: DefaultMaxRows}
	for _, o := range opts {
		o(f)
	}
	f.log = limitLog.WithField("table", af.ID())
	return f
}

// CreateLimit returns the stored descriptor unchanged when there is one.
// Otherwise it builds one from the request, attaches the page window for
// totalRows and stores it unless the request is an export.
func (f *Factory) CreateLimit(ctx context.Context, totalRows int) (*Limit, error) {
	return f.create(ctx, 0, totalRows)
}

// CreateLimitAndRowSelect is CreateLimit with maxRows as the page size when
// the request carries none. An export gets one page holding every row.
func (f *Factory) CreateLimitAndRowSelect(ctx context.Context, maxRows, totalRows int) (*Limit, error) {
	return f.create(ctx, maxRows, totalRows)
}

// CreateRowSelect derives the page window from the request. The page size
// is the request's, else maxRows, else the factory default.
func (f *Factory) CreateRowSelect(maxRows, totalRows int) RowSelect {
	n := f.af.MaxRows()
	if n <= 0 {
		n = maxRows
	}
	if n <= 0 {
		n = f.maxRows
	}
	return NewRowSelect(f.af.Page(), n, totalRows)
}

// Clear drops the stored descriptor, so the next request starts fresh.
func (f *Factory) Clear(ctx context.Context) error {
	if f.store == nil {
		return nil
	}
	return errors.Wrapf(f.store.Delete(ctx, f.key()), "clear %s", f.af.ID())
}

func (f *Factory) create(ctx context.Context, maxRows, totalRows int) (*Limit, error) {
	ctx, span := otel.Tracer("tablelimit.limit").Start(ctx, "limit.create")
	defer span.End()
	span.SetAttributes(attribute.String("limit.id", f.af.ID()))

	l, err := f.restore(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if l != nil {
		span.SetAttributes(attribute.Bool("limit.restored", true))
		if _, ok := l.RowSelect(); !ok {
			l.SetRowSelect(f.CreateRowSelect(maxRows, totalRows))
		}
		return l, nil
	}

	if l, err = f.build(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if l.HasExport() {
		l.SetRowSelect(NewRowSelect(1, totalRows, totalRows))
		f.log.WithField("export", l.ExportKind()).Debug("export, not stored")
		return l, nil
	}
	l.SetRowSelect(f.CreateRowSelect(maxRows, totalRows))
	if err := f.persist(ctx, l); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return l, nil
}

func (f *Factory) build() (*Limit, error) {
	fs, err := f.af.FilterSet()
	if err != nil {
		return nil, errors.Wrapf(err, "build filter set of %s", f.af.ID())
	}
	ss, err := f.af.SortSet()
	if err != nil {
		return nil, errors.Wrapf(err, "build sort set of %s", f.af.ID())
	}
	l := New(f.af.ID(), fs, ss)
	l.SetExportKind(ExportKind(f.af.ExportKind()))
	if l.HasExport() && !l.ExportKind().Known() {
		f.log.WithField("export", l.ExportKind()).Warn("unknown export kind")
	}
	return l, nil
}

// restore returns nil when the store holds nothing usable. A blob that no
// longer decodes is dropped.
func (f *Factory) restore(ctx context.Context) (*Limit, error) {
	if f.store == nil {
		return nil, nil
	}
	blob, ok, err := f.store.Get(ctx, f.key())
	if err != nil {
		return nil, errors.Wrapf(err, "restore %s", f.af.ID())
	}
	if !ok {
		return nil, nil
	}
	l := &Limit{}
	if err := json.Unmarshal(blob, l); err != nil {
		f.log.WithError(err).Warn("dropping undecodable stored limit")
		return nil, errors.Wrapf(f.store.Delete(ctx, f.key()), "drop %s", f.af.ID())
	}
	l.restored = true
	f.log.Debug("restored limit from state")
	return l, nil
}

func (f *Factory) persist(ctx context.Context, l *Limit) error {
	if f.store == nil {
		return nil
	}
	blob, err := json.Marshal(l)
	if err != nil {
		return errors.Wrapf(err, "encode %s", l.ID())
	}
	if err := f.store.Put(ctx, f.key(), blob); err != nil {
		return errors.Wrapf(err, "store %s", l.ID())
	}
	return nil
}

func (f *Factory) key() string { return KeyPrefix + f.af.ID() }

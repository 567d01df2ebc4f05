// Package httpapi serves table queries over HTTP.
//
//	GET    /tables/:table          parameter-map encoding in the query string
//	POST   /tables/:table          JSON document body
//	POST   /tables/:table/query    structured request object body
//	DELETE /tables/:table/state    forget the session's stored descriptor
//	GET    /tables                 registered table ids
//
// A session is named by the X-Session-ID header. Requests without a valid
// one get a fresh id in the response header. Within a session the stored
// descriptor of a table wins over new input until it is cleared.
package httpapi

import (
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/manojoshi/tablelimit/adapter"
	"github.com/manojoshi/tablelimit/limit"
	"github.com/manojoshi/tablelimit/match"
	"github.com/manojoshi/tablelimit/query"
	"github.com/manojoshi/tablelimit/repository"
	"github.com/manojoshi/tablelimit/state"
)

// Request and response headers.
const (
	HeaderSessionID = "X-Session-ID"
	HeaderTimezone  = "X-Timezone"
)

const maxBodyBytes = 1 << 20

var apiLog = log.WithField("component", "httpapi")

// ------------------------------------------------------------------
// Options
// ------------------------------------------------------------------

type Opt func(*Server)

func WithStore(s state.Store) Opt { return func(srv *Server) { srv.store = s } }

func WithRepository(r *repository.Repository) Opt {
	return func(srv *Server) { srv.repo = r }
}

// WithRequestContext sets the locale and location used when a request
// names none.
func WithRequestContext(rctx match.RequestContext) Opt {
	return func(srv *Server) { srv.rctx = rctx }
}

func WithMaxRows(n int) Opt { return func(srv *Server) { srv.maxRows = n } }

// Server holds the tables and the engine settings.
type Server struct {
	mu     sync.RWMutex
	tables map[string][]any

	store   state.Store
	repo    *repository.Repository
	rctx    match.RequestContext
	maxRows int
}

// New returns a server with an in-memory store and the default repository.
func New(opts ...Opt) (*Server, error) {
	s := &Server{
		tables:  map[string][]any{},
		repo:    repository.New(),
		rctx:    match.DefaultContext(),
		maxRows: limit.DefaultMaxRows,
	}
	for _, o := range opts {
		o(s)
	}
	if s.store == nil {
		mem, err := state.NewMemoryStore(0)
		if err != nil {
			return nil, err
		}
		s.store = mem
	}
	return s, nil
}

// AddTable registers or replaces the rows served under id.
func (s *Server) AddTable(id string, rows []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[id] = rows
}

func (s *Server) table(id string) ([]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.tables[id]
	return rows, ok
}

// Echo builds the HTTP handler.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.errorHandler(e)
	s.Register(e.Group(""))
	return e
}

// Register mounts the routes on g.
func (s *Server) Register(g *echo.Group) {
	g.GET("/tables", s.listTables)
	g.GET("/tables/:table", s.getTable)
	g.POST("/tables/:table", s.postTable)
	g.POST("/tables/:table/query", s.postQuery)
	g.DELETE("/tables/:table/state", s.clearState)
}

/*───────────────────────────────────────────────────────────────
|  Handlers                                                      |
└───────────────────────────────────────────────────────────────*/

func (s *Server) listTables(c echo.Context) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return c.JSON(http.StatusOK, ids)
}

func (s *Server) getTable(c echo.Context) error {
	return s.run(c, adapter.NewParamsFactory(c.Param("table"), c.QueryParams()), "")
}

func (s *Server) postTable(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	af, err := adapter.NewJSONFactory(c.Param("table"), body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	action, _ := af.WorksheetAction()
	if action != "" && action != adapter.ActionClearFilter {
		apiLog.WithField("action", action).Debug("worksheet action passed through")
	}
	return s.run(c, af, action)
}

func (s *Server) postQuery(c echo.Context) error {
	var q adapter.Query
	if err := c.Bind(&q); err != nil {
		return err
	}
	return s.run(c, adapter.NewQueryFactory(c.Param("table"), q), "")
}

func (s *Server) clearState(c echo.Context) error {
	id := c.Param("table")
	if _, ok := s.table(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown table "+id)
	}
	session, ok := s.session(c)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	f := limit.NewFactory(adapter.NewParamsFactory(id, nil), limit.WithStore(state.Scoped(s.store, session)))
	if err := f.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Response is the body of a table query.
type Response struct {
	ID              string `json:"id"`
	Filter          string `json:"filter"`
	Sort            string `json:"sort,omitempty"`
	Page            int    `json:"page"`
	MaxRows         int    `json:"maxRows"`
	TotalRows       int    `json:"totalRows"`
	TotalPages      int    `json:"totalPages"`
	Restored        bool   `json:"restored"`
	Export          string `json:"export,omitempty"`
	WorksheetAction string `json:"worksheetAction,omitempty"`
	Rows            []any  `json:"rows"`
}

func (s *Server) run(c echo.Context, af adapter.ActionFactory, worksheetAction string) error {
	rows, ok := s.table(af.ID())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown table "+af.ID())
	}
	ctx := c.Request().Context()

	session, ok := s.session(c)
	if !ok {
		session = state.NewSessionID()
	}
	c.Response().Header().Set(HeaderSessionID, session)

	f := limit.NewFactory(af,
		limit.WithStore(state.Scoped(s.store, session)),
		limit.WithMaxRows(s.maxRows),
	)
	l, err := f.CreateLimit(ctx, len(rows))
	if err != nil {
		return err
	}
	res, err := repository.Search(ctx, s.repo, s.requestContext(c), rows, l)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		ID:              l.ID(),
		Filter:          l.FilterSet().String(),
		Sort:            l.SortSet().String(),
		Page:            res.RowSelect.Page(),
		MaxRows:         res.RowSelect.MaxRows(),
		TotalRows:       res.TotalRows,
		TotalPages:      res.RowSelect.TotalPages(),
		Restored:        l.Restored(),
		Export:          string(l.ExportKind()),
		WorksheetAction: worksheetAction,
		Rows:            res.Rows,
	})
}

/*───────────────────────────────────────────────────────────────
|  Request helpers                                               |
└───────────────────────────────────────────────────────────────*/

func (s *Server) session(c echo.Context) (string, bool) {
	id := strings.TrimSpace(c.Request().Header.Get(HeaderSessionID))
	return id, state.ValidSessionID(id)
}

// requestContext reads Accept-Language and X-Timezone over the defaults.
func (s *Server) requestContext(c echo.Context) match.RequestContext {
	rctx := s.rctx
	if tags, _, err := language.ParseAcceptLanguage(c.Request().Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
		rctx.Locale = tags[0]
	}
	if tz := c.Request().Header.Get(HeaderTimezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			rctx.Location = loc
		}
	}
	return rctx
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	}
	return body, nil
}

// errorHandler maps filter errors to 400 and logs everything else.
func (s *Server) errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if errors.Is(err, query.ErrInvalidFilter) || errors.Is(err, query.ErrUnsupportedComparison) {
			err = echo.NewHTTPError(http.StatusBadRequest, err.Error())
		} else if _, isHTTP := err.(*echo.HTTPError); !isHTTP {
			apiLog.WithError(err).WithField("path", c.Path()).Error("request failed")
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

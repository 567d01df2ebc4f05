package adapter

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/manojoshi/tablelimit/query"
)

// Document keys of the JSON encoding.
const (
	KeyID         = "id"
	KeyAction     = "action"
	KeyMaxRows    = "maxRows"
	KeyPage       = "page"
	KeyFilter     = "filter"
	KeySort       = "sort"
	KeyExportType = "exportType"
)

// Actions a JSON document may carry. Only ActionClearFilter affects the
// query; the worksheet actions are passed through for the inline editor.
const (
	ActionClearFilter     = "clear_filter"
	ActionClearWorksheet  = "clear_worksheet"
	ActionSaveWorksheet   = "save_worksheet"
	ActionFilterWorksheet = "filter_worksheet"
	ActionAddWorksheetRow = "add_worksheet_row"
)

var worksheetActions = map[string]bool{
	ActionClearWorksheet:  true,
	ActionSaveWorksheet:   true,
	ActionFilterWorksheet: true,
	ActionAddWorksheetRow: true,
}

// JSONFactory reads a JSON document:
//
//	{
//	  "id": "presidents", "action": "", "maxRows": 15, "page": 2,
//	  "filter": {"name": "geo", "term": ["1797", "1801"]},
//	  "sort": {"name.lastName": "asc", "term": "desc"},
//	  "exportType": "csv"
//	}
//
// "filter" may instead be a list of {"key","comparison","value"} leaves;
// "filterSets" holds nested trees, and a document with "operator" or
// "filters" is itself the root of a tree. Leaves under "filter" are added
// to that root. Object key order in "filter" and "sort" is kept.
type JSONFactory struct {
	id   string
	data map[string]any

	filterKeys []string // document order of an object "filter"
	sortKeys   []string // document order of "sort"

	log *log.Entry
}

// NewJSONFactory parses body. Malformed JSON fails here, not later.
func NewJSONFactory(id string, body []byte) (*JSONFactory, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "decode table state")
	}

	f := &JSONFactory{id: id, data: make(map[string]any, len(raw))}
	for k, v := range raw {
		decoded, err := decode(v)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", k)
		}
		f.data[k] = decoded
	}

	var err error
	if f.filterKeys, err = objectKeys(raw[KeyFilter]); err != nil {
		return nil, errors.Wrap(err, "decode filter")
	}
	if f.sortKeys, err = objectKeys(raw[KeySort]); err != nil {
		return nil, errors.Wrap(err, "decode sort")
	}

	if f.id == "" {
		f.id = query.StringValue(f.data[KeyID])
	}
	f.log = adapterLog.WithFields(log.Fields{"table": f.id, "encoding": "json"})
	return f, nil
}

func (f *JSONFactory) ID() string { return f.id }

// Action returns the raw action field.
func (f *JSONFactory) Action() string {
	return strings.ToLower(strings.TrimSpace(query.StringValue(f.data[KeyAction])))
}

// WorksheetAction returns the action when it is meant for the worksheet.
func (f *JSONFactory) WorksheetAction() (string, bool) {
	a := f.Action()
	return a, worksheetActions[a]
}

func (f *JSONFactory) MaxRows() int {
	n := maxRows(f.data[KeyMaxRows])
	f.log.WithField("maxRows", n).Debug("max rows")
	return n
}

func (f *JSONFactory) Page() int {
	n := page(f.data[KeyPage])
	f.log.WithField("page", n).Debug("page")
	return n
}

func (f *JSONFactory) ExportKind() string {
	kind := query.StringValue(f.data[KeyExportType])
	f.log.WithField("export", kind).Debug("export kind")
	return kind
}

func (f *JSONFactory) FilterSet() (*query.FilterSet, error) {
	if f.Action() == ActionClearFilter {
		f.log.Debug("cleared out the filters")
		return query.NewFilterSet(), nil
	}

	root, err := f.root()
	if err != nil {
		return nil, err
	}

	switch legacy := f.data[KeyFilter].(type) {
	case nil:
	case map[string]any:
		for _, property := range f.filterKeys {
			flt, ok, err := query.BuildRaw(property, query.Contain, legacy[property])
			if err != nil {
				return nil, errors.Wrapf(err, "filter %s", property)
			}
			if ok {
				root.AddFilter(flt)
			}
		}
	case []any:
		for _, leaf := range legacy {
			m, isMap := leaf.(map[string]any)
			if !isMap {
				return nil, errors.Wrapf(query.ErrInvalidFilter, "filter leaf must be an object, got %T", leaf)
			}
			flt, ok, err := query.ParseFilter(m)
			if err != nil {
				return nil, err
			}
			if ok {
				root.AddFilter(flt)
			}
		}
	default:
		return nil, errors.Wrapf(query.ErrInvalidFilter, "filter must be an object or a list, got %T", legacy)
	}
	return root, nil
}

// root starts the tree: the document itself when it has "operator" or
// "filters", a single object under "filterSets", or an empty AND set with
// the "filterSets" list as children.
func (f *JSONFactory) root() (*query.FilterSet, error) {
	_, hasOp := f.data[query.KeyOperator]
	_, hasFilters := f.data[query.KeyFilters]
	if hasOp || hasFilters {
		return query.FilterSetFrom(map[string]any{
			query.KeyOperator:   f.data[query.KeyOperator],
			query.KeyFilters:    f.data[query.KeyFilters],
			query.KeyFilterSets: f.data[query.KeyFilterSets],
		})
	}
	sets, ok := f.data[query.KeyFilterSets]
	if !ok || sets == nil {
		return query.NewFilterSet(), nil
	}
	return query.FilterSetFrom(sets)
}

// SortSet reads the "sort" object; positions follow document order.
func (f *JSONFactory) SortSet() (*query.SortSet, error) {
	ss := query.NewSortSet()
	raw, present := f.data[KeySort]
	if !present || raw == nil {
		return ss, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(query.ErrInvalidFilter, "sort must be an object, got %T", raw)
	}
	for _, property := range f.sortKeys {
		value := strings.TrimSpace(query.StringValue(m[property]))
		if value == "" {
			continue
		}
		order, err := query.ParseOrder(value)
		if err != nil {
			return nil, errors.Wrapf(err, "sort %s", property)
		}
		ss.Add(property, order)
	}
	return ss, nil
}

// ------------------------------------------------------------------
// ordered decoding
// ------------------------------------------------------------------

func decode(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// objectKeys lists the keys of a JSON object in document order. Anything
// that is not an object has no keys.
func objectKeys(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("object key %v is not a string", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

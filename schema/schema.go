// Package schema turns struct tags into column metadata and binds each
// column's matcher into a match.Registry.
//
//	type President struct {
//	    Name   Name      `json:"name"`
//	    Born   time.Time `limit:"born,matcher=date,pattern=MM/dd/yyyy"`
//	    Salary float64   `limit:"salary,matcher=number,pattern=$#,##0.00"`
//	}
//
//	if err := schema.Bind(reg, President{}); err != nil {
//	    log.Fatal(err)
//	}
//
// The pattern option must come last; everything after "pattern=" is the
// pattern, commas included.
package schema

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/manojoshi/tablelimit/match"
)

// ------------------------------------------------------------------
// Options
// ------------------------------------------------------------------

type BindOpt func(*bindCfg)

type bindCfg struct {
	prefix string // property prefix, for models nested in a row
	depth  int    // nested struct levels to descend
}

// WithPrefix prepends prefix and a dot to every property.
func WithPrefix(prefix string) BindOpt { return func(c *bindCfg) { c.prefix = prefix } }

// WithDepth limits how many nested struct levels are read. Default 4.
func WithDepth(n int) BindOpt { return func(c *bindCfg) { c.depth = n } }

// Column is the metadata of one filterable property.
type Column struct {
	Property string // dotted path, as filters and sorts name it
	Matcher  string // registry key, empty for the default matcher
	Pattern  string
}

var schemaLog = log.WithField("component", "schema")

var timeType = reflect.TypeOf(time.Time{})

// ------------------------------------------------------------------
// Public API
// ------------------------------------------------------------------

// Columns lists the columns of model in field order, descending into
// nested structs. Fields tagged `limit:"-"` are skipped.
func Columns(model any, opts ...BindOpt) ([]Column, error) {
	cfg := &bindCfg{depth: 4}
	for _, o := range opts {
		o(cfg)
	}
	rt := reflect.TypeOf(model)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, errors.Errorf("schema: model must be a struct, got %T", model)
	}
	var out []Column
	if err := collect(rt, cfg.prefix, cfg.depth, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bind registers the matcher of every column that names one.
func Bind(reg *match.Registry, model any, opts ...BindOpt) error {
	cols, err := Columns(model, opts...)
	if err != nil {
		return err
	}
	for _, c := range cols {
		if c.Matcher == "" {
			continue
		}
		if err := reg.Bind(c.Property, c.Matcher, c.Pattern); err != nil {
			return err
		}
		schemaLog.WithFields(log.Fields{
			"property": c.Property,
			"matcher":  c.Matcher,
			"pattern":  c.Pattern,
		}).Debug("bound column")
	}
	return nil
}

// TableName defaults to the struct type name snake_cased.
func TableName(model any) string {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return snake(t.Name())
}

// ------------------------------------------------------------------
// tag parsing
// ------------------------------------------------------------------

func collect(rt reflect.Type, prefix string, depth int, out *[]Column) error {
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, hasTag := f.Tag.Lookup("limit")
		if tag == "-" {
			continue
		}
		col, err := parseTag(tag)
		if err != nil {
			return errors.Wrapf(err, "schema: field %s.%s", rt.Name(), f.Name)
		}
		if col.Property == "" {
			col.Property = fieldName(f)
		}
		if prefix != "" {
			col.Property = prefix + "." + col.Property
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != timeType && !hasTag && depth > 0 {
			if err := collect(ft, col.Property, depth-1, out); err != nil {
				return err
			}
			continue
		}
		if col.Matcher == "" && ft == timeType {
			col.Matcher = match.KeyDateTime
		}
		if col.Pattern == "" && (col.Matcher == match.KeyDate || col.Matcher == match.KeyDateTime) {
			schemaLog.WithField("property", col.Property).Debug("date column has no pattern and will not match")
		}
		*out = append(*out, col)
	}
	return nil
}

// parseTag reads "property,matcher=key,pattern=...".
func parseTag(tag string) (Column, error) {
	var c Column
	name, rest, _ := strings.Cut(tag, ",")
	c.Property = strings.TrimSpace(name)
	for rest != "" {
		var opt string
		if strings.HasPrefix(rest, "pattern=") {
			c.Pattern = strings.TrimPrefix(rest, "pattern=")
			break
		}
		opt, rest, _ = strings.Cut(rest, ",")
		key, val, ok := strings.Cut(opt, "=")
		if !ok || strings.TrimSpace(key) != "matcher" {
			return c, errors.Errorf("unknown option %q", opt)
		}
		c.Matcher = strings.ToLower(strings.TrimSpace(val))
	}
	return c, nil
}

func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return lowerInitials(f.Name)
}

// lowerInitials lower-cases the leading run of capitals, leaving the last
// one when it starts the next word: ID is id, URLPath is urlPath.
func lowerInitials(name string) string {
	rs := []rune(name)
	n := 0
	for n < len(rs) && unicode.IsUpper(rs[n]) {
		n++
	}
	if n > 1 && n < len(rs) {
		n--
	}
	for i := 0; i < n; i++ {
		rs[i] = unicode.ToLower(rs[i])
	}
	return string(rs)
}

// snake converts CamelCase to snake_case.
func snake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}

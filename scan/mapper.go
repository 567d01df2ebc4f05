// Package scan reads property values out of row objects. A row may be a
// map, a struct, or a pointer to either; nested values are reached with
// dotted paths such as "name.firstName".
//
//	type President struct {
//	    Name  Name   `limit:"name"`
//	    Term  string `json:"term"`
//	}
//
//	v, err := scan.Property(p, "name.firstName")
package scan

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrNoSuchProperty is returned when a hop of a path names nothing on the
// value it is applied to.
var ErrNoSuchProperty = errors.New("no such property")

var scanLog = log.WithField("component", "scan")

// Property walks path through item. A nil at any hop yields (nil, nil); a
// hop that names nothing yields ErrNoSuchProperty.
func Property(item any, path string) (any, error) {
	cur := reflect.ValueOf(item)
	if path == "" {
		return value(cur), nil
	}
	for _, hop := range strings.Split(path, ".") {
		cur = indirect(cur)
		if !cur.IsValid() {
			return nil, nil
		}
		next, err := step(cur, hop)
		if err != nil {
			return nil, errors.Wrapf(err, "%s in %s", hop, path)
		}
		cur = next
	}
	return value(indirect(cur)), nil
}

// Resolve is Property with missing properties read as nil, which is how
// filtering and sorting treat them.
func Resolve(item any, path string) any {
	v, err := Property(item, path)
	if err != nil {
		scanLog.WithError(err).Debug("property read as nil")
		return nil
	}
	return v
}

/*───────────────────────────────
|  One hop                       |
└───────────────────────────────*/

func step(v reflect.Value, hop string) (reflect.Value, error) {
	switch v.Kind() {
	case reflect.Map:
		return mapStep(v, hop)
	case reflect.Struct:
		meta := metaFor(v.Type())
		idx, ok := meta[strings.ToLower(hop)]
		if !ok {
			return reflect.Value{}, ErrNoSuchProperty
		}
		f, err := v.FieldByIndexErr(idx)
		if err != nil {
			// nil embedded pointer on the way to the field
			return reflect.Value{}, nil
		}
		return f, nil
	}
	return reflect.Value{}, errors.Wrapf(ErrNoSuchProperty, "cannot descend into %s", v.Kind())
}

func mapStep(v reflect.Value, hop string) (reflect.Value, error) {
	if v.IsNil() {
		return reflect.Value{}, nil
	}
	kt := v.Type().Key()
	switch {
	case kt.Kind() == reflect.String:
		got := v.MapIndex(reflect.ValueOf(hop).Convert(kt))
		if !got.IsValid() {
			return reflect.Value{}, ErrNoSuchProperty
		}
		return got, nil
	case kt.Kind() == reflect.Interface:
		// map[any]any from loosely typed decoders
		iter := v.MapRange()
		for iter.Next() {
			if fmt.Sprint(iter.Key().Interface()) == hop {
				return iter.Value(), nil
			}
		}
		return reflect.Value{}, ErrNoSuchProperty
	}
	return reflect.Value{}, errors.Wrapf(ErrNoSuchProperty, "map keyed by %s", kt)
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func value(v reflect.Value) any {
	v = indirect(v)
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	if (v.Kind() == reflect.Map || v.Kind() == reflect.Slice) && v.IsNil() {
		return nil
	}
	return v.Interface()
}

/*───────────────────────────────
|  Struct field lookup w/ cache  |
└───────────────────────────────*/

var metaCache sync.Map // reflect.Type → map[string][]int

// metaFor indexes the exported fields of rt by lower-cased field name, then
// by `json` tag, then by `limit` tag; later names win on collision.
func metaFor(rt reflect.Type) map[string][]int {
	if m, ok := metaCache.Load(rt); ok {
		return m.(map[string][]int)
	}
	m := buildMeta(rt)
	metaCache.Store(rt, m)
	return m
}

func buildMeta(rt reflect.Type) map[string][]int {
	out := make(map[string][]int, rt.NumField())
	fields := reflect.VisibleFields(rt)
	for _, f := range fields {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		out[strings.ToLower(f.Name)] = f.Index
	}
	for _, tagKey := range []string{"json", "limit"} {
		for _, f := range fields {
			if !f.IsExported() {
				continue
			}
			name, _, _ := strings.Cut(f.Tag.Get(tagKey), ",")
			if name == "" || name == "-" {
				continue
			}
			out[strings.ToLower(name)] = f.Index
		}
	}
	return out
}

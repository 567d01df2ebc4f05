package match

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Built-in matcher keys.
const (
	KeyString   = "string"
	KeyWildcard = "wildcard"
	KeyNumber   = "number"
	KeyDate     = "date"
	KeyDateTime = "datetime"
)

// ErrUnknownMatcher is returned when binding a key nobody registered.
var ErrUnknownMatcher = errors.New("unknown matcher")

// Factory builds a matcher for a column. pattern is the column's format
// pattern and may be empty.
type Factory func(pattern string) Matcher

// Registry resolves the matcher of each property. Properties are bound to
// a factory key once, at startup; unbound properties use the default key.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	bound     map[string]Matcher
	fallback  Matcher
}

// NewRegistry returns a registry with the built-in keys registered and
// "string" as the default.
func NewRegistry() *Registry {
	r := &Registry{
		factories: map[string]Factory{},
		bound:     map[string]Matcher{},
	}
	r.Register(KeyString, func(string) Matcher { return StringMatcher{} })
	r.Register(KeyWildcard, func(string) Matcher { return WildcardMatcher{} })
	r.Register(KeyNumber, func(p string) Matcher { return NewNumberMatcher(p) })
	r.Register(KeyDate, func(p string) Matcher { return NewDateMatcher(p) })
	r.Register(KeyDateTime, func(p string) Matcher { return NewDateTimeMatcher(p) })
	r.fallback = StringMatcher{}
	return r
}

// Register adds or replaces a factory. Keys are case-insensitive.
func (r *Registry) Register(key string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(key)] = f
}

// SetDefault picks the matcher used for unbound properties.
func (r *Registry) SetDefault(key string) error {
	m, err := r.build(key, "")
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.fallback = m
	r.mu.Unlock()
	return nil
}

// Bind resolves key with pattern and assigns the matcher to property.
func (r *Registry) Bind(property, key, pattern string) error {
	m, err := r.build(key, pattern)
	if err != nil {
		return errors.Wrapf(err, "bind %s", property)
	}
	r.mu.Lock()
	r.bound[property] = m
	r.mu.Unlock()
	return nil
}

// BindMatcher assigns a ready matcher to property.
func (r *Registry) BindMatcher(property string, m Matcher) {
	r.mu.Lock()
	r.bound[property] = m
	r.mu.Unlock()
}

// Matcher returns the matcher bound to property, or the default.
func (r *Registry) Matcher(property string) Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.bound[property]; ok {
		return m
	}
	return r.fallback
}

// Keys lists the registered factory keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) build(key, pattern string) (Matcher, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(key)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMatcher, "%q", key)
	}
	return f(pattern), nil
}

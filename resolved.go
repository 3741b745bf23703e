package appsettings

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/appsettings/notify"
	"github.com/dshills/appsettings/source"
)

// Resolved is a cached view of a schema over one environment. Values are
// computed on first access and memoized; a change notification drops the
// cache so the next access recomputes against the mutated environment.
type Resolved struct {
	schema *Schema
	env    source.Environment

	mu    sync.RWMutex
	cache map[string]any

	sub    *notify.Subscription
	logger *slog.Logger
}

// ResolveOption configures a Resolved view.
type ResolveOption func(*Resolved)

// WithChangeNotifier subscribes the view's cache invalidation to a notifier.
// Any change drops the whole cache.
func WithChangeNotifier(n *notify.Notifier) ResolveOption {
	return func(r *Resolved) {
		r.sub = n.Subscribe(func(notify.Change) { r.Invalidate() })
	}
}

// WithLogger attaches a logger for cache lifecycle events.
func WithLogger(logger *slog.Logger) ResolveOption {
	return func(r *Resolved) { r.logger = logger }
}

func newResolved(s *Schema, env source.Environment, opts ...ResolveOption) *Resolved {
	r := &Resolved{
		schema: s,
		env:    env,
		cache:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close unsubscribes the view from its notifier. Safe on views resolved
// without one.
func (r *Resolved) Close() {
	if r.sub != nil {
		r.sub.Unsubscribe()
	}
}

// Invalidate drops every cached value. The next access recomputes.
func (r *Resolved) Invalidate() {
	r.mu.Lock()
	n := len(r.cache)
	r.cache = make(map[string]any)
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Debug("settings cache invalidated", "dropped", n)
	}
}

// Check validates the whole schema against the view's environment.
func (r *Resolved) Check() error {
	return r.schema.Check(r.env)
}

// Get returns the resolved value for a declaration name, computing and
// caching it on first access.
func (r *Resolved) Get(name string) (any, error) {
	r.mu.RLock()
	v, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	d, declared := r.schema.Setting(name)
	if !declared {
		return nil, fmt.Errorf("%s: %w", name, ErrNotDeclared)
	}

	v, err := d.Value(r.env)
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("setting resolution failed", "name", name, "key", d.FullName(), "error", err)
		}
		return nil, err
	}

	r.mu.Lock()
	r.cache[name] = v
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Debug("setting resolved", "name", name, "key", d.FullName())
	}
	return v, nil
}

// MustGet returns the resolved value and panics on error.
func (r *Resolved) MustGet(name string) any {
	v, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns a string-typed setting value.
func (r *Resolved) String(name string) (string, error) {
	v, err := r.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(name, "string", v)
	}
	return s, nil
}

// Int returns an integer-typed setting value. Integral floats and int64
// values within range coerce.
func (r *Resolved) Int(name string) (int, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int64(n)) {
			return int(n), nil
		}
	}
	return 0, typeError(name, "int", v)
}

// Int64 returns a 64-bit integer-typed setting value.
func (r *Resolved) Int64(name string) (int64, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n == float64(int64(n)) {
			return int64(n), nil
		}
	}
	return 0, typeError(name, "int64", v)
}

// Float64 returns a number-typed setting value.
func (r *Resolved) Float64(name string) (float64, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, typeError(name, "float64", v)
}

// Bool returns a boolean-typed setting value.
func (r *Resolved) Bool(name string) (bool, error) {
	v, err := r.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeError(name, "bool", v)
	}
	return b, nil
}

// Duration returns a duration-typed setting value.
func (r *Resolved) Duration(name string) (time.Duration, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	d, ok := v.(time.Duration)
	if !ok {
		return 0, typeError(name, "time.Duration", v)
	}
	return d, nil
}

// StringSlice returns a list setting value whose elements are all strings.
func (r *Resolved) StringSlice(name string) ([]string, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]string, len(list))
		for i, el := range list {
			s, ok := el.(string)
			if !ok {
				return nil, typeError(name, "[]string", v)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, typeError(name, "[]string", v)
}

// Map returns a dict setting value.
func (r *Resolved) Map(name string) (map[string]any, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeError(name, "map[string]any", v)
	}
	return m, nil
}

func typeError(name, expected string, v any) error {
	return &TypeError{Name: name, Expected: expected, Actual: fmt.Sprintf("%T", v)}
}

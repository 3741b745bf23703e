// Package objectpath resolves dotted path strings to registered Go objects.
//
// Go has no runtime import machinery, so the host application registers the
// objects it wants addressable (constructors, strategy funcs, shared
// instances) under dotted paths. Resolve finds the longest registered prefix
// of a path and walks the remaining segments through exported struct fields,
// map entries, and methods.
package objectpath

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ErrNotRegistered indicates no registered path matches.
var ErrNotRegistered = errors.New("object path not registered")

// ResolutionError describes a failed path resolution.
type ResolutionError struct {
	// Path is the full dotted path that was requested.
	Path string
	// Segment is the path segment that could not be resolved, if any.
	Segment string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("cannot resolve %q: no attribute %q", e.Path, e.Segment)
	}
	return fmt.Sprintf("cannot resolve %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error { return e.Err }

// Registry maps dotted paths to objects.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]any)}
}

// Register binds a path to an object. Registering an existing path
// overwrites the previous binding.
func (r *Registry) Register(path string, obj any) error {
	if path == "" {
		return fmt.Errorf("object path must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[path] = obj
	return nil
}

// MustRegister registers a path and panics on error.
func (r *Registry) MustRegister(path string, obj any) {
	if err := r.Register(path, obj); err != nil {
		panic(err)
	}
}

// Unregister removes a path binding.
func (r *Registry) Unregister(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, path)
}

// Resolve returns the object for a dotted path. The longest registered
// prefix anchors the resolution; remaining segments are looked up with
// reflection: map entries, exported struct fields, then methods.
func (r *Registry) Resolve(path string) (any, error) {
	if path == "" {
		return nil, &ResolutionError{Path: path, Err: fmt.Errorf("empty path")}
	}

	r.mu.RLock()
	base, rest, found := r.longestPrefix(path)
	r.mu.RUnlock()
	if !found {
		return nil, &ResolutionError{Path: path, Err: ErrNotRegistered}
	}

	current := base
	for _, segment := range rest {
		next, ok := attribute(current, segment)
		if !ok {
			return nil, &ResolutionError{Path: path, Segment: segment}
		}
		current = next
	}
	return current, nil
}

// longestPrefix finds the longest registered path that is a dot-boundary
// prefix of path, returning its object and the remaining segments.
func (r *Registry) longestPrefix(path string) (any, []string, bool) {
	candidate := path
	var rest []string
	for {
		if obj, ok := r.objects[candidate]; ok {
			return obj, rest, true
		}
		idx := strings.LastIndex(candidate, ".")
		if idx < 0 {
			return nil, nil, false
		}
		rest = append([]string{candidate[idx+1:]}, rest...)
		candidate = candidate[:idx]
	}
}

// attribute looks up one named attribute on obj.
func attribute(obj any, name string) (any, bool) {
	if m, ok := obj.(map[string]any); ok {
		v, exists := m[name]
		return v, exists
	}

	rv := reflect.ValueOf(obj)
	if !rv.IsValid() {
		return nil, false
	}

	if method := rv.MethodByName(name); method.IsValid() {
		return method.Interface(), true
	}

	elem := rv
	for elem.Kind() == reflect.Pointer {
		if elem.IsNil() {
			return nil, false
		}
		elem = elem.Elem()
	}
	if elem.Kind() == reflect.Struct {
		if field := elem.FieldByName(name); field.IsValid() && field.CanInterface() {
			return field.Interface(), true
		}
	}
	if elem.Kind() == reflect.Map && elem.Type().Key().Kind() == reflect.String {
		v := elem.MapIndex(reflect.ValueOf(name))
		if v.IsValid() {
			return v.Interface(), true
		}
	}
	return nil, false
}

// Default is the process-wide registry used by the package-level functions.
var Default = NewRegistry()

// Register binds a path in the default registry.
func Register(path string, obj any) error { return Default.Register(path, obj) }

// MustRegister binds a path in the default registry and panics on error.
func MustRegister(path string, obj any) { Default.MustRegister(path, obj) }

// Unregister removes a path from the default registry.
func Unregister(path string) { Default.Unregister(path) }

// Resolve resolves a path against the default registry.
func Resolve(path string) (any, error) { return Default.Resolve(path) }

package appsettings

import (
	"fmt"

	"github.com/dshills/appsettings/setting"
	"github.com/dshills/appsettings/source"
)

// Builder accumulates setting declarations for a schema.
type Builder struct {
	prefix string
	names  []string
	decls  map[string]setting.Descriptor
}

// NewBuilder creates an empty schema builder.
func NewBuilder() *Builder {
	return &Builder{decls: make(map[string]setting.Descriptor)}
}

// Prefix sets the default name prefix for every declared setting. A setting
// declared with its own prefix keeps it.
func (b *Builder) Prefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// Declare adds a setting under its declaration name. Redeclaring a name
// replaces the earlier descriptor but keeps its position.
func (b *Builder) Declare(name string, d setting.Descriptor) *Builder {
	if _, exists := b.decls[name]; !exists {
		b.names = append(b.names, name)
	}
	b.decls[name] = d
	return b
}

// Build binds every declared descriptor and returns the schema.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		prefix:   b.prefix,
		names:    make([]string, 0, len(b.names)),
		settings: make(map[string]setting.Descriptor, len(b.names)),
	}
	for _, name := range b.names {
		d := b.decls[name]
		if d == nil {
			return nil, fmt.Errorf("setting %q: nil descriptor", name)
		}
		bound := d.Bind(name, b.prefix)
		if bound.FullName() == "" {
			return nil, fmt.Errorf("setting %q: empty full name", name)
		}
		s.names = append(s.names, name)
		s.settings[name] = bound
	}
	return s, nil
}

// MustBuild builds the schema and panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Schema is an immutable set of bound setting descriptors.
type Schema struct {
	prefix   string
	names    []string
	settings map[string]setting.Descriptor
}

// Prefix returns the schema's default name prefix.
func (s *Schema) Prefix() string { return s.prefix }

// Names returns the declaration names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Setting returns the bound descriptor for a declaration name.
func (s *Schema) Setting(name string) (setting.Descriptor, bool) {
	d, ok := s.settings[name]
	return d, ok
}

// Check validates every declared setting against the environment. Each
// setting contributes at most its first failure; all failures are collected
// into one ConfigurationError. A nil return means the configuration is
// sound.
func (s *Schema) Check(env source.Environment) error {
	var errs []error
	for _, name := range s.names {
		if err := s.settings[name].Validate(env); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ConfigurationError{Errors: errs}
}

// Resolve returns a cached settings view over the environment.
func (s *Schema) Resolve(env source.Environment, opts ...ResolveOption) *Resolved {
	return newResolved(s, env, opts...)
}

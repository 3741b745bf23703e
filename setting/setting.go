// Package setting provides the declared configuration entry descriptors.
//
// A Setting describes one named configuration value: where to find it in the
// ambient environment (name + prefix, uppercased), what to fall back to when
// it is absent (default value or producer), whether absence is fatal
// (required), how to check it (validators, run in declared order), and how to
// turn the raw value into its final typed form (transform).
//
// Descriptors are immutable once bound into a schema. Binding — attaching the
// declaration attribute name and the container's default prefix — copies the
// descriptor, so one descriptor literal can be shared between schemas.
package setting

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/dshills/appsettings/source"
	"github.com/dshills/appsettings/validate"
)

// Descriptor is one declared configuration entry bound into a schema.
type Descriptor interface {
	// FullName returns the uppercase, prefix-qualified lookup key.
	FullName() string

	// Raw returns the raw configured value, or the default when absent.
	// A required setting that is absent fails regardless of default.
	Raw(env source.Environment) (any, error)

	// Validate checks the configured value against the declared validators.
	// Settings that are not explicitly configured are skipped: defaults are
	// trusted.
	Validate(env source.Environment) error

	// Value returns the transformed raw or default value.
	Value(env source.Environment) (any, error)

	// Bind attaches the declaration attribute name and the container's
	// default prefix, returning a bound copy. The descriptor's own prefix,
	// when set, wins over the container prefix.
	Bind(attr, prefix string) Descriptor
}

// Transform converts a raw value into its final typed form.
type Transform func(value any) (any, error)

// DecodeFunc decodes a raw environment-variable string into a value.
type DecodeFunc func(raw string) (any, error)

// MissingSettingError indicates a required setting is absent from the
// ambient environment.
type MissingSettingError struct {
	// Name is the full name of the missing setting.
	Name string
	// Parent is the full name of the enclosing nested setting, if any.
	Parent string
}

// Error implements the error interface.
func (e *MissingSettingError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("%s setting is missing required item %s", e.Parent, e.Name)
	}
	return fmt.Sprintf("%s setting is required and missing from configuration", e.Name)
}

// SettingError wraps a per-setting validation, decoding, or transform
// failure with the setting's full name.
type SettingError struct {
	// Name is the full name of the offending setting.
	Name string
	// Value is the offending value.
	Value any
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *SettingError) Error() string {
	return fmt.Sprintf("setting %s has an invalid value: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *SettingError) Unwrap() error { return e.Err }

// Setting is the base descriptor. Typed constructors (String, Int, ...)
// parameterize it; nested variants wrap it.
type Setting struct {
	name             string
	attr             string
	prefix           string
	def              any
	callDefault      bool
	transformDefault bool
	required         bool
	validators       []validate.Validator
	named            []validate.NamedValidator
	transform        Transform
	decode           DecodeFunc
	kind             validate.Kind
	delimiter        string
	innerDelim       string
	outerDelim       string
	itemKind         validate.Kind
	keyKind          validate.Kind
	valueKind        validate.Kind
}

// Option configures a Setting at declaration time.
type Option func(*Setting)

// WithName sets the explicit key name. When empty, the declaration
// attribute name is used.
func WithName(name string) Option {
	return func(s *Setting) { s.name = name }
}

// WithPrefix sets the setting's own prefix, overriding the container's
// default prefix.
func WithPrefix(prefix string) Option {
	return func(s *Setting) { s.prefix = prefix }
}

// WithDefault sets the default value. A func() producer is invoked lazily at
// resolution time unless WithoutCallDefault is also given.
func WithDefault(value any) Option {
	return func(s *Setting) { s.def = value }
}

// WithoutCallDefault keeps a func-valued default as the value itself instead
// of invoking it at resolution time.
func WithoutCallDefault() Option {
	return func(s *Setting) { s.callDefault = false }
}

// WithTransformDefault passes the default value through the transform as
// well. Off by default: defaults are returned as declared.
func WithTransformDefault() Option {
	return func(s *Setting) { s.transformDefault = true }
}

// Required makes absence from the ambient environment a fatal resolution
// error, regardless of any default.
func Required() Option {
	return func(s *Setting) { s.required = true }
}

// WithValidators appends validators, run in declared order.
func WithValidators(vs ...validate.Validator) Option {
	return func(s *Setting) { s.validators = append(s.validators, vs...) }
}

// WithNamedValidators appends legacy two-argument checkers. They are adapted
// to the canonical single-argument signature when the setting is bound.
func WithNamedValidators(vs ...validate.NamedValidator) Option {
	return func(s *Setting) { s.named = append(s.named, vs...) }
}

// WithTransform replaces the setting's transform.
func WithTransform(t Transform) Option {
	return func(s *Setting) { s.transform = t }
}

// WithDecode replaces the environment-variable decode hook.
func WithDecode(d DecodeFunc) Option {
	return func(s *Setting) { s.decode = d }
}

// WithMin appends a minimum-value validator (inclusive).
func WithMin(min float64) Option {
	return func(s *Setting) { s.validators = append(s.validators, validate.Min(min)) }
}

// WithMax appends a maximum-value validator (inclusive).
func WithMax(max float64) Option {
	return func(s *Setting) { s.validators = append(s.validators, validate.Max(max)) }
}

// WithMinLength appends a minimum-length validator (inclusive).
func WithMinLength(n int) Option {
	return func(s *Setting) { s.validators = append(s.validators, validate.MinLength(n)) }
}

// WithMaxLength appends a maximum-length validator (inclusive).
func WithMaxLength(n int) Option {
	return func(s *Setting) { s.validators = append(s.validators, validate.MaxLength(n)) }
}

// WithPattern appends a regular-expression validator.
func WithPattern(expr string) Option {
	return func(s *Setting) { s.validators = append(s.validators, validate.Pattern(expr)) }
}

// WithEnum appends an allowed-values validator.
func WithEnum(values ...any) Option {
	return func(s *Setting) { s.validators = append(s.validators, validate.In(values...)) }
}

// WithItemKind declares the element kind of a list-shaped setting. Adds an
// element-type validator and converts items split from an environment
// variable.
func WithItemKind(k validate.Kind) Option {
	return func(s *Setting) {
		s.itemKind = k
		s.validators = append(s.validators, validate.ValuesType(k))
	}
}

// WithKeyKind declares the key kind of a dict setting.
func WithKeyKind(k validate.Kind) Option {
	return func(s *Setting) {
		s.keyKind = k
		s.validators = append(s.validators, validate.DictKeysType(k))
	}
}

// WithValueKind declares the value kind of a dict setting.
func WithValueKind(k validate.Kind) Option {
	return func(s *Setting) {
		s.valueKind = k
		s.validators = append(s.validators, validate.DictValuesType(k))
	}
}

// WithDelimiter sets the separator used when a list-shaped environment
// variable is not valid JSON. Default ":".
func WithDelimiter(d string) Option {
	return func(s *Setting) { s.delimiter = d }
}

// WithInnerDelimiter sets the key/value separator for dict environment
// variables. Default "=".
func WithInnerDelimiter(d string) Option {
	return func(s *Setting) { s.innerDelim = d }
}

// WithOuterDelimiter sets the item separator for dict environment
// variables. Default: any whitespace.
func WithOuterDelimiter(d string) Option {
	return func(s *Setting) { s.outerDelim = d }
}

// newSetting builds a base descriptor for the given kind.
func newSetting(kind validate.Kind, def any, opts ...Option) *Setting {
	s := &Setting{
		kind:        kind,
		def:         def,
		callDefault: true,
		delimiter:   ":",
		innerDelim:  "=",
	}
	if kind != validate.KindAny {
		s.validators = append(s.validators, validate.Type(kind))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates an untyped descriptor with no default validators and a nil
// default.
func New(opts ...Option) *Setting {
	return newSetting(validate.KindAny, nil, opts...)
}

// FullName returns the uppercase, prefix-qualified lookup key.
func (s *Setting) FullName() string {
	name := s.name
	if name == "" {
		name = s.attr
	}
	return strings.ToUpper(s.prefix + name)
}

// Kind returns the declared value kind.
func (s *Setting) Kind() validate.Kind { return s.kind }

// IsRequired reports whether absence is a fatal resolution error.
func (s *Setting) IsRequired() bool { return s.required }

// Bind attaches the attribute name and default prefix, returning a bound
// copy with legacy validators normalized.
func (s *Setting) Bind(attr, prefix string) Descriptor {
	return s.bind(attr, prefix)
}

// bind is the concrete-typed binding used by nested wrappers too.
func (s *Setting) bind(attr, prefix string) *Setting {
	c := *s
	c.attr = attr
	if c.prefix == "" {
		c.prefix = prefix
	}
	c.validators = slices.Clone(s.validators)
	c.named = nil
	for _, nv := range s.named {
		c.validators = append(c.validators, adaptNamed(&c, nv))
	}
	return &c
}

// adaptNamed normalizes a legacy two-argument checker to the canonical
// single-argument signature.
func adaptNamed(s *Setting, nv validate.NamedValidator) validate.Validator {
	return func(value any) error {
		return nv(s.FullName(), value)
	}
}

// lookup finds the setting in the ambient environment. The env-var override
// source wins; raw strings found there pass through the decode hook.
func (s *Setting) lookup(env source.Environment) (value any, configured bool, err error) {
	key := s.FullName()
	if env.Environ != nil {
		if v, ok := env.Environ.Lookup(key); ok {
			if raw, isString := v.(string); isString {
				decoded, derr := s.decodeValue(raw)
				if derr != nil {
					return nil, true, &SettingError{Name: key, Value: raw, Err: derr}
				}
				return decoded, true, nil
			}
			return v, true, nil
		}
	}
	if env.Settings != nil {
		if v, ok := env.Settings.Lookup(key); ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// DefaultValue returns the default, invoking a producer when the setting
// calls its default. The producer runs fresh on every resolution.
func (s *Setting) DefaultValue() any {
	if !s.callDefault || s.def == nil {
		return s.def
	}
	rv := reflect.ValueOf(s.def)
	if rv.Kind() == reflect.Func && rv.Type().NumIn() == 0 && rv.Type().NumOut() == 1 {
		return rv.Call(nil)[0].Interface()
	}
	return s.def
}

// Raw returns the raw configured value, or the default when absent.
func (s *Setting) Raw(env source.Environment) (any, error) {
	v, configured, err := s.lookup(env)
	if err != nil {
		return nil, err
	}
	if configured {
		return v, nil
	}
	if s.required {
		return nil, &MissingSettingError{Name: s.FullName()}
	}
	return s.DefaultValue(), nil
}

// Validate checks the configured value. Unconfigured settings are skipped
// unless required; the first failing validator is surfaced.
func (s *Setting) Validate(env source.Environment) error {
	v, configured, err := s.lookup(env)
	if err != nil {
		return err
	}
	if !configured {
		if s.required {
			return &MissingSettingError{Name: s.FullName()}
		}
		return nil
	}
	return s.runValidators(v)
}

// runValidators runs the declared validators in order against a value.
func (s *Setting) runValidators(v any) error {
	for _, check := range s.validators {
		if err := check(v); err != nil {
			return &SettingError{Name: s.FullName(), Value: v, Err: err}
		}
	}
	return nil
}

// Value returns the transformed raw or default value. The default is fully
// obtained (producer invoked) before any transform runs, and is transformed
// only when the setting opts in.
func (s *Setting) Value(env source.Environment) (any, error) {
	v, configured, err := s.lookup(env)
	if err != nil {
		return nil, err
	}
	if !configured {
		if s.required {
			return nil, &MissingSettingError{Name: s.FullName()}
		}
		d := s.DefaultValue()
		if s.transformDefault {
			return s.applyTransform(d)
		}
		return d, nil
	}
	return s.applyTransform(v)
}

// applyTransform runs the transform, wrapping failures with the full name.
func (s *Setting) applyTransform(v any) (any, error) {
	if s.transform == nil {
		return v, nil
	}
	out, err := s.transform(v)
	if err != nil {
		return nil, &SettingError{Name: s.FullName(), Value: v, Err: err}
	}
	return out, nil
}

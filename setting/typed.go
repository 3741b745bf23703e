package setting

import (
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"time"

	"github.com/dshills/appsettings/objectpath"
	"github.com/dshills/appsettings/validate"
)

// String declares a string setting. Default "".
func String(opts ...Option) *Setting {
	s := newSetting(validate.KindString, "", opts...)
	if s.transform == nil {
		s.transform = transformString
	}
	return s
}

// Int declares an integer setting. Default 0. Integral numbers from JSON
// sources are coerced to int by the transform.
func Int(opts ...Option) *Setting {
	s := newSetting(validate.KindInt, 0, opts...)
	if s.transform == nil {
		s.transform = transformInt
	}
	return s
}

// PositiveInt declares an integer setting with a minimum of 0.
func PositiveInt(opts ...Option) *Setting {
	return Int(append([]Option{WithMin(0)}, opts...)...)
}

// Float declares a number setting. Default 0.
func Float(opts ...Option) *Setting {
	s := newSetting(validate.KindFloat, 0.0, opts...)
	if s.transform == nil {
		s.transform = transformFloat
	}
	return s
}

// PositiveFloat declares a number setting with a minimum of 0.
func PositiveFloat(opts ...Option) *Setting {
	return Float(append([]Option{WithMin(0)}, opts...)...)
}

// Bool declares a boolean setting. Default true.
func Bool(opts ...Option) *Setting {
	return newSetting(validate.KindBool, true, opts...)
}

// Duration declares a duration setting. Raw values may be time.Duration,
// duration strings ("500ms"), or integer milliseconds. Default 0.
func Duration(opts ...Option) *Setting {
	s := newSetting(validate.KindDuration, time.Duration(0), opts...)
	if s.transform == nil {
		s.transform = transformDuration
	}
	return s
}

// Regexp declares a string setting whose value transforms into a compiled
// *regexp.Regexp.
func Regexp(opts ...Option) *Setting {
	s := newSetting(validate.KindString, "", opts...)
	if s.transform == nil {
		s.transform = transformRegexp
	}
	return s
}

// List declares a list setting. Default: a fresh empty list per resolution.
func List(opts ...Option) *Setting {
	s := newSetting(validate.KindList, emptyList, opts...)
	if s.transform == nil {
		s.transform = transformList
	}
	return s
}

// Set declares a list setting whose transform removes duplicate elements,
// preserving first-seen order.
func Set(opts ...Option) *Setting {
	s := newSetting(validate.KindList, emptyList, opts...)
	if s.transform == nil {
		s.transform = transformSet
	}
	return s
}

// Tuple declares a fixed-sequence setting. Same shape as List; the
// transform copies the sequence so the resolved value is not aliased to the
// ambient environment.
func Tuple(opts ...Option) *Setting {
	s := newSetting(validate.KindList, emptyList, opts...)
	if s.transform == nil {
		s.transform = transformTuple
	}
	return s
}

// Dict declares a string-keyed map setting. Default: a fresh empty map per
// resolution.
func Dict(opts ...Option) *Setting {
	return newSetting(validate.KindMap, emptyMap, opts...)
}

// File declares a file-path setting. Combine with WithFileMode to validate
// existence and permissions. The transform cleans the path.
func File(opts ...Option) *Setting {
	s := newSetting(validate.KindString, nil, opts...)
	if s.transform == nil {
		s.transform = transformFile
	}
	return s
}

// WithFileMode appends a file-access validator (validate.ModeExists,
// ModeRead, ModeWrite, ModeExecute, combined with OR).
func WithFileMode(mode uint32) Option {
	return func(s *Setting) { s.validators = append(s.validators, validate.File(mode)) }
}

// Object declares a dotted-path setting whose transform resolves the path
// to a registered object. Empty or nil values resolve to nil.
func Object(opts ...Option) *Setting {
	return ObjectIn(objectpath.Default, opts...)
}

// ObjectIn is Object resolving against an explicit registry.
func ObjectIn(registry *objectpath.Registry, opts ...Option) *Setting {
	s := newSetting(validate.KindString, nil, opts...)
	if s.transform == nil {
		s.transform = transformObject(registry)
	}
	return s
}

// CallablePath declares a dotted-path setting that must resolve to a
// function. The validator resolves the path and checks the target.
func CallablePath(opts ...Option) *Setting {
	return CallablePathIn(objectpath.Default, opts...)
}

// CallablePathIn is CallablePath resolving against an explicit registry.
func CallablePathIn(registry *objectpath.Registry, opts ...Option) *Setting {
	s := ObjectIn(registry, opts...)
	s.validators = append(s.validators, callableValidator(registry))
	return s
}

func emptyList() any { return []any{} }

func emptyMap() any { return map[string]any{} }

func transformString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to string", v)
	}
	return s, nil
}

func transformInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("cannot convert %v to integer", n)
		}
		return int(n), nil
	case float32:
		return transformInt(float64(n))
	default:
		return nil, fmt.Errorf("cannot convert %T to integer", v)
	}
}

func transformFloat(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to number", v)
	}
}

func transformDuration(v any) (any, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", d, err)
		}
		return parsed, nil
	case int:
		return time.Duration(d) * time.Millisecond, nil
	case int64:
		return time.Duration(d) * time.Millisecond, nil
	case float64:
		return time.Duration(d) * time.Millisecond, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to duration", v)
	}
}

func transformRegexp(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("cannot compile %T as a pattern", v)
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", s, err)
	}
	return re, nil
}

func transformList(v any) (any, error) {
	out, ok := toList(v)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to list", v)
	}
	return out, nil
}

func transformSet(v any) (any, error) {
	list, ok := toList(v)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to set", v)
	}
	out := make([]any, 0, len(list))
	for _, el := range list {
		dup := false
		for _, seen := range out {
			if reflect.DeepEqual(seen, el) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, el)
		}
	}
	return out, nil
}

func transformTuple(v any) (any, error) {
	list, ok := toList(v)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to tuple", v)
	}
	out := make([]any, len(list))
	copy(out, list)
	return out, nil
}

func transformFile(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to a file path", v)
	}
	return filepath.Clean(s), nil
}

func transformObject(registry *objectpath.Registry) Transform {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		path, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("cannot resolve %T as an object path", v)
		}
		if path == "" {
			return nil, nil
		}
		return registry.Resolve(path)
	}
}

func callableValidator(registry *objectpath.Registry) validate.Validator {
	return func(v any) error {
		path, ok := v.(string)
		if !ok || path == "" {
			return nil
		}
		obj, err := registry.Resolve(path)
		if err != nil {
			return err
		}
		if obj == nil || reflect.ValueOf(obj).Kind() != reflect.Func {
			return validate.Errorf(obj, "value %v is not a callable", obj)
		}
		return nil
	}
}

// toList flattens slice-shaped values into []any.
func toList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Package validate provides validator predicates for setting values.
//
// A validator is a pure function over a single value: it returns nil when the
// value is acceptable and an *Error describing the problem otherwise.
// Validators run in declaration order and the first failure is surfaced.
//
// Legacy checkers that also receive the setting name use the NamedValidator
// signature; they are adapted to the canonical single-argument form at
// schema-build time, so the resolution pipeline only ever deals with one
// invocation shape.
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"golang.org/x/sys/unix"
)

// Validator checks a single resolved value.
type Validator func(value any) error

// NamedValidator is the legacy two-argument checker signature. It is adapted
// to a Validator when the setting is bound into a schema.
type NamedValidator func(name string, value any) error

// Error describes a validation failure. Message is human-readable and already
// includes the offending value; Value carries it for programmatic access.
type Error struct {
	Message string
	Value   any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Errorf builds an *Error with a formatted message.
func Errorf(value any, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Value: value}
}

// Kind identifies the expected shape of a setting value.
type Kind uint8

const (
	// KindAny accepts any value.
	KindAny Kind = iota
	// KindString expects a string.
	KindString
	// KindInt expects an integer (integral floats from JSON sources are accepted).
	KindInt
	// KindFloat expects a number.
	KindFloat
	// KindBool expects a boolean.
	KindBool
	// KindList expects a slice.
	KindList
	// KindMap expects a string-keyed map.
	KindMap
	// KindDuration expects a time.Duration or a parseable duration string.
	KindDuration
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// Matches reports whether the value has the kind's shape.
func (k Kind) Matches(value any) bool {
	switch k {
	case KindAny:
		return true
	case KindString:
		_, ok := value.(string)
		return ok
	case KindInt:
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return v == float64(int64(v))
		case float32:
			return float64(v) == float64(int64(v))
		default:
			return false
		}
	case KindFloat:
		switch value.(type) {
		case float32, float64, int, int64:
			return true
		default:
			return false
		}
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindList:
		switch value.(type) {
		case []any, []string, []int, []int64, []float64:
			return true
		default:
			return reflect.ValueOf(value).Kind() == reflect.Slice
		}
	case KindMap:
		_, ok := value.(map[string]any)
		return ok
	case KindDuration:
		switch v := value.(type) {
		case time.Duration:
			return true
		case string:
			_, err := time.ParseDuration(v)
			return err == nil
		case int, int64, float64:
			return true
		default:
			return false
		}
	default:
		return false
	}
}

// Type checks that the value has the given kind.
func Type(k Kind) Validator {
	return func(value any) error {
		if value == nil || k.Matches(value) {
			return nil
		}
		return Errorf(value, "value %v is not of type %s", value, k)
	}
}

// ValuesType checks that every element of a list has the given kind.
func ValuesType(k Kind) Validator {
	return func(value any) error {
		for _, el := range elements(value) {
			if !k.Matches(el) {
				return Errorf(el, "element %v is not of type %s", el, k)
			}
		}
		return nil
	}
}

// DictKeysType checks that every key of a map has the given kind.
func DictKeysType(k Kind) Validator {
	return func(value any) error {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Map {
			return nil
		}
		for _, key := range rv.MapKeys() {
			if !k.Matches(key.Interface()) {
				return Errorf(key.Interface(), "key %v is not of type %s", key.Interface(), k)
			}
		}
		return nil
	}
}

// DictValuesType checks that every value of a map has the given kind.
func DictValuesType(k Kind) Validator {
	return func(value any) error {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Map {
			return nil
		}
		iter := rv.MapRange()
		for iter.Next() {
			if !k.Matches(iter.Value().Interface()) {
				return Errorf(iter.Value().Interface(),
					"item %v's value %v is not of type %s", iter.Key().Interface(), iter.Value().Interface(), k)
			}
		}
		return nil
	}
}

// Min checks that a numeric value is >= min.
func Min(min float64) Validator {
	return func(value any) error {
		f, ok := toFloat(value)
		if !ok {
			return nil
		}
		if f < min {
			return Errorf(value, "value %v is less than minimum %v", value, min)
		}
		return nil
	}
}

// Max checks that a numeric value is <= max.
func Max(max float64) Validator {
	return func(value any) error {
		f, ok := toFloat(value)
		if !ok {
			return nil
		}
		if f > max {
			return Errorf(value, "value %v is greater than maximum %v", value, max)
		}
		return nil
	}
}

// MinLength checks that a string, slice, or map has at least n elements.
func MinLength(n int) Validator {
	return func(value any) error {
		l, ok := lengthOf(value)
		if !ok {
			return nil
		}
		if l < n {
			return Errorf(value, "value %v is shorter than minimum length %d", value, n)
		}
		return nil
	}
}

// MaxLength checks that a string, slice, or map has at most n elements.
func MaxLength(n int) Validator {
	return func(value any) error {
		l, ok := lengthOf(value)
		if !ok {
			return nil
		}
		if l > n {
			return Errorf(value, "value %v is longer than maximum length %d", value, n)
		}
		return nil
	}
}

// Pattern checks that a string matches the regular expression.
// An invalid expression fails every value with the compile error.
func Pattern(expr string) Validator {
	re, err := regexp.Compile(expr)
	return func(value any) error {
		if err != nil {
			return Errorf(value, "invalid pattern %q: %v", expr, err)
		}
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if !re.MatchString(s) {
			return Errorf(value, "value %q does not match pattern %s", s, expr)
		}
		return nil
	}
}

// In checks that the value is one of the allowed values.
func In(allowed ...any) Validator {
	return func(value any) error {
		for _, a := range allowed {
			if a == value {
				return nil
			}
		}
		return Errorf(value, "value %v must be one of %v", value, allowed)
	}
}

// Unique checks that a list contains no duplicate elements.
func Unique() Validator {
	return func(value any) error {
		seen := make(map[any]struct{})
		for _, el := range elements(value) {
			if _, dup := seen[el]; dup {
				return Errorf(el, "element %v appears more than once", el)
			}
			seen[el] = struct{}{}
		}
		return nil
	}
}

// File access modes, combined with bitwise OR. Checking read, write, or
// execute permission implicitly requires existence.
const (
	ModeExists  uint32 = unix.F_OK
	ModeRead    uint32 = unix.R_OK
	ModeWrite   uint32 = unix.W_OK
	ModeExecute uint32 = unix.X_OK
)

// File checks that a string value names a file accessible with the given mode.
func File(mode uint32) Validator {
	return func(value any) error {
		path, ok := value.(string)
		if !ok {
			return nil
		}
		if err := unix.Access(path, mode); err != nil {
			return Errorf(value, "insufficient permissions for the file %s: %v", path, err)
		}
		return nil
	}
}

// elements flattens a slice value into []any. Non-slices yield nil.
func elements(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// toFloat extracts a float64 from any numeric value.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// lengthOf returns the length of a string, slice, array, or map.
func lengthOf(value any) (int, bool) {
	switch rv := reflect.ValueOf(value); rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

package setting

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dshills/appsettings/source"
	"github.com/dshills/appsettings/validate"
)

func env(settings map[string]any) source.Environment {
	return source.Env(source.NewMap(settings))
}

func envWithVars(settings, vars map[string]any) source.Environment {
	return source.EnvWithOverride(source.NewMap(settings), source.NewMap(vars))
}

func TestFullName(t *testing.T) {
	tests := []struct {
		name   string
		s      *Setting
		attr   string
		prefix string
		want   string
	}{
		{"attr with container prefix", String(), "my_setting", "app_", "APP_MY_SETTING"},
		{"explicit name wins over attr", Int(WithName("integer_setting")), "setting", "app_", "APP_INTEGER_SETTING"},
		{"own prefix wins over container", String(WithPrefix("own_")), "key", "app_", "OWN_KEY"},
		{"no prefix", String(), "debug", "", "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bound := tt.s.Bind(tt.attr, tt.prefix)
			if got := bound.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBindCopies(t *testing.T) {
	base := String(WithValidators(validate.MinLength(1)))

	a := base.Bind("first", "a_")
	b := base.Bind("second", "b_")

	if a.FullName() == b.FullName() {
		t.Error("bindings share state")
	}
	if base.FullName() != "" {
		t.Errorf("binding mutated the declaration, FullName = %q", base.FullName())
	}
}

func TestRawConfigured(t *testing.T) {
	s := Int().Bind("port", "app_")

	v, err := s.Raw(env(map[string]any{"APP_PORT": 8080}))
	if err != nil {
		t.Fatal(err)
	}
	if v != 8080 {
		t.Errorf("Raw = %v", v)
	}
}

func TestRawDefault(t *testing.T) {
	s := String(WithDefault("fallback")).Bind("host", "app_")

	v, err := s.Raw(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if v != "fallback" {
		t.Errorf("Raw = %v, want the default", v)
	}
}

func TestRawRequiredMissing(t *testing.T) {
	// A default never rescues a required setting.
	s := String(Required(), WithDefault("ignored")).Bind("api_key", "app_")

	_, err := s.Raw(env(nil))
	var miss *MissingSettingError
	if !errors.As(err, &miss) {
		t.Fatalf("err = %v, want MissingSettingError", err)
	}
	if miss.Name != "APP_API_KEY" {
		t.Errorf("Name = %q", miss.Name)
	}
	if !strings.Contains(err.Error(), "required and missing") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRequiredConfiguredPasses(t *testing.T) {
	s := String(Required()).Bind("api_key", "app_")

	v, err := s.Raw(env(map[string]any{"APP_API_KEY": "secret"}))
	if err != nil {
		t.Fatal(err)
	}
	if v != "secret" {
		t.Errorf("Raw = %v", v)
	}
}

func TestProducerDefaultRunsFresh(t *testing.T) {
	calls := 0
	s := New(WithDefault(func() any {
		calls++
		return []any{}
	})).Bind("items", "")

	first, _ := s.Raw(env(nil))
	second, _ := s.Raw(env(nil))

	if calls != 2 {
		t.Errorf("producer ran %d times, want 2", calls)
	}
	f, s2 := first.([]any), second.([]any)
	f = append(f, 1)
	if len(s2) != 0 {
		t.Error("resolutions share the produced value")
	}
	_ = f
}

func TestWithoutCallDefaultKeepsFunc(t *testing.T) {
	producer := func() any { return 1 }
	s := New(WithDefault(producer), WithoutCallDefault()).Bind("fn", "")

	v, err := s.Raw(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(func() any); !ok {
		t.Errorf("Raw = %T, want the function itself", v)
	}
}

func TestValidateSkipsUnconfigured(t *testing.T) {
	// The default is out of range, but defaults are trusted.
	s := Int(WithMin(10), WithDefault(1)).Bind("count", "app_")

	if err := s.Validate(env(nil)); err != nil {
		t.Errorf("Validate on unconfigured setting = %v, want nil", err)
	}
}

func TestValidateFirstFailureWins(t *testing.T) {
	s := Int(WithMin(100), WithMax(10)).Bind("count", "app_")

	err := s.Validate(env(map[string]any{"APP_COUNT": 50}))
	var serr *SettingError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want SettingError", err)
	}
	if !strings.Contains(err.Error(), "less than minimum") {
		t.Errorf("later validator surfaced first: %q", err.Error())
	}
	if serr.Name != "APP_COUNT" {
		t.Errorf("Name = %q", serr.Name)
	}
}

func TestValidateTypeRunsFirst(t *testing.T) {
	s := Int(WithMin(0)).Bind("count", "app_")

	err := s.Validate(env(map[string]any{"APP_COUNT": "ten"}))
	if err == nil {
		t.Fatal("string passed an integer setting")
	}
	if !strings.Contains(err.Error(), "not of type integer") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestNamedValidatorsAdapted(t *testing.T) {
	var sawName string
	s := String(WithNamedValidators(func(name string, value any) error {
		sawName = name
		if value == "bad" {
			return fmt.Errorf("rejected by name-aware checker")
		}
		return nil
	})).Bind("mode", "app_")

	if err := s.Validate(env(map[string]any{"APP_MODE": "ok"})); err != nil {
		t.Fatal(err)
	}
	if sawName != "APP_MODE" {
		t.Errorf("checker saw name %q", sawName)
	}
	if err := s.Validate(env(map[string]any{"APP_MODE": "bad"})); err == nil {
		t.Error("failing named checker was ignored")
	}
}

func TestValueTransformsConfigured(t *testing.T) {
	s := String(WithTransform(func(v any) (any, error) {
		return strings.ToLower(v.(string)), nil
	})).Bind("mode", "app_")

	v, err := s.Value(env(map[string]any{"APP_MODE": "LOUD"}))
	if err != nil {
		t.Fatal(err)
	}
	if v != "loud" {
		t.Errorf("Value = %v", v)
	}
}

func TestValueDefaultNotTransformed(t *testing.T) {
	s := String(
		WithDefault("AS-IS"),
		WithTransform(func(v any) (any, error) {
			return strings.ToLower(v.(string)), nil
		}),
	).Bind("mode", "app_")

	v, err := s.Value(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if v != "AS-IS" {
		t.Errorf("default was transformed: %v", v)
	}
}

func TestValueTransformDefaultOptIn(t *testing.T) {
	calls := 0
	s := New(
		WithDefault(func() any { calls++; return "RAW" }),
		WithTransformDefault(),
		WithTransform(func(v any) (any, error) {
			if calls == 0 {
				t.Error("transform ran before the producer")
			}
			return strings.ToLower(v.(string)), nil
		}),
	).Bind("mode", "app_")

	v, err := s.Value(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if v != "raw" {
		t.Errorf("Value = %v", v)
	}
}

func TestValueTransformErrorWrapped(t *testing.T) {
	s := New(WithTransform(func(v any) (any, error) {
		return nil, fmt.Errorf("no good")
	})).Bind("mode", "")

	_, err := s.Value(env(map[string]any{"MODE": "x"}))
	var serr *SettingError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want SettingError", err)
	}
	if serr.Name != "MODE" || serr.Value != "x" {
		t.Errorf("SettingError = %+v", serr)
	}
}

func TestValueRequiredMissing(t *testing.T) {
	s := Int(Required()).Bind("port", "app_")

	_, err := s.Value(env(nil))
	var miss *MissingSettingError
	if !errors.As(err, &miss) {
		t.Errorf("err = %v, want MissingSettingError", err)
	}
}

func TestEnvironOverrideWins(t *testing.T) {
	e := envWithVars(
		map[string]any{"APP_PORT": 8080},
		map[string]any{"APP_PORT": "9090"},
	)
	s := Int().Bind("port", "app_")

	v, err := s.Value(e)
	if err != nil {
		t.Fatal(err)
	}
	if v != 9090 {
		t.Errorf("Value = %v, want the decoded override", v)
	}
}

func TestEnvironDecodeErrorWrapped(t *testing.T) {
	e := envWithVars(nil, map[string]any{"APP_PORT": "not-a-number"})
	s := Int().Bind("port", "app_")

	_, err := s.Value(e)
	var serr *SettingError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want SettingError", err)
	}
	if serr.Name != "APP_PORT" {
		t.Errorf("Name = %q", serr.Name)
	}
}

func TestEnvironNonStringPassesThrough(t *testing.T) {
	e := envWithVars(nil, map[string]any{"APP_PORT": 7070})
	s := Int().Bind("port", "app_")

	v, err := s.Value(e)
	if err != nil {
		t.Fatal(err)
	}
	if v != 7070 {
		t.Errorf("Value = %v", v)
	}
}

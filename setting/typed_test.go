package setting

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/appsettings/objectpath"
)

func TestIntCoercesIntegralFloats(t *testing.T) {
	s := Int().Bind("port", "")

	v, err := s.Value(env(map[string]any{"PORT": float64(8080)}))
	if err != nil {
		t.Fatal(err)
	}
	if v != 8080 {
		t.Errorf("Value = %v (%T)", v, v)
	}
}

func TestIntRejectsFractionalFloats(t *testing.T) {
	s := Int().Bind("port", "")

	if err := s.Validate(env(map[string]any{"PORT": 80.5})); err == nil {
		t.Error("fractional float passed an integer setting")
	}
}

func TestPositiveInt(t *testing.T) {
	s := PositiveInt().Bind("count", "")

	if err := s.Validate(env(map[string]any{"COUNT": 0})); err != nil {
		t.Errorf("zero rejected: %v", err)
	}
	if err := s.Validate(env(map[string]any{"COUNT": -1})); err == nil {
		t.Error("negative value passed")
	}
}

func TestFloatCoercesInts(t *testing.T) {
	s := Float().Bind("ratio", "")

	v, err := s.Value(env(map[string]any{"RATIO": 2}))
	if err != nil {
		t.Fatal(err)
	}
	if v != float64(2) {
		t.Errorf("Value = %v (%T)", v, v)
	}
}

func TestBoolDefaultsTrue(t *testing.T) {
	s := Bool().Bind("enabled", "")

	v, err := s.Value(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if v != true {
		t.Errorf("Value = %v", v)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want time.Duration
	}{
		{"duration value", 2 * time.Second, 2 * time.Second},
		{"duration string", "1500ms", 1500 * time.Millisecond},
		{"integer milliseconds", 250, 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Duration().Bind("timeout", "")
			v, err := s.Value(env(map[string]any{"TIMEOUT": tt.raw}))
			if err != nil {
				t.Fatal(err)
			}
			if v != tt.want {
				t.Errorf("Value = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestRegexpCompiles(t *testing.T) {
	s := Regexp().Bind("filter", "")

	v, err := s.Value(env(map[string]any{"FILTER": `^x+$`}))
	if err != nil {
		t.Fatal(err)
	}
	re, ok := v.(*regexp.Regexp)
	if !ok {
		t.Fatalf("Value = %T", v)
	}
	if !re.MatchString("xxx") {
		t.Error("compiled pattern does not match")
	}

	if _, err := s.Value(env(map[string]any{"FILTER": `([`})); err == nil {
		t.Error("invalid pattern compiled")
	}
}

func TestListDefaultIsFresh(t *testing.T) {
	s := List().Bind("tags", "")

	first, _ := s.Value(env(nil))
	second, _ := s.Value(env(nil))

	f := first.([]any)
	f = append(f, "x")
	if len(second.([]any)) != 0 {
		t.Error("list defaults share a backing array")
	}
	_ = f
}

func TestSetRemovesDuplicates(t *testing.T) {
	s := Set().Bind("tags", "")

	v, err := s.Value(env(map[string]any{"TAGS": []any{"a", "b", "a", "c", "b"}}))
	if err != nil {
		t.Fatal(err)
	}
	want := []any{"a", "b", "c"}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("Value mismatch (-want +got):\n%s", diff)
	}
}

func TestTupleCopies(t *testing.T) {
	s := Tuple().Bind("pair", "")
	raw := []any{1, 2}

	v, err := s.Value(env(map[string]any{"PAIR": raw}))
	if err != nil {
		t.Fatal(err)
	}
	out := v.([]any)
	out[0] = 99
	if raw[0] != 1 {
		t.Error("tuple value aliases the raw list")
	}
}

func TestDictDefaultIsFresh(t *testing.T) {
	s := Dict().Bind("headers", "")

	first, _ := s.Value(env(nil))
	second, _ := s.Value(env(nil))

	first.(map[string]any)["k"] = 1
	if len(second.(map[string]any)) != 0 {
		t.Error("dict defaults share a backing map")
	}
}

func TestFileCleansPath(t *testing.T) {
	s := File().Bind("config", "")

	v, err := s.Value(env(map[string]any{"CONFIG": "/etc//app/../app/settings.toml"}))
	if err != nil {
		t.Fatal(err)
	}
	if v != "/etc/app/settings.toml" {
		t.Errorf("Value = %v", v)
	}
}

func TestFileNilDefault(t *testing.T) {
	s := File().Bind("config", "")

	v, err := s.Value(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("Value = %v, want nil", v)
	}
}

func TestObjectResolvesPath(t *testing.T) {
	reg := objectpath.NewRegistry()
	reg.MustRegister("handlers.default", "the-handler")

	s := ObjectIn(reg).Bind("handler", "")

	v, err := s.Value(env(map[string]any{"HANDLER": "handlers.default"}))
	if err != nil {
		t.Fatal(err)
	}
	if v != "the-handler" {
		t.Errorf("Value = %v", v)
	}
}

func TestObjectEmptyResolvesNil(t *testing.T) {
	s := ObjectIn(objectpath.NewRegistry()).Bind("handler", "")

	v, err := s.Value(env(map[string]any{"HANDLER": ""}))
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("Value = %v, want nil", v)
	}
}

func TestObjectUnknownPathFails(t *testing.T) {
	s := ObjectIn(objectpath.NewRegistry()).Bind("handler", "")

	_, err := s.Value(env(map[string]any{"HANDLER": "nowhere.at.all"}))
	if !errors.Is(err, objectpath.ErrNotRegistered) {
		t.Errorf("err = %v, want ErrNotRegistered", err)
	}
}

func TestCallablePath(t *testing.T) {
	reg := objectpath.NewRegistry()
	reg.MustRegister("hooks.on_start", func() {})
	reg.MustRegister("hooks.not_callable", 42)

	s := CallablePathIn(reg).Bind("hook", "")

	if err := s.Validate(env(map[string]any{"HOOK": "hooks.on_start"})); err != nil {
		t.Errorf("callable rejected: %v", err)
	}
	if err := s.Validate(env(map[string]any{"HOOK": "hooks.not_callable"})); err == nil {
		t.Error("non-callable passed")
	}

	v, err := s.Value(env(map[string]any{"HOOK": "hooks.on_start"}))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(func()); !ok {
		t.Errorf("Value = %T, want the function", v)
	}
}

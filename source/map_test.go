package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/appsettings/notify"
)

func TestMapLookup(t *testing.T) {
	m := NewMap(map[string]any{"APP_HOST": "localhost", "APP_PORT": 8080})

	v, ok := m.Lookup("APP_HOST")
	if !ok || v != "localhost" {
		t.Errorf("Lookup(APP_HOST) = %v, %v", v, ok)
	}
	if _, ok := m.Lookup("APP_MISSING"); ok {
		t.Error("Lookup(APP_MISSING) reported present")
	}
}

func TestMapCopiesInitialData(t *testing.T) {
	data := map[string]any{"K": map[string]any{"inner": 1}}
	m := NewMap(data)

	data["K"].(map[string]any)["inner"] = 2

	v, _ := m.Lookup("K")
	if got := v.(map[string]any)["inner"]; got != 1 {
		t.Errorf("map aliased the caller's data, inner = %v", got)
	}
}

func TestMapMutationsNotify(t *testing.T) {
	n := notify.New()
	m := NewMap(nil, WithNotifier(n))

	var got []notify.Change
	sub := n.Subscribe(func(c notify.Change) { got = append(got, c) })
	defer sub.Unsubscribe()

	m.Set("APP_PORT", 8080)
	m.Set("APP_PORT", 9090)
	m.Delete("APP_PORT")
	m.Delete("APP_PORT") // already gone, no change

	if len(got) != 3 {
		t.Fatalf("saw %d changes, want 3", len(got))
	}
	if got[1].OldValue != 8080 || got[1].NewValue != 9090 {
		t.Errorf("second set = %+v", got[1])
	}
	if got[2].Type != notify.ChangeDelete || got[2].OldValue != 9090 {
		t.Errorf("delete = %+v", got[2])
	}
}

func TestMapOverride(t *testing.T) {
	n := notify.New()
	m := NewMap(map[string]any{"A": 1, "B": 2}, WithNotifier(n))

	count := 0
	sub := n.Subscribe(func(notify.Change) { count++ })
	defer sub.Unsubscribe()

	restore := m.Override(map[string]any{"A": 10, "C": 30})

	if v, _ := m.Lookup("A"); v != 10 {
		t.Errorf("A = %v during override, want 10", v)
	}
	if v, _ := m.Lookup("C"); v != 30 {
		t.Errorf("C = %v during override, want 30", v)
	}
	if v, _ := m.Lookup("B"); v != 2 {
		t.Errorf("B = %v during override, want 2", v)
	}

	restore()
	restore() // idempotent

	if v, _ := m.Lookup("A"); v != 1 {
		t.Errorf("A = %v after restore, want 1", v)
	}
	if _, ok := m.Lookup("C"); ok {
		t.Error("C still present after restore")
	}
	if count != 4 {
		t.Errorf("notifier fired %d times, want 4 (two per transition)", count)
	}
}

func TestMerge(t *testing.T) {
	dst := map[string]any{
		"A": 1,
		"NESTED": map[string]any{
			"KEEP":     "x",
			"OVERRIDE": "old",
		},
	}
	src := map[string]any{
		"B": 2,
		"NESTED": map[string]any{
			"OVERRIDE": "new",
		},
	}

	got := Merge(dst, src)
	want := map[string]any{
		"A": 1,
		"B": 2,
		"NESTED": map[string]any{
			"KEEP":     "x",
			"OVERRIDE": "new",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{
		"LIST": []any{map[string]any{"X": 1}},
	}
	got := Clone(src)

	if diff := cmp.Diff(src, got); diff != "" {
		t.Fatalf("Clone mismatch (-want +got):\n%s", diff)
	}

	got["LIST"].([]any)[0].(map[string]any)["X"] = 2
	if src["LIST"].([]any)[0].(map[string]any)["X"] != 1 {
		t.Error("Clone shares nested data with the source")
	}
}

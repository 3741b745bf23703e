package source

import (
	"sync"

	"github.com/dshills/appsettings/notify"
)

// Map is a mutable in-memory Source. Mutations fire the attached notifier,
// which is what lets resolved views drop their caches when test scaffolding
// swaps values underneath them.
type Map struct {
	mu       sync.RWMutex
	data     map[string]any
	notifier *notify.Notifier
}

// MapOption configures a Map.
type MapOption func(*Map)

// WithNotifier attaches a notifier fired on every mutation.
func WithNotifier(n *notify.Notifier) MapOption {
	return func(m *Map) {
		m.notifier = n
	}
}

// NewMap creates a Map source over a copy of data.
func NewMap(data map[string]any, opts ...MapOption) *Map {
	m := &Map{data: Clone(data)}
	if m.data == nil {
		m.data = make(map[string]any)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup returns the value for key.
func (m *Map) Lookup(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Set stores a value and fires a set change.
func (m *Map) Set(key string, value any) {
	m.mu.Lock()
	old := m.data[key]
	m.data[key] = value
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.NotifySet(key, old, value, "map")
	}
}

// Delete removes a key and fires a delete change.
func (m *Map) Delete(key string) {
	m.mu.Lock()
	old, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if existed && m.notifier != nil {
		m.notifier.NotifyDelete(key, old, "map")
	}
}

// Notifier returns the attached notifier, or nil.
func (m *Map) Notifier() *notify.Notifier {
	return m.notifier
}

// Override temporarily replaces the given keys and returns a function that
// restores the previous state. Both the override and the restore fire the
// notifier, so cached resolved views pick up each transition.
func (m *Map) Override(values map[string]any) (restore func()) {
	type prior struct {
		value   any
		existed bool
	}

	m.mu.Lock()
	saved := make(map[string]prior, len(values))
	for key, value := range values {
		old, existed := m.data[key]
		saved[key] = prior{value: old, existed: existed}
		m.data[key] = value
	}
	m.mu.Unlock()

	if m.notifier != nil {
		batch := m.notifier.NewBatch()
		for key, value := range values {
			batch.Set(key, saved[key].value, value, "override")
		}
		batch.Commit()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			for key, p := range saved {
				if p.existed {
					m.data[key] = p.value
				} else {
					delete(m.data, key)
				}
			}
			m.mu.Unlock()

			if m.notifier != nil {
				batch := m.notifier.NewBatch()
				for key, p := range saved {
					if p.existed {
						batch.Set(key, values[key], p.value, "override")
					} else {
						batch.Delete(key, values[key], "override")
					}
				}
				batch.Commit()
			}
		})
	}
}

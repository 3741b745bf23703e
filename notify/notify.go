// Package notify provides change notification for the ambient configuration.
//
// A Notifier is the process-wide observer list a configuration source fires
// whenever a value may have changed. Resolved settings views register their
// cache invalidation here; test scaffolding fires it when overriding values.
package notify

import (
	"strings"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeDelete indicates a value was removed.
	ChangeDelete

	// ChangeReload indicates the whole source may have changed.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents one configuration change event.
type Change struct {
	// Key is the fully-qualified setting key (e.g. "APP_TIMEOUT").
	// Empty for reload events.
	Key string

	// Type is the type of change.
	Type ChangeType

	// OldValue is the previous value (may be nil).
	OldValue any

	// NewValue is the new value (nil for deletes).
	NewValue any

	// Source identifies where the change came from.
	Source string
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages configuration change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Observers that receive every change.
	global map[uint64]Observer

	// Observers keyed by exact setting key.
	byKey map[string]map[uint64]Observer

	// Observers keyed by key prefix (e.g. "APP_").
	byPrefix map[string]map[uint64]Observer

	nextID uint64
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{
		global:   make(map[uint64]Observer),
		byKey:    make(map[string]map[uint64]Observer),
		byPrefix: make(map[string]map[uint64]Observer),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.global[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeKey registers an observer for changes to one exact key.
// Reload events are delivered to key observers as well.
func (n *Notifier) SubscribeKey(key string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.byKey[key] == nil {
		n.byKey[key] = make(map[uint64]Observer)
	}
	n.byKey[key][id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribePrefix registers an observer for changes to any key with the
// given prefix. Subscribing to "APP_" receives changes to "APP_TIMEOUT".
func (n *Notifier) SubscribePrefix(prefix string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.byPrefix[prefix] == nil {
		n.byPrefix[prefix] = make(map[uint64]Observer)
	}
	n.byPrefix[prefix][id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify delivers a change to all matching observers.
// Observers are called synchronously, outside the notifier's lock.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()

	var observers []Observer
	for _, obs := range n.global {
		observers = append(observers, obs)
	}

	if change.Key != "" {
		if keyObs, ok := n.byKey[change.Key]; ok {
			for _, obs := range keyObs {
				observers = append(observers, obs)
			}
		}
		for prefix, prefObs := range n.byPrefix {
			if strings.HasPrefix(change.Key, prefix) {
				for _, obs := range prefObs {
					observers = append(observers, obs)
				}
			}
		}
	} else {
		// Reload: everyone hears about it.
		for _, keyObs := range n.byKey {
			for _, obs := range keyObs {
				observers = append(observers, obs)
			}
		}
		for _, prefObs := range n.byPrefix {
			for _, obs := range prefObs {
				observers = append(observers, obs)
			}
		}
	}

	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(key string, oldValue, newValue any, source string) {
	n.Notify(Change{Key: key, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// NotifyDelete is a convenience method for delete changes.
func (n *Notifier) NotifyDelete(key string, oldValue any, source string) {
	n.Notify(Change{Key: key, Type: ChangeDelete, OldValue: oldValue, Source: source})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.global, id)
	for key, observers := range n.byKey {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.byKey, key)
		}
	}
	for prefix, observers := range n.byPrefix {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.byPrefix, prefix)
		}
	}
}

// Batch collects multiple changes and delivers them as a group.
// Test scaffolding uses it to override several values before observers run.
type Batch struct {
	notifier *Notifier
	mu       sync.Mutex
	changes  []Change
}

// NewBatch creates a batch for collecting changes.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Set adds a set change to the batch.
func (b *Batch) Set(key string, oldValue, newValue any, source string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, Change{Key: key, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// Delete adds a delete change to the batch.
func (b *Batch) Delete(key string, oldValue any, source string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, Change{Key: key, Type: ChangeDelete, OldValue: oldValue, Source: source})
}

// Commit delivers all batched changes and clears the batch.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.mu.Unlock()

	for _, change := range changes {
		b.notifier.Notify(change)
	}
}

// Discard clears the batch without delivering anything.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = nil
}

// Len returns the number of pending changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}

package source

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/appsettings/notify"
)

// JSON is a Source backed by a JSON document. Lookups read top-level object
// members; Set and Delete rewrite the document in place and fire the
// attached notifier.
type JSON struct {
	mu       sync.RWMutex
	doc      []byte
	notifier *notify.Notifier
}

// JSONOption configures a JSON source.
type JSONOption func(*JSON)

// WithJSONNotifier attaches a notifier fired on every mutation.
func WithJSONNotifier(n *notify.Notifier) JSONOption {
	return func(j *JSON) {
		j.notifier = n
	}
}

// NewJSON creates a JSON source from a document. The document must be a
// valid JSON object.
func NewJSON(doc []byte, opts ...JSONOption) (*JSON, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	if !gjson.ParseBytes(doc).IsObject() {
		return nil, fmt.Errorf("JSON document must be an object")
	}
	j := &JSON{doc: append([]byte(nil), doc...)}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Lookup returns the value of the top-level member named key.
// Objects come back as map[string]any, arrays as []any, numbers as float64.
func (j *JSON) Lookup(key string) (any, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	res := gjson.GetBytes(j.doc, escapeKey(key))
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// Set writes a top-level member and fires a set change.
func (j *JSON) Set(key string, value any) error {
	j.mu.Lock()
	old := gjson.GetBytes(j.doc, escapeKey(key)).Value()
	doc, err := sjson.SetBytes(j.doc, escapeKey(key), value)
	if err != nil {
		j.mu.Unlock()
		return fmt.Errorf("setting %s: %w", key, err)
	}
	j.doc = doc
	j.mu.Unlock()

	if j.notifier != nil {
		j.notifier.NotifySet(key, old, value, "json")
	}
	return nil
}

// Delete removes a top-level member and fires a delete change.
func (j *JSON) Delete(key string) error {
	j.mu.Lock()
	res := gjson.GetBytes(j.doc, escapeKey(key))
	if !res.Exists() {
		j.mu.Unlock()
		return nil
	}
	old := res.Value()
	doc, err := sjson.DeleteBytes(j.doc, escapeKey(key))
	if err != nil {
		j.mu.Unlock()
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	j.doc = doc
	j.mu.Unlock()

	if j.notifier != nil {
		j.notifier.NotifyDelete(key, old, "json")
	}
	return nil
}

// Bytes returns a copy of the current document.
func (j *JSON) Bytes() []byte {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]byte(nil), j.doc...)
}

// escapeKey escapes path syntax so keys are treated as literal member names.
func escapeKey(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}

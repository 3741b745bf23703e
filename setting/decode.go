package setting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/appsettings/validate"
)

// decodeValue decodes a raw environment-variable string according to the
// setting's kind, or its custom decode hook when one is set. The default
// decoding parses structured literals (JSON); per-kind fallbacks accept the
// common plain-text spellings.
func (s *Setting) decodeValue(raw string) (any, error) {
	if s.decode != nil {
		return s.decode(raw)
	}

	switch s.kind {
	case validate.KindString:
		if v, ok := decodeJSON(raw); ok {
			return v, nil
		}
		return raw, nil

	case validate.KindBool:
		switch strings.ToLower(raw) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0":
			return false, nil
		default:
			return nil, fmt.Errorf("invalid boolean value %q", raw)
		}

	case validate.KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value %q", raw)
		}
		return int(n), nil

	case validate.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric value %q", raw)
		}
		return f, nil

	case validate.KindDuration:
		if d, err := time.ParseDuration(raw); err == nil {
			return d, nil
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.Duration(n) * time.Millisecond, nil
		}
		return nil, fmt.Errorf("invalid duration value %q", raw)

	case validate.KindList:
		if v, ok := decodeJSON(raw); ok {
			return v, nil
		}
		return s.splitList(raw), nil

	case validate.KindMap:
		if v, ok := decodeJSON(raw); ok {
			return v, nil
		}
		return s.splitDict(raw)

	default:
		v, ok := decodeJSON(raw)
		if !ok {
			return nil, fmt.Errorf("invalid value %q: not a structured literal", raw)
		}
		return v, nil
	}
}

// splitList splits a plain-text list on the setting's delimiter, converting
// items to the declared item kind.
func (s *Setting) splitList(raw string) []any {
	parts := strings.Split(raw, s.delimiter)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = convertItem(p, s.itemKind)
	}
	return out
}

// splitDict splits a plain-text dict on the outer delimiter (default: any
// whitespace), then each item on the inner delimiter.
func (s *Setting) splitDict(raw string) (any, error) {
	var items []string
	if s.outerDelim == "" {
		items = strings.Fields(raw)
	} else {
		items = strings.Split(raw, s.outerDelim)
	}
	out := make(map[string]any, len(items))
	for _, item := range items {
		kv := strings.SplitN(item, s.innerDelim, 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid dict item %q: missing %q", item, s.innerDelim)
		}
		key, ok := convertItem(kv[0], s.keyKind).(string)
		if !ok {
			key = kv[0]
		}
		out[key] = convertItem(kv[1], s.valueKind)
	}
	return out, nil
}

// convertItem converts one split item to the declared kind, falling back to
// the raw string.
func convertItem(raw string, kind validate.Kind) any {
	switch kind {
	case validate.KindInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return int(n)
		}
	case validate.KindFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case validate.KindBool:
		switch strings.ToLower(raw) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
	}
	return raw
}

// decodeJSON parses a structured literal. Numbers come back as float64 when
// fractional and int when integral, matching the map and JSON sources.
func decodeJSON(raw string) (any, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !gjson.Valid(trimmed) {
		return nil, false
	}
	res := gjson.Parse(trimmed)
	// gjson accepts bare words as strings; only treat recognized JSON
	// literal forms as structured.
	switch trimmed[0] {
	case '{', '[', '"', 't', 'f', 'n', '-', '+',
		'0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
	default:
		return nil, false
	}
	switch trimmed {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null":
		return nil, true
	}
	switch trimmed[0] {
	case '{', '[', '"':
		return res.Value(), true
	default:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, false
		}
		if f == float64(int64(f)) {
			return int(f), true
		}
		return f, true
	}
}

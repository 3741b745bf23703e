// Package source provides the ambient key-value environments settings are
// resolved against.
//
// A Source is a read-only mapping from fully-qualified, uppercase setting
// keys to values. The package ships an in-memory Map (with change
// notification and test-override support), a process-environment source, a
// JSON document source, and loaders for TOML and YAML files.
//
// An Environment pairs the primary source with an optional environment-
// variable override source that is consulted first; values found there are
// raw strings decoded per setting.
package source

// Source is an abstract read-only mapping from key to value.
// Keys are exact: lookups do not fold case.
type Source interface {
	// Lookup returns the value for key and whether the key exists.
	Lookup(key string) (any, bool)
}

// Environment is the ambient configuration a setting resolves against.
type Environment struct {
	// Settings is the primary configuration mapping.
	Settings Source

	// Environ is an optional override source consulted before Settings.
	// String values found here are decoded by the setting's decode hook.
	Environ Source
}

// Env wraps a primary source into an Environment with no override.
func Env(primary Source) Environment {
	return Environment{Settings: primary}
}

// EnvWithOverride wraps a primary source and an override source.
func EnvWithOverride(primary, override Source) Environment {
	return Environment{Settings: primary, Environ: override}
}

// Merge recursively merges src into dst and returns dst.
// Values in src override values in dst; maps merge recursively.
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = srcVal
			continue
		}
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = Merge(dstMap, srcMap)
		} else {
			dst[key] = srcVal
		}
	}
	return dst
}

// Clone creates a deep copy of a configuration map.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, val := range src {
		switch v := val.(type) {
		case map[string]any:
			dst[key] = Clone(v)
		case []any:
			dst[key] = cloneSlice(v)
		default:
			dst[key] = val
		}
	}
	return dst
}

func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}
	dst := make([]any, len(src))
	for i, val := range src {
		switch v := val.(type) {
		case map[string]any:
			dst[i] = Clone(v)
		case []any:
			dst[i] = cloneSlice(v)
		default:
			dst[i] = val
		}
	}
	return dst
}

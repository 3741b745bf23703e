package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadTOML reads a TOML file into a Map source. Keys are uppercased
// recursively so lowercase file keys line up with fully-qualified setting
// names.
func LoadTOML(path string, opts ...MapOption) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	m, err := ParseTOML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return NewMap(m, opts...), nil
}

// ParseTOML parses TOML data into an uppercase-keyed configuration map.
func ParseTOML(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return upperKeys(raw), nil
}

// LoadYAML reads a YAML file into a Map source, uppercasing keys the same
// way LoadTOML does.
func LoadYAML(path string, opts ...MapOption) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	m, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return NewMap(m, opts...), nil
}

// ParseYAML parses YAML data into an uppercase-keyed configuration map.
func ParseYAML(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return upperKeys(raw), nil
}

// upperKeys uppercases every map key recursively, including maps inside
// slices, so nested sub-settings resolve against uppercase keys too.
func upperKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, val := range m {
		out[strings.ToUpper(key)] = upperValue(val)
	}
	return out
}

func upperValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return upperKeys(t)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = upperValue(el)
		}
		return out
	default:
		return v
	}
}

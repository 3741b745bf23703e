package setting

import (
	"errors"
	"fmt"

	"github.com/dshills/appsettings/source"
	"github.com/dshills/appsettings/validate"
)

// Field declares one named sub-setting of a nested dict setting.
type Field struct {
	// Name is the declaration attribute name of the sub-setting.
	Name string
	// Setting is the sub-setting descriptor.
	Setting Descriptor
}

// NestedDict is a dict setting whose items are themselves declared settings.
// The configured value must be a map; each sub-setting resolves against that
// map as its own environment, under its own name and prefix. The container's
// prefix does not propagate to sub-settings.
type NestedDict struct {
	Setting
	fields []string
	subs   map[string]Descriptor
}

// Nested declares a dict setting with per-item sub-settings. Sub-settings are
// bound at declaration: each under its own name, with no inherited prefix.
// A repeated field name replaces the earlier descriptor but keeps its
// position.
func Nested(fields []Field, opts ...Option) *NestedDict {
	nd := &NestedDict{
		Setting: *newSetting(validate.KindMap, emptyMap, opts...),
		subs:    make(map[string]Descriptor, len(fields)),
	}
	for _, f := range fields {
		if _, exists := nd.subs[f.Name]; !exists {
			nd.fields = append(nd.fields, f.Name)
		}
		nd.subs[f.Name] = f.Setting.Bind(f.Name, "")
	}
	return nd
}

// Fields returns the declared sub-setting names in declaration order.
func (nd *NestedDict) Fields() []string {
	out := make([]string, len(nd.fields))
	copy(out, nd.fields)
	return out
}

// Sub returns the bound sub-setting for a field name.
func (nd *NestedDict) Sub(name string) (Descriptor, bool) {
	d, ok := nd.subs[name]
	return d, ok
}

// Bind attaches the attribute name and default prefix, returning a bound
// copy. Sub-settings stay bound as declared.
func (nd *NestedDict) Bind(attr, prefix string) Descriptor {
	c := *nd
	c.Setting = *nd.Setting.bind(attr, prefix)
	return &c
}

// Raw returns the raw configured map, or the default when absent.
func (nd *NestedDict) Raw(env source.Environment) (any, error) {
	return nd.Setting.Raw(env)
}

// Validate checks the configured map and every sub-setting within it.
// All sub-setting failures are reported, joined into one error.
func (nd *NestedDict) Validate(env source.Environment) error {
	v, configured, err := nd.lookup(env)
	if err != nil {
		return err
	}
	if !configured {
		if nd.required {
			return &MissingSettingError{Name: nd.FullName()}
		}
		return nil
	}
	if err := nd.runValidators(v); err != nil {
		return err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return &SettingError{Name: nd.FullName(), Value: v,
			Err: fmt.Errorf("cannot resolve %T as a nested dict", v)}
	}
	child := source.Env(source.NewMap(m))
	var errs []error
	for _, name := range nd.fields {
		if err := nd.subs[name].Validate(child); err != nil {
			errs = append(errs, nd.wrapSub(err))
		}
	}
	return errors.Join(errs...)
}

// Value resolves the configured map into a map of sub-setting values, keyed
// by field name. Sub-settings absent from the map fall back to their own
// defaults; required sub-settings must be present.
func (nd *NestedDict) Value(env source.Environment) (any, error) {
	v, configured, err := nd.lookup(env)
	if err != nil {
		return nil, err
	}
	if !configured {
		if nd.required {
			return nil, &MissingSettingError{Name: nd.FullName()}
		}
		d := nd.DefaultValue()
		if nd.transformDefault {
			return nd.applyTransform(d)
		}
		return d, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &SettingError{Name: nd.FullName(), Value: v,
			Err: fmt.Errorf("cannot resolve %T as a nested dict", v)}
	}
	child := source.Env(source.NewMap(m))
	out := make(map[string]any, len(nd.fields))
	for _, name := range nd.fields {
		sub, err := nd.subs[name].Value(child)
		if err != nil {
			return nil, nd.wrapSub(err)
		}
		out[name] = sub
	}
	return nd.applyTransform(out)
}

// wrapSub attributes a sub-setting's missing-value error to this container.
func (nd *NestedDict) wrapSub(err error) error {
	var miss *MissingSettingError
	if errors.As(err, &miss) && miss.Parent == "" {
		return &MissingSettingError{Name: miss.Name, Parent: nd.FullName()}
	}
	return err
}

// NestedList is a list setting whose elements each resolve through an inner
// descriptor. Lists may nest inside lists; dict settings with sub-settings
// may not.
type NestedList struct {
	Setting
	inner Descriptor
}

// NestedOf declares a list setting whose elements resolve through inner.
// Panics when inner is a nested dict setting: per-item sub-settings have no
// stable names inside a list.
func NestedOf(inner Descriptor, opts ...Option) *NestedList {
	if _, isDict := inner.(*NestedDict); isDict {
		panic("appsettings: nested dict settings cannot be elements of a list setting")
	}
	return &NestedList{
		Setting: *newSetting(validate.KindList, emptyList, opts...),
		inner:   inner,
	}
}

// Bind attaches the attribute name and default prefix. The inner descriptor
// is bound under the list's own attribute name with no prefix.
func (nl *NestedList) Bind(attr, prefix string) Descriptor {
	c := *nl
	c.Setting = *nl.Setting.bind(attr, prefix)
	c.inner = nl.inner.Bind(attr, "")
	return &c
}

// Raw returns the raw configured list, or the default when absent.
func (nl *NestedList) Raw(env source.Environment) (any, error) {
	return nl.Setting.Raw(env)
}

// Validate checks the configured list and each element through the inner
// descriptor, reporting all failures joined into one error.
func (nl *NestedList) Validate(env source.Environment) error {
	v, configured, err := nl.lookup(env)
	if err != nil {
		return err
	}
	if !configured {
		if nl.required {
			return &MissingSettingError{Name: nl.FullName()}
		}
		return nil
	}
	if err := nl.runValidators(v); err != nil {
		return err
	}
	list, ok := toList(v)
	if !ok {
		return &SettingError{Name: nl.FullName(), Value: v,
			Err: fmt.Errorf("cannot resolve %T as a list", v)}
	}
	var errs []error
	for i, el := range list {
		if err := nl.inner.Validate(nl.elementEnv(el)); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Value resolves each configured element through the inner descriptor.
func (nl *NestedList) Value(env source.Environment) (any, error) {
	v, configured, err := nl.lookup(env)
	if err != nil {
		return nil, err
	}
	if !configured {
		if nl.required {
			return nil, &MissingSettingError{Name: nl.FullName()}
		}
		d := nl.DefaultValue()
		if nl.transformDefault {
			return nl.applyTransform(d)
		}
		return d, nil
	}
	list, ok := toList(v)
	if !ok {
		return nil, &SettingError{Name: nl.FullName(), Value: v,
			Err: fmt.Errorf("cannot resolve %T as a list", v)}
	}
	out := make([]any, len(list))
	for i, el := range list {
		resolved, err := nl.inner.Value(nl.elementEnv(el))
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = resolved
	}
	return nl.applyTransform(out)
}

// elementEnv wraps one list element as the inner descriptor's environment.
func (nl *NestedList) elementEnv(el any) source.Environment {
	return source.Env(elementSource{key: nl.inner.FullName(), value: el})
}

// elementSource exposes a single list element under the inner descriptor's
// full name.
type elementSource struct {
	key   string
	value any
}

// Lookup implements source.Source.
func (s elementSource) Lookup(key string) (any, bool) {
	if key == s.key {
		return s.value, true
	}
	return nil, false
}

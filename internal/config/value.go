// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

// Value is a config entry: either a single string (the key appeared once)
// or an ordered list (the key appeared two or more times).
type Value struct {
	single   string
	multiple []string
}

// Single returns a Value holding one string.
func Single(s string) Value { return Value{single: s} }

// Multiple returns a Value holding an ordered list. The slice is copied.
func Multiple(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{multiple: cp}
}

// IsMultiple reports whether the key appeared more than once.
func (v Value) IsMultiple() bool { return v.multiple != nil }

// String returns the single value, or the first element of a list.
func (v Value) String() string {
	if v.multiple != nil {
		if len(v.multiple) == 0 {
			return ""
		}
		return v.multiple[0]
	}
	return v.single
}

// Strings normalizes the value into a list. A single value yields a
// one-element list.
func (v Value) Strings() []string {
	if v.multiple == nil {
		return []string{v.single}
	}
	cp := make([]string, len(v.multiple))
	copy(cp, v.multiple)
	return cp
}

// merge applies the repeated-key rule: a single value becomes
// [first, second]; a list is appended to.
func (v Value) merge(next string) Value {
	if v.multiple == nil {
		return Value{multiple: []string{v.single, next}}
	}
	out := make([]string, len(v.multiple), len(v.multiple)+1)
	copy(out, v.multiple)
	return Value{multiple: append(out, next)}
}

// Map is the parsed config file. Keys keep the order of first appearance.
// A Map is not modified after Parse returns.
type Map struct {
	keys   []string
	values map[string]Value
}

// Get returns the value for key.
func (m Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key was present in the file.
func (m Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in order of first appearance.
func (m Map) Keys() []string {
	cp := make([]string, len(m.keys))
	copy(cp, m.keys)
	return cp
}

// Len returns the number of distinct keys.
func (m Map) Len() int { return len(m.keys) }

func (m *Map) add(key, value string) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if prev, ok := m.values[key]; ok {
		m.values[key] = prev.merge(value)
		return
	}
	m.keys = append(m.keys, key)
	m.values[key] = Single(value)
}

// WithDefault returns a copy of m where key is set to value if it was
// absent. m itself is left untouched.
func (m Map) WithDefault(key, value string) Map {
	if m.Has(key) {
		return m
	}
	out := Map{
		keys:   append(m.Keys(), key),
		values: make(map[string]Value, len(m.values)+1),
	}
	for k, v := range m.values {
		out.values[k] = v
	}
	out.values[key] = Single(value)
	return out
}

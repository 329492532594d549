package framekit

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Properties is a bag of named values carried by a Node or Material: custom data from a model file, or tags for
// NodeFilter.ByProperties.
type Properties struct {
	values map[string]*Property
}

// NewProperties returns an empty Properties.
func NewProperties() *Properties {
	return &Properties{values: map[string]*Property{}}
}

// Clone returns a copy of the bag; values themselves are copied shallowly.
func (props *Properties) Clone() *Properties {
	clone := NewProperties()
	for name, prop := range props.values {
		clone.values[name] = &Property{Value: prop.Value}
	}
	return clone
}

// Get returns the named Property, adding an empty one if there isn't one yet.
func (props *Properties) Get(name string) *Property {
	prop, ok := props.values[name]
	if !ok {
		prop = &Property{}
		props.values[name] = prop
	}
	return prop
}

// Has reports whether every one of names is set.
func (props *Properties) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := props.values[name]; !ok {
			return false
		}
	}
	return true
}

// Remove deletes the named Property.
func (props *Properties) Remove(name string) {
	delete(props.values, name)
}

// Names returns the names of every Property, sorted.
func (props *Properties) Names() []string {
	names := make([]string, 0, len(props.values))
	for name := range props.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns how many Properties are set.
func (props *Properties) Count() int {
	return len(props.values)
}

// Property is a single named value.
type Property struct {
	Value any
}

// Set replaces the value.
func (prop *Property) Set(value any) {
	prop.Value = value
}

// Float64 returns the value as a float64. Any Go integer or float type converts.
func (prop *Property) Float64() (float64, bool) {
	switch v := prop.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Text returns the value if it's a string.
func (prop *Property) Text() (string, bool) {
	s, ok := prop.Value.(string)
	return s, ok
}

// Bool returns the value if it's a bool.
func (prop *Property) Bool() (bool, bool) {
	b, ok := prop.Value.(bool)
	return b, ok
}

// Vector returns the value if it's a 3D vector.
func (prop *Property) Vector() (mgl64.Vec3, bool) {
	v, ok := prop.Value.(mgl64.Vec3)
	return v, ok
}

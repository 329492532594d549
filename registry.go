package framekit

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PropertyKind is the value type of a bound debug property.
type PropertyKind int

const (
	PropertyFloat  PropertyKind = iota // A float64, optionally with a range and step.
	PropertyInt                        // An int, optionally with a range and step.
	PropertyBool                       // A bool.
	PropertyChoice                     // One string out of a fixed list.
	PropertyColor                      // A Color.
)

func (kind PropertyKind) String() string {
	switch kind {
	case PropertyFloat:
		return "float"
	case PropertyInt:
		return "int"
	case PropertyBool:
		return "bool"
	case PropertyChoice:
		return "choice"
	case PropertyColor:
		return "color"
	}
	return "PropertyKind(" + strconv.Itoa(int(kind)) + ")"
}

// PropertyDescriptor describes one bound property: where it lives (its path), what type it is, and how it may be edited.
type PropertyDescriptor struct {
	Path     string
	Label    string
	Kind     PropertyKind
	Min, Max float64 // Only meaningful if HasRange is set.
	HasRange bool
	Step     float64  // Values are snapped to multiples of Step (from Min, if there's a range); zero means no snapping.
	Choices  []string // For PropertyChoice.

	get func() any
	set func(any)
}

// BindOption configures a property as it's bound.
type BindOption func(desc *PropertyDescriptor)

// WithRange limits a numeric property to [min, max]. Edits outside of it are clamped.
func WithRange(min, max float64) BindOption {
	return func(desc *PropertyDescriptor) {
		if min > max {
			min, max = max, min
		}
		desc.Min, desc.Max, desc.HasRange = min, max, true
	}
}

// WithStep snaps a numeric property to multiples of step.
func WithStep(step float64) BindOption {
	return func(desc *PropertyDescriptor) {
		desc.Step = math.Abs(step)
	}
}

// WithLabel sets the label shown for the property; the path is used otherwise.
func WithLabel(label string) BindOption {
	return func(desc *PropertyDescriptor) {
		desc.Label = label
	}
}

// normalize clamps and snaps a numeric value to the descriptor's range and step.
func (desc *PropertyDescriptor) normalize(v float64) float64 {
	if desc.Step > 0 {
		origin := 0.0
		if desc.HasRange {
			origin = desc.Min
		}
		v = origin + math.Round((v-origin)/desc.Step)*desc.Step
	}
	if desc.HasRange {
		v = clamp(v, desc.Min, desc.Max)
	}
	return v
}

// PropertyRegistry holds typed, explicitly bound debug properties. Edits can come from any goroutine; they're held as
// pending values (the newest edit per path wins) and written to the bound fields by Flush, which the RenderLoop runs at the
// top of each frame. Snapshot gives other goroutines the values as of the last Flush.
type PropertyRegistry struct {
	logger logrus.FieldLogger

	mu           sync.Mutex
	descriptors  map[string]*PropertyDescriptor
	order        []string
	pending      map[string]any
	pendingOrder []string
	snapshot     map[string]any
	writes       int
}

// NewPropertyRegistry creates a new, empty PropertyRegistry.
func NewPropertyRegistry(logger logrus.FieldLogger) *PropertyRegistry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PropertyRegistry{
		logger:      logger.WithField("component", "properties"),
		descriptors: map[string]*PropertyDescriptor{},
		pending:     map[string]any{},
		snapshot:    map[string]any{},
	}
}

func (reg *PropertyRegistry) bind(desc *PropertyDescriptor, opts []BindOption) error {

	desc.Path = strings.Trim(desc.Path, "/")
	if desc.Path == "" {
		return errors.New("property path is empty")
	}

	for _, opt := range opts {
		opt(desc)
	}
	if desc.Label == "" {
		desc.Label = desc.Path
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.descriptors[desc.Path]; exists {
		return errors.Errorf("property %q is already bound", desc.Path)
	}

	reg.descriptors[desc.Path] = desc
	reg.order = append(reg.order, desc.Path)
	reg.snapshot[desc.Path] = desc.get()

	return nil

}

// BindFloat binds a float64 property.
func (reg *PropertyRegistry) BindFloat(path string, get func() float64, set func(float64), opts ...BindOption) error {
	return reg.bind(&PropertyDescriptor{
		Path: path,
		Kind: PropertyFloat,
		get:  func() any { return get() },
		set:  func(v any) { set(v.(float64)) },
	}, opts)
}

// BindFloatVar binds a float64 variable directly.
func (reg *PropertyRegistry) BindFloatVar(path string, value *float64, opts ...BindOption) error {
	return reg.BindFloat(path, func() float64 { return *value }, func(v float64) { *value = v }, opts...)
}

// BindInt binds an int property.
func (reg *PropertyRegistry) BindInt(path string, get func() int, set func(int), opts ...BindOption) error {
	return reg.bind(&PropertyDescriptor{
		Path: path,
		Kind: PropertyInt,
		get:  func() any { return get() },
		set:  func(v any) { set(v.(int)) },
	}, opts)
}

// BindBool binds a bool property.
func (reg *PropertyRegistry) BindBool(path string, get func() bool, set func(bool), opts ...BindOption) error {
	return reg.bind(&PropertyDescriptor{
		Path: path,
		Kind: PropertyBool,
		get:  func() any { return get() },
		set:  func(v any) { set(v.(bool)) },
	}, opts)
}

// BindChoice binds a property that is one of a fixed list of strings.
func (reg *PropertyRegistry) BindChoice(path string, choices []string, get func() string, set func(string), opts ...BindOption) error {
	if len(choices) == 0 {
		return errors.Errorf("property %q has no choices", path)
	}
	return reg.bind(&PropertyDescriptor{
		Path:    path,
		Kind:    PropertyChoice,
		Choices: append([]string(nil), choices...),
		get:     func() any { return get() },
		set:     func(v any) { set(v.(string)) },
	}, opts)
}

// BindColor binds a Color property.
func (reg *PropertyRegistry) BindColor(path string, get func() Color, set func(Color), opts ...BindOption) error {
	return reg.bind(&PropertyDescriptor{
		Path: path,
		Kind: PropertyColor,
		get:  func() any { return get() },
		set:  func(v any) { set(v.(Color)) },
	}, opts)
}

// BindNodePosition binds the local position of a Node as three float properties, path/x, path/y, and path/z.
func (reg *PropertyRegistry) BindNodePosition(g *Graph, node NodeID, path string, opts ...BindOption) error {
	for axis, name := range []string{"x", "y", "z"} {
		axis := axis
		err := reg.BindFloat(path+"/"+name,
			func() float64 {
				local, _ := g.LocalTransform(node)
				return local.Position[axis]
			},
			func(v float64) {
				local, err := g.LocalTransform(node)
				if err != nil {
					return
				}
				local.Position[axis] = v
				g.SetLocalPosition(node, local.Position)
			}, opts...)
		if err != nil {
			return err
		}
	}
	return nil
}

// BindNodeRotation binds the local Euler angles of a Node as three float properties, path/x, path/y, and path/z, in radians.
func (reg *PropertyRegistry) BindNodeRotation(g *Graph, node NodeID, path string, opts ...BindOption) error {
	for axis, name := range []string{"x", "y", "z"} {
		axis := axis
		err := reg.BindFloat(path+"/"+name,
			func() float64 {
				local, _ := g.LocalTransform(node)
				return local.Rotation.Angle(axis)
			},
			func(v float64) {
				local, err := g.LocalTransform(node)
				if err != nil {
					return
				}
				g.SetLocalRotation(node, local.Rotation.WithAngle(axis, v))
			}, opts...)
		if err != nil {
			return err
		}
	}
	return nil
}

// BindNodeScale binds the local scale of a Node as three float properties. Edits that would make the scale degenerate are
// dropped, so ranges should keep above zero.
func (reg *PropertyRegistry) BindNodeScale(g *Graph, node NodeID, path string, opts ...BindOption) error {
	for axis, name := range []string{"x", "y", "z"} {
		axis := axis
		err := reg.BindFloat(path+"/"+name,
			func() float64 {
				local, _ := g.LocalTransform(node)
				return local.Scale[axis]
			},
			func(v float64) {
				local, err := g.LocalTransform(node)
				if err != nil {
					return
				}
				scale := local.Scale
				scale[axis] = v
				if err := g.SetLocalScale(node, scale); err != nil {
					reg.logger.WithError(err).WithField("path", path).Warn("scale edit rejected")
				}
			}, opts...)
		if err != nil {
			return err
		}
	}
	return nil
}

// BindNodeVisible binds a Node's visibility (applied recursively) as a bool property.
func (reg *PropertyRegistry) BindNodeVisible(g *Graph, node NodeID, path string, opts ...BindOption) error {
	return reg.BindBool(path,
		func() bool { return g.Visible(node) },
		func(v bool) { g.SetVisible(node, v, true) },
		opts...)
}

// BindMaterialColor binds a Material's colour as a Color property.
func (reg *PropertyRegistry) BindMaterialColor(material *Material, path string, opts ...BindOption) error {
	return reg.BindColor(path,
		func() Color { return material.Color },
		func(c Color) { material.Color = c },
		opts...)
}

// BindMaterialWireframe binds a Material's wireframe flag as a bool property.
func (reg *PropertyRegistry) BindMaterialWireframe(material *Material, path string, opts ...BindOption) error {
	return reg.BindBool(path,
		func() bool { return material.Wireframe },
		func(v bool) { material.Wireframe = v },
		opts...)
}

// Descriptor returns a copy of the descriptor for the given path.
func (reg *PropertyRegistry) Descriptor(path string) (PropertyDescriptor, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	desc, ok := reg.descriptors[strings.Trim(path, "/")]
	if !ok {
		return PropertyDescriptor{}, false
	}
	return *desc, true
}

// Descriptors returns copies of every descriptor, in the order they were bound.
func (reg *PropertyRegistry) Descriptors() []PropertyDescriptor {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]PropertyDescriptor, 0, len(reg.order))
	for _, path := range reg.order {
		out = append(out, *reg.descriptors[path])
	}
	return out
}

// Len returns how many properties are bound.
func (reg *PropertyRegistry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.order)
}

// Edit records a new value for the property at path, to be written at the next Flush. Numbers of any Go numeric type are
// accepted for float and int properties, numeric strings included; colours can be given as a Color, a hex string, or a list
// of 3 or 4 numbers. Edit is safe to call from any goroutine. It returns an error if the path isn't bound or the value
// can't be converted.
func (reg *PropertyRegistry) Edit(path string, value any) error {

	path = strings.Trim(path, "/")

	reg.mu.Lock()
	defer reg.mu.Unlock()

	desc, ok := reg.descriptors[path]
	if !ok {
		reg.logger.WithField("path", path).Warn("edit to unknown property")
		return errors.Errorf("unknown property %q", path)
	}

	converted, err := convertPropertyValue(desc.Kind, value)
	if err != nil {
		return errors.Wrapf(err, "property %q", path)
	}

	if _, exists := reg.pending[path]; !exists {
		reg.pendingOrder = append(reg.pendingOrder, path)
	}
	reg.pending[path] = converted

	return nil

}

// Pending returns how many properties have edits waiting for the next Flush.
func (reg *PropertyRegistry) Pending() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.pendingOrder)
}

// Flush writes every pending edit to its bound field exactly once (clamped to the property's range and snapped to its step),
// then refreshes the snapshot. It returns how many properties were written. Flush must run on the goroutine that owns the
// bound state.
func (reg *PropertyRegistry) Flush() int {

	reg.mu.Lock()
	pending := reg.pending
	order := reg.pendingOrder
	reg.pending = map[string]any{}
	reg.pendingOrder = nil
	descriptors := make([]*PropertyDescriptor, 0, len(reg.order))
	for _, path := range reg.order {
		descriptors = append(descriptors, reg.descriptors[path])
	}
	reg.mu.Unlock()

	written := 0

	for _, path := range order {

		reg.mu.Lock()
		desc := reg.descriptors[path]
		reg.mu.Unlock()

		value := pending[path]

		switch desc.Kind {
		case PropertyFloat:
			value = desc.normalize(value.(float64))
		case PropertyInt:
			value = roundToInt(desc.normalize(value.(float64)))
		case PropertyChoice:
			valid := false
			for _, c := range desc.Choices {
				if c == value.(string) {
					valid = true
					break
				}
			}
			if !valid {
				reg.logger.WithFields(logrus.Fields{"path": path, "value": value}).Warn("ignoring edit to unknown choice")
				continue
			}
		}

		desc.set(value)
		written++

	}

	reg.mu.Lock()
	reg.writes += written
	reg.mu.Unlock()

	snapshot := make(map[string]any, len(descriptors))
	for _, desc := range descriptors {
		snapshot[desc.Path] = desc.get()
	}

	reg.mu.Lock()
	reg.snapshot = snapshot
	reg.mu.Unlock()

	return written

}

// Writes returns the total number of values Flush has written to bound fields.
func (reg *PropertyRegistry) Writes() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.writes
}

// Snapshot returns a copy of every property's value as of the last Flush (or as bound, before the first Flush).
// It's safe to call from any goroutine.
func (reg *PropertyRegistry) Snapshot() map[string]any {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make(map[string]any, len(reg.snapshot))
	for k, v := range reg.snapshot {
		out[k] = v
	}
	return out
}

// Value returns a property's value as of the last Flush.
func (reg *PropertyRegistry) Value(path string) (any, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	v, ok := reg.snapshot[strings.Trim(path, "/")]
	return v, ok
}

// Paths returns every bound path, sorted.
func (reg *PropertyRegistry) Paths() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := append([]string(nil), reg.order...)
	sort.Strings(out)
	return out
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case interface{ Float64() (float64, error) }:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// roundToInt rounds v to the nearest int, saturating at the int range instead of overflowing.
func roundToInt(v float64) int {
	v = math.Round(v)
	switch {
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	return int(v)
}

func convertPropertyValue(kind PropertyKind, value any) (any, error) {

	switch kind {

	case PropertyFloat, PropertyInt:
		f, ok := toFloat(value)
		if !ok || math.IsNaN(f) {
			return nil, errors.Errorf("%v is not a number", value)
		}
		if kind == PropertyInt && math.IsInf(f, 0) {
			return nil, errors.Errorf("%v is not an integer", value)
		}
		// Ints stay float64 until Flush has clamped them.
		return f, nil

	case PropertyBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, errors.Errorf("%q is not a bool", v)
			}
			return b, nil
		}
		return nil, errors.Errorf("%v is not a bool", value)

	case PropertyChoice:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, errors.Errorf("%v is not a string", value)

	case PropertyColor:
		switch v := value.(type) {
		case Color:
			return v, nil
		case string:
			c, err := NewColorFromHexString(v)
			if err != nil {
				return nil, err
			}
			return c, nil
		case mgl64.Vec4:
			return NewColor(float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])), nil
		case []any:
			if len(v) != 3 && len(v) != 4 {
				return nil, errors.Errorf("a colour needs 3 or 4 components, not %d", len(v))
			}
			c := [4]float32{1, 1, 1, 1}
			for i, comp := range v {
				f, ok := toFloat(comp)
				if !ok {
					return nil, errors.Errorf("colour component %v is not a number", comp)
				}
				c[i] = float32(clamp(f, 0, 1))
			}
			return NewColor(c[0], c[1], c[2], c[3]), nil
		}
		return nil, errors.Errorf("%v is not a colour", value)

	}

	return nil, errors.Errorf("unsupported property kind %v", kind)

}

package framekit

import (
	"math"
)

// ToRadians is a helper function to easily convert degrees to radians (which is what the rotation-oriented functions in framekit use).
func ToRadians(degrees float64) float64 {
	return math.Pi * degrees / 180
}

// ToDegrees is a helper function to easily convert radians to degrees for human readability.
func ToDegrees(radians float64) float64 {
	return radians / math.Pi * 180
}

func clamp[V float64 | float32 | int](value, min, max V) V {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// Set is a simple generic set.
type Set[E comparable] map[E]struct{}

func newSet[E comparable]() Set[E] {
	return Set[E]{}
}

// Add adds the element to the Set.
func (s Set[E]) Add(element E) {
	s[element] = struct{}{}
}

// Contains returns if the Set has the element.
func (s Set[E]) Contains(element E) bool {
	_, ok := s[element]
	return ok
}

// Remove removes the element from the Set.
func (s Set[E]) Remove(element E) {
	delete(s, element)
}

// Clear empties the Set.
func (s Set[E]) Clear() {
	for k := range s {
		delete(s, k)
	}
}

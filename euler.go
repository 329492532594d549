package framekit

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// EulerOrder is the sequence in which per-axis rotations are composed. Changing the order changes the resulting orientation
// whenever more than one axis has a non-zero angle.
type EulerOrder int

const (
	EulerXYZ EulerOrder = iota // EulerXYZ composes Rx * Ry * Rz; this is the default.
	EulerXZY                   // EulerXZY composes Rx * Rz * Ry.
	EulerYXZ                   // EulerYXZ composes Ry * Rx * Rz.
	EulerYZX                   // EulerYZX composes Ry * Rz * Rx.
	EulerZXY                   // EulerZXY composes Rz * Rx * Ry.
	EulerZYX                   // EulerZYX composes Rz * Ry * Rx.
)

var eulerOrderNames = [...]string{"XYZ", "XZY", "YXZ", "YZX", "ZXY", "ZYX"}

var eulerOrderAxes = [...][3]int{
	{0, 1, 2},
	{0, 2, 1},
	{1, 0, 2},
	{1, 2, 0},
	{2, 0, 1},
	{2, 1, 0},
}

func (order EulerOrder) String() string {
	if order < 0 || int(order) >= len(eulerOrderNames) {
		return "EulerOrder(" + strconv.Itoa(int(order)) + ")"
	}
	return eulerOrderNames[order]
}

// ParseEulerOrder parses an order name such as "YXZ" (case-insensitive).
func ParseEulerOrder(name string) (EulerOrder, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range eulerOrderNames {
		if n == name {
			return EulerOrder(i), nil
		}
	}
	return EulerXYZ, errors.Errorf("unknown euler order %q", name)
}

// MarshalText implements encoding.TextMarshaler so orders read naturally in config files.
func (order EulerOrder) MarshalText() ([]byte, error) {
	return []byte(order.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (order *EulerOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseEulerOrder(string(text))
	if err != nil {
		return err
	}
	*order = parsed
	return nil
}

// Euler is an orientation expressed as three angles in radians about the X, Y, and Z axes, composed in an explicit order.
// Three-axis Euler composition can lose a degree of freedom when two axes line up (gimbal lock); that's inherent to the
// representation. Use Quat() when interpolating.
type Euler struct {
	X, Y, Z float64
	Order   EulerOrder
}

// NewEuler returns an Euler with the default XYZ order.
func NewEuler(x, y, z float64) Euler {
	return Euler{X: x, Y: y, Z: z, Order: EulerXYZ}
}

// NewEulerOrdered returns an Euler with the given order.
func NewEulerOrdered(x, y, z float64, order EulerOrder) Euler {
	return Euler{X: x, Y: y, Z: z, Order: order}
}

// Angle returns the angle about the indexed axis (0 = X, 1 = Y, 2 = Z).
func (euler Euler) Angle(axis int) float64 {
	switch axis {
	case 0:
		return euler.X
	case 1:
		return euler.Y
	default:
		return euler.Z
	}
}

// WithAngle returns a copy of the Euler with the indexed axis set to angle.
func (euler Euler) WithAngle(axis int, angle float64) Euler {
	switch axis {
	case 0:
		euler.X = angle
	case 1:
		euler.Y = angle
	default:
		euler.Z = angle
	}
	return euler
}

// Matrix returns the rotation matrix for the Euler, multiplying the axis rotations in the Euler's order.
func (euler Euler) Matrix() mgl64.Mat4 {
	rotations := [3]mgl64.Mat4{
		mgl64.HomogRotate3DX(euler.X),
		mgl64.HomogRotate3DY(euler.Y),
		mgl64.HomogRotate3DZ(euler.Z),
	}
	axes := eulerOrderAxes[euler.Order]
	return rotations[axes[0]].Mul4(rotations[axes[1]]).Mul4(rotations[axes[2]])
}

// Quat returns the unit quaternion representing the same orientation.
func (euler Euler) Quat() mgl64.Quat {
	return mgl64.Mat4ToQuat(euler.Matrix()).Normalize()
}

// Reorder returns an Euler with the same orientation expressed in a different axis order.
func (euler Euler) Reorder(order EulerOrder) Euler {
	if order == euler.Order {
		return euler
	}
	return EulerFromMatrix(euler.Matrix(), order)
}

// Equals returns if both Eulers describe the same orientation, within a small tolerance.
func (euler Euler) Equals(other Euler) bool {
	return euler.Matrix().ApproxEqualThreshold(other.Matrix(), 1e-6)
}

// EulerFromQuat converts a unit quaternion into an Euler using the given order.
func EulerFromQuat(quat mgl64.Quat, order EulerOrder) Euler {
	return EulerFromMatrix(quat.Normalize().Mat4(), order)
}

// EulerFromMatrix extracts Euler angles in the given order from the rotation portion of m, which must be unscaled.
// At a gimbal-lock singularity the third angle is set to zero.
func EulerFromMatrix(m mgl64.Mat4, order EulerOrder) Euler {

	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m21, m22, m23 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	m31, m32, m33 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	const singular = 0.9999999

	e := Euler{Order: order}

	switch order {

	case EulerXYZ:
		e.Y = math.Asin(clamp(m13, -1, 1))
		if math.Abs(m13) < singular {
			e.X = math.Atan2(-m23, m33)
			e.Z = math.Atan2(-m12, m11)
		} else {
			e.X = math.Atan2(m32, m22)
		}

	case EulerYXZ:
		e.X = math.Asin(-clamp(m23, -1, 1))
		if math.Abs(m23) < singular {
			e.Y = math.Atan2(m13, m33)
			e.Z = math.Atan2(m21, m22)
		} else {
			e.Y = math.Atan2(-m31, m11)
		}

	case EulerZXY:
		e.X = math.Asin(clamp(m32, -1, 1))
		if math.Abs(m32) < singular {
			e.Y = math.Atan2(-m31, m33)
			e.Z = math.Atan2(-m12, m22)
		} else {
			e.Z = math.Atan2(m21, m11)
		}

	case EulerZYX:
		e.Y = math.Asin(-clamp(m31, -1, 1))
		if math.Abs(m31) < singular {
			e.X = math.Atan2(m32, m33)
			e.Z = math.Atan2(m21, m11)
		} else {
			e.Z = math.Atan2(-m12, m22)
		}

	case EulerYZX:
		e.Z = math.Asin(clamp(m21, -1, 1))
		if math.Abs(m21) < singular {
			e.X = math.Atan2(-m23, m22)
			e.Y = math.Atan2(-m31, m11)
		} else {
			e.Y = math.Atan2(m13, m33)
		}

	case EulerXZY:
		e.Z = math.Asin(-clamp(m12, -1, 1))
		if math.Abs(m12) < singular {
			e.X = math.Atan2(m32, m22)
			e.Y = math.Atan2(m13, m11)
		} else {
			e.X = math.Atan2(-m23, m33)
		}

	}

	return e

}

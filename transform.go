package framekit

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Transform is a position, rotation, and scale defining a node's placement relative to its parent.
type Transform struct {
	Position mgl64.Vec3
	Rotation Euler
	Scale    mgl64.Vec3
}

// NewTransform returns an identity Transform.
func NewTransform() Transform {
	return Transform{
		Scale: mgl64.Vec3{1, 1, 1},
	}
}

// Matrix returns the Transform as a 4x4 matrix, composed as T * R * S (so scale applies first, then rotation, then translation).
func (transform Transform) Matrix() mgl64.Mat4 {
	t := mgl64.Translate3D(transform.Position[0], transform.Position[1], transform.Position[2])
	s := mgl64.Scale3D(transform.Scale[0], transform.Scale[1], transform.Scale[2])
	return t.Mul4(transform.Rotation.Matrix()).Mul4(s)
}

// Validate returns ErrDegenerateTransform if any scale component is zero, negative, or not finite. Position and rotation
// aren't checked.
func (transform Transform) Validate() error {
	return validateScale(transform.Scale)
}

func validateScale(scale mgl64.Vec3) error {
	for i := 0; i < 3; i++ {
		if !isFinite(scale[i]) || scale[i] <= 0 {
			return errors.Wrapf(ErrDegenerateTransform, "scale component %d is %v", i, scale[i])
		}
	}
	return nil
}

// Decompose splits an affine matrix with positive scale into its translation, rotation (in the given order), and scale.
func Decompose(m mgl64.Mat4, order EulerOrder) Transform {

	position := m.Col(3).Vec3()

	scale := mgl64.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}

	rotation := mgl64.Ident4()
	for c := 0; c < 3; c++ {
		if scale[c] == 0 {
			continue
		}
		axis := m.Col(c).Vec3().Mul(1 / scale[c])
		rotation.SetCol(c, axis.Vec4(0))
	}

	return Transform{
		Position: position,
		Rotation: EulerFromMatrix(rotation, order),
		Scale:    scale,
	}

}

// NewLookAtMatrix generates a rotation matrix that points an object's -Z axis from "from" towards "to", the way a camera faces.
// up is the upward vector (usually +Y, or [0, 1, 0]).
func NewLookAtMatrix(from, to, up mgl64.Vec3) mgl64.Mat4 {

	// If from and to are the same, then an identity Matrix4 should be a sensible default
	if from.ApproxEqual(to) {
		return mgl64.Ident4()
	}

	z := from.Sub(to).Normalize()

	up = up.Normalize()

	// If z lines up with up, then the matrix will be unusable, so we sub up out with another axis
	if z.Cross(up).Len() < 1e-9 {
		if !up.ApproxEqual(WorldRight) {
			up = WorldRight
		} else {
			up = WorldBackward
		}
	}

	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	m := mgl64.Ident4()
	m.SetCol(0, x.Vec4(0))
	m.SetCol(1, y.Vec4(0))
	m.SetCol(2, z.Vec4(0))
	return m

}

var (
	WorldRight    = mgl64.Vec3{1, 0, 0}
	WorldLeft     = mgl64.Vec3{-1, 0, 0}
	WorldUp       = mgl64.Vec3{0, 1, 0}
	WorldDown     = mgl64.Vec3{0, -1, 0}
	WorldBackward = mgl64.Vec3{0, 0, 1}
	WorldForward  = mgl64.Vec3{0, 0, -1}
)

package framekit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Controls turn input collected since the last frame into camera movement. Update is called once per frame by the RenderLoop,
// after Animations and before rendering.
type Controls interface {
	Update(fc *FrameContext) error
}

// polarEpsilon keeps the orbit away from the poles, where the look-at basis would flip.
const polarEpsilon = 1e-4

type spherical struct {
	radius, polar, azimuth float64
}

func sphericalFromOffset(offset mgl64.Vec3) spherical {
	r := offset.Len()
	if r == 0 {
		return spherical{radius: 0, polar: math.Pi / 2}
	}
	return spherical{
		radius:  r,
		polar:   math.Acos(clamp(offset[1]/r, -1, 1)),
		azimuth: math.Atan2(offset[0], offset[2]),
	}
}

func (s spherical) offset() mgl64.Vec3 {
	sinPolar := math.Sin(s.polar)
	return mgl64.Vec3{
		s.radius * sinPolar * math.Sin(s.azimuth),
		s.radius * math.Cos(s.polar),
		s.radius * sinPolar * math.Cos(s.azimuth),
	}
}

// OrbitControls orbit a camera Node around a target point. The polar angle is measured from +Y; the camera can never pass
// over the poles (so it's never upside down), and with GroundPlane set it can't go beneath the target's horizon.
// The camera Node's position is written in its parent's space, so it should be a child of the root (or an orphan).
type OrbitControls struct {
	Target mgl64.Vec3 // The point currently orbited around; use SetTarget to move it.

	RotateSpeed float64 // Radians per pixel of drag.
	ZoomSpeed   float64 // Radius factor per unit of wheel delta (the radius is multiplied by ZoomSpeed^delta).
	PanSpeed    float64 // Target movement per pixel of drag, relative to the orbit radius.

	MinPolarAngle, MaxPolarAngle float64 // Range of the polar angle, in radians.
	MinDistance, MaxDistance     float64 // Range of the orbit radius.
	GroundPlane                  bool    // If set, the polar angle never exceeds pi/2.

	EnableDamping bool    // If set, the camera eases towards the goal instead of jumping to it.
	DampingDecay  float64 // Exponential decay rate, per second, of the distance to the goal.

	graph      *Graph
	node       NodeID
	current    spherical
	goal       spherical
	goalTarget mgl64.Vec3
}

// NewOrbitControls creates OrbitControls for the camera Node, orbiting around target from wherever the camera is now.
func NewOrbitControls(g *Graph, cameraNode NodeID, target mgl64.Vec3) *OrbitControls {

	oc := &OrbitControls{
		Target:        target,
		RotateSpeed:   0.005,
		ZoomSpeed:     0.95,
		PanSpeed:      0.002,
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		MinDistance:   0,
		MaxDistance:   math.Inf(1),
		DampingDecay:  5,
		graph:         g,
		node:          cameraNode,
		goalTarget:    target,
	}

	local, _ := g.LocalTransform(cameraNode)
	oc.goal = sphericalFromOffset(local.Position.Sub(target))
	oc.clampGoal()
	oc.current = oc.goal

	return oc

}

// Node returns the camera Node being moved.
func (oc *OrbitControls) Node() NodeID {
	return oc.node
}

// PolarRange returns the effective polar angle limits after GroundPlane and the pole margin are applied.
func (oc *OrbitControls) PolarRange() (min, max float64) {
	min = math.Max(oc.MinPolarAngle, polarEpsilon)
	max = math.Min(oc.MaxPolarAngle, math.Pi-polarEpsilon)
	if oc.GroundPlane {
		max = math.Min(max, math.Pi/2)
	}
	if min > max {
		min = max
	}
	return
}

func (oc *OrbitControls) distanceRange() (min, max float64) {
	min = math.Max(oc.MinDistance, 1e-6)
	max = oc.MaxDistance
	if max < min {
		max = min
	}
	return
}

func (oc *OrbitControls) clampGoal() {
	oc.goal = oc.clampSpherical(oc.goal)
}

func (oc *OrbitControls) clampSpherical(s spherical) spherical {
	minPolar, maxPolar := oc.PolarRange()
	s.polar = clamp(s.polar, minPolar, maxPolar)
	minDist, maxDist := oc.distanceRange()
	s.radius = clamp(s.radius, minDist, maxDist)
	return s
}

// SetTarget moves the orbit target straight to target, without damping.
func (oc *OrbitControls) SetTarget(target mgl64.Vec3) {
	oc.Target = target
	oc.goalTarget = target
}

// Rotate orbits the goal by a pointer drag of dx, dy pixels. Non-finite deltas are ignored.
func (oc *OrbitControls) Rotate(dx, dy float64) {
	if !isFinite(dx) || !isFinite(dy) {
		return
	}
	oc.goal.azimuth -= dx * oc.RotateSpeed
	oc.goal.polar -= dy * oc.RotateSpeed
	oc.clampGoal()
}

// Dolly moves the goal towards (positive delta) or away from (negative delta) the target.
func (oc *OrbitControls) Dolly(delta float64) {
	if !isFinite(delta) {
		return
	}
	oc.goal.radius *= math.Pow(oc.ZoomSpeed, delta)
	oc.clampGoal()
}

// Pan moves the target by a pointer drag of dx, dy pixels in the camera's view plane.
func (oc *OrbitControls) Pan(dx, dy float64) {
	if !isFinite(dx) || !isFinite(dy) {
		return
	}
	right := mgl64.Vec3{math.Cos(oc.goal.azimuth), 0, -math.Sin(oc.goal.azimuth)}
	up := oc.goal.offset().Normalize().Cross(right)
	scale := oc.PanSpeed * oc.goal.radius
	oc.goalTarget = oc.goalTarget.Add(right.Mul(-dx * scale)).Add(up.Mul(dy * scale))
}

// PointerDrag rotates with the primary button, pans with the secondary button, and dollies with the middle button.
func (oc *OrbitControls) PointerDrag(button PointerButton, dx, dy float64) {
	switch button {
	case PointerPrimary:
		oc.Rotate(dx, dy)
	case PointerSecondary:
		oc.Pan(dx, dy)
	case PointerMiddle:
		oc.Dolly(-dy * 0.05)
	}
}

// Wheel dollies by the wheel delta.
func (oc *OrbitControls) Wheel(delta float64) {
	oc.Dolly(delta)
}

// Polar returns the camera's current polar angle, in radians from +Y.
func (oc *OrbitControls) Polar() float64 {
	return oc.current.polar
}

// Azimuth returns the camera's current azimuth, in radians around +Y from +Z.
func (oc *OrbitControls) Azimuth() float64 {
	return oc.current.azimuth
}

// Distance returns the camera's current distance from the target.
func (oc *OrbitControls) Distance() float64 {
	return oc.current.radius
}

// GoalPolar returns the polar angle the camera is moving towards.
func (oc *OrbitControls) GoalPolar() float64 {
	return oc.goal.polar
}

// Update moves the camera towards the goal (or onto it, without damping), then places and aims the camera Node.
func (oc *OrbitControls) Update(fc *FrameContext) error {

	oc.clampGoal()

	if oc.EnableDamping && fc.Delta >= 0 {
		alpha := 1 - math.Exp(-oc.DampingDecay*fc.Delta)
		oc.current.radius += (oc.goal.radius - oc.current.radius) * alpha
		oc.current.polar += (oc.goal.polar - oc.current.polar) * alpha
		oc.current.azimuth += (oc.goal.azimuth - oc.current.azimuth) * alpha
		oc.Target = oc.Target.Add(oc.goalTarget.Sub(oc.Target).Mul(alpha))
	} else {
		oc.current = oc.goal
		oc.Target = oc.goalTarget
	}

	oc.current = oc.clampSpherical(oc.current)

	if err := oc.graph.SetLocalPosition(oc.node, oc.Target.Add(oc.current.offset())); err != nil {
		return err
	}

	return oc.graph.LookAt(oc.node, oc.Target, WorldUp)

}

// FreeCam is a freely moving first-person camera: pointer drags tilt and rotate it, and Move walks it around.
type FreeCam struct {
	Tilt        float64 // Rotation about X, in radians; clamped to just short of straight up or down.
	Rotate      float64 // Rotation about Y, in radians.
	Sensitivity float64 // Radians per pixel of drag.
	MoveSpeed   float64 // World units per second.

	graph *Graph
	node  NodeID
	move  mgl64.Vec3
}

// NewFreeCam creates a FreeCam driving the given camera Node.
func NewFreeCam(g *Graph, cameraNode NodeID) *FreeCam {
	return &FreeCam{
		Sensitivity: 0.005,
		MoveSpeed:   3,
		graph:       g,
		node:        cameraNode,
	}
}

// Move sets the movement intent for the next Update: forward, right, and up, each usually in -1..1.
func (cc *FreeCam) Move(forward, right, up float64) {
	cc.move = mgl64.Vec3{right, up, -forward}
}

// PointerDrag tilts and rotates the camera.
func (cc *FreeCam) PointerDrag(button PointerButton, dx, dy float64) {
	if !isFinite(dx) || !isFinite(dy) {
		return
	}
	cc.Tilt -= dy * cc.Sensitivity
	cc.Rotate -= dx * cc.Sensitivity
	cc.Tilt = clamp(cc.Tilt, -math.Pi/2+0.1, math.Pi/2-0.1)
}

// Wheel does nothing for a FreeCam.
func (cc *FreeCam) Wheel(delta float64) {}

// Update applies the tilt and rotation, and moves the camera along its own axes.
func (cc *FreeCam) Update(fc *FrameContext) error {

	// Rotate about Y first, then tilt about the rotated X.
	rotation := NewEulerOrdered(cc.Tilt, cc.Rotate, 0, EulerYXZ)
	if err := cc.graph.SetLocalRotation(cc.node, rotation); err != nil {
		return err
	}

	if cc.move != (mgl64.Vec3{}) && fc.Delta > 0 {
		// Walking stays level; only the rotation about Y steers.
		heading := mgl64.HomogRotate3DY(cc.Rotate)
		step := heading.Mul4x1(cc.move.Vec4(0)).Vec3().Mul(cc.MoveSpeed * fc.Delta)
		if err := cc.graph.Move(cc.node, step); err != nil {
			return err
		}
		cc.move = mgl64.Vec3{}
	}

	return nil

}

package framekit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ProjectionKind is the variant of a Camera's projection, selected when the Camera is created.
type ProjectionKind int

const (
	ProjectionPerspective  ProjectionKind = iota // ProjectionPerspective is a perspective projection (with a vertical field of view).
	ProjectionOrthographic                       // ProjectionOrthographic is an orthographic projection (with six clip planes).
)

// Camera represents a camera (where you look from). A Camera lives on a Node of kind NodeKindCamera; the Node's world
// transform is the Camera's placement, and the Camera looks down its -Z axis.
//
// All of the Camera's parameter setters validate their input and recompute the projection matrix straight away, so the
// projection can't be left stale.
type Camera struct {
	graph *Graph
	node  NodeID
	kind  ProjectionKind

	fieldOfView float64 // Vertical field of view in degrees for a perspective projection camera
	aspect      float64
	near, far   float64 // The near and far clipping plane. Near defaults to 0.1, Far to 100.

	left, right, top, bottom float64 // Orthographic bounds
	zoom                     float64

	projection        mgl64.Mat4
	projectionUpdates int
}

// NewPerspectiveCamera creates a new, orphaned camera Node with a perspective projection. fieldOfView is the vertical
// field of view in degrees.
func (g *Graph) NewPerspectiveCamera(name string, fieldOfView, aspect, near, far float64) (NodeID, *Camera, error) {

	camera := &Camera{
		graph:       g,
		kind:        ProjectionPerspective,
		fieldOfView: fieldOfView,
		aspect:      aspect,
		near:        near,
		far:         far,
		zoom:        1,
	}

	if err := camera.validate(); err != nil {
		return NodeID{}, nil, err
	}

	camera.node = g.alloc(node{name: name, kind: NodeKindCamera, camera: camera})
	camera.UpdateProjection()

	return camera.node, camera, nil

}

// NewOrthographicCamera creates a new, orphaned camera Node with an orthographic projection bounded by the given planes
// (in camera space).
func (g *Graph) NewOrthographicCamera(name string, left, right, top, bottom, near, far float64) (NodeID, *Camera, error) {

	camera := &Camera{
		graph:  g,
		kind:   ProjectionOrthographic,
		left:   left,
		right:  right,
		top:    top,
		bottom: bottom,
		near:   near,
		far:    far,
		zoom:   1,
	}

	if top != bottom {
		camera.aspect = math.Abs((right - left) / (top - bottom))
	}

	if err := camera.validate(); err != nil {
		return NodeID{}, nil, err
	}

	camera.node = g.alloc(node{name: name, kind: NodeKindCamera, camera: camera})
	camera.UpdateProjection()

	return camera.node, camera, nil

}

func (camera *Camera) validate() error {

	for _, v := range []float64{camera.fieldOfView, camera.aspect, camera.near, camera.far, camera.left, camera.right, camera.top, camera.bottom, camera.zoom} {
		if !isFinite(v) {
			return errors.Wrap(ErrInvalidProjection, "parameters must be finite")
		}
	}

	if camera.near <= 0 || camera.far <= camera.near {
		return errors.Wrapf(ErrInvalidProjection, "clip planes must satisfy 0 < near < far (near %v, far %v)", camera.near, camera.far)
	}

	if camera.aspect <= 0 {
		return errors.Wrapf(ErrInvalidProjection, "aspect ratio must be positive (got %v)", camera.aspect)
	}

	if camera.zoom <= 0 {
		return errors.Wrapf(ErrInvalidProjection, "zoom must be positive (got %v)", camera.zoom)
	}

	switch camera.kind {
	case ProjectionPerspective:
		if camera.fieldOfView <= 0 || camera.fieldOfView >= 180 {
			return errors.Wrapf(ErrInvalidProjection, "field of view must be between 0 and 180 degrees (got %v)", camera.fieldOfView)
		}
	case ProjectionOrthographic:
		if camera.left == camera.right || camera.top == camera.bottom {
			return errors.Wrap(ErrInvalidProjection, "orthographic bounds are empty")
		}
	}

	return nil

}

// set applies a parameter change to a copy of the Camera, validates the copy, and only then commits it and recomputes the
// projection. If the change leaves the parameters as they were, nothing is recomputed.
func (camera *Camera) set(change func(c *Camera)) error {
	next := *camera
	change(&next)
	if err := next.validate(); err != nil {
		return err
	}
	if next.sameParameters(camera) {
		return nil
	}
	next.projectionUpdates = camera.projectionUpdates
	*camera = next
	camera.UpdateProjection()
	return nil
}

func (camera *Camera) sameParameters(other *Camera) bool {
	return camera.fieldOfView == other.fieldOfView &&
		camera.aspect == other.aspect &&
		camera.near == other.near &&
		camera.far == other.far &&
		camera.left == other.left &&
		camera.right == other.right &&
		camera.top == other.top &&
		camera.bottom == other.bottom &&
		camera.zoom == other.zoom
}

// Kind returns the Camera's projection variant.
func (camera *Camera) Kind() ProjectionKind {
	return camera.kind
}

// Node returns the Node the Camera is attached to.
func (camera *Camera) Node() NodeID {
	return camera.node
}

// Graph returns the Graph the Camera's Node lives in.
func (camera *Camera) Graph() *Graph {
	return camera.graph
}

// FieldOfView returns the vertical field of view in degrees.
func (camera *Camera) FieldOfView() float64 {
	return camera.fieldOfView
}

// SetFieldOfView sets the vertical field of the view of the camera in degrees.
func (camera *Camera) SetFieldOfView(fovY float64) error {
	return camera.set(func(c *Camera) { c.fieldOfView = fovY })
}

// Aspect returns the camera's aspect ratio (width / height).
func (camera *Camera) Aspect() float64 {
	return camera.aspect
}

// SetAspect sets the camera's aspect ratio (width / height). Orthographic cameras keep their vertical extent and widen or
// narrow horizontally.
func (camera *Camera) SetAspect(aspect float64) error {
	return camera.set(func(c *Camera) { c.aspect = aspect })
}

// Near returns the near plane of a camera.
func (camera *Camera) Near() float64 {
	return camera.near
}

// SetNear sets the near plane of a camera.
func (camera *Camera) SetNear(near float64) error {
	return camera.set(func(c *Camera) { c.near = near })
}

// Far returns the far plane of a camera.
func (camera *Camera) Far() float64 {
	return camera.far
}

// SetFar sets the far plane of the camera.
func (camera *Camera) SetFar(far float64) error {
	return camera.set(func(c *Camera) { c.far = far })
}

// SetClipPlanes sets both the near and far planes at once, so they can be moved past each other in one step.
func (camera *Camera) SetClipPlanes(near, far float64) error {
	return camera.set(func(c *Camera) {
		c.near = near
		c.far = far
	})
}

// Bounds returns the orthographic bounds of the camera, as given at creation or through SetBounds.
func (camera *Camera) Bounds() (left, right, top, bottom float64) {
	return camera.left, camera.right, camera.top, camera.bottom
}

// SetBounds sets the orthographic bounds of the camera. The aspect ratio follows the new bounds.
func (camera *Camera) SetBounds(left, right, top, bottom float64) error {
	return camera.set(func(c *Camera) {
		c.left, c.right, c.top, c.bottom = left, right, top, bottom
		if top != bottom {
			c.aspect = math.Abs((right - left) / (top - bottom))
		}
	})
}

// Zoom returns the camera's zoom factor.
func (camera *Camera) Zoom() float64 {
	return camera.zoom
}

// SetZoom sets the camera's zoom factor. For perspective cameras this narrows the field of view; for orthographic
// cameras it shrinks the bounds.
func (camera *Camera) SetZoom(zoom float64) error {
	return camera.set(func(c *Camera) { c.zoom = zoom })
}

// Project returns the projection matrix the Camera would have at the given aspect ratio, without changing the Camera.
func (camera *Camera) Project(aspect float64) mgl64.Mat4 {

	if camera.kind == ProjectionPerspective {
		fov := 2 * math.Atan(math.Tan(mgl64.DegToRad(camera.fieldOfView)/2)/camera.zoom)
		return mgl64.Perspective(fov, aspect, camera.near, camera.far)
	}

	cx := (camera.left + camera.right) / 2
	cy := (camera.top + camera.bottom) / 2
	halfH := (camera.top - camera.bottom) / 2 / camera.zoom
	halfW := math.Abs(halfH) * aspect
	if camera.right < camera.left {
		halfW = -halfW
	}

	return mgl64.Ortho(cx-halfW, cx+halfW, cy-halfH, cy+halfH, camera.near, camera.far)

}

// UpdateProjection recomputes the cached projection matrix from the current parameters. Setters call it automatically.
func (camera *Camera) UpdateProjection() {
	camera.projection = camera.Project(camera.aspect)
	camera.projectionUpdates++
}

// ProjectionUpdates returns how many times the projection matrix has been recomputed.
func (camera *Camera) ProjectionUpdates() int {
	return camera.projectionUpdates
}

// ProjectionMatrix returns the Camera's cached projection matrix.
func (camera *Camera) ProjectionMatrix() mgl64.Mat4 {
	return camera.projection
}

// ViewMatrix returns the Camera's view matrix (the inverse of its Node's world transform).
func (camera *Camera) ViewMatrix() mgl64.Mat4 {
	world, err := camera.graph.WorldTransform(camera.node)
	if err != nil {
		return mgl64.Ident4()
	}
	return world.Inv()
}

// ViewProjection returns the combined projection * view matrix.
func (camera *Camera) ViewProjection() mgl64.Mat4 {
	return camera.projection.Mul4(camera.ViewMatrix())
}

// WorldToClip transforms a 3D position in the world to clip coordinates (before the perspective divide).
func (camera *Camera) WorldToClip(point mgl64.Vec3) mgl64.Vec4 {
	return camera.ViewProjection().Mul4x1(point.Vec4(1))
}

// WorldToScreen transforms a 3D position in the world to a position onscreen in pixels for a surface of the given size,
// with +Y pointing down. The Z coordinate is the normalized depth (-1 at the near plane, 1 at the far plane).
// ok is false if the point is behind the camera.
func (camera *Camera) WorldToScreen(point mgl64.Vec3, width, height int) (screen mgl64.Vec3, ok bool) {
	clip := camera.WorldToClip(point)
	if clip[3] <= 0 {
		return mgl64.Vec3{}, false
	}
	return ClipToScreen(clip, float64(width), float64(height)), true
}

// ClipToScreen performs the perspective divide on a clip-space position and maps it to pixels on a surface of the given size.
func ClipToScreen(clip mgl64.Vec4, width, height float64) mgl64.Vec3 {
	ndc := clip.Vec3().Mul(1 / clip[3])
	return mgl64.Vec3{
		(ndc[0] + 1) / 2 * width,
		(1 - ndc[1]) / 2 * height,
		ndc[2],
	}
}

// PointInFrustum returns true if the point is visible through the camera frustum.
func (camera *Camera) PointInFrustum(point mgl64.Vec3) bool {
	clip := camera.WorldToClip(point)
	w := clip[3]
	if w <= 0 {
		return false
	}
	for i := 0; i < 3; i++ {
		if clip[i] < -w || clip[i] > w {
			return false
		}
	}
	return true
}

// SphereInFrustum returns true if the world-space sphere would be at least partially visible through the camera frustum.
func (camera *Camera) SphereInFrustum(center mgl64.Vec3, radius float64) bool {
	for _, plane := range frustumPlanes(camera.ViewProjection()) {
		if plane.Vec3().Dot(center)+plane[3] < -radius {
			return false
		}
	}
	return true
}

// frustumPlanes extracts the six normalized clip planes (left, right, bottom, top, near, far) from a view-projection matrix.
// A point p is inside a plane when dot(plane.xyz, p) + plane.w >= 0.
func frustumPlanes(vp mgl64.Mat4) [6]mgl64.Vec4 {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	planes := [6]mgl64.Vec4{
		r3.Add(r0),
		r3.Sub(r0),
		r3.Add(r1),
		r3.Sub(r1),
		r3.Add(r2),
		r3.Sub(r2),
	}
	for i, p := range planes {
		if l := p.Vec3().Len(); l > 0 {
			planes[i] = p.Mul(1 / l)
		}
	}
	return planes
}

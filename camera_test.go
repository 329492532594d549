package framekit

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCamera(t *testing.T) (*Graph, NodeID, *Camera) {
	g := NewGraph("scene")
	id, camera, err := g.NewPerspectiveCamera("Camera", 75, 800.0/600.0, 0.1, 100)
	require.NoError(t, err)
	require.NoError(t, g.AddChild(g.Root(), id))
	require.NoError(t, g.SetLocalPosition(id, mgl64.Vec3{0, 0, 3}))
	return g, id, camera
}

func TestNewCameraRejectsInvalidProjection(t *testing.T) {

	g := NewGraph("scene")
	before := g.Len()

	cases := []struct {
		name                   string
		fov, aspect, near, far float64
	}{
		{"near is zero", 75, 1, 0, 100},
		{"far before near", 75, 1, 10, 5},
		{"no aspect", 75, 0, 0.1, 100},
		{"flat fov", 0, 1, 0.1, 100},
		{"fov too wide", 180, 1, 0.1, 100},
		{"nan", math.NaN(), 1, 0.1, 100},
	}

	for _, c := range cases {
		_, camera, err := g.NewPerspectiveCamera("Camera", c.fov, c.aspect, c.near, c.far)
		assert.True(t, errors.Is(err, ErrInvalidProjection), c.name)
		assert.Nil(t, camera, c.name)
	}

	_, _, err := g.NewOrthographicCamera("Ortho", 1, 1, 1, -1, 0.1, 10)
	assert.True(t, errors.Is(err, ErrInvalidProjection))

	assert.Equal(t, before, g.Len(), "failed cameras don't leave nodes behind")

}

func TestCameraSettersValidateBeforeCommitting(t *testing.T) {

	_, _, camera := newTestCamera(t)
	projection := camera.ProjectionMatrix()
	updates := camera.ProjectionUpdates()

	assert.True(t, errors.Is(camera.SetNear(-1), ErrInvalidProjection))
	assert.True(t, errors.Is(camera.SetClipPlanes(5, 1), ErrInvalidProjection))
	assert.True(t, errors.Is(camera.SetFieldOfView(200), ErrInvalidProjection))
	assert.True(t, errors.Is(camera.SetAspect(-2), ErrInvalidProjection))
	assert.True(t, errors.Is(camera.SetZoom(0), ErrInvalidProjection))

	assert.Equal(t, 0.1, camera.Near())
	assert.Equal(t, 100.0, camera.Far())
	assert.Equal(t, 75.0, camera.FieldOfView())
	assert.Equal(t, projection, camera.ProjectionMatrix())
	assert.Equal(t, updates, camera.ProjectionUpdates())

}

func TestCameraSettersRecomputeProjection(t *testing.T) {

	_, _, camera := newTestCamera(t)
	updates := camera.ProjectionUpdates()

	require.NoError(t, camera.SetFieldOfView(60))
	assert.Equal(t, updates+1, camera.ProjectionUpdates())
	assert.True(t, camera.ProjectionMatrix().ApproxEqual(mgl64.Perspective(mgl64.DegToRad(60), 800.0/600.0, 0.1, 100)))

	require.NoError(t, camera.SetFieldOfView(60))
	assert.Equal(t, updates+1, camera.ProjectionUpdates(), "setting the same value again does nothing")

	require.NoError(t, camera.SetZoom(2))
	assert.Equal(t, updates+2, camera.ProjectionUpdates())

}

func TestCameraProjectsPoints(t *testing.T) {

	g, id, camera := newTestCamera(t)

	screen, ok := camera.WorldToScreen(mgl64.Vec3{}, 800, 600)
	require.True(t, ok)
	assert.InDelta(t, 400, screen[0], 1e-9)
	assert.InDelta(t, 300, screen[1], 1e-9)

	above, ok := camera.WorldToScreen(mgl64.Vec3{0, 1, 0}, 800, 600)
	require.True(t, ok)
	assert.Less(t, above[1], 300.0, "screen Y points down")

	_, ok = camera.WorldToScreen(mgl64.Vec3{0, 0, 10}, 800, 600)
	assert.False(t, ok, "behind the camera")

	assert.True(t, camera.PointInFrustum(mgl64.Vec3{}))
	assert.False(t, camera.PointInFrustum(mgl64.Vec3{0, 0, -200}), "past the far plane")
	assert.False(t, camera.SphereInFrustum(mgl64.Vec3{100, 0, 0}, 1))
	assert.True(t, camera.SphereInFrustum(mgl64.Vec3{0, 0, -50}, 1))

	// Moving the node moves the view.
	require.NoError(t, g.SetLocalPosition(id, mgl64.Vec3{5, 0, 3}))
	screen, _ = camera.WorldToScreen(mgl64.Vec3{}, 800, 600)
	assert.Less(t, screen[0], 400.0)

}

func TestOrthographicZoom(t *testing.T) {

	g := NewGraph("scene")
	_, camera, err := g.NewOrthographicCamera("Ortho", -2, 2, 1, -1, 0.1, 10)
	require.NoError(t, err)
	assert.Equal(t, ProjectionOrthographic, camera.Kind())
	assert.Equal(t, 2.0, camera.Aspect())

	assert.True(t, camera.ProjectionMatrix().ApproxEqual(mgl64.Ortho(-2, 2, -1, 1, 0.1, 10)))

	require.NoError(t, camera.SetZoom(2))
	assert.True(t, camera.ProjectionMatrix().ApproxEqual(mgl64.Ortho(-1, 1, -0.5, 0.5, 0.1, 10)))

	// The bounds follow the aspect ratio, keeping the height.
	require.NoError(t, camera.SetAspect(1))
	assert.True(t, camera.ProjectionMatrix().ApproxEqual(mgl64.Ortho(-0.5, 0.5, -0.5, 0.5, 0.1, 10)))

}

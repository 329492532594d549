package framekit

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func frameAt(g *Graph, elapsed float64) *FrameContext {
	return &FrameContext{Graph: g, Elapsed: elapsed}
}

func TestSpin(t *testing.T) {

	g := NewGraph("scene")
	cube := g.NewNode("Cube")
	require.NoError(t, g.AddChild(g.Root(), cube))
	require.NoError(t, g.SetLocalRotation(cube, NewEulerOrdered(0.25, 0.5, 0, EulerYXZ)))

	spin := Spin(g, cube, 1, 2)

	spin.Animate(frameAt(g, 1.5))
	local, _ := g.LocalTransform(cube)
	assert.InDelta(t, 3.5, local.Rotation.Y, 1e-12)
	assert.Equal(t, 0.25, local.Rotation.X, "other axes are left alone")
	assert.Equal(t, EulerYXZ, local.Rotation.Order)

	// The same time gives the same angle, however often it's sampled.
	spin.Animate(frameAt(g, 0.2))
	spin.Animate(frameAt(g, 1.5))
	local, _ = g.LocalTransform(cube)
	assert.InDelta(t, 3.5, local.Rotation.Y, 1e-12)

	rate := 1.0
	spinRate := SpinRate(g, cube, 0, &rate)
	spinRate.Animate(frameAt(g, 2))
	local, _ = g.LocalTransform(cube)
	assert.InDelta(t, 2.25, local.Rotation.X, 1e-12)
	rate = -1
	spinRate.Animate(frameAt(g, 2))
	local, _ = g.LocalTransform(cube)
	assert.InDelta(t, -1.75, local.Rotation.X, 1e-12)

}

func TestTweenModes(t *testing.T) {

	once := NewTween(0, 10, 2, nil, TweenOnce, nil)
	assert.InDelta(t, 0, once.Value(-1), 1e-6)
	assert.InDelta(t, 5, once.Value(1), 1e-6)
	assert.InDelta(t, 10, once.Value(5), 1e-6)

	loop := NewTween(0, 10, 2, ease.Linear, TweenLoop, nil)
	assert.InDelta(t, 5, loop.Value(3), 1e-6)

	pingPong := NewTween(0, 10, 2, ease.Linear, TweenPingPong, nil)
	assert.InDelta(t, 7.5, pingPong.Value(1.5), 1e-6)
	assert.InDelta(t, 5, pingPong.Value(3), 1e-6)
	assert.InDelta(t, 0, pingPong.Value(4), 1e-6)

	delayed := NewTween(0, 10, 2, ease.Linear, TweenOnce, nil)
	delayed.Start = 10
	assert.InDelta(t, 0, delayed.Value(5), 1e-6)
	assert.InDelta(t, 5, delayed.Value(11), 1e-6)

}

func TestTweenPosition(t *testing.T) {

	g := NewGraph("scene")
	cube := g.NewNode("Cube")
	require.NoError(t, g.SetLocalPosition(cube, mgl64.Vec3{1, 2, 3}))

	tween := NewTween(0, 4, 1, ease.Linear, TweenOnce, TweenPosition(cube, 1))
	tween.Animate(frameAt(g, 0.5))

	local, _ := g.LocalTransform(cube)
	assert.InDelta(t, 2, local.Position[1], 1e-6)
	assert.Equal(t, 1.0, local.Position[0])
	assert.Equal(t, 3.0, local.Position[2])

}

func TestAnimationTrack(t *testing.T) {

	g := NewGraph("scene")
	cube := g.NewNode("Cube")

	track := &AnimationTrack{Node: cube, Type: TrackTypeScale}
	track.AddKeyframe(0, mgl64.Vec3{1, 1, 1})
	track.AddKeyframe(2, mgl64.Vec3{3, 1, 1})

	assert.Equal(t, mgl64.Vec3{2, 1, 1}, track.ValueAt(1))
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, track.ValueAt(-5))
	assert.Equal(t, mgl64.Vec3{3, 1, 1}, track.ValueAt(7))

	track.Loop = true
	assert.Equal(t, mgl64.Vec3{2, 1, 1}, track.ValueAt(5))

	track.Animate(frameAt(g, 1))
	local, _ := g.LocalTransform(cube)
	assert.Equal(t, mgl64.Vec3{2, 1, 1}, local.Scale)

	assert.Equal(t, mgl64.Vec3{}, (&AnimationTrack{}).ValueAt(1))

}

func TestFollow(t *testing.T) {

	g, camNode, _ := newTestCamera(t)
	cube := g.NewNode("Cube")
	require.NoError(t, g.AddChild(g.Root(), cube))
	require.NoError(t, g.SetLocalPosition(cube, mgl64.Vec3{0.7, -0.6, 1}))

	Follow(camNode, cube).Animate(frameAt(g, 0))

	world, err := g.WorldTransform(camNode)
	require.NoError(t, err)
	forward := world.Mul4x1(WorldForward.Vec4(0)).Vec3()
	expected := mgl64.Vec3{0.7, -0.6, -2}.Normalize()
	assert.True(t, forward.ApproxEqualThreshold(expected, 1e-9))

	// A destroyed target leaves the camera where it was.
	require.NoError(t, g.Destroy(cube))
	before, _ := g.LocalTransform(camNode)
	Follow(camNode, cube).Animate(frameAt(g, 1))
	after, _ := g.LocalTransform(camNode)
	assert.Equal(t, before, after)

}

func TestCircularMotion(t *testing.T) {
	g := NewGraph("scene")
	cube := g.NewNode("Cube")
	CircularMotion(cube, mgl64.Vec3{1, 1, 1}, 2, 0.5).Animate(frameAt(g, math.Pi))
	local, _ := g.LocalTransform(cube)
	assert.True(t, local.Position.ApproxEqualThreshold(mgl64.Vec3{3, 1, 1}, 1e-12))
}

func TestOrbitFieldsAreReadEachFrame(t *testing.T) {
	g := NewGraph("scene")
	cube := g.NewNode("Cube")
	orbit := CircularMotion(cube, mgl64.Vec3{0, 0, 1}, 1, 1)

	orbit.Animate(frameAt(g, 0))
	local, _ := g.LocalTransform(cube)
	assert.True(t, local.Position.ApproxEqualThreshold(mgl64.Vec3{0, 1, 1}, 1e-12))

	orbit.Center = mgl64.Vec3{2, 0, -1}
	orbit.Radius = 3
	orbit.Animate(frameAt(g, 0))
	local, _ = g.LocalTransform(cube)
	assert.True(t, local.Position.ApproxEqualThreshold(mgl64.Vec3{2, 3, -1}, 1e-12))
}

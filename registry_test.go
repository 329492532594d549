package framekit

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryClampsAndSnaps(t *testing.T) {

	reg := NewPropertyRegistry(nil)
	speed := 1.0
	require.NoError(t, reg.BindFloatVar("speed", &speed, WithRange(0, 10), WithStep(0.5)))

	require.NoError(t, reg.Edit("speed", 42))
	assert.Equal(t, 1.0, speed, "edits wait for Flush")
	assert.Equal(t, 1, reg.Flush())
	assert.Equal(t, 10.0, speed)

	require.NoError(t, reg.Edit("/speed/", "3.3"))
	reg.Flush()
	assert.Equal(t, 3.5, speed, "snapped to the step")

	require.NoError(t, reg.Edit("speed", -1))
	reg.Flush()
	assert.Equal(t, 0.0, speed)

	value, ok := reg.Value("speed")
	assert.True(t, ok)
	assert.Equal(t, 0.0, value)

}

func TestRegistryCoalescesEdits(t *testing.T) {

	reg := NewPropertyRegistry(nil)
	writes := 0
	value := 0.0
	require.NoError(t, reg.BindFloat("value", func() float64 { return value }, func(v float64) {
		writes++
		value = v
	}))

	for i := 1; i <= 5; i++ {
		require.NoError(t, reg.Edit("value", i))
	}
	assert.Equal(t, 1, reg.Pending())

	assert.Equal(t, 1, reg.Flush())
	assert.Equal(t, 1, writes, "written exactly once")
	assert.Equal(t, 5.0, value, "the newest edit wins")
	assert.Equal(t, 1, reg.Writes())

	assert.Equal(t, 0, reg.Flush(), "nothing pending")
	assert.Equal(t, 1, writes)

}

func TestRegistryRejectsBadEdits(t *testing.T) {

	reg := NewPropertyRegistry(nil)
	flag := false
	count := 0
	mode := "fast"
	require.NoError(t, reg.BindBool("flag", func() bool { return flag }, func(v bool) { flag = v }))
	require.NoError(t, reg.BindInt("count", func() int { return count }, func(v int) { count = v }, WithRange(0, 5)))
	require.NoError(t, reg.BindChoice("mode", []string{"fast", "slow"}, func() string { return mode }, func(v string) { mode = v }))

	assert.Error(t, reg.Edit("missing", 1))
	assert.Error(t, reg.Edit("flag", 3))
	assert.Error(t, reg.Edit("count", "many"))
	assert.Error(t, reg.Edit("mode", 2))
	assert.Equal(t, 0, reg.Pending())

	// Unknown choices get as far as Flush, which ignores them.
	require.NoError(t, reg.Edit("mode", "sideways"))
	assert.Equal(t, 0, reg.Flush())
	assert.Equal(t, "fast", mode)

	require.NoError(t, reg.Edit("flag", "true"))
	require.NoError(t, reg.Edit("count", 3.7))
	require.NoError(t, reg.Edit("mode", "slow"))
	assert.Equal(t, 3, reg.Flush())
	assert.True(t, flag)
	assert.Equal(t, 4, count)
	assert.Equal(t, "slow", mode)

	assert.Error(t, reg.BindBool("flag", func() bool { return flag }, func(v bool) {}), "already bound")
	assert.Error(t, reg.BindChoice("none", nil, func() string { return "" }, func(string) {}))
	assert.Error(t, reg.BindFloatVar("/", &[]float64{0}[0]))

}

func TestRegistryClampsHugeInts(t *testing.T) {

	reg := NewPropertyRegistry(nil)

	count, free := 5, 0
	require.NoError(t, reg.BindInt("count", func() int { return count }, func(v int) { count = v }, WithRange(0, 10)))
	require.NoError(t, reg.BindInt("free", func() int { return free }, func(v int) { free = v }))

	require.NoError(t, reg.Edit("count", 1e300))
	reg.Flush()
	assert.Equal(t, 10, count)

	require.NoError(t, reg.Edit("count", "9.3e18"))
	reg.Flush()
	assert.Equal(t, 10, count)

	require.NoError(t, reg.Edit("count", -1e300))
	reg.Flush()
	assert.Equal(t, 0, count)

	require.NoError(t, reg.Edit("free", 1e300))
	reg.Flush()
	assert.Equal(t, math.MaxInt, free)

	require.NoError(t, reg.Edit("free", -1e300))
	reg.Flush()
	assert.Equal(t, math.MinInt, free)

}

func TestRegistryColours(t *testing.T) {

	reg := NewPropertyRegistry(nil)
	material := NewBasicMaterial("Red", NewColor(1, 0, 0, 1))
	require.NoError(t, reg.BindMaterialColor(material, "cube/color"))

	require.NoError(t, reg.Edit("cube/color", "#00ff00"))
	reg.Flush()
	assert.Equal(t, NewColor(0, 1, 0, 1), material.Color)

	require.NoError(t, reg.Edit("cube/color", []any{0.0, 0.0, 2.0}))
	reg.Flush()
	assert.Equal(t, NewColor(0, 0, 1, 1), material.Color, "components are clamped; alpha defaults to 1")

	assert.Error(t, reg.Edit("cube/color", []any{1.0}))
	assert.Error(t, reg.Edit("cube/color", "not a colour"))

}

func TestRegistryNodeBindings(t *testing.T) {

	g := NewGraph("scene")
	cube := g.NewRenderable("Cube", NewCubeGeometry(1, 1, 1), NewBasicMaterial("Red", NewColor(1, 0, 0, 1)))
	require.NoError(t, g.AddChild(g.Root(), cube))

	reg := NewPropertyRegistry(nil)
	require.NoError(t, reg.BindNodePosition(g, cube, "cube/position", WithRange(-5, 5)))
	require.NoError(t, reg.BindNodeRotation(g, cube, "cube/rotation"))
	require.NoError(t, reg.BindNodeScale(g, cube, "cube/scale"))
	require.NoError(t, reg.BindNodeVisible(g, cube, "cube/visible"))

	assert.Equal(t, []string{
		"cube/position/x", "cube/position/y", "cube/position/z",
		"cube/rotation/x", "cube/rotation/y", "cube/rotation/z",
		"cube/scale/x", "cube/scale/y", "cube/scale/z",
		"cube/visible",
	}, pathsInOrder(reg))

	require.NoError(t, reg.Edit("cube/position/x", 0.7))
	require.NoError(t, reg.Edit("cube/position/y", -60))
	require.NoError(t, reg.Edit("cube/rotation/y", 0.25))
	require.NoError(t, reg.Edit("cube/scale/z", 0))
	require.NoError(t, reg.Edit("cube/visible", false))
	reg.Flush()

	local, err := g.LocalTransform(cube)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{0.7, -5, 0}, local.Position)
	assert.Equal(t, 0.25, local.Rotation.Y)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, local.Scale, "degenerate scale edits are dropped")
	assert.False(t, g.Visible(cube))

	snapshot := reg.Snapshot()
	assert.Equal(t, -5.0, snapshot["cube/position/y"])
	assert.Equal(t, false, snapshot["cube/visible"])

}

func pathsInOrder(reg *PropertyRegistry) []string {
	out := []string{}
	for _, desc := range reg.Descriptors() {
		out = append(out, desc.Path)
	}
	return out
}

func TestRegistryConcurrentEdits(t *testing.T) {

	reg := NewPropertyRegistry(nil)
	value := 0.0
	require.NoError(t, reg.BindFloatVar("value", &value))

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Edit("value", i)
				reg.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Flush())
	assert.GreaterOrEqual(t, value, 0.0)
	assert.Less(t, value, 8.0)

}

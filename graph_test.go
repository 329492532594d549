package framekit

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRoom builds Room/Desk/Cup under the root.
func buildRoom(t *testing.T) (g *Graph, room, desk, cup NodeID) {
	g = NewGraph("scene")
	room, desk, cup = g.NewGroup("Room"), g.NewGroup("Desk"), g.NewNode("Cup")
	require.NoError(t, g.AddChild(g.Root(), room))
	require.NoError(t, g.AddChild(room, desk))
	require.NoError(t, g.AddChild(desk, cup))
	return
}

func TestAddChildRejectsCycles(t *testing.T) {

	g, room, desk, cup := buildRoom(t)

	err := g.AddChild(cup, room)
	assert.True(t, errors.Is(err, ErrInvalidHierarchy))
	err = g.AddChild(desk, desk)
	assert.True(t, errors.Is(err, ErrInvalidHierarchy))
	err = g.AddChild(cup, g.Root())
	assert.True(t, errors.Is(err, ErrInvalidHierarchy))

	// Nothing moved.
	assert.Equal(t, room, g.Parent(desk))
	assert.Equal(t, desk, g.Parent(cup))
	assert.Equal(t, g.Root(), g.Parent(room))
	assert.Equal(t, "Room/Desk/Cup", g.Path(cup))

}

func TestAddChildReparents(t *testing.T) {

	g, room, desk, cup := buildRoom(t)

	moves := [][3]NodeID{}
	g.Callbacks.OnReparent = func(g *Graph, node, oldParent, newParent NodeID) {
		moves = append(moves, [3]NodeID{node, oldParent, newParent})
	}

	require.NoError(t, g.AddChild(room, cup))
	assert.Empty(t, g.Children(desk))
	assert.Equal(t, []NodeID{desk, cup}, g.Children(room))
	assert.Equal(t, [][3]NodeID{{cup, desk, room}}, moves)

	// Adding to the same parent again does nothing.
	require.NoError(t, g.AddChild(room, cup))
	assert.Len(t, moves, 1)

}

func TestRootIsFixed(t *testing.T) {

	g := NewGraph("scene")
	root := g.Root()

	assert.True(t, errors.Is(g.SetLocalPosition(root, mgl64.Vec3{1, 0, 0}), ErrInvalidHierarchy))
	assert.True(t, errors.Is(g.Remove(root), ErrInvalidHierarchy))
	assert.True(t, errors.Is(g.Destroy(root), ErrInvalidHierarchy))

	world, err := g.WorldTransform(root)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Ident4(), world)
	assert.Equal(t, "scene", g.NodeName(root))

}

func TestDegenerateScaleKeepsPriorTransform(t *testing.T) {

	g, room, _, _ := buildRoom(t)
	require.NoError(t, g.SetLocalTransform(room, mgl64.Vec3{1, 2, 3}, NewEuler(0, 0.5, 0), mgl64.Vec3{2, 2, 2}))

	err := g.SetLocalTransform(room, mgl64.Vec3{9, 9, 9}, NewEuler(1, 1, 1), mgl64.Vec3{1, 0, 1})
	assert.True(t, errors.Is(err, ErrDegenerateTransform))
	assert.True(t, errors.Is(g.SetLocalScale(room, mgl64.Vec3{1, 1, math.Inf(1)}), ErrDegenerateTransform))

	local, err := g.LocalTransform(room)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, local.Position)
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, local.Scale)
	assert.Equal(t, 0.5, local.Rotation.Y)

}

func TestWorldTransformComposesParents(t *testing.T) {

	g, room, desk, cup := buildRoom(t)

	require.NoError(t, g.SetLocalPosition(room, mgl64.Vec3{10, 0, 0}))
	require.NoError(t, g.SetLocalTransform(desk, mgl64.Vec3{0, 1, 0}, NewEuler(0, math.Pi/2, 0), mgl64.Vec3{2, 2, 2}))
	require.NoError(t, g.SetLocalPosition(cup, mgl64.Vec3{1, 0, 0}))

	// The cup's (1, 0, 0) is scaled to 2, turned to (0, 0, -2), and lifted onto the desk in the room.
	assert.True(t, g.WorldPosition(cup).ApproxEqualThreshold(mgl64.Vec3{10, 1, -2}, 1e-9), "got %v", g.WorldPosition(cup))

	// Orphans are placed by their own transform only.
	require.NoError(t, g.Remove(desk))
	assert.True(t, g.WorldPosition(cup).ApproxEqualThreshold(mgl64.Vec3{0, 1, -2}, 1e-9))

}

func TestDestroyStalesSubtree(t *testing.T) {

	g, room, desk, cup := buildRoom(t)
	before := g.Len()

	destroyed := []NodeID{}
	g.Callbacks.OnDestroy = func(g *Graph, node NodeID) {
		assert.True(t, g.Alive(node))
		destroyed = append(destroyed, node)
	}

	require.NoError(t, g.Destroy(desk))
	assert.Equal(t, []NodeID{cup, desk}, destroyed, "children go first")
	assert.Equal(t, before-2, g.Len())

	assert.False(t, g.Alive(desk))
	assert.False(t, g.Alive(cup))
	assert.True(t, errors.Is(g.SetLocalPosition(cup, mgl64.Vec3{}), ErrStaleNode))
	assert.Empty(t, g.Children(room))

	// Reused slots get a new generation, so the old IDs stay stale.
	again := g.NewNode("Again")
	assert.True(t, g.Alive(again))
	assert.False(t, g.Alive(cup))
	assert.False(t, g.Alive(desk))

}

func TestClearKeepsRoot(t *testing.T) {
	g, room, _, _ := buildRoom(t)
	g.Clear()
	assert.Equal(t, 1, g.Len())
	assert.False(t, g.Alive(room))
	assert.Empty(t, g.Children(g.Root()))
}

func TestGetAndPath(t *testing.T) {

	g, room, desk, cup := buildRoom(t)

	found, ok := g.Get(g.Root(), "Room/Desk/Cup")
	assert.True(t, ok)
	assert.Equal(t, cup, found)

	found, ok = g.Get(cup, "../../Desk")
	assert.True(t, ok)
	assert.Equal(t, desk, found)

	found, ok = g.Get(room, " Desk / Cup ")
	assert.True(t, ok)
	assert.Equal(t, cup, found)

	_, ok = g.Get(g.Root(), "Room/Chair")
	assert.False(t, ok)

	assert.Equal(t, "", g.Path(g.Root()))

	assert.True(t, strings.Contains(g.HierarchyAsString(g.Root()), "[NODE] Cup"))

}

func TestReindexChild(t *testing.T) {

	g := NewGraph("scene")
	a, b, c := g.NewNode("A"), g.NewNode("B"), g.NewNode("C")
	require.NoError(t, g.AddChildren(g.Root(), a, b, c))

	assert.Equal(t, 0, g.ReindexChild(a, 10))
	assert.Equal(t, []NodeID{b, c, a}, g.Children(g.Root()))
	assert.Equal(t, 2, g.Index(a))

	assert.Equal(t, 1, g.ReindexChild(c, -3))
	assert.Equal(t, []NodeID{c, b, a}, g.Children(g.Root()))

	assert.Equal(t, -1, g.ReindexChild(g.NewNode("orphan"), 0))

}

func TestSetVisibleRecursive(t *testing.T) {

	g, room, desk, cup := buildRoom(t)

	require.NoError(t, g.SetVisible(room, false, false))
	assert.False(t, g.Visible(room))
	assert.True(t, g.Visible(cup))

	require.NoError(t, g.SetVisible(room, false, true))
	assert.False(t, g.Visible(desk))
	assert.False(t, g.Visible(cup))

}

func TestLookAtUnderRotatedParent(t *testing.T) {

	g := NewGraph("scene")
	parent, eye := g.NewGroup("Parent"), g.NewNode("Eye")
	require.NoError(t, g.AddChild(g.Root(), parent))
	require.NoError(t, g.AddChild(parent, eye))
	require.NoError(t, g.SetLocalRotation(parent, NewEuler(0, 1, 0)))
	require.NoError(t, g.SetLocalPosition(eye, mgl64.Vec3{0, 0, 5}))

	target := mgl64.Vec3{3, -2, 1}
	require.NoError(t, g.LookAt(eye, target, WorldUp))

	world, err := g.WorldTransform(eye)
	require.NoError(t, err)
	forward := world.Mul4x1(WorldForward.Vec4(0)).Vec3().Normalize()
	expected := target.Sub(g.WorldPosition(eye)).Normalize()
	assert.True(t, forward.ApproxEqualThreshold(expected, 1e-9), "forward %v, expected %v", forward, expected)

}

func BenchmarkWorldTransform(b *testing.B) {

	b.ReportAllocs()

	g := NewGraph("bench")
	parent := g.Root()
	for i := 0; i < 16; i++ {
		n := g.NewNode("n")
		g.AddChild(parent, n)
		g.SetLocalPosition(n, mgl64.Vec3{1, 0, 0})
		parent = n
	}

	for i := 0; i < b.N; i++ {
		g.WorldTransform(parent)
	}

}

package framekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeWatcher(t *testing.T) {

	g, room, desk, cup := buildRoom(t)

	added, removed := []NodeID{}, []NodeID{}
	watch := NewTreeWatcher(g, room)
	watch.OnAdd = func(node NodeID) { added = append(added, node) }
	watch.OnRemove = func(node NodeID) { removed = append(removed, node) }

	watch.Update()
	assert.ElementsMatch(t, []NodeID{desk, cup}, added)
	assert.Empty(t, removed)
	assert.Equal(t, 2, watch.Watched())

	added = added[:0]
	watch.Update()
	assert.Empty(t, added, "nothing changed")

	chair := g.NewNode("Chair")
	require.NoError(t, g.AddChild(room, chair))
	require.NoError(t, g.Destroy(cup))
	watch.Update()
	assert.Equal(t, []NodeID{chair}, added)
	assert.Equal(t, []NodeID{cup}, removed)

	removed = removed[:0]
	require.NoError(t, g.Destroy(room))
	watch.Update()
	assert.ElementsMatch(t, []NodeID{desk, chair}, removed)
	assert.Equal(t, 0, watch.Watched())

}

func TestTreeWatcherFilter(t *testing.T) {

	g, room, _, _ := buildRoom(t)
	lamp := g.NewRenderable("Lamp", NewCubeGeometry(1, 1, 1), NewBasicMaterial("Lamp", NewColor(1, 1, 1, 1)))
	require.NoError(t, g.AddChild(room, lamp))

	added := []NodeID{}
	watch := NewTreeWatcher(g, g.Root())
	watch.WatchFilter = func(g *Graph, node NodeID) bool { return g.Kind(node) == NodeKindRenderable }
	watch.OnAdd = func(node NodeID) { added = append(added, node) }

	watch.Update()
	assert.Equal(t, []NodeID{lamp}, added)

}

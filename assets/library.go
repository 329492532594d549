package assets

import (
	"github.com/pkg/errors"

	"github.com/solarlune/framekit"
)

// LibraryNode is a node template from a model file. Parent is the index of the parent LibraryNode, or -1 for nodes at the
// top of the model's scene.
type LibraryNode struct {
	Name       string
	Parent     int
	Transform  framekit.Transform
	Geometry   *framekit.Geometry
	Material   *framekit.Material
	Properties *framekit.Properties // Custom properties, copied onto each instance.
}

// LibraryTrack is a keyframed position or scale track for the LibraryNode at index Node.
type LibraryTrack struct {
	Node      int
	Type      framekit.TrackType
	Keyframes []framekit.Keyframe
}

// LibraryAnimation is a named set of tracks played together.
type LibraryAnimation struct {
	Name   string
	Tracks []LibraryTrack
}

// Library is the decoded content of a model file: its geometry, its materials, and a node tree that can be instantiated
// into a Graph any number of times. Geometry and materials are shared between instances.
type Library struct {
	Geometries map[string]*framekit.Geometry
	Materials  map[string]*framekit.Material
	Nodes      []LibraryNode
	Animations []LibraryAnimation
}

// NewLibrary returns an empty Library.
func NewLibrary() *Library {
	return &Library{
		Geometries: map[string]*framekit.Geometry{},
		Materials:  map[string]*framekit.Material{},
	}
}

// Roots returns the indices of the nodes with no parent.
func (lib *Library) Roots() []int {
	roots := []int{}
	for i, n := range lib.Nodes {
		if n.Parent < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// FindNode returns the index of the first node with the given name, or -1.
func (lib *Library) FindNode(name string) int {
	for i, n := range lib.Nodes {
		if n.Name == name {
			return i
		}
	}
	return -1
}

// FindAnimation returns the animation with the given name.
func (lib *Library) FindAnimation(name string) (LibraryAnimation, bool) {
	for _, anim := range lib.Animations {
		if anim.Name == name {
			return anim, true
		}
	}
	return LibraryAnimation{}, false
}

// Instantiate creates the Library's nodes in g, with the top-level ones added under parent, and returns the IDs of
// the top-level nodes in order. Nodes with geometry become Renderables; the rest become Groups. If any node can't be placed,
// everything created so far is destroyed and the error returned.
func (lib *Library) Instantiate(g *framekit.Graph, parent framekit.NodeID) ([]framekit.NodeID, error) {
	_, roots, err := lib.instantiate(g, parent)
	return roots, err
}

// InstantiateAnimated is Instantiate, also returning an AnimationTrack for each track of every animation in the Library,
// bound to the new nodes. Tracks loop if loop is set.
func (lib *Library) InstantiateAnimated(g *framekit.Graph, parent framekit.NodeID, loop bool) ([]framekit.NodeID, []framekit.Animation, error) {

	ids, roots, err := lib.instantiate(g, parent)
	if err != nil {
		return nil, nil, err
	}

	animations := []framekit.Animation{}
	for _, anim := range lib.Animations {
		for _, track := range anim.Tracks {
			if track.Node < 0 || track.Node >= len(ids) {
				continue
			}
			animations = append(animations, &framekit.AnimationTrack{
				Node:      ids[track.Node],
				Type:      track.Type,
				Keyframes: append([]framekit.Keyframe(nil), track.Keyframes...),
				Loop:      loop,
			})
		}
	}

	return roots, animations, nil

}

func (lib *Library) instantiate(g *framekit.Graph, parent framekit.NodeID) ([]framekit.NodeID, []framekit.NodeID, error) {

	ids := make([]framekit.NodeID, len(lib.Nodes))
	roots := []framekit.NodeID{}

	fail := func(err error) ([]framekit.NodeID, []framekit.NodeID, error) {
		for _, id := range ids {
			if !id.IsZero() {
				g.Destroy(id)
			}
		}
		return nil, nil, err
	}

	for i, n := range lib.Nodes {

		if n.Geometry != nil {
			material := n.Material
			if material == nil {
				material = framekit.NewMaterial("default")
			}
			ids[i] = g.NewRenderable(n.Name, n.Geometry, material)
		} else {
			ids[i] = g.NewGroup(n.Name)
		}

		if n.Properties != nil {
			for _, name := range n.Properties.Names() {
				g.Properties(ids[i]).Get(name).Set(n.Properties.Get(name).Value)
			}
		}

		if err := g.SetLocalTransform(ids[i], n.Transform.Position, n.Transform.Rotation, n.Transform.Scale); err != nil {
			return fail(errors.WithMessagef(err, "instantiating node %q", n.Name))
		}

	}

	for i, n := range lib.Nodes {

		target := parent
		if n.Parent >= 0 {
			if n.Parent >= len(ids) {
				return fail(errors.Wrapf(framekit.ErrInvalidHierarchy, "node %q has out-of-range parent %d", n.Name, n.Parent))
			}
			target = ids[n.Parent]
		} else {
			roots = append(roots, ids[i])
		}

		if err := g.AddChild(target, ids[i]); err != nil {
			return fail(errors.WithMessagef(err, "parenting node %q", n.Name))
		}

	}

	return ids, roots, nil

}

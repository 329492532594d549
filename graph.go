package framekit

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Graph is a scene graph stored as an arena of Node slots. Nodes are addressed by NodeID; each Node holds its parent as a
// non-owning NodeID and its children as an ordered list of owned NodeIDs, so destroying a Node destroys its subtree.
// Every Graph has a root Node whose world transform is always the identity. A Graph isn't safe for concurrent use; it is
// owned by the goroutine running the RenderLoop.
type Graph struct {
	Callbacks NodeCallbacks

	name  string
	slots []nodeSlot
	free  []uint32
	live  int
	root  NodeID
}

// NewGraph creates a new Graph with a root Node of the given name.
func NewGraph(name string) *Graph {
	g := &Graph{name: name}
	g.root = g.alloc(node{name: name, kind: NodeKindGroup})
	return g
}

// Name returns the Graph's name (which is also its root Node's name).
func (g *Graph) Name() string {
	return g.name
}

// Root returns the Graph's root Node.
func (g *Graph) Root() NodeID {
	return g.root
}

// Len returns the number of live Nodes in the Graph, including the root and any orphaned subtrees.
func (g *Graph) Len() int {
	return g.live
}

// Alive returns true if id refers to a live Node in this Graph.
func (g *Graph) Alive(id NodeID) bool {
	_, err := g.get(id)
	return err == nil
}

func (g *Graph) alloc(n node) NodeID {
	n.local = NewTransform()
	n.visible = true
	if n.props == nil {
		n.props = NewProperties()
	}

	var index uint32
	if len(g.free) > 0 {
		index = g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
	} else {
		g.slots = append(g.slots, nodeSlot{})
		index = uint32(len(g.slots) - 1)
	}

	slot := &g.slots[index]
	slot.generation++
	slot.alive = true
	slot.node = n
	g.live++

	return NodeID{index: index, generation: slot.generation}
}

func (g *Graph) get(id NodeID) (*node, error) {
	if id.IsZero() || int(id.index) >= len(g.slots) {
		return nil, errors.Wrapf(ErrStaleNode, "%s", id)
	}
	slot := &g.slots[id.index]
	if !slot.alive || slot.generation != id.generation {
		return nil, errors.Wrapf(ErrStaleNode, "%s", id)
	}
	return &slot.node, nil
}

// NewNode creates a new, orphaned group Node. Use AddChild to place it in the tree.
func (g *Graph) NewNode(name string) NodeID {
	return g.alloc(node{name: name, kind: NodeKindGroup})
}

// NewGroup creates a new, orphaned group Node; it's an alias of NewNode that reads better when building hierarchies.
func (g *Graph) NewGroup(name string) NodeID {
	return g.NewNode(name)
}

// NewRenderable creates a new, orphaned Node that draws the given geometry with the given material.
func (g *Graph) NewRenderable(name string, geometry *Geometry, material *Material) NodeID {
	return g.alloc(node{
		name:       name,
		kind:       NodeKindRenderable,
		renderable: &Renderable{Geometry: geometry, Material: material},
	})
}

// isAncestor returns true if ancestor is node or appears anywhere in node's chain of parents.
func (g *Graph) isAncestor(ancestor, id NodeID) bool {
	for !id.IsZero() {
		if id == ancestor {
			return true
		}
		n, err := g.get(id)
		if err != nil {
			return false
		}
		id = n.parent
	}
	return false
}

// AddChild parents child to parent, appending it to the end of parent's children. If child already has a parent, it is
// detached from it first, in the same step. AddChild returns ErrInvalidHierarchy (leaving the Graph unchanged) if child
// is the root, is parent itself, or is an ancestor of parent.
func (g *Graph) AddChild(parent, child NodeID) error {

	p, err := g.get(parent)
	if err != nil {
		return err
	}
	c, err := g.get(child)
	if err != nil {
		return err
	}

	if child == g.root {
		return errors.Wrap(ErrInvalidHierarchy, "the root node can't be reparented")
	}
	if g.isAncestor(child, parent) {
		return errors.Wrapf(ErrInvalidHierarchy, "%q is %q or one of its ancestors", c.name, p.name)
	}

	oldParent := c.parent
	if oldParent == parent {
		return nil
	}

	g.detach(child, c)
	c.parent = parent
	p.children = append(p.children, child)

	if g.Callbacks.OnReparent != nil {
		g.Callbacks.OnReparent(g, child, oldParent, parent)
	}

	return nil
}

// AddChildren parents each of the children to parent in order, stopping at the first error.
func (g *Graph) AddChildren(parent NodeID, children ...NodeID) error {
	for _, child := range children {
		if err := g.AddChild(parent, child); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) detach(id NodeID, n *node) {
	if n.parent.IsZero() {
		return
	}
	if p, err := g.get(n.parent); err == nil {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	n.parent = NodeID{}
}

// Remove detaches a Node (and so its subtree) from its parent. The subtree stays alive as an orphan until it's
// destroyed or added back into the tree.
func (g *Graph) Remove(id NodeID) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	if id == g.root {
		return errors.Wrap(ErrInvalidHierarchy, "the root node can't be removed")
	}
	oldParent := n.parent
	if oldParent.IsZero() {
		return nil
	}
	g.detach(id, n)
	if g.Callbacks.OnReparent != nil {
		g.Callbacks.OnReparent(g, id, oldParent, NodeID{})
	}
	return nil
}

// Destroy removes a Node and frees it along with its entire subtree. IDs pointing into the subtree become stale.
func (g *Graph) Destroy(id NodeID) error {
	if _, err := g.get(id); err != nil {
		return err
	}
	if id == g.root {
		return errors.Wrap(ErrInvalidHierarchy, "the root node can't be destroyed")
	}
	if err := g.Remove(id); err != nil {
		return err
	}
	g.release(id)
	return nil
}

func (g *Graph) release(id NodeID) {
	n, err := g.get(id)
	if err != nil {
		return
	}
	for _, child := range n.children {
		g.release(child)
	}
	if g.Callbacks.OnDestroy != nil {
		g.Callbacks.OnDestroy(g, id)
	}
	slot := &g.slots[id.index]
	slot.alive = false
	slot.node = node{}
	g.free = append(g.free, id.index)
	g.live--
}

// Clear destroys every Node under the root. Orphaned subtrees are left alone.
func (g *Graph) Clear() {
	root, _ := g.get(g.root)
	children := append([]NodeID(nil), root.children...)
	for _, child := range children {
		g.Destroy(child)
	}
}

// NodeName returns the Node's name, or an empty string if id is stale.
func (g *Graph) NodeName(id NodeID) string {
	if n, err := g.get(id); err == nil {
		return n.name
	}
	return ""
}

// SetName sets the Node's name.
func (g *Graph) SetName(id NodeID, name string) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	n.name = name
	return nil
}

// Kind returns the Node's kind.
func (g *Graph) Kind(id NodeID) NodeKind {
	if n, err := g.get(id); err == nil {
		return n.kind
	}
	return NodeKindGroup
}

// Renderable returns the Node's Renderable, or nil if it isn't a renderable Node.
func (g *Graph) Renderable(id NodeID) *Renderable {
	if n, err := g.get(id); err == nil {
		return n.renderable
	}
	return nil
}

// Camera returns the Node's Camera, or nil if it isn't a camera Node.
func (g *Graph) Camera(id NodeID) *Camera {
	if n, err := g.get(id); err == nil {
		return n.camera
	}
	return nil
}

// Properties returns the Node's Properties, or nil if id is stale.
func (g *Graph) Properties(id NodeID) *Properties {
	if n, err := g.get(id); err == nil {
		return n.props
	}
	return nil
}

// Data returns user-customizeable data stored on the Node.
func (g *Graph) Data(id NodeID) any {
	if n, err := g.get(id); err == nil {
		return n.data
	}
	return nil
}

// SetData sets user-customizeable data that could be usefully stored on this Node.
func (g *Graph) SetData(id NodeID, data any) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	n.data = data
	return nil
}

// Parent returns the Node's parent, or the zero NodeID if it's an orphan, the root, or stale.
func (g *Graph) Parent(id NodeID) NodeID {
	if n, err := g.get(id); err == nil {
		return n.parent
	}
	return NodeID{}
}

// Children returns a copy of the Node's ordered children.
func (g *Graph) Children(id NodeID) []NodeID {
	if n, err := g.get(id); err == nil {
		return append(make([]NodeID, 0, len(n.children)), n.children...)
	}
	return nil
}

// Index returns the index of the Node in its parent's children list.
// If the node doesn't have a parent, its index will be -1.
func (g *Graph) Index(id NodeID) int {
	n, err := g.get(id)
	if err != nil || n.parent.IsZero() {
		return -1
	}
	p, _ := g.get(n.parent)
	for i, c := range p.children {
		if c == id {
			return i
		}
	}
	return -1
}

// ReindexChild moves the child in its parent's children slice to the specified newPosition.
// The function returns the old index where the child Node was, or -1 if it had no parent.
// The newPosition is clamped to the size of the parent's children slice.
func (g *Graph) ReindexChild(child NodeID, newPosition int) int {

	oldIndex := g.Index(child)
	if oldIndex < 0 {
		return -1
	}

	c, _ := g.get(child)
	p, _ := g.get(c.parent)

	newPosition = clamp(newPosition, 0, len(p.children)-1)

	p.children = append(p.children[:oldIndex], p.children[oldIndex+1:]...)
	p.children = append(p.children, NodeID{})
	copy(p.children[newPosition+1:], p.children[newPosition:])
	p.children[newPosition] = child

	return oldIndex

}

// Visible returns whether the Node is visible. This doesn't take its ancestors into account.
func (g *Graph) Visible(id NodeID) bool {
	if n, err := g.get(id); err == nil {
		return n.visible
	}
	return false
}

// SetVisible sets the Node's visibility. If recursive is true, all recursive children of this Node will have their
// visibility set the same way.
func (g *Graph) SetVisible(id NodeID, visible, recursive bool) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	n.visible = visible
	if recursive {
		for _, child := range n.children {
			g.SetVisible(child, visible, true)
		}
	}
	return nil
}

// LocalTransform returns the Node's transform relative to its parent.
func (g *Graph) LocalTransform(id NodeID) (Transform, error) {
	n, err := g.get(id)
	if err != nil {
		return Transform{}, err
	}
	return n.local, nil
}

// mutable returns the Node if its transform may be changed; the root's transform is fixed.
func (g *Graph) mutable(id NodeID) (*node, error) {
	n, err := g.get(id)
	if err != nil {
		return nil, err
	}
	if id == g.root {
		return nil, errors.Wrap(ErrInvalidHierarchy, "the root node's transform is fixed")
	}
	return n, nil
}

// SetLocalTransform replaces the Node's local position, rotation, and scale. If any scale component is zero, negative,
// or not finite, ErrDegenerateTransform is returned and the Node keeps its prior transform.
func (g *Graph) SetLocalTransform(id NodeID, position mgl64.Vec3, rotation Euler, scale mgl64.Vec3) error {
	n, err := g.mutable(id)
	if err != nil {
		return err
	}
	if err := validateScale(scale); err != nil {
		return errors.WithMessagef(err, "node %q", n.name)
	}
	n.local = Transform{Position: position, Rotation: rotation, Scale: scale}
	return nil
}

// SetLocalPosition sets the Node's position relative to its parent.
func (g *Graph) SetLocalPosition(id NodeID, position mgl64.Vec3) error {
	n, err := g.mutable(id)
	if err != nil {
		return err
	}
	n.local.Position = position
	return nil
}

// SetLocalRotation sets the Node's rotation relative to its parent.
func (g *Graph) SetLocalRotation(id NodeID, rotation Euler) error {
	n, err := g.mutable(id)
	if err != nil {
		return err
	}
	n.local.Rotation = rotation
	return nil
}

// SetLocalScale sets the Node's scale relative to its parent, with the same validation as SetLocalTransform.
func (g *Graph) SetLocalScale(id NodeID, scale mgl64.Vec3) error {
	n, err := g.mutable(id)
	if err != nil {
		return err
	}
	if err := validateScale(scale); err != nil {
		return errors.WithMessagef(err, "node %q", n.name)
	}
	n.local.Scale = scale
	return nil
}

// Move moves a Node in local space by the offset provided.
func (g *Graph) Move(id NodeID, offset mgl64.Vec3) error {
	n, err := g.mutable(id)
	if err != nil {
		return err
	}
	n.local.Position = n.local.Position.Add(offset)
	return nil
}

// Rotate rotates a Node on its local orientation around the given axis, by the angle provided in radians.
// The result keeps the Node's Euler order.
func (g *Graph) Rotate(id NodeID, axis mgl64.Vec3, angle float64) error {
	n, err := g.mutable(id)
	if err != nil {
		return err
	}
	if axis.Len() == 0 {
		return nil
	}
	m := n.local.Rotation.Matrix().Mul4(mgl64.HomogRotate3D(angle, axis.Normalize()))
	n.local.Rotation = EulerFromMatrix(m, n.local.Rotation.Order)
	return nil
}

// LookAt rotates the Node so its -Z axis points at the world-space target, using up as the upward direction.
func (g *Graph) LookAt(id NodeID, target, up mgl64.Vec3) error {
	n, err := g.mutable(id)
	if err != nil {
		return err
	}

	worldRotation := NewLookAtMatrix(g.WorldPosition(id), target, up)

	if !n.parent.IsZero() {
		parentWorld, err := g.WorldTransform(n.parent)
		if err != nil {
			return err
		}
		parentRotation := Decompose(parentWorld, n.local.Rotation.Order).Rotation.Matrix()
		worldRotation = parentRotation.Transpose().Mul4(worldRotation)
	}

	n.local.Rotation = EulerFromMatrix(worldRotation, n.local.Rotation.Order)
	return nil
}

// WorldTransform returns the Node's world matrix, composed on demand from its topmost ancestor down. It isn't cached.
// For the root Node, this is always the identity.
func (g *Graph) WorldTransform(id NodeID) (mgl64.Mat4, error) {

	if _, err := g.get(id); err != nil {
		return mgl64.Ident4(), err
	}

	if id == g.root {
		return mgl64.Ident4(), nil
	}

	chain := []*node{}
	for cur := id; !cur.IsZero() && cur != g.root; {
		n, err := g.get(cur)
		if err != nil {
			return mgl64.Ident4(), err
		}
		chain = append(chain, n)
		cur = n.parent
	}

	world := mgl64.Ident4()
	for i := len(chain) - 1; i >= 0; i-- {
		world = world.Mul4(chain[i].local.Matrix())
	}
	return world, nil

}

// WorldPosition returns the Node's world position, taking into account its parenting hierarchy. A stale ID returns the origin.
func (g *Graph) WorldPosition(id NodeID) mgl64.Vec3 {
	m, err := g.WorldTransform(id)
	if err != nil {
		return mgl64.Vec3{}
	}
	return m.Col(3).Vec3()
}

// Walk visits the Node and its subtree depth-first, parents before children, in child order.
// Returning false from fn skips that Node's children.
func (g *Graph) Walk(id NodeID, fn func(id NodeID) bool) {
	n, err := g.get(id)
	if err != nil {
		return
	}
	if !fn(id) {
		return
	}
	for _, child := range append([]NodeID(nil), n.children...) {
		g.Walk(child, fn)
	}
}

// Get searches a node's hierarchy using a string to find a specified node. The path is in the format of names of nodes, separated by forward
// slashes ('/'), and is relative to the node you use to call Get. As an example of Get, if you had a cup parented to a desk, which was
// parented to a room, that was finally parented to the root of the scene, it would be found at "Room/Desk/Cup". Note also that you can use "../" to
// "go up one" in the hierarchy.
// Get trims the extra spaces from the beginning and end of each path element.
func (g *Graph) Get(id NodeID, path string) (NodeID, bool) {

	cur := id
	if !g.Alive(cur) {
		return NodeID{}, false
	}

	for _, s := range strings.Split(path, `/`) {

		s = strings.TrimSpace(s)
		if len(s) == 0 || s == "." {
			continue
		}

		if s == ".." {
			cur = g.Parent(cur)
			if cur.IsZero() {
				return NodeID{}, false
			}
			continue
		}

		found := false
		n, _ := g.get(cur)
		for _, child := range n.children {
			if c, _ := g.get(child); strings.TrimSpace(c.name) == s {
				cur = child
				found = true
				break
			}
		}
		if !found {
			return NodeID{}, false
		}

	}

	return cur, true

}

// Path returns a string indicating the hierarchical path to get this Node from the root. The path returned will be absolute, such that
// passing it to Get() called on the root node will return this node. The path returned will not contain the root node's name.
// If the Node isn't under the root, Path returns an empty string.
func (g *Graph) Path(id NodeID) string {

	if !g.Alive(id) || id == g.root {
		return ""
	}

	names := []string{}
	cur := id
	for cur != g.root {
		if cur.IsZero() {
			return ""
		}
		n, _ := g.get(cur)
		names = append(names, n.name)
		cur = n.parent
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")

}

// HierarchyAsString returns a string displaying the hierarchy of this Node, and all recursive children.
// This is a useful function to debug the layout of a node tree, for example.
// Nodes show their kind by means of a prefix ("MESH" for renderables, for example) and their world positions, truncated to
// the first 2 decimals.
func (g *Graph) HierarchyAsString(id NodeID) string {

	var printNode func(id NodeID, level int) string

	printNode = func(id NodeID, level int) string {

		n, err := g.get(id)
		if err != nil {
			return ""
		}

		prefix := n.kind.prefix()
		if id == g.root {
			prefix = "ROOT"
		}

		str := ""

		if level > 0 {
			for i := 0; i < level; i++ {
				str += "    |"
			}
			str += "\n"
		}

		for i := 0; i < level; i++ {
			str += "    |"
		}

		wp := g.WorldPosition(id)
		floatTruncation := 2
		wpStr := "[" + strconv.FormatFloat(wp[0], 'f', floatTruncation, 64) + ", " + strconv.FormatFloat(wp[1], 'f', floatTruncation, 64) + ", " + strconv.FormatFloat(wp[2], 'f', floatTruncation, 64) + "]"

		if level > 0 {
			str += "-"
		}
		str += " [" + prefix + "] " + n.name + " : " + wpStr + "\n"

		for _, child := range n.children {
			str += printNode(child, level+1)
		}

		return str
	}

	return printNode(id, 0)
}

// SearchTree returns a NodeFilter to search the given Node's hierarchy.
func (g *Graph) SearchTree(id NodeID) NodeFilter {
	return newNodeFilter(g, id)
}

package framekit

import "strconv"

// NodeKind represents what a Node carries beyond its transform.
type NodeKind int

const (
	NodeKindGroup      NodeKind = iota // NodeKindGroup is a plain transform node, used to group other nodes.
	NodeKindRenderable                 // NodeKindRenderable carries a Renderable (geometry plus material).
	NodeKindCamera                     // NodeKindCamera carries a Camera.
)

func (kind NodeKind) String() string {
	switch kind {
	case NodeKindGroup:
		return "Group"
	case NodeKindRenderable:
		return "Renderable"
	case NodeKindCamera:
		return "Camera"
	}
	return "NodeKind(" + strconv.Itoa(int(kind)) + ")"
}

// prefix is the short tag shown by Graph.HierarchyAsString().
func (kind NodeKind) prefix() string {
	switch kind {
	case NodeKindRenderable:
		return "MESH"
	case NodeKindCamera:
		return "CAM"
	}
	return "NODE"
}

// NodeID addresses a Node slot in a Graph's arena. A NodeID is only valid for the Graph that created it, and only until
// the Node is destroyed; after that, the slot's generation moves on and the old ID reports ErrStaleNode.
// The zero NodeID never refers to a Node.
type NodeID struct {
	index      uint32
	generation uint32
}

// IsZero returns true if the NodeID is the zero (invalid) NodeID.
func (id NodeID) IsZero() bool {
	return id.generation == 0
}

func (id NodeID) String() string {
	if id.IsZero() {
		return "node(nil)"
	}
	return "node(" + strconv.FormatUint(uint64(id.index), 10) + "@" + strconv.FormatUint(uint64(id.generation), 10) + ")"
}

// Renderable is the drawable payload of a NodeKindRenderable Node. Geometry and Material are shared, not owned; several
// Renderables can point to the same Geometry or Material.
type Renderable struct {
	Geometry *Geometry
	Material *Material
}

// node is a single arena entry. The parent link is non-owning; children are owned and destroyed along with the node.
type node struct {
	name       string
	kind       NodeKind
	local      Transform
	visible    bool
	parent     NodeID
	children   []NodeID
	renderable *Renderable
	camera     *Camera
	props      *Properties
	data       any
}

type nodeSlot struct {
	generation uint32
	alive      bool
	node       node
}

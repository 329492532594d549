package framekit

// NodeCallbacks represents a set of callbacks to be called when a Node is reparented or destroyed within a Graph.
type NodeCallbacks struct {
	// OnReparent is called whenever a Node's parent changes. oldParent or newParent is the zero NodeID when the node
	// was, or becomes, an orphan.
	OnReparent func(g *Graph, node, oldParent, newParent NodeID)
	// OnDestroy is called for each Node in a destroyed subtree, children first, while the ID is still alive.
	OnDestroy func(g *Graph, node NodeID)
}

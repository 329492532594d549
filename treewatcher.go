package framekit

// TreeWatcher is a utility struct used to watch a tree for hierarchy changes underneath a specific node. This is useful when, for example,
// keeping per-node caches in step with the Graph, or running setup code for nodes as they're added.
type TreeWatcher struct {
	graph        *Graph
	rootNode     NodeID
	elements     Set[NodeID]
	prevElements Set[NodeID]
	// WatchFilter is a function that is used to filter down which nodes to watch, and is called for each node in the tree.
	// If the function returns true, the Node is watched.
	WatchFilter func(g *Graph, node NodeID) bool
	// OnAdd is run for every node that appeared under the root node since the last Update.
	OnAdd func(node NodeID)
	// OnRemove is run for every node that disappeared from under the root node since the last Update. The node may be stale.
	OnRemove func(node NodeID)
}

// NewTreeWatcher creates a new TreeWatcher, a utility that watches the tree underneath the rootNode for changes.
func NewTreeWatcher(g *Graph, rootNode NodeID) *TreeWatcher {
	return &TreeWatcher{
		graph:        g,
		rootNode:     rootNode,
		elements:     newSet[NodeID](),
		prevElements: newSet[NodeID](),
	}
}

// Update updates the TreeWatcher instance, and should be run once every frame.
func (watch *TreeWatcher) Update() {

	watch.elements.Clear()

	if watch.graph.Alive(watch.rootNode) {
		watch.graph.SearchTree(watch.rootNode).ForEach(func(node NodeID) bool {
			if watch.WatchFilter == nil || watch.WatchFilter(watch.graph, node) {
				watch.elements.Add(node)
			}
			return true
		})
	}

	if watch.OnAdd != nil {
		for e := range watch.elements {
			if !watch.prevElements.Contains(e) {
				watch.OnAdd(e)
			}
		}
	}

	if watch.OnRemove != nil {
		for e := range watch.prevElements {
			if !watch.elements.Contains(e) {
				watch.OnRemove(e)
			}
		}
	}

	watch.prevElements, watch.elements = watch.elements, watch.prevElements

}

// Watched returns how many nodes were under the root node at the last Update.
func (watch *TreeWatcher) Watched() int {
	return len(watch.prevElements)
}

// SetRoot sets the root Node to be watched for the TreeWatcher.
func (watch *TreeWatcher) SetRoot(rootNode NodeID) {
	watch.rootNode = rootNode
}

package framekit

import (
	"regexp"
	"sort"
)

// NodeFilter represents a chain of node filters, executed in sequence to collect the desired nodes
// out of an entire hierarchy. The filters are executed lazily, when a result is asked for (ForEach, IDs, First, Count, etc).
// The starting node itself is never part of the results.
type NodeFilter struct {
	Filters  []func(NodeID) bool // The slice of filters that are currently active on the NodeFilter.
	Start    NodeID              // The start (root) of the filter.
	MaxDepth int                 // How deep the node filter should search in the starting node's hierarchy; a value that is less than zero means the entire tree will be traversed.

	graph          *Graph
	stopOnFiltered bool
	sortByDistance bool
	sortTo         [3]float64
}

func newNodeFilter(g *Graph, start NodeID) NodeFilter {
	return NodeFilter{
		Start:    start,
		MaxDepth: -1,
		graph:    g,
	}
}

func (nf NodeFilter) execute(id NodeID, depth int, callback func(NodeID) bool) bool {

	added := true

	if id != nf.Start {
		for _, filter := range nf.Filters {
			if !filter(id) {
				added = false
				break
			}
		}
		if added && !callback(id) {
			return false
		}
	}

	if nf.MaxDepth >= 0 && depth >= nf.MaxDepth {
		return true
	}

	if nf.stopOnFiltered && !added {
		return true
	}

	for _, child := range nf.graph.Children(id) {
		if !nf.execute(child, depth+1, callback) {
			return false
		}
	}

	return true

}

func (nf NodeFilter) add(filter func(NodeID) bool) NodeFilter {
	nf.Filters = append(append([]func(NodeID) bool(nil), nf.Filters...), filter)
	return nf
}

// ByFunc allows you to filter a given selection of nodes by the provided filter function (which takes a NodeID
// and returns a boolean, indicating whether or not to add that Node to the resulting NodeFilter).
func (nf NodeFilter) ByFunc(filterFunc func(id NodeID) bool) NodeFilter {
	return nf.add(filterFunc)
}

// ByName allows you to filter a given selection of nodes by the given names. If a node's name matches any of them, it passes.
func (nf NodeFilter) ByName(names ...string) NodeFilter {
	return nf.add(func(id NodeID) bool {
		name := nf.graph.NodeName(id)
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	})
}

// ByRegex allows you to filter a given selection of nodes by their names using the given regex string.
// If the regex string is invalid, nothing passes.
func (nf NodeFilter) ByRegex(regexString string) NodeFilter {
	re, err := regexp.Compile(regexString)
	return nf.add(func(id NodeID) bool {
		return err == nil && re.MatchString(nf.graph.NodeName(id))
	})
}

// ByKind allows you to filter a given selection of nodes by the provided NodeKind.
func (nf NodeFilter) ByKind(kind NodeKind) NodeFilter {
	return nf.add(func(id NodeID) bool {
		return nf.graph.Kind(id) == kind
	})
}

// ByProperties allows you to filter a given selection of nodes by the provided set of property names.
// A Node must have all of the properties named to pass.
func (nf NodeFilter) ByProperties(propNames ...string) NodeFilter {
	return nf.add(func(id NodeID) bool {
		props := nf.graph.Properties(id)
		return props != nil && props.Has(propNames...)
	})
}

// Visible filters out Nodes that are invisible, or that have an invisible ancestor between them and the filter's start.
func (nf NodeFilter) Visible() NodeFilter {
	nf.stopOnFiltered = true
	return nf.add(func(id NodeID) bool {
		return nf.graph.Visible(id)
	})
}

// StopOnFiltered makes the filter skip the children of any Node that doesn't pass.
func (nf NodeFilter) StopOnFiltered() NodeFilter {
	nf.stopOnFiltered = true
	return nf
}

// SetMaxDepth sets the maximum depth of the NodeFilter's search; 1 means only direct children are visited.
func (nf NodeFilter) SetMaxDepth(depth int) NodeFilter {
	nf.MaxDepth = depth
	return nf
}

// SortByDistance sorts the results from closest to furthest away from the given world position.
func (nf NodeFilter) SortByDistance(x, y, z float64) NodeFilter {
	nf.sortByDistance = true
	nf.sortTo = [3]float64{x, y, z}
	return nf
}

// ForEach executes the provided callback function on each Node that passes the filters, depth-first. If the callback
// returns false, iteration stops.
func (nf NodeFilter) ForEach(callback func(id NodeID) bool) {
	if nf.sortByDistance {
		for _, id := range nf.IDs() {
			if !callback(id) {
				return
			}
		}
		return
	}
	if nf.graph == nil || !nf.graph.Alive(nf.Start) {
		return
	}
	nf.execute(nf.Start, 0, callback)
}

// IDs returns the NodeIDs of every Node that passes the filters.
func (nf NodeFilter) IDs() []NodeID {
	out := []NodeID{}
	if nf.graph == nil || !nf.graph.Alive(nf.Start) {
		return out
	}
	nf.execute(nf.Start, 0, func(id NodeID) bool {
		out = append(out, id)
		return true
	})
	if nf.sortByDistance {
		distance := func(id NodeID) float64 {
			p := nf.graph.WorldPosition(id)
			dx, dy, dz := p[0]-nf.sortTo[0], p[1]-nf.sortTo[1], p[2]-nf.sortTo[2]
			return dx*dx + dy*dy + dz*dz
		}
		sort.SliceStable(out, func(i, j int) bool { return distance(out[i]) < distance(out[j]) })
	}
	return out
}

// First returns the first Node that passes the filters.
func (nf NodeFilter) First() (NodeID, bool) {
	var found NodeID
	nf.ForEach(func(id NodeID) bool {
		found = id
		return false
	})
	return found, !found.IsZero()
}

// Count returns the number of Nodes that pass the filters.
func (nf NodeFilter) Count() int {
	count := 0
	nf.ForEach(func(id NodeID) bool {
		count++
		return true
	})
	return count
}

// Contains returns true if the given Node passes the filters.
func (nf NodeFilter) Contains(node NodeID) bool {
	found := false
	nf.ForEach(func(id NodeID) bool {
		found = id == node
		return !found
	})
	return found
}

// IsEmpty returns true if no Node passes the filters.
func (nf NodeFilter) IsEmpty() bool {
	_, ok := nf.First()
	return !ok
}

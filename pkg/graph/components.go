package graph

// DisjointSet is a union-find forest over dense node ids.
type DisjointSet struct {
	parent []NodeID
	size   []uint32
}

// NewDisjointSet creates n singleton sets.
func NewDisjointSet(n int) *DisjointSet {
	ds := &DisjointSet{
		parent: make([]NodeID, n),
		size:   make([]uint32, n),
	}
	for i := range ds.parent {
		ds.parent[i] = NodeID(i)
		ds.size[i] = 1
	}
	return ds
}

// Find returns the representative of the set containing x.
func (ds *DisjointSet) Find(x NodeID) NodeID {
	for ds.parent[x] != x {
		// Path halving
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

// Union merges the sets of a and b and reports whether they were distinct.
func (ds *DisjointSet) Union(a, b NodeID) bool {
	ra, rb := ds.Find(a), ds.Find(b)
	if ra == rb {
		return false
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
	return true
}

// Components describes the connected components of a graph.
type Components struct {
	// IDs maps every node to its component, numbered by first node.
	IDs     []uint32
	Count   int
	Sizes   []uint32
	MinSize uint32
	MaxSize uint32
}

// ConnectedComponents computes connected components. Edge direction is
// ignored, so directed graphs yield weakly connected components.
func (g *Graph) ConnectedComponents() Components {
	n := g.nodes.Len()
	ds := NewDisjointSet(n)
	for e := range g.edges {
		src := g.Source(EdgeID(e))
		dst := g.Destination(EdgeID(e))
		if src != dst {
			ds.Union(src, dst)
		}
	}

	comps := Components{IDs: make([]uint32, n)}
	rootComponent := make(map[NodeID]uint32)
	for node := range n {
		root := ds.Find(NodeID(node))
		id, ok := rootComponent[root]
		if !ok {
			id = uint32(len(comps.Sizes))
			rootComponent[root] = id
			comps.Sizes = append(comps.Sizes, 0)
		}
		comps.IDs[node] = id
		comps.Sizes[id]++
	}

	comps.Count = len(comps.Sizes)
	for i, size := range comps.Sizes {
		if i == 0 || size < comps.MinSize {
			comps.MinSize = size
		}
		if size > comps.MaxSize {
			comps.MaxSize = size
		}
	}
	return comps
}

// SamePartition reports whether two component assignments group nodes the same way.
func (c Components) SamePartition(other Components) bool {
	if len(c.IDs) != len(other.IDs) || c.Count != other.Count {
		return false
	}
	mapping := make(map[uint32]uint32, c.Count)
	for i, id := range c.IDs {
		if want, ok := mapping[id]; ok {
			if other.IDs[i] != want {
				return false
			}
			continue
		}
		mapping[id] = other.IDs[i]
	}
	return true
}

package graph

import (
	"slices"
)

// Subgraph returns a graph with the same node and type vocabularies holding
// only the given directed edge ids. For undirected graphs the caller passes
// both directions of every edge it keeps. Unknown ids are rejected; repeated
// ids are kept once.
func (g *Graph) Subgraph(name string, edgeIDs []EdgeID) (*Graph, error) {
	ids := slices.Clone(edgeIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) > 0 {
		if err := g.checkEdge("Subgraph", ids[len(ids)-1]); err != nil {
			return nil, err
		}
	}

	sub := &Graph{
		name:        name,
		directed:    g.directed,
		nodes:       g.nodes,
		nodeTypes:   g.nodeTypes,
		nodeTypeIDs: g.nodeTypeIDs,
		edgeTypes:   g.edgeTypes,
		nodeBits:    g.nodeBits,
		edges:       make([]uint64, len(ids)),
	}
	if g.weights != nil {
		sub.weights = make([]Weight, len(ids))
	}
	if g.edgeTypeIDs != nil {
		sub.edgeTypeIDs = make([]EdgeTypeID, len(ids))
	}
	// Edge ids follow key order, so sorted ids keep the keys sorted.
	for i, id := range ids {
		sub.edges[i] = g.edges[id]
		if sub.weights != nil {
			sub.weights[i] = g.weights[id]
		}
		if sub.edgeTypeIDs != nil {
			sub.edgeTypeIDs[i] = g.edgeTypeIDs[id]
		}
	}
	sub.computeProperties()
	return sub, nil
}

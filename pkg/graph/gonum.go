package graph

import (
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// ToGonum converts the graph into a gonum weighted graph whose node ids are
// the graph's NodeIDs. Self-loops are skipped because simple graphs cannot
// hold them, and parallel edges collapse into one edge keeping the largest
// weight. Unweighted graphs get weight 1 on every edge.
func (g *Graph) ToGonum() gonumgraph.Weighted {
	type weightedBuilder interface {
		gonumgraph.Weighted
		AddNode(gonumgraph.Node)
		NewWeightedEdge(from, to gonumgraph.Node, weight float64) gonumgraph.WeightedEdge
		SetWeightedEdge(gonumgraph.WeightedEdge)
	}

	var out weightedBuilder
	if g.directed {
		out = simple.NewWeightedDirectedGraph(0, 0)
	} else {
		out = simple.NewWeightedUndirectedGraph(0, 0)
	}
	for node := range g.nodes.Len() {
		out.AddNode(simple.Node(node))
	}
	for e := range g.edges {
		id := EdgeID(e)
		src, dst := g.Source(id), g.Destination(id)
		if src == dst || (!g.directed && src > dst) {
			continue
		}
		w := g.WeightOrOne(id)
		if prev, ok := out.Weight(int64(src), int64(dst)); ok && prev >= w {
			continue
		}
		out.SetWeightedEdge(out.NewWeightedEdge(simple.Node(src), simple.Node(dst), w))
	}
	return out
}

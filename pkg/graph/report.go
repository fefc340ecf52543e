package graph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DenseThreshold is the density above which a graph is described as dense.
const DenseThreshold = 0.05

// DefaultReportTopK is the number of central nodes listed in a report.
const DefaultReportTopK = 5

// NodeDegree pairs a node with its out-degree.
type NodeDegree struct {
	Node   NodeID
	Name   string
	Degree uint64
}

// Report summarizes the structure of a graph.
type Report struct {
	Name          string
	Directed      bool
	Nodes         int
	Edges         uint64
	DirectedEdges uint64
	SelfLoops     uint64
	Weighted      bool
	Multigraph    bool
	NodeTypes     int
	EdgeTypes     int
	Singletons    uint64
	Density       float64

	Components       int
	MaxComponentSize uint32
	MinComponentSize uint32

	MedianDegree uint64
	MeanDegree   float64
	ModeDegree   uint64
	TopNodes     []NodeDegree
}

// TopDegreeNodes returns the k nodes with the highest out-degree, ties broken
// by ascending node id.
func (g *Graph) TopDegreeNodes(k int) []NodeDegree {
	n := g.nodes.Len()
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	all := make([]NodeDegree, n)
	for node := range n {
		all[node] = NodeDegree{Node: NodeID(node), Degree: g.UncheckedDegree(NodeID(node))}
	}
	slices.SortFunc(all, func(a, b NodeDegree) int {
		if c := cmp.Compare(b.Degree, a.Degree); c != 0 {
			return c
		}
		return cmp.Compare(a.Node, b.Node)
	})
	top := all[:k:k]
	for i := range top {
		top[i].Name, _ = g.nodes.Name(top[i].Node)
	}
	return top
}

// Report computes the structural summary of the graph.
func (g *Graph) Report() Report {
	n := g.nodes.Len()
	r := Report{
		Name:          g.name,
		Directed:      g.directed,
		Nodes:         n,
		Edges:         g.NumberOfEdges(),
		DirectedEdges: g.NumberOfDirectedEdges(),
		SelfLoops:     g.selfLoops,
		Weighted:      g.HasWeights(),
		Multigraph:    g.multigraph,
		NodeTypes:     g.NumberOfNodeTypes(),
		EdgeTypes:     g.NumberOfEdgeTypes(),
		Density:       g.Density(),
		TopNodes:      g.TopDegreeNodes(DefaultReportTopK),
	}

	comps := g.ConnectedComponents()
	r.Components = comps.Count
	r.MaxComponentSize = comps.MaxSize
	r.MinComponentSize = comps.MinSize

	if n == 0 {
		return r
	}
	degrees := make([]uint64, n)
	for node := range n {
		degrees[node] = g.UncheckedDegree(NodeID(node))
		if g.IsSingleton(NodeID(node)) {
			r.Singletons++
		}
	}
	slices.Sort(degrees)
	r.MedianDegree = degrees[n/2]
	r.MeanDegree = float64(len(g.edges)) / float64(n)

	// Degrees are sorted, so the mode is the longest run; ties keep the smaller degree.
	bestRun := 0
	for i := 0; i < n; {
		j := i
		for j < n && degrees[j] == degrees[i] {
			j++
		}
		if j-i > bestRun {
			bestRun = j - i
			r.ModeDegree = degrees[i]
		}
		i = j
	}
	return r
}

// String renders the report as prose.
func (r Report) String() string {
	var sb strings.Builder

	kind := "undirected"
	if r.Directed {
		kind = "directed"
	}
	weighted := ""
	if r.Weighted {
		weighted = "weighted "
	}
	selfLoops := "none are self-loops"
	if r.SelfLoops == 1 {
		selfLoops = "1 is a self-loop"
	} else if r.SelfLoops > 1 {
		selfLoops = fmt.Sprintf("%d are self-loops", r.SelfLoops)
	}
	fmt.Fprintf(&sb, "The %s graph %s has %d nodes and %d %sedges, of which %s.",
		kind, r.Name, r.Nodes, r.Edges, weighted, selfLoops)

	density := "sparse"
	if r.Density > DenseThreshold {
		density = "dense"
	}
	if r.Components == 1 {
		fmt.Fprintf(&sb, " The graph is %s as it has a density of %.5f and is connected, as it has a single component.",
			density, r.Density)
	} else {
		fmt.Fprintf(&sb, " The graph is %s as it has a density of %.5f and has %d connected components, where the component with most nodes has %d nodes and the component with the least nodes has %d nodes.",
			density, r.Density, r.Components, r.MaxComponentSize, r.MinComponentSize)
	}

	fmt.Fprintf(&sb, " The graph median node degree is %d, the mean node degree is %.2f, and the node degree mode is %d.",
		r.MedianDegree, r.MeanDegree, r.ModeDegree)

	if len(r.TopNodes) > 0 {
		parts := make([]string, len(r.TopNodes))
		for i, nd := range r.TopNodes {
			parts[i] = fmt.Sprintf("%s (degree %d)", nd.Name, nd.Degree)
		}
		fmt.Fprintf(&sb, " The top %d most central nodes are %s.", len(parts), joinWithAnd(parts))
	}

	if r.NodeTypes > 0 {
		fmt.Fprintf(&sb, " The graph has %d node types.", r.NodeTypes)
	}
	if r.EdgeTypes > 0 {
		multi := ""
		if r.Multigraph {
			multi = " and is a multigraph"
		}
		fmt.Fprintf(&sb, " The graph has %d edge types%s.", r.EdgeTypes, multi)
	}
	if r.Singletons > 0 {
		fmt.Fprintf(&sb, " There are %d singleton nodes.", r.Singletons)
	}
	return sb.String()
}

func joinWithAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

// String renders the graph report.
func (g *Graph) String() string {
	return g.Report().String()
}

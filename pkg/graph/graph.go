package graph

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Graph is an immutable graph whose directed edges are stored as a sorted
// array of src<<nodeBits|dst keys. Undirected graphs hold both directions of
// every non-loop edge. A Graph is safe for concurrent readers.
type Graph struct {
	name     string
	directed bool

	nodes       *Vocabulary[NodeID]
	nodeTypes   *Vocabulary[NodeTypeID]
	nodeTypeIDs []NodeTypeID
	edgeTypes   *Vocabulary[EdgeTypeID]
	edgeTypeIDs []EdgeTypeID
	weights     []Weight

	nodeBits uint8
	edges    []uint64

	// Derived at build time
	selfLoops       uint64
	uniquePairs     uint64 // distinct non-loop (src, dst) keys
	uniqueSources   uint64
	multigraph      bool
	hasOutbound     []uint64 // bitset
	hasNonLoopEdges []uint64 // bitset, either direction

	cacheMu sync.Mutex
	cache   atomic.Pointer[edgeCache]
}

func newBitset(n int) []uint64 {
	return make([]uint64, (n+63)/64)
}

func setBit(b []uint64, i NodeID) {
	b[i>>6] |= 1 << (i & 63)
}

func hasBit(b []uint64, i NodeID) bool {
	return b[i>>6]&(1<<(i&63)) != 0
}

func (g *Graph) computeProperties() {
	n := g.nodes.Len()
	g.hasOutbound = newBitset(n)
	g.hasNonLoopEdges = newBitset(n)

	var prev uint64
	for i, key := range g.edges {
		src, dst := g.decode(key)
		setBit(g.hasOutbound, src)
		if src == dst {
			g.selfLoops++
		} else {
			setBit(g.hasNonLoopEdges, src)
			setBit(g.hasNonLoopEdges, dst)
		}
		if i > 0 && key == prev {
			g.multigraph = true
		} else if src != dst {
			g.uniquePairs++
		}
		prev = key
	}
	for node := range n {
		if hasBit(g.hasOutbound, NodeID(node)) {
			g.uniqueSources++
		}
	}
}

func (g *Graph) decode(key uint64) (NodeID, NodeID) {
	return NodeID(key >> g.nodeBits), NodeID(key & (1<<g.nodeBits - 1))
}

func (g *Graph) encode(src, dst NodeID) uint64 {
	return encodeEdge(src, dst, g.nodeBits)
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// IsDirected reports whether the graph is directed.
func (g *Graph) IsDirected() bool { return g.directed }

// NumberOfNodes returns the number of nodes, including singletons.
func (g *Graph) NumberOfNodes() int { return g.nodes.Len() }

// NumberOfDirectedEdges returns the number of stored directed edges.
func (g *Graph) NumberOfDirectedEdges() uint64 { return uint64(len(g.edges)) }

// NumberOfEdges returns the number of edges, counting an undirected pair once.
func (g *Graph) NumberOfEdges() uint64 {
	if g.directed {
		return uint64(len(g.edges))
	}
	return (uint64(len(g.edges))-g.selfLoops)/2 + g.selfLoops
}

// NumberOfSelfLoops returns the number of self-loop edges.
func (g *Graph) NumberOfSelfLoops() uint64 { return g.selfLoops }

// HasSelfLoops reports whether any edge is a self-loop.
func (g *Graph) HasSelfLoops() bool { return g.selfLoops > 0 }

// HasWeights reports whether edges carry weights.
func (g *Graph) HasWeights() bool { return g.weights != nil }

// HasNodeTypes reports whether nodes carry types.
func (g *Graph) HasNodeTypes() bool { return g.nodeTypeIDs != nil }

// HasEdgeTypes reports whether edges carry types.
func (g *Graph) HasEdgeTypes() bool { return g.edgeTypeIDs != nil }

// IsMultigraph reports whether some node pair is joined by edges of different types.
func (g *Graph) IsMultigraph() bool { return g.multigraph }

// NodeName returns the name of a node.
func (g *Graph) NodeName(id NodeID) (string, error) {
	name, ok := g.nodes.Name(id)
	if !ok {
		return "", NodeNotFoundError("NodeName", id)
	}
	return name, nil
}

// NodeID returns the id of the node with the given name.
func (g *Graph) NodeID(name string) (NodeID, error) {
	id, ok := g.nodes.ID(name)
	if !ok {
		return 0, NodeNameNotFoundError("NodeID", name)
	}
	return id, nil
}

// NodeNames returns all node names ordered by id.
func (g *Graph) NodeNames() []string { return g.nodes.Names() }

func (g *Graph) checkNode(op string, id NodeID) error {
	if int(id) >= g.nodes.Len() {
		return NodeNotFoundError(op, id)
	}
	return nil
}

func (g *Graph) checkEdge(op string, id EdgeID) error {
	if id >= EdgeID(len(g.edges)) {
		return EdgeNotFoundError(op, id)
	}
	return nil
}

// NumberOfNodeTypes returns the size of the node type vocabulary.
func (g *Graph) NumberOfNodeTypes() int {
	if g.nodeTypes == nil {
		return 0
	}
	return g.nodeTypes.Len()
}

// NumberOfEdgeTypes returns the size of the edge type vocabulary.
func (g *Graph) NumberOfEdgeTypes() int {
	if g.edgeTypes == nil {
		return 0
	}
	return g.edgeTypes.Len()
}

// NodeTypeID returns the node type of a node.
func (g *Graph) NodeTypeID(node NodeID) (NodeTypeID, error) {
	if g.nodeTypeIDs == nil {
		return 0, NewError("NodeTypeID").Node(node).Cause(ErrNoNodeTypes).Err()
	}
	if err := g.checkNode("NodeTypeID", node); err != nil {
		return 0, err
	}
	return g.nodeTypeIDs[node], nil
}

// UncheckedNodeTypeID returns the node type of a node without bounds or
// presence checks. Callers must know the graph has node types.
func (g *Graph) UncheckedNodeTypeID(node NodeID) NodeTypeID {
	return g.nodeTypeIDs[node]
}

// NodeTypeName returns the name of the node type of a node.
func (g *Graph) NodeTypeName(node NodeID) (string, error) {
	id, err := g.NodeTypeID(node)
	if err != nil {
		return "", err
	}
	name, _ := g.nodeTypes.Name(id)
	return name, nil
}

// NodeTypeIDFromName resolves a node type name.
func (g *Graph) NodeTypeIDFromName(name string) (NodeTypeID, error) {
	if g.nodeTypes == nil {
		return 0, NewError("NodeTypeIDFromName").NodeType(name).Cause(ErrNoNodeTypes).Err()
	}
	id, ok := g.nodeTypes.ID(name)
	if !ok {
		return 0, NewError("NodeTypeIDFromName").NodeType(name).Cause(ErrNodeTypeNotFound).Err()
	}
	return id, nil
}

// NodeTypeNames returns the node type vocabulary ordered by id.
func (g *Graph) NodeTypeNames() []string {
	if g.nodeTypes == nil {
		return nil
	}
	return g.nodeTypes.Names()
}

// EdgeTypeID returns the edge type of an edge.
func (g *Graph) EdgeTypeID(edge EdgeID) (EdgeTypeID, error) {
	if g.edgeTypeIDs == nil {
		return 0, NewError("EdgeTypeID").Edge(edge).Cause(ErrNoEdgeTypes).Err()
	}
	if err := g.checkEdge("EdgeTypeID", edge); err != nil {
		return 0, err
	}
	return g.edgeTypeIDs[edge], nil
}

// UncheckedEdgeTypeID returns the edge type of an edge without checks.
func (g *Graph) UncheckedEdgeTypeID(edge EdgeID) EdgeTypeID {
	return g.edgeTypeIDs[edge]
}

// EdgeTypeIDFromName resolves an edge type name.
func (g *Graph) EdgeTypeIDFromName(name string) (EdgeTypeID, error) {
	if g.edgeTypes == nil {
		return 0, NewError("EdgeTypeIDFromName").EdgeType(name).Cause(ErrNoEdgeTypes).Err()
	}
	id, ok := g.edgeTypes.ID(name)
	if !ok {
		return 0, NewError("EdgeTypeIDFromName").EdgeType(name).Cause(ErrEdgeTypeNotFound).Err()
	}
	return id, nil
}

// EdgeTypeName returns the name of an edge type id.
func (g *Graph) EdgeTypeName(id EdgeTypeID) (string, error) {
	if g.edgeTypes == nil {
		return "", NewError("EdgeTypeName").Cause(ErrNoEdgeTypes).Err()
	}
	name, ok := g.edgeTypes.Name(id)
	if !ok {
		return "", NewError("EdgeTypeName").Cause(ErrEdgeTypeNotFound).Err()
	}
	return name, nil
}

// EdgeTypeNames returns the edge type vocabulary ordered by id.
func (g *Graph) EdgeTypeNames() []string {
	if g.edgeTypes == nil {
		return nil
	}
	return g.edgeTypes.Names()
}

// Weight returns the weight of an edge.
func (g *Graph) Weight(edge EdgeID) (Weight, error) {
	if g.weights == nil {
		return 0, NewError("Weight").Edge(edge).Cause(ErrNoWeights).Err()
	}
	if err := g.checkEdge("Weight", edge); err != nil {
		return 0, err
	}
	return g.weights[edge], nil
}

// WeightOrOne returns the weight of an edge, or 1 for unweighted graphs.
func (g *Graph) WeightOrOne(edge EdgeID) float64 {
	if g.weights == nil {
		return 1
	}
	return float64(g.weights[edge])
}

// Source returns the source node of an edge without bounds checks.
func (g *Graph) Source(edge EdgeID) NodeID {
	if c := g.cache.Load(); c != nil && c.sources != nil {
		return c.sources[edge]
	}
	return NodeID(g.edges[edge] >> g.nodeBits)
}

// Destination returns the destination node of an edge without bounds checks.
func (g *Graph) Destination(edge EdgeID) NodeID {
	if c := g.cache.Load(); c != nil && c.destinations != nil {
		return c.destinations[edge]
	}
	return NodeID(g.edges[edge] & (1<<g.nodeBits - 1))
}

// Edge returns the decoded edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, error) {
	if err := g.checkEdge("Edge", id); err != nil {
		return Edge{}, err
	}
	e := Edge{
		ID:          id,
		Source:      g.Source(id),
		Destination: g.Destination(id),
		Weight:      Weight(g.WeightOrOne(id)),
	}
	if g.edgeTypeIDs != nil {
		e.Type = g.edgeTypeIDs[id]
	}
	return e, nil
}

// EdgeRange returns the half-open range of edge ids leaving node.
// The node must exist.
func (g *Graph) EdgeRange(node NodeID) (EdgeID, EdgeID) {
	if c := g.cache.Load(); c != nil && c.outbounds != nil {
		return c.outbounds[node], c.outbounds[node+1]
	}
	start, _ := slices.BinarySearch(g.edges, uint64(node)<<g.nodeBits)
	end, _ := slices.BinarySearch(g.edges, uint64(node+1)<<g.nodeBits)
	return EdgeID(start), EdgeID(end)
}

// Degree returns the out-degree of a node.
func (g *Graph) Degree(node NodeID) (uint64, error) {
	if err := g.checkNode("Degree", node); err != nil {
		return 0, err
	}
	start, end := g.EdgeRange(node)
	return uint64(end - start), nil
}

// UncheckedDegree returns the out-degree of a node without bounds checks.
func (g *Graph) UncheckedDegree(node NodeID) uint64 {
	start, end := g.EdgeRange(node)
	return uint64(end - start)
}

// Neighbours returns the destinations of the edges leaving node, in edge order.
// Parallel edges yield repeated neighbours.
func (g *Graph) Neighbours(node NodeID) ([]NodeID, error) {
	if err := g.checkNode("Neighbours", node); err != nil {
		return nil, err
	}
	start, end := g.EdgeRange(node)
	out := make([]NodeID, 0, end-start)
	for e := start; e < end; e++ {
		out = append(out, g.Destination(e))
	}
	return out, nil
}

// EdgeIDs returns the range of edge ids from src to dst. The range is empty
// when no such edge exists.
func (g *Graph) EdgeIDs(src, dst NodeID) (EdgeID, EdgeID) {
	if int(src) >= g.nodes.Len() || int(dst) >= g.nodes.Len() {
		return 0, 0
	}
	key := g.encode(src, dst)
	start, found := slices.BinarySearch(g.edges, key)
	if !found {
		return EdgeID(start), EdgeID(start)
	}
	end := start + 1
	for end < len(g.edges) && g.edges[end] == key {
		end++
	}
	return EdgeID(start), EdgeID(end)
}

// EdgeID returns the id of the edge from src to dst with the given type.
// For graphs without edge types the type is ignored.
func (g *Graph) EdgeID(src, dst NodeID, edgeType EdgeTypeID) (EdgeID, bool) {
	start, end := g.EdgeIDs(src, dst)
	for e := start; e < end; e++ {
		if g.edgeTypeIDs == nil || g.edgeTypeIDs[e] == edgeType {
			return e, true
		}
	}
	return 0, false
}

// HasEdge reports whether an edge from src to dst exists.
func (g *Graph) HasEdge(src, dst NodeID) bool {
	start, end := g.EdgeIDs(src, dst)
	return end > start
}

// HasEdgeFromNames reports whether an edge exists between two named nodes.
func (g *Graph) HasEdgeFromNames(src, dst string) bool {
	s, ok := g.nodes.ID(src)
	if !ok {
		return false
	}
	d, ok := g.nodes.ID(dst)
	if !ok {
		return false
	}
	return g.HasEdge(s, d)
}

// IsTrap reports whether a node has no outbound edges.
func (g *Graph) IsTrap(node NodeID) bool {
	return !hasBit(g.hasOutbound, node)
}

// HasTraps reports whether any node has no outbound edges.
func (g *Graph) HasTraps() bool {
	return g.uniqueSources < uint64(g.nodes.Len())
}

// NumberOfUniqueSources returns the number of nodes with an outbound edge.
func (g *Graph) NumberOfUniqueSources() uint64 { return g.uniqueSources }

// UniqueSources returns the nodes that have at least one outbound edge.
func (g *Graph) UniqueSources() []NodeID {
	out := make([]NodeID, 0, g.uniqueSources)
	for node := range g.nodes.Len() {
		if hasBit(g.hasOutbound, NodeID(node)) {
			out = append(out, NodeID(node))
		}
	}
	return out
}

// IsSingleton reports whether a node has no edges at all.
func (g *Graph) IsSingleton(node NodeID) bool {
	return !hasBit(g.hasOutbound, node) && !hasBit(g.hasNonLoopEdges, node)
}

// IsSingletonWithSelfLoops reports whether every edge of a node is a self-loop.
func (g *Graph) IsSingletonWithSelfLoops(node NodeID) bool {
	return hasBit(g.hasOutbound, node) && !hasBit(g.hasNonLoopEdges, node)
}

// Density returns the fraction of possible ordered node pairs joined by an edge,
// ignoring self-loops and parallel edges.
func (g *Graph) Density() float64 {
	n := float64(g.nodes.Len())
	if n < 2 {
		return 0
	}
	return float64(g.uniquePairs) / (n * (n - 1))
}

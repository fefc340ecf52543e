package graph

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"slices"
)

// EdgeRecord is a single edge as read from an edge list.
type EdgeRecord struct {
	Source      string
	Destination string
	// Type is the edge type name; empty means untyped.
	Type      string
	Weight    float64
	HasWeight bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDuplicatePolicy sets how repeated edges are handled.
func WithDuplicatePolicy(p DuplicatePolicy) BuilderOption {
	return func(b *Builder) { b.duplicates = p }
}

// WithStrictNodes makes AddEdge fail for endpoints not added through AddNode.
func WithStrictNodes() BuilderOption {
	return func(b *Builder) { b.strictNodes = true }
}

// WithDefaultNodeType assigns the given type to nodes added without one.
func WithDefaultNodeType(name string) BuilderOption {
	return func(b *Builder) { b.defaultNodeType = name }
}

// WithDefaultEdgeType assigns the given type to edges added without one.
func WithDefaultEdgeType(name string) BuilderOption {
	return func(b *Builder) { b.defaultEdgeType = name }
}

// WithCapacity pre-sizes the node and edge buffers.
func WithCapacity(nodes, edges int) BuilderOption {
	return func(b *Builder) {
		b.nodeCapacity = nodes
		b.edgeCapacity = edges
	}
}

type pendingEdge struct {
	src    NodeID
	dst    NodeID
	typ    EdgeTypeID
	typed  bool
	weight Weight
}

// Builder accumulates nodes and edges and produces an immutable Graph.
// A Builder is not safe for concurrent use.
type Builder struct {
	name     string
	directed bool

	nodes       *Vocabulary[NodeID]
	nodeTypes   *Vocabulary[NodeTypeID]
	nodeTypeOf  []int32
	edgeTypes   *Vocabulary[EdgeTypeID]
	edges       []pendingEdge
	weighted    int8 // -1 unknown, 0 unweighted, 1 weighted
	anyEdgeType bool

	strictNodes     bool
	duplicates      DuplicatePolicy
	defaultNodeType string
	defaultEdgeType string
	nodeCapacity    int
	edgeCapacity    int
}

// NewBuilder creates a builder for a graph with the given name.
func NewBuilder(name string, directed bool, opts ...BuilderOption) *Builder {
	b := &Builder{
		name:     name,
		directed: directed,
		weighted: -1,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.nodes = newVocabulary[NodeID](b.nodeCapacity, MaxNodes)
	b.nodeTypes = newVocabulary[NodeTypeID](0, MaxTypes)
	b.edgeTypes = newVocabulary[EdgeTypeID](0, MaxTypes)
	b.nodeTypeOf = make([]int32, 0, b.nodeCapacity)
	b.edges = make([]pendingEdge, 0, b.edgeCapacity)
	return b
}

// AddNode registers a node with an optional type (empty for untyped).
// Adding an existing node sets its type if it had none.
func (b *Builder) AddNode(name, nodeType string) (NodeID, error) {
	id, err := b.nodes.insert(name)
	if err != nil {
		return 0, NewError("AddNode").NodeName(name).Cause(limitError(err, ErrTooManyNodes)).Err()
	}
	if int(id) == len(b.nodeTypeOf) {
		b.nodeTypeOf = append(b.nodeTypeOf, -1)
	}
	if nodeType == "" {
		return id, nil
	}
	typeID, err := b.nodeTypes.insert(nodeType)
	if err != nil {
		return 0, NewError("AddNode").NodeType(nodeType).Cause(limitError(err, ErrTooManyTypes)).Err()
	}
	if b.nodeTypeOf[id] < 0 {
		b.nodeTypeOf[id] = int32(typeID)
	}
	return id, nil
}

// AddEdge adds an unweighted, untyped edge.
func (b *Builder) AddEdge(src, dst string) error {
	return b.AddEdgeRecord(EdgeRecord{Source: src, Destination: dst})
}

// AddWeightedEdge adds a weighted, untyped edge.
func (b *Builder) AddWeightedEdge(src, dst string, weight float64) error {
	return b.AddEdgeRecord(EdgeRecord{Source: src, Destination: dst, Weight: weight, HasWeight: true})
}

// AddEdgeRecord adds an edge. Undirected graphs also get the reverse edge.
func (b *Builder) AddEdgeRecord(r EdgeRecord) error {
	src, err := b.endpoint(r.Source)
	if err != nil {
		return err
	}
	dst, err := b.endpoint(r.Destination)
	if err != nil {
		return err
	}

	e := pendingEdge{src: src, dst: dst, weight: 1}

	switch {
	case b.weighted == -1 && r.HasWeight:
		b.weighted = 1
	case b.weighted == -1:
		b.weighted = 0
	case (b.weighted == 1) != r.HasWeight:
		return NewError("AddEdge").NodeName(r.Source).Cause(ErrMixedWeights).Err()
	}
	if r.HasWeight {
		if r.Weight <= 0 || math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) || r.Weight > math.MaxFloat32 {
			return NewError("AddEdge").NodeName(r.Source).Cause(fmt.Errorf("%w: got %v", ErrInvalidWeight, r.Weight)).Err()
		}
		e.weight = Weight(r.Weight)
	}

	if r.Type != "" {
		typeID, err := b.edgeTypes.insert(r.Type)
		if err != nil {
			return NewError("AddEdge").EdgeType(r.Type).Cause(limitError(err, ErrTooManyTypes)).Err()
		}
		e.typ = typeID
		e.typed = true
		b.anyEdgeType = true
	}

	b.edges = append(b.edges, e)
	if !b.directed && src != dst {
		e.src, e.dst = dst, src
		b.edges = append(b.edges, e)
	}
	return nil
}

func (b *Builder) endpoint(name string) (NodeID, error) {
	if id, ok := b.nodes.ID(name); ok {
		return id, nil
	}
	if b.strictNodes {
		return 0, NodeNameNotFoundError("AddEdge", name)
	}
	return b.AddNode(name, "")
}

// NumberOfNodes returns the nodes registered so far.
func (b *Builder) NumberOfNodes() int {
	return b.nodes.Len()
}

// Build sorts the edges and freezes the graph. The builder must not be reused.
func (b *Builder) Build() (*Graph, error) {
	if len(b.edges) == 0 {
		return nil, NewError("Build").Cause(ErrEmptyGraph).Err()
	}

	nodeTypeIDs, err := b.resolveNodeTypes()
	if err != nil {
		return nil, err
	}
	if err := b.resolveEdgeTypes(); err != nil {
		return nil, err
	}

	nodeBits := uint8(bits.Len32(uint32(b.nodes.Len())))
	if nodeBits == 0 {
		nodeBits = 1
	}
	key := func(e pendingEdge) uint64 {
		return encodeEdge(e.src, e.dst, nodeBits)
	}

	slices.SortStableFunc(b.edges, func(x, y pendingEdge) int {
		if c := cmp.Compare(key(x), key(y)); c != 0 {
			return c
		}
		return cmp.Compare(x.typ, y.typ)
	})

	// Drop or reject repeated (src, dst, type) triples; the stable sort keeps
	// the first inserted copy in front.
	kept := b.edges[:0]
	for i, e := range b.edges {
		if i > 0 {
			prev := kept[len(kept)-1]
			if prev.src == e.src && prev.dst == e.dst && prev.typ == e.typ {
				if b.duplicates == RejectDuplicates {
					src, _ := b.nodes.Name(e.src)
					dst, _ := b.nodes.Name(e.dst)
					return nil, NewError("Build").NodeName(src).
						Cause(fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, src, dst)).Err()
				}
				continue
			}
		}
		kept = append(kept, e)
	}

	g := &Graph{
		name:     b.name,
		directed: b.directed,
		nodes:    b.nodes,
		nodeBits: nodeBits,
		edges:    make([]uint64, len(kept)),
	}
	if b.weighted == 1 {
		g.weights = make([]Weight, len(kept))
	}
	if b.anyEdgeType {
		g.edgeTypes = b.edgeTypes
		g.edgeTypeIDs = make([]EdgeTypeID, len(kept))
	}
	if nodeTypeIDs != nil {
		g.nodeTypes = b.nodeTypes
		g.nodeTypeIDs = nodeTypeIDs
	}
	for i, e := range kept {
		g.edges[i] = key(e)
		if g.weights != nil {
			g.weights[i] = e.weight
		}
		if g.edgeTypeIDs != nil {
			g.edgeTypeIDs[i] = e.typ
		}
	}
	g.computeProperties()
	return g, nil
}

func (b *Builder) resolveNodeTypes() ([]NodeTypeID, error) {
	if b.nodeTypes.Len() == 0 {
		return nil, nil
	}
	ids := make([]NodeTypeID, len(b.nodeTypeOf))
	for node, typ := range b.nodeTypeOf {
		if typ >= 0 {
			ids[node] = NodeTypeID(typ)
			continue
		}
		name, _ := b.nodes.Name(NodeID(node))
		if b.defaultNodeType == "" {
			return nil, NewError("Build").NodeName(name).Cause(ErrMissingNodeType).Err()
		}
		defaultID, err := b.nodeTypes.insert(b.defaultNodeType)
		if err != nil {
			return nil, NewError("Build").NodeType(b.defaultNodeType).Cause(limitError(err, ErrTooManyTypes)).Err()
		}
		ids[node] = defaultID
	}
	return ids, nil
}

func (b *Builder) resolveEdgeTypes() error {
	if !b.anyEdgeType {
		return nil
	}
	var defaultID EdgeTypeID
	resolved := false
	for i := range b.edges {
		if b.edges[i].typed {
			continue
		}
		if b.defaultEdgeType == "" {
			name, _ := b.nodes.Name(b.edges[i].src)
			return NewError("Build").NodeName(name).Cause(ErrMissingEdgeType).Err()
		}
		if !resolved {
			id, err := b.edgeTypes.insert(b.defaultEdgeType)
			if err != nil {
				return NewError("Build").EdgeType(b.defaultEdgeType).Cause(limitError(err, ErrTooManyTypes)).Err()
			}
			defaultID = id
			resolved = true
		}
		b.edges[i].typ = defaultID
		b.edges[i].typed = true
	}
	return nil
}

// limitError keeps ErrEmptyName as is and tags capacity failures with sentinel.
func limitError(err, sentinel error) error {
	if errors.Is(err, ErrEmptyName) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func encodeEdge(src, dst NodeID, nodeBits uint8) uint64 {
	return uint64(src)<<nodeBits | uint64(dst)
}

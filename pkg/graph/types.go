package graph

import "math"

// NodeID is the dense numeric identifier of a node, assigned in insertion order.
type NodeID uint32

// EdgeID indexes the sorted directed edge array.
type EdgeID uint64

// NodeTypeID identifies a node type within the node type vocabulary.
type NodeTypeID uint16

// EdgeTypeID identifies an edge type within the edge type vocabulary.
type EdgeTypeID uint16

// Weight is the weight attached to an edge.
type Weight float32

const (
	// MaxNodes is the largest number of nodes a graph can hold.
	MaxNodes = math.MaxUint32

	// MaxTypes is the largest number of distinct node or edge types.
	MaxTypes = math.MaxUint16
)

// DuplicatePolicy controls how Build treats repeated (src, dst, edge type) triples.
type DuplicatePolicy int

const (
	// DropDuplicates keeps the first occurrence and silently drops the rest.
	DropDuplicates DuplicatePolicy = iota
	// RejectDuplicates makes Build fail on the first duplicate.
	RejectDuplicates
)

// CacheOptions selects the auxiliary vectors trading memory for access time.
type CacheOptions struct {
	// Sources materializes the source node of every directed edge.
	Sources bool
	// Destinations materializes the destination node of every directed edge.
	Destinations bool
	// Outbounds materializes the per-node offsets into the edge array.
	Outbounds bool
}

// AllCaches enables every memory/time trade-off.
func AllCaches() CacheOptions {
	return CacheOptions{Sources: true, Destinations: true, Outbounds: true}
}

// Any reports whether at least one cache is selected.
func (c CacheOptions) Any() bool {
	return c.Sources || c.Destinations || c.Outbounds
}

// Edge is a decoded directed edge.
type Edge struct {
	ID          EdgeID
	Source      NodeID
	Destination NodeID
	Type        EdgeTypeID
	Weight      Weight
}

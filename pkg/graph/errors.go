package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrEdgeNotFound     = errors.New("edge not found")
	ErrNodeTypeNotFound = errors.New("node type not found")
	ErrEdgeTypeNotFound = errors.New("edge type not found")
	ErrNoNodeTypes      = errors.New("graph has no node types")
	ErrNoEdgeTypes      = errors.New("graph has no edge types")
	ErrNoWeights        = errors.New("graph has no edge weights")
	ErrEmptyGraph       = errors.New("graph has no edges")
	ErrInvalidWeight    = errors.New("edge weight must be a strictly positive finite number")
	ErrDuplicateEdge    = errors.New("duplicate edge")
	ErrMixedWeights     = errors.New("weighted and unweighted edges mixed")
	ErrMissingNodeType  = errors.New("node type missing")
	ErrMissingEdgeType  = errors.New("edge type missing")
	ErrTooManyNodes     = errors.New("too many nodes")
	ErrTooManyTypes     = errors.New("too many types")
	ErrEmptyName        = errors.New("empty name")
)

// GraphError provides structured error information for graph operations.
type GraphError struct {
	Op     string // Operation that failed (e.g., "AddEdge", "NodeTypeID")
	Entity string // Entity type (e.g., "node", "edge", "node type")
	Name   string // Entity name, when the caller addressed it by name
	ID     uint64 // Entity ID (if applicable)
	HasID  bool
	Cause  error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Entity, e.Name, e.Cause)
	case e.HasID:
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Cause)
	case e.Entity != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *GraphError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building GraphErrors.
type ErrorBuilder struct {
	err GraphError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: GraphError{Op: op}}
}

// Node sets the entity to "node" with the given ID.
func (b *ErrorBuilder) Node(id NodeID) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.ID = uint64(id)
	b.err.HasID = true
	return b
}

// NodeName sets the entity to "node" addressed by name.
func (b *ErrorBuilder) NodeName(name string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.Name = name
	return b
}

// Edge sets the entity to "edge" with the given ID.
func (b *ErrorBuilder) Edge(id EdgeID) *ErrorBuilder {
	b.err.Entity = "edge"
	b.err.ID = uint64(id)
	b.err.HasID = true
	return b
}

// NodeType sets the entity to "node type" addressed by name.
func (b *ErrorBuilder) NodeType(name string) *ErrorBuilder {
	b.err.Entity = "node type"
	b.err.Name = name
	return b
}

// EdgeType sets the entity to "edge type" addressed by name.
func (b *ErrorBuilder) EdgeType(name string) *ErrorBuilder {
	b.err.Entity = "edge type"
	b.err.Name = name
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed GraphError.
func (b *ErrorBuilder) Build() *GraphError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// NodeNotFoundError creates a node not found error.
func NodeNotFoundError(op string, id NodeID) error {
	return NewError(op).Node(id).Cause(ErrNodeNotFound).Err()
}

// NodeNameNotFoundError creates a node not found error for a node name.
func NodeNameNotFoundError(op, name string) error {
	return NewError(op).NodeName(name).Cause(ErrNodeNotFound).Err()
}

// EdgeNotFoundError creates an edge not found error.
func EdgeNotFoundError(op string, id EdgeID) error {
	return NewError(op).Edge(id).Cause(ErrEdgeNotFound).Err()
}

// IsNotFound returns true if the error is any of the not found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrEdgeNotFound) ||
		errors.Is(err, ErrNodeTypeNotFound) ||
		errors.Is(err, ErrEdgeTypeNotFound)
}

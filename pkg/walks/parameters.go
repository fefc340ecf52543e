package walks

import (
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
)

var (
	ErrInvalidWeight        = errors.New("walk weight must be a strictly positive finite number")
	ErrInvalidLength        = errors.New("walk length must be a strictly positive integer")
	ErrInvalidIterations    = errors.New("iterations must be a strictly positive integer")
	ErrInvalidQuantity      = errors.New("quantity must be a strictly positive integer")
	ErrInvalidMaxNeighbours = errors.New("max neighbours must not be negative")
	ErrDirectedNode2Vec     = errors.New("return and explore weights are not supported on directed graphs")
	ErrNoSources            = errors.New("graph has no node with outbound edges")
)

// Weights bias the transition probabilities of a walk. A weight of 1 leaves
// the corresponding behaviour neutral.
type Weights struct {
	// Return multiplies the weight of stepping back to the previous node or
	// staying on the current one.
	Return float64 `yaml:"return_weight"`
	// Explore multiplies the weight of stepping to nodes that are not
	// neighbours of the previous node.
	Explore float64 `yaml:"explore_weight"`
	// ChangeNodeType divides the weight of neighbours sharing the current
	// node's type, so values above 1 favour type changes.
	ChangeNodeType float64 `yaml:"change_node_type_weight"`
	// ChangeEdgeType divides the weight of edges sharing the previous edge's
	// type.
	ChangeEdgeType float64 `yaml:"change_edge_type_weight"`
}

// DefaultWeights returns neutral weights.
func DefaultWeights() Weights {
	return Weights{Return: 1, Explore: 1, ChangeNodeType: 1, ChangeEdgeType: 1}
}

// Validate checks every weight is strictly positive and finite.
func (w Weights) Validate() error {
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"return_weight", w.Return},
		{"explore_weight", w.Explore},
		{"change_node_type_weight", w.ChangeNodeType},
		{"change_edge_type_weight", w.ChangeEdgeType},
	} {
		if err := ValidateWeight(c.name, c.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWeight rejects non-positive, NaN and infinite weights.
func ValidateWeight(name string, value float64) error {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s is %v", ErrInvalidWeight, name, value)
	}
	return nil
}

// IsNode2Vec reports whether the return or explore weight is active.
func (w Weights) IsNode2Vec() bool {
	return w.Return != 1 || w.Explore != 1
}

// IsFirstOrder reports whether every weight is neutral.
func (w Weights) IsFirstOrder() bool {
	return !w.IsNode2Vec() && w.ChangeNodeType == 1 && w.ChangeEdgeType == 1
}

// Parameters configures walk generation.
type Parameters struct {
	// Length is the maximum number of nodes in a walk, start node included.
	Length int `yaml:"length"`
	// Iterations is the number of walks started from each start node.
	Iterations int `yaml:"iterations"`

	Weights `yaml:",inline"`

	// MaxNeighbours caps the candidates considered per step; 0 means all.
	// Larger neighbourhoods are sampled as a random contiguous window.
	MaxNeighbours int `yaml:"max_neighbours"`
	// NormalizeByDegree divides each candidate's weight by its degree.
	NormalizeByDegree bool `yaml:"normalize_by_degree"`
	// MinLength drops walks that stopped at a trap with fewer nodes.
	MinLength int `yaml:"min_length"`

	RandomState uint64 `yaml:"random_state"`
	// Workers bounds the goroutines generating walks; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	Verbose bool           `yaml:"-"`
	Logger  logging.Logger `yaml:"-"`
}

// DefaultRandomState is the random state used when none is set.
const DefaultRandomState = 42

// NewParameters returns parameters for walks of the given length with one
// iteration and neutral weights.
func NewParameters(length int) (Parameters, error) {
	p := Parameters{
		Length:      length,
		Iterations:  1,
		Weights:     DefaultWeights(),
		RandomState: DefaultRandomState,
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Validate checks the parameters independently of any graph.
func (p Parameters) Validate() error {
	if p.Length <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLength, p.Length)
	}
	if p.Iterations <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidIterations, p.Iterations)
	}
	if p.MaxNeighbours < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxNeighbours, p.MaxNeighbours)
	}
	return p.Weights.Validate()
}

// ValidateFor checks the parameters against a graph.
func (p Parameters) ValidateFor(g *graph.Graph) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.IsNode2Vec() && g.IsDirected() {
		return ErrDirectedNode2Vec
	}
	if g.NumberOfUniqueSources() == 0 {
		return ErrNoSources
	}
	return nil
}

// seed is the base seed every walk derives its generator from.
func (p Parameters) seed() uint64 {
	return splitmix64(p.RandomState)
}

// Package holdout splits the edges of a graph into training and validation
// graphs for link prediction.
package holdout

import (
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
)

var (
	ErrInvalidTrainSize   = errors.New("train size must be strictly between 0 and 1")
	ErrInvalidDegreeRange = errors.New("minimum node degree exceeds maximum node degree")
	ErrSingleEdge         = errors.New("a holdout needs more than one edge")
	ErrEmptySplit         = errors.New("train size leaves one side of the split empty")
	ErrForestTooLarge     = errors.New("spanning forest needs more edges than the training budget")
	ErrNotEnoughEdges     = errors.New("not enough eligible edges for the validation set")
	ErrNoSelectedEdges    = errors.New("selected edge types have no edges")
	ErrNotMultigraph      = errors.New("minimum number of overlaps requires a multigraph")
)

const (
	// DefaultTrainSize is the fraction of edges kept for training.
	DefaultTrainSize = 0.8
	// DefaultRandomState seeds splits when none is configured.
	DefaultRandomState = 0xbadf00d
)

// Options configures a holdout.
type Options struct {
	// TrainSize is the target fraction of directed edges kept for training.
	TrainSize   float64 `yaml:"train_size"`
	RandomState uint64  `yaml:"random_state"`

	// EdgeTypes restricts validation edges to these edge type names.
	EdgeTypes []string `yaml:"edge_types,omitempty"`
	// IncludeAllEdgeTypes moves every parallel edge of a selected pair.
	IncludeAllEdgeTypes bool `yaml:"include_all_edge_types"`

	// MinNodeDegree and MaxNodeDegree bound the degree of both endpoints of
	// a validation edge. A zero MaxNodeDegree means no upper bound.
	MinNodeDegree uint64 `yaml:"min_node_degree"`
	MaxNodeDegree uint64 `yaml:"max_node_degree"`

	// MinNumberOverlaps is the minimum number of parallel edges a pair needs
	// before a random holdout may pick it. Zero disables the filter.
	MinNumberOverlaps uint64 `yaml:"min_number_overlaps"`

	Verbose bool           `yaml:"-"`
	Logger  logging.Logger `yaml:"-"`
}

// DefaultOptions returns an 80/20 split with the default random state.
func DefaultOptions() Options {
	return Options{
		TrainSize:   DefaultTrainSize,
		RandomState: DefaultRandomState,
	}
}

// Validate checks the options independently of any graph.
func (o Options) Validate() error {
	if math.IsNaN(o.TrainSize) || o.TrainSize <= 0 || o.TrainSize >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidTrainSize, o.TrainSize)
	}
	if o.MaxNodeDegree > 0 && o.MinNodeDegree > o.MaxNodeDegree {
		return fmt.Errorf("%w: %d > %d", ErrInvalidDegreeRange, o.MinNodeDegree, o.MaxNodeDegree)
	}
	return nil
}

// edgeTypeSet resolves the configured edge type names against g. A nil set
// means every edge type is eligible.
func (o Options) edgeTypeSet(op string, g *graph.Graph) (map[graph.EdgeTypeID]struct{}, error) {
	if len(o.EdgeTypes) == 0 {
		return nil, nil
	}
	if !g.HasEdgeTypes() {
		return nil, graph.NewError(op).Cause(graph.ErrNoEdgeTypes).Err()
	}
	set := make(map[graph.EdgeTypeID]struct{}, len(o.EdgeTypes))
	for _, name := range o.EdgeTypes {
		id, err := g.EdgeTypeIDFromName(name)
		if err != nil {
			return nil, err
		}
		set[id] = struct{}{}
	}
	return set, nil
}

// degreeAllowed reports whether both endpoints satisfy the degree bounds.
func (o Options) degreeAllowed(g *graph.Graph, src, dst graph.NodeID) bool {
	for _, node := range []graph.NodeID{src, dst} {
		d := g.UncheckedDegree(node)
		if d < o.MinNodeDegree {
			return false
		}
		if o.MaxNodeDegree > 0 && d > o.MaxNodeDegree {
			return false
		}
	}
	return true
}

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/parallel"
	"github.com/dd0wney/cluso-graphwalk/pkg/pools"
)

// ErrUnknownMetric is returned for an unrecognised link prediction metric.
var ErrUnknownMetric = errors.New("unknown link prediction metric")

// Metric selects the scoring formula for link prediction.
//
// Scores across different metrics are not comparable. Common neighbours
// returns integer counts, Jaccard a ratio, Adamic-Adar and resource
// allocation weighted sums, and preferential attachment degree products.
type Metric int

const (
	// MetricCommonNeighbours scores by |N(u) ∩ N(v)|.
	MetricCommonNeighbours Metric = iota
	// MetricJaccard scores by |N(u) ∩ N(v)| / |N(u) ∪ N(v)|.
	MetricJaccard
	// MetricAdamicAdar scores by Σ_{w ∈ N(u)∩N(v)} 1/log(|N(w)|).
	MetricAdamicAdar
	// MetricResourceAllocation scores by Σ_{w ∈ N(u)∩N(v)} 1/|N(w)|.
	MetricResourceAllocation
	// MetricPreferentialAttachment scores by |N(u)| × |N(v)|.
	MetricPreferentialAttachment
)

var metricNames = [...]string{
	MetricCommonNeighbours:       "common_neighbours",
	MetricJaccard:                "jaccard",
	MetricAdamicAdar:             "adamic_adar",
	MetricResourceAllocation:     "resource_allocation",
	MetricPreferentialAttachment: "preferential_attachment",
}

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricNames) {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricNames[m]
}

// Metrics returns every metric in declaration order.
func Metrics() []Metric {
	out := make([]Metric, len(metricNames))
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

// ParseMetric resolves a metric from its name, ignoring case.
func ParseMetric(name string) (Metric, error) {
	for i, n := range metricNames {
		if strings.EqualFold(n, name) {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// EdgePair is a candidate link between two nodes.
type EdgePair struct {
	Source      graph.NodeID
	Destination graph.NodeID
}

// UniqueEdgePairs returns one pair per distinct endpoint pair of g, skipping
// self-loops. Undirected edges are returned once with the smaller id first.
func UniqueEdgePairs(g *graph.Graph) []EdgePair {
	var out []EdgePair
	for e := range g.NumberOfDirectedEdges() {
		id := graph.EdgeID(e)
		src, dst := g.Source(id), g.Destination(id)
		if src == dst || !g.IsDirected() && src > dst {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == (EdgePair{src, dst}) {
			continue
		}
		out = append(out, EdgePair{src, dst})
	}
	return out
}

// neighbourIDs appends the distinct non-self neighbours of node to dst in
// ascending order.
func neighbourIDs(dst []uint32, g *graph.Graph, node graph.NodeID) []uint32 {
	forEachNeighbour(g, node, func(w graph.NodeID) {
		dst = append(dst, uint32(w))
	})
	return dst
}

func neighbourCount(g *graph.Graph, node graph.NodeID) int {
	n := 0
	forEachNeighbour(g, node, func(graph.NodeID) { n++ })
	return n
}

// scorer computes metrics for one goroutine, reusing its neighbour buffers.
type scorer struct {
	g    *graph.Graph
	a, b []uint32
}

func newScorer(g *graph.Graph) *scorer {
	return &scorer{g: g, a: pools.NodeIDs(64), b: pools.NodeIDs(64)}
}

func (s *scorer) release() {
	pools.PutNodeIDs(s.a)
	pools.PutNodeIDs(s.b)
}

func (s *scorer) score(m Metric, u, v graph.NodeID) float64 {
	s.a = neighbourIDs(s.a[:0], s.g, u)
	s.b = neighbourIDs(s.b[:0], s.g, v)

	if m == MetricPreferentialAttachment {
		return float64(len(s.a)) * float64(len(s.b))
	}

	common, sum := 0, 0.0
	for i, j := 0, 0; i < len(s.a) && j < len(s.b); {
		switch {
		case s.a[i] < s.b[j]:
			i++
		case s.a[i] > s.b[j]:
			j++
		default:
			common++
			switch m {
			case MetricAdamicAdar:
				// log(1) = 0, so single-neighbour nodes are skipped
				if d := neighbourCount(s.g, graph.NodeID(s.a[i])); d > 1 {
					sum += 1.0 / math.Log(float64(d))
				}
			case MetricResourceAllocation:
				if d := neighbourCount(s.g, graph.NodeID(s.a[i])); d > 0 {
					sum += 1.0 / float64(d)
				}
			}
			i++
			j++
		}
	}

	switch m {
	case MetricCommonNeighbours:
		return float64(common)
	case MetricJaccard:
		union := len(s.a) + len(s.b) - common
		if union == 0 {
			return 0
		}
		return float64(common) / float64(union)
	default:
		return sum
	}
}

func checkPair(g *graph.Graph, m Metric, u, v graph.NodeID) error {
	if m < 0 || int(m) >= len(metricNames) {
		return fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
	n := graph.NodeID(g.NumberOfNodes())
	if u >= n {
		return graph.NodeNotFoundError("Score", u)
	}
	if v >= n {
		return graph.NodeNotFoundError("Score", v)
	}
	return nil
}

// Score computes the link prediction score of a node pair. Neighbourhoods
// follow outbound edges and ignore self-loops and parallel edges.
func Score(g *graph.Graph, m Metric, u, v graph.NodeID) (float64, error) {
	if err := checkPair(g, m, u, v); err != nil {
		return 0, err
	}
	s := newScorer(g)
	defer s.release()
	return s.score(m, u, v), nil
}

// CommonNeighbours returns the number of shared neighbours of u and v.
func CommonNeighbours(g *graph.Graph, u, v graph.NodeID) (float64, error) {
	return Score(g, MetricCommonNeighbours, u, v)
}

// Jaccard returns the Jaccard coefficient of the neighbourhoods of u and v.
func Jaccard(g *graph.Graph, u, v graph.NodeID) (float64, error) {
	return Score(g, MetricJaccard, u, v)
}

// AdamicAdar returns the Adamic-Adar index of u and v.
func AdamicAdar(g *graph.Graph, u, v graph.NodeID) (float64, error) {
	return Score(g, MetricAdamicAdar, u, v)
}

// ResourceAllocation returns the resource allocation index of u and v.
func ResourceAllocation(g *graph.Graph, u, v graph.NodeID) (float64, error) {
	return Score(g, MetricResourceAllocation, u, v)
}

// PreferentialAttachment returns the product of the neighbourhood sizes.
func PreferentialAttachment(g *graph.Graph, u, v graph.NodeID) (float64, error) {
	return Score(g, MetricPreferentialAttachment, u, v)
}

// ScoreEdges scores every pair against g with the given metric. Pairs are
// split into batches run by workers goroutines; scores[i] belongs to
// pairs[i].
func ScoreEdges(ctx context.Context, g *graph.Graph, pairs []EdgePair, m Metric, workers int) ([]float64, error) {
	for _, p := range pairs {
		if err := checkPair(g, m, p.Source, p.Destination); err != nil {
			return nil, err
		}
	}

	scores := make([]float64, len(pairs))
	err := parallel.RunBatches(ctx, workers, len(pairs), 256, func(ctx context.Context, start, end int) error {
		s := newScorer(g)
		defer s.release()
		for i := start; i < end; i++ {
			if i%64 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			scores[i] = s.score(m, pairs[i].Source, pairs[i].Destination)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}

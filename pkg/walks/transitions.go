package walks

import (
	"math"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/pools"
)

// walker generates walks on one goroutine. It owns its generator and scratch
// space and must not be shared.
type walker struct {
	g    *graph.Graph
	p    Parameters
	rng  *walkRand
	base uint64

	uniform        bool
	nodeTypeWeight float64
	edgeTypeWeight float64
	node2vec       bool
}

func newWalker(g *graph.Graph, p Parameters) *walker {
	w := &walker{
		g:              g,
		p:              p,
		rng:            newWalkRand(),
		base:           p.seed(),
		nodeTypeWeight: p.ChangeNodeType,
		edgeTypeWeight: p.ChangeEdgeType,
		node2vec:       p.IsNode2Vec(),
	}
	// Type weights without type information cannot change any transition.
	if !g.HasNodeTypes() {
		w.nodeTypeWeight = 1
	}
	if !g.HasEdgeTypes() {
		w.edgeTypeWeight = 1
	}
	w.uniform = !g.HasWeights() &&
		!w.node2vec &&
		w.nodeTypeWeight == 1 &&
		w.edgeTypeWeight == 1 &&
		!p.NormalizeByDegree &&
		p.MaxNeighbours == 0
	return w
}

// walk fills a walk of at most p.Length nodes starting at start, stopping
// early when it reaches a trap.
func (w *walker) walk(index int, start graph.NodeID) []graph.NodeID {
	w.rng.reseed(w.base, index)

	out := make([]graph.NodeID, 1, w.p.Length)
	out[0] = start
	if w.p.Length == 1 {
		return out
	}

	if w.uniform {
		cur := start
		for len(out) < w.p.Length && !w.g.IsTrap(cur) {
			begin, end := w.g.EdgeRange(cur)
			cur = w.g.Destination(begin + graph.EdgeID(w.rng.Uint64N(uint64(end-begin))))
			out = append(out, cur)
		}
		return out
	}

	var (
		prev     graph.NodeID
		prevEdge graph.EdgeID
		hasPrev  bool
	)
	cur := start
	for len(out) < w.p.Length && !w.g.IsTrap(cur) {
		edge := w.step(prev, prevEdge, hasPrev, cur)
		prev, prevEdge, hasPrev = cur, edge, true
		cur = w.g.Destination(edge)
		out = append(out, cur)
	}
	return out
}

// step samples the next edge leaving cur, which must not be a trap.
func (w *walker) step(prev graph.NodeID, prevEdge graph.EdgeID, hasPrev bool, cur graph.NodeID) graph.EdgeID {
	begin, end := w.g.EdgeRange(cur)
	if k := graph.EdgeID(w.p.MaxNeighbours); k > 0 && end-begin > k {
		begin += graph.EdgeID(w.rng.Uint64N(uint64(end - begin - k + 1)))
		end = begin + k
	}

	n := int(end - begin)
	weights := pools.Float64s(n)[:n]
	defer pools.PutFloat64s(weights)

	var curType graph.NodeTypeID
	if w.nodeTypeWeight != 1 {
		curType = w.g.UncheckedNodeTypeID(cur)
	}
	var prevEdgeType graph.EdgeTypeID
	if hasPrev && w.edgeTypeWeight != 1 {
		prevEdgeType = w.g.UncheckedEdgeTypeID(prevEdge)
	}

	total := 0.0
	for i := range n {
		e := begin + graph.EdgeID(i)
		dst := w.g.Destination(e)
		x := w.g.WeightOrOne(e)

		if w.p.NormalizeByDegree {
			if d := w.g.UncheckedDegree(dst); d > 1 {
				x /= float64(d)
			}
		}
		if w.nodeTypeWeight != 1 && w.g.UncheckedNodeTypeID(dst) == curType {
			x /= w.nodeTypeWeight
		}
		if hasPrev {
			if w.edgeTypeWeight != 1 && w.g.UncheckedEdgeTypeID(e) == prevEdgeType {
				x /= w.edgeTypeWeight
			}
			if w.node2vec {
				switch {
				case dst == prev || dst == cur:
					x *= w.p.Return
				case w.p.Explore != 1 && !w.g.HasEdge(prev, dst):
					x *= w.p.Explore
				}
			}
		}
		weights[i] = x
		total += x
	}

	return begin + graph.EdgeID(sample(weights, total, w.rng.Float64()))
}

// sample picks an index with probability proportional to its weight, given
// u uniform in [0, 1). Infinite weights share all the mass, and a range
// without positive mass is sampled uniformly.
func sample(weights []float64, total, u float64) int {
	switch {
	case math.IsInf(total, 1):
		return sampleInfinite(weights, u)
	case !(total > 0):
		return min(int(u*float64(len(weights))), len(weights)-1)
	}
	target := u * total
	acc := 0.0
	last := len(weights) - 1
	for i, x := range weights {
		if x <= 0 {
			continue
		}
		acc += x
		if target < acc {
			return i
		}
		last = i
	}
	// Rounding can leave target at the very end of the range.
	return last
}

func sampleInfinite(weights []float64, u float64) int {
	infinite := 0
	for _, x := range weights {
		if math.IsInf(x, 1) {
			infinite++
		}
	}
	k := min(int(u*float64(infinite)), infinite-1)
	for i, x := range weights {
		if math.IsInf(x, 1) {
			if k == 0 {
				return i
			}
			k--
		}
	}
	return len(weights) - 1
}

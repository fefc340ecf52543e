package holdout

import (
	"math/rand/v2"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
)

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// shuffledEdges returns every directed edge id in an order fixed by the
// random state.
func shuffledEdges(g *graph.Graph, randomState uint64) []graph.EdgeID {
	s := splitmix64(randomState)
	rng := rand.New(rand.NewPCG(s, splitmix64(s)))
	order := make([]graph.EdgeID, g.NumberOfDirectedEdges())
	for i := range order {
		order[i] = graph.EdgeID(i)
	}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

// forest is the set of endpoint pairs of a spanning forest. Undirected pairs
// are stored with the smaller id first.
type forest struct {
	directed bool
	pairs    map[[2]graph.NodeID]struct{}
}

func (f forest) key(src, dst graph.NodeID) [2]graph.NodeID {
	if !f.directed && src > dst {
		src, dst = dst, src
	}
	return [2]graph.NodeID{src, dst}
}

func (f forest) add(src, dst graph.NodeID) {
	f.pairs[f.key(src, dst)] = struct{}{}
}

func (f forest) contains(src, dst graph.NodeID) bool {
	_, ok := f.pairs[f.key(src, dst)]
	return ok
}

func (f forest) len() int {
	return len(f.pairs)
}

// spanningForest runs Kruskal over the shuffled edges, ignoring direction.
// Edges whose type is in deferred are only considered after all others, so
// the forest avoids the edge types meant for validation where it can.
func spanningForest(g *graph.Graph, order []graph.EdgeID, deferred map[graph.EdgeTypeID]struct{}) forest {
	f := forest{
		directed: g.IsDirected(),
		pairs:    make(map[[2]graph.NodeID]struct{}, g.NumberOfNodes()),
	}
	ds := graph.NewDisjointSet(g.NumberOfNodes())

	visit := func(wantDeferred bool) {
		for _, e := range order {
			if deferred != nil {
				_, isDeferred := deferred[edgeType(g, e)]
				if isDeferred != wantDeferred {
					continue
				}
			}
			src, dst := g.Source(e), g.Destination(e)
			if src == dst {
				continue
			}
			if ds.Union(src, dst) {
				f.add(src, dst)
			}
		}
	}
	visit(false)
	if deferred != nil {
		visit(true)
	}
	return f
}

func edgeType(g *graph.Graph, e graph.EdgeID) graph.EdgeTypeID {
	if !g.HasEdgeTypes() {
		return 0
	}
	return g.UncheckedEdgeTypeID(e)
}

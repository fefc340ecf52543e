package algorithms

import (
	"container/heap"
	"context"
	"sync"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/parallel"
)

// RankedNode holds a node with its centrality score.
type RankedNode struct {
	Node  graph.NodeID
	Name  string
	Score float64
}

// rankedNodeHeap is a min-heap by score. On equal scores the larger node id
// sorts first so it is evicted before smaller ids.
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int { return len(h) }
func (h rankedNodeHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].Node > h[j].Node
}
func (h rankedNodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopNodes returns the k highest scores in descending order, ties broken
// by ascending node id.
// Time complexity: O(n log k)
func TopNodes(g *graph.Graph, scores []float64, k int) []RankedNode {
	if k <= 0 {
		return nil
	}

	h := make(rankedNodeHeap, 0, k)
	heap.Init(&h)

	for id, score := range scores {
		rn := RankedNode{Node: graph.NodeID(id), Score: score}
		if h.Len() < k {
			heap.Push(&h, rn)
			continue
		}
		if top := h[0]; score > top.Score || score == top.Score && rn.Node < top.Node {
			heap.Pop(&h)
			heap.Push(&h, rn)
		}
	}

	result := make([]RankedNode, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedNode)
	}
	for i := range result {
		result[i].Name, _ = g.NodeName(result[i].Node)
	}
	return result
}

// DegreeCentrality returns each node's outbound degree divided by n-1.
// Undirected graphs store both directions, so this is the full degree there.
func DegreeCentrality(g *graph.Graph) []float64 {
	n := g.NumberOfNodes()
	degree := make([]float64, n)
	if n < 2 {
		return degree
	}
	norm := 1.0 / float64(n-1)
	for id := range n {
		degree[id] = float64(g.UncheckedDegree(graph.NodeID(id))) * norm
	}
	return degree
}

// TopKCentralNodes returns the k nodes with the highest degree.
func TopKCentralNodes(g *graph.Graph, k int) []RankedNode {
	return TopNodes(g, DegreeCentrality(g), k)
}

// forEachNeighbour calls fn once per distinct destination of node, skipping
// self-loops. Parallel edges are adjacent in the edge order.
func forEachNeighbour(g *graph.Graph, node graph.NodeID, fn func(graph.NodeID)) {
	start, end := g.EdgeRange(node)
	for e := start; e < end; e++ {
		dst := g.Destination(e)
		if dst == node || e > start && g.Destination(e-1) == dst {
			continue
		}
		fn(dst)
	}
}

// brandesState is the scratch space of one Brandes pass.
type brandesState struct {
	stack    []graph.NodeID
	queue    []graph.NodeID
	preds    [][]graph.NodeID
	sigma    []float64
	distance []int
	delta    []float64
}

func newBrandesState(n int) *brandesState {
	return &brandesState{
		stack:    make([]graph.NodeID, 0, n),
		queue:    make([]graph.NodeID, 0, n),
		preds:    make([][]graph.NodeID, n),
		sigma:    make([]float64, n),
		distance: make([]int, n),
		delta:    make([]float64, n),
	}
}

// accumulate runs a single-source Brandes pass from source and adds the
// dependencies to betweenness.
func (s *brandesState) accumulate(g *graph.Graph, source graph.NodeID, betweenness []float64) {
	for i := range s.sigma {
		s.preds[i] = s.preds[i][:0]
		s.sigma[i] = 0
		s.distance[i] = -1
		s.delta[i] = 0
	}
	s.stack = s.stack[:0]
	s.queue = append(s.queue[:0], source)
	s.sigma[source] = 1
	s.distance[source] = 0

	for head := 0; head < len(s.queue); head++ {
		v := s.queue[head]
		s.stack = append(s.stack, v)
		forEachNeighbour(g, v, func(w graph.NodeID) {
			if s.distance[w] < 0 {
				s.queue = append(s.queue, w)
				s.distance[w] = s.distance[v] + 1
			}
			if s.distance[w] == s.distance[v]+1 {
				s.sigma[w] += s.sigma[v]
				s.preds[w] = append(s.preds[w], v)
			}
		})
	}

	for i := len(s.stack) - 1; i >= 0; i-- {
		w := s.stack[i]
		for _, v := range s.preds[w] {
			s.delta[v] += (s.sigma[v] / s.sigma[w]) * (1.0 + s.delta[w])
		}
		if w != source {
			betweenness[w] += s.delta[w]
		}
	}
}

// BetweennessCentrality computes betweenness centrality for all nodes with
// Brandes' algorithm, normalised by 1/((n-1)(n-2)). Sources are processed in
// parallel by the given number of workers.
func BetweennessCentrality(ctx context.Context, g *graph.Graph, workers int) ([]float64, error) {
	n := g.NumberOfNodes()
	betweenness := make([]float64, n)

	var mu sync.Mutex
	err := parallel.RunBatches(ctx, workers, n, 32, func(ctx context.Context, start, end int) error {
		state := newBrandesState(n)
		local := make([]float64, n)
		for source := start; source < end; source++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			state.accumulate(g, graph.NodeID(source), local)
		}
		mu.Lock()
		for i, x := range local {
			betweenness[i] += x
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if n > 2 {
		norm := 1.0 / float64((n-1)*(n-2))
		for i := range betweenness {
			betweenness[i] *= norm
		}
	}
	return betweenness, nil
}

// ClosenessCentrality computes, for each node, the number of nodes it
// reaches divided by the sum of their hop distances.
func ClosenessCentrality(ctx context.Context, g *graph.Graph, workers int) ([]float64, error) {
	n := g.NumberOfNodes()
	closeness := make([]float64, n)

	err := parallel.RunBatches(ctx, workers, n, 32, func(ctx context.Context, start, end int) error {
		distance := make([]int, n)
		queue := make([]graph.NodeID, 0, n)
		for source := start; source < end; source++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := range distance {
				distance[i] = -1
			}
			distance[source] = 0
			queue = append(queue[:0], graph.NodeID(source))

			total, reached := 0, 0
			for head := 0; head < len(queue); head++ {
				v := queue[head]
				forEachNeighbour(g, v, func(w graph.NodeID) {
					if distance[w] < 0 {
						distance[w] = distance[v] + 1
						total += distance[w]
						reached++
						queue = append(queue, w)
					}
				})
			}
			if total > 0 {
				closeness[source] = float64(reached) / float64(total)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closeness, nil
}

// CentralityResult holds degree, closeness and betweenness centrality with
// their top nodes.
type CentralityResult struct {
	Degree      []float64
	Closeness   []float64
	Betweenness []float64

	TopByDegree      []RankedNode
	TopByCloseness   []RankedNode
	TopByBetweenness []RankedNode
}

// ComputeAllCentrality computes every centrality measure and the top k nodes
// of each.
func ComputeAllCentrality(ctx context.Context, g *graph.Graph, workers, k int) (*CentralityResult, error) {
	betweenness, err := BetweennessCentrality(ctx, g, workers)
	if err != nil {
		return nil, err
	}
	closeness, err := ClosenessCentrality(ctx, g, workers)
	if err != nil {
		return nil, err
	}
	degree := DegreeCentrality(g)

	return &CentralityResult{
		Degree:           degree,
		Closeness:        closeness,
		Betweenness:      betweenness,
		TopByDegree:      TopNodes(g, degree, k),
		TopByCloseness:   TopNodes(g, closeness, k),
		TopByBetweenness: TopNodes(g, betweenness, k),
	}, nil
}

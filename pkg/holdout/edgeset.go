package holdout

import (
	"math/bits"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
)

// edgeSet is a bitset over directed edge ids.
type edgeSet struct {
	words []uint64
	size  uint64
	count uint64
}

func newEdgeSet(size uint64) *edgeSet {
	return &edgeSet{words: make([]uint64, (size+63)/64), size: size}
}

func (s *edgeSet) add(e graph.EdgeID) {
	w, b := e>>6, uint64(1)<<(e&63)
	if s.words[w]&b == 0 {
		s.words[w] |= b
		s.count++
	}
}

func (s *edgeSet) has(e graph.EdgeID) bool {
	return s.words[e>>6]&(1<<(e&63)) != 0
}

// addEdge adds e, or every parallel edge from src to dst when all is set.
func (s *edgeSet) addEdge(g *graph.Graph, e graph.EdgeID, src, dst graph.NodeID, all bool) {
	if !all {
		s.add(e)
		return
	}
	start, end := g.EdgeIDs(src, dst)
	for id := start; id < end; id++ {
		s.add(id)
	}
}

// partition returns the ids outside and inside the set, both sorted.
func (s *edgeSet) partition() (outside, inside []graph.EdgeID) {
	inside = make([]graph.EdgeID, 0, s.count)
	outside = make([]graph.EdgeID, 0, s.size-s.count)
	for w, word := range s.words {
		if word == 0 {
			for i := uint64(w) * 64; i < min(uint64(w+1)*64, s.size); i++ {
				outside = append(outside, graph.EdgeID(i))
			}
			continue
		}
		if bits.OnesCount64(word) == 64 {
			for i := uint64(w) * 64; i < uint64(w+1)*64; i++ {
				inside = append(inside, graph.EdgeID(i))
			}
			continue
		}
		for i := uint64(w) * 64; i < min(uint64(w+1)*64, s.size); i++ {
			if s.has(graph.EdgeID(i)) {
				inside = append(inside, graph.EdgeID(i))
			} else {
				outside = append(outside, graph.EdgeID(i))
			}
		}
	}
	return outside, inside
}

package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
)

func buildGraph(t *testing.T, directed bool, edges [][2]string) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder("algorithms", directed)
	for _, e := range edges {
		if err := b.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func nodeID(t *testing.T, g *graph.Graph, name string) graph.NodeID {
	t.Helper()
	id, err := g.NodeID(name)
	if err != nil {
		t.Fatalf("NodeID(%q) failed: %v", name, err)
	}
	return id
}

// star has hub c joined to four leaves.
func star(t *testing.T) *graph.Graph {
	return buildGraph(t, false, [][2]string{{"c", "l1"}, {"c", "l2"}, {"c", "l3"}, {"c", "l4"}})
}

func TestDegreeCentrality(t *testing.T) {
	g := star(t)
	degree := DegreeCentrality(g)

	if got := degree[nodeID(t, g, "c")]; got != 1.0 {
		t.Errorf("Expected hub degree centrality 1.0, got %f", got)
	}
	if got := degree[nodeID(t, g, "l1")]; got != 0.25 {
		t.Errorf("Expected leaf degree centrality 0.25, got %f", got)
	}
}

func TestTopKCentralNodes(t *testing.T) {
	g := star(t)
	top := TopKCentralNodes(g, 3)
	if len(top) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(top))
	}
	if top[0].Name != "c" {
		t.Errorf("Expected hub first, got %s", top[0].Name)
	}
	// Leaves tie, so the smaller ids win.
	if top[1].Name != "l1" || top[2].Name != "l2" {
		t.Errorf("Expected l1, l2 after the hub, got %s, %s", top[1].Name, top[2].Name)
	}

	if TopKCentralNodes(g, 0) != nil {
		t.Error("Expected nil for k=0")
	}
	if got := len(TopKCentralNodes(g, 100)); got != 5 {
		t.Errorf("Expected all 5 nodes, got %d", got)
	}
}

func TestBetweennessCentrality(t *testing.T) {
	tests := []struct {
		name  string
		g     *graph.Graph
		node  string
		want  float64
		other string
	}{
		{"star hub", star(t), "c", 1.0, "l1"},
		{"path middle", buildGraph(t, false, [][2]string{{"a", "b"}, {"b", "c"}}), "b", 1.0, "a"},
		{"directed path", buildGraph(t, true, [][2]string{{"a", "b"}, {"b", "c"}}), "b", 0.5, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, workers := range []int{1, 4} {
				bc, err := BetweennessCentrality(context.Background(), tt.g, workers)
				if err != nil {
					t.Fatalf("BetweennessCentrality failed: %v", err)
				}
				if got := bc[nodeID(t, tt.g, tt.node)]; math.Abs(got-tt.want) > 1e-12 {
					t.Errorf("workers=%d: expected %f for %s, got %f", workers, tt.want, tt.node, got)
				}
				if got := bc[nodeID(t, tt.g, tt.other)]; got != 0 {
					t.Errorf("workers=%d: expected 0 for %s, got %f", workers, tt.other, got)
				}
			}
		})
	}
}

func TestBetweennessCentrality_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BetweennessCentrality(ctx, star(t), 2); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestClosenessCentrality(t *testing.T) {
	g := star(t)
	closeness, err := ClosenessCentrality(context.Background(), g, 2)
	if err != nil {
		t.Fatalf("ClosenessCentrality failed: %v", err)
	}
	if got := closeness[nodeID(t, g, "c")]; got != 1.0 {
		t.Errorf("Expected hub closeness 1.0, got %f", got)
	}
	// A leaf reaches the hub at 1 hop and three leaves at 2 hops.
	if got := closeness[nodeID(t, g, "l1")]; math.Abs(got-4.0/7.0) > 1e-12 {
		t.Errorf("Expected leaf closeness 4/7, got %f", got)
	}
}

func TestComputeAllCentrality(t *testing.T) {
	g := star(t)
	res, err := ComputeAllCentrality(context.Background(), g, 2, 1)
	if err != nil {
		t.Fatalf("ComputeAllCentrality failed: %v", err)
	}
	for name, top := range map[string][]RankedNode{
		"degree":      res.TopByDegree,
		"closeness":   res.TopByCloseness,
		"betweenness": res.TopByBetweenness,
	} {
		if len(top) != 1 || top[0].Name != "c" {
			t.Errorf("Expected hub as top %s node, got %+v", name, top)
		}
	}
}

// kite is a square with one diagonal and a two-node tail.
var kite = [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}, {"a", "c"}, {"d", "e"}, {"e", "f"}}

func TestBetweennessCentrality_MatchesGonum(t *testing.T) {
	for _, directed := range []bool{false, true} {
		g := buildGraph(t, directed, kite)
		bc, err := BetweennessCentrality(context.Background(), g, 3)
		if err != nil {
			t.Fatalf("BetweennessCentrality failed: %v", err)
		}
		want := network.Betweenness(g.ToGonum())

		// Both sides differ only by a constant normalisation factor.
		ratio := 0.0
		for id, got := range bc {
			ref := want[int64(id)]
			if (got == 0) != (ref == 0) {
				t.Fatalf("directed=%v node %d: got %f, gonum %f", directed, id, got, ref)
			}
			if ref == 0 {
				continue
			}
			if ratio == 0 {
				ratio = got / ref
			}
			if math.Abs(got/ref-ratio) > 1e-9 {
				t.Errorf("directed=%v node %d: ratio %f, want %f", directed, id, got/ref, ratio)
			}
		}
		if ratio == 0 {
			t.Errorf("directed=%v: no node has betweenness", directed)
		}
	}
}

func TestClosenessCentrality_MatchesGonum(t *testing.T) {
	g := buildGraph(t, false, kite)
	closeness, err := ClosenessCentrality(context.Background(), g, 2)
	if err != nil {
		t.Fatalf("ClosenessCentrality failed: %v", err)
	}
	gg := g.ToGonum()
	want := network.Closeness(gg, path.DijkstraAllPaths(gg))

	// On a connected graph every node reaches the n-1 others.
	reached := float64(g.NumberOfNodes() - 1)
	for id, got := range closeness {
		if ref := want[int64(id)] * reached; math.Abs(got-ref) > 1e-12 {
			t.Errorf("node %d: got %f, want %f", id, got, ref)
		}
	}
}

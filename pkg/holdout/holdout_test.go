package holdout

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
)

type edgeSpec struct {
	src, dst, typ string
}

func build(t *testing.T, directed bool, edges []edgeSpec) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder("holdout", directed)
	for _, e := range edges {
		require.NoError(t, b.AddEdgeRecord(graph.EdgeRecord{Source: e.src, Destination: e.dst, Type: e.typ}))
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// ringWithChords returns the edges of an n-node ring named prefix0..prefixN-1
// plus chords from every node to the node three steps ahead.
func ringWithChords(prefix string, n int, ringType, chordType string) []edgeSpec {
	var edges []edgeSpec
	for i := range n {
		name := func(j int) string { return fmt.Sprintf("%s%d", prefix, j%n) }
		edges = append(edges,
			edgeSpec{name(i), name(i + 1), ringType},
			edgeSpec{name(i), name(i + 3), chordType},
		)
	}
	return edges
}

// twoComponents has a 30-node and a 10-node component plus a node whose only
// edge is a self-loop.
func twoComponents(t *testing.T, directed bool) *graph.Graph {
	edges := ringWithChords("n", 30, "", "")
	edges = append(edges, ringWithChords("m", 10, "", "")...)
	edges = append(edges, edgeSpec{"s", "s", ""})
	return build(t, directed, edges)
}

func quietOptions(trainSize float64) Options {
	opts := DefaultOptions()
	opts.TrainSize = trainSize
	opts.Logger = logging.NewNopLogger()
	return opts
}

type triple struct {
	src, dst graph.NodeID
	typ      graph.EdgeTypeID
}

func triples(g *graph.Graph) []triple {
	out := make([]triple, 0, g.NumberOfDirectedEdges())
	for e := range g.NumberOfDirectedEdges() {
		id := graph.EdgeID(e)
		out = append(out, triple{g.Source(id), g.Destination(id), edgeType(g, id)})
	}
	return out
}

// assertPartition checks every edge of g lands in exactly one of the outputs.
func assertPartition(t *testing.T, g, train, validation *graph.Graph) {
	t.Helper()
	assert.Equal(t, g.NumberOfDirectedEdges(), train.NumberOfDirectedEdges()+validation.NumberOfDirectedEdges())
	assert.Equal(t, g.NumberOfNodes(), train.NumberOfNodes())
	assert.Equal(t, g.NumberOfNodes(), validation.NumberOfNodes())
	assert.Equal(t, g.IsDirected(), train.IsDirected())

	inTrain := make(map[triple]bool)
	for _, tr := range triples(train) {
		inTrain[tr] = true
	}
	for _, tr := range triples(validation) {
		assert.False(t, inTrain[tr], "edge %v is in both graphs", tr)
		if !g.IsDirected() {
			assert.True(t, validation.HasEdge(tr.dst, tr.src), "edge %v lost its reverse", tr)
		}
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"zero train size", Options{TrainSize: 0}, ErrInvalidTrainSize},
		{"unit train size", Options{TrainSize: 1}, ErrInvalidTrainSize},
		{"negative train size", Options{TrainSize: -0.5}, ErrInvalidTrainSize},
		{"NaN train size", Options{TrainSize: math.NaN()}, ErrInvalidTrainSize},
		{"inverted degrees", Options{TrainSize: 0.5, MinNodeDegree: 5, MaxNodeDegree: 2}, ErrInvalidDegreeRange},
		{"valid", DefaultOptions(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConnectedHoldout_PreservesComponents(t *testing.T) {
	for _, directed := range []bool{false, true} {
		t.Run(fmt.Sprintf("directed=%v", directed), func(t *testing.T) {
			g := twoComponents(t, directed)
			train, validation, err := ConnectedHoldout(context.Background(), g, quietOptions(0.7))
			require.NoError(t, err)

			assertPartition(t, g, train, validation)
			assert.True(t, g.ConnectedComponents().SamePartition(train.ConnectedComponents()),
				"training graph changed the components")

			target := uint64(float64(g.NumberOfDirectedEdges()) * 0.3)
			assert.GreaterOrEqual(t, validation.NumberOfDirectedEdges(), target)

			s, err := g.NodeID("s")
			require.NoError(t, err)
			assert.True(t, train.HasEdge(s, s), "singleton self-loop must stay in training")
			assert.Equal(t, "holdout train", train.Name())
			assert.Equal(t, "holdout validation", validation.Name())
		})
	}
}

func TestConnectedHoldout_Deterministic(t *testing.T) {
	g := twoComponents(t, false)
	opts := quietOptions(0.7)

	_, first, err := ConnectedHoldout(context.Background(), g, opts)
	require.NoError(t, err)
	_, second, err := ConnectedHoldout(context.Background(), g, opts)
	require.NoError(t, err)
	assert.Equal(t, triples(first), triples(second))

	opts.RandomState++
	_, other, err := ConnectedHoldout(context.Background(), g, opts)
	require.NoError(t, err)
	assert.NotEqual(t, triples(first), triples(other))
}

func TestConnectedHoldout_ForestTooLarge(t *testing.T) {
	path := build(t, false, []edgeSpec{{"a", "b", ""}, {"b", "c", ""}, {"c", "d", ""}, {"d", "e", ""}})
	_, _, err := ConnectedHoldout(context.Background(), path, quietOptions(0.8))
	assert.ErrorIs(t, err, ErrForestTooLarge)
}

func TestConnectedHoldout_EdgeTypes(t *testing.T) {
	g := build(t, false, ringWithChords("n", 30, "ring", "chord"))
	opts := quietOptions(0.7)
	opts.EdgeTypes = []string{"chord"}

	train, validation, err := ConnectedHoldout(context.Background(), g, opts)
	require.NoError(t, err)
	assertPartition(t, g, train, validation)

	chord, err := g.EdgeTypeIDFromName("chord")
	require.NoError(t, err)
	for _, tr := range triples(validation) {
		assert.Equal(t, chord, tr.typ)
	}
	assert.GreaterOrEqual(t, validation.NumberOfDirectedEdges(), uint64(18))

	opts.EdgeTypes = []string{"missing"}
	_, _, err = ConnectedHoldout(context.Background(), g, opts)
	assert.ErrorIs(t, err, graph.ErrEdgeTypeNotFound)

	untyped := twoComponents(t, false)
	opts.EdgeTypes = []string{"chord"}
	_, _, err = ConnectedHoldout(context.Background(), untyped, opts)
	assert.ErrorIs(t, err, graph.ErrNoEdgeTypes)
}

func TestConnectedHoldout_DegreeBounds(t *testing.T) {
	g := twoComponents(t, false)
	opts := quietOptions(0.7)
	opts.MinNodeDegree = 100

	_, _, err := ConnectedHoldout(context.Background(), g, opts)
	assert.ErrorIs(t, err, ErrNotEnoughEdges)
}

func TestConnectedHoldout_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ConnectedHoldout(ctx, twoComponents(t, false), quietOptions(0.7))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRandomHoldout(t *testing.T) {
	g := twoComponents(t, false)
	train, validation, err := RandomHoldout(context.Background(), g, quietOptions(0.8))
	require.NoError(t, err)
	assertPartition(t, g, train, validation)
	assert.GreaterOrEqual(t, validation.NumberOfDirectedEdges(), uint64(33))
	assert.LessOrEqual(t, validation.NumberOfDirectedEdges(), uint64(34))
}

func TestRandomHoldout_Errors(t *testing.T) {
	single := build(t, false, []edgeSpec{{"a", "b", ""}})
	_, _, err := RandomHoldout(context.Background(), single, quietOptions(0.5))
	assert.ErrorIs(t, err, ErrSingleEdge)

	opts := quietOptions(0.5)
	opts.MinNumberOverlaps = 2
	_, _, err = RandomHoldout(context.Background(), twoComponents(t, false), opts)
	assert.ErrorIs(t, err, ErrNotMultigraph)

	_, _, err = RandomHoldout(context.Background(), twoComponents(t, false), quietOptions(0.001))
	assert.ErrorIs(t, err, ErrEmptySplit)
}

func TestRandomHoldout_MinNumberOverlaps(t *testing.T) {
	var edges []edgeSpec
	for i := range 10 {
		src, dst := fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1)
		edges = append(edges, edgeSpec{src, dst, "x"})
		if i%2 == 0 {
			edges = append(edges, edgeSpec{src, dst, "y"})
		}
	}
	g := build(t, false, edges)
	require.True(t, g.IsMultigraph())

	opts := quietOptions(0.8)
	opts.MinNumberOverlaps = 2
	train, validation, err := RandomHoldout(context.Background(), g, opts)
	require.NoError(t, err)
	assertPartition(t, g, train, validation)
	for _, tr := range triples(validation) {
		start, end := g.EdgeIDs(tr.src, tr.dst)
		assert.GreaterOrEqual(t, end-start, graph.EdgeID(2))
	}

	opts.IncludeAllEdgeTypes = true
	_, validation, err = RandomHoldout(context.Background(), g, opts)
	require.NoError(t, err)
	for _, tr := range triples(validation) {
		start, end := validation.EdgeIDs(tr.src, tr.dst)
		assert.Equal(t, graph.EdgeID(2), end-start, "parallel edges must move together")
	}
}

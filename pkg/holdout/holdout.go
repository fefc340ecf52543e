package holdout

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
	"github.com/dd0wney/cluso-graphwalk/pkg/progress"
)

// Kind names used in logs and metrics.
const (
	KindConnected = "connected"
	KindRandom    = "random"
)

// ConnectedHoldout splits g into a training and a validation graph. The
// training graph keeps a random spanning forest of g, so it has exactly the
// connected components of g (weak components for directed graphs). The
// validation graph has no connectivity guarantee and holds about
// (1-TrainSize) of the directed edges, or of the edges of the selected types.
func ConnectedHoldout(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, *graph.Graph, error) {
	const op = "ConnectedHoldout"
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	if g.NumberOfDirectedEdges() == 0 {
		return nil, nil, graph.NewError(op).Cause(graph.ErrEmptyGraph).Err()
	}
	types, err := opts.edgeTypeSet(op, g)
	if err != nil {
		return nil, nil, err
	}

	selected := g.NumberOfDirectedEdges()
	if types != nil {
		selected = countEdgesOfTypes(g, types)
		if selected == 0 {
			return nil, nil, fmt.Errorf("%w: %v", ErrNoSelectedEdges, opts.EdgeTypes)
		}
	}
	target := uint64(float64(selected) * (1 - opts.TrainSize))
	if target == 0 {
		return nil, nil, fmt.Errorf("%w: %d eligible edges at train size %v", ErrEmptySplit, selected, opts.TrainSize)
	}
	budget := g.NumberOfDirectedEdges() - target

	order := shuffledEdges(g, opts.RandomState)
	f := spanningForest(g, order, types)
	factor := uint64(2)
	if g.IsDirected() {
		factor = 1
	}
	if need := uint64(f.len()) * factor; need > budget {
		return nil, nil, fmt.Errorf("%w: forest has %d edges, budget is %d; train size must be at least %.4f",
			ErrForestTooLarge, need, budget, float64(need)/float64(g.NumberOfDirectedEdges()))
	}

	return split(ctx, g, KindConnected, opts, order, target, func(e graph.EdgeID, src, dst graph.NodeID) bool {
		if !opts.degreeAllowed(g, src, dst) || g.IsSingletonWithSelfLoops(src) {
			return false
		}
		if types != nil {
			if _, ok := types[edgeType(g, e)]; !ok {
				return false
			}
		}
		return !f.contains(src, dst)
	})
}

// RandomHoldout splits g into a training and a validation graph without any
// connectivity constraint. With IncludeAllEdgeTypes the split size counts
// distinct endpoint pairs instead of directed edges.
func RandomHoldout(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, *graph.Graph, error) {
	const op = "RandomHoldout"
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	if g.NumberOfDirectedEdges() == 0 {
		return nil, nil, graph.NewError(op).Cause(graph.ErrEmptyGraph).Err()
	}
	types, err := opts.edgeTypeSet(op, g)
	if err != nil {
		return nil, nil, err
	}
	if opts.MinNumberOverlaps > 0 && !g.IsMultigraph() {
		return nil, nil, ErrNotMultigraph
	}
	if g.IsDirected() && g.NumberOfDirectedEdges() == 1 || !g.IsDirected() && g.NumberOfDirectedEdges() == 2 {
		return nil, nil, ErrSingleEdge
	}

	total := g.NumberOfDirectedEdges()
	if opts.IncludeAllEdgeTypes {
		total = countPairs(g)
	}
	train := uint64(float64(total) * opts.TrainSize)
	target := total - train
	if train == 0 || target == 0 {
		return nil, nil, fmt.Errorf("%w: %d edges at train size %v", ErrEmptySplit, total, opts.TrainSize)
	}

	order := shuffledEdges(g, opts.RandomState)
	return split(ctx, g, KindRandom, opts, order, target, func(e graph.EdgeID, src, dst graph.NodeID) bool {
		if types != nil {
			if _, ok := types[edgeType(g, e)]; !ok {
				return false
			}
		}
		if opts.MinNumberOverlaps > 0 {
			start, end := g.EdgeIDs(src, dst)
			if uint64(end-start) < opts.MinNumberOverlaps {
				return false
			}
		}
		return opts.degreeAllowed(g, src, dst)
	})
}

// split walks the edges in order and moves eligible ones, with their reverse
// and optionally their parallel edges, to validation until target directed
// edges are selected.
func split(
	ctx context.Context,
	g *graph.Graph,
	kind string,
	opts Options,
	order []graph.EdgeID,
	target uint64,
	eligible func(e graph.EdgeID, src, dst graph.NodeID) bool,
) (*graph.Graph, *graph.Graph, error) {
	logger := logging.OrDefault(opts.Logger).With(
		logging.Component("holdout"),
		logging.Graph(g.Name()),
		logging.String("kind", kind),
	)
	timer := logging.StartTimer(logger, "holdout built",
		logging.TrainSize(opts.TrainSize),
		logging.Seed(opts.RandomState),
	)

	bar := progress.New(os.Stderr, "Picking validation edges", int(target), opts.Verbose)
	defer bar.Finish()

	selected := newEdgeSet(g.NumberOfDirectedEdges())
	for i, e := range order {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				timer.EndError(err)
				return nil, nil, err
			}
		}
		src, dst := g.Source(e), g.Destination(e)
		if !g.IsDirected() && src > dst {
			continue
		}
		if !eligible(e, src, dst) {
			continue
		}

		before := selected.count
		selected.addEdge(g, e, src, dst, opts.IncludeAllEdgeTypes)
		if !g.IsDirected() && src != dst {
			if rev, ok := g.EdgeID(dst, src, edgeType(g, e)); ok {
				selected.addEdge(g, rev, dst, src, opts.IncludeAllEdgeTypes)
			}
		}
		bar.Add(int(selected.count - before))

		if selected.count >= target {
			break
		}
	}
	if selected.count < target {
		err := fmt.Errorf("%w: need %d validation edges, at most %d are available",
			ErrNotEnoughEdges, target, selected.count)
		timer.EndError(err)
		return nil, nil, err
	}

	trainIDs, validationIDs := selected.partition()
	var train, validation *graph.Graph
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		train, err = g.Subgraph(g.Name()+" train", trainIDs)
		return err
	})
	eg.Go(func() error {
		var err error
		validation, err = g.Subgraph(g.Name()+" validation", validationIDs)
		return err
	})
	if err := eg.Wait(); err != nil {
		timer.EndError(err)
		return nil, nil, err
	}

	timer.End(
		logging.Uint64("train_edges", train.NumberOfDirectedEdges()),
		logging.Uint64("validation_edges", validation.NumberOfDirectedEdges()),
	)
	return train, validation, nil
}

func countEdgesOfTypes(g *graph.Graph, types map[graph.EdgeTypeID]struct{}) uint64 {
	var n uint64
	for e := range g.NumberOfDirectedEdges() {
		if _, ok := types[edgeType(g, graph.EdgeID(e))]; ok {
			n++
		}
	}
	return n
}

// countPairs counts distinct directed (src, dst) pairs, self-loops included.
func countPairs(g *graph.Graph) uint64 {
	var n uint64
	for e := range g.NumberOfDirectedEdges() {
		id := graph.EdgeID(e)
		if e == 0 || g.Source(id) != g.Source(id-1) || g.Destination(id) != g.Destination(id-1) {
			n++
		}
	}
	return n
}

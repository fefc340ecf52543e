// Package walks generates typed, biased random walks over a graph.
package walks

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
	"github.com/dd0wney/cluso-graphwalk/pkg/parallel"
	"github.com/dd0wney/cluso-graphwalk/pkg/progress"
)

// batchSize is the number of walks a worker generates per task.
const batchSize = 64

// CompleteWalks starts p.Iterations walks from every node that has an
// outbound edge. Walk i starts from source i modulo the number of sources.
func CompleteWalks(ctx context.Context, g *graph.Graph, p Parameters) ([][]graph.NodeID, error) {
	if err := p.ValidateFor(g); err != nil {
		return nil, err
	}
	sources := g.UniqueSources()
	total := len(sources) * p.Iterations
	return generate(ctx, g, p, total, "complete", func(i int) graph.NodeID {
		return sources[i%len(sources)]
	})
}

// RandomWalks starts quantity*p.Iterations walks from pseudo-randomly chosen
// nodes that have an outbound edge. The same start node sequence repeats for
// every iteration.
func RandomWalks(ctx context.Context, g *graph.Graph, quantity int, p Parameters) ([][]graph.NodeID, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if err := p.ValidateFor(g); err != nil {
		return nil, err
	}
	sources := g.UniqueSources()
	base := p.seed()
	total := quantity * p.Iterations
	return generate(ctx, g, p, total, "random", func(i int) graph.NodeID {
		pick := splitmix64(base ^ uint64(i%quantity))
		return sources[pick%uint64(len(sources))]
	})
}

func generate(ctx context.Context, g *graph.Graph, p Parameters, total int, mode string, startOf func(int) graph.NodeID) ([][]graph.NodeID, error) {
	logger := logging.OrDefault(p.Logger).With(
		logging.Component("walks"),
		logging.Graph(g.Name()),
		logging.String("mode", mode),
	)
	timer := logging.StartTimer(logger, "random walks generated",
		logging.Walks(total),
		logging.Int("length", p.Length),
		logging.Seed(p.RandomState),
	)

	bar := progress.New(os.Stderr, "Compute random walks", total, p.Verbose)
	defer bar.Finish()

	out := make([][]graph.NodeID, total)
	err := parallel.RunBatches(ctx, p.Workers, total, batchSize, func(ctx context.Context, start, end int) error {
		w := newWalker(g, p)
		for i := start; i < end; i++ {
			if i%16 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			out[i] = w.walk(i, startOf(i))
		}
		bar.Add(end - start)
		logger.Debug("walk batch done", logging.Int("start", start), logging.Int("end", end))
		return nil
	})
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	if p.MinLength > 1 && g.HasTraps() {
		out = slices.DeleteFunc(out, func(walk []graph.NodeID) bool {
			return len(walk) < p.MinLength
		})
	}
	timer.End(logging.Int("kept", len(out)))
	return out, nil
}

// Steps returns the total number of nodes across walks.
func Steps(walks [][]graph.NodeID) uint64 {
	var n uint64
	for _, w := range walks {
		n += uint64(len(w))
	}
	return n
}

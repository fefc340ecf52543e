package edgelist

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
)

// EdgeFile describes an edge list. Sources and Destinations are required.
type EdgeFile struct {
	File
	Sources      Column
	Destinations Column
	Weights      Column
	Types        Column
}

// NodeFile describes a node list. Names is required.
type NodeFile struct {
	File
	Names Column
	Types Column
}

// Options configures Load.
type Options struct {
	Name     string
	Directed bool

	Edges EdgeFile
	// Nodes is optional; without it nodes are named by the edge list.
	Nodes *NodeFile

	// StrictNodes rejects edges whose endpoints are not in the node list.
	StrictNodes     bool
	DefaultNodeType string
	DefaultEdgeType string
	Duplicates      graph.DuplicatePolicy

	Logger logging.Logger
}

type nodeRecord struct {
	name, typ string
}

// Load reads the node and edge lists concurrently and builds a graph. Node
// ids follow the node list order, then first appearance in the edge list.
func Load(ctx context.Context, opts Options) (*graph.Graph, error) {
	if !opts.Edges.Sources.IsSet() || !opts.Edges.Destinations.IsSet() {
		return nil, fmt.Errorf("%w: edge list needs source and destination columns", ErrMissingColumn)
	}
	if opts.Nodes != nil && !opts.Nodes.Names.IsSet() {
		return nil, fmt.Errorf("%w: node list needs a name column", ErrMissingColumn)
	}

	logger := logging.OrDefault(opts.Logger).With(
		logging.Component("edgelist"),
		logging.Graph(opts.Name),
	)
	timer := logging.StartTimer(logger, "edge list loaded", logging.Path(opts.Edges.Path))

	var (
		nodes []nodeRecord
		edges []graph.EdgeRecord
	)
	eg, egCtx := errgroup.WithContext(ctx)
	if opts.Nodes != nil {
		eg.Go(func() error {
			var err error
			nodes, err = readNodes(egCtx, *opts.Nodes)
			return err
		})
	}
	eg.Go(func() error {
		var err error
		edges, err = readEdges(egCtx, opts.Edges)
		return err
	})
	if err := eg.Wait(); err != nil {
		timer.EndError(err)
		return nil, err
	}

	builderOpts := []graph.BuilderOption{
		graph.WithDuplicatePolicy(opts.Duplicates),
		graph.WithCapacity(len(nodes), len(edges)),
	}
	if opts.StrictNodes {
		builderOpts = append(builderOpts, graph.WithStrictNodes())
	}
	if opts.DefaultNodeType != "" {
		builderOpts = append(builderOpts, graph.WithDefaultNodeType(opts.DefaultNodeType))
	}
	if opts.DefaultEdgeType != "" {
		builderOpts = append(builderOpts, graph.WithDefaultEdgeType(opts.DefaultEdgeType))
	}

	b := graph.NewBuilder(opts.Name, opts.Directed, builderOpts...)
	for _, n := range nodes {
		if _, err := b.AddNode(n.name, n.typ); err != nil {
			timer.EndError(err)
			return nil, fmt.Errorf("%s: %w", opts.Nodes.Path, err)
		}
	}
	for _, e := range edges {
		if err := b.AddEdgeRecord(e); err != nil {
			timer.EndError(err)
			return nil, fmt.Errorf("%s: %w", opts.Edges.Path, err)
		}
	}
	g, err := b.Build()
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	timer.End(logging.Nodes(g.NumberOfNodes()), logging.Edges(g.NumberOfEdges()))
	return g, nil
}

func readNodes(ctx context.Context, f NodeFile) ([]nodeRecord, error) {
	var out []nodeRecord
	err := readTable(ctx, f.File, []Column{f.Names, f.Types}, func(r row) error {
		name := r.get(0)
		if name == "" {
			return fmt.Errorf("%w: empty node name", ErrMalformedLine)
		}
		out = append(out, nodeRecord{name: name, typ: r.get(1)})
		return nil
	})
	return out, err
}

func readEdges(ctx context.Context, f EdgeFile) ([]graph.EdgeRecord, error) {
	var out []graph.EdgeRecord
	err := readTable(ctx, f.File, []Column{f.Sources, f.Destinations, f.Weights, f.Types}, func(r row) error {
		e := graph.EdgeRecord{
			Source:      r.get(0),
			Destination: r.get(1),
			Type:        r.get(3),
		}
		if e.Source == "" || e.Destination == "" {
			return fmt.Errorf("%w: empty endpoint", ErrMalformedLine)
		}
		if f.Weights.IsSet() {
			w, err := strconv.ParseFloat(r.get(2), 64)
			if err != nil {
				return fmt.Errorf("%w: weight %q: %v", ErrMalformedLine, r.get(2), err)
			}
			e.Weight, e.HasWeight = w, true
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

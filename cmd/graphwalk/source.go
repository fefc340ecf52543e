package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphwalk/pkg/config"
	"github.com/dd0wney/cluso-graphwalk/pkg/datasets"
	"github.com/dd0wney/cluso-graphwalk/pkg/edgelist"
	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/validation"
)

// sourceFlags selects the input graph of a subcommand.
type sourceFlags struct {
	dataset  string
	directed bool
	list     config.EdgeList
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.dataset, "dataset", "", "catalogue graph as repository/name, e.g. string/ButyricimonasSynergistica")
	f.BoolVar(&s.directed, "directed", false, "load the graph as directed")
	f.StringVar(&s.list.Path, "edges", "", "edge list file (.gz and .sz are decompressed)")
	f.StringVar(&s.list.NodesPath, "nodes", "", "optional node list file")
	f.StringVar(&s.list.Separator, "separator", "", "tab, comma or space (detected when empty)")
	f.BoolVar(&s.list.Header, "header", false, "the first line of each file holds column names")
	f.StringVar(&s.list.Sources, "sources", "", "source column name or index (default 0)")
	f.StringVar(&s.list.Destinations, "destinations", "", "destination column name or index (default 1)")
	f.StringVar(&s.list.Weights, "weights", "", "weight column name or index")
	f.StringVar(&s.list.EdgeTypes, "edge-types", "", "edge type column name or index")
	f.StringVar(&s.list.NodeNames, "node-names", "", "node name column name or index (default 0)")
	f.StringVar(&s.list.NodeTypes, "node-types", "", "node type column name or index")
	cmd.MarkFlagsMutuallyExclusive("dataset", "edges")
	cmd.MarkFlagsOneRequired("dataset", "edges")
}

func (s *sourceFlags) source() (config.Source, error) {
	src := config.Source{Directed: s.directed}
	if s.dataset == "" {
		list := s.list
		src.EdgeList = &list
		return src, nil
	}
	repo, name, ok := strings.Cut(s.dataset, "/")
	if !ok || repo == "" || name == "" {
		return src, fmt.Errorf("--dataset must be repository/name, got %q", s.dataset)
	}
	src.Dataset = &config.Dataset{Repository: repo, Name: name}
	return src, nil
}

// column selects by index when sel is a number and by name otherwise.
// An empty sel falls back to index def, or no column when def < 0.
func column(sel string, def int) edgelist.Column {
	if sel == "" {
		if def < 0 {
			return edgelist.Column{}
		}
		return edgelist.ByIndex(def)
	}
	if i, err := strconv.Atoi(sel); err == nil {
		return edgelist.ByIndex(i)
	}
	return edgelist.ByName(sel)
}

// graphName derives a graph name from a file path without its extensions.
func graphName(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// load builds the graph a source describes.
func (a *app) load(ctx context.Context, src config.Source, cachePath string) (*graph.Graph, error) {
	a.stage.Set("loading")
	g, err := a.loadSource(ctx, src, cachePath)
	if err != nil {
		return nil, err
	}
	a.stage.Loaded(g.Name())
	return g, nil
}

func (a *app) loadSource(ctx context.Context, src config.Source, cachePath string) (*graph.Graph, error) {
	if src.Dataset != nil {
		cat, err := datasets.Default()
		if err != nil {
			return nil, err
		}
		r := datasets.NewRetriever(cat,
			datasets.WithLogger(a.logger),
			datasets.WithMetrics(a.metrics),
		)
		opts := datasets.DefaultRetrieveOptions()
		opts.Directed = src.Directed
		opts.Verbose = a.verbose
		opts.CachePath = validation.DefaultOr(cachePath, a.cachePath)
		return r.Retrieve(ctx, src.Dataset.Repository, src.Dataset.Name, opts)
	}

	el := src.EdgeList
	sep, err := validation.ParseSeparator(el.Separator)
	if err != nil {
		return nil, err
	}
	opts := edgelist.Options{
		Name:     graphName(el.Path),
		Directed: src.Directed,
		Edges: edgelist.EdgeFile{
			File:         edgelist.File{Path: el.Path, Separator: sep, Header: el.Header},
			Sources:      column(el.Sources, 0),
			Destinations: column(el.Destinations, 1),
			Weights:      column(el.Weights, -1),
			Types:        column(el.EdgeTypes, -1),
		},
		Logger: a.logger,
	}
	if el.NodesPath != "" {
		opts.Nodes = &edgelist.NodeFile{
			File:  edgelist.File{Path: el.NodesPath, Separator: sep, Header: el.Header},
			Names: column(el.NodeNames, 0),
			Types: column(el.NodeTypes, -1),
		}
	}

	start := time.Now()
	g, err := edgelist.Load(ctx, opts)
	var (
		nodes int
		edges uint64
	)
	if g != nil {
		nodes, edges = g.NumberOfNodes(), g.NumberOfEdges()
	}
	a.metrics.RecordGraphLoad("edgelist", opts.Name, nodes, edges, time.Since(start), err)
	return g, err
}

package edgelist

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
)

// WriteOptions configures WriteEdges and WriteNodes.
type WriteOptions struct {
	// Separator defaults to a tab.
	Separator string
	// Header writes the column names as the first line.
	Header bool
}

func (o WriteOptions) separator() string {
	if o.Separator == "" {
		return "\t"
	}
	return o.Separator
}

// Standard column names used by the writers.
const (
	SourceColumn      = "source"
	DestinationColumn = "destination"
	WeightColumn      = "weight"
	EdgeTypeColumn    = "edge_type"
	NodeNameColumn    = "name"
	NodeTypeColumn    = "node_type"
)

// WriteEdges writes the edges of g to path, compressing by extension.
// Undirected edges are written once, smaller id first. The columns are
// source, destination, then weight and edge type when g has them.
func WriteEdges(path string, g *graph.Graph, opts WriteOptions) (err error) {
	wc, err := Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
	}()

	sep := opts.separator()
	w := bufio.NewWriter(wc)
	if opts.Header {
		cols := []string{SourceColumn, DestinationColumn}
		if g.HasWeights() {
			cols = append(cols, WeightColumn)
		}
		if g.HasEdgeTypes() {
			cols = append(cols, EdgeTypeColumn)
		}
		if _, err := w.WriteString(strings.Join(cols, sep) + "\n"); err != nil {
			return err
		}
	}

	names := g.NodeNames()
	typeNames := g.EdgeTypeNames()
	for e := range g.NumberOfDirectedEdges() {
		id := graph.EdgeID(e)
		src, dst := g.Source(id), g.Destination(id)
		if !g.IsDirected() && src > dst {
			continue
		}
		w.WriteString(names[src])
		w.WriteString(sep)
		w.WriteString(names[dst])
		if g.HasWeights() {
			w.WriteString(sep)
			w.WriteString(strconv.FormatFloat(g.WeightOrOne(id), 'g', -1, 32))
		}
		if g.HasEdgeTypes() {
			w.WriteString(sep)
			w.WriteString(typeNames[g.UncheckedEdgeTypeID(id)])
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteNodes writes the node names of g to path in id order, with their
// node type when g has types.
func WriteNodes(path string, g *graph.Graph, opts WriteOptions) (err error) {
	wc, err := Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
	}()

	sep := opts.separator()
	w := bufio.NewWriter(wc)
	if opts.Header {
		header := NodeNameColumn
		if g.HasNodeTypes() {
			header += sep + NodeTypeColumn
		}
		if _, err := w.WriteString(header + "\n"); err != nil {
			return err
		}
	}
	for id, name := range g.NodeNames() {
		w.WriteString(name)
		if g.HasNodeTypes() {
			typ, err := g.NodeTypeName(graph.NodeID(id))
			if err != nil {
				return err
			}
			w.WriteString(sep)
			w.WriteString(typ)
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// EdgeFileFor describes the file WriteEdges produces for g with a header.
func EdgeFileFor(path string, g *graph.Graph, opts WriteOptions) EdgeFile {
	f := EdgeFile{
		File:         File{Path: path, Separator: opts.separator(), Header: opts.Header},
		Sources:      ByIndex(0),
		Destinations: ByIndex(1),
	}
	next := 2
	if g.HasWeights() {
		f.Weights = ByIndex(next)
		next++
	}
	if g.HasEdgeTypes() {
		f.Types = ByIndex(next)
	}
	return f
}

// NodeFileFor describes the file WriteNodes produces for g.
func NodeFileFor(path string, g *graph.Graph, opts WriteOptions) NodeFile {
	f := NodeFile{
		File:  File{Path: path, Separator: opts.separator(), Header: opts.Header},
		Names: ByIndex(0),
	}
	if g.HasNodeTypes() {
		f.Types = ByIndex(1)
	}
	return f
}

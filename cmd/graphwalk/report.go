package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphwalk/pkg/algorithms"
	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		src        sourceFlags
		top        int
		centrality bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Describe the structure of a graph",
		Example: `  graphwalk report --dataset string/ButyricimonasSynergistica
  graphwalk report --edges links.txt.gz --header --sources protein1 --destinations protein2 --centrality`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := src.source()
			if err != nil {
				return err
			}
			g, err := a.load(cmd.Context(), s, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(g.Name()))
			fmt.Fprintln(out, boxStyle.Render(g.Report().String()))
			fmt.Fprintln(out, summary(g))

			if !centrality {
				fmt.Fprintln(out, rankedTable("degree", algorithms.TopKCentralNodes(g, top)))
				return nil
			}
			res, err := algorithms.ComputeAllCentrality(cmd.Context(), g, a.workers, top)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, rankedTable("degree", res.TopByDegree))
			fmt.Fprintln(out, rankedTable("closeness", res.TopByCloseness))
			fmt.Fprintln(out, rankedTable("betweenness", res.TopByBetweenness))
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().IntVar(&top, "top", graph.DefaultReportTopK, "number of central nodes to list")
	cmd.Flags().BoolVar(&centrality, "centrality", false, "also rank nodes by closeness and betweenness")
	return cmd
}

func summary(g *graph.Graph) string {
	kind := "undirected"
	if g.IsDirected() {
		kind = "directed"
	}
	return keyValues(
		[2]string{"kind", kind},
		[2]string{"nodes", humanize.Comma(int64(g.NumberOfNodes()))},
		[2]string{"edges", humanize.Comma(int64(g.NumberOfEdges()))},
		[2]string{"node types", humanize.Comma(int64(g.NumberOfNodeTypes()))},
		[2]string{"edge types", humanize.Comma(int64(g.NumberOfEdgeTypes()))},
		[2]string{"density", formatFloat(g.Density())},
	)
}

func rankedTable(metric string, nodes []algorithms.RankedNode) string {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Node", Width: 36},
		{Title: metric, Width: 14},
	}
	rows := make([]table.Row, len(nodes))
	for i, n := range nodes {
		rows[i] = table.Row{fmt.Sprint(i + 1), n.Name, formatFloat(n.Score)}
	}
	return renderTable(columns, rows)
}

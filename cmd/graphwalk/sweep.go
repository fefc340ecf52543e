package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphwalk/pkg/walks"
)

// minSweepPoints is the fewest weights a Pearson correlation accepts.
const minSweepPoints = 3

func newSweepCmd(a *app) *cobra.Command {
	var (
		src    sourceFlags
		p      walks.Parameters
		lo, hi float64
		points int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Correlate change_node_type_weight with the observed node type change rate",
		Long: `sweep runs complete walks once per change_node_type_weight value between
--min and --max, measures how often consecutive nodes differ in type and
reports the Pearson correlation between weights and rates. The graph needs
node types.`,
		Example: `  graphwalk sweep --edges edges.tsv --nodes nodes.tsv --node-types 1 --min 1 --max 100 --points 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if points < minSweepPoints {
				return fmt.Errorf("--points must be at least %d, got %d", minSweepPoints, points)
			}
			s, err := src.source()
			if err != nil {
				return err
			}
			g, err := a.load(cmd.Context(), s, "")
			if err != nil {
				return err
			}
			p.Workers = a.workers
			p.Verbose = a.verbose
			p.Logger = a.logger

			res, err := walks.SweepChangeNodeTypeWeight(cmd.Context(), g, p, walks.Linspace(lo, hi, points))
			if err != nil {
				return err
			}

			columns := []table.Column{
				{Title: "change_node_type_weight", Width: 24},
				{Title: "change rate", Width: 14},
			}
			rows := make([]table.Row, len(res.Weights))
			for i, w := range res.Weights {
				rows[i] = table.Row{formatFloat(w), formatFloat(res.Rates[i])}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Node type change sweep of "+g.Name()))
			fmt.Fprintln(out, renderTable(columns, rows))
			fmt.Fprintln(out, keyValues(
				[2]string{"pearson r", formatFloat(res.R)},
				[2]string{"p-value", formatFloat(res.PValue)},
				[2]string{"points", fmt.Sprint(res.N)},
			))
			return nil
		},
	}
	src.register(cmd)
	registerWalkFlags(cmd.Flags(), &p)
	cmd.Flags().Float64Var(&lo, "min", 1, "smallest change_node_type_weight")
	cmd.Flags().Float64Var(&hi, "max", 100, "largest change_node_type_weight")
	cmd.Flags().IntVar(&points, "points", 20, "number of weights between --min and --max")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphwalk/pkg/datasets"
)

func newDatasetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Browse the graph catalogue and the local cache",
	}
	cmd.AddCommand(newDatasetsListCmd(a), newDatasetsPathCmd(a))
	return cmd
}

func newDatasetsListCmd(a *app) *cobra.Command {
	var repository string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogue graphs and whether they are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := datasets.Default()
			if err != nil {
				return err
			}
			repos := cat.Repositories()
			if repository != "" {
				repos = []string{repository}
			}

			opts := datasets.DefaultRetrieveOptions()
			opts.CachePath = a.cachePath
			root := opts.CacheRoot()

			columns := []table.Column{
				{Title: "Graph", Width: 44},
				{Title: "Nodes", Width: 10},
				{Title: "Edges", Width: 14},
				{Title: "Density", Width: 12},
				{Title: "Cached", Width: 7},
			}
			out := cmd.OutOrStdout()
			for _, repo := range repos {
				entries, err := cat.List(repo)
				if err != nil {
					return err
				}
				rows := make([]table.Row, len(entries))
				for i, e := range entries {
					cached := "no"
					if _, err := os.Stat(datasets.Path(root, e)); err == nil {
						cached = "yes"
					}
					rows[i] = table.Row{
						e.Name,
						humanize.Comma(int64(e.Nodes)),
						humanize.Comma(int64(e.Edges)),
						formatFloat(e.Density),
						cached,
					}
				}
				fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s (%d graphs)", entries[0].Repository, len(entries))))
				fmt.Fprintln(out, renderTable(columns, rows))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&repository, "repository", "", "only list this repository")
	return cmd
}

func newDatasetsPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "path <repository> <name>",
		Short:   "Show where a catalogue graph is cached and where to download it",
		Example: `  graphwalk datasets path string ButyricimonasSynergistica`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := datasets.Default()
			if err != nil {
				return err
			}
			e, err := cat.Lookup(args[0], args[1])
			if err != nil {
				return err
			}
			opts := datasets.DefaultRetrieveOptions()
			opts.CachePath = a.cachePath
			fmt.Fprintln(cmd.OutOrStdout(), keyValues(
				[2]string{"graph", e.String()},
				[2]string{"species", e.Species},
				[2]string{"path", datasets.Path(opts.CacheRoot(), e)},
				[2]string{"url", e.URL()},
			))
			return nil
		},
	}
}

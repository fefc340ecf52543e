package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphwalk/pkg/config"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <job.yaml>",
		Short: "Run the walk and holdout tasks of a job file",
		Long: `run loads a YAML job file naming a graph source and the tasks to run on
it. The graph is loaded once; walks run before the holdout.`,
		Example: `  graphwalk run jobs/butyricimonas.yaml

  # jobs/butyricimonas.yaml
  name: butyricimonas
  source:
    dataset: {repository: string, name: ButyricimonasSynergistica}
  walks:
    length: 40
    iterations: 10
    return_weight: 0.5
    output: out/walks.tsv.gz
  holdout:
    kind: connected
    train_size: 0.8
    output: out/holdout
    metrics: [jaccard, adamic_adar]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := config.Load(args[0])
			if err != nil {
				return err
			}
			logger := a.logger.With(logging.String("job", job.Name))
			logger.Info("job loaded", logging.Path(args[0]))

			g, err := a.load(cmd.Context(), job.Source, job.CachePath)
			if err != nil {
				return err
			}
			if job.Walks != nil {
				if err := a.runWalks(cmd.Context(), g, *job.Walks, cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("walks: %w", err)
				}
			}
			if job.Holdout != nil {
				if err := a.runHoldout(cmd.Context(), g, *job.Holdout, cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("holdout: %w", err)
				}
			}
			logger.Info("job finished")
			return nil
		},
	}
}

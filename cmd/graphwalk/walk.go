package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dd0wney/cluso-graphwalk/pkg/config"
	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
	"github.com/dd0wney/cluso-graphwalk/pkg/walks"
)

func registerWalkFlags(f *pflag.FlagSet, p *walks.Parameters) {
	f.IntVar(&p.Length, "length", config.DefaultWalkLength, "maximum nodes per walk, start included")
	f.IntVar(&p.Iterations, "iterations", 1, "walks per start node")
	f.Float64Var(&p.Return, "return-weight", 1, "weight of stepping back to the previous node")
	f.Float64Var(&p.Explore, "explore-weight", 1, "weight of moving away from the previous node")
	f.Float64Var(&p.ChangeNodeType, "change-node-type-weight", 1, "values above 1 favour changing node type")
	f.Float64Var(&p.ChangeEdgeType, "change-edge-type-weight", 1, "values above 1 favour changing edge type")
	f.IntVar(&p.MaxNeighbours, "max-neighbours", 0, "cap on candidates per step (0 considers all)")
	f.BoolVar(&p.NormalizeByDegree, "normalize-by-degree", false, "divide candidate weights by their degree")
	f.IntVar(&p.MinLength, "min-length", 0, "drop walks that stopped at a trap with fewer nodes")
	f.Uint64Var(&p.RandomState, "random-state", walks.DefaultRandomState, "seed of the walks")
}

func newWalkCmd(a *app) *cobra.Command {
	var (
		src sourceFlags
		job config.WalkJob
	)
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Generate typed biased random walks",
		Example: `  graphwalk walk --dataset string/ButyricimonasSynergistica --length 40 --iterations 10 -o walks.tsv.gz
  graphwalk walk --edges edges.tsv --quantity 1000 --return-weight 0.5 --explore-weight 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if job.Quantity > 0 {
				job.Mode = config.ModeRandom
			}
			s, err := src.source()
			if err != nil {
				return err
			}
			g, err := a.load(cmd.Context(), s, "")
			if err != nil {
				return err
			}
			return a.runWalks(cmd.Context(), g, job, cmd.OutOrStdout())
		},
	}
	src.register(cmd)
	registerWalkFlags(cmd.Flags(), &job.Parameters)
	cmd.Flags().IntVar(&job.Quantity, "quantity", 0, "generate this many walks from random start nodes instead of complete walks")
	cmd.Flags().StringVarP(&job.Output, "output", "o", "", "output file, compressed by extension (default stdout)")
	job.Mode = config.ModeComplete
	return cmd
}

// runWalks generates the walks of job over g and writes them.
func (a *app) runWalks(ctx context.Context, g *graph.Graph, job config.WalkJob, stdout io.Writer) error {
	a.stage.Set("walks")
	p := job.Parameters
	p.Workers = a.workers
	p.Verbose = a.verbose
	p.Logger = a.logger

	start := time.Now()
	var (
		result [][]graph.NodeID
		err    error
	)
	if job.Mode == config.ModeRandom {
		result, err = walks.RandomWalks(ctx, g, job.Quantity, p)
	} else {
		result, err = walks.CompleteWalks(ctx, g, p)
	}
	if err != nil {
		return err
	}
	a.metrics.RecordWalks(job.Mode, len(result), walks.Steps(result), time.Since(start))

	if err := writeWalks(stdout, job.Output, g, result); err != nil {
		return fmt.Errorf("write walks: %w", err)
	}
	if job.Output != "" {
		a.logger.Info("walks written",
			logging.Path(job.Output),
			logging.Walks(len(result)),
			logging.Uint64("steps", walks.Steps(result)),
		)
	}
	return nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphwalk/pkg/algorithms"
	"github.com/dd0wney/cluso-graphwalk/pkg/config"
	"github.com/dd0wney/cluso-graphwalk/pkg/edgelist"
	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/holdout"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
	"github.com/dd0wney/cluso-graphwalk/pkg/parallel"
	"github.com/dd0wney/cluso-graphwalk/pkg/validation"
)

// Files written to a holdout output directory.
const (
	trainEdgesFile      = "train_edges.tsv"
	trainNodesFile      = "train_nodes.tsv"
	validationEdgesFile = "validation_edges.tsv"
	validationNodesFile = "validation_nodes.tsv"
	scoresFile          = "validation_scores.tsv"
)

func newHoldoutCmd(a *app) *cobra.Command {
	var (
		src     sourceFlags
		job     config.HoldoutJob
		metrics []string
	)
	job.Options = holdout.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "holdout",
		Short: "Split a graph into training and validation graphs",
		Long: `holdout writes the training and validation sides of a split as edge and
node lists into the output directory. A connected holdout keeps a random
spanning forest in the training graph so its components match the input.
With --metrics every validation edge is also scored against the training
graph.`,
		Example: `  graphwalk holdout --dataset string/ButyricimonasSynergistica --train-size 0.8 -o split/
  graphwalk holdout --edges edges.tsv --kind random --metrics jaccard,adamic_adar -o split/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, m := range metrics {
				job.Metrics = append(job.Metrics, strings.Split(m, ",")...)
			}
			err := validation.NewConfigValidator("holdout").
				OneOf("kind", job.Kind, []string{holdout.KindConnected, holdout.KindRandom}).
				Custom("options", job.Options.Validate).
				Custom("metrics", func() error {
					_, err := job.ParsedMetrics()
					return err
				}).
				Validate()
			if err != nil {
				return err
			}
			s, err := src.source()
			if err != nil {
				return err
			}
			g, err := a.load(cmd.Context(), s, "")
			if err != nil {
				return err
			}
			return a.runHoldout(cmd.Context(), g, job, cmd.OutOrStdout())
		},
	}
	src.register(cmd)
	f := cmd.Flags()
	f.StringVar(&job.Kind, "kind", holdout.KindConnected, "connected or random")
	f.Float64Var(&job.TrainSize, "train-size", holdout.DefaultTrainSize, "share of edges kept for training, in (0, 1)")
	f.Uint64Var(&job.RandomState, "random-state", holdout.DefaultRandomState, "seed of the edge shuffle")
	f.StringSliceVar(&job.EdgeTypes, "only-edge-types", nil, "restrict validation edges to these edge types")
	f.BoolVar(&job.IncludeAllEdgeTypes, "include-all-edge-types", false, "move every parallel edge of a selected pair")
	f.Uint64Var(&job.MinNodeDegree, "min-node-degree", 0, "both endpoints of a validation edge need at least this degree")
	f.Uint64Var(&job.MaxNodeDegree, "max-node-degree", 0, "both endpoints of a validation edge need at most this degree (0 is unbounded)")
	f.Uint64Var(&job.MinNumberOverlaps, "min-number-overlaps", 0, "random holdouts of multigraphs only pick pairs with this many parallel edges")
	f.StringVarP(&job.Output, "output", "o", "", "output directory")
	f.StringSliceVar(&metrics, "metrics", nil, "score validation edges with these metrics: "+metricNames())
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func metricNames() string {
	names := make([]string, 0, len(algorithms.Metrics()))
	for _, m := range algorithms.Metrics() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

// runHoldout splits g, writes both sides and scores the validation edges.
func (a *app) runHoldout(ctx context.Context, g *graph.Graph, job config.HoldoutJob, stdout io.Writer) error {
	metrics, err := job.ParsedMetrics()
	if err != nil {
		return err
	}
	a.stage.Set("holdout")
	opts := job.Options
	opts.Verbose = a.verbose
	opts.Logger = a.logger

	split := holdout.ConnectedHoldout
	if job.Kind == holdout.KindRandom {
		split = holdout.RandomHoldout
	}
	start := time.Now()
	train, valid, err := split(ctx, g, opts)
	var validationEdges uint64
	if valid != nil {
		validationEdges = valid.NumberOfDirectedEdges()
	}
	a.metrics.RecordHoldout(job.Kind, validationEdges, time.Since(start), err)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(job.Output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := writeSplit(ctx, job.Output, train, valid); err != nil {
		return err
	}

	var scored int
	if len(metrics) > 0 {
		pairs := algorithms.UniqueEdgePairs(valid)
		if err := a.writeScores(ctx, filepath.Join(job.Output, scoresFile), train, pairs, metrics); err != nil {
			return err
		}
		scored = len(pairs)
	}

	a.logger.Info("holdout written",
		logging.Path(job.Output),
		logging.String("kind", job.Kind),
		logging.TrainSize(job.TrainSize),
		logging.Uint64("train_edges", train.NumberOfEdges()),
		logging.Uint64("validation_edges", valid.NumberOfEdges()),
	)

	columns := []table.Column{
		{Title: "Graph", Width: 12},
		{Title: "Edges", Width: 14},
		{Title: "Components", Width: 12},
	}
	rows := []table.Row{
		splitRow("train", train),
		splitRow("validation", valid),
	}
	fmt.Fprintln(stdout, titleStyle.Render(fmt.Sprintf("%s holdout of %s", job.Kind, g.Name())))
	fmt.Fprintln(stdout, renderTable(columns, rows))
	if scored > 0 {
		fmt.Fprintln(stdout, successStyle.Render(fmt.Sprintf("scored %s validation pairs", humanize.Comma(int64(scored)))))
	}
	return nil
}

func splitRow(name string, g *graph.Graph) table.Row {
	components := g.ConnectedComponents()
	return table.Row{name, humanize.Comma(int64(g.NumberOfEdges())), humanize.Comma(int64(components.Count))}
}

// writeSplit writes the edge and node lists of both graphs concurrently.
func writeSplit(ctx context.Context, dir string, train, valid *graph.Graph) error {
	opts := edgelist.WriteOptions{Header: true}
	writes := []func() error{
		func() error { return edgelist.WriteEdges(filepath.Join(dir, trainEdgesFile), train, opts) },
		func() error { return edgelist.WriteNodes(filepath.Join(dir, trainNodesFile), train, opts) },
		func() error { return edgelist.WriteEdges(filepath.Join(dir, validationEdgesFile), valid, opts) },
		func() error { return edgelist.WriteNodes(filepath.Join(dir, validationNodesFile), valid, opts) },
	}
	return parallel.RunBatches(ctx, len(writes), len(writes), 1, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := writes[i](); err != nil {
				return fmt.Errorf("write holdout: %w", err)
			}
		}
		return nil
	})
}

// writeScores writes one line per pair with a score column per metric.
func (a *app) writeScores(ctx context.Context, path string, train *graph.Graph, pairs []algorithms.EdgePair, metrics []algorithms.Metric) (err error) {
	scores := make([][]float64, len(metrics))
	for i, m := range metrics {
		s, err := algorithms.ScoreEdges(ctx, train, pairs, m, a.workers)
		if err != nil {
			return fmt.Errorf("score %s: %w", m, err)
		}
		scores[i] = s
		a.metrics.RecordEdgeScores(m.String(), len(pairs))
	}

	wc, err := edgelist.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(wc)
	bw.WriteString(edgelist.SourceColumn + "\t" + edgelist.DestinationColumn)
	for _, m := range metrics {
		bw.WriteString("\t" + m.String())
	}
	bw.WriteByte('\n')
	names := train.NodeNames()
	for i, p := range pairs {
		bw.WriteString(names[p.Source])
		bw.WriteByte('\t')
		bw.WriteString(names[p.Destination])
		for _, s := range scores {
			bw.WriteByte('\t')
			bw.WriteString(formatFloat(s[i]))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphwalk/pkg/datasets"
	"github.com/dd0wney/cluso-graphwalk/pkg/health"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
	"github.com/dd0wney/cluso-graphwalk/pkg/metrics"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	logLevel    string
	metricsAddr string
	verbose     bool
	cachePath   string
	workers     int

	runID   string
	logger  logging.Logger
	metrics *metrics.Registry
	stage   *health.Stage
	server  *http.Server
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "graphwalk",
		Short: "Typed random walks and link prediction holdouts over association graphs",
		Long: `graphwalk loads protein-protein association graphs from the local
cache or from edge list files, then generates biased random walks,
train/validation holdouts and structural reports.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", os.Getenv("LOG_LEVEL"), "log level: debug, info, warn or error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve /metrics, /healthz and /readyz on this address while running")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "show loading bars")
	flags.StringVar(&a.cachePath, "cache-path", "", "graph cache root (default $GRAPH_CACHE_DIR or ./graphs)")
	flags.IntVar(&a.workers, "workers", 0, "worker goroutines (0 uses every CPU)")

	root.AddCommand(
		newReportCmd(a),
		newWalkCmd(a),
		newHoldoutCmd(a),
		newSweepCmd(a),
		newDatasetsCmd(a),
		newRunCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	a.runID = uuid.NewString()
	a.logger = logging.NewJSONLogger(cmd.ErrOrStderr(), level).With(logging.RunID(a.runID))
	logging.SetDefaultLogger(a.logger)
	a.metrics = metrics.NewRegistry()
	a.stage = health.NewStage("starting")

	if a.metricsAddr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", a.metricsAddr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	opts := datasets.DefaultRetrieveOptions()
	opts.CachePath = a.cachePath
	checker := health.NewChecker()
	checker.RegisterCheck("cache", health.CacheCheck(opts.CacheRoot()))
	checker.RegisterCheck("memory", health.MemoryCheck(0))
	checker.RegisterReadinessCheck("graph", a.stage.Check)

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	checker.Register(mux)
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", logging.Error(err))
		}
	}()
	a.logger.Info("serving metrics", logging.String("addr", ln.Addr().String()))
	return nil
}

func (a *app) teardown() error {
	if a.server == nil {
		return nil
	}
	a.metrics.UpdateSystemMetrics()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

package datasets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dd0wney/cluso-graphwalk/pkg/edgelist"
	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
	"github.com/dd0wney/cluso-graphwalk/pkg/metrics"
	"github.com/dd0wney/cluso-graphwalk/pkg/progress"
	"github.com/dd0wney/cluso-graphwalk/pkg/validation"
)

const (
	// CacheEnvVar overrides DefaultCacheDir when no cache path is given.
	CacheEnvVar = "GRAPH_CACHE_DIR"
	// DefaultCacheDir is the cache root used when nothing else is set.
	DefaultCacheDir = "graphs"
	// SpeedupEdgeLimit is the edge count below which caches are enabled
	// automatically.
	SpeedupEdgeLimit = 50_000_000
)

var ErrNotCached = errors.New("graph is not in the local cache")

// NotCachedError names the file a retrieval expected and where it can be
// downloaded from.
type NotCachedError struct {
	Path string
	URL  string
}

func (e *NotCachedError) Error() string {
	return fmt.Sprintf("%v: %s (download it from %s)", ErrNotCached, e.Path, e.URL)
}

func (e *NotCachedError) Is(target error) bool { return target == ErrNotCached }

// RetrieveOptions configures a single retrieval.
type RetrieveOptions struct {
	Directed bool
	// Verbose draws a loading bar and logs the summary at info level.
	Verbose bool
	// CachePath takes precedence over CacheEnvVar and DefaultCacheDir.
	CachePath string
	// AutoEnableSpeedups enables every cache on graphs with fewer than
	// SpeedupEdgeLimit edges.
	AutoEnableSpeedups bool
}

// DefaultRetrieveOptions returns undirected retrieval with automatic speedups.
func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{AutoEnableSpeedups: true}
}

// CacheRoot resolves the cache root directory for opts.
func (o RetrieveOptions) CacheRoot() string {
	if o.CachePath != "" {
		return o.CachePath
	}
	return validation.DefaultOr(os.Getenv(CacheEnvVar), DefaultCacheDir)
}

// Retriever loads catalogue graphs from the local cache.
type Retriever struct {
	catalogue *Catalogue
	logger    logging.Logger
	metrics   *metrics.Registry
	progress  io.Writer
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithLogger sets the logger; the default logger is used otherwise.
func WithLogger(l logging.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = l }
}

// WithMetrics records every load in reg.
func WithMetrics(reg *metrics.Registry) RetrieverOption {
	return func(r *Retriever) { r.metrics = reg }
}

// WithProgress sets where verbose loading bars are drawn.
func WithProgress(w io.Writer) RetrieverOption {
	return func(r *Retriever) { r.progress = w }
}

// NewRetriever creates a retriever over c.
func NewRetriever(c *Catalogue, opts ...RetrieverOption) *Retriever {
	r := &Retriever{catalogue: c, progress: os.Stderr}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDefault(r.logger).With(logging.Component("datasets"))
	return r
}

// Directory is the cache directory holding the files of e.
func Directory(root string, e Entry) string {
	return filepath.Join(root, e.Repository, e.Name, e.Version)
}

// Path is the cache path of the edge list of e.
func Path(root string, e Entry) string {
	return filepath.Join(Directory(root, e), e.FileName())
}

// locate returns the cached edge list of e, accepting an already
// decompressed copy next to the expected file.
func locate(root string, e Entry) (string, error) {
	want := Path(root, e)
	candidates := []string{want}
	if c := edgelist.CompressionFor(want); c != edgelist.None {
		candidates = append(candidates, strings.TrimSuffix(want, filepath.Ext(want)))
	}
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", &NotCachedError{Path: want, URL: e.URL()}
}

// Retrieve loads the named graph of a repository from the cache.
func (r *Retriever) Retrieve(ctx context.Context, repositoryName, name string, opts RetrieveOptions) (*graph.Graph, error) {
	entry, err := r.catalogue.Lookup(repositoryName, name)
	if err != nil {
		return nil, err
	}
	return r.RetrieveEntry(ctx, entry, opts)
}

// RetrieveEntry loads a catalogue entry from the cache.
func (r *Retriever) RetrieveEntry(ctx context.Context, entry Entry, opts RetrieveOptions) (*graph.Graph, error) {
	logger := r.logger.With(logging.Dataset(entry.Repository, entry.Name))
	start := time.Now()

	g, err := r.load(ctx, entry, opts, logger)
	if r.metrics != nil {
		var (
			nodes int
			edges uint64
		)
		if g != nil {
			nodes, edges = g.NumberOfNodes(), g.NumberOfEdges()
		}
		r.metrics.RecordGraphLoad("dataset", entry.Name, nodes, edges, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	if opts.AutoEnableSpeedups && g.NumberOfEdges() < SpeedupEdgeLimit {
		g.Enable(graph.AllCaches())
	}
	if !opts.Directed {
		r.compareStats(logger, entry, g)
	}

	fields := []logging.Field{
		logging.Nodes(g.NumberOfNodes()),
		logging.Edges(g.NumberOfEdges()),
		logging.Bool("directed", g.IsDirected()),
		logging.Bool("speedups", g.Enabled().Any()),
		logging.Latency(time.Since(start)),
	}
	if opts.Verbose {
		logger.Info("graph retrieved", fields...)
	} else {
		logger.Debug("graph retrieved", fields...)
	}
	return g, nil
}

func (r *Retriever) load(ctx context.Context, entry Entry, opts RetrieveOptions, logger logging.Logger) (*graph.Graph, error) {
	path, err := locate(opts.CacheRoot(), entry)
	if err != nil {
		return nil, err
	}
	sep, err := validation.ParseSeparator(entry.Format.Separator)
	if err != nil {
		return nil, err
	}

	bar := progress.New(r.progress, "Loading "+entry.Name, 1, opts.Verbose)
	defer bar.Finish()

	edges := edgelist.EdgeFile{
		File: edgelist.File{
			Path:      path,
			Separator: sep,
			Header:    entry.Format.Header,
		},
		Sources:      edgelist.ByName(entry.Format.Sources),
		Destinations: edgelist.ByName(entry.Format.Destinations),
	}
	if entry.Format.Weights != "" {
		edges.Weights = edgelist.ByName(entry.Format.Weights)
	}
	if entry.Format.EdgeTypes != "" {
		edges.Types = edgelist.ByName(entry.Format.EdgeTypes)
	}

	g, err := edgelist.Load(ctx, edgelist.Options{
		Name:     entry.Name,
		Directed: opts.Directed,
		Edges:    edges,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	bar.Add(1)
	return g, nil
}

// compareStats warns when a cached file does not match the recorded stats,
// usually because the file comes from another release.
func (r *Retriever) compareStats(logger logging.Logger, entry Entry, g *graph.Graph) {
	if g.NumberOfNodes() == entry.Nodes && g.NumberOfEdges() == entry.Edges {
		return
	}
	logger.Warn("cached graph differs from catalogue",
		logging.Int("expected_nodes", entry.Nodes),
		logging.Uint64("expected_edges", entry.Edges),
		logging.Nodes(g.NumberOfNodes()),
		logging.Edges(g.NumberOfEdges()),
	)
}

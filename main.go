package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/Ahmed-Sermani/wikicast/artifact"
	"github.com/Ahmed-Sermani/wikicast/extract"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/graph/store/cdb"
	"github.com/Ahmed-Sermani/wikicast/graph/store/csvfile"
	"github.com/Ahmed-Sermani/wikicast/graph/store/sqlite"
	"github.com/Ahmed-Sermani/wikicast/metrics"
	"github.com/Ahmed-Sermani/wikicast/ranker"
	"github.com/Ahmed-Sermani/wikicast/sampler"
	"github.com/Ahmed-Sermani/wikicast/stats"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var (
	appName = "wikicast"
	appSha  = ""
)

func main() {
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger := rootLogger.WithFields(logrus.Fields{
		"app": appName,
		"sha": appSha,
	})

	if err := run(rootLogger, logger, os.Args[1:]); err != nil {
		if xerrors.Is(err, flag.ErrHelp) {
			return
		}
		logger.WithField("err", err).Error("shutting down due to error")
		os.Exit(1)
	}
}

func run(rootLogger *logrus.Logger, logger *logrus.Entry, args []string) error {
	if len(args) == 0 {
		return xerrors.Errorf("usage: %s <extract|stats|load> [flags]", appName)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	defer cancel()

	cmd, cmdArgs := args[0], args[1:]
	logger = logger.WithField("command", cmd)
	switch cmd {
	case "extract":
		return runExtract(ctx, rootLogger, logger, cmdArgs)
	case "stats":
		return runStats(ctx, rootLogger, logger, cmdArgs)
	case "load":
		return runLoad(ctx, rootLogger, logger, cmdArgs)
	default:
		return xerrors.Errorf("unknown command %q; supported commands are extract, stats and load", cmd)
	}
}

func runExtract(ctx context.Context, rootLogger *logrus.Logger, logger *logrus.Entry, args []string) error {
	var (
		cfg   sampler.Config
		src   sourceFlags
		seeds int64List
	)
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	src.register(fs)
	artifactPath := fs.String("artifact-path", "", "The location to write the artifacts to (a local directory or s3://bucket/prefix)")
	fs.Var(&seeds, "article-seed", "The id of the page to centre the sub-graph on; may be repeated. A random page is used when omitted")
	runs := fs.Int("runs", 1, "The number of random runs to execute when no article seed is given")
	mode := fs.String("mode", string(sampler.ModeNeighborhood), "The sampling mode: 'neighborhood' or 'random'")
	fs.IntVar(&cfg.KHops, "k-hops", 2, "The radius of the sub-graph (at most 3)")
	fs.Float64Var(&cfg.Ranker.DampingFactor, "pagerank-alpha", ranker.DefaultDampingFactor, "The PageRank damping factor")
	fs.Float64Var(&cfg.Ranker.MinSADForConvergence, "pagerank-tol", ranker.DefaultMinSADForConvergence, "The PageRank convergence threshold")
	engine := fs.String("pagerank-engine", string(sampler.EngineBSP), "The PageRank implementation: 'bsp' or 'memory'")
	fs.Float64Var(&cfg.SampleRatio, "sample-ratio", extract.DefaultSampleRatio, "The fraction of pages kept in random mode")
	fs.Int64Var(&cfg.SampleSeed, "sample-seed", 0, "The seed of the random number generator (defaults to a time based seed)")
	fs.IntVar(&cfg.ExtractWorkers, "extract-workers", runtime.NumCPU(), "The number of workers extracting neighborhoods (defaults to number of CPUs)")
	fs.IntVar(&cfg.Ranker.ComputeWorkers, "ranker-workers", runtime.NumCPU(), "The number of workers to use for calculating PageRank scores (defaults to number of CPUs)")
	metricsPath := fs.String("metrics-textfile", "", "Write run metrics to this file in the node-exporter textfile format")
	logLevel := fs.String("log-level", "info", "The log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := setLogLevel(rootLogger, *logLevel); err != nil {
		return err
	}
	if *artifactPath == "" {
		return xerrors.Errorf("artifact path must be specified with --artifact-path")
	}
	if err := checkExplicitFlags(fs, &cfg); err != nil {
		return err
	}
	if !isFlagSet(fs, "sample-seed") {
		cfg.SampleSeed = clock.WallClock.Now().UnixNano()
	}

	source, closeSource, err := src.open(ctx, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	store, err := artifact.Open(ctx, *artifactPath)
	if err != nil {
		return err
	}

	cfg.Source = source
	cfg.Artifacts = store
	cfg.Mode = sampler.Mode(*mode)
	cfg.Engine = sampler.Engine(*engine)
	cfg.Logger = logger.WithField("component", "sampler")
	if *metricsPath != "" {
		cfg.Metrics = metrics.New()
	}

	smp, err := sampler.NewSampler(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = smp.Close() }()

	logger.WithFields(logrus.Fields{
		"mode":        cfg.Mode,
		"sample_seed": cfg.SampleSeed,
		"artifacts":   store.String(),
	}).Info("starting")

	results, err := smp.Sample(ctx, seeds, *runs)
	for _, res := range results {
		entry := logger.WithFields(logrus.Fields{
			"run_id":   res.RunID,
			"location": res.Location,
			"vertices": res.Vertices,
			"edges":    res.Edges,
			"took":     res.Duration.String(),
		})
		if res.Seed != nil {
			entry = entry.WithField("seed", res.Seed.ID)
		}
		entry.Info("run completed")
	}

	if cfg.Metrics != nil {
		if mErr := cfg.Metrics.WriteTextfile(*metricsPath); mErr != nil {
			logger.WithField("err", mErr).Warn("could not export metrics")
		}
	}
	return err
}

func runStats(ctx context.Context, rootLogger *logrus.Logger, logger *logrus.Entry, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	artifactPath := fs.String("artifact-path", "", "The local directory holding the artifacts of a run")
	edgesFile := fs.String("edges", artifact.EdgesFile, "The name of the edge file inside the artifact directory")
	logLevel := fs.String("log-level", "info", "The log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := setLogLevel(rootLogger, *logLevel); err != nil {
		return err
	}
	if *artifactPath == "" {
		return xerrors.Errorf("artifact path must be specified with --artifact-path")
	}

	f, err := os.Open(filepath.Join(*artifactPath, *edgesFile))
	if err != nil {
		return xerrors.Errorf("open edge file: %w", err)
	}
	defer func() { _ = f.Close() }()

	edges, err := stats.ReadEdges(f)
	if err != nil {
		return err
	}
	summary := stats.Compute(edges)
	if err = stats.Write(ctx, artifact.NewDir(*artifactPath), summary, nil); err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, summary)
	logger.WithFields(logrus.Fields{
		"nodes": summary.Nodes,
		"edges": summary.Edges,
	}).Info("wrote graph statistics")
	return nil
}

func runLoad(ctx context.Context, rootLogger *logrus.Logger, logger *logrus.Entry, args []string) error {
	var src sourceFlags
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	src.register(fs)
	batchSize := fs.Int("batch-size", graph.DefaultCopyBatchSize, "The number of rows inserted per statement batch")
	logLevel := fs.String("log-level", "info", "The log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := setLogLevel(rootLogger, *logLevel); err != nil {
		return err
	}
	if src.graphURI == "" {
		return xerrors.Errorf("link graph URI must be specified with --graph-uri")
	}

	csvSource, err := csvfile.Open(src.pagesPath, src.linksPath, src.viewsPath)
	if err != nil {
		return err
	}
	dst, err := getLinkGraph(ctx, src.graphURI, true, logger)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	counts, err := graph.Copy(ctx, csvSource, dst, *batchSize)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"pages": counts.Pages,
		"links": counts.Links,
		"views": counts.Views,
	}).Info("loaded link graph")
	return nil
}

// sourceFlags selects the link graph: either the three CSV relations or a
// database URI.
type sourceFlags struct {
	pagesPath string
	linksPath string
	viewsPath string
	graphURI  string
}

func (f *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.pagesPath, "pages-path", "data/enwiki/pages", "The CSV file or directory with the pages relation")
	fs.StringVar(&f.linksPath, "pagelinks-path", "data/enwiki/pagelinks", "The CSV file or directory with the page links relation")
	fs.StringVar(&f.viewsPath, "pageviews-path", "data/enwiki/pagecount_daily_v2", "The CSV file or directory with the daily page views relation")
	fs.StringVar(&f.graphURI, "graph-uri", "", "The URI for connecting to a link graph database instead of reading CSV files (supported URIs: sqlite://path, postgresql://user@host:26257/linkgraph?sslmode=disable)")
}

func (f *sourceFlags) open(ctx context.Context, logger *logrus.Entry) (graph.Source, func() error, error) {
	if f.graphURI != "" {
		g, err := getLinkGraph(ctx, f.graphURI, false, logger)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	}

	logger.WithFields(logrus.Fields{
		"pages":     f.pagesPath,
		"pagelinks": f.linksPath,
		"pageviews": f.viewsPath,
	}).Info("using CSV link graph")
	s, err := csvfile.Open(f.pagesPath, f.linksPath, f.viewsPath)
	if err != nil {
		return nil, nil, err
	}
	return s, func() error { return nil }, nil
}

type linkGraph interface {
	graph.Source
	graph.Writer
	io.Closer
}

// getLinkGraph connects to the graph database at linkGraphURI. A SQLite file
// is only created when create is set; sources must already exist.
func getLinkGraph(ctx context.Context, linkGraphURI string, create bool, logger *logrus.Entry) (linkGraph, error) {
	scheme, rest, found := strings.Cut(linkGraphURI, "://")
	if !found {
		return nil, xerrors.Errorf("could not parse link graph URI %q", linkGraphURI)
	}

	switch scheme {
	case "sqlite":
		logger.WithField("path", rest).Info("using SQLite graph")
		if create {
			return sqlite.NewSQLiteGraph(rest)
		}
		return sqlite.OpenSQLiteGraph(rest)
	case "postgresql":
		logger.Info("using CDB graph")
		g, err := cdb.NewCockroachDBGraph(linkGraphURI)
		if err != nil {
			return nil, err
		}
		if err = g.CreateSchema(ctx); err != nil {
			_ = g.Close()
			return nil, err
		}
		return g, nil
	default:
		return nil, xerrors.Errorf("unsupported link graph URI scheme: %q", scheme)
	}
}

func setLogLevel(rootLogger *logrus.Logger, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return xerrors.Errorf("invalid log level: %w", err)
	}
	rootLogger.SetLevel(lvl)
	return nil
}

// checkExplicitFlags rejects zero values given on the command line. The
// sampler reads a zero as the default, so they are caught here.
func checkExplicitFlags(fs *flag.FlagSet, cfg *sampler.Config) error {
	var err error
	if isFlagSet(fs, "k-hops") && cfg.KHops == 0 {
		err = multierror.Append(err, extract.ErrInvalidHops)
	}
	if isFlagSet(fs, "pagerank-alpha") && cfg.Ranker.DampingFactor == 0 {
		err = multierror.Append(err, xerrors.Errorf("damping factor must be in the (0, 1) range; got 0"))
	}
	if isFlagSet(fs, "pagerank-tol") && cfg.Ranker.MinSADForConvergence == 0 {
		err = multierror.Append(err, xerrors.Errorf("min SAD for convergence must be positive; got 0"))
	}
	if isFlagSet(fs, "sample-ratio") && cfg.SampleRatio == 0 {
		err = multierror.Append(err, extract.ErrInvalidSampleRatio)
	}
	return err
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	var set bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// int64List collects the values of a repeatable flag.
type int64List []int64

func (l *int64List) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func (l *int64List) Set(v string) error {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return xerrors.Errorf("invalid page id %q: %w", v, err)
	}
	*l = append(*l, id)
	return nil
}

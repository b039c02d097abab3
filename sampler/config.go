package sampler

import (
	"io"
	"runtime"

	"github.com/Ahmed-Sermani/wikicast/artifact"
	"github.com/Ahmed-Sermani/wikicast/extract"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/metrics"
	"github.com/Ahmed-Sermani/wikicast/ranker"
	"github.com/Ahmed-Sermani/wikicast/stats"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Mode selects how the vertex set of a run is obtained.
type Mode string

const (
	// ModeNeighborhood extracts the k-hop neighborhood of a seed page.
	ModeNeighborhood Mode = "neighborhood"

	// ModeRandom samples pages at random and keeps the connected component
	// of the top ranked one.
	ModeRandom Mode = "random"
)

// Engine selects the PageRank implementation.
type Engine string

const (
	EngineBSP    Engine = "bsp"
	EngineMemory Engine = "memory"
)

// Config encapsulates the settings for configuring a Sampler.
type Config struct {
	// Source provides the pages, links and views relations.
	Source graph.Source

	// Artifacts is the root location of the run outputs.
	Artifacts artifact.Store

	// Metrics records run outcomes. Optional.
	Metrics *metrics.Metrics

	// Plotter receives the statistics of every run. Optional.
	Plotter stats.Plotter

	// Clock stamps the run manifests. Defaults to the wall clock.
	Clock clock.Clock

	Mode        Mode
	KHops       int
	Ranker      ranker.Config
	Engine      Engine
	SampleRatio float64
	SampleSeed  int64

	// The number of workers used for extracting neighborhoods and for
	// assembling datasets. Both default to the number of CPUs.
	ExtractWorkers  int
	AssembleWorkers int

	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Source == nil {
		err = multierror.Append(err, xerrors.Errorf("graph source has not been provided"))
	}
	if cfg.Artifacts == nil {
		err = multierror.Append(err, xerrors.Errorf("artifact store has not been provided"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeNeighborhood
	}
	if cfg.Mode != ModeNeighborhood && cfg.Mode != ModeRandom {
		err = multierror.Append(err, xerrors.Errorf("unsupported sampling mode %q", cfg.Mode))
	}
	if cfg.KHops == 0 {
		cfg.KHops = 2
	}
	if cfg.KHops < 1 || cfg.KHops > extract.MaxHops {
		err = multierror.Append(err, extract.ErrInvalidHops)
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineBSP
	}
	if cfg.Engine != EngineBSP && cfg.Engine != EngineMemory {
		err = multierror.Append(err, xerrors.Errorf("unsupported pagerank engine %q", cfg.Engine))
	}
	if cfg.SampleRatio == 0 {
		cfg.SampleRatio = extract.DefaultSampleRatio
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		err = multierror.Append(err, extract.ErrInvalidSampleRatio)
	}
	if cfg.ExtractWorkers <= 0 {
		cfg.ExtractWorkers = runtime.NumCPU()
	}
	if cfg.AssembleWorkers <= 0 {
		cfg.AssembleWorkers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		cfg.Logger = logrus.NewEntry(l)
	}
	return err
}

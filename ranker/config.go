package ranker

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

const (
	DefaultDampingFactor        = 0.85
	DefaultMinSADForConvergence = 0.01
)

// Config encapsulates the settings for configuring the PageRank engines.
type Config struct {
	// DampingFactor is the probability that a random surfer follows an
	// outgoing link instead of teleporting. It must be in the (0, 1) range.
	// Defaults to 0.85 if not specified.
	DampingFactor float64

	// MinSADForConvergence is the sum of absolute score differences between
	// two consecutive iterations below which the scores are considered to
	// have converged. Defaults to 0.01 if not specified.
	MinSADForConvergence float64

	// ComputeWorkers is the number of BSP workers that execute the compute
	// function. Defaults to 1.
	ComputeWorkers int
}

func (c *Config) validate() error {
	var err error
	if c.DampingFactor == 0 {
		c.DampingFactor = DefaultDampingFactor
	}
	if c.MinSADForConvergence == 0 {
		c.MinSADForConvergence = DefaultMinSADForConvergence
	}
	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}

	if c.DampingFactor <= 0 || c.DampingFactor >= 1 {
		err = multierror.Append(err, xerrors.Errorf("damping factor must be in the (0, 1) range; got %v", c.DampingFactor))
	}
	if c.MinSADForConvergence < 0 {
		err = multierror.Append(err, xerrors.Errorf("min SAD for convergence must be positive; got %v", c.MinSADForConvergence))
	}
	return err
}

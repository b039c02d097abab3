package artifact

import (
	"context"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest describes a run. It is written next to the run's files.
type Manifest struct {
	RunID string     `yaml:"run_id"`
	Mode  string     `yaml:"mode"`
	Seed  *SeedEntry `yaml:"seed,omitempty"`

	Params Params `yaml:"params"`
	Counts Counts `yaml:"counts"`

	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Duration   string    `yaml:"duration"`
}

type SeedEntry struct {
	ID    int64  `yaml:"id"`
	Title string `yaml:"title"`
}

type Params struct {
	KHops         int     `yaml:"k_hops,omitempty"`
	DampingFactor float64 `yaml:"pagerank_alpha"`
	Tolerance     float64 `yaml:"pagerank_tol"`
	Engine        string  `yaml:"pagerank_engine"`
	SampleRatio   float64 `yaml:"sample_ratio,omitempty"`
	SampleSeed    int64   `yaml:"sample_seed,omitempty"`
	VertexOrder   string  `yaml:"vertex_order"`
}

type Counts struct {
	Vertices       int `yaml:"vertices"`
	Edges          int `yaml:"edges"`
	TimeSeriesRows int `yaml:"timeseries_rows"`
	Dates          int `yaml:"dates"`
}

// WriteManifest writes m to the run.yaml file of store.
func WriteManifest(ctx context.Context, store Store, m *Manifest) error {
	return writeTo(ctx, store, ManifestFile, func(out io.Writer) error {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	})
}

// ReadManifest decodes a manifest written by WriteManifest.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

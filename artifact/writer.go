package artifact

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Ahmed-Sermani/wikicast/dataset"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

const (
	SeedFile       = "seed.txt"
	EdgesFile      = "edges.csv"
	MappingFile    = "mapping.csv"
	TimeSeriesFile = "timeseries.csv"
	ManifestFile   = "run.yaml"
)

// Writer serializes bundles to a Store.
type Writer struct {
	store Store
}

func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

// Store returns the store the writer writes to.
func (w *Writer) Store() Store { return w.store }

// Write persists b. The files are written concurrently; the first failure
// cancels the remaining uploads and the files of b already written are
// removed again, so a failed bundle leaves nothing behind.
func (w *Writer) Write(ctx context.Context, b *dataset.Bundle) error {
	names := []string{EdgesFile, MappingFile, TimeSeriesFile}
	g, gctx := errgroup.WithContext(ctx)
	if b.Seed != nil {
		names = append(names, SeedFile)
		g.Go(func() error {
			return writeTo(gctx, w.store, SeedFile, func(out io.Writer) error {
				_, err := io.WriteString(out, strconv.FormatInt(b.Seed.ID, 10)+","+b.Seed.Title)
				return err
			})
		})
	}
	g.Go(func() error { return writeCSV(gctx, w.store, EdgesFile, edgeRecords(b)) })
	g.Go(func() error { return writeCSV(gctx, w.store, MappingFile, mappingRecords(b)) })
	g.Go(func() error { return writeCSV(gctx, w.store, TimeSeriesFile, timeSeriesRecords(b)) })

	err := g.Wait()
	if err == nil {
		return nil
	}
	// The write context may already be cancelled.
	for _, name := range names {
		if rmErr := w.store.Remove(context.WithoutCancel(ctx), name); rmErr != nil {
			err = multierror.Append(err, xerrors.Errorf("remove partial %s: %w", name, rmErr))
		}
	}
	return err
}

func edgeRecords(b *dataset.Bundle) [][]string {
	records := make([][]string, 0, len(b.Edges)+1)
	records = append(records, []string{"src", "dst"})
	for _, e := range b.Edges {
		records = append(records, []string{formatID(e.Src), formatID(e.Dst)})
	}
	return records
}

func mappingRecords(b *dataset.Bundle) [][]string {
	header := append([]string{"id", "title"}, b.AttrColumns...)
	records := make([][]string, 0, len(b.Vertices)+1)
	records = append(records, append(header, "pagerank"))
	for _, v := range b.Vertices {
		row := make([]string, 0, len(header)+1)
		row = append(row, formatID(v.ID), v.Title)
		for _, col := range b.AttrColumns {
			row = append(row, v.Attrs[col])
		}
		row = append(row, strconv.FormatFloat(v.PageRank, 'g', -1, 64))
		records = append(records, row)
	}
	return records
}

func timeSeriesRecords(b *dataset.Bundle) [][]string {
	ts := b.TimeSeries
	if ts == nil {
		return [][]string{{"id"}}
	}
	records := make([][]string, 0, len(ts.Rows)+1)
	records = append(records, append([]string{"id"}, ts.Columns...))
	for _, r := range ts.Rows {
		row := make([]string, 0, len(r.Cells)+1)
		row = append(row, formatID(r.Key))
		for _, cell := range r.Cells {
			if !cell.Valid {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatInt(cell.Value, 10))
		}
		records = append(records, row)
	}
	return records
}

func writeCSV(ctx context.Context, store Store, name string, records [][]string) error {
	return writeTo(ctx, store, name, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.WriteAll(records); err != nil {
			return err
		}
		return cw.Error()
	})
}

// writeTo creates name, fills it with fill and closes it. The close error is
// reported even if fill failed.
func writeTo(ctx context.Context, store Store, name string, fill func(io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	var errs error
	if err = fill(f); err != nil {
		errs = multierror.Append(errs, xerrors.Errorf("write %s: %w", name, err))
	}
	if err = f.Close(); err != nil {
		errs = multierror.Append(errs, xerrors.Errorf("close %s: %w", name, err))
	}
	return errs
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

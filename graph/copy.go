package graph

import (
	"context"

	"golang.org/x/xerrors"
)

// DefaultCopyBatchSize is the number of rows Copy inserts at once when no
// batch size is given.
const DefaultCopyBatchSize = 1000

// CopyCounts reports the number of rows copied per relation.
type CopyCounts struct {
	Pages int
	Links int
	Views int
}

// Copy loads the pages, links and views of src into dst, inserting batchSize
// rows per call. Each iterator is drained and closed before anything is
// inserted, so src and dst may share a single database connection.
func Copy(ctx context.Context, src Source, dst Writer, batchSize int) (CopyCounts, error) {
	var counts CopyCounts
	if batchSize <= 0 {
		batchSize = DefaultCopyBatchSize
	}

	pages, err := src.Pages(ctx, PageFilter{})
	if err != nil {
		return counts, xerrors.Errorf("copy pages: %w", err)
	}
	if counts.Pages, err = copyBatches(ctx, pages, "vertex", batchSize, pages.Vertex, dst.InsertPages); err != nil {
		return counts, xerrors.Errorf("copy pages: %w", err)
	}

	links, err := src.Links(ctx, LinkFilter{})
	if err != nil {
		return counts, xerrors.Errorf("copy links: %w", err)
	}
	if counts.Links, err = copyBatches(ctx, links, "edge", batchSize, links.Edge, dst.InsertLinks); err != nil {
		return counts, xerrors.Errorf("copy links: %w", err)
	}

	views, err := src.Views(ctx, ViewFilter{})
	if err != nil {
		return counts, xerrors.Errorf("copy views: %w", err)
	}
	if counts.Views, err = copyBatches(ctx, views, "view", batchSize, views.View, dst.InsertViews); err != nil {
		return counts, xerrors.Errorf("copy views: %w", err)
	}
	return counts, nil
}

// copyBatches buffers the rows of it and flushes them with insert. Rows are
// only inserted after it has been drained and closed.
func copyBatches[T any](ctx context.Context, it Iterator, kind string, batchSize int, row func() *T, insert func(context.Context, []*T) error) (int, error) {
	var (
		batches [][]*T
		batch   = make([]*T, 0, batchSize)
		total   int
	)
	for it.Next() {
		batch = append(batch, row())
		if len(batch) == batchSize {
			batches = append(batches, batch)
			batch = make([]*T, 0, batchSize)
		}
	}
	if err := drain(it, kind); err != nil {
		return 0, err
	}
	if len(batch) != 0 {
		batches = append(batches, batch)
	}

	for _, b := range batches {
		if err := insert(ctx, b); err != nil {
			return total, err
		}
		total += len(b)
	}
	return total, nil
}

// Package csvfile exposes CSV exports of the pages, pagelinks and pageviews
// relations as a link graph source. Each relation path may be a single file
// or a directory whose *.csv files are read in lexical order. Every file
// starts with a header row:
//
//	pages:     id,title[,any other column...]
//	pagelinks: from,dest (or src,dst)
//	pageviews: page_id,date,count
//
// Files are streamed on every scan and filters are evaluated row by row.
package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/Ahmed-Sermani/wikicast/graph"
	"golang.org/x/xerrors"
)

var _ graph.Source = (*Source)(nil)

// ErrMissingColumn is returned when a file lacks a required header column.
var ErrMissingColumn = xerrors.New("missing required column")

// Source reads the link graph relations from CSV files.
type Source struct {
	pages []string
	links []string
	views []string
}

// Open resolves the files that make up each relation. It fails if any of the
// paths is missing or unreadable so that no work is started on a partial
// graph.
func Open(pagesPath, linksPath, viewsPath string) (*Source, error) {
	var (
		s   Source
		err error
	)
	if s.pages, err = resolve(pagesPath); err != nil {
		return nil, xerrors.Errorf("pages: %w", err)
	}
	if s.links, err = resolve(linksPath); err != nil {
		return nil, xerrors.Errorf("pagelinks: %w", err)
	}
	if s.views, err = resolve(viewsPath); err != nil {
		return nil, xerrors.Errorf("pageviews: %w", err)
	}
	return &s, nil
}

func (s *Source) Pages(ctx context.Context, filter graph.PageFilter) (graph.VertexIterator, error) {
	return &vertexIterator{r: newRowReader(ctx, s.pages), filter: filter}, nil
}

func (s *Source) Links(ctx context.Context, filter graph.LinkFilter) (graph.EdgeIterator, error) {
	return &edgeIterator{r: newRowReader(ctx, s.links), filter: filter}, nil
}

func (s *Source) Views(ctx context.Context, filter graph.ViewFilter) (graph.ViewIterator, error) {
	return &viewIterator{r: newRowReader(ctx, s.views), filter: filter}, nil
}

func resolve(path string) ([]string, error) {
	if path == "" {
		return nil, xerrors.New("path not specified")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, xerrors.Errorf("no csv files found in %q", path)
	}
	sort.Strings(files)
	return files, nil
}

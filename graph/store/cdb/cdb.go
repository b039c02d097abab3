package cdb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/graph/store/sqlrows"
	"github.com/lib/pq"
	"golang.org/x/xerrors"
)

var (
	_ graph.Source = (*CockroachDBGraph)(nil)
	_ graph.Writer = (*CockroachDBGraph)(nil)
)

const (
	createSchemaQuery = `
  CREATE TABLE IF NOT EXISTS pages (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    attrs JSONB
  );
  CREATE TABLE IF NOT EXISTS pagelinks (
    src BIGINT NOT NULL,
    dst BIGINT NOT NULL
  );
  CREATE INDEX IF NOT EXISTS pagelinks_src_idx ON pagelinks (src);
  CREATE INDEX IF NOT EXISTS pagelinks_dst_idx ON pagelinks (dst);
  CREATE TABLE IF NOT EXISTS pageviews (
    page_id BIGINT NOT NULL,
    view_date TEXT,
    view_count BIGINT NOT NULL
  );
  CREATE INDEX IF NOT EXISTS pageviews_page_idx ON pageviews (page_id);
  `
	upsertPageQuery = `
  INSERT INTO pages (id, title, attrs) VALUES ($1, $2, $3)
  ON CONFLICT (id) DO UPDATE SET title=$2, attrs=$3
  `
	insertLinkQuery = `INSERT INTO pagelinks (src, dst) VALUES ($1, $2)`
	insertViewQuery = `INSERT INTO pageviews (page_id, view_date, view_count) VALUES ($1, $2, $3)`

	iterPagesQuery = `SELECT id, title, attrs::TEXT FROM pages`
	iterLinksQuery = `SELECT src, dst FROM pagelinks`
	iterViewsQuery = `SELECT page_id, view_date, view_count FROM pageviews`
)

// CockroachDBGraph is a link graph backed by a CockroachDB (or PostgreSQL)
// database. Filters are pushed down as `= ANY($n)` array predicates.
type CockroachDBGraph struct {
	db *sql.DB
}

func NewCockroachDBGraph(dsn string) (*CockroachDBGraph, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, xerrors.Errorf("connect to link graph: %w", err)
	}

	return &CockroachDBGraph{db}, nil
}

func (c *CockroachDBGraph) Close() error {
	return c.db.Close()
}

// CreateSchema creates the pages, pagelinks and pageviews tables if missing.
func (c *CockroachDBGraph) CreateSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createSchemaQuery); err != nil {
		return xerrors.Errorf("create schema: %w", err)
	}
	return nil
}

func (c *CockroachDBGraph) InsertPages(ctx context.Context, pages []*graph.Vertex) error {
	return c.inTx(ctx, upsertPageQuery, len(pages), func(stmt *sql.Stmt, i int) error {
		attrs, err := sqlrows.EncodeAttrs(pages[i].Attrs)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx, pages[i].ID, pages[i].Title, attrs)
		return err
	})
}

func (c *CockroachDBGraph) InsertLinks(ctx context.Context, links []*graph.Edge) error {
	return c.inTx(ctx, insertLinkQuery, len(links), func(stmt *sql.Stmt, i int) error {
		_, err := stmt.ExecContext(ctx, links[i].Src, links[i].Dst)
		return err
	})
}

func (c *CockroachDBGraph) InsertViews(ctx context.Context, views []*graph.View) error {
	return c.inTx(ctx, insertViewQuery, len(views), func(stmt *sql.Stmt, i int) error {
		_, err := stmt.ExecContext(ctx, views[i].PageID, sqlrows.EncodeDate(views[i].Date), views[i].Count)
		return err
	})
}

func (c *CockroachDBGraph) Pages(ctx context.Context, filter graph.PageFilter) (graph.VertexIterator, error) {
	var w whereClause
	w.addSet("id", filter.IDs)

	rows, err := c.db.QueryContext(ctx, iterPagesQuery+w.sql(" AND ")+" ORDER BY id", w.args...)
	if err != nil {
		return nil, xerrors.Errorf("pages: %w", err)
	}
	return sqlrows.NewVertexIterator(rows), nil
}

func (c *CockroachDBGraph) Links(ctx context.Context, filter graph.LinkFilter) (graph.EdgeIterator, error) {
	var w whereClause
	w.addSet("src", filter.Src)
	w.addSet("dst", filter.Dst)

	sep := " AND "
	if filter.MatchEither {
		sep = " OR "
		if len(w.conds) == 0 {
			w.conds = append(w.conds, "FALSE")
		}
	}

	rows, err := c.db.QueryContext(ctx, iterLinksQuery+w.sql(sep), w.args...)
	if err != nil {
		return nil, xerrors.Errorf("links: %w", err)
	}
	return sqlrows.NewEdgeIterator(rows), nil
}

func (c *CockroachDBGraph) Views(ctx context.Context, filter graph.ViewFilter) (graph.ViewIterator, error) {
	var w whereClause
	w.addSet("page_id", filter.PageIDs)

	rows, err := c.db.QueryContext(ctx, iterViewsQuery+w.sql(" AND "), w.args...)
	if err != nil {
		return nil, xerrors.Errorf("views: %w", err)
	}
	return sqlrows.NewViewIterator(rows), nil
}

func (c *CockroachDBGraph) inTx(ctx context.Context, query string, n int, execFn func(*sql.Stmt, int) error) error {
	if n == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return xerrors.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < n; i++ {
		if err = execFn(stmt, i); err != nil {
			_ = tx.Rollback()
			return xerrors.Errorf("insert row %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return xerrors.Errorf("commit: %w", err)
	}
	return nil
}

type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) addSet(column string, set graph.IDSet) {
	if set == nil {
		return
	}
	w.args = append(w.args, pq.Array(set.Sorted()))
	w.conds = append(w.conds, column+" = ANY($"+strconv.Itoa(len(w.args))+")")
}

func (w *whereClause) sql(sep string) string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, sep)
}

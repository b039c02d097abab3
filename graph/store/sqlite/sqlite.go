// Package sqlite provides a link graph stored in a single SQLite database
// file. It is handy for graphs that fit on one disk and for tests, since no
// server is involved.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"strings"

	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/graph/store/sqlrows"
	"golang.org/x/xerrors"

	_ "modernc.org/sqlite"
)

var (
	_ graph.Source = (*SQLiteGraph)(nil)
	_ graph.Writer = (*SQLiteGraph)(nil)
)

const (
	createSchemaQuery = `
  CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    attrs TEXT
  );
  CREATE TABLE IF NOT EXISTS pagelinks (
    src INTEGER NOT NULL,
    dst INTEGER NOT NULL
  );
  CREATE INDEX IF NOT EXISTS pagelinks_src_idx ON pagelinks (src);
  CREATE INDEX IF NOT EXISTS pagelinks_dst_idx ON pagelinks (dst);
  CREATE TABLE IF NOT EXISTS pageviews (
    page_id INTEGER NOT NULL,
    view_date TEXT,
    view_count INTEGER NOT NULL
  );
  CREATE INDEX IF NOT EXISTS pageviews_page_idx ON pageviews (page_id);
  `
	upsertPageQuery = `
  INSERT INTO pages (id, title, attrs) VALUES (?, ?, ?)
  ON CONFLICT (id) DO UPDATE SET title=excluded.title, attrs=excluded.attrs
  `
	insertLinkQuery = `INSERT INTO pagelinks (src, dst) VALUES (?, ?)`
	insertViewQuery = `INSERT INTO pageviews (page_id, view_date, view_count) VALUES (?, ?, ?)`

	iterPagesQuery = `SELECT id, title, attrs FROM pages`
	iterLinksQuery = `SELECT src, dst FROM pagelinks`
	iterViewsQuery = `SELECT page_id, view_date, view_count FROM pageviews`
)

// SQLiteGraph is a link graph backed by an SQLite database. Identifier sets
// are bound as a single JSON array parameter and expanded with json_each.
type SQLiteGraph struct {
	db *sql.DB
}

// NewSQLiteGraph opens (creating if needed) the database at path and makes
// sure the schema exists. Use ":memory:" for a throw-away database.
func NewSQLiteGraph(path string) (*SQLiteGraph, error) {
	dsn := "file:" + path + "?" + pragmas
	if path == ":memory:" {
		dsn = ":memory:"
	}
	return open(dsn, path == ":memory:")
}

// OpenSQLiteGraph opens the existing database at path. Unlike NewSQLiteGraph
// it never creates the file, so a mistyped path fails here instead of
// yielding an empty graph.
func OpenSQLiteGraph(path string) (*SQLiteGraph, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, xerrors.Errorf("open sqlite link graph: %w", err)
	}
	return open("file:"+path+"?mode=rw&"+pragmas, false)
}

const pragmas = "_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"

func open(dsn string, inMemory bool) (*SQLiteGraph, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, xerrors.Errorf("open sqlite link graph: %w", err)
	}
	if inMemory {
		// Every connection of an in-memory database sees its own database.
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, xerrors.Errorf("connect to sqlite link graph: %w", err)
	}
	if _, err = db.Exec(createSchemaQuery); err != nil {
		_ = db.Close()
		return nil, xerrors.Errorf("create schema: %w", err)
	}
	return &SQLiteGraph{db: db}, nil
}

func (s *SQLiteGraph) Close() error {
	return s.db.Close()
}

func (s *SQLiteGraph) InsertPages(ctx context.Context, pages []*graph.Vertex) error {
	return s.inTx(ctx, upsertPageQuery, len(pages), func(stmt *sql.Stmt, i int) error {
		attrs, err := sqlrows.EncodeAttrs(pages[i].Attrs)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx, pages[i].ID, pages[i].Title, attrs)
		return err
	})
}

func (s *SQLiteGraph) InsertLinks(ctx context.Context, links []*graph.Edge) error {
	return s.inTx(ctx, insertLinkQuery, len(links), func(stmt *sql.Stmt, i int) error {
		_, err := stmt.ExecContext(ctx, links[i].Src, links[i].Dst)
		return err
	})
}

func (s *SQLiteGraph) InsertViews(ctx context.Context, views []*graph.View) error {
	return s.inTx(ctx, insertViewQuery, len(views), func(stmt *sql.Stmt, i int) error {
		_, err := stmt.ExecContext(ctx, views[i].PageID, sqlrows.EncodeDate(views[i].Date), views[i].Count)
		return err
	})
}

func (s *SQLiteGraph) Pages(ctx context.Context, filter graph.PageFilter) (graph.VertexIterator, error) {
	var w whereClause
	w.addSet("id", filter.IDs)

	rows, err := s.db.QueryContext(ctx, iterPagesQuery+w.sql(" AND ")+" ORDER BY id", w.args...)
	if err != nil {
		return nil, xerrors.Errorf("pages: %w", err)
	}
	return sqlrows.NewVertexIterator(rows), nil
}

func (s *SQLiteGraph) Links(ctx context.Context, filter graph.LinkFilter) (graph.EdgeIterator, error) {
	var w whereClause
	w.addSet("src", filter.Src)
	w.addSet("dst", filter.Dst)

	sep := " AND "
	if filter.MatchEither {
		sep = " OR "
		if len(w.conds) == 0 {
			w.conds = append(w.conds, "0")
		}
	}

	rows, err := s.db.QueryContext(ctx, iterLinksQuery+w.sql(sep), w.args...)
	if err != nil {
		return nil, xerrors.Errorf("links: %w", err)
	}
	return sqlrows.NewEdgeIterator(rows), nil
}

func (s *SQLiteGraph) Views(ctx context.Context, filter graph.ViewFilter) (graph.ViewIterator, error) {
	var w whereClause
	w.addSet("page_id", filter.PageIDs)

	rows, err := s.db.QueryContext(ctx, iterViewsQuery+w.sql(" AND "), w.args...)
	if err != nil {
		return nil, xerrors.Errorf("views: %w", err)
	}
	return sqlrows.NewViewIterator(rows), nil
}

func (s *SQLiteGraph) inTx(ctx context.Context, query string, n int, execFn func(*sql.Stmt, int) error) error {
	if n == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
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
	w.args = append(w.args, jsonArray(set.Sorted()))
	w.conds = append(w.conds, column+" IN (SELECT value FROM json_each(?))")
}

func (w *whereClause) sql(sep string) string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, sep)
}

func jsonArray(ids []int64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

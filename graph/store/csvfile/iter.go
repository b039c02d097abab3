package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Ahmed-Sermani/wikicast/graph"
	"golang.org/x/xerrors"
)

// rowReader streams the records of a list of CSV files as if they were a
// single table. The header of the current file is exposed through column.
type rowReader struct {
	ctx   context.Context
	files []string

	f       *os.File
	r       *csv.Reader
	header  map[string]int
	names   []string
	record  []string
	lastErr error
}

func newRowReader(ctx context.Context, files []string) *rowReader {
	return &rowReader{ctx: ctx, files: files}
}

func (r *rowReader) next() bool {
	for r.lastErr == nil {
		if err := r.ctx.Err(); err != nil {
			r.lastErr = err
			return false
		}
		if r.r == nil {
			if len(r.files) == 0 {
				return false
			}
			if r.lastErr = r.open(r.files[0]); r.lastErr != nil {
				return false
			}
			r.files = r.files[1:]
		}

		record, err := r.r.Read()
		if err == io.EOF {
			r.lastErr = r.closeFile()
			continue
		} else if err != nil {
			r.lastErr = xerrors.Errorf("read %s: %w", r.f.Name(), err)
			return false
		}
		r.record = record
		return true
	}
	return false
}

func (r *rowReader) open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	cr := csv.NewReader(f)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	names, err := cr.Read()
	if err != nil {
		_ = f.Close()
		return xerrors.Errorf("read header of %s: %w", path, err)
	}
	r.names = append(r.names[:0], names...)
	r.header = make(map[string]int, len(names))
	for i, name := range r.names {
		r.header[strings.TrimSpace(name)] = i
	}
	r.f, r.r = f, cr
	return nil
}

func (r *rowReader) closeFile() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f, r.r = nil, nil
	return err
}

// column returns the index of the first present column among names.
func (r *rowReader) column(names ...string) (int, error) {
	for _, name := range names {
		if idx, ok := r.header[name]; ok {
			return idx, nil
		}
	}
	return -1, xerrors.Errorf("%s: column %q: %w", r.f.Name(), names[0], ErrMissingColumn)
}

func (r *rowReader) field(idx int) string {
	if idx < 0 || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r *rowReader) int64Field(idx int) (int64, error) {
	v, err := strconv.ParseInt(r.field(idx), 10, 64)
	if err != nil {
		return 0, xerrors.Errorf("%s: parse column %q: %w", r.f.Name(), r.names[idx], err)
	}
	return v, nil
}

func (r *rowReader) close() error {
	return r.closeFile()
}

type vertexIterator struct {
	r      *rowReader
	filter graph.PageFilter

	latched *graph.Vertex
	lastErr error
}

func (i *vertexIterator) Next() bool {
	for i.lastErr == nil && i.r.next() {
		idCol, err := i.r.column("id", "page_id")
		if err != nil {
			i.lastErr = err
			return false
		}
		v := &graph.Vertex{}
		if v.ID, err = i.r.int64Field(idCol); err != nil {
			i.lastErr = err
			return false
		}
		if !i.filter.Match(v) {
			continue
		}

		titleCol, _ := i.r.column("title", "page_title")
		for col, name := range i.r.names {
			switch col {
			case idCol:
			case titleCol:
				v.Title = i.r.field(col)
			default:
				if v.Attrs == nil {
					v.Attrs = make(map[string]string)
				}
				v.Attrs[name] = i.r.field(col)
			}
		}
		i.latched = v
		return true
	}
	return false
}

func (i *vertexIterator) Vertex() *graph.Vertex { return i.latched }

func (i *vertexIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.r.lastErr
}

func (i *vertexIterator) Close() error { return i.r.close() }

type edgeIterator struct {
	r      *rowReader
	filter graph.LinkFilter

	latched *graph.Edge
	lastErr error
}

func (i *edgeIterator) Next() bool {
	for i.lastErr == nil && i.r.next() {
		srcCol, err := i.r.column("from", "src")
		if err != nil {
			i.lastErr = err
			return false
		}
		dstCol, err := i.r.column("dest", "dst")
		if err != nil {
			i.lastErr = err
			return false
		}

		e := &graph.Edge{}
		if e.Src, err = i.r.int64Field(srcCol); err != nil {
			i.lastErr = err
			return false
		}
		if e.Dst, err = i.r.int64Field(dstCol); err != nil {
			i.lastErr = err
			return false
		}
		if i.filter.Match(e) {
			i.latched = e
			return true
		}
	}
	return false
}

func (i *edgeIterator) Edge() *graph.Edge { return i.latched }

func (i *edgeIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.r.lastErr
}

func (i *edgeIterator) Close() error { return i.r.close() }

type viewIterator struct {
	r      *rowReader
	filter graph.ViewFilter

	latched *graph.View
	lastErr error
}

func (i *viewIterator) Next() bool {
	for i.lastErr == nil && i.r.next() {
		pageCol, err := i.r.column("page_id", "id")
		if err != nil {
			i.lastErr = err
			return false
		}
		dateCol, err := i.r.column("date")
		if err != nil {
			i.lastErr = err
			return false
		}
		countCol, err := i.r.column("count")
		if err != nil {
			i.lastErr = err
			return false
		}

		v := &graph.View{Date: i.r.field(dateCol)}
		if v.PageID, err = i.r.int64Field(pageCol); err != nil {
			i.lastErr = err
			return false
		}
		// A null count carries no observation.
		if i.r.field(countCol) == "" || !i.filter.Match(v) {
			continue
		}
		if v.Count, err = i.r.int64Field(countCol); err != nil {
			i.lastErr = err
			return false
		}
		i.latched = v
		return true
	}
	return false
}

func (i *viewIterator) View() *graph.View { return i.latched }

func (i *viewIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.r.lastErr
}

func (i *viewIterator) Close() error { return i.r.close() }

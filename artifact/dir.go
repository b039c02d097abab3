package artifact

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"
)

var _ Store = (*Dir)(nil)

// Dir stores files in a local directory which is created on first use.
type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) Create(_ context.Context, name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return nil, xerrors.Errorf("create artifact directory: %w", err)
	}
	f, err := os.Create(filepath.Join(d.root, name))
	if err != nil {
		return nil, xerrors.Errorf("create %s: %w", name, err)
	}
	return f, nil
}

func (d *Dir) Remove(_ context.Context, name string) error {
	if err := os.Remove(filepath.Join(d.root, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Dir) Sub(name string) Store {
	return &Dir{root: filepath.Join(d.root, name)}
}

func (d *Dir) String() string { return d.root }

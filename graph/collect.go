package graph

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// CollectVertices drains and closes it.
func CollectVertices(it VertexIterator) ([]*Vertex, error) {
	var out []*Vertex
	for it.Next() {
		out = append(out, it.Vertex())
	}
	return out, drain(it, "vertex")
}

// CollectEdges drains and closes it.
func CollectEdges(it EdgeIterator) ([]*Edge, error) {
	var out []*Edge
	for it.Next() {
		out = append(out, it.Edge())
	}
	return out, drain(it, "edge")
}

// CollectViews drains and closes it.
func CollectViews(it ViewIterator) ([]*View, error) {
	var out []*View
	for it.Next() {
		out = append(out, it.View())
	}
	return out, drain(it, "view")
}

func drain(it Iterator, kind string) error {
	var err error
	if iterErr := it.Error(); iterErr != nil {
		err = multierror.Append(err, xerrors.Errorf("%s iterator: %w", kind, iterErr))
	}
	if closeErr := it.Close(); closeErr != nil {
		err = multierror.Append(err, xerrors.Errorf("close %s iterator: %w", kind, closeErr))
	}
	return err
}

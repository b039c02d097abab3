// Package stats computes descriptive statistics of a sampled subgraph over
// its undirected simple view.
package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Ahmed-Sermani/wikicast/artifact"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"golang.org/x/xerrors"
)

const (
	SummaryFile         = "summary.txt"
	DegreeHistogramFile = "degree_histogram.csv"
)

// Summary holds the statistics of a graph. Self-loops contribute their
// vertex but no edge; parallel and reciprocal links collapse into one edge.
type Summary struct {
	Nodes         int
	Edges         int
	AverageDegree float64
	Clustering    float64
	Density       float64

	// DegreeHistogram[d] is the number of vertices with degree d.
	DegreeHistogram []int
}

// Plotter renders a summary, e.g. as degree distribution charts. No plotter
// ships with the module; callers plug their own.
type Plotter interface {
	Plot(ctx context.Context, store artifact.Store, s *Summary) error
}

// Compute returns the statistics of the undirected simple graph spanned by
// edges.
func Compute(edges []graph.Edge) *Summary {
	adj := make(map[int64]graph.IDSet)
	node := func(id int64) graph.IDSet {
		if adj[id] == nil {
			adj[id] = graph.NewIDSet()
		}
		return adj[id]
	}
	for _, e := range edges {
		src, dst := node(e.Src), node(e.Dst)
		if e.Src == e.Dst {
			continue
		}
		src.Add(e.Dst)
		dst.Add(e.Src)
	}

	s := &Summary{Nodes: len(adj)}
	if s.Nodes == 0 {
		return s
	}

	var degreeSum, clusteringSum float64
	for _, neighbours := range adj {
		deg := neighbours.Len()
		degreeSum += float64(deg)
		for len(s.DegreeHistogram) <= deg {
			s.DegreeHistogram = append(s.DegreeHistogram, 0)
		}
		s.DegreeHistogram[deg]++
		clusteringSum += localClustering(adj, neighbours)
	}

	s.Edges = int(degreeSum) / 2
	s.AverageDegree = degreeSum / float64(s.Nodes)
	s.Clustering = clusteringSum / float64(s.Nodes)
	if s.Nodes > 1 {
		s.Density = 2 * float64(s.Edges) / float64(s.Nodes*(s.Nodes-1))
	}
	return s
}

// localClustering is the fraction of neighbour pairs that are linked.
func localClustering(adj map[int64]graph.IDSet, neighbours graph.IDSet) float64 {
	deg := neighbours.Len()
	if deg < 2 {
		return 0
	}
	ids := neighbours.Sorted()
	var links int
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			if adj[a].Has(b) {
				links++
			}
		}
	}
	return 2 * float64(links) / float64(deg*(deg-1))
}

// String renders the summary the way summary.txt stores it.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type: Graph\n")
	fmt.Fprintf(&b, "Number of nodes: %d\n", s.Nodes)
	fmt.Fprintf(&b, "Number of edges: %d\n", s.Edges)
	fmt.Fprintf(&b, "Average degree: %.4f\n", s.AverageDegree)
	fmt.Fprintf(&b, "Clustering Coefficient: %v\n", s.Clustering)
	fmt.Fprintf(&b, "Density: %v\n", s.Density)
	return b.String()
}

// Write stores summary.txt and degree_histogram.csv and hands the summary to
// plotter when one is given.
func Write(ctx context.Context, store artifact.Store, s *Summary, plotter Plotter) error {
	if err := writeFile(ctx, store, SummaryFile, func(w io.Writer) error {
		_, err := io.WriteString(w, s.String())
		return err
	}); err != nil {
		return err
	}

	if err := writeFile(ctx, store, DegreeHistogramFile, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"degree", "count"})
		for deg, count := range s.DegreeHistogram {
			_ = cw.Write([]string{strconv.Itoa(deg), strconv.Itoa(count)})
		}
		cw.Flush()
		return cw.Error()
	}); err != nil {
		return err
	}

	if plotter == nil {
		return nil
	}
	if err := plotter.Plot(ctx, store, s); err != nil {
		return xerrors.Errorf("plot statistics: %w", err)
	}
	return nil
}

// ReadEdges parses an edges.csv file with a src,dst header.
func ReadEdges(r io.Reader) ([]graph.Edge, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, xerrors.Errorf("read edges header: %w", err)
	}
	srcIdx, dstIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "src":
			srcIdx = i
		case "dst":
			dstIdx = i
		}
	}
	if srcIdx < 0 || dstIdx < 0 {
		return nil, xerrors.Errorf("edges header %v lacks src and dst columns", header)
	}

	var edges []graph.Edge
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return edges, nil
		} else if err != nil {
			return nil, xerrors.Errorf("read edges: %w", err)
		}
		src, err := strconv.ParseInt(record[srcIdx], 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("line %d: invalid src: %w", line, err)
		}
		dst, err := strconv.ParseInt(record[dstIdx], 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("line %d: invalid dst: %w", line, err)
		}
		edges = append(edges, graph.Edge{Src: src, Dst: dst})
	}
}

func writeFile(ctx context.Context, store artifact.Store, name string, fill func(io.Writer) error) error {
	f, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err = fill(f); err != nil {
		_ = f.Close()
		return xerrors.Errorf("write %s: %w", name, err)
	}
	if err = f.Close(); err != nil {
		return xerrors.Errorf("close %s: %w", name, err)
	}
	return nil
}

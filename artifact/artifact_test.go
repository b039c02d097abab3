package artifact

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Ahmed-Sermani/wikicast/dataset"
	"github.com/Ahmed-Sermani/wikicast/graph"
	"github.com/Ahmed-Sermani/wikicast/table"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ArtifactTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type ArtifactTestSuite struct{}

func (s *ArtifactTestSuite) TestWriteSeededBundle(c *gc.C) {
	root := filepath.Join(c.MkDir(), "out", "run")
	w := NewWriter(NewDir(root))
	c.Assert(w.Write(context.TODO(), sampleBundle()), gc.IsNil)

	c.Assert(readFile(c, root, SeedFile), gc.Equals, "2,Second page")
	c.Assert(readFile(c, root, EdgesFile), gc.Equals, "src,dst\n1,2\n2,1\n")
	c.Assert(readFile(c, root, MappingFile), gc.Equals,
		"id,title,ns,pagerank\n"+
			"2,Second page,,0.75\n"+
			"1,\"Comma, page\",0,0.25\n")
	c.Assert(readFile(c, root, TimeSeriesFile), gc.Equals,
		"id,2020-01-01,2020-01-02\n"+
			"1,3,\n"+
			"2,4,6\n")
}

func (s *ArtifactTestSuite) TestWriteEmptyBundle(c *gc.C) {
	root := c.MkDir()
	w := NewWriter(NewDir(root))
	c.Assert(w.Write(context.TODO(), &dataset.Bundle{TimeSeries: &table.Pivoted{}}), gc.IsNil)

	c.Assert(readFile(c, root, EdgesFile), gc.Equals, "src,dst\n")
	c.Assert(readFile(c, root, MappingFile), gc.Equals, "id,title,pagerank\n")
	c.Assert(readFile(c, root, TimeSeriesFile), gc.Equals, "id\n")
	_, err := os.Stat(filepath.Join(root, SeedFile))
	c.Assert(os.IsNotExist(err), gc.Equals, true)
}

func (s *ArtifactTestSuite) TestDirCreationIsIdempotent(c *gc.C) {
	root := c.MkDir()
	w := NewWriter(NewDir(root).Sub("nested"))
	c.Assert(w.Write(context.TODO(), sampleBundle()), gc.IsNil)
	c.Assert(w.Write(context.TODO(), sampleBundle()), gc.IsNil)
	c.Assert(readFile(c, filepath.Join(root, "nested"), EdgesFile), gc.Equals, "src,dst\n1,2\n2,1\n")
}

func (s *ArtifactTestSuite) TestS3Store(c *gc.C) {
	client := &fakeS3{objects: make(map[string]string)}
	store := newS3WithClient(client, "datasets", "wikicast/2020").Sub("run-1")
	c.Assert(store.String(), gc.Equals, "s3://datasets/wikicast/2020/run-1")

	c.Assert(NewWriter(store).Write(context.TODO(), sampleBundle()), gc.IsNil)

	c.Assert(client.keys(), gc.DeepEquals, []string{
		"wikicast/2020/run-1/edges.csv",
		"wikicast/2020/run-1/mapping.csv",
		"wikicast/2020/run-1/seed.txt",
		"wikicast/2020/run-1/timeseries.csv",
	})
	c.Assert(client.objects["wikicast/2020/run-1/edges.csv"], gc.Equals, "src,dst\n1,2\n2,1\n")
	c.Assert(client.buckets, gc.DeepEquals, map[string]bool{"datasets": true})
}

func (s *ArtifactTestSuite) TestS3UploadFailure(c *gc.C) {
	client := &fakeS3{objects: make(map[string]string), err: errors.New("access denied")}
	err := NewWriter(newS3WithClient(client, "b", "")).Write(context.TODO(), sampleBundle())
	c.Assert(err, gc.ErrorMatches, `(?s).*upload s3://b/.*: access denied.*`)
}

func (s *ArtifactTestSuite) TestFailedWriteRemovesWrittenFiles(c *gc.C) {
	root := c.MkDir()
	store := &failingStore{Store: NewDir(root), fail: MappingFile}
	err := NewWriter(store).Write(context.TODO(), sampleBundle())
	c.Assert(err, gc.ErrorMatches, `(?s).*create mapping.csv: read-only.*`)

	entries, err := os.ReadDir(root)
	c.Assert(err, gc.IsNil)
	c.Assert(entries, gc.HasLen, 0)
}

func (s *ArtifactTestSuite) TestFailedS3WriteDeletesUploadedObjects(c *gc.C) {
	client := &fakeS3{objects: make(map[string]string)}
	store := &failingStore{Store: newS3WithClient(client, "b", "run"), fail: TimeSeriesFile}
	err := NewWriter(store).Write(context.TODO(), sampleBundle())
	c.Assert(err, gc.NotNil)
	c.Assert(client.keys(), gc.HasLen, 0)
	c.Assert(client.deleted, gc.HasLen, 4)
}

func (s *ArtifactTestSuite) TestParseS3URI(c *gc.C) {
	bucket, prefix, err := parseS3URI("s3://bucket/some/prefix/")
	c.Assert(err, gc.IsNil)
	c.Assert(bucket, gc.Equals, "bucket")
	c.Assert(prefix, gc.Equals, "some/prefix")

	_, _, err = parseS3URI("s3:///prefix")
	c.Assert(err, gc.ErrorMatches, `invalid S3 location .*`)
}

func (s *ArtifactTestSuite) TestOpenLocalDir(c *gc.C) {
	root := c.MkDir()
	store, err := Open(context.TODO(), root)
	c.Assert(err, gc.IsNil)
	c.Assert(store.String(), gc.Equals, root)
}

func (s *ArtifactTestSuite) TestManifestRoundTrip(c *gc.C) {
	root := c.MkDir()
	started := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	m := &Manifest{
		RunID: "abc",
		Mode:  "neighborhood",
		Seed:  &SeedEntry{ID: 12, Title: "Anarchism"},
		Params: Params{
			KHops: 2, DampingFactor: 0.85, Tolerance: 0.01, Engine: "bsp", VertexOrder: "score",
		},
		Counts:     Counts{Vertices: 3, Edges: 2, TimeSeriesRows: 1, Dates: 4},
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Duration:   "2s",
	}
	c.Assert(WriteManifest(context.TODO(), NewDir(root), m), gc.IsNil)

	f, err := os.Open(filepath.Join(root, ManifestFile))
	c.Assert(err, gc.IsNil)
	defer func() { _ = f.Close() }()
	got, err := ReadManifest(f)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.DeepEquals, m)
}

func sampleBundle() *dataset.Bundle {
	return &dataset.Bundle{
		Vertices: []dataset.RankedVertex{
			{Vertex: graph.Vertex{ID: 2, Title: "Second page"}, PageRank: 0.75},
			{Vertex: graph.Vertex{ID: 1, Title: "Comma, page", Attrs: map[string]string{"ns": "0"}}, PageRank: 0.25},
		},
		Edges:       []graph.Edge{{Src: 1, Dst: 2}, {Src: 2, Dst: 1}},
		AttrColumns: []string{"ns"},
		TimeSeries: &table.Pivoted{
			Columns: []string{"2020-01-01", "2020-01-02"},
			Rows: []table.PivotRow{
				{Key: 1, Cells: []table.Cell{{Value: 3, Valid: true}, {}}},
				{Key: 2, Cells: []table.Cell{{Value: 4, Valid: true}, {Value: 6, Valid: true}}},
			},
		},
		Seed: &graph.Vertex{ID: 2, Title: "Second page"},
	}
}

func readFile(c *gc.C, dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	c.Assert(err, gc.IsNil)
	return string(data)
}

// failingStore fails to create the file called fail.
type failingStore struct {
	Store
	fail string
}

func (f *failingStore) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if name == f.fail {
		return nil, errors.New("create " + name + ": read-only")
	}
	return f.Store.Create(ctx, name)
}

type fakeS3 struct {
	mu      sync.Mutex
	err     error
	objects map[string]string
	buckets map[string]bool
	deleted []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, in.Body); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets == nil {
		f.buckets = make(map[string]bool)
	}
	f.buckets[*in.Bucket] = true
	f.objects[*in.Key] = buf.String()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package cdb

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/Ahmed-Sermani/wikicast/graph/graphtest"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(CockroachDBGraphTestSuite))

type CockroachDBGraphTestSuite struct {
	graphtest.SuiteBase
	db *sql.DB
}

func Test(t *testing.T) {
	gc.TestingT(t)
}

func (s *CockroachDBGraphTestSuite) SetUpSuite(c *gc.C) {
	dsn := os.Getenv("CDB_DSN")
	if dsn == "" {
		c.Skip("missing cdb dsn; skipping cdb test package")
	}

	g, err := NewCockroachDBGraph(dsn)
	c.Assert(err, gc.IsNil)
	c.Assert(g.CreateSchema(context.TODO()), gc.IsNil)
	s.SetGraph(g)
	s.db = g.db
}

func (s *CockroachDBGraphTestSuite) TearDownSuite(c *gc.C) {
	if s.db != nil {
		s.flushDB(c)
		c.Assert(s.db.Close(), gc.IsNil)
	}
}

func (s *CockroachDBGraphTestSuite) SetUpTest(c *gc.C) {
	s.flushDB(c)
}

func (s *CockroachDBGraphTestSuite) flushDB(c *gc.C) {
	for _, table := range []string{"pages", "pagelinks", "pageviews"} {
		_, err := s.db.Exec("DELETE FROM " + table)
		c.Assert(err, gc.IsNil)
	}
}

package engine_test

import (
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/joeandaverde/sqlitepeek/internal/engine"
	"github.com/joeandaverde/sqlitepeek/internal/metadata"
	"github.com/joeandaverde/sqlitepeek/internal/pager"
	"github.com/joeandaverde/sqlitepeek/internal/query"
)

// EngineSuite builds a real SQLite database file through the CGO-backed
// mattn/go-sqlite3 driver, then points sqlitepeek's own read-only decoder
// at it -- the ground-truth fixture strategy used throughout this repo's
// tests, since sqlitepeek never writes a database file itself.
type EngineSuite struct {
	suite.Suite
	eng *engine.Engine
	log *logrus.Logger
}

func (s *EngineSuite) SetupSuite() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "fixture.db")

	conn, err := sql.Open("sqlite3", path)
	s.Require().NoError(err)

	_, err = conn.Exec(`CREATE TABLE apples (id INTEGER PRIMARY KEY, name TEXT, color TEXT)`)
	s.Require().NoError(err)
	_, err = conn.Exec(`CREATE INDEX idx_color ON apples (color)`)
	s.Require().NoError(err)

	rows := []struct{ name, color string }{
		{"Granny Smith", "Green"},
		{"Fuji", "Red"},
		{"Honeycrisp", "Red"},
		{"Golden Delicious", "Yellow"},
	}
	for _, r := range rows {
		_, err := conn.Exec(`INSERT INTO apples (name, color) VALUES (?, ?)`, r.name, r.color)
		s.Require().NoError(err)
	}
	s.Require().NoError(conn.Close())

	s.log = logrus.New()
	s.log.SetOutput(io.Discard)

	p, err := pager.Open(path, s.log)
	s.Require().NoError(err)

	cat, err := metadata.Load(p, s.log)
	s.Require().NoError(err)

	s.eng = engine.New(p, cat, s.log)
}

func (s *EngineSuite) execute(sqlText string) engine.Result {
	stmt, err := query.Parse(sqlText)
	s.Require().NoError(err)
	result, err := s.eng.Execute(stmt)
	s.Require().NoError(err)
	return result
}

func (s *EngineSuite) TestCountStar() {
	result := s.execute("SELECT COUNT(*) FROM apples")
	s.Require().NotNil(result.Count)
	s.Equal(int64(4), *result.Count)
}

func (s *EngineSuite) TestFullScanOrder() {
	result := s.execute("SELECT name FROM apples")
	s.Equal([]string{"Granny Smith", "Fuji", "Honeycrisp", "Golden Delicious"}, result.Rows)
}

func (s *EngineSuite) TestFilteredProjection() {
	result := s.execute("SELECT name, color FROM apples WHERE color = 'Yellow'")
	s.Equal([]string{"Golden Delicious|Yellow"}, result.Rows)
}

func (s *EngineSuite) TestIndexScanMatchesFullScan() {
	indexed := s.execute("SELECT name, color FROM apples WHERE color = 'Red'")

	full := s.execute("SELECT name, color FROM apples")
	var filtered []string
	for _, row := range full.Rows {
		if row == "Fuji|Red" || row == "Honeycrisp|Red" {
			filtered = append(filtered, row)
		}
	}

	s.ElementsMatch(filtered, indexed.Rows)
	s.Len(indexed.Rows, 2)
}

func (s *EngineSuite) TestStarProjection() {
	result := s.execute("SELECT * FROM apples WHERE name = 'Fuji'")
	s.Equal([]string{"2|Fuji|Red"}, result.Rows)
}

func (s *EngineSuite) TestIntegerPrimaryKeyProjection() {
	result := s.execute("SELECT id, name FROM apples WHERE name = 'Fuji'")
	s.Equal([]string{"2|Fuji"}, result.Rows)
}

func (s *EngineSuite) TestUnknownTable() {
	stmt, err := query.Parse("SELECT * FROM missing")
	s.Require().NoError(err)
	_, err = s.eng.Execute(stmt)
	s.Error(err)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func TestParseAndExecuteUnknownColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture2.db")

	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = conn.Exec(`CREATE TABLE oranges (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	log := logrus.New()
	log.SetOutput(io.Discard)

	p, err := pager.Open(path, log)
	require.NoError(t, err)
	cat, err := metadata.Load(p, log)
	require.NoError(t, err)
	eng := engine.New(p, cat, log)

	stmt, err := query.Parse("SELECT bogus FROM oranges")
	require.NoError(t, err)
	_, err = eng.Execute(stmt)
	require.Error(t, err)
}

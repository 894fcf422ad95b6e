// Package sqlitepeek is a read-only query engine for the SQLite on-disk
// file format: given a database file, it reports schema metadata or
// evaluates a restricted SELECT by walking the file's B-tree pages
// directly, without linking against SQLite itself.
package sqlitepeek

import (
	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/sqlitepeek/internal/engine"
	"github.com/joeandaverde/sqlitepeek/internal/metadata"
	"github.com/joeandaverde/sqlitepeek/internal/pager"
	"github.com/joeandaverde/sqlitepeek/internal/query"
)

// DB is an open, read-only handle on one SQLite database file.
type DB struct {
	pager   *pager.Pager
	catalog *metadata.Catalog
	engine  *engine.Engine
}

// Open reads the file header and schema catalog of the database at path.
// log receives structured debug output from the pager, catalog, and
// executor; pass logrus.New() with a suitable level if the caller has no
// logger of its own.
func Open(path string, log *logrus.Logger) (*DB, error) {
	p, err := pager.Open(path, log)
	if err != nil {
		return nil, err
	}

	cat, err := metadata.Load(p, log)
	if err != nil {
		p.Close()
		return nil, err
	}

	return &DB{
		pager:   p,
		catalog: cat,
		engine:  engine.New(p, cat, log),
	}, nil
}

// Close releases the underlying file handle.
func (db *DB) Close() error {
	return db.pager.Close()
}

// Info is the `.dbinfo` summary of a database file.
type Info struct {
	PageSize int
	// NumberOfTables is the schema root's cell count, matching the
	// conventional (if permissive) `.dbinfo` behavior: it counts every
	// schema row, not only entries of type "table".
	NumberOfTables int
}

// Info reports the database's page size and schema row count.
func (db *DB) Info() Info {
	return Info{
		PageSize:       db.pager.PageSize(),
		NumberOfTables: db.catalog.CellCount(),
	}
}

// Tables returns user table names for `.tables` listing: entries of type
// "table" whose name does not contain the substring "sqlite".
func (db *DB) Tables() []string {
	return db.catalog.TableNamesForListing()
}

// Query parses and executes a single restricted SELECT statement.
func (db *DB) Query(sql string) (engine.Result, error) {
	stmt, err := query.Parse(sql)
	if err != nil {
		return engine.Result{}, err
	}
	return db.engine.Execute(stmt)
}

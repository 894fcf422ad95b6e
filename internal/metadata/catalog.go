// Package metadata decodes the sqlite_schema catalog (page 1) and the
// stored DDL text of its entries.
package metadata

import (
	"fmt"
	"strings"

	"github.com/armon/go-radix"
	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
	"github.com/joeandaverde/sqlitepeek/internal/pager"
	"github.com/joeandaverde/sqlitepeek/internal/storage"
)

// SchemaEntry is one row of the sqlite_schema table.
type SchemaEntry struct {
	Type      string
	Name      string
	TableName string
	RootPage  int
	SQL       string
}

// Catalog is the in-memory index of everything page 1 describes.
type Catalog struct {
	// entries holds every schema row, keyed by name, walked in
	// lexicographic order for deterministic iteration -- the file's own
	// on-disk cell order reflects DDL history, not anything callers
	// should depend on.
	entries *radix.Tree

	// indexByTable maps a table name to the first index declared against
	// it, in the on-disk cell order of page 1.
	indexByTable map[string]SchemaEntry

	cellCount int
}

// Load decodes page 1 through p and builds the catalog.
func Load(p *pager.Pager, log *logrus.Logger) (*Catalog, error) {
	data, err := p.Page(1)
	if err != nil {
		return nil, err
	}

	page, err := storage.ParsePage(1, data)
	if err != nil {
		return nil, err
	}
	if page.Kind != storage.PageTypeLeafTable {
		return nil, fmt.Errorf("page 1 kind %s: %w", page.Kind, dberr.ErrDecodeRecord)
	}

	cat := &Catalog{
		entries:      radix.New(),
		indexByTable: make(map[string]SchemaEntry),
		cellCount:    page.CellCount(),
	}

	for _, offset := range page.CellOffsets {
		cell, err := storage.DecodeTableLeafCell(page, int(offset))
		if err != nil {
			return nil, err
		}

		entry, err := schemaEntryFromRecord(cell.Record)
		if err != nil {
			return nil, err
		}

		cat.entries.Insert(entry.Name, entry)
		if entry.Type == "index" {
			if _, ok := cat.indexByTable[entry.TableName]; !ok {
				cat.indexByTable[entry.TableName] = entry
			}
		}
	}

	log.WithField("schema_rows", cat.cellCount).Debug("catalog: loaded schema")

	return cat, nil
}

// schemaEntryFromRecord reads the five fixed columns of a sqlite_schema
// row: type, name, tbl_name, rootpage, sql. rootpage may be stored under
// any integer-width serial type -- SQLite narrows it to the smallest
// encoding that fits, so small databases see it as a single byte.
func schemaEntryFromRecord(r storage.Record) (SchemaEntry, error) {
	if len(r.Values) < 5 {
		return SchemaEntry{}, fmt.Errorf("schema row has %d columns: %w", len(r.Values), dberr.ErrDecodeRecord)
	}

	entry := SchemaEntry{
		Type:      r.Values[0].String(),
		Name:      r.Values[1].String(),
		TableName: r.Values[2].String(),
	}

	if r.Values[3].Kind == storage.KindInt {
		entry.RootPage = int(r.Values[3].Int)
	}
	if r.Values[4].Kind == storage.KindText {
		entry.SQL = r.Values[4].Text
	}

	return entry, nil
}

// CellCount is the number of rows in the schema table, including
// non-table entries (indexes, views, triggers) -- used verbatim by
// `.dbinfo`'s "number of tables" line (spec.md's Open Questions keeps
// this permissive definition for compatibility).
func (c *Catalog) CellCount() int {
	return c.cellCount
}

// Tables returns all "table" entries whose name doesn't begin with
// "sqlite_", in lexicographic order.
func (c *Catalog) Tables() []SchemaEntry {
	var out []SchemaEntry
	c.entries.Walk(func(name string, v interface{}) bool {
		entry := v.(SchemaEntry)
		if entry.Type == "table" && !strings.HasPrefix(entry.Name, "sqlite_") {
			out = append(out, entry)
		}
		return false
	})
	return out
}

// TableNamesForListing returns user table names for the `.tables` CLI
// command: entries of type "table" whose name does not contain the
// substring "sqlite" anywhere, in lexicographic order. This is a
// stricter filter than Tables()'s prefix check -- the CLI surface and
// the catalog's internal notion of "user table" are specified
// separately (spec.md §4.4 vs §6.2) and sqlitepeek honors both as
// written rather than collapsing them into one rule.
func (c *Catalog) TableNamesForListing() []string {
	var out []string
	c.entries.Walk(func(name string, v interface{}) bool {
		entry := v.(SchemaEntry)
		if entry.Type == "table" && !strings.Contains(entry.Name, "sqlite") {
			out = append(out, entry.Name)
		}
		return false
	})
	return out
}

// FetchTable returns the exact-match "table" entry named name.
func (c *Catalog) FetchTable(name string) (SchemaEntry, error) {
	v, ok := c.entries.Get(name)
	if !ok {
		return SchemaEntry{}, fmt.Errorf("table %q: %w", name, dberr.ErrUnknownTable)
	}
	entry := v.(SchemaEntry)
	if entry.Type != "table" {
		return SchemaEntry{}, fmt.Errorf("table %q: %w", name, dberr.ErrUnknownTable)
	}
	return entry, nil
}

// FetchIndexFor returns an index declared against tableName, if any.
func (c *Catalog) FetchIndexFor(tableName string) (SchemaEntry, bool) {
	entry, ok := c.indexByTable[tableName]
	return entry, ok
}

// Package engine dispatches a parsed query against the schema catalog and
// the page/cell decoders, choosing between a count short-circuit, an
// index-accelerated lookup, and a full table scan.
package engine

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
	"github.com/joeandaverde/sqlitepeek/internal/metadata"
	"github.com/joeandaverde/sqlitepeek/internal/pager"
	"github.com/joeandaverde/sqlitepeek/internal/query"
	"github.com/joeandaverde/sqlitepeek/internal/storage"
)

// Engine executes parsed statements against one open database.
type Engine struct {
	pager   *pager.Pager
	catalog *metadata.Catalog
	log     *logrus.Logger
}

// New builds an Engine over an already-loaded pager and catalog.
func New(p *pager.Pager, cat *metadata.Catalog, log *logrus.Logger) *Engine {
	return &Engine{pager: p, catalog: cat, log: log}
}

// Result is the outcome of executing a statement: either a count, or a
// sequence of already-projected, pipe-joined result lines.
type Result struct {
	Count *int64
	Rows  []string
}

// Execute dispatches stmt per spec.md §4.7: COUNT(*) via full traversal,
// an index scan when a matching index exists, otherwise a full scan.
func (e *Engine) Execute(stmt *query.Statement) (Result, error) {
	table, err := e.catalog.FetchTable(stmt.Table)
	if err != nil {
		return Result{}, err
	}

	cols, err := metadata.ParseCreateTable(table.SQL)
	if err != nil {
		return Result{}, err
	}

	log := e.log.WithField("query_id", uuid.New().String()).WithField("table", stmt.Table)

	if stmt.CountStar {
		log.Debug("dispatch: count")
		n, err := e.countRows(table.RootPage)
		if err != nil {
			return Result{}, err
		}
		return Result{Count: &n}, nil
	}

	if idxEntry, ok := e.indexFor(table.TableName, stmt.Filter); ok {
		log.WithField("index", idxEntry.Name).Debug("dispatch: index-scan")
		return e.indexScan(table, cols, idxEntry, stmt)
	}

	log.Debug("dispatch: full-scan")
	return e.fullScan(table, cols, stmt)
}

// indexFor reports whether the index the catalog records for table (see
// Catalog.FetchIndexFor) targets the statement's filter column. Any other
// index declared on the same table is not considered.
func (e *Engine) indexFor(table string, filter *query.Filter) (metadata.SchemaEntry, bool) {
	if filter == nil {
		return metadata.SchemaEntry{}, false
	}
	idx, ok := e.catalog.FetchIndexFor(table)
	if !ok {
		return metadata.SchemaEntry{}, false
	}
	_, col, err := metadata.ParseCreateIndex(idx.SQL)
	if err != nil || !strings.EqualFold(col, filter.Column) {
		return metadata.SchemaEntry{}, false
	}
	return idx, true
}

// countRows returns the number of leaf cells (rows) in the table B-tree
// rooted at rootPage, found by full traversal -- a cardinality read of
// just the root page is only correct for single-page tables.
func (e *Engine) countRows(rootPage int) (int64, error) {
	var n int64
	err := e.walkTable(rootPage, func(storage.TableLeafCell) error {
		n++
		return nil
	})
	return n, err
}

// walkTable performs a depth-first, left-to-right traversal of the table
// B-tree rooted at pageNum, invoking visit for each leaf cell in stored
// order.
func (e *Engine) walkTable(pageNum int, visit func(storage.TableLeafCell) error) error {
	page, err := e.readPage(pageNum)
	if err != nil {
		return err
	}

	switch page.Kind {
	case storage.PageTypeLeafTable:
		for _, off := range page.CellOffsets {
			cell, err := storage.DecodeTableLeafCell(page, int(off))
			if err != nil {
				return err
			}
			if err := visit(cell); err != nil {
				return err
			}
		}
		return nil
	case storage.PageTypeInteriorTable:
		for _, off := range page.CellOffsets {
			cell, err := storage.DecodeTableInteriorCell(page, int(off))
			if err != nil {
				return err
			}
			if err := e.walkTable(int(cell.LeftChild), visit); err != nil {
				return err
			}
		}
		return e.walkTable(int(page.RightChild), visit)
	default:
		return fmt.Errorf("table page %d kind %s: %w", pageNum, page.Kind, dberr.ErrDecodeRecord)
	}
}

// findTableRow descends the table B-tree rooted at pageNum for the leaf
// cell whose row_id equals target.
func (e *Engine) findTableRow(pageNum int, target int64) (storage.TableLeafCell, bool, error) {
	page, err := e.readPage(pageNum)
	if err != nil {
		return storage.TableLeafCell{}, false, err
	}

	switch page.Kind {
	case storage.PageTypeLeafTable:
		for _, off := range page.CellOffsets {
			cell, err := storage.DecodeTableLeafCell(page, int(off))
			if err != nil {
				return storage.TableLeafCell{}, false, err
			}
			if cell.RowID == target {
				return cell, true, nil
			}
		}
		return storage.TableLeafCell{}, false, nil
	case storage.PageTypeInteriorTable:
		for _, off := range page.CellOffsets {
			cell, err := storage.DecodeTableInteriorCell(page, int(off))
			if err != nil {
				return storage.TableLeafCell{}, false, err
			}
			if cell.MaxRowID >= target {
				return e.findTableRow(int(cell.LeftChild), target)
			}
		}
		return e.findTableRow(int(page.RightChild), target)
	default:
		return storage.TableLeafCell{}, false, fmt.Errorf("table page %d kind %s: %w", pageNum, page.Kind, dberr.ErrDecodeRecord)
	}
}

// indexScanKeys walks the index B-tree rooted at pageNum, appending the
// row_id of every entry whose key equals searchKey to collect, per the
// three-way descent rule in spec.md §4.7/§4.8.
func (e *Engine) indexScanKeys(pageNum int, searchKey string, collect *[]int64) error {
	page, err := e.readPage(pageNum)
	if err != nil {
		return err
	}

	switch page.Kind {
	case storage.PageTypeLeafIndex:
		for _, off := range page.CellOffsets {
			cell, err := storage.DecodeIndexLeafCell(page, int(off))
			if err != nil {
				return err
			}
			key, rowID, err := indexRecordKeyAndRowID(cell.Record)
			if err != nil {
				return err
			}
			if key == searchKey {
				*collect = append(*collect, rowID)
			}
		}
		return nil
	case storage.PageTypeInteriorIndex:
		descended := false
		for _, off := range page.CellOffsets {
			cell, err := storage.DecodeIndexInteriorCell(page, int(off))
			if err != nil {
				return err
			}
			key, rowID, err := indexRecordKeyAndRowID(cell.Record)
			if err != nil {
				return err
			}
			cmp := bytes.Compare([]byte(searchKey), []byte(key))
			switch {
			case cmp < 0:
				if err := e.indexScanKeys(int(cell.LeftChild), searchKey, collect); err != nil {
					return err
				}
				descended = true
			case cmp == 0:
				*collect = append(*collect, rowID)
				if err := e.indexScanKeys(int(cell.LeftChild), searchKey, collect); err != nil {
					return err
				}
				descended = true
			}
			if descended {
				break
			}
		}
		if !descended {
			return e.indexScanKeys(int(page.RightChild), searchKey, collect)
		}
		return nil
	default:
		return fmt.Errorf("index page %d kind %s: %w", pageNum, page.Kind, dberr.ErrDecodeRecord)
	}
}

// indexRecordKeyAndRowID reads an index record's indexed column (the
// first value) and its trailing row_id (the last value).
func indexRecordKeyAndRowID(r storage.Record) (string, int64, error) {
	if len(r.Values) < 2 {
		return "", 0, fmt.Errorf("index record has %d columns: %w", len(r.Values), dberr.ErrDecodeRecord)
	}
	key := r.Values[0].String()
	rowID := r.Values[len(r.Values)-1].Int
	return key, rowID, nil
}

func (e *Engine) readPage(pageNum int) (*storage.Page, error) {
	data, err := e.pager.Page(pageNum)
	if err != nil {
		return nil, err
	}
	return storage.ParsePage(pageNum, data)
}

// fullScan emits every row of table, applying stmt's filter (if any) by
// byte-wise comparison of stringified values, then projecting.
func (e *Engine) fullScan(table metadata.SchemaEntry, cols []metadata.ColumnDefinition, stmt *query.Statement) (Result, error) {
	projection, err := resolveProjection(stmt.Columns, cols)
	if err != nil {
		return Result{}, err
	}

	var filterIdx = -1
	if stmt.Filter != nil {
		filterIdx, err = columnIndex(cols, stmt.Filter.Column)
		if err != nil {
			return Result{}, err
		}
	}

	var rows []string
	err = e.walkTable(table.RootPage, func(cell storage.TableLeafCell) error {
		if filterIdx >= 0 {
			if projectedValue(cell, filterIdx, cols) != stmt.Filter.Value {
				return nil
			}
		}
		rows = append(rows, formatRow(cell, projection, cols))
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Rows: rows}, nil
}

// indexScan resolves stmt's filter via idx's B-tree, then re-fetches each
// matching row from table's own B-tree by row_id.
func (e *Engine) indexScan(table metadata.SchemaEntry, cols []metadata.ColumnDefinition, idx metadata.SchemaEntry, stmt *query.Statement) (Result, error) {
	projection, err := resolveProjection(stmt.Columns, cols)
	if err != nil {
		return Result{}, err
	}

	var rowIDs []int64
	if err := e.indexScanKeys(idx.RootPage, stmt.Filter.Value, &rowIDs); err != nil {
		return Result{}, err
	}

	var rows []string
	for _, rowID := range rowIDs {
		cell, found, err := e.findTableRow(table.RootPage, rowID)
		if err != nil {
			return Result{}, err
		}
		if !found {
			continue
		}
		rows = append(rows, formatRow(cell, projection, cols))
	}

	return Result{Rows: rows}, nil
}

// resolveProjection maps names to column indexes, expanding a bare `*` to
// every declared column in table order.
func resolveProjection(names []string, cols []metadata.ColumnDefinition) ([]int, error) {
	if len(names) == 1 && names[0] == "*" {
		idx := make([]int, len(cols))
		for i := range cols {
			idx[i] = i
		}
		return idx, nil
	}

	idx := make([]int, len(names))
	for i, name := range names {
		ci, err := columnIndex(cols, name)
		if err != nil {
			return nil, err
		}
		idx[i] = ci
	}
	return idx, nil
}

func columnIndex(cols []metadata.ColumnDefinition, name string) (int, error) {
	for i, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q: %w", name, dberr.ErrUnknownColumn)
}

// projectedValue reads column ci of cell, substituting the cell's row_id
// when the column is an INTEGER PRIMARY KEY stored as NULL.
func projectedValue(cell storage.TableLeafCell, ci int, cols []metadata.ColumnDefinition) string {
	if ci >= len(cell.Record.Values) {
		return ""
	}
	v := cell.Record.Values[ci]
	if cols[ci].PrimaryKey && cols[ci].Type == "integer" && v.Kind == storage.KindNull {
		return fmt.Sprintf("%d", cell.RowID)
	}
	return v.String()
}

func formatRow(cell storage.TableLeafCell, projection []int, cols []metadata.ColumnDefinition) string {
	parts := make([]string, len(projection))
	for i, ci := range projection {
		parts[i] = projectedValue(cell, ci, cols)
	}
	return strings.Join(parts, "|")
}

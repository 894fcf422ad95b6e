// Package dberr defines the sentinel error kinds shared across the pager,
// decoder, catalog, and executor layers.
package dberr

import "errors"

var (
	// ErrIoOutOfRange is returned when a requested page number falls off
	// the end of the database file.
	ErrIoOutOfRange = errors.New("io: page out of range")

	// ErrNotASqliteFile is returned when the 16-byte header magic does not
	// match "SQLite format 3\000".
	ErrNotASqliteFile = errors.New("not a sqlite file")

	// ErrUnsupported is returned for recognized-but-unimplemented file
	// features: overflow pages, non-UTF-8 text encodings, unimplemented SQL.
	ErrUnsupported = errors.New("unsupported")

	// ErrDecodeTruncated is returned when a buffer ends mid-varint or
	// mid-value.
	ErrDecodeTruncated = errors.New("decode: truncated input")

	// ErrDecodeRecord is returned for a malformed record: a header/body
	// length mismatch, an illegal serial type, or non-UTF-8 string bytes.
	ErrDecodeRecord = errors.New("decode: malformed record")

	// ErrUnknownTable is returned when a statement references a table
	// absent from the schema catalog.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned when a projection or filter references
	// a column absent from a table's declared columns.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrParse is returned for a malformed SQL or DDL statement.
	ErrParse = errors.New("parse error")
)

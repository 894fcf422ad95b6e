package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
)

// TableLeafCell is one row of a table B-tree leaf page.
type TableLeafCell struct {
	RowID  int64
	Record Record
}

// TableInteriorCell routes to a subtree of a table B-tree.
type TableInteriorCell struct {
	LeftChild uint32
	// MaxRowID is the largest row_id present in LeftChild's subtree.
	MaxRowID int64
}

// IndexLeafCell is one entry of an index B-tree leaf page. By convention
// (spec.md) the record's last value is the indexed row's row_id.
type IndexLeafCell struct {
	Record Record
}

// IndexInteriorCell routes to a subtree of an index B-tree and also
// carries a matching entry of its own.
type IndexInteriorCell struct {
	LeftChild uint32
	Record    Record
}

// maxLocalPayload returns the largest payload, in bytes, a cell on a page
// of the given kind and usable size can store without spilling to an
// overflow page. sqlitepeek does not support overflow, so a payload
// larger than this is Unsupported("overflow").
func maxLocalPayload(kind PageType, usableSize int) int {
	if kind == PageTypeLeafTable {
		return usableSize - 35
	}
	return ((usableSize-12)*64)/255 - 23
}

func checkOverflow(kind PageType, usableSize int, payloadSize int64) error {
	if int(payloadSize) > maxLocalPayload(kind, usableSize) {
		return fmt.Errorf("payload of %d bytes: overflow: %w", payloadSize, dberr.ErrUnsupported)
	}
	return nil
}

// DecodeTableLeafCell decodes a table leaf cell at offset within page.
func DecodeTableLeafCell(page *Page, offset int) (TableLeafCell, error) {
	buf := page.Data[offset:]

	payloadSize, n, err := ReadVarint(buf)
	if err != nil {
		return TableLeafCell{}, err
	}
	buf = buf[n:]

	rowID, n, err := ReadVarint(buf)
	if err != nil {
		return TableLeafCell{}, err
	}
	buf = buf[n:]

	if err := checkOverflow(page.Kind, len(page.Data), payloadSize); err != nil {
		return TableLeafCell{}, err
	}
	if int64(len(buf)) < payloadSize {
		return TableLeafCell{}, fmt.Errorf("table leaf cell payload: %w", dberr.ErrDecodeTruncated)
	}

	record, err := DecodeRecord(buf[:payloadSize])
	if err != nil {
		return TableLeafCell{}, err
	}

	return TableLeafCell{RowID: rowID, Record: record}, nil
}

// DecodeTableInteriorCell decodes a table interior cell at offset.
func DecodeTableInteriorCell(page *Page, offset int) (TableInteriorCell, error) {
	buf := page.Data[offset:]
	if len(buf) < 4 {
		return TableInteriorCell{}, fmt.Errorf("table interior cell: %w", dberr.ErrDecodeTruncated)
	}
	leftChild := binary.BigEndian.Uint32(buf[:4])

	maxRowID, _, err := ReadVarint(buf[4:])
	if err != nil {
		return TableInteriorCell{}, err
	}

	return TableInteriorCell{LeftChild: leftChild, MaxRowID: maxRowID}, nil
}

// DecodeIndexLeafCell decodes an index leaf cell at offset.
func DecodeIndexLeafCell(page *Page, offset int) (IndexLeafCell, error) {
	buf := page.Data[offset:]

	payloadSize, n, err := ReadVarint(buf)
	if err != nil {
		return IndexLeafCell{}, err
	}
	buf = buf[n:]

	if err := checkOverflow(page.Kind, len(page.Data), payloadSize); err != nil {
		return IndexLeafCell{}, err
	}
	if int64(len(buf)) < payloadSize {
		return IndexLeafCell{}, fmt.Errorf("index leaf cell payload: %w", dberr.ErrDecodeTruncated)
	}

	record, err := DecodeRecord(buf[:payloadSize])
	if err != nil {
		return IndexLeafCell{}, err
	}

	return IndexLeafCell{Record: record}, nil
}

// DecodeIndexInteriorCell decodes an index interior cell at offset.
func DecodeIndexInteriorCell(page *Page, offset int) (IndexInteriorCell, error) {
	buf := page.Data[offset:]
	if len(buf) < 4 {
		return IndexInteriorCell{}, fmt.Errorf("index interior cell: %w", dberr.ErrDecodeTruncated)
	}
	leftChild := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]

	payloadSize, n, err := ReadVarint(buf)
	if err != nil {
		return IndexInteriorCell{}, err
	}
	buf = buf[n:]

	if err := checkOverflow(page.Kind, len(page.Data), payloadSize); err != nil {
		return IndexInteriorCell{}, err
	}
	if int64(len(buf)) < payloadSize {
		return IndexInteriorCell{}, fmt.Errorf("index interior cell payload: %w", dberr.ErrDecodeTruncated)
	}

	record, err := DecodeRecord(buf[:payloadSize])
	if err != nil {
		return IndexInteriorCell{}, err
	}

	return IndexInteriorCell{LeftChild: leftChild, Record: record}, nil
}

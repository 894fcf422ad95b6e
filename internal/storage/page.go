package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
)

// PageType identifies one of the four on-disk B-tree page variants.
type PageType byte

const (
	PageTypeInteriorIndex PageType = 0x02
	PageTypeInteriorTable PageType = 0x05
	PageTypeLeafIndex     PageType = 0x0A
	PageTypeLeafTable     PageType = 0x0D
)

func (t PageType) String() string {
	switch t {
	case PageTypeInteriorIndex:
		return "interior-index"
	case PageTypeInteriorTable:
		return "interior-table"
	case PageTypeLeafIndex:
		return "leaf-index"
	case PageTypeLeafTable:
		return "leaf-table"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

func (t PageType) isInterior() bool {
	return t == PageTypeInteriorIndex || t == PageTypeInteriorTable
}

func headerLen(t PageType) int {
	if t.isInterior() {
		return 12
	}
	return 8
}

// Page is a decoded B-tree page: its kind, cell count, optional
// right-most child pointer, and the on-disk offsets of its cells in
// stored (ascending key) order.
//
// Data holds the full page_size bytes exactly as returned by the pager --
// including, on page 1, the leading 100-byte file header. Cell offsets
// read out of the cell-pointer array are measured from that same page
// start, so they index directly into Data with no adjustment. Subtracting
// 100 here would be the page-1 offset hazard the format is notorious for.
type Page struct {
	Number      int
	Kind        PageType
	RightChild  uint32
	CellOffsets []uint16
	Data        []byte
}

// headerOffset returns where this page's B-tree header begins within Data.
func headerOffset(number int) int {
	if number == 1 {
		return HeaderSize
	}
	return 0
}

// ParsePage decodes a page's B-tree header and cell-pointer array. data
// must be exactly the pager's page_size bytes for page number.
func ParsePage(number int, data []byte) (*Page, error) {
	ho := headerOffset(number)
	if len(data) < ho+8 {
		return nil, fmt.Errorf("page %d header: %w", number, dberr.ErrDecodeTruncated)
	}

	kind := PageType(data[ho])
	switch kind {
	case PageTypeInteriorIndex, PageTypeInteriorTable, PageTypeLeafIndex, PageTypeLeafTable:
	default:
		return nil, fmt.Errorf("page %d type 0x%02x: %w", number, byte(kind), dberr.ErrDecodeRecord)
	}

	hl := headerLen(kind)
	if len(data) < ho+hl {
		return nil, fmt.Errorf("page %d header: %w", number, dberr.ErrDecodeTruncated)
	}

	numCells := binary.BigEndian.Uint16(data[ho+3 : ho+5])
	var rightChild uint32
	if kind.isInterior() {
		rightChild = binary.BigEndian.Uint32(data[ho+8 : ho+12])
	}

	ptrStart := ho + hl
	if len(data) < ptrStart+int(numCells)*2 {
		return nil, fmt.Errorf("page %d cell pointers: %w", number, dberr.ErrDecodeTruncated)
	}
	offsets := make([]uint16, numCells)
	for i := 0; i < int(numCells); i++ {
		offsets[i] = binary.BigEndian.Uint16(data[ptrStart+i*2 : ptrStart+i*2+2])
	}

	return &Page{
		Number:      number,
		Kind:        kind,
		RightChild:  rightChild,
		CellOffsets: offsets,
		Data:        data,
	}, nil
}

// CellCount is the number of cells on the page.
func (p *Page) CellCount() int {
	return len(p.CellOffsets)
}

package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
)

// HeaderSize is the fixed size of the database file header, present only
// at the start of page 1.
const HeaderSize = 100

var magic = [16]byte{'S', 'Q', 'L', 'i', 't', 'e', ' ', 'f', 'o', 'r', 'm', 'a', 't', ' ', '3', 0}

// TextEncoding identifies the file's string encoding (offset 56-59).
type TextEncoding uint32

const (
	TextEncodingUTF8    TextEncoding = 1
	TextEncodingUTF16LE TextEncoding = 2
	TextEncodingUTF16BE TextEncoding = 3
)

// FileHeader is the parsed form of the 100-byte database header.
type FileHeader struct {
	PageSize     uint32
	TextEncoding TextEncoding
}

// ParseFileHeader validates the magic and decodes the fields sqlitepeek
// cares about: page size and text encoding. buf must be at least
// HeaderSize bytes (ordinarily all of page 1).
func ParseFileHeader(buf []byte) (FileHeader, error) {
	if len(buf) < HeaderSize {
		return FileHeader{}, fmt.Errorf("header: %w", dberr.ErrDecodeTruncated)
	}
	for i, b := range magic {
		if buf[i] != b {
			return FileHeader{}, dberr.ErrNotASqliteFile
		}
	}

	// The 16-bit page size field is a magic number: the literal value
	// 1 (0x00 0x01 big-endian) means a page size of 65536, since 65536
	// itself doesn't fit in two bytes.
	raw := binary.BigEndian.Uint16(buf[16:18])
	pageSize := uint32(raw)
	if raw == 1 {
		pageSize = 65536
	}
	if !isValidPageSize(pageSize) {
		return FileHeader{}, fmt.Errorf("page size %d: %w", pageSize, dberr.ErrNotASqliteFile)
	}

	encoding := TextEncoding(binary.BigEndian.Uint32(buf[56:60]))

	return FileHeader{PageSize: pageSize, TextEncoding: encoding}, nil
}

func isValidPageSize(n uint32) bool {
	if n < 512 || n > 65536 {
		return false
	}
	return n&(n-1) == 0
}

// Package pager presents a SQLite database file as a sequence of
// fixed-size, 1-based pages over a read-only file handle.
package pager

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
	"github.com/joeandaverde/sqlitepeek/internal/storage"
)

// Pager maps page numbers onto byte ranges of an open database file. It
// holds no mutable state beyond the open file handle: no page cache, no
// write path, no locking. Non-goals (spec.md) rule those out.
type Pager struct {
	file   *os.File
	header storage.FileHeader

	totalPages int
	log        *logrus.Logger
}

// Open validates the file header and returns a Pager ready to serve
// pages. It fails with ErrNotASqliteFile if the magic doesn't match, and
// ErrUnsupported if the text encoding isn't UTF-8.
func Open(path string, log *logrus.Logger) (*Pager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	headerBuf := make([]byte, storage.HeaderSize)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header: %w", dberr.ErrNotASqliteFile)
	}

	header, err := storage.ParseFileHeader(headerBuf)
	if err != nil {
		f.Close()
		return nil, err
	}
	if header.TextEncoding != storage.TextEncodingUTF8 {
		f.Close()
		return nil, fmt.Errorf("text encoding %d: %w", header.TextEncoding, dberr.ErrUnsupported)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	p := &Pager{
		file:       f,
		header:     header,
		totalPages: int(info.Size()) / int(header.PageSize),
		log:        log,
	}
	p.log.WithFields(logrus.Fields{
		"page_size":   header.PageSize,
		"total_pages": p.totalPages,
	}).Debug("pager: opened database file")

	return p, nil
}

// Close releases the underlying file handle.
func (p *Pager) Close() error {
	return p.file.Close()
}

// Header returns the parsed file header.
func (p *Pager) Header() storage.FileHeader {
	return p.header
}

// PageSize is the page size read from the file header.
func (p *Pager) PageSize() int {
	return int(p.header.PageSize)
}

// TotalPages is the number of whole pages in the file.
func (p *Pager) TotalPages() int {
	return p.totalPages
}

// Page returns the exactly page_size bytes of page n (1-based). For n==1
// the returned view includes the 100-byte file header at its start.
func (p *Pager) Page(n int) ([]byte, error) {
	if n < 1 || n > p.totalPages {
		p.log.WithField("page", n).Debug("pager: page out of range")
		return nil, fmt.Errorf("page %d: %w", n, dberr.ErrIoOutOfRange)
	}

	buf := make([]byte, p.PageSize())
	offset := int64(n-1) * int64(p.PageSize())
	if _, err := p.file.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("reading page %d: %w", n, err)
	}

	return buf, nil
}

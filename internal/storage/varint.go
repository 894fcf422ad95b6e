package storage

import (
	"fmt"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
)

// MaxVarintLen is the longest an on-disk varint can be.
const MaxVarintLen = 9

// ReadVarint decodes a SQLite varint from the start of buf. Bytes 0 through
// 7 each contribute their low 7 bits, most-significant-bit set meaning the
// varint continues. If a 9th byte is reached it contributes all 8 of its
// bits with no continuation check. It returns the decoded value and the
// number of bytes consumed, 1..=9.
func ReadVarint(buf []byte) (int64, int, error) {
	var v int64
	for i := 0; i < MaxVarintLen; i++ {
		if i >= len(buf) {
			return 0, 0, fmt.Errorf("varint: %w", dberr.ErrDecodeTruncated)
		}

		b := buf[i]
		if i == MaxVarintLen-1 {
			v = (v << 8) | int64(b)
			return v, i + 1, nil
		}

		v = (v << 7) | int64(b&0x7f)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}

	panic("unreachable")
}

// ReadVarints decodes consecutive varints out of data until it is
// exhausted, as used to read the serial-type codes out of a record header.
func ReadVarints(data []byte) ([]int64, error) {
	var values []int64
	i := 0
	for i < len(data) {
		v, n, err := ReadVarint(data[i:])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		i += n
	}
	return values, nil
}

// WriteVarint encodes v in SQLite's varint format. It exists for tests that
// exercise the round-trip property: decode(encode(v)) == (v, len(encode(v))).
func WriteVarint(v int64) []byte {
	uv := uint64(v)

	// Values representable in the 56 bits spread across at most 8 bytes
	// use the short, self-terminating form.
	if v >= 0 && uv < (uint64(1)<<56) {
		var groups []byte
		for {
			groups = append(groups, byte(uv&0x7f))
			uv >>= 7
			if uv == 0 {
				break
			}
		}
		n := len(groups)
		out := make([]byte, n)
		for i := 0; i < n; i++ {
			b := groups[n-1-i]
			if i < n-1 {
				b |= 0x80
			}
			out[i] = b
		}
		return out
	}

	// Negative values and values needing more than 56 bits always take the
	// full 9-byte form: the top 56 bits spread as 7-bit continuation
	// groups, followed by a trailing byte carrying the low 8 bits whole.
	out := make([]byte, MaxVarintLen)
	top56 := uv >> 8
	for i := MaxVarintLen - 2; i >= 0; i-- {
		out[i] = byte(top56&0x7f) | 0x80
		top56 >>= 7
	}
	out[MaxVarintLen-1] = byte(uv & 0xff)
	return out
}

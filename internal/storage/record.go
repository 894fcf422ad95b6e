package storage

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
)

// Kind discriminates the handful of value shapes a record column can hold.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindBlob
)

// Value is a decoded record column. Exactly one of Int/Float/Text/Blob is
// meaningful, selected by Kind. The on-disk set (NULL, six integer widths,
// float, two zero-payload booleans, blob, text) doesn't map cleanly onto a
// small set of Go types, so Value carries its own tag rather than reaching
// for interface{}.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
	Blob  []byte
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindText:
		return v.Text
	case KindBlob:
		return string(v.Blob)
	default:
		return ""
	}
}

// serialValueSize returns the number of body bytes a serial type code
// occupies.
func serialValueSize(serialType int64) (int, error) {
	switch {
	case serialType == 0, serialType == 8, serialType == 9:
		return 0, nil
	case serialType == 1:
		return 1, nil
	case serialType == 2:
		return 2, nil
	case serialType == 3:
		return 3, nil
	case serialType == 4:
		return 4, nil
	case serialType == 5:
		return 6, nil
	case serialType == 6, serialType == 7:
		return 8, nil
	case serialType == 10, serialType == 11:
		return 0, fmt.Errorf("serial type %d: %w", serialType, dberr.ErrDecodeRecord)
	case serialType >= 12 && serialType%2 == 0:
		return int((serialType - 12) / 2), nil
	case serialType >= 13 && serialType%2 == 1:
		return int((serialType - 13) / 2), nil
	default:
		return 0, fmt.Errorf("serial type %d: %w", serialType, dberr.ErrDecodeRecord)
	}
}

// decodeValue decodes one column's body bytes per serialType. body must be
// exactly serialValueSize(serialType) bytes long.
func decodeValue(serialType int64, body []byte) (Value, error) {
	switch {
	case serialType == 0:
		return Value{Kind: KindNull}, nil
	case serialType == 1:
		return Value{Kind: KindInt, Int: int64(int8(body[0]))}, nil
	case serialType == 2:
		return Value{Kind: KindInt, Int: int64(int16(uint16(body[0])<<8 | uint16(body[1])))}, nil
	case serialType == 3:
		return Value{Kind: KindInt, Int: int64(signExtend24(body))}, nil
	case serialType == 4:
		var u uint32
		for _, b := range body {
			u = u<<8 | uint32(b)
		}
		return Value{Kind: KindInt, Int: int64(int32(u))}, nil
	case serialType == 5:
		return Value{Kind: KindInt, Int: signExtend48(body)}, nil
	case serialType == 6:
		var u uint64
		for _, b := range body {
			u = u<<8 | uint64(b)
		}
		return Value{Kind: KindInt, Int: int64(u)}, nil
	case serialType == 7:
		var u uint64
		for _, b := range body {
			u = u<<8 | uint64(b)
		}
		return Value{Kind: KindFloat, Float: math.Float64frombits(u)}, nil
	case serialType == 8:
		return Value{Kind: KindInt, Int: 0}, nil
	case serialType == 9:
		return Value{Kind: KindInt, Int: 1}, nil
	case serialType == 10, serialType == 11:
		return Value{}, fmt.Errorf("serial type %d: %w", serialType, dberr.ErrDecodeRecord)
	case serialType >= 12 && serialType%2 == 0:
		blob := make([]byte, len(body))
		copy(blob, body)
		return Value{Kind: KindBlob, Blob: blob}, nil
	case serialType >= 13 && serialType%2 == 1:
		if !utf8.Valid(body) {
			return Value{}, fmt.Errorf("text column: %w", dberr.ErrDecodeRecord)
		}
		return Value{Kind: KindText, Text: string(body)}, nil
	default:
		return Value{}, fmt.Errorf("serial type %d: %w", serialType, dberr.ErrDecodeRecord)
	}
}

// signExtend24 widens a 3-byte big-endian two's complement integer to 32
// bits by replicating its sign bit.
func signExtend24(body []byte) int32 {
	sign := byte(0)
	if body[0]&0x80 != 0 {
		sign = 0xFF
	}
	return int32(sign)<<24 | int32(body[0])<<16 | int32(body[1])<<8 | int32(body[2])
}

// signExtend48 widens a 6-byte big-endian two's complement integer to 64
// bits by replicating its sign bit.
func signExtend48(body []byte) int64 {
	var v int64
	if body[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range body {
		v = v<<8 | int64(b)
	}
	return v
}

// Record is a decoded row payload: the typed column values a cell's serial
// type header describes.
type Record struct {
	Values []Value
}

// DecodeRecord parses a cell's payload bytes into a Record. Callers slice
// payload to exactly payload_size bytes before calling this, so a
// header/body length mismatch surfaces here rather than silently reading
// past the intended bounds: a body too short for its serial types fails
// with DecodeTruncated, and leftover body bytes fail with DecodeRecord.
func DecodeRecord(payload []byte) (Record, error) {
	headerSize, n, err := ReadVarint(payload)
	if err != nil {
		return Record{}, err
	}
	if headerSize < int64(n) || int(headerSize) > len(payload) {
		return Record{}, fmt.Errorf("record header size %d: %w", headerSize, dberr.ErrDecodeRecord)
	}

	serialTypes, err := ReadVarints(payload[n:int(headerSize)])
	if err != nil {
		return Record{}, err
	}

	body := payload[int(headerSize):]
	values := make([]Value, len(serialTypes))
	offset := 0
	for i, st := range serialTypes {
		size, err := serialValueSize(st)
		if err != nil {
			return Record{}, err
		}
		if offset+size > len(body) {
			return Record{}, fmt.Errorf("record body: %w", dberr.ErrDecodeTruncated)
		}
		v, err := decodeValue(st, body[offset:offset+size])
		if err != nil {
			return Record{}, err
		}
		values[i] = v
		offset += size
	}
	if offset != len(body) {
		return Record{}, fmt.Errorf("record body length mismatch: %w", dberr.ErrDecodeRecord)
	}

	return Record{Values: values}, nil
}

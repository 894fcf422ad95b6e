package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildRecord(t *testing.T, serialTypes []int64, body []byte) []byte {
	t.Helper()

	var headerBody []byte
	for _, st := range serialTypes {
		headerBody = append(headerBody, WriteVarint(st)...)
	}

	headerSizeVarint := WriteVarint(int64(len(headerBody) + 1))
	for len(headerSizeVarint) != 1 {
		// Keep the fixture simple: a record never needs a multi-byte
		// header-size varint in these tests.
		t.Fatalf("unexpected multi-byte header size varint")
	}

	payload := append([]byte{}, headerSizeVarint...)
	payload = append(payload, headerBody...)
	payload = append(payload, body...)
	return payload
}

func TestDecodeRecordIntegers(t *testing.T) {
	payload := buildRecord(t, []int64{1, 2, 3, 4, 5, 6, 8, 9, 0}, []byte{
		0xFF,                   // -1 (I8)
		0x80, 0x00,             // -32768 (I16)
		0xFF, 0x00, 0x00,       // negative I24
		0x00, 0x00, 0x01, 0x00, // 256 (I32)
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // -1 (I48)
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, // 1 (I64)
	})

	rec, err := DecodeRecord(payload)
	require.NoError(t, err)
	require.Len(t, rec.Values, 9)
	require.Equal(t, int64(-1), rec.Values[0].Int)
	require.Equal(t, int64(-32768), rec.Values[1].Int)
	require.Equal(t, int64(-65536), rec.Values[2].Int)
	require.Equal(t, int64(256), rec.Values[3].Int)
	require.Equal(t, int64(-1), rec.Values[4].Int)
	require.Equal(t, int64(1), rec.Values[5].Int)
	require.Equal(t, int64(0), rec.Values[6].Int)
	require.Equal(t, int64(1), rec.Values[7].Int)
	require.Equal(t, KindNull, rec.Values[8].Kind)
}

func TestDecodeRecordText(t *testing.T) {
	text := "Granny Smith"
	serialType := int64(13 + 2*len(text))
	payload := buildRecord(t, []int64{serialType}, []byte(text))

	rec, err := DecodeRecord(payload)
	require.NoError(t, err)
	require.Len(t, rec.Values, 1)
	require.Equal(t, KindText, rec.Values[0].Kind)
	require.Equal(t, text, rec.Values[0].Text)
}

func TestDecodeRecordBlob(t *testing.T) {
	blob := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	serialType := int64(12 + 2*len(blob))
	payload := buildRecord(t, []int64{serialType}, blob)

	rec, err := DecodeRecord(payload)
	require.NoError(t, err)
	require.Equal(t, KindBlob, rec.Values[0].Kind)
	require.Equal(t, blob, rec.Values[0].Blob)
}

func TestDecodeRecordReservedSerialTypeFails(t *testing.T) {
	payload := buildRecord(t, []int64{10}, nil)
	_, err := DecodeRecord(payload)
	require.Error(t, err)
}

func TestDecodeRecordInvalidUTF8Fails(t *testing.T) {
	serialType := int64(13 + 2*2)
	payload := buildRecord(t, []int64{serialType}, []byte{0xFF, 0xFE})
	_, err := DecodeRecord(payload)
	require.Error(t, err)
}

func TestDecodeRecordTruncatedBodyFails(t *testing.T) {
	payload := buildRecord(t, []int64{4}, []byte{0x01, 0x02})
	_, err := DecodeRecord(payload)
	require.Error(t, err)
}

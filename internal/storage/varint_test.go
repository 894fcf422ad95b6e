package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []int64{
		0, 1, 127, 128, 200, 16384, 2097151, 2097152,
		1 << 20, 1 << 34, 1 << 55, (1 << 56) - 1, 1 << 56,
		-1, -128, -1000000, -(1 << 40),
	}

	for _, v := range cases {
		encoded := WriteVarint(v)
		require.LessOrEqual(t, len(encoded), MaxVarintLen)

		decoded, n, err := ReadVarint(encoded)
		require.NoError(t, err)
		require.Equal(t, v, decoded)
		require.Equal(t, len(encoded), n)
	}
}

func TestVarintLength(t *testing.T) {
	// A single-byte form has no continuation bit set.
	decoded, n, err := ReadVarint([]byte{0x01})
	require.NoError(t, err)
	require.Equal(t, int64(1), decoded)
	require.Equal(t, 1, n)

	// Two bytes: first continues, second terminates.
	decoded, n, err = ReadVarint([]byte{0x81, 0x00})
	require.NoError(t, err)
	require.Equal(t, int64(128), decoded)
	require.Equal(t, 2, n)

	// Nine bytes: first eight all carry the continuation bit; the ninth
	// is read unconditionally regardless of its high bit.
	nineBytes := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	_, n, err = ReadVarint(nineBytes)
	require.NoError(t, err)
	require.Equal(t, 9, n)
}

func TestReadVarintTruncated(t *testing.T) {
	_, _, err := ReadVarint([]byte{0x81})
	require.Error(t, err)
}

func TestReadVarints(t *testing.T) {
	data := append(WriteVarint(1), WriteVarint(300)...)
	data = append(data, WriteVarint(70000)...)

	values, err := ReadVarints(data)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 300, 70000}, values)
}

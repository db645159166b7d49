package ringcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	r := New(8)
	n := r.Write([]byte{1, 2, 3})
	require.Equal(t, 3, n)
	require.Equal(t, 3, r.Occupied())

	buf := make([]byte, 3)
	n = r.Read(buf)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{1, 2, 3}, buf)
	require.Equal(t, 0, r.Occupied())
}

func TestWriteStopsWhenFull(t *testing.T) {
	r := New(4) // usable capacity is size-1
	n := r.Write([]byte{1, 2, 3, 4, 5})
	require.Equal(t, 3, n)
	require.Equal(t, 0, r.Space())
}

func TestReadPartialDrainsOnlyWhatsThere(t *testing.T) {
	r := New(8)
	r.Write([]byte{9, 8})
	buf := make([]byte, 5)
	n := r.Read(buf)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{9, 8}, buf[:n])
}

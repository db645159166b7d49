package rdrv

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/fsserver"
	"github.com/remotedos/rdrive/pkg/proto"
	"github.com/remotedos/rdrive/pkg/wire"
)

// serveOneSide runs an fsserver.Server loop against conn until it is closed,
// standing in for cmd/rdrive-server's frame loop in tests.
func serveOneSide(t *testing.T, conn net.Conn, root string) {
	t.Helper()
	srv := fsserver.New(root, nil)
	frame := wire.New(conn)
	go func() {
		for {
			payload, err := frame.Recv()
			if err != nil {
				return
			}
			if len(payload) == 0 {
				continue
			}
			out, err := srv.Dispatch(proto.Command(payload[0]), payload[1:])
			if err != nil {
				continue
			}
			if err := frame.Send(out); err != nil {
				return
			}
		}
	}()
}

func newTestDriver(t *testing.T, root string) *Driver {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	serveOneSide(t, server, root)
	return New(client, time.Second, nil)
}

func namebuf(main, ext string) proto.DosNamebuf {
	var nb proto.DosNamebuf
	copy(nb.Name1[:], main)
	for i := len(main); i < 8; i++ {
		nb.Name1[i] = ' '
	}
	copy(nb.Ext[:], ext)
	for i := len(ext); i < 3; i++ {
		nb.Ext[i] = ' '
	}
	return nb
}

func TestDriverOpenReadClose(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "HELLO.TXT"), []byte("hello world"), 0644))
	d := newTestDriver(t, root)

	size, err := d.Open(1, proto.ModeRead, namebuf("HELLO", "TXT"))
	require.NoError(t, err)
	require.EqualValues(t, 11, size)

	data, err := d.Read(1, 0, 64)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))

	require.NoError(t, d.Close(1))
}

func TestDriverWriteCacheCoalescesAdjacentWrites(t *testing.T) {
	root := t.TempDir()
	d := newTestDriver(t, root)

	require.NoError(t, d.Create(2, 0x20, proto.ModeWrite, namebuf("OUT", "BIN")))

	n, err := d.Write(2, 0, []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	// Contiguous with the pending cache entry: no flush yet, nothing on disk.
	n, err = d.Write(2, 3, []byte("def"))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	_, cached := d.writeCache[2]
	require.True(t, cached, "coalesced write should still be cached, not flushed")

	require.NoError(t, d.Close(2))
	data, err := os.ReadFile(filepath.Join(root, "OUT.BIN"))
	require.NoError(t, err)
	require.Equal(t, "abcdef", string(data))
}

func TestDriverReadFlushesPendingWriteFirst(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "RW.DAT"), []byte("xxxxxxxx"), 0644))
	d := newTestDriver(t, root)

	_, err := d.Open(3, proto.ModeReadWrite, namebuf("RW", "DAT"))
	require.NoError(t, err)

	_, err = d.Write(3, 0, []byte("YYYY"))
	require.NoError(t, err)

	data, err := d.Read(3, 0, 4)
	require.NoError(t, err)
	require.Equal(t, "YYYY", string(data), "read must observe the cached write, not stale server data")

	require.NoError(t, d.Close(3))
}

func TestDriverSeekIsLocalAndBoundsChecked(t *testing.T) {
	root := t.TempDir()
	d := newTestDriver(t, root)

	pos, err := d.Seek(4, 0 /*io.SeekStart*/, 5, 0, 100)
	require.NoError(t, err)
	require.EqualValues(t, 5, pos)

	_, err = d.Seek(4, 0, 200, 0, 100)
	require.ErrorIs(t, err, doserr.CANTSEEK)
}

func TestDriverFilesBatchesViaNFilesCache(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "A.TXT"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "B.TXT"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "C.TXT"), nil, 0644))
	d := newTestDriver(t, root)

	var nb proto.DosNamebuf
	copy(nb.Name1[:], "????????")
	copy(nb.Ext[:], "???")

	first, err := d.Files(0x20, 0x500, nb)
	require.NoError(t, err)
	require.NotNil(t, first)

	seen := map[string]bool{string(first.Name[:1]): true}
	for {
		fi, err := d.NFiles(0x500)
		if err == doserr.NOMORE {
			break
		}
		require.NoError(t, err)
		seen[string(fi.Name[:1])] = true
	}
	require.Len(t, seen, 3)
}

func TestDriverRecoversAfterTimeout(t *testing.T) {
	// The peer reads every request but never answers, so the response wait
	// runs into the driver's timeout.
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	go io.Copy(io.Discard, server)
	d := New(client, 10*time.Millisecond, nil)

	err := d.Check()
	require.Error(t, err)
	require.ErrorIs(t, err, doserr.Timeout)
	require.True(t, d.Recovering())
}

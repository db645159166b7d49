package fsserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/proto"
)

func namebufFull(main, ext string) proto.DosNamebuf {
	var nb proto.DosNamebuf
	nb.Path[0] = 0
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

func TestOpenReadClose(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "HELLO.TXT"), []byte("Hello"), 0644))
	s := New(root, nil)

	openResp := s.open(proto.OpenRequest{Mode: proto.ModeRead, Fcb: 0x100, Path: namebufFull("HELLO", "TXT")})
	require.EqualValues(t, 0, openResp.Res)
	require.EqualValues(t, 5, openResp.Size)

	readResp := s.read(proto.ReadRequest{Fcb: 0x100, Pos: 0, Len: 64})
	require.EqualValues(t, 5, readResp.Len)
	require.Equal(t, "Hello", string(readResp.Data))

	closeResp := s.close(proto.CloseRequest{Fcb: 0x100})
	require.EqualValues(t, 0, closeResp.Res)
	require.Empty(t, s.tables.openFiles)
}

func TestCreateWriteCloseTruncates(t *testing.T) {
	root := t.TempDir()
	s := New(root, nil)

	createResp := s.create(proto.CreateRequest{Fcb: 0x200, Attr: 0x20, Mode: proto.ModeWrite, Path: namebufFull("NEW", "BIN")})
	require.EqualValues(t, 0, createResp.Res)

	writeResp := s.write(proto.WriteRequest{Fcb: 0x200, Pos: 0, Len: 3, Data: []byte{1, 2, 3}})
	require.EqualValues(t, 3, writeResp.Len)

	truncResp := s.write(proto.WriteRequest{Fcb: 0x200, Pos: 3, Len: 0})
	require.EqualValues(t, 0, truncResp.Len)

	s.close(proto.CloseRequest{Fcb: 0x200})

	data, err := os.ReadFile(filepath.Join(root, "NEW.BIN"))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)
}

func TestWildcardListDrainsViaNFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "A.TXT"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "AB.TXT"), []byte("ab"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("r"), 0644))
	s := New(root, nil)

	var nb proto.DosNamebuf
	nb.Path[0] = 0
	copy(nb.Name1[:], "A???????")
	copy(nb.Ext[:], "???")

	filesResp := s.files(proto.FilesRequest{Attr: 0x20, Filep: 0x300, Path: nb})
	require.EqualValues(t, 0, filesResp.Res)
	require.Len(t, filesResp.Files, 1)

	nfilesResp := s.nfiles(proto.NFilesRequest{Filep: 0x300})
	require.EqualValues(t, 0, nfilesResp.Res)
	require.Len(t, nfilesResp.Files, 1)

	nfilesResp2 := s.nfiles(proto.NFilesRequest{Filep: 0x300})
	require.EqualValues(t, -int8(doserr.NOMORE), nfilesResp2.Res)
	require.Empty(t, s.tables.dirs)
}

func TestVolumeNameSynthesis(t *testing.T) {
	root := "/srv/data"
	s := New(root, nil)

	var nb proto.DosNamebuf
	nb.Path[0] = '\t'
	copy(nb.Name1[:], "????????")
	copy(nb.Ext[:], "???")

	resp := s.files(proto.FilesRequest{Attr: 0x08, Filep: 0x400, Path: nb})
	require.EqualValues(t, 0, resp.Res)
	require.GreaterOrEqual(t, len(resp.Files), 1)
	require.EqualValues(t, proto.AttrVolume, resp.Files[0].Attr)

	var wantName [23]byte
	copy(wantName[:], root)
	require.Equal(t, wantName, resp.Files[0].Name)
}

func TestRenameIntoNonEmptyDirFails(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "A"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "B"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "B", "keep.txt"), []byte("x"), 0644))
	s := New(root, nil)

	a := namebufFull("A", "")
	b := namebufFull("B", "")

	resp := s.rename(proto.RenameRequest{PathOld: a, PathNew: b})
	require.EqualValues(t, -int8(doserr.CANTREN), resp.Res)
}

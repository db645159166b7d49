package rdrv

import (
	"github.com/remotedos/rdrive/internal/ringcache"
	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/proto"
)

// batchSize is how many dos_filesinfo records the driver asks the server to
// pack into one files/nfiles response when it can use more than one
// (optional batching). The first record is always returned
// immediately; anything beyond it is parked in a per-filep ring and served
// by NFiles without another round-trip.
const batchSize = 8

// Files issues the first `files` request for a wildcard search and returns
// its first match. Any further matches the server packed into the same
// response are cached for NFiles to drain.
func (d *Driver) Files(attr byte, filep uint32, path proto.DosNamebuf) (*proto.DosFilesInfo, error) {
	resp, err := d.roundTrip(proto.CmdFiles, proto.FilesRequest{Attr: attr, Num: batchSize, Filep: filep, Path: path})
	if err != nil {
		return nil, err
	}
	fr := resp.(proto.FilesResponse)
	if fr.Res < 0 {
		return nil, doserr.Code(-fr.Res)
	}
	if len(fr.Files) == 0 {
		return nil, doserr.NOMORE
	}
	d.cacheDirTail(filep, fr.Files[1:])
	return &fr.Files[0], nil
}

// NFiles returns the next match for filep, preferring the local batch cache
// over another wire round-trip.
func (d *Driver) NFiles(filep uint32) (*proto.DosFilesInfo, error) {
	if fi, ok := d.popCachedDirEntry(filep); ok {
		return fi, nil
	}
	resp, err := d.roundTrip(proto.CmdNFiles, proto.NFilesRequest{Num: batchSize, Filep: filep})
	if err != nil {
		return nil, err
	}
	fr := resp.(proto.NFilesResponse)
	if fr.Res < 0 {
		return nil, doserr.Code(-fr.Res)
	}
	if len(fr.Files) == 0 {
		return nil, doserr.NOMORE
	}
	d.cacheDirTail(filep, fr.Files[1:])
	first := fr.Files[0]
	return &first, nil
}

// cacheDirTail parks entries (everything after the one the caller is about
// to return directly) in a per-filep ring for later NFiles calls to drain.
func (d *Driver) cacheDirTail(filep uint32, entries []proto.DosFilesInfo) {
	if len(entries) == 0 {
		return
	}
	// A ring of size n holds at most n-1 bytes.
	ring := ringcache.New(len(entries)*proto.FilesInfoSize + 1)
	for i := range entries {
		fi := entries[i].Marshal()
		ring.Write(fi[:])
	}
	d.dirCache[filep] = ring
}

func (d *Driver) popCachedDirEntry(filep uint32) (*proto.DosFilesInfo, bool) {
	ring, ok := d.dirCache[filep]
	if !ok || ring.Occupied() == 0 {
		delete(d.dirCache, filep)
		return nil, false
	}
	buf := make([]byte, proto.FilesInfoSize)
	if n := ring.Read(buf); n < proto.FilesInfoSize {
		delete(d.dirCache, filep)
		return nil, false
	}
	fi, err := proto.UnmarshalFilesInfo(buf)
	if err != nil {
		delete(d.dirCache, filep)
		return nil, false
	}
	if ring.Occupied() == 0 {
		delete(d.dirCache, filep)
	}
	return fi, true
}

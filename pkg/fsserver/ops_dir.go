package fsserver

import (
	"os"

	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/dosname"
	"github.com/remotedos/rdrive/pkg/proto"
)

// maxFileLen excludes files too large for the 32-bit size field.
const maxFileLen = 1<<32 - 1

func (s *Server) files(req proto.FilesRequest) proto.FilesResponse {
	searchKey := dosname.BuildSearchKey(req.Path.Name1, req.Path.Name2, req.Path.Ext)

	var matches []proto.DosFilesInfo

	isRoot := isRootMarkerPath(req.Path)
	if isRoot && dosname.IsVolumeNameQuery(req, searchKey) {
		name, err := s.codec.EncodeToGuest(s.codec.Root)
		if err == nil {
			var fi proto.DosFilesInfo
			fi.Attr = proto.AttrVolume
			copy(fi.Name[:], name)
			matches = append(matches, fi)
		}
	}

	path, err := s.codec.TranslatePath(&req.Path, false)
	if err != nil {
		return proto.FilesResponse{Res: -int8(doserr.NODIR)}
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		if len(matches) == 0 {
			return proto.FilesResponse{Res: -int8(doserr.FromErrno(err))}
		}
	} else {
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.Size() > maxFileLen {
				continue
			}
			guestName, err := s.codec.EncodeToGuest(entry.Name())
			if err != nil {
				continue
			}
			candKey, ok := dosname.CandidateKey(guestName)
			if !ok {
				continue
			}
			if !dosname.MatchWildcard(searchKey, candKey) {
				continue
			}
			attr := attrFromFileInfo(info)
			if req.Attr&attr == 0 {
				continue
			}
			var fi proto.DosFilesInfo
			fi.Attr = attr
			hh, mm, ss := info.ModTime().Clock()
			fi.Time = proto.PackDosTime(hh, mm, ss)
			y, mo, d := info.ModTime().Date()
			fi.Date = proto.PackDosDate(y, int(mo), d)
			fi.Size = uint32(info.Size())
			copy(fi.Name[:], guestName)
			matches = append(matches, fi)
		}
	}

	num := int(req.Num)
	if num < 1 {
		num = 1
	}
	s.tables.installDirMatch(req.Filep, matches)
	served, _ := s.tables.advanceDirMatch(req.Filep, num)
	return proto.FilesResponse{Res: 0, Num: byte(len(served)), Files: served}
}

func (s *Server) nfiles(req proto.NFilesRequest) proto.FilesResponse {
	num := int(req.Num)
	if num < 1 {
		num = 1
	}
	served, ok := s.tables.advanceDirMatch(req.Filep, num)
	if !ok {
		return proto.FilesResponse{Res: -int8(doserr.NOMORE)}
	}
	if len(served) == 0 {
		return proto.FilesResponse{Res: -int8(doserr.NOMORE)}
	}
	return proto.FilesResponse{Res: 0, Num: byte(len(served)), Files: served}
}

func isRootMarkerPath(nb proto.DosNamebuf) bool {
	return nb.Path[0] == dosname.RootMarker[0] && nb.Path[1] == 0
}

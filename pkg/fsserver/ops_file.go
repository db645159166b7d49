package fsserver

import (
	"io"
	"os"
	"time"

	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/proto"
)

func (s *Server) create(req proto.CreateRequest) proto.CreateResponse {
	path, err := s.codec.TranslatePath(&req.Path, true)
	if err != nil {
		return proto.CreateResponse{Res: -int8(doserr.NODIR)}
	}
	flags := os.O_CREATE | os.O_RDWR | os.O_TRUNC
	if req.Mode == proto.ModeRead {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return proto.CreateResponse{Res: -int8(doserr.FromErrno(err))}
	}
	s.tables.installOpenFile(req.Fcb, f, path)
	return proto.CreateResponse{Res: 0}
}

func (s *Server) open(req proto.OpenRequest) proto.OpenResponse {
	path, err := s.codec.TranslatePath(&req.Path, true)
	if err != nil {
		return proto.OpenResponse{Res: -int8(doserr.NODIR)}
	}
	var flags int
	switch req.Mode {
	case proto.ModeRead:
		flags = os.O_RDONLY
	case proto.ModeWrite:
		flags = os.O_WRONLY
	default:
		flags = os.O_RDWR
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return proto.OpenResponse{Res: -int8(doserr.FromErrno(err))}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return proto.OpenResponse{Res: -int8(doserr.FromErrno(err))}
	}
	s.tables.installOpenFile(req.Fcb, f, path)
	return proto.OpenResponse{Res: 0, Size: uint32(info.Size())}
}

func (s *Server) close(req proto.CloseRequest) proto.CloseResponse {
	if !s.tables.closeOpenFile(req.Fcb) {
		return proto.CloseResponse{Res: -int8(doserr.BADF)}
	}
	return proto.CloseResponse{Res: 0}
}

func (s *Server) seekIfNeeded(entry *openFileEntry, pos uint32) error {
	if entry.pos == int64(pos) {
		return nil
	}
	newPos, err := entry.f.Seek(int64(pos), io.SeekStart)
	if err != nil {
		return err
	}
	entry.pos = newPos
	return nil
}

func (s *Server) read(req proto.ReadRequest) proto.ReadResponse {
	entry, ok := s.tables.openFiles[req.Fcb]
	if !ok {
		return proto.ReadResponse{Len: -int16(doserr.BADF)}
	}
	length := req.Len
	if length > proto.MaxBulkLen {
		length = proto.MaxBulkLen
	}
	if err := s.seekIfNeeded(entry, req.Pos); err != nil {
		return proto.ReadResponse{Len: -int16(doserr.FromErrno(err))}
	}
	buf := make([]byte, length)
	n, err := entry.f.Read(buf)
	if err != nil && err != io.EOF {
		return proto.ReadResponse{Len: -int16(doserr.FromErrno(err))}
	}
	entry.pos += int64(n)
	return proto.ReadResponse{Len: int16(n), Data: buf[:n]}
}

func (s *Server) write(req proto.WriteRequest) proto.WriteResponse {
	entry, ok := s.tables.openFiles[req.Fcb]
	if !ok {
		return proto.WriteResponse{Len: -int16(doserr.BADF)}
	}
	if err := s.seekIfNeeded(entry, req.Pos); err != nil {
		return proto.WriteResponse{Len: -int16(doserr.FromErrno(err))}
	}
	if req.Len == 0 {
		// Zero-length write truncates the file at the current position.
		if err := entry.f.Truncate(entry.pos); err != nil {
			return proto.WriteResponse{Len: -int16(doserr.FromErrno(err))}
		}
		return proto.WriteResponse{Len: 0}
	}
	n, err := entry.f.Write(req.Data)
	if err != nil {
		return proto.WriteResponse{Len: -int16(doserr.FromErrno(err))}
	}
	entry.pos += int64(n)
	return proto.WriteResponse{Len: int16(n)}
}

func (s *Server) filedate(req proto.FiledateRequest) proto.FiledateResponse {
	entry, ok := s.tables.openFiles[req.Fcb]
	if !ok {
		return proto.FiledateResponse{}
	}
	if req.Time == 0 && req.Date == 0 {
		info, err := entry.f.Stat()
		if err != nil {
			return proto.FiledateResponse{}
		}
		hh, mm, ss := info.ModTime().Clock()
		y, mo, d := info.ModTime().Date()
		return proto.FiledateResponse{
			Time: proto.PackDosTime(hh, mm, ss),
			Date: proto.PackDosDate(y, int(mo), d),
		}
	}
	hh, mm, ss := proto.UnpackDosTime(req.Time)
	y, mo, d := proto.UnpackDosDate(req.Date)
	t := time.Date(y, time.Month(mo), d, hh, mm, ss, 0, time.Local)
	os.Chtimes(entry.path, t, t)
	return proto.FiledateResponse{Time: req.Time, Date: req.Date}
}

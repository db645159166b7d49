package fsserver

import (
	"errors"
	"os"
	"syscall"

	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/proto"
)

func (s *Server) check(proto.CheckRequest) proto.CheckResponse {
	return proto.CheckResponse{Res: 0}
}

func (s *Server) chdir(req proto.ChdirRequest) proto.ChdirResponse {
	path, err := s.codec.TranslatePath(&req.Path, false)
	if err != nil {
		return proto.ChdirResponse{Res: -int8(doserr.NODIR)}
	}
	info, err := os.Stat(path)
	if err != nil {
		return proto.ChdirResponse{Res: -int8(doserr.FromErrno(err))}
	}
	if !info.IsDir() {
		return proto.ChdirResponse{Res: -int8(doserr.NODIR)}
	}
	return proto.ChdirResponse{Res: 0}
}

func (s *Server) mkdir(req proto.MkdirRequest) proto.MkdirResponse {
	path, err := s.codec.TranslatePath(&req.Path, true)
	if err != nil {
		return proto.MkdirResponse{Res: -int8(doserr.NODIR)}
	}
	if err := os.Mkdir(path, 0755); err != nil {
		return proto.MkdirResponse{Res: -int8(doserr.FromErrno(err))}
	}
	return proto.MkdirResponse{Res: 0}
}

func (s *Server) rmdir(req proto.RmdirRequest) proto.RmdirResponse {
	path, err := s.codec.TranslatePath(&req.Path, true)
	if err != nil {
		return proto.RmdirResponse{Res: -int8(doserr.NODIR)}
	}
	if err := os.Remove(path); err != nil {
		// EINVAL -> ISCURDIR: the operation attempted to remove the
		// current directory.
		var errno syscall.Errno
		if errors.As(err, &errno) && errno == syscall.EINVAL {
			return proto.RmdirResponse{Res: -int8(doserr.ISCURDIR)}
		}
		return proto.RmdirResponse{Res: -int8(doserr.FromErrno(err))}
	}
	return proto.RmdirResponse{Res: 0}
}

func (s *Server) rename(req proto.RenameRequest) proto.RenameResponse {
	oldPath, err := s.codec.TranslatePath(&req.PathOld, true)
	if err != nil {
		return proto.RenameResponse{Res: -int8(doserr.NODIR)}
	}
	newPath, err := s.codec.TranslatePath(&req.PathNew, true)
	if err != nil {
		return proto.RenameResponse{Res: -int8(doserr.NODIR)}
	}
	// syscall.Rename rather than os.Rename: os.Rename reports EEXIST for any
	// existing directory target without asking the kernel, which would hide
	// ENOTEMPTY.
	if err := syscall.Rename(oldPath, newPath); err != nil {
		var errno syscall.Errno
		if errors.As(err, &errno) && errno == syscall.ENOTEMPTY {
			return proto.RenameResponse{Res: -int8(doserr.CANTREN)}
		}
		return proto.RenameResponse{Res: -int8(doserr.FromErrno(err))}
	}
	return proto.RenameResponse{Res: 0}
}

func (s *Server) delete(req proto.DeleteRequest) proto.DeleteResponse {
	path, err := s.codec.TranslatePath(&req.Path, true)
	if err != nil {
		return proto.DeleteResponse{Res: -int8(doserr.NODIR)}
	}
	if err := os.Remove(path); err != nil {
		return proto.DeleteResponse{Res: -int8(doserr.FromErrno(err))}
	}
	return proto.DeleteResponse{Res: 0}
}

// chmod reads current attributes first; an Attr of 0xFF means "report
// current attribute" rather than "set attribute", otherwise the read-only
// bit is applied to the host write permission and either 0 or the current
// attribute byte is returned.
func (s *Server) chmod(req proto.ChmodRequest) proto.ChmodResponse {
	path, err := s.codec.TranslatePath(&req.Path, true)
	if err != nil {
		return proto.ChmodResponse{Res: -int8(doserr.NODIR)}
	}
	info, err := os.Stat(path)
	if err != nil {
		return proto.ChmodResponse{Res: -int8(doserr.FromErrno(err))}
	}
	current := attrFromFileInfo(info)
	if req.Attr == 0xFF {
		return proto.ChmodResponse{Res: int8(current)}
	}
	var mode os.FileMode = 0644
	if info.IsDir() {
		mode = 0755
	}
	if req.Attr&proto.AttrReadOnly != 0 {
		mode &^= 0222
	}
	if err := os.Chmod(path, mode); err != nil {
		return proto.ChmodResponse{Res: -int8(doserr.FromErrno(err))}
	}
	return proto.ChmodResponse{Res: int8(current)}
}

func attrFromFileInfo(info os.FileInfo) byte {
	var attr byte
	if info.IsDir() {
		attr |= proto.AttrDir
	} else {
		attr |= proto.AttrArchive
	}
	if info.Mode().Perm()&0200 == 0 {
		attr |= proto.AttrReadOnly
	}
	return attr
}

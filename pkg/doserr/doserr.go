// Package doserr implements the bidirectional error-code translation:
// Guest DOS error codes, and the default (plus per-operation override)
// mapping from host errno.
package doserr

import (
	"errors"
	"io/fs"
	"syscall"
)

// Code is a Guest DOS error code, always returned to the driver as a
// negative value in a response's res/len field.
type Code int16

const (
	NOENT     Code = 2
	NODIR     Code = 3
	MFILE     Code = 4
	ISDIR     Code = 5
	BADF      Code = 6
	NOMEM     Code = 8
	ILGMPTR   Code = 9
	ILGFMT    Code = 10
	ILGARG    Code = 11
	ILGFNAME  Code = 13
	ILGPARM   Code = 14
	ILGDRV    Code = 15
	ISCURDIR  Code = 16
	CANTIOC   Code = 17
	NOMORE    Code = 18
	RDONLY    Code = 19
	EXISTDIR  Code = 20
	NOTEMPTY  Code = 21
	CANTREN   Code = 22
	DISKFULL  Code = 23
	DIRFULL   Code = 24
	CANTSEEK  Code = 25
	EXISTFILE Code = 26

	// Timeout is not a host-errno-derived code: the driver synthesizes it
	// itself when a response never arrives.
	Timeout Code = 0x1002
)

var descriptions = map[Code]string{
	NOENT:     "file not found",
	NODIR:     "path not found",
	MFILE:     "too many open files",
	ISDIR:     "is a directory",
	BADF:      "bad file handle",
	NOMEM:     "out of memory",
	ILGMPTR:   "illegal memory address",
	ILGFMT:    "illegal format",
	ILGARG:    "illegal argument",
	ILGFNAME:  "illegal file name",
	ILGPARM:   "illegal parameter",
	ILGDRV:    "illegal drive / cross-device",
	ISCURDIR:  "cannot remove current directory",
	CANTIOC:   "ioctl not possible",
	NOMORE:    "no more files",
	RDONLY:    "read-only / access denied",
	EXISTDIR:  "directory already exists",
	NOTEMPTY:  "directory not empty",
	CANTREN:   "cannot rename",
	DISKFULL:  "disk full",
	DIRFULL:   "directory full",
	CANTSEEK:  "cannot seek",
	EXISTFILE: "file already exists",
	Timeout:   "write protect / timeout",
}

func (c Code) Error() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "unknown DOS error"
}

// FromErrno applies the default host-errno mapping. Callers for an
// operation with a documented override (rmdir, rename — see
// pkg/fsserver) apply that override first and fall
// back to FromErrno for anything it doesn't special-case.
func FromErrno(err error) Code {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		// No errno anywhere in the chain (errors.As already looked inside
		// wrappers such as fs.PathError), e.g. a Go sentinel: classify fs
		// errors we can, default to ILGPARM.
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return NOENT
		case errors.Is(err, fs.ErrPermission):
			return RDONLY
		case errors.Is(err, fs.ErrExist):
			return EXISTFILE
		default:
			return ILGPARM
		}
	}
	switch errno {
	case syscall.ENOENT:
		return NOENT
	case syscall.ENOTDIR:
		return NODIR
	case syscall.EMFILE:
		return MFILE
	case syscall.EISDIR:
		return ISDIR
	case syscall.EBADF:
		return BADF
	case syscall.ENOMEM:
		return NOMEM
	case syscall.EFAULT:
		return ILGMPTR
	case syscall.ENOEXEC:
		return ILGFMT
	case syscall.ENAMETOOLONG:
		return ILGFNAME
	case syscall.EINVAL:
		return ILGPARM
	case syscall.EXDEV:
		return ILGDRV
	case syscall.EACCES, syscall.EPERM, syscall.EROFS:
		return RDONLY
	case syscall.ENOTEMPTY:
		return NOTEMPTY
	case syscall.ENOSPC:
		return DISKFULL
	case syscall.EOVERFLOW:
		return CANTSEEK
	case syscall.EEXIST:
		return EXISTFILE
	default:
		return ILGPARM
	}
}

package doserr

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromErrnoDefaultMap(t *testing.T) {
	cases := map[syscall.Errno]Code{
		syscall.ENOENT:      NOENT,
		syscall.ENOTDIR:     NODIR,
		syscall.EMFILE:      MFILE,
		syscall.EISDIR:      ISDIR,
		syscall.EBADF:       BADF,
		syscall.ENOMEM:      NOMEM,
		syscall.EFAULT:      ILGMPTR,
		syscall.ENOEXEC:     ILGFMT,
		syscall.ENAMETOOLONG: ILGFNAME,
		syscall.EINVAL:      ILGPARM,
		syscall.EXDEV:       ILGDRV,
		syscall.EACCES:      RDONLY,
		syscall.EPERM:       RDONLY,
		syscall.EROFS:       RDONLY,
		syscall.ENOTEMPTY:   NOTEMPTY,
		syscall.ENOSPC:      DISKFULL,
		syscall.EOVERFLOW:   CANTSEEK,
		syscall.EEXIST:      EXISTFILE,
	}
	for errno, want := range cases {
		t.Run(errno.Error(), func(t *testing.T) {
			require.Equal(t, want, FromErrno(errno))
		})
	}
}

func TestFromErrnoUnknownFallsBackToILGPARM(t *testing.T) {
	require.Equal(t, ILGPARM, FromErrno(fmt.Errorf("some opaque failure")))
}

func TestFromErrnoNilIsZero(t *testing.T) {
	require.Equal(t, Code(0), FromErrno(nil))
}

package rdrv

import (
	"io"

	"github.com/remotedos/rdrive/pkg/doserr"
)

// Seek computes the new file position entirely on the driver side: the
// newer protocol revision has no wire `seek` command — the driver tracks
// position itself and only ever sends the resulting absolute offset on the
// next read/write. curPos and knownSize come from the driver's own
// per-FCB bookkeeping (the position last left after an open/read/write,
// and the size returned by open/create).
//
// Any pending cached write for fcb is flushed first: once the driver moves
// its idea of "current position" the cache's implicit assumption that the
// next write is contiguous with the last one no longer holds.
func (d *Driver) Seek(fcb uint32, whence int, offset int32, curPos, knownSize uint32) (uint32, error) {
	if err := d.flushWriteCache(fcb); err != nil {
		return 0, err
	}
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = int64(curPos)
	case io.SeekEnd:
		base = int64(knownSize)
	default:
		return 0, doserr.ILGARG
	}
	newPos := base + int64(offset)
	if newPos < 0 || newPos > int64(knownSize) {
		return 0, doserr.CANTSEEK
	}
	return uint32(newPos), nil
}

package rdrv

import (
	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/proto"
)

// Write implements the write-coalescing cache: a write that is contiguous
// with the pending cache entry for this FCB and still fits in
// writeCacheSize is appended locally with no wire round-trip. Anything else
// flushes the pending entry first (one `write`), then either starts a new
// entry or, if the data itself is too large to ever cache, goes straight to
// the wire.
func (d *Driver) Write(fcb uint32, pos uint32, data []byte) (int, error) {
	if len(data) == 0 {
		if err := d.flushWriteCache(fcb); err != nil {
			return 0, err
		}
		return d.writeDirect(fcb, pos, nil)
	}
	if len(data) > writeCacheSize {
		if err := d.flushWriteCache(fcb); err != nil {
			return 0, err
		}
		return d.writeDirect(fcb, pos, data)
	}

	entry, ok := d.writeCache[fcb]
	if ok && entry.basePos+uint32(entry.len) == pos && entry.len+len(data) <= writeCacheSize {
		copy(entry.bytes[entry.len:], data)
		entry.len += len(data)
		entry.dirty = true
		return len(data), nil
	}

	if ok {
		if err := d.flushWriteCache(fcb); err != nil {
			return 0, err
		}
	}
	entry = &writeCacheEntry{basePos: pos, len: len(data), dirty: true}
	copy(entry.bytes[:], data)
	d.writeCache[fcb] = entry
	return len(data), nil
}

// flushWriteCache sends the pending cache entry for fcb, if any, to the
// server and clears it. Called before read/seek/close on the same FCB, to
// keep a subsequent read from observing stale server-side data, and before
// a write that can't be coalesced into the existing entry.
func (d *Driver) flushWriteCache(fcb uint32) error {
	entry, ok := d.writeCache[fcb]
	if !ok || !entry.dirty {
		return nil
	}
	delete(d.writeCache, fcb)
	_, err := d.writeDirect(fcb, entry.basePos, append([]byte(nil), entry.bytes[:entry.len]...))
	return err
}

func (d *Driver) writeDirect(fcb uint32, pos uint32, data []byte) (int, error) {
	resp, err := d.roundTrip(proto.CmdWrite, proto.WriteRequest{Fcb: fcb, Pos: pos, Len: uint16(len(data)), Data: data})
	if err != nil {
		return 0, err
	}
	wr := resp.(proto.WriteResponse)
	if wr.Len < 0 {
		return 0, doserr.Code(-wr.Len)
	}
	return int(wr.Len), nil
}

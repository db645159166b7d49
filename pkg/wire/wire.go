// Package wire implements the framed serial transport shared by the driver
// and the server: a sync preamble, a 16-bit big-endian length, and a
// payload. There is no checksum; recovery from a desynchronized peer is
// handled by flooding sync bytes (see Recover).
package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/remotedos/rdrive/pkg/proto"
)

// SyncByte starts and pads every preamble; TermByte ends it.
const (
	SyncByte byte = 'Z'
	TermByte byte = 'X'
)

// RecoveryFloodLen is one more byte than the largest legal frame (preamble +
// length + max payload), guaranteeing that flooding this many sync bytes
// walks the peer out of any in-progress preamble/length/payload read and
// back to preamble-scan state.
const RecoveryFloodLen = 4 + 2 + proto.MaxFrameLen + 1

var (
	ErrBadPreamble = errors.New("wire: malformed frame preamble")
	ErrOversize    = errors.New("wire: frame length exceeds buffer")
	ErrShortFrame  = errors.New("wire: short read assembling frame")
)

// Frame wraps an io.ReadWriter (a serial port, a pipe, anything byte
// oriented) with the sync-preamble, length-prefixed send/receive discipline
// of this protocol. It is not goroutine-safe: the protocol is strictly
// synchronous with one outstanding request at a time, so callers never need
// concurrent access.
type Frame struct {
	rw io.ReadWriter
	r  *bufio.Reader
}

func New(rw io.ReadWriter) *Frame {
	return &Frame{rw: rw, r: bufio.NewReaderSize(rw, proto.MaxFrameLen+8)}
}

// Send emits SyncByte*3 + TermByte, the length, then the payload.
func (f *Frame) Send(payload []byte) error {
	if len(payload) > proto.MaxFrameLen {
		return fmt.Errorf("%w: %d > %d", ErrOversize, len(payload), proto.MaxFrameLen)
	}
	buf := make([]byte, 0, 6+len(payload))
	buf = append(buf, SyncByte, SyncByte, SyncByte, TermByte)
	buf = append(buf, byte(len(payload)>>8), byte(len(payload)))
	buf = append(buf, payload...)
	_, err := f.rw.Write(buf)
	return err
}

// Recv scans for the sync preamble, reads the big-endian length, then reads
// exactly that many payload bytes. A malformed preamble or an oversize
// length is a protocol error: the caller (server) drops the partial frame
// and returns to scanning; the caller (driver) treats it as a reason to
// enter recovery.
func (f *Frame) Recv() ([]byte, error) {
	// Consume bytes until a sync byte appears.
	var b byte
	var err error
	for {
		b, err = f.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == SyncByte {
			break
		}
	}
	// Consume the run of sync bytes.
	for b == SyncByte {
		b, err = f.r.ReadByte()
		if err != nil {
			return nil, err
		}
	}
	if b != TermByte {
		return nil, ErrBadPreamble
	}
	lenBuf := make([]byte, 2)
	if _, err := io.ReadFull(f.r, lenBuf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortFrame, err)
	}
	length := int(lenBuf[0])<<8 | int(lenBuf[1])
	if length > proto.MaxFrameLen {
		return nil, fmt.Errorf("%w: %d", ErrOversize, length)
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(f.r, payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShortFrame, err)
		}
	}
	return payload, nil
}

// Recover floods RecoveryFloodLen sync bytes, long enough that whichever
// partial state the peer was in (scanning preamble, reading length, reading
// payload) it is guaranteed to return to preamble-scan state. It then
// drains any bytes the peer sends back before returning, so a subsequent
// Send starts from a clean slate.
func Recover(rw io.ReadWriter) error {
	flood := make([]byte, RecoveryFloodLen)
	for i := range flood {
		flood[i] = SyncByte
	}
	if _, err := rw.Write(flood); err != nil {
		return err
	}
	return drain(rw)
}

// drain reads and discards whatever the peer has buffered, relying on the
// caller's io.ReadWriter to be configured with a short read timeout (see
// internal/serialio) so this returns promptly once the peer goes quiet.
func drain(rw io.ReadWriter) error {
	buf := make([]byte, 256)
	for {
		n, err := rw.Read(buf)
		if n == 0 || err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return nil
		}
	}
}

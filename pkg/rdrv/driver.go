// Package rdrv implements the driver-side operations: the surface the
// (out-of-scope) Guest OS device-driver glue calls into. It translates each
// call into a wire command, runs the client-side write-coalescing cache,
// and handles the timeout/recovery discipline. Everything here is
// single-threaded and synchronous: there is exactly one outstanding
// request at a time, matching the protocol's lockstep request/response
// model.
package rdrv

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/remotedos/rdrive/internal/ringcache"
	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/proto"
	"github.com/remotedos/rdrive/pkg/wire"
)

// writeCacheSize is the per-entry byte capacity.
const writeCacheSize = 1024

type writeCacheEntry struct {
	basePos uint32
	len     int
	dirty   bool
	bytes   [writeCacheSize]byte
}

// Driver holds one serial line's worth of session state: the write cache
// (keyed by FCB) and the optional batched-directory-listing cache (keyed by
// FILBUF). Both are process-wide mutable state mutated only from this
// single entry point.
type Driver struct {
	rw         io.ReadWriter
	frame      *wire.Frame
	timeout    time.Duration
	recovering bool
	writeCache map[uint32]*writeCacheEntry
	dirCache   map[uint32]*ringcache.Ring
	log        *logrus.Entry
}

// New wraps rw (typically internal/serialio.Port, or an in-memory pipe in
// tests) with the framed protocol. timeout bounds each response wait
// (default 5s).
func New(rw io.ReadWriter, timeout time.Duration, log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.New()
	}
	return &Driver{
		rw:         rw,
		frame:      wire.New(rw),
		timeout:    timeout,
		writeCache: make(map[uint32]*writeCacheEntry),
		dirCache:   make(map[uint32]*ringcache.Ring),
		log:        log.WithField("component", "rdrv"),
	}
}

// Recovering reports whether the driver is currently in recovery mode.
func (d *Driver) Recovering() bool { return d.recovering }

// deadliner is implemented by rw values that support a live per-call read
// deadline (net.Conn, including net.Pipe). internal/serialio.Port has no
// such method: its deadline is fixed at Open time via Config.ReadTimeout
// instead, so roundTrip's SetReadDeadline call is a no-op there.
type deadliner interface {
	SetReadDeadline(time.Time) error
}

// roundTrip sends one request and waits for its response, arming d.timeout
// as the read deadline on any rw that supports one. Any transport failure —
// a bad preamble, a truncated frame, or a timed-out read — is treated
// uniformly: the driver enters recovery, floods sync bytes, and the
// operation fails with the DOS timeout/write-protect code.
func (d *Driver) roundTrip(cmd proto.Command, req any) (any, error) {
	body, err := proto.EncodeRequest(cmd, req)
	if err != nil {
		return nil, err
	}
	if err := d.frame.Send(body); err != nil {
		return nil, d.fail(cmd, err)
	}
	if dl, ok := d.rw.(deadliner); ok && d.timeout > 0 {
		if err := dl.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
			return nil, d.fail(cmd, err)
		}
	}
	respBody, err := d.frame.Recv()
	if err != nil {
		return nil, d.fail(cmd, err)
	}
	d.recovering = false
	return proto.DecodeResponse(cmd, respBody)
}

func (d *Driver) fail(cmd proto.Command, err error) error {
	d.recovering = true
	d.log.WithError(err).WithField("cmd", cmd).Warn("response failed, entering recovery")
	if recErr := wire.Recover(d.rw); recErr != nil {
		d.log.WithError(recErr).Warn("recovery flood failed")
	}
	return fmt.Errorf("%w: %v", doserr.Timeout, err)
}

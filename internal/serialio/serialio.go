// Package serialio opens and configures the physical serial line for both
// binaries, wrapping github.com/daedaluz/goserial behind a plain
// io.ReadWriteCloser so pkg/wire never needs to know it's talking to a UART.
package serialio

import (
	"time"

	serial "github.com/daedaluz/goserial"
)

// Config mirrors the line settings the driver init and server CLI
// negotiate: 8 data bits, 1 stop bit, no parity, no flow control.
type Config struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

// Port is the opened line. Read honors Config.ReadTimeout so pkg/wire.drain
// (used by recovery) doesn't block forever waiting for a peer that has gone
// silent.
type Port struct {
	p   *serial.Port
	cfg Config
}

func Open(cfg Config) (*Port, error) {
	opts := serial.NewOptions().SetReadTimeout(cfg.ReadTimeout)
	p, err := serial.Open(cfg.Device, opts)
	if err != nil {
		return nil, err
	}
	if err := configureLine(p, cfg.Baud); err != nil {
		p.Close()
		return nil, err
	}
	return &Port{p: p, cfg: cfg}, nil
}

func (s *Port) Read(b []byte) (int, error)  { return s.p.ReadTimeout(b, s.cfg.ReadTimeout) }
func (s *Port) Write(b []byte) (int, error) { return s.p.Write(b) }
func (s *Port) Close() error                { return s.p.Close() }

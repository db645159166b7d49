// Command rdrive-server is the Server OS side of the bridge: it owns the
// serial device and a root directory, and answers every request the driver
// sends with the filesystem operations in pkg/fsserver.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/remotedos/rdrive/internal/serialio"
	"github.com/remotedos/rdrive/pkg/config"
	"github.com/remotedos/rdrive/pkg/fsserver"
	"github.com/remotedos/rdrive/pkg/proto"
	"github.com/remotedos/rdrive/pkg/wire"
)

// debugFlag counts repeated -D occurrences (server [-D]... [-s BAUD] <device> [<root-dir>]).
type debugFlag int

func (d *debugFlag) String() string { return fmt.Sprintf("%d", int(*d)) }
func (d *debugFlag) Set(string) error {
	*d++
	return nil
}
func (d *debugFlag) IsBoolFlag() bool { return true }

func main() {
	var debug debugFlag
	baud := flag.Int("s", config.DefaultBaud, "line speed in baud")
	flag.Var(&debug, "D", "increase debug verbosity (repeatable)")
	flag.Parse()

	switch {
	case debug >= 2:
		log.SetLevel(log.TraceLevel)
	case debug == 1:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: rdrive-server [-D]... [-s BAUD] <device> [<root-dir>]")
		os.Exit(1)
	}
	device := flag.Arg(0)
	root := "."
	if flag.NArg() >= 2 {
		root = flag.Arg(1)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		log.WithField("root", root).Error("root directory does not exist or is not a directory")
		os.Exit(1)
	}

	release, err := acquireSingleClientLock(device)
	if err != nil {
		log.WithError(err).WithField("device", device).Error("device already in use")
		os.Exit(1)
	}
	defer release()

	port, err := serialio.Open(serialio.Config{Device: device, Baud: *baud})
	if err != nil {
		log.WithError(err).WithField("device", device).Error("cannot open serial device")
		os.Exit(1)
	}
	defer port.Close()

	log.WithFields(log.Fields{"device": device, "baud": *baud, "root": root}).Info("rdrive-server starting")

	srv := fsserver.New(root, log.StandardLogger())
	frame := wire.New(port)
	runLoop(frame, srv)
}

// runLoop is the server's half of the transport state machine:
// Idle → Receiving → Executing → Sending → Idle, forever. A malformed frame
// drops back to Idle with no response.
func runLoop(frame *wire.Frame, srv *fsserver.Server) {
	for {
		payload, err := frame.Recv()
		if err != nil {
			log.WithError(err).Debug("frame recv failed, resuming scan")
			continue
		}
		if len(payload) == 0 {
			continue
		}
		cmd := proto.Command(payload[0])
		out, err := srv.Dispatch(cmd, payload[1:])
		if err != nil {
			log.WithError(err).WithField("cmd", cmd).Warn("dropping malformed request")
			continue
		}
		if err := frame.Send(out); err != nil {
			log.WithError(err).WithField("cmd", cmd).Warn("send failed")
		}
	}
}

// Command rdrive-driver is a host-side harness for exercising pkg/rdrv over
// the wire: it stands in for the Guest OS device-driver glue this repo
// deliberately leaves out of scope, driving the same wire protocol a real
// Guest OS driver would, via a small set of interactive subcommands instead
// of DOS INT 2F request headers.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/remotedos/rdrive/internal/serialio"
	"github.com/remotedos/rdrive/pkg/config"
	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/dosname"
	"github.com/remotedos/rdrive/pkg/proto"
	"github.com/remotedos/rdrive/pkg/rdrv"
)

func main() {
	baud := flag.Int("s", config.DefaultBaud, "line speed in baud (/s)")
	registerMode := flag.Int("r", config.DefaultRegisterMode, "0=always register, 1=require server probe (/r)")
	timeoutMs := flag.Int("t", int(config.DefaultTimeout/time.Millisecond), "response timeout in ms (/t)")
	unit := flag.Int("u", config.DefaultUnit, "drive unit 1..7 (/u)")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: rdrive-driver [-s BAUD] [-r MODE] [-t MS] [-u UNIT] <device> <ls|cat|put> [args]")
		os.Exit(1)
	}
	device := flag.Arg(0)
	subcmd := flag.Arg(1)
	args := flag.Args()[2:]

	log.SetLevel(log.InfoLevel)
	log.WithFields(log.Fields{"device": device, "unit": *unit}).Info("rdrive-driver starting")

	port, err := serialio.Open(serialio.Config{Device: device, Baud: *baud, ReadTimeout: time.Duration(*timeoutMs) * time.Millisecond})
	if err != nil {
		log.WithError(err).Error("cannot open serial device")
		os.Exit(1)
	}
	defer port.Close()

	d := rdrv.New(port, time.Duration(*timeoutMs)*time.Millisecond, log.StandardLogger())

	if *registerMode == 1 {
		if err := d.Check(); err != nil {
			log.WithError(err).Error("server did not respond to check, drive not registered")
			os.Exit(1)
		}
	}

	var runErr error
	switch subcmd {
	case "ls":
		runErr = cmdLs(d, argOr(args, 0, "*.*"))
	case "cat":
		runErr = cmdCat(d, argOr(args, 0, ""))
	case "put":
		runErr = cmdPut(d, argOr(args, 0, ""), argOr(args, 1, ""))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", subcmd)
		os.Exit(1)
	}
	if runErr != nil {
		log.WithError(runErr).Error("command failed")
		os.Exit(1)
	}
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

// buildNamebuf is the minimal stand-in for the Guest OS request-header
// glue: it splits a host-style "dir/dir/NAME.EXT" argument into the packed
// path + 8.3 name fields every request carries.
func buildNamebuf(guestPath string) proto.DosNamebuf {
	var nb proto.DosNamebuf
	parts := strings.Split(strings.Trim(guestPath, "/"), "/")
	dirParts, leaf := parts[:len(parts)-1], parts[len(parts)-1]

	off := 0
	for _, p := range dirParts {
		if p == "" {
			continue
		}
		off += copy(nb.Path[off:], []byte(strings.ToUpper(p)))
		if off < len(nb.Path) {
			nb.Path[off] = 0x09
			off++
		}
	}

	main, ext, _ := strings.Cut(strings.ToUpper(leaf), ".")
	if len(main) > 8 {
		main = main[:8]
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	copy(nb.Name1[:], main)
	for i := len(main); i < 8; i++ {
		nb.Name1[i] = ' '
	}
	copy(nb.Ext[:], ext)
	for i := len(ext); i < 3; i++ {
		nb.Ext[i] = ' '
	}
	return nb
}

func cmdLs(d *rdrv.Driver, pattern string) error {
	nb := buildNamebuf(pattern)
	const filep = 1
	fi, err := d.Files(proto.AttrArchive|proto.AttrDir, filep, nb)
	for err == nil {
		name, _ := new(dosname.Codec).DecodeFromGuest(trimName(fi.Name[:]))
		fmt.Printf("%-13s %8d\n", name, fi.Size)
		fi, err = d.NFiles(filep)
	}
	if err == doserr.NOMORE {
		return nil
	}
	return err
}

func trimName(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

func cmdCat(d *rdrv.Driver, path string) error {
	nb := buildNamebuf(path)
	const fcb = 1
	size, err := d.Open(fcb, proto.ModeRead, nb)
	if err != nil {
		return err
	}
	defer d.Close(fcb)

	var pos uint32
	for pos < size {
		data, err := d.Read(fcb, pos, proto.MaxBulkLen)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			break
		}
		os.Stdout.Write(data)
		pos += uint32(len(data))
	}
	return nil
}

func cmdPut(d *rdrv.Driver, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	nb := buildNamebuf(remotePath)
	const fcb = 2
	if err := d.Create(fcb, proto.AttrArchive, proto.ModeWrite, nb); err != nil {
		return err
	}
	defer d.Close(fcb)

	buf := make([]byte, proto.MaxBulkLen)
	var pos uint32
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := d.Write(fcb, pos, buf[:n]); werr != nil {
				return werr
			}
			pos += uint32(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	return nil
}

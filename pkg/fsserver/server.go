// Package fsserver executes the wire protocol's commands against a
// designated root directory, holding the per-session open-file and
// directory-match tables. One Server instance handles one serial line,
// serialized by the caller: the main request loop in cmd/rdrive-server
// calls Dispatch once per received frame and nothing else touches these
// tables.
package fsserver

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/remotedos/rdrive/pkg/dosname"
	"github.com/remotedos/rdrive/pkg/proto"
)

// Server holds the root directory, the name codec, and both session
// tables. It is not safe for concurrent use, matching the protocol's
// strictly synchronous, single-outstanding-request discipline.
type Server struct {
	codec  *dosname.Codec
	tables *tables
	log    *logrus.Entry
}

func New(root string, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{
		codec:  dosname.New(root),
		tables: newTables(),
		log:    log.WithField("component", "fsserver"),
	}
}

func (s *Server) Root() string { return s.codec.Root }

// Dispatch decodes one request payload, executes it, and encodes the
// response payload. It never returns an error for a filesystem failure —
// those come back as a negative res/len inside a well-formed response; the
// server never panics on a filesystem error. The returned error is only
// for payloads too malformed to decode at all, which the caller (the frame
// loop) treats as a reason to drop the frame and resume scanning rather
// than sending any response.
func (s *Server) Dispatch(cmd proto.Command, body []byte) ([]byte, error) {
	req, err := proto.DecodeRequest(cmd, body)
	if err != nil {
		s.log.WithError(err).WithField("cmd", cmd).Warn("dropping malformed request")
		return nil, err
	}

	var resp any
	switch r := req.(type) {
	case proto.CheckRequest:
		resp = s.check(r)
	case proto.ChdirRequest:
		resp = s.chdir(r)
	case proto.MkdirRequest:
		resp = s.mkdir(r)
	case proto.RmdirRequest:
		resp = s.rmdir(r)
	case proto.RenameRequest:
		resp = s.rename(r)
	case proto.DeleteRequest:
		resp = s.delete(r)
	case proto.ChmodRequest:
		resp = s.chmod(r)
	case proto.FilesRequest:
		resp = s.files(r)
	case proto.NFilesRequest:
		resp = s.nfiles(r)
	case proto.CreateRequest:
		resp = s.create(r)
	case proto.OpenRequest:
		resp = s.open(r)
	case proto.CloseRequest:
		resp = s.close(r)
	case proto.ReadRequest:
		resp = s.read(r)
	case proto.WriteRequest:
		resp = s.write(r)
	case proto.FiledateRequest:
		resp = s.filedate(r)
	case proto.DskfreRequest:
		resp = s.dskfre(r)
	default:
		return nil, fmt.Errorf("fsserver: unhandled request type %T", req)
	}

	out, err := proto.EncodeResponse(cmd, resp)
	if err != nil {
		return nil, err
	}
	s.log.WithField("cmd", cmd).Debug("handled request")
	return out, nil
}

package rdrv

import (
	"github.com/remotedos/rdrive/pkg/doserr"
	"github.com/remotedos/rdrive/pkg/proto"
)

// Check probes the server: used at driver startup in
// registration modes that require confirming a server is actually present
// on the line before trusting any further I/O.
func (d *Driver) Check() error {
	resp, err := d.roundTrip(proto.CmdCheck, proto.CheckRequest{})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.CheckResponse).Res)
}

func (d *Driver) Chdir(path proto.DosNamebuf) error {
	resp, err := d.roundTrip(proto.CmdChdir, proto.ChdirRequest{Path: path})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.ChdirResponse).Res)
}

func (d *Driver) Mkdir(path proto.DosNamebuf) error {
	resp, err := d.roundTrip(proto.CmdMkdir, proto.MkdirRequest{Path: path})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.MkdirResponse).Res)
}

func (d *Driver) Rmdir(path proto.DosNamebuf) error {
	resp, err := d.roundTrip(proto.CmdRmdir, proto.RmdirRequest{Path: path})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.RmdirResponse).Res)
}

func (d *Driver) Rename(oldPath, newPath proto.DosNamebuf) error {
	resp, err := d.roundTrip(proto.CmdRename, proto.RenameRequest{PathOld: oldPath, PathNew: newPath})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.RenameResponse).Res)
}

func (d *Driver) Delete(path proto.DosNamebuf) error {
	resp, err := d.roundTrip(proto.CmdDelete, proto.DeleteRequest{Path: path})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.DeleteResponse).Res)
}

func (d *Driver) Chmod(attr byte, path proto.DosNamebuf) error {
	resp, err := d.roundTrip(proto.CmdChmod, proto.ChmodRequest{Attr: attr, Path: path})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.ChmodResponse).Res)
}

func (d *Driver) Dskfre() (proto.DskfreResponse, error) {
	resp, err := d.roundTrip(proto.CmdDskfre, proto.DskfreRequest{})
	if err != nil {
		return proto.DskfreResponse{}, err
	}
	return resp.(proto.DskfreResponse), nil
}

// Create opens fcb for a new file.
func (d *Driver) Create(fcb uint32, attr, mode byte, path proto.DosNamebuf) error {
	resp, err := d.roundTrip(proto.CmdCreate, proto.CreateRequest{Attr: attr, Mode: mode, Fcb: fcb, Path: path})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.CreateResponse).Res)
}

// Open returns the opened file's size.
func (d *Driver) Open(fcb uint32, mode byte, path proto.DosNamebuf) (uint32, error) {
	resp, err := d.roundTrip(proto.CmdOpen, proto.OpenRequest{Mode: mode, Fcb: fcb, Path: path})
	if err != nil {
		return 0, err
	}
	or := resp.(proto.OpenResponse)
	if or.Res < 0 {
		return 0, doserr.Code(-or.Res)
	}
	return or.Size, nil
}

// Close flushes any pending cached write for fcb before closing it on the
// server.
func (d *Driver) Close(fcb uint32) error {
	if err := d.flushWriteCache(fcb); err != nil {
		return err
	}
	delete(d.writeCache, fcb)
	resp, err := d.roundTrip(proto.CmdClose, proto.CloseRequest{Fcb: fcb})
	if err != nil {
		return err
	}
	return resFromCode(resp.(proto.CloseResponse).Res)
}

// Read flushes any pending cached write for fcb first (read-cache
// consistency property: a read must never race ahead of a write the server
// hasn't applied yet), then reads directly from the server.
func (d *Driver) Read(fcb uint32, pos uint32, length uint16) ([]byte, error) {
	if err := d.flushWriteCache(fcb); err != nil {
		return nil, err
	}
	resp, err := d.roundTrip(proto.CmdRead, proto.ReadRequest{Fcb: fcb, Pos: pos, Len: length})
	if err != nil {
		return nil, err
	}
	rr := resp.(proto.ReadResponse)
	if rr.Len < 0 {
		return nil, doserr.Code(-rr.Len)
	}
	return rr.Data, nil
}

func (d *Driver) Filedate(fcb uint32, t, date uint16) (uint16, uint16, error) {
	resp, err := d.roundTrip(proto.CmdFiledate, proto.FiledateRequest{Fcb: fcb, Time: t, Date: date})
	if err != nil {
		return 0, 0, err
	}
	fr := resp.(proto.FiledateResponse)
	return fr.Time, fr.Date, nil
}

func resFromCode(res int8) error {
	if res < 0 {
		return doserr.Code(-res)
	}
	return nil
}

package proto

import "fmt"

// Request/response payloads for every command in the wire table.
// The implementation freezes the newer, driver-side-seek revision: there is
// no wire `seek` command, and `num` is present on files/nfiles to allow
// batching. All multi-byte integers are big-endian on the wire, the same
// discipline already used by DosNamebuf/DosFilesInfo fields — picking one
// endianness everywhere avoids the drift the legacy sources had between
// htobe* framing and platform-packed newer revisions.

type CheckRequest struct{}
type CheckResponse struct{ Res int8 }

type ChdirRequest struct{ Path DosNamebuf }
type ChdirResponse struct{ Res int8 }

type MkdirRequest struct{ Path DosNamebuf }
type MkdirResponse struct{ Res int8 }

type RmdirRequest struct{ Path DosNamebuf }
type RmdirResponse struct{ Res int8 }

type RenameRequest struct{ PathOld, PathNew DosNamebuf }
type RenameResponse struct{ Res int8 }

type DeleteRequest struct{ Path DosNamebuf }
type DeleteResponse struct{ Res int8 }

type ChmodRequest struct {
	Attr byte
	Path DosNamebuf
}
type ChmodResponse struct{ Res int8 }

type FilesRequest struct {
	Attr  byte
	Num   byte // requested batch size, 1 if the driver doesn't batch
	Filep uint32
	Path  DosNamebuf
}
type FilesResponse struct {
	Res   int8
	Num   byte
	Files []DosFilesInfo
}

type NFilesRequest struct {
	Num   byte
	Filep uint32
}
type NFilesResponse = FilesResponse

type CreateRequest struct {
	Attr byte
	Mode byte
	Fcb  uint32
	Path DosNamebuf
}
type CreateResponse struct{ Res int8 }

type OpenRequest struct {
	Mode byte
	Fcb  uint32
	Path DosNamebuf
}
type OpenResponse struct {
	Res  int8
	Size uint32
}

type CloseRequest struct{ Fcb uint32 }
type CloseResponse struct{ Res int8 }

type ReadRequest struct {
	Fcb uint32
	Pos uint32
	Len uint16
}
type ReadResponse struct {
	Len  int16
	Data []byte
}

type WriteRequest struct {
	Fcb  uint32
	Pos  uint32
	Len  uint16
	Data []byte
}
type WriteResponse struct{ Len int16 }

type FiledateRequest struct {
	Fcb  uint32
	Time uint16
	Date uint16
}
type FiledateResponse struct {
	Time uint16
	Date uint16
}

type DskfreRequest struct{}
type DskfreResponse struct {
	Res      int32
	Freeclu  uint16
	Totalclu uint16
	Clusect  uint16
	Sectsize uint16
}

// EncodeRequest serializes a request payload, prefixed with its command
// byte, ready to hand to pkg/wire.
func EncodeRequest(cmd Command, req any) ([]byte, error) {
	buf := []byte{byte(cmd)}
	switch r := req.(type) {
	case CheckRequest, DskfreRequest:
		// no fields
	case ChdirRequest:
		nb := r.Path.Marshal()
		buf = append(buf, nb[:]...)
	case MkdirRequest:
		nb := r.Path.Marshal()
		buf = append(buf, nb[:]...)
	case RmdirRequest:
		nb := r.Path.Marshal()
		buf = append(buf, nb[:]...)
	case RenameRequest:
		o := r.PathOld.Marshal()
		n := r.PathNew.Marshal()
		buf = append(buf, o[:]...)
		buf = append(buf, n[:]...)
	case DeleteRequest:
		nb := r.Path.Marshal()
		buf = append(buf, nb[:]...)
	case ChmodRequest:
		nb := r.Path.Marshal()
		buf = append(buf, r.Attr)
		buf = append(buf, nb[:]...)
	case FilesRequest:
		var fcb [4]byte
		putBE32(fcb[:], r.Filep)
		nb := r.Path.Marshal()
		buf = append(buf, r.Attr, r.Num)
		buf = append(buf, fcb[:]...)
		buf = append(buf, nb[:]...)
	case NFilesRequest:
		var fcb [4]byte
		putBE32(fcb[:], r.Filep)
		buf = append(buf, r.Num)
		buf = append(buf, fcb[:]...)
	case CreateRequest:
		var fcb [4]byte
		putBE32(fcb[:], r.Fcb)
		nb := r.Path.Marshal()
		buf = append(buf, r.Attr, r.Mode)
		buf = append(buf, fcb[:]...)
		buf = append(buf, nb[:]...)
	case OpenRequest:
		var fcb [4]byte
		putBE32(fcb[:], r.Fcb)
		nb := r.Path.Marshal()
		buf = append(buf, r.Mode)
		buf = append(buf, fcb[:]...)
		buf = append(buf, nb[:]...)
	case CloseRequest:
		var fcb [4]byte
		putBE32(fcb[:], r.Fcb)
		buf = append(buf, fcb[:]...)
	case ReadRequest:
		var fcb [4]byte
		var pos [4]byte
		var ln [2]byte
		putBE32(fcb[:], r.Fcb)
		putBE32(pos[:], r.Pos)
		putBE16(ln[:], r.Len)
		buf = append(buf, fcb[:]...)
		buf = append(buf, pos[:]...)
		buf = append(buf, ln[:]...)
	case WriteRequest:
		var fcb [4]byte
		var pos [4]byte
		var ln [2]byte
		putBE32(fcb[:], r.Fcb)
		putBE32(pos[:], r.Pos)
		putBE16(ln[:], r.Len)
		buf = append(buf, fcb[:]...)
		buf = append(buf, pos[:]...)
		buf = append(buf, ln[:]...)
		buf = append(buf, r.Data...)
	case FiledateRequest:
		var fcb [4]byte
		var tm [2]byte
		var dt [2]byte
		putBE32(fcb[:], r.Fcb)
		putBE16(tm[:], r.Time)
		putBE16(dt[:], r.Date)
		buf = append(buf, fcb[:]...)
		buf = append(buf, tm[:]...)
		buf = append(buf, dt[:]...)
	default:
		return nil, fmt.Errorf("proto: unknown request type %T", req)
	}
	return buf, nil
}

// EncodeResponse serializes a response payload (no command byte: responses
// are correlated implicitly with the outstanding request).
func EncodeResponse(cmd Command, resp any) ([]byte, error) {
	switch r := resp.(type) {
	case CheckResponse:
		return []byte{byte(r.Res)}, nil
	case ChdirResponse:
		return []byte{byte(r.Res)}, nil
	case MkdirResponse:
		return []byte{byte(r.Res)}, nil
	case RmdirResponse:
		return []byte{byte(r.Res)}, nil
	case RenameResponse:
		return []byte{byte(r.Res)}, nil
	case DeleteResponse:
		return []byte{byte(r.Res)}, nil
	case ChmodResponse:
		return []byte{byte(r.Res)}, nil
	case FilesResponse:
		buf := []byte{byte(r.Res), r.Num}
		for i := range r.Files {
			fi := r.Files[i].Marshal()
			buf = append(buf, fi[:]...)
		}
		return buf, nil
	case CreateResponse:
		return []byte{byte(r.Res)}, nil
	case OpenResponse:
		var sz [4]byte
		putBE32(sz[:], r.Size)
		return append([]byte{byte(r.Res)}, sz[:]...), nil
	case CloseResponse:
		return []byte{byte(r.Res)}, nil
	case ReadResponse:
		var ln [2]byte
		putBE16(ln[:], uint16(r.Len))
		buf := append([]byte{}, ln[:]...)
		if r.Len > 0 {
			buf = append(buf, r.Data...)
		}
		return buf, nil
	case WriteResponse:
		var ln [2]byte
		putBE16(ln[:], uint16(r.Len))
		return ln[:], nil
	case FiledateResponse:
		var tm, dt [2]byte
		putBE16(tm[:], r.Time)
		putBE16(dt[:], r.Date)
		return append(tm[:], dt[:]...), nil
	case DskfreResponse:
		var res [4]byte
		var fc, tc, cs, ss [2]byte
		putBE32(res[:], uint32(r.Res))
		putBE16(fc[:], r.Freeclu)
		putBE16(tc[:], r.Totalclu)
		putBE16(cs[:], r.Clusect)
		putBE16(ss[:], r.Sectsize)
		buf := append([]byte{}, res[:]...)
		buf = append(buf, fc[:]...)
		buf = append(buf, tc[:]...)
		buf = append(buf, cs[:]...)
		buf = append(buf, ss[:]...)
		return buf, nil
	default:
		return nil, fmt.Errorf("proto: unknown response type %T", resp)
	}
}

// DecodeRequest parses a request payload (cmd byte already stripped by caller).
func DecodeRequest(cmd Command, body []byte) (any, error) {
	switch cmd {
	case CmdCheck:
		return CheckRequest{}, nil
	case CmdDskfre:
		return DskfreRequest{}, nil
	case CmdChdir, CmdMkdir, CmdRmdir, CmdDelete:
		if len(body) < NamebufSize {
			return nil, fmt.Errorf("proto: short %s request", cmd)
		}
		nb, err := UnmarshalNamebuf(body)
		if err != nil {
			return nil, err
		}
		switch cmd {
		case CmdChdir:
			return ChdirRequest{Path: *nb}, nil
		case CmdMkdir:
			return MkdirRequest{Path: *nb}, nil
		case CmdRmdir:
			return RmdirRequest{Path: *nb}, nil
		default:
			return DeleteRequest{Path: *nb}, nil
		}
	case CmdRename:
		if len(body) < 2*NamebufSize {
			return nil, fmt.Errorf("proto: short rename request")
		}
		o, err := UnmarshalNamebuf(body[:NamebufSize])
		if err != nil {
			return nil, err
		}
		n, err := UnmarshalNamebuf(body[NamebufSize:])
		if err != nil {
			return nil, err
		}
		return RenameRequest{PathOld: *o, PathNew: *n}, nil
	case CmdChmod:
		if len(body) < 1+NamebufSize {
			return nil, fmt.Errorf("proto: short chmod request")
		}
		nb, err := UnmarshalNamebuf(body[1:])
		if err != nil {
			return nil, err
		}
		return ChmodRequest{Attr: body[0], Path: *nb}, nil
	case CmdFiles:
		const hdr = 2 + 4
		if len(body) < hdr+NamebufSize {
			return nil, fmt.Errorf("proto: short files request")
		}
		nb, err := UnmarshalNamebuf(body[hdr:])
		if err != nil {
			return nil, err
		}
		return FilesRequest{
			Attr:  body[0],
			Num:   body[1],
			Filep: getBE32(body[2:6]),
			Path:  *nb,
		}, nil
	case CmdNFiles:
		if len(body) < 5 {
			return nil, fmt.Errorf("proto: short nfiles request")
		}
		return NFilesRequest{Num: body[0], Filep: getBE32(body[1:5])}, nil
	case CmdCreate:
		const hdr = 2 + 4
		if len(body) < hdr+NamebufSize {
			return nil, fmt.Errorf("proto: short create request")
		}
		nb, err := UnmarshalNamebuf(body[hdr:])
		if err != nil {
			return nil, err
		}
		return CreateRequest{Attr: body[0], Mode: body[1], Fcb: getBE32(body[2:6]), Path: *nb}, nil
	case CmdOpen:
		const hdr = 1 + 4
		if len(body) < hdr+NamebufSize {
			return nil, fmt.Errorf("proto: short open request")
		}
		nb, err := UnmarshalNamebuf(body[hdr:])
		if err != nil {
			return nil, err
		}
		return OpenRequest{Mode: body[0], Fcb: getBE32(body[1:5]), Path: *nb}, nil
	case CmdClose:
		if len(body) < 4 {
			return nil, fmt.Errorf("proto: short close request")
		}
		return CloseRequest{Fcb: getBE32(body[:4])}, nil
	case CmdRead:
		if len(body) < 10 {
			return nil, fmt.Errorf("proto: short read request")
		}
		return ReadRequest{Fcb: getBE32(body[0:4]), Pos: getBE32(body[4:8]), Len: getBE16(body[8:10])}, nil
	case CmdWrite:
		if len(body) < 10 {
			return nil, fmt.Errorf("proto: short write request")
		}
		ln := getBE16(body[8:10])
		if len(body) < 10+int(ln) {
			return nil, fmt.Errorf("proto: write request truncated")
		}
		return WriteRequest{
			Fcb:  getBE32(body[0:4]),
			Pos:  getBE32(body[4:8]),
			Len:  ln,
			Data: append([]byte(nil), body[10:10+ln]...),
		}, nil
	case CmdFiledate:
		if len(body) < 8 {
			return nil, fmt.Errorf("proto: short filedate request")
		}
		return FiledateRequest{Fcb: getBE32(body[0:4]), Time: getBE16(body[4:6]), Date: getBE16(body[6:8])}, nil
	default:
		return nil, fmt.Errorf("proto: unknown command 0x%02x", byte(cmd))
	}
}

// DecodeResponse parses a response payload for the given command.
func DecodeResponse(cmd Command, body []byte) (any, error) {
	switch cmd {
	case CmdCheck:
		return CheckResponse{Res: resByte(body)}, nil
	case CmdChdir:
		return ChdirResponse{Res: resByte(body)}, nil
	case CmdMkdir:
		return MkdirResponse{Res: resByte(body)}, nil
	case CmdRmdir:
		return RmdirResponse{Res: resByte(body)}, nil
	case CmdRename:
		return RenameResponse{Res: resByte(body)}, nil
	case CmdDelete:
		return DeleteResponse{Res: resByte(body)}, nil
	case CmdChmod:
		return ChmodResponse{Res: resByte(body)}, nil
	case CmdFiles, CmdNFiles:
		if len(body) < 2 {
			return nil, fmt.Errorf("proto: short files response")
		}
		res := int8(body[0])
		num := body[1]
		rest := body[2:]
		files := make([]DosFilesInfo, 0, num)
		for off := 0; off+FilesInfoSize <= len(rest); off += FilesInfoSize {
			fi, err := UnmarshalFilesInfo(rest[off : off+FilesInfoSize])
			if err != nil {
				return nil, err
			}
			files = append(files, *fi)
		}
		return FilesResponse{Res: res, Num: num, Files: files}, nil
	case CmdCreate:
		return CreateResponse{Res: resByte(body)}, nil
	case CmdOpen:
		if len(body) < 5 {
			return nil, fmt.Errorf("proto: short open response")
		}
		return OpenResponse{Res: int8(body[0]), Size: getBE32(body[1:5])}, nil
	case CmdClose:
		return CloseResponse{Res: resByte(body)}, nil
	case CmdRead:
		if len(body) < 2 {
			return nil, fmt.Errorf("proto: short read response")
		}
		ln := int16(getBE16(body[0:2]))
		var data []byte
		if ln > 0 {
			if len(body) < 2+int(ln) {
				return nil, fmt.Errorf("proto: read response truncated")
			}
			data = append([]byte(nil), body[2:2+int(ln)]...)
		}
		return ReadResponse{Len: ln, Data: data}, nil
	case CmdWrite:
		if len(body) < 2 {
			return nil, fmt.Errorf("proto: short write response")
		}
		return WriteResponse{Len: int16(getBE16(body[0:2]))}, nil
	case CmdFiledate:
		if len(body) < 4 {
			return nil, fmt.Errorf("proto: short filedate response")
		}
		return FiledateResponse{Time: getBE16(body[0:2]), Date: getBE16(body[2:4])}, nil
	case CmdDskfre:
		if len(body) < 12 {
			return nil, fmt.Errorf("proto: short dskfre response")
		}
		return DskfreResponse{
			Res:      int32(getBE32(body[0:4])),
			Freeclu:  getBE16(body[4:6]),
			Totalclu: getBE16(body[6:8]),
			Clusect:  getBE16(body[8:10]),
			Sectsize: getBE16(body[10:12]),
		}, nil
	default:
		return nil, fmt.Errorf("proto: unknown command 0x%02x", byte(cmd))
	}
}

func resByte(body []byte) int8 {
	if len(body) == 0 {
		return 0
	}
	return int8(body[0])
}

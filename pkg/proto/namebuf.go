package proto

import "fmt"

// Wire sizes for the packed structures.
const (
	NamebufSize   = 88
	FilesInfoSize = 32
)

// DosNamebuf is the 88-byte packed path block the driver sends with every
// path-carrying request: a drive letter, a \t-separated path, and a split
// 8.3 name. Field widths and offsets are fixed by the wire format, not by
// Go struct layout, so encoding/decoding goes through Marshal/Unmarshal
// rather than unsafe casts.
type DosNamebuf struct {
	Drive   byte     // drive byte, 0 = default
	Path    [65]byte // \t (0x09) separated components, 0x00 terminated
	Name1   [8]byte  // 8.3 main name
	Ext     [3]byte  // 8.3 extension
	Name2   [10]byte // extended main name
}

func (n *DosNamebuf) Marshal() [NamebufSize]byte {
	var buf [NamebufSize]byte
	buf[0] = n.Drive
	copy(buf[1:66], n.Path[:])
	copy(buf[66:74], n.Name1[:])
	copy(buf[74:77], n.Ext[:])
	copy(buf[77:87], n.Name2[:])
	// buf[87] reserved/padding, left zero
	return buf
}

func UnmarshalNamebuf(buf []byte) (*DosNamebuf, error) {
	if len(buf) < NamebufSize {
		return nil, fmt.Errorf("namebuf: short buffer (%d < %d)", len(buf), NamebufSize)
	}
	n := &DosNamebuf{Drive: buf[0]}
	copy(n.Path[:], buf[1:66])
	copy(n.Name1[:], buf[66:74])
	copy(n.Ext[:], buf[74:77])
	copy(n.Name2[:], buf[77:87])
	return n, nil
}

// DosFilesInfo is the 32-byte Guest-facing directory entry record returned
// by files/nfiles.
type DosFilesInfo struct {
	Attr    byte
	Time    uint16 // hh<<11 | mm<<5 | ss/2
	Date    uint16 // (year-1980)<<9 | mon<<5 | day
	Size    uint32
	Name    [23]byte // Guest-encoded name, zero padded
}

func (f *DosFilesInfo) Marshal() [FilesInfoSize]byte {
	var buf [FilesInfoSize]byte
	buf[0] = f.Attr
	putBE16(buf[1:3], f.Time)
	putBE16(buf[3:5], f.Date)
	putBE32(buf[5:9], f.Size)
	copy(buf[9:32], f.Name[:])
	return buf
}

func UnmarshalFilesInfo(buf []byte) (*DosFilesInfo, error) {
	if len(buf) < FilesInfoSize {
		return nil, fmt.Errorf("filesinfo: short buffer (%d < %d)", len(buf), FilesInfoSize)
	}
	f := &DosFilesInfo{
		Attr: buf[0],
		Time: getBE16(buf[1:3]),
		Date: getBE16(buf[3:5]),
		Size: getBE32(buf[5:9]),
	}
	copy(f.Name[:], buf[9:32])
	return f, nil
}

func putBE16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putBE32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
func getBE16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func getBE32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// DosDate/DosTime packing, shared by filedate and the filesinfo encoder.

func PackDosTime(hh, mm, ss int) uint16 {
	return uint16(hh)<<11 | uint16(mm)<<5 | uint16(ss/2)
}

func UnpackDosTime(t uint16) (hh, mm, ss int) {
	return int(t >> 11), int((t >> 5) & 0x3F), int(t&0x1F) * 2
}

func PackDosDate(year, mon, day int) uint16 {
	return uint16(year-1980)<<9 | uint16(mon)<<5 | uint16(day)
}

func UnpackDosDate(d uint16) (year, mon, day int) {
	return int(d>>9) + 1980, int((d >> 5) & 0xF), int(d & 0x1F)
}

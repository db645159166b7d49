package fsserver

import (
	"golang.org/x/sys/unix"

	"github.com/remotedos/rdrive/pkg/proto"
)

// saturate32 clamps v to the largest value a signed 32-bit field can carry.
// dskfre clamps the free and total byte counts independently, each to just
// under 2 GiB, before dividing them into clusters.
const int31Max = 1<<31 - 1

func saturate32(v uint64) uint32 {
	if v > int31Max {
		return int31Max
	}
	return uint32(v)
}

// dskfre queries the host filesystem and packs the result:
// freeclu = free/32768, totalclu = total/32768, clusect = 128, sectsize =
// 1024, res = saturated free byte count.
func (s *Server) dskfre(proto.DskfreRequest) proto.DskfreResponse {
	var st unix.Statfs_t
	if err := unix.Statfs(s.codec.Root, &st); err != nil {
		return proto.DskfreResponse{Res: -1}
	}
	free := saturate32(st.Bavail * uint64(st.Bsize))
	total := saturate32(st.Blocks * uint64(st.Bsize))
	return proto.DskfreResponse{
		Res:      int32(free),
		Freeclu:  uint16(free / 32768),
		Totalclu: uint16(total / 32768),
		Clusect:  128,
		Sectsize: 1024,
	}
}

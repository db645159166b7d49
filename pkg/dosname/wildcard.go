package dosname

import "github.com/remotedos/rdrive/pkg/proto"

// KeyLen is the 21-byte search-key shape: 18-byte main name + 3-byte
// extension ("name1[8] + name2[10] + ext[3]" request fields are
// concatenated into an 18-byte main-name region before the 3-byte
// extension).
const KeyLen = 21

// BuildSearchKey assembles the 21-byte match key from a files request,
// applying the name1[7]=='?' && name2[0]==0 compatibility fixup, zeroing
// trailing 0x00/0x20 in the main-name region and trailing 0x20 in the
// extension, then lower-casing ASCII letters while skipping CP932
// continuation bytes.
func BuildSearchKey(name1 [8]byte, name2 [10]byte, ext [3]byte) [KeyLen]byte {
	if name1[7] == '?' && name2[0] == 0x00 {
		for i := range name2 {
			name2[i] = '?'
		}
	}
	var key [KeyLen]byte
	copy(key[0:8], name1[:])
	copy(key[8:18], name2[:])
	copy(key[18:21], ext[:])

	zeroTrailing(key[0:18], 0x00, 0x20)
	zeroTrailing(key[18:21], 0x20)
	lowerAsciiSkippingLeadBytes(key[:])
	return key
}

func zeroTrailing(b []byte, cut ...byte) {
	end := len(b)
	for end > 0 {
		isCut := false
		for _, c := range cut {
			if b[end-1] == c {
				isCut = true
				break
			}
		}
		if !isCut {
			break
		}
		end--
	}
	for i := end; i < len(b); i++ {
		b[i] = 0
	}
}

// lowerAsciiSkippingLeadBytes ASCII-lowercases b in place, skipping the byte
// following any CP932 lead byte so multi-byte characters are never split or
// folded.
func lowerAsciiSkippingLeadBytes(b []byte) {
	i := 0
	for i < len(b) {
		if IsLeadByte(b[i]) && i+1 < len(b) {
			i += 2
			continue
		}
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
		i++
	}
}

// forbiddenNameChars are bytes that make a host filename unrepresentable as
// a DOS 8.3 candidate; such files are silently excluded from the match set.
var forbiddenNameChars = map[byte]bool{
	'/': true, '\\': true, ',': true, ';': true,
	'<': true, '=': true, '>': true, '[': true, ']': true, '|': true,
}

// CandidateKey builds the 21-byte key for one host directory entry, after
// the host filename has been re-encoded to Guest encoding. ok is false if
// the name must be excluded from any match (control bytes, leading '-', or
// a forbidden character).
func CandidateKey(guestName []byte) (key [KeyLen]byte, ok bool) {
	for _, c := range guestName {
		if c <= 0x1F || forbiddenNameChars[c] {
			return key, false
		}
	}
	if len(guestName) > 0 && guestName[0] == '-' {
		return key, false
	}

	main, ext := splitMainExt(guestName)
	if len(main) > 18 {
		main = main[:18]
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	copy(key[0:18], main)
	copy(key[18:21], ext)
	lowerAsciiSkippingLeadBytes(key[:])
	return key, true
}

// splitMainExt splits at the last '.' found in the last 4 bytes of name,
// i.e. only a dot that would leave a <=3 byte extension counts.
func splitMainExt(name []byte) (main, ext []byte) {
	k := len(name)
	lo := k - 4
	if lo < 0 {
		lo = 0
	}
	for i := k - 1; i >= lo; i-- {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return name, nil
}

// MatchWildcard compares a search key against a candidate key byte by byte:
// '?' in the search key matches anything; other bytes must be equal (both
// already lower-cased with lead-byte continuations preserved).
func MatchWildcard(search, candidate [KeyLen]byte) bool {
	for i := 0; i < KeyLen; i++ {
		if search[i] == '?' {
			continue
		}
		if search[i] != candidate[i] {
			return false
		}
	}
	return true
}

// AllWildcards reports whether every byte of a key is '?'. Together with the
// volume-name attribute bit and a root path marker, this condition triggers
// synthesizing the volume-name entry.
func AllWildcards(key [KeyLen]byte) bool {
	for _, b := range key {
		if b != '?' {
			return false
		}
	}
	return true
}

// RootMarker is the special path value ("\t") signalling the Guest is
// listing the drive root with the volume-name attribute set.
const RootMarker = string(rune(0x09))

// IsVolumeNameQuery reports whether a files request has the volume-name
// attribute bit set and an all-wildcard search key. It does not look at the
// path; the caller checks for the root marker before synthesizing the
// volume-name entry ahead of the real directory entries.
func IsVolumeNameQuery(req proto.FilesRequest, searchKey [KeyLen]byte) bool {
	if req.Attr&proto.AttrVolume == 0 {
		return false
	}
	return AllWildcards(searchKey)
}

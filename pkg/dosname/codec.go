// Package dosname translates Guest-side DOS paths and 8.3 names into host
// paths and back, and implements the 8.3 wildcard match used by the files
// command. All of it operates on raw bytes in the Guest's native encoding
// (a superset of ASCII with 2-byte sequences whose lead byte lies in
// 0x81..0x9F or 0xE0..0xEF, i.e. CP932/Shift-JIS) until the very last step,
// where it is re-encoded to the host's encoding (UTF-8 on POSIX).
package dosname

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/remotedos/rdrive/pkg/proto"
)

// ErrInvalidEncoding surfaces as NODIR to the caller.
var ErrInvalidEncoding = errors.New("dosname: invalid guest-encoded byte sequence")

const (
	pathSep  byte = 0x09
	pathTerm byte = 0x00
)

// IsLeadByte reports whether b starts a 2-byte CP932 sequence. Used both by
// the name splitter and by the wildcard case-fold, which must not
// ASCII-lower-case a sequence's continuation byte.
func IsLeadByte(b byte) bool {
	return (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xEF)
}

// Codec translates between Guest-encoded path bytes and a host filesystem
// rooted at Root.
type Codec struct {
	Root string
}

func New(root string) *Codec {
	return &Codec{Root: root}
}

// TranslatePath joins the namebuf's path components onto Root. When full is
// true, the 8.3 name in nb is appended as "<main>.<ext>" after the path
// components (used by create/open/delete/mkdir/rmdir/etc.; full is false for
// chdir and files, which only name a directory).
func (c *Codec) TranslatePath(nb *proto.DosNamebuf, full bool) (string, error) {
	var b strings.Builder
	b.WriteString(c.Root)

	raw := nb.Path[:]
	// Truncate at the zero terminator.
	if i := indexByte(raw, pathTerm); i >= 0 {
		raw = raw[:i]
	}
	for _, part := range splitSep(raw, pathSep) {
		if len(part) == 0 {
			continue
		}
		b.WriteByte('/')
		b.Write(part)
	}
	if full {
		main := trimTrailing(nb.Name1[:], pathTerm, ' ')
		ext := trimTrailing(nb.Ext[:], ' ')
		if len(main) > 0 || len(ext) > 0 {
			b.WriteByte('/')
			b.Write(main)
			if len(ext) > 0 {
				b.WriteByte('.')
				b.Write(ext)
			}
		}
	}
	// Only the part after Root is trimmed, so a Root such as "." is kept.
	assembled := strings.TrimSuffix(b.String()[len(c.Root):], ".")

	decoded, err := c.DecodeFromGuest([]byte(assembled))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return c.Root + decoded, nil
}

func indexByte(b []byte, target byte) int {
	for i, v := range b {
		if v == target {
			return i
		}
	}
	return -1
}

// splitSep splits on runs of sep, honoring the CP932 2-byte-sequence rule
// (a sep-valued continuation byte is not a separator).
func splitSep(b []byte, sep byte) [][]byte {
	var parts [][]byte
	start := 0
	i := 0
	for i < len(b) {
		if IsLeadByte(b[i]) && i+1 < len(b) {
			i += 2
			continue
		}
		if b[i] == sep {
			parts = append(parts, b[start:i])
			i++
			for i < len(b) && b[i] == sep {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(b) {
		parts = append(parts, b[start:])
	}
	return parts
}

// trimTrailing drops any of the given trailing bytes (e.g. 0x00, 0x20) from
// b, byte-wise from the end.
func trimTrailing(b []byte, cut ...byte) []byte {
	end := len(b)
	for end > 0 {
		trimmed := false
		for _, c := range cut {
			if b[end-1] == c {
				trimmed = true
				break
			}
		}
		if !trimmed {
			break
		}
		end--
	}
	return b[:end]
}

// guestEncoding is CP932, transliterated here via the near-identical
// Shift-JIS codec in golang.org/x/text; the Guest's 2-byte lead-byte ranges
// match Shift-JIS's.
var guestEncoding = japanese.ShiftJIS

// DecodeFromGuest re-encodes Guest-encoded bytes to host UTF-8.
func (c *Codec) DecodeFromGuest(b []byte) (string, error) {
	out, _, err := transform.Bytes(guestEncoding.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeToGuest re-encodes a host UTF-8 string to Guest-encoded bytes.
func (c *Codec) EncodeToGuest(s string) ([]byte, error) {
	out, _, err := transform.Bytes(guestEncoding.NewEncoder(), []byte(s))
	if err != nil {
		return nil, err
	}
	return out, nil
}

package dosname

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remotedos/rdrive/pkg/proto"
)

func name8(s string) [8]byte {
	var b [8]byte
	copy(b[:], s)
	for i := len(s); i < 8; i++ {
		b[i] = ' '
	}
	return b
}

func name10(s string) [10]byte {
	var b [10]byte
	copy(b[:], s)
	return b
}

func ext3(s string) [3]byte {
	var b [3]byte
	copy(b[:], s)
	for i := len(s); i < 3; i++ {
		b[i] = ' '
	}
	return b
}

func TestBuildSearchKeyShortFormFixup(t *testing.T) {
	// "1234567?" encoded as name1 with trailing '?' and empty name2 must
	// behave as if name2 were all '?'.
	var n1 [8]byte
	copy(n1[:], "1234567?")
	key := BuildSearchKey(n1, [10]byte{}, ext3("???"))

	candName, ok := CandidateKey([]byte("12345678.txt"))
	require.True(t, ok)
	require.True(t, MatchWildcard(key, candName))

	candName2, ok := CandidateKey([]byte("1234567X.txt"))
	require.True(t, ok)
	require.True(t, MatchWildcard(key, candName2))

	candName3, ok := CandidateKey([]byte("abcdefgh.txt"))
	require.True(t, ok)
	require.False(t, MatchWildcard(key, candName3))
}

func TestWildcardMatchCaseInsensitive(t *testing.T) {
	key := BuildSearchKey(name8("readme"), [10]byte{}, ext3("txt"))
	cand, ok := CandidateKey([]byte("README.TXT"))
	require.True(t, ok)
	require.True(t, MatchWildcard(key, cand))
}

func TestWildcardExcludesForbiddenNames(t *testing.T) {
	_, ok := CandidateKey([]byte("-dash.txt"))
	require.False(t, ok)
	_, ok = CandidateKey([]byte("a/b.txt"))
	require.False(t, ok)
	_, ok = CandidateKey([]byte("a\x01b.txt"))
	require.False(t, ok)
}

func TestSplitMainExtLastDotNearEnd(t *testing.T) {
	main, ext := splitMainExt([]byte("archive.tar.gz"))
	require.Equal(t, []byte("archive.tar"), main)
	require.Equal(t, []byte("gz"), ext)
}

func TestAllWildcardsAndVolumeQuery(t *testing.T) {
	all := [KeyLen]byte{}
	for i := range all {
		all[i] = '?'
	}
	require.True(t, AllWildcards(all))
	notAll := all
	notAll[3] = 'x'
	require.False(t, AllWildcards(notAll))

	require.True(t, IsVolumeNameQuery(proto.FilesRequest{Attr: proto.AttrVolume}, all))
	require.False(t, IsVolumeNameQuery(proto.FilesRequest{Attr: proto.AttrArchive}, all))
	require.False(t, IsVolumeNameQuery(proto.FilesRequest{Attr: proto.AttrVolume}, notAll))
}

func TestLeadByteCaseFoldSkipsContinuation(t *testing.T) {
	// 0x82 is a CP932 lead byte; the continuation byte 'A' (0x41) has the
	// value of an ASCII capital but must not be folded since it's not a
	// standalone ASCII letter in context.
	b := []byte{0x82, 'A', 'B'}
	lowerAsciiSkippingLeadBytes(b)
	require.Equal(t, byte(0x82), b[0])
	require.Equal(t, byte('A'), b[1]) // continuation byte of the lead pair, untouched
	require.Equal(t, byte('b'), b[2]) // standalone ASCII letter, folded
}

package dosname

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remotedos/rdrive/pkg/proto"
)

func namebuf(path string, main, ext string) proto.DosNamebuf {
	var nb proto.DosNamebuf
	copy(nb.Path[:], path)
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

func TestTranslatePathJoinsComponents(t *testing.T) {
	c := New("/srv/data")
	nb := namebuf("\tSUBDIR\tNESTED\x00", "", "")
	got, err := c.TranslatePath(&nb, false)
	require.NoError(t, err)
	require.Equal(t, "/srv/data/SUBDIR/NESTED", got)
}

func TestTranslatePathFullAppendsName(t *testing.T) {
	c := New("/srv/data")
	nb := namebuf("\tSUBDIR\x00", "HELLO", "TXT")
	got, err := c.TranslatePath(&nb, true)
	require.NoError(t, err)
	require.Equal(t, "/srv/data/SUBDIR/HELLO.TXT", got)
}

func TestTranslatePathNoExtensionDropsTrailingDot(t *testing.T) {
	c := New("/srv/data")
	nb := namebuf("\x00", "README", "")
	got, err := c.TranslatePath(&nb, true)
	require.NoError(t, err)
	require.Equal(t, "/srv/data/README", got)
}

func TestTranslatePathRootOnly(t *testing.T) {
	c := New("/srv/data")
	nb := namebuf("\x00", "", "")
	got, err := c.TranslatePath(&nb, false)
	require.NoError(t, err)
	require.Equal(t, "/srv/data", got)
}

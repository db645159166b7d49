package fsserver

import (
	"os"

	"github.com/remotedos/rdrive/pkg/proto"
)

// openFileEntry is the server's open-file table row: the opaque FCB key
// the Guest supplied, the host file, the translated host
// path (needed by filedate, which has no path in its own request), and the
// cached host position used to avoid redundant seeks.
type openFileEntry struct {
	fcb  uint32
	f    *os.File
	path string
	pos  int64
}

// dirMatchEntry is the directory-enumeration table row: the
// ordered match list produced by `files`, drained one or more entries at a
// time by `nfiles`.
type dirMatchEntry struct {
	filep   uint32
	matches []proto.DosFilesInfo
	cursor  int
}

// tables holds both per-session maps. Neither has an eviction policy beyond
// close/exhaust freeing the entry: reuse of a key is driven entirely by the
// Guest re-using the same opaque address.
type tables struct {
	openFiles map[uint32]*openFileEntry
	dirs      map[uint32]*dirMatchEntry
}

func newTables() *tables {
	return &tables{
		openFiles: make(map[uint32]*openFileEntry),
		dirs:      make(map[uint32]*dirMatchEntry),
	}
}

// installOpenFile replaces any prior entry under fcb, closing its host file
// first: reusing the same key for a new op frees the old entry before
// allocating.
func (t *tables) installOpenFile(fcb uint32, f *os.File, path string) *openFileEntry {
	if old, ok := t.openFiles[fcb]; ok {
		old.f.Close()
	}
	entry := &openFileEntry{fcb: fcb, f: f, path: path}
	t.openFiles[fcb] = entry
	return entry
}

func (t *tables) closeOpenFile(fcb uint32) bool {
	entry, ok := t.openFiles[fcb]
	if !ok {
		return false
	}
	entry.f.Close()
	delete(t.openFiles, fcb)
	return true
}

// installDirMatch replaces any prior entry under filep: a fresh `files`
// call with the same key replaces whatever was there.
func (t *tables) installDirMatch(filep uint32, matches []proto.DosFilesInfo) *dirMatchEntry {
	entry := &dirMatchEntry{filep: filep, matches: matches}
	t.dirs[filep] = entry
	return entry
}

// advanceDirMatch pops up to n entries from the match list, freeing the
// table entry once the cursor reaches the end of the list.
func (t *tables) advanceDirMatch(filep uint32, n int) ([]proto.DosFilesInfo, bool) {
	entry, ok := t.dirs[filep]
	if !ok {
		return nil, false
	}
	end := entry.cursor + n
	if end > len(entry.matches) {
		end = len(entry.matches)
	}
	out := entry.matches[entry.cursor:end]
	entry.cursor = end
	if entry.cursor >= len(entry.matches) {
		delete(t.dirs, filep)
	}
	return out, true
}

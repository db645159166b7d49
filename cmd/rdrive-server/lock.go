package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// acquireSingleClientLock is a best-effort single-client guard: the
// protocol itself carries no connection identifier, so this only prevents
// two instances of this binary from opening the same device, not a second
// Guest OS attaching over the wire itself.
func acquireSingleClientLock(device string) (release func(), err error) {
	path := filepath.Join(os.TempDir(), "rdrive-server-"+filepath.Base(device)+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("lock %s already held: %w", path, err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return func() { os.Remove(path) }, nil
}

//go:build !linux

package serialio

import (
	"fmt"
	"runtime"

	serial "github.com/daedaluz/goserial"
)

func configureLine(p *serial.Port, baud int) error {
	return fmt.Errorf("serialio: line configuration not implemented on %s", runtime.GOOS)
}

//go:build linux

package serialio

import serial "github.com/daedaluz/goserial"

// configureLine sets 8 data bits, 1 stop bit, no parity, no flow control,
// matching the line settings 7 requires the driver to apply at
// init: "stop=1, parity=none, 8 bits, no xon/xoff".
func configureLine(p *serial.Port, baud int) error {
	attrs, err := p.GetAttr2()
	if err != nil {
		return err
	}
	attrs.MakeRaw()
	attrs.Cflag &= ^(serial.CSTOPB | serial.PARENB)
	attrs.Cflag |= serial.CS8 | serial.CREAD | serial.CLOCAL
	attrs.Iflag &= ^(serial.IXON | serial.IXOFF)
	attrs.SetCustomSpeed(uint32(baud))
	return p.SetAttr2(serial.TCSANOW, attrs)
}

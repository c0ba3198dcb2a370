//go:build !linux

package hostport

import (
	"runtime"

	"go.bug.st/serial"
)

func devicePattern() string {
	if runtime.GOOS == "windows" {
		return "COM%d"
	}
	return "/dev/ttyUSB%d"
}

// getPortNames returns the serial ports reported by the operating system.
func getPortNames() ([]string, error) {
	return serial.GetPortsList()
}

// openPort opens a raw 8N1 line. serial.Port unblocks pending reads on
// Close and provides ResetInputBuffer used by Flush.
func openPort(name string, baudRate int) (Device, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	if err := p.ResetInputBuffer(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

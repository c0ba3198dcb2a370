//go:build linux

package hostport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// port is a raw 8N1 serial line. Reads poll the device together with a
// wake-up pipe so that Close releases a blocked reader.
type port struct {
	f  *os.File
	fd int
	r  *os.File
	w  *os.File
}

// toUnixBaudrate maps a baud rate to the corresponding constant in the unix package.
var toUnixBaudrate = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	2000000: unix.B2000000,
}

func devicePattern() string {
	return "/dev/ttyUSB%d"
}

// getPortNames returns a list of available serial port device paths on Linux.
func getPortNames() ([]string, error) {
	patterns := []string{
		"/dev/ttyS*",
		"/dev/ttyUSB*",
		"/dev/ttyXRUSB*",
		"/dev/ttyACM*",
		"/dev/ttyAMA*",
		"/dev/rfcomm*",
		"/dev/ttyAP*",
	}

	var devices []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, device := range matches {
			sysPath := filepath.Join("/sys/class/tty", filepath.Base(device), "device")
			if _, err := os.Stat(sysPath); err == nil {
				devices = append(devices, device)
			}
		}
	}
	return devices, nil
}

func openPort(name string, baudRate int) (Device, error) {
	speed, ok := toUnixBaudrate[baudRate]
	if !ok {
		return nil, fmt.Errorf("unsupported baud rate %d", baudRate)
	}
	fd, err := unix.Open(name, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	p := &port{f: os.NewFile(uintptr(fd), name), fd: fd}

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	// Raw mode, 8 data bits, no parity, one stop bit, no flow control.
	t.Cflag |= unix.CLOCAL | unix.CREAD
	t.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ECHOK | unix.ECHONL | unix.ISIG | unix.IEXTEN
	t.Oflag &^= unix.OPOST | unix.ONLCR | unix.OCRNL
	t.Iflag &^= unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IGNBRK | unix.INPCK | unix.ISTRIP | unix.IXON | unix.IXOFF
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.PARODD | unix.CSTOPB | unix.CRTSCTS
	t.Cflag |= unix.CS8
	t.Cflag &^= unix.CBAUD
	t.Cflag |= speed
	t.Ispeed = speed
	t.Ospeed = speed
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		_ = p.Close()
		return nil, err
	}
	if err := p.ResetInputBuffer(); err != nil {
		_ = p.Close()
		return nil, err
	}
	p.r, p.w, err = os.Pipe()
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// ResetInputBuffer discards data received by the driver but not yet read.
func (p *port) ResetInputBuffer() error {
	if err := p.ensureOpen(); err != nil {
		return err
	}
	if err := unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH); err != nil {
		return fmt.Errorf("tcflush failed: %w", err)
	}
	return nil
}

func (p *port) ensureOpen() error {
	if p == nil || p.f == nil {
		return errors.New("serial port not open")
	}
	return nil
}

func (p *port) Read(buf []byte) (int, error) {
	if err := p.ensureOpen(); err != nil {
		return 0, err
	}
	for {
		pfds := []unix.PollFd{
			{Fd: int32(p.fd), Events: unix.POLLIN},
			{Fd: int32(p.r.Fd()), Events: unix.POLLIN},
		}
		_, err := unix.Poll(pfds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if pfds[1].Revents != 0 {
			return 0, os.ErrClosed
		}
		if pfds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return 0, fmt.Errorf("serial port %s: hang up", p.f.Name())
		}
		n, err := p.f.Read(buf)
		if n == 0 && err == nil {
			continue
		}
		return n, err
	}
}

func (p *port) Write(data []byte) (int, error) {
	if err := p.ensureOpen(); err != nil {
		return 0, err
	}
	return p.f.Write(data)
}

// SetWriteDeadline bounds a Write blocked on a full output queue.
func (p *port) SetWriteDeadline(t time.Time) error {
	if err := p.ensureOpen(); err != nil {
		return err
	}
	return p.f.SetWriteDeadline(t)
}

func (p *port) Close() error {
	if p == nil {
		return nil
	}
	// Closing the write end wakes a reader blocked in poll.
	if p.w != nil {
		_ = p.w.Close()
	}
	var err error
	if p.f != nil {
		err = p.f.Close()
	}
	if p.r != nil {
		_ = p.r.Close()
	}
	return err
}

package hostport

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gurux/gxcommon-go"
)

// Marker is a 4-byte frame delimiter. It is sent least significant byte first.
type Marker uint32

// NoMarker disables the header or terminator.
const NoMarker Marker = 0

const (
	// DefaultHeader is the header used by DefaultConfig.
	DefaultHeader Marker = 0xFF812345
	// DefaultTerminator is the terminator used by DefaultConfig.
	DefaultTerminator Marker = 0xFF8CABDE
	// DefaultTimeout is the I/O timeout used by DefaultConfig.
	DefaultTimeout = 100 * time.Millisecond
	// DefaultBaudRate is the baud rate of a new channel.
	DefaultBaudRate gxcommon.BaudRate = 9600
	// DefaultMaxBuffered is the receive buffer size used when Config.MaxBuffered is zero.
	DefaultMaxBuffered = 64 * 1024
)

// MarkerSize is the size of a header or terminator on the wire.
const MarkerSize = 4

// IsSet returns true if the marker is used.
func (m Marker) IsSet() bool {
	return m != NoMarker
}

// AppendTo appends the wire form of the marker to dst.
func (m Marker) AppendTo(dst []byte) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(m))
}

func (m Marker) String() string {
	if !m.IsSet() {
		return "unset"
	}
	return fmt.Sprintf("0x%08X", uint32(m))
}

// ParseMarker parses a marker given as hex (0x...), decimal, or "none"/"unset".
func ParseMarker(value string) (Marker, error) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", "none", "unset":
		return NoMarker, nil
	}
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return NoMarker, fmt.Errorf("invalid marker %q: %w", value, err)
	}
	return Marker(n), nil
}

// Config holds the serial line and framing settings of a channel.
type Config struct {
	// Port is the serial port number. It selects the device when Device is empty.
	Port int
	// Device is an explicit device path, e.g. /dev/ttyACM0 or COM4.
	Device   string
	BaudRate gxcommon.BaudRate
	// Header and Terminator delimit a frame. NoMarker disables them.
	Header     Marker
	Terminator Marker
	// Timeout bounds a single Read or Write. Zero waits until the transfer
	// completes, the link fails or the channel is closed.
	Timeout time.Duration
	// ResyncLimit is the maximum number of bytes skipped while looking for
	// the header. Zero means the scan is bounded only by Timeout.
	ResyncLimit int
	// Checksum appends a CRC-16/MODBUS of the payload before the terminator.
	Checksum bool
	// MaxBuffered is the maximum number of received bytes kept between
	// reads. Older bytes are dropped when it is exceeded. Zero selects
	// DefaultMaxBuffered.
	MaxBuffered int
}

// DefaultConfig returns a configuration with the default header,
// terminator and timeout.
func DefaultConfig(port int, baudRate gxcommon.BaudRate) Config {
	return Config{
		Port:       port,
		BaudRate:   baudRate,
		Header:     DefaultHeader,
		Terminator: DefaultTerminator,
		Timeout:    DefaultTimeout,
	}
}

// Validate checks that the configuration can be used to open a channel.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 && c.Device == "" {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("invalid baud rate %d", int(c.BaudRate)))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("invalid timeout %s", c.Timeout))
	}
	if c.ResyncLimit < 0 {
		errs = append(errs, fmt.Errorf("invalid resync limit %d", c.ResyncLimit))
	}
	if c.MaxBuffered < 0 {
		errs = append(errs, fmt.Errorf("invalid receive buffer size %d", c.MaxBuffered))
	}
	return errors.Join(errs...)
}

// DeviceName returns the device path the configuration opens.
func (c Config) DeviceName() string {
	if c.Device != "" {
		return c.Device
	}
	return fmt.Sprintf(devicePattern(), c.Port)
}

// Codec returns the frame codec for the configuration.
func (c Config) Codec() Codec {
	return Codec{
		Header:      c.Header,
		Terminator:  c.Terminator,
		Checksum:    c.Checksum,
		ResyncLimit: c.ResyncLimit,
	}
}

func (c Config) bufferLimit() int {
	if c.MaxBuffered == 0 {
		return DefaultMaxBuffered
	}
	return c.MaxBuffered
}

func (c Config) deadline() time.Time {
	if c.Timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.Timeout)
}

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
	"errors"
	"fmt"
)

// Failure kinds reported by the channel. Every error returned by the
// package wraps exactly one of them (resync failures on a deadline wrap
// both ErrFramingMismatch and ErrTimeout).
var (
	// ErrDeviceUnavailable is returned when the serial device cannot be claimed.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrNotInitialized is returned by I/O calls on a closed channel.
	ErrNotInitialized = errors.New("host port is not initialized")
	// ErrTimeout is returned when the deadline elapsed before the required bytes were transferred.
	ErrTimeout = errors.New("timeout")
	// ErrFramingMismatch is returned when the header, checksum or terminator does not match.
	ErrFramingMismatch = errors.New("framing mismatch")
	// ErrLinkError is returned when the underlying link fails or is closed during I/O.
	ErrLinkError = errors.New("link error")
)

// Frame stages reported in FrameError.
const (
	StageHeader     = "header"
	StagePayload    = "payload"
	StageChecksum   = "checksum"
	StageTerminator = "terminator"
)

// FrameError describes a failed frame decode.
type FrameError struct {
	Stage string // Stage of the frame that failed.
	// Filled is the number of leading buffer elements that were written
	// before the failure. Elements past Filled are untouched.
	Filled int
	// Skipped is the number of bytes discarded while scanning for the header.
	Skipped int
	Err     error
}

func (e *FrameError) Error() string {
	if e.Skipped != 0 {
		return fmt.Sprintf("frame %s: %v (%d bytes skipped, %d elements filled)", e.Stage, e.Err, e.Skipped, e.Filled)
	}
	return fmt.Sprintf("frame %s: %v (%d elements filled)", e.Stage, e.Err, e.Filled)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// PortError describes a failed operation on the serial device.
type PortError struct {
	Op   string // open, restart, read, write
	Port string // Device name.
	Err  error
}

func (e *PortError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *PortError) Unwrap() error {
	return e.Err
}

func linkError(err error) error {
	if err == nil || errors.Is(err, ErrLinkError) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrLinkError, err)
}

var errPortClosed = fmt.Errorf("%w: port closed", ErrLinkError)

// IsTimeout reports whether err was caused by an elapsed deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsFramingMismatch reports whether err was caused by a malformed frame.
func IsFramingMismatch(err error) bool {
	return errors.Is(err, ErrFramingMismatch)
}

// IsNotInitialized reports whether err was returned because the channel is closed.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}

// IsLinkError reports whether err was caused by a link failure.
func IsLinkError(err error) bool {
	return errors.Is(err, ErrLinkError)
}

// IsDeviceUnavailable reports whether err was returned because the device could not be opened.
func IsDeviceUnavailable(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable)
}

// GetFrameError extracts a FrameError from an error chain, if present.
func GetFrameError(err error) (*FrameError, bool) {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr, true
	}
	return nil, false
}

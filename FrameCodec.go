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
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/sigurn/crc16"
)

// ElementSize is the wire size of one float32 sample.
const ElementSize = 4

const checksumSize = 2

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// Source is a byte stream a frame is decoded from.
type Source interface {
	// SkipTo discards input up to and including pattern and returns the
	// number of bytes discarded before it. When limit is positive, at most
	// limit bytes are discarded before ErrFramingMismatch is returned.
	SkipTo(pattern []byte, limit int, deadline time.Time) (int, error)
	// Next consumes n bytes. On failure it returns the bytes consumed so far.
	Next(n int, deadline time.Time) ([]byte, error)
}

// Codec encodes and decodes frames of float32 samples:
//
//	[header][payload][crc16][terminator]
//
// The header, checksum and terminator are optional. All values are little-endian.
type Codec struct {
	Header      Marker
	Terminator  Marker
	Checksum    bool
	ResyncLimit int
}

// FrameSize returns the wire size of a frame holding count samples.
func (c Codec) FrameSize(count int) int {
	n := count * ElementSize
	if c.Header.IsSet() {
		n += MarkerSize
	}
	if c.Checksum {
		n += checksumSize
	}
	if c.Terminator.IsSet() {
		n += MarkerSize
	}
	return n
}

// Encode returns the frame for buf.
func (c Codec) Encode(buf []float32) []byte {
	return c.AppendFrame(make([]byte, 0, c.FrameSize(len(buf))), buf)
}

// AppendFrame appends the frame for buf to dst.
func (c Codec) AppendFrame(dst []byte, buf []float32) []byte {
	if c.Header.IsSet() {
		dst = c.Header.AppendTo(dst)
	}
	start := len(dst)
	for _, v := range buf {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	if c.Checksum {
		dst = binary.LittleEndian.AppendUint16(dst, crc16.Checksum(dst[start:], crcTable))
	}
	if c.Terminator.IsSet() {
		dst = c.Terminator.AppendTo(dst)
	}
	return dst
}

// Decode reads one frame of len(buf) samples from src into buf.
// A zero deadline waits without limit.
func (c Codec) Decode(src Source, buf []float32, deadline time.Time) error {
	skipped := 0
	if c.Header.IsSet() {
		var hdr [MarkerSize]byte
		n, err := src.SkipTo(c.Header.AppendTo(hdr[:0]), c.ResyncLimit, deadline)
		if err != nil {
			return &FrameError{Stage: StageHeader, Skipped: n, Err: err}
		}
		skipped = n
	}

	payload, err := src.Next(len(buf)*ElementSize, deadline)
	filled := fill(buf, payload)
	if err != nil {
		return &FrameError{Stage: StagePayload, Filled: filled, Skipped: skipped, Err: err}
	}

	if c.Checksum {
		sum, err := src.Next(checksumSize, deadline)
		if err != nil {
			return &FrameError{Stage: StageChecksum, Filled: filled, Skipped: skipped, Err: err}
		}
		if binary.LittleEndian.Uint16(sum) != crc16.Checksum(payload, crcTable) {
			return &FrameError{Stage: StageChecksum, Filled: filled, Skipped: skipped, Err: ErrFramingMismatch}
		}
	}

	if c.Terminator.IsSet() {
		term, err := src.Next(MarkerSize, deadline)
		if err != nil {
			return &FrameError{Stage: StageTerminator, Filled: filled, Skipped: skipped, Err: err}
		}
		var want [MarkerSize]byte
		if !bytes.Equal(term, c.Terminator.AppendTo(want[:0])) {
			return &FrameError{Stage: StageTerminator, Filled: filled, Skipped: skipped, Err: ErrFramingMismatch}
		}
	}
	return nil
}

// DecodeBytes decodes one frame of len(buf) samples from data and returns
// the number of bytes consumed. A frame cut short returns io.ErrUnexpectedEOF.
func (c Codec) DecodeBytes(data []byte, buf []float32) (int, error) {
	src := &sliceSource{data: data}
	err := c.Decode(src, buf, time.Time{})
	return src.pos, err
}

// fill copies whole samples from payload into buf and returns their count.
func fill(buf []float32, payload []byte) int {
	n := len(payload) / ElementSize
	for i := 0; i < n; i++ {
		buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*ElementSize:]))
	}
	return n
}

// sliceSource is a Source over a complete byte slice.
type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) SkipTo(pattern []byte, limit int, _ time.Time) (int, error) {
	rest := s.data[s.pos:]
	i := bytes.Index(rest, pattern)
	if i < 0 {
		skipped := len(rest)
		s.pos = len(s.data)
		if limit > 0 && skipped > limit {
			return skipped, ErrFramingMismatch
		}
		return skipped, io.ErrUnexpectedEOF
	}
	if limit > 0 && i > limit {
		s.pos += limit
		return limit, ErrFramingMismatch
	}
	s.pos += i + len(pattern)
	return i, nil
}

func (s *sliceSource) Next(n int, _ time.Time) ([]byte, error) {
	rest := s.data[s.pos:]
	if len(rest) < n {
		s.pos = len(s.data)
		return rest, io.ErrUnexpectedEOF
	}
	s.pos += n
	return rest[:n], nil
}

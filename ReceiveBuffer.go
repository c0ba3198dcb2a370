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
	"fmt"
	"sync"
	"time"
)

// receiveBuffer collects bytes from the reader goroutine and lets the
// read path wait for them with a deadline.
type receiveBuffer struct {
	mu   sync.Mutex
	buf  []byte
	err  error
	wait chan struct{}
	// limit is the maximum number of buffered bytes. Zero is unbounded.
	limit int
	// gen identifies the session started by the last Reset.
	gen uint64
}

func newReceiveBuffer() *receiveBuffer {
	return &receiveBuffer{wait: make(chan struct{})}
}

// Append adds bytes received in session gen and wakes the waiting reader.
// Bytes of an earlier session are ignored. When the limit is exceeded the
// oldest bytes are dropped and their count is returned.
func (b *receiveBuffer) Append(gen uint64, p []byte) int {
	if len(p) == 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return 0
	}
	b.buf = append(b.buf, p...)
	dropped := 0
	if b.limit > 0 && len(b.buf) > b.limit {
		dropped = len(b.buf) - b.limit
		b.buf = append(b.buf[:0], b.buf[dropped:]...)
	}
	b.signal()
	return dropped
}

// Fail marks the stream broken. Waiting and later calls return err once
// the buffered bytes are exhausted.
func (b *receiveBuffer) Fail(err error) {
	b.mu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.signal()
	b.mu.Unlock()
}

// Reset clears buffered bytes and the failure for a newly opened device
// and returns the generation its reader must pass to Append.
func (b *receiveBuffer) Reset(limit int) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = nil
	b.err = nil
	b.limit = limit
	b.gen++
	return b.gen
}

// SetLimit changes the maximum number of buffered bytes of the current session.
func (b *receiveBuffer) SetLimit(limit int) {
	b.mu.Lock()
	b.limit = limit
	b.mu.Unlock()
}

// Discard drops the buffered bytes and returns their count.
func (b *receiveBuffer) Discard() int {
	b.mu.Lock()
	n := len(b.buf)
	b.buf = b.buf[:0]
	b.mu.Unlock()
	return n
}

// Len returns the number of buffered bytes.
func (b *receiveBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// signal must be called with mu held.
func (b *receiveBuffer) signal() {
	close(b.wait)
	b.wait = make(chan struct{})
}

// take must be called with mu held.
func (b *receiveBuffer) take(n int) []byte {
	ret := make([]byte, n)
	copy(ret, b.buf)
	b.buf = b.buf[n:]
	return ret
}

// Next implements Source.
func (b *receiveBuffer) Next(n int, deadline time.Time) ([]byte, error) {
	for {
		b.mu.Lock()
		if len(b.buf) >= n {
			ret := b.take(n)
			b.mu.Unlock()
			return ret, nil
		}
		if b.err != nil {
			ret := b.take(len(b.buf))
			err := b.err
			b.mu.Unlock()
			return ret, err
		}
		ch := b.wait
		b.mu.Unlock()

		if !await(ch, deadline) {
			b.mu.Lock()
			ret := b.take(min(n, len(b.buf)))
			b.mu.Unlock()
			if len(ret) == n {
				return ret, nil
			}
			return ret, ErrTimeout
		}
	}
}

// SkipTo implements Source.
func (b *receiveBuffer) SkipTo(pattern []byte, limit int, deadline time.Time) (int, error) {
	skipped := 0
	seen := false
	// Keep last bytes that may be part of pattern.
	// For example, if pattern is "abcd" and buffer ends with "ab",
	// we need to keep "ab" in case next buffer starts with "cd".
	overlap := len(pattern) - 1
	for {
		b.mu.Lock()
		if len(b.buf) != 0 {
			seen = true
		}
		if i := bytes.Index(b.buf, pattern); i >= 0 {
			if limit > 0 && skipped+i > limit {
				drop := limit - skipped
				b.buf = b.buf[drop:]
				b.mu.Unlock()
				return limit, ErrFramingMismatch
			}
			b.buf = b.buf[i+len(pattern):]
			b.mu.Unlock()
			return skipped + i, nil
		}
		if drop := len(b.buf) - overlap; drop > 0 {
			b.buf = b.buf[drop:]
			skipped += drop
		}
		if limit > 0 && skipped > limit {
			b.mu.Unlock()
			return skipped, ErrFramingMismatch
		}
		if b.err != nil {
			err := b.err
			b.mu.Unlock()
			return skipped, err
		}
		ch := b.wait
		b.mu.Unlock()

		if !await(ch, deadline) {
			if !seen {
				return skipped, ErrTimeout
			}
			return skipped, fmt.Errorf("%w: %w", ErrFramingMismatch, ErrTimeout)
		}
	}
}

// await blocks until ch is closed or the deadline passes.
// A zero deadline waits without limit.
func await(ch <-chan struct{}, deadline time.Time) bool {
	if deadline.IsZero() {
		<-ch
		return true
	}
	rem := time.Until(deadline)
	if rem <= 0 {
		return false
	}
	timer := time.NewTimer(rem)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

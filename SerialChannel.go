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
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Gurux/gxcommon-go"
	"go.uber.org/atomic"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Device is an open serial line.
type Device interface {
	io.ReadWriteCloser
}

// Opener opens the named device at the given baud rate.
type Opener func(name string, baudRate int) (Device, error)

// inputResetter is implemented by devices that can discard the driver input queue.
type inputResetter interface {
	ResetInputBuffer() error
}

// writeDeadliner is implemented by devices whose blocking Write can be
// bounded by a deadline. A zero time clears the deadline.
type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// TraceHandler is called when the channel emits a trace message.
type TraceHandler func(c *SerialChannel, e gxcommon.TraceEventArgs)

// MediaStateHandler is called when the channel is opened or closed.
type MediaStateHandler func(c *SerialChannel, e gxcommon.MediaStateEventArgs)

// ErrorHandler is called when the link fails outside of a Read or Write call.
type ErrorHandler func(c *SerialChannel, err error)

const (
	readChunk       = 1024
	writeRetryDelay = time.Millisecond
)

// SerialChannel exchanges frames of float32 samples over a serial line.
//
// One Read and one Write may run concurrently. Concurrent calls in the
// same direction must be serialized by the caller.
type SerialChannel struct {
	mu sync.RWMutex
	// cfg is changed by the setters and applied by the next Begin, Open or Restart.
	cfg Config
	// active is the configuration of the open device.
	active Config
	begun  bool
	opener Opener
	dev    Device
	stop   chan struct{}
	wg     sync.WaitGroup
	rx     *receiveBuffer

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
	bytesDropped  atomic.Uint64

	hmu sync.RWMutex
	// The trace level specifies which types of trace messages are emitted.
	traceLevel gxcommon.TraceLevel
	//Called when the channel state is changed.
	onState MediaStateHandler
	//Called when the channel is sending or receiving data.
	onTrace TraceHandler
	//Called when the link fails.
	onErr ErrorHandler
	// Printer for localized messages.
	p *message.Printer
}

// NewSerialChannel creates a closed channel with the default configuration.
func NewSerialChannel() *SerialChannel {
	c := &SerialChannel{
		cfg:    Config{BaudRate: DefaultBaudRate},
		opener: openPort,
		rx:     newReceiveBuffer(),
	}
	c.Localize(language.AmericanEnglish)
	return c
}

// GetPortNames returns list of available serial ports.
func GetPortNames() ([]string, error) {
	return getPortNames()
}

// SetOpener replaces the function used to open the device. It takes
// effect on the next open.
func (c *SerialChannel) SetOpener(opener Opener) {
	c.mu.Lock()
	if opener == nil {
		opener = openPort
	}
	c.opener = opener
	c.mu.Unlock()
}

// Begin stores cfg and opens the channel.
//
// When the channel is already open on the same device and baud rate the
// line is kept and the framing and timeout settings of cfg take effect
// immediately. Otherwise the channel is closed and reopened.
func (c *SerialChannel) Begin(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return &PortError{Op: "begin", Err: fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)}
	}
	c.mu.Lock()
	c.cfg = cfg
	c.begun = true
	keep := c.dev != nil && c.active.DeviceName() == cfg.DeviceName() && c.active.BaudRate == cfg.BaudRate
	if keep {
		c.active = cfg
		c.rx.SetLimit(cfg.bufferLimit())
	}
	c.mu.Unlock()
	if keep {
		return nil
	}
	_ = c.Close()
	return c.Open()
}

// Open opens the device with the current configuration.
// It does nothing if the channel is already open.
func (c *SerialChannel) Open() error {
	c.mu.Lock()
	if c.dev != nil {
		c.mu.Unlock()
		return nil
	}
	cfg, opener := c.cfg, c.opener
	c.begun = true
	c.mu.Unlock()

	name := cfg.DeviceName()
	if err := cfg.Validate(); err != nil {
		return &PortError{Op: "open", Port: name, Err: fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)}
	}
	c.statef(gxcommon.MediaStateOpening)
	c.trace(gxcommon.TraceTypesInfo, c.printer().Sprintf("msg.connecting_to", name, int(cfg.BaudRate)))
	dev, err := opener(name, int(cfg.BaudRate))
	if err != nil {
		c.trace(gxcommon.TraceTypesError, c.printer().Sprintf("msg.connect_failed", name, err))
		c.errorf(err)
		c.statef(gxcommon.MediaStateClosed)
		return &PortError{Op: "open", Port: name, Err: fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)}
	}

	c.mu.Lock()
	if c.dev != nil {
		// Opened concurrently.
		c.mu.Unlock()
		_ = dev.Close()
		return nil
	}
	// A reader of the previous session may still append its last chunk;
	// the new generation makes the buffer ignore it.
	gen := c.rx.Reset(cfg.bufferLimit())
	c.dev = dev
	c.active = cfg
	c.stop = make(chan struct{})
	c.wg.Add(1)
	go c.reader(dev, c.stop, gen)
	c.mu.Unlock()

	c.trace(gxcommon.TraceTypesInfo, c.printer().Sprintf("msg.connected_to", name))
	c.statef(gxcommon.MediaStateOpen)
	return nil
}

// Close closes the device. Pending reads fail with ErrLinkError. The
// channel is closed even if the device reports an error.
func (c *SerialChannel) Close() error {
	c.mu.Lock()
	dev, stop, name := c.dev, c.stop, c.active.DeviceName()
	if dev != nil {
		c.dev = nil
		close(stop)
		c.rx.Fail(errPortClosed)
	}
	c.mu.Unlock()
	if dev == nil {
		c.wg.Wait()
		return nil
	}

	c.trace(gxcommon.TraceTypesInfo, c.printer().Sprintf("msg.closing_connection", name))
	c.statef(gxcommon.MediaStateClosing)
	err := dev.Close()
	c.wg.Wait()
	c.trace(gxcommon.TraceTypesInfo, c.printer().Sprintf("msg.connection_closed", name))
	c.statef(gxcommon.MediaStateClosed)
	return err
}

// Restart closes the channel and opens it again with the last configuration.
func (c *SerialChannel) Restart() error {
	_ = c.Close()
	if err := c.Open(); err != nil {
		if pe, ok := err.(*PortError); ok {
			pe.Op = "restart"
		}
		return err
	}
	return nil
}

// IsInit returns true while the device is open and usable.
func (c *SerialChannel) IsInit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dev != nil
}

// Read reads one frame of len(buf) samples into buf.
//
// On failure only the first FrameError.Filled elements of buf were
// written. A closed channel returns ErrNotInitialized and leaves buf untouched.
func (c *SerialChannel) Read(buf []float32) error {
	c.mu.RLock()
	open, cfg := c.dev != nil, c.active
	c.mu.RUnlock()
	if !open {
		return &PortError{Op: "read", Err: ErrNotInitialized}
	}
	if err := cfg.Codec().Decode(c.rx, buf, cfg.deadline()); err != nil {
		c.trace(gxcommon.TraceTypesError, c.printer().Sprintf("msg.read_failed", len(buf), err))
		return &PortError{Op: "read", Port: cfg.DeviceName(), Err: err}
	}
	return nil
}

// Write sends buf as one frame. Partial writes are continued until the
// frame is sent or the timeout elapses.
func (c *SerialChannel) Write(buf []float32) error {
	c.mu.RLock()
	dev, cfg := c.dev, c.active
	c.mu.RUnlock()
	if dev == nil {
		return &PortError{Op: "write", Err: ErrNotInitialized}
	}
	frame := cfg.Codec().Encode(buf)
	c.traceData(gxcommon.TraceTypesSent, "TX", frame)
	if err := c.writeAll(dev, frame, cfg.deadline()); err != nil {
		c.trace(gxcommon.TraceTypesError, c.printer().Sprintf("msg.write_failed", len(buf), err))
		return &PortError{Op: "write", Port: cfg.DeviceName(), Err: err}
	}
	return nil
}

// setWriteDeadline bounds a blocking Write on devices that support it.
func setWriteDeadline(dev Device, deadline time.Time) error {
	d, ok := dev.(writeDeadliner)
	if !ok {
		return nil
	}
	if err := d.SetWriteDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return linkError(err)
	}
	return nil
}

func (c *SerialChannel) writeAll(dev Device, data []byte, deadline time.Time) error {
	if err := setWriteDeadline(dev, deadline); err != nil {
		return err
	}
	for sent := 0; sent < len(data); {
		n, err := dev.Write(data[sent:])
		if n > 0 {
			sent += n
			c.bytesSent.Add(uint64(n))
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("%w: %d of %d bytes sent", ErrTimeout, sent, len(data))
		}
		if err != nil {
			return linkError(err)
		}
		if sent == len(data) {
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %d of %d bytes sent", ErrTimeout, sent, len(data))
		}
		if n == 0 {
			time.Sleep(writeRetryDelay)
		}
	}
	return nil
}

// ReadAsync runs Read on a new goroutine. The returned channel receives
// its result. buf must not be used until then.
func (c *SerialChannel) ReadAsync(buf []float32) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.Read(buf)
	}()
	return done
}

// WriteAsync runs Write on a new goroutine. The returned channel receives its result.
func (c *SerialChannel) WriteAsync(buf []float32) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.Write(buf)
	}()
	return done
}

// ReadBytes returns up to max raw bytes. It waits until max bytes are
// available, the timeout elapses or the link fails, and returns the bytes
// received so far together with the error.
func (c *SerialChannel) ReadBytes(max int) ([]byte, error) {
	c.mu.RLock()
	open, cfg := c.dev != nil, c.active
	c.mu.RUnlock()
	if !open {
		return nil, &PortError{Op: "read", Err: ErrNotInitialized}
	}
	data, err := c.rx.Next(max, cfg.deadline())
	if err != nil {
		return data, &PortError{Op: "read", Port: cfg.DeviceName(), Err: err}
	}
	return data, nil
}

// WriteBytes writes raw bytes in a single attempt and returns the number of bytes accepted.
func (c *SerialChannel) WriteBytes(data []byte) (int, error) {
	c.mu.RLock()
	dev, cfg := c.dev, c.active
	c.mu.RUnlock()
	if dev == nil {
		return 0, &PortError{Op: "write", Err: ErrNotInitialized}
	}
	if err := setWriteDeadline(dev, cfg.deadline()); err != nil {
		return 0, &PortError{Op: "write", Port: cfg.DeviceName(), Err: err}
	}
	c.traceData(gxcommon.TraceTypesSent, "TX", data)
	n, err := dev.Write(data)
	c.bytesSent.Add(uint64(n))
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return n, &PortError{Op: "write", Port: cfg.DeviceName(), Err: fmt.Errorf("%w: %d of %d bytes sent", ErrTimeout, n, len(data))}
	}
	if err != nil {
		return n, &PortError{Op: "write", Port: cfg.DeviceName(), Err: linkError(err)}
	}
	return n, nil
}

// Flush discards received data that has not been read.
func (c *SerialChannel) Flush() error {
	c.mu.RLock()
	dev, name := c.dev, c.active.DeviceName()
	c.mu.RUnlock()
	if dev == nil {
		return &PortError{Op: "flush", Err: ErrNotInitialized}
	}
	if r, ok := dev.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			return &PortError{Op: "flush", Port: name, Err: linkError(err)}
		}
	}
	if n := c.rx.Discard(); n != 0 {
		c.trace(gxcommon.TraceTypesInfo, c.printer().Sprintf("msg.input_discarded", n))
	}
	return nil
}

// GetBytesToRead returns the number of received bytes not yet read.
func (c *SerialChannel) GetBytesToRead() int {
	return c.rx.Len()
}

// GetBytesSent returns the number of bytes written to the device.
func (c *SerialChannel) GetBytesSent() uint64 {
	return c.bytesSent.Load()
}

// GetBytesReceived returns the number of bytes read from the device.
func (c *SerialChannel) GetBytesReceived() uint64 {
	return c.bytesReceived.Load()
}

// GetBytesDropped returns the number of received bytes dropped because
// the receive buffer was full.
func (c *SerialChannel) GetBytesDropped() uint64 {
	return c.bytesDropped.Load()
}

// ResetByteCounters clears the sent, received and dropped byte counters.
func (c *SerialChannel) ResetByteCounters() {
	c.bytesSent.Store(0)
	c.bytesReceived.Store(0)
	c.bytesDropped.Store(0)
}

func (c *SerialChannel) reader(dev Device, stop <-chan struct{}, gen uint64) {
	err := c.receive(dev, stop, gen)
	c.wg.Done()
	if err != nil {
		c.linkLost(dev, err)
	}
}

// receive copies device input to the receive buffer until the device
// fails or stop is closed.
func (c *SerialChannel) receive(dev Device, stop <-chan struct{}, gen uint64) error {
	buf := make([]byte, readChunk)
	for {
		n, err := dev.Read(buf)
		if n > 0 {
			c.bytesReceived.Add(uint64(n))
			c.traceData(gxcommon.TraceTypesReceived, "RX", buf[:n])
			if dropped := c.rx.Append(gen, buf[:n]); dropped != 0 {
				c.bytesDropped.Add(uint64(dropped))
				c.trace(gxcommon.TraceTypesError, c.printer().Sprintf("msg.input_overflow", dropped))
			}
		}
		select {
		case <-stop:
			return nil
		default:
		}
		if err != nil {
			return err
		}
	}
}

// linkLost closes a device that failed while open.
func (c *SerialChannel) linkLost(dev Device, err error) {
	c.mu.Lock()
	current := c.dev == dev
	if current {
		c.dev = nil
		c.rx.Fail(linkError(err))
	}
	name := c.active.DeviceName()
	c.mu.Unlock()
	if !current {
		return
	}
	_ = dev.Close()
	c.trace(gxcommon.TraceTypesError, c.printer().Sprintf("msg.connection_failed", name, err))
	c.errorf(err)
	c.statef(gxcommon.MediaStateClosed)
}

// Config returns the current configuration.
func (c *SerialChannel) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Port returns the serial port number.
func (c *SerialChannel) Port() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Port
}

// SetPort sets the serial port number. Call Restart to make the change effective.
func (c *SerialChannel) SetPort(value int) {
	c.mu.Lock()
	c.cfg.Port = value
	c.mu.Unlock()
}

// Device returns the explicit device path.
func (c *SerialChannel) Device() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Device
}

// SetDevice sets an explicit device path that overrides the port number.
// Call Restart to make the change effective.
func (c *SerialChannel) SetDevice(value string) {
	c.mu.Lock()
	c.cfg.Device = value
	c.mu.Unlock()
}

// BaudRate returns the used baud rate.
func (c *SerialChannel) BaudRate() gxcommon.BaudRate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.BaudRate
}

// SetBaudRate sets the used baud rate. Call Restart to make the change effective.
func (c *SerialChannel) SetBaudRate(value gxcommon.BaudRate) {
	c.mu.Lock()
	c.cfg.BaudRate = value
	c.mu.Unlock()
}

// Header returns the frame header.
func (c *SerialChannel) Header() Marker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Header
}

// SetHeader sets the frame header. Call Restart to make the change effective.
func (c *SerialChannel) SetHeader(value Marker) {
	c.mu.Lock()
	c.cfg.Header = value
	c.mu.Unlock()
}

// Terminator returns the frame terminator.
func (c *SerialChannel) Terminator() Marker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Terminator
}

// SetTerminator sets the frame terminator. Call Restart to make the change effective.
func (c *SerialChannel) SetTerminator(value Marker) {
	c.mu.Lock()
	c.cfg.Terminator = value
	c.mu.Unlock()
}

// Timeout returns the I/O timeout.
func (c *SerialChannel) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Timeout
}

// SetTimeout sets the I/O timeout. Call Restart to make the change effective.
func (c *SerialChannel) SetTimeout(value time.Duration) {
	c.mu.Lock()
	c.cfg.Timeout = value
	c.mu.Unlock()
}

// MaxBuffered returns the maximum number of received bytes kept between reads.
func (c *SerialChannel) MaxBuffered() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.MaxBuffered
}

// SetMaxBuffered sets the receive buffer size. Zero selects DefaultMaxBuffered.
// Call Restart to make the change effective.
func (c *SerialChannel) SetMaxBuffered(value int) {
	c.mu.Lock()
	c.cfg.MaxBuffered = value
	c.mu.Unlock()
}

// ResyncLimit returns the maximum number of bytes skipped before the header.
func (c *SerialChannel) ResyncLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.ResyncLimit
}

// SetResyncLimit sets the maximum number of bytes skipped before the header.
func (c *SerialChannel) SetResyncLimit(value int) {
	c.mu.Lock()
	c.cfg.ResyncLimit = value
	c.mu.Unlock()
}

// Checksum returns true if frames carry a CRC-16.
func (c *SerialChannel) Checksum() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Checksum
}

// SetChecksum enables or disables the frame CRC-16.
func (c *SerialChannel) SetChecksum(value bool) {
	c.mu.Lock()
	c.cfg.Checksum = value
	c.mu.Unlock()
}

// String returns a snapshot of the configuration and state.
func (c *SerialChannel) String() string {
	c.mu.RLock()
	cfg, begun, open := c.cfg, c.begun, c.dev != nil
	c.mu.RUnlock()

	var b strings.Builder
	if !begun {
		for _, name := range []string{"Device:\t\t", "Port:\t\t", "Baudrate:\t", "Header:\t\t", "Terminator:\t", "Timeout:\t"} {
			fmt.Fprintf(&b, "%sUndefined\n", name)
		}
	} else {
		fmt.Fprintf(&b, "Device:\t\t%s\n", cfg.DeviceName())
		fmt.Fprintf(&b, "Port:\t\t%d\n", cfg.Port)
		fmt.Fprintf(&b, "Baudrate:\t%d\n", int(cfg.BaudRate))
		fmt.Fprintf(&b, "Header:\t\t%s\n", cfg.Header)
		fmt.Fprintf(&b, "Terminator:\t%s\n", cfg.Terminator)
		fmt.Fprintf(&b, "Timeout:\t%s\n", cfg.Timeout)
	}
	if open {
		b.WriteString("isInit:\t\tTrue\n")
	} else {
		b.WriteString("isInit:\t\tFalse\n")
	}
	return b.String()
}

// GetTrace returns the trace level.
func (c *SerialChannel) GetTrace() gxcommon.TraceLevel {
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	return c.traceLevel
}

// SetTrace sets the trace level.
func (c *SerialChannel) SetTrace(traceLevel gxcommon.TraceLevel) {
	c.hmu.Lock()
	c.traceLevel = traceLevel
	c.hmu.Unlock()
}

// SetOnError sets the handler called when the link fails.
func (c *SerialChannel) SetOnError(value ErrorHandler) {
	c.hmu.Lock()
	c.onErr = value
	c.hmu.Unlock()
}

// SetOnMediaStateChange sets the handler called when the channel opens or closes.
func (c *SerialChannel) SetOnMediaStateChange(value MediaStateHandler) {
	c.hmu.Lock()
	c.onState = value
	c.hmu.Unlock()
}

// SetOnTrace sets the handler for trace messages.
func (c *SerialChannel) SetOnTrace(value TraceHandler) {
	c.hmu.Lock()
	c.onTrace = value
	c.hmu.Unlock()
}

// Localize messages for the specified language.
// No errors is returned if language is not supported.
func (c *SerialChannel) Localize(tag language.Tag) {
	c.hmu.Lock()
	c.p = message.NewPrinter(tag)
	c.hmu.Unlock()
}

func (c *SerialChannel) printer() *message.Printer {
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	return c.p
}

// tracing returns the trace handler if traceType is enabled.
func (c *SerialChannel) tracing(traceType gxcommon.TraceTypes) TraceHandler {
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	if c.onTrace == nil || int(c.traceLevel) < int(traceType) {
		return nil
	}
	return c.onTrace
}

func (c *SerialChannel) trace(traceType gxcommon.TraceTypes, msg string) {
	if cb := c.tracing(traceType); cb != nil {
		cb(c, *gxcommon.NewTraceEventArgs(traceType, msg, ""))
	}
}

func (c *SerialChannel) traceData(traceType gxcommon.TraceTypes, prefix string, data []byte) {
	cb := c.tracing(traceType)
	if cb == nil {
		return
	}
	str, err := gxcommon.ToString(data)
	if err != nil {
		str = fmt.Sprintf("% X", data)
	}
	cb(c, *gxcommon.NewTraceEventArgs(traceType, prefix+": "+str, ""))
}

func (c *SerialChannel) errorf(err error) {
	c.hmu.RLock()
	cb := c.onErr
	c.hmu.RUnlock()
	if cb != nil {
		cb(c, err)
	}
}

func (c *SerialChannel) statef(state gxcommon.MediaState) {
	c.hmu.RLock()
	cb := c.onState
	c.hmu.RUnlock()
	if cb != nil {
		cb(c, *gxcommon.NewMediaStateEventArgs(state))
	}
}

// Package hostport exchanges fixed-length frames of float32 samples with a
// device over a serial line. A SerialChannel owns the line, keeps a reader
// goroutine filling a receive buffer and decodes frames from it on demand.
//
// Features
//
//   - Configurable serial settings (port number or device path, baud rate).
//   - Framing: optional 4-byte header and terminator around the payload.
//   - Resynchronization: input before the header is skipped, optionally bounded.
//   - Integrity: optional CRC-16/MODBUS over the payload.
//   - Timeouts: per call deadline via time.Duration. Zero waits without limit.
//   - Tracing: configurable trace level for sent/received/error/info.
//   - Events: Error, Trace and MediaState callbacks.
//   - Concurrency: one Read and one Write may run in parallel; Close unblocks pending I/O.
//
// # Construction
//
// Use NewSerialChannel to create a channel and Begin to open it with a
// configuration. DefaultConfig fills in the default header, terminator and timeout.
//
// Example
//
//	ch := hostport.NewSerialChannel()
//	ch.SetOnError(func(c *hostport.SerialChannel, err error) {
//	    // log/handle error
//	})
//	if err := ch.Begin(hostport.DefaultConfig(0, gxcommon.BaudRate(115200))); err != nil {
//	    // handle open error
//	}
//	defer ch.Close()
//
//	samples := make([]float32, 3)
//	if err := ch.Read(samples); err != nil {
//	    // handle read error
//	}
//	_ = ch.Write([]float32{1, 2, 3})
//
// # Framing
//
// A frame on the wire is
//
//	[header 4B][N x float32][crc16 2B][terminator 4B]
//
// All multi-byte values are little-endian. A marker set to NoMarker and a
// disabled checksum are left out of the frame. Both sides must agree on the
// element count N.
//
// # Errors and timeouts
//
// Every error wraps one of ErrDeviceUnavailable, ErrNotInitialized,
// ErrTimeout, ErrFramingMismatch or ErrLinkError. Use errors.Is or the Is*
// helpers to classify them. A failed Read returns a FrameError telling how
// many leading samples of the buffer were written.
//
// # Notes
//
// The zero value of SerialChannel is not ready for use; always construct via NewSerialChannel.
// Setters change the configuration used by the next Begin, Open or Restart.
// Long-running work in event handlers should be offloaded to a separate
// goroutine to avoid blocking I/O paths.
package hostport

package hostport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseMarker(t *testing.T) {
	tests := []struct {
		in   string
		want Marker
	}{
		{"0xABCD1122", 0xABCD1122},
		{"0XFF812345", DefaultHeader},
		{"4294967295", 0xFFFFFFFF},
		{" 16 ", 16},
		{"", NoMarker},
		{"none", NoMarker},
		{"Unset", NoMarker},
	}
	for _, tt := range tests {
		got, err := ParseMarker(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"0x100000000", "-1", "abc"} {
		_, err := ParseMarker(in)
		require.Error(t, err, in)
	}
}

func TestMarkerString(t *testing.T) {
	require.Equal(t, "0x1122DEFA", Marker(0x1122DEFA).String())
	require.Equal(t, "unset", NoMarker.String())
	require.Equal(t, []byte{0x45, 0x23, 0x81, 0xFF}, DefaultHeader.AppendTo(nil))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(1, 19200)
	require.NoError(t, cfg.Validate())
	require.Equal(t, DefaultHeader, cfg.Header)
	require.Equal(t, DefaultTerminator, cfg.Terminator)
	require.Equal(t, 100*time.Millisecond, cfg.Timeout)
	require.Equal(t, 4+8+4, cfg.Codec().FrameSize(2))
	require.Equal(t, DefaultMaxBuffered, cfg.bufferLimit())
	cfg.MaxBuffered = 32
	require.Equal(t, 32, cfg.bufferLimit())
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: -1, BaudRate: 0, Timeout: -time.Second, ResyncLimit: -1, MaxBuffered: -1}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid port")
	require.Contains(t, err.Error(), "invalid baud rate")
	require.Contains(t, err.Error(), "invalid timeout")
	require.Contains(t, err.Error(), "invalid resync limit")
	require.Contains(t, err.Error(), "invalid receive buffer size")

	cfg = Config{Port: -1, Device: "/dev/ttyS0", BaudRate: 9600}
	require.NoError(t, cfg.Validate())
	require.Equal(t, "/dev/ttyS0", cfg.DeviceName())
}

func TestDeadline(t *testing.T) {
	require.True(t, Config{}.deadline().IsZero())
	d := Config{Timeout: time.Second}.deadline()
	require.WithinDuration(t, time.Now().Add(time.Second), d, 100*time.Millisecond)
}

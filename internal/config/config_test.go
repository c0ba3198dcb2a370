package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hostport/hostport-go"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("device: /dev/ttyACM0\nbaud: 115200\nheader: \"0xABCD1122\"\nterminator: none\ntimeout: 250ms\nchecksum: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM0", cfg.Device)
	require.Equal(t, 115200, cfg.Baud)
	require.Equal(t, 250*time.Millisecond, cfg.Timeout)

	ch, err := cfg.ChannelConfig()
	require.NoError(t, err)
	require.Equal(t, hostport.Marker(0xABCD1122), ch.Header)
	require.Equal(t, hostport.NoMarker, ch.Terminator)
	require.True(t, ch.Checksum)
	require.Equal(t, "/dev/ttyACM0", ch.DeviceName())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baud: [fast"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestChannelConfigDefaultsMarkers(t *testing.T) {
	ch, err := Default().ChannelConfig()
	require.NoError(t, err)
	require.Equal(t, hostport.DefaultHeader, ch.Header)
	require.Equal(t, hostport.DefaultTerminator, ch.Terminator)
	require.Equal(t, hostport.DefaultTimeout, ch.Timeout)
}

func TestChannelConfigRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Header = "banana"
	_, err := cfg.ChannelConfig()
	require.Error(t, err)

	cfg = Default()
	cfg.Baud = 0
	_, err = cfg.ChannelConfig()
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Port = 3
	cfg.Trace = "Verbose"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

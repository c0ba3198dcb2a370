package cli_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hostport/hostport-go"
	"github.com/hostport/hostport-go/internal/cli"
	"github.com/hostport/hostport-go/internal/config"
)

const (
	frame123 = "2211cdab" + "0000803f" + "00000040" + "00004040" + "fade2211"
)

// executeCommand runs the CLI with a missing config file and fixed framing
// flags so earlier tests do not leak settings.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	root := cli.RootCmd()
	root.SetOut(buf)
	// Logs go to stderr.
	root.SetErr(io.Discard)
	base := []string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--header", "0xABCD1122",
		"--terminator", "0x1122DEFA",
		"--timeout", "1s",
		"--checksum=false",
		"--baud", "115200",
		"--max-buffered", "0",
		"--device", "/dev/fake0",
	}
	root.SetArgs(append(base, args...))
	err := root.Execute()
	return buf.String(), err
}

// pipeOpener returns an opener handing out one end of a net.Pipe. The other
// end is delivered on the returned channel.
func pipeOpener(t *testing.T) <-chan net.Conn {
	t.Helper()
	peers := make(chan net.Conn, 1)
	cli.SetOpener(func(name string, baudRate int) (hostport.Device, error) {
		local, remote := net.Pipe()
		peers <- remote
		return local, nil
	})
	t.Cleanup(func() { cli.SetOpener(nil) })
	return peers
}

func TestEncodeCommand(t *testing.T) {
	out, err := executeCommand(t, "encode", "1", "2", "3")
	require.NoError(t, err)
	require.Equal(t, frame123+"\n", out)
}

func TestEncodeCommandRejectsBadSample(t *testing.T) {
	_, err := executeCommand(t, "encode", "1", "x")
	require.Error(t, err)
}

func TestDecodeCommandSkipsGarbage(t *testing.T) {
	out, err := executeCommand(t, "decode", "--count", "3", "ffee"+frame123)
	require.NoError(t, err)
	require.Equal(t, "1 2 3\n", out)
}

func TestDecodeCommandTerminatorMismatch(t *testing.T) {
	bad := frame123[:len(frame123)-8] + "00000000"
	_, err := executeCommand(t, "decode", "--count", "3", bad)
	require.ErrorIs(t, err, hostport.ErrFramingMismatch)
}

func TestDecodeCommandInvalidHex(t *testing.T) {
	_, err := executeCommand(t, "decode", "--count", "3", "zz")
	require.Error(t, err)
}

func TestWriteCommand(t *testing.T) {
	peers := pipeOpener(t)
	got := make(chan []byte, 1)
	go func() {
		peer := <-peers
		defer peer.Close()
		data := make([]byte, len(frame123)/2)
		if _, err := io.ReadFull(peer, data); err == nil {
			got <- data
		}
		close(got)
	}()

	out, err := executeCommand(t, "write", "1,2", "3")
	require.NoError(t, err)
	require.Equal(t, "20 bytes sent\n", out)
	require.Equal(t, frame123, hex.EncodeToString(<-got))
}

func TestReadCommand(t *testing.T) {
	peers := pipeOpener(t)
	data, err := hex.DecodeString(frame123 + frame123)
	require.NoError(t, err)
	go func() {
		peer := <-peers
		defer peer.Close()
		_, _ = peer.Write(data)
	}()

	out, err := executeCommand(t, "read", "--count", "3", "--frames", "2")
	require.NoError(t, err)
	require.Equal(t, "1 2 3\n1 2 3\n", out)
}

func TestInfoCommand(t *testing.T) {
	peers := pipeOpener(t)
	go func() {
		peer := <-peers
		_, _ = io.Copy(io.Discard, peer)
		peer.Close()
	}()

	out, err := executeCommand(t, "info")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "Device:\t\t/dev/fake0"), out)
	require.True(t, strings.Contains(out, "Header:\t\t0xABCD1122"), out)
	require.True(t, strings.Contains(out, "isInit:\t\tTrue"), out)
}

func TestReadCommandDeviceUnavailable(t *testing.T) {
	cli.SetOpener(func(name string, baudRate int) (hostport.Device, error) {
		return nil, errors.New("busy")
	})
	t.Cleanup(func() { cli.SetOpener(nil) })

	_, err := executeCommand(t, "read", "--count", "3", "--frames", "1")
	require.ErrorIs(t, err, hostport.ErrDeviceUnavailable)
}

func TestConfigSaveCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostport", "config.yaml")
	out, err := executeCommand(t, "--config", path, "--baud", "57600", "--terminator", "none",
		"--max-buffered", "4096", "config", "save")
	require.NoError(t, err)
	require.Equal(t, "Configuration saved to "+path+"\n", out)

	saved, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 57600, saved.Baud)
	require.Equal(t, "/dev/fake0", saved.Device)
	require.Equal(t, "0xABCD1122", saved.Header)
	require.Equal(t, "none", saved.Terminator)
	require.Equal(t, 4096, saved.MaxBuffered)

	ch, err := saved.ChannelConfig()
	require.NoError(t, err)
	require.Equal(t, hostport.NoMarker, ch.Terminator)
}

func TestConfigSaveRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := executeCommand(t, "--config", path, "--header", "banana", "config", "save")
	require.Error(t, err)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

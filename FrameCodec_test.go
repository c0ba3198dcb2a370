package hostport

import (
	"encoding/hex"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var testCodec = Codec{Header: 0xABCD1122, Terminator: 0x1122DEFA}

func bitsOf(values []float32) []uint32 {
	ret := make([]uint32, len(values))
	for i, v := range values {
		ret[i] = math.Float32bits(v)
	}
	return ret
}

func TestEncodeLayout(t *testing.T) {
	frame := testCodec.Encode([]float32{1, 2, 3})
	require.Equal(t, "2211cdab"+"0000803f"+"00000040"+"00004040"+"fade2211", hex.EncodeToString(frame))
	require.Equal(t, testCodec.FrameSize(3), len(frame))
}

func TestEncodeWithoutMarkers(t *testing.T) {
	frame := Codec{}.Encode([]float32{1})
	require.Equal(t, "0000803f", hex.EncodeToString(frame))
}

func TestRoundTripBitExact(t *testing.T) {
	values := []float32{
		0, float32(math.Copysign(0, -1)), 1.5, -3.25,
		math.MaxFloat32, math.SmallestNonzeroFloat32,
		float32(math.Inf(1)), float32(math.Inf(-1)), float32(math.NaN()),
		math.Float32frombits(0x7FC00001),
	}
	codecs := []Codec{
		{},
		testCodec,
		{Header: DefaultHeader, Terminator: DefaultTerminator, Checksum: true},
		{Terminator: DefaultTerminator},
	}
	for _, c := range codecs {
		for n := 0; n <= len(values); n++ {
			in := values[:n]
			out := make([]float32, n)
			consumed, err := c.DecodeBytes(c.Encode(in), out)
			require.NoError(t, err)
			require.Equal(t, c.FrameSize(n), consumed)
			require.Equal(t, bitsOf(in), bitsOf(out))
		}
	}
}

func TestDecodeResyncsOnHeader(t *testing.T) {
	// Garbage contains a partial header.
	data := append([]byte{0x00, 0x22, 0x11, 0xCD, 0x01}, testCodec.Encode([]float32{4, 5})...)
	out := make([]float32, 2)
	n, err := testCodec.DecodeBytes(data, out)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, []float32{4, 5}, out)
}

func TestDecodeResyncLimit(t *testing.T) {
	c := testCodec
	c.ResyncLimit = 3
	data := append([]byte{1, 2, 3, 4, 5}, c.Encode([]float32{1})...)
	out := make([]float32, 1)
	_, err := c.DecodeBytes(data, out)
	require.ErrorIs(t, err, ErrFramingMismatch)
	fe, ok := GetFrameError(err)
	require.True(t, ok)
	require.Equal(t, StageHeader, fe.Stage)
	require.Equal(t, 0, fe.Filled)

	c.ResyncLimit = 5
	_, err = c.DecodeBytes(data, out)
	require.NoError(t, err)
	require.Equal(t, []float32{1}, out)
}

func TestDecodeTerminatorMismatch(t *testing.T) {
	frame := testCodec.Encode([]float32{7, 8})
	frame[len(frame)-1] ^= 0xFF
	out := make([]float32, 2)
	_, err := testCodec.DecodeBytes(frame, out)
	require.ErrorIs(t, err, ErrFramingMismatch)
	fe, ok := GetFrameError(err)
	require.True(t, ok)
	require.Equal(t, StageTerminator, fe.Stage)
	require.Equal(t, 2, fe.Filled)
}

func TestDecodeChecksumMismatch(t *testing.T) {
	c := Codec{Header: DefaultHeader, Checksum: true}
	frame := c.Encode([]float32{1, 2})
	frame[MarkerSize] ^= 0x01
	out := make([]float32, 2)
	_, err := c.DecodeBytes(frame, out)
	require.ErrorIs(t, err, ErrFramingMismatch)
	fe, _ := GetFrameError(err)
	require.Equal(t, StageChecksum, fe.Stage)
}

func TestDecodeShortFrame(t *testing.T) {
	frame := testCodec.Encode([]float32{1, 2, 3})
	out := []float32{-1, -1, -1}
	_, err := testCodec.DecodeBytes(frame[:MarkerSize+6], out)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	fe, _ := GetFrameError(err)
	require.Equal(t, StagePayload, fe.Stage)
	require.Equal(t, 1, fe.Filled)
	// Elements past Filled are untouched.
	require.Equal(t, []float32{1, -1, -1}, out)
}

func TestDecodeMissingHeader(t *testing.T) {
	_, err := testCodec.DecodeBytes([]byte{1, 2, 3, 4, 5, 6}, make([]float32, 1))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	fe, _ := GetFrameError(err)
	require.Equal(t, StageHeader, fe.Stage)
}

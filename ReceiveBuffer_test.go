package hostport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSkipToAcrossAppends(t *testing.T) {
	b := newReceiveBuffer()
	b.Append(0, []byte{9, 9, 9, 0x22, 0x11})
	go func() {
		time.Sleep(10 * time.Millisecond)
		b.Append(0, []byte{0xCD, 0xAB, 0x42})
	}()
	n, err := b.SkipTo([]byte{0x22, 0x11, 0xCD, 0xAB}, 0, time.Now().Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 1, b.Len())
}

func TestSkipToSelfOverlappingPattern(t *testing.T) {
	b := newReceiveBuffer()
	b.Append(0, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xBB, 0x01})
	n, err := b.SkipTo([]byte{0xAA, 0xAA, 0xAA, 0xBB}, 0, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	got, err := b.Next(1, time.Time{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, got)
}

func TestSkipToTimeout(t *testing.T) {
	b := newReceiveBuffer()
	_, err := b.SkipTo([]byte{1, 2, 3, 4}, 0, time.Now().Add(20*time.Millisecond))
	require.ErrorIs(t, err, ErrTimeout)
	require.False(t, errors.Is(err, ErrFramingMismatch))

	b.Append(0, []byte{7, 7, 7, 7, 7})
	n, err := b.SkipTo([]byte{1, 2, 3, 4}, 0, time.Now().Add(20*time.Millisecond))
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, ErrFramingMismatch)
	require.Equal(t, 2, n)
	require.Equal(t, 3, b.Len())
}

func TestSkipToLimit(t *testing.T) {
	b := newReceiveBuffer()
	b.Append(0, []byte{0, 0, 0, 0, 0, 0, 0, 0})
	n, err := b.SkipTo([]byte{1, 2, 3, 4}, 4, time.Time{})
	require.ErrorIs(t, err, ErrFramingMismatch)
	require.Equal(t, 5, n)
}

func TestNextPartialOnTimeout(t *testing.T) {
	b := newReceiveBuffer()
	b.Append(0, []byte{1, 2, 3})
	got, err := b.Next(8, time.Now().Add(20*time.Millisecond))
	require.ErrorIs(t, err, ErrTimeout)
	require.Equal(t, []byte{1, 2, 3}, got)
	require.Equal(t, 0, b.Len())
}

func TestFailWakesWaiter(t *testing.T) {
	b := newReceiveBuffer()
	done := make(chan error, 1)
	go func() {
		_, err := b.Next(4, time.Time{})
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	b.Fail(errPortClosed)
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrLinkError)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Fail")
	}
}

func TestResetClearsFailure(t *testing.T) {
	b := newReceiveBuffer()
	b.Append(0, []byte{1})
	b.Fail(errPortClosed)
	gen := b.Reset(0)
	require.Equal(t, 0, b.Len())
	b.Append(gen, []byte{5, 6})
	got, err := b.Next(2, time.Time{})
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6}, got)
	require.Equal(t, 0, b.Discard())
}

func TestAppendIgnoresEarlierSession(t *testing.T) {
	b := newReceiveBuffer()
	old := b.Reset(0)
	b.Append(old, []byte{1, 2})
	current := b.Reset(0)
	require.NotEqual(t, old, current)

	require.Equal(t, 0, b.Append(old, []byte{3, 4, 5}))
	require.Equal(t, 0, b.Len())
	b.Append(current, []byte{6})
	got, err := b.Next(1, time.Time{})
	require.NoError(t, err)
	require.Equal(t, []byte{6}, got)
}

func TestAppendDropsOldestOverLimit(t *testing.T) {
	b := newReceiveBuffer()
	gen := b.Reset(8)
	require.Equal(t, 0, b.Append(gen, []byte{1, 2, 3, 4, 5, 6}))
	require.Equal(t, 4, b.Append(gen, []byte{7, 8, 9, 10, 11, 12}))
	require.Equal(t, 8, b.Len())
	got, err := b.Next(8, time.Time{})
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6, 7, 8, 9, 10, 11, 12}, got)

	b.SetLimit(0)
	require.Equal(t, 0, b.Append(gen, make([]byte, 100)))
	require.Equal(t, 100, b.Len())
}

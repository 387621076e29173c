package device

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hselasky/jack-umidi/internal/device/devicetest"
	"github.com/hselasky/jack-umidi/internal/logger"
	"github.com/hselasky/jack-umidi/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const dev = "/dev/umidi0.0"

func newTestManager(t *testing.T, opener *devicetest.Opener, kill bool) (*Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewManager(Config{
		CapturePath:  dev,
		PlaybackPath: dev,
		KillOnLoss:   kill,
		Opener:       opener,
		Logger:       logger.NewWithCore(core),
	})
	t.Cleanup(func() { m.Close() })
	return m, logs
}

func drain(m *Manager) []byte {
	var out []byte
	for {
		b, ok := m.NextByte()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func TestNothingOpenBeforeTick(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, _ := newTestManager(t, opener, false)

	assert.False(t, m.IsOpen(contracts.Capture))
	_, ok := m.NextByte()
	assert.False(t, ok)
	assert.ErrorIs(t, m.Write([]byte{0xF8}), ErrClosed)
	assert.Zero(t, opener.Opens())
}

func TestTickOpensBothDirections(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, logs := newTestManager(t, opener, false)

	require.NoError(t, m.Tick())
	assert.True(t, m.IsOpen(contracts.Capture))
	assert.True(t, m.IsOpen(contracts.Playback))
	assert.Equal(t, 2, logs.FilterMessage("MIDI device opened").Len())

	// Healthy devices are probed, not reopened.
	require.NoError(t, m.Tick())
	assert.Equal(t, 2, opener.Opens())
}

func TestMissingDeviceRetried(t *testing.T) {
	opener := devicetest.NewOpener()
	m, logs := newTestManager(t, opener, true)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Tick())
	}
	assert.False(t, m.IsOpen(contracts.Capture))
	assert.Equal(t, 6, opener.Opens())
	assert.Equal(t, 6, logs.FilterMessage("MIDI device not available").Len())

	opener.Plug(dev)
	require.NoError(t, m.Tick())
	assert.True(t, m.IsOpen(contracts.Capture))
}

func TestNextByteRefillsStage(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, _ := newTestManager(t, opener, false)
	require.NoError(t, m.Tick())

	in := make([]byte, 40)
	for i := range in {
		in[i] = byte(i)
	}
	rx := opener.Last(dev, contracts.Capture)
	rx.Feed(in...)

	b, ok := m.NextByte()
	require.True(t, ok)
	assert.Equal(t, byte(0), b)
	// One refill takes at most a stage worth of bytes.
	assert.Equal(t, len(in)-StageSize, rx.Pending())

	assert.Equal(t, in, append([]byte{b}, drain(m)...))
}

func TestLossDiscardsStageAndRecovers(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, logs := newTestManager(t, opener, false)
	require.NoError(t, m.Tick())

	rx := opener.Last(dev, contracts.Capture)
	rx.Feed(0x90, 0x40, 0x7F, 0x41, 0x00)
	_, ok := m.NextByte()
	require.True(t, ok)

	opener.Unplug(dev)
	require.NoError(t, m.Tick())
	assert.False(t, m.IsOpen(contracts.Capture))
	assert.False(t, m.IsOpen(contracts.Playback))
	assert.True(t, rx.Closed())
	assert.Equal(t, 2, logs.FilterMessage("MIDI device lost").Len())

	// Staged bytes of the old instance are gone.
	_, ok = m.NextByte()
	assert.False(t, ok)

	opener.Plug(dev)
	require.NoError(t, m.Tick())
	rx2 := opener.Last(dev, contracts.Capture)
	require.NotSame(t, rx, rx2)
	rx2.Feed(0x7F, 0x02)
	assert.Equal(t, []byte{0x7F, 0x02}, drain(m))
}

func TestKillOnLoss(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, _ := newTestManager(t, opener, true)
	require.NoError(t, m.Tick())

	opener.Unplug(dev)
	err := m.Tick()
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrDeviceLost)
	assert.Contains(t, err.Error(), dev)
}

func TestWrite(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, _ := newTestManager(t, opener, false)
	require.NoError(t, m.Tick())
	tx := opener.Last(dev, contracts.Playback)

	require.NoError(t, m.Write([]byte{0x90, 0x3C, 0x64}))
	assert.Equal(t, [][]byte{{0x90, 0x3C, 0x64}}, tx.Written())

	tx.LimitWrites(2)
	assert.ErrorIs(t, m.Write([]byte{0x80, 0x3C, 0x00}), io.ErrShortWrite)
}

func TestCaptureOnly(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m := NewManager(Config{CapturePath: dev, Opener: opener, Logger: logger.NewNop()})
	defer m.Close()

	require.NoError(t, m.Tick())
	assert.Equal(t, 1, opener.Opens())
	assert.True(t, m.IsOpen(contracts.Capture))
	assert.False(t, m.IsOpen(contracts.Playback))
}

func TestRunStopsOnContext(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, _ := newTestManager(t, opener, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return m.IsOpen(contracts.Capture) }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReturnsDeviceLost(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, _ := newTestManager(t, opener, true)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return m.IsOpen(contracts.Playback) }, time.Second, time.Millisecond)
	opener.Unplug(dev)

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, contracts.ErrDeviceLost))
	case <-time.After(time.Second):
		t.Fatal("Run did not report the lost device")
	}
}

func TestCloseReleasesBoth(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, _ := newTestManager(t, opener, false)
	require.NoError(t, m.Tick())

	require.NoError(t, m.Close())
	assert.True(t, opener.Last(dev, contracts.Capture).Closed())
	assert.True(t, opener.Last(dev, contracts.Playback).Closed())
	assert.NoError(t, m.Close())
}

func TestClosedManagerStaysClosed(t *testing.T) {
	opener := devicetest.NewOpener(dev)
	m, _ := newTestManager(t, opener, false)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 5*time.Millisecond) }()
	require.Eventually(t, func() bool { return m.IsOpen(contracts.Playback) }, time.Second, time.Millisecond)

	require.NoError(t, m.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run kept going after Close")
	}

	opens := opener.Opens()
	require.NoError(t, m.Tick())
	assert.Equal(t, opens, opener.Opens())
	assert.False(t, m.IsOpen(contracts.Capture))
	assert.False(t, m.IsOpen(contracts.Playback))
}

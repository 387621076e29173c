//go:build linux || darwin || freebsd
// +build linux darwin freebsd

package device

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/hselasky/jack-umidi/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func mkfifo(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, unix.Mkfifo(path, 0o600))
}

func TestFileOpenerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midi")
	mkfifo(t, path)

	rx, err := FileOpener{}.Open(path, contracts.Capture)
	require.NoError(t, err)
	defer rx.Close()

	buf := make([]byte, StageSize)
	n, err := rx.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	tx, err := FileOpener{}.Open(path, contracts.Playback)
	require.NoError(t, err)
	defer tx.Close()

	n, err = tx.Write([]byte{0x90, 0x40, 0x7F})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = rx.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x90, 0x40, 0x7F}, buf[:n])

	// Nothing pending again: non-blocking read.
	n, err = rx.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, rx.Probe())
	assert.NoError(t, tx.Probe())
}

func TestFileOpenerMissing(t *testing.T) {
	_, err := FileOpener{}.Open(filepath.Join(t.TempDir(), "absent"), contracts.Capture)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileProbeDetectsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midi")
	mkfifo(t, path)

	rx, err := FileOpener{}.Open(path, contracts.Capture)
	require.NoError(t, err)
	defer rx.Close()
	require.NoError(t, rx.Probe())

	require.NoError(t, unix.Unlink(path))
	assert.ErrorIs(t, rx.Probe(), fs.ErrNotExist)
}

func TestFileProbeDetectsReplacement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "midi")
	mkfifo(t, path)

	rx, err := FileOpener{}.Open(path, contracts.Capture)
	require.NoError(t, err)
	defer rx.Close()

	other := filepath.Join(dir, "midi.new")
	mkfifo(t, other)
	require.NoError(t, unix.Rename(other, path))

	assert.ErrorIs(t, rx.Probe(), errReplaced)
}

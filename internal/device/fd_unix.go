//go:build unix
// +build unix

package device

import (
	"errors"
	"fmt"
	"os"

	"github.com/hselasky/jack-umidi/sdk/contracts"
	"golang.org/x/sys/unix"
)

// errReplaced is reported by Probe when the path no longer names the node
// the descriptor was opened on.
var errReplaced = errors.New("device node replaced")

// FileOpener opens character devices with plain file descriptors. Capture
// descriptors are non-blocking, playback descriptors blocking.
type FileOpener struct{}

var _ contracts.DeviceOpener = FileOpener{}

// Open opens path for dir.
func (FileOpener) Open(path string, dir contracts.Direction) (contracts.DeviceConn, error) {
	flags := unix.O_RDONLY | unix.O_NONBLOCK
	if dir == contracts.Playback {
		flags = unix.O_WRONLY
	}
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	c := &fileConn{fd: fd, dir: dir, path: path}
	if err := unix.Fstat(fd, &c.st); err != nil {
		unix.Close(fd)
		return nil, &os.PathError{Op: "fstat", Path: path, Err: err}
	}
	if err := c.setMode(); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return c, nil
}

type fileConn struct {
	fd   int
	dir  contracts.Direction
	path string
	st   unix.Stat_t
	err  error // sticky read/write failure
}

func (c *fileConn) setMode() error {
	flags := 0
	if c.dir == contracts.Capture {
		flags = unix.O_NONBLOCK
	}
	if _, err := unix.FcntlInt(uintptr(c.fd), unix.F_SETFL, flags); err != nil {
		return &os.PathError{Op: "fcntl", Path: c.path, Err: err}
	}
	return nil
}

func (c *fileConn) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	switch {
	case err == nil:
		return n, nil
	case err == unix.EAGAIN || err == unix.EINTR:
		return 0, nil
	default:
		c.err = err
		return 0, err
	}
}

func (c *fileConn) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(c.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			c.err = err
			return 0, err
		}
		return n, nil
	}
}

// Probe re-applies the descriptor flags and checks that the path still
// names the same device node. Some systems accept F_SETFL on a descriptor
// whose device has been detached, so the node check catches replugs.
func (c *fileConn) Probe() error {
	if c.err != nil {
		return c.err
	}
	if err := c.setMode(); err != nil {
		return err
	}
	var st unix.Stat_t
	if err := unix.Stat(c.path, &st); err != nil {
		return &os.PathError{Op: "stat", Path: c.path, Err: err}
	}
	if st.Dev != c.st.Dev || st.Ino != c.st.Ino || st.Rdev != c.st.Rdev {
		return fmt.Errorf("%s: %w", c.path, errReplaced)
	}
	return nil
}

func (c *fileConn) Close() error {
	if err := unix.Close(c.fd); err != nil {
		return &os.PathError{Op: "close", Path: c.path, Err: err}
	}
	return nil
}

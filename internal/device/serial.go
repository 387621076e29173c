package device

import (
	"fmt"
	"sync"

	"github.com/hselasky/jack-umidi/sdk/contracts"
	"go.bug.st/serial"
)

// SerialOpener opens devices as serial lines running the 31250 baud MIDI
// wire protocol or any other fixed rate. A serial port can only be opened
// once, so both directions of the same path share one port.
type SerialOpener struct {
	mode *serial.Mode
	open func(path string, mode *serial.Mode) (serial.Port, error)

	mu    sync.Mutex
	ports map[string]*sharedPort
}

type sharedPort struct {
	port serial.Port
	refs int
}

var _ contracts.DeviceOpener = (*SerialOpener)(nil)

// NewSerialOpener returns an opener using 8N1 framing at baud.
func NewSerialOpener(baud int) *SerialOpener {
	return &SerialOpener{
		mode: &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open:  serial.Open,
		ports: make(map[string]*sharedPort),
	}
}

// Open opens path or takes another reference on the port already open.
func (o *SerialOpener) Open(path string, dir contracts.Direction) (contracts.DeviceConn, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sp, ok := o.ports[path]
	if !ok {
		port, err := o.open(path, o.mode)
		if err != nil {
			return nil, fmt.Errorf("open serial %s: %w", path, err)
		}
		// Reads poll; the capture side must never wait for data.
		if err := port.SetReadTimeout(0); err != nil {
			port.Close()
			return nil, fmt.Errorf("serial %s: %w", path, err)
		}
		sp = &sharedPort{port: port}
		o.ports[path] = sp
	}
	sp.refs++
	return &serialConn{opener: o, path: path, sp: sp}, nil
}

func (o *SerialOpener) release(path string, sp *sharedPort) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sp.refs--
	if sp.refs > 0 {
		return nil
	}
	if o.ports[path] == sp {
		delete(o.ports, path)
	}
	return sp.port.Close()
}

type serialConn struct {
	opener *SerialOpener
	path   string
	sp     *sharedPort
	closed bool
}

func (c *serialConn) Read(p []byte) (int, error) {
	return c.sp.port.Read(p)
}

func (c *serialConn) Write(p []byte) (int, error) {
	return c.sp.port.Write(p)
}

// Probe re-applies the line settings; this fails once the adapter is gone.
func (c *serialConn) Probe() error {
	if err := c.sp.port.SetMode(c.opener.mode); err != nil {
		// Forget the dead port so the next Open gets a fresh one even if the
		// other direction still holds a reference.
		c.opener.mu.Lock()
		if c.opener.ports[c.path] == c.sp {
			delete(c.opener.ports, c.path)
		}
		c.opener.mu.Unlock()
		return fmt.Errorf("serial %s: %w", c.path, err)
	}
	return nil
}

func (c *serialConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.opener.release(c.path, c.sp)
}

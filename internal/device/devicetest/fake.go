// Package devicetest provides in-memory MIDI devices for tests.
package devicetest

import (
	"bytes"
	"errors"
	"os"
	"sync"

	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// ErrUnplugged is returned by Probe after Unplug.
var ErrUnplugged = errors.New("device unplugged")

// Conn is one open instance of a fake device.
type Conn struct {
	Dir contracts.Direction

	mu         sync.Mutex
	pending    bytes.Buffer
	written    [][]byte
	writeLimit int
	probeErr   error
	closed     bool
}

// Feed makes data available to Read.
func (c *Conn) Feed(data ...byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.Write(data)
}

// Pending returns the number of bytes not yet read.
func (c *Conn) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Len()
}

// LimitWrites makes every later Write accept at most n bytes.
func (c *Conn) LimitWrites(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLimit = n
}

// Written returns a copy of every Write call's accepted data.
func (c *Conn) Written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.written))
	copy(out, c.written)
	return out
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending.Len() == 0 {
		return 0, nil
	}
	return c.pending.Read(p)
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, os.ErrClosed
	}
	n := len(p)
	if c.writeLimit > 0 && n > c.writeLimit {
		n = c.writeLimit
	}
	c.written = append(c.written, append([]byte(nil), p[:n]...))
	return n, nil
}

func (c *Conn) Probe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.probeErr
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Conn) unplug() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probeErr = ErrUnplugged
}

// Opener hands out Conns for paths that are currently plugged in.
type Opener struct {
	mu      sync.Mutex
	present map[string]bool
	conns   map[string][]*Conn
	opens   int
}

var _ contracts.DeviceOpener = (*Opener)(nil)

// NewOpener returns an opener with the given paths plugged in.
func NewOpener(paths ...string) *Opener {
	o := &Opener{present: make(map[string]bool), conns: make(map[string][]*Conn)}
	for _, p := range paths {
		o.present[p] = true
	}
	return o
}

func (o *Opener) Open(path string, dir contracts.Direction) (contracts.DeviceConn, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if !o.present[path] {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	c := &Conn{Dir: dir}
	o.conns[path] = append(o.conns[path], c)
	return c, nil
}

// Plug makes path openable again.
func (o *Opener) Plug(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.present[path] = true
}

// Unplug removes path and makes every Conn opened on it fail Probe.
func (o *Opener) Unplug(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.present, path)
	for _, c := range o.conns[path] {
		c.unplug()
	}
}

// Opens returns the number of Open calls so far.
func (o *Opener) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

// Last returns the most recent Conn opened on path for dir, or nil.
func (o *Opener) Last(path string, dir contracts.Direction) *Conn {
	o.mu.Lock()
	defer o.mu.Unlock()
	conns := o.conns[path]
	for i := len(conns) - 1; i >= 0; i-- {
		if conns[i].Dir == dir {
			return conns[i]
		}
	}
	return nil
}

//go:build cgo
// +build cgo

package hostjack

import (
	"fmt"
	"sync"

	"github.com/hselasky/jack-umidi/sdk/contracts"
	"github.com/xthexder/go-jack"
)

// Client attaches to a running JACK server as one client.
type Client struct {
	logger contracts.Logger
	client *jack.Client

	mu       sync.Mutex
	shutdown []func()
	closed   bool
}

var _ contracts.Host = (*Client)(nil)

// Open connects to the JACK server under name. The server is never started
// on demand.
func Open(name string, logger contracts.Logger) (*Client, error) {
	client, status := jack.ClientOpen(name, jack.NoStartServer)
	if err := openError(name, client != nil, int(status)); err != nil {
		if client != nil {
			client.Close()
		}
		return nil, err
	}
	c := &Client{logger: logger, client: client}
	logOpenStatus(logger, name, c.Name(), int(status))
	client.OnShutdown(c.onShutdown)
	logger.Info("JACK client opened", logger.Field().String("client", c.Name()))
	return c, nil
}

// Name returns the name the server actually assigned.
func (c *Client) Name() string {
	return c.client.GetName()
}

func (c *Client) RegisterOutput(name string) (contracts.MIDIOutput, error) {
	port := c.client.PortRegister(name, jack.DEFAULT_MIDI_TYPE, jack.PortIsOutput, 0)
	if port == nil {
		return nil, fmt.Errorf("%w: %s", contracts.ErrPortRegister, name)
	}
	return &outputPort{name: name, port: port}, nil
}

func (c *Client) RegisterInput(name string) (contracts.MIDIInput, error) {
	port := c.client.PortRegister(name, jack.DEFAULT_MIDI_TYPE, jack.PortIsInput, 0)
	if port == nil {
		return nil, fmt.Errorf("%w: %s", contracts.ErrPortRegister, name)
	}
	return &inputPort{name: name, port: port}, nil
}

func (c *Client) SetProcess(fn contracts.ProcessFunc) error {
	if code := c.client.SetProcessCallback(func(nframes uint32) int { return fn(nframes) }); code != 0 {
		return fmt.Errorf("%w: process callback: status %d", contracts.ErrActivate, code)
	}
	return nil
}

// OnShutdown registers fn to run when the server shuts the client down.
func (c *Client) OnShutdown(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = append(c.shutdown, fn)
}

func (c *Client) onShutdown() {
	c.mu.Lock()
	fns := c.shutdown
	c.mu.Unlock()

	c.logger.Warn("JACK server shut down the client")
	for _, fn := range fns {
		fn()
	}
}

func (c *Client) Activate() error {
	if code := c.client.Activate(); code != 0 {
		return fmt.Errorf("%w: status %d", contracts.ErrActivate, code)
	}
	return nil
}

// Close deactivates and closes the client. Calling it twice is harmless.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if code := c.client.Close(); code != 0 {
		return fmt.Errorf("closing JACK client: status %d", code)
	}
	return nil
}

type outputPort struct {
	name string
	port *jack.Port
	buf  jack.MidiBuffer
	ev   jack.MidiData
}

func (p *outputPort) Name() string { return p.name }

func (p *outputPort) Clear(nframes uint32) {
	p.buf = p.port.MidiClearBuffer(nframes)
}

func (p *outputPort) Write(t uint32, data []byte) bool {
	p.ev.Time = t
	p.ev.Buffer = data
	return p.port.MidiEventWrite(&p.ev, p.buf) == 0
}

type inputPort struct {
	name string
	port *jack.Port
}

func (p *inputPort) Name() string { return p.name }

func (p *inputPort) ForEach(nframes uint32, fn func(data []byte)) {
	for _, ev := range p.port.GetMidiEvents(nframes) {
		fn(ev.Buffer)
	}
}

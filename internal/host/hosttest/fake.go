// Package hosttest provides an in-memory audio server for tests.
package hosttest

import (
	"fmt"
	"sync"

	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// Event is one MIDI event written to an output port.
type Event struct {
	Time uint32
	Data []byte
}

// Output records the events written in the last cycle.
type Output struct {
	name string

	mu     sync.Mutex
	limit  int
	events []Event
}

func (o *Output) Name() string { return o.name }

func (o *Output) Clear(nframes uint32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = o.events[:0]
}

func (o *Output) Write(t uint32, data []byte) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.limit > 0 && len(o.events) >= o.limit {
		return false
	}
	o.events = append(o.events, Event{Time: t, Data: append([]byte(nil), data...)})
	return true
}

// SetLimit caps the number of events per cycle; zero means unlimited.
func (o *Output) SetLimit(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.limit = n
}

// Events returns the events of the last cycle.
func (o *Output) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Event(nil), o.events...)
}

// Input delivers queued events on the next cycle.
type Input struct {
	name string

	mu     sync.Mutex
	queued [][]byte
}

func (i *Input) Name() string { return i.name }

// Queue adds one event for the next cycle.
func (i *Input) Queue(data ...byte) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.queued = append(i.queued, data)
}

func (i *Input) ForEach(nframes uint32, fn func(data []byte)) {
	i.mu.Lock()
	queued := i.queued
	i.queued = nil
	i.mu.Unlock()
	for _, data := range queued {
		fn(data)
	}
}

// Host is a fake contracts.Host.
type Host struct {
	ClientName   string
	FailRegister string // port name whose registration fails
	FailActivate bool

	mu       sync.Mutex
	outputs  []*Output
	inputs   []*Input
	process  contracts.ProcessFunc
	shutdown []func()
	active   bool
	closed   bool
}

var _ contracts.Host = (*Host)(nil)

// New returns a fake host named name.
func New(name string) *Host {
	return &Host{ClientName: name}
}

func (h *Host) Name() string { return h.ClientName }

func (h *Host) RegisterOutput(name string) (contracts.MIDIOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if name == h.FailRegister {
		return nil, fmt.Errorf("%w: %s", contracts.ErrPortRegister, name)
	}
	o := &Output{name: name}
	h.outputs = append(h.outputs, o)
	return o, nil
}

func (h *Host) RegisterInput(name string) (contracts.MIDIInput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if name == h.FailRegister {
		return nil, fmt.Errorf("%w: %s", contracts.ErrPortRegister, name)
	}
	in := &Input{name: name}
	h.inputs = append(h.inputs, in)
	return in, nil
}

func (h *Host) SetProcess(fn contracts.ProcessFunc) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.process = fn
	return nil
}

func (h *Host) OnShutdown(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = append(h.shutdown, fn)
}

func (h *Host) Activate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailActivate {
		return contracts.ErrActivate
	}
	h.active = true
	return nil
}

func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = false
	h.closed = true
	return nil
}

// Cycle runs one process cycle of nframes frames.
func (h *Host) Cycle(nframes uint32) int {
	h.mu.Lock()
	fn, active := h.process, h.active
	h.mu.Unlock()
	if fn == nil || !active {
		return 0
	}
	return fn(nframes)
}

// Shutdown simulates the server going away.
func (h *Host) Shutdown() {
	h.mu.Lock()
	fns := h.shutdown
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Output returns the registered output port called name, or nil.
func (h *Host) Output(name string) *Output {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range h.outputs {
		if o.name == name {
			return o
		}
	}
	return nil
}

// Input returns the registered input port called name, or nil.
func (h *Host) Input(name string) *Input {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, in := range h.inputs {
		if in.name == name {
			return in
		}
	}
	return nil
}

// Outputs returns the names of the registered output ports in order.
func (h *Host) Outputs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, len(h.outputs))
	for i, o := range h.outputs {
		names[i] = o.name
	}
	return names
}

// Active reports whether the host was activated and not closed.
func (h *Host) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Closed reports whether Close was called.
func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

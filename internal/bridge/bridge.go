// Package bridge moves MIDI between a raw device and audio-server ports.
//
// Process runs on the audio server's real-time thread once per cycle: it
// drains the capture device into the output ports, then writes the events
// queued on the input port to the playback device. Run drives the device
// watchdog on its own goroutine.
package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/hselasky/jack-umidi/internal/device"
	"github.com/hselasky/jack-umidi/internal/parser"
	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// Config holds everything a Bridge is built from.
type Config struct {
	Ports        Ports
	Devices      *device.Manager
	Logger       contracts.Logger
	PollInterval time.Duration
}

// Bridge owns the capture parser, the ports and the device manager.
type Bridge struct {
	parser   *parser.Parser
	ports    Ports
	devices  *device.Manager
	logger   contracts.Logger
	debug    bool // sampled at the start of each Process call
	interval time.Duration

	writeEvent func(data []byte)

	done     chan struct{}
	doneOnce sync.Once
}

// New returns a Bridge.
func New(cfg Config) *Bridge {
	b := &Bridge{
		parser:   parser.New(0),
		ports:    cfg.Ports,
		devices:  cfg.Devices,
		logger:   cfg.Logger,
		interval: cfg.PollInterval,
		done:     make(chan struct{}),
	}
	b.writeEvent = b.playbackEvent
	return b
}

// Process is the real-time callback. The logger level is read once per
// call, so debug output follows SetLevel from the next cycle on.
func (b *Bridge) Process(nframes uint32) int {
	if nframes == 0 {
		return 0
	}
	b.debug = b.logger.Enabled(contracts.DebugLevel)
	b.capture(nframes)
	b.playback(nframes)
	return 0
}

// Run polls the devices until ctx is done or the bridge is shut down.
func (b *Bridge) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-b.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return b.devices.Run(ctx, b.interval)
}

// Shutdown marks the bridge as stopped by the audio server.
func (b *Bridge) Shutdown() {
	b.doneOnce.Do(func() { close(b.done) })
}

// Done is closed by Shutdown.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Close releases both devices and ends Run. The caller must make sure
// Process is no longer being called.
func (b *Bridge) Close() error {
	return b.devices.Close()
}

package contracts

import "context"

// Bridge connects a raw MIDI device to the audio server's port graph.
type Bridge interface {
	// Run polls the devices until ctx is done or the bridge is closed. It
	// returns ErrDeviceLost early when kill-on-loss is enabled and an open
	// device disappears.
	Run(ctx context.Context) error
	// Done is closed when the audio server shuts the client down.
	Done() <-chan struct{}
	// Close deactivates the client and releases both devices. A running
	// Run returns and does not reopen them.
	Close() error
}

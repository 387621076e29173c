package contracts

// ProcessFunc is invoked by the audio server once per cycle with the number
// of frames in the cycle. It must not block.
type ProcessFunc func(nframes uint32) int

// MIDIOutput is an audio-server MIDI port written by the bridge.
type MIDIOutput interface {
	Name() string
	// Clear empties the port buffer for the current cycle.
	Clear(nframes uint32)
	// Write queues data at frame offset t. It returns false when the port
	// buffer has no room left for this cycle.
	Write(t uint32, data []byte) bool
}

// MIDIInput is an audio-server MIDI port read by the bridge.
type MIDIInput interface {
	Name() string
	// ForEach calls fn for every event queued on the port this cycle. The
	// data slice is only valid for the duration of the call.
	ForEach(nframes uint32, fn func(data []byte))
}

// Host is the narrow view of the audio server used by the bridge.
type Host interface {
	Name() string
	RegisterOutput(name string) (MIDIOutput, error)
	RegisterInput(name string) (MIDIInput, error)
	SetProcess(fn ProcessFunc) error
	OnShutdown(fn func())
	Activate() error
	Close() error
}

package contracts

// Direction selects which side of the device a connection serves.
type Direction int

const (
	// Capture reads bytes from the device (non-blocking).
	Capture Direction = iota
	// Playback writes bytes to the device (blocking).
	Playback
)

func (d Direction) String() string {
	if d == Capture {
		return "capture"
	}
	return "playback"
}

// DeviceConn is an open device descriptor for one direction.
type DeviceConn interface {
	// Read returns the bytes available without blocking. It returns 0 and a
	// nil error when nothing is pending.
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	// Probe re-applies the expected mode to the descriptor. An error means
	// the device is gone.
	Probe() error
	Close() error
}

// DeviceOpener opens device paths for a direction.
type DeviceOpener interface {
	Open(path string, dir Direction) (DeviceConn, error)
}

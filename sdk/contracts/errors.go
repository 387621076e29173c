package contracts

import "errors"

// Error definitions shared by the bridge, its devices and the audio server.
var (
	ErrNoDevice        = errors.New("no capture or playback device configured")
	ErrHostUnavailable = errors.New("could not connect to the audio server")
	ErrPortRegister    = errors.New("could not register audio-server port")
	ErrActivate        = errors.New("could not activate audio-server client")
	ErrDeviceLost      = errors.New("MIDI device lost")
	ErrUnsupportedOS   = errors.New("unsupported operating system")
	ErrPrivilegeDrop   = errors.New("could not drop privileges")
)

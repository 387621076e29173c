package contracts

import "time"

// DefaultPollInterval is how often the watchdog checks the device paths.
const DefaultPollInterval = time.Second

// BridgeOptions defines the configuration options for the bridge.
type BridgeOptions struct {
	Logger       Logger        // Logger for logging events and errors.
	LogLevel     LogLevel      // Level of logging to use.
	LogFilePath  string        // File path for logging if file logging is enabled.
	CapturePath  string        // Device read for capture, empty disables the output port.
	PlaybackPath string        // Device written for playback, empty disables the input port.
	SubPorts     bool          // Register one extra output port per MIDI channel.
	ClientName   string        // Audio-server client name override.
	KillOnLoss   bool          // Stop the bridge when an open device disappears.
	PollInterval time.Duration // Watchdog period.
	BaudRate     int           // Open devices as serial lines at this rate when non-zero.
	Host         Host          // Audio server to attach to; JACK when nil.
	Opener       DeviceOpener  // Device opener; chosen from BaudRate when nil.
}

// Option is a function that modifies BridgeOptions.
type Option func(*BridgeOptions)

// WithLogger sets the logger for the bridge.
func WithLogger(l Logger) Option {
	return func(opts *BridgeOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the bridge.
func WithLogLevel(level LogLevel) Option {
	return func(opts *BridgeOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends log output to the given file.
func WithLogFile(path string) Option {
	return func(opts *BridgeOptions) {
		opts.LogFilePath = path
	}
}

// WithDevice sets both the capture and the playback device.
func WithDevice(path string) Option {
	return func(opts *BridgeOptions) {
		opts.CapturePath = path
		opts.PlaybackPath = path
	}
}

// WithCaptureDevice sets the device read for capture.
func WithCaptureDevice(path string) Option {
	return func(opts *BridgeOptions) {
		opts.CapturePath = path
	}
}

// WithPlaybackDevice sets the device written for playback.
func WithPlaybackDevice(path string) Option {
	return func(opts *BridgeOptions) {
		opts.PlaybackPath = path
	}
}

// WithSubPorts enables the per-channel output ports.
func WithSubPorts(enabled bool) Option {
	return func(opts *BridgeOptions) {
		opts.SubPorts = enabled
	}
}

// WithClientName overrides the audio-server client name.
func WithClientName(name string) Option {
	return func(opts *BridgeOptions) {
		opts.ClientName = name
	}
}

// WithKillOnLoss makes the bridge stop when an open device disappears.
func WithKillOnLoss(enabled bool) Option {
	return func(opts *BridgeOptions) {
		opts.KillOnLoss = enabled
	}
}

// WithPollInterval sets the watchdog period.
func WithPollInterval(d time.Duration) Option {
	return func(opts *BridgeOptions) {
		opts.PollInterval = d
	}
}

// WithBaudRate opens the devices as serial lines at the given rate.
func WithBaudRate(baud int) Option {
	return func(opts *BridgeOptions) {
		opts.BaudRate = baud
	}
}

// WithHost attaches the bridge to the given audio server.
func WithHost(h Host) Option {
	return func(opts *BridgeOptions) {
		opts.Host = h
	}
}

// WithDeviceOpener replaces the device opener.
func WithDeviceOpener(o DeviceOpener) Option {
	return func(opts *BridgeOptions) {
		opts.Opener = o
	}
}

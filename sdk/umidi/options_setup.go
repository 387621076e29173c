package umidi

import (
	"strings"
	"unicode/utf8"

	"github.com/hselasky/jack-umidi/internal/device"
	"github.com/hselasky/jack-umidi/internal/logger"
	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// ClientNamePrefix starts every derived audio-server client name.
const ClientNamePrefix = "jack_umidi-"

// MaxClientNameLen is the longest client name the audio server accepts, in bytes.
const MaxClientNameLen = 63

// ClientName derives the audio-server client name from a device path,
// e.g. /dev/umidi0.0 becomes jack_umidi-umidi0.0. Long names are cut to
// MaxClientNameLen bytes on a rune boundary.
func ClientName(path string) string {
	name := ClientNamePrefix + strings.TrimPrefix(path, "/dev/")
	if len(name) <= MaxClientNameLen {
		return name
	}
	n := MaxClientNameLen
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n]
}

// applyDefaultOptions sets default values for BridgeOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify BridgeOptions.
//
// Returns:
//   - contracts.BridgeOptions: The finalized options with defaults applied.
//   - error: contracts.ErrNoDevice when neither direction has a device, or a
//     log file error.
func applyDefaultOptions(opts ...contracts.Option) (contracts.BridgeOptions, error) {
	options := &contracts.BridgeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.CapturePath == "" && options.PlaybackPath == "" {
		return contracts.BridgeOptions{}, contracts.ErrNoDevice
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogFilePath != "" {
		if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
			return contracts.BridgeOptions{}, err
		}
	}
	if options.PollInterval <= 0 {
		options.PollInterval = contracts.DefaultPollInterval
	}
	if options.ClientName == "" {
		path := options.CapturePath
		if path == "" {
			path = options.PlaybackPath
		}
		options.ClientName = ClientName(path)
	}
	if options.Opener == nil {
		options.Opener = device.NewOpener(options.BaudRate)
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}

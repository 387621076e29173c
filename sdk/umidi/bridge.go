package umidi

import (
	"sync"

	"github.com/hselasky/jack-umidi/internal/bridge"
	"github.com/hselasky/jack-umidi/internal/device"
	"github.com/hselasky/jack-umidi/sdk/contracts"
	"go.uber.org/multierr"
)

// NewBridge creates an active bridge between a raw MIDI device and the
// audio server.
//
// opts ...contracts.Option: A variadic list of option functions to customize the bridge.
//
// Returns:
//   - contracts.Bridge: The running bridge; call Run to start the device watchdog.
//   - error: contracts.ErrNoDevice, or an audio-server error wrapping
//     ErrHostUnavailable, ErrPortRegister or ErrActivate.
func NewBridge(opts ...contracts.Option) (contracts.Bridge, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	host := options.Host
	if host == nil {
		if host, err = NewHost(options.ClientName, options.Logger); err != nil {
			return nil, err
		}
	}

	b, err := attach(host, &options)
	if err != nil {
		return nil, multierr.Append(err, host.Close())
	}
	return b, nil
}

// hostBridge ties a bridge to the audio-server client it runs in.
type hostBridge struct {
	*bridge.Bridge
	host      contracts.Host
	closeOnce sync.Once
	closeErr  error
}

func attach(host contracts.Host, options *contracts.BridgeOptions) (*hostBridge, error) {
	ports, err := bridge.RegisterPorts(host, options.CapturePath != "", options.PlaybackPath != "", options.SubPorts)
	if err != nil {
		return nil, err
	}

	devices := device.NewManager(device.Config{
		CapturePath:  options.CapturePath,
		PlaybackPath: options.PlaybackPath,
		KillOnLoss:   options.KillOnLoss,
		Opener:       options.Opener,
		Logger:       options.Logger,
	})
	b := bridge.New(bridge.Config{
		Ports:        ports,
		Devices:      devices,
		Logger:       options.Logger,
		PollInterval: options.PollInterval,
	})

	if err := host.SetProcess(b.Process); err != nil {
		return nil, err
	}
	host.OnShutdown(b.Shutdown)
	if err := host.Activate(); err != nil {
		return nil, err
	}

	options.Logger.Info("bridge active",
		options.Logger.Field().String("client", host.Name()),
		options.Logger.Field().String("capture", options.CapturePath),
		options.Logger.Field().String("playback", options.PlaybackPath),
		options.Logger.Field().Bool("sub_ports", options.SubPorts))
	return &hostBridge{Bridge: b, host: host}, nil
}

// Close stops the audio-server client first so no process callback runs
// while the devices are released.
func (b *hostBridge) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = multierr.Combine(b.host.Close(), b.Bridge.Close())
	})
	return b.closeErr
}

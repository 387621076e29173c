package bridge

import (
	"fmt"

	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// Port names as seen in the audio server's graph.
const (
	OutputPortName = "midi.TX"
	InputPortName  = "midi.RX"
)

// Channels is the number of per-channel output ports.
const Channels = 16

// SubPortName returns the name of the output port for MIDI channel ch
// (0-15). Port names count channels from 1.
func SubPortName(ch int) string {
	return fmt.Sprintf("%s.ch%d", OutputPortName, ch+1)
}

// Ports is the set of audio-server ports a bridge writes to and reads from.
// It is fixed once the bridge is built.
type Ports struct {
	Output contracts.MIDIOutput           // nil when capture is disabled
	Sub    [Channels]contracts.MIDIOutput // all nil unless sub-ports are enabled
	Input  contracts.MIDIInput            // nil when playback is disabled
}

// RegisterPorts registers the ports needed for the enabled directions.
func RegisterPorts(host contracts.Host, capture, playback, subPorts bool) (Ports, error) {
	var ports Ports
	var err error

	if capture {
		if ports.Output, err = host.RegisterOutput(OutputPortName); err != nil {
			return Ports{}, err
		}
		if subPorts {
			for ch := range ports.Sub {
				if ports.Sub[ch], err = host.RegisterOutput(SubPortName(ch)); err != nil {
					return Ports{}, err
				}
			}
		}
	}
	if playback {
		if ports.Input, err = host.RegisterInput(InputPortName); err != nil {
			return Ports{}, err
		}
	}
	return ports, nil
}

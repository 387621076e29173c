package bridge

import (
	"github.com/hselasky/jack-umidi/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// capture drains the device into the output ports. Each port has its own
// frame cursor; a port that refuses a write is skipped for the rest of the
// cycle while draining goes on.
func (b *Bridge) capture(nframes uint32) {
	out := b.ports.Output
	if out == nil {
		return
	}

	out.Clear(nframes)
	for _, sub := range b.ports.Sub {
		if sub != nil {
			sub.Clear(nframes)
		}
	}

	var (
		t0      uint32
		full    bool
		subT    [Channels]uint32
		subFull [Channels]bool
	)
	for t0 < nframes {
		c, ok := b.devices.NextByte()
		if !ok {
			break
		}
		pkt, ok := b.parser.Advance(c)
		if !ok || pkt.Len() == 0 {
			continue
		}
		data := pkt.Bytes()

		if b.debug {
			b.logger.Debug("captured",
				b.logger.Field().String("message", midi.Message(data).String()),
				b.logger.Field().Bytes("data", data),
				b.logger.Field().Uint8("cin", pkt.CIN()))
		}

		if !full && out.Write(t0, data) {
			t0++
		} else {
			full = true
			b.dropped(out, data)
		}

		if !pkt.IsChannelMessage() {
			continue
		}
		ch := pkt.Channel()
		sub := b.ports.Sub[ch]
		if sub == nil {
			continue
		}
		if !subFull[ch] && subT[ch] < nframes && sub.Write(subT[ch], data) {
			subT[ch]++
		} else {
			subFull[ch] = true
			b.dropped(sub, data)
		}
	}
}

func (b *Bridge) dropped(port contracts.MIDIOutput, data []byte) {
	if !b.debug {
		return
	}
	b.logger.Debug("output port full, event dropped",
		b.logger.Field().String("port", port.Name()),
		b.logger.Field().Bytes("data", data))
}

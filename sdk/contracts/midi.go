package contracts

// Packet is one framed MIDI command in the 4-byte USB-MIDI event layout.
//
// Byte 0 holds the cable number in the high nibble and the code index
// number (CIN) in the low nibble. Bytes 1-3 carry up to three MIDI bytes,
// zero padded. Only the MIDI bytes are ever handed to the audio server.
type Packet [4]byte

// cinLength maps a code index number to the number of MIDI bytes it carries.
var cinLength = [16]uint8{
	0x0: 0, // reserved
	0x1: 0, // reserved
	0x2: 2, // two-byte system common
	0x3: 3, // three-byte system common
	0x4: 3, // sysex start or continue
	0x5: 1, // single-byte system common or sysex end
	0x6: 2, // sysex end with two bytes
	0x7: 3, // sysex end with three bytes
	0x8: 3, // note off
	0x9: 3, // note on
	0xA: 3, // poly key pressure
	0xB: 3, // control change
	0xC: 2, // program change
	0xD: 2, // channel pressure
	0xE: 3, // pitch bend
	0xF: 1, // single byte
}

// CINLength returns the payload length for a code index number.
func CINLength(cin byte) int {
	return int(cinLength[cin&0x0F])
}

// Cable returns the virtual cable (channel tag) the packet belongs to.
func (p Packet) Cable() byte { return p[0] >> 4 }

// CIN returns the code index number.
func (p Packet) CIN() byte { return p[0] & 0x0F }

// Status returns the first MIDI byte of the packet. For sysex continuation
// chunks this is a data byte.
func (p Packet) Status() byte { return p[1] }

// Len returns the number of MIDI bytes carried, 0 for reserved codes.
func (p Packet) Len() int { return CINLength(p[0]) }

// Bytes returns the MIDI bytes carried by the packet. The slice aliases p.
func (p *Packet) Bytes() []byte { return p[1 : 1+p.Len()] }

// IsChannelMessage reports whether the packet is a channel voice message
// (status 0x80-0xEF) whose channel nibble can be used for routing.
func (p Packet) IsChannelMessage() bool {
	cin := p.CIN()
	return cin >= 0x8 && cin <= 0xE && p[1] >= 0x80 && p[1] <= 0xEF
}

// Channel returns the MIDI channel 0-15 of a channel voice message.
func (p Packet) Channel() byte { return p[1] & 0x0F }

// Parser converts a raw MIDI byte stream into packets one byte at a time.
type Parser interface {
	// Advance consumes one byte and returns a packet when a command completes.
	Advance(b byte) (Packet, bool)
}

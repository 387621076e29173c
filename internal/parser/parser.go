// Package parser turns a raw MIDI byte stream into USB-MIDI style packets.
//
// The state machine follows the conversion used by USB MIDI class drivers:
// running status is honoured, system real-time bytes may appear anywhere,
// and system exclusive data is cut into 3-byte chunks. Framing errors are
// never reported; the parser resynchronises on the next status byte.
package parser

import "github.com/hselasky/jack-umidi/sdk/contracts"

// Phase is the state of the parser between bytes.
type Phase uint8

const (
	Idle           Phase = iota // waiting for a status byte
	OneParam                    // status latched, one data byte expected
	TwoParamFirst               // status latched, first of two data bytes expected
	TwoParamSecond              // second of two data bytes expected
	SysexFirst                  // sysex run, chunk empty
	SysexSecond                 // sysex run, one byte in chunk
	SysexThird                  // sysex run, two bytes in chunk
)

var phaseNames = [...]string{"idle", "1param", "2param-1", "2param-2", "sysex-0", "sysex-1", "sysex-2"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "invalid"
}

// Code index numbers used by the parser.
const (
	cinSystem2    = 0x2
	cinSystem3    = 0x3
	cinSysexStart = 0x4
	cinSingle     = 0x5 // also sysex end with one byte
	cinSysexEnd2  = 0x6
	cinSysexEnd3  = 0x7
	cinRealtime   = 0xF
)

// Parser holds the framing state of one byte stream. The zero value is an
// idle parser for cable 0.
type Parser struct {
	cable   uint8
	phase   Phase
	pending contracts.Packet
}

var _ contracts.Parser = (*Parser)(nil)

// New returns an idle parser tagging its packets with the given cable.
func New(cable uint8) *Parser {
	return &Parser{cable: cable & 0x0F}
}

// Phase returns the current state.
func (p *Parser) Phase() Phase { return p.phase }

// Advance consumes one byte. It returns a completed packet and true, or a
// zero packet and false when more bytes are needed.
func (p *Parser) Advance(b byte) (contracts.Packet, bool) {
	p0 := p.cable << 4

	switch {
	case b >= 0xF8:
		// Real-time bytes never touch the pending command.
		return contracts.Packet{p0 | cinRealtime, b, 0, 0}, true

	case b >= 0xF0:
		return p.system(p0, b)

	case b >= 0x80:
		p.pending[1] = b
		if b >= 0xC0 && b <= 0xDF {
			p.phase = OneParam
		} else {
			p.phase = TwoParamFirst
		}
		return contracts.Packet{}, false
	}

	switch p.phase {
	case OneParam:
		if p.pending[1] < 0xF0 {
			p0 |= p.pending[1] >> 4
		} else {
			p0 |= cinSystem2
			p.phase = Idle
		}
		p.pending[0] = p0
		p.pending[2] = b
		p.pending[3] = 0
		return p.pending, true

	case TwoParamFirst:
		p.pending[2] = b
		p.phase = TwoParamSecond

	case TwoParamSecond:
		if p.pending[1] < 0xF0 {
			p0 |= p.pending[1] >> 4
			p.phase = TwoParamFirst
		} else {
			p0 |= cinSystem3
			p.phase = Idle
		}
		p.pending[0] = p0
		p.pending[3] = b
		return p.pending, true

	case SysexFirst:
		p.pending[1] = b
		p.phase = SysexSecond

	case SysexSecond:
		p.pending[2] = b
		p.phase = SysexThird

	case SysexThird:
		p.pending[0] = p0 | cinSysexStart
		p.pending[3] = b
		p.phase = SysexFirst
		return p.pending, true
	}
	return contracts.Packet{}, false
}

// system handles 0xF0-0xF7.
func (p *Parser) system(p0, b byte) (contracts.Packet, bool) {
	switch b {
	case 0xF0: // sysex begin
		p.pending[1] = b
		p.phase = SysexSecond

	case 0xF1, 0xF3: // time code quarter frame, song select
		p.pending[1] = b
		p.phase = OneParam

	case 0xF2: // song position pointer
		p.pending[1] = b
		p.phase = TwoParamFirst

	case 0xF4, 0xF5: // undefined
		p.phase = Idle

	case 0xF6: // tune request
		p.pending = contracts.Packet{p0 | cinSingle, b, 0, 0}
		p.phase = Idle
		return p.pending, true

	case 0xF7: // sysex end
		switch p.phase {
		case SysexFirst:
			p.pending = contracts.Packet{p0 | cinSingle, b, 0, 0}
		case SysexSecond:
			p.pending[0] = p0 | cinSysexEnd2
			p.pending[2] = b
			p.pending[3] = 0
		case SysexThird:
			p.pending[0] = p0 | cinSysexEnd3
			p.pending[3] = b
		default:
			p.phase = Idle
			return contracts.Packet{}, false
		}
		p.phase = Idle
		return p.pending, true
	}
	return contracts.Packet{}, false
}

package umidi

import (
	"github.com/hselasky/jack-umidi/internal/parser"
	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// NewParser returns a byte stream parser tagging packets with cable.
func NewParser(cable uint8) contracts.Parser {
	return parser.New(cable)
}

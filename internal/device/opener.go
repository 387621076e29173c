package device

import "github.com/hselasky/jack-umidi/sdk/contracts"

// NewOpener picks the device backend: serial lines when baud is set, plain
// character devices otherwise.
func NewOpener(baud int) contracts.DeviceOpener {
	if baud > 0 {
		return NewSerialOpener(baud)
	}
	return FileOpener{}
}

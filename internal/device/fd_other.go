//go:build !unix
// +build !unix

package device

import (
	"fmt"
	"runtime"

	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// FileOpener is a stand-in for systems without character devices. Serial
// lines still work through SerialOpener.
type FileOpener struct{}

var _ contracts.DeviceOpener = FileOpener{}

func (FileOpener) Open(path string, dir contracts.Direction) (contracts.DeviceConn, error) {
	return nil, fmt.Errorf("%w: %s: raw device %s", contracts.ErrUnsupportedOS, runtime.GOOS, path)
}

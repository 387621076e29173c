//go:build !unix
// +build !unix

package main

import (
	"fmt"
	"runtime"

	"github.com/hselasky/jack-umidi/sdk/contracts"
)

func detached() bool { return false }

func detach() error {
	return fmt.Errorf("background mode not available on %s", runtime.GOOS)
}

func dropPrivileges(name string) error {
	return fmt.Errorf("%w: %w on %s", contracts.ErrPrivilegeDrop, contracts.ErrUnsupportedOS, runtime.GOOS)
}

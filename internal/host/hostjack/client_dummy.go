//go:build !cgo
// +build !cgo

package hostjack

import (
	"fmt"

	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// Client is never returned without cgo; the JACK library cannot be linked.
type Client struct {
	contracts.Host
}

func Open(name string, logger contracts.Logger) (*Client, error) {
	logger.Warn("JACK support not compiled in", logger.Field().String("client", name))
	return nil, fmt.Errorf("%w: built without cgo", contracts.ErrHostUnavailable)
}

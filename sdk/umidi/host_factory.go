package umidi

import (
	"github.com/hselasky/jack-umidi/internal/host/hostjack"
	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// NewHost connects to the JACK server as client name. Without cgo it
// returns an error wrapping contracts.ErrHostUnavailable.
func NewHost(name string, logger contracts.Logger) (contracts.Host, error) {
	client, err := hostjack.Open(name, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

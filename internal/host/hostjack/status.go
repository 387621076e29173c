package hostjack

import (
	"fmt"

	"github.com/hselasky/jack-umidi/sdk/contracts"
)

// jack_status_t bits that still come with a usable client.
const (
	statusNameNotUnique = 0x04
	statusServerStarted = 0x08
)

// openError reports a jack_client_open failure. Only a missing client is an
// error; a status on a live client is informational.
func openError(name string, opened bool, status int) error {
	if opened {
		return nil
	}
	return fmt.Errorf("%w: %s: status %#x", contracts.ErrHostUnavailable, name, status)
}

// logOpenStatus logs the status bits of a successful open, if any.
func logOpenStatus(logger contracts.Logger, requested, assigned string, status int) {
	if status == 0 {
		return
	}
	logger.Info("JACK client opened with status",
		logger.Field().String("requested", requested),
		logger.Field().String("client", assigned),
		logger.Field().String("status", fmt.Sprintf("%#x", status)),
		logger.Field().Bool("name_not_unique", status&statusNameNotUnique != 0),
		logger.Field().Bool("server_started", status&statusServerStarted != 0))
}

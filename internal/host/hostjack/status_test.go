package hostjack

import (
	"testing"

	"github.com/hselasky/jack-umidi/internal/logger"
	"github.com/hselasky/jack-umidi/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOpenError(t *testing.T) {
	tests := []struct {
		name   string
		opened bool
		status int
		fail   bool
	}{
		{name: "clean", opened: true, status: 0},
		{name: "renamed", opened: true, status: statusNameNotUnique},
		{name: "server started", opened: true, status: statusServerStarted},
		{name: "no server", opened: false, status: 0x11, fail: true},
		{name: "no client without status", opened: false, status: 0, fail: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := openError("jack_umidi-umidi0.0", test.opened, test.status)
			if test.fail {
				assert.ErrorIs(t, err, contracts.ErrHostUnavailable)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLogOpenStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewWithCore(core)

	logOpenStatus(log, "jack_umidi-umidi0.0", "jack_umidi-umidi0.0", 0)
	assert.Zero(t, logs.Len())

	logOpenStatus(log, "jack_umidi-umidi0.0", "jack_umidi-umidi0.0-01", statusNameNotUnique)
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "jack_umidi-umidi0.0-01", fields["client"])
		assert.Equal(t, true, fields["name_not_unique"])
		assert.Equal(t, false, fields["server_started"])
	}
}

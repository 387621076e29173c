package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hselasky/jack-umidi/internal/logger"
	"github.com/hselasky/jack-umidi/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want config
	}{
		{
			name: "joint device",
			args: []string{"-d", "/dev/umidi0.0"},
			want: config{capture: "/dev/umidi0.0", playback: "/dev/umidi0.0", poll: time.Second},
		},
		{
			name: "capture override after device",
			args: []string{"-d", "/dev/umidi0.0", "-C", "/dev/umidi1.0"},
			want: config{capture: "/dev/umidi1.0", playback: "/dev/umidi0.0", poll: time.Second},
		},
		{
			name: "playback before device",
			args: []string{"-P", "/dev/umidi2.0", "-d", "/dev/umidi0.0"},
			want: config{capture: "/dev/umidi0.0", playback: "/dev/umidi0.0", poll: time.Second},
		},
		{
			name: "playback after device",
			args: []string{"-d", "/dev/umidi0.0", "-P", "/dev/umidi2.0"},
			want: config{capture: "/dev/umidi0.0", playback: "/dev/umidi2.0", poll: time.Second},
		},
		{
			name: "separate directions",
			args: []string{"-C", "/dev/umidi1.0", "-P", "/dev/umidi2.0"},
			want: config{capture: "/dev/umidi1.0", playback: "/dev/umidi2.0", poll: time.Second},
		},
		{
			name: "capture only",
			args: []string{"-C", "/dev/umidi0.0"},
			want: config{capture: "/dev/umidi0.0", poll: time.Second},
		},
		{
			name: "everything",
			args: []string{"-BkSv", "-d", "/dev/cuaU0", "-n", "synth", "-U", "nobody",
				"--baud", "31250", "--poll", "250ms", "--log-file", "/tmp/u.log"},
			want: config{
				capture: "/dev/cuaU0", playback: "/dev/cuaU0", subPorts: true,
				clientName: "synth", background: true, killOnLoss: true, user: "nobody",
				baud: 31250, poll: 250 * time.Millisecond, debug: true, logFile: "/tmp/u.log",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := parseFlags(test.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, test.want, cfg)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	var out bytes.Buffer
	_, err := parseFlags(nil, &out)
	assert.ErrorIs(t, err, contracts.ErrNoDevice)
	assert.Contains(t, out.String(), "RAW USB/socket MIDI client")

	_, err = parseFlags([]string{"-h"}, &out)
	assert.ErrorIs(t, err, errHelp)

	for _, args := range [][]string{
		{"-x"},
		{"-d", "/dev/umidi0.0", "extra"},
		{"-d", "/dev/umidi0.0", "--baud", "-1"},
		{"-d", "/dev/umidi0.0", "--poll", "0s"},
	} {
		_, err := parseFlags(args, &bytes.Buffer{})
		assert.Error(t, err, "%v", args)
	}
}

func TestOptions(t *testing.T) {
	cfg := config{capture: "/dev/umidi0.0", subPorts: true, debug: true, poll: time.Second}
	var opts contracts.BridgeOptions
	for _, opt := range cfg.options(logger.NewNop()) {
		opt(&opts)
	}
	assert.Equal(t, "/dev/umidi0.0", opts.CapturePath)
	assert.Empty(t, opts.PlaybackPath)
	assert.True(t, opts.SubPorts)
	assert.Equal(t, contracts.DebugLevel, opts.LogLevel)
	assert.Equal(t, time.Second, opts.PollInterval)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{contracts.ErrNoDevice, exitUsage},
		{fmt.Errorf("%w: jackd not running", contracts.ErrHostUnavailable), exitUnavailable},
		{fmt.Errorf("%w: midi.TX", contracts.ErrPortRegister), exitUnavailable},
		{contracts.ErrActivate, exitUnavailable},
		{fmt.Errorf("%w: setuid", contracts.ErrPrivilegeDrop), exitUnavailable},
		{fmt.Errorf("%w: fork", errBackground), exitUnavailable},
		{fmt.Errorf("%w: capture /dev/umidi0.0", contracts.ErrDeviceLost), exitDeviceLost},
		{errors.New("log file"), exitUsage},
	}
	for _, test := range tests {
		assert.Equal(t, test.code, exitCode(test.err), test.err.Error())
	}
}

// Command jack_umidi exposes a raw MIDI device, such as /dev/umidi0.0, as
// MIDI ports of a JACK client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/xlab/closer"

	"github.com/hselasky/jack-umidi/internal/logger"
	"github.com/hselasky/jack-umidi/sdk/contracts"
	"github.com/hselasky/jack-umidi/sdk/umidi"
)

// Exit codes from sysexits(3).
const (
	exitDeviceLost  = 1
	exitUsage       = 64
	exitUnavailable = 69
)

const version = "1.0.0"

type config struct {
	capture    string
	playback   string
	subPorts   bool
	clientName string
	background bool
	killOnLoss bool
	user       string
	baud       int
	poll       time.Duration
	debug      bool
	logFile    string
}

var (
	errHelp       = errors.New("help requested")
	errBackground = errors.New("could not become daemon")
)

// pathFlag stores its value into every target, so -d, -C and -P applied in
// order leave each direction with the last device named for it.
type pathFlag struct {
	value   string
	targets []*string
}

func (f *pathFlag) String() string { return f.value }
func (f *pathFlag) Type() string   { return "path" }

func (f *pathFlag) Set(s string) error {
	f.value = s
	for _, t := range f.targets {
		*t = s
	}
	return nil
}

func parseFlags(args []string, out io.Writer) (config, error) {
	var (
		cfg  config
		help bool
	)

	fs := flag.NewFlagSet("jack_umidi", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.VarP(&pathFlag{targets: []*string{&cfg.capture, &cfg.playback}}, "device", "d", "set capture and playback device, e.g. /dev/umidi0.0")
	fs.VarP(&pathFlag{targets: []*string{&cfg.capture}}, "capture", "C", "set capture device")
	fs.VarP(&pathFlag{targets: []*string{&cfg.playback}}, "playback", "P", "set playback device")
	fs.BoolVarP(&cfg.subPorts, "sub-ports", "S", false, "add one output port per MIDI channel")
	fs.StringVarP(&cfg.clientName, "name", "n", "", "JACK client name (default jack_umidi-<device>)")
	fs.BoolVarP(&cfg.background, "background", "B", false, "run in background")
	fs.BoolVarP(&cfg.killOnLoss, "kill", "k", false, "exit when the device disappears")
	fs.StringVarP(&cfg.user, "user", "U", "", "drop privileges to user after connecting to JACK")
	fs.IntVar(&cfg.baud, "baud", 0, "open devices as serial lines at this rate (31250 for DIN MIDI)")
	fs.DurationVar(&cfg.poll, "poll", contracts.DefaultPollInterval, "device watchdog interval")
	fs.BoolVarP(&cfg.debug, "verbose", "v", false, "log every MIDI message")
	fs.StringVar(&cfg.logFile, "log-file", "", "write logs to file instead of stderr")
	fs.BoolVarP(&help, "help", "h", false, "show help")
	fs.Usage = func() {
		fmt.Fprintf(out, "jack_umidi - RAW USB/socket MIDI client v%s\n", version)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if help {
		fs.Usage()
		return config{}, errHelp
	}
	if fs.NArg() > 0 {
		return config{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	if cfg.capture == "" && cfg.playback == "" {
		fs.Usage()
		return config{}, contracts.ErrNoDevice
	}
	if cfg.baud < 0 {
		return config{}, fmt.Errorf("invalid baud rate %d", cfg.baud)
	}
	if cfg.poll <= 0 {
		return config{}, fmt.Errorf("invalid poll interval %s", cfg.poll)
	}
	return cfg, nil
}

func (cfg config) options(log contracts.Logger) []contracts.Option {
	level := contracts.InfoLevel
	if cfg.debug {
		level = contracts.DebugLevel
	}
	return []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
		contracts.WithLogFile(cfg.logFile),
		contracts.WithCaptureDevice(cfg.capture),
		contracts.WithPlaybackDevice(cfg.playback),
		contracts.WithSubPorts(cfg.subPorts),
		contracts.WithClientName(cfg.clientName),
		contracts.WithKillOnLoss(cfg.killOnLoss),
		contracts.WithPollInterval(cfg.poll),
		contracts.WithBaudRate(cfg.baud),
	}
}

// exitCode maps a startup error to a sysexits code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, contracts.ErrHostUnavailable),
		errors.Is(err, contracts.ErrPortRegister),
		errors.Is(err, contracts.ErrActivate),
		errors.Is(err, contracts.ErrPrivilegeDrop),
		errors.Is(err, contracts.ErrUnsupportedOS),
		errors.Is(err, errBackground):
		return exitUnavailable
	case errors.Is(err, contracts.ErrDeviceLost):
		return exitDeviceLost
	default:
		return exitUsage
	}
}

// fail reports a startup error and exits with its sysexits code. closer
// only knows one error code, so this bypasses it; nothing may be bound yet.
func fail(log contracts.Logger, msg string, err error) {
	log.Error(msg, log.Field().Error("error", err))
	_ = log.Sync()
	os.Exit(exitCode(err))
}

func main() {
	defer closer.Close()

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, errHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "jack_umidi:", err)
		os.Exit(exitUsage)
	}

	log := logger.NewZapLogger()
	if cfg.background && !detached() {
		if err := detach(); err != nil {
			fail(log, "could not run in background", fmt.Errorf("%w: %v", errBackground, err))
		}
		return
	}

	b, err := umidi.NewBridge(cfg.options(log)...)
	if err != nil {
		fail(log, "could not start bridge", err)
	}

	if cfg.user != "" {
		if err := dropPrivileges(cfg.user); err != nil {
			_ = b.Close()
			fail(log, "could not drop privileges", err)
		}
		log.Info("dropped privileges", log.Field().String("user", cfg.user))
	}

	closer.Bind(func() {
		if err := b.Close(); err != nil {
			log.Warn("closing bridge", log.Field().Error("error", err))
		}
		_ = log.Sync()
	})

	go func() {
		if err := b.Run(context.Background()); err != nil {
			log.Error("bridge stopped", log.Field().Error("error", err))
			closer.Exit(exitCode(err))
			return
		}
		select {
		case <-b.Done():
			log.Info("JACK server went away, exiting")
			closer.Close()
		default:
			// closed from the closer handler
		}
	}()
	closer.Hold()
}

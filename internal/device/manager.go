// Package device keeps the capture and playback descriptors of a raw MIDI
// device open across unplug and replug.
//
// A Manager owns both descriptors and the capture staging buffer behind one
// mutex. The real-time side only ever takes that mutex for a single staged
// byte or a single event write; the watchdog takes it to store, probe or
// close a descriptor. Open calls are made without holding it.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hselasky/jack-umidi/sdk/contracts"
	"go.uber.org/multierr"
)

// StageSize is the capacity of the capture staging buffer.
const StageSize = 16

// ErrClosed is returned by Write when the playback descriptor is not open.
var ErrClosed = errors.New("device not open")

type handle struct {
	dir  contracts.Direction
	path string
	conn contracts.DeviceConn // nil while closed
}

// Config describes the devices a Manager looks after.
type Config struct {
	CapturePath  string
	PlaybackPath string
	KillOnLoss   bool
	Opener       contracts.DeviceOpener
	Logger       contracts.Logger
}

// Manager is the device lifecycle manager and the lock shared with the
// real-time callback.
type Manager struct {
	mu         sync.Mutex
	rx         handle
	tx         handle
	stage      [StageSize]byte
	off, n     int
	opener     contracts.DeviceOpener
	logger     contracts.Logger
	killOnLoss bool
	closed     bool
	stop       chan struct{}
}

// NewManager returns a Manager with both directions closed. Nothing is
// opened until the first Tick.
func NewManager(cfg Config) *Manager {
	return &Manager{
		rx:         handle{dir: contracts.Capture, path: cfg.CapturePath},
		tx:         handle{dir: contracts.Playback, path: cfg.PlaybackPath},
		opener:     cfg.Opener,
		logger:     cfg.Logger,
		killOnLoss: cfg.KillOnLoss,
		stop:       make(chan struct{}),
	}
}

// NextByte returns the next staged capture byte, refilling the stage from
// the capture descriptor when it runs dry. It never blocks; false means no
// byte is available this cycle.
func (m *Manager) NextByte() (byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.off >= m.n {
		m.off, m.n = 0, 0
		if m.rx.conn == nil {
			return 0, false
		}
		n, _ := m.rx.conn.Read(m.stage[:])
		if n <= 0 {
			return 0, false
		}
		m.n = n
	}
	b := m.stage[m.off]
	m.off++
	return b, true
}

// Write sends one event to the playback descriptor. A short write is
// reported as io.ErrShortWrite and is not retried.
func (m *Manager) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tx.conn == nil {
		return ErrClosed
	}
	n, err := m.tx.conn.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return io.ErrShortWrite
	}
	return nil
}

// IsOpen reports whether the descriptor for dir is currently open.
func (m *Manager) IsOpen(dir contracts.Direction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle(dir).conn != nil
}

func (m *Manager) handle(dir contracts.Direction) *handle {
	if dir == contracts.Capture {
		return &m.rx
	}
	return &m.tx
}

// Tick runs one watchdog pass over the capture and then the playback
// direction. It returns an error wrapping contracts.ErrDeviceLost only when
// kill-on-loss is enabled and an open device went away.
func (m *Manager) Tick() error {
	var err error
	for _, h := range []*handle{&m.rx, &m.tx} {
		err = multierr.Append(err, m.poll(h))
	}
	return err
}

func (m *Manager) poll(h *handle) error {
	if h.path == "" {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	if h.conn != nil {
		probeErr := h.conn.Probe()
		if probeErr == nil {
			m.mu.Unlock()
			return nil
		}
		closeErr := h.conn.Close()
		h.conn = nil
		if h.dir == contracts.Capture {
			// Stale bytes must not leak into the next device instance. The
			// parser keeps its phase.
			m.off, m.n = 0, 0
		}
		m.mu.Unlock()

		m.logger.Warn("MIDI device lost",
			m.logger.Field().String("direction", h.dir.String()),
			m.logger.Field().String("path", h.path),
			m.logger.Field().Error("error", multierr.Append(probeErr, closeErr)))
		if m.killOnLoss {
			return fmt.Errorf("%w: %s %s", contracts.ErrDeviceLost, h.dir, h.path)
		}
		return nil
	}
	m.mu.Unlock()

	conn, err := m.opener.Open(h.path, h.dir)
	if err != nil {
		m.logger.Debug("MIDI device not available",
			m.logger.Field().String("direction", h.dir.String()),
			m.logger.Field().String("path", h.path),
			m.logger.Field().Error("error", err))
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return conn.Close()
	}
	h.conn = conn
	m.mu.Unlock()

	m.logger.Info("MIDI device opened",
		m.logger.Field().String("direction", h.dir.String()),
		m.logger.Field().String("path", h.path))
	return nil
}

// Run calls Tick immediately and then once per interval until ctx is done,
// the Manager is closed or Tick reports a lost device.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = contracts.DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.Tick(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-m.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// Close closes both descriptors and stops Run. A closed Manager never
// opens a device again.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.stop)
	}

	var err error
	for _, h := range []*handle{&m.rx, &m.tx} {
		if h.conn != nil {
			err = multierr.Append(err, h.conn.Close())
			h.conn = nil
		}
	}
	m.off, m.n = 0, 0
	return err
}

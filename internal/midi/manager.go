package midi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var errTerminated = errors.New("midi manager terminated")

// Options bounds every platform call made by Manager. A zero timeout
// leaves the call unbounded.
type Options struct {
	EnumerateTimeout time.Duration
	OpenTimeout      time.Duration
	SendTimeout      time.Duration
}

// DefaultOptions returns the timeouts used when no config overrides them
func DefaultOptions() Options {
	return Options{
		EnumerateTimeout: 3 * time.Second,
		OpenTimeout:      2 * time.Second,
		SendTimeout:      500 * time.Millisecond,
	}
}

// Output is a handle to an open output device
type Output struct {
	device Device
	port   Port
	closed bool
}

// Device returns the device this handle was opened for
func (o *Output) Device() Device {
	return o.device
}

// Manager handles MIDI output discovery and the single open output handle
type Manager struct {
	mu         sync.Mutex
	drv        Driver
	log        *zap.Logger
	opts       Options
	known      map[int]Device // result of the last enumeration
	current    *Output
	terminated bool
}

// NewManager creates a new MIDI manager on top of a platform driver
func NewManager(drv Driver, log *zap.Logger, opts Options) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		drv:   drv,
		log:   log.Named("midi").With(zap.String("driver", drv.String())),
		opts:  opts,
		known: make(map[int]Device),
	}
}

// ListOutputDevices returns the output-capable devices in driver order
func (m *Manager) ListOutputDevices(ctx context.Context) ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.terminated {
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, errTerminated)
	}

	all, err := bounded(ctx, m.opts.EnumerateTimeout, m.drv.Devices, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, err)
	}

	m.log.Debug("Scanned MIDI devices", zap.Int("count", len(all)))

	outs := make([]Device, 0, len(all))
	known := make(map[int]Device, len(all))
	for _, d := range all {
		m.log.Debug("MIDI device",
			zap.Int("id", d.ID),
			zap.String("name", d.Name),
			zap.Bool("output", d.Output),
			zap.Bool("inUse", d.InUse))
		if !d.Output {
			continue
		}
		outs = append(outs, d)
		known[d.ID] = d
	}
	m.known = known
	return outs, nil
}

// Open opens the output device with the given id. Any output that is
// already open is closed first.
func (m *Manager) Open(ctx context.Context, id int) (*Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.closeLocked(m.current)
	}

	if m.terminated {
		return nil, &ConnectionError{DeviceID: id, Reason: ReasonUnavailable, Err: errTerminated}
	}

	device, ok := m.known[id]
	if !ok {
		return nil, &ConnectionError{DeviceID: id, Reason: ReasonInvalidDevice}
	}

	open := func() (Port, error) { return m.drv.OpenOutput(id) }
	port, err := bounded(ctx, m.opts.OpenTimeout, open, func(late Port) {
		// the platform answered after we gave up; do not leak the port
		_ = late.Close()
	})
	if err != nil {
		return nil, &ConnectionError{DeviceID: id, Reason: classifyOpenError(err), Err: err}
	}

	m.current = &Output{device: device, port: port}
	m.log.Info("MIDI output opened", zap.Int("id", id), zap.String("name", device.Name))
	return m.current, nil
}

// Close releases an output handle. It is safe to call with nil or with a
// handle that is already closed.
func (m *Manager) Close(out *Output) error {
	if out == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked(out)
}

func (m *Manager) closeLocked(out *Output) error {
	if out.closed {
		return nil
	}
	out.closed = true
	if m.current == out {
		m.current = nil
	}

	closePort := func() (struct{}, error) { return struct{}{}, out.port.Close() }
	if _, err := bounded(context.Background(), m.opts.OpenTimeout, closePort, nil); err != nil {
		m.log.Warn("Failed to close MIDI output", zap.String("name", out.device.Name), zap.Error(err))
		return fmt.Errorf("close %s: %w", out.device.Name, err)
	}
	m.log.Info("MIDI output closed", zap.String("name", out.device.Name))
	return nil
}

// SendControlChange transmits [0xB0|channel, cc, value] on the output.
// A failed send leaves the handle open.
func (m *Manager) SendControlChange(ctx context.Context, out *Output, channel, cc, value uint8) error {
	if channel > MaxChannel {
		return fmt.Errorf("%w: channel %d out of range", ErrTransmit, channel)
	}
	if cc > MaxDataByte || value > MaxDataByte {
		return fmt.Errorf("%w: cc %d value %d out of range", ErrTransmit, cc, value)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if out == nil || out.closed {
		return fmt.Errorf("%w: %w", ErrTransmit, ErrNotOpen)
	}

	msg := gomidi.ControlChange(channel, cc, value)
	send := func() (struct{}, error) { return struct{}{}, out.port.Send(msg) }
	if _, err := bounded(ctx, m.opts.SendTimeout, send, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrTransmit, err)
	}
	return nil
}

// Terminate closes any open output and releases the platform driver
func (m *Manager) Terminate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.terminated {
		return nil
	}
	m.terminated = true

	var err error
	if m.current != nil {
		err = multierr.Append(err, m.closeLocked(m.current))
	}
	err = multierr.Append(err, m.drv.Close())
	m.log.Info("MIDI driver closed")
	return err
}

type result[T any] struct {
	val T
	err error
}

// bounded runs fn and waits for it at most timeout. CoreMIDI and friends
// can hang, so a late answer is handed to onLate instead of the caller.
func bounded[T any](ctx context.Context, timeout time.Duration, fn func() (T, error), onLate func(T)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{val: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		if onLate != nil {
			go func() {
				if r := <-ch; r.err == nil {
					onLate(r.val)
				}
			}()
		}
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

// Package panel owns the control panel state: selected device and channel,
// the last value sent per CC number, and the connection status.
package panel

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-cc/internal/midi"
	"github.com/PixPMusic/gopher-cc/internal/params"
)

// Channel limits as shown to the user
const (
	MinChannel = 1
	MaxChannel = 16
)

const noDevicesNotice = "No MIDI devices found"

// Transport is the subset of midi.Manager the controller needs
type Transport interface {
	ListOutputDevices(ctx context.Context) ([]midi.Device, error)
	Open(ctx context.Context, id int) (*midi.Output, error)
	Close(out *midi.Output) error
	SendControlChange(ctx context.Context, out *midi.Output, channel, cc, value uint8) error
	Terminate() error
}

// Controller reacts to user input and drives the transport. It is not safe
// for concurrent use; all calls are expected on the UI event thread.
type Controller struct {
	transport Transport
	registry  *params.Registry
	log       *zap.Logger
	session   string

	devices  []midi.Device
	out      *midi.Output
	state    State
	channel  uint8           // 0-15
	cache    map[uint8]uint8 // CC number -> last value
	notice   string
	stats    Stats
	shutdown bool
}

// New creates a controller with channel 1 selected and nothing connected
func New(transport Transport, registry *params.Registry, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	session := uuid.New().String()
	return &Controller{
		transport: transport,
		registry:  registry,
		log:       log.Named("panel").With(zap.String("session", session)),
		session:   session,
		cache:     make(map[uint8]uint8),
	}
}

// Session returns the id attached to this controller's log lines
func (c *Controller) Session() string {
	return c.session
}

// Registry returns the control table the panel was built with
func (c *Controller) Registry() *params.Registry {
	return c.registry
}

// RefreshDevices re-enumerates outputs. If the connected device is gone the
// panel disconnects.
func (c *Controller) RefreshDevices() {
	devices, err := c.transport.ListOutputDevices(context.Background())
	if err != nil {
		c.devices = nil
		c.notice = "Device scan failed: " + err.Error()
		c.log.Warn("Failed to list MIDI devices", zap.Error(err))
		return
	}

	c.devices = devices
	c.notice = ""
	if len(devices) == 0 {
		c.notice = noDevicesNotice
		c.log.Info("No MIDI output devices found")
	} else {
		c.log.Info("Found MIDI output devices", zap.Int("count", len(devices)))
	}

	if c.state.Kind == Connected && !containsDevice(devices, c.state.Device) {
		c.log.Warn("Connected device disappeared", zap.String("name", c.state.Device.Name))
		c.closeOutput()
		c.state = State{Kind: Disconnected}
	}
}

// SelectDevice connects to the output with the given id. The outcome is
// reported through State.
func (c *Controller) SelectDevice(id int) {
	c.closeOutput()

	c.log.Info("Attempting to connect", zap.Int("id", id))
	out, err := c.transport.Open(context.Background(), id)
	if err != nil {
		c.state = State{Kind: Failed, Message: err.Error()}
		fields := []zap.Field{zap.Int("id", id), zap.Error(err)}
		var connErr *midi.ConnectionError
		if errors.As(err, &connErr) && connErr.Suggestion() != "" {
			fields = append(fields, zap.String("suggestion", connErr.Suggestion()))
		}
		c.log.Warn("Failed to connect", fields...)
		return
	}

	c.out = out
	c.state = State{Kind: Connected, Device: out.Device()}
	c.notice = ""
	c.log.Info("Connected", zap.String("name", out.Device().Name))
}

// SelectChannel sets the MIDI channel, 1-16 as shown to the user
func (c *Controller) SelectChannel(n int) {
	if n < MinChannel || n > MaxChannel {
		c.log.Warn("Ignoring out of range channel", zap.Int("channel", n))
		return
	}
	c.channel = uint8(n - 1)
}

// OnParameterChanged records a slider move and sends it when connected.
// Unknown controls and values outside 0-127 are ignored.
func (c *Controller) OnParameterChanged(controlID string, value int) {
	ctrl, ok := c.registry.Lookup(controlID)
	if !ok {
		c.log.Warn("Ignoring unknown control", zap.String("control", controlID))
		return
	}
	if value < 0 || value > params.MaxValue {
		c.log.Warn("Ignoring out of range value",
			zap.String("control", controlID),
			zap.Int("value", value))
		return
	}

	v := uint8(value)
	if last, ok := c.cache[ctrl.CC]; ok && last == v {
		c.stats.Suppressed++
		return
	}
	// cached before sending and kept even if the send fails
	c.cache[ctrl.CC] = v

	if c.state.Kind != Connected || c.out == nil {
		return
	}

	err := c.transport.SendControlChange(context.Background(), c.out, c.channel, ctrl.CC, v)
	if err != nil {
		c.stats.Failed++
		c.log.Error("Error sending MIDI",
			zap.String("control", controlID),
			zap.Uint8("cc", ctrl.CC),
			zap.Uint8("value", v),
			zap.Error(err))
		return
	}
	c.stats.Sent++
	c.log.Debug("Sent CC",
		zap.Uint8("channel", c.channel+1),
		zap.Uint8("cc", ctrl.CC),
		zap.Uint8("value", v))
}

// PrimeDefaults runs every control's default value through
// OnParameterChanged, the way the sliders report their initial position.
func (c *Controller) PrimeDefaults() {
	for _, ctrl := range c.registry.Controls() {
		c.OnParameterChanged(ctrl.ID, int(ctrl.Default))
	}
}

// Shutdown closes the output and releases the MIDI driver. Safe to call
// more than once.
func (c *Controller) Shutdown() {
	if c.shutdown {
		return
	}
	c.shutdown = true
	c.closeOutput()
	c.state = State{Kind: Disconnected}
	if err := c.transport.Terminate(); err != nil {
		c.log.Warn("Failed to release MIDI driver", zap.Error(err))
	}
	c.log.Info("Shut down", zap.Int("sent", c.stats.Sent), zap.Int("failed", c.stats.Failed))
}

// State returns the connection status
func (c *Controller) State() State {
	return c.state
}

// Devices returns the output devices from the last refresh
func (c *Controller) Devices() []midi.Device {
	return append([]midi.Device(nil), c.devices...)
}

// Channel returns the selected channel, 1-16
func (c *Controller) Channel() int {
	return int(c.channel) + 1
}

// Value returns the last value recorded for a control
func (c *Controller) Value(controlID string) (uint8, bool) {
	ctrl, ok := c.registry.Lookup(controlID)
	if !ok {
		return 0, false
	}
	v, ok := c.cache[ctrl.CC]
	return v, ok
}

// Notice returns the message from the last device scan, if any
func (c *Controller) Notice() string {
	return c.notice
}

// Status returns the status line text
func (c *Controller) Status() string {
	if c.state.Kind == Disconnected && c.notice != "" {
		return "Status: " + c.notice
	}
	return "Status: " + c.state.String()
}

// Stats returns the send counters
func (c *Controller) Stats() Stats {
	return c.stats
}

func (c *Controller) closeOutput() {
	if c.out == nil {
		return
	}
	if err := c.transport.Close(c.out); err != nil {
		c.log.Warn("Failed to close MIDI output", zap.Error(err))
	}
	c.out = nil
	if c.state.Kind == Connected {
		c.state = State{Kind: Disconnected}
	}
}

func containsDevice(devices []midi.Device, d midi.Device) bool {
	for _, candidate := range devices {
		if candidate.ID == d.ID && candidate.Name == d.Name {
			return true
		}
	}
	return false
}

package midi_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/PixPMusic/gopher-cc/internal/midi"
	"github.com/PixPMusic/gopher-cc/internal/midi/miditest"
)

var (
	synth   = midi.Device{ID: 1, Name: "NTS-1 digital kit", Output: true}
	through = midi.Device{ID: 0, Name: "Midi Through Port-0", Output: true}
	input   = midi.Device{ID: 2, Name: "Keystep", Output: false}
	daw     = midi.Device{ID: 3, Name: "IAC Bus 1", Output: true, InUse: true}
)

func newManager(t *testing.T, drv midi.Driver, opts midi.Options) *midi.Manager {
	t.Helper()
	return midi.NewManager(drv, zaptest.NewLogger(t), opts)
}

func enumerated(t *testing.T, m *midi.Manager) []midi.Device {
	t.Helper()
	devices, err := m.ListOutputDevices(context.Background())
	require.NoError(t, err)
	return devices
}

func TestListOutputDevicesKeepsOutputsInDriverOrder(t *testing.T) {
	drv := miditest.NewDriver(synth, input, through, daw)
	m := newManager(t, drv, midi.DefaultOptions())

	devices := enumerated(t, m)

	assert.Equal(t, []midi.Device{synth, through, daw}, devices)
}

func TestListOutputDevicesWrapsDriverFailure(t *testing.T) {
	drv := miditest.NewDriver(synth)
	drv.SetDevicesErr(errors.New("host error"))
	m := newManager(t, drv, midi.DefaultOptions())

	devices, err := m.ListOutputDevices(context.Background())

	assert.Empty(t, devices)
	assert.ErrorIs(t, err, midi.ErrEnumeration)
	assert.ErrorContains(t, err, "host error")
}

func TestListOutputDevicesTimesOut(t *testing.T) {
	drv := miditest.NewDriver(synth)
	release := drv.Stall()
	defer release()
	m := newManager(t, drv, midi.Options{EnumerateTimeout: 20 * time.Millisecond})

	_, err := m.ListOutputDevices(context.Background())

	assert.ErrorIs(t, err, midi.ErrEnumeration)
	assert.ErrorIs(t, err, midi.ErrTimeout)
}

func TestOpenRejectsDeviceNotInLastEnumeration(t *testing.T) {
	drv := miditest.NewDriver(synth, input)
	m := newManager(t, drv, midi.DefaultOptions())
	enumerated(t, m)

	for _, id := range []int{input.ID, 42} {
		out, err := m.Open(context.Background(), id)

		assert.Nil(t, out)
		var connErr *midi.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, midi.ReasonInvalidDevice, connErr.Reason)
		assert.Equal(t, id, connErr.DeviceID)
		assert.Equal(t, "Try refreshing the device list", connErr.Suggestion())
	}
	assert.Equal(t, []string{"devices"}, drv.Events())
}

func TestOpenClassifiesDriverErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason midi.Reason
	}{
		{"in use", errors.New("PortMidi: Device unavailable"), midi.ReasonInUse},
		{"allocated", errors.New("midiOutOpen 1: device already allocated"), midi.ReasonInUse},
		{"invalid", errors.New("PortMidi: Invalid device ID"), midi.ReasonInvalidDevice},
		{"denied", errors.New("permission denied"), midi.ReasonUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := miditest.NewDriver(synth)
			drv.SetOpenErr(synth.ID, tt.err)
			m := newManager(t, drv, midi.DefaultOptions())
			enumerated(t, m)

			_, err := m.Open(context.Background(), synth.ID)

			var connErr *midi.ConnectionError
			require.ErrorAs(t, err, &connErr)
			assert.Equal(t, tt.reason, connErr.Reason)
			assert.ErrorIs(t, err, tt.err)
			assert.Zero(t, drv.OpenPorts())
		})
	}
}

func TestOpenClosesPreviousOutputFirst(t *testing.T) {
	drv := miditest.NewDriver(through, synth)
	m := newManager(t, drv, midi.DefaultOptions())
	enumerated(t, m)

	a, err := m.Open(context.Background(), through.ID)
	require.NoError(t, err)
	b, err := m.Open(context.Background(), synth.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"devices", "open:0", "close:0", "open:1"}, drv.Events())
	assert.Equal(t, 1, drv.OpenPorts())
	assert.Equal(t, synth, b.Device())

	// the old handle is dead
	err = m.SendControlChange(context.Background(), a, 0, 43, 1)
	assert.ErrorIs(t, err, midi.ErrNotOpen)
}

func TestCloseIsIdempotent(t *testing.T) {
	drv := miditest.NewDriver(synth)
	m := newManager(t, drv, midi.DefaultOptions())
	enumerated(t, m)
	out, err := m.Open(context.Background(), synth.ID)
	require.NoError(t, err)

	require.NoError(t, m.Close(nil))
	require.NoError(t, m.Close(out))
	require.NoError(t, m.Close(out))

	assert.Equal(t, []string{"devices", "open:1", "close:1"}, drv.Events())
	assert.Zero(t, drv.OpenPorts())
}

func TestSendControlChangeEncodesChannel(t *testing.T) {
	drv := miditest.NewDriver(synth)
	m := newManager(t, drv, midi.DefaultOptions())
	enumerated(t, m)
	out, err := m.Open(context.Background(), synth.ID)
	require.NoError(t, err)

	require.NoError(t, m.SendControlChange(context.Background(), out, 0, 43, 100))
	require.NoError(t, m.SendControlChange(context.Background(), out, 4, 43, 100))
	require.NoError(t, m.SendControlChange(context.Background(), out, 15, 0, 127))

	assert.Equal(t, [][]byte{
		{0xB0, 43, 100},
		{0xB4, 43, 100},
		{0xBF, 0, 127},
	}, drv.Messages())
}

func TestSendControlChangeRejectsOutOfRange(t *testing.T) {
	drv := miditest.NewDriver(synth)
	m := newManager(t, drv, midi.DefaultOptions())
	enumerated(t, m)
	out, err := m.Open(context.Background(), synth.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, m.SendControlChange(context.Background(), out, 16, 43, 1), midi.ErrTransmit)
	assert.ErrorIs(t, m.SendControlChange(context.Background(), out, 0, 128, 1), midi.ErrTransmit)
	assert.ErrorIs(t, m.SendControlChange(context.Background(), out, 0, 43, 200), midi.ErrTransmit)
	assert.Empty(t, drv.Sent())
}

func TestSendControlChangeWithoutHandle(t *testing.T) {
	m := newManager(t, miditest.NewDriver(synth), midi.DefaultOptions())

	err := m.SendControlChange(context.Background(), nil, 0, 43, 1)

	assert.ErrorIs(t, err, midi.ErrTransmit)
	assert.ErrorIs(t, err, midi.ErrNotOpen)
}

func TestSendFailureKeepsHandleOpen(t *testing.T) {
	drv := miditest.NewDriver(synth)
	m := newManager(t, drv, midi.DefaultOptions())
	enumerated(t, m)
	out, err := m.Open(context.Background(), synth.ID)
	require.NoError(t, err)

	drv.SetSendErr(errors.New("device unplugged"))
	err = m.SendControlChange(context.Background(), out, 0, 43, 1)
	assert.ErrorIs(t, err, midi.ErrTransmit)
	assert.ErrorContains(t, err, "device unplugged")

	drv.SetSendErr(nil)
	require.NoError(t, m.SendControlChange(context.Background(), out, 0, 43, 2))
	assert.Equal(t, [][]byte{{0xB0, 43, 2}}, drv.Messages())
	assert.Equal(t, 1, drv.OpenPorts())
}

func TestSendControlChangeTimesOut(t *testing.T) {
	drv := miditest.NewDriver(synth)
	m := newManager(t, drv, midi.Options{SendTimeout: 20 * time.Millisecond})
	enumerated(t, m)
	out, err := m.Open(context.Background(), synth.ID)
	require.NoError(t, err)

	release := drv.Stall()
	defer release()
	err = m.SendControlChange(context.Background(), out, 0, 43, 1)

	assert.ErrorIs(t, err, midi.ErrTransmit)
	assert.ErrorIs(t, err, midi.ErrTimeout)
}

func TestOpenTimeoutClosesLatePort(t *testing.T) {
	drv := miditest.NewDriver(synth)
	m := newManager(t, drv, midi.Options{OpenTimeout: 20 * time.Millisecond})
	enumerated(t, m)

	release := drv.Stall()
	out, err := m.Open(context.Background(), synth.ID)

	assert.Nil(t, out)
	var connErr *midi.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, midi.ReasonTimeout, connErr.Reason)
	assert.ErrorIs(t, err, midi.ErrTimeout)

	release()
	assert.Eventually(t, func() bool {
		events := drv.Events()
		return len(events) > 0 && events[len(events)-1] == "close:1"
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, drv.OpenPorts())
}

func TestTerminateReleasesEverything(t *testing.T) {
	drv := miditest.NewDriver(synth)
	m := newManager(t, drv, midi.DefaultOptions())
	enumerated(t, m)
	_, err := m.Open(context.Background(), synth.ID)
	require.NoError(t, err)

	require.NoError(t, m.Terminate())
	require.NoError(t, m.Terminate())

	assert.Equal(t, []string{"devices", "open:1", "close:1", "driver-close"}, drv.Events())
	assert.True(t, drv.Closed())

	_, err = m.ListOutputDevices(context.Background())
	assert.ErrorIs(t, err, midi.ErrEnumeration)
	_, err = m.Open(context.Background(), synth.ID)
	var connErr *midi.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestDeviceLabel(t *testing.T) {
	assert.Equal(t, "1: NTS-1 digital kit", synth.Label())
	assert.Equal(t, "3: IAC Bus 1 [IN USE]", daw.Label())
}

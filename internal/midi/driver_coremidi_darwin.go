//go:build darwin
// +build darwin

package midi

import (
	"fmt"

	"github.com/youpy/go-coremidi"
)

// coremidiClientName is the name other CoreMIDI clients see for us
const coremidiClientName = "GopherCC"

// coremidiDriver sends to CoreMIDI destinations through one output port
type coremidiDriver struct {
	client coremidi.Client
}

func newCoreMIDIDriver() (Driver, error) {
	client, err := coremidi.NewClient(coremidiClientName)
	if err != nil {
		return nil, fmt.Errorf("coremidi: %w", err)
	}
	return &coremidiDriver{client: client}, nil
}

func (d *coremidiDriver) String() string {
	return "coremidi"
}

func (d *coremidiDriver) Devices() ([]Device, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	devices := make([]Device, len(destinations))
	for i, destination := range destinations {
		devices[i] = Device{
			ID:     i,
			Name:   destination.Name(),
			Output: true,
		}
	}
	return devices, nil
}

func (d *coremidiDriver) OpenOutput(id int) (Port, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	if id < 0 || id >= len(destinations) {
		return nil, fmt.Errorf("invalid device id %d", id)
	}
	port, err := coremidi.NewOutputPort(d.client, coremidiClientName+" Output")
	if err != nil {
		return nil, fmt.Errorf("error creating output port: %w", err)
	}
	return &coremidiPort{port: port, destination: destinations[id]}, nil
}

// Close is a no-op; the CoreMIDI client lives until the process exits
func (d *coremidiDriver) Close() error {
	return nil
}

type coremidiPort struct {
	port        coremidi.OutputPort
	destination coremidi.Destination
}

func (p *coremidiPort) Send(msg []byte) error {
	packet := coremidi.NewPacket(msg, 0)
	return packet.Send(&p.port, &p.destination)
}

func (p *coremidiPort) Close() error {
	return nil
}

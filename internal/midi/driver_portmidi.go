//go:build portmidi
// +build portmidi

package midi

import (
	"fmt"

	"github.com/rakyll/portmidi"
)

// portmidiBufferSize is the output stream buffer in events
const portmidiBufferSize = 1024

// portmidiDriver talks to PortMidi directly, which unlike rtmidi reports
// whether another client has a port open.
type portmidiDriver struct{}

func newPortMIDIDriver() (Driver, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("portmidi: %w", err)
	}
	return &portmidiDriver{}, nil
}

func (d *portmidiDriver) String() string {
	return "portmidi"
}

func (d *portmidiDriver) Devices() ([]Device, error) {
	count := portmidi.CountDevices()
	devices := make([]Device, 0, count)
	for i := 0; i < count; i++ {
		info := portmidi.Info(portmidi.DeviceID(i))
		if info == nil {
			continue
		}
		devices = append(devices, Device{
			ID:     i,
			Name:   info.Name,
			Output: info.IsOutputAvailable,
			InUse:  info.IsOpened,
		})
	}
	return devices, nil
}

func (d *portmidiDriver) OpenOutput(id int) (Port, error) {
	if id < 0 || id >= portmidi.CountDevices() {
		return nil, fmt.Errorf("invalid device id %d", id)
	}
	stream, err := portmidi.NewOutputStream(portmidi.DeviceID(id), portmidiBufferSize, 0)
	if err != nil {
		return nil, err
	}
	return &portmidiPort{stream: stream}, nil
}

func (d *portmidiDriver) Close() error {
	return portmidi.Terminate()
}

type portmidiPort struct {
	stream *portmidi.Stream
}

func (p *portmidiPort) Send(msg []byte) error {
	if len(msg) != 3 {
		return fmt.Errorf("portmidi: short message must be 3 bytes, got %d", len(msg))
	}
	return p.stream.WriteShort(int64(msg[0]), int64(msg[1]), int64(msg[2]))
}

func (p *portmidiPort) Close() error {
	return p.stream.Close()
}

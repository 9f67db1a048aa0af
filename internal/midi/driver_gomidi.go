package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// gomidiDriver adapts a gomidi driver to Driver
type gomidiDriver struct {
	drv drivers.Driver
}

// NewGomidiDriver wraps any gomidi driver, e.g. rtmididrv or testdrv
func NewGomidiDriver(drv drivers.Driver) Driver {
	return &gomidiDriver{drv: drv}
}

func newRtMIDIDriver() (Driver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return NewGomidiDriver(drv), nil
}

func (g *gomidiDriver) String() string {
	return g.drv.String()
}

// Devices lists the gomidi output ports. gomidi only reports ports opened
// by this process as open, so InUse is best effort.
func (g *gomidiDriver) Devices() ([]Device, error) {
	outs, err := g.drv.Outs()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, 0, len(outs))
	for _, out := range outs {
		devices = append(devices, Device{
			ID:     out.Number(),
			Name:   out.String(),
			Output: true,
			InUse:  out.IsOpen(),
		})
	}
	return devices, nil
}

func (g *gomidiDriver) OpenOutput(id int) (Port, error) {
	outs, err := g.drv.Outs()
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		if out.Number() != id {
			continue
		}
		if err := out.Open(); err != nil {
			return nil, err
		}
		return &gomidiPort{out: out}, nil
	}
	return nil, fmt.Errorf("invalid device id %d", id)
}

func (g *gomidiDriver) Close() error {
	return g.drv.Close()
}

type gomidiPort struct {
	out drivers.Out
}

func (p *gomidiPort) Send(msg []byte) error {
	return p.out.Send(msg)
}

func (p *gomidiPort) Close() error {
	return p.out.Close()
}

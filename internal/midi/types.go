package midi

import "fmt"

// Device describes a MIDI port as reported by the platform driver
type Device struct {
	ID     int    // Platform index, only valid until the next enumeration
	Name   string // Port name shown to the user
	Output bool   // true if the port accepts output
	InUse  bool   // Advisory: another client already holds the port
}

// Label returns the text shown in the device selector
func (d Device) Label() string {
	if d.InUse {
		return fmt.Sprintf("%d: %s [IN USE]", d.ID, d.Name)
	}
	return fmt.Sprintf("%d: %s", d.ID, d.Name)
}

// Driver is the platform MIDI service. Implementations only report devices
// and open raw output ports; all policy lives in Manager.
type Driver interface {
	// Devices lists every port known to the platform in enumeration order
	Devices() ([]Device, error)

	// OpenOutput opens the output port with the given platform index
	OpenOutput(id int) (Port, error)

	// Close releases the platform MIDI subsystem
	Close() error

	String() string
}

// Port is an open output port
type Port interface {
	Send(msg []byte) error
	Close() error
}

// Control Change status and data limits
const (
	StatusControlChange byte = 0xB0
	MaxChannel               = 15
	MaxDataByte              = 127
)

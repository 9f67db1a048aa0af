//go:build !portmidi
// +build !portmidi

package midi

import "fmt"

func newPortMIDIDriver() (Driver, error) {
	return nil, fmt.Errorf("%w: portmidi (build with -tags portmidi)", ErrDriverUnavailable)
}

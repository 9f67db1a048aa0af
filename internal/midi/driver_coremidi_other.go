//go:build !darwin
// +build !darwin

package midi

import "fmt"

func newCoreMIDIDriver() (Driver, error) {
	return nil, fmt.Errorf("%w: coremidi is macOS only", ErrDriverUnavailable)
}

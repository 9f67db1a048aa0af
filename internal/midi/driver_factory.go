package midi

import (
	"fmt"
	"sort"
)

// DefaultDriver is used when the config does not name one
const DefaultDriver = "rtmidi"

// driverInitializers maps driver names to their constructors. Constructors
// for backends that are not compiled into this binary report
// ErrDriverUnavailable.
var driverInitializers = map[string]func() (Driver, error){
	"rtmidi":   newRtMIDIDriver,   // gomidi rtmidi bindings, all platforms
	"portmidi": newPortMIDIDriver, // PortMidi, needs the portmidi build tag
	"coremidi": newCoreMIDIDriver, // macOS CoreMIDI
	"winmm":    newWinMMDriver,    // Windows multimedia API
}

// NewDriver initializes the named platform driver
func NewDriver(name string) (Driver, error) {
	if name == "" {
		name = DefaultDriver
	}
	initializer, ok := driverInitializers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
	}
	return initializer()
}

// DriverNames returns every known driver name, sorted
func DriverNames() []string {
	names := make([]string, 0, len(driverInitializers))
	for name := range driverInitializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnownDriver reports whether name is a registered driver
func IsKnownDriver(name string) bool {
	_, ok := driverInitializers[name]
	return ok
}
